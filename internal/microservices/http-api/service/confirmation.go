package service

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/shared"

	"github.com/golang-jwt/jwt/v5"
)

// ConfirmationCodes issues and checks signup codes. A code is a signed token
// carrying a fingerprint of the user's auth state, so activating the account
// or stamping a login invalidates every code issued before.
type ConfirmationCodes struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewConfirmationCodes(secret string, ttl time.Duration) *ConfirmationCodes {
	return &ConfirmationCodes{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (c *ConfirmationCodes) Make(user *models.User) (string, error) {
	now := c.now()
	claims := shared.ConfirmationClaims{
		Fingerprint: fingerprint(user),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Audience:  jwt.ClaimStrings{shared.AudienceConfirmation},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Check reports whether code was issued for user in its current state.
func (c *ConfirmationCodes) Check(user *models.User, code string) bool {
	if code == "" {
		return false
	}
	var claims shared.ConfirmationClaims
	_, err := jwt.ParseWithClaims(code, &claims, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(shared.AudienceConfirmation),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return false
	}
	if claims.Subject != user.ID {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(claims.Fingerprint), []byte(fingerprint(user))) == 1
}

// fingerprint uses microseconds for last_login, the precision postgres keeps.
func fingerprint(user *models.User) string {
	lastLogin := ""
	if user.LastLogin != nil {
		lastLogin = strconv.FormatInt(user.LastLogin.UTC().UnixMicro(), 10)
	}
	parts := []string{
		user.ID,
		user.Password,
		strconv.FormatBool(user.IsActive),
		strings.ToLower(user.Email),
		lastLogin,
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:])
}
