package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/middleware/auth"
	"yamdb/internal/shared"
	"yamdb/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// MsgAccountConfirmed is returned when signup resolves to an already active user.
const MsgAccountConfirmed = "account already confirmed; use the existing confirmation code or contact support"

// CodeNotifier delivers confirmation codes out of band. Implementations must
// not block the request; delivery failures are theirs to log.
type CodeNotifier interface {
	SendConfirmationCode(email, username, code string)
}

type AuthService interface {
	Signup(ctx context.Context, email, username string) (*models.User, error)
	IssueToken(ctx context.Context, username, code string) (string, error)
	Authenticate(ctx context.Context, tokenString string) (*models.User, error)
}

type authService struct {
	userRepo       repository.UserRepository
	codes          *ConfirmationCodes
	notifier       CodeNotifier
	jwtSecret      []byte
	accessTokenTTL time.Duration
	now            func() time.Time
}

func NewAuthService(
	userRepo repository.UserRepository,
	codes *ConfirmationCodes,
	notifier CodeNotifier,
	jwtSecret string,
	accessTokenTTL time.Duration,
) AuthService {
	return &authService{
		userRepo:       userRepo,
		codes:          codes,
		notifier:       notifier,
		jwtSecret:      []byte(jwtSecret),
		accessTokenTTL: accessTokenTTL,
		now:            time.Now,
	}
}

// Signup resolves or creates the inactive user for (email, username) and
// sends it a fresh confirmation code.
func (s *authService) Signup(ctx context.Context, email, username string) (*models.User, error) {
	if validation.IsReservedUsername(username) {
		return nil, newValidationError("username", `username "me" is not allowed`)
	}

	user, err := s.userRepo.FindByEmailAndUsername(ctx, email, username)
	switch {
	case err == nil:
		if user.IsActive {
			return nil, newValidationError("", MsgAccountConfirmed)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		user, err = s.createInactive(ctx, email, username)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	code, err := s.codes.Make(user)
	if err != nil {
		return nil, err
	}
	s.notifier.SendConfirmationCode(user.Email, user.Username, code)

	slog.InfoContext(ctx, "signup_code_issued", "user_id", user.ID, "username", user.Username)
	return user, nil
}

func (s *authService) createInactive(ctx context.Context, email, username string) (*models.User, error) {
	if err := s.checkIdentityFree(ctx, email, username); err != nil {
		return nil, err
	}

	password, err := auth.UnusablePassword()
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:    email,
		Username: username,
		Role:     models.RoleUser,
		Password: password,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// lost a race with a concurrent signup for the same identity
			return nil, newValidationError("", "a user with this email or username already exists")
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) checkIdentityFree(ctx context.Context, email, username string) error {
	taken, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return err
	}
	if taken {
		return newValidationError("email", "a user with this email already exists")
	}

	taken, err = s.userRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return err
	}
	if taken {
		return newValidationError("username", "a user with this username already exists")
	}
	return nil
}

// IssueToken exchanges a confirmation code for an access token. Activation
// and the login stamp change the user's fingerprint, so a code works once;
// the conditional write settles concurrent exchanges of the same code.
func (s *authService) IssueToken(ctx context.Context, username, code string) (string, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return "", translate("user", err)
	}

	if !s.codes.Check(user, code) {
		slog.WarnContext(ctx, "confirmation_code_rejected", "username", username)
		return "", newValidationError("confirmation_code", "invalid or expired confirmation code")
	}

	// postgres keeps microseconds; match it so the stamp reads back unchanged
	now := s.now().UTC().Truncate(time.Microsecond)
	if err := s.userRepo.Activate(ctx, user, now); err != nil {
		if errors.Is(err, repository.ErrStale) {
			slog.WarnContext(ctx, "confirmation_code_raced", "username", username)
			return "", newValidationError("confirmation_code", "invalid or expired confirmation code")
		}
		return "", err
	}
	user.IsActive = true
	user.LastLogin = &now

	return s.generateAccessToken(user)
}

func (s *authService) generateAccessToken(user *models.User) (string, error) {
	now := s.now()
	claims := shared.AuthClaims{
		UserID:   user.ID,
		UserName: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Audience:  jwt.ClaimStrings{shared.AudienceAccess},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// Authenticate validates a bearer token and loads the current user behind it,
// so role changes and deletions apply to tokens already handed out.
func (s *authService) Authenticate(ctx context.Context, tokenString string) (*models.User, error) {
	var claims shared.AuthClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(shared.AudienceAccess),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInvalidToken
	}
	return user, nil
}
