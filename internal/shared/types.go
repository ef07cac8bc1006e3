package shared

import "github.com/golang-jwt/jwt/v5"

// shared types across the application
// 1st: access token claims for the HTTP API
// 2nd: confirmation code claims for the signup flow

// Token audiences keep a confirmation code from being replayed as an access
// token and the other way round.
const (
	AudienceAccess       = "access"
	AudienceConfirmation = "confirmation"
)

type AuthClaims struct {
	UserID   string `json:"user_id"`  // user identifier(UUID)
	UserName string `json:"username"` // username
	jwt.RegisteredClaims
}

type ConfirmationClaims struct {
	Fingerprint string `json:"fp"` // hex sha256 of the user's mutable auth state
	jwt.RegisteredClaims
}
