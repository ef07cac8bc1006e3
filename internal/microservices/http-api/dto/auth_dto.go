package dto

// Data Transfer Objects for signup and token exchange

// SignupRequest: payload for POST /auth/signup, echoed back on success
type SignupRequest struct {
	Email    string `json:"email" binding:"required,email,max=254"`
	Username string `json:"username" binding:"required,max=150,username"`
}

// TokenRequest: payload for exchanging a confirmation code for an access token
type TokenRequest struct {
	Username         string `json:"username" binding:"required"`
	ConfirmationCode string `json:"confirmation_code" binding:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}
