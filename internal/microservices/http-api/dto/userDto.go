package dto

import "yamdb/internal/microservices/http-api/models"

// CreateUserDTO is what an admin posts to /users
type CreateUserDTO struct {
	Username  string `json:"username" binding:"required,max=150,username"`
	Email     string `json:"email" binding:"required,email,max=254"`
	Role      string `json:"role,omitempty" binding:"omitempty,oneof=user moderator admin"`
	FirstName string `json:"first_name,omitempty" binding:"max=150"`
	LastName  string `json:"last_name,omitempty" binding:"max=150"`
	Bio       string `json:"bio,omitempty"`
}

// UpdateUserDTO is a partial profile update; Role is ignored on /users/me
type UpdateUserDTO struct {
	Username  *string `json:"username,omitempty" binding:"omitempty,max=150,username"`
	Email     *string `json:"email,omitempty" binding:"omitempty,email,max=254"`
	Role      *string `json:"role,omitempty" binding:"omitempty,oneof=user moderator admin"`
	FirstName *string `json:"first_name,omitempty" binding:"omitempty,max=150"`
	LastName  *string `json:"last_name,omitempty" binding:"omitempty,max=150"`
	Bio       *string `json:"bio,omitempty"`
}

type UserResponse struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Bio       string `json:"bio"`
}

func FromModelToUserResponse(u models.User) UserResponse {
	return UserResponse{
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role.String(),
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Bio:       u.Bio,
	}
}
