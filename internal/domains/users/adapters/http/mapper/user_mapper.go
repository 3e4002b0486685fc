package mapper

import (
	"time"

	userports "github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
)

// RegisterRequest is the sign-up payload.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest is the credential payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// User represents the transport-level user payload. The password hash never leaves the service.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// LoginResponse carries the bearer token for subsequent calls.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

// ToRegisterInput converts the sign-up payload.
func ToRegisterInput(req RegisterRequest) userports.RegisterInput {
	return userports.RegisterInput{Name: req.Name, Email: req.Email, Password: req.Password}
}

// FromProjection converts a persisted user into its transport representation.
func FromProjection(p *userports.UserProjection) User {
	if p == nil || p.Entity == nil {
		return User{}
	}
	return User{
		ID:        p.Entity.ID,
		Name:      p.Entity.Name,
		Email:     p.Entity.Email,
		Role:      string(p.Entity.Role),
		CreatedAt: p.Metadata.CreatedAt,
	}
}

// FromLoginResult converts a login outcome.
func FromLoginResult(result *userports.LoginResult) LoginResponse {
	if result == nil {
		return LoginResponse{}
	}
	return LoginResponse{Token: result.Token, ExpiresAt: result.ExpiresAt, User: FromProjection(result.User)}
}
