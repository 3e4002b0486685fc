package ports

import (
	"context"
	"time"

	"github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

// UserProjection is a persisted user plus timestamps.
type UserProjection = projection.Projection[*domain.User]

// RegisterInput carries a self-service sign up.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *UserProjection
}

// Service exposes user bounded context use cases to adapters.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*UserProjection, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	GetByID(ctx context.Context, id int64) (*UserProjection, error)
	// EnsureAdmin creates the admin account if the email is not yet registered.
	EnsureAdmin(ctx context.Context, input RegisterInput) (*UserProjection, error)
}
