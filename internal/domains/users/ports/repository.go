package ports

import (
	"context"
	"errors"
	"time"

	"github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Repository persists user accounts. Create assigns the identifier.
type Repository interface {
	Create(ctx context.Context, user *domain.User) (*projection.Projection[*domain.User], error)
	GetByID(ctx context.Context, id int64) (*projection.Projection[*domain.User], error)
	GetByEmail(ctx context.Context, email string) (*projection.Projection[*domain.User], error)
	// FindByIDs returns the users that exist among ids; unknown ids are skipped.
	FindByIDs(ctx context.Context, ids []int64) (map[int64]*domain.User, error)
}

// TokenIssuer signs bearer tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID int64, email, role string) (string, time.Time, error)
}
