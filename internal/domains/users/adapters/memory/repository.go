package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory user store used for demos/tests.
type Repository struct {
	mu      sync.RWMutex
	users   map[int64]*storedUser
	byEmail map[string]int64
	nextID  int64
	now     func() time.Time
}

type storedUser struct {
	user     domain.User
	metadata projection.Metadata
}

// NewRepository constructs an empty store.
func NewRepository() *Repository {
	return &Repository{
		users:   map[int64]*storedUser{},
		byEmail: map[string]int64{},
		now:     time.Now,
	}
}

// Create inserts a user and assigns its identifier.
func (r *Repository) Create(_ context.Context, user *domain.User) (*projection.Projection[*domain.User], error) {
	if user == nil {
		return nil, errors.New("user is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	email := domain.NormalizeEmail(user.Email)
	if _, taken := r.byEmail[email]; taken {
		return nil, ports.ErrEmailTaken
	}
	r.nextID++
	user.ID = r.nextID
	ts := r.now()
	stored := &storedUser{user: *user, metadata: projection.Created(ts)}
	stored.user.Email = email
	r.users[user.ID] = stored
	r.byEmail[email] = user.ID
	return stored.projection(), nil
}

// GetByID loads a user by identifier.
func (r *Repository) GetByID(_ context.Context, id int64) (*projection.Projection[*domain.User], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.users[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return stored.projection(), nil
}

// GetByEmail loads a user by normalized email.
func (r *Repository) GetByEmail(_ context.Context, email string) (*projection.Projection[*domain.User], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[domain.NormalizeEmail(email)]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return r.users[id].projection(), nil
}

// FindByIDs returns the known users among ids.
func (r *Repository) FindByIDs(_ context.Context, ids []int64) (map[int64]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make(map[int64]*domain.User, len(ids))
	for _, id := range ids {
		if stored, ok := r.users[id]; ok {
			copy := stored.user
			result[id] = &copy
		}
	}
	return result, nil
}

func (s *storedUser) projection() *projection.Projection[*domain.User] {
	copy := s.user
	return projection.New(&copy, s.metadata.CreatedAt, s.metadata.UpdatedAt)
}
