package application

import (
	"context"
	"errors"
	"strings"

	"github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
)

// Service exposes user bounded context use cases.
type Service struct {
	repo   ports.Repository
	tokens ports.TokenIssuer
}

// NewService wires the users service with its repository and token issuer.
func NewService(repo ports.Repository, tokens ports.TokenIssuer) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Register creates a regular account.
func (s *Service) Register(ctx context.Context, input ports.RegisterInput) (*ports.UserProjection, error) {
	return s.create(ctx, input, domain.RoleUser)
}

// EnsureAdmin seeds the administrator account once; an existing account with
// the same email is returned unchanged.
func (s *Service) EnsureAdmin(ctx context.Context, input ports.RegisterInput) (*ports.UserProjection, error) {
	existing, err := s.repo.GetByEmail(ctx, domain.NormalizeEmail(input.Email))
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ports.ErrNotFound) {
		return nil, mapError(err)
	}
	return s.create(ctx, input, domain.RoleAdmin)
}

func (s *Service) create(ctx context.Context, input ports.RegisterInput, role domain.Role) (*ports.UserProjection, error) {
	user, err := domain.NewUser(input.Name, input.Email, input.Password, role)
	if err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

// Login verifies credentials and issues a bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || strings.TrimSpace(password) == "" {
		return nil, mapError(ports.ErrInvalidCredentials)
	}
	found, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, mapError(ports.ErrInvalidCredentials)
		}
		return nil, mapError(err)
	}
	user := found.Entity
	if !user.CheckPassword(password) {
		return nil, mapError(ports.ErrInvalidCredentials)
	}
	if s.tokens == nil {
		return nil, errors.New("token issuer not configured")
	}
	token, expiresAt, err := s.tokens.Issue(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}
	return &ports.LoginResult{Token: token, ExpiresAt: expiresAt, User: found}, nil
}

// GetByID loads a user.
func (s *Service) GetByID(ctx context.Context, id int64) (*ports.UserProjection, error) {
	found, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	return found, nil
}

var _ ports.Service = (*Service)(nil)
