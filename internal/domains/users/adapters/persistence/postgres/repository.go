package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
	platformpostgres "github.com/Apurer/pet-adoption-api/internal/platform/postgres"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists users in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type userRecord struct {
	ID           int64     `gorm:"primaryKey;column:id"`
	Name         string    `gorm:"column:name"`
	Email        string    `gorm:"column:email"`
	PasswordHash string    `gorm:"column:password_hash"`
	Role         string    `gorm:"column:role"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (userRecord) TableName() string { return "users" }

// Create inserts a user; a duplicate email maps to ports.ErrEmailTaken.
func (r *Repository) Create(ctx context.Context, user *domain.User) (*projection.Projection[*domain.User], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user is nil")
	}
	record := toRecord(user)
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		if _, ok := platformpostgres.UniqueViolation(err); ok {
			return nil, ports.ErrEmailTaken
		}
		return nil, err
	}
	user.ID = record.ID
	return record.toProjection(), nil
}

// GetByID loads a user by identifier.
func (r *Repository) GetByID(ctx context.Context, id int64) (*projection.Projection[*domain.User], error) {
	return r.first(ctx, "id = ?", id)
}

// GetByEmail loads a user by normalized email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*projection.Projection[*domain.User], error) {
	return r.first(ctx, "email = ?", domain.NormalizeEmail(email))
}

// FindByIDs returns the known users among ids.
func (r *Repository) FindByIDs(ctx context.Context, ids []int64) (map[int64]*domain.User, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	result := make(map[int64]*domain.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var records []userRecord
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&records).Error; err != nil {
		return nil, err
	}
	for i := range records {
		result[records[i].ID] = records[i].toDomain()
	}
	return result, nil
}

func (r *Repository) first(ctx context.Context, query string, arg any) (*projection.Projection[*domain.User], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record userRecord
	if err := r.db.WithContext(ctx).Where(query, arg).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toProjection(), nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres user repository not configured")
	}
	return nil
}

func toRecord(u *domain.User) userRecord {
	return userRecord{
		ID:           u.ID,
		Name:         u.Name,
		Email:        domain.NormalizeEmail(u.Email),
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
	}
}

func (r *userRecord) toDomain() *domain.User {
	return &domain.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Role:         domain.Role(r.Role),
	}
}

func (r *userRecord) toProjection() *projection.Projection[*domain.User] {
	return projection.New(r.toDomain(), r.CreatedAt, r.UpdatedAt)
}
