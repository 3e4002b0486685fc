package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists pets in PostgreSQL using GORM-mapped columns.
// The schema is owned by internal/platform/migrations.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. The caller owns the DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type petRecord struct {
	ID          int64     `gorm:"primaryKey;column:id"`
	Name        string    `gorm:"column:name"`
	Species     string    `gorm:"column:species"`
	Breed       string    `gorm:"column:breed"`
	Age         *int      `gorm:"column:age"`
	Gender      string    `gorm:"column:gender"`
	Description string    `gorm:"column:description"`
	Image       string    `gorm:"column:image"`
	Status      string    `gorm:"column:status"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (petRecord) TableName() string { return "pets" }

// newPetRecord maps the aggregate to its row.
func newPetRecord(p *domain.Pet) petRecord {
	return petRecord{
		ID:          p.ID,
		Name:        p.Name,
		Species:     p.Species,
		Breed:       p.Breed,
		Age:         cloneIntPtr(p.Age),
		Gender:      p.Gender,
		Description: p.Description,
		Image:       p.Image,
		Status:      string(p.Status),
	}
}

// toDomain hydrates the aggregate from the row.
func (r *petRecord) toDomain() *domain.Pet {
	return &domain.Pet{
		ID:          r.ID,
		Name:        r.Name,
		Species:     r.Species,
		Breed:       r.Breed,
		Age:         cloneIntPtr(r.Age),
		Gender:      r.Gender,
		Description: r.Description,
		Image:       r.Image,
		Status:      domain.Status(r.Status),
	}
}

// toProjection wraps the hydrated aggregate with its timestamps.
func (r *petRecord) toProjection() *projection.Projection[*domain.Pet] {
	return projection.New(r.toDomain(), r.CreatedAt, r.UpdatedAt)
}

// Save inserts a new pet when the ID is zero, otherwise updates the existing row.
func (r *Repository) Save(ctx context.Context, pet *domain.Pet) (*projection.Projection[*domain.Pet], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if pet == nil {
		return nil, errors.New("cannot save nil pet")
	}
	record := newPetRecord(pet)
	db := r.db.WithContext(ctx)
	if record.ID == 0 {
		if err := db.Create(&record).Error; err != nil {
			return nil, err
		}
		pet.ID = record.ID
		return r.GetByID(ctx, record.ID)
	}
	result := db.Model(&petRecord{}).Where("id = ?", record.ID).Updates(map[string]any{
		"name":        record.Name,
		"species":     record.Species,
		"breed":       record.Breed,
		"age":         record.Age,
		"gender":      record.Gender,
		"description": record.Description,
		"image":       record.Image,
		"status":      record.Status,
		"updated_at":  gorm.Expr("NOW()"),
	})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, record.ID)
}

// GetByID fetches a pet by identifier.
func (r *Repository) GetByID(ctx context.Context, id int64) (*projection.Projection[*domain.Pet], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record petRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toProjection(), nil
}

// Delete removes a pet by identifier. Applications referencing it cascade.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&petRecord{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// FindByStatus returns pets matching any provided status.
func (r *Repository) FindByStatus(ctx context.Context, statuses []domain.Status) ([]*projection.Projection[*domain.Pet], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if len(statuses) == 0 {
		return nil, nil
	}
	values := make([]string, 0, len(statuses))
	for _, status := range statuses {
		values = append(values, string(status))
	}
	var records []petRecord
	if err := r.db.WithContext(ctx).
		Where("status = ANY(?)", pq.StringArray(values)).
		Order("id").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return recordsToProjections(records), nil
}

// List returns every pet ordered by identifier.
func (r *Repository) List(ctx context.Context) ([]*projection.Projection[*domain.Pet], error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []petRecord
	if err := r.db.WithContext(ctx).Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	return recordsToProjections(records), nil
}

func recordsToProjections(records []petRecord) []*projection.Projection[*domain.Pet] {
	result := make([]*projection.Projection[*domain.Pet], 0, len(records))
	for i := range records {
		result = append(result, records[i].toProjection())
	}
	return result
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres repository not configured")
	}
	return nil
}

func cloneIntPtr(v *int) *int {
	if v == nil {
		return nil
	}
	copy := *v
	return &copy
}
