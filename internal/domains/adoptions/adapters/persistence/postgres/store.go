package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	petdomain "github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	platformpostgres "github.com/Apurer/pet-adoption-api/internal/platform/postgres"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

const (
	userPetConstraint     = "uq_adoption_applications_user_pet"
	approvedPetConstraint = "uq_adoption_applications_approved_pet"
)

var _ ports.Store = (*Store)(nil)

// Store persists adoption applications in PostgreSQL. Every unit of work is a
// single transaction that row-locks the pet before touching its applications.
type Store struct {
	db *gorm.DB
}

// NewStore wires the store. The caller owns the DB lifecycle.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

type applicationRecord struct {
	ID        int64     `gorm:"primaryKey;column:id"`
	UserID    int64     `gorm:"column:user_id"`
	PetID     int64     `gorm:"column:pet_id"`
	Message   string    `gorm:"column:message"`
	Status    string    `gorm:"column:status"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (applicationRecord) TableName() string { return "adoption_applications" }

func (r *applicationRecord) toProjection() *ports.ApplicationProjection {
	return projection.New(&domain.Application{
		ID:      r.ID,
		UserID:  r.UserID,
		PetID:   r.PetID,
		Message: r.Message,
		Status:  domain.Status(r.Status),
	}, r.CreatedAt, r.UpdatedAt)
}

// petRow is the adoption view of the pets table.
type petRow struct {
	ID      int64  `gorm:"primaryKey;column:id"`
	Name    string `gorm:"column:name"`
	Species string `gorm:"column:species"`
	Breed   string `gorm:"column:breed"`
	Status  string `gorm:"column:status"`
}

func (petRow) TableName() string { return "pets" }

// InTx runs fn inside a database transaction.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx ports.Tx) error) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(ctx, &gormTx{db: db})
	})
}

type listRow struct {
	ID         int64
	UserID     int64
	PetID      int64
	Message    string
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	PetName    string
	PetSpecies string
	PetBreed   string
	PetStatus  string
	UserName   *string
	UserEmail  *string
}

// List joins applications with their pet and applicant, newest first.
func (s *Store) List(ctx context.Context, filter ports.ListFilter) ([]*ports.ApplicationView, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	query := s.db.WithContext(ctx).
		Table("adoption_applications AS a").
		Select(`a.id, a.user_id, a.pet_id, a.message, a.status, a.created_at, a.updated_at,
			p.name AS pet_name, p.species AS pet_species, p.breed AS pet_breed, p.status AS pet_status,
			u.name AS user_name, u.email AS user_email`).
		Joins("JOIN pets p ON p.id = a.pet_id").
		Joins("LEFT JOIN users u ON u.id = a.user_id")
	if filter.UserID != 0 {
		query = query.Where("a.user_id = ?", filter.UserID)
	}
	if filter.PetID != 0 {
		query = query.Where("a.pet_id = ?", filter.PetID)
	}
	if len(filter.Statuses) > 0 {
		values := make([]string, 0, len(filter.Statuses))
		for _, status := range filter.Statuses {
			values = append(values, string(status))
		}
		query = query.Where("a.status = ANY(?)", pq.StringArray(values))
	}
	var rows []listRow
	if err := query.Order("a.created_at DESC, a.id DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	views := make([]*ports.ApplicationView, 0, len(rows))
	for _, row := range rows {
		record := applicationRecord{
			ID:        row.ID,
			UserID:    row.UserID,
			PetID:     row.PetID,
			Message:   row.Message,
			Status:    row.Status,
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
		}
		view := &ports.ApplicationView{
			Application: record.toProjection(),
			Pet: ports.PetSnapshot{
				ID:      row.PetID,
				Name:    row.PetName,
				Species: row.PetSpecies,
				Breed:   row.PetBreed,
				Status:  petdomain.Status(row.PetStatus),
			},
			Applicant: ports.ApplicantSummary{ID: row.UserID},
		}
		if row.UserName != nil {
			view.Applicant.Name = *row.UserName
		}
		if row.UserEmail != nil {
			view.Applicant.Email = *row.UserEmail
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *Store) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres adoption store not configured")
	}
	return nil
}

type gormTx struct {
	db *gorm.DB
}

func (t *gormTx) LockPet(ctx context.Context, petID int64) (*ports.PetSnapshot, error) {
	var row petRow
	err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&row, "id = ?", petID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ports.ErrPetNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ports.PetSnapshot{
		ID:      row.ID,
		Name:    row.Name,
		Species: row.Species,
		Breed:   row.Breed,
		Status:  petdomain.Status(row.Status),
	}, nil
}

func (t *gormTx) SetPetStatus(ctx context.Context, petID int64, status petdomain.Status) error {
	result := t.db.WithContext(ctx).Model(&petRow{}).Where("id = ?", petID).Updates(map[string]any{
		"status":     string(status),
		"updated_at": gorm.Expr("NOW()"),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrPetNotFound
	}
	return nil
}

func (t *gormTx) GetApplication(ctx context.Context, id int64) (*ports.ApplicationProjection, error) {
	var record applicationRecord
	err := t.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ports.ErrApplicationNotFound
	}
	if err != nil {
		return nil, err
	}
	return record.toProjection(), nil
}

func (t *gormTx) HasApplication(ctx context.Context, userID, petID int64) (bool, error) {
	var count int64
	err := t.db.WithContext(ctx).Model(&applicationRecord{}).
		Where("user_id = ? AND pet_id = ?", userID, petID).
		Count(&count).Error
	return count > 0, err
}

func (t *gormTx) InsertApplication(ctx context.Context, app *domain.Application) (*ports.ApplicationProjection, error) {
	if app == nil {
		return nil, errors.New("application is nil")
	}
	record := applicationRecord{
		UserID:  app.UserID,
		PetID:   app.PetID,
		Message: app.Message,
		Status:  string(app.Status),
	}
	if err := t.db.WithContext(ctx).Create(&record).Error; err != nil {
		if constraint, ok := platformpostgres.UniqueViolation(err); ok && constraint == userPetConstraint {
			return nil, domain.ErrDuplicateApplication
		}
		return nil, err
	}
	app.ID = record.ID
	return record.toProjection(), nil
}

func (t *gormTx) UpdateApplicationStatus(ctx context.Context, id int64, status domain.Status) (*ports.ApplicationProjection, error) {
	result := t.db.WithContext(ctx).Model(&applicationRecord{}).Where("id = ?", id).Updates(map[string]any{
		"status":     string(status),
		"updated_at": gorm.Expr("NOW()"),
	})
	if result.Error != nil {
		if constraint, ok := platformpostgres.UniqueViolation(result.Error); ok && constraint == approvedPetConstraint {
			return nil, domain.ErrPetAlreadyAdopted
		}
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrApplicationNotFound
	}
	return t.GetApplication(ctx, id)
}

func (t *gormTx) RejectPendingSiblings(ctx context.Context, petID, exceptID int64) ([]ports.AutoRejection, error) {
	var siblings []applicationRecord
	if err := t.db.WithContext(ctx).
		Select("id", "user_id").
		Where("pet_id = ? AND status = ? AND id <> ?", petID, string(domain.StatusPending), exceptID).
		Order("id").
		Find(&siblings).Error; err != nil {
		return nil, err
	}
	if len(siblings) == 0 {
		return nil, nil
	}
	ids := make([]int64, 0, len(siblings))
	rejected := make([]ports.AutoRejection, 0, len(siblings))
	for _, sibling := range siblings {
		ids = append(ids, sibling.ID)
		rejected = append(rejected, ports.AutoRejection{ApplicationID: sibling.ID, UserID: sibling.UserID})
	}
	if err := t.db.WithContext(ctx).Model(&applicationRecord{}).Where("id IN ?", ids).Updates(map[string]any{
		"status":     string(domain.StatusRejected),
		"updated_at": gorm.Expr("NOW()"),
	}).Error; err != nil {
		return nil, err
	}
	return rejected, nil
}

func (t *gormTx) CountPending(ctx context.Context, petID int64) (int, error) {
	var count int64
	err := t.db.WithContext(ctx).Model(&applicationRecord{}).
		Where("pet_id = ? AND status = ?", petID, string(domain.StatusPending)).
		Count(&count).Error
	return int(count), err
}

func (t *gormTx) Idempotency() ports.IdempotencyStore {
	return NewIdempotencyStore(t.db)
}

func (t *gormTx) DeleteApplication(ctx context.Context, id int64) error {
	result := t.db.WithContext(ctx).Delete(&applicationRecord{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrApplicationNotFound
	}
	return nil
}
