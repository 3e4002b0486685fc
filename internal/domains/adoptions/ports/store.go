package ports

import (
	"context"
	"errors"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	petdomain "github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

var (
	ErrApplicationNotFound = errors.New("adoption application not found")
	ErrPetNotFound         = errors.New("pet not found")
)

// ApplicationProjection is a persisted application plus timestamps.
type ApplicationProjection = projection.Projection[*domain.Application]

// PetSnapshot is the slice of pet state the lifecycle rules need.
type PetSnapshot struct {
	ID      int64
	Name    string
	Species string
	Breed   string
	Status  petdomain.Status
}

// ApplicantSummary is the user projection shown next to an application.
type ApplicantSummary struct {
	ID    int64
	Name  string
	Email string
}

// ApplicationView joins an application with display fields of its pet and applicant.
type ApplicationView struct {
	Application *ApplicationProjection
	Pet         PetSnapshot
	Applicant   ApplicantSummary
}

// AutoRejection identifies a sibling application rejected by an approval.
type AutoRejection struct {
	ApplicationID int64
	UserID        int64
}

// ListFilter narrows a listing; zero values mean no constraint.
type ListFilter struct {
	UserID   int64
	PetID    int64
	Statuses []domain.Status
}

// Store runs adoption mutations as a single unit of work.
type Store interface {
	// InTx executes fn atomically. Nothing fn wrote is visible to other
	// callers unless fn returns nil.
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	List(ctx context.Context, filter ListFilter) ([]*ApplicationView, error)
}

// Tx is the transactional view handed to InTx callbacks.
type Tx interface {
	// LockPet loads the pet and holds it exclusively until the unit of work ends.
	LockPet(ctx context.Context, petID int64) (*PetSnapshot, error)
	SetPetStatus(ctx context.Context, petID int64, status petdomain.Status) error

	GetApplication(ctx context.Context, id int64) (*ApplicationProjection, error)
	HasApplication(ctx context.Context, userID, petID int64) (bool, error)
	InsertApplication(ctx context.Context, app *domain.Application) (*ApplicationProjection, error)
	UpdateApplicationStatus(ctx context.Context, id int64, status domain.Status) (*ApplicationProjection, error)
	// RejectPendingSiblings rejects every pending application of petID except exceptID.
	RejectPendingSiblings(ctx context.Context, petID, exceptID int64) ([]AutoRejection, error)
	CountPending(ctx context.Context, petID int64) (int, error)
	DeleteApplication(ctx context.Context, id int64) error

	// Idempotency exposes the key store enrolled in this unit of work.
	Idempotency() IdempotencyStore
}
