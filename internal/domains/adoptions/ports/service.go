package ports

import (
	"context"

	petdomain "github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
)

// Caller is the authenticated actor on whose behalf an operation runs.
type Caller struct {
	UserID int64
	Admin  bool
}

// SubmitInput files a new application. A non-empty IdempotencyKey replays the
// first response for the same user and key.
type SubmitInput struct {
	UserID         int64
	PetID          int64
	Message        string
	IdempotencyKey string
}

// DecideInput carries an administrator decision. A non-empty IdempotencyKey
// replays the first outcome recorded under that key.
type DecideInput struct {
	ApplicationID  int64
	Status         string
	IdempotencyKey string
}

// DeleteInput withdraws an application.
type DeleteInput struct {
	ApplicationID int64
	Caller        Caller
}

// ListInput filters applications. Statuses are raw values validated by the service.
type ListInput struct {
	UserID   int64
	PetID    int64
	Statuses []string
}

// DecisionOutcome reports everything a decision changed.
type DecisionOutcome struct {
	Application  *ApplicationProjection
	Pet          PetSnapshot
	AutoRejected []AutoRejection
	// Replayed marks an outcome loaded from an idempotency record instead of applied now.
	Replayed bool `json:",omitempty"`
}

// DeletionOutcome reports the pet state after an application is removed.
type DeletionOutcome struct {
	ApplicationID int64
	PetID         int64
	PetStatus     petdomain.Status
}

// Service exposes the adoption lifecycle use cases to adapters.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*ApplicationProjection, error)
	Decide(ctx context.Context, input DecideInput) (*DecisionOutcome, error)
	Delete(ctx context.Context, input DeleteInput) (*DeletionOutcome, error)
	List(ctx context.Context, input ListInput) ([]*ApplicationView, error)
	// ListForUser lists a user's applications; only the user or an admin may read them.
	ListForUser(ctx context.Context, caller Caller, userID int64) ([]*ApplicationView, error)
	// NotifyDecision informs the decided applicant and every auto-rejected sibling.
	NotifyDecision(ctx context.Context, outcome DecisionOutcome) error
	Inbox(ctx context.Context, userID int64) ([]Message, error)
}
