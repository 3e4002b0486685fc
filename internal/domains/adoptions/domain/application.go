// Package domain holds the adoption application aggregate and the rules that
// keep a pet's adoptability consistent with the applications filed against it.
package domain

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// Status is the lifecycle state of an adoption application.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// MaxMessageLength bounds the applicant's free-text justification.
const MaxMessageLength = 2000

var (
	ErrInvalidPetID         = errors.New("pet id must be positive")
	ErrInvalidUserID        = errors.New("user id must be positive")
	ErrInvalidApplicationID = errors.New("application id must be positive")
	ErrMessageTooLong       = errors.New("message exceeds maximum length")
	ErrInvalidDecision      = errors.New("decision must be approved or rejected")
	ErrInvalidStatus        = errors.New("status must be pending, approved or rejected")

	ErrPetNotAdoptable      = errors.New("pet is not available for adoption")
	ErrDuplicateApplication = errors.New("an application for this pet already exists")
	ErrPetAlreadyAdopted    = errors.New("pet has already been adopted")
	ErrAlreadyDecided       = errors.New("application has already been decided")

	ErrNotOwner = errors.New("application belongs to another user")
)

// Application is a user's request to adopt a specific pet.
type Application struct {
	ID      int64
	UserID  int64
	PetID   int64
	Message string
	Status  Status
}

// NewApplication validates the submission and builds a pending application.
func NewApplication(userID, petID int64, message string) (*Application, error) {
	if userID <= 0 {
		return nil, ErrInvalidUserID
	}
	if petID <= 0 {
		return nil, ErrInvalidPetID
	}
	message = strings.TrimSpace(message)
	if utf8.RuneCountInString(message) > MaxMessageLength {
		return nil, ErrMessageTooLong
	}
	return &Application{UserID: userID, PetID: petID, Message: message, Status: StatusPending}, nil
}

// ParseStatus validates a raw status filter value.
func ParseStatus(raw string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(raw)))
	switch status {
	case StatusPending, StatusApproved, StatusRejected:
		return status, nil
	}
	return "", ErrInvalidStatus
}

// ParseDecision validates an administrator decision.
func ParseDecision(raw string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(raw)))
	if status != StatusApproved && status != StatusRejected {
		return "", ErrInvalidDecision
	}
	return status, nil
}

// Decide moves a pending application to a terminal state.
func (a *Application) Decide(decision Status) error {
	if decision != StatusApproved && decision != StatusRejected {
		return ErrInvalidDecision
	}
	if a.Status != StatusPending {
		return ErrAlreadyDecided
	}
	a.Status = decision
	return nil
}

// RemovableBy reports whether the caller may withdraw the application.
func (a *Application) RemovableBy(userID int64, admin bool) bool {
	return admin || a.UserID == userID
}

// Clone returns a copy of the aggregate.
func (a *Application) Clone() *Application {
	if a == nil {
		return nil
	}
	copy := *a
	return &copy
}
