package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
)

var (
	// ErrInvalidInput signals a malformed identifier or a disallowed status value.
	ErrInvalidInput = errors.New("invalid adoption input")
	// ErrConflict signals the request is incompatible with the current pet or application state.
	ErrConflict = errors.New("adoption conflict")
	// ErrForbidden signals the caller may not act on the application.
	ErrForbidden = errors.New("adoption action forbidden")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrConflict), errors.Is(err, ErrForbidden):
		return err
	case errors.Is(err, domain.ErrInvalidPetID),
		errors.Is(err, domain.ErrInvalidUserID),
		errors.Is(err, domain.ErrInvalidApplicationID),
		errors.Is(err, domain.ErrMessageTooLong),
		errors.Is(err, domain.ErrInvalidDecision),
		errors.Is(err, domain.ErrInvalidStatus):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case errors.Is(err, domain.ErrPetNotAdoptable),
		errors.Is(err, domain.ErrDuplicateApplication),
		errors.Is(err, domain.ErrPetAlreadyAdopted),
		errors.Is(err, domain.ErrAlreadyDecided),
		errors.Is(err, ports.ErrIdempotencyConflict):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case errors.Is(err, domain.ErrNotOwner):
		return fmt.Errorf("%w: %w", ErrForbidden, err)
	}
	return err
}
