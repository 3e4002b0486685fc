package adoptions

import (
	"errors"
	"fmt"
	"strings"

	"go.temporal.io/sdk/temporal"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
)

// Application error types carried across the workflow boundary.
const (
	ErrTypeApplicationNotFound = "AdoptionApplicationNotFound"
	ErrTypePetNotFound         = "AdoptionPetNotFound"
	ErrTypeConflict            = "AdoptionConflict"
	ErrTypeInvalidInput        = "AdoptionInvalidInput"
	ErrTypeForbidden           = "AdoptionForbidden"
)

var errorTypes = []struct {
	name     string
	sentinel error
}{
	{ErrTypeApplicationNotFound, ports.ErrApplicationNotFound},
	{ErrTypePetNotFound, ports.ErrPetNotFound},
	{ErrTypeConflict, application.ErrConflict},
	{ErrTypeInvalidInput, application.ErrInvalidInput},
	{ErrTypeForbidden, application.ErrForbidden},
}

// EncodeError converts taxonomy errors into non-retryable Temporal errors.
// Anything else is returned unchanged and retried by the activity policy.
func EncodeError(err error) error {
	if err == nil {
		return nil
	}
	for _, t := range errorTypes {
		if errors.Is(err, t.sentinel) {
			return temporal.NewNonRetryableApplicationError(err.Error(), t.name, err)
		}
	}
	return err
}

// DecodeError restores the taxonomy sentinel from a workflow failure.
func DecodeError(err error) error {
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return err
	}
	message := appErr.Error()
	for _, t := range errorTypes {
		if appErr.Type() != t.name {
			continue
		}
		if t.sentinel == application.ErrConflict {
			for _, cause := range conflictCauses {
				if strings.Contains(message, cause.Error()) {
					return fmt.Errorf("%w: %w", application.ErrConflict, cause)
				}
			}
		}
		return fmt.Errorf("%w: %s", t.sentinel, message)
	}
	return err
}

var conflictCauses = []error{
	domain.ErrPetNotAdoptable,
	domain.ErrDuplicateApplication,
	domain.ErrPetAlreadyAdopted,
	domain.ErrAlreadyDecided,
	ports.ErrIdempotencyConflict,
}
