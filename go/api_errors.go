package adoptionserver

import (
	"errors"

	"github.com/gin-gonic/gin"

	adoptionapp "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application"
	adoptionports "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	petsapp "github.com/Apurer/pet-adoption-api/internal/domains/pets/application"
	petsports "github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
	userapp "github.com/Apurer/pet-adoption-api/internal/domains/users/application"
	userports "github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
	"github.com/Apurer/pet-adoption-api/internal/platform/auth"
	apierrors "github.com/Apurer/pet-adoption-api/internal/shared/errors"
)

// NewResponder builds the problem responder with every bounded context's error mapping.
func NewResponder(baseURI string) *apierrors.Responder {
	return apierrors.NewResponder(baseURI, mapPetError, mapUserError, mapAdoptionError, mapAuthError)
}

func mapPetError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, petsports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()).WithExtension("resourceType", "Pet"), true
	case errors.Is(err, petsapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func mapUserError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, userports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()).WithExtension("resourceType", "User"), true
	case errors.Is(err, userapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, userapp.ErrAuthentication):
		return apierrors.ErrUnauthorized.WithDetail("invalid email or password"), true
	case errors.Is(err, userapp.ErrConflict):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func mapAdoptionError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, adoptionports.ErrApplicationNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()).WithExtension("resourceType", "AdoptionApplication"), true
	case errors.Is(err, adoptionports.ErrPetNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()).WithExtension("resourceType", "Pet"), true
	case errors.Is(err, adoptionapp.ErrConflict):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	case errors.Is(err, adoptionapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, adoptionapp.ErrForbidden):
		return apierrors.ErrForbidden.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func mapAuthError(err error) (apierrors.ProblemDetail, bool) {
	if errors.Is(err, auth.ErrInvalidToken) {
		return apierrors.ErrUnauthorized.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

// respondBadRequest reports a malformed path parameter or body.
func respondBadRequest(c *gin.Context, responder *apierrors.Responder, err error) {
	responder.Respond(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
}
