package adoptionserver

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	adoptionhttpmapper "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/adapters/http/mapper"
	adoptionports "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	apierrors "github.com/Apurer/pet-adoption-api/internal/shared/errors"
)

// AdoptionAPI exposes the adoption lifecycle manager.
type AdoptionAPI struct {
	service   adoptionports.Service
	workflows adoptionports.WorkflowOrchestrator
	responder *apierrors.Responder
}

// NewAdoptionAPI wires the lifecycle manager. Decisions go through workflows when set.
func NewAdoptionAPI(service adoptionports.Service, workflows adoptionports.WorkflowOrchestrator, responder *apierrors.Responder) AdoptionAPI {
	if responder == nil {
		responder = NewResponder("")
	}
	return AdoptionAPI{service: service, workflows: workflows, responder: responder}
}

// Post /api/pets/:petId/adopt
// Submit an adoption application for the caller
func (api *AdoptionAPI) SubmitApplication(c *gin.Context) {
	petID, ok := parseIDParam(c, api.responder, "petId")
	if !ok {
		return
	}
	var payload adoptionhttpmapper.AdoptRequest
	if err := c.ShouldBindJSON(&payload); err != nil && !errors.Is(err, io.EOF) {
		respondBadRequest(c, api.responder, err)
		return
	}
	identity, _ := identityFrom(c)
	created, err := api.service.Submit(c.Request.Context(), adoptionports.SubmitInput{
		UserID:         identity.UserID,
		PetID:          petID,
		Message:        payload.Message,
		IdempotencyKey: strings.TrimSpace(c.GetHeader(HeaderIdempotencyKey)),
	})
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, adoptionhttpmapper.FromProjection(created))
}

// Put /api/adoptions/:id
// Approve or reject an application
func (api *AdoptionAPI) DecideApplication(c *gin.Context) {
	id, ok := parseIDParam(c, api.responder, "id")
	if !ok {
		return
	}
	var payload adoptionhttpmapper.DecisionRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, api.responder, err)
		return
	}
	input := adoptionports.DecideInput{
		ApplicationID:  id,
		Status:         payload.Status,
		IdempotencyKey: strings.TrimSpace(c.GetHeader(HeaderIdempotencyKey)),
	}
	var (
		outcome *adoptionports.DecisionOutcome
		err     error
	)
	if api.workflows != nil {
		outcome, err = api.workflows.DecideApplication(c.Request.Context(), input)
	} else {
		outcome, err = api.service.Decide(c.Request.Context(), input)
	}
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, adoptionhttpmapper.FromDecision(outcome))
}

// Delete /api/adoptions/:id
// Withdraw an application; owners and administrators only
func (api *AdoptionAPI) DeleteApplication(c *gin.Context) {
	id, ok := parseIDParam(c, api.responder, "id")
	if !ok {
		return
	}
	identity, _ := identityFrom(c)
	outcome, err := api.service.Delete(c.Request.Context(), adoptionports.DeleteInput{
		ApplicationID: id,
		Caller:        adoptionports.Caller{UserID: identity.UserID, Admin: identity.IsAdmin()},
	})
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, adoptionhttpmapper.FromDeletion(outcome))
}

// Get /api/adoptions/user/:userId
// List a user's applications with pet projections
func (api *AdoptionAPI) ListUserApplications(c *gin.Context) {
	userID, ok := parseIDParam(c, api.responder, "userId")
	if !ok {
		return
	}
	identity, _ := identityFrom(c)
	result, err := api.service.ListForUser(c.Request.Context(), adoptionports.Caller{UserID: identity.UserID, Admin: identity.IsAdmin()}, userID)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, adoptionhttpmapper.FromViewList(result))
}

// Get /api/adoptions/all
// List every application, optionally filtered by status and pet
func (api *AdoptionAPI) ListAllApplications(c *gin.Context) {
	input := adoptionports.ListInput{Statuses: c.QueryArray("status")}
	if raw := c.Query("petId"); raw != "" {
		petID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || petID <= 0 {
			api.responder.Respond(c, apierrors.ErrBadRequest.WithDetail("petId must be a positive integer"))
			return
		}
		input.PetID = petID
	}
	result, err := api.service.List(c.Request.Context(), input)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, adoptionhttpmapper.FromViewList(result))
}
