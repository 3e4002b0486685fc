package adoptionserver

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	pethttpmapper "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/http/mapper"
	petstypes "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
	petsports "github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
	apierrors "github.com/Apurer/pet-adoption-api/internal/shared/errors"
)

// PetAPI wires HTTP transport with the pets bounded context service.
type PetAPI struct {
	service   petsports.Service
	responder *apierrors.Responder
}

// NewPetAPI creates a PetAPI backed by the provided service.
func NewPetAPI(service petsports.Service, responder *apierrors.Responder) PetAPI {
	if responder == nil {
		responder = NewResponder("")
	}
	return PetAPI{service: service, responder: responder}
}

// Get /api/pets
// Lists pets, optionally filtered by one or more status values
func (api *PetAPI) FindPets(c *gin.Context) {
	result, err := api.service.FindByStatus(c.Request.Context(), petstypes.FindPetsByStatusInput{Statuses: c.QueryArray("status")})
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pethttpmapper.FromProjectionList(result))
}

// Get /api/pets/:petId
// Find pet by ID
func (api *PetAPI) GetPetById(c *gin.Context) {
	id, ok := parseIDParam(c, api.responder, "petId")
	if !ok {
		return
	}
	pet, err := api.service.GetByID(c.Request.Context(), petstypes.PetIdentifier{ID: id})
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pethttpmapper.FromProjection(pet))
}

// Post /api/pets
// Add a new pet to the catalog
func (api *PetAPI) AddPet(c *gin.Context) {
	var payload pethttpmapper.MutationPet
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, api.responder, err)
		return
	}
	saved, err := api.service.AddPet(c.Request.Context(), petstypes.AddPetInput{PetMutationInput: pethttpmapper.ToMutationInput(payload)})
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pethttpmapper.FromProjection(saved))
}

// Put /api/pets/:petId
// Update an existing pet, including a direct status edit
func (api *PetAPI) UpdatePet(c *gin.Context) {
	id, ok := parseIDParam(c, api.responder, "petId")
	if !ok {
		return
	}
	var payload pethttpmapper.MutationPet
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, api.responder, err)
		return
	}
	updated, err := api.service.UpdatePet(c.Request.Context(), petstypes.UpdatePetInput{
		ID:               id,
		PetMutationInput: pethttpmapper.ToMutationInput(payload),
	})
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pethttpmapper.FromProjection(updated))
}

// Delete /api/pets/:petId
// Deletes a pet together with its applications
func (api *PetAPI) DeletePet(c *gin.Context) {
	id, ok := parseIDParam(c, api.responder, "petId")
	if !ok {
		return
	}
	if err := api.service.Delete(c.Request.Context(), petstypes.PetIdentifier{ID: id}); err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "pet deleted"})
}

func parseIDParam(c *gin.Context, responder *apierrors.Responder, name string) (int64, bool) {
	value := c.Param(name)
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		responder.Respond(c, apierrors.ErrBadRequest.WithDetail(fmt.Sprintf("%s must be a positive integer", name)))
		return 0, false
	}
	return id, true
}
