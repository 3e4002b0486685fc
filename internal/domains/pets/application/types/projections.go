package types

import (
	"github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	"github.com/Apurer/pet-adoption-api/internal/shared/projection"
)

// PetProjection transports a domain aggregate together with its persistence metadata.
type PetProjection = projection.Projection[*domain.Pet]

// PetMutationInput captures create/update payloads while preserving field presence.
type PetMutationInput struct {
	Name        *string
	Species     *string
	Breed       *string
	Age         *int
	Gender      *string
	Description *string
	Image       *string
	Status      *string
}

// AddPetInput creates a new pet.
type AddPetInput struct {
	PetMutationInput
}

// UpdatePetInput applies a partial administrative edit.
type UpdatePetInput struct {
	ID int64
	PetMutationInput
}

// FindPetsByStatusInput filters the catalog; empty means every status.
type FindPetsByStatusInput struct {
	Statuses []string
}

// PetIdentifier addresses a single pet.
type PetIdentifier struct {
	ID int64
}
