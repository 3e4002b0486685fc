package mapper

import (
	"time"

	petstypes "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
)

// MutationPet captures inbound payloads for create/update flows while preserving field presence.
type MutationPet struct {
	Name        *string `json:"name,omitempty"`
	Species     *string `json:"species,omitempty"`
	Breed       *string `json:"breed,omitempty"`
	Age         *int    `json:"age,omitempty"`
	Gender      *string `json:"gender,omitempty"`
	Description *string `json:"description,omitempty"`
	Image       *string `json:"image,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// Pet is the HTTP representation of a pet.
type Pet struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Species     string    `json:"species"`
	Breed       string    `json:"breed,omitempty"`
	Age         *int      `json:"age,omitempty"`
	Gender      string    `json:"gender,omitempty"`
	Description string    `json:"description,omitempty"`
	Image       string    `json:"image,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

// FromDomainPet maps a domain aggregate into a transport Pet.
func FromDomainPet(p *domain.Pet) Pet {
	var age *int
	if p.Age != nil {
		v := *p.Age
		age = &v
	}
	return Pet{
		ID:          p.ID,
		Name:        p.Name,
		Species:     p.Species,
		Breed:       p.Breed,
		Age:         age,
		Gender:      p.Gender,
		Description: p.Description,
		Image:       p.Image,
		Status:      string(p.Status),
	}
}

// FromProjection maps a persisted pet including its timestamps.
func FromProjection(p *petstypes.PetProjection) Pet {
	if p == nil || p.Entity == nil {
		return Pet{}
	}
	out := FromDomainPet(p.Entity)
	out.CreatedAt = p.Metadata.CreatedAt
	out.UpdatedAt = p.Metadata.UpdatedAt
	return out
}

// FromProjectionList maps a list of persisted pets.
func FromProjectionList(items []*petstypes.PetProjection) []Pet {
	result := make([]Pet, 0, len(items))
	for _, item := range items {
		if item == nil || item.Entity == nil {
			continue
		}
		result = append(result, FromProjection(item))
	}
	return result
}

// ToMutationInput converts a mutation payload into an application mutation input while preserving field presence.
func ToMutationInput(model MutationPet) petstypes.PetMutationInput {
	return petstypes.PetMutationInput{
		Name:        cloneString(model.Name),
		Species:     cloneString(model.Species),
		Breed:       cloneString(model.Breed),
		Age:         cloneInt(model.Age),
		Gender:      cloneString(model.Gender),
		Description: cloneString(model.Description),
		Image:       cloneString(model.Image),
		Status:      cloneString(model.Status),
	}
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	copy := *v
	return &copy
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	copy := *v
	return &copy
}
