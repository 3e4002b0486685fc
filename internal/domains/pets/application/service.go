package application

import (
	"context"

	types "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
)

// Service orchestrates the pets bounded context use cases.
type Service struct {
	repo ports.Repository
}

// NewService wires the pets service with its dependencies.
func NewService(repo ports.Repository) *Service {
	return &Service{repo: repo}
}

// AddPet persists a new pet aggregate.
func (s *Service) AddPet(ctx context.Context, input types.AddPetInput) (*types.PetProjection, error) {
	pet, err := buildPetFromMutation(input.PetMutationInput)
	if err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Save(ctx, pet)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

// UpdatePet applies an administrative edit. A status supplied here bypasses
// the adoption lifecycle on purpose.
func (s *Service) UpdatePet(ctx context.Context, input types.UpdatePetInput) (*types.PetProjection, error) {
	existing, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, mapError(err)
	}
	pet := existing.Entity
	if err := applyPartialMutation(pet, input.PetMutationInput); err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Save(ctx, pet)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

// FindByStatus searches pets matching any of the provided statuses.
func (s *Service) FindByStatus(ctx context.Context, input types.FindPetsByStatusInput) ([]*types.PetProjection, error) {
	if len(input.Statuses) == 0 {
		result, err := s.repo.List(ctx)
		if err != nil {
			return nil, mapError(err)
		}
		return result, nil
	}
	statuses := make([]domain.Status, 0, len(input.Statuses))
	for _, raw := range input.Statuses {
		status, err := domain.ParseStatus(raw)
		if err != nil {
			return nil, mapError(err)
		}
		statuses = append(statuses, status)
	}
	result, err := s.repo.FindByStatus(ctx, statuses)
	if err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

// GetByID loads a single pet aggregate.
func (s *Service) GetByID(ctx context.Context, input types.PetIdentifier) (*types.PetProjection, error) {
	result, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

// Delete removes a pet.
func (s *Service) Delete(ctx context.Context, input types.PetIdentifier) error {
	if err := s.repo.Delete(ctx, input.ID); err != nil {
		return mapError(err)
	}
	return nil
}

func buildPetFromMutation(input types.PetMutationInput) (*domain.Pet, error) {
	if input.Name == nil {
		return nil, domain.ErrEmptyName
	}
	if input.Species == nil {
		return nil, domain.ErrEmptySpecies
	}
	pet, err := domain.NewPet(0, *input.Name, *input.Species)
	if err != nil {
		return nil, err
	}
	partial := input
	partial.Name = nil
	partial.Species = nil
	if err := applyPartialMutation(pet, partial); err != nil {
		return nil, err
	}
	return pet, nil
}

func applyPartialMutation(target *domain.Pet, input types.PetMutationInput) error {
	if input.Name != nil {
		if err := target.Rename(*input.Name); err != nil {
			return err
		}
	}
	if input.Species != nil {
		if err := target.ChangeSpecies(*input.Species); err != nil {
			return err
		}
	}
	if input.Age != nil {
		if err := target.UpdateAge(input.Age); err != nil {
			return err
		}
	}
	if input.Status != nil {
		status, err := domain.ParseStatus(*input.Status)
		if err != nil {
			return err
		}
		if err := target.UpdateStatus(status); err != nil {
			return err
		}
	}
	if input.Breed != nil {
		target.Breed = *input.Breed
	}
	if input.Gender != nil {
		target.Gender = *input.Gender
	}
	if input.Description != nil {
		target.Description = *input.Description
	}
	if input.Image != nil {
		target.Image = *input.Image
	}
	return nil
}

var _ ports.Service = (*Service)(nil)
