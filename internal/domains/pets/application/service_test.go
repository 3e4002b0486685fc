package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	petmemory "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/memory"
	pettypes "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
)

func strPtr(v string) *string { return &v }

func addRex(t *testing.T, svc *Service) *pettypes.PetProjection {
	t.Helper()
	proj, err := svc.AddPet(context.Background(), pettypes.AddPetInput{
		PetMutationInput: pettypes.PetMutationInput{
			Name:    strPtr("Rex"),
			Species: strPtr("dog"),
			Breed:   strPtr("beagle"),
		},
	})
	require.NoError(t, err)
	return proj
}

func TestAddPet_Success(t *testing.T) {
	svc := NewService(petmemory.NewRepository())

	proj := addRex(t, svc)

	require.NotZero(t, proj.Entity.ID)
	require.Equal(t, "Rex", proj.Entity.Name)
	require.Equal(t, "beagle", proj.Entity.Breed)
	require.Equal(t, domain.StatusAvailable, proj.Entity.Status)
	require.False(t, proj.Metadata.CreatedAt.IsZero())
	require.False(t, proj.Metadata.UpdatedAt.IsZero())
}

func TestAddPet_InvalidInput(t *testing.T) {
	svc := NewService(petmemory.NewRepository())

	_, err := svc.AddPet(context.Background(), pettypes.AddPetInput{})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.AddPet(context.Background(), pettypes.AddPetInput{
		PetMutationInput: pettypes.PetMutationInput{Name: strPtr("Rex")},
	})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrEmptySpecies)
}

func TestUpdatePet_UpdatesMetadata(t *testing.T) {
	repo := petmemory.NewRepository()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	current := base
	repo.WithClock(func() time.Time { return current })
	svc := NewService(repo)

	proj := addRex(t, svc)
	current = base.Add(time.Minute)

	updated, err := svc.UpdatePet(context.Background(), pettypes.UpdatePetInput{
		ID:               proj.Entity.ID,
		PetMutationInput: pettypes.PetMutationInput{Name: strPtr("Rexy")},
	})
	require.NoError(t, err)
	require.Equal(t, "Rexy", updated.Entity.Name)
	require.Equal(t, "dog", updated.Entity.Species)
	require.Equal(t, base, updated.Metadata.CreatedAt)
	require.Equal(t, current, updated.Metadata.UpdatedAt)
}

func TestUpdatePet_DirectStatusEdit(t *testing.T) {
	svc := NewService(petmemory.NewRepository())
	proj := addRex(t, svc)

	updated, err := svc.UpdatePet(context.Background(), pettypes.UpdatePetInput{
		ID:               proj.Entity.ID,
		PetMutationInput: pettypes.PetMutationInput{Status: strPtr("adopted")},
	})
	require.NoError(t, err)
	require.Equal(t, domain.StatusAdopted, updated.Entity.Status)

	_, err = svc.UpdatePet(context.Background(), pettypes.UpdatePetInput{
		ID:               proj.Entity.ID,
		PetMutationInput: pettypes.PetMutationInput{Status: strPtr("sold")},
	})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestFindByStatus(t *testing.T) {
	svc := NewService(petmemory.NewRepository())
	rex := addRex(t, svc)
	_, err := svc.AddPet(context.Background(), pettypes.AddPetInput{
		PetMutationInput: pettypes.PetMutationInput{Name: strPtr("Tom"), Species: strPtr("cat"), Status: strPtr("adopted")},
	})
	require.NoError(t, err)

	all, err := svc.FindByStatus(context.Background(), pettypes.FindPetsByStatusInput{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	available, err := svc.FindByStatus(context.Background(), pettypes.FindPetsByStatusInput{Statuses: []string{"available"}})
	require.NoError(t, err)
	require.Len(t, available, 1)
	require.Equal(t, rex.Entity.ID, available[0].Entity.ID)

	_, err = svc.FindByStatus(context.Background(), pettypes.FindPetsByStatusInput{Statuses: []string{"unknown"}})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestDelete_NotFound(t *testing.T) {
	svc := NewService(petmemory.NewRepository())
	err := svc.Delete(context.Background(), pettypes.PetIdentifier{ID: 42})
	require.ErrorIs(t, err, ports.ErrNotFound)

	proj := addRex(t, svc)
	require.NoError(t, svc.Delete(context.Background(), pettypes.PetIdentifier{ID: proj.Entity.ID}))
	_, err = svc.GetByID(context.Background(), pettypes.PetIdentifier{ID: proj.Entity.ID})
	require.ErrorIs(t, err, ports.ErrNotFound)
}
