//go:build integration
// +build integration

// To enable gopls support for this file, add the following to your VSCode settings.json:
// "gopls": {
//   "buildFlags": ["-tags=integration"]
// }

package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	petspostgres "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/persistence/postgres"
	"github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
	"github.com/Apurer/pet-adoption-api/internal/platform/postgres/pgtest"
)

func TestPostgresRepository_SaveAndGetByID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	repo := petspostgres.NewRepository(pgtest.SetupTestDB(t))
	ctx := context.Background()

	pet, err := domain.NewPet(0, "Buddy", "dog")
	require.NoError(t, err)
	age := 4
	require.NoError(t, pet.UpdateAge(&age))
	pet.Breed = "labrador"
	pet.Image = "data:image/png;base64,AAAA"

	saved, err := repo.Save(ctx, pet)
	require.NoError(t, err)
	require.NotZero(t, saved.Entity.ID)
	assert.Equal(t, saved.Entity.ID, pet.ID)
	assert.False(t, saved.Metadata.CreatedAt.IsZero())

	loaded, err := repo.GetByID(ctx, saved.Entity.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buddy", loaded.Entity.Name)
	assert.Equal(t, "labrador", loaded.Entity.Breed)
	require.NotNil(t, loaded.Entity.Age)
	assert.Equal(t, 4, *loaded.Entity.Age)
	assert.Equal(t, domain.StatusAvailable, loaded.Entity.Status)
}

func TestPostgresRepository_UpdateFindDelete(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	repo := petspostgres.NewRepository(pgtest.SetupTestDB(t))
	ctx := context.Background()

	buddy, err := domain.NewPet(0, "Buddy", "dog")
	require.NoError(t, err)
	_, err = repo.Save(ctx, buddy)
	require.NoError(t, err)
	tom, err := domain.NewPet(0, "Tom", "cat")
	require.NoError(t, err)
	_, err = repo.Save(ctx, tom)
	require.NoError(t, err)

	require.NoError(t, tom.UpdateStatus(domain.StatusAdopted))
	updated, err := repo.Save(ctx, tom)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAdopted, updated.Entity.Status)

	available, err := repo.FindByStatus(ctx, []domain.Status{domain.StatusAvailable})
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, buddy.ID, available[0].Entity.ID)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, repo.Delete(ctx, buddy.ID))
	_, err = repo.GetByID(ctx, buddy.ID)
	assert.ErrorIs(t, err, ports.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, buddy.ID), ports.ErrNotFound)

	ghost := &domain.Pet{ID: 9999, Name: "Ghost", Species: "dog", Status: domain.StatusAvailable}
	_, err = repo.Save(ctx, ghost)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}
