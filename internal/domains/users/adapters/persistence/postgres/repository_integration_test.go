//go:build integration
// +build integration

package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	userspostgres "github.com/Apurer/pet-adoption-api/internal/domains/users/adapters/persistence/postgres"
	"github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
	"github.com/Apurer/pet-adoption-api/internal/platform/postgres/pgtest"
)

func TestPostgresRepository_CreateAndLookup(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	domain.PasswordCost = bcrypt.MinCost
	repo := userspostgres.NewRepository(pgtest.SetupTestDB(t))
	ctx := context.Background()

	user, err := domain.NewUser("Ada", "Ada@Example.com", "hunter22", domain.RoleAdmin)
	require.NoError(t, err)
	created, err := repo.Create(ctx, user)
	require.NoError(t, err)
	require.NotZero(t, created.Entity.ID)

	byEmail, err := repo.GetByEmail(ctx, "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.Entity.ID, byEmail.Entity.ID)
	assert.True(t, byEmail.Entity.CheckPassword("hunter22"))
	assert.Equal(t, domain.RoleAdmin, byEmail.Entity.Role)

	dup, err := domain.NewUser("Other", "ada@example.com", "hunter22", domain.RoleUser)
	require.NoError(t, err)
	_, err = repo.Create(ctx, dup)
	assert.ErrorIs(t, err, ports.ErrEmailTaken)

	found, err := repo.FindByIDs(ctx, []int64{created.Entity.ID, 999})
	require.NoError(t, err)
	assert.Len(t, found, 1)

	_, err = repo.GetByID(ctx, 999)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}
