package stack

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	adoptionports "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	pettypes "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
	userdomain "github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
	userports "github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
	"github.com/Apurer/pet-adoption-api/internal/platform/auth"
	platformobservability "github.com/Apurer/pet-adoption-api/internal/platform/observability"
)

func TestNewServices_MemoryBackendSharesState(t *testing.T) {
	userdomain.PasswordCost = bcrypt.MinCost
	tokens, err := auth.NewManager("secret", time.Hour)
	require.NoError(t, err)
	instruments := &platformobservability.Instruments{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	services := NewServices(nil, tokens, instruments)
	require.False(t, services.Durable)

	ctx := context.Background()
	name, species := "Rex", "dog"
	pet, err := services.Pets.AddPet(ctx, pettypes.AddPetInput{PetMutationInput: pettypes.PetMutationInput{Name: &name, Species: &species}})
	require.NoError(t, err)
	user, err := services.Users.Register(ctx, userports.RegisterInput{Name: "Ann", Email: "ann@example.com", Password: "secret123"})
	require.NoError(t, err)

	_, err = services.Adoptions.Submit(ctx, adoptionports.SubmitInput{UserID: user.Entity.ID, PetID: pet.Entity.ID})
	require.NoError(t, err)

	reloaded, err := services.Pets.GetByID(ctx, pettypes.PetIdentifier{ID: pet.Entity.ID})
	require.NoError(t, err)
	require.Equal(t, "pending", string(reloaded.Entity.Status))
}

func TestDialTemporal_Disabled(t *testing.T) {
	_, err := DialTemporal(TemporalOptions{Disabled: true}, &platformobservability.Instruments{}, "test")
	require.ErrorIs(t, err, ErrTemporalDisabled)
}
