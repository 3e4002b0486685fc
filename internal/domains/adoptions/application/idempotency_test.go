package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	petdomain "github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
)

func TestSubmit_IdempotencyKeyReplaysFirstResponse(t *testing.T) {
	f := newFixture(t)
	petID := f.addPet(t, "Rex", petdomain.StatusAvailable)
	input := ports.SubmitInput{UserID: 1, PetID: petID, Message: "garden", IdempotencyKey: "k-1"}

	first, err := f.svc.Submit(context.Background(), input)
	require.NoError(t, err)
	again, err := f.svc.Submit(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, first.Entity.ID, again.Entity.ID)
	require.Equal(t, domain.StatusPending, again.Entity.Status)

	views, err := f.svc.List(context.Background(), ports.ListInput{PetID: petID})
	require.NoError(t, err)
	require.Len(t, views, 1)
}

func TestSubmit_IdempotencyKeyWithDifferentPayloadConflicts(t *testing.T) {
	f := newFixture(t)
	petID := f.addPet(t, "Rex", petdomain.StatusAvailable)
	_, err := f.svc.Submit(context.Background(), ports.SubmitInput{UserID: 1, PetID: petID, Message: "garden", IdempotencyKey: "k-1"})
	require.NoError(t, err)

	_, err = f.svc.Submit(context.Background(), ports.SubmitInput{UserID: 1, PetID: petID, Message: "flat", IdempotencyKey: "k-1"})
	require.ErrorIs(t, err, ErrConflict)
	require.ErrorIs(t, err, ports.ErrIdempotencyConflict)
}

func TestSubmit_IdempotencyKeysAreScopedPerUser(t *testing.T) {
	f := newFixture(t)
	petID := f.addPet(t, "Rex", petdomain.StatusAvailable)
	first, err := f.svc.Submit(context.Background(), ports.SubmitInput{UserID: 1, PetID: petID, IdempotencyKey: "shared"})
	require.NoError(t, err)
	second, err := f.svc.Submit(context.Background(), ports.SubmitInput{UserID: 2, PetID: petID, IdempotencyKey: "shared"})
	require.NoError(t, err)
	require.NotEqual(t, first.Entity.ID, second.Entity.ID)
}

func TestDecide_IdempotencyKeyReplaysOutcome(t *testing.T) {
	f := newFixture(t)
	petID := f.addPet(t, "Rex", petdomain.StatusAvailable)
	first := f.submit(t, 1, petID)
	second := f.submit(t, 2, petID)
	input := ports.DecideInput{ApplicationID: first, Status: "approved", IdempotencyKey: "decision-1"}

	outcome, err := f.svc.Decide(context.Background(), input)
	require.NoError(t, err)
	replayed, err := f.svc.Decide(context.Background(), input)
	require.NoError(t, err)

	require.False(t, outcome.Replayed)
	require.True(t, replayed.Replayed)
	require.Equal(t, domain.StatusApproved, replayed.Application.Entity.Status)
	require.Equal(t, petdomain.StatusAdopted, replayed.Pet.Status)
	require.Equal(t, outcome.AutoRejected, replayed.AutoRejected)
	require.Equal(t, []ports.AutoRejection{{ApplicationID: second, UserID: 2}}, replayed.AutoRejected)

	_, err = f.svc.Decide(context.Background(), ports.DecideInput{ApplicationID: first, Status: "approved"})
	require.ErrorIs(t, err, ErrConflict)
}

func TestDecide_IdempotencyKeyWithDifferentDecisionConflicts(t *testing.T) {
	f := newFixture(t)
	petID := f.addPet(t, "Rex", petdomain.StatusAvailable)
	id := f.submit(t, 1, petID)
	_, err := f.svc.Decide(context.Background(), ports.DecideInput{ApplicationID: id, Status: "rejected", IdempotencyKey: "decision-1"})
	require.NoError(t, err)

	_, err = f.svc.Decide(context.Background(), ports.DecideInput{ApplicationID: id, Status: "approved", IdempotencyKey: "decision-1"})
	require.ErrorIs(t, err, ErrConflict)
	require.ErrorIs(t, err, ports.ErrIdempotencyConflict)
	require.Equal(t, domain.StatusRejected, f.applicationStatus(t, id))
}

func TestDecide_FailedDecisionDoesNotRecordKey(t *testing.T) {
	f := newFixture(t)
	adopted := f.addPet(t, "Rex", petdomain.StatusAvailable)
	winner := f.submit(t, 1, adopted)
	loser := f.submit(t, 2, adopted)
	_, err := f.svc.Decide(context.Background(), ports.DecideInput{ApplicationID: winner, Status: "approved"})
	require.NoError(t, err)

	_, err = f.svc.Decide(context.Background(), ports.DecideInput{ApplicationID: loser, Status: "approved", IdempotencyKey: "k"})
	require.ErrorIs(t, err, ErrConflict)

	other := f.addPet(t, "Milo", petdomain.StatusAvailable)
	id := f.submit(t, 3, other)
	outcome, err := f.svc.Decide(context.Background(), ports.DecideInput{ApplicationID: id, Status: "rejected", IdempotencyKey: "k"})
	require.NoError(t, err)
	require.Equal(t, domain.StatusRejected, outcome.Application.Entity.Status)
	require.Equal(t, petdomain.StatusAvailable, f.petStatus(t, other))
}

func TestFingerprintDecide_NormalizesStatus(t *testing.T) {
	a, err := FingerprintDecide(ports.DecideInput{ApplicationID: 4, Status: " Approved ", IdempotencyKey: "x"})
	require.NoError(t, err)
	b, err := FingerprintDecide(ports.DecideInput{ApplicationID: 4, Status: "approved", IdempotencyKey: "y"})
	require.NoError(t, err)
	require.Equal(t, a, b)

	c, err := FingerprintDecide(ports.DecideInput{ApplicationID: 5, Status: "approved"})
	require.NoError(t, err)
	require.NotEqual(t, a, c)
}
