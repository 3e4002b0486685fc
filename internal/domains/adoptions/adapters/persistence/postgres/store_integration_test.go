//go:build integration
// +build integration

package postgres_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	adoptionpostgres "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/adapters/persistence/postgres"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	petspostgres "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/persistence/postgres"
	petdomain "github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	userspostgres "github.com/Apurer/pet-adoption-api/internal/domains/users/adapters/persistence/postgres"
	userdomain "github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
	"github.com/Apurer/pet-adoption-api/internal/platform/postgres/pgtest"
)

type env struct {
	svc   *application.Service
	pets  *petspostgres.Repository
	users *userspostgres.Repository
}

func setup(t *testing.T) *env {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	userdomain.PasswordCost = bcrypt.MinCost
	db := pgtest.SetupTestDB(t)
	box := adoptionpostgres.NewMessageBox(db)
	return &env{
		svc:   application.NewService(adoptionpostgres.NewStore(db), box, box),
		pets:  petspostgres.NewRepository(db),
		users: userspostgres.NewRepository(db),
	}
}

func (e *env) pet(t *testing.T, name string) int64 {
	t.Helper()
	pet, err := petdomain.NewPet(0, name, "cat")
	require.NoError(t, err)
	saved, err := e.pets.Save(context.Background(), pet)
	require.NoError(t, err)
	return saved.Entity.ID
}

func (e *env) user(t *testing.T, email string) int64 {
	t.Helper()
	user, err := userdomain.NewUser("Applicant", email, "secret123", userdomain.RoleUser)
	require.NoError(t, err)
	saved, err := e.users.Create(context.Background(), user)
	require.NoError(t, err)
	return saved.Entity.ID
}

func (e *env) petStatus(t *testing.T, id int64) petdomain.Status {
	t.Helper()
	pet, err := e.pets.GetByID(context.Background(), id)
	require.NoError(t, err)
	return pet.Entity.Status
}

func TestStore_ApprovalLifecycle(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	petID := e.pet(t, "Mia")
	ann := e.user(t, "ann@example.com")
	bob := e.user(t, "bob@example.com")

	a1, err := e.svc.Submit(ctx, ports.SubmitInput{UserID: ann, PetID: petID, Message: "hello"})
	require.NoError(t, err)
	require.Equal(t, petdomain.StatusPending, e.petStatus(t, petID))
	a2, err := e.svc.Submit(ctx, ports.SubmitInput{UserID: bob, PetID: petID})
	require.NoError(t, err)

	_, err = e.svc.Submit(ctx, ports.SubmitInput{UserID: ann, PetID: petID})
	require.ErrorIs(t, err, domain.ErrDuplicateApplication)

	outcome, err := e.svc.Decide(ctx, ports.DecideInput{ApplicationID: a1.Entity.ID, Status: "approved"})
	require.NoError(t, err)
	require.Equal(t, []ports.AutoRejection{{ApplicationID: a2.Entity.ID, UserID: bob}}, outcome.AutoRejected)
	require.Equal(t, petdomain.StatusAdopted, e.petStatus(t, petID))

	_, err = e.svc.Decide(ctx, ports.DecideInput{ApplicationID: a2.Entity.ID, Status: "approved"})
	require.ErrorIs(t, err, application.ErrConflict)

	views, err := e.svc.List(ctx, ports.ListInput{PetID: petID})
	require.NoError(t, err)
	require.Len(t, views, 2)
	require.Equal(t, "Mia", views[0].Pet.Name)
	require.Equal(t, "Applicant", views[0].Applicant.Name)

	require.NoError(t, e.svc.NotifyDecision(ctx, *outcome))
	inbox, err := e.svc.Inbox(ctx, bob)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	require.Equal(t, a2.Entity.ID, inbox[0].ApplicationID)
}

func TestStore_RejectAndDeleteRecomputePet(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	petID := e.pet(t, "Mia")
	ann := e.user(t, "ann@example.com")

	a1, err := e.svc.Submit(ctx, ports.SubmitInput{UserID: ann, PetID: petID})
	require.NoError(t, err)
	_, err = e.svc.Decide(ctx, ports.DecideInput{ApplicationID: a1.Entity.ID, Status: "rejected"})
	require.NoError(t, err)
	require.Equal(t, petdomain.StatusAvailable, e.petStatus(t, petID))

	_, err = e.svc.Delete(ctx, ports.DeleteInput{ApplicationID: a1.Entity.ID, Caller: ports.Caller{UserID: ann}})
	require.NoError(t, err)
	_, err = e.svc.Delete(ctx, ports.DeleteInput{ApplicationID: a1.Entity.ID, Caller: ports.Caller{UserID: ann}})
	require.ErrorIs(t, err, ports.ErrApplicationNotFound)
}

func TestStore_ConcurrentApprovalsHaveOneWinner(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	petID := e.pet(t, "Mia")
	var ids []int64
	for i := 0; i < 5; i++ {
		app, err := e.svc.Submit(ctx, ports.SubmitInput{UserID: e.user(t, fmt.Sprintf("u%d@example.com", i)), PetID: petID})
		require.NoError(t, err)
		ids = append(ids, app.Entity.ID)
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			if _, err := e.svc.Decide(ctx, ports.DecideInput{ApplicationID: id, Status: "approved"}); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(id)
	}
	wg.Wait()

	require.Equal(t, 1, wins)
	approved, err := e.svc.List(ctx, ports.ListInput{PetID: petID, Statuses: []string{"approved"}})
	require.NoError(t, err)
	require.Len(t, approved, 1)
}

func TestStore_IdempotentDecisionReplaysInsideTransaction(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	petID := e.pet(t, "Nala")
	ann := e.user(t, "ann-idem@example.com")
	bob := e.user(t, "bob-idem@example.com")
	first, err := e.svc.Submit(ctx, ports.SubmitInput{UserID: ann, PetID: petID, IdempotencyKey: "submit-1"})
	require.NoError(t, err)
	again, err := e.svc.Submit(ctx, ports.SubmitInput{UserID: ann, PetID: petID, IdempotencyKey: "submit-1"})
	require.NoError(t, err)
	require.Equal(t, first.Entity.ID, again.Entity.ID)
	second, err := e.svc.Submit(ctx, ports.SubmitInput{UserID: bob, PetID: petID})
	require.NoError(t, err)

	input := ports.DecideInput{ApplicationID: first.Entity.ID, Status: "approved", IdempotencyKey: "decide-1"}
	outcome, err := e.svc.Decide(ctx, input)
	require.NoError(t, err)
	replayed, err := e.svc.Decide(ctx, input)
	require.NoError(t, err)
	require.Equal(t, outcome.AutoRejected, replayed.AutoRejected)
	require.Equal(t, []ports.AutoRejection{{ApplicationID: second.Entity.ID, UserID: bob}}, replayed.AutoRejected)
	require.Equal(t, petdomain.StatusAdopted, e.petStatus(t, petID))

	_, err = e.svc.Decide(ctx, ports.DecideInput{ApplicationID: first.Entity.ID, Status: "rejected", IdempotencyKey: "decide-1"})
	require.ErrorIs(t, err, ports.ErrIdempotencyConflict)
}
