package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	petmemory "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/memory"
)

func TestIdempotencyStore_SaveAndConflict(t *testing.T) {
	store := NewIdempotencyStore()
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store.WithClock(func() time.Time { return fixed })
	ctx := context.Background()

	missing, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.Nil(t, missing)

	saved, err := store.Save(ctx, ports.IdempotencyRecord{Key: "k", RequestHash: "h1", Response: []byte(`{"id":1}`)})
	require.NoError(t, err)
	require.Equal(t, fixed, saved.CreatedAt)

	same, err := store.Save(ctx, ports.IdempotencyRecord{Key: "k", RequestHash: "h1", Response: []byte(`{"id":2}`)})
	require.NoError(t, err)
	require.JSONEq(t, `{"id":1}`, string(same.Response))

	existing, err := store.Save(ctx, ports.IdempotencyRecord{Key: "k", RequestHash: "h2"})
	require.ErrorIs(t, err, ports.ErrIdempotencyConflict)
	require.Equal(t, "h1", existing.RequestHash)
}

func TestStore_KeysRollBackWithFailedUnitOfWork(t *testing.T) {
	store := NewStore(petmemory.NewRepository(), nil)
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.InTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		_, err := tx.Idempotency().Save(ctx, ports.IdempotencyRecord{Key: "k", RequestHash: "h"})
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	err = store.InTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		record, err := tx.Idempotency().Get(ctx, "k")
		require.NoError(t, err)
		require.Nil(t, record)
		_, err = tx.Idempotency().Save(ctx, ports.IdempotencyRecord{Key: "k", RequestHash: "h"})
		return err
	})
	require.NoError(t, err)

	err = store.InTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		record, err := tx.Idempotency().Get(ctx, "k")
		require.NoError(t, err)
		require.NotNil(t, record)
		return nil
	})
	require.NoError(t, err)
}
