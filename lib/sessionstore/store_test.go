package sessionstore

import (
	"context"
	"testing"
	"time"

	"travelhost-backend/lib/sessionstore/db"
	"travelhost-backend/lib/telemetry"
	"travelhost-backend/lib/testutil"

	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) Store {
	return NewStore(testutil.OpenDB(t, db.Schema))
}

func TestSaveLoadDelete(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:sessionstore")
	defer cleanup()

	store := setupStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	_, err := store.Load(ctx, "acme:alice")
	require.ErrorIs(t, err, ErrNotFound)

	err = store.Save(ctx, "acme:alice", []byte(`{"cookies":{}}`), time.Hour)
	require.NoError(t, err)

	payload, err := store.Load(ctx, "acme:alice")
	require.NoError(t, err)
	require.Equal(t, []byte(`{"cookies":{}}`), payload)

	err = store.Delete(ctx, "acme:alice")
	require.NoError(t, err)
	_, err = store.Load(ctx, "acme:alice")
	require.ErrorIs(t, err, ErrNotFound)

	// delete is idempotent
	err = store.Delete(ctx, "acme:alice")
	require.NoError(t, err)
}

func TestLoadDeletesExpired(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:sessionstore")
	defer cleanup()

	store := setupStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	err := store.Save(ctx, "acme:bob", []byte("stale"), -time.Minute)
	require.NoError(t, err)

	_, err = store.Load(ctx, "acme:bob")
	require.ErrorIs(t, err, ErrNotFound)

	// the side effect of the failed restore: the row is gone, so a
	// cleanup pass afterwards finds nothing to remove.
	count, err := store.CleanupExpired(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 0, count)
}

func TestListActiveAndCleanup(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:sessionstore")
	defer cleanup()

	store := setupStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	require.NoError(t, store.Save(ctx, "acme:alice", []byte("a"), time.Hour))
	require.NoError(t, store.Save(ctx, "acme:bob", []byte("b"), -time.Hour))
	require.NoError(t, store.Save(ctx, "acme:carol", []byte("c"), time.Hour*2))

	active, err := store.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	require.Equal(t, "acme:alice", active[0].Id)
	require.Equal(t, "acme:carol", active[1].Id)

	count, err := store.CleanupExpired(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}
