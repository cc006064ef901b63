package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mackflow-bridge/internal/models"
)

func setupRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := NewRedisStore(client, TTLs{
		Session:  24 * time.Hour,
		Dispatch: 24 * time.Hour,
	})
	return store, mr
}

func TestRedisStore_SessionRoundTrip(t *testing.T) {
	store, _ := setupRedisStore(t)
	ctx := context.Background()

	got, err := store.GetSession(ctx, "5511999990000")
	require.NoError(t, err)
	assert.Nil(t, got, "unknown key should return nil session")

	sess := &models.ConversationSession{
		Step:  models.StepAskPlate,
		Name:  "Maria",
		Phone: "5511999990000",
	}
	require.NoError(t, store.PutSession(ctx, "5511999990000", sess))

	got, err = store.GetSession(ctx, "5511999990000")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.StepAskPlate, got.Step)
	assert.Equal(t, "Maria", got.Name)
}

func TestRedisStore_DeleteSession(t *testing.T) {
	store, _ := setupRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutSession(ctx, "key-1", models.NewConversationSession()))
	require.NoError(t, store.DeleteSession(ctx, "key-1"))

	got, err := store.GetSession(ctx, "key-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStore_SessionExpiry(t *testing.T) {
	store, mr := setupRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutSession(ctx, "key-1", models.NewConversationSession()))

	mr.FastForward(25 * time.Hour)

	got, err := store.GetSession(ctx, "key-1")
	require.NoError(t, err)
	assert.Nil(t, got, "expired session should read as missing")
}

func TestRedisStore_DispatchRoundTripAndExpiry(t *testing.T) {
	store, mr := setupRedisStore(t)
	ctx := context.Background()

	got, err := store.GetDispatch(ctx, "key-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	rec := &models.DispatchRecord{Protocol: "OS-12345", OrderID: "987"}
	require.NoError(t, store.PutDispatch(ctx, "key-1", rec))

	got, err = store.GetDispatch(ctx, "key-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "OS-12345", got.Protocol)
	assert.Equal(t, "987", got.OrderID)

	mr.FastForward(25 * time.Hour)

	got, err = store.GetDispatch(ctx, "key-1")
	require.NoError(t, err)
	assert.Nil(t, got, "expired dispatch record no longer blocks a new order")
}

func TestRedisStore_SessionAndDispatchKeysDoNotCollide(t *testing.T) {
	store, _ := setupRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutSession(ctx, "key-1", models.NewConversationSession()))
	require.NoError(t, store.PutDispatch(ctx, "key-1", &models.DispatchRecord{Protocol: "OS-1"}))

	require.NoError(t, store.DeleteSession(ctx, "key-1"))

	rec, err := store.GetDispatch(ctx, "key-1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "OS-1", rec.Protocol)
}
