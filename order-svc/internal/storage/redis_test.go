package storage

import (
	"context"
	"testing"
	"time"

	"github.com/derrickshema/recipe-manager/order-svc/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func TestRedisSessionStore(t *testing.T) {
	mr, rdb := setupRedis(t)
	store := NewRedisSessionStore(rdb, 30*time.Minute)
	ctx := context.Background()

	token, err := store.Issue(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, mr.TTL(store.SessionKey(token)))

	userID, err := store.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, 7, userID)

	mr.FastForward(31 * time.Minute)
	_, err = store.Resolve(ctx, token)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestRedisSessionStore_ResolveRejections(t *testing.T) {
	mr, rdb := setupRedis(t)
	store := NewRedisSessionStore(rdb, time.Minute)
	require.NoError(t, mr.Set("session:garbled", "not-a-number"))

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "unknown", token: "missing"},
		{name: "garbled value", token: "garbled"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := store.Resolve(context.Background(), testCase.token)
			assert.ErrorIs(t, err, domain.ErrUnauthenticated)
		})
	}
}

func TestRedisSessionStore_Revoke(t *testing.T) {
	mr, rdb := setupRedis(t)
	store := NewRedisSessionStore(rdb, time.Minute)
	ctx := context.Background()

	token, err := store.Issue(ctx, 3)
	require.NoError(t, err)
	require.NoError(t, store.Revoke(ctx, token))

	assert.False(t, mr.Exists(store.SessionKey(token)))
}

func TestRedisInvitationStore(t *testing.T) {
	mr, rdb := setupRedis(t)
	store := NewRedisInvitationStore(rdb)
	ctx := context.Background()

	inv := &domain.Invitation{
		Token:        "inv-1",
		Purpose:      domain.InvitationPurpose,
		Email:        "bob@example.com",
		RestaurantID: 1,
		Role:         domain.OrgRoleEmployee,
		InvitedBy:    2,
		ExpiresAt:    time.Now().Add(7 * 24 * time.Hour),
	}
	require.NoError(t, store.Save(ctx, inv))
	assert.InDelta(t, float64(7*24*time.Hour), float64(mr.TTL("invitation:inv-1")), float64(time.Minute))

	loaded, err := store.Get(ctx, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, inv.Email, loaded.Email)
	assert.Equal(t, domain.OrgRoleEmployee, loaded.Role)

	mr.FastForward(8 * 24 * time.Hour)
	_, err = store.Get(ctx, "inv-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRedisInvitationStore_RefusesExpired(t *testing.T) {
	mr, rdb := setupRedis(t)
	store := NewRedisInvitationStore(rdb)

	err := store.Save(context.Background(), &domain.Invitation{Token: "old", ExpiresAt: time.Now().Add(-time.Hour)})

	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	assert.Empty(t, mr.Keys())
}

func TestRedisEventMarker(t *testing.T) {
	mr, rdb := setupRedis(t)
	marker := NewRedisEventMarker(rdb, 24*time.Hour)
	ctx := context.Background()

	seen, err := marker.Seen(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, marker.Mark(ctx, "evt_1"))
	seen, err = marker.Seen(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, seen)
	assert.Equal(t, 24*time.Hour, mr.TTL("payment_event:evt_1"))
}

func TestRedisEventMarker_Unavailable(t *testing.T) {
	mr, rdb := setupRedis(t)
	marker := NewRedisEventMarker(rdb, time.Hour)
	mr.SetError("ERR server unavailable")

	_, err := marker.Seen(context.Background(), "evt_1")

	assert.Error(t, err)
}
