package booking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"voicetask/models"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bookingConv(key string, expires time.Time) models.Conversation {
	return models.Conversation{
		Key:     key,
		Kind:    models.KindBooking,
		Booking: &models.BookingSession{ID: key, State: models.StateProvidersListed, ProviderType: "kapper", CreatedAt: t0, ExpiresAt: expires},
	}
}

func TestMemoryStore_LazyExpiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, bookingConv("a", t0.Add(time.Minute))))

	conv, err := store.Get(ctx, "a", t0)
	require.NoError(t, err)
	require.NotNil(t, conv)

	conv, err = store.Get(ctx, "a", t0.Add(time.Minute))
	require.NoError(t, err)
	assert.Nil(t, conv, "expiry instant counts as expired")
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, bookingConv("a", t0.Add(time.Minute))))

	conv, err := store.Get(ctx, "a", t0)
	require.NoError(t, err)
	conv.Booking.State = models.StateTimeSelected

	again, err := store.Get(ctx, "a", t0)
	require.NoError(t, err)
	assert.Equal(t, models.StateProvidersListed, again.Booking.State)
}

func TestMemoryStore_Sweep(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, bookingConv("old", t0.Add(time.Minute))))
	require.NoError(t, store.Put(ctx, bookingConv("new", t0.Add(time.Hour))))
	require.NoError(t, store.Put(ctx, models.Conversation{
		Key:     "pending",
		Kind:    models.KindPendingAction,
		Pending: &models.PendingAction{ID: "p", ExpiresAt: t0.Add(2 * time.Minute)},
	}))

	removed, err := store.Sweep(ctx, t0.Add(5*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, store.Len())
}

func TestSweeper_SweepOnce(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Put(context.Background(), bookingConv("old", t0.Add(time.Minute))))

	sw := &Sweeper{Store: store, Now: func() time.Time { return t0.Add(time.Hour) }}
	assert.Equal(t, 1, sw.SweepOnce(context.Background()))
	assert.Equal(t, 0, store.Len())
}

func TestSweeper_StartStopsWithContext(t *testing.T) {
	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	sw := &Sweeper{Store: store, Interval: time.Second}
	require.NoError(t, sw.Start(ctx))
	cancel()
}

func TestWebhookNotifier(t *testing.T) {
	var got CalendarEvent
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL)
	err := n.Notify(context.Background(), CalendarEvent{ProviderName: "Salon Negen", Date: "2025-01-02", Time: "09:00"})
	require.NoError(t, err)
	assert.Equal(t, "Salon Negen", got.ProviderName)
}

func TestWebhookNotifier_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewWebhookNotifier(srv.URL).Notify(context.Background(), CalendarEvent{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

// Runs against a real Redis when REDIS_ADDR is set.
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	now := time.Now()
	store := &RedisStore{Client: client, Now: func() time.Time { return now }}
	ctx := context.Background()
	key := "test-" + now.Format("150405.000000")

	require.NoError(t, store.Put(ctx, bookingConv(key, now.Add(time.Minute))))
	conv, err := store.Get(ctx, key, now)
	require.NoError(t, err)
	require.NotNil(t, conv)
	assert.Equal(t, "kapper", conv.Booking.ProviderType)

	conv, err = store.Get(ctx, key, now.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Nil(t, conv)

	require.NoError(t, store.Delete(ctx, key))
}
