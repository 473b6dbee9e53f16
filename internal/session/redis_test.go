package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client, time.Hour), mr
}

func TestRedisStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestRedisStore(t)

	states := []State{
		AwaitingSiteName{Mode: ModeArchive},
		AwaitingFiles{Mode: ModeMultiFile, SiteName: "docs"},
		AwaitingFiles{
			Mode:     ModeMultiFile,
			SiteName: "docs",
			Files: []StagedFile{
				{Name: "index.html", Content: []byte("<html></html>")},
				{Name: "style.css", Content: []byte("body{}")},
			},
		},
		AwaitingSlug{Action: ActionRestore},
	}

	for _, want := range states {
		require.NoError(t, store.Put(ctx, 7, want))

		got, err := store.Get(ctx, 7)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestRedisStore_MissingKeyIsIdle(t *testing.T) {
	store, _ := newTestRedisStore(t)

	got, err := store.Get(context.Background(), 99)
	require.NoError(t, err)
	require.Equal(t, Idle{}, got)
}

func TestRedisStore_PutIdleDeletesKey(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t)

	require.NoError(t, store.Put(ctx, 3, AwaitingSlug{Action: ActionDelete}))
	require.True(t, mr.Exists(store.key(3)))

	require.NoError(t, store.Put(ctx, 3, Idle{}))
	require.False(t, mr.Exists(store.key(3)))
}

func TestRedisStore_AppliesTTL(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t)

	require.NoError(t, store.Put(ctx, 5, AwaitingSiteName{Mode: ModeMultiFile}))
	require.Equal(t, time.Hour, mr.TTL(store.key(5)))

	mr.FastForward(2 * time.Hour)

	got, err := store.Get(ctx, 5)
	require.NoError(t, err)
	require.True(t, IsIdle(got))
}

func TestRedisStore_CorruptDocument(t *testing.T) {
	store, mr := newTestRedisStore(t)
	require.NoError(t, mr.Set(store.key(8), "{not json"))

	_, err := store.Get(context.Background(), 8)
	require.Error(t, err)
}

func TestRedisStore_IsReady(t *testing.T) {
	store, _ := newTestRedisStore(t)
	require.NoError(t, store.IsReady(context.Background()))
}
