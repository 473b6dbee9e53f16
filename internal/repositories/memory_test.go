package repositories

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rohits-web03/sitedrop/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) *MemoryDeploymentStore {
	t.Helper()
	store := NewMemoryDeploymentStore()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	var tick time.Duration
	store.now = func() time.Time {
		tick += time.Minute
		return base.Add(tick)
	}
	return store
}

func TestMemorySaveAssignsDefaults(t *testing.T) {
	store := newTestStore(t)
	d := &models.Deployment{OwnerID: 1, Name: "Site", Slug: "site-1", URL: "https://h/site-1", FileCount: 2}

	require.NoError(t, store.Save(context.Background(), d))
	assert.NotEmpty(t, d.ID)
	assert.Equal(t, models.StatusActive, d.Status)
	assert.False(t, d.CreatedAt.IsZero())
}

func TestMemorySaveRejectsDuplicateSlug(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &models.Deployment{OwnerID: 1, Slug: "dup"}))
	err := store.Save(ctx, &models.Deployment{OwnerID: 2, Slug: "dup", Name: "other"})
	require.ErrorIs(t, err, models.ErrDuplicateSlug)

	got, err := store.FindBySlug(ctx, "dup")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.OwnerID)
}

func TestMemoryListByOwnerNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, slug := range []string{"a", "b", "c"} {
		require.NoError(t, store.Save(ctx, &models.Deployment{OwnerID: 7, Slug: slug}))
	}
	require.NoError(t, store.Save(ctx, &models.Deployment{OwnerID: 8, Slug: "other"}))

	found, err := store.SetStatus(ctx, "b", models.StatusDeleted)
	require.NoError(t, err)
	require.True(t, found)

	sites, err := store.ListByOwner(ctx, 7, models.StatusActive)
	require.NoError(t, err)
	require.Len(t, sites, 2)
	assert.Equal(t, "c", sites[0].Slug)
	assert.Equal(t, "a", sites[1].Slug)

	all, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "other", all[0].Slug)
}

func TestMemoryOrdersSameInstantBySaveOrder(t *testing.T) {
	store := NewMemoryDeploymentStore()
	fixed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &models.Deployment{OwnerID: 1, Slug: "first"}))
	require.NoError(t, store.Save(ctx, &models.Deployment{OwnerID: 1, Slug: "second"}))

	all, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", all[0].Slug)
	assert.Equal(t, "first", all[1].Slug)
}

func TestMemorySetStatusUnknownSlug(t *testing.T) {
	store := newTestStore(t)

	found, err := store.SetStatus(context.Background(), "nonexistent-slug", models.StatusDeleted)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryCountActive(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, slug := range []string{"a", "b", "c"} {
		require.NoError(t, store.Save(ctx, &models.Deployment{OwnerID: 1, Slug: slug}))
	}
	_, err := store.SetStatus(ctx, "a", models.StatusDeleted)
	require.NoError(t, err)

	n, err := store.CountActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = store.SetStatus(ctx, "a", models.StatusActive)
	require.NoError(t, err)
	n, err = store.CountActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestMemoryFindBySlugMissing(t *testing.T) {
	_, err := NewMemoryDeploymentStore().FindBySlug(context.Background(), "nope")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestMemoryListReturnsCopies(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, &models.Deployment{OwnerID: 1, Slug: "a", Name: "A"}))

	sites, err := store.ListAll(ctx)
	require.NoError(t, err)
	sites[0].Name = "mutated"

	got, err := store.FindBySlug(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "A", got.Name)
}

func TestMemoryConcurrentOwners(t *testing.T) {
	store := NewMemoryDeploymentStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for owner := int64(1); owner <= 8; owner++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				slug := string(rune('a'+owner)) + "-" + string(rune('0'+i))
				assert.NoError(t, store.Save(ctx, &models.Deployment{OwnerID: owner, Slug: slug}))
			}
		}()
	}
	wg.Wait()

	n, err := store.CountActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(80), n)
	for owner := int64(1); owner <= 8; owner++ {
		sites, err := store.ListByOwner(ctx, owner, models.StatusActive)
		require.NoError(t, err)
		assert.Len(t, sites, 10)
	}
}
