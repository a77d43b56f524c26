package users

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStore_SaveAssignsSequentialIDs(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	first, err := store.Save(ctx, &User{Name: "John", Email: "john@example.com"})
	require.NoError(t, err)
	second, err := store.Save(ctx, &User{Name: "Jane", Email: "jane@example.com"})
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
}

func TestInMemoryStore_IDsAreNeverReused(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	first, err := store.Save(ctx, &User{Name: "John", Email: "john@example.com"})
	require.NoError(t, err)
	require.NoError(t, store.DeleteByID(ctx, first.ID))

	second, err := store.Save(ctx, &User{Name: "John", Email: "john@example.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.ID)
}

func TestInMemoryStore_RejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	john, err := store.Save(ctx, &User{Name: "John", Email: "john@example.com"})
	require.NoError(t, err)
	jane, err := store.Save(ctx, &User{Name: "Jane", Email: "jane@example.com"})
	require.NoError(t, err)

	_, err = store.Save(ctx, &User{Name: "Imposter", Email: "john@example.com"})
	assert.True(t, IsConflictError(err))

	jane.Email = "john@example.com"
	_, err = store.Save(ctx, jane)
	assert.True(t, IsConflictError(err))

	// saving a user with its own email is not a conflict
	john.Name = "Johnny"
	_, err = store.Save(ctx, john)
	assert.NoError(t, err)

	all, err := store.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestInMemoryStore_UpdatePreservesCreatedAt(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	saved, err := store.Save(ctx, &User{Name: "John", Email: "john@example.com", CreatedAt: created, UpdatedAt: created})
	require.NoError(t, err)

	later := created.Add(time.Hour)
	updated, err := store.Save(ctx, &User{ID: saved.ID, Name: "John", Email: "john@example.com", CreatedAt: later, UpdatedAt: later})
	require.NoError(t, err)

	assert.Equal(t, created, updated.CreatedAt)
	assert.Equal(t, later, updated.UpdatedAt)
}

func TestInMemoryStore_UpdateMissingUser(t *testing.T) {
	store := NewInMemoryStore()

	_, err := store.Save(context.Background(), &User{ID: 42, Name: "Ghost", Email: "ghost@example.com"})
	assert.True(t, IsNotFoundError(err))
}

func TestInMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	saved, err := store.Save(ctx, &User{Name: "John", Email: "john@example.com"})
	require.NoError(t, err)
	saved.Name = "mutated"

	found, ok, err := store.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "John", found.Name)
}

func TestInMemoryStore_Lookups(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	saved, err := store.Save(ctx, &User{Name: "John", Email: "john@example.com"})
	require.NoError(t, err)

	found, ok, err := store.FindByEmail(ctx, "john@example.com")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, saved.ID, found.ID)

	_, ok, err = store.FindByEmail(ctx, "JOHN@example.com")
	require.NoError(t, err)
	assert.False(t, ok, "email match is exact")

	_, ok, err = store.FindByID(ctx, 99)
	require.NoError(t, err)
	assert.False(t, ok)

	exists, err := store.ExistsByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.ExistsByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestInMemoryStore_FindAllOrderedByID(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	for i := 0; i < 20; i++ {
		_, err := store.Save(ctx, &User{Name: fmt.Sprintf("user-%d", i), Email: fmt.Sprintf("user%d@example.com", i)})
		require.NoError(t, err)
	}

	all, err := store.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 20)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].ID, all[i].ID)
	}
}

func TestInMemoryStore_EmptyFindAllIsNotNil(t *testing.T) {
	all, err := NewInMemoryStore().FindAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestInMemoryStore_ConcurrentCreatesSameEmail(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Save(ctx, &User{Name: "John", Email: "john@example.com"}); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
}
