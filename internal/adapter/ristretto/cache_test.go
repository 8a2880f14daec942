package ristretto

import (
	"context"
	"testing"
	"time"

	"github.com/singhpravendra/user-service/internal/adapter/memory"
	"github.com/singhpravendra/user-service/internal/domain/user"
	"github.com/singhpravendra/user-service/internal/port/repository"
)

var _ repository.UserRepository = (*CachedRepository)(nil)

// countingRepository tracks how many Find calls reach the backend.
type countingRepository struct {
	repository.UserRepository
	finds int
}

func (c *countingRepository) Find(ctx context.Context, id string) (*user.User, error) {
	c.finds++
	return c.UserRepository.Find(ctx, id)
}

func newCached(t *testing.T) (*CachedRepository, *countingRepository) {
	t.Helper()
	backend := &countingRepository{UserRepository: memory.New()}
	cached, err := New(backend, 1<<20, time.Minute)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(cached.Close)
	return cached, backend
}

func seed(t *testing.T, repo repository.UserRepository, id, email string) {
	t.Helper()
	_, err := repo.Save(context.Background(), &user.User{
		ID: id, Name: "Cached", Email: email, CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestFindPopulatesAndServesFromCache(t *testing.T) {
	cached, backend := newCached(t)
	ctx := context.Background()
	seed(t, cached, "u1", "u1@x.com")

	u, err := cached.Find(ctx, "u1")
	if err != nil || u == nil {
		t.Fatalf("first Find: %v, %v", u, err)
	}
	cached.Wait()

	u, err = cached.Find(ctx, "u1")
	if err != nil || u == nil {
		t.Fatalf("second Find: %v, %v", u, err)
	}
	if u.Email != "u1@x.com" {
		t.Errorf("unexpected cached value: %+v", u)
	}
	if backend.finds != 1 {
		t.Errorf("expected 1 backend Find, got %d", backend.finds)
	}
}

func TestDeleteInvalidates(t *testing.T) {
	cached, backend := newCached(t)
	ctx := context.Background()
	seed(t, cached, "u1", "u1@x.com")

	if _, err := cached.Find(ctx, "u1"); err != nil {
		t.Fatal(err)
	}
	cached.Wait()

	if err := cached.Delete(ctx, "u1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	cached.Wait()

	u, err := cached.Find(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if u != nil {
		t.Errorf("expected nil after delete, got %+v", u)
	}
	if backend.finds != 2 {
		t.Errorf("expected delete to force a backend read, got %d finds", backend.finds)
	}
}

func TestSaveInvalidatesStaleEntry(t *testing.T) {
	cached, _ := newCached(t)
	ctx := context.Background()
	seed(t, cached, "u1", "u1@x.com")

	if _, err := cached.Find(ctx, "u1"); err != nil {
		t.Fatal(err)
	}
	cached.Wait()

	// Overwrite through the decorator; the cached copy must not survive.
	seed(t, cached, "u1", "renamed@x.com")
	cached.Wait()

	u, err := cached.Find(ctx, "u1")
	if err != nil || u == nil {
		t.Fatalf("Find after save: %v, %v", u, err)
	}
	if u.Email != "renamed@x.com" {
		t.Errorf("stale cache entry served: %+v", u)
	}
}

func TestAbsentUsersAreNotCached(t *testing.T) {
	cached, backend := newCached(t)
	ctx := context.Background()

	for range 2 {
		u, err := cached.Find(ctx, "ghost")
		if err != nil {
			t.Fatal(err)
		}
		if u != nil {
			t.Fatalf("expected nil, got %+v", u)
		}
	}
	if backend.finds != 2 {
		t.Errorf("absence must not be cached, got %d backend finds", backend.finds)
	}
}
