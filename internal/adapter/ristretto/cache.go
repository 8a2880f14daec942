// Package ristretto decorates a user repository with a dgraph-io/ristretto
// in-process read cache for Find lookups.
package ristretto

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/singhpravendra/user-service/internal/domain/user"
	"github.com/singhpravendra/user-service/internal/port/repository"
)

// CachedRepository wraps another UserRepository and caches Find results by
// id. Save and Delete invalidate the entry; List and FindByEmail always pass
// through so ordering and uniqueness checks never see stale data.
type CachedRepository struct {
	next repository.UserRepository
	c    *ristretto.Cache[string, []byte]
	ttl  time.Duration
}

// New creates a caching decorator. maxCostBytes is the maximum total size of
// cached values in bytes.
func New(next repository.UserRepository, maxCostBytes int64, ttl time.Duration) (*CachedRepository, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: maxCostBytes / 100 * 10, // ~10x expected items
		MaxCost:     maxCostBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &CachedRepository{next: next, c: c, ttl: ttl}, nil
}

func (r *CachedRepository) Save(ctx context.Context, u *user.User) (*user.User, error) {
	saved, err := r.next.Save(ctx, u)
	if err != nil {
		return nil, err
	}
	r.c.Del(saved.ID)
	return saved, nil
}

func (r *CachedRepository) Find(ctx context.Context, id string) (*user.User, error) {
	if data, ok := r.c.Get(id); ok {
		var u user.User
		if err := json.Unmarshal(data, &u); err == nil {
			return &u, nil
		}
		// Corrupt entry: drop it and fall through to the backend.
		r.c.Del(id)
	}

	u, err := r.next.Find(ctx, id)
	if err != nil || u == nil {
		return u, err
	}

	if data, err := json.Marshal(u); err == nil {
		r.c.SetWithTTL(u.ID, data, int64(len(data)), r.ttl)
	} else {
		slog.Warn("cache encode failed", "user_id", u.ID, "error", err)
	}
	return u, nil
}

func (r *CachedRepository) List(ctx context.Context) ([]user.User, error) {
	return r.next.List(ctx)
}

func (r *CachedRepository) Delete(ctx context.Context, id string) error {
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}
	r.c.Del(id)
	return nil
}

func (r *CachedRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.next.FindByEmail(ctx, email)
}

// Wait blocks until buffered writes are applied. Only useful in tests.
func (r *CachedRepository) Wait() {
	r.c.Wait()
}

// Close shuts down the cache and releases resources.
func (r *CachedRepository) Close() {
	r.c.Close()
}
