// Package directory loads user records from the backing store and keeps a
// time-bounded read-only snapshot of them. Lookup keys are normalized emails;
// records are immutable once loaded.
package directory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Garnistarr/water-data-app/internal/store"
)

const (
	RoleProcessController = "Process Controller"
	RoleManager           = "Manager"
)

// ErrUnavailable means the user table could not be read or holds no rows.
// Login must treat this as a hard stop.
var ErrUnavailable = errors.New("user directory unavailable")

// UserRecord is one user as seen by the rest of the app.
type UserRecord struct {
	Email      string // original casing, trimmed
	Name       string
	Digest     string // password digest, never the plaintext
	Role       string
	Facilities []string // ordered, deduplicated
}

// Load fetches every user row and builds the normalized-email lookup map.
// Malformed facility lists degrade to empty lists; a failed query or an empty
// table returns ErrUnavailable.
func Load(ctx context.Context, st store.Store) (map[string]UserRecord, error) {
	rows, err := st.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	users := make(map[string]UserRecord, len(rows))
	for _, row := range rows {
		key := NormalizeEmail(row.Email)
		if key == "" {
			continue // skip invalid rows
		}
		users[key] = UserRecord{
			Email:      trimmed(row.Email),
			Name:       row.Name,
			Digest:     row.PasswordDigest,
			Role:       row.Role,
			Facilities: CoerceFacilities(row.FacilitiesRaw),
		}
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("%w: no users found", ErrUnavailable)
	}
	return users, nil
}

// Cache is a TTL-bounded snapshot of the directory shared across requests.
// It holds no per-session data; handlers only read from it.
type Cache struct {
	st  store.Store
	ttl time.Duration

	mu       sync.Mutex
	users    map[string]UserRecord
	loadedAt time.Time
}

func NewCache(st store.Store, ttl time.Duration) *Cache {
	return &Cache{st: st, ttl: ttl}
}

// Lookup resolves a normalized email to its record, refreshing the snapshot
// when stale.
func (c *Cache) Lookup(ctx context.Context, email string) (UserRecord, bool, error) {
	users, err := c.snapshot(ctx)
	if err != nil {
		return UserRecord{}, false, err
	}
	rec, ok := users[NormalizeEmail(email)]
	return rec, ok, nil
}

// Invalidate drops the snapshot so the next lookup reloads.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.users = nil
	c.loadedAt = time.Time{}
	c.mu.Unlock()
}

func (c *Cache) snapshot(ctx context.Context) (map[string]UserRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.users != nil && time.Since(c.loadedAt) < c.ttl {
		return c.users, nil
	}
	users, err := Load(ctx, c.st)
	if err != nil {
		// Keep serving a stale snapshot over failing outright.
		if c.users != nil {
			return c.users, nil
		}
		return nil, err
	}
	c.users = users
	c.loadedAt = time.Now()
	return c.users, nil
}
