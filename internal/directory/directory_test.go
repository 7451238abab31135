package directory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garnistarr/water-data-app/internal/store"
)

type fakeStore struct {
	users     []store.UserRow
	listErr   error
	listCalls int
}

func (f *fakeStore) ListUsers(ctx context.Context) ([]store.UserRow, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.users, nil
}

func (f *fakeStore) UpsertUser(ctx context.Context, u store.UserRow) error { return nil }

func (f *fakeStore) InsertEntries(ctx context.Context, rows []store.EntryRow) ([]store.RowError, error) {
	return nil, nil
}

func (f *fakeStore) Close() error { return nil }

func TestLoadNormalizesKeys(t *testing.T) {
	st := &fakeStore{users: []store.UserRow{
		{Email: " Ops@Plant.Example ", Name: "Sam", PasswordDigest: "$2a$x", Role: RoleProcessController, FacilitiesRaw: "Plant A,Plant B"},
	}}
	users, err := Load(context.Background(), st)
	require.NoError(t, err)

	rec, ok := users["ops@plant.example"]
	require.True(t, ok)
	assert.Equal(t, "Ops@Plant.Example", rec.Email)
	assert.Equal(t, []string{"Plant A", "Plant B"}, rec.Facilities)
}

func TestLoadQueryFailure(t *testing.T) {
	st := &fakeStore{listErr: errors.New("connection refused")}
	_, err := Load(context.Background(), st)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestLoadEmptyTableIsUnavailable(t *testing.T) {
	st := &fakeStore{}
	_, err := Load(context.Background(), st)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestLoadSkipsBlankEmails(t *testing.T) {
	st := &fakeStore{users: []store.UserRow{
		{Email: "   ", Name: "ghost"},
		{Email: "a@x.com", Name: "A", Role: RoleManager},
	}}
	users, err := Load(context.Background(), st)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestLoadMalformedFacilitiesDegradeToEmpty(t *testing.T) {
	st := &fakeStore{users: []store.UserRow{
		{Email: "a@x.com", Role: RoleProcessController, FacilitiesRaw: `["broken`},
	}}
	users, err := Load(context.Background(), st)
	require.NoError(t, err)
	assert.Empty(t, users["a@x.com"].Facilities)
}

func TestCacheReusesSnapshotWithinTTL(t *testing.T) {
	st := &fakeStore{users: []store.UserRow{{Email: "a@x.com", Role: RoleManager}}}
	c := NewCache(st, time.Hour)

	_, ok, err := c.Lookup(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.True(t, ok)
	_, _, err = c.Lookup(context.Background(), "A@X.COM")
	require.NoError(t, err)

	assert.Equal(t, 1, st.listCalls)
}

func TestCacheInvalidateForcesReload(t *testing.T) {
	st := &fakeStore{users: []store.UserRow{{Email: "a@x.com", Role: RoleManager}}}
	c := NewCache(st, time.Hour)

	_, _, err := c.Lookup(context.Background(), "a@x.com")
	require.NoError(t, err)
	c.Invalidate()
	_, _, err = c.Lookup(context.Background(), "a@x.com")
	require.NoError(t, err)

	assert.Equal(t, 2, st.listCalls)
}

func TestCacheServesStaleOnReloadFailure(t *testing.T) {
	st := &fakeStore{users: []store.UserRow{{Email: "a@x.com", Role: RoleManager}}}
	c := NewCache(st, time.Millisecond)

	_, ok, err := c.Lookup(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.True(t, ok)

	st.listErr = errors.New("down")
	time.Sleep(5 * time.Millisecond)
	_, ok, err = c.Lookup(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.True(t, ok, "stale snapshot should still serve lookups")
}

func TestCacheFirstLoadFailureSurfaces(t *testing.T) {
	st := &fakeStore{listErr: errors.New("down")}
	c := NewCache(st, time.Hour)
	_, _, err := c.Lookup(context.Background(), "a@x.com")
	assert.ErrorIs(t, err, ErrUnavailable)
}
