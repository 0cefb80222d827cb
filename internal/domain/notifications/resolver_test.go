package notifications

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapDirectory map[int64]UserDetails

func (m mapDirectory) UserDetails(_ context.Context, id int64) (UserDetails, error) {
	u, ok := m[id]
	if !ok {
		return UserDetails{}, ErrSubjectNotFound
	}
	return u, nil
}

func TestDomainResolver_RoutesByDomain(t *testing.T) {
	friend := ResolverFunc(func(context.Context, Event) ([]UserDetails, error) {
		return []UserDetails{{ID: 1}}, nil
	})
	coffee := ResolverFunc(func(context.Context, Event) ([]UserDetails, error) {
		return []UserDetails{{ID: 2}}, nil
	})
	r := NewDomainResolver(map[Domain]Resolver{
		DomainFriendship:  friend,
		DomainCoffeeBreak: coffee,
	})

	got, err := r.Resolve(context.Background(), mustFriendRequest(t, 42, 7))
	require.NoError(t, err)
	assert.Equal(t, []UserDetails{{ID: 1}}, got)

	cb, err := NewCoffeeBreakCreatedEvent(CoffeeBreakDetails{}, 5, UserDetails{ID: 7})
	require.NoError(t, err)
	got, err = r.Resolve(context.Background(), cb)
	require.NoError(t, err)
	assert.Equal(t, []UserDetails{{ID: 2}}, got)
}

func TestDomainResolver_UnknownDomainIsEmpty(t *testing.T) {
	r := NewDomainResolver(nil)

	got, err := r.Resolve(context.Background(), mustFriendRequest(t, 42, 7))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLookupRecipients_SkipsMissingAndDuplicates(t *testing.T) {
	dir := mapDirectory{
		9:  {ID: 9, DisplayName: "bo"},
		15: {ID: 15, DisplayName: "cy"},
	}

	got, err := LookupRecipients(context.Background(), dir, []int64{15, 404, 9, 15})
	require.NoError(t, err)
	assert.Equal(t, []UserDetails{{ID: 15, DisplayName: "cy"}, {ID: 9, DisplayName: "bo"}}, got)
}

// flakyDirectory falla los primeros failures[id] lookups de cada id; -1 = siempre.
type flakyDirectory struct {
	users    mapDirectory
	failures map[int64]int

	mu    sync.Mutex
	calls map[int64]int
}

func newFlakyDirectory(users mapDirectory, failures map[int64]int) *flakyDirectory {
	return &flakyDirectory{users: users, failures: failures, calls: map[int64]int{}}
}

func (d *flakyDirectory) UserDetails(ctx context.Context, id int64) (UserDetails, error) {
	d.mu.Lock()
	d.calls[id]++
	n := d.calls[id]
	d.mu.Unlock()

	if f := d.failures[id]; f < 0 || n <= f {
		return UserDetails{}, errors.New("connection reset")
	}
	return d.users.UserDetails(ctx, id)
}

func (d *flakyDirectory) callsFor(id int64) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls[id]
}

func TestLookupRecipients_RetriesTransientErrors(t *testing.T) {
	dir := newFlakyDirectory(mapDirectory{9: {ID: 9}}, map[int64]int{9: 1})

	got, err := LookupRecipients(context.Background(), dir, []int64{9})
	require.NoError(t, err)
	assert.Equal(t, []UserDetails{{ID: 9}}, got)
	assert.Equal(t, 2, dir.callsFor(9))
}

func TestLookupRecipients_SkipsOnlyTheFailingRecipient(t *testing.T) {
	dir := newFlakyDirectory(mapDirectory{9: {ID: 9}, 15: {ID: 15}}, map[int64]int{15: -1})

	got, err := LookupRecipients(context.Background(), dir, []int64{9, 15})
	assert.Equal(t, []UserDetails{{ID: 9}}, got)

	var skipped *SkippedRecipientsError
	require.ErrorAs(t, err, &skipped)
	assert.Contains(t, skipped.Failed, int64(15))
	assert.Len(t, skipped.Failed, 1)
	assert.Equal(t, lookupMaxAttempts, dir.callsFor(15))
	assert.Contains(t, err.Error(), "15: connection reset")
}

func TestLookupRecipients_MissingUserIsNotRetried(t *testing.T) {
	dir := newFlakyDirectory(mapDirectory{}, nil)

	got, err := LookupRecipients(context.Background(), dir, []int64{404})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 1, dir.callsFor(404))
}
