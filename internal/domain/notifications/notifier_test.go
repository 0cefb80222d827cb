package notifications

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	mu   sync.Mutex
	byID map[string]Notification
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Notification{}}
}

func (r *testRepo) Create(_ context.Context, n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[n.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[n.ID] = n
	return nil
}

func (r *testRepo) GetByID(_ context.Context, id string) (Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.byID[id]
	if !ok {
		return Notification{}, ErrNotFound
	}
	return n, nil
}

func (r *testRepo) ListByRecipient(_ context.Context, recipientID int64, limit int) ([]Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, 0)
	for _, n := range r.byID {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *testRepo) MarkSeen(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	n.Seen = true
	r.byID[id] = n
	return nil
}

func (r *testRepo) DeleteByRecipient(_ context.Context, recipientID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, n := range r.byID {
		if n.RecipientID == recipientID {
			delete(r.byID, id)
		}
	}
	return nil
}

func (r *testRepo) all() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, 0, len(r.byID))
	for _, n := range r.byID {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RecipientID < out[j].RecipientID })
	return out
}

type recordingSink struct {
	name string
	err  error

	mu    sync.Mutex
	calls int
	got   []Notification
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Deliver(_ context.Context, n Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return s.err
	}
	s.got = append(s.got, n)
	return nil
}

func fixedResolver(users ...UserDetails) Resolver {
	return ResolverFunc(func(context.Context, Event) ([]UserDetails, error) {
		return users, nil
	})
}

func testNotifier(r Resolver, repo Repository, sinks ...Sink) *Notifier {
	return NewNotifier(NotifierOptions{
		Resolver:     r,
		Repo:         repo,
		Sinks:        sinks,
		MaxAttempts:  2,
		RetryInitial: time.Millisecond,
	})
}

func TestNotifier_FriendRequestReachesAddressee(t *testing.T) {
	repo := newTestRepo()
	sink := &recordingSink{name: "rec"}
	n := testNotifier(fixedResolver(UserDetails{ID: 42, DisplayName: "bo"}), repo, sink)

	ana := UserDetails{ID: 7, DisplayName: "ana"}
	e, err := NewFriendRequestEvent(42, ana)
	require.NoError(t, err)

	require.NoError(t, n.Consume(context.Background(), e))

	stored := repo.all()
	require.Len(t, stored, 1)
	got := stored[0]
	assert.Equal(t, int64(42), got.RecipientID)
	assert.Equal(t, ana, got.Actor)
	assert.Equal(t, e.ID(), got.EventID)
	assert.Equal(t, KindFriendRequest, got.Kind)
	assert.Equal(t, "ana sent you a friend request", got.Message)
	assert.False(t, got.Seen)
	assert.NotEmpty(t, got.ID)

	require.Len(t, sink.got, 1)
	assert.Equal(t, got.ID, sink.got[0].ID)
}

func TestNotifier_CoffeeBreakCarriesDetails(t *testing.T) {
	repo := newTestRepo()
	n := testNotifier(fixedResolver(UserDetails{ID: 9}, UserDetails{ID: 15}), repo)

	at := time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)
	e, err := NewCoffeeBreakCreatedEvent(CoffeeBreakDetails{
		Location:     "Gløshaugen",
		ScheduledTo:  at,
		Participants: []int64{3, 9, 15},
	}, 100, UserDetails{ID: 3, DisplayName: "cy"})
	require.NoError(t, err)

	require.NoError(t, n.Consume(context.Background(), e))

	stored := repo.all()
	require.Len(t, stored, 2)
	assert.Equal(t, int64(9), stored[0].RecipientID)
	assert.Equal(t, int64(15), stored[1].RecipientID)
	for _, s := range stored {
		require.NotNil(t, s.CoffeeBreak)
		assert.Equal(t, "Gløshaugen", s.CoffeeBreak.Location)
		assert.Equal(t, int64(100), s.SubjectID)
		assert.Equal(t, "cy invited you to a coffee break at Gløshaugen on Mon 2 Mar 10:30", s.Message)
	}
}

func TestNotifier_FailingSinkDoesNotBlockOthers(t *testing.T) {
	repo := newTestRepo()
	bad := &recordingSink{name: "bad", err: errors.New("redis down")}
	good := &recordingSink{name: "good"}
	n := testNotifier(fixedResolver(UserDetails{ID: 9}, UserDetails{ID: 15}), repo, bad, good)

	e, err := NewFriendRequestAcceptedEvent(9, UserDetails{ID: 3})
	require.NoError(t, err)

	// fallas de entrega no vuelven al dispatcher
	require.NoError(t, n.Consume(context.Background(), e))

	assert.Len(t, repo.all(), 2)
	assert.Len(t, good.got, 2)
	// 2 destinatarios x 2 intentos
	assert.Equal(t, 4, bad.calls)
}

type panickingSink struct{}

func (panickingSink) Name() string { return "panicky" }
func (panickingSink) Deliver(context.Context, Notification) error {
	panic("boom")
}

func TestNotifier_PanickingSinkIsIsolated(t *testing.T) {
	good := &recordingSink{name: "good"}
	n := testNotifier(fixedResolver(UserDetails{ID: 9}), nil, panickingSink{}, good)

	e, err := NewFriendRequestEvent(9, UserDetails{ID: 3})
	require.NoError(t, err)

	require.NoError(t, n.Consume(context.Background(), e))
	assert.Len(t, good.got, 1)
}

func TestNotifier_ResolveErrorIsReturned(t *testing.T) {
	repo := newTestRepo()
	n := testNotifier(ResolverFunc(func(context.Context, Event) ([]UserDetails, error) {
		return nil, errors.New("db timeout")
	}), repo)

	e, err := NewFriendRequestEvent(9, UserDetails{ID: 3})
	require.NoError(t, err)

	assert.Error(t, n.Consume(context.Background(), e))
	assert.Empty(t, repo.all())
}

func TestNotifier_FailingLookupDropsOnlyThatRecipient(t *testing.T) {
	repo := newTestRepo()
	sink := &recordingSink{name: "rec"}
	dir := newFlakyDirectory(mapDirectory{9: {ID: 9}, 15: {ID: 15}}, map[int64]int{15: -1})
	n := testNotifier(ResolverFunc(func(ctx context.Context, _ Event) ([]UserDetails, error) {
		return LookupRecipients(ctx, dir, []int64{9, 15})
	}), repo, sink)

	e, err := NewCoffeeBreakCreatedEvent(CoffeeBreakDetails{Participants: []int64{3, 9, 15}}, 100, UserDetails{ID: 3})
	require.NoError(t, err)

	require.NoError(t, n.Consume(context.Background(), e))

	stored := repo.all()
	require.Len(t, stored, 1)
	assert.Equal(t, int64(9), stored[0].RecipientID)
	assert.Len(t, sink.got, 1)
}

func TestNotifier_ThroughDispatcher_OtherRecipientsStillNotified(t *testing.T) {
	repo := newTestRepo()
	dir := newFlakyDirectory(mapDirectory{9: {ID: 9}, 15: {ID: 15}}, map[int64]int{15: -1})
	n := testNotifier(ResolverFunc(func(ctx context.Context, _ Event) ([]UserDetails, error) {
		return LookupRecipients(ctx, dir, []int64{9, 15})
	}), repo)
	d := testDispatcher(n)

	e, err := NewCoffeeBreakCreatedEvent(CoffeeBreakDetails{Participants: []int64{3, 9, 15}}, 100, UserDetails{ID: 3})
	require.NoError(t, err)
	require.NoError(t, d.Publish(context.Background(), e))
	closeDispatcher(t, d)

	stored := repo.all()
	require.Len(t, stored, 1)
	assert.Equal(t, int64(9), stored[0].RecipientID)
	// el dispatcher no reintenta el evento entero: un solo ciclo de lookups para 15
	assert.Equal(t, lookupMaxAttempts, dir.callsFor(15))
}

func TestNotifier_NoRecipientsIsNoop(t *testing.T) {
	repo := newTestRepo()
	sink := &recordingSink{name: "rec"}
	n := testNotifier(fixedResolver(), repo, sink)

	e, err := NewFriendRequestEvent(9, UserDetails{ID: 3})
	require.NoError(t, err)

	require.NoError(t, n.Consume(context.Background(), e))
	assert.Empty(t, repo.all())
	assert.Zero(t, sink.calls)
}

func TestRenderMessage_FallsBackToUserID(t *testing.T) {
	e, err := NewFriendRequestAcceptedEvent(9, UserDetails{ID: 3})
	require.NoError(t, err)
	assert.Equal(t, "User 3 accepted your friend request", RenderMessage(e))
}
