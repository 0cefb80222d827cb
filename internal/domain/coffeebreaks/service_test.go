package coffeebreaks

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coffee-with-me/internal/domain/notifications"
)

// -------------------------
// Fakes
// -------------------------

type testRepo struct {
	mu        sync.Mutex
	nextID    int64
	byID      map[int64]CoffeeBreak
	createErr error
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[int64]CoffeeBreak{}}
}

func (r *testRepo) Create(_ context.Context, c CoffeeBreak) (CoffeeBreak, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return CoffeeBreak{}, r.createErr
	}
	r.nextID++
	c.ID = r.nextID
	r.byID[c.ID] = c
	return c, nil
}

func (r *testRepo) GetByID(_ context.Context, id int64) (CoffeeBreak, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return CoffeeBreak{}, ErrNotFound
	}
	return c, nil
}

func (r *testRepo) ListForUser(_ context.Context, userID int64) ([]CoffeeBreak, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]CoffeeBreak, 0)
	for _, c := range r.byID {
		if c.Involves(userID) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledTo.Before(out[j].ScheduledTo) })
	return out, nil
}

func (r *testRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *testRepo) DeleteByUser(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.byID {
		if c.Involves(userID) {
			delete(r.byID, id)
		}
	}
	return nil
}

// friendsOf[a] contiene b si a y b son amigos (simétrico en el setup).
type friendGraph map[int64]map[int64]bool

func (g friendGraph) AreFriends(_ context.Context, a, b int64) (bool, error) {
	return g[a][b] || g[b][a], nil
}

type campuses map[int64]string

func (c campuses) CampusName(_ context.Context, id int64) (string, error) {
	name, ok := c[id]
	if !ok {
		return "", errors.New("campus not found")
	}
	return name, nil
}

type directory map[int64]notifications.UserDetails

func (d directory) UserDetails(_ context.Context, id int64) (notifications.UserDetails, error) {
	u, ok := d[id]
	if !ok {
		return notifications.UserDetails{}, notifications.ErrSubjectNotFound
	}
	return u, nil
}

type capturePublisher struct {
	mu     sync.Mutex
	events []notifications.Event
}

func (p *capturePublisher) Publish(_ context.Context, e notifications.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

var (
	u3  = notifications.UserDetails{ID: 3, DisplayName: "ana"}
	u9  = notifications.UserDetails{ID: 9, DisplayName: "bo"}
	u15 = notifications.UserDetails{ID: 15, DisplayName: "cy"}
	u20 = notifications.UserDetails{ID: 20, DisplayName: "di"}
)

var at = time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)

func newTestService() (*Service, *testRepo, *capturePublisher) {
	repo := newTestRepo()
	pub := &capturePublisher{}
	svc := NewService(Deps{
		Repo:     repo,
		Friends:  friendGraph{3: {9: true, 15: true}},
		Campuses: campuses{1: "Gløshaugen"},
		Users:    directory{3: u3, 9: u9, 15: u15, 20: u20},
		Events:   pub,
	})
	return svc, repo, pub
}

// -------------------------
// Tests
// -------------------------

func TestCreate_PublishesWithParticipants(t *testing.T) {
	svc, _, pub := newTestService()
	campus := int64(1)

	c, err := svc.Create(context.Background(), 3, CreateInput{
		AddresseeIDs: []int64{9, 15, 9, 3},
		ScheduledTo:  at,
		CampusID:     &campus,
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{9, 15}, c.AddresseeIDs)
	assert.Equal(t, "Gløshaugen", c.Location)

	require.Len(t, pub.events, 1)
	e := pub.events[0]
	assert.Equal(t, notifications.KindCoffeeBreakCreated, e.Kind())
	assert.Equal(t, c.ID, e.SubjectID())
	assert.Equal(t, u3, e.Actor())

	d, ok := e.CoffeeBreakDetails()
	require.True(t, ok)
	assert.Equal(t, []int64{3, 9, 15}, d.Participants)
	assert.Equal(t, "Gløshaugen", d.Location)
	assert.Equal(t, at, d.ScheduledTo)
}

func TestCreate_ExplicitLocationWins(t *testing.T) {
	svc, _, _ := newTestService()
	campus := int64(1)

	c, err := svc.Create(context.Background(), 3, CreateInput{
		AddresseeIDs: []int64{9},
		ScheduledTo:  at,
		CampusID:     &campus,
		Location:     "Realfagbygget",
	})
	require.NoError(t, err)
	assert.Equal(t, "Realfagbygget", c.Location)
}

func TestCreate_Validation(t *testing.T) {
	unknownCampus := int64(77)

	cases := []struct {
		name string
		in   CreateInput
		want error
	}{
		{"no addressees", CreateInput{ScheduledTo: at}, ErrInvalidInput},
		{"only self", CreateInput{AddresseeIDs: []int64{3}, ScheduledTo: at}, ErrInvalidInput},
		{"no time", CreateInput{AddresseeIDs: []int64{9}}, ErrInvalidInput},
		{"not a friend", CreateInput{AddresseeIDs: []int64{9, 20}, ScheduledTo: at}, ErrNotFriends},
		{"unknown campus", CreateInput{AddresseeIDs: []int64{9}, ScheduledTo: at, CampusID: &unknownCampus}, ErrInvalidInput},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, repo, pub := newTestService()
			_, err := svc.Create(context.Background(), 3, tc.in)
			assert.ErrorIs(t, err, tc.want)
			assert.Empty(t, repo.byID)
			assert.Empty(t, pub.events)
		})
	}
}

func TestCreate_NoEventWhenWriteFails(t *testing.T) {
	svc, repo, pub := newTestService()
	repo.createErr = errors.New("disk full")

	_, err := svc.Create(context.Background(), 3, CreateInput{AddresseeIDs: []int64{9}, ScheduledTo: at})
	require.Error(t, err)
	assert.Empty(t, pub.events)
}

func TestGetAndCancel(t *testing.T) {
	svc, _, _ := newTestService()
	c, err := svc.Create(context.Background(), 3, CreateInput{AddresseeIDs: []int64{9}, ScheduledTo: at})
	require.NoError(t, err)

	_, err = svc.GetByID(context.Background(), 9, c.ID)
	assert.NoError(t, err)

	// un no participante no lo ve
	_, err = svc.GetByID(context.Background(), 20, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// sólo el requester cancela
	assert.ErrorIs(t, svc.Cancel(context.Background(), 9, c.ID), ErrForbidden)
	require.NoError(t, svc.Cancel(context.Background(), 3, c.ID))

	_, err = svc.GetByID(context.Background(), 3, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListForUser(t *testing.T) {
	svc, _, _ := newTestService()
	later := at.Add(24 * time.Hour)

	_, err := svc.Create(context.Background(), 3, CreateInput{AddresseeIDs: []int64{9}, ScheduledTo: later})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), 3, CreateInput{AddresseeIDs: []int64{15}, ScheduledTo: at})
	require.NoError(t, err)

	items, err := svc.ListForUser(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, at, items[0].ScheduledTo)

	items, err = svc.ListForUser(context.Background(), 9)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}
