package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coffee-with-me/internal/domain/coffeebreaks"
	"coffee-with-me/internal/domain/friendships"
	"coffee-with-me/internal/domain/notifications"
	"coffee-with-me/internal/domain/universities"
	"coffee-with-me/internal/domain/users"
)

type memoryApp struct {
	users        *users.Service
	friends      *friendships.Service
	coffeeBreaks *coffeebreaks.Service
	inbox        *notifications.Service
	inboxRepo    notifications.Repository
}

func newMemoryApp() memoryApp {
	univ := universities.NewService(NewUniversityRepo())
	usersSvc := users.NewService(NewUserRepo(), univ)
	friendsSvc := friendships.NewService(NewFriendshipRepo(), usersSvc, notifications.Discard, nil)
	coffeeSvc := coffeebreaks.NewService(coffeebreaks.Deps{
		Repo:     NewCoffeeBreakRepo(),
		Friends:  friendsSvc,
		Campuses: univ,
		Users:    usersSvc,
	})
	inboxRepo := NewNotificationRepo()
	inboxSvc := notifications.NewService(inboxRepo)
	usersSvc.OnDelete(friendsSvc, coffeeSvc, inboxSvc)

	return memoryApp{users: usersSvc, friends: friendsSvc, coffeeBreaks: coffeeSvc, inbox: inboxSvc, inboxRepo: inboxRepo}
}

func (a memoryApp) register(t *testing.T, username string) int64 {
	t.Helper()
	u, err := a.users.Register(context.Background(), users.RegisterInput{
		Name:     username,
		Username: username,
		Email:    username + "@ntnu.no",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	return u.ID
}

func (a memoryApp) befriend(t *testing.T, requester, addressee int64) {
	t.Helper()
	ctx := context.Background()
	_, err := a.friends.Request(ctx, requester, addressee)
	require.NoError(t, err)
	_, err = a.friends.UpdateStatus(ctx, addressee, requester, addressee, friendships.StatusAccepted)
	require.NoError(t, err)
}

func TestDeleteUser_CascadesInMemory(t *testing.T) {
	ctx := context.Background()
	app := newMemoryApp()

	ana := app.register(t, "ana")
	bruno := app.register(t, "bruno")
	cy := app.register(t, "cyrus")
	app.befriend(t, ana, bruno)
	app.befriend(t, ana, cy)

	at := time.Now().Add(24 * time.Hour)
	solo, err := app.coffeeBreaks.Create(ctx, ana, coffeebreaks.CreateInput{AddresseeIDs: []int64{bruno}, ScheduledTo: at})
	require.NoError(t, err)
	group, err := app.coffeeBreaks.Create(ctx, ana, coffeebreaks.CreateInput{AddresseeIDs: []int64{bruno, cy}, ScheduledTo: at})
	require.NoError(t, err)

	require.NoError(t, app.inboxRepo.Create(ctx, notifications.Notification{ID: "01A", RecipientID: bruno}))

	count, err := app.friends.FriendsCount(ctx, ana)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	require.NoError(t, app.users.Delete(ctx, bruno))

	count, err = app.friends.FriendsCount(ctx, ana)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	ok, err := app.friends.AreFriends(ctx, ana, bruno)
	require.NoError(t, err)
	assert.False(t, ok)

	// ya no se lo puede invitar
	_, err = app.coffeeBreaks.Create(ctx, ana, coffeebreaks.CreateInput{AddresseeIDs: []int64{bruno}, ScheduledTo: at})
	assert.ErrorIs(t, err, coffeebreaks.ErrNotFriends)

	// el coffee break donde era el único invitado desaparece; el grupal sigue sin él
	_, err = app.coffeeBreaks.GetByID(ctx, ana, solo.ID)
	assert.ErrorIs(t, err, coffeebreaks.ErrNotFound)
	g, err := app.coffeeBreaks.GetByID(ctx, ana, group.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{cy}, g.AddresseeIDs)

	items, err := app.inboxRepo.ListByRecipient(ctx, bruno, 10)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = app.users.GetByID(ctx, bruno)
	assert.ErrorIs(t, err, users.ErrNotFound)
}

func TestCoffeeBreakRepo_DeleteByUserRemovesOwnBreaks(t *testing.T) {
	ctx := context.Background()
	r := NewCoffeeBreakRepo()

	own, err := r.Create(ctx, coffeebreaks.CoffeeBreak{RequesterID: 3, AddresseeIDs: []int64{9}})
	require.NoError(t, err)
	other, err := r.Create(ctx, coffeebreaks.CoffeeBreak{RequesterID: 9, AddresseeIDs: []int64{3, 15}})
	require.NoError(t, err)

	require.NoError(t, r.DeleteByUser(ctx, 3))

	_, err = r.GetByID(ctx, own.ID)
	assert.ErrorIs(t, err, coffeebreaks.ErrNotFound)
	got, err := r.GetByID(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{15}, got.AddresseeIDs)
}
