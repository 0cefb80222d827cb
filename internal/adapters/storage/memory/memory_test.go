package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coffee-with-me/internal/domain/friendships"
	"coffee-with-me/internal/domain/notifications"
	"coffee-with-me/internal/domain/universities"
	"coffee-with-me/internal/domain/users"
)

func TestUserRepo_AssignsIDsAndRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepo()

	a, err := r.Create(ctx, users.User{Email: "ana@ntnu.no", Username: "ana"})
	require.NoError(t, err)
	b, err := r.Create(ctx, users.User{Email: "bo@ntnu.no", Username: "bo"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.ID)
	assert.Equal(t, int64(2), b.ID)

	_, err = r.Create(ctx, users.User{Email: "ANA@ntnu.no", Username: "other"})
	assert.ErrorIs(t, err, users.ErrDuplicate)
	_, err = r.Create(ctx, users.User{Email: "x@ntnu.no", Username: "BO"})
	assert.ErrorIs(t, err, users.ErrDuplicate)

	b.Username = "ana"
	assert.ErrorIs(t, r.Update(ctx, b), users.ErrDuplicate)

	found, err := r.Search(ctx, "NTNU", 1)
	require.NoError(t, err)
	assert.Len(t, found, 1)

	require.NoError(t, r.Delete(ctx, a.ID))
	_, err = r.GetByID(ctx, a.ID)
	assert.ErrorIs(t, err, users.ErrNotFound)
}

func TestUniversityRepo_Seeded(t *testing.T) {
	ctx := context.Background()
	r := NewUniversityRepo()

	list, err := r.ListWithoutCampuses(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].Campuses)

	u, err := r.GetByID(ctx, list[0].ID)
	require.NoError(t, err)
	assert.Len(t, u.Campuses, 3)

	c, err := r.GetCampus(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Gløshaugen", c.Name)

	_, err = r.GetByID(ctx, 99)
	assert.ErrorIs(t, err, universities.ErrNotFound)
}

func TestFriendshipRepo_EitherDirection(t *testing.T) {
	ctx := context.Background()
	r := NewFriendshipRepo()

	require.NoError(t, r.Create(ctx, friendships.Friendship{RequesterID: 1, AddresseeID: 2, Status: friendships.StatusRequested}))
	assert.ErrorIs(t, r.Create(ctx, friendships.Friendship{RequesterID: 2, AddresseeID: 1}), friendships.ErrDuplicate)

	_, err := r.Get(ctx, 2, 1)
	assert.ErrorIs(t, err, friendships.ErrNotFound)

	f, err := r.Find(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), f.RequesterID)

	n, err := r.CountByUser(ctx, 2, friendships.StatusAccepted)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, r.Delete(ctx, 2, 1))
	_, err = r.Find(ctx, 1, 2)
	assert.ErrorIs(t, err, friendships.ErrNotFound)
}

func TestNotificationRepo_NewestFirst(t *testing.T) {
	ctx := context.Background()
	r := NewNotificationRepo()

	for _, id := range []string{"01A", "01C", "01B"} {
		require.NoError(t, r.Create(ctx, notifications.Notification{ID: id, RecipientID: 9, CreatedAt: time.Now()}))
	}
	require.NoError(t, r.Create(ctx, notifications.Notification{ID: "01D", RecipientID: 15}))

	got, err := r.ListByRecipient(ctx, 9, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "01C", got[0].ID)
	assert.Equal(t, "01B", got[1].ID)

	require.NoError(t, r.MarkSeen(ctx, "01A"))
	n, _ := r.GetByID(ctx, "01A")
	assert.True(t, n.Seen)
	assert.ErrorIs(t, r.MarkSeen(ctx, "nope"), notifications.ErrNotFound)
}
