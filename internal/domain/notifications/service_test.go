package notifications

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedInbox(t *testing.T, repo *testRepo, n Notification) {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), n))
}

func TestService_ListOnlyRecipient(t *testing.T) {
	repo := newTestRepo()
	seedInbox(t, repo, Notification{ID: "01A", RecipientID: 9})
	seedInbox(t, repo, Notification{ID: "01B", RecipientID: 9})
	seedInbox(t, repo, Notification{ID: "01C", RecipientID: 15})

	svc := NewService(repo)

	got, err := svc.List(context.Background(), 9, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "01B", got[0].ID)

	got, err = svc.List(context.Background(), 9, 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = svc.List(context.Background(), 0, 10)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_MarkSeen(t *testing.T) {
	repo := newTestRepo()
	seedInbox(t, repo, Notification{ID: "01A", RecipientID: 9})
	svc := NewService(repo)

	_, err := svc.MarkSeen(context.Background(), 15, "01A")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.MarkSeen(context.Background(), 9, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := svc.MarkSeen(context.Background(), 9, "01A")
	require.NoError(t, err)
	assert.True(t, n.Seen)

	stored, _ := repo.GetByID(context.Background(), "01A")
	assert.True(t, stored.Seen)

	// idempotente
	_, err = svc.MarkSeen(context.Background(), 9, "01A")
	assert.NoError(t, err)
}
