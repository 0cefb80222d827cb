package memory

import (
	"context"
	"sort"
	"sync"

	"coffee-with-me/internal/domain/friendships"
)

type friendshipKey struct {
	requester int64
	addressee int64
}

type friendshipRepo struct {
	mu     sync.RWMutex
	byPair map[friendshipKey]friendships.Friendship
}

func NewFriendshipRepo() friendships.Repository {
	return &friendshipRepo{
		byPair: make(map[friendshipKey]friendships.Friendship),
	}
}

// find busca en ambas direcciones. Llamar con lock.
func (r *friendshipRepo) find(a, b int64) (friendships.Friendship, bool) {
	if f, ok := r.byPair[friendshipKey{a, b}]; ok {
		return f, true
	}
	f, ok := r.byPair[friendshipKey{b, a}]
	return f, ok
}

func (r *friendshipRepo) Create(ctx context.Context, f friendships.Friendship) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.find(f.RequesterID, f.AddresseeID); exists {
		return friendships.ErrDuplicate
	}
	r.byPair[friendshipKey{f.RequesterID, f.AddresseeID}] = f
	return nil
}

func (r *friendshipRepo) Update(ctx context.Context, f friendships.Friendship) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := friendshipKey{f.RequesterID, f.AddresseeID}
	if _, exists := r.byPair[k]; !exists {
		return friendships.ErrNotFound
	}
	r.byPair[k] = f
	return nil
}

func (r *friendshipRepo) Get(ctx context.Context, requesterID, addresseeID int64) (friendships.Friendship, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.byPair[friendshipKey{requesterID, addresseeID}]
	if !ok {
		return friendships.Friendship{}, friendships.ErrNotFound
	}
	return f, nil
}

func (r *friendshipRepo) Find(ctx context.Context, a, b int64) (friendships.Friendship, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.find(a, b)
	if !ok {
		return friendships.Friendship{}, friendships.ErrNotFound
	}
	return f, nil
}

func (r *friendshipRepo) Delete(ctx context.Context, a, b int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.find(a, b)
	if !ok {
		return friendships.ErrNotFound
	}
	delete(r.byPair, friendshipKey{f.RequesterID, f.AddresseeID})
	return nil
}

func (r *friendshipRepo) ListByUser(ctx context.Context, userID int64, status friendships.Status) ([]friendships.Friendship, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]friendships.Friendship, 0)
	for _, f := range r.byPair {
		if !f.Involves(userID) {
			continue
		}
		if status != "" && f.Status != status {
			continue
		}
		out = append(out, f)
	}

	// más recientes primero
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (r *friendshipRepo) CountByUser(ctx context.Context, userID int64, status friendships.Status) (int, error) {
	items, err := r.ListByUser(ctx, userID, status)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

func (r *friendshipRepo) DeleteByUser(ctx context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for k, f := range r.byPair {
		if f.Involves(userID) {
			delete(r.byPair, k)
		}
	}
	return nil
}
