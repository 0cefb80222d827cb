package memory

import (
	"context"
	"sort"
	"sync"

	"coffee-with-me/internal/domain/coffeebreaks"
)

type coffeeBreakRepo struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]coffeebreaks.CoffeeBreak
}

func NewCoffeeBreakRepo() coffeebreaks.Repository {
	return &coffeeBreakRepo{
		byID: make(map[int64]coffeebreaks.CoffeeBreak),
	}
}

func (r *coffeeBreakRepo) Create(ctx context.Context, c coffeebreaks.CoffeeBreak) (coffeebreaks.CoffeeBreak, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	c.ID = r.nextID
	c.AddresseeIDs = append([]int64(nil), c.AddresseeIDs...)
	r.byID[c.ID] = c
	return c, nil
}

func (r *coffeeBreakRepo) GetByID(ctx context.Context, id int64) (coffeebreaks.CoffeeBreak, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return coffeebreaks.CoffeeBreak{}, coffeebreaks.ErrNotFound
	}
	c.AddresseeIDs = append([]int64(nil), c.AddresseeIDs...)
	return c, nil
}

func (r *coffeeBreakRepo) ListForUser(ctx context.Context, userID int64) ([]coffeebreaks.CoffeeBreak, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]coffeebreaks.CoffeeBreak, 0)
	for _, c := range r.byID {
		if c.Involves(userID) {
			c.AddresseeIDs = append([]int64(nil), c.AddresseeIDs...)
			out = append(out, c)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].ScheduledTo.Equal(out[j].ScheduledTo) {
			return out[i].ID < out[j].ID
		}
		return out[i].ScheduledTo.Before(out[j].ScheduledTo)
	})
	return out, nil
}

func (r *coffeeBreakRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return coffeebreaks.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *coffeeBreakRepo) DeleteByUser(ctx context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, c := range r.byID {
		if c.RequesterID == userID {
			delete(r.byID, id)
			continue
		}
		kept := c.AddresseeIDs[:0:0]
		for _, a := range c.AddresseeIDs {
			if a != userID {
				kept = append(kept, a)
			}
		}
		if len(kept) == len(c.AddresseeIDs) {
			continue
		}
		if len(kept) == 0 {
			delete(r.byID, id)
			continue
		}
		c.AddresseeIDs = kept
		r.byID[id] = c
	}
	return nil
}
