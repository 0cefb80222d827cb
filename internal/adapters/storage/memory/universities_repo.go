package memory

import (
	"context"
	"sort"
	"sync"

	"coffee-with-me/internal/domain/universities"
)

type universityRepo struct {
	mu       sync.RWMutex
	byID     map[int64]universities.University
	campuses map[int64]universities.Campus
}

// NewUniversityRepo arranca con el mismo catálogo que siembra la migración de Postgres.
func NewUniversityRepo() universities.Repository {
	r := &universityRepo{
		byID:     make(map[int64]universities.University),
		campuses: make(map[int64]universities.Campus),
	}
	for _, u := range DefaultUniversities() {
		r.put(u)
	}
	return r
}

// DefaultUniversities es el seed de desarrollo.
func DefaultUniversities() []universities.University {
	return []universities.University{
		{
			ID:   1,
			Name: "Norwegian University of Science and Technology",
			Campuses: []universities.Campus{
				{ID: 1, UniversityID: 1, Name: "Gløshaugen"},
				{ID: 2, UniversityID: 1, Name: "Dragvoll"},
				{ID: 3, UniversityID: 1, Name: "Kalvskinnet"},
			},
		},
	}
}

func (r *universityRepo) put(u universities.University) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u.Campuses = append([]universities.Campus(nil), u.Campuses...)
	r.byID[u.ID] = u
	for _, c := range u.Campuses {
		r.campuses[c.ID] = c
	}
}

func (r *universityRepo) ListWithoutCampuses(ctx context.Context) ([]universities.University, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]universities.University, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, universities.University{ID: u.ID, Name: u.Name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *universityRepo) GetByID(ctx context.Context, id int64) (universities.University, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return universities.University{}, universities.ErrNotFound
	}
	u.Campuses = append([]universities.Campus(nil), u.Campuses...)
	return u, nil
}

func (r *universityRepo) GetCampus(ctx context.Context, id int64) (universities.Campus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.campuses[id]
	if !ok {
		return universities.Campus{}, universities.ErrNotFound
	}
	return c, nil
}
