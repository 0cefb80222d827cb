package universities

import (
	"context"
	"errors"
	"testing"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	byID     map[int64]University
	campuses map[int64]Campus
	err      error
}

func newTestRepo() *testRepo {
	return &testRepo{
		byID: map[int64]University{
			1: {ID: 1, Name: "NTNU"},
		},
		campuses: map[int64]Campus{
			1: {ID: 1, UniversityID: 1, Name: "Gløshaugen"},
		},
	}
}

func (r *testRepo) ListWithoutCampuses(context.Context) ([]University, error) {
	out := make([]University, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, u)
	}
	return out, nil
}

func (r *testRepo) GetByID(_ context.Context, id int64) (University, error) {
	if r.err != nil {
		return University{}, r.err
	}
	u, ok := r.byID[id]
	if !ok {
		return University{}, ErrNotFound
	}
	return u, nil
}

func (r *testRepo) GetCampus(_ context.Context, id int64) (Campus, error) {
	if r.err != nil {
		return Campus{}, r.err
	}
	c, ok := r.campuses[id]
	if !ok {
		return Campus{}, ErrNotFound
	}
	return c, nil
}

func TestService_Exists(t *testing.T) {
	svc := NewService(newTestRepo())
	ctx := context.Background()

	ok, err := svc.Exists(ctx, 1)
	if err != nil || !ok {
		t.Fatalf("expected university 1 to exist, got ok=%v err=%v", ok, err)
	}

	for _, id := range []int64{999, 0, -1} {
		ok, err := svc.Exists(ctx, id)
		if err != nil {
			t.Fatalf("Exists(%d): unexpected error %v", id, err)
		}
		if ok {
			t.Fatalf("Exists(%d): expected false", id)
		}
	}
}

func TestService_Exists_PropagatesStorageErrors(t *testing.T) {
	repo := newTestRepo()
	repo.err = errors.New("db down")
	svc := NewService(repo)

	ok, err := svc.Exists(context.Background(), 1)
	if err == nil || ok {
		t.Fatalf("expected storage error, got ok=%v err=%v", ok, err)
	}
}

func TestService_CampusName(t *testing.T) {
	svc := NewService(newTestRepo())
	ctx := context.Background()

	name, err := svc.CampusName(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "Gløshaugen" {
		t.Fatalf("expected Gløshaugen, got %q", name)
	}

	for _, id := range []int64{42, 0} {
		if _, err := svc.CampusName(ctx, id); !errors.Is(err, ErrNotFound) {
			t.Fatalf("CampusName(%d): expected ErrNotFound, got %v", id, err)
		}
	}
}

func TestService_GetByID_RejectsNonPositiveID(t *testing.T) {
	svc := NewService(newTestRepo())
	if _, err := svc.GetByID(context.Background(), 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
