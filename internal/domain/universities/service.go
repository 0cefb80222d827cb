package universities

import (
	"context"
	"errors"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]University, error) {
	return s.repo.ListWithoutCampuses(ctx)
}

func (s *Service) GetByID(ctx context.Context, id int64) (University, error) {
	if id <= 0 {
		return University{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// Exists lo usa users para validar university_id.
func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := s.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// CampusName lo usa coffeebreaks para completar la ubicación.
func (s *Service) CampusName(ctx context.Context, campusID int64) (string, error) {
	if campusID <= 0 {
		return "", ErrNotFound
	}
	c, err := s.repo.GetCampus(ctx, campusID)
	if err != nil {
		return "", err
	}
	return c.Name, nil
}
