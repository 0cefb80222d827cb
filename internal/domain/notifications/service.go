package notifications

import (
	"context"
	"errors"
	"strings"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// Service es el lado de lectura del inbox.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, recipientID int64, limit int) ([]Notification, error) {
	if recipientID <= 0 {
		return nil, ErrInvalidInput
	}
	switch {
	case limit <= 0:
		limit = defaultListLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}
	return s.repo.ListByRecipient(ctx, recipientID, limit)
}

// MarkSeen sólo la puede hacer el destinatario. Marcar dos veces no es error.
func (s *Service) MarkSeen(ctx context.Context, recipientID int64, id string) (Notification, error) {
	id = strings.TrimSpace(id)
	if recipientID <= 0 || id == "" {
		return Notification{}, ErrInvalidInput
	}

	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Notification{}, err
	}
	if n.RecipientID != recipientID {
		return Notification{}, ErrForbidden
	}
	if n.Seen {
		return n, nil
	}

	if err := s.repo.MarkSeen(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return Notification{}, ErrNotFound
		}
		return Notification{}, err
	}
	n.Seen = true
	return n, nil
}

// DeleteUserData vacía el inbox de una cuenta que se elimina.
func (s *Service) DeleteUserData(ctx context.Context, userID int64) error {
	return s.repo.DeleteByRecipient(ctx, userID)
}
