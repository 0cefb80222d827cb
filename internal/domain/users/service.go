package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"coffee-with-me/internal/domain/notifications"
	"coffee-with-me/internal/platform/validation"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

type Service struct {
	repo         Repository
	universities UniversityChecker
	validate     *validation.Validator
	now          func() time.Time

	cleaners []AccountCleaner
}

// NewService: universities puede ser nil (no se valida university_id).
func NewService(repo Repository, universities UniversityChecker) *Service {
	return &Service{
		repo:         repo,
		universities: universities,
		validate:     validation.New(),
		now:          time.Now,
	}
}

type RegisterInput struct {
	Name         string `validate:"required,max=100"`
	Username     string `validate:"required,min=3,max=30,alphanum"`
	Email        string `validate:"required,email,max=254"`
	Password     string `validate:"required,min=8,max=72"`
	UniversityID *int64 `validate:"omitempty,gt=0"`
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if err := s.validate.Struct(in); err != nil {
		return User{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.checkUniversity(ctx, in.UniversityID); err != nil {
		return User{}, err
	}

	if _, err := s.repo.GetByEmail(ctx, in.Email); err == nil {
		return User{}, ErrDuplicate
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	return s.repo.Create(ctx, User{
		Name:         in.Name,
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		UniversityID: in.UniversityID,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

// Authenticate compara contra el hash y registra el último login.
// Usuario inexistente y password incorrecto dan el mismo error.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return User{}, ErrInvalidCredentials
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}

	now := s.now()
	u.LastLoginAt = &now
	if err := s.repo.Update(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (User, error) {
	if id <= 0 {
		return User{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Search(ctx context.Context, query string, limit int) ([]User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []User{}, nil
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	return s.repo.Search(ctx, query, limit)
}

// UpdateProfileInput: nil = no tocar.
type UpdateProfileInput struct {
	Name         *string `validate:"omitempty,min=1,max=100"`
	Username     *string `validate:"omitempty,min=3,max=30,alphanum"`
	UniversityID *int64  `validate:"omitempty,gt=0"`
}

func (s *Service) UpdateProfile(ctx context.Context, id int64, in UpdateProfileInput) (User, error) {
	if in.Name != nil {
		v := strings.TrimSpace(*in.Name)
		in.Name = &v
	}
	if in.Username != nil {
		v := strings.TrimSpace(*in.Username)
		in.Username = &v
	}
	if err := s.validate.Struct(in); err != nil {
		return User{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	u, err := s.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}

	if in.UniversityID != nil {
		if err := s.checkUniversity(ctx, in.UniversityID); err != nil {
			return User{}, err
		}
		u.UniversityID = in.UniversityID
	}
	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Username != nil {
		u.Username = *in.Username
	}
	u.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// OnDelete registra módulos que guardan datos del usuario. Se llama al armar la app.
func (s *Service) OnDelete(c ...AccountCleaner) {
	s.cleaners = append(s.cleaners, c...)
}

// Delete borra primero los datos de los otros módulos; si alguno falla la cuenta queda.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrNotFound
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	for _, c := range s.cleaners {
		if err := c.DeleteUserData(ctx, id); err != nil {
			return fmt.Errorf("delete user data: %w", err)
		}
	}
	return s.repo.Delete(ctx, id)
}

// UserDetails implementa notifications.UserDirectory.
func (s *Service) UserDetails(ctx context.Context, id int64) (notifications.UserDetails, error) {
	u, err := s.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return notifications.UserDetails{}, notifications.ErrSubjectNotFound
	}
	if err != nil {
		return notifications.UserDetails{}, err
	}
	return notifications.UserDetails{ID: u.ID, DisplayName: u.DisplayName()}, nil
}

func (s *Service) checkUniversity(ctx context.Context, id *int64) error {
	if id == nil || s.universities == nil {
		return nil
	}
	ok, err := s.universities.Exists(ctx, *id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: unknown university %d", ErrInvalidInput, *id)
	}
	return nil
}
