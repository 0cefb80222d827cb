package users

import (
	"errors"
	"time"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrDuplicate          = errors.New("email or username already in use")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// User es la cuenta registrada. PasswordHash nunca sale por HTTP.
type User struct {
	ID       int64
	Name     string
	Username string
	Email    string

	PasswordHash string

	// Universidad opcional; se valida contra el catálogo al registrar/editar.
	UniversityID *int64

	CreatedAt   time.Time
	UpdatedAt   time.Time
	LastLoginAt *time.Time
}

// DisplayName es lo que ven los demás (nombre, o username si no hay).
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}
