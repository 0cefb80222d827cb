package auth

import "context"

// Claims representa la información extraída del token.
type Claims struct {
	UserID   int64
	Username string
	Email    string
}

// AuthVerifier verifica un token y devuelve claims o error.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}

// TokenIssuer emite el token que devuelve el login.
type TokenIssuer interface {
	Issue(c Claims) (token string, expiresIn int64, err error)
}
