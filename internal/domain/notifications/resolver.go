package notifications

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// ErrSubjectNotFound lo devuelven los directorios cuando el usuario ya no existe.
var ErrSubjectNotFound = errors.New("subject not found")

// UserDirectory lo implementa el módulo users.
type UserDirectory interface {
	UserDetails(ctx context.Context, id int64) (UserDetails, error)
}

// Resolver traduce un evento en sus destinatarios actuales.
// Si el sujeto ya no existe el resultado es vacío, no un error.
type Resolver interface {
	Resolve(ctx context.Context, e Event) ([]UserDetails, error)
}

type ResolverFunc func(ctx context.Context, e Event) ([]UserDetails, error)

func (f ResolverFunc) Resolve(ctx context.Context, e Event) ([]UserDetails, error) { return f(ctx, e) }

// DomainResolver elige el Resolver según el dominio del evento.
type DomainResolver struct {
	byDomain map[Domain]Resolver
}

func NewDomainResolver(resolvers map[Domain]Resolver) *DomainResolver {
	m := make(map[Domain]Resolver, len(resolvers))
	for d, r := range resolvers {
		if r != nil {
			m[d] = r
		}
	}
	return &DomainResolver{byDomain: m}
}

func (r *DomainResolver) Resolve(ctx context.Context, e Event) ([]UserDetails, error) {
	res, ok := r.byDomain[e.Domain()]
	if !ok {
		return nil, nil
	}
	return res.Resolve(ctx, e)
}

const (
	lookupMaxAttempts  = 3
	lookupRetryInitial = 20 * time.Millisecond
)

// SkippedRecipientsError acompaña un resultado parcial: los ids de Failed no se pudieron
// leer del directorio después de reintentar. El resto de los destinatarios sí vuelve.
type SkippedRecipientsError struct {
	Failed map[int64]error
}

func (e *SkippedRecipientsError) Error() string {
	ids := make([]int64, 0, len(e.Failed))
	for id := range e.Failed {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%d: %v", id, e.Failed[id]))
	}
	return "recipients skipped after retries: " + strings.Join(parts, "; ")
}

// LookupRecipients busca cada id en el directorio, en orden y sin repetir.
// Los que ya no existen se saltean. Un error del directorio se reintenta por id; si sigue
// fallando ese id se saltea y se informa con *SkippedRecipientsError junto al resto.
func LookupRecipients(ctx context.Context, dir UserDirectory, ids []int64) ([]UserDetails, error) {
	out := make([]UserDetails, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	var failed map[int64]error

	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		u, err := lookupOne(ctx, dir, id)
		if errors.Is(err, ErrSubjectNotFound) {
			continue
		}
		if err != nil {
			if failed == nil {
				failed = make(map[int64]error)
			}
			failed[id] = err
			continue
		}
		out = append(out, u)
	}

	if len(failed) > 0 {
		return out, &SkippedRecipientsError{Failed: failed}
	}
	return out, nil
}

func lookupOne(ctx context.Context, dir UserDirectory, id int64) (UserDetails, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = lookupRetryInitial

	return backoff.Retry(ctx, func() (UserDetails, error) {
		u, err := dir.UserDetails(ctx, id)
		if errors.Is(err, ErrSubjectNotFound) {
			return UserDetails{}, backoff.Permanent(err)
		}
		return u, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(lookupMaxAttempts))
}
