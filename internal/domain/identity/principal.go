package identity

import (
	"context"
	"errors"
)

const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
)

var ErrUnknownToken = errors.New("unknown or missing access token")

// Principal is the authenticated caller.
type Principal struct {
	UserID string
	Role   string
}

func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// Authenticator resolves a bearer token into a Principal.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*Principal, error)
}

type principalKey struct{}

// WithPrincipal stores the caller on the context.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the caller stored by WithPrincipal, or nil.
func FromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}
