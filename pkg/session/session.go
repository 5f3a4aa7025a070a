// Package session carries the authenticated operator through a request.
package session

import (
	"context"

	"github.com/google/uuid"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type Session struct {
	ID     string
	UserID uuid.UUID
	Role   string
	Branch string
}

func (s Session) IsAdmin() bool { return s.Role == RoleAdmin }

type ctxKey struct{}

func IntoContext(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok
}
