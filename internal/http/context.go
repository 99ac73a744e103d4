package http

import (
	"context"

	"github.com/example/study-scheduler/internal/application"
)

type contextKey string

const ownerContextKey contextKey = "owner"

// ContextWithOwner returns a derived context carrying the acting owner.
func ContextWithOwner(ctx context.Context, owner application.Owner) context.Context {
	return context.WithValue(ctx, ownerContextKey, owner)
}

// OwnerFromContext extracts the owner stored by RequireOwner.
func OwnerFromContext(ctx context.Context) (application.Owner, bool) {
	owner, ok := ctx.Value(ownerContextKey).(application.Owner)
	return owner, ok
}
