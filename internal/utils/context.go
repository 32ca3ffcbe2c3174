package utils

import (
	"context"
)

// Identity is the resolved actor for a request: the profile id, the backing
// auth record, the display name, and the persisted admin flag. It is derived
// from a validated session and never stored itself.
type Identity struct {
	UserID      string
	AuthID      string
	DisplayName string
	IsAdmin     bool
}

type contextKey string

const ContextIdentityKey contextKey = "identity"

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, ContextIdentityKey, identity)
}

func GetIdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(ContextIdentityKey).(Identity)
	return identity, ok
}
