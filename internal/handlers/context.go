package handlers

import (
	"context"

	"github.com/satonic/satonic-admin/internal/store"
)

// Context keys
type contextKey string

const (
	// SessionKey is the key for the active session in the context
	SessionKey contextKey = "session"
)

// NewContextWithSession adds the active session to the context
func NewContextWithSession(ctx context.Context, session *store.SessionRecord) context.Context {
	return context.WithValue(ctx, SessionKey, session)
}

// SessionFromContext extracts the active session from the context
func SessionFromContext(ctx context.Context) (*store.SessionRecord, bool) {
	session, ok := ctx.Value(SessionKey).(*store.SessionRecord)
	return session, ok && session != nil
}
