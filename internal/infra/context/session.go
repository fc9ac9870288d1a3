package context

import (
	"context"
)

type contextKey string

const (
	contextKeySessionID = contextKey("sessionID")
	contextKeyUsername  = contextKey("username")
)

// WithSession returns a context carrying the session id and username of the
// logged-in user. Loggers read these values to tag records of one session.
func WithSession(ctx context.Context, sessionID, username string) context.Context {
	ctx = context.WithValue(ctx, contextKeySessionID, sessionID)

	return context.WithValue(ctx, contextKeyUsername, username)
}

// SessionIDFromContext extracts the session id from the context.
// Returns the id and true if present, or empty string and false if not present.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(contextKeySessionID).(string)

	return sessionID, ok
}

// UsernameFromContext extracts the username from the context.
// Returns the username and true if present, or empty string and false if not present.
func UsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(contextKeyUsername).(string)

	return username, ok
}
