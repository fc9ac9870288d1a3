package domain

import "github.com/google/uuid"

// Session is the authenticated user of the running process.
type Session struct {
	ID       string // Correlates log records of one session
	Username string
	IsAdmin  bool
}

// NewSession creates a session for the given username.
func NewSession(username string) Session {
	return Session{
		ID:       uuid.NewString(),
		Username: username,
		IsAdmin:  IsAdmin(username),
	}
}
