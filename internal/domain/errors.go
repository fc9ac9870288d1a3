package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUsernameTaken is returned when registering a username that already exists.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrPasswordMismatch is returned when a password and its confirmation differ.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrUserNotFound is returned when authenticating an unknown username.
	ErrUserNotFound = errors.New("user not found")
	// ErrWrongPassword is returned when the password does not match the stored one.
	ErrWrongPassword = errors.New("wrong password")
	// ErrUnknownAssignee is returned when a new task names a user that does not exist.
	ErrUnknownAssignee = errors.New("unknown assignee")
	// ErrUnknownUser is returned when a task is reassigned to a user that does not exist.
	ErrUnknownUser = errors.New("unknown user")
	// ErrInvalidDate is returned when a date is not in YYYY-MM-DD format.
	ErrInvalidDate = errors.New("invalid date")
	// ErrInvalidField is returned when a text field cannot be stored as given.
	ErrInvalidField = errors.New("invalid field")
	// ErrTaskLocked is returned when editing a completed task.
	ErrTaskLocked = errors.New("task is completed and cannot be edited")
	// ErrTaskNotFound is returned when a task ID is not present in the store.
	ErrTaskNotFound = errors.New("task not found")
	// ErrIndexOutOfRange is returned when a task number does not address a task in the view.
	ErrIndexOutOfRange = errors.New("task number out of range")
	// ErrDivisionUndefined is returned when a percentage is requested over zero items.
	ErrDivisionUndefined = errors.New("division undefined")
	// ErrForbidden is returned when a non-admin session requests an admin operation.
	ErrForbidden = errors.New("forbidden")
	// ErrCorruptStore is the kind of every CorruptStoreError.
	ErrCorruptStore = errors.New("corrupt store")
)

// CorruptStoreError reports a record in a backing store that cannot be parsed.
type CorruptStoreError struct {
	Path   string // backing file or database
	Line   int    // 1-based record line, 0 if unknown
	Reason string
}

func (e *CorruptStoreError) Error() string {
	if e == nil {
		return ""
	}

	if e.Line > 0 {
		return fmt.Sprintf("%s: %s line %d: %s", ErrCorruptStore, e.Path, e.Line, e.Reason)
	}

	return fmt.Sprintf("%s: %s: %s", ErrCorruptStore, e.Path, e.Reason)
}

func (e *CorruptStoreError) Unwrap() error { return ErrCorruptStore }
