package domain

import (
	"fmt"
	"strings"
)

// FieldDelimiter separates fields in the flat-file stores and therefore
// must not appear inside any stored text.
const FieldDelimiter = ";"

// TaskState is the edit state of a task.
type TaskState int

const (
	// TaskOpen tasks accept reassignment, rescheduling and completion.
	TaskOpen TaskState = iota
	// TaskCompleted is terminal.
	TaskCompleted
)

func (s TaskState) String() string {
	switch s {
	case TaskOpen:
		return "open"
	case TaskCompleted:
		return "completed"
	default:
		return fmt.Sprintf("TaskState(%d)", int(s))
	}
}

// Task is a unit of work assigned to a user.
type Task struct {
	ID           TaskID // Internal stable identifier, not shown to users
	Username     string // Assignee
	Title        string
	Description  string
	DueDate      Date
	AssignedDate Date // Set at creation, never modified
	Completed    bool
}

// State returns the edit state derived from the completion flag.
func (t Task) State() TaskState {
	if t.Completed {
		return TaskCompleted
	}

	return TaskOpen
}

// IsOverdue reports whether the task is incomplete and due strictly before asOf.
func (t Task) IsOverdue(asOf Date) bool {
	return !t.Completed && t.DueDate.Before(asOf)
}

// ValidateField checks that a text value can be stored without corrupting
// a delimited record.
func ValidateField(name, value string) error {
	if strings.Contains(value, FieldDelimiter) {
		return fmt.Errorf("%w: %s must not contain %q", ErrInvalidField, name, FieldDelimiter)
	}

	if strings.ContainsAny(value, "\r\n") {
		return fmt.Errorf("%w: %s must not contain line breaks", ErrInvalidField, name)
	}

	return nil
}
