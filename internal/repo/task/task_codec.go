package task

import (
	"fmt"

	"github.com/mkrupp/taskmgr/internal/domain"
)

const (
	taskFields = 6

	completedYes = "Yes"
	completedNo  = "No"
)

// encodeTask returns the fields of a task record in storage order:
// username, title, description, due date, assigned date, completed.
func encodeTask(t domain.Task) []string {
	return []string{
		t.Username,
		t.Title,
		t.Description,
		t.DueDate.String(),
		t.AssignedDate.String(),
		encodeCompleted(t.Completed),
	}
}

// decodeTask parses the fields of one record. The ID is left empty.
func decodeTask(fields []string) (domain.Task, error) {
	if len(fields) != taskFields {
		return domain.Task{}, fmt.Errorf("expected %d fields, got %d", taskFields, len(fields))
	}

	due, err := parseStoreDate(fields[3])
	if err != nil {
		return domain.Task{}, fmt.Errorf("due date: %w", err)
	}

	assigned, err := parseStoreDate(fields[4])
	if err != nil {
		return domain.Task{}, fmt.Errorf("assigned date: %w", err)
	}

	completed, err := decodeCompleted(fields[5])
	if err != nil {
		return domain.Task{}, err
	}

	return domain.Task{
		Username:     fields[0],
		Title:        fields[1],
		Description:  fields[2],
		DueDate:      due,
		AssignedDate: assigned,
		Completed:    completed,
	}, nil
}

// parseStoreDate accepts only the exact form encodeTask writes, so that a
// loaded record saves back unchanged.
func parseStoreDate(field string) (domain.Date, error) {
	date, err := domain.ParseDate(field)
	if err != nil {
		return domain.Date{}, err
	}

	if date.String() != field {
		return domain.Date{}, fmt.Errorf("%w: %q is not in %s form", domain.ErrInvalidDate, field, domain.DateLayout)
	}

	return date, nil
}

func encodeCompleted(completed bool) string {
	if completed {
		return completedYes
	}

	return completedNo
}

func decodeCompleted(s string) (bool, error) {
	switch s {
	case completedYes:
		return true, nil
	case completedNo:
		return false, nil
	default:
		return false, fmt.Errorf("completed flag %q is neither %q nor %q", s, completedYes, completedNo)
	}
}
