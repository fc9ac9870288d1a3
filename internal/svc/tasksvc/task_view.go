package tasksvc

import (
	"fmt"

	"github.com/mkrupp/taskmgr/internal/domain"
)

// CancelSelection is the task number that backs out of a selection.
const CancelSelection = -1

// TasksFor returns the tasks assigned to username, in storage order.
// This is the "my tasks" view and the numbering base for editing them.
func (s *TaskService) TasksFor(username string) []domain.Task {
	var tasks []domain.Task

	for _, t := range s.tasks {
		if sameUser(t.Username, username) {
			tasks = append(tasks, t)
		}
	}

	return tasks
}

// Overdue returns the incomplete tasks due strictly before asOf.
func (s *TaskService) Overdue(asOf domain.Date) []domain.Task {
	return FilterOverdue(s.tasks, asOf)
}

// FilterOverdue returns the tasks of the given slice that are overdue as of asOf.
func FilterOverdue(tasks []domain.Task, asOf domain.Date) []domain.Task {
	var overdue []domain.Task

	for _, t := range tasks {
		if t.IsOverdue(asOf) {
			overdue = append(overdue, t)
		}
	}

	return overdue
}

// Select picks the task shown as number in view, counting from 1.
// CancelSelection returns ok=false and no error.
// Returns domain.ErrIndexOutOfRange for any other number outside the view.
func Select(view []domain.Task, number int) (_ domain.Task, ok bool, _ error) {
	if number == CancelSelection {
		return domain.Task{}, false, nil
	}

	if number < 1 || number > len(view) {
		return domain.Task{}, false, fmt.Errorf("%w: %d not in 1..%d", domain.ErrIndexOutOfRange, number, len(view))
	}

	return view[number-1], true, nil
}
