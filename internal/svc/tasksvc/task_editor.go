package tasksvc

import (
	"context"
	"fmt"
	"slices"

	"github.com/mkrupp/taskmgr/internal/domain"
	"github.com/mkrupp/taskmgr/internal/infra/logging"
)

// Reassign allocates an open task to another existing user.
// Returns domain.ErrUnknownUser if the user does not exist and
// domain.ErrTaskLocked if the task is completed.
func (s *TaskService) Reassign(ctx context.Context, id domain.TaskID, username string) (domain.Task, error) {
	return s.edit(ctx, "reassign", id, func(t *domain.Task) error {
		assignee, ok := s.Users.Resolve(username)
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrUnknownUser, username)
		}

		t.Username = assignee

		return nil
	})
}

// Reschedule changes the due date of an open task.
// Returns domain.ErrInvalidDate if due is not a YYYY-MM-DD date and
// domain.ErrTaskLocked if the task is completed.
func (s *TaskService) Reschedule(ctx context.Context, id domain.TaskID, due string) (domain.Task, error) {
	return s.edit(ctx, "reschedule", id, func(t *domain.Task) error {
		dueDate, err := domain.ParseDate(due)
		if err != nil {
			return err
		}

		t.DueDate = dueDate

		return nil
	})
}

// Complete marks an open task as completed. Completion cannot be undone.
// Returns domain.ErrTaskLocked if the task is already completed.
func (s *TaskService) Complete(ctx context.Context, id domain.TaskID) (domain.Task, error) {
	return s.edit(ctx, "complete", id, func(t *domain.Task) error {
		t.Completed = true

		return nil
	})
}

// edit applies one transition to an open task and persists the store.
func (s *TaskService) edit(
	ctx context.Context,
	action string,
	id domain.TaskID,
	apply func(*domain.Task) error,
) (edited domain.Task, err error) {
	log := s.Log.With(logging.Group("task", "id", id.Short(), "action", action))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "edit task failed", "error", err)
		} else {
			log.DebugContext(ctx, "task edited")
		}
	}()

	err = s.mutate(ctx, func(tasks []domain.Task) ([]domain.Task, error) {
		idx := slices.IndexFunc(tasks, func(t domain.Task) bool { return t.ID == id })
		if idx < 0 {
			return nil, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
		}

		if tasks[idx].State() == domain.TaskCompleted {
			return nil, domain.ErrTaskLocked
		}

		edited = tasks[idx]
		if err := apply(&edited); err != nil {
			return nil, err
		}

		tasks = slices.Clone(tasks)
		tasks[idx] = edited

		return tasks, nil
	})
	if err != nil {
		return domain.Task{}, err
	}

	return edited, nil
}
