package tasksvc

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/mkrupp/taskmgr/internal/domain"
	"github.com/mkrupp/taskmgr/internal/infra/logging"
	"github.com/mkrupp/taskmgr/internal/repo/task"
)

// UserDirectory resolves usernames against the credential store.
type UserDirectory interface {
	// Resolve returns the stored spelling of username and true iff the user exists.
	Resolve(username string) (string, bool)
}

// TaskService is the task store. Tasks are held in memory in storage order
// and the whole store is written back after every change.
type TaskService struct {
	TaskRepo task.Repository
	Users    UserDirectory
	Log      logging.Logger
	Now      func() time.Time

	tasks []domain.Task
}

// NewTaskService creates a new TaskService and loads the task store.
// Returns an error if the repository cannot be created or the store is corrupt.
func NewTaskService(ctx context.Context, repoFactory task.RepositoryFactory, users UserDirectory) (*TaskService, error) {
	taskRepo, err := repoFactory(ctx)
	if err != nil {
		return nil, fmt.Errorf("new task repo: %w", err)
	}

	svc := &TaskService{
		TaskRepo: taskRepo,
		Users:    users,
		Log:      logging.GetLogger("svc.tasksvc.task_service"),
		Now:      time.Now,
	}

	if err := svc.Reload(ctx); err != nil {
		_ = taskRepo.Close()

		return nil, err
	}

	return svc, nil
}

// Reload replaces the in-memory store with the repository content.
// Tasks whose record is unchanged at the same position keep their ID.
func (s *TaskService) Reload(ctx context.Context) error {
	tasks, err := s.TaskRepo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}

	for i := range tasks {
		if i < len(s.tasks) && sameRecord(s.tasks[i], tasks[i]) {
			tasks[i].ID = s.tasks[i].ID
		}
	}

	s.tasks = tasks

	return nil
}

// Today returns the current date according to the service clock.
func (s *TaskService) Today() domain.Date {
	return domain.DateOf(s.Now())
}

// Add creates a task for username, due on the given YYYY-MM-DD date, and
// persists the store. The assigned date is today and the task is open.
// Returns domain.ErrUnknownAssignee, domain.ErrInvalidDate or
// domain.ErrInvalidField if the input is rejected.
func (s *TaskService) Add(ctx context.Context, username, title, description, due string) (_ domain.Task, err error) {
	log := s.Log.With(logging.Group("task", "username", username, "title", title))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "add task failed", "error", err)
		} else {
			log.DebugContext(ctx, "task added")
		}
	}()

	assignee, ok := s.Users.Resolve(username)
	if !ok {
		return domain.Task{}, fmt.Errorf("%w: %s", domain.ErrUnknownAssignee, username)
	}

	if err := domain.ValidateField("title", title); err != nil {
		return domain.Task{}, err
	}

	if err := domain.ValidateField("description", description); err != nil {
		return domain.Task{}, err
	}

	dueDate, err := domain.ParseDate(due)
	if err != nil {
		return domain.Task{}, err
	}

	newTask := domain.Task{
		ID:           domain.NewTaskID(),
		Username:     assignee,
		Title:        title,
		Description:  description,
		DueDate:      dueDate,
		AssignedDate: s.Today(),
		Completed:    false,
	}

	err = s.mutate(ctx, func(tasks []domain.Task) ([]domain.Task, error) {
		return append(slices.Clone(tasks), newTask), nil
	})
	if err != nil {
		return domain.Task{}, err
	}

	return newTask, nil
}

// All returns every task in storage order.
func (s *TaskService) All() []domain.Task {
	return slices.Clone(s.tasks)
}

// Get returns the task with the given ID.
func (s *TaskService) Get(id domain.TaskID) (domain.Task, bool) {
	idx := s.indexOf(id)
	if idx < 0 {
		return domain.Task{}, false
	}

	return s.tasks[idx], true
}

// Close releases resources held by the service.
func (s *TaskService) Close() error {
	if err := s.TaskRepo.Close(); err != nil {
		return fmt.Errorf("close task repo: %w", err)
	}

	return nil
}

// mutate runs one locked read-modify-write cycle. fn receives the freshly
// loaded tasks and returns the new store content. The in-memory store only
// changes if the save succeeds.
func (s *TaskService) mutate(ctx context.Context, fn func([]domain.Task) ([]domain.Task, error)) error {
	release, err := s.TaskRepo.Lock(ctx)
	if err != nil {
		return fmt.Errorf("lock task repo: %w", err)
	}
	defer release()

	if err := s.Reload(ctx); err != nil {
		return err
	}

	tasks, err := fn(s.tasks)
	if err != nil {
		return err
	}

	if err := s.TaskRepo.Save(ctx, tasks); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}

	s.tasks = tasks

	return nil
}

func (s *TaskService) indexOf(id domain.TaskID) int {
	return slices.IndexFunc(s.tasks, func(t domain.Task) bool { return t.ID == id })
}

func sameRecord(a, b domain.Task) bool {
	return a.Username == b.Username &&
		a.Title == b.Title &&
		a.Description == b.Description &&
		a.DueDate.Equal(b.DueDate) &&
		a.AssignedDate.Equal(b.AssignedDate) &&
		a.Completed == b.Completed
}

func sameUser(a, b string) bool {
	return strings.EqualFold(a, b)
}
