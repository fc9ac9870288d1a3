package tasksvc_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mkrupp/taskmgr/internal/domain"
	"github.com/mkrupp/taskmgr/internal/repo/task"
	"github.com/mkrupp/taskmgr/internal/svc/tasksvc"
)

// mockTaskRepository implements task.Repository for testing. Like the flat
// file backend it does not persist IDs, so every Load hands out fresh ones.
type mockTaskRepository struct {
	tasks   []domain.Task
	saves   int
	saveErr error
	m       sync.Mutex
}

func (m *mockTaskRepository) Load(_ context.Context) ([]domain.Task, error) {
	tasks := make([]domain.Task, len(m.tasks))

	for i, t := range m.tasks {
		t.ID = domain.NewTaskID()
		tasks[i] = t
	}

	return tasks, nil
}

func (m *mockTaskRepository) Save(_ context.Context, tasks []domain.Task) error {
	if m.saveErr != nil {
		return m.saveErr
	}

	m.saves++
	m.tasks = append([]domain.Task(nil), tasks...)

	return nil
}

func (m *mockTaskRepository) Lock(_ context.Context) (func(), error) {
	m.m.Lock()

	return m.m.Unlock, nil
}

func (m *mockTaskRepository) Close() error {
	return nil
}

// mockUserDirectory implements tasksvc.UserDirectory for testing.
type mockUserDirectory []string

func (d mockUserDirectory) Resolve(username string) (string, bool) {
	for _, u := range d {
		if strings.EqualFold(u, username) {
			return u, true
		}
	}

	return "", false
}

var (
	ErrRepoError = errors.New("repository error")

	testNow = time.Date(2024, time.June, 15, 10, 30, 0, 0, time.UTC)
)

func date(s string) domain.Date {
	d, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}

	return d
}

func setupTestService(t *testing.T, tasks ...domain.Task) (*tasksvc.TaskService, *mockTaskRepository) {
	t.Helper()

	mockRepo := &mockTaskRepository{tasks: tasks}

	svc, err := tasksvc.NewTaskService(
		context.Background(),
		func(context.Context) (task.Repository, error) { return mockRepo, nil },
		mockUserDirectory{"admin", "bob", "Carol"},
	)
	if err != nil {
		t.Fatalf("NewTaskService() error = %v", err)
	}

	svc.Now = func() time.Time { return testNow }

	return svc, mockRepo
}

func fixtureTasks() []domain.Task {
	return []domain.Task{
		{Username: "bob", Title: "A", Description: "a", DueDate: date("2024-06-01"), AssignedDate: date("2024-05-01")},
		{Username: "admin", Title: "B", Description: "b", DueDate: date("2024-07-01"), AssignedDate: date("2024-05-01")},
		{Username: "bob", Title: "C", Description: "c", DueDate: date("2024-06-10"), AssignedDate: date("2024-05-01"), Completed: true},
		{Username: "bob", Title: "D", Description: "d", DueDate: date("2024-08-01"), AssignedDate: date("2024-05-01")},
	}
}

func TestTaskService_AddToEmptyStore(t *testing.T) {
	t.Parallel()

	svc, mockRepo := setupTestService(t)

	added, err := svc.Add(context.Background(), "bob", "Title", "Desc", "2099-01-01")
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if got := len(svc.All()); got != 1 {
		t.Fatalf("len(All()) = %d, want 1", got)
	}

	if !added.AssignedDate.Equal(domain.DateOf(testNow)) {
		t.Errorf("AssignedDate = %v, want %v", added.AssignedDate, domain.DateOf(testNow))
	}

	if added.Completed {
		t.Error("Completed = true, want false")
	}

	if !added.DueDate.Equal(date("2099-01-01")) {
		t.Errorf("DueDate = %v, want 2099-01-01", added.DueDate)
	}

	if mockRepo.saves != 1 || len(mockRepo.tasks) != 1 {
		t.Errorf("repo saves = %d, tasks = %d, want 1, 1", mockRepo.saves, len(mockRepo.tasks))
	}
}

func TestTaskService_Add(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		username    string
		title       string
		due         string
		saveErr     error
		wantErr     error
		wantStorage string
	}{
		{
			name:        "stores canonical username",
			username:    "carol",
			title:       "Title",
			due:         "2024-12-01",
			wantStorage: "Carol",
		},
		{
			name:     "unknown assignee",
			username: "mallory",
			title:    "Title",
			due:      "2024-12-01",
			wantErr:  domain.ErrUnknownAssignee,
		},
		{
			name:     "invalid due date",
			username: "bob",
			title:    "Title",
			due:      "12/01/2024",
			wantErr:  domain.ErrInvalidDate,
		},
		{
			name:     "delimiter in title",
			username: "bob",
			title:    "a;b",
			due:      "2024-12-01",
			wantErr:  domain.ErrInvalidField,
		},
		{
			name:     "repository error",
			username: "bob",
			title:    "Title",
			due:      "2024-12-01",
			saveErr:  ErrRepoError,
			wantErr:  ErrRepoError,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc, mockRepo := setupTestService(t, fixtureTasks()...)
			mockRepo.saveErr = tt.saveErr

			added, err := svc.Add(context.Background(), tt.username, tt.title, "desc", tt.due)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Add() error = %v, wantErr %v", err, tt.wantErr)
			}

			wantLen := len(fixtureTasks())
			if tt.wantErr == nil {
				wantLen++

				if added.Username != tt.wantStorage {
					t.Errorf("Username = %q, want %q", added.Username, tt.wantStorage)
				}
			}

			if got := len(svc.All()); got != wantLen {
				t.Errorf("len(All()) = %d, want %d", got, wantLen)
			}
		})
	}
}

func TestTaskService_TasksFor(t *testing.T) {
	t.Parallel()

	svc, _ := setupTestService(t, fixtureTasks()...)

	var titles []string
	for _, tk := range svc.TasksFor("bob") {
		titles = append(titles, tk.Title)
	}

	if got := strings.Join(titles, ","); got != "A,C,D" {
		t.Errorf("TasksFor(bob) titles = %q, want %q", got, "A,C,D")
	}

	if got := svc.TasksFor("nobody"); len(got) != 0 {
		t.Errorf("TasksFor(nobody) = %v, want empty", got)
	}
}

func TestTaskService_Overdue(t *testing.T) {
	t.Parallel()

	svc, _ := setupTestService(t, fixtureTasks()...)

	overdue := svc.Overdue(date("2024-06-15"))
	if len(overdue) != 1 || overdue[0].Title != "A" {
		t.Errorf("Overdue(2024-06-15) = %v, want only A", overdue)
	}

	for _, asOf := range []string{"2024-06-15", "2025-01-01", "2024-06-11"} {
		for _, tk := range svc.Overdue(date(asOf)) {
			if tk.Completed {
				t.Errorf("Overdue(%s) contains completed task %q", asOf, tk.Title)
			}
		}
	}

	if got := svc.Overdue(date("2024-01-01")); len(got) != 0 {
		t.Errorf("Overdue before every due date = %v, want empty", got)
	}

	if got := svc.Overdue(date("2024-06-01")); len(got) != 0 {
		t.Errorf("Overdue on the due date = %v, want empty", got)
	}
}

func TestSelect(t *testing.T) {
	t.Parallel()

	view := fixtureTasks()

	tests := []struct {
		name      string
		number    int
		wantTitle string
		wantOK    bool
		wantErr   error
	}{
		{name: "first", number: 1, wantTitle: "A", wantOK: true},
		{name: "last", number: 4, wantTitle: "D", wantOK: true},
		{name: "cancel", number: tasksvc.CancelSelection, wantOK: false},
		{name: "zero", number: 0, wantErr: domain.ErrIndexOutOfRange},
		{name: "past end", number: 5, wantErr: domain.ErrIndexOutOfRange},
		{name: "negative", number: -2, wantErr: domain.ErrIndexOutOfRange},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok, err := tasksvc.Select(view, tt.number)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Select() error = %v, wantErr %v", err, tt.wantErr)
			}

			if ok != tt.wantOK {
				t.Errorf("Select() ok = %v, want %v", ok, tt.wantOK)
			}

			if ok && got.Title != tt.wantTitle {
				t.Errorf("Select() title = %q, want %q", got.Title, tt.wantTitle)
			}
		})
	}
}
