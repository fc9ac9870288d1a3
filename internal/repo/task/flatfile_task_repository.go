package task

import (
	"context"
	"fmt"

	"github.com/mkrupp/taskmgr/internal/domain"
	"github.com/mkrupp/taskmgr/internal/infra/logging"
	"github.com/mkrupp/taskmgr/internal/repo/flatfile"
)

// FlatFileTaskRepositoryConfig holds configuration for the flat-file task repository.
type FlatFileTaskRepositoryConfig struct {
	// Path is the task file, one six-field record per line
	Path string `env:"FILE" default:"tasks.txt"`

	File flatfile.Config
}

// FlatFileTaskRepository implements Repository on a delimited text file.
// The file format has no identifier column, so IDs are assigned on load.
type FlatFileTaskRepository struct {
	file *flatfile.File
	log  logging.Logger
}

var _ Repository = (*FlatFileTaskRepository)(nil)

// FlatFileTaskRepositoryFactory creates a factory function that returns a new FlatFileTaskRepository.
func FlatFileTaskRepositoryFactory(cfg FlatFileTaskRepositoryConfig) RepositoryFactory {
	return func(ctx context.Context) (Repository, error) {
		return NewFlatFileTaskRepository(ctx, cfg)
	}
}

// NewFlatFileTaskRepository creates a new FlatFileTaskRepository with the given configuration.
func NewFlatFileTaskRepository(ctx context.Context, cfg FlatFileTaskRepositoryConfig) (*FlatFileTaskRepository, error) {
	file, err := flatfile.New(ctx, cfg.Path, cfg.File)
	if err != nil {
		return nil, fmt.Errorf("new flat file: %w", err)
	}

	return &FlatFileTaskRepository{
		file: file,
		log:  logging.GetLogger("repo.task.flatfile_task_repository").With(logging.Group("file", "path", cfg.Path)),
	}, nil
}

// Load implements Repository.Load.
func (r *FlatFileTaskRepository) Load(ctx context.Context) (tasks []domain.Task, err error) {
	defer func() {
		if err != nil {
			r.log.ErrorContext(ctx, "load tasks failed", "error", err)
		} else {
			r.log.DebugContext(ctx, "tasks loaded", "count", len(tasks))
		}
	}()

	records, err := r.file.ReadRecords(ctx, taskFields)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}

	tasks = make([]domain.Task, 0, len(records))

	for _, record := range records {
		task, err := decodeTask(record.Fields)
		if err != nil {
			return nil, &domain.CorruptStoreError{
				Path:   r.file.Path(),
				Line:   record.Line,
				Reason: err.Error(),
			}
		}

		task.ID = domain.NewTaskID()
		tasks = append(tasks, task)
	}

	return tasks, nil
}

// Save implements Repository.Save.
func (r *FlatFileTaskRepository) Save(ctx context.Context, tasks []domain.Task) error {
	records := make([][]string, 0, len(tasks))

	for _, task := range tasks {
		records = append(records, encodeTask(task))
	}

	if err := r.file.WriteRecords(ctx, records); err != nil {
		return fmt.Errorf("write records: %w", err)
	}

	return nil
}

// Lock implements Repository.Lock.
func (r *FlatFileTaskRepository) Lock(ctx context.Context) (func(), error) {
	release, err := r.file.Lock(ctx)
	if err != nil {
		return nil, fmt.Errorf("lock file: %w", err)
	}

	return release, nil
}

// Close implements Repository.Close. Flat files hold no open handles.
func (r *FlatFileTaskRepository) Close() error {
	return nil
}
