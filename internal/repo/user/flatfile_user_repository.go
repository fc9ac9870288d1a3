package user

import (
	"context"
	"fmt"

	"github.com/mkrupp/taskmgr/internal/domain"
	"github.com/mkrupp/taskmgr/internal/infra/logging"
	"github.com/mkrupp/taskmgr/internal/repo/flatfile"
)

const userFields = 2

// FlatFileUserRepositoryConfig holds configuration for the flat-file user repository.
type FlatFileUserRepositoryConfig struct {
	// Path is the credential file, one "username;password" record per line
	Path string `env:"FILE" default:"user.txt"`

	File flatfile.Config
}

// FlatFileUserRepository implements Repository on a delimited text file.
type FlatFileUserRepository struct {
	file *flatfile.File
	log  logging.Logger
}

var _ Repository = (*FlatFileUserRepository)(nil)

// FlatFileUserRepositoryFactory creates a factory function that returns a new FlatFileUserRepository.
func FlatFileUserRepositoryFactory(cfg FlatFileUserRepositoryConfig) RepositoryFactory {
	return func(ctx context.Context) (Repository, error) {
		return NewFlatFileUserRepository(ctx, cfg)
	}
}

// NewFlatFileUserRepository creates a new FlatFileUserRepository with the given configuration.
func NewFlatFileUserRepository(ctx context.Context, cfg FlatFileUserRepositoryConfig) (*FlatFileUserRepository, error) {
	file, err := flatfile.New(ctx, cfg.Path, cfg.File)
	if err != nil {
		return nil, fmt.Errorf("new flat file: %w", err)
	}

	return &FlatFileUserRepository{
		file: file,
		log:  logging.GetLogger("repo.user.flatfile_user_repository").With(logging.Group("file", "path", cfg.Path)),
	}, nil
}

// Load implements Repository.Load.
func (r *FlatFileUserRepository) Load(ctx context.Context) (users []domain.User, err error) {
	defer func() {
		if err != nil {
			r.log.ErrorContext(ctx, "load users failed", "error", err)
		} else {
			r.log.DebugContext(ctx, "users loaded", "count", len(users))
		}
	}()

	records, err := r.file.ReadRecords(ctx, userFields)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}

	users = make([]domain.User, 0, len(records))

	for _, record := range records {
		users = append(users, domain.User{
			Username: record.Fields[0],
			Password: record.Fields[1],
		})
	}

	return users, nil
}

// Save implements Repository.Save.
func (r *FlatFileUserRepository) Save(ctx context.Context, users []domain.User) error {
	records := make([][]string, 0, len(users))

	for _, user := range users {
		records = append(records, []string{user.Username, user.Password})
	}

	if err := r.file.WriteRecords(ctx, records); err != nil {
		return fmt.Errorf("write records: %w", err)
	}

	return nil
}

// Lock implements Repository.Lock.
func (r *FlatFileUserRepository) Lock(ctx context.Context) (func(), error) {
	release, err := r.file.Lock(ctx)
	if err != nil {
		return nil, fmt.Errorf("lock file: %w", err)
	}

	return release, nil
}

// Close implements Repository.Close. Flat files hold no open handles.
func (r *FlatFileUserRepository) Close() error {
	return nil
}
