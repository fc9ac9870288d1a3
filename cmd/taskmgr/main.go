package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mkrupp/taskmgr/internal/cli"
	"github.com/mkrupp/taskmgr/internal/infra/config"
	"github.com/mkrupp/taskmgr/internal/infra/logging"
	"github.com/mkrupp/taskmgr/internal/repo/sqlitedb"
	"github.com/mkrupp/taskmgr/internal/repo/task"
	"github.com/mkrupp/taskmgr/internal/repo/user"
	"github.com/mkrupp/taskmgr/internal/svc/authsvc"
	"github.com/mkrupp/taskmgr/internal/svc/reportsvc"
	"github.com/mkrupp/taskmgr/internal/svc/tasksvc"
)

const appName = "taskmgr"

// ErrUnknownStoreDriver is returned when STORE_DRIVER names no known backend.
var ErrUnknownStoreDriver = errors.New("unknown store driver")

type Config struct {
	config.EnvConfig

	Log         logging.LoggerConfig              `envPrefix:"LOG_"`
	StoreDriver string                            `env:"STORE_DRIVER" default:"flatfile"`
	User        user.FlatFileUserRepositoryConfig `envPrefix:"USER_"`
	Task        task.FlatFileTaskRepositoryConfig `envPrefix:"TASK_"`
	SQLite      sqlitedb.Config                   `envPrefix:"SQLITE_"`
	Auth        authsvc.AuthConfig                `envPrefix:"AUTH_"`
	Report      reportsvc.ReportConfig            `envPrefix:"REPORT_"`
	Login       cli.LoginConfig
}

func main() {
	var (
		cfg Config
		ctx = context.Background()

		configPrefix = strings.ToUpper(appName)
	)

	if err := config.Parse(ctx, &cfg, configPrefix); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}

	if err := logging.Configure(ctx, cfg.Log, appName); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}

	if err := run(ctx, cfg, os.Args[1:]); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config, args []string) (err error) {
	log := logging.GetLogger("cmd.taskmgr")

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "error", "err", err)
		}
	}()

	userRepoFactory, taskRepoFactory, err := repositoryFactories(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)

		return err
	}

	authSvc, err := authsvc.NewAuthService(ctx, userRepoFactory, cfg.Auth)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)

		return fmt.Errorf("new auth service: %w", err)
	}
	defer authSvc.Close()

	if _, err := authSvc.EnsureDefaultAdmin(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)

		return fmt.Errorf("ensure default admin: %w", err)
	}

	taskSvc, err := tasksvc.NewTaskService(ctx, taskRepoFactory, authSvc)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)

		return fmt.Errorf("new task service: %w", err)
	}
	defer taskSvc.Close()

	reportSvc := reportsvc.NewReportService(taskSvc, authSvc, cfg.Report)

	app := cli.NewApp(cfg.Login, authSvc, taskSvc, reportSvc)

	return cli.Execute(ctx, app, args)
}

func repositoryFactories(cfg Config) (user.RepositoryFactory, task.RepositoryFactory, error) {
	switch cfg.StoreDriver {
	case "flatfile":
		return user.FlatFileUserRepositoryFactory(cfg.User), task.FlatFileTaskRepositoryFactory(cfg.Task), nil
	case "sqlite":
		return user.SQLiteUserRepositoryFactory(cfg.SQLite), task.SQLiteTaskRepositoryFactory(cfg.SQLite), nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownStoreDriver, cfg.StoreDriver)
	}
}
