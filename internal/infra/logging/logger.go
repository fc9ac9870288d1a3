package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Constants for log levels that match slog.Level values.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Type aliases for commonly used slog types.
type (
	Logger  = *slog.Logger
	Handler = slog.Handler
	Level   = slog.Level
)

//nolint:gochecknoglobals
var logLevelStrToLevel = map[string]Level{
	"debug": LevelDebug,
	"info":  LevelInfo,
	"warn":  LevelWarn,
	"error": LevelError,
}

// LoggerConfig holds configuration parameters for logging.
type LoggerConfig struct {
	// AppName is the application identifier added to all log entries
	AppName string

	// Output is "discard", "stdout", "stderr" or a file path the log is appended to.
	// Command output owns the terminal, so nothing is logged unless asked for.
	Output string `env:"OUTPUT" default:"discard"`

	// Level sets the minimum log level ("debug", "info", "warn", "error")
	Level string `env:"LEVEL" default:"warn"`

	// Filter overrides the level per dotted logger name ("repo:warn,svc.tasksvc:debug")
	Filter string `env:"FILTER" default:""`

	// JSON enables JSON-formatted output instead of human-readable console output
	JSON bool `env:"JSON" default:"false"`

	// OutputHandle overrides Output when set
	OutputHandle io.Writer
}

//nolint:gochecknoglobals
var (
	Group = slog.Group

	config     LoggerConfig
	configLock sync.Mutex
)

// Configure sets up global logging configuration for the application.
// It must be called before any loggers are created.
// Returns an error if the log file cannot be opened.
func Configure(ctx context.Context, cfg LoggerConfig, appName string) error {
	output, err := cfg.openOutput()
	if err != nil {
		return err
	}

	configLock.Lock()
	config = cfg
	config.AppName = appName
	config.OutputHandle = output
	configLock.Unlock()

	GetLogger("infra.logging").With(Group("config",
		"output", cfg.Output,
		"level", cfg.Level,
		"filter", cfg.Filter,
		"json", cfg.JSON,
	)).DebugContext(ctx, "logging configured")

	return nil
}

// GetLogger returns a logger tagged with name using the global configuration.
// Names are dotted paths ("repo.task.flatfile_task_repository") matched by
// the Filter prefixes.
func GetLogger(name string) Logger {
	configLock.Lock()
	cfg := config
	configLock.Unlock()

	if cfg.OutputHandle == nil || cfg.OutputHandle == io.Discard {
		return NewNopLogger()
	}

	logger := slog.New(NewSessionHandler(cfg.newHandler()))

	if cfg.AppName != "" {
		logger = logger.With("app", cfg.AppName)
	}

	return logger.With("logger", name)
}

func (cfg LoggerConfig) openOutput() (io.Writer, error) {
	if cfg.OutputHandle != nil {
		return cfg.OutputHandle, nil
	}

	switch strings.TrimSpace(cfg.Output) {
	case "", "discard":
		return io.Discard, nil
	case "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	}

	file, err := os.OpenFile(cfg.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	return file, nil
}

func (cfg LoggerConfig) newHandler() slog.Handler {
	level := parseLogLevel(cfg.Level, LevelWarn)

	if cfg.JSON {
		//nolint:exhaustruct
		return slog.NewJSONHandler(cfg.OutputHandle, &slog.HandlerOptions{
			AddSource: true,
			Level:     level,
		})
	}

	//nolint:exhaustruct
	return &ConsoleHandler{
		Output:    cfg.OutputHandle,
		Level:     level,
		PkgLevels: parseFilter(cfg.Filter),
	}
}

// parseFilter reads "name:level" pairs. Malformed pairs are skipped and
// unknown levels fall back to debug.
func parseFilter(filter string) map[string]slog.Level {
	levels := make(map[string]slog.Level)

	for _, pair := range strings.Split(filter, ",") {
		name, level, ok := strings.Cut(pair, ":")
		if !ok {
			continue
		}

		levels[strings.TrimSpace(name)] = parseLogLevel(level, LevelDebug)
	}

	return levels
}

func parseLogLevel(levelStr string, fallback Level) Level {
	level, ok := logLevelStrToLevel[strings.ToLower(strings.TrimSpace(levelStr))]
	if !ok {
		return fallback
	}

	return level
}
