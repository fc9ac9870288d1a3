package reportsvc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mkrupp/taskmgr/internal/domain"
	"github.com/mkrupp/taskmgr/internal/infra/logging"
	"github.com/mkrupp/taskmgr/internal/repo/flatfile"
)

const (
	taskOverviewFile = "task_overview"
	userOverviewFile = "user_overview"
	yamlOverviewFile = "overview.yaml"
)

// ErrUnsupportedReportFormat is returned for report formats other than text and yaml.
var ErrUnsupportedReportFormat = errors.New("unsupported report format")

// TaskSource provides the task store snapshot reports are computed from.
type TaskSource interface {
	All() []domain.Task
	Today() domain.Date
}

// UserSource provides the registered usernames in registration order.
type UserSource interface {
	Users() []string
}

// Report is the result of one report generation.
type Report struct {
	TaskOverview TaskOverview
	UserOverview UserOverview
	TaskText     string
	UserText     string
	YAML         []byte   // set when the YAML export is enabled
	Files        []string // paths written, in write order
}

// Statistics is the short summary shown by "display statistics".
type Statistics struct {
	Users int
	Tasks int
}

// ReportService renders reports over the task and credential stores.
// Reports are restricted to administrator sessions.
type ReportService struct {
	Config ReportConfig
	Tasks  TaskSource
	Users  UserSource
	Log    logging.Logger
}

// NewReportService creates a new ReportService with the given sources and configuration.
func NewReportService(tasks TaskSource, users UserSource, cfg ReportConfig) *ReportService {
	return &ReportService{
		Config: cfg,
		Tasks:  tasks,
		Users:  users,
		Log:    logging.GetLogger("svc.reportsvc.report_service"),
	}
}

// Generate computes both overviews as of today and writes them to the
// report directory: text always, YAML and images if configured.
// Returns domain.ErrForbidden for non-admin sessions.
func (s *ReportService) Generate(ctx context.Context, session domain.Session) (report *Report, err error) {
	defer func() {
		if err != nil {
			s.Log.ErrorContext(ctx, "generate reports failed", "error", err)
		} else {
			s.Log.DebugContext(ctx, "reports generated", "files", len(report.Files))
		}
	}()

	if !session.IsAdmin {
		return nil, fmt.Errorf("%w: reports require the %s account", domain.ErrForbidden, domain.AdminUsername)
	}

	tasks := s.Tasks.All()
	asOf := s.Tasks.Today()

	report = &Report{
		TaskOverview: ComputeTaskOverview(tasks, asOf),
		UserOverview: ComputeUserOverview(tasks, s.Users.Users(), asOf),
	}
	report.TaskText = RenderTaskOverview(report.TaskOverview)
	report.UserText = RenderUserOverview(report.UserOverview)

	if err := s.write(ctx, report, taskOverviewFile+".txt", []byte(report.TaskText)); err != nil {
		return nil, err
	}

	if err := s.write(ctx, report, userOverviewFile+".txt", []byte(report.UserText)); err != nil {
		return nil, err
	}

	if s.Config.YAML {
		data, err := RenderYAML(report.TaskOverview, report.UserOverview)
		if err != nil {
			return nil, err
		}

		if err := s.write(ctx, report, yamlOverviewFile, data); err != nil {
			return nil, err
		}

		report.YAML = data
	}

	if s.Config.ImageFormat != "" {
		if err := s.writeImages(ctx, report); err != nil {
			return nil, err
		}
	}

	return report, nil
}

// Statistics counts users and tasks.
// Returns domain.ErrForbidden for non-admin sessions.
func (s *ReportService) Statistics(ctx context.Context, session domain.Session) (Statistics, error) {
	if !session.IsAdmin {
		s.Log.WarnContext(ctx, "statistics denied")

		return Statistics{}, fmt.Errorf("%w: statistics require the %s account", domain.ErrForbidden, domain.AdminUsername)
	}

	return Statistics{
		Users: len(s.Users.Users()),
		Tasks: len(s.Tasks.All()),
	}, nil
}

func (s *ReportService) writeImages(ctx context.Context, report *Report) error {
	ext := imageExt(s.Config.ImageFormat)

	for _, r := range []struct{ name, text string }{
		{taskOverviewFile, report.TaskText},
		{userOverviewFile, report.UserText},
	} {
		name := r.name

		data, err := RenderImage(r.text, s.Config.ImageFormat, s.Config.ImageScale, s.Config.Interpolator)
		if err != nil {
			return fmt.Errorf("render %s image: %w", name, err)
		}

		if err := s.write(ctx, report, name+ext, data); err != nil {
			return err
		}
	}

	return nil
}

func (s *ReportService) write(ctx context.Context, report *Report, name string, data []byte) error {
	dir := s.Config.Dir
	if dir == "" {
		dir = "."
	}

	path := filepath.Join(dir, name)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir all: %w", err)
	}

	if err := flatfile.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}

	s.Log.DebugContext(ctx, "report written", "path", path, "size", len(data))
	report.Files = append(report.Files, path)

	return nil
}
