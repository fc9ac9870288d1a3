package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mkrupp/taskmgr/internal/domain"
	context_ "github.com/mkrupp/taskmgr/internal/infra/context"
	"github.com/mkrupp/taskmgr/internal/infra/logging"
	"github.com/mkrupp/taskmgr/internal/svc/authsvc"
	"github.com/mkrupp/taskmgr/internal/svc/reportsvc"
	"github.com/mkrupp/taskmgr/internal/svc/tasksvc"
)

// LoginConfig holds the default credentials used when no flags are given.
type LoginConfig struct {
	Username string `env:"USERNAME" default:""`
	Password string `env:"PASSWORD" default:""`
}

// App bundles the services the commands operate on.
type App struct {
	Login   LoginConfig
	Auth    *authsvc.AuthService
	Tasks   *tasksvc.TaskService
	Reports *reportsvc.ReportService
	Log     logging.Logger

	session domain.Session
}

// NewApp creates an App over the given services.
func NewApp(
	login LoginConfig,
	auth *authsvc.AuthService,
	tasks *tasksvc.TaskService,
	reports *reportsvc.ReportService,
) *App {
	return &App{
		Login:   login,
		Auth:    auth,
		Tasks:   tasks,
		Reports: reports,
		Log:     logging.GetLogger("cli"),
	}
}

// NewRootCommand builds the command tree. Every command runs as the user
// given by --username and --password.
func NewRootCommand(app *App) *cobra.Command {
	var username, password string

	rootCmd := &cobra.Command{
		Use:   "taskmgr",
		Short: "taskmgr - multi-account task tracker",
		Long: `taskmgr tracks tasks assigned to registered users.

Credentials are taken from --username/--password or from
TASKMGR_USERNAME/TASKMGR_PASSWORD.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if skipsLogin(cmd) {
				return nil
			}

			session, err := app.Auth.Authenticate(cmd.Context(), username, password)
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}

			app.session = session
			cmd.SetContext(context_.WithSession(cmd.Context(), session.ID, session.Username))

			app.Log.DebugContext(cmd.Context(), "login successful", "command", cmd.Name(), "admin", session.IsAdmin)

			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&username, "username", "u", app.Login.Username, "Login username")
	rootCmd.PersistentFlags().StringVarP(&password, "password", "p", app.Login.Password, "Login password")

	rootCmd.AddCommand(newRegisterCmd(app))
	rootCmd.AddCommand(newAddCmd(app))
	rootCmd.AddCommand(newListCmd(app))
	rootCmd.AddCommand(newEditCmd(app))
	rootCmd.AddCommand(newOverdueCmd(app))
	rootCmd.AddCommand(newReportCmd(app))
	rootCmd.AddCommand(newStatsCmd(app))

	return rootCmd
}

// skipsLogin reports whether cmd is help or shell completion, which never
// touch the stores.
func skipsLogin(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return true
		}
	}

	return false
}

// Execute runs the command line against app and reports errors on stderr.
func Execute(ctx context.Context, app *App, args []string) error {
	rootCmd := NewRootCommand(app)
	rootCmd.SetArgs(args)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)

		return err
	}

	return nil
}

func outf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}

func outln(cmd *cobra.Command, s string) {
	_, _ = io.WriteString(cmd.OutOrStdout(), s+"\n")
}
