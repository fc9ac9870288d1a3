package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkrupp/taskmgr/internal/svc/reportsvc"
)

func newReportCmd(app *App) *cobra.Command {
	var format, image string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate the task and user overview reports (admin only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch format {
			case "text":
			case "yaml":
				app.Reports.Config.YAML = true
			default:
				return fmt.Errorf("%w: %q", reportsvc.ErrUnsupportedReportFormat, format)
			}

			if cmd.Flags().Changed("image") {
				app.Reports.Config.ImageFormat = image
			}

			report, err := app.Reports.Generate(cmd.Context(), app.session)
			if err != nil {
				return err
			}

			if format == "yaml" {
				outf(cmd, "%s", report.YAML)
			} else {
				outf(cmd, "%s\n%s", report.TaskText, report.UserText)
			}

			for _, path := range report.Files {
				outf(cmd, "wrote %s\n", path)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format (text, yaml)")
	cmd.Flags().StringVar(&image, "image", "", "Also render the reports as images (png, jpeg, tiff)")

	return cmd
}

func newStatsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Display the number of users and tasks (admin only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := app.Reports.Statistics(cmd.Context(), app.session)
			if err != nil {
				return err
			}

			outf(cmd, "%s", reportsvc.RenderStatistics(stats))

			return nil
		},
	}
}
