package cli

import (
	"fmt"

	"bennypowers.dev/dtsc/internal/build"
	"bennypowers.dev/dtsc/internal/log"
	"github.com/spf13/cobra"
)

func newBuildCommand(a *app) *cobra.Command {
	var sarifPath string

	cmd := &cobra.Command{
		Use:   "build [pattern...]",
		Short: "Compile every configured stylesheet",
		Long: `Compile every stylesheet matching the configured source patterns, or
the patterns given as arguments, into the output directory. Partials
(files starting with "_") are only compiled through @import.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.newBuilder(args)
			if err != nil {
				return err
			}
			report, err := b.Build(cmd.Context())
			if err != nil {
				return err
			}
			if err := writeSARIF(sarifPath, report); err != nil {
				return err
			}
			return summarize(report)
		},
	}
	addJobsFlag(cmd, a)
	addSARIFFlag(cmd, &sarifPath)
	return cmd
}

// summarize logs lint problems and the outcome of a build
func summarize(report *build.Report) error {
	written := 0
	for _, o := range report.Outcomes {
		logDiagnostics(o.Diagnostics)
		if o.Written {
			written++
		}
	}

	total := len(report.Outcomes)
	if failed := len(report.Failed()); failed > 0 {
		return fmt.Errorf("%d of %d stylesheets failed", failed, total)
	}
	log.Info("compiled %d stylesheets (%d written)", total, written)
	return nil
}
