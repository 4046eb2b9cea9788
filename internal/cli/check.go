package cli

import (
	"errors"
	"fmt"

	"bennypowers.dev/dtsc/internal/build"
	"bennypowers.dev/dtsc/internal/log"
	"github.com/spf13/cobra"
)

func newCheckCommand(a *app) *cobra.Command {
	var sarifPath string

	cmd := &cobra.Command{
		Use:   "check [pattern...]",
		Short: "Verify compiled CSS is up to date",
		Long: `Compile every stylesheet without writing anything and compare the result
with the existing output. Prints a diff for each stale output and fails if
any output is stale or missing, or any stylesheet fails to compile.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.newBuilder(args)
			if err != nil {
				return err
			}
			report, err := b.Check(cmd.Context())
			if err != nil {
				return err
			}

			diffs := newDiffPrinter(cmd.OutOrStdout())
			for _, o := range report.Outcomes {
				logDiagnostics(o.Diagnostics)
				var stale *build.StaleError
				switch {
				case errors.As(o.Err, &stale):
					log.Warn("%s", stale)
					diffs.Print(o.Output, o.Entry.Path, o.Diff)
				case o.Err != nil:
					log.Error("%s", o.Err)
				}
			}

			if err := writeSARIF(sarifPath, report); err != nil {
				return err
			}
			if failed := len(report.Failed()); failed > 0 {
				return fmt.Errorf("%d of %d outputs are out of date or failed", failed, len(report.Outcomes))
			}
			log.Info("%d outputs up to date", len(report.Outcomes))
			return nil
		},
	}
	addJobsFlag(cmd, a)
	addSARIFFlag(cmd, &sarifPath)
	return cmd
}
