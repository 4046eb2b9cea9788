package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"bennypowers.dev/dtsc/internal/build"
	"bennypowers.dev/dtsc/internal/lint"
	"bennypowers.dev/dtsc/internal/log"
	"bennypowers.dev/dtsc/internal/source"
	"github.com/spf13/cobra"
)

// stdinName stands in for the path of text read from stdin. Relative
// imports resolve against the working directory.
const stdinName = "stdin.scss"

func newCompileCommand(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "compile <file|->",
		Short: "Compile one stylesheet",
		Long: `Compile one stylesheet (or "-" for stdin) and print the CSS, or write
it to --output. A stylesheet that fails to compile produces no output, and
an existing --output file is removed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "" && args[0] != "-" {
				if err := build.GuardOutput(args[0], output); err != nil {
					return err
				}
			}
			b, err := a.newBuilder(nil)
			if err != nil {
				return err
			}

			css, diags, err := compileArg(cmd, b, args[0])
			logDiagnostics(diags)
			if err != nil {
				if output != "" {
					removeStale(output)
				}
				return err
			}

			if output == "" {
				_, err := io.WriteString(cmd.OutOrStdout(), css)
				return err
			}
			if err := build.WriteFileAtomic(output, []byte(css)); err != nil {
				return err
			}
			log.Info("wrote %s", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the CSS to this file instead of stdout")
	return cmd
}

func compileArg(cmd *cobra.Command, b *build.Builder, arg string) (string, []lint.Diagnostic, error) {
	if arg != "-" {
		return b.Compile(arg)
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", nil, fmt.Errorf("reading stdin: %w", err)
	}
	text, err := source.Text(stdinName, data)
	if err != nil {
		return "", nil, err
	}
	return b.CompileText(stdinName, text)
}

func removeStale(path string) {
	if err := os.Remove(path); err == nil {
		log.Info("removed %s", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		log.Warn("removing %s: %v", path, err)
	}
}

func logDiagnostics(diags []lint.Diagnostic) {
	for _, d := range diags {
		if d.Severity == lint.SeverityError {
			log.Error("%s", d)
		} else {
			log.Warn("%s", d)
		}
	}
}
