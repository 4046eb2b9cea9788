package cli

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"bennypowers.dev/dtsc/internal/build"
	"bennypowers.dev/dtsc/internal/log"
	"bennypowers.dev/dtsc/internal/report"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

func addSARIFFlag(cmd *cobra.Command, path *string) {
	cmd.Flags().StringVar(path, "sarif", "", "also write results as a SARIF 2.1.0 log to this file")
}

// writeSARIF writes the report's outcomes when a path was given
func writeSARIF(path string, rep *build.Report) error {
	if path == "" {
		return nil
	}
	var buf bytes.Buffer
	if err := report.WriteSARIF(&buf, rep.Outcomes); err != nil {
		return err
	}
	if err := build.WriteFileAtomic(path, buf.Bytes()); err != nil {
		return err
	}
	log.Info("wrote %s", path)
	return nil
}

// diffPrinter colours unified diff lines when w is a terminal
type diffPrinter struct {
	w       io.Writer
	header  lipgloss.Style
	added   lipgloss.Style
	removed lipgloss.Style
}

func newDiffPrinter(w io.Writer) *diffPrinter {
	r := lipgloss.NewRenderer(w)
	style := func() lipgloss.Style { return r.NewStyle().TabWidth(lipgloss.NoTabConversion) }
	return &diffPrinter{
		w:       w,
		header:  style().Bold(true),
		added:   style().Foreground(lipgloss.Color("2")),
		removed: style().Foreground(lipgloss.Color("1")),
	}
}

// Print writes the diff between an output and what its source compiles to
func (p *diffPrinter) Print(output, source, diff string) {
	fmt.Fprintln(p.w, p.header.Render("--- "+output))
	fmt.Fprintln(p.w, p.header.Render("+++ "+source))
	for _, line := range strings.SplitAfter(diff, "\n") {
		if line == "" {
			continue
		}
		text := strings.TrimSuffix(line, "\n")
		switch {
		case strings.HasPrefix(text, "+"):
			text = p.added.Render(text)
		case strings.HasPrefix(text, "-"):
			text = p.removed.Render(text)
		}
		fmt.Fprintln(p.w, text)
	}
}
