// Package report writes build and check results for other tools.
package report

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"bennypowers.dev/dtsc/internal/build"
	"bennypowers.dev/dtsc/internal/lint"
	"bennypowers.dev/dtsc/internal/stylesheet"
	"bennypowers.dev/dtsc/internal/version"
	"github.com/owenrumney/go-sarif/v3/pkg/report/v210/sarif"
)

// StaleOutput is the rule for outputs that check found out of date
const StaleOutput = "stale-output"

var descriptions = map[string]string{
	string(lint.CodeUndefinedVariable):     "A variable is referenced before any binding is visible",
	string(lint.CodeInvalidColorOperation): "A color function was applied to a value that is not a color",
	string(lint.CodeSyntax):                "The stylesheet could not be parsed",
	string(lint.CodeCircularReference):     "An import or token alias refers back to itself",
	string(lint.CodeErrorDirective):        "An @error directive was reached",
	string(lint.CodeInvalidOutput):         "The compiled CSS does not parse",
	string(lint.CodeIO):                    "A file could not be read or written",
	StaleOutput:                            "The output differs from what its source compiles to",
}

// WriteSARIF writes the outcomes of a build or check as a SARIF 2.1.0 log.
// Failures are errors at their source location; lint problems point into
// the compiled output.
func WriteSARIF(w io.Writer, outcomes []build.Outcome) error {
	report := sarif.NewReport()
	run := sarif.NewRunWithInformationURI("dtsc", "https://bennypowers.dev/dtsc")
	v := version.GetVersion()
	run.Tool.Driver.Version = &v

	for _, id := range ruleIDs() {
		desc := descriptions[id]
		rule := sarif.NewReportingDescriptor().WithID(id)
		rule.WithShortDescription(&sarif.MultiformatMessageString{Text: &desc})
		run.Tool.Driver.AddRule(rule)
	}

	failed := false
	for _, o := range outcomes {
		if o.Err != nil {
			failed = true
			run.AddResult(errorResult(o))
		}
		for _, d := range o.Diagnostics {
			run.AddResult(lintResult(o, d))
		}
	}

	invocation := sarif.NewInvocation()
	successful := !failed
	invocation.ExecutionSuccessful = &successful
	run.AddInvocation(invocation)

	report.AddRun(run)
	if err := report.Write(w); err != nil {
		return fmt.Errorf("writing SARIF: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func ruleIDs() []string {
	var ids []string
	for _, c := range lint.Codes() {
		ids = append(ids, string(c))
	}
	return append(ids, StaleOutput)
}

func errorResult(o build.Outcome) *sarif.Result {
	var stale *build.StaleError
	if errors.As(o.Err, &stale) {
		result := sarif.NewRuleResult(StaleOutput)
		result.Level = "error"
		result.Message = sarif.NewTextMessage(stale.Error())
		result.Locations = []*sarif.Location{location(o.Output, 0, 0)}
		return result
	}

	result := sarif.NewRuleResult(string(lint.CodeOf(o.Err)))
	result.Level = "error"
	result.Message = sarif.NewTextMessage(o.Err.Error())

	file, line, column := o.Entry.Path, 0, 0
	var located stylesheet.Located
	if errors.As(o.Err, &located) {
		loc := located.Location()
		if loc.File != "" {
			file = loc.File
		}
		line, column = loc.Line, loc.Column
	}
	result.Locations = []*sarif.Location{location(file, line, column)}
	return result
}

func lintResult(o build.Outcome, d lint.Diagnostic) *sarif.Result {
	result := sarif.NewRuleResult(string(lint.CodeInvalidOutput))
	result.Level = "warning"
	if d.Severity == lint.SeverityError {
		result.Level = "error"
	}
	result.Message = sarif.NewTextMessage(d.Message)
	result.Locations = []*sarif.Location{location(o.Output, d.Line, d.Column)}
	return result
}

func location(path string, line, column int) *sarif.Location {
	physical := sarif.NewPhysicalLocation().
		WithArtifactLocation(sarif.NewArtifactLocation().WithURI(filepath.ToSlash(path)))
	if line > 0 {
		region := sarif.NewRegion().WithStartLine(line)
		if column > 0 {
			region.WithStartColumn(column)
		}
		physical.WithRegion(region)
	}
	return sarif.NewLocation().WithPhysicalLocation(physical)
}
