package validator

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
)

// Format specifies the output format for validation reports.
type Format string

const (
	// FormatText produces human-readable text output.
	FormatText Format = "text"
	// FormatJSON produces machine-readable JSON output.
	FormatJSON Format = "json"
)

// Reporter formats and writes validation results.
type Reporter struct {
	out    io.Writer
	format Format
	name   string
}

// NewReporter creates a new Reporter.
func NewReporter(out io.Writer, format Format) *Reporter {
	return &Reporter{
		out:    out,
		format: format,
	}
}

// WithName returns a copy of r that prefixes text output with name,
// typically the config path.
func (r *Reporter) WithName(name string) *Reporter {
	out := *r
	out.name = name
	return &out
}

// Report writes the result to the output.
func (r *Reporter) Report(result *Result) error {
	if result == nil {
		result = &Result{}
	}

	switch r.format {
	case FormatJSON:
		return r.reportJSON(result)
	default:
		return r.reportText(result)
	}
}

func (r *Reporter) reportJSON(result *Result) error {
	out := struct {
		Name   string  `json:"name,omitempty"`
		Valid  bool    `json:"valid"`
		Issues []Issue `json:"issues"`
	}{
		Name:   r.name,
		Valid:  !result.HasErrors(),
		Issues: result.Issues,
	}
	if out.Issues == nil {
		out.Issues = []Issue{}
	}
	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	return errors.Wrap(encoder.Encode(out), "encoding JSON report")
}

func (r *Reporter) reportText(result *Result) error {
	prefix := ""
	if r.name != "" {
		prefix = r.name + ": "
	}

	errs, warnings, infos := result.Errors(), result.Warnings(), result.Infos()
	if len(errs) == 0 && len(warnings) == 0 {
		fmt.Fprintln(r.out, prefix+color.GreenString("ok"))
	} else {
		var summary []string
		if len(errs) > 0 {
			summary = append(summary, color.RedString("%d error(s)", len(errs)))
		}
		if len(warnings) > 0 {
			summary = append(summary, color.YellowString("%d warning(s)", len(warnings)))
		}
		fmt.Fprintln(r.out, prefix+strings.Join(summary, ", "))
	}

	for _, i := range errs {
		r.printIssue(i, color.FgRed)
	}
	for _, i := range warnings {
		r.printIssue(i, color.FgYellow)
	}
	for _, i := range infos {
		r.printIssue(i, color.FgHiBlack)
	}
	return nil
}

// printIssue writes "  severity field: message [value]".
func (r *Reporter) printIssue(i Issue, c color.Attribute) {
	var sb strings.Builder
	sb.WriteString("  ")
	sb.WriteString(color.New(c).Sprint(i.Severity.String()))
	sb.WriteString(" ")
	if i.Field != "" {
		sb.WriteString(i.Field)
		sb.WriteString(": ")
	}
	sb.WriteString(i.Message)
	if i.Value != "" {
		val := i.Value
		if len(val) > 60 {
			val = val[:57] + "..."
		}
		sb.WriteString(color.New(color.FgHiBlack).Sprintf(" [%s]", val))
	}
	fmt.Fprintln(r.out, sb.String())
}
