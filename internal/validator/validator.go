package validator

import (
	"fmt"
	"strings"
)

// Severity represents the impact of a validation issue.
type Severity int

const (
	// SeverityError marks a config the generator cannot use as intended.
	SeverityError Severity = iota
	// SeverityWarning marks a likely mistake.
	SeverityWarning
	// SeverityInfo is an informational note.
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Issue is a single validation problem.
type Issue struct {
	Severity Severity `json:"severity"`
	// Field is the config key the issue concerns, e.g. "buildTargets".
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	// Value is the offending entry, if any.
	Value string `json:"value,omitempty"`
}

// Error implements the error interface.
func (i Issue) Error() string {
	var sb strings.Builder
	sb.WriteString(i.Severity.String())
	sb.WriteString(": ")
	if i.Field != "" {
		sb.WriteString(i.Field)
		sb.WriteString(": ")
	}
	sb.WriteString(i.Message)
	if i.Value != "" {
		fmt.Fprintf(&sb, " (%q)", i.Value)
	}
	return sb.String()
}

// Result aggregates validation issues in the order they were found.
type Result struct {
	Issues []Issue `json:"issues"`
}

func (r *Result) add(sev Severity, field, message, value string) {
	r.Issues = append(r.Issues, Issue{
		Severity: sev,
		Field:    field,
		Message:  message,
		Value:    value,
	})
}

// AddError records an error.
func (r *Result) AddError(field, message, value string) {
	r.add(SeverityError, field, message, value)
}

// AddWarning records a warning.
func (r *Result) AddWarning(field, message, value string) {
	r.add(SeverityWarning, field, message, value)
}

// AddInfo records an informational note.
func (r *Result) AddInfo(field, message, value string) {
	r.add(SeverityInfo, field, message, value)
}

// HasErrors reports whether any issue has SeverityError.
func (r *Result) HasErrors() bool {
	return len(r.bySeverity(SeverityError)) > 0
}

// HasWarnings reports whether any issue has SeverityWarning.
func (r *Result) HasWarnings() bool {
	return len(r.bySeverity(SeverityWarning)) > 0
}

// Errors returns the issues with SeverityError.
func (r *Result) Errors() []Issue {
	return r.bySeverity(SeverityError)
}

// Warnings returns the issues with SeverityWarning.
func (r *Result) Warnings() []Issue {
	return r.bySeverity(SeverityWarning)
}

// Infos returns the issues with SeverityInfo.
func (r *Result) Infos() []Issue {
	return r.bySeverity(SeverityInfo)
}

func (r *Result) bySeverity(sev Severity) []Issue {
	if r == nil {
		return nil
	}
	var res []Issue
	for _, i := range r.Issues {
		if i.Severity == sev {
			res = append(res, i)
		}
	}
	return res
}
