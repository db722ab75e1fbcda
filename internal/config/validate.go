// This file adds a lightweight linter/validator for Config values. It
// performs static checks over a populated Config and returns a list of issues
// (errors and warnings) that callers can surface in the CLI or tests.
package config

import "fmt"

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that is surfaced to
	// users but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding for a Config.
//
// Path names the offending field (e.g. "buffer_size", "fields[2]").
// Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a
// single error in contexts that expect one.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// Validate performs static validation of a Config.
//
// It does not mutate the config. Callers decide whether to treat warnings as
// fatal; the CLI aborts only on SeverityError.
func Validate(c Config) []Issue {
	var issues []Issue

	if c.BufferSize <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "buffer_size",
			Message:  fmt.Sprintf("must be positive, got %d", c.BufferSize),
		})
	}

	if c.Fields != nil && len(c.Fields) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "fields",
			Message:  "field selection requested but the list is empty",
		})
	}
	for i, f := range c.Fields {
		if f < 1 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("fields[%d]", i),
				Message:  fmt.Sprintf("indices are 1-based and must be positive, got %d", f),
			})
		}
	}

	if c.SQLitePath != "" && c.SQLiteTable == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "sqlite_table",
			Message:  "a table name is required when loading into SQLite",
		})
	}
	if c.SQLitePath != "" && c.Output != "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "output",
			Message:  "ignored when a SQLite destination is configured",
		})
	}

	if c.Threads > 1 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "threads",
			Message:  "record processing is single-stream and order-preserving; extra workers are not used",
		})
	}

	return issues
}

// HasError reports whether issues contains at least one SeverityError entry.
func HasError(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}
