package cli

import (
	"sort"
	"strings"

	"github.com/toyz/numderive/internal/errors"
	"github.com/toyz/numderive/internal/utils"
)

// DiagnosticReporter turns errors and summaries into diagnostics output
type DiagnosticReporter struct {
	diagnostics *utils.DiagnosticSystem
}

// NewDiagnosticReporter creates a new diagnostic reporter
func NewDiagnosticReporter(diagnostics *utils.DiagnosticSystem) *DiagnosticReporter {
	return &DiagnosticReporter{diagnostics: diagnostics}
}

// ReportError prints every error carried by err, each followed by its
// suggestions. Collected errors are reported one by one.
func (r *DiagnosticReporter) ReportError(err error) {
	if err == nil {
		return
	}

	if multi, ok := err.(*errors.MultipleErrors); ok {
		r.diagnostics.Error("%d problems found", multi.Count())
		for _, inner := range multi.Errors {
			r.reportOne(inner)
		}
		return
	}
	if de, ok := err.(errors.DeriveError); ok {
		r.reportOne(de)
		return
	}
	r.diagnostics.Error("%v", err)
}

func (r *DiagnosticReporter) reportOne(err errors.DeriveError) {
	r.diagnostics.Error("%s", err.Error())
	for _, suggestion := range err.Suggestions() {
		r.diagnostics.Hint("%s", suggestion)
	}
	if help := additionalHelp(err.ErrorCode()); help != "" {
		r.diagnostics.Hint("%s", help)
	}

	if r.diagnostics.Level() < utils.DiagnosticVerbose {
		return
	}
	r.diagnostics.Indent()
	r.diagnostics.Verbose("code: %s", err.ErrorCode())
	context := err.Context()
	keys := make([]string, 0, len(context))
	for key := range context {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		r.diagnostics.Verbose("%s: %v", formatContextKey(key), context[key])
	}
	r.diagnostics.Unindent()
}

// ReportSuccess prints the run summary and, in verbose mode, the files touched
func (r *DiagnosticReporter) ReportSuccess(summary GenerationSummary) {
	r.diagnostics.Summary("Summary", map[string]interface{}{
		"packages scanned": summary.PackagesScanned,
		"annotated types":  summary.TypesFound,
		"declarations":     summary.Declarations,
		"files written":    len(summary.GeneratedFiles),
		"files unchanged":  len(summary.UnchangedFiles),
		"files removed":    len(summary.RemovedFiles),
	})

	if r.diagnostics.Level() >= utils.DiagnosticVerbose {
		for _, file := range summary.GeneratedFiles {
			r.diagnostics.List("%s", file)
		}
	}
}

// additionalHelp points at the fix for a whole category of errors
func additionalHelp(code errors.ErrorCode) string {
	switch code {
	case errors.SyntaxErrorCode:
		return "run 'numderive recipes' to list the derivable names"
	case errors.SchemaErrorCode:
		return "-Clone picks the duplication method; -ValueCopy and -Native need none"
	case errors.ConfigurationErrorCode:
		return "placeholders are {type}, {op} and {kind}"
	}
	return ""
}

// formatContextKey turns snake_case keys into words: "config_type" -> "Config Type"
func formatContextKey(key string) string {
	parts := strings.Split(key, "_")
	for i, part := range parts {
		if len(part) > 0 {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, " ")
}
