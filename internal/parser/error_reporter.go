package parser

import (
	"fmt"
	"go/token"

	"github.com/toyz/numderive/internal/errors"
)

// ErrorReporter builds located errors for misplaced or conflicting directives
type ErrorReporter struct {
	fileSet *token.FileSet
}

// NewErrorReporter creates a reporter resolving positions against fset
func NewErrorReporter(fset *token.FileSet) *ErrorReporter {
	return &ErrorReporter{fileSet: fset}
}

func (r *ErrorReporter) location(pos token.Pos) errors.SourceLocation {
	p := r.fileSet.Position(pos)
	return errors.SourceLocation{File: p.Filename, Line: p.Line, Column: p.Column}
}

// ReportDetachedDirective reports a directive that is not the doc comment of
// a type declaration
func (r *ErrorReporter) ReportDetachedDirective(pos token.Pos, text string) *errors.ValidationError {
	err := errors.NewValidationError("directive", "doc comment of a type declaration", fmt.Sprintf("'%s' elsewhere", text)).
		WithLocation(r.location(pos))
	err.WithSuggestions(
		"Place the directive directly above a type declaration",
		"Functions, variables, constants and struct fields cannot carry directives",
	)
	return err
}

// ReportAliasDirective reports a directive attached to a type alias
func (r *ErrorReporter) ReportAliasDirective(pos token.Pos, typeName string) *errors.ValidationError {
	return errors.NewValidationError(typeName, "a defined type", "a type alias").
		WithLocation(r.location(pos)).
		WithSuggestion(fmt.Sprintf("Annotate the aliased type instead, or write 'type %s <underlying>'", typeName))
}

// ReportDuplicateEntry reports an entry point requested twice for one type
func (r *ErrorReporter) ReportDuplicateEntry(pos token.Pos, typeName, entry string) *errors.ValidationError {
	return errors.NewValidationError(typeName, fmt.Sprintf("%s requested once", entry), fmt.Sprintf("%s requested again", entry)).
		WithLocation(r.location(pos)).
		WithSuggestion(fmt.Sprintf("Remove one of the %s directives", entry))
}

// ReportPackageMismatch reports sources of one directory declaring different packages
func (r *ErrorReporter) ReportPackageMismatch(pos token.Pos, want, got string) *errors.ValidationError {
	return errors.NewValidationError("package", want, got).
		WithLocation(r.location(pos)).
		WithSuggestion("Keep one package per directory; test packages are ignored")
}
