package errors

import (
	stderrors "errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceLocationString(t *testing.T) {
	tests := []struct {
		name     string
		loc      SourceLocation
		expected string
	}{
		{"empty", SourceLocation{}, "unknown location"},
		{"file only", SourceLocation{File: "a.go"}, "a.go"},
		{"file and line", SourceLocation{File: "a.go", Line: 3}, "a.go:3"},
		{"full", SourceLocation{File: "a.go", Line: 3, Column: 7}, "a.go:3:7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.loc.String())
		})
	}
}

func TestBaseErrorFormatting(t *testing.T) {
	err := New(ValidationErrorCode, "bad directive").
		WithLocation(SourceLocation{File: "vec.go", Line: 12}).
		WithSuggestion("remove the duplicate entry")

	assert.Equal(t, "vec.go:12: bad directive", err.Error())
	assert.Equal(t, ValidationErrorCode, err.ErrorCode())
	assert.Equal(t, []string{"remove the duplicate entry"}, err.Suggestions())
	assert.NotNil(t, err.Context())
}

func TestWrapKeepsCause(t *testing.T) {
	err := WrapFileSystemError("write", "derive_gen.go", io.ErrShortWrite)

	assert.True(t, stderrors.Is(err, io.ErrShortWrite))
	assert.Contains(t, err.Error(), "failed to write file 'derive_gen.go'")
	assert.Equal(t, "write", err.Context()["operation"])
}

func TestGenerationError(t *testing.T) {
	err := NewGenerationError("Pair", "Add", "type name is empty").
		WithLocation(SourceLocation{File: "pair.go", Line: 4, Column: 6})

	assert.Equal(t, "Pair", err.TypeName)
	assert.Equal(t, "Add", err.Entry)
	assert.True(t, strings.HasPrefix(err.Error(), "pair.go:4:6: cannot derive Add for Pair"))

	var target *GenerationError
	require.True(t, stderrors.As(error(err), &target))
	assert.Equal(t, GenerationErrorCode, target.ErrorCode())
}

func TestMultipleErrors(t *testing.T) {
	errs := NewMultipleErrors()
	assert.Nil(t, errs.ErrOrNil())

	syntax := NewSyntaxError("unexpected token")
	validation := NewValidationError("ValueCopy", "bool", "\"maybe\"")
	errs.Add(syntax)
	errs.Add(validation)

	require.Error(t, errs.ErrOrNil())
	assert.Equal(t, 2, errs.Count())
	assert.True(t, errs.HasCode(ValidationErrorCode))
	assert.False(t, errs.HasCode(GenerationErrorCode))
	assert.Contains(t, errs.Error(), "multiple errors (2 total)")

	var target *ValidationError
	assert.True(t, stderrors.As(errs, &target))
	assert.Equal(t, "ValueCopy", target.Field)
}

func TestIsCode(t *testing.T) {
	inner := NewSyntaxError("unterminated string")
	wrapped := WrapWithOperation("parse", "vec.go", inner)

	assert.True(t, IsCode(wrapped, SyntaxErrorCode))
	assert.True(t, IsCode(wrapped, UnknownErrorCode))
	assert.False(t, IsCode(wrapped, FileSystemErrorCode))
	assert.False(t, IsCode(nil, SyntaxErrorCode))

	multi := NewMultipleErrors()
	multi.Add(NewGenerationError("T", "Shl", "boom"))
	assert.True(t, IsCode(multi, GenerationErrorCode))
}
