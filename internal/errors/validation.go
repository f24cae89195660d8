package errors

import "fmt"

// ValidationError represents a validation error with detailed context
type ValidationError struct {
	*BaseError
	Field    string // field that failed validation
	Expected string // what was expected
	Actual   string // what was provided
}

// NewValidationError creates a new validation error
func NewValidationError(field, expected, actual string) *ValidationError {
	message := fmt.Sprintf("validation failed for '%s': expected %s, got %s", field, expected, actual)

	return &ValidationError{
		BaseError: New(ValidationErrorCode, message),
		Field:     field,
		Expected:  expected,
		Actual:    actual,
	}
}

// WithLocation adds location information to the error
func (e *ValidationError) WithLocation(loc SourceLocation) *ValidationError {
	e.BaseError.WithLocation(loc)
	return e
}

// WithSuggestion adds a helpful suggestion
func (e *ValidationError) WithSuggestion(suggestion string) *ValidationError {
	e.BaseError.WithSuggestion(suggestion)
	return e
}

// SyntaxError represents a directive or source parsing error
type SyntaxError struct {
	*BaseError
	Token string // the token that caused the error
}

// NewSyntaxError creates a new syntax error
func NewSyntaxError(message string) *SyntaxError {
	return &SyntaxError{
		BaseError: New(SyntaxErrorCode, message),
	}
}

// NewSyntaxErrorWithToken creates a syntax error with token information
func NewSyntaxErrorWithToken(message, token string) *SyntaxError {
	if token != "" {
		message = fmt.Sprintf("%s (near token '%s')", message, token)
	}

	return &SyntaxError{
		BaseError: New(SyntaxErrorCode, message),
		Token:     token,
	}
}

// WithLocation adds location information to the error
func (e *SyntaxError) WithLocation(loc SourceLocation) *SyntaxError {
	e.BaseError.WithLocation(loc)
	return e
}

// WithSuggestion adds a helpful suggestion
func (e *SyntaxError) WithSuggestion(suggestion string) *SyntaxError {
	e.BaseError.WithSuggestion(suggestion)
	return e
}

// GenerationError represents a failure to synthesize declarations for a type
type GenerationError struct {
	*BaseError
	TypeName string // annotated type
	Entry    string // directive entry point, e.g. "Add" or "FromSigned"
}

// NewGenerationError creates a new generation error
func NewGenerationError(typeName, entry, reason string) *GenerationError {
	message := fmt.Sprintf("cannot derive %s for %s: %s", entry, typeName, reason)
	return &GenerationError{
		BaseError: New(GenerationErrorCode, message),
		TypeName:  typeName,
		Entry:     entry,
	}
}

// WithLocation adds location information to the error
func (e *GenerationError) WithLocation(loc SourceLocation) *GenerationError {
	e.BaseError.WithLocation(loc)
	return e
}

// WithSuggestion adds a helpful suggestion
func (e *GenerationError) WithSuggestion(suggestion string) *GenerationError {
	e.BaseError.WithSuggestion(suggestion)
	return e
}
