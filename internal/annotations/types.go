package annotations

import (
	"fmt"
	"strconv"

	"github.com/toyz/numderive/internal/models"
)

// Prefix introduces a directive comment
const Prefix = "derive::"

// Directive is one parsed //derive:: comment line
type Directive struct {
	Names      []string               // entry points in the order written
	Parameters map[string]interface{} // typed parameters, flags are true
	Location   models.Location        // position of the comment
	Raw        string                 // original comment text
}

// GetString returns a string parameter value with optional default
func (d *Directive) GetString(paramName string, defaultValue ...string) string {
	if value, exists := d.Parameters[paramName]; exists {
		if strValue, ok := value.(string); ok {
			return strValue
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

// GetBool returns a boolean parameter value with optional default
func (d *Directive) GetBool(paramName string, defaultValue ...bool) bool {
	if value, exists := d.Parameters[paramName]; exists {
		if boolValue, ok := value.(bool); ok {
			return boolValue
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return false
}

// HasParameter checks if a parameter exists
func (d *Directive) HasParameter(paramName string) bool {
	_, exists := d.Parameters[paramName]
	return exists
}

// ParameterType represents the type of a parameter
type ParameterType int

const (
	StringType ParameterType = iota
	BoolType
)

// String returns the string representation of the parameter type
func (p ParameterType) String() string {
	switch p {
	case StringType:
		return "string"
	case BoolType:
		return "bool"
	default:
		return "unknown"
	}
}

// convert turns the raw text after '=' into the parameter's type
func (p ParameterType) convert(raw string) (interface{}, error) {
	switch p {
	case BoolType:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%q is not a boolean", raw)
		}
		return b, nil
	case StringType:
		return raw, nil
	default:
		return nil, fmt.Errorf("unknown parameter type %d", p)
	}
}

// ParameterSpec defines the specification for a directive parameter
type ParameterSpec struct {
	Type        ParameterType           // Parameter type
	Description string                  // Parameter description
	Validator   func(interface{}) error // Custom validator function
}

// CustomValidator checks parameter combinations on a whole directive
type CustomValidator func(*Directive) error

// Schema defines the parameters accepted by the entry points of one family
type Schema struct {
	Family      models.Family            // recipe family the schema applies to
	Description string                   // Human-readable description
	Parameters  map[string]ParameterSpec // Parameter specifications
	Validators  []CustomValidator        // Custom validation functions
	Examples    []string                 // Usage examples
}

// Accepts reports whether the schema declares the parameter
func (s Schema) Accepts(paramName string) bool {
	_, ok := s.Parameters[paramName]
	return ok
}
