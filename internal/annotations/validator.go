package annotations

import (
	"fmt"
	"sort"
	"strings"

	"github.com/toyz/numderive/internal/errors"
	"github.com/toyz/numderive/internal/models"
	"github.com/toyz/numderive/pkg/derive"
)

// Validator checks a parsed directive against the schemas of the entry
// points it names
type Validator interface {
	Validate(d *Directive) error
}

// validator is the concrete implementation of Validator
type validator struct {
	registry SchemaRegistry
}

// NewValidator creates a new directive validator
func NewValidator(registry SchemaRegistry) Validator {
	return &validator{registry: registry}
}

// Validate reports every problem found in the directive at once
func (v *validator) Validate(d *Directive) error {
	errs := errors.NewMultipleErrors()
	loc := errors.SourceLocation(d.Location)

	var schemas []Schema
	seenFamily := make(map[models.Family]bool)
	for _, name := range d.Names {
		ep, ok := derive.Lookup(name)
		if !ok {
			errs.Add(errors.NewValidationError("directive", "a derivable entry point", fmt.Sprintf("'%s'", name)).
				WithLocation(loc).
				WithSuggestion(suggestEntry(name)))
			continue
		}
		if seenFamily[ep.Family] {
			continue
		}
		seenFamily[ep.Family] = true
		schema, err := v.registry.GetSchema(ep.Family)
		if err != nil {
			errs.Add(errors.Wrap(errors.SchemaErrorCode, "no schema for "+name, err).WithLocation(loc))
			continue
		}
		schemas = append(schemas, schema)
	}

	for _, paramName := range sortedKeys(d.Parameters) {
		value := d.Parameters[paramName]
		spec, ok := findSpec(schemas, paramName)
		if !ok {
			errs.Add(errors.NewValidationError(paramName, "a parameter of "+strings.Join(d.Names, ", "), "unknown parameter").
				WithLocation(loc).
				WithSuggestion(fmt.Sprintf("Remove -%s or check parameter name spelling", paramName)))
			continue
		}
		if !typeMatches(spec.Type, value) {
			errs.Add(errors.NewValidationError(paramName, spec.Type.String(), fmt.Sprintf("%v (%T)", value, value)).
				WithLocation(loc))
			continue
		}
		if spec.Validator != nil {
			if err := spec.Validator(value); err != nil {
				errs.Add(errors.NewValidationError(paramName, "valid value", fmt.Sprintf("%v", value)).
					WithLocation(loc).
					WithSuggestion(err.Error()))
			}
		}
	}

	for _, schema := range schemas {
		for _, custom := range schema.Validators {
			if err := custom(d); err != nil {
				errs.Add(errors.Wrap(errors.SchemaErrorCode, "invalid parameter combination", err).
					WithLocation(loc).
					WithSuggestion("Check directive parameters and their combinations"))
			}
		}
	}

	return errs.ErrOrNil()
}

func findSpec(schemas []Schema, paramName string) (ParameterSpec, bool) {
	for _, schema := range schemas {
		if spec, ok := schema.Parameters[paramName]; ok {
			return spec, true
		}
	}
	return ParameterSpec{}, false
}

func typeMatches(t ParameterType, value interface{}) bool {
	switch t {
	case BoolType:
		_, ok := value.(bool)
		return ok
	case StringType:
		_, ok := value.(string)
		return ok
	}
	return false
}

// suggestEntry offers the closest entry point for a misspelled name
func suggestEntry(name string) string {
	for _, known := range derive.Names() {
		if strings.EqualFold(known, name) {
			return fmt.Sprintf("did you mean %s?", known)
		}
	}
	return "known entry points: " + strings.Join(derive.Names(), ", ")
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
