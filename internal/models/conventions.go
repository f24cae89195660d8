package models

import (
	"fmt"
	"go/token"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Placeholders understood by naming formats
const (
	PlaceholderType = "{type}"
	PlaceholderOp   = "{op}"
	PlaceholderKind = "{kind}"
)

// Conventions are the naming formats tying generated code to the
// capabilities the annotated type provides by hand.
type Conventions struct {
	Assign      string `yaml:"assign"`      // compound-assignment method, "{op}Assign"
	Clone       string `yaml:"clone"`       // duplication method, "Clone"
	Constructor string `yaml:"constructor"` // construction function, "{type}From{kind}"
	Equal       string `yaml:"equal"`       // hub equality method, "Equal{kind}"
}

// DefaultConventions returns the built-in naming formats
func DefaultConventions() Conventions {
	return Conventions{
		Assign:      "{op}Assign",
		Clone:       "Clone",
		Constructor: "{type}From{kind}",
		Equal:       "Equal{kind}",
	}
}

// WithDefaults fills empty formats from DefaultConventions
func (c Conventions) WithDefaults() Conventions {
	def := DefaultConventions()
	if c.Assign == "" {
		c.Assign = def.Assign
	}
	if c.Clone == "" {
		c.Clone = def.Clone
	}
	if c.Constructor == "" {
		c.Constructor = def.Constructor
	}
	if c.Equal == "" {
		c.Equal = def.Equal
	}
	return c
}

// Validate checks that every format can produce an identifier
func (c Conventions) Validate() error {
	checks := []struct {
		field  string
		format string
		needs  []string
	}{
		{"assign", c.Assign, []string{PlaceholderOp}},
		{"clone", c.Clone, nil},
		{"constructor", c.Constructor, []string{PlaceholderType, PlaceholderKind}},
		{"equal", c.Equal, []string{PlaceholderKind}},
	}
	for _, check := range checks {
		for _, placeholder := range check.needs {
			if !strings.Contains(check.format, placeholder) {
				return fmt.Errorf("convention %s %q must contain %s", check.field, check.format, placeholder)
			}
		}
		sample := expand(check.format, "T", "Add", "Int64")
		if !token.IsIdentifier(sample) {
			return fmt.Errorf("convention %s %q does not produce a Go identifier", check.field, check.format)
		}
	}
	return nil
}

// AssignMethod names the compound-assignment method for an operator
func (c Conventions) AssignMethod(op string) string {
	return expand(c.Assign, "", op, "")
}

// CloneMethod names the duplication method
func (c Conventions) CloneMethod() string {
	return expand(c.Clone, "", "", "")
}

// ConstructorFunc names the construction function of typeName from kind
func (c Conventions) ConstructorFunc(typeName, kind string) string {
	return expand(c.Constructor, typeName, "", KindTitle(kind))
}

// EqualMethod names the equality method against kind
func (c Conventions) EqualMethod(kind string) string {
	return expand(c.Equal, "", "", KindTitle(kind))
}

// KindTitle turns a Go kind spelling into its identifier form: "int8" -> "Int8"
func KindTitle(kind string) string {
	// Casers keep state between calls and must not be shared.
	return cases.Title(language.Und, cases.NoLower).String(kind)
}

func expand(format, typeName, op, kind string) string {
	return strings.NewReplacer(
		PlaceholderType, typeName,
		PlaceholderOp, op,
		PlaceholderKind, kind,
	).Replace(format)
}
