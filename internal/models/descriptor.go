package models

import "strings"

// TypeParam is one group of a Go type parameter list, e.g. "K, V comparable".
// Names and Constraint are kept exactly as written in the annotated declaration.
type TypeParam struct {
	Names      []string // parameter names sharing the constraint
	Constraint string   // constraint expression source, e.g. "~int32 | ~int64"
}

// TypeDescriptor is the structural description of an annotated type.
type TypeDescriptor struct {
	Name       string      // type name
	TypeParams []TypeParam // ordered type parameter groups, empty for non-generic types
	Package    string      // package name the type lives in
	Receiver   string      // receiver name used by existing methods, optional
	Location   Location    // where the type is declared
}

// Location identifies a declaration in source
type Location struct {
	File   string
	Line   int
	Column int
}

// IsGeneric reports whether the type declares type parameters
func (d TypeDescriptor) IsGeneric() bool {
	return len(d.TypeParams) > 0
}

// ParamNames returns every type parameter name in declaration order
func (d TypeDescriptor) ParamNames() []string {
	var names []string
	for _, tp := range d.TypeParams {
		names = append(names, tp.Names...)
	}
	return names
}

// DeclarationForm renders the type parameter list with constraints, as it
// must appear on a generic function: "[K, V comparable, N Size]".
func (d TypeDescriptor) DeclarationForm() string {
	if !d.IsGeneric() {
		return ""
	}
	groups := make([]string, 0, len(d.TypeParams))
	for _, tp := range d.TypeParams {
		groups = append(groups, strings.Join(tp.Names, ", ")+" "+tp.Constraint)
	}
	return "[" + strings.Join(groups, ", ") + "]"
}

// ApplicationForm renders the instantiation of the type with its own
// parameters: "[K, V, N]".
func (d TypeDescriptor) ApplicationForm() string {
	if !d.IsGeneric() {
		return ""
	}
	return "[" + strings.Join(d.ParamNames(), ", ") + "]"
}

// SelfType renders the type as seen from its own methods, e.g. "Pair[T]"
func (d TypeDescriptor) SelfType() string {
	return d.Name + d.ApplicationForm()
}
