// Package derive is the invocation surface of numderive: one function per
// derivable operator and per widening family, each bound to exactly one
// recipe. The command line tool resolves directive names through Lookup;
// other build tooling can call the functions directly.
package derive

import (
	"github.com/toyz/numderive/internal/errors"
	"github.com/toyz/numderive/internal/generator"
	"github.com/toyz/numderive/internal/models"
	"github.com/toyz/numderive/internal/recipes"
)

type (
	// TypeDescriptor describes the annotated type
	TypeDescriptor = models.TypeDescriptor
	// TypeParam is one group of the type parameter list
	TypeParam = models.TypeParam
	// Declaration is one generated method or function
	Declaration = models.Declaration
	// Conventions are the naming formats of the hand-written capabilities
	Conventions = models.Conventions
	// Family groups entry points sharing a synthesis case
	Family = models.Family
)

// Option tunes a single invocation
type Option func(*generator.Options)

// WithConventions overrides the naming conventions
func WithConventions(c Conventions) Option {
	return func(o *generator.Options) { o.Conventions = c }
}

// WithValueCopy duplicates the receiver by plain assignment instead of Clone
func WithValueCopy() Option {
	return func(o *generator.Options) { o.ValueCopy = true }
}

// WithNative applies the built-in compound-assignment operator instead of the
// Assign method. Only meaningful for types whose underlying type is numeric.
func WithNative() Option {
	return func(o *generator.Options) { o.Native = true }
}

// WithClone names the duplication method for this invocation
func WithClone(method string) Option {
	return func(o *generator.Options) { o.Clone = method }
}

func options(opts []Option) generator.Options {
	var o generator.Options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Func is the signature shared by every entry point
type Func func(d TypeDescriptor, opts ...Option) ([]Declaration, error)

// EntryPoint binds a directive name to its generator
type EntryPoint struct {
	Name     string
	Family   Family
	Generate Func
}

func operator(name string, d TypeDescriptor, opts []Option) ([]Declaration, error) {
	r, ok := recipes.LookupOperator(name)
	if !ok {
		return nil, errors.NewGenerationError(d.Name, name, "unknown operator recipe")
	}
	return generator.SynthesizeOperator(d, r, options(opts))
}

func widening(family string, d TypeDescriptor, opts []Option, equality bool) ([]Declaration, error) {
	r, ok := recipes.LookupWidening(family)
	if !ok {
		return nil, errors.NewGenerationError(d.Name, family, "unknown widening recipe")
	}
	if equality {
		return generator.SynthesizeEquality(d, r, options(opts))
	}
	return generator.SynthesizeWidening(d, r, options(opts))
}

// Add derives Add from AddAssign
func Add(d TypeDescriptor, opts ...Option) ([]Declaration, error) { return operator("Add", d, opts) }

// Sub derives Sub from SubAssign
func Sub(d TypeDescriptor, opts ...Option) ([]Declaration, error) { return operator("Sub", d, opts) }

// Mul derives Mul from MulAssign
func Mul(d TypeDescriptor, opts ...Option) ([]Declaration, error) { return operator("Mul", d, opts) }

// Div derives Div from DivAssign
func Div(d TypeDescriptor, opts ...Option) ([]Declaration, error) { return operator("Div", d, opts) }

// Rem derives Rem from RemAssign
func Rem(d TypeDescriptor, opts ...Option) ([]Declaration, error) { return operator("Rem", d, opts) }

// BitXor derives BitXor from BitXorAssign
func BitXor(d TypeDescriptor, opts ...Option) ([]Declaration, error) {
	return operator("BitXor", d, opts)
}

// BitAnd derives BitAnd from BitAndAssign
func BitAnd(d TypeDescriptor, opts ...Option) ([]Declaration, error) {
	return operator("BitAnd", d, opts)
}

// BitOr derives BitOr from BitOrAssign
func BitOr(d TypeDescriptor, opts ...Option) ([]Declaration, error) { return operator("BitOr", d, opts) }

// Shl derives Shl from ShlAssign
func Shl(d TypeDescriptor, opts ...Option) ([]Declaration, error) { return operator("Shl", d, opts) }

// Shr derives Shr from ShrAssign
func Shr(d TypeDescriptor, opts ...Option) ([]Declaration, error) { return operator("Shr", d, opts) }

// FromSigned derives construction from int8, int16 and int32 through the
// type's int64 constructor.
func FromSigned(d TypeDescriptor, opts ...Option) ([]Declaration, error) {
	return widening(recipes.Signed, d, opts, false)
}

// FromUnsigned derives construction from uint8, uint16 and uint32 through
// the type's uint64 constructor.
func FromUnsigned(d TypeDescriptor, opts ...Option) ([]Declaration, error) {
	return widening(recipes.Unsigned, d, opts, false)
}

// EqSigned derives equality against int8, int16 and int32 from the type's
// int64 equality.
func EqSigned(d TypeDescriptor, opts ...Option) ([]Declaration, error) {
	return widening(recipes.Signed, d, opts, true)
}

// EqUnsigned derives equality against uint8, uint16 and uint32 from the
// type's uint64 equality.
func EqUnsigned(d TypeDescriptor, opts ...Option) ([]Declaration, error) {
	return widening(recipes.Unsigned, d, opts, true)
}

// FromBytes derives []byte construction from the type's string constructor
func FromBytes(d TypeDescriptor, opts ...Option) ([]Declaration, error) {
	return generator.SynthesizeText(d, recipes.Text(), options(opts))
}

var entryPoints = []EntryPoint{
	{"Add", models.FamilyOperator, Add},
	{"Sub", models.FamilyOperator, Sub},
	{"Mul", models.FamilyOperator, Mul},
	{"Div", models.FamilyOperator, Div},
	{"Rem", models.FamilyOperator, Rem},
	{"BitXor", models.FamilyOperator, BitXor},
	{"BitAnd", models.FamilyOperator, BitAnd},
	{"BitOr", models.FamilyOperator, BitOr},
	{"Shl", models.FamilyOperator, Shl},
	{"Shr", models.FamilyOperator, Shr},
	{"FromSigned", models.FamilyConversion, FromSigned},
	{"FromUnsigned", models.FamilyConversion, FromUnsigned},
	{"EqSigned", models.FamilyEquality, EqSigned},
	{"EqUnsigned", models.FamilyEquality, EqUnsigned},
	{"FromBytes", models.FamilyText, FromBytes},
}

// Lookup returns the entry point for a directive name. Names are matched
// exactly; the set is closed.
func Lookup(name string) (EntryPoint, bool) {
	for _, ep := range entryPoints {
		if ep.Name == name {
			return ep, true
		}
	}
	return EntryPoint{}, false
}

// EntryPoints returns every entry point in canonical order
func EntryPoints() []EntryPoint {
	return append([]EntryPoint(nil), entryPoints...)
}

// Names returns every entry point name in canonical order
func Names() []string {
	names := make([]string, len(entryPoints))
	for i, ep := range entryPoints {
		names[i] = ep.Name
	}
	return names
}
