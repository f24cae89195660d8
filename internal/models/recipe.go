package models

import (
	"fmt"
	"go/token"
)

// Family groups entry points that share a synthesis case
type Family int

const (
	FamilyOperator Family = iota + 1
	FamilyConversion
	FamilyEquality
	FamilyText
)

// String returns the string representation of the family
func (f Family) String() string {
	switch f {
	case FamilyOperator:
		return "operator"
	case FamilyConversion:
		return "conversion"
	case FamilyEquality:
		return "equality"
	case FamilyText:
		return "text"
	default:
		return "unknown"
	}
}

// OperatorRecipe describes how a full operator derives from its
// compound-assignment counterpart.
type OperatorRecipe struct {
	Name        string      // full operator name, also the generated method name ("Add")
	Token       token.Token // binary operator ("+")
	AssignToken token.Token // compound-assignment operator ("+=")
	Key         string      // lowercase(Name), the directive-insensitive lookup key
}

// Kind is a fixed-width Go integer kind usable in widening recipes
type Kind int

const (
	KindInvalid Kind = iota
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint8
	KindUint16
	KindUint32
	KindUint64
)

var kindNames = [...]string{
	KindInvalid: "invalid",
	KindInt8:    "int8",
	KindInt16:   "int16",
	KindInt32:   "int32",
	KindInt64:   "int64",
	KindUint8:   "uint8",
	KindUint16:  "uint16",
	KindUint32:  "uint32",
	KindUint64:  "uint64",
}

// String returns the Go spelling of the kind
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Bits returns the width of the kind in bits, 0 for invalid kinds
func (k Kind) Bits() int {
	switch k {
	case KindInt8, KindUint8:
		return 8
	case KindInt16, KindUint16:
		return 16
	case KindInt32, KindUint32:
		return 32
	case KindInt64, KindUint64:
		return 64
	default:
		return 0
	}
}

// Signed reports whether the kind is a signed integer
func (k Kind) Signed() bool {
	return k >= KindInt8 && k <= KindInt64
}

// WideningRecipe maps a hub kind to the narrower kinds it subsumes.
type WideningRecipe struct {
	Family  string // "Signed" or "Unsigned"
	Hub     Kind
	Sources []Kind
}

// Validate checks that every source is strictly narrower than the hub and
// shares its signedness.
func (r WideningRecipe) Validate() error {
	if r.Hub.Bits() == 0 {
		return fmt.Errorf("widening recipe %s: invalid hub kind %s", r.Family, r.Hub)
	}
	if len(r.Sources) == 0 {
		return fmt.Errorf("widening recipe %s: no source kinds", r.Family)
	}
	seen := make(map[Kind]bool, len(r.Sources))
	for _, src := range r.Sources {
		if src.Bits() == 0 {
			return fmt.Errorf("widening recipe %s: invalid source kind %s", r.Family, src)
		}
		if src.Signed() != r.Hub.Signed() {
			return fmt.Errorf("widening recipe %s: %s and %s differ in signedness", r.Family, src, r.Hub)
		}
		if src.Bits() >= r.Hub.Bits() {
			return fmt.Errorf("widening recipe %s: %s is not narrower than %s", r.Family, src, r.Hub)
		}
		if seen[src] {
			return fmt.Errorf("widening recipe %s: duplicate source kind %s", r.Family, src)
		}
		seen[src] = true
	}
	return nil
}

// TextRecipe derives byte-slice construction from string construction
type TextRecipe struct {
	HubName    string // convention name of the hub, "String"
	HubType    string // "string"
	SourceName string // convention name of the source, "Bytes"
}
