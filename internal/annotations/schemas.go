package annotations

import (
	"fmt"
	"go/token"

	"github.com/toyz/numderive/internal/models"
)

// Built-in directive schemas

// OperatorSchema covers Add through Shr
var OperatorSchema = Schema{
	Family:      models.FamilyOperator,
	Description: "Derives a full operator from its compound-assignment method",
	Parameters: map[string]ParameterSpec{
		"ValueCopy": {
			Type:        BoolType,
			Description: "Duplicate the receiver by assignment instead of calling Clone",
		},
		"Native": {
			Type:        BoolType,
			Description: "Apply the built-in compound-assignment operator; for types with a numeric underlying type",
		},
		"Clone": {
			Type:        StringType,
			Description: "Name of the duplication method, overriding the configured convention",
			Validator:   ValidateIdentifier,
		},
	},
	Validators: []CustomValidator{
		func(d *Directive) error {
			if d.HasParameter("Clone") && (d.GetBool("ValueCopy") || d.GetBool("Native")) {
				return fmt.Errorf("-Clone has no effect together with -ValueCopy or -Native")
			}
			return nil
		},
	},
	Examples: []string{
		"//derive::Add Sub",
		"//derive::Shl Shr -Native",
		"//derive::Mul -ValueCopy",
		"//derive::BitAnd,BitOr -Clone=Dup",
	},
}

// ConversionSchema covers FromSigned and FromUnsigned
var ConversionSchema = Schema{
	Family:      models.FamilyConversion,
	Description: "Derives narrow-kind constructors from the hub constructor",
	Parameters:  map[string]ParameterSpec{},
	Examples: []string{
		"//derive::FromSigned",
		"//derive::FromSigned FromUnsigned",
	},
}

// EqualitySchema covers EqSigned and EqUnsigned
var EqualitySchema = Schema{
	Family:      models.FamilyEquality,
	Description: "Derives narrow-kind equality from the hub equality method",
	Parameters:  map[string]ParameterSpec{},
	Examples: []string{
		"//derive::EqSigned",
		"//derive::EqSigned EqUnsigned",
	},
}

// TextSchema covers FromBytes
var TextSchema = Schema{
	Family:      models.FamilyText,
	Description: "Derives []byte construction from the string constructor",
	Parameters:  map[string]ParameterSpec{},
	Examples: []string{
		"//derive::FromBytes",
	},
}

// BuiltinSchemas returns every schema shipped with numderive
func BuiltinSchemas() []Schema {
	return []Schema{OperatorSchema, ConversionSchema, EqualitySchema, TextSchema}
}

// RegisterBuiltinSchemas registers every builtin schema
func RegisterBuiltinSchemas(r SchemaRegistry) error {
	for _, schema := range BuiltinSchemas() {
		if err := r.Register(schema); err != nil {
			return fmt.Errorf("failed to register %s schema: %w", schema.Family, err)
		}
	}
	return nil
}

// ValidateIdentifier checks that a string parameter is a Go identifier
func ValidateIdentifier(v interface{}) error {
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("must be a string, got %T", v)
	}
	if !token.IsIdentifier(s) || s == "_" {
		return fmt.Errorf("must be a Go identifier, got '%s'", s)
	}
	return nil
}
