// Package recipes holds the closed tables the synthesizer consumes: one entry
// per derivable full operator and one per widening family.
package recipes

import (
	"go/token"
	"strings"

	"github.com/toyz/numderive/internal/models"
)

// operatorTable is the complete set of derivable operators in canonical order.
// The assignment tokens come from go/token so every recipe names a real
// compound-assignment operator of the language.
var operatorTable = [...]models.OperatorRecipe{
	operator("Add", token.ADD, token.ADD_ASSIGN),
	operator("Sub", token.SUB, token.SUB_ASSIGN),
	operator("Mul", token.MUL, token.MUL_ASSIGN),
	operator("Div", token.QUO, token.QUO_ASSIGN),
	operator("Rem", token.REM, token.REM_ASSIGN),
	operator("BitXor", token.XOR, token.XOR_ASSIGN),
	operator("BitAnd", token.AND, token.AND_ASSIGN),
	operator("BitOr", token.OR, token.OR_ASSIGN),
	operator("Shl", token.SHL, token.SHL_ASSIGN),
	operator("Shr", token.SHR, token.SHR_ASSIGN),
}

func operator(name string, tok, assign token.Token) models.OperatorRecipe {
	return models.OperatorRecipe{
		Name:        name,
		Token:       tok,
		AssignToken: assign,
		Key:         strings.ToLower(name),
	}
}

// Operators returns a copy of the operator table in canonical order
func Operators() []models.OperatorRecipe {
	out := make([]models.OperatorRecipe, len(operatorTable))
	copy(out, operatorTable[:])
	return out
}

// LookupOperator finds the recipe for a full operator name. The match is
// case-insensitive so "add" and "Add" resolve to the same recipe.
func LookupOperator(name string) (models.OperatorRecipe, bool) {
	key := strings.ToLower(name)
	for _, r := range operatorTable {
		if r.Key == key {
			return r, true
		}
	}
	return models.OperatorRecipe{}, false
}
