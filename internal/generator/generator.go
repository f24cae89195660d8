// Package generator synthesizes the derived declarations for one annotated
// type and one recipe. Every function here is pure: the same descriptor and
// recipe always produce the same declarations, and nothing is retained.
package generator

import (
	"fmt"
	"go/ast"
	"go/token"

	"github.com/toyz/numderive/internal/errors"
	"github.com/toyz/numderive/internal/models"
	"github.com/toyz/numderive/internal/recipes"
)

// Names the generated bodies rely on; a type parameter spelled the same way
// would shadow them.
var predeclared = map[string]bool{
	"bool": true, "byte": true, "string": true,
	"int8": true, "int16": true, "int32": true, "int64": true,
	"uint8": true, "uint16": true, "uint32": true, "uint64": true,
}

// SynthesizeOperator derives the full operator described by r from the
// type's compound-assignment method:
//
//	func (x T) Add(rhs T) T {
//		ret := x.Clone()
//		ret.AddAssign(rhs)
//		return ret
//	}
//
// Whether T really has Clone and AddAssign is left to the compiler.
func SynthesizeOperator(d models.TypeDescriptor, r models.OperatorRecipe, opts Options) ([]models.Declaration, error) {
	if known, ok := recipes.LookupOperator(r.Name); !ok || known != r {
		return nil, fail(d, r.Name, "unknown operator recipe")
	}
	conv, err := prepare(d, r.Name, opts, false)
	if err != nil {
		return nil, err
	}

	names := newNamer(d)
	recv := names.receiver(d)
	rhs := names.fresh("rhs")
	ret := names.fresh("ret")

	var duplicate ast.Expr = call(selector(recv, conv.CloneMethod()))
	if opts.ValueCopy || opts.Native {
		duplicate = ast.NewIdent(recv)
	}

	assignMethod := conv.AssignMethod(r.Name)
	var apply ast.Stmt = &ast.ExprStmt{X: call(selector(ret, assignMethod), ast.NewIdent(rhs))}
	doc := fmt.Sprintf("%s returns %s %s %s, computed by applying %s (%s) to a copy of %s.",
		r.Name, recv, r.Token, rhs, assignMethod, r.AssignToken, recv)
	if opts.Native {
		apply = &ast.AssignStmt{
			Lhs: []ast.Expr{ast.NewIdent(ret)},
			Tok: r.AssignToken,
			Rhs: []ast.Expr{ast.NewIdent(rhs)},
		}
		doc = fmt.Sprintf("%s returns %s %s %s, computed with the built-in %s operator.",
			r.Name, recv, r.Token, rhs, r.AssignToken)
	}

	decl := &ast.FuncDecl{
		Recv: fields(recv, selfType(d)),
		Name: ast.NewIdent(r.Name),
		Type: &ast.FuncType{
			Params:  fields(rhs, selfType(d)),
			Results: fields("", selfType(d)),
		},
		Body: &ast.BlockStmt{List: []ast.Stmt{
			&ast.AssignStmt{
				Lhs: []ast.Expr{ast.NewIdent(ret)},
				Tok: token.DEFINE,
				Rhs: []ast.Expr{duplicate},
			},
			apply,
			returns(ast.NewIdent(ret)),
		}},
	}

	return []models.Declaration{{
		Family:   models.FamilyOperator,
		Entry:    r.Name,
		TypeName: d.Name,
		Name:     r.Name,
		Doc:      []string{doc},
		Decl:     decl,
	}}, nil
}

// SynthesizeWidening derives one constructor per source kind of r, each
// widening its input to the hub kind and delegating to the hub constructor:
//
//	func TFromInt8(input int8) T {
//		return TFromInt64(int64(input))
//	}
func SynthesizeWidening(d models.TypeDescriptor, r models.WideningRecipe, opts Options) ([]models.Declaration, error) {
	entry := "From" + r.Family
	if err := r.Validate(); err != nil {
		return nil, fail(d, entry, err.Error())
	}
	conv, err := prepare(d, entry, opts, true)
	if err != nil {
		return nil, err
	}

	hub := conv.ConstructorFunc(d.Name, r.Hub.String())
	decls := make([]models.Declaration, 0, len(r.Sources))
	for _, src := range r.Sources {
		typeParams, err := typeParamList(d)
		if err != nil {
			return nil, fail(d, entry, err.Error())
		}

		names := newNamer(d)
		input := names.fresh("input")
		name := conv.ConstructorFunc(d.Name, src.String())

		decl := &ast.FuncDecl{
			Name: ast.NewIdent(name),
			Type: &ast.FuncType{
				TypeParams: typeParams,
				Params:     fields(input, ast.NewIdent(src.String())),
				Results:    fields("", selfType(d)),
			},
			Body: &ast.BlockStmt{List: []ast.Stmt{
				returns(call(instantiate(hub, d), call(ast.NewIdent(r.Hub.String()), ast.NewIdent(input)))),
			}},
		}

		decls = append(decls, models.Declaration{
			Family:   models.FamilyConversion,
			Entry:    entry,
			TypeName: d.Name,
			Name:     name,
			Doc:      []string{fmt.Sprintf("%s widens %s to %s and delegates to %s.", name, input, r.Hub, hub)},
			Decl:     decl,
		})
	}
	return decls, nil
}

// SynthesizeEquality derives one comparison method per source kind of r,
// each widening the operand to the hub kind and delegating to the hub
// comparison:
//
//	func (x T) EqualInt8(other int8) bool {
//		return x.EqualInt64(int64(other))
//	}
func SynthesizeEquality(d models.TypeDescriptor, r models.WideningRecipe, opts Options) ([]models.Declaration, error) {
	entry := "Eq" + r.Family
	if err := r.Validate(); err != nil {
		return nil, fail(d, entry, err.Error())
	}
	conv, err := prepare(d, entry, opts, true)
	if err != nil {
		return nil, err
	}

	hub := conv.EqualMethod(r.Hub.String())
	decls := make([]models.Declaration, 0, len(r.Sources))
	for _, src := range r.Sources {
		names := newNamer(d)
		recv := names.receiver(d)
		other := names.fresh("other")
		name := conv.EqualMethod(src.String())

		decl := &ast.FuncDecl{
			Recv: fields(recv, selfType(d)),
			Name: ast.NewIdent(name),
			Type: &ast.FuncType{
				Params:  fields(other, ast.NewIdent(src.String())),
				Results: fields("", ast.NewIdent("bool")),
			},
			Body: &ast.BlockStmt{List: []ast.Stmt{
				returns(call(selector(recv, hub), call(ast.NewIdent(r.Hub.String()), ast.NewIdent(other)))),
			}},
		}

		decls = append(decls, models.Declaration{
			Family:   models.FamilyEquality,
			Entry:    entry,
			TypeName: d.Name,
			Name:     name,
			Doc:      []string{fmt.Sprintf("%s reports whether %s equals %s widened to %s.", name, recv, other, r.Hub)},
			Decl:     decl,
		})
	}
	return decls, nil
}

// SynthesizeText derives byte-slice construction from the type's string
// constructor:
//
//	func TFromBytes(input []byte) T {
//		return TFromString(string(input))
//	}
func SynthesizeText(d models.TypeDescriptor, r models.TextRecipe, opts Options) ([]models.Declaration, error) {
	entry := "From" + r.SourceName
	if r != recipes.Text() {
		return nil, fail(d, entry, "unknown text recipe")
	}
	conv, err := prepare(d, entry, opts, true)
	if err != nil {
		return nil, err
	}
	typeParams, err := typeParamList(d)
	if err != nil {
		return nil, fail(d, entry, err.Error())
	}

	names := newNamer(d)
	input := names.fresh("input")
	name := conv.ConstructorFunc(d.Name, r.SourceName)
	hub := conv.ConstructorFunc(d.Name, r.HubName)

	decl := &ast.FuncDecl{
		Name: ast.NewIdent(name),
		Type: &ast.FuncType{
			TypeParams: typeParams,
			Params:     fields(input, &ast.ArrayType{Elt: ast.NewIdent("byte")}),
			Results:    fields("", selfType(d)),
		},
		Body: &ast.BlockStmt{List: []ast.Stmt{
			returns(call(instantiate(hub, d), call(ast.NewIdent(r.HubType), ast.NewIdent(input)))),
		}},
	}

	return []models.Declaration{{
		Family:   models.FamilyText,
		Entry:    entry,
		TypeName: d.Name,
		Name:     name,
		Doc:      []string{fmt.Sprintf("%s converts %s to a %s and delegates to %s.", name, input, r.HubType, hub)},
		Decl:     decl,
	}}, nil
}

// prepare checks the descriptor and resolves the naming conventions. When
// conversions are true the generated body names predeclared types, so type
// parameters must not shadow them.
func prepare(d models.TypeDescriptor, entry string, opts Options, conversions bool) (models.Conventions, error) {
	if err := checkDescriptor(d); err != nil {
		return models.Conventions{}, fail(d, entry, err.Error())
	}
	if conversions {
		for _, name := range d.ParamNames() {
			if predeclared[name] {
				return models.Conventions{}, fail(d, entry,
					fmt.Sprintf("type parameter %s shadows the predeclared type of the same name", name))
			}
		}
	}
	conv, err := opts.conventions()
	if err != nil {
		return models.Conventions{}, errors.Wrap(errors.ConfigurationErrorCode, "invalid naming conventions", err)
	}
	return conv, nil
}

func checkDescriptor(d models.TypeDescriptor) error {
	if !token.IsIdentifier(d.Name) || d.Name == "_" {
		return fmt.Errorf("invalid type name %q", d.Name)
	}
	seen := make(map[string]bool)
	for _, tp := range d.TypeParams {
		if len(tp.Names) == 0 {
			return fmt.Errorf("type parameter group without names")
		}
		if tp.Constraint == "" {
			return fmt.Errorf("type parameters %v have no constraint", tp.Names)
		}
		for _, name := range tp.Names {
			if !token.IsIdentifier(name) || name == "_" {
				return fmt.Errorf("invalid type parameter name %q", name)
			}
			if seen[name] {
				return fmt.Errorf("duplicate type parameter %s", name)
			}
			seen[name] = true
		}
	}
	return nil
}

func fail(d models.TypeDescriptor, entry, reason string) error {
	return errors.NewGenerationError(d.Name, entry, reason).
		WithLocation(errors.SourceLocation(d.Location)).
		WithSuggestion("check the type declaration the directive is attached to")
}
