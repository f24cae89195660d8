package generator

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"unicode"
	"unicode/utf8"

	"github.com/toyz/numderive/internal/models"
)

// namer hands out local identifiers that cannot collide with the annotated
// type's own type parameter names.
type namer struct {
	taken map[string]bool
}

func newNamer(d models.TypeDescriptor) *namer {
	n := &namer{taken: make(map[string]bool)}
	for _, name := range d.ParamNames() {
		n.taken[name] = true
	}
	return n
}

func (n *namer) fresh(base string) string {
	name := base
	for i := 1; n.taken[name]; i++ {
		name = fmt.Sprintf("%s%d", base, i)
	}
	n.taken[name] = true
	return name
}

// receiver follows the usual Go habit of naming the receiver after the first
// letter of its type, unless the descriptor carries a preferred name.
func (n *namer) receiver(d models.TypeDescriptor) string {
	if d.Receiver != "" && d.Receiver != "_" && token.IsIdentifier(d.Receiver) && !n.taken[d.Receiver] {
		n.taken[d.Receiver] = true
		return d.Receiver
	}
	r, _ := utf8.DecodeRuneInString(d.Name)
	base := string(unicode.ToLower(r))
	if !token.IsIdentifier(base) || base == "_" {
		base = "x"
	}
	return n.fresh(base)
}

// selfType is the annotated type applied to its own parameters: T or T[P, Q].
func selfType(d models.TypeDescriptor) ast.Expr {
	return instantiate(d.Name, d)
}

// instantiate applies the descriptor's type parameters to a generic name.
func instantiate(name string, d models.TypeDescriptor) ast.Expr {
	params := d.ParamNames()
	switch len(params) {
	case 0:
		return ast.NewIdent(name)
	case 1:
		return &ast.IndexExpr{X: ast.NewIdent(name), Index: ast.NewIdent(params[0])}
	default:
		indices := make([]ast.Expr, len(params))
		for i, p := range params {
			indices[i] = ast.NewIdent(p)
		}
		return &ast.IndexListExpr{X: ast.NewIdent(name), Indices: indices}
	}
}

// typeParamList rebuilds the declaration form of the type parameters with
// the original grouping and constraints.
func typeParamList(d models.TypeDescriptor) (*ast.FieldList, error) {
	if !d.IsGeneric() {
		return nil, nil
	}
	list := &ast.FieldList{}
	for _, tp := range d.TypeParams {
		constraint, err := parser.ParseExpr(tp.Constraint)
		if err != nil {
			return nil, fmt.Errorf("invalid constraint %q: %w", tp.Constraint, err)
		}
		names := make([]*ast.Ident, len(tp.Names))
		for i, name := range tp.Names {
			names[i] = ast.NewIdent(name)
		}
		list.List = append(list.List, &ast.Field{Names: names, Type: constraint})
	}
	return list, nil
}

func fields(name string, typ ast.Expr) *ast.FieldList {
	field := &ast.Field{Type: typ}
	if name != "" {
		field.Names = []*ast.Ident{ast.NewIdent(name)}
	}
	return &ast.FieldList{List: []*ast.Field{field}}
}

func call(fun ast.Expr, args ...ast.Expr) *ast.CallExpr {
	return &ast.CallExpr{Fun: fun, Args: args}
}

func selector(recv, name string) *ast.SelectorExpr {
	return &ast.SelectorExpr{X: ast.NewIdent(recv), Sel: ast.NewIdent(name)}
}

func returns(expr ast.Expr) *ast.ReturnStmt {
	return &ast.ReturnStmt{Results: []ast.Expr{expr}}
}
