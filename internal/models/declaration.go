package models

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/printer"
	"go/token"
	"strings"
)

// Declaration is one generated method or function. It is built once by the
// synthesizer and never modified afterwards.
type Declaration struct {
	Family   Family        // synthesis case that produced it
	Entry    string        // entry point name, e.g. "Add" or "EqSigned"
	TypeName string        // annotated type the declaration belongs to
	Name     string        // generated identifier
	Doc      []string      // doc comment lines without the leading "//"
	Decl     *ast.FuncDecl // the declaration itself, without Doc
}

// Source renders the declaration, doc comment included, as gofmt-formatted Go.
func (d Declaration) Source() (string, error) {
	if d.Decl == nil {
		return "", fmt.Errorf("declaration %s has no body", d.Name)
	}

	var buf bytes.Buffer
	for _, line := range d.Doc {
		if line == "" {
			buf.WriteString("//\n")
			continue
		}
		buf.WriteString("// ")
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	// Signature and statements are printed separately so that short bodies
	// still come out one statement per line.
	signature := *d.Decl
	signature.Body = nil
	fset := token.NewFileSet()
	if err := printer.Fprint(&buf, fset, &signature); err != nil {
		return "", fmt.Errorf("failed to print %s: %w", d.Name, err)
	}
	buf.WriteString(" {\n")
	if d.Decl.Body != nil {
		for _, stmt := range d.Decl.Body.List {
			buf.WriteByte('\t')
			if err := printer.Fprint(&buf, fset, stmt); err != nil {
				return "", fmt.Errorf("failed to print %s: %w", d.Name, err)
			}
			buf.WriteByte('\n')
		}
	}
	buf.WriteString("}\n")

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return "", fmt.Errorf("failed to format %s: %w", d.Name, err)
	}
	return strings.TrimSpace(string(formatted)), nil
}
