package parser

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/parser"
	"go/printer"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/toyz/numderive/internal/annotations"
	"github.com/toyz/numderive/internal/errors"
	"github.com/toyz/numderive/internal/models"
)

// Parser implements the DirectiveParser interface
type Parser struct {
	fileSet    *token.FileSet
	directives *annotations.Parser
	reporter   *ErrorReporter
}

// NewParser creates a new directive parser using the builtin schemas
func NewParser() *Parser {
	fset := token.NewFileSet()
	return &Parser{
		fileSet:    fset,
		directives: annotations.NewParser(annotations.DefaultRegistry()),
		reporter:   NewErrorReporter(fset),
	}
}

// ParseSource parses source code from a string for testing purposes
func (p *Parser) ParseSource(filename, source string) (*models.PackageMetadata, error) {
	file, err := parser.ParseFile(p.fileSet, filename, source, parser.ParseComments)
	if err != nil {
		return nil, errors.WrapParseError(filename, err)
	}
	return p.collect(filepath.Dir(filename), []*ast.File{file})
}

// ParseDirectory parses the non-test Go files of a single directory.
// Generated files are skipped so stale output never feeds back in.
func (p *Parser) ParseDirectory(path string) (*models.PackageMetadata, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, errors.WrapFileSystemError("read", path, err)
	}

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		files = append(files, filepath.Join(path, name))
	}
	if len(files) == 0 {
		return nil, errors.FileSystemError("scan", path, "no Go files found")
	}
	return p.ParseFiles(path, files)
}

// ParseFiles parses the given files as one package rooted at dir
func (p *Parser) ParseFiles(dir string, files []string) (*models.PackageMetadata, error) {
	sorted := append([]string(nil), files...)
	sort.Strings(sorted)

	var parsed []*ast.File
	for _, filename := range sorted {
		file, err := parser.ParseFile(p.fileSet, filename, nil, parser.ParseComments)
		if err != nil {
			return nil, errors.WrapParseError(filename, err)
		}
		if ast.IsGenerated(file) {
			continue
		}
		parsed = append(parsed, file)
	}
	return p.collect(dir, parsed)
}

// collect extracts annotated types from files of one package. Any error
// discards the whole package.
func (p *Parser) collect(dir string, files []*ast.File) (*models.PackageMetadata, error) {
	metadata := &models.PackageMetadata{PackagePath: dir}
	errs := errors.NewMultipleErrors()

	for _, file := range files {
		if metadata.PackageName == "" {
			metadata.PackageName = file.Name.Name
		} else if file.Name.Name != metadata.PackageName {
			errs.Add(p.reporter.ReportPackageMismatch(file.Name.Pos(), metadata.PackageName, file.Name.Name))
			continue
		}

		types, err := p.ExtractTypes(file)
		if err != nil {
			addAll(errs, err)
			continue
		}
		metadata.Types = append(metadata.Types, types...)
	}

	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}

	receivers := p.receiverNames(files)
	for i := range metadata.Types {
		d := &metadata.Types[i].Descriptor
		d.Receiver = receivers[d.Name]
	}
	return metadata, nil
}

// ExtractTypes returns the annotated types of one file in source order
func (p *Parser) ExtractTypes(file *ast.File) ([]models.AnnotatedType, error) {
	errs := errors.NewMultipleErrors()
	consumed := make(map[*ast.Comment]bool)
	var types []models.AnnotatedType

	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			typeSpec := spec.(*ast.TypeSpec)
			doc := typeSpec.Doc
			if doc == nil && !gen.Lparen.IsValid() {
				doc = gen.Doc
			}
			comments := directiveComments(doc)
			if len(comments) == 0 {
				continue
			}
			for _, c := range comments {
				consumed[c] = true
			}

			if typeSpec.Assign.IsValid() {
				errs.Add(p.reporter.ReportAliasDirective(typeSpec.Name.Pos(), typeSpec.Name.Name))
				continue
			}

			annotated, err := p.annotate(file, typeSpec, comments)
			if err != nil {
				addAll(errs, err)
				continue
			}
			types = append(types, annotated)
		}
	}

	for _, group := range file.Comments {
		for _, c := range group.List {
			if annotations.IsDirective(c.Text) && !consumed[c] {
				errs.Add(p.reporter.ReportDetachedDirective(c.Slash, c.Text))
			}
		}
	}

	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}
	return types, nil
}

func (p *Parser) annotate(file *ast.File, spec *ast.TypeSpec, comments []*ast.Comment) (models.AnnotatedType, error) {
	pos := p.fileSet.Position(spec.Name.Pos())
	annotated := models.AnnotatedType{
		Descriptor: models.TypeDescriptor{
			Name:       spec.Name.Name,
			TypeParams: p.typeParams(spec.TypeParams),
			Package:    file.Name.Name,
			Location:   models.Location{File: pos.Filename, Line: pos.Line, Column: pos.Column},
		},
	}

	errs := errors.NewMultipleErrors()
	requested := make(map[string]bool)
	for _, c := range comments {
		cpos := p.fileSet.Position(c.Slash)
		directive, err := p.directives.ParseDirective(c.Text, models.Location{
			File: cpos.Filename, Line: cpos.Line, Column: cpos.Column,
		})
		if err != nil {
			addAll(errs, err)
			continue
		}
		for _, req := range p.directives.Requests(directive) {
			if requested[req.Entry] {
				errs.Add(p.reporter.ReportDuplicateEntry(c.Slash, spec.Name.Name, req.Entry))
				continue
			}
			requested[req.Entry] = true
			annotated.Requests = append(annotated.Requests, req)
		}
	}
	return annotated, errs.ErrOrNil()
}

// typeParams keeps the grouping and the constraint text as written
func (p *Parser) typeParams(list *ast.FieldList) []models.TypeParam {
	if list == nil {
		return nil
	}
	params := make([]models.TypeParam, 0, len(list.List))
	for _, field := range list.List {
		names := make([]string, len(field.Names))
		for i, name := range field.Names {
			names[i] = name.Name
		}
		params = append(params, models.TypeParam{
			Names:      names,
			Constraint: p.exprString(field.Type),
		})
	}
	return params
}

func (p *Parser) exprString(expr ast.Expr) string {
	var buf bytes.Buffer
	if err := printer.Fprint(&buf, p.fileSet, expr); err != nil {
		return fmt.Sprintf("%v", expr)
	}
	return buf.String()
}

// receiverNames maps each type to the receiver name its first method uses
func (p *Parser) receiverNames(files []*ast.File) map[string]string {
	names := make(map[string]string)
	for _, file := range files {
		for _, decl := range file.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || fn.Recv == nil || len(fn.Recv.List) != 1 {
				continue
			}
			field := fn.Recv.List[0]
			if len(field.Names) != 1 || field.Names[0].Name == "_" {
				continue
			}
			typeName := receiverType(field.Type)
			if _, seen := names[typeName]; typeName != "" && !seen {
				names[typeName] = field.Names[0].Name
			}
		}
	}
	return names
}

func receiverType(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return receiverType(t.X)
	case *ast.ParenExpr:
		return receiverType(t.X)
	case *ast.IndexExpr:
		return receiverType(t.X)
	case *ast.IndexListExpr:
		return receiverType(t.X)
	case *ast.Ident:
		return t.Name
	}
	return ""
}

func directiveComments(doc *ast.CommentGroup) []*ast.Comment {
	if doc == nil {
		return nil
	}
	var comments []*ast.Comment
	for _, c := range doc.List {
		if annotations.IsDirective(c.Text) {
			comments = append(comments, c)
		}
	}
	return comments
}

// addAll flattens err into errs
func addAll(errs *errors.MultipleErrors, err error) {
	if multi, ok := err.(*errors.MultipleErrors); ok {
		for _, inner := range multi.Errors {
			errs.Add(inner)
		}
		return
	}
	errs.Add(asDeriveError(err))
}

func asDeriveError(err error) errors.DeriveError {
	if de, ok := err.(errors.DeriveError); ok {
		return de
	}
	return errors.Wrap(errors.UnknownErrorCode, "unexpected error", err)
}
