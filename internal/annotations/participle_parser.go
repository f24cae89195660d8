package annotations

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/toyz/numderive/internal/errors"
	"github.com/toyz/numderive/internal/models"
	"github.com/toyz/numderive/pkg/derive"
)

// directiveAST is the grammar of one directive line:
//
//	//derive::Add Sub,Mul -ValueCopy -Clone=Dup
type directiveAST struct {
	Comment string       `parser:"@Comment"`
	Prefix  string       `parser:"@Prefix"`
	Names   []string     `parser:"@Ident ( ','? @Ident )*"`
	Options []*optionAST `parser:"@@*"`
}

type optionAST struct {
	Pos   lexer.Position
	Name  string  `parser:"'-' @Ident"`
	Value *string `parser:"( '=' @( String | Number | Ident ) )?"`
}

var directiveLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//`},
	{Name: "Prefix", Pattern: `derive::`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Number", Pattern: `[0-9]+`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Punct", Pattern: `[-=,]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// Parser turns directive comments into validated Directives
type Parser struct {
	parser    *participle.Parser[directiveAST]
	registry  SchemaRegistry
	validator Validator
}

// NewParser creates a directive parser backed by the given schemas
func NewParser(registry SchemaRegistry) *Parser {
	return &Parser{
		parser: participle.MustBuild[directiveAST](
			participle.Lexer(directiveLexer),
			participle.Elide("Whitespace"),
			participle.Unquote("String"),
			participle.UseLookahead(2),
		),
		registry:  registry,
		validator: NewValidator(registry),
	}
}

// IsDirective reports whether a comment line is a derive directive
func IsDirective(comment string) bool {
	text, ok := strings.CutPrefix(strings.TrimSpace(comment), "//")
	if !ok {
		return false
	}
	return strings.HasPrefix(strings.TrimSpace(text), Prefix)
}

// ParseDirective parses and validates a single directive comment. loc is the
// position of the comment's first character.
func (p *Parser) ParseDirective(comment string, loc models.Location) (*Directive, error) {
	ast, err := p.parser.ParseString(loc.File, strings.TrimSpace(comment))
	if err != nil {
		return nil, p.syntaxError(err, loc)
	}

	directive := &Directive{
		Names:      ast.Names,
		Parameters: make(map[string]interface{}),
		Location:   loc,
		Raw:        comment,
	}

	seen := make(map[string]bool, len(ast.Names))
	for _, name := range ast.Names {
		if seen[name] {
			return nil, errors.NewValidationError("directive", "each entry point once", name+" listed twice").
				WithLocation(errors.SourceLocation(loc)).
				WithSuggestion(fmt.Sprintf("remove the second %s", name))
		}
		seen[name] = true
	}

	for _, opt := range ast.Options {
		optLoc := errors.SourceLocation{File: loc.File, Line: loc.Line, Column: loc.Column + opt.Pos.Column - 1}
		if directive.HasParameter(opt.Name) {
			return nil, errors.NewValidationError(opt.Name, "a single occurrence", "a repeated option").
				WithLocation(optLoc)
		}
		value, err := p.convert(directive.Names, opt)
		if err != nil {
			return nil, errors.NewValidationError(opt.Name, "a valid value", err.Error()).
				WithLocation(optLoc)
		}
		directive.Parameters[opt.Name] = value
	}

	if err := p.validator.Validate(directive); err != nil {
		return nil, err
	}
	return directive, nil
}

// Requests expands a validated directive into one request per entry point.
// Each request only carries the parameters its family understands.
func (p *Parser) Requests(d *Directive) []models.Request {
	requests := make([]models.Request, 0, len(d.Names))
	for _, name := range d.Names {
		params := make(map[string]interface{})
		if schema, ok := p.schemaFor(name); ok {
			for key, value := range d.Parameters {
				if schema.Accepts(key) {
					params[key] = value
				}
			}
		}
		requests = append(requests, models.Request{
			Entry:      name,
			Parameters: params,
			Location:   d.Location,
		})
	}
	return requests
}

// convert types an option by the first schema among the named entry points
// that declares it. Unknown options keep their raw form and are reported by
// the validator.
func (p *Parser) convert(names []string, opt *optionAST) (interface{}, error) {
	for _, name := range names {
		schema, ok := p.schemaFor(name)
		if !ok {
			continue
		}
		spec, ok := schema.Parameters[opt.Name]
		if !ok {
			continue
		}
		if opt.Value == nil {
			if spec.Type == BoolType {
				return true, nil
			}
			return nil, fmt.Errorf("-%s requires a value", opt.Name)
		}
		return spec.Type.convert(*opt.Value)
	}
	if opt.Value == nil {
		return true, nil
	}
	return *opt.Value, nil
}

func (p *Parser) schemaFor(name string) (Schema, bool) {
	ep, ok := derive.Lookup(name)
	if !ok {
		return Schema{}, false
	}
	schema, err := p.registry.GetSchema(ep.Family)
	if err != nil {
		return Schema{}, false
	}
	return schema, true
}

func (p *Parser) syntaxError(err error, loc models.Location) error {
	errLoc := errors.SourceLocation(loc)
	message := err.Error()
	var perr participle.Error
	if stderrors.As(err, &perr) {
		message = perr.Message()
		errLoc.Column = loc.Column + perr.Position().Column - 1
	}
	var token string
	var unexpected *participle.UnexpectedTokenError
	if stderrors.As(err, &unexpected) && !unexpected.Unexpected.EOF() {
		token = unexpected.Unexpected.Value
	}
	return errors.NewSyntaxErrorWithToken("malformed directive: "+message, token).
		WithLocation(errLoc).
		WithSuggestion("directives look like //derive::Add Sub -ValueCopy")
}
