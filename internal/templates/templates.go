// Package templates assembles synthesized declarations into a complete,
// gofmt-formatted Go file.
package templates

import (
	"bufio"
	"bytes"
	"slices"
	"strings"
	"text/template"

	"github.com/toyz/numderive/internal/errors"
	"github.com/toyz/numderive/internal/models"
	"github.com/toyz/numderive/internal/utils"
)

// GeneratedHeader is the first line of every file numderive writes. It
// matches the convention recognized by go/ast.IsGenerated.
const GeneratedHeader = "// Code generated by numderive. DO NOT EDIT."

// FileData is the input of the "file" template
type FileData struct {
	Header      string
	PackageName string
	Sections    []SectionData
}

// SectionData groups the declarations derived for one type
type SectionData struct {
	TypeName     string
	Entries      []string // entry points in request order
	Declarations []string // rendered declarations
}

var registry = NewTemplateRegistry()

// GenerateFile renders the declarations of one package into formatted Go
// source. Declarations keep their order; types appear in order of their first
// declaration. filename is used for error messages only.
func GenerateFile(filename, packageName string, decls []models.Declaration) ([]byte, error) {
	sections, err := buildSections(decls)
	if err != nil {
		return nil, err
	}

	source, err := executeTemplate("file", FileData{
		Header:      GeneratedHeader,
		PackageName: packageName,
		Sections:    sections,
	})
	if err != nil {
		return nil, err
	}

	formatted, err := utils.FormatGoCode(filename, []byte(source))
	if err != nil {
		return nil, errors.WrapTemplateError("file", "format", err).
			WithContext("file", filename)
	}
	return formatted, nil
}

func buildSections(decls []models.Declaration) ([]SectionData, error) {
	var sections []SectionData
	index := make(map[string]int)

	for _, decl := range decls {
		src, err := decl.Source()
		if err != nil {
			return nil, errors.WrapTemplateError(decl.Name, "render", err).
				WithContext("type", decl.TypeName)
		}

		i, ok := index[decl.TypeName]
		if !ok {
			i = len(sections)
			index[decl.TypeName] = i
			sections = append(sections, SectionData{TypeName: decl.TypeName})
		}
		section := &sections[i]
		if !slices.Contains(section.Entries, decl.Entry) {
			section.Entries = append(section.Entries, decl.Entry)
		}
		section.Declarations = append(section.Declarations, src)
	}
	return sections, nil
}

// IsGenerated reports whether content starts with numderive's header. Only
// such files may be overwritten or removed.
func IsGenerated(content []byte) bool {
	scanner := bufio.NewScanner(bytes.NewReader(content))
	if !scanner.Scan() {
		return false
	}
	return strings.TrimRight(scanner.Text(), "\r") == GeneratedHeader
}

func executeTemplate(name string, data interface{}) (string, error) {
	funcMap := template.FuncMap{
		"join": strings.Join,
	}

	tmpl, err := template.New(name).Funcs(funcMap).Parse(registry.MustGet(name))
	if err != nil {
		return "", errors.WrapTemplateError(name, "parse", err)
	}
	if _, err := tmpl.New("section").Parse(registry.MustGet("section")); err != nil {
		return "", errors.WrapTemplateError("section", "parse", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errors.WrapTemplateError(name, "execute", err)
	}
	return buf.String(), nil
}
