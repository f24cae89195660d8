package templates

// TemplateRegistry provides a centralized way to access all templates
type TemplateRegistry struct {
	templates map[string]string
}

// NewTemplateRegistry creates a new template registry with all templates
func NewTemplateRegistry() *TemplateRegistry {
	registry := &TemplateRegistry{
		templates: make(map[string]string),
	}

	registry.registerFileTemplates()

	return registry
}

// Get retrieves a template by name
func (tr *TemplateRegistry) Get(name string) (string, bool) {
	template, exists := tr.templates[name]
	return template, exists
}

// MustGet retrieves a template by name, panics if not found
func (tr *TemplateRegistry) MustGet(name string) string {
	template, exists := tr.templates[name]
	if !exists {
		panic("template not found: " + name)
	}
	return template
}

// registerFileTemplates registers the layout of a generated file
func (tr *TemplateRegistry) registerFileTemplates() {
	tr.templates["file"] = `{{.Header}}

package {{.PackageName}}
{{range .Sections}}{{template "section" .}}{{end}}`

	// One block per annotated type, in source order. The leading comment is
	// separated from the first declaration so it never becomes its doc.
	tr.templates["section"] = `
// Derived for {{.TypeName}}: {{join .Entries ", "}}.
{{range .Declarations}}
{{.}}
{{end}}`
}
