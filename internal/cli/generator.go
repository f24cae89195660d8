package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"time"

	"github.com/toyz/numderive/internal/errors"
	"github.com/toyz/numderive/internal/models"
	"github.com/toyz/numderive/internal/parser"
	"github.com/toyz/numderive/internal/templates"
	"github.com/toyz/numderive/internal/utils"
	"github.com/toyz/numderive/pkg/derive"
)

// GenerationSummary collects the outcome of one run
type GenerationSummary struct {
	PackagesScanned int
	TypesFound      int
	Declarations    int
	GeneratedFiles  []string
	UnchangedFiles  []string
	RemovedFiles    []string
}

// Generator coordinates the CLI generation process
type Generator struct {
	parser      parser.DirectiveParser
	modules     *utils.GoModParser
	diagnostics *utils.DiagnosticSystem
	reporter    *DiagnosticReporter
	summary     GenerationSummary
}

// NewGenerator creates a new CLI generator reporting through diagnostics
func NewGenerator(diagnostics *utils.DiagnosticSystem) *Generator {
	return &Generator{
		parser:      parser.NewParser(),
		modules:     utils.NewGoModParser(),
		diagnostics: diagnostics,
		reporter:    NewDiagnosticReporter(diagnostics),
	}
}

// Summary returns the summary of the last run
func (g *Generator) Summary() GenerationSummary {
	return g.summary
}

// Run scans the configured patterns and writes one file per package that
// carries directives. A package with any error gets no output; the other
// packages are still processed and every error is returned together.
func (g *Generator) Run(cfg Config) error {
	start := time.Now()
	g.summary = GenerationSummary{}

	if err := cfg.Validate(); err != nil {
		return errors.WrapConfigurationError("numderive", "validate", err)
	}

	g.diagnostics.PhaseHeader("Scanning")
	g.diagnostics.Debug("patterns: %v", cfg.Patterns)
	errs := errors.NewMultipleErrors()
	pkgs, err := NewPackageScanner(cfg.Dir).Scan(cfg.Patterns)
	if err != nil {
		addAll(errs, "scan", err)
	}
	g.summary.PackagesScanned = len(pkgs)
	g.diagnostics.Indent()
	for _, pkg := range pkgs {
		g.diagnostics.PhaseItem(pkg.PkgPath)
	}
	g.diagnostics.Unindent()

	g.diagnostics.PhaseHeader("Deriving")
	g.diagnostics.Indent()
	for _, pkg := range pkgs {
		file, err := g.GeneratePackage(pkg, cfg)
		if err != nil {
			addAll(errs, pkg.PkgPath, err)
			continue
		}
		if err := g.write(pkg, file, cfg); err != nil {
			addAll(errs, pkg.PkgPath, err)
		}
	}
	g.diagnostics.Unindent()

	g.diagnostics.Verbose("finished in %s", time.Since(start).Round(time.Millisecond))
	return errs.ErrOrNil()
}

// GeneratePackage parses one package and renders its generated file. The
// returned file has no declarations when the package carries no directives.
func (g *Generator) GeneratePackage(pkg Package, cfg Config) (*models.GeneratedFile, error) {
	metadata, err := g.parser.ParseFiles(pkg.Dir, pkg.GoFiles)
	if err != nil {
		return nil, err
	}

	file := &models.GeneratedFile{
		PackageName: metadata.PackageName,
		FilePath:    filepath.Join(pkg.Dir, cfg.Output),
	}
	if !metadata.HasTypes() {
		return file, nil
	}
	g.summary.TypesFound += len(metadata.Types)
	g.checkGenerics(pkg, metadata)

	decls, err := Synthesize(metadata, cfg.Conventions)
	if err != nil {
		return nil, err
	}
	content, err := templates.GenerateFile(file.FilePath, metadata.PackageName, decls)
	if err != nil {
		return nil, err
	}
	file.Content = content
	file.Declarations = decls
	return file, nil
}

// Synthesize runs every requested entry point of every annotated type, in
// source order. Either every request succeeds or no declaration is returned.
func Synthesize(metadata *models.PackageMetadata, conventions models.Conventions) ([]models.Declaration, error) {
	errs := errors.NewMultipleErrors()
	var decls []models.Declaration

	for _, t := range metadata.Types {
		for _, req := range t.Requests {
			loc := errors.SourceLocation(req.Location)
			entry, ok := derive.Lookup(req.Entry)
			if !ok {
				errs.Add(errors.NewGenerationError(t.Descriptor.Name, req.Entry, "unknown entry point").
					WithLocation(loc))
				continue
			}

			generated, err := entry.Generate(t.Descriptor, RequestOptions(req, conventions)...)
			if err != nil {
				errs.Add(errors.NewGenerationError(t.Descriptor.Name, req.Entry, err.Error()).
					WithLocation(loc))
				continue
			}
			decls = append(decls, generated...)
		}
	}

	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}
	return decls, nil
}

// RequestOptions translates directive parameters into invocation options
func RequestOptions(req models.Request, conventions models.Conventions) []derive.Option {
	opts := []derive.Option{derive.WithConventions(conventions)}
	if v, ok := req.Parameters["ValueCopy"].(bool); ok && v {
		opts = append(opts, derive.WithValueCopy())
	}
	if v, ok := req.Parameters["Native"].(bool); ok && v {
		opts = append(opts, derive.WithNative())
	}
	if v, ok := req.Parameters["Clone"].(string); ok && v != "" {
		opts = append(opts, derive.WithClone(v))
	}
	return opts
}

// checkGenerics warns when a generic type is annotated in a module whose go
// directive cannot compile type parameters
func (g *Generator) checkGenerics(pkg Package, metadata *models.PackageMetadata) {
	var generic string
	for _, t := range metadata.Types {
		if t.Descriptor.IsGeneric() {
			generic = t.Descriptor.Name
			break
		}
	}
	if generic == "" {
		return
	}

	module, err := g.modules.ModuleFor(pkg.Dir)
	if err != nil {
		g.diagnostics.Debug("no go.mod for %s: %v", pkg.Dir, err)
		return
	}
	if !module.SupportsGenerics() {
		g.diagnostics.Warn("%s is generic but %s declares go %s", generic, module.GoModPath, module.GoVersion)
		g.diagnostics.Hint("type parameters need go 1.18 or later in the go directive")
	}
}

// write stores file, removes a stale generated file when the package no
// longer has directives, and refuses to replace files numderive did not write
func (g *Generator) write(pkg Package, file *models.GeneratedFile, cfg Config) error {
	existing, err := os.ReadFile(file.FilePath)
	exists := err == nil
	if err != nil && !os.IsNotExist(err) {
		return errors.WrapFileSystemError("read", file.FilePath, err)
	}
	if exists && !templates.IsGenerated(existing) {
		return errors.FileSystemError("write", file.FilePath, "file exists and was not generated by numderive").
			WithSuggestion("rename the file or choose another name with --output")
	}

	if len(file.Declarations) == 0 {
		if !exists {
			return nil
		}
		g.summary.RemovedFiles = append(g.summary.RemovedFiles, file.FilePath)
		if cfg.DryRun {
			g.diagnostics.PhaseProgress("would remove " + file.FilePath)
			return nil
		}
		if err := os.Remove(file.FilePath); err != nil {
			return errors.WrapFileSystemError("remove", file.FilePath, err)
		}
		g.diagnostics.PhaseProgress("removed " + file.FilePath)
		return nil
	}

	g.summary.Declarations += len(file.Declarations)
	for _, name := range file.TypeNames() {
		g.diagnostics.Verbose("%s.%s", pkg.Name, name)
	}

	if exists && bytes.Equal(existing, file.Content) {
		g.summary.UnchangedFiles = append(g.summary.UnchangedFiles, file.FilePath)
		g.diagnostics.PhaseItem(file.FilePath + " is up to date")
		return nil
	}

	g.summary.GeneratedFiles = append(g.summary.GeneratedFiles, file.FilePath)
	if cfg.DryRun {
		g.diagnostics.PhaseProgress("would write " + file.FilePath)
		g.diagnostics.Debug("%s", file.Content)
		return nil
	}
	if err := os.WriteFile(file.FilePath, file.Content, 0o644); err != nil {
		return errors.WrapFileSystemError("write", file.FilePath, err)
	}
	g.diagnostics.PhaseProgress("wrote " + file.FilePath)
	return nil
}

// ReportError prints err through the generator's reporter
func (g *Generator) ReportError(err error) {
	g.reporter.ReportError(err)
}

// addAll flattens err into errs. Errors from outside the errors package are
// wrapped with the scope they came from.
func addAll(errs *errors.MultipleErrors, scope string, err error) {
	if multi, ok := err.(*errors.MultipleErrors); ok {
		for _, inner := range multi.Errors {
			errs.Add(inner)
		}
		return
	}
	if de, ok := err.(errors.DeriveError); ok {
		errs.Add(de)
		return
	}
	errs.Add(errors.Wrapf(errors.UnknownErrorCode, err, "%s: unexpected error", scope))
}
