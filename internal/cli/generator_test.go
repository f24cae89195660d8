package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/numderive/internal/errors"
	"github.com/toyz/numderive/internal/models"
	"github.com/toyz/numderive/internal/parser"
	"github.com/toyz/numderive/internal/templates"
	"github.com/toyz/numderive/internal/utils"
	"github.com/toyz/numderive/pkg/derive"
)

const metersSource = `package fixed

// Meters is a length.
//
//derive::Add Sub -ValueCopy
type Meters int64

func (m *Meters) AddAssign(rhs Meters) { *m += rhs }
func (m *Meters) SubAssign(rhs Meters) { *m -= rhs }
`

const maskSource = `package fixed

//derive::BitAnd -Native
//derive::EqUnsigned
type Mask uint32

func (m Mask) EqualUint64(other uint64) bool { return uint64(m) == other }
`

// writeModule lays out a throwaway module and returns its root
func writeModule(t *testing.T, goVersion string, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	files["go.mod"] = "module example.com/fixed\n\ngo " + goVersion + "\n"
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func testConfig(dir string) Config {
	cfg := DefaultConfig()
	cfg.Dir = dir
	cfg.Patterns = []string{"./..."}
	return cfg
}

func silentGenerator() (*Generator, *bytes.Buffer) {
	var out bytes.Buffer
	d := utils.NewDiagnosticSystem(utils.DiagnosticDebug).WithOutput(&out, &out)
	return NewGenerator(d), &out
}

func TestGeneratorRun(t *testing.T) {
	root := writeModule(t, "1.21", map[string]string{
		"meters.go":      metersSource,
		"mask/mask.go":   "package mask\n\n" + maskSource[len("package fixed\n\n"):],
		"plain/plain.go": "package plain\n\ntype Plain int\n",
	})

	g, _ := silentGenerator()
	require.NoError(t, g.Run(testConfig(root)))

	summary := g.Summary()
	assert.Equal(t, 3, summary.PackagesScanned)
	assert.Equal(t, 2, summary.TypesFound)
	assert.Equal(t, 2+1+3, summary.Declarations)
	assert.ElementsMatch(t, []string{
		filepath.Join(root, DefaultOutput),
		filepath.Join(root, "mask", DefaultOutput),
	}, summary.GeneratedFiles)

	content, err := os.ReadFile(filepath.Join(root, DefaultOutput))
	require.NoError(t, err)
	assert.True(t, templates.IsGenerated(content))
	assert.Contains(t, string(content), "// Derived for Meters: Add, Sub.")
	assert.Contains(t, string(content), "func (m Meters) Add(rhs Meters) Meters {\n\tret := m\n\tret.AddAssign(rhs)\n\treturn ret\n}")
	assert.Contains(t, string(content), "func (m Meters) Sub(rhs Meters) Meters {")

	mask, err := os.ReadFile(filepath.Join(root, "mask", DefaultOutput))
	require.NoError(t, err)
	assert.Contains(t, string(mask), "package mask")
	assert.Contains(t, string(mask), "\tret &= rhs\n")
	assert.Contains(t, string(mask), "func (m Mask) EqualUint8(other uint8) bool {")

	_, err = os.Stat(filepath.Join(root, "plain", DefaultOutput))
	assert.True(t, os.IsNotExist(err), "packages without directives get no file")

	t.Run("second run leaves files alone", func(t *testing.T) {
		g, _ := silentGenerator()
		require.NoError(t, g.Run(testConfig(root)))
		assert.Empty(t, g.Summary().GeneratedFiles)
		assert.Len(t, g.Summary().UnchangedFiles, 2)
	})

	t.Run("stale file is removed", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(root, "mask", "mask.go"), []byte("package mask\n\ntype Mask uint32\n"), 0o644))
		g, _ := silentGenerator()
		require.NoError(t, g.Run(testConfig(root)))
		assert.Equal(t, []string{filepath.Join(root, "mask", DefaultOutput)}, g.Summary().RemovedFiles)
		_, err := os.Stat(filepath.Join(root, "mask", DefaultOutput))
		assert.True(t, os.IsNotExist(err))
	})
}

func TestGeneratorDryRun(t *testing.T) {
	root := writeModule(t, "1.21", map[string]string{"meters.go": metersSource})

	g, out := silentGenerator()
	cfg := testConfig(root)
	cfg.DryRun = true
	require.NoError(t, g.Run(cfg))

	assert.Equal(t, []string{filepath.Join(root, DefaultOutput)}, g.Summary().GeneratedFiles)
	assert.Contains(t, out.String(), "would write "+filepath.Join(root, DefaultOutput))
	_, err := os.Stat(filepath.Join(root, DefaultOutput))
	assert.True(t, os.IsNotExist(err))
}

func TestGeneratorKeepsForeignFiles(t *testing.T) {
	root := writeModule(t, "1.21", map[string]string{
		"meters.go":   metersSource,
		DefaultOutput: "package fixed\n\n// hand written\n",
	})

	g, _ := silentGenerator()
	err := g.Run(testConfig(root))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not generated by numderive")
	assert.True(t, errors.IsCode(err, errors.FileSystemErrorCode))

	content, readErr := os.ReadFile(filepath.Join(root, DefaultOutput))
	require.NoError(t, readErr)
	assert.Equal(t, "package fixed\n\n// hand written\n", string(content))
}

func TestGeneratorPackageErrorsAreIsolated(t *testing.T) {
	root := writeModule(t, "1.21", map[string]string{
		"meters.go":     metersSource,
		"broken/bad.go": "package broken\n\n//derive::Add Neg\ntype Bad int\n",
	})

	g, _ := silentGenerator()
	err := g.Run(testConfig(root))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ValidationErrorCode))
	assert.Contains(t, err.Error(), "bad.go:3")

	_, statErr := os.Stat(filepath.Join(root, DefaultOutput))
	assert.NoError(t, statErr, "healthy packages are still generated")
	_, statErr = os.Stat(filepath.Join(root, "broken", DefaultOutput))
	assert.True(t, os.IsNotExist(statErr))
}

func TestGeneratorLoadErrorsAreIsolated(t *testing.T) {
	root := writeModule(t, "1.21", map[string]string{
		"meters.go":    metersSource,
		"mixed/a.go":   "package a\n",
		"mixed/b.go":   "package b\n",
		"mask/mask.go": "package mask\n\n" + maskSource[len("package fixed\n\n"):],
	})

	g, _ := silentGenerator()
	err := g.Run(testConfig(root))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.FileSystemErrorCode))
	assert.Contains(t, err.Error(), "cannot load package example.com/fixed/mixed")
	assert.Contains(t, err.Error(), "found packages a")

	assert.FileExists(t, filepath.Join(root, DefaultOutput), "healthy packages are still generated")
	assert.FileExists(t, filepath.Join(root, "mask", DefaultOutput))
	assert.NoFileExists(t, filepath.Join(root, "mixed", DefaultOutput))
	assert.Equal(t, 2, g.Summary().PackagesScanned)
}

func TestGeneratorWarnsOnOldGoDirective(t *testing.T) {
	root := writeModule(t, "1.17", map[string]string{
		"pair.go": `package fixed

//derive::Add
type Pair[T ~int32 | ~int64] struct{ A, B T }
`,
	})

	g, out := silentGenerator()
	cfg := testConfig(root)
	cfg.DryRun = true
	require.NoError(t, g.Run(cfg))
	assert.Contains(t, out.String(), "[WARN] Pair is generic but")
	assert.Contains(t, out.String(), "declares go 1.17")
}

func TestSynthesize(t *testing.T) {
	p := parser.NewParser()
	metadata, err := p.ParseSource("mask.go", maskSource)
	require.NoError(t, err)

	decls, err := Synthesize(metadata, models.DefaultConventions())
	require.NoError(t, err)

	var names []string
	for _, decl := range decls {
		names = append(names, decl.Name)
	}
	assert.Equal(t, []string{"BitAnd", "EqualUint8", "EqualUint16", "EqualUint32"}, names)

	metadata.Types[0].Requests = append(metadata.Types[0].Requests, models.Request{
		Entry:    "Neg",
		Location: models.Location{File: "mask.go", Line: 3, Column: 1},
	})
	decls, err = Synthesize(metadata, models.DefaultConventions())
	require.Error(t, err)
	assert.Nil(t, decls)
	assert.True(t, errors.IsCode(err, errors.GenerationErrorCode))
	assert.Contains(t, err.Error(), "mask.go:3:1")
	assert.Contains(t, err.Error(), "cannot derive Neg for Mask")
}

func TestRequestOptions(t *testing.T) {
	mask := derive.TypeDescriptor{Name: "Mask"}
	conventions := models.DefaultConventions()

	tests := []struct {
		name   string
		params map[string]interface{}
		want   string
	}{
		{"defaults", nil, "ret := m.Clone()\n\tret.MulAssign(rhs)"},
		{"value copy", map[string]interface{}{"ValueCopy": true}, "ret := m\n\tret.MulAssign(rhs)"},
		{"native", map[string]interface{}{"Native": true}, "ret := m\n\tret *= rhs"},
		{"clone", map[string]interface{}{"Clone": "Dup"}, "ret := m.Dup()\n"},
		{"false flag", map[string]interface{}{"ValueCopy": false}, "ret := m.Clone()\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := RequestOptions(models.Request{Entry: "Mul", Parameters: tt.params}, conventions)
			decls, err := derive.Mul(mask, opts...)
			require.NoError(t, err)
			src, err := decls[0].Source()
			require.NoError(t, err)
			assert.Contains(t, src, tt.want)
		})
	}
}

func TestCleaner(t *testing.T) {
	root := writeModule(t, "1.21", map[string]string{
		"meters.go":              metersSource,
		DefaultOutput:            templates.GeneratedHeader + "\n\npackage fixed\n",
		"other/other.go":         "package other\n",
		"other/" + DefaultOutput: "package other\n\n// hand written\n",
	})

	var out bytes.Buffer
	d := utils.NewDiagnosticSystem(utils.DiagnosticInfo).WithOutput(&out, &out)
	cleaner := NewCleaner(d)

	cfg := testConfig(root)
	cfg.DryRun = true
	removed, err := cleaner.CleanGeneratedFiles(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, DefaultOutput)}, removed)
	_, err = os.Stat(filepath.Join(root, DefaultOutput))
	require.NoError(t, err, "dry run keeps the file")

	cfg.DryRun = false
	removed, err = cleaner.CleanGeneratedFiles(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, DefaultOutput)}, removed)
	_, err = os.Stat(filepath.Join(root, DefaultOutput))
	assert.True(t, os.IsNotExist(err))

	_, err = os.Stat(filepath.Join(root, "other", DefaultOutput))
	assert.NoError(t, err, "files without the header survive")
	assert.Contains(t, out.String(), "[WARN] keeping")
}

func TestCleanerSkipsBrokenPackages(t *testing.T) {
	root := writeModule(t, "1.21", map[string]string{
		"meters.go":   metersSource,
		DefaultOutput: templates.GeneratedHeader + "\n\npackage fixed\n",
		"mixed/a.go":  "package a\n",
		"mixed/b.go":  "package b\n",
	})

	cleaner := NewCleaner(utils.NewDiagnosticSystem(utils.DiagnosticSilent))
	removed, err := cleaner.CleanGeneratedFiles(testConfig(root))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "found packages a")
	assert.Equal(t, []string{filepath.Join(root, DefaultOutput)}, removed)
	assert.NoFileExists(t, filepath.Join(root, DefaultOutput))
}

func TestAddAllWrapsForeignErrors(t *testing.T) {
	errs := errors.NewMultipleErrors()
	addAll(errs, "example.com/fixed", io.ErrUnexpectedEOF)
	addAll(errs, "example.com/fixed", errors.FileSystemError("write", "derive_gen.go", "disk full"))

	require.Equal(t, 2, errs.Count())
	assert.Equal(t, errors.UnknownErrorCode, errs.Errors[0].ErrorCode())
	assert.Equal(t, "example.com/fixed: unexpected error: unexpected EOF", errs.Errors[0].Error())
	assert.ErrorIs(t, errs.Errors[0], io.ErrUnexpectedEOF)
	assert.Equal(t, errors.FileSystemErrorCode, errs.Errors[1].ErrorCode())
}

func TestDiagnosticReporter(t *testing.T) {
	var out bytes.Buffer
	d := utils.NewDiagnosticSystem(utils.DiagnosticVerbose).WithOutput(&out, &out)
	reporter := NewDiagnosticReporter(d)

	errs := errors.NewMultipleErrors()
	errs.Add(errors.NewValidationError("directive", "a derivable entry point", "'Neg'").
		WithLocation(errors.SourceLocation{File: "mask.go", Line: 3}).
		WithSuggestion("did you mean Add?"))
	errs.Add(errors.FileSystemError("write", "derive_gen.go", "permission denied"))
	reporter.ReportError(errs)

	got := out.String()
	assert.Contains(t, got, "[ERROR] 2 problems found\n")
	assert.Contains(t, got, "[ERROR] mask.go:3: validation failed for 'directive'")
	assert.Contains(t, got, "  hint: did you mean Add?\n")
	assert.Contains(t, got, "[VERBOSE] code: FileSystemError")
	assert.Contains(t, got, "[VERBOSE] Operation: write")

	out.Reset()
	reporter.ReportSuccess(GenerationSummary{PackagesScanned: 2, Declarations: 5, GeneratedFiles: []string{"a/derive_gen.go"}})
	assert.Contains(t, out.String(), "   declarations: 5\n")
	assert.Contains(t, out.String(), "- a/derive_gen.go\n")
}
