package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wordSource = `package word

//derive::FromUnsigned EqUnsigned FromBytes
type Word struct{ v uint64 }

func WordFromUint64(input uint64) Word { return Word{v: input} }
func WordFromString(input string) Word { return Word{v: uint64(len(input))} }

func (w Word) EqualUint64(other uint64) bool { return w.v == other }
`

func execute(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

// moduleDir creates a module holding one annotated package and makes it
// the working directory for the rest of the test
func moduleDir(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/word\n\ngo 1.21\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "word.go"), []byte(wordSource), 0o644))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(root))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return root
}

func TestHelp(t *testing.T) {
	code, stdout, _ := execute(t, "--help")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "Usage: numderive")
	assert.Contains(t, stdout, "gen")
	assert.Contains(t, stdout, "recipes")
}

func TestVersion(t *testing.T) {
	code, stdout, _ := execute(t, "version")
	assert.Equal(t, 0, code)
	assert.Regexp(t, `^numderive \S+\n$`, stdout)
}

func TestRecipes(t *testing.T) {
	code, stdout, _ := execute(t, "recipes")
	require.Equal(t, 0, code)

	assert.Contains(t, stdout, "T.Add (+) from AddAssign (+=)")
	assert.Contains(t, stdout, "T.Shr (>>) from ShrAssign (>>=)")
	assert.Contains(t, stdout, "TFromInt8, TFromInt16, TFromInt32 via TFromInt64")
	assert.Contains(t, stdout, "T.EqualUint8, T.EqualUint16, T.EqualUint32 via T.EqualUint64")
	assert.Contains(t, stdout, "TFromBytes via TFromString")
}

func TestUsageErrors(t *testing.T) {
	code, _, stderr := execute(t, "gen", "--bogus")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "numderive: error:")

	code, _, _ = execute(t, "--verbose", "--quiet", "recipes")
	assert.Equal(t, 2, code)
}

func TestGenAndClean(t *testing.T) {
	root := moduleDir(t)
	generated := filepath.Join(root, "derive_gen.go")

	code, stdout, stderr := execute(t, "gen", "--dry-run")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "would write")
	assert.NoFileExists(t, generated)

	code, stdout, stderr = execute(t, "./...")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "numderive: generation complete")
	require.FileExists(t, generated)

	content, err := os.ReadFile(generated)
	require.NoError(t, err)
	assert.Contains(t, string(content), "func WordFromUint8(input uint8) Word {")
	assert.Contains(t, string(content), "func (w Word) EqualUint32(other uint32) bool {")
	assert.Contains(t, string(content), "func WordFromBytes(input []byte) Word {")

	code, stdout, _ = execute(t, "clean")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "1 generated files removed")
	assert.NoFileExists(t, generated)
}

func TestGenHonoursConfigFile(t *testing.T) {
	root := moduleDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "numderive.yaml"), []byte("output: zz_word.go\n"), 0o644))

	code, stdout, stderr := execute(t, "--quiet", "gen")
	require.Equal(t, 0, code, stderr)
	assert.Empty(t, stdout, "quiet only prints errors")
	assert.FileExists(t, filepath.Join(root, "zz_word.go"))

	code, _, stderr = execute(t, "--quiet", "gen", "--output", "flag_word.go")
	require.Equal(t, 0, code, stderr)
	assert.FileExists(t, filepath.Join(root, "flag_word.go"), "flags win over the file")

	alt := filepath.Join(root, "alt.yaml")
	require.NoError(t, os.WriteFile(alt, []byte("conventions:\n  equal: Same{kind}\n"), 0o644))
	code, _, stderr = execute(t, "--quiet", "--config", alt, "gen", "-o", "alt_gen.go")
	require.Equal(t, 0, code, stderr)
	content, err := os.ReadFile(filepath.Join(root, "alt_gen.go"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "return w.SameUint64(uint64(other))")
}

func TestVerboseListsFiles(t *testing.T) {
	root := moduleDir(t)

	code, stdout, stderr := execute(t, "--verbose", "gen")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "[VERBOSE]")
	assert.Contains(t, stdout, "- "+filepath.Join(root, "derive_gen.go"))
}

func TestCleanReportsBrokenPackages(t *testing.T) {
	root := moduleDir(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "mixed"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "mixed", "a.go"), []byte("package a\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "mixed", "b.go"), []byte("package b\n"), 0o644))

	code, _, stderr := execute(t, "./...")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "found packages a")
	require.FileExists(t, filepath.Join(root, "derive_gen.go"))

	code, stdout, _ := execute(t, "clean", "./...")
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "1 generated files removed")
	assert.NoFileExists(t, filepath.Join(root, "derive_gen.go"))
}

func TestGenReportsErrors(t *testing.T) {
	root := moduleDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "bad.go"), []byte("package word\n\n//derive::bitand\ntype Bad int\n"), 0o644))

	code, _, stderr := execute(t, "gen")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "[ERROR]")
	assert.Contains(t, stderr, "bad.go:3")
	assert.Contains(t, stderr, "hint: did you mean BitAnd?")
	assert.NoFileExists(t, filepath.Join(root, "derive_gen.go"))
}
