package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/semver"
)

// genericsVersion is the first language version with type parameters
const genericsVersion = "v1.18"

// ModuleInfo is what numderive needs to know about the enclosing module
type ModuleInfo struct {
	Path      string // module path
	GoVersion string // go directive, empty when absent
	GoModPath string // location of go.mod
}

// SupportsGenerics reports whether the module's go directive allows type
// parameters. A missing directive is treated as unknown and allowed.
func (m ModuleInfo) SupportsGenerics() bool {
	return SupportsGenerics(m.GoVersion)
}

// SupportsGenerics reports whether a go directive version such as "1.21" or
// "1.22.3" is at least 1.18
func SupportsGenerics(goVersion string) bool {
	if goVersion == "" {
		return true
	}
	v := "v" + goVersion
	if !semver.IsValid(v) {
		return true
	}
	return semver.Compare(v, genericsVersion) >= 0
}

// GoModParser reads go.mod files, caching each by path
type GoModParser struct {
	cache *FileCache[*modfile.File]
}

// NewGoModParser creates a new go.mod parser with caching
func NewGoModParser() *GoModParser {
	return &GoModParser{cache: NewFileCache[*modfile.File]()}
}

// Parse reads and parses the go.mod file at goModPath
func (p *GoModParser) Parse(goModPath string) (ModuleInfo, error) {
	clean := filepath.Clean(goModPath)
	if filepath.Base(clean) != "go.mod" {
		return ModuleInfo{}, fmt.Errorf("file is not a go.mod file: %s", goModPath)
	}

	modFile, err := p.cache.Load(clean, func(data []byte) (*modfile.File, error) {
		return modfile.ParseLax(clean, data, nil)
	})
	if err != nil {
		return ModuleInfo{}, fmt.Errorf("failed to parse go.mod file: %w", err)
	}
	if modFile.Module == nil {
		return ModuleInfo{}, fmt.Errorf("no module declaration found in %s", clean)
	}

	info := ModuleInfo{Path: modFile.Module.Mod.Path, GoModPath: clean}
	if modFile.Go != nil {
		info.GoVersion = modFile.Go.Version
	}
	return info, nil
}

// FindGoModFile searches for go.mod file starting from the given directory and walking up
func (p *GoModParser) FindGoModFile(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		candidate := filepath.Join(dir, "go.mod")
		if stat, err := os.Stat(candidate); err == nil && !stat.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("go.mod file not found above %s", startDir)
}

// ModuleFor locates and parses the go.mod governing dir
func (p *GoModParser) ModuleFor(dir string) (ModuleInfo, error) {
	path, err := p.FindGoModFile(dir)
	if err != nil {
		return ModuleInfo{}, err
	}
	return p.Parse(path)
}
