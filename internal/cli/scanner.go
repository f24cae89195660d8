package cli

import (
	"fmt"
	"path/filepath"
	"sort"

	"golang.org/x/tools/go/packages"

	"github.com/toyz/numderive/internal/errors"
)

// Package is one Go package matched by the patterns
type Package struct {
	Name    string   // package name
	PkgPath string   // import path
	Dir     string   // directory holding the package files
	GoFiles []string // absolute paths of the non-test Go files
}

// PackageScanner resolves go command patterns into package directories
type PackageScanner struct {
	dir string
}

// NewPackageScanner creates a scanner resolving patterns relative to dir.
// An empty dir means the current directory.
func NewPackageScanner(dir string) *PackageScanner {
	return &PackageScanner{dir: dir}
}

// Scan resolves patterns with go command semantics, so "./..." matches the
// directory and everything below it. Packages without Go files are skipped.
// Packages that fail to load are left out and their errors are returned
// together with the packages that loaded.
func (s *PackageScanner) Scan(patterns []string) ([]Package, error) {
	if len(patterns) == 0 {
		patterns = []string{"."}
	}

	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles,
		Dir:  s.dir,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, errors.WrapWithOperation("load", fmt.Sprintf("packages %v", patterns), err).
			WithSuggestion("run numderive from inside a Go module")
	}

	errs := errors.NewMultipleErrors()
	var result []Package
	for _, pkg := range pkgs {
		for _, pkgErr := range pkg.Errors {
			errs.Add(errors.Newf(errors.FileSystemErrorCode, "cannot load package %s", pkg.PkgPath).
				WithCause(pkgErr).
				WithContext("package", pkg.PkgPath))
		}
		if len(pkg.Errors) > 0 || len(pkg.GoFiles) == 0 {
			continue
		}
		result = append(result, Package{
			Name:    pkg.Name,
			PkgPath: pkg.PkgPath,
			Dir:     filepath.Dir(pkg.GoFiles[0]),
			GoFiles: pkg.GoFiles,
		})
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Dir < result[j].Dir })
	return result, errs.ErrOrNil()
}
