package cli

import (
	"os"
	"path/filepath"

	"github.com/toyz/numderive/internal/errors"
	"github.com/toyz/numderive/internal/templates"
	"github.com/toyz/numderive/internal/utils"
)

// Cleaner handles cleaning up generated files
type Cleaner struct {
	diagnostics *utils.DiagnosticSystem
}

// NewCleaner creates a new cleaner
func NewCleaner(diagnostics *utils.DiagnosticSystem) *Cleaner {
	return &Cleaner{diagnostics: diagnostics}
}

// CleanGeneratedFiles removes the generated file of every package matched by
// cfg.Patterns. Files of that name without the numderive header are kept.
// Packages that fail to load or clean do not stop the others; their errors
// are returned with the files that were removed.
func (c *Cleaner) CleanGeneratedFiles(cfg Config) ([]string, error) {
	errs := errors.NewMultipleErrors()
	pkgs, err := NewPackageScanner(cfg.Dir).Scan(cfg.Patterns)
	if err != nil {
		addAll(errs, "scan", err)
	}

	var removed []string
	for _, pkg := range pkgs {
		path := filepath.Join(pkg.Dir, cfg.Output)
		ok, err := c.cleanFile(path, cfg.DryRun)
		if err != nil {
			addAll(errs, pkg.PkgPath, err)
			continue
		}
		if ok {
			removed = append(removed, path)
		}
	}
	return removed, errs.ErrOrNil()
}

// cleanFile removes path when numderive wrote it
func (c *Cleaner) cleanFile(path string, dryRun bool) (bool, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.WrapFileSystemError("read", path, err)
	}

	if !templates.IsGenerated(content) {
		c.diagnostics.Warn("keeping %s: not generated by numderive", path)
		return false, nil
	}

	if dryRun {
		c.diagnostics.PhaseProgress("would remove " + path)
		return true, nil
	}
	if err := os.Remove(path); err != nil {
		return false, errors.WrapFileSystemError("remove", path, err)
	}
	c.diagnostics.PhaseProgress("removed " + path)
	return true, nil
}
