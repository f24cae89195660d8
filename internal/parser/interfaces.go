package parser

import "github.com/toyz/numderive/internal/models"

// DirectiveParser defines the interface for reading Go sources and extracting
// the types annotated with derive directives
type DirectiveParser interface {
	ParseDirectory(path string) (*models.PackageMetadata, error)
	ParseFiles(dir string, files []string) (*models.PackageMetadata, error)
	ParseSource(filename, source string) (*models.PackageMetadata, error)
}
