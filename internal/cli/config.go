package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/toyz/numderive/internal/errors"
	"github.com/toyz/numderive/internal/models"
)

const (
	// DefaultConfigFile is looked up from the working directory upwards
	DefaultConfigFile = "numderive.yaml"
	// DefaultOutput is the name of the generated file in each package
	DefaultOutput = "derive_gen.go"
)

// Config holds the configuration for the CLI generator
type Config struct {
	// Patterns are go/packages patterns such as "." or "./..."
	Patterns []string `yaml:"-"`

	// Dir is the directory patterns are resolved from; empty means the
	// current directory
	Dir string `yaml:"-"`

	// Output is the file name written into every package with directives
	Output string `yaml:"output"`

	// Conventions name the hand-written capabilities generated code calls
	Conventions models.Conventions `yaml:"conventions"`

	// DryRun reports what would be written without touching the file system
	DryRun bool `yaml:"-"`
}

// DefaultConfig returns the configuration used when no file is present
func DefaultConfig() Config {
	return Config{
		Patterns:    []string{"."},
		Output:      DefaultOutput,
		Conventions: models.DefaultConventions(),
	}
}

// LoadConfigFile reads a numderive.yaml file. Keys it does not set keep
// their defaults.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.WrapFileSystemError("read", path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses numderive.yaml content. The path argument is used only
// for error messages.
func ParseConfig(data []byte, path string) (Config, error) {
	cfg := DefaultConfig()

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, errors.WrapConfigurationError(path, "parse", err).
			WithSuggestion("known keys are output and conventions.{assign,clone,constructor,equal}")
	}

	cfg.Conventions = cfg.Conventions.WithDefaults()
	if cfg.Output == "" {
		cfg.Output = DefaultOutput
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.WrapConfigurationError(path, "validate", err)
	}
	return cfg, nil
}

// FindConfigFile searches for numderive.yaml starting from dir and walking up
// to parent directories. It returns an empty path when there is none.
func FindConfigFile(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.WrapFileSystemError("resolve", dir, err)
	}

	for {
		candidate := filepath.Join(dir, DefaultConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Validate checks the output file name and the naming conventions
func (c Config) Validate() error {
	switch {
	case c.Output == "":
		return fmt.Errorf("output file name is empty")
	case filepath.Base(c.Output) != c.Output:
		return fmt.Errorf("output %q must be a file name, not a path", c.Output)
	case !strings.HasSuffix(c.Output, ".go"):
		return fmt.Errorf("output %q must end in .go", c.Output)
	case strings.HasSuffix(c.Output, "_test.go"):
		return fmt.Errorf("output %q must not be a test file", c.Output)
	}
	return c.Conventions.Validate()
}
