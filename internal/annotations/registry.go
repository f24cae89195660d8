package annotations

import (
	"fmt"
	"sort"
	"sync"

	"github.com/toyz/numderive/internal/models"
)

// SchemaRegistry defines the interface for managing directive schemas
type SchemaRegistry interface {
	// Register a schema for its family
	Register(schema Schema) error

	// GetSchema retrieves the schema for a family
	GetSchema(family models.Family) (Schema, error)

	// ListFamilies returns all registered families in ascending order
	ListFamilies() []models.Family

	// IsRegistered checks if a family has a schema
	IsRegistered(family models.Family) bool
}

// registry is the concrete implementation of SchemaRegistry
type registry struct {
	mu      sync.RWMutex
	schemas map[models.Family]Schema
}

// NewRegistry creates a new, empty schema registry
func NewRegistry() SchemaRegistry {
	return &registry{
		schemas: make(map[models.Family]Schema),
	}
}

var (
	defaultRegistry     SchemaRegistry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the shared registry holding the builtin schemas
func DefaultRegistry() SchemaRegistry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
		if err := RegisterBuiltinSchemas(defaultRegistry); err != nil {
			panic(fmt.Sprintf("annotations: builtin schemas: %v", err))
		}
	})
	return defaultRegistry
}

// Register adds a schema to the registry
func (r *registry) Register(schema Schema) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if schema.Family == 0 {
		return fmt.Errorf("schema has no family")
	}
	if _, exists := r.schemas[schema.Family]; exists {
		return fmt.Errorf("family %s is already registered", schema.Family)
	}
	if err := r.validateSchema(schema); err != nil {
		return fmt.Errorf("invalid schema for %s: %w", schema.Family, err)
	}

	r.schemas[schema.Family] = schema
	return nil
}

// GetSchema retrieves the schema for a family
func (r *registry) GetSchema(family models.Family) (Schema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schema, exists := r.schemas[family]
	if !exists {
		return Schema{}, fmt.Errorf("family %s is not registered", family)
	}
	return schema, nil
}

// ListFamilies returns all registered families
func (r *registry) ListFamilies() []models.Family {
	r.mu.RLock()
	defer r.mu.RUnlock()

	families := make([]models.Family, 0, len(r.schemas))
	for family := range r.schemas {
		families = append(families, family)
	}
	sort.Slice(families, func(i, j int) bool { return families[i] < families[j] })
	return families
}

// IsRegistered checks if a family has a schema
func (r *registry) IsRegistered(family models.Family) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.schemas[family]
	return exists
}

func (r *registry) validateSchema(schema Schema) error {
	for paramName, paramSpec := range schema.Parameters {
		if paramName == "" {
			return fmt.Errorf("parameter name cannot be empty")
		}
		if paramSpec.Type < StringType || paramSpec.Type > BoolType {
			return fmt.Errorf("invalid parameter type for %s: %d", paramName, paramSpec.Type)
		}
	}
	return nil
}
