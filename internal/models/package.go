package models

// Request is one entry point applied to an annotated type
type Request struct {
	Entry      string                 // entry point name, e.g. "Add"
	Parameters map[string]interface{} // directive parameters, e.g. {"ValueCopy": true}
	Location   Location               // directive position
}

// AnnotatedType is a type declaration together with the entry points its
// directives request, in directive order.
type AnnotatedType struct {
	Descriptor TypeDescriptor
	Requests   []Request
}

// PackageMetadata represents all annotated types found in a package
type PackageMetadata struct {
	PackageName string          // name of the Go package
	PackagePath string          // file system path to the package
	Types       []AnnotatedType // annotated types in source order
}

// HasTypes reports whether any annotated type was found
func (p *PackageMetadata) HasTypes() bool {
	return p != nil && len(p.Types) > 0
}
