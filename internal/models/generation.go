package models

// GeneratedFile represents a generated derive file for one package
type GeneratedFile struct {
	PackageName  string        // name of the package
	FilePath     string        // path where the file should be written
	Content      []byte        // formatted Go source
	Declarations []Declaration // declarations the file holds, in file order
}

// TypeNames returns the distinct annotated type names in file order
func (f *GeneratedFile) TypeNames() []string {
	var names []string
	seen := make(map[string]bool)
	for _, decl := range f.Declarations {
		if !seen[decl.TypeName] {
			seen[decl.TypeName] = true
			names = append(names, decl.TypeName)
		}
	}
	return names
}
