package scanner

import (
	"github.com/toyz/tether/internal/symbols"
)

// PackageInfo is everything one package contributes to a round
type PackageInfo struct {
	Name         string // Package clause name
	ImportPath   string
	Dir          string
	Files        []string // Scanned files, sorted
	Declarations []*symbols.Declaration
	Components   []*Component
}

// HasGenerated reports whether any declaration comes from a generated file
func (p *PackageInfo) HasGenerated() bool {
	for _, decl := range p.Declarations {
		if decl.Generated {
			return true
		}
	}
	return false
}

// Component is a //tether::component constructor: an explicit provider in the graph
type Component struct {
	Name         string // Constructor function name
	Package      string // Import path
	PackageName  string
	Provides     symbols.TypeRef // First result type
	Tags         symbols.TagSet  // Tags the provided value carries
	ReturnsError bool            // Second result is error
	Dependencies []Dependency    // One per constructor parameter, in order
	File         string
	Line         int
}

// QualifiedName returns the package-qualified constructor name
func (c *Component) QualifiedName() string {
	return c.Package + "." + c.Name
}

// Dependency is one constructor parameter and the binding it needs
type Dependency struct {
	Param   string
	Request symbols.BindingRequest
}
