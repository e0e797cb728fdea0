// Package graph binds every component dependency for one generation round.
//
// Explicit //tether::component providers are tried first. Whatever they cannot
// satisfy goes to the extension registry; a dependency an extension cannot
// bind yet is recorded as deferred so the host can run another round.
package graph

import (
	"sort"

	"github.com/toyz/tether/internal/errors"
	"github.com/toyz/tether/internal/extension"
	"github.com/toyz/tether/internal/scanner"
	"github.com/toyz/tether/internal/symbols"
)

// Source tells where a binding came from
type Source int

const (
	SourceComponent Source = iota
	SourceExtension
)

func (s Source) String() string {
	switch s {
	case SourceComponent:
		return "component"
	case SourceExtension:
		return "extension"
	default:
		return "unknown"
	}
}

// Binding satisfies one dependency of one component
type Binding struct {
	Consumer   *scanner.Component
	Dependency scanner.Dependency
	Source     Source
	Provider   *scanner.Component         // set for SourceComponent
	Extension  string                     // set for SourceExtension
	Result     *extension.GeneratedResult // set for SourceExtension
}

// Constructor returns the package and name of the constructor providing the value
func (b Binding) Constructor() (pkg, name string) {
	if b.Source == SourceComponent {
		return b.Provider.Package, b.Provider.Name
	}
	return b.Result.Declaration.Package, b.Result.Constructor.Name
}

// Deferred is a dependency an extension will only be able to bind after
// another round of generation
type Deferred struct {
	Consumer   *scanner.Component
	Dependency scanner.Dependency
	Extension  string
}

func (d Deferred) String() string {
	return d.Dependency.Request.String() + " (" + d.Extension + ", needed by " + d.Consumer.QualifiedName() + ")"
}

// Graph is the outcome of one round of resolution
type Graph struct {
	Round    int
	Bindings []Binding
	Deferred []Deferred
}

// Converged reports whether every dependency is bound
func (g *Graph) Converged() bool {
	return len(g.Deferred) == 0
}

// Pending describes the deferred requests, sorted
func (g *Graph) Pending() []string {
	out := make([]string, 0, len(g.Deferred))
	for _, d := range g.Deferred {
		out = append(out, d.String())
	}
	sort.Strings(out)
	return out
}

// ExtensionBindings returns the extension-provided bindings consumed by components of a package
func (g *Graph) ExtensionBindings(importPath string) []Binding {
	var out []Binding
	for _, b := range g.Bindings {
		if b.Source == SourceExtension && b.Consumer.Package == importPath {
			out = append(out, b)
		}
	}
	return out
}

// Resolve binds every dependency of every component against explicit
// providers, then against the extension registry. Missing and ambiguous
// dependencies are collected; a contract fault aborts immediately.
func Resolve(table symbols.Snapshot, components []*scanner.Component, extensions *extension.Registry) (*Graph, error) {
	g := &Graph{Round: table.Round()}
	errs := errors.NewMultipleErrors()

	for _, consumer := range components {
		for _, dep := range consumer.Dependencies {
			providers := explicitProviders(components, dep.Request)
			switch {
			case len(providers) == 1:
				g.Bindings = append(g.Bindings, Binding{
					Consumer:   consumer,
					Dependency: dep,
					Source:     SourceComponent,
					Provider:   providers[0],
				})
				continue
			case len(providers) > 1:
				names := make([]string, 0, len(providers))
				for _, p := range providers {
					names = append(names, p.QualifiedName())
				}
				errs.Add(errors.NewAmbiguousDependencyError(consumer.QualifiedName(),
					dep.Request.Type.String(), dep.Request.Tags.Values(), names))
				continue
			}

			name, gen, ok := extensions.Find(table, dep.Request.Type, dep.Request.Tags)
			if !ok {
				errs.Add(errors.NewMissingDependencyError(consumer.QualifiedName(),
					dep.Request.Type.String(), dep.Request.Tags.Values()))
				continue
			}

			result, err := gen()
			if err != nil {
				return nil, err
			}
			if extension.IsRequiresCompiling(result) {
				g.Deferred = append(g.Deferred, Deferred{Consumer: consumer, Dependency: dep, Extension: name})
				continue
			}
			generated, ok := result.(*extension.GeneratedResult)
			if !ok {
				return nil, errors.Newf(errors.ContractErrorCode, "extension %s returned unsupported result %T for %s", name, result, dep.Request)
			}
			g.Bindings = append(g.Bindings, Binding{
				Consumer:   consumer,
				Dependency: dep,
				Source:     SourceExtension,
				Extension:  name,
				Result:     generated,
			})
		}
	}

	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}
	return g, nil
}

func explicitProviders(components []*scanner.Component, request symbols.BindingRequest) []*scanner.Component {
	var out []*scanner.Component
	for _, c := range components {
		if c.Provides.QualifiedName() == request.Type.QualifiedName() &&
			c.Provides.Pointer == request.Type.Pointer &&
			c.Tags.Equal(request.Tags) {
			out = append(out, c)
		}
	}
	return out
}
