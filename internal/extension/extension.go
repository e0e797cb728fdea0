// Package extension defines the contract the resolution engine uses to ask
// pluggable resolvers for bindings it cannot satisfy from explicit components.
//
// An extension answers in two steps. DependencyGenerator decides cheaply,
// without side effects, whether the extension applies to a request at all.
// When it does, the returned Generator is invoked later and yields either a
// constructor reference or RequiresCompiling, which asks the host to run
// another generation round and ask again.
package extension

import (
	"github.com/toyz/tether/internal/symbols"
)

// Extension resolves binding requests the explicit component graph cannot
type Extension interface {
	// DependencyGenerator returns (nil, false) when the extension does not
	// apply to the request. It must not write files or mutate the table.
	DependencyGenerator(table symbols.Table, typ symbols.TypeRef, tags symbols.TagSet) (Generator, bool)
}

// Func adapts a plain function to the Extension interface
type Func func(table symbols.Table, typ symbols.TypeRef, tags symbols.TagSet) (Generator, bool)

// DependencyGenerator calls f
func (f Func) DependencyGenerator(table symbols.Table, typ symbols.TypeRef, tags symbols.TagSet) (Generator, bool) {
	return f(table, typ, tags)
}

// Generator is the deferred half of an applicable extension. A non-nil error
// is a contract fault and aborts generation.
type Generator func() (Result, error)

// Result is what a Generator produces: a *GeneratedResult or RequiresCompiling
type Result interface {
	isResult()
}

// GeneratedResult binds a request to a constructor of a declaration
type GeneratedResult struct {
	Constructor symbols.Constructor
	Declaration *symbols.Declaration
}

func (*GeneratedResult) isResult() {}

// ConstructorRef returns the package-qualified constructor name
func (r *GeneratedResult) ConstructorRef() string {
	return r.Declaration.Package + "." + r.Constructor.Name
}

type requiresCompiling struct{}

func (requiresCompiling) isResult() {}

func (requiresCompiling) String() string { return "requires compiling" }

// RequiresCompiling signals that the declaration the extension needs has not
// been generated yet. The host schedules another round and asks again.
var RequiresCompiling Result = requiresCompiling{}

// IsRequiresCompiling reports whether r is the RequiresCompiling sentinel
func IsRequiresCompiling(r Result) bool {
	_, ok := r.(requiresCompiling)
	return ok
}

// FromConstructor builds the result binding ctor of decl
func FromConstructor(ctor symbols.Constructor, decl *symbols.Declaration) *GeneratedResult {
	return &GeneratedResult{Constructor: ctor, Declaration: decl}
}
