// Package client resolves dependencies on //tether::client interfaces to the
// implementation the client generator produces for them, or to the aspect
// proxy wrapping that implementation.
package client

import (
	"github.com/toyz/tether/internal/annotations"
	"github.com/toyz/tether/internal/errors"
	"github.com/toyz/tether/internal/extension"
	"github.com/toyz/tether/internal/naming"
	"github.com/toyz/tether/internal/symbols"
)

// Name is the registry name of the client extension
const Name = "client"

// Extension binds client interfaces to generated declarations. It holds no
// state; every answer is a function of the table and the request.
type Extension struct{}

// New creates the client extension
func New() *Extension {
	return &Extension{}
}

// DependencyGenerator implements extension.Extension
func (e *Extension) DependencyGenerator(table symbols.Table, typ symbols.TypeRef, tags symbols.TagSet) (extension.Generator, bool) {
	if !tags.Empty() {
		return nil, false
	}
	decl, ok := table.Lookup(typ.QualifiedName())
	if !ok || decl.Kind != symbols.KindInterface {
		return nil, false
	}
	if !decl.HasAnnotation(annotations.ClientAnnotation) {
		return nil, false
	}

	return func() (extension.Result, error) {
		return resolve(table, decl)
	}, true
}

func resolve(table symbols.Table, decl *symbols.Declaration) (extension.Result, error) {
	generated, ok := table.Lookup(naming.Qualified(decl.Package, naming.ClientName(decl)))
	if !ok {
		return extension.RequiresCompiling, nil
	}
	if !generated.HasAspects() {
		return firstConstructor(generated)
	}

	proxy, ok := table.Lookup(naming.Qualified(generated.Package, naming.AopProxyName(generated)))
	if !ok {
		return extension.RequiresCompiling, nil
	}
	return firstConstructor(proxy)
}

func firstConstructor(decl *symbols.Declaration) (extension.Result, error) {
	ctor, ok := decl.FirstConstructor()
	if !ok {
		return nil, errors.NewContractError(decl.QualifiedName(), "it has no constructors")
	}
	return extension.FromConstructor(ctor, decl), nil
}
