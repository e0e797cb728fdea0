package tether

import (
	"fmt"
	"reflect"
)

// Provider is one constructor of a module
type Provider struct {
	Name        string
	Constructor any
	Tags        []string
}

// Provide declares a constructor. It panics when constructor is not a function,
// which only happens with hand-edited generated code.
func Provide(name string, constructor any, tags ...string) Provider {
	if t := reflect.TypeOf(constructor); t == nil || t.Kind() != reflect.Func {
		panic(fmt.Sprintf("tether: provider %s is %T, not a function", name, constructor))
	}
	return Provider{Name: name, Constructor: constructor, Tags: tags}
}

// Module lists the constructors one package contributes to the application graph
type Module struct {
	Name      string
	Providers []Provider
}

// NewModule creates a module
func NewModule(name string, providers ...Provider) Module {
	return Module{Name: name, Providers: providers}
}

// Provider returns the provider with the given constructor name
func (m Module) Provider(name string) (Provider, bool) {
	for _, p := range m.Providers {
		if p.Name == name {
			return p, true
		}
	}
	return Provider{}, false
}

// Names returns the constructor names in declaration order
func (m Module) Names() []string {
	names := make([]string, len(m.Providers))
	for i, p := range m.Providers {
		names[i] = p.Name
	}
	return names
}
