// Package generator renders the Go sources a round adds to the workspace: client
// implementations, aspect proxies and per-package modules.
//
// Producers only ever generate declarations that are absent from the round's
// snapshot, so running them again over their own output produces nothing.
package generator

import (
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/tools/imports"

	"github.com/toyz/tether/internal/annotations"
	"github.com/toyz/tether/internal/errors"
	"github.com/toyz/tether/internal/scanner"
	"github.com/toyz/tether/internal/symbols"
	"github.com/toyz/tether/internal/templates"
)

// GeneratedHeader marks files written by tether. ast.IsGenerated recognizes it
// and the cleaner only removes files starting with it.
const GeneratedHeader = "// Code generated by tether. DO NOT EDIT."

// RuntimeImport is the import path of the runtime package generated code uses
const RuntimeImport = "github.com/toyz/tether/pkg/tether"

// GeneratedFile is one rendered source file
type GeneratedFile struct {
	Path        string // Destination, inside the package directory
	Package     string // Import path of the owning package
	Declaration string // Generated type name, empty for modules
	Content     []byte
}

// Producer generates sources for declarations a snapshot is still missing
type Producer interface {
	Name() string
	Produce(table symbols.Table, pkgs []*scanner.PackageInfo) ([]GeneratedFile, error)
}

// DefaultProducers returns the producers every generation run uses, in order
func DefaultProducers(registry *templates.TemplateRegistry) []Producer {
	return []Producer{
		NewClientProducer(registry),
		NewAopProxyProducer(registry),
	}
}

// render executes a template and formats the result, removing copied imports
// the file ended up not using
func render(registry *templates.TemplateRegistry, templateName, path string, data interface{}) ([]byte, error) {
	src, err := registry.Render(templateName, data)
	if err != nil {
		return nil, errors.WrapTemplateError(templateName, "execute", err)
	}
	formatted, err := imports.Process(path, []byte(src), &imports.Options{
		Comments:  true,
		TabIndent: true,
		TabWidth:  8,
	})
	if err != nil {
		return nil, errors.WrapGenerateError(filepath.Base(path), err).
			WithContext("source", src)
	}
	return formatted, nil
}

// signature is a method or constructor signature rewritten with generated
// parameter names: ctx for the context parameter, argN for the others
type signature struct {
	params  []string // name type
	call    []string // arguments forwarding every parameter
	payload []string // parameters other than the context
	ctx     string   // name of the context parameter, empty without one
}

func newSignature(params []symbols.Field) signature {
	var sig signature
	for i, param := range params {
		name := fmt.Sprintf("arg%d", i)
		if sig.ctx == "" && isContext(param.Type) {
			name = "ctx"
			sig.ctx = name
		}
		sig.params = append(sig.params, name+" "+param.Type.Expr)
		if strings.HasPrefix(param.Type.Expr, "...") {
			sig.call = append(sig.call, name+"...")
		} else {
			sig.call = append(sig.call, name)
		}
		if name != sig.ctx {
			sig.payload = append(sig.payload, name)
		}
	}
	return sig
}

// contextExpr is the context a generated body passes on
func (s signature) contextExpr() string {
	if s.ctx == "" {
		return "context.Background()"
	}
	return s.ctx
}

func isContext(t symbols.TypeRef) bool {
	return t.Package == "context" && t.Name == "Context" && !t.Pointer
}

// results splits a method's results into the values preceding the trailing error
type results struct {
	list   string // result list as written in a signature
	vars   []templates.VarData
	refs   []string
	values []string
}

func newResults(fields []symbols.Field) results {
	var r results
	types := make([]string, len(fields))
	for i, field := range fields {
		types[i] = field.Type.Expr
		if i == len(fields)-1 {
			break
		}
		name := fmt.Sprintf("r%d", i)
		r.vars = append(r.vars, templates.VarData{Name: name, Type: field.Type.Expr})
		r.refs = append(r.refs, "&"+name)
		r.values = append(r.values, name)
	}
	if len(types) == 1 {
		r.list = types[0]
	} else {
		r.list = "(" + strings.Join(types, ", ") + ")"
	}
	return r
}

// anySlice renders a []any literal, or nil when empty
func anySlice(items []string) string {
	if len(items) == 0 {
		return "nil"
	}
	return "[]any{" + strings.Join(items, ", ") + "}"
}

// aspectLines returns the aspect annotations of list as written in source
func aspectLines(list []*annotations.ParsedAnnotation) []string {
	var out []string
	for _, annotation := range list {
		if annotation.Type.IsAspect() {
			out = append(out, annotation.Raw)
		}
	}
	return out
}

func joinList(items []string) string {
	return strings.Join(items, ", ")
}
