package generator

import (
	"path/filepath"

	"github.com/toyz/tether/internal/annotations"
	"github.com/toyz/tether/internal/errors"
	"github.com/toyz/tether/internal/naming"
	"github.com/toyz/tether/internal/scanner"
	"github.com/toyz/tether/internal/symbols"
	"github.com/toyz/tether/internal/templates"
)

// ClientProducer implements //tether::client interfaces. Each implementation
// holds a tether.Transport and turns every method into one remote call named
// <service>.<Method>.
type ClientProducer struct {
	templates *templates.TemplateRegistry
}

// NewClientProducer creates a client producer
func NewClientProducer(registry *templates.TemplateRegistry) *ClientProducer {
	return &ClientProducer{templates: registry}
}

// Name returns the producer name
func (p *ClientProducer) Name() string { return "client" }

// Produce renders an implementation for every client interface. Generated
// implementations are rendered again each round so they follow the interface;
// a hand-written implementation is left alone.
func (p *ClientProducer) Produce(table symbols.Table, pkgs []*scanner.PackageInfo) ([]GeneratedFile, error) {
	var files []GeneratedFile
	errs := errors.NewMultipleErrors()

	for _, pkg := range pkgs {
		for _, decl := range pkg.Declarations {
			if decl.Kind != symbols.KindInterface || !decl.HasAnnotation(annotations.ClientAnnotation) {
				continue
			}
			name := naming.ClientName(decl)
			if existing, exists := table.Lookup(naming.Qualified(decl.Package, name)); exists && !existing.Generated {
				continue
			}

			data, ok := p.clientData(pkg, decl, errs)
			if !ok {
				continue
			}
			path := filepath.Join(pkg.Dir, naming.FileName(name, ""))
			content, err := render(p.templates, "client", path, data)
			if err != nil {
				errs.AddError(err)
				continue
			}
			files = append(files, GeneratedFile{Path: path, Package: pkg.ImportPath, Declaration: name, Content: content})
		}
	}

	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}
	return files, nil
}

func (p *ClientProducer) clientData(pkg *scanner.PackageInfo, decl *symbols.Declaration, errs *errors.MultipleErrors) (templates.ClientData, bool) {
	name := naming.ClientName(decl)
	service := serviceName(decl)

	im := templates.NewImportManager()
	im.Use(RuntimeImport, "tether")

	data := templates.ClientData{
		Name:        name,
		Interface:   decl.Name,
		Constructor: naming.ConstructorName(name),
		Service:     service,
		Aspects:     aspectLines(decl.Annotations),
	}

	ok := true
	for i := range decl.Methods {
		method := &decl.Methods[i]
		if !method.ReturnsError() {
			errs.Add(errors.Newf(errors.ValidationErrorCode,
				"client method %s.%s must return error as its last result", decl.Name, method.Name).
				WithLocation(errors.SourceLocation{File: decl.File, Line: decl.Line}).
				WithSuggestion("Remote calls can fail; add an error result so the transport failure can be returned"))
			ok = false
			continue
		}

		sig := newSignature(method.Params)
		if sig.ctx == "" {
			im.Use("context", "context")
		}
		res := newResults(method.Results)
		data.Methods = append(data.Methods, templates.ClientMethodData{
			Name:      method.Name,
			Aspects:   aspectLines(method.Annotations),
			Params:    joinList(sig.params),
			Results:   res.list,
			Vars:      res.vars,
			Context:   sig.contextExpr(),
			Operation: service + "." + method.Name,
			Args:      anySlice(sig.payload),
			Refs:      anySlice(res.refs),
			Returns:   joinList(res.values),
		})
	}

	for _, imp := range decl.Imports {
		im.AddImport(templates.ImportData{Name: imp.Name, Path: imp.Path})
	}
	data.FileData = templates.FileData{
		Header:  GeneratedHeader,
		Package: pkg.Name,
		Imports: im.Imports(),
	}
	return data, ok
}

// serviceName is the -Name of a client interface, defaulting to its type name
func serviceName(decl *symbols.Declaration) string {
	return decl.Annotation(annotations.ClientAnnotation).GetString("Name", decl.Name)
}

// clientImplementations maps the qualified implementation name of every
// client interface in pkg to that interface
func clientImplementations(pkg *scanner.PackageInfo) map[string]*symbols.Declaration {
	out := make(map[string]*symbols.Declaration)
	for _, decl := range pkg.Declarations {
		if decl.Kind == symbols.KindInterface && decl.HasAnnotation(annotations.ClientAnnotation) {
			out[naming.Qualified(decl.Package, naming.ClientName(decl))] = decl
		}
	}
	return out
}
