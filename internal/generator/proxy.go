package generator

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/toyz/tether/internal/annotations"
	"github.com/toyz/tether/internal/errors"
	"github.com/toyz/tether/internal/naming"
	"github.com/toyz/tether/internal/scanner"
	"github.com/toyz/tether/internal/symbols"
	"github.com/toyz/tether/internal/templates"
)

// AopProxyProducer wraps client implementations carrying aspect annotations in
// a proxy whose error-returning methods run through a tether.Chain of
// interceptors. Methods without an error result are promoted from the
// embedded target unchanged.
type AopProxyProducer struct {
	templates *templates.TemplateRegistry
}

// NewAopProxyProducer creates an aspect proxy producer
func NewAopProxyProducer(registry *templates.TemplateRegistry) *AopProxyProducer {
	return &AopProxyProducer{templates: registry}
}

// Name returns the producer name
func (p *AopProxyProducer) Name() string { return "aop-proxy" }

// Produce renders a proxy for every client implementation with aspects.
// Generated proxies are rendered again each round; a hand-written proxy is
// left alone. Implementations without constructors are skipped since the proxy
// has nothing to build its target with. Aspects on any other struct are an
// error: nothing would ever bind the proxy.
func (p *AopProxyProducer) Produce(table symbols.Table, pkgs []*scanner.PackageInfo) ([]GeneratedFile, error) {
	var files []GeneratedFile
	errs := errors.NewMultipleErrors()

	for _, pkg := range pkgs {
		clients := clientImplementations(pkg)
		for _, decl := range pkg.Declarations {
			if decl.Kind != symbols.KindStruct || strings.HasSuffix(decl.Name, naming.AopProxySuffix) || !decl.HasAspects() {
				continue
			}
			iface, ok := clients[decl.QualifiedName()]
			if !ok {
				errs.Add(errors.Newf(errors.ValidationErrorCode,
					"aspect annotations on %s have no effect: only client implementations are proxied", decl.Name).
					WithLocation(errors.SourceLocation{File: decl.File, Line: decl.Line}).
					WithSuggestion("Move the aspect annotations to the //tether::client interface this struct is called through"))
				continue
			}
			name := naming.AopProxyName(decl)
			if existing, exists := table.Lookup(naming.Qualified(decl.Package, name)); exists && !existing.Generated {
				continue
			}
			ctor, ok := decl.FirstConstructor()
			if !ok {
				continue
			}

			data, invalid := p.proxyData(pkg, iface, decl, ctor)
			if invalid != nil {
				errs.Add(invalid)
				continue
			}
			path := filepath.Join(pkg.Dir, naming.FileName(decl.Name, "aop_proxy"))
			content, err := render(p.templates, "aop-proxy", path, data)
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

func (p *AopProxyProducer) proxyData(pkg *scanner.PackageInfo, iface, decl *symbols.Declaration, ctor symbols.Constructor) (templates.ProxyData, *errors.BaseError) {
	name := naming.AopProxyName(decl)
	service := serviceName(iface)
	sig := newSignature(ctor.Params)
	if n := len(ctor.Params); n > 0 && strings.HasPrefix(ctor.Params[n-1].Type.Expr, "...") {
		return templates.ProxyData{}, errors.Newf(errors.GenerationErrorCode,
			"cannot generate %s: constructor %s is variadic", name, ctor.Name).
			WithLocation(errors.SourceLocation{File: decl.File, Line: ctor.Line}).
			WithSuggestion("Declare a non-variadic constructor first; the proxy constructor takes the interceptors as its variadic parameter")
	}

	im := templates.NewImportManager()
	im.Use(RuntimeImport, "tether")
	im.Use("context", "context")
	for _, imp := range decl.Imports {
		im.AddImport(templates.ImportData{Name: imp.Name, Path: imp.Path})
	}

	data := templates.ProxyData{
		FileData: templates.FileData{
			Header:  GeneratedHeader,
			Package: pkg.Name,
			Imports: im.Imports(),
		},
		Name:              name,
		Interface:         iface.Name,
		Service:           service,
		Target:            decl.Name,
		Embed:             decl.Name,
		Constructor:       naming.ConstructorName(name),
		TargetConstructor: ctor.Name,
		Params:            joinList(append(sig.params, "interceptors ...tether.Interceptor")),
		Args:              joinList(sig.call),
		Returns:           "*" + name,
		ReturnsError:      ctor.ReturnsError,
	}
	if ctor.Pointer {
		data.Embed = "*" + decl.Name
	}
	if ctor.ReturnsError {
		data.Returns = "(*" + name + ", error)"
	}

	shared := aspectData(decl.Annotations)
	for i := range decl.Methods {
		method := &decl.Methods[i]
		if !method.ReturnsError() {
			continue
		}
		msig := newSignature(method.Params)
		res := newResults(method.Results)

		assign := "callErr"
		if len(res.values) > 0 {
			assign = joinList(res.values) + ", callErr"
		}
		contextParam := "_"
		if msig.ctx != "" {
			contextParam = msig.ctx
		}

		data.Methods = append(data.Methods, templates.ProxyMethodData{
			Name:         method.Name,
			Params:       joinList(msig.params),
			Results:      res.list,
			Operation:    service + "." + method.Name,
			Args:         anySlice(msig.payload),
			Aspects:      append(append([]templates.AspectData(nil), shared...), aspectData(method.Annotations)...),
			Vars:         res.vars,
			Context:      msig.contextExpr(),
			ContextParam: contextParam,
			Assign:       assign,
			Call:         joinList(msig.call),
			Returns:      joinList(res.values),
		})
	}
	return data, nil
}

// aspectData lists the aspect annotations of list with their parameters
// rendered as map[string]string literal entries, sorted by key
func aspectData(list []*annotations.ParsedAnnotation) []templates.AspectData {
	var out []templates.AspectData
	for _, annotation := range list {
		if !annotation.Type.IsAspect() {
			continue
		}
		keys := make([]string, 0, len(annotation.Parameters))
		for key := range annotation.Parameters {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		entries := make([]string, 0, len(keys))
		for _, key := range keys {
			entries = append(entries, strconv.Quote(key)+": "+strconv.Quote(paramValue(annotation.Parameters[key])))
		}
		out = append(out, templates.AspectData{Kind: annotation.Type.String(), Params: joinList(entries)})
	}
	return out
}

func paramValue(v interface{}) string {
	switch value := v.(type) {
	case string:
		return value
	case []string:
		return strings.Join(value, ",")
	case time.Duration:
		return value.String()
	default:
		return fmt.Sprint(value)
	}
}
