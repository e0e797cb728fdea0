package templates

import (
	"bytes"
	"fmt"
	"strconv"
	"text/template"
)

// fileTemplate opens every generated file: header, package clause and imports
const fileTemplate = `{{.Header}}

package {{.Package}}
{{if .Imports}}
import (
{{range .Imports}}	{{if .Name}}{{.Name}} {{end}}{{quote .Path}}
{{end}})
{{end}}
`

// TemplateRegistry provides a centralized way to access all templates
type TemplateRegistry struct {
	templates map[string]string
}

// NewTemplateRegistry creates a new template registry with all templates
func NewTemplateRegistry() *TemplateRegistry {
	registry := &TemplateRegistry{
		templates: make(map[string]string),
	}

	registry.registerClientTemplates()
	registry.registerProxyTemplates()
	registry.registerModuleTemplates()

	return registry
}

// Get retrieves a template by name
func (tr *TemplateRegistry) Get(name string) (string, bool) {
	template, exists := tr.templates[name]
	return template, exists
}

// MustGet retrieves a template by name, panics if not found
func (tr *TemplateRegistry) MustGet(name string) string {
	template, exists := tr.templates[name]
	if !exists {
		panic("template not found: " + name)
	}
	return template
}

// Render executes the named template with data
func (tr *TemplateRegistry) Render(name string, data interface{}) (string, error) {
	templateStr, exists := tr.Get(name)
	if !exists {
		return "", fmt.Errorf("template not found: %s", name)
	}
	return executeTemplate(name, templateStr, data)
}

// registerClientTemplates registers the generated client implementation
func (tr *TemplateRegistry) registerClientTemplates() {
	tr.templates["client"] = fileTemplate + `// {{.Name}} implements {{.Interface}} by sending every call through a tether.Transport.
{{range .Aspects}}{{.}}
{{end}}type {{.Name}} struct {
	transport tether.Transport
}

var _ {{.Interface}} = (*{{.Name}})(nil)

// {{.Constructor}} creates a {{.Name}} calling the {{.Service}} service.
func {{.Constructor}}(transport tether.Transport) *{{.Name}} {
	return &{{.Name}}{transport: transport}
}
{{range .Methods}}
{{range .Aspects}}{{.}}
{{end}}func (c *{{$.Name}}) {{.Name}}({{.Params}}) {{.Results}} {
{{range .Vars}}	var {{.Name}} {{.Type}}
{{end}}	err := tether.Invoke({{.Context}}, c.transport, {{quote .Operation}}, {{.Args}}, {{.Refs}})
	return {{if .Returns}}{{.Returns}}, {{end}}err
}
{{end}}`
}

// registerProxyTemplates registers the aspect proxy wrapping a client implementation
func (tr *TemplateRegistry) registerProxyTemplates() {
	tr.templates["aop-proxy"] = fileTemplate + `// {{.Name}} runs the methods of {{.Target}} through interceptors.
type {{.Name}} struct {
	{{.Embed}}
	interceptors []tether.Interceptor
}

var _ {{.Interface}} = (*{{.Name}})(nil)

// {{.Constructor}} wraps the {{.Target}} built by {{.TargetConstructor}}.
func {{.Constructor}}({{.Params}}) {{.Returns}} {
{{if .ReturnsError}}	target, err := {{.TargetConstructor}}({{.Args}})
	if err != nil {
		return nil, err
	}
	return &{{.Name}}{ {{.Target}}: target, interceptors: interceptors }, nil
{{else}}	return &{{.Name}}{ {{.Target}}: {{.TargetConstructor}}({{.Args}}), interceptors: interceptors }
{{end}}}
{{range .Methods}}
func (p *{{$.Name}}) {{.Name}}({{.Params}}) {{.Results}} {
	inv := &tether.Invocation{
		Service:   {{quote $.Service}},
		Method:    {{quote .Name}},
		Operation: {{quote .Operation}},
		Args:      {{.Args}},
		Aspects: []tether.Aspect{
{{range .Aspects}}			{Kind: {{quote .Kind}}, Params: map[string]string{ {{.Params}} }},
{{end}}		},
	}
{{range .Vars}}	var {{.Name}} {{.Type}}
{{end}}	err := tether.Chain({{.Context}}, inv, p.interceptors, func({{.ContextParam}} context.Context) error {
		var callErr error
		{{.Assign}} = p.{{$.Target}}.{{.Name}}({{.Call}})
		return callErr
	})
	return {{if .Returns}}{{.Returns}}, {{end}}err
}
{{end}}`
}

// registerModuleTemplates registers the per-package module listing
func (tr *TemplateRegistry) registerModuleTemplates() {
	tr.templates["module"] = fileTemplate + `// AutogenModule lists the constructors package {{.Package}} contributes to the application graph.
var AutogenModule = tether.NewModule({{quote .Name}},
{{range .Providers}}	tether.Provide({{quote .Name}}, {{.Ref}}{{range .Tags}}, {{quote .}}{{end}}),
{{end}})
`
}

// executeTemplate executes a Go template with the given data
func executeTemplate(name, templateStr string, data interface{}) (string, error) {
	funcMap := template.FuncMap{
		"quote": strconv.Quote,
	}

	tmpl, err := template.New(name).Funcs(funcMap).Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, data)
	if err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return buf.String(), nil
}
