package generator

import (
	"path/filepath"

	"github.com/toyz/tether/internal/errors"
	"github.com/toyz/tether/internal/graph"
	"github.com/toyz/tether/internal/scanner"
	"github.com/toyz/tether/internal/templates"
)

// ModuleFileName is the file every package's module is written to
const ModuleFileName = "autogen_module.go"

// ModuleEmitter writes one autogen_module.go per package with components,
// listing the package's component constructors followed by the constructors
// extensions bound for them
type ModuleEmitter struct {
	templates *templates.TemplateRegistry
}

// NewModuleEmitter creates a module emitter
func NewModuleEmitter(registry *templates.TemplateRegistry) *ModuleEmitter {
	return &ModuleEmitter{templates: registry}
}

// Emit renders the modules of a converged graph
func (e *ModuleEmitter) Emit(pkgs []*scanner.PackageInfo, g *graph.Graph) ([]GeneratedFile, error) {
	if !g.Converged() {
		return nil, errors.NewStalledError(g.Round, g.Pending())
	}

	var files []GeneratedFile
	errs := errors.NewMultipleErrors()
	for _, pkg := range pkgs {
		if len(pkg.Components) == 0 {
			continue
		}
		path := filepath.Join(pkg.Dir, ModuleFileName)
		content, err := render(e.templates, "module", path, e.moduleData(pkg, g))
		if err != nil {
			errs.AddError(err)
			continue
		}
		files = append(files, GeneratedFile{Path: path, Package: pkg.ImportPath, Content: content})
	}

	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}
	return files, nil
}

func (e *ModuleEmitter) moduleData(pkg *scanner.PackageInfo, g *graph.Graph) templates.ModuleData {
	im := templates.NewImportManager()
	im.Use(RuntimeImport, "tether")

	data := templates.ModuleData{Name: pkg.ImportPath}
	seen := make(map[string]bool)

	for _, component := range pkg.Components {
		seen[component.QualifiedName()] = true
		data.Providers = append(data.Providers, templates.ProviderData{
			Name: component.Name,
			Ref:  component.Name,
			Tags: component.Tags.Values(),
		})
	}

	for _, binding := range g.ExtensionBindings(pkg.ImportPath) {
		decl := binding.Result.Declaration
		key := binding.Result.ConstructorRef()
		if seen[key] {
			continue
		}
		seen[key] = true

		ref := binding.Result.Constructor.Name
		if decl.Package != pkg.ImportPath {
			ref = im.Use(decl.Package, decl.PackageName) + "." + ref
		}
		data.Providers = append(data.Providers, templates.ProviderData{Name: ref, Ref: ref})
	}

	data.FileData = templates.FileData{
		Header:  GeneratedHeader,
		Package: pkg.Name,
		Imports: im.Imports(),
	}
	return data
}
