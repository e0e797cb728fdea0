package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/toyz/tether/internal/config"
	"github.com/toyz/tether/internal/errors"
	"github.com/toyz/tether/internal/extension"
	"github.com/toyz/tether/internal/extension/client"
	"github.com/toyz/tether/internal/generator"
	"github.com/toyz/tether/internal/graph"
	"github.com/toyz/tether/internal/scanner"
	"github.com/toyz/tether/internal/symbols"
	"github.com/toyz/tether/internal/templates"
	"github.com/toyz/tether/internal/utils"
)

// GenerationSummary contains information about the generation process
type GenerationSummary struct {
	RunID      string
	Module     string
	Rounds     int
	Packages   int
	Components int
	Bindings   int
	Clients    int
	Proxies    int
	Modules    int
	Files      []string // Written files, in write order
	Duration   time.Duration
}

// Generator runs generation rounds until the dependency graph converges,
// then writes one module per package with components
type Generator struct {
	scanner        *DirectoryScanner
	moduleResolver *ModuleResolver
	sources        *scanner.Scanner
	extensions     *extension.Registry
	producers      []generator.Producer
	emitter        *generator.ModuleEmitter
	diagnostics    *utils.DiagnosticSystem
}

// NewGenerator creates a generator with the client extension and the default
// producers. A nil diagnostics system is silent.
func NewGenerator(diagnostics *utils.DiagnosticSystem) *Generator {
	if diagnostics == nil {
		diagnostics = utils.NewDiagnosticSystem(utils.DiagnosticSilent)
	}
	registry := templates.NewTemplateRegistry()
	return &Generator{
		scanner:        NewDirectoryScanner(),
		moduleResolver: NewModuleResolver(),
		sources:        scanner.New(),
		extensions:     DefaultExtensions(),
		producers:      generator.DefaultProducers(registry),
		emitter:        generator.NewModuleEmitter(registry),
		diagnostics:    diagnostics,
	}
}

// DefaultExtensions returns a registry holding the built-in extensions
func DefaultExtensions() *extension.Registry {
	registry := extension.NewRegistry()
	if err := registry.Register(client.Name, client.New()); err != nil {
		panic(err)
	}
	return registry
}

// round is the state one pass over the workspace produced
type round struct {
	number     int
	packages   []*scanner.PackageInfo
	table      *symbols.MemoryTable
	components []*scanner.Component
	graph      *graph.Graph
}

// Run executes the complete generation process
func (g *Generator) Run(cfg config.Config) (*GenerationSummary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	summary := &GenerationSummary{RunID: uuid.NewString()}

	g.diagnostics.Verbose("Run %s started at %s", summary.RunID, start.Format("15:04:05"))
	g.diagnostics.Debug("Scanning directories: %v", cfg.Directories)

	dirs, err := g.scanner.ScanDirectories(cfg.Directories)
	if err != nil {
		return nil, err
	}
	if len(dirs) == 0 {
		return nil, errors.Newf(errors.ValidationErrorCode, "no Go packages found in %v", cfg.Directories).
			WithSuggestion("Use a pattern like ./... to scan subdirectories")
	}
	summary.Packages = len(dirs)

	module, err := g.moduleResolver.ResolveModule(cfg.Module, dirs[0])
	if err != nil {
		return nil, err
	}
	summary.Module = module.Path
	g.diagnostics.Debug("Resolved module %s at %s", module.Path, module.Root)

	importPaths := make(map[string]string, len(dirs))
	for _, dir := range dirs {
		importPath, err := g.moduleResolver.BuildPackagePath(module, dir)
		if err != nil {
			return nil, errors.Wrap(errors.ConfigurationErrorCode, "failed to compute import path", err).
				WithContext("directory", dir)
		}
		importPaths[dir] = importPath
	}

	var last *round
	for number := 1; ; number++ {
		if number > cfg.MaxRounds {
			// A bound graph stays valid; only the last round's files went unscanned.
			if !last.graph.Converged() {
				return nil, errors.NewRoundLimitError(cfg.MaxRounds, last.graph.Pending())
			}
			g.diagnostics.Warn("round limit %d reached with every dependency bound; files written in round %d were not rescanned", cfg.MaxRounds, last.number)
			break
		}

		g.diagnostics.Section(fmt.Sprintf("Round %d", number))
		current, err := g.resolveRound(number, dirs, importPaths)
		if err != nil {
			return nil, err
		}
		summary.Rounds = number

		written, err := g.produce(current, summary)
		if err != nil {
			return nil, err
		}
		g.diagnostics.Info("round %d: %d deferred, %d files written", number, len(current.graph.Deferred), written)

		last = current
		if written > 0 {
			continue
		}
		if !current.graph.Converged() {
			return nil, errors.NewStalledError(number, current.graph.Pending())
		}
		break
	}

	for _, pkg := range last.packages {
		summary.Components += len(pkg.Components)
	}
	summary.Bindings = len(last.graph.Bindings)

	modules, err := g.emitter.Emit(last.packages, last.graph)
	if err != nil {
		return nil, err
	}
	for _, file := range modules {
		changed, err := writeGeneratedFile(file)
		if err != nil {
			return nil, err
		}
		summary.Modules++
		if changed {
			summary.Files = append(summary.Files, file.Path)
			g.diagnostics.List("%s", file.Path)
		}
	}

	summary.Duration = time.Since(start)
	return summary, nil
}

// resolveRound scans every package, builds the round's snapshot and resolves
// the dependency graph against it
func (g *Generator) resolveRound(number int, dirs []string, importPaths map[string]string) (*round, error) {
	current := &round{number: number}
	builder := symbols.NewBuilder(number)
	errs := errors.NewMultipleErrors()

	for _, dir := range dirs {
		pkg, err := g.sources.ScanPackage(dir, importPaths[dir])
		if err != nil {
			errs.AddError(err)
			continue
		}
		if err := builder.Add(pkg.Declarations...); err != nil {
			errs.Add(errors.Wrap(errors.ValidationErrorCode, "failed to build symbol table", err).
				WithContext("package", pkg.ImportPath))
			continue
		}
		g.diagnostics.Verbose("%s: %d declarations, %d components", pkg.ImportPath, len(pkg.Declarations), len(pkg.Components))
		current.packages = append(current.packages, pkg)
		current.components = append(current.components, pkg.Components...)
	}
	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}

	current.table = builder.Build()
	resolved, err := graph.Resolve(current.table, current.components, g.extensions)
	if err != nil {
		return nil, err
	}
	current.graph = resolved
	for _, deferred := range resolved.Deferred {
		g.diagnostics.Verbose("deferred %s", deferred)
	}
	return current, nil
}

// produce runs every producer over the round and writes new or changed files
func (g *Generator) produce(current *round, summary *GenerationSummary) (int, error) {
	written := 0
	for _, producer := range g.producers {
		files, err := producer.Produce(current.table, current.packages)
		if err != nil {
			return written, err
		}
		for _, file := range files {
			changed, err := writeGeneratedFile(file)
			if err != nil {
				return written, err
			}
			if !changed {
				continue
			}
			written++
			summary.Files = append(summary.Files, file.Path)
			switch producer.Name() {
			case "client":
				summary.Clients++
			case "aop-proxy":
				summary.Proxies++
			}
			g.diagnostics.List("%s: %s", producer.Name(), file.Path)
		}
	}
	return written, nil
}

// writeGeneratedFile writes file unless the destination already holds the
// same content, and reports whether it wrote
func writeGeneratedFile(file generator.GeneratedFile) (bool, error) {
	existing, err := os.ReadFile(file.Path)
	if err == nil && bytes.Equal(existing, file.Content) {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(file.Path), 0755); err != nil {
		return false, errors.WrapFileSystemError("create directory", filepath.Dir(file.Path), err)
	}
	if err := os.WriteFile(file.Path, file.Content, 0644); err != nil {
		return false, errors.WrapFileSystemError("write", file.Path, err)
	}
	return true, nil
}
