package cli

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/toyz/tether/internal/errors"
	"github.com/toyz/tether/internal/utils"
)

// ModuleInfo is the module generated packages belong to
type ModuleInfo struct {
	Path string // Module path, e.g. example.com/shop
	Root string // Directory holding go.mod
}

// ModuleResolver handles resolving Go module information
type ModuleResolver struct {
	goMod *utils.GoModParser
}

// NewModuleResolver creates a new module resolver
func NewModuleResolver() *ModuleResolver {
	return &ModuleResolver{goMod: utils.NewGoModParser()}
}

// ResolveModule finds the module enclosing startDir. A non-empty customModule
// replaces the path read from go.mod; the root then defaults to startDir when
// there is no go.mod at all.
func (r *ModuleResolver) ResolveModule(customModule, startDir string) (ModuleInfo, error) {
	absStart, err := filepath.Abs(startDir)
	if err != nil {
		return ModuleInfo{}, errors.WrapFileSystemError("resolve", startDir, err)
	}

	goModPath, findErr := r.goMod.FindGoModFile(absStart)
	if customModule != "" {
		root := absStart
		if findErr == nil {
			root = filepath.Dir(goModPath)
		}
		return ModuleInfo{Path: customModule, Root: root}, nil
	}
	if findErr != nil {
		return ModuleInfo{}, errors.Wrap(errors.ConfigurationErrorCode, "failed to determine module name", findErr).
			WithContext("directory", absStart).
			WithSuggestions(
				"Run tether from inside a Go module",
				"Try specifying --module flag explicitly",
			)
	}

	name, err := r.goMod.ParseModuleName(goModPath)
	if err != nil {
		return ModuleInfo{}, errors.Wrap(errors.ConfigurationErrorCode, "failed to determine module name", err).
			WithLocation(errors.SourceLocation{File: goModPath}).
			WithSuggestion("Check your go.mod file exists and is valid")
	}
	return ModuleInfo{Path: name, Root: filepath.Dir(goModPath)}, nil
}

// BuildPackagePath builds the full import path for a package directory
func (r *ModuleResolver) BuildPackagePath(module ModuleInfo, packageDir string) (string, error) {
	absPackageDir, err := filepath.Abs(packageDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve package directory: %w", err)
	}

	relPath, err := filepath.Rel(module.Root, absPackageDir)
	if err != nil {
		return "", fmt.Errorf("failed to calculate relative path: %w", err)
	}

	importPath := filepath.ToSlash(relPath)
	if importPath == "." {
		return module.Path, nil
	}
	if importPath == ".." || strings.HasPrefix(importPath, "../") {
		return "", fmt.Errorf("package directory %s is outside module %s (%s)", packageDir, module.Path, module.Root)
	}
	return path.Join(module.Path, importPath), nil
}
