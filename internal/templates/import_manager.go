package templates

import (
	"fmt"
	"path"
	"sort"
)

// ImportData is one line of a generated import block
type ImportData struct {
	Name string // Explicit import name, empty when the path's last element is used
	Path string
}

// ImportManager collects the imports of one generated file and hands out
// collision-free package names for them
type ImportManager struct {
	byPath  map[string]string // path -> name used in code
	taken   map[string]string // name -> path
	imports []ImportData
}

// NewImportManager creates an empty import manager
func NewImportManager() *ImportManager {
	return &ImportManager{
		byPath: make(map[string]string),
		taken:  make(map[string]string),
	}
}

// AddImport keeps an import exactly as written in a source file. Blank and dot
// imports are dropped; generated files never need them.
func (im *ImportManager) AddImport(imp ImportData) {
	if imp.Path == "" || imp.Name == "_" || imp.Name == "." {
		return
	}
	if _, exists := im.byPath[imp.Path]; exists {
		return
	}
	name := imp.Name
	if name == "" {
		name = path.Base(imp.Path)
	}
	if owner, clash := im.taken[name]; clash && owner != imp.Path {
		return
	}
	im.byPath[imp.Path] = name
	im.taken[name] = imp.Path
	im.imports = append(im.imports, imp)
}

// Use returns the name code must qualify identifiers from importPath with,
// adding the import under an alias when pkgName is already taken.
func (im *ImportManager) Use(importPath, pkgName string) string {
	if name, exists := im.byPath[importPath]; exists {
		return name
	}
	if pkgName == "" {
		pkgName = path.Base(importPath)
	}

	name := pkgName
	for i := 2; ; i++ {
		if _, clash := im.taken[name]; !clash {
			break
		}
		name = fmt.Sprintf("%s%d", pkgName, i)
	}

	imp := ImportData{Path: importPath}
	if name != path.Base(importPath) {
		imp.Name = name
	}
	im.byPath[importPath] = name
	im.taken[name] = importPath
	im.imports = append(im.imports, imp)
	return name
}

// Imports returns the collected imports sorted by path
func (im *ImportManager) Imports() []ImportData {
	out := append([]ImportData(nil), im.imports...)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Path < out[j].Path
	})
	return out
}
