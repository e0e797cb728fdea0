package scanner

import (
	"go/ast"
	"go/types"
	"regexp"
	"strconv"
	"strings"

	"github.com/toyz/tether/internal/symbols"
)

var majorVersion = regexp.MustCompile(`^v[0-9]+$`)

// fileImports maps the names a file uses for its imports to import paths
type fileImports struct {
	byName map[string]string
	list   []symbols.Import
}

func newFileImports(file *ast.File) *fileImports {
	imports := &fileImports{byName: make(map[string]string)}
	for _, spec := range file.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		var name string
		if spec.Name != nil {
			name = spec.Name.Name
		}
		imports.list = append(imports.list, symbols.Import{Name: name, Path: path})

		switch name {
		case "_", ".":
			continue
		case "":
			name = AssumedPackageName(path)
		}
		imports.byName[name] = path
	}
	return imports
}

// AssumedPackageName guesses the package name of an import path the way
// goimports does: last element, major version suffixes skipped, go- prefix and
// anything after a dot or dash dropped.
func AssumedPackageName(importPath string) string {
	parts := strings.Split(importPath, "/")
	base := parts[len(parts)-1]
	if majorVersion.MatchString(base) && len(parts) > 1 {
		base = parts[len(parts)-2]
	}
	base = strings.TrimPrefix(base, "go-")
	if i := strings.IndexAny(base, ".-"); i >= 0 {
		base = base[:i]
	}
	return base
}

// resolveType turns a type expression into a reference. Expressions that do
// not name a declaration (slices, maps, funcs) keep only their source text.
func resolveType(expr ast.Expr, imports *fileImports, importPath string) symbols.TypeRef {
	ref := symbols.TypeRef{Expr: types.ExprString(expr)}

	if star, ok := expr.(*ast.StarExpr); ok {
		ref.Pointer = true
		expr = star.X
	}

	switch t := expr.(type) {
	case *ast.Ident:
		ref.Name = t.Name
		if types.Universe.Lookup(t.Name) == nil {
			ref.Package = importPath
		}
	case *ast.SelectorExpr:
		if pkgIdent, ok := t.X.(*ast.Ident); ok {
			if path, found := imports.byName[pkgIdent.Name]; found {
				ref.Package = path
				ref.Name = t.Sel.Name
				return ref
			}
		}
		ref.Name = ref.Expr
	default:
		ref.Pointer = false
		ref.Name = ref.Expr
	}
	return ref
}

// receiverName returns the base type name of a method receiver
func receiverName(recv *ast.FieldList) string {
	if recv == nil || len(recv.List) == 0 {
		return ""
	}
	expr := recv.List[0].Type
	if star, ok := expr.(*ast.StarExpr); ok {
		expr = star.X
	}
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.IndexExpr:
		if ident, ok := t.X.(*ast.Ident); ok {
			return ident.Name
		}
	case *ast.IndexListExpr:
		if ident, ok := t.X.(*ast.Ident); ok {
			return ident.Name
		}
	}
	return ""
}

// localResult reports the local type a function's first result names, as T or *T
func localResult(fn *ast.FuncType) (name string, pointer bool) {
	if fn.Results == nil || len(fn.Results.List) == 0 {
		return "", false
	}
	expr := fn.Results.List[0].Type
	if star, ok := expr.(*ast.StarExpr); ok {
		expr = star.X
		pointer = true
	}
	if ident, ok := expr.(*ast.Ident); ok {
		return ident.Name, pointer
	}
	return "", false
}

func fields(list *ast.FieldList, imports *fileImports, importPath string) []symbols.Field {
	if list == nil {
		return nil
	}
	var out []symbols.Field
	for _, field := range list.List {
		typ := resolveType(field.Type, imports, importPath)
		if len(field.Names) == 0 {
			out = append(out, symbols.Field{Type: typ})
			continue
		}
		for _, name := range field.Names {
			out = append(out, symbols.Field{Name: name.Name, Type: typ})
		}
	}
	return out
}

func isVariadic(fn *ast.FuncType) bool {
	if fn.Params == nil || len(fn.Params.List) == 0 {
		return false
	}
	_, ok := fn.Params.List[len(fn.Params.List)-1].Type.(*ast.Ellipsis)
	return ok
}
