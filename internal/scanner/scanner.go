// Package scanner reads Go packages and turns their //tether:: annotations
// into declarations and components for the symbol table.
package scanner

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/toyz/tether/internal/annotations"
	"github.com/toyz/tether/internal/errors"
	"github.com/toyz/tether/internal/symbols"
)

// Scanner extracts declarations and components from package directories
type Scanner struct {
	fileSet *token.FileSet
	parser  *annotations.Parser
}

// New creates a scanner validating annotations against the built-in schemas
func New() *Scanner {
	return &Scanner{
		fileSet: token.NewFileSet(),
		parser:  annotations.NewParser(nil),
	}
}

// pendingMethod is a method declared with a receiver, attached to its type
// once every file has been read
type pendingMethod struct {
	receiver string
	method   symbols.Method
}

// pendingConstructor is a receiver-less function returning T or *T
type pendingConstructor struct {
	result string
	ctor   symbols.Constructor
}

type scan struct {
	*Scanner
	info         *PackageInfo
	errs         *errors.MultipleErrors
	byName       map[string]*symbols.Declaration
	methods      []pendingMethod
	constructors []pendingConstructor
}

// ScanPackage parses every non-test .go file in dir. Malformed annotations are
// collected and returned together.
func (s *Scanner) ScanPackage(dir, importPath string) (*PackageInfo, error) {
	files, err := goFiles(dir)
	if err != nil {
		return nil, errors.WrapFileSystemError("read", dir, err)
	}
	if len(files) == 0 {
		return nil, errors.Newf(errors.ValidationErrorCode, "no Go files in %s", dir)
	}

	st := &scan{
		Scanner: s,
		info:    &PackageInfo{ImportPath: importPath, Dir: dir, Files: files},
		errs:    errors.NewMultipleErrors(),
		byName:  make(map[string]*symbols.Declaration),
	}

	for _, path := range files {
		file, err := parser.ParseFile(s.fileSet, path, nil, parser.ParseComments)
		if err != nil {
			return nil, errors.WrapParseError(path, err)
		}
		if st.info.Name == "" {
			st.info.Name = file.Name.Name
		} else if st.info.Name != file.Name.Name {
			return nil, errors.Newf(errors.ValidationErrorCode,
				"multiple packages found in directory %s: %s and %s", dir, st.info.Name, file.Name.Name)
		}
		st.file(path, file)
	}

	st.attach()

	if err := st.errs.ErrOrNil(); err != nil {
		return nil, err
	}
	return st.info, nil
}

func goFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files, nil
}

func (st *scan) file(path string, file *ast.File) {
	imports := newFileImports(file)
	generated := ast.IsGenerated(file)

	for _, decl := range file.Decls {
		switch node := decl.(type) {
		case *ast.GenDecl:
			if node.Tok != token.TYPE {
				continue
			}
			for _, spec := range node.Specs {
				typeSpec := spec.(*ast.TypeSpec)
				doc := typeSpec.Doc
				if doc == nil && !node.Lparen.IsValid() {
					doc = node.Doc
				}
				st.typeSpec(path, typeSpec, doc, imports, generated)
			}
		case *ast.FuncDecl:
			st.funcDecl(path, node, imports)
		}
	}
}

func (st *scan) typeSpec(path string, spec *ast.TypeSpec, doc *ast.CommentGroup, imports *fileImports, generated bool) {
	decl := &symbols.Declaration{
		Kind:        kindOf(spec),
		Package:     st.info.ImportPath,
		PackageName: st.info.Name,
		Name:        spec.Name.Name,
		File:        path,
		Line:        st.fileSet.Position(spec.Pos()).Line,
		Imports:     imports.list,
		Generated:   generated,
	}
	decl.Annotations = st.annotations(doc, decl.Name)

	for _, annotation := range decl.Annotations {
		switch annotation.Type {
		case annotations.ComponentAnnotation, annotations.TagAnnotation:
			st.fail(annotation.Location, "%s annotation belongs on a constructor function, not on type %s", annotation.Type, decl.Name)
		case annotations.ClientAnnotation:
			if decl.Kind == symbols.KindInterface && spec.TypeParams != nil {
				st.fail(annotation.Location, "client interface %s must not have type parameters", decl.Name)
			}
		}
	}

	if iface, ok := spec.Type.(*ast.InterfaceType); ok && iface.Methods != nil {
		for _, field := range iface.Methods.List {
			fn, ok := field.Type.(*ast.FuncType)
			if !ok || len(field.Names) == 0 {
				continue
			}
			for _, name := range field.Names {
				decl.Methods = append(decl.Methods, st.method(name.Name, fn, field.Doc, decl.Name, imports))
			}
		}
	}

	if existing, dup := st.byName[decl.Name]; dup {
		st.fail(annotations.SourceLocation{File: path, Line: decl.Line}, "type %s already declared at %s:%d", decl.Name, existing.File, existing.Line)
		return
	}
	st.byName[decl.Name] = decl
	st.info.Declarations = append(st.info.Declarations, decl)
}

func (st *scan) method(name string, fn *ast.FuncType, doc *ast.CommentGroup, owner string, imports *fileImports) symbols.Method {
	method := symbols.Method{
		Name:     name,
		Params:   fields(fn.Params, imports, st.info.ImportPath),
		Results:  fields(fn.Results, imports, st.info.ImportPath),
		Variadic: isVariadic(fn),
	}
	for _, annotation := range st.annotations(doc, owner+"."+name) {
		if !annotation.Type.IsAspect() {
			st.fail(annotation.Location, "%s annotation is not allowed on method %s.%s", annotation.Type, owner, name)
			continue
		}
		method.Annotations = append(method.Annotations, annotation)
	}
	return method
}

func (st *scan) funcDecl(path string, fn *ast.FuncDecl, imports *fileImports) {
	if fn.Recv != nil {
		receiver := receiverName(fn.Recv)
		if receiver == "" {
			return
		}
		st.methods = append(st.methods, pendingMethod{
			receiver: receiver,
			method:   st.method(fn.Name.Name, fn.Type, fn.Doc, receiver, imports),
		})
		return
	}

	line := st.fileSet.Position(fn.Pos()).Line
	if result, pointer := localResult(fn.Type); result != "" && fn.Type.TypeParams == nil {
		st.constructors = append(st.constructors, pendingConstructor{
			result: result,
			ctor: symbols.Constructor{
				Name:         fn.Name.Name,
				Params:       fields(fn.Type.Params, imports, st.info.ImportPath),
				Pointer:      pointer,
				ReturnsError: returnsError(fn.Type),
				Line:         line,
			},
		})
	}

	parsed := st.annotations(fn.Doc, fn.Name.Name)
	if len(parsed) == 0 {
		return
	}

	var component *annotations.ParsedAnnotation
	var tags []*annotations.ParsedAnnotation
	for _, annotation := range parsed {
		switch annotation.Type {
		case annotations.ComponentAnnotation:
			component = annotation
		case annotations.TagAnnotation:
			tags = append(tags, annotation)
		default:
			st.fail(annotation.Location, "%s annotation is not allowed on function %s", annotation.Type, fn.Name.Name)
		}
	}

	if component == nil {
		for _, tag := range tags {
			st.fail(tag.Location, "tag annotation on %s requires //tether::component", fn.Name.Name)
		}
		return
	}
	st.component(path, line, fn, component, tags, imports)
}

func (st *scan) component(path string, line int, fn *ast.FuncDecl, marker *annotations.ParsedAnnotation, tags []*annotations.ParsedAnnotation, imports *fileImports) {
	results := fn.Type.Results
	if results == nil || results.NumFields() == 0 || results.NumFields() > 2 {
		st.fail(marker.Location, "component %s must return a value, optionally followed by an error", fn.Name.Name)
		return
	}
	if fn.Type.TypeParams != nil {
		st.fail(marker.Location, "component %s must not have type parameters", fn.Name.Name)
		return
	}

	resultTypes := fields(results, imports, st.info.ImportPath)
	component := &Component{
		Name:        fn.Name.Name,
		Package:     st.info.ImportPath,
		PackageName: st.info.Name,
		Provides:    resultTypes[0].Type,
		Tags:        symbols.NewTagSet(marker.GetStringSlice("Tags")...),
		File:        path,
		Line:        line,
	}
	if len(resultTypes) == 2 {
		if resultTypes[1].Type.Expr != "error" {
			st.fail(marker.Location, "component %s: second result must be error, got %s", fn.Name.Name, resultTypes[1].Type.Expr)
			return
		}
		component.ReturnsError = true
	}

	params := fields(fn.Type.Params, imports, st.info.ImportPath)
	tagsByParam := make(map[string]symbols.TagSet, len(tags))
	for _, tag := range tags {
		param := tag.GetString("param")
		if !hasParam(params, param) {
			st.fail(tag.Location, "tag annotation names unknown parameter %s of %s", param, fn.Name.Name)
			continue
		}
		tagsByParam[param] = symbols.NewTagSet(tag.GetStringSlice("tags")...)
	}

	for i, param := range params {
		name := param.Name
		if name == "" || name == "_" {
			name = fmt.Sprintf("arg%d", i)
		}
		component.Dependencies = append(component.Dependencies, Dependency{
			Param:   name,
			Request: symbols.BindingRequest{Type: param.Type, Tags: tagsByParam[param.Name]},
		})
	}

	st.info.Components = append(st.info.Components, component)
}

// attach hands receiver methods and constructors to the types they belong to
func (st *scan) attach() {
	for _, pending := range st.methods {
		decl, ok := st.byName[pending.receiver]
		if !ok {
			continue
		}
		decl.Methods = append(decl.Methods, pending.method)
	}
	for _, pending := range st.constructors {
		decl, ok := st.byName[pending.result]
		if !ok || decl.Kind != symbols.KindStruct {
			continue
		}
		decl.Constructors = append(decl.Constructors, pending.ctor)
	}
}

func (st *scan) annotations(doc *ast.CommentGroup, target string) []*annotations.ParsedAnnotation {
	if doc == nil {
		return nil
	}
	var out []*annotations.ParsedAnnotation
	for _, comment := range doc.List {
		if !annotations.IsAnnotation(comment.Text) {
			continue
		}
		pos := st.fileSet.Position(comment.Pos())
		loc := annotations.SourceLocation{File: pos.Filename, Line: pos.Line, Column: pos.Column}
		parsed, err := st.parser.ParseAnnotation(comment.Text, loc)
		if err != nil {
			st.errs.Add(errors.Wrap(errors.SyntaxErrorCode, "invalid annotation", err))
			continue
		}
		parsed.Target = target
		out = append(out, parsed)
	}
	return out
}

func (st *scan) fail(loc annotations.SourceLocation, format string, args ...interface{}) {
	st.errs.Add(errors.Newf(errors.ValidationErrorCode, format, args...).
		WithLocation(errors.SourceLocation{File: loc.File, Line: loc.Line, Column: loc.Column}))
}

func kindOf(spec *ast.TypeSpec) symbols.Kind {
	if spec.Assign.IsValid() {
		return symbols.KindAlias
	}
	switch spec.Type.(type) {
	case *ast.InterfaceType:
		return symbols.KindInterface
	case *ast.StructType:
		return symbols.KindStruct
	case *ast.FuncType:
		return symbols.KindFunc
	default:
		return symbols.KindNamed
	}
}

func hasParam(params []symbols.Field, name string) bool {
	for _, param := range params {
		if param.Name == name {
			return true
		}
	}
	return false
}

// returnsError reports whether a function returns exactly a value and an error
func returnsError(fn *ast.FuncType) bool {
	if fn.Results == nil || fn.Results.NumFields() != 2 {
		return false
	}
	last := fn.Results.List[len(fn.Results.List)-1]
	ident, ok := last.Type.(*ast.Ident)
	return ok && ident.Name == "error"
}
