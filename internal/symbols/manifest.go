package symbols

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/toyz/tether/internal/annotations"
	"github.com/toyz/tether/internal/errors"
)

// Manifest is the YAML form of a snapshot. It can describe nested
// declarations, which Go source cannot.
//
//	round: 2
//	declarations:
//	  - package: example.com/shop/payments
//	    name: PaymentClient
//	    kind: interface
//	    annotations: ["//tether::client"]
//	    methods:
//	      - name: Charge
//	        annotations: ["//tether::retry -Attempts=5"]
//	  - package: example.com/shop/payments
//	    name: PaymentClientClient
//	    kind: struct
//	    constructors:
//	      - name: NewPaymentClientClient
//	        pointer: true
type Manifest struct {
	Round        int                   `yaml:"round"`
	Declarations []ManifestDeclaration `yaml:"declarations"`
}

type ManifestDeclaration struct {
	Package      string                `yaml:"package"`
	Name         string                `yaml:"name"`
	Kind         string                `yaml:"kind"`
	Enclosing    []string              `yaml:"enclosing,omitempty"`
	Annotations  []string              `yaml:"annotations,omitempty"`
	Methods      []ManifestMethod      `yaml:"methods,omitempty"`
	Constructors []ManifestConstructor `yaml:"constructors,omitempty"`
}

type ManifestMethod struct {
	Name        string   `yaml:"name"`
	Annotations []string `yaml:"annotations,omitempty"`
}

type ManifestConstructor struct {
	Name    string `yaml:"name"`
	Pointer bool   `yaml:"pointer,omitempty"`
}

// LoadManifestFile reads a manifest from disk
func LoadManifestFile(path string) (*MemoryTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapFileSystemError("open", path, err)
	}
	defer f.Close()

	return loadManifest(f, path)
}

// LoadManifest decodes a manifest and builds its snapshot
func LoadManifest(r io.Reader) (*MemoryTable, error) {
	return loadManifest(r, "manifest")
}

func loadManifest(r io.Reader, source string) (*MemoryTable, error) {
	var manifest Manifest
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&manifest); err != nil && err != io.EOF {
		return nil, errors.WrapParseError(source, err)
	}

	parser := annotations.NewParser(nil)
	builder := NewBuilder(manifest.Round)
	for i, entry := range manifest.Declarations {
		decl, err := entry.declaration(parser, source, i)
		if err != nil {
			return nil, err
		}
		if err := builder.Add(decl); err != nil {
			return nil, errors.Wrap(errors.ValidationErrorCode, fmt.Sprintf("invalid %s", source), err)
		}
	}
	return builder.Build(), nil
}

func (m ManifestDeclaration) declaration(parser *annotations.Parser, source string, index int) (*Declaration, error) {
	invalid := func(format string, args ...interface{}) error {
		return errors.Newf(errors.ValidationErrorCode, "%s: declaration #%d: %s", source, index+1, fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(m.Name) == "" {
		return nil, invalid("name is required")
	}
	if strings.TrimSpace(m.Package) == "" {
		return nil, invalid("package is required for %s", m.Name)
	}
	kind, err := ParseKind(m.Kind)
	if err != nil {
		return nil, invalid("%v", err)
	}

	decl := &Declaration{
		Kind:        kind,
		Package:     m.Package,
		PackageName: lastPathElement(m.Package),
		Name:        m.Name,
		Enclosing:   m.Enclosing,
		File:        source,
		Line:        index + 1,
	}

	decl.Annotations, err = parseAll(parser, m.Annotations, source, index)
	if err != nil {
		return nil, err
	}

	for _, method := range m.Methods {
		if method.Name == "" {
			return nil, invalid("method name is required on %s", m.Name)
		}
		parsed, err := parseAll(parser, method.Annotations, source, index)
		if err != nil {
			return nil, err
		}
		decl.Methods = append(decl.Methods, Method{Name: method.Name, Annotations: parsed})
	}

	for _, ctor := range m.Constructors {
		if ctor.Name == "" {
			return nil, invalid("constructor name is required on %s", m.Name)
		}
		decl.Constructors = append(decl.Constructors, Constructor{Name: ctor.Name, Pointer: ctor.Pointer})
	}

	return decl, nil
}

func parseAll(parser *annotations.Parser, raw []string, source string, index int) ([]*annotations.ParsedAnnotation, error) {
	var out []*annotations.ParsedAnnotation
	for _, text := range raw {
		parsed, err := parser.ParseAnnotation(text, annotations.SourceLocation{File: source, Line: index + 1, Column: 1})
		if err != nil {
			return nil, err
		}
		out = append(out, parsed)
	}
	return out, nil
}

func lastPathElement(importPath string) string {
	if i := strings.LastIndex(importPath, "/"); i >= 0 {
		return importPath[i+1:]
	}
	return importPath
}
