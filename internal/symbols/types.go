package symbols

import (
	"fmt"
	"sort"
	"strings"

	"github.com/toyz/tether/internal/annotations"
)

// Kind classifies a declared type
type Kind int

const (
	KindInterface Kind = iota
	KindStruct
	KindNamed
	KindAlias
	KindFunc
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindInterface:
		return "interface"
	case KindStruct:
		return "struct"
	case KindNamed:
		return "named"
	case KindAlias:
		return "alias"
	case KindFunc:
		return "func"
	default:
		return "unknown"
	}
}

// ParseKind converts a string to a Kind
func ParseKind(s string) (Kind, error) {
	switch s {
	case "interface":
		return KindInterface, nil
	case "struct":
		return KindStruct, nil
	case "named":
		return KindNamed, nil
	case "alias":
		return KindAlias, nil
	case "func":
		return KindFunc, nil
	default:
		return 0, fmt.Errorf("unknown declaration kind: %s", s)
	}
}

// TypeRef names a type by import path and (possibly dotted, for nested
// declarations) name.
type TypeRef struct {
	Package string // Import path
	Name    string // Declared name, Outer.Inner for nested declarations
	Pointer bool   // Requested through a pointer
	Expr    string // Source expression as written, e.g. "*store.DB" or "[]string"
}

// QualifiedName returns the lookup key of the referenced declaration.
// Pointer-ness is not part of the key.
func (t TypeRef) QualifiedName() string {
	if t.Package == "" {
		return t.Name
	}
	return t.Package + "." + t.Name
}

// IsZero reports whether the reference names nothing
func (t TypeRef) IsZero() bool {
	return t.Name == ""
}

func (t TypeRef) String() string {
	if t.Pointer {
		return "*" + t.QualifiedName()
	}
	return t.QualifiedName()
}

// TagSet is a sorted set of qualifying tags. The zero value is the empty set.
type TagSet struct {
	tags []string
}

// NewTagSet builds a tag set, dropping blanks and duplicates
func NewTagSet(tags ...string) TagSet {
	seen := make(map[string]struct{}, len(tags))
	var out []string
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	sort.Strings(out)
	return TagSet{tags: out}
}

// Empty reports whether the set has no tags
func (s TagSet) Empty() bool { return len(s.tags) == 0 }

// Len returns the number of tags
func (s TagSet) Len() int { return len(s.tags) }

// Values returns a copy of the tags in sorted order
func (s TagSet) Values() []string {
	return append([]string(nil), s.tags...)
}

// Equal reports whether both sets hold the same tags
func (s TagSet) Equal(other TagSet) bool {
	if len(s.tags) != len(other.tags) {
		return false
	}
	for i := range s.tags {
		if s.tags[i] != other.tags[i] {
			return false
		}
	}
	return true
}

func (s TagSet) String() string {
	return "[" + strings.Join(s.tags, ",") + "]"
}

// BindingRequest is a type plus tag-set pair the resolution engine wants satisfied
type BindingRequest struct {
	Type TypeRef
	Tags TagSet
}

func (r BindingRequest) String() string {
	if r.Tags.Empty() {
		return r.Type.String()
	}
	return r.Type.String() + " tagged " + r.Tags.String()
}

// Import is one import of the file a declaration lives in
type Import struct {
	Name string // Explicit import name, empty when implicit
	Path string
}

// Field is a named or anonymous parameter/result
type Field struct {
	Name string
	Type TypeRef
}

// Method is one method of an interface or struct
type Method struct {
	Name        string
	Params      []Field
	Results     []Field
	Variadic    bool
	Annotations []*annotations.ParsedAnnotation
}

// HasAspects reports whether the method carries any aspect annotation
func (m *Method) HasAspects() bool {
	return hasAspect(m.Annotations)
}

// ReturnsError reports whether the last result is the builtin error
func (m *Method) ReturnsError() bool {
	return len(m.Results) > 0 && m.Results[len(m.Results)-1].Type.Expr == "error"
}

// Constructor is a top-level function building a declaration
type Constructor struct {
	Name         string
	Params       []Field
	Pointer      bool // Returns *T rather than T
	ReturnsError bool // Second result is error
	Line         int
}

// Declaration is one type declaration visible in a round's snapshot
type Declaration struct {
	Kind         Kind
	Package      string   // Import path
	PackageName  string   // Package clause name
	Name         string   // Simple name
	Enclosing    []string // Enclosing declaration names, outermost first
	Annotations  []*annotations.ParsedAnnotation
	Methods      []Method
	Constructors []Constructor // Declaration order
	File         string
	Line         int
	Imports      []Import
	Generated    bool // Comes from a file carrying the generated-code header
}

// QualifiedName returns the lookup key: import path, enclosing names, then name
func (d *Declaration) QualifiedName() string {
	parts := append(append([]string(nil), d.Enclosing...), d.Name)
	return d.Package + "." + strings.Join(parts, ".")
}

// Ref returns a TypeRef pointing at the declaration
func (d *Declaration) Ref() TypeRef {
	parts := append(append([]string(nil), d.Enclosing...), d.Name)
	return TypeRef{Package: d.Package, Name: strings.Join(parts, ".")}
}

// HasAnnotation reports whether the declaration itself carries the annotation
func (d *Declaration) HasAnnotation(annotationType annotations.AnnotationType) bool {
	return d.Annotation(annotationType) != nil
}

// Annotation returns the first declaration-level annotation of the given type
func (d *Declaration) Annotation(annotationType annotations.AnnotationType) *annotations.ParsedAnnotation {
	for _, annotation := range d.Annotations {
		if annotation.Type == annotationType {
			return annotation
		}
	}
	return nil
}

// HasAspects reports whether the declaration or any of its methods carries an
// aspect annotation.
func (d *Declaration) HasAspects() bool {
	if hasAspect(d.Annotations) {
		return true
	}
	for i := range d.Methods {
		if d.Methods[i].HasAspects() {
			return true
		}
	}
	return false
}

// FirstConstructor returns the first constructor in declaration order
func (d *Declaration) FirstConstructor() (Constructor, bool) {
	if len(d.Constructors) == 0 {
		return Constructor{}, false
	}
	return d.Constructors[0], true
}

func hasAspect(list []*annotations.ParsedAnnotation) bool {
	for _, annotation := range list {
		if annotation.Type.IsAspect() {
			return true
		}
	}
	return false
}
