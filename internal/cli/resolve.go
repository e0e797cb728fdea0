package cli

import (
	"fmt"
	"strings"

	"github.com/toyz/tether/internal/errors"
	"github.com/toyz/tether/internal/extension"
	"github.com/toyz/tether/internal/symbols"
)

// Outcome is the answer a binding query got
type Outcome int

const (
	OutcomeNotApplicable Outcome = iota
	OutcomeDeferred
	OutcomeResolved
)

func (o Outcome) String() string {
	switch o {
	case OutcomeResolved:
		return "resolved"
	case OutcomeDeferred:
		return "deferred"
	default:
		return "not applicable"
	}
}

// Resolution is the result of asking the extensions for one binding
type Resolution struct {
	Outcome     Outcome
	Extension   string // Extension that answered, empty when none applied
	Declaration string // Qualified name of the bound declaration
	Constructor string // Constructor reference, package-qualified
}

func (r Resolution) String() string {
	if r.Outcome != OutcomeResolved {
		return r.Outcome.String()
	}
	return fmt.Sprintf("resolved %s via %s", r.Declaration, r.Constructor)
}

// ParseTypeRef parses "<import path>.<Name>" with an optional leading "*".
// The name starts at the first dot after the last slash, so nested names like
// example.com/app/payments.Outer.Inner keep their dots.
func ParseTypeRef(s string) (symbols.TypeRef, error) {
	expr := strings.TrimSpace(s)
	ref := symbols.TypeRef{Expr: expr}
	if strings.HasPrefix(expr, "*") {
		ref.Pointer = true
		expr = expr[1:]
	}

	slash := strings.LastIndex(expr, "/")
	dot := strings.Index(expr[slash+1:], ".")
	if dot < 0 {
		return symbols.TypeRef{}, errors.Newf(errors.ValidationErrorCode, "type %q must be written as <import path>.<Name>", s)
	}
	dot += slash + 1
	ref.Package, ref.Name = expr[:dot], expr[dot+1:]
	if ref.Package == "" || ref.Name == "" {
		return symbols.TypeRef{}, errors.Newf(errors.ValidationErrorCode, "type %q must be written as <import path>.<Name>", s)
	}
	return ref, nil
}

// ResolveBinding asks the registry for a binding of typ and tags against table.
// Errors are contract faults of the answering extension.
func ResolveBinding(table symbols.Table, registry *extension.Registry, typ symbols.TypeRef, tags symbols.TagSet) (Resolution, error) {
	name, gen, ok := registry.Find(table, typ, tags)
	if !ok {
		return Resolution{Outcome: OutcomeNotApplicable}, nil
	}

	result, err := gen()
	if err != nil {
		return Resolution{Extension: name}, err
	}
	if extension.IsRequiresCompiling(result) {
		return Resolution{Outcome: OutcomeDeferred, Extension: name}, nil
	}
	generated, ok := result.(*extension.GeneratedResult)
	if !ok {
		return Resolution{Extension: name}, errors.Newf(errors.ContractErrorCode,
			"extension %s returned unsupported result %T for %s", name, result, typ)
	}
	return Resolution{
		Outcome:     OutcomeResolved,
		Extension:   name,
		Declaration: generated.Declaration.QualifiedName(),
		Constructor: generated.ConstructorRef(),
	}, nil
}

// ResolveFromManifest loads a symbol manifest and resolves one binding
// against it with the built-in extensions
func ResolveFromManifest(manifestPath, typeName string, tags []string) (Resolution, error) {
	table, err := symbols.LoadManifestFile(manifestPath)
	if err != nil {
		return Resolution{}, err
	}
	typ, err := ParseTypeRef(typeName)
	if err != nil {
		return Resolution{}, err
	}
	return ResolveBinding(table, DefaultExtensions(), typ, symbols.NewTagSet(tags...))
}
