package symbols

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/tether/internal/annotations"
)

func annotation(t *testing.T, text string) *annotations.ParsedAnnotation {
	t.Helper()
	parsed, err := annotations.NewParser(nil).ParseAnnotation(text, annotations.SourceLocation{File: "test.go", Line: 1})
	require.NoError(t, err)
	return parsed
}

func TestKind(t *testing.T) {
	for _, kind := range []Kind{KindInterface, KindStruct, KindNamed, KindAlias, KindFunc} {
		parsed, err := ParseKind(kind.String())
		require.NoError(t, err)
		assert.Equal(t, kind, parsed)
	}
	_, err := ParseKind("class")
	assert.EqualError(t, err, "unknown declaration kind: class")
}

func TestTagSet(t *testing.T) {
	set := NewTagSet("fast", " primary ", "", "fast")
	assert.Equal(t, []string{"fast", "primary"}, set.Values())
	assert.Equal(t, 2, set.Len())
	assert.False(t, set.Empty())
	assert.Equal(t, "[fast,primary]", set.String())

	assert.True(t, set.Equal(NewTagSet("primary", "fast")))
	assert.False(t, set.Equal(NewTagSet("primary")))
	assert.False(t, set.Equal(NewTagSet("primary", "slow")))

	var zero TagSet
	assert.True(t, zero.Empty())
	assert.True(t, zero.Equal(NewTagSet()))
}

func TestTypeRefAndRequest(t *testing.T) {
	ref := TypeRef{Package: "example.com/shop/payments", Name: "PaymentClient"}
	assert.Equal(t, "example.com/shop/payments.PaymentClient", ref.QualifiedName())
	assert.Equal(t, "example.com/shop/payments.PaymentClient", ref.String())

	ptr := TypeRef{Package: "example.com/shop/store", Name: "DB", Pointer: true}
	assert.Equal(t, "*example.com/shop/store.DB", ptr.String())
	assert.Equal(t, "example.com/shop/store.DB", ptr.QualifiedName())

	assert.Equal(t, "string", TypeRef{Name: "string"}.QualifiedName())
	assert.True(t, TypeRef{}.IsZero())

	request := BindingRequest{Type: ptr, Tags: NewTagSet("primary")}
	assert.Equal(t, "*example.com/shop/store.DB tagged [primary]", request.String())
	assert.Equal(t, "example.com/shop/payments.PaymentClient", BindingRequest{Type: ref}.String())
}

func TestDeclaration(t *testing.T) {
	decl := &Declaration{
		Kind:        KindInterface,
		Package:     "example.com/shop/api",
		Name:        "Payments",
		Enclosing:   []string{"Outer", "Inner"},
		Annotations: []*annotations.ParsedAnnotation{annotation(t, "//tether::client")},
		Methods: []Method{
			{Name: "Charge"},
			{Name: "Refund", Annotations: []*annotations.ParsedAnnotation{annotation(t, "//tether::retry")}},
		},
	}

	assert.Equal(t, "example.com/shop/api.Outer.Inner.Payments", decl.QualifiedName())
	assert.Equal(t, "example.com/shop/api.Outer.Inner.Payments", decl.Ref().QualifiedName())
	assert.True(t, decl.HasAnnotation(annotations.ClientAnnotation))
	assert.False(t, decl.HasAnnotation(annotations.LogAnnotation))
	assert.NotNil(t, decl.Annotation(annotations.ClientAnnotation))
	assert.True(t, decl.HasAspects(), "method-level aspects count")
	assert.False(t, decl.Methods[0].HasAspects())

	_, ok := decl.FirstConstructor()
	assert.False(t, ok)

	decl.Constructors = []Constructor{{Name: "NewA"}, {Name: "NewB"}}
	first, ok := decl.FirstConstructor()
	require.True(t, ok)
	assert.Equal(t, "NewA", first.Name)

	plain := &Declaration{Kind: KindStruct, Package: "p", Name: "S"}
	assert.False(t, plain.HasAspects())

	plain.Annotations = []*annotations.ParsedAnnotation{annotation(t, "//tether::log")}
	assert.True(t, plain.HasAspects())
}

func TestMethodReturnsError(t *testing.T) {
	m := Method{Results: []Field{{Type: TypeRef{Name: "Receipt", Expr: "Receipt"}}, {Type: TypeRef{Name: "error", Expr: "error"}}}}
	assert.True(t, m.ReturnsError())
	assert.False(t, (&Method{}).ReturnsError())
}

func TestBuilder(t *testing.T) {
	builder := NewBuilder(3)
	require.NoError(t, builder.Add(
		&Declaration{Kind: KindStruct, Package: "b", Name: "Two"},
		&Declaration{Kind: KindInterface, Package: "a", Name: "One"},
	))

	err := builder.Add(&Declaration{Kind: KindStruct, Package: "b", Name: "Two", File: "two.go", Line: 9})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate declaration b.Two")

	assert.Error(t, builder.Add(&Declaration{Package: "a"}))

	table := builder.Build()
	assert.Equal(t, 3, table.Round())
	assert.Equal(t, 2, table.Len())

	decl, ok := table.Lookup("a.One")
	require.True(t, ok)
	assert.Equal(t, KindInterface, decl.Kind)

	_, ok = table.Lookup("a.Two")
	assert.False(t, ok)

	names := []string{}
	for _, d := range table.Declarations() {
		names = append(names, d.QualifiedName())
	}
	assert.Equal(t, []string{"a.One", "b.Two"}, names)
	assert.Len(t, table.Package("b"), 1)

	// Later additions do not leak into a built table
	require.NoError(t, builder.Add(&Declaration{Kind: KindStruct, Package: "c", Name: "Three"}))
	_, ok = table.Lookup("c.Three")
	assert.False(t, ok)
}

func TestMemoryTableConcurrentReads(t *testing.T) {
	builder := NewBuilder(1)
	require.NoError(t, builder.Add(&Declaration{Kind: KindInterface, Package: "p", Name: "Foo"}))
	table := builder.Build()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, ok := table.Lookup("p.Foo")
				assert.True(t, ok)
			}
		}()
	}
	wg.Wait()
}

const manifestYAML = `
round: 2
declarations:
  - package: example.com/shop/payments
    name: PaymentClient
    kind: interface
    enclosing: [Api]
    annotations: ["//tether::client"]
    methods:
      - name: Charge
        annotations: ["//tether::retry -Attempts=5"]
  - package: example.com/shop/payments
    name: Api_PaymentClientClient
    kind: struct
    constructors:
      - name: NewApi_PaymentClientClient
        pointer: true
`

func TestLoadManifest(t *testing.T) {
	table, err := LoadManifest(strings.NewReader(manifestYAML))
	require.NoError(t, err)
	assert.Equal(t, 2, table.Round())

	iface, ok := table.Lookup("example.com/shop/payments.Api.PaymentClient")
	require.True(t, ok)
	assert.Equal(t, KindInterface, iface.Kind)
	assert.Equal(t, "payments", iface.PackageName)
	assert.Equal(t, []string{"Api"}, iface.Enclosing)
	assert.True(t, iface.HasAnnotation(annotations.ClientAnnotation))
	require.Len(t, iface.Methods, 1)
	assert.Equal(t, 5, iface.Methods[0].Annotations[0].GetInt("Attempts"))

	impl, ok := table.Lookup("example.com/shop/payments.Api_PaymentClientClient")
	require.True(t, ok)
	ctor, ok := impl.FirstConstructor()
	require.True(t, ok)
	assert.Equal(t, "NewApi_PaymentClientClient", ctor.Name)
	assert.True(t, ctor.Pointer)
}

func TestLoadManifestEmpty(t *testing.T) {
	table, err := LoadManifest(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
}

func TestLoadManifestErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		message string
	}{
		{"bad yaml", "declarations: [", "failed to parse manifest"},
		{"unknown field", "declarations:\n  - name: A\n    package: p\n    kind: struct\n    color: red\n", "failed to parse manifest"},
		{"missing name", "declarations:\n  - package: p\n    kind: struct\n", "declaration #1: name is required"},
		{"missing package", "declarations:\n  - name: A\n    kind: struct\n", "package is required for A"},
		{"unknown kind", "declarations:\n  - name: A\n    package: p\n    kind: class\n", "unknown declaration kind: class"},
		{"bad annotation", "declarations:\n  - name: A\n    package: p\n    kind: interface\n    annotations: [\"//tether::nope\"]\n", "unknown annotation type 'nope'"},
		{"duplicate", "declarations:\n  - {name: A, package: p, kind: struct}\n  - {name: A, package: p, kind: struct}\n", "duplicate declaration p.A"},
		{"constructor without name", "declarations:\n  - name: A\n    package: p\n    kind: struct\n    constructors: [{pointer: true}]\n", "constructor name is required on A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadManifest(strings.NewReader(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}
