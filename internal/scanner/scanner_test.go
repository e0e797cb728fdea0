package scanner

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/tether/internal/annotations"
	"github.com/toyz/tether/internal/errors"
	"github.com/toyz/tether/internal/symbols"
)

const importPath = "example.com/shop/payments"

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

func findDecl(info *PackageInfo, name string) *symbols.Declaration {
	for _, decl := range info.Declarations {
		if decl.Name == name {
			return decl
		}
	}
	return nil
}

const clientSource = `package payments

import (
	"context"
	"time"

	store "example.com/shop/storage"
)

// PaymentClient talks to the payment service.
//tether::client -Name=payments
//tether::retry -Attempts=4
type PaymentClient interface {
	// Charge takes money.
	//tether::timeout 2s
	Charge(ctx context.Context, amount int64, currency string) (string, error)
	Refund(ctx context.Context, id string, opts ...string) error
}

type (
	// Receipt is returned by the service
	Receipt struct{ ID string }

	Amount = int64

	Currency string

	Handler func(ctx context.Context) error
)

type Checkout struct {
	client PaymentClient
	db     *store.DB
	ttl    time.Duration
}

//tether::component -Tags=primary
//tether::tag db primary,rw
func NewCheckout(client PaymentClient, db *store.DB, _ time.Duration) (*Checkout, error) {
	return &Checkout{client: client, db: db}, nil
}

func NewReceipt() Receipt { return Receipt{} }

func helper() {}

func (c *Checkout) Pay(ctx context.Context) error { return nil }
`

func TestScanPackage(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"client.go":      clientSource,
		"client_test.go": "package payments\n\n//tether::nonsense\nfunc TestX() {}\n",
		"README.md":      "not go",
	})

	info, err := New().ScanPackage(dir, importPath)
	require.NoError(t, err)

	assert.Equal(t, "payments", info.Name)
	assert.Equal(t, importPath, info.ImportPath)
	assert.Equal(t, []string{filepath.Join(dir, "client.go")}, info.Files)
	assert.False(t, info.HasGenerated())

	t.Run("kinds", func(t *testing.T) {
		kinds := map[string]symbols.Kind{}
		for _, decl := range info.Declarations {
			kinds[decl.Name] = decl.Kind
		}
		assert.Equal(t, map[string]symbols.Kind{
			"PaymentClient": symbols.KindInterface,
			"Receipt":       symbols.KindStruct,
			"Amount":        symbols.KindAlias,
			"Currency":      symbols.KindNamed,
			"Handler":       symbols.KindFunc,
			"Checkout":      symbols.KindStruct,
		}, kinds)
	})

	t.Run("client interface", func(t *testing.T) {
		decl := findDecl(info, "PaymentClient")
		require.NotNil(t, decl)
		assert.Equal(t, importPath+".PaymentClient", decl.QualifiedName())
		assert.Equal(t, "payments", decl.PackageName)
		assert.True(t, decl.HasAnnotation(annotations.ClientAnnotation))
		assert.Equal(t, "payments", decl.Annotation(annotations.ClientAnnotation).GetString("Name"))
		assert.Equal(t, "PaymentClient", decl.Annotation(annotations.ClientAnnotation).Target)
		assert.True(t, decl.HasAspects())
		assert.Len(t, decl.Imports, 3)

		require.Len(t, decl.Methods, 2)
		charge := decl.Methods[0]
		assert.Equal(t, "Charge", charge.Name)
		require.Len(t, charge.Annotations, 1)
		assert.Equal(t, annotations.TimeoutAnnotation, charge.Annotations[0].Type)
		require.Len(t, charge.Params, 3)
		assert.Equal(t, "ctx", charge.Params[0].Name)
		assert.Equal(t, "context", charge.Params[0].Type.Package)
		assert.Equal(t, "Context", charge.Params[0].Type.Name)
		assert.Equal(t, "int64", charge.Params[1].Type.Expr)
		assert.Equal(t, "", charge.Params[1].Type.Package)
		assert.True(t, charge.ReturnsError())

		refund := decl.Methods[1]
		assert.True(t, refund.Variadic)
		assert.Equal(t, "...string", refund.Params[2].Type.Expr)
	})

	t.Run("constructors and methods", func(t *testing.T) {
		checkout := findDecl(info, "Checkout")
		require.NotNil(t, checkout)
		require.Len(t, checkout.Constructors, 1)
		assert.Equal(t, "NewCheckout", checkout.Constructors[0].Name)
		assert.True(t, checkout.Constructors[0].Pointer)
		require.Len(t, checkout.Methods, 1)
		assert.Equal(t, "Pay", checkout.Methods[0].Name)

		receipt := findDecl(info, "Receipt")
		require.Len(t, receipt.Constructors, 1)
		assert.False(t, receipt.Constructors[0].Pointer)
	})

	t.Run("components", func(t *testing.T) {
		require.Len(t, info.Components, 1)
		component := info.Components[0]
		assert.Equal(t, "NewCheckout", component.Name)
		assert.Equal(t, importPath+".NewCheckout", component.QualifiedName())
		assert.Equal(t, importPath+".Checkout", component.Provides.QualifiedName())
		assert.True(t, component.Provides.Pointer)
		assert.True(t, component.ReturnsError)
		assert.Equal(t, []string{"primary"}, component.Tags.Values())

		require.Len(t, component.Dependencies, 3)
		assert.Equal(t, "client", component.Dependencies[0].Param)
		assert.Equal(t, importPath+".PaymentClient", component.Dependencies[0].Request.Type.QualifiedName())
		assert.True(t, component.Dependencies[0].Request.Tags.Empty())

		db := component.Dependencies[1]
		assert.Equal(t, "example.com/shop/storage.DB", db.Request.Type.QualifiedName())
		assert.True(t, db.Request.Type.Pointer)
		assert.Equal(t, []string{"primary", "rw"}, db.Request.Tags.Values())

		assert.Equal(t, "arg2", component.Dependencies[2].Param)
		assert.Equal(t, "time", component.Dependencies[2].Request.Type.Package)
	})
}

func TestScanPackageConstructorOrder(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a_types.go": "package p\n\ntype Svc struct{}\n\nfunc NewSvc() *Svc { return &Svc{} }\n",
		"b_more.go":  "package p\n\nfunc NewSvcWithDefaults() *Svc { return NewSvc() }\n\nfunc NewSvcValue() Svc { return Svc{} }\n",
	})

	info, err := New().ScanPackage(dir, "example.com/p")
	require.NoError(t, err)

	svc := findDecl(info, "Svc")
	require.NotNil(t, svc)
	var names []string
	for _, ctor := range svc.Constructors {
		names = append(names, ctor.Name)
	}
	assert.Equal(t, []string{"NewSvc", "NewSvcWithDefaults", "NewSvcValue"}, names)
}

func TestScanPackageGeneratedFiles(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"api.go": "package p\n\n//tether::client\ntype Foo interface{ Do() error }\n",
		"autogen_foo_client.go": "// Code generated by tether. DO NOT EDIT.\n\npackage p\n\n" +
			"type FooClient struct{}\n\nfunc NewFooClient() *FooClient { return &FooClient{} }\n",
	})

	info, err := New().ScanPackage(dir, "example.com/p")
	require.NoError(t, err)
	assert.True(t, info.HasGenerated())

	gen := findDecl(info, "FooClient")
	require.NotNil(t, gen)
	assert.True(t, gen.Generated)
	assert.Len(t, gen.Constructors, 1)
	assert.False(t, findDecl(info, "Foo").Generated)
}

func TestScanPackageErrors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		message string
	}{
		{"malformed annotation", "package p\n\n//tether::retry -Attempts=zero\ntype S struct{}\n", "client.go:3:1: retry annotation parameter 'Attempts' is invalid"},
		{"unknown annotation", "package p\n\n//tether::nope\ntype S struct{}\n", "unknown annotation type 'nope'"},
		{"component on type", "package p\n\n//tether::component\ntype S struct{}\n", "component annotation belongs on a constructor function"},
		{"client on method", "package p\n\ntype I interface {\n\t//tether::client\n\tDo()\n}\n", "client annotation is not allowed on method I.Do"},
		{"aspect on function", "package p\n\n//tether::log\nfunc Run() {}\n", "log annotation is not allowed on function Run"},
		{"tag without component", "package p\n\n//tether::tag x a\nfunc Run(x int) {}\n", "requires //tether::component"},
		{"tag on unknown param", "package p\n\ntype S struct{}\n\n//tether::component\n//tether::tag y a\nfunc NewS(x int) *S { return nil }\n", "unknown parameter y of NewS"},
		{"component without result", "package p\n\n//tether::component\nfunc Run() {}\n", "component Run must return a value"},
		{"component bad second result", "package p\n\ntype S struct{}\n\n//tether::component\nfunc NewS() (*S, int) { return nil, 0 }\n", "second result must be error"},
		{"generic client", "package p\n\n//tether::client\ntype I[T any] interface{ Do(T) }\n", "must not have type parameters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeFiles(t, map[string]string{"client.go": tt.source})
			info, err := New().ScanPackage(dir, "example.com/p")
			require.Error(t, err)
			assert.Nil(t, info)
			assert.Contains(t, err.Error(), tt.message)

			var multi *errors.MultipleErrors
			assert.True(t, stderrors.As(err, &multi))
		})
	}
}

func TestScanPackageCollectsAllErrors(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.go": "package p\n\n//tether::nope\ntype A struct{}\n\n//tether::log\nfunc Run() {}\n",
	})
	_, err := New().ScanPackage(dir, "example.com/p")

	var multi *errors.MultipleErrors
	require.True(t, stderrors.As(err, &multi))
	assert.Len(t, multi.Errors, 2)
}

func TestScanPackageDirectoryProblems(t *testing.T) {
	t.Run("no go files", func(t *testing.T) {
		_, err := New().ScanPackage(t.TempDir(), "example.com/p")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no Go files")
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := New().ScanPackage(filepath.Join(t.TempDir(), "missing"), "example.com/p")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read file")
	})

	t.Run("mixed packages", func(t *testing.T) {
		dir := writeFiles(t, map[string]string{
			"a.go": "package a\n",
			"b.go": "package b\n",
		})
		_, err := New().ScanPackage(dir, "example.com/p")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "multiple packages found")
	})

	t.Run("syntax error", func(t *testing.T) {
		dir := writeFiles(t, map[string]string{"a.go": "package a\nfunc {"})
		_, err := New().ScanPackage(dir, "example.com/p")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse")
	})
}

func TestAssumedPackageName(t *testing.T) {
	tests := map[string]string{
		"context":                             "context",
		"github.com/google/uuid":              "uuid",
		"gopkg.in/yaml.v3":                    "yaml",
		"github.com/alecthomas/participle/v2": "participle",
		"github.com/mattn/go-isatty":          "isatty",
		"github.com/jessevdk/go-flags":        "flags",
	}
	for path, want := range tests {
		assert.Equal(t, want, AssumedPackageName(path), path)
	}
}
