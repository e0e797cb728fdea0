package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/toyz/tether/internal/symbols"
)

func TestClientAndProxyNames(t *testing.T) {
	tests := []struct {
		name      string
		decl      *symbols.Declaration
		client    string
		outer     string
		proxyOfIt string
	}{
		{
			name:      "top level",
			decl:      &symbols.Declaration{Package: "p", Name: "Foo"},
			client:    "FooClient",
			outer:     "",
			proxyOfIt: "Foo__AopProxy",
		},
		{
			name:      "client suffix doubles",
			decl:      &symbols.Declaration{Package: "p", Name: "PaymentClient"},
			client:    "PaymentClientClient",
			proxyOfIt: "PaymentClient__AopProxy",
		},
		{
			name:      "nested once",
			decl:      &symbols.Declaration{Package: "p", Name: "Foo", Enclosing: []string{"Api"}},
			client:    "Api_FooClient",
			outer:     "Api_",
			proxyOfIt: "Api_Foo__AopProxy",
		},
		{
			name:      "nested twice keeps declaration order",
			decl:      &symbols.Declaration{Package: "p", Name: "Foo", Enclosing: []string{"Outer", "Inner"}},
			client:    "Outer_Inner_FooClient",
			outer:     "Outer_Inner_",
			proxyOfIt: "Outer_Inner_Foo__AopProxy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.outer, OuterPrefix(tt.decl))
			assert.Equal(t, tt.client, ClientName(tt.decl))
			assert.Equal(t, tt.proxyOfIt, AopProxyName(tt.decl))
		})
	}
}

func TestProxyOfGeneratedClient(t *testing.T) {
	iface := &symbols.Declaration{Package: "p", Name: "Foo"}
	gen := &symbols.Declaration{Package: "p", Name: ClientName(iface)}

	assert.Equal(t, "p.FooClient", Qualified(iface.Package, ClientName(iface)))
	assert.Equal(t, "p.FooClient__AopProxy", Qualified(gen.Package, AopProxyName(gen)))
}

func TestSnakeCase(t *testing.T) {
	tests := map[string]string{
		"Foo":                             "foo",
		"PaymentClientClient":             "payment_client_client",
		"HTTPClient":                      "http_client",
		"ID2Name":                         "id2_name",
		"Api_FooClient":                   "api_foo_client",
		"PaymentClientClient__AopProxy":   "payment_client_client_aop_proxy",
		"Outer_Inner_FooClient__AopProxy": "outer_inner_foo_client_aop_proxy",
		"already_snake":                   "already_snake",
	}
	for input, want := range tests {
		assert.Equal(t, want, SnakeCase(input), input)
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "autogen_payment_client_client.go", FileName("PaymentClientClient", ""))
	assert.Equal(t, "autogen_payment_client_client_aop_proxy.go", FileName("PaymentClientClient", "aop_proxy"))
	assert.Equal(t, "NewPaymentClientClient", ConstructorName("PaymentClientClient"))
}
