// Package naming holds the name contract shared by the generators and the
// resolvers. Generated declarations are found by name only, so both sides must
// build names through these functions.
package naming

import (
	"strings"
	"unicode"

	"github.com/toyz/tether/internal/symbols"
)

const (
	// ClientSuffix is appended to a client interface name to name its implementation
	ClientSuffix = "Client"
	// AopProxySuffix is appended to a declaration name to name its aspect proxy
	AopProxySuffix = "__AopProxy"
	// OuterSeparator joins enclosing declaration names into a prefix
	OuterSeparator = "_"
)

// OuterPrefix returns each enclosing declaration name followed by the
// separator, outermost first. Top-level declarations have an empty prefix.
func OuterPrefix(decl *symbols.Declaration) string {
	var b strings.Builder
	for _, outer := range decl.Enclosing {
		b.WriteString(outer)
		b.WriteString(OuterSeparator)
	}
	return b.String()
}

// ClientName is the name of the generated implementation of a client interface
func ClientName(decl *symbols.Declaration) string {
	return OuterPrefix(decl) + decl.Name + ClientSuffix
}

// AopProxyName is the name of the aspect proxy wrapping a generated declaration
func AopProxyName(decl *symbols.Declaration) string {
	return OuterPrefix(decl) + decl.Name + AopProxySuffix
}

// Qualified joins an import path and a declaration name into a lookup key
func Qualified(importPath, name string) string {
	return importPath + "." + name
}

// ConstructorName is the conventional constructor for a generated declaration
func ConstructorName(typeName string) string {
	return "New" + typeName
}

// FileName derives the generated file name for a declaration, e.g.
// PaymentClientClient -> autogen_payment_client_client.go
func FileName(typeName, kind string) string {
	name := "autogen_" + SnakeCase(typeName)
	if kind != "" {
		name += "_" + kind
	}
	return name + ".go"
}

// SnakeCase converts a Go identifier to snake case. Runs of upper case letters
// stay together (HTTPClient -> http_client) and underscores collapse.
func SnakeCase(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if r == '_' {
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "_") {
				b.WriteRune('_')
			}
			continue
		}
		if unicode.IsUpper(r) {
			if i > 0 && b.Len() > 0 && !strings.HasSuffix(b.String(), "_") {
				prevLower := unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if prevLower || (unicode.IsUpper(runes[i-1]) && nextLower) {
					b.WriteRune('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSuffix(b.String(), "_")
}
