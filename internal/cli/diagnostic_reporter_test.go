package cli

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/toyz/tether/internal/errors"
)

func newTestReporter(verbose bool) (*DiagnosticReporter, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	reporter := NewDiagnosticReporter(verbose)
	reporter.SetOutput(&out, &errOut)
	return reporter, &out, &errOut
}

func TestDiagnosticReporter_ReportError(t *testing.T) {
	t.Run("tether error", func(t *testing.T) {
		reporter, out, errOut := newTestReporter(false)
		err := errors.New(errors.GenerationErrorCode, "cannot generate Cache__AopProxy").
			WithLocation(errors.SourceLocation{File: "cache.go", Line: 12}).
			WithContext("type_name", "Cache").
			WithContext("source", "package cache\n").
			WithSuggestion("Declare a non-variadic constructor first")

		reporter.ReportError(err)

		output := errOut.String()
		assert.Empty(t, out.String())
		assert.Contains(t, output, "ERROR: Code Generation Failed")
		assert.Contains(t, output, "Type: GenerationError\n")
		assert.Contains(t, output, "Message: cache.go:12: cannot generate Cache__AopProxy")
		assert.Contains(t, output, "   Type Name: Cache\n")
		assert.NotContains(t, output, "Source")
		assert.Contains(t, output, "   1. Declare a non-variadic constructor first\n")
	})

	t.Run("verbose shows source and cause chain", func(t *testing.T) {
		reporter, _, errOut := newTestReporter(true)
		cause := fmt.Errorf("outer: %w", fmt.Errorf("inner"))
		err := errors.WrapGenerateError("autogen_cache_aop_proxy.go", cause).
			WithContext("source", "package cache\n\nfunc broken(\n")

		reporter.ReportError(err)

		output := errOut.String()
		assert.Contains(t, output, "   Source:\n      package cache\n")
		assert.Contains(t, output, "Error Chain:\n   1. outer: inner\n   2. inner\n")
	})

	t.Run("multiple errors", func(t *testing.T) {
		reporter, _, errOut := newTestReporter(false)
		errs := errors.NewMultipleErrors()
		errs.Add(errors.NewMissingDependencyError("example.com/shop.NewCheckout", "example.com/shop.Store", nil))
		errs.Add(errors.NewContractError("example.com/shop.PaymentClientClient", "it has no constructors"))

		reporter.ReportError(errs)

		output := errOut.String()
		assert.Contains(t, output, "[1/2]\nType: DependencyError")
		assert.Contains(t, output, "[2/2]\nType: ContractError")
	})

	t.Run("convergence error lists pending requests", func(t *testing.T) {
		reporter, _, errOut := newTestReporter(false)
		reporter.ReportError(errors.NewRoundLimitError(10, []string{"example.com/shop/payments.PaymentClient (client, needed by example.com/shop.NewCheckout)"}))

		assert.Contains(t, errOut.String(), "Pending:\n   - example.com/shop/payments.PaymentClient (client, needed by example.com/shop.NewCheckout)\n")
	})

	t.Run("plain error", func(t *testing.T) {
		reporter, _, errOut := newTestReporter(false)
		reporter.ReportError(fmt.Errorf("disk full"))

		assert.Contains(t, errOut.String(), "Message: disk full\n")
		assert.NotContains(t, errOut.String(), "Type:")
	})
}

func TestDiagnosticReporter_ReportSuccess(t *testing.T) {
	reporter, out, errOut := newTestReporter(false)
	reporter.ReportSuccess(&GenerationSummary{
		RunID:      "run-1",
		Rounds:     3,
		Packages:   2,
		Components: 1,
		Bindings:   1,
		Clients:    1,
		Proxies:    1,
		Modules:    1,
		Files:      []string{"payments/autogen_payment_client_client.go"},
	})

	output := out.String()
	assert.Empty(t, errOut.String())
	assert.Contains(t, output, "Run run-1 finished after 3 round(s)\n")
	assert.Contains(t, output, "Processed 2 packages\n")
	assert.Contains(t, output, "Generated 1 aspect proxies\n")
	assert.Contains(t, output, "  - payments/autogen_payment_client_client.go\n")
	assert.NotContains(t, output, "Found 0")
}
