package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/toyz/tether/internal/errors"
)

// DiagnosticReporter provides user-friendly error reporting and diagnostics
type DiagnosticReporter struct {
	verbose bool
	out     io.Writer
	errOut  io.Writer
}

// NewDiagnosticReporter creates a new diagnostic reporter writing to stdout and stderr
func NewDiagnosticReporter(verbose bool) *DiagnosticReporter {
	return &DiagnosticReporter{
		verbose: verbose,
		out:     os.Stdout,
		errOut:  os.Stderr,
	}
}

// SetOutput redirects the reporter
func (r *DiagnosticReporter) SetOutput(out, errOut io.Writer) {
	r.out = out
	r.errOut = errOut
}

// ReportWarning provides user-friendly warning reporting
func (r *DiagnosticReporter) ReportWarning(message string) {
	color.New(color.FgYellow, color.Bold).Fprint(r.errOut, "! ")
	fmt.Fprintf(r.errOut, "%s\n", message)
}

// ReportError provides comprehensive error reporting with user-friendly output
func (r *DiagnosticReporter) ReportError(err error) {
	fmt.Fprintf(r.errOut, "\nERROR: Code Generation Failed\n")
	fmt.Fprintf(r.errOut, "=============================\n\n")

	var multi *errors.MultipleErrors
	if stderrors.As(err, &multi) {
		for i, item := range multi.Errors {
			if len(multi.Errors) > 1 {
				fmt.Fprintf(r.errOut, "[%d/%d]\n", i+1, len(multi.Errors))
			}
			r.reportOne(item)
		}
	} else {
		r.reportOne(err)
	}

	r.printAdditionalHelp()
	fmt.Fprintf(r.errOut, "\n")
}

func (r *DiagnosticReporter) reportOne(err error) {
	var tetherErr errors.TetherError
	if !stderrors.As(err, &tetherErr) {
		fmt.Fprintf(r.errOut, "Message: %s\n\n", err.Error())
		return
	}

	r.printErrorHeader(tetherErr.ErrorCode())
	fmt.Fprintf(r.errOut, "Message: %s\n\n", tetherErr.Error())

	var convergence *errors.ConvergenceError
	if stderrors.As(err, &convergence) && len(convergence.Pending) > 0 {
		fmt.Fprintf(r.errOut, "Pending:\n")
		for _, pending := range convergence.Pending {
			fmt.Fprintf(r.errOut, "   - %s\n", pending)
		}
		fmt.Fprintf(r.errOut, "\n")
	}

	if ctx := tetherErr.Context(); len(ctx) > 0 {
		r.printContext(ctx)
	}
	if suggestions := tetherErr.Suggestions(); len(suggestions) > 0 {
		r.printSuggestions(suggestions)
	}
	if r.verbose {
		r.printErrorChain(tetherErr.Unwrap())
	}
}

// printErrorHeader prints a formatted error header based on error code
func (r *DiagnosticReporter) printErrorHeader(code errors.ErrorCode) {
	title := code.String()
	fmt.Fprintf(r.errOut, "Type: %s\n", title)
	fmt.Fprintf(r.errOut, "%s\n\n", strings.Repeat("-", len(title)+6))
}

// printContext prints context information in a readable format. Generated
// source is only shown in verbose mode.
func (r *DiagnosticReporter) printContext(context map[string]interface{}) {
	keys := make([]string, 0, len(context))
	for key := range context {
		if key == "source" && !r.verbose {
			continue
		}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return
	}
	sort.Strings(keys)

	fmt.Fprintf(r.errOut, "Context:\n")
	for _, key := range keys {
		value := fmt.Sprint(context[key])
		if strings.Contains(value, "\n") {
			fmt.Fprintf(r.errOut, "   %s:\n%s\n", r.formatContextKey(key), indentLines(value, "      "))
			continue
		}
		fmt.Fprintf(r.errOut, "   %s: %s\n", r.formatContextKey(key), value)
	}
	fmt.Fprintf(r.errOut, "\n")
}

// formatContextKey converts snake_case keys to Title Case
func (r *DiagnosticReporter) formatContextKey(key string) string {
	parts := strings.Split(key, "_")
	for i, part := range parts {
		if len(part) > 0 {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, " ")
}

// printSuggestions prints actionable suggestions
func (r *DiagnosticReporter) printSuggestions(suggestions []string) {
	fmt.Fprintf(r.errOut, "Suggestions:\n")
	for i, suggestion := range suggestions {
		fmt.Fprintf(r.errOut, "   %d. %s\n", i+1, suggestion)
	}
	fmt.Fprintf(r.errOut, "\n")
}

func (r *DiagnosticReporter) printAdditionalHelp() {
	fmt.Fprintf(r.errOut, "For more help:\n")
	fmt.Fprintf(r.errOut, "  - Run with --verbose for more detailed output\n")
	fmt.Fprintf(r.errOut, "  - Run 'tether clean' and generate again if generated files look stale\n")
}

func (r *DiagnosticReporter) printErrorChain(cause error) {
	if cause == nil {
		return
	}
	fmt.Fprintf(r.errOut, "Error Chain:\n")
	for level := 1; cause != nil; level++ {
		fmt.Fprintf(r.errOut, "   %d. %s\n", level, cause.Error())
		cause = stderrors.Unwrap(cause)
	}
	fmt.Fprintf(r.errOut, "\n")
}

// ReportSuccess reports successful generation with summary information
func (r *DiagnosticReporter) ReportSuccess(summary *GenerationSummary) {
	fmt.Fprintf(r.out, "\nCode Generation Completed Successfully!\n")
	fmt.Fprintf(r.out, "=======================================\n\n")
	fmt.Fprintf(r.out, "Run %s finished after %d round(s)\n", summary.RunID, summary.Rounds)

	if summary.Packages > 0 {
		fmt.Fprintf(r.out, "Processed %d packages\n", summary.Packages)
	}
	if summary.Components > 0 {
		fmt.Fprintf(r.out, "Found %d components\n", summary.Components)
	}
	if summary.Bindings > 0 {
		fmt.Fprintf(r.out, "Bound %d dependencies\n", summary.Bindings)
	}
	if summary.Clients > 0 {
		fmt.Fprintf(r.out, "Generated %d clients\n", summary.Clients)
	}
	if summary.Proxies > 0 {
		fmt.Fprintf(r.out, "Generated %d aspect proxies\n", summary.Proxies)
	}
	if summary.Modules > 0 {
		fmt.Fprintf(r.out, "Generated %d modules\n", summary.Modules)
	}

	if len(summary.Files) > 0 {
		fmt.Fprintf(r.out, "\nGenerated files:\n")
		for _, file := range summary.Files {
			fmt.Fprintf(r.out, "  - %s\n", file)
		}
	}
}

func indentLines(text, prefix string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
