// Package tether holds the small runtime surface generated code depends on:
// the transport generated clients call through, the interceptor chain aspect
// proxies run, and the module value listing a package's constructors.
package tether

import (
	"context"
	"fmt"
)

// Transport carries one client call to the remote service. Implementations
// fill results, which are pointers to the method's declared result types.
type Transport interface {
	Call(ctx context.Context, operation string, args []any, results []any) error
}

// TransportFunc adapts a function to the Transport interface
type TransportFunc func(ctx context.Context, operation string, args []any, results []any) error

// Call calls f
func (f TransportFunc) Call(ctx context.Context, operation string, args []any, results []any) error {
	return f(ctx, operation, args, results)
}

// CallError wraps a transport failure with the operation it belongs to
type CallError struct {
	Operation string
	Err       error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("tether: call %s: %v", e.Operation, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }

// Invoke runs a call through transport and wraps any failure in a CallError
func Invoke(ctx context.Context, transport Transport, operation string, args []any, results []any) error {
	if transport == nil {
		return &CallError{Operation: operation, Err: fmt.Errorf("no transport configured")}
	}
	if err := transport.Call(ctx, operation, args, results); err != nil {
		return &CallError{Operation: operation, Err: err}
	}
	return nil
}
