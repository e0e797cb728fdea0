package tether

import (
	"context"
	"log/slog"
	"strconv"
	"time"
)

// Aspect is one aspect annotation of a proxied method, with its parameters as written
type Aspect struct {
	Kind   string // log, retry or timeout
	Params map[string]string
}

// Param returns a parameter value or def when absent
func (a Aspect) Param(name, def string) string {
	if v, ok := a.Params[name]; ok && v != "" {
		return v
	}
	return def
}

// Invocation describes one call passing through an aspect proxy
type Invocation struct {
	Service   string // Proxied type name
	Method    string
	Operation string
	Args      []any
	Aspects   []Aspect
}

// Aspect returns the first aspect of the given kind
func (inv *Invocation) Aspect(kind string) (Aspect, bool) {
	for _, a := range inv.Aspects {
		if a.Kind == kind {
			return a, true
		}
	}
	return Aspect{}, false
}

// Call is the remainder of an interceptor chain
type Call func(ctx context.Context) error

// Interceptor wraps a proxied call. It must call next to continue the chain.
type Interceptor func(ctx context.Context, inv *Invocation, next Call) error

// Chain runs call through interceptors, first interceptor outermost
func Chain(ctx context.Context, inv *Invocation, interceptors []Interceptor, call Call) error {
	next := call
	for i := len(interceptors) - 1; i >= 0; i-- {
		interceptor, rest := interceptors[i], next
		if interceptor == nil {
			continue
		}
		next = func(ctx context.Context) error {
			return interceptor(ctx, inv, rest)
		}
	}
	return next(ctx)
}

// DefaultInterceptors returns the interceptors implementing the built-in aspects
func DefaultInterceptors(logger *slog.Logger) []Interceptor {
	return []Interceptor{Logging(logger), Retry(), Timeout()}
}

// Logging logs calls carrying a log aspect at the aspect's level
func Logging(logger *slog.Logger) Interceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, inv *Invocation, next Call) error {
		aspect, ok := inv.Aspect("log")
		if !ok {
			return next(ctx)
		}
		level := parseLevel(aspect.Param("Level", "info"))
		start := time.Now()
		err := next(ctx)
		attrs := []any{"service", inv.Service, "method", inv.Method, "duration", time.Since(start)}
		if err != nil {
			logger.Log(ctx, max(level, slog.LevelWarn), "call failed", append(attrs, "error", err)...)
			return err
		}
		logger.Log(ctx, level, "call completed", attrs...)
		return nil
	}
}

// Retry re-runs calls carrying a retry aspect until they succeed, the context
// ends or Attempts calls have been made
func Retry() Interceptor {
	return func(ctx context.Context, inv *Invocation, next Call) error {
		aspect, ok := inv.Aspect("retry")
		if !ok {
			return next(ctx)
		}
		attempts, err := strconv.Atoi(aspect.Param("Attempts", "3"))
		if err != nil || attempts < 1 {
			attempts = 1
		}
		for i := 0; ; i++ {
			err = next(ctx)
			if err == nil || i+1 >= attempts || ctx.Err() != nil {
				return err
			}
		}
	}
}

// Timeout bounds calls carrying a timeout aspect
func Timeout() Interceptor {
	return func(ctx context.Context, inv *Invocation, next Call) error {
		aspect, ok := inv.Aspect("timeout")
		if !ok {
			return next(ctx)
		}
		d, err := time.ParseDuration(aspect.Param("duration", ""))
		if err != nil || d <= 0 {
			return next(ctx)
		}
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return next(ctx)
	}
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
