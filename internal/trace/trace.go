// Package trace is a best-effort observability side channel. Emitting an
// event must never affect the outcome of the request that produced it.
package trace

import "log/slog"

// Tracer records a named event with key/value attributes.
type Tracer interface {
	Event(name string, attrs ...any)
}

// Nop discards all events.
type Nop struct{}

func (Nop) Event(string, ...any) {}

// Slog writes events through a structured logger.
type Slog struct {
	Logger *slog.Logger
}

func (t Slog) Event(name string, attrs ...any) {
	if t.Logger == nil {
		return
	}
	t.Logger.Info("trace."+name, attrs...)
}

// Emit dispatches an event, swallowing panics so a broken tracer cannot
// fail the request.
func Emit(t Tracer, name string, attrs ...any) {
	if t == nil {
		return
	}
	defer func() {
		_ = recover()
	}()
	t.Event(name, attrs...)
}
