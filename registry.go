package quackquery

import (
	"context"
	"fmt"
	"log/slog"
)

// Probe describes one optional capability attempt. Init runs exactly once at
// registry construction; a returned error marks the capability unavailable
// for the lifetime of the process without affecting any other probe.
type Probe struct {
	// Name identifies the capability in availability queries and logs.
	Name string
	// Init constructs the capability. Errors are terminal for this
	// capability only.
	Init func() (Capability, error)
}

// Registry holds the capabilities that initialized successfully, in probe
// declaration order. Dispatch tries parsers in that fixed order and takes the
// first match; construction order is therefore the priority order.
type Registry struct {
	order     []string
	caps      map[string]Capability
	probeErrs map[string]error
	logger    *slog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// RegistryLogger sets the structured logger for probe outcomes.
// If not set, a no-op logger is used.
func RegistryLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) { r.logger = l }
}

// NewRegistry probes each capability in order. A probe failure (error or
// panic inside Init) is recorded and skipped; remaining probes still run.
func NewRegistry(probes []Probe, opts ...RegistryOption) *Registry {
	r := &Registry{
		caps:      make(map[string]Capability),
		probeErrs: make(map[string]error),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = nopLogger
	}

	for _, p := range probes {
		cap, err := runProbe(p)
		if err != nil {
			r.probeErrs[p.Name] = err
			r.logger.Warn("capability unavailable", "capability", p.Name, "err", err)
			continue
		}
		r.order = append(r.order, p.Name)
		r.caps[p.Name] = cap
		r.logger.Info("capability ready", "capability", p.Name)
	}
	return r
}

// runProbe isolates a single Init call so a panicking probe cannot take the
// other capabilities down with it.
func runProbe(p Probe) (cap Capability, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			cap, err = nil, fmt.Errorf("probe panic: %v", rec)
		}
	}()
	cap, err = p.Init()
	if err == nil && cap == nil {
		err = fmt.Errorf("probe returned nil capability")
	}
	return cap, err
}

// Instrument replaces every available capability with wrap(capability).
// Intended for observability decorators; call it once, before Dispatch.
func (r *Registry) Instrument(wrap func(Capability) Capability) {
	for name, cap := range r.caps {
		r.caps[name] = wrap(cap)
	}
}

// Available reports whether the named capability initialized successfully.
func (r *Registry) Available(name string) bool {
	_, ok := r.caps[name]
	return ok
}

// Names returns the available capability names in priority order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of available capabilities.
func (r *Registry) Len() int { return len(r.order) }

// ProbeError returns the initialization error for an unavailable capability,
// or nil if the capability is available or was never probed.
func (r *Registry) ProbeError(name string) error {
	return r.probeErrs[name]
}

// Dispatch tries each available capability's parser in priority order and
// returns the first match. ok is false when no parser recognizes the text,
// which means the caller should forward it to the assistant instead.
func (r *Registry) Dispatch(text string) (Capability, Intent, bool) {
	for _, name := range r.order {
		cap := r.caps[name]
		if intent, ok := cap.Parse(text); ok {
			return cap, intent, true
		}
	}
	return nil, Intent{}, false
}

// Execute dispatches and runs text in one step. The second return is false
// when no capability matched; execution failures still return true with the
// failure inside the ExecResult.
func (r *Registry) Execute(ctx context.Context, text string) (ExecResult, bool) {
	cap, intent, ok := r.Dispatch(text)
	if !ok {
		return ExecResult{}, false
	}
	return cap.Execute(ctx, intent), true
}

// nopLogger is a logger that discards all output. Used when no logger is set.
var nopLogger = slog.New(discardHandler{})

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }
