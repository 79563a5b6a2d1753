package observer

import (
	"context"
	"time"

	quackquery "github.com/QuackQuery/QuackQuery"

	"go.opentelemetry.io/otel/attribute"
	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// ObservedCapability wraps a quackquery.Capability with OTEL instrumentation.
// Parsing stays untouched; only executions are traced and counted.
type ObservedCapability struct {
	inner quackquery.Capability
	inst  *Instruments
}

// WrapCapability returns an instrumented capability.
func WrapCapability(inner quackquery.Capability, inst *Instruments) *ObservedCapability {
	return &ObservedCapability{inner: inner, inst: inst}
}

func (o *ObservedCapability) Name() string { return o.inner.Name() }

func (o *ObservedCapability) Parse(text string) (quackquery.Intent, bool) {
	return o.inner.Parse(text)
}

func (o *ObservedCapability) Execute(ctx context.Context, intent quackquery.Intent) quackquery.ExecResult {
	ctx, span := o.inst.Tracer.Start(ctx, "capability.execute", trace.WithAttributes(
		AttrCapabilityName.String(o.inner.Name()),
		AttrCapabilityOperation.String(intent.Operation),
	))
	defer span.End()
	start := time.Now()

	result := o.inner.Execute(ctx, intent)

	durationMs := float64(time.Since(start).Milliseconds())
	status := "ok"
	if !result.OK() {
		status = "error"
	}

	span.SetAttributes(
		AttrCapabilityStatus.String(status),
		AttrCapabilityResultLength.Int(len(result.Content)),
	)

	o.inst.CapabilityExecutions.Add(ctx, 1, metric.WithAttributes(
		AttrCapabilityName.String(o.inner.Name()),
		AttrCapabilityOperation.String(intent.Operation),
		attribute.String("status", status),
	))
	o.inst.CapabilityDuration.Record(ctx, durationMs, metric.WithAttributes(
		AttrCapabilityName.String(o.inner.Name()),
	))

	// Structured log
	var rec otellog.Record
	rec.SetSeverity(otellog.SeverityInfo)
	rec.SetBody(otellog.StringValue("capability executed"))
	rec.AddAttributes(
		otellog.String("capability.name", o.inner.Name()),
		otellog.String("capability.operation", intent.Operation),
		otellog.String("capability.status", status),
		otellog.Int("capability.result_length", len(result.Content)),
		otellog.Float64("capability.duration_ms", durationMs),
	)
	o.inst.Logger.Emit(ctx, rec)

	return result
}
