// Package telemetry defines a push-only metrics port: a write-only
// stream of typed metric events the core emits but never reads back.
// The sink itself (Grafana, a metrics collector) is an external
// collaborator; the core only needs something to push into.
package telemetry

import "log/slog"

// Kind distinguishes the three metric shapes the core emits.
type Kind string

const (
	Count   Kind = "count"
	Gauge   Kind = "gauge"
	Latency Kind = "latency"
)

// Event is one typed metric emission.
type Event struct {
	Kind   Kind
	Name   string
	Value  float64
	Tags   map[string]string
}

// Sink receives telemetry events. Implementations must not block the
// caller meaningfully; the core treats telemetry as best-effort.
type Sink interface {
	Emit(Event)
}

// LogSink is the default Sink: it writes every event through slog at
// debug level, favoring structured logging over a bespoke metrics
// client when no collector is wired up.
type LogSink struct {
	Log *slog.Logger
}

func (s LogSink) Emit(e Event) {
	log := s.Log
	if log == nil {
		log = slog.Default()
	}
	log.Debug("telemetry", "kind", string(e.Kind), "name", e.Name, "value", e.Value, "tags", e.Tags)
}

// Noop discards every event; useful in tests that don't care about
// telemetry assertions.
type Noop struct{}

func (Noop) Emit(Event) {}

// EmitCount emits a counter increment of delta for name.
func EmitCount(s Sink, name string, delta float64, tags map[string]string) {
	if s == nil {
		return
	}
	s.Emit(Event{Kind: Count, Name: name, Value: delta, Tags: tags})
}

// EmitGauge emits a point-in-time gauge reading.
func EmitGauge(s Sink, name string, value float64, tags map[string]string) {
	if s == nil {
		return
	}
	s.Emit(Event{Kind: Gauge, Name: name, Value: value, Tags: tags})
}

// EmitLatency emits a latency observation in milliseconds.
func EmitLatency(s Sink, name string, ms float64, tags map[string]string) {
	if s == nil {
		return
	}
	s.Emit(Event{Kind: Latency, Name: name, Value: ms, Tags: tags})
}
