package telemetry

import "testing"

type captureSink struct {
	events []Event
}

func (c *captureSink) Emit(e Event) { c.events = append(c.events, e) }

func TestEmitHelpersTagEventsWithKind(t *testing.T) {
	c := &captureSink{}
	EmitCount(c, "orders_dispatched", 1, map[string]string{"order_type": "mentorship_activation"})
	EmitGauge(c, "queued_press_depth", 3, nil)
	EmitLatency(c, "enhancer_call_ms", 120.5, nil)

	if len(c.events) != 3 {
		t.Fatalf("got %d events, want 3", len(c.events))
	}
	if c.events[0].Kind != Count || c.events[0].Name != "orders_dispatched" {
		t.Fatalf("unexpected count event: %+v", c.events[0])
	}
	if c.events[1].Kind != Gauge {
		t.Fatalf("unexpected gauge event: %+v", c.events[1])
	}
	if c.events[2].Kind != Latency {
		t.Fatalf("unexpected latency event: %+v", c.events[2])
	}
}

func TestNoopDiscardsEvents(t *testing.T) {
	var s Sink = Noop{}
	EmitCount(s, "ignored", 1, nil)
}

func TestNilSinkIsSafe(t *testing.T) {
	EmitCount(nil, "ignored", 1, nil)
	EmitGauge(nil, "ignored", 1, nil)
	EmitLatency(nil, "ignored", 1, nil)
}
