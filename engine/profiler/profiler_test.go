package profiler

import (
	"strings"
	"testing"
	"time"
)

func TestCountAccumulates(t *testing.T) {
	p := NewProfiler()
	p.Count("shadow.draws", 3)
	p.Count("shadow.draws", 4)
	if got := p.Counter("shadow.draws"); got != 7 {
		t.Errorf("counter = %d, want 7", got)
	}
	if got := p.Counter("missing"); got != 0 {
		t.Errorf("missing counter = %d, want 0", got)
	}
}

func TestFlushCountersAveragesAndResets(t *testing.T) {
	p := NewProfiler()
	p.Count("b", 10)
	p.Count("a", 4)

	out := p.flushCounters(2)
	if out != " | a: 2.0/frame | b: 5.0/frame" {
		t.Errorf("flush = %q", out)
	}
	if p.Counter("a") != 0 {
		t.Error("flush should reset counters")
	}
	if p.flushCounters(2) != "" {
		t.Error("empty flush should produce no output")
	}
}

func TestTickLogsAfterInterval(t *testing.T) {
	p := NewProfiler(WithUpdateInterval(time.Millisecond))
	p.Count("x", 1)
	time.Sleep(2 * time.Millisecond)
	if !p.Tick() {
		t.Fatal("expected tick to log after the interval")
	}
	if p.Counter("x") != 0 {
		t.Error("tick should reset counters")
	}
	if strings.Contains(p.flushCounters(1), "x") {
		t.Error("counter survived tick")
	}
}
