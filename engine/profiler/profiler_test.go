package profiler

import (
	"testing"
	"time"
)

func TestTickReportsOncePerInterval(t *testing.T) {
	now := time.Unix(0, 0)
	p := NewProfiler(WithInterval(time.Second), withClock(func() time.Time { return now }))

	for i := 0; i < 59; i++ {
		now = now.Add(time.Second / 60)
		if p.Tick(uint64(i)) {
			t.Fatalf("tick %d reported before the interval elapsed", i)
		}
	}
	now = now.Add(time.Second / 30)
	if !p.Tick(60) {
		t.Fatalf("expected a report once the interval elapsed")
	}
	if p.frameCount != 0 || p.lastCaptured != 60 {
		t.Fatalf("counters not reset: frames=%d captured=%d", p.frameCount, p.lastCaptured)
	}
	if p.Tick(61) {
		t.Fatalf("report right after reset")
	}
}

func TestWithIntervalIgnoresNonPositive(t *testing.T) {
	p := NewProfiler(WithInterval(0))
	if p.updateInterval != time.Second {
		t.Fatalf("interval = %v, want 1s", p.updateInterval)
	}
}
