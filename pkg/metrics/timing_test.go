package metrics

import (
	"testing"
	"time"
)

func TestRecordAndStats(t *testing.T) {
	SetEnabled(true)
	m := newTimingMetric("test_op")
	m.Record(10 * time.Millisecond)
	m.Record(30 * time.Millisecond)
	m.Record(20 * time.Millisecond)

	st := m.Stats()
	if st.Count != 3 {
		t.Errorf("count = %d, want 3", st.Count)
	}
	if st.AvgMs != 20 {
		t.Errorf("avg = %v, want 20", st.AvgMs)
	}
	if st.MaxMs != 30 || st.MinMs != 10 {
		t.Errorf("min/max = %v/%v, want 10/30", st.MinMs, st.MaxMs)
	}

	m.Reset()
	if m.Count() != 0 || m.AvgNs() != 0 {
		t.Error("reset did not clear the metric")
	}
}

func TestTimer(t *testing.T) {
	SetEnabled(true)
	m := newTimingMetric("timed")
	done := Timer(m)
	time.Sleep(time.Millisecond)
	done()
	if m.Count() != 1 {
		t.Fatalf("count = %d, want 1", m.Count())
	}
	if m.AvgNs() <= 0 {
		t.Error("timer recorded no elapsed time")
	}
}

func TestDisabledSkipsRecording(t *testing.T) {
	SetEnabled(false)
	defer SetEnabled(true)
	m := newTimingMetric("off")
	m.Record(time.Second)
	Timer(m)()
	if m.Count() != 0 {
		t.Errorf("count = %d, want 0 while disabled", m.Count())
	}
}

func TestAllTimingStatsFiltersEmpty(t *testing.T) {
	SetEnabled(true)
	ResetAll()
	UIRender.Record(5 * time.Millisecond)
	stats := AllTimingStats()
	if len(stats) != 1 || stats[0].Name != "ui_render" {
		t.Errorf("stats = %+v, want just ui_render", stats)
	}
	ResetAll()
}
