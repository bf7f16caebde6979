package observ

import (
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestTimer_ConcurrentPhases(t *testing.T) {
	tm := NewTimer()
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tm.End(tm.Begin("load"), "")
		}()
	}
	wg.Wait()

	r := tm.Report()
	if len(r.Phases) != 8 {
		t.Fatalf("phases = %d, want 8", len(r.Phases))
	}
	if r.TotalMS < 0 {
		t.Fatalf("negative total %v", r.TotalMS)
	}
}

func TestTimer_TrackNotesErrors(t *testing.T) {
	tm := NewTimer()
	_ = tm.Track("ok", func() error { return nil })
	err := tm.Track("bad", func() error { return errors.New("boom") })
	if err == nil {
		t.Fatal("Track must return fn's error")
	}
	r := tm.Report()
	if r.Phases[0].Note != "" || r.Phases[1].Note != "error" {
		t.Errorf("notes = %q, %q", r.Phases[0].Note, r.Phases[1].Note)
	}
	if s := tm.Summary(); !strings.Contains(s, "// error") || !strings.Contains(s, "total") {
		t.Errorf("summary:\n%s", s)
	}
}

func TestTimer_NilIsNoop(t *testing.T) {
	var tm *Timer
	tm.End(tm.Begin("x"), "")
	if r := tm.Report(); len(r.Phases) != 0 {
		t.Fatalf("nil timer recorded %v", r)
	}
}
