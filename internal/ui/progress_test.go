package ui

import (
	"strings"
	"testing"

	"irgraph/internal/pipeline"
)

func TestApplyEvent_TracksStatus(t *testing.T) {
	ch := make(chan pipeline.Event)
	m := NewProgressModel("loading", []string{"a.ll", "b.ll"}, ch).(*progressModel)

	m.applyEvent(pipeline.Event{File: "a.ll", Stage: pipeline.StageLoad, Status: pipeline.StatusWorking})
	if got := m.items[0].status; got != "loading" {
		t.Fatalf("status = %q, want loading", got)
	}
	if got := m.fraction(); got != 0.25 {
		t.Fatalf("fraction = %v, want 0.25", got)
	}

	m.applyEvent(pipeline.Event{File: "a.ll", Stage: pipeline.StageCache, Status: pipeline.StatusCached})
	m.applyEvent(pipeline.Event{File: "b.ll", Stage: pipeline.StageRead, Status: pipeline.StatusError})
	if got := m.fraction(); got != 1 {
		t.Fatalf("fraction = %v, want 1", got)
	}

	// unknown files are ignored
	if cmd := m.applyEvent(pipeline.Event{File: "c.ll", Status: pipeline.StatusDone}); cmd != nil {
		t.Fatal("unexpected command for unknown file")
	}
}

func TestView_ListsInputs(t *testing.T) {
	ch := make(chan pipeline.Event)
	m := NewProgressModel("loading", []string{"a.ll", "b.ll"}, ch).(*progressModel)
	m.Update(doneMsg{})
	out := m.View()
	for _, want := range []string{"done: loading", "a.ll", "b.ll", "queued"} {
		if !strings.Contains(out, want) {
			t.Errorf("view lacks %q:\n%s", want, out)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short.ll", 20, "short.ll"},
		{"a/very/long/path.ll", 10, "a/ve..."},
		{"abcdef", 3, "abc"},
		{"abc", 0, "abc"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
