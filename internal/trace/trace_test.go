package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLevelGatesScopes(t *testing.T) {
	cases := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelPhase, ScopePass, true},
		{LevelPhase, ScopeModule, false},
		{LevelDetail, ScopeModule, true},
		{LevelDetail, ScopeNode, false},
		{LevelDebug, ScopeNode, true},
	}
	for _, c := range cases {
		if got := c.level.ShouldEmit(c.scope); got != c.want {
			t.Errorf("%s.ShouldEmit(%s) = %v, want %v", c.level, c.scope, got, c.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"off", "ERROR", "Phase", "detail", "debug"} {
		if _, err := ParseLevel(s); err != nil {
			t.Errorf("ParseLevel(%q): %v", s, err)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestRingKeepsNewest(t *testing.T) {
	r := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		Point(r, ScopeNode, name, "", 0)
	}
	got := r.Snapshot()
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i, want := range []string{"c", "d", "e"} {
		if got[i].Name != want {
			t.Errorf("event %d = %q, want %q", i, got[i].Name, want)
		}
	}
}

func TestSpanNesting(t *testing.T) {
	r := NewRingTracer(16, LevelDebug)
	ctx := WithTracer(context.Background(), r)

	outer := Begin(FromContext(ctx), ScopeModule, "reconstruct:m", 0)
	inner := Begin(FromContext(ctx), ScopeNode, "function:f", outer.ID())
	inner.WithExtra("blocks", "2").End("")
	outer.End("")
	outer.End("again")

	evs := r.Snapshot()
	if len(evs) != 4 {
		t.Fatalf("got %d events, want 4", len(evs))
	}
	if evs[1].ParentID != evs[0].SpanID {
		t.Errorf("inner parent = %d, want %d", evs[1].ParentID, evs[0].SpanID)
	}
	if evs[2].Extra["blocks"] != "2" {
		t.Errorf("extra not carried to end event: %v", evs[2].Extra)
	}
	if evs[3].Kind != KindSpanEnd || evs[3].Detail != "" {
		t.Errorf("second End emitted: %+v", evs[3])
	}
}

func TestDisabledSpanIsInert(t *testing.T) {
	s := Begin(Nop, ScopeDriver, "x", 0)
	if s.ID() != 0 {
		t.Fatalf("ID = %d, want 0", s.ID())
	}
	if d := s.WithExtra("k", "v").End(""); d != 0 {
		t.Fatalf("duration = %v, want 0", d)
	}
}

func TestStreamChromeIsValidJSON(t *testing.T) {
	var buf bytes.Buffer
	st := NewStreamTracer(&buf, LevelDebug, FormatChrome)
	s := Begin(st, ScopePass, "load:a.ll", 0)
	Point(st, ScopeNode, "note", "hello", s.ID())
	s.End("")
	if err := st.Close(); err != nil {
		t.Fatal(err)
	}

	var doc struct {
		TraceEvents []map[string]any `json:"traceEvents"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid chrome trace: %v\n%s", err, buf.String())
	}
	if len(doc.TraceEvents) != 3 {
		t.Fatalf("got %d events, want 3", len(doc.TraceEvents))
	}
	if doc.TraceEvents[0]["ph"] != "B" || doc.TraceEvents[2]["ph"] != "E" {
		t.Errorf("unexpected phases: %v", doc.TraceEvents)
	}
}

func TestChromeTracksFollowSpans(t *testing.T) {
	var buf bytes.Buffer
	st := NewStreamTracer(&buf, LevelDebug, FormatChrome)
	a := Begin(st, ScopePass, "load:a.ll", 0)
	b := Begin(st, ScopePass, "load:b.ll", 0)
	Point(st, ScopeNode, "note", "", a.ID())
	a.End("")
	b.End("")
	if err := st.Close(); err != nil {
		t.Fatal(err)
	}

	var doc struct {
		TraceEvents []struct {
			Name string  `json:"name"`
			Ph   string  `json:"ph"`
			TID  float64 `json:"tid"`
		} `json:"traceEvents"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid chrome trace: %v", err)
	}
	if len(doc.TraceEvents) != 5 {
		t.Fatalf("got %d events, want 5", len(doc.TraceEvents))
	}
	tracks := map[string]float64{}
	for _, ev := range doc.TraceEvents {
		if ev.Ph == "B" {
			tracks[ev.Name] = ev.TID
			continue
		}
		want := tracks[ev.Name]
		if ev.Ph == "i" {
			want = tracks["load:a.ll"]
		}
		if ev.TID != want {
			t.Errorf("%s %s on track %v, want %v", ev.Ph, ev.Name, ev.TID, want)
		}
	}
	if tracks["load:a.ll"] == tracks["load:b.ll"] {
		t.Errorf("overlapping spans share track %v", tracks["load:a.ll"])
	}
}

func TestContextRoundTrip(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Error("empty context should yield Nop")
	}
	if FromContext(WithTracer(context.Background(), nil)) != Nop {
		t.Error("nil tracer should attach Nop")
	}
	r := NewRingTracer(4, LevelDebug)
	ctx := WithSpanContext(WithTracer(context.Background(), r), SpanContext{SpanID: 7})
	if FromContext(ctx) != Tracer(r) {
		t.Error("tracer not recovered from context")
	}
	if got := CurrentSpan(ctx).SpanID; got != 7 {
		t.Errorf("span id = %d, want 7", got)
	}
	if got := CurrentSpan(context.Background()).SpanID; got != 0 {
		t.Errorf("span id = %d, want 0", got)
	}
}

func TestStreamTextSortsExtra(t *testing.T) {
	var buf bytes.Buffer
	st := NewStreamTracer(&buf, LevelPhase, FormatText)
	Begin(st, ScopePass, "load", 0).WithExtra("z", "1").WithExtra("a", "2").End("ok")
	Begin(st, ScopeNode, "hidden", 0).End("")

	out := buf.String()
	if !strings.Contains(out, "<- load (ok) {a=2, z=1}") {
		t.Errorf("unexpected text output:\n%s", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("node scope leaked at phase level:\n%s", out)
	}
}

func TestNewModes(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil || tr != Nop {
		t.Fatalf("off level: got %v, %v", tr, err)
	}

	var buf bytes.Buffer
	tr, err = New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	if Ring(tr) == nil {
		t.Fatal("ModeBoth should include a ring")
	}
	if _, err := New(Config{Level: LevelPhase, Mode: 42}); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestZapTracerMirrorsEvents(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	zt := NewZapTracer(zap.New(core), LevelDetail)

	Begin(zt, ScopeModule, "reconstruct:m", 0).WithExtra("functions", "3").End("")
	Begin(zt, ScopeNode, "function:f", 0).End("")

	entries := logs.FilterMessage("reconstruct:m").All()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[1].ContextMap()["functions"] != "3" {
		t.Errorf("extra field missing: %v", entries[1].ContextMap())
	}
	if logs.FilterMessage("function:f").Len() != 0 {
		t.Error("node scope should be filtered at detail level")
	}
}
