package timeline

import (
	"math"
	"testing"

	"github.com/clipforge/clipforge-agent/internal/edit"
)

func segs(ranges ...[2]float64) []edit.Segment {
	out := make([]edit.Segment, 0, len(ranges))
	for i, r := range ranges {
		out = append(out, edit.Segment{
			ID:          string(rune('a' + i)),
			SourceStart: r[0],
			SourceEnd:   r[1],
			Transition:  edit.TransitionNone,
		})
	}
	return out
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-3
}

func TestTimeMap_Scenario(t *testing.T) {
	m := NewTimeMap(segs([2]float64{0, 10}, [2]float64{12, 20}))

	if got := m.TotalDuration(); !approx(got, 18) {
		t.Errorf("TotalDuration() = %v, want 18", got)
	}
	if got := m.OutputToSource(5); !approx(got, 5) {
		t.Errorf("OutputToSource(5) = %v, want 5", got)
	}
	if got := m.OutputToSource(11); !approx(got, 13) {
		t.Errorf("OutputToSource(11) = %v, want 13", got)
	}
	if got := m.SourceToOutput(13); !approx(got, 11) {
		t.Errorf("SourceToOutput(13) = %v, want 11", got)
	}
}

func TestTimeMap_OutputToSource_ClampsPastEnd(t *testing.T) {
	m := NewTimeMap(segs([2]float64{0, 10}, [2]float64{12, 20}))
	if got := m.OutputToSource(500); !approx(got, 20) {
		t.Errorf("OutputToSource(500) = %v, want 20", got)
	}
}

func TestTimeMap_SourceToOutput_GapPolicy(t *testing.T) {
	m := NewTimeMap(segs([2]float64{2, 10}, [2]float64{12, 20}))

	// Inside the cut between segments: output end of the preceding segment.
	if got := m.SourceToOutput(11); !approx(got, 8) {
		t.Errorf("SourceToOutput(11) = %v, want 8", got)
	}
	// Before the first kept range: that segment's output start.
	if got := m.SourceToOutput(1); !approx(got, 0) {
		t.Errorf("SourceToOutput(1) = %v, want 0", got)
	}
	// Past the last kept range: end of output.
	if got := m.SourceToOutput(99); !approx(got, 16) {
		t.Errorf("SourceToOutput(99) = %v, want 16", got)
	}
}

func TestTimeMap_RoundTrip(t *testing.T) {
	lists := [][]edit.Segment{
		segs([2]float64{0, 10}),
		segs([2]float64{0, 10}, [2]float64{12, 20}),
		segs([2]float64{3, 7}, [2]float64{9, 15}, [2]float64{20, 31.5}),
		// Reordered: array order is output order.
		segs([2]float64{20, 31.5}, [2]float64{3, 7}),
	}

	for _, list := range lists {
		m := NewTimeMap(list)
		for _, seg := range list {
			for s := seg.SourceStart; s < seg.SourceEnd; s += 0.37 {
				out := m.SourceToOutput(s)
				if got := m.SourceToOutput(m.OutputToSource(out)); !approx(got, out) {
					t.Fatalf("round trip at source %v: got %v, want %v", s, got, out)
				}
			}
		}
	}
}

func TestTimeMap_OutputRangesContiguous(t *testing.T) {
	m := NewTimeMap(segs([2]float64{5, 9}, [2]float64{0, 3}, [2]float64{10, 12}))

	prevEnd := 0.0
	for i, span := range m.Spans() {
		if !approx(span.OutputStart, prevEnd) {
			t.Errorf("span %d starts at %v, want %v", i, span.OutputStart, prevEnd)
		}
		prevEnd = span.OutputEnd()
	}
	if !approx(prevEnd, m.TotalDuration()) {
		t.Errorf("last span ends at %v, total is %v", prevEnd, m.TotalDuration())
	}
}

func TestTimeMap_Empty(t *testing.T) {
	m := NewTimeMap(nil)
	if m.TotalDuration() != 0 {
		t.Errorf("TotalDuration() = %v, want 0", m.TotalDuration())
	}
	if m.OutputToSource(5) != 0 {
		t.Errorf("OutputToSource(5) = %v, want 0", m.OutputToSource(5))
	}
	if m.SourceToOutput(5) != 0 {
		t.Errorf("SourceToOutput(5) = %v, want 0", m.SourceToOutput(5))
	}
	if m.SpanIndexAt(0) != -1 {
		t.Errorf("SpanIndexAt(0) = %v, want -1", m.SpanIndexAt(0))
	}
}

func TestTimeMap_SpanIndexAt(t *testing.T) {
	m := NewTimeMap(segs([2]float64{0, 10}, [2]float64{12, 20}))

	tests := []struct {
		output float64
		want   int
	}{
		{0, 0},
		{9.99, 0},
		{10, 1},
		{17.9, 1},
		{18, 1},
		{100, 1},
	}
	for _, tt := range tests {
		if got := m.SpanIndexAt(tt.output); got != tt.want {
			t.Errorf("SpanIndexAt(%v) = %d, want %d", tt.output, got, tt.want)
		}
	}
}

func TestTimeMap_SpanIndexForSource(t *testing.T) {
	m := NewTimeMap(segs([2]float64{0, 10}, [2]float64{12, 20}))
	if got := m.SpanIndexForSource(5); got != 0 {
		t.Errorf("SpanIndexForSource(5) = %d, want 0", got)
	}
	if got := m.SpanIndexForSource(11); got != -1 {
		t.Errorf("SpanIndexForSource(11) = %d, want -1", got)
	}
	if got := m.SpanIndexForSource(12); got != 1 {
		t.Errorf("SpanIndexForSource(12) = %d, want 1", got)
	}
}

func TestFromCuts(t *testing.T) {
	cuts := []edit.Cut{
		{ID: "c2", Start: 14, End: 16, Reason: "silence"},
		{ID: "c1", Start: 5, End: 7, Reason: "uhm"},
	}
	m := FromCuts(cuts, 30)

	spans := m.Spans()
	if len(spans) != 3 {
		t.Fatalf("got %d spans, want 3", len(spans))
	}
	want := [][2]float64{{0, 5}, {7, 14}, {16, 30}}
	for i, w := range want {
		if !approx(spans[i].Segment.SourceStart, w[0]) || !approx(spans[i].Segment.SourceEnd, w[1]) {
			t.Errorf("span %d = [%v, %v], want %v", i, spans[i].Segment.SourceStart, spans[i].Segment.SourceEnd, w)
		}
	}
	if !approx(m.TotalDuration(), 26) {
		t.Errorf("TotalDuration() = %v, want 26", m.TotalDuration())
	}
}

func TestFromCuts_NoCuts(t *testing.T) {
	m := FromCuts(nil, 12)
	if m.Len() != 1 || !approx(m.TotalDuration(), 12) {
		t.Errorf("got %d spans, total %v; want one full span", m.Len(), m.TotalDuration())
	}
}

func TestTransitionAwareTimeMap_OverlapShortensOutput(t *testing.T) {
	list := segs([2]float64{0, 10}, [2]float64{12, 20})
	list[1].Transition = edit.TransitionCrossfade
	list[1].TransitionDuration = 0.5

	m := NewTransitionAwareTimeMap(list)
	if got := m.TotalDuration(); !approx(got, 17.5) {
		t.Errorf("TotalDuration() = %v, want 17.5", got)
	}
	if got := m.Spans()[1].OutputStart; !approx(got, 9.5) {
		t.Errorf("second span starts at %v, want 9.5", got)
	}
}

func TestTransitionAwareTimeMap_ClampsLongTransitions(t *testing.T) {
	list := segs([2]float64{0, 1}, [2]float64{2, 3})
	list[1].Transition = edit.TransitionDissolve
	list[1].TransitionDuration = 5

	m := NewTransitionAwareTimeMap(list)
	// Overlap clamps to half the shorter side: 0.5s.
	if got := m.Spans()[1].OutputStart; !approx(got, 0.5) {
		t.Errorf("second span starts at %v, want 0.5", got)
	}
}

func TestTransitionAwareTimeMap_HardMatchesPlain(t *testing.T) {
	list := segs([2]float64{0, 10}, [2]float64{12, 20})
	list[1].Transition = edit.TransitionHard

	plain := NewTimeMap(list)
	aware := NewTransitionAwareTimeMap(list)
	if !approx(plain.TotalDuration(), aware.TotalDuration()) {
		t.Errorf("hard transitions changed total: %v vs %v", plain.TotalDuration(), aware.TotalDuration())
	}
}

func TestTimeMap_RemapRange(t *testing.T) {
	m := NewTimeMap(segs([2]float64{0, 10}, [2]float64{12, 20}))

	start, end, ok := m.RemapRange(8, 14)
	if !ok || !approx(start, 8) || !approx(end, 12) {
		t.Errorf("RemapRange(8, 14) = (%v, %v, %v), want (8, 12, true)", start, end, ok)
	}

	if _, _, ok := m.RemapRange(10.5, 11.5); ok {
		t.Error("RemapRange inside a cut should report ok=false")
	}
}
