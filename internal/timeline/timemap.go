// Package timeline translates between the source video timeline and the
// edited output timeline, and provides the pure list transforms the editor
// applies to segments. A TimeMap is derived state: it is rebuilt whenever
// the segment list changes and lives exactly as long as that list.
package timeline

import (
	"sort"

	"github.com/clipforge/clipforge-agent/internal/edit"
)

// Span is one kept segment positioned on the output timeline.
type Span struct {
	Segment     edit.Segment
	OutputStart float64
}

// Duration returns the span's length in seconds.
func (s Span) Duration() float64 {
	return s.Segment.Duration()
}

// OutputEnd returns the span's end position on the output timeline.
func (s Span) OutputEnd() float64 {
	return s.OutputStart + s.Duration()
}

// TimeMap maps between source time and output time for one segment list.
type TimeMap struct {
	spans []Span
}

// NewTimeMap builds a map from segments in array order: array order is
// output order, so cumulative output offsets are the prefix sums of segment
// durations.
func NewTimeMap(segments []edit.Segment) *TimeMap {
	spans := make([]Span, 0, len(segments))
	offset := 0.0
	for _, seg := range segments {
		spans = append(spans, Span{Segment: seg, OutputStart: offset})
		offset += seg.Duration()
	}
	return &TimeMap{spans: spans}
}

// NewTransitionAwareTimeMap builds a map that accounts for soft-transition
// overlap: each crossfade of duration d makes consecutive segments overlap
// by d on the output timeline, shortening the total. The clamp on d must
// match the offline compositor's xfade offset math exactly, otherwise zoom
// and caption times drift in the export.
func NewTransitionAwareTimeMap(segments []edit.Segment) *TimeMap {
	if len(segments) == 0 {
		return &TimeMap{}
	}

	spans := make([]Span, 0, len(segments))
	spans = append(spans, Span{Segment: segments[0], OutputStart: 0})
	running := segments[0].Duration()

	for _, seg := range segments[1:] {
		overlap := 0.0
		if seg.Transition != edit.TransitionNone && seg.Transition != edit.TransitionHard && seg.Transition != "" {
			overlap = seg.TransitionDuration
			if overlap <= 0 {
				overlap = edit.DefaultTransitionDuration
			}
			overlap = min3(overlap, seg.Duration()/2, running/2)
		}

		start := running - overlap
		spans = append(spans, Span{Segment: seg, OutputStart: start})
		running = start + seg.Duration()
	}

	return &TimeMap{spans: spans}
}

// FromCuts builds a map from a legacy cut list by inverting it into keep
// segments over [0, sourceDuration].
func FromCuts(cuts []edit.Cut, sourceDuration float64) *TimeMap {
	return NewTimeMap(SegmentsFromCuts(cuts, sourceDuration))
}

// SegmentsFromCuts inverts a legacy cut list into the kept segments over
// [0, sourceDuration]. Configurations written before the segment list
// existed carry only cuts; the project loader reconstructs segments from
// them so those edits survive.
func SegmentsFromCuts(cuts []edit.Cut, sourceDuration float64) []edit.Segment {
	if len(cuts) == 0 {
		return []edit.Segment{{
			ID:          edit.NewID(),
			SourceStart: 0,
			SourceEnd:   sourceDuration,
			Transition:  edit.TransitionNone,
		}}
	}

	sorted := append([]edit.Cut(nil), cuts...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var segments []edit.Segment
	current := 0.0
	for _, cut := range sorted {
		if cut.Start > current {
			segments = append(segments, edit.Segment{
				ID:          edit.NewID(),
				SourceStart: current,
				SourceEnd:   cut.Start,
				Transition:  edit.TransitionNone,
			})
		}
		if cut.End > current {
			current = cut.End
		}
	}
	if current < sourceDuration {
		segments = append(segments, edit.Segment{
			ID:          edit.NewID(),
			SourceStart: current,
			SourceEnd:   sourceDuration,
			Transition:  edit.TransitionNone,
		})
	}

	return segments
}

// Spans returns the positioned segments in output order.
func (m *TimeMap) Spans() []Span {
	return m.spans
}

// Len returns the number of segments in the map.
func (m *TimeMap) Len() int {
	return len(m.spans)
}

// TotalDuration returns the output timeline length.
func (m *TimeMap) TotalDuration() float64 {
	if len(m.spans) == 0 {
		return 0
	}
	return m.spans[len(m.spans)-1].OutputEnd()
}

// OutputToSource converts a position on the output timeline to the source
// position it plays from. Positions past the end clamp to the end of the
// last segment.
func (m *TimeMap) OutputToSource(outputTime float64) float64 {
	if len(m.spans) == 0 {
		return 0
	}
	for _, span := range m.spans {
		if outputTime <= span.OutputEnd() {
			offset := outputTime - span.OutputStart
			if offset < 0 {
				offset = 0
			}
			return span.Segment.SourceStart + offset
		}
	}
	return m.spans[len(m.spans)-1].Segment.SourceEnd
}

// SourceToOutput converts a source position to its place on the output
// timeline. A source time inside a removed region has no output position of
// its own; by policy it maps to the output end of the nearest preceding
// segment (or the first segment's output start when nothing precedes it).
func (m *TimeMap) SourceToOutput(sourceTime float64) float64 {
	if len(m.spans) == 0 {
		return 0
	}

	for _, span := range m.spans {
		if sourceTime >= span.Segment.SourceStart && sourceTime <= span.Segment.SourceEnd {
			return span.OutputStart + (sourceTime - span.Segment.SourceStart)
		}
	}

	// Inside a cut. Segments may be reordered, so scan for the span whose
	// source range ends closest before sourceTime.
	bestIdx := -1
	bestEnd := 0.0
	for i, span := range m.spans {
		if span.Segment.SourceEnd <= sourceTime && (bestIdx < 0 || span.Segment.SourceEnd > bestEnd) {
			bestIdx = i
			bestEnd = span.Segment.SourceEnd
		}
	}
	if bestIdx >= 0 {
		return m.spans[bestIdx].OutputEnd()
	}

	// Before every kept range: clamp to the earliest source span's start.
	earliest := 0
	for i := range m.spans {
		if m.spans[i].Segment.SourceStart < m.spans[earliest].Segment.SourceStart {
			earliest = i
		}
	}
	return m.spans[earliest].OutputStart
}

// SpanIndexAt returns the index of the span whose output range contains
// outputTime, or the last span for positions at or past the end. Returns -1
// for an empty map.
func (m *TimeMap) SpanIndexAt(outputTime float64) int {
	if len(m.spans) == 0 {
		return -1
	}
	for i, span := range m.spans {
		if outputTime < span.OutputEnd() {
			return i
		}
	}
	return len(m.spans) - 1
}

// SpanIndexForSource returns the index of the span containing sourceTime,
// or -1 when the source position falls in a removed region.
func (m *TimeMap) SpanIndexForSource(sourceTime float64) int {
	for i, span := range m.spans {
		if sourceTime >= span.Segment.SourceStart && sourceTime <= span.Segment.SourceEnd {
			return i
		}
	}
	return -1
}

// RemapRange maps a source range onto the output timeline. Ranges that fall
// entirely inside removed regions report ok=false; partially overlapping
// ranges return the surviving portion.
func (m *TimeMap) RemapRange(sourceStart, sourceEnd float64) (outStart, outEnd float64, ok bool) {
	outStart = m.SourceToOutput(sourceStart)
	outEnd = m.SourceToOutput(sourceEnd)
	if outStart >= outEnd {
		return 0, 0, false
	}
	return outStart, outEnd, true
}

func min3(a, b, c float64) float64 {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
