package timeline

import (
	"sort"

	"github.com/clipforge/clipforge-agent/internal/edit"
)

// Edge selects which side of a segment an adjustment applies to.
type Edge string

const (
	EdgeStart Edge = "start"
	EdgeEnd   Edge = "end"
)

// Split replaces the identified segment with two contiguous halves that sum
// to the original duration. The first half keeps the original's incoming
// transition; the second half gets none. Returns the input unchanged when
// atSourceTime is not strictly inside the segment's range.
func Split(segments []edit.Segment, id string, atSourceTime float64) []edit.Segment {
	for i, seg := range segments {
		if seg.ID != id {
			continue
		}
		if atSourceTime <= seg.SourceStart || atSourceTime >= seg.SourceEnd {
			return segments
		}

		first := seg
		first.SourceEnd = atSourceTime

		second := edit.Segment{
			ID:                 edit.NewID(),
			SourceStart:        atSourceTime,
			SourceEnd:          seg.SourceEnd,
			Transition:         edit.TransitionNone,
			TransitionDuration: edit.DefaultTransitionDuration,
		}

		out := make([]edit.Segment, 0, len(segments)+1)
		out = append(out, segments[:i]...)
		out = append(out, first, second)
		out = append(out, segments[i+1:]...)
		return out
	}
	return segments
}

// Delete removes the identified segment. List-local: the at-least-one-
// segment invariant is enforced by the session store, which refuses to
// delete the sole remaining segment.
func Delete(segments []edit.Segment, id string) []edit.Segment {
	out := make([]edit.Segment, 0, len(segments))
	for _, seg := range segments {
		if seg.ID != id {
			out = append(out, seg)
		}
	}
	return out
}

// AdjustEdge moves one edge of the identified segment to a new source time.
// Moves that would leave the segment shorter than the minimum duration
// return the input unchanged. An edge is allowed to cross into a
// neighboring segment's source range: with reordering supported, overlapping
// source ranges are a legitimate way to repeat material.
func AdjustEdge(segments []edit.Segment, id string, edge Edge, newSourceTime float64) []edit.Segment {
	for i, seg := range segments {
		if seg.ID != id {
			continue
		}

		updated := seg
		switch edge {
		case EdgeStart:
			updated.SourceStart = newSourceTime
		case EdgeEnd:
			updated.SourceEnd = newSourceTime
		default:
			return segments
		}

		if updated.SourceEnd-updated.SourceStart < edit.MinSegmentDuration {
			return segments
		}

		out := append([]edit.Segment(nil), segments...)
		out[i] = updated
		return out
	}
	return segments
}

// ToCuts derives the removed regions of [0, clipDuration] from the kept
// segments, for the legacy consumer that still reads a cut list. Always
// recomputed after a structural change; never an independent source of
// truth. Overlapping source ranges are merged before gaps are measured.
func ToCuts(segments []edit.Segment, clipDuration float64) []edit.Cut {
	if len(segments) == 0 {
		return nil
	}

	type span struct{ start, end float64 }
	kept := make([]span, 0, len(segments))
	for _, seg := range segments {
		kept = append(kept, span{seg.SourceStart, seg.SourceEnd})
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].start < kept[j].start })

	merged := kept[:1]
	for _, s := range kept[1:] {
		last := &merged[len(merged)-1]
		if s.start <= last.end {
			if s.end > last.end {
				last.end = s.end
			}
			continue
		}
		merged = append(merged, s)
	}

	var cuts []edit.Cut
	current := 0.0
	for _, s := range merged {
		if s.start > current {
			cuts = append(cuts, edit.Cut{
				ID:     edit.NewID(),
				Start:  current,
				End:    s.start,
				Reason: "edited",
			})
		}
		if s.end > current {
			current = s.end
		}
	}
	if current < clipDuration {
		cuts = append(cuts, edit.Cut{
			ID:     edit.NewID(),
			Start:  current,
			End:    clipDuration,
			Reason: "edited",
		})
	}
	return cuts
}
