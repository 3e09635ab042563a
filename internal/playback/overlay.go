package playback

import (
	"math"
	"strconv"

	"github.com/clipforge/clipforge-agent/internal/edit"
	"github.com/clipforge/clipforge-agent/internal/timeline"
)

// ease maps a 0..1 progress value through the named curve. The set matches
// the offline renderer's filter expressions so preview and export agree.
func ease(name string, t float64) float64 {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	switch name {
	case edit.EasingEaseIn:
		return t * t * t
	case edit.EasingEaseInOut:
		if t < 0.5 {
			return 4 * t * t * t
		}
		return 1 - math.Pow(-2*t+2, 3)/2
	case edit.EasingSnap:
		if t < 0.5 {
			return 0
		}
		return 1
	default:
		return t
	}
}

// activeZoom returns the interpolated zoom at outputTime, or nil. When zoom
// windows overlap, the later keyframe in the list wins, matching the
// renderer's nested expression order.
func activeZoom(zooms []edit.Zoom, outputTime float64) *ActiveZoom {
	for i := len(zooms) - 1; i >= 0; i-- {
		z := zooms[i]
		if z.Duration <= 0 {
			continue
		}
		if outputTime < z.Time || outputTime >= z.Time+z.Duration {
			continue
		}

		progress := (outputTime - z.Time) / z.Duration

		// Triangle envelope 0→1→0 over the window, shaped by the easing.
		tri := progress * 2
		if progress >= 0.5 {
			tri = (1 - progress) * 2
		}
		eased := ease(z.Easing, tri)

		scale := 1 + (z.Scale-1)*eased
		ax, ay := edit.ClampZoomAnchor(z.Scale, z.AnchorX, z.AnchorY)
		return &ActiveZoom{
			ID:       z.ID,
			Progress: progress,
			Scale:    scale,
			AnchorX:  ax,
			AnchorY:  ay,
		}
	}
	return nil
}

// activeTransition reports progress through the soft transition window
// preceding the next segment boundary, or nil for none/hard boundaries.
func activeTransition(tmap *timeline.TimeMap, segmentIndex int, outputTime float64) *ActiveTransition {
	spans := tmap.Spans()
	if segmentIndex < 0 || segmentIndex+1 >= len(spans) {
		return nil
	}

	next := spans[segmentIndex+1].Segment
	if next.Transition == edit.TransitionNone || next.Transition == edit.TransitionHard || next.Transition == "" {
		return nil
	}

	dur := next.TransitionDuration
	if dur <= 0 {
		dur = edit.DefaultTransitionDuration
	}
	boundary := spans[segmentIndex].OutputEnd()
	if outputTime < boundary-dur {
		return nil
	}

	progress := (outputTime - (boundary - dur)) / dur
	if progress > 1 {
		progress = 1
	}
	return &ActiveTransition{
		Kind:          next.Transition,
		Progress:      progress,
		IntoSegmentID: next.ID,
	}
}

// activeAnnotations returns the annotations visible at outputTime.
func activeAnnotations(annotations []edit.Annotation, outputTime float64) []edit.Annotation {
	var out []edit.Annotation
	for _, a := range annotations {
		if outputTime >= a.StartTime && outputTime < a.EndTime {
			out = append(out, a)
		}
	}
	return out
}

// buildCaptionGroups projects the transcript onto the output timeline and
// groups it into display lines. Word times are source-absolute; they are
// shifted by clipStart, filtered to the clip, remapped through the time map
// (words swallowed by cuts disappear), and grouped maxWordsPerLine at a
// time. Overrides are deltas keyed by transcript index: hidden words are
// excluded, text replacements and highlight flags applied here.
func buildCaptionGroups(
	words []edit.Word,
	clipStart float64,
	overrides map[string]edit.CaptionOverride,
	style edit.CaptionStyle,
	tmap *timeline.TimeMap,
) []CaptionGroup {
	if !style.Enabled || len(words) == 0 {
		return nil
	}

	maxWords := style.MaxWordsPerLine
	if maxWords <= 0 {
		maxWords = 4
	}

	var line []CaptionWord
	var groups []CaptionGroup

	flush := func() {
		if len(line) == 0 {
			return
		}
		groups = append(groups, CaptionGroup{
			Words: line,
			Start: line[0].Start,
			End:   line[len(line)-1].End,
		})
		line = nil
	}

	for i, w := range words {
		start := w.Start - clipStart
		end := w.End - clipStart
		if end < 0 {
			continue
		}
		if start < 0 {
			start = 0
		}

		text := w.Word
		highlight := false
		if ov, ok := overrides[strconv.Itoa(i)]; ok {
			if ov.Hidden {
				continue
			}
			if ov.Text != "" {
				text = ov.Text
			}
			highlight = ov.Highlight
		}

		outStart, outEnd, ok := tmap.RemapRange(start, end)
		if !ok {
			continue
		}

		line = append(line, CaptionWord{
			Index:     i,
			Text:      text,
			Start:     outStart,
			End:       outEnd,
			Highlight: highlight,
		})
		if len(line) == maxWords {
			flush()
		}
	}
	flush()

	return groups
}

// activeCaptionGroup selects the display line whose span contains
// outputTime, or nil between lines.
func activeCaptionGroup(groups []CaptionGroup, outputTime float64) *CaptionGroup {
	for i := range groups {
		if outputTime >= groups[i].Start && outputTime <= groups[i].End {
			return &groups[i]
		}
	}
	return nil
}
