// Package interaction implements the timeline's pointer-facing geometry:
// pixel/time conversion, snap-point computation, and the drag state
// machines for segment edges and zoom markers. The package holds preview
// state during a drag and writes back to the session store only on
// pointer release, so a stray click never produces an edit.
package interaction

import (
	"math"
	"sort"

	"github.com/clipforge/clipforge-agent/internal/edit"
	"github.com/clipforge/clipforge-agent/internal/timeline"
)

const (
	// SnapThresholdPixels is the on-screen distance within which a drag
	// candidate locks onto a snap point.
	SnapThresholdPixels = 8.0

	// MinDragPixels is the net displacement below which a released drag is
	// treated as a click and discarded.
	MinDragPixels = 2.0
)

// Ruler converts between timeline pixels and seconds at the current
// timeline zoom level.
type Ruler struct {
	PixelsPerSecond float64
}

// NewRuler derives a ruler from a rendered track width and the duration it
// displays.
func NewRuler(widthPixels, duration float64) Ruler {
	if duration <= 0 || widthPixels <= 0 {
		return Ruler{PixelsPerSecond: 1}
	}
	return Ruler{PixelsPerSecond: widthPixels / duration}
}

// TimeToPixel maps a time to its on-screen x position.
func (r Ruler) TimeToPixel(t float64) float64 {
	return t * r.PixelsPerSecond
}

// PixelToTime maps an on-screen x position to a time.
func (r Ruler) PixelToTime(px float64) float64 {
	if r.PixelsPerSecond <= 0 {
		return 0
	}
	return px / r.PixelsPerSecond
}

// SnapPoints computes the candidate times a drag will lock onto: every
// segment's output start and end, every zoom window's start and end, and
// the integer-second grid, deduplicated and sorted.
func SnapPoints(cfg edit.Config, tmap *timeline.TimeMap) []float64 {
	seen := make(map[float64]struct{})
	add := func(t float64) {
		if t < 0 {
			return
		}
		// Quantize to the engine's epsilon so float noise cannot produce
		// near-duplicate snap points.
		q := math.Round(t*1000) / 1000
		seen[q] = struct{}{}
	}

	for _, span := range tmap.Spans() {
		add(span.OutputStart)
		add(span.OutputEnd())
	}
	for _, z := range cfg.Zooms {
		add(z.Time)
		add(z.Time + z.Duration)
	}
	total := tmap.TotalDuration()
	for s := 0.0; s <= total; s++ {
		add(s)
	}

	out := make([]float64, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Float64s(out)
	return out
}

// Snap returns the snap point nearest to t when it lies within the pixel
// threshold at the ruler's scale, along with whether snapping occurred.
func Snap(r Ruler, points []float64, t float64) (float64, bool) {
	if len(points) == 0 {
		return t, false
	}
	threshold := r.PixelToTime(SnapThresholdPixels)

	i := sort.SearchFloat64s(points, t)
	best := t
	bestDist := math.Inf(1)
	for _, j := range []int{i - 1, i} {
		if j < 0 || j >= len(points) {
			continue
		}
		if d := math.Abs(points[j] - t); d < bestDist {
			best = points[j]
			bestDist = d
		}
	}
	if bestDist <= threshold {
		return best, true
	}
	return t, false
}
