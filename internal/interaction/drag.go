package interaction

import (
	"math"

	"github.com/clipforge/clipforge-agent/internal/edit"
	"github.com/clipforge/clipforge-agent/internal/session"
	"github.com/clipforge/clipforge-agent/internal/timeline"
)

// EdgeDrag is the pointer state machine for trimming a segment edge. It
// accumulates preview positions while the pointer moves and commits a
// single edit to the session store on release. Releases within
// MinDragPixels of the press position are treated as clicks and discarded.
type EdgeDrag struct {
	store *session.Store
	ruler Ruler
	snaps []float64

	segmentID  string
	edge       timeline.Edge
	originTime float64
	startPixel float64

	preview float64
	snapped bool
	active  bool
}

// BeginEdgeDrag starts a trim gesture on one edge of a segment. originTime
// is the edge's current source time; startPixel is the pointer-down x.
func BeginEdgeDrag(store *session.Store, ruler Ruler, snaps []float64, segmentID string, edge timeline.Edge, originTime, startPixel float64) *EdgeDrag {
	return &EdgeDrag{
		store:      store,
		ruler:      ruler,
		snaps:      snaps,
		segmentID:  segmentID,
		edge:       edge,
		originTime: originTime,
		startPixel: startPixel,
		preview:    originTime,
		active:     true,
	}
}

// Move updates the preview position for a pointer at pixel. Returns the
// (possibly snapped) candidate time and whether it snapped, for the track
// renderer to draw.
func (d *EdgeDrag) Move(pixel float64) (float64, bool) {
	if !d.active {
		return d.preview, d.snapped
	}
	candidate := d.originTime + d.ruler.PixelToTime(pixel-d.startPixel)
	if candidate < 0 {
		candidate = 0
	}
	d.preview, d.snapped = Snap(d.ruler, d.snaps, candidate)
	return d.preview, d.snapped
}

// Preview returns the current preview time without moving the drag.
func (d *EdgeDrag) Preview() (float64, bool) {
	return d.preview, d.snapped
}

// Release ends the gesture at pixel. The edit is written to the session
// store only when the net displacement exceeds the click threshold; the
// return reports whether a commit happened.
func (d *EdgeDrag) Release(pixel float64) bool {
	if !d.active {
		return false
	}
	if math.Abs(pixel-d.startPixel) <= MinDragPixels {
		d.active = false
		return false
	}
	d.Move(pixel)
	d.active = false
	d.store.CommitSegmentEdge(d.segmentID, d.edge, d.preview)
	return true
}

// Cancel abandons the gesture without writing anything.
func (d *EdgeDrag) Cancel() {
	d.active = false
	d.preview = d.originTime
	d.snapped = false
}

// ZoomDrag is the pointer state machine for repositioning a zoom keyframe
// along the output timeline. The window's duration is preserved; its start
// snaps to the gesture's snap-point set.
type ZoomDrag struct {
	store *session.Store
	ruler Ruler
	snaps []float64

	zoom       edit.Zoom
	startPixel float64

	preview float64
	snapped bool
	active  bool
}

// BeginZoomDrag starts a move gesture on a zoom keyframe.
func BeginZoomDrag(store *session.Store, ruler Ruler, snaps []float64, zoom edit.Zoom, startPixel float64) *ZoomDrag {
	return &ZoomDrag{
		store:      store,
		ruler:      ruler,
		snaps:      snaps,
		zoom:       zoom,
		startPixel: startPixel,
		preview:    zoom.Time,
		active:     true,
	}
}

// Move updates the preview start time for a pointer at pixel. Both the
// window's start and end are tried against the snap set; the closer lock
// wins.
func (d *ZoomDrag) Move(pixel float64) (float64, bool) {
	if !d.active {
		return d.preview, d.snapped
	}
	candidate := d.zoom.Time + d.ruler.PixelToTime(pixel-d.startPixel)
	if candidate < 0 {
		candidate = 0
	}

	startSnap, startOK := Snap(d.ruler, d.snaps, candidate)
	endSnap, endOK := Snap(d.ruler, d.snaps, candidate+d.zoom.Duration)

	switch {
	case startOK && endOK:
		if math.Abs(startSnap-candidate) <= math.Abs(endSnap-(candidate+d.zoom.Duration)) {
			d.preview, d.snapped = startSnap, true
		} else {
			d.preview, d.snapped = endSnap-d.zoom.Duration, true
		}
	case startOK:
		d.preview, d.snapped = startSnap, true
	case endOK:
		d.preview, d.snapped = endSnap-d.zoom.Duration, true
	default:
		d.preview, d.snapped = candidate, false
	}
	if d.preview < 0 {
		d.preview = 0
	}
	return d.preview, d.snapped
}

// Preview returns the current preview start time without moving the drag.
func (d *ZoomDrag) Preview() (float64, bool) {
	return d.preview, d.snapped
}

// Release ends the gesture, committing the move as one discrete edit when
// displacement exceeds the click threshold.
func (d *ZoomDrag) Release(pixel float64) bool {
	if !d.active {
		return false
	}
	if math.Abs(pixel-d.startPixel) <= MinDragPixels {
		d.active = false
		return false
	}
	d.Move(pixel)
	d.active = false

	updated := d.zoom
	updated.Time = d.preview
	if err := d.store.UpdateZoom(updated); err != nil {
		return false
	}
	return true
}

// Cancel abandons the gesture without writing anything.
func (d *ZoomDrag) Cancel() {
	d.active = false
	d.preview = d.zoom.Time
	d.snapped = false
}

// SplitAtPlayhead splits the segment under the current output time at the
// corresponding source position. Returns false when the playhead is not
// over a segment (empty timeline).
func SplitAtPlayhead(store *session.Store, tmap *timeline.TimeMap, outputTime float64) bool {
	idx := tmap.SpanIndexAt(outputTime)
	if idx < 0 {
		return false
	}
	seg := tmap.Spans()[idx].Segment
	sourceTime := tmap.OutputToSource(outputTime)
	if sourceTime <= seg.SourceStart || sourceTime >= seg.SourceEnd {
		return false
	}
	store.SplitSegment(seg.ID, sourceTime)
	return true
}
