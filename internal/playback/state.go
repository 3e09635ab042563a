package playback

import "github.com/clipforge/clipforge-agent/internal/edit"

// ActiveZoom is the interpolated zoom for the current instant.
type ActiveZoom struct {
	ID       string  `json:"id"`
	Progress float64 `json:"progress"`
	Scale    float64 `json:"scale"`
	AnchorX  float64 `json:"anchorX"`
	AnchorY  float64 `json:"anchorY"`
}

// ActiveTransition reports progress through the window immediately before
// an upcoming soft segment boundary.
type ActiveTransition struct {
	Kind          string  `json:"kind"`
	Progress      float64 `json:"progress"`
	IntoSegmentID string  `json:"intoSegmentId"`
}

// CaptionWord is one displayed word with overrides applied. Index points
// back at the transcript so the UI can edit the underlying override.
type CaptionWord struct {
	Index     int     `json:"index"`
	Text      string  `json:"text"`
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	Highlight bool    `json:"highlight"`
}

// CaptionGroup is one display line of caption words on the output timeline.
type CaptionGroup struct {
	Words []CaptionWord `json:"words"`
	Start float64       `json:"start"`
	End   float64       `json:"end"`
}

// State is the engine's published snapshot. It is recomputed every tick,
// never accumulated; consumers treat each value as a full replacement and
// must not retain references into a previous snapshot's slices.
type State struct {
	Playing       bool              `json:"playing"`
	Stalled       bool              `json:"stalled"`
	OutputTime    float64           `json:"outputTime"`
	SourceTime    float64           `json:"sourceTime"`
	TotalDuration float64           `json:"totalDuration"`
	SegmentIndex  int               `json:"segmentIndex"`
	ShuttleSpeed  int               `json:"shuttleSpeed"`
	Zoom          *ActiveZoom       `json:"zoom,omitempty"`
	Transition    *ActiveTransition `json:"transition,omitempty"`
	Captions      *CaptionGroup     `json:"captions,omitempty"`
	Annotations   []edit.Annotation `json:"annotations,omitempty"`
}
