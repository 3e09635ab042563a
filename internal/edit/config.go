// Package edit defines the edit-configuration document shared between the
// analysis pipeline, the browser editor and the offline renderer. The agent
// owns the document while an editing session is open; every mutation goes
// through the session store so undo history stays consistent.
package edit

// Transition kinds a segment may carry on its incoming boundary.
const (
	TransitionNone      = "none"
	TransitionHard      = "hard"
	TransitionCrossfade = "crossfade"
	TransitionFade      = "fade"
	TransitionWipeLeft  = "wipe_left"
	TransitionWipeRight = "wipe_right"
	TransitionSlideUp   = "slide_up"
	TransitionDissolve  = "dissolve"
	TransitionZoomIn    = "zoom_in"
	TransitionCircle    = "circle"
)

// Easing curve names used by zoom keyframes.
const (
	EasingLinear    = "linear"
	EasingEaseIn    = "ease_in"
	EasingEaseInOut = "ease_in_out"
	EasingSnap      = "snap"
)

const (
	// MinSegmentDuration is the shortest segment the editor will produce.
	MinSegmentDuration = 0.1

	// MaxZoomScale bounds zoom keyframe magnification.
	MaxZoomScale = 2.0

	// DefaultTransitionDuration applies when a segment carries a soft
	// transition without an explicit duration.
	DefaultTransitionDuration = 0.3
)

// Segment is a contiguous kept range of source time. Array order in
// Config.Segments is output order; segments need not be sorted by
// SourceStart, which is what makes non-linear reordering possible.
// Segments are values: edits replace the list, never mutate in place.
type Segment struct {
	ID                 string  `json:"id"`
	SourceStart        float64 `json:"sourceStart"`
	SourceEnd          float64 `json:"sourceEnd"`
	Transition         string  `json:"transition"`
	TransitionDuration float64 `json:"transitionDuration,omitempty"`
}

// Duration returns the segment's length in source seconds.
func (s Segment) Duration() float64 {
	return s.SourceEnd - s.SourceStart
}

// Cut is a removed span of source time. Cuts are derived from the segment
// list for the legacy consumer and are never hand-edited.
type Cut struct {
	ID     string  `json:"id"`
	Start  float64 `json:"start"`
	End    float64 `json:"end"`
	Reason string  `json:"reason"`
}

// Zoom is a punch-in keyframe on the output timeline.
type Zoom struct {
	ID       string  `json:"id"`
	Time     float64 `json:"time"`
	Duration float64 `json:"duration"`
	Scale    float64 `json:"scale"`
	Easing   string  `json:"easing"`
	AnchorX  float64 `json:"anchorX"`
	AnchorY  float64 `json:"anchorY"`
	Reason   string  `json:"reason,omitempty"`
}

// AnnotationStyle controls how a text annotation is drawn.
type AnnotationStyle struct {
	FontSize        int    `json:"fontSize"`
	Color           string `json:"color"`
	FontFamily      string `json:"fontFamily,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
}

// Annotation is a freely positioned text overlay. X and Y are percentages
// of the frame; StartTime and EndTime are clip-relative seconds.
type Annotation struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Content   string          `json:"content"`
	X         float64         `json:"x"`
	Y         float64         `json:"y"`
	StartTime float64         `json:"startTime"`
	EndTime   float64         `json:"endTime"`
	Style     AnnotationStyle `json:"style"`
}

// CaptionOverride is a per-word delta against the transcript. The map key
// is the transcript word index; the transcript itself is never copied.
type CaptionOverride struct {
	Text      string `json:"text,omitempty"`
	Hidden    bool   `json:"hidden,omitempty"`
	Highlight bool   `json:"highlight,omitempty"`
}

// CaptionStyle is the caption rendering configuration.
type CaptionStyle struct {
	Enabled           bool     `json:"enabled"`
	Style             string   `json:"style"`
	Position          string   `json:"position"`
	FontSize          string   `json:"fontSize"`
	PrimaryColor      string   `json:"primaryColor"`
	HighlightColor    string   `json:"highlightColor"`
	BackgroundColor   string   `json:"backgroundColor,omitempty"`
	Font              string   `json:"font"`
	MaxWordsPerLine   int      `json:"maxWordsPerLine"`
	Animation         string   `json:"animation"`
	HighlightKeywords bool     `json:"highlightKeywords"`
	CustomKeywords    []string `json:"customKeywords,omitempty"`
}

// TransitionDefaults are the clip-level transition settings. Per-segment
// transitions are the primary system; these cover intro/outro.
type TransitionDefaults struct {
	Intro       string `json:"intro"`
	Outro       string `json:"outro"`
	BetweenCuts string `json:"betweenCuts"`
}

// Reframing controls aspect-ratio conversion of the source.
type Reframing struct {
	Enabled     bool     `json:"enabled"`
	Mode        string   `json:"mode"`
	ManualCropX *float64 `json:"manualCropX,omitempty"`
}

// Music is the background music configuration.
type Music struct {
	Enabled      bool    `json:"enabled"`
	Track        string  `json:"track,omitempty"`
	Volume       float64 `json:"volume"`
	DuckOnSpeech bool    `json:"duckOnSpeech"`
}

// SoundEffects toggles cut and key-moment stingers.
type SoundEffects struct {
	Enabled      bool    `json:"enabled"`
	WhooshOnCut  bool    `json:"whooshOnCut"`
	BoomOnMoment bool    `json:"boomOnKeyMoment"`
	Volume       float64 `json:"volume"`
}

// Audio aggregates the audio processing settings.
type Audio struct {
	NormalizeVolume       bool         `json:"normalizeVolume"`
	RemoveBackgroundNoise bool         `json:"removeBackgroundNoise"`
	Music                 Music        `json:"music"`
	SoundEffects          SoundEffects `json:"soundEffects"`
}

// Watermark is the watermark overlay configuration.
type Watermark struct {
	Enabled  bool   `json:"enabled"`
	ImageURL string `json:"imageUrl,omitempty"`
	Position string `json:"position"`
}

// Overlays aggregates static overlay settings.
type Overlays struct {
	ProgressBar bool      `json:"progressBar"`
	HookText    string    `json:"hookText,omitempty"`
	CTAText     string    `json:"ctaText,omitempty"`
	Watermark   Watermark `json:"watermark"`
}

// Config is the aggregate edit-configuration document. It is created once
// from the externally supplied plan, mutated only through session edit
// operations, and serialized back out for persistence and rendering.
type Config struct {
	OutputRatio      string                     `json:"outputRatio"`
	Segments         []Segment                  `json:"segments"`
	Cuts             []Cut                      `json:"cuts"`
	Zooms            []Zoom                     `json:"zooms"`
	Annotations      []Annotation               `json:"annotations,omitempty"`
	Reframing        Reframing                  `json:"reframing"`
	Captions         CaptionStyle               `json:"captions"`
	Transitions      TransitionDefaults         `json:"transitions"`
	Audio            Audio                      `json:"audio"`
	Overlays         Overlays                   `json:"overlays"`
	CaptionOverrides map[string]CaptionOverride `json:"captionOverrides,omitempty"`
}

// Clone returns a deep copy. Undo history and published snapshots rely on
// clones never sharing backing storage with the live document.
func (c Config) Clone() Config {
	out := c
	out.Segments = append([]Segment(nil), c.Segments...)
	out.Cuts = append([]Cut(nil), c.Cuts...)
	out.Zooms = append([]Zoom(nil), c.Zooms...)
	out.Annotations = append([]Annotation(nil), c.Annotations...)
	out.Captions.CustomKeywords = append([]string(nil), c.Captions.CustomKeywords...)
	if c.CaptionOverrides != nil {
		out.CaptionOverrides = make(map[string]CaptionOverride, len(c.CaptionOverrides))
		for k, v := range c.CaptionOverrides {
			out.CaptionOverrides[k] = v
		}
	}
	return out
}
