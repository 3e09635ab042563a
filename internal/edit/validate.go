package edit

import (
	"github.com/google/uuid"
)

// NewID returns a short object id in the shape the pipeline uses for
// segments, cuts and zooms.
func NewID() string {
	return uuid.NewString()[:8]
}

// ClampZoomAnchor clamps an anchor point so the magnified viewport stays
// inside the frame: half = 0.5/scale, anchor in [half, 1-half]. Applied on
// every zoom create and update; the UI offers the same range.
func ClampZoomAnchor(scale, anchorX, anchorY float64) (float64, float64) {
	if scale <= 1 {
		return clamp(anchorX, 0, 1), clamp(anchorY, 0, 1)
	}
	half := 0.5 / scale
	return clamp(anchorX, half, 1-half), clamp(anchorY, half, 1-half)
}

// ClampZoomScale bounds a requested magnification to the supported range.
func ClampZoomScale(scale float64) float64 {
	return clamp(scale, 1.01, MaxZoomScale)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func validEasing(name string) bool {
	switch name {
	case EasingLinear, EasingEaseIn, EasingEaseInOut, EasingSnap:
		return true
	}
	return false
}

func validTransition(name string) bool {
	switch name {
	case TransitionNone, TransitionHard, TransitionCrossfade, TransitionFade,
		TransitionWipeLeft, TransitionWipeRight, TransitionSlideUp,
		TransitionDissolve, TransitionZoomIn, TransitionCircle:
		return true
	}
	return false
}

// Normalize repairs an externally supplied configuration in place so the
// document is internally valid before the session takes ownership: out of
// range values are clamped rather than rejected, degenerate segments are
// dropped, and an empty segment list becomes one full-length segment.
func (c *Config) Normalize(clipDuration float64) {
	kept := c.Segments[:0]
	for _, s := range c.Segments {
		// Strictly below the minimum, matching the edge-adjustment guard: a
		// segment trimmed to exactly the minimum must survive a reload.
		if s.SourceEnd-s.SourceStart < MinSegmentDuration {
			continue
		}
		if s.ID == "" {
			s.ID = NewID()
		}
		if !validTransition(s.Transition) {
			s.Transition = TransitionNone
		}
		if s.TransitionDuration <= 0 {
			s.TransitionDuration = DefaultTransitionDuration
		}
		kept = append(kept, s)
	}
	c.Segments = kept

	if len(c.Segments) == 0 && clipDuration > 0 {
		c.Segments = []Segment{{
			ID:                 NewID(),
			SourceStart:        0,
			SourceEnd:          clipDuration,
			Transition:         TransitionNone,
			TransitionDuration: DefaultTransitionDuration,
		}}
	}

	for i, z := range c.Zooms {
		z.Scale = ClampZoomScale(z.Scale)
		z.AnchorX, z.AnchorY = ClampZoomAnchor(z.Scale, z.AnchorX, z.AnchorY)
		if !validEasing(z.Easing) {
			z.Easing = EasingEaseInOut
		}
		if z.Duration < 0 {
			z.Duration = 0
		}
		if z.ID == "" {
			z.ID = NewID()
		}
		c.Zooms[i] = z
	}

	for i, a := range c.Annotations {
		if a.ID == "" {
			a.ID = NewID()
		}
		if a.Type == "" {
			a.Type = "text"
		}
		a.X = clamp(a.X, 0, 100)
		a.Y = clamp(a.Y, 0, 100)
		if a.EndTime < a.StartTime {
			a.EndTime = a.StartTime
		}
		c.Annotations[i] = a
	}

	if c.Captions.MaxWordsPerLine <= 0 {
		c.Captions.MaxWordsPerLine = 4
	}
	if c.OutputRatio == "" {
		c.OutputRatio = "9:16"
	}
}
