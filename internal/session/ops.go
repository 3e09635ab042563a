package session

import (
	"errors"

	"github.com/clipforge/clipforge-agent/internal/edit"
	"github.com/clipforge/clipforge-agent/internal/timeline"
)

// ErrLastSegment is returned when a delete would leave the timeline empty.
var ErrLastSegment = errors.New("cannot delete the last remaining segment")

// ErrNotFound is returned when an edit targets an ID that no longer exists,
// typically after an undo raced a stale UI action.
var ErrNotFound = errors.New("target not found")

// SplitSegment splits the identified segment at a source time. No-op when
// the time is not strictly inside the segment.
func (s *Store) SplitSegment(id string, atSourceTime float64) {
	s.Apply(func(cfg *edit.Config) {
		cfg.Segments = timeline.Split(cfg.Segments, id, atSourceTime)
		cfg.Cuts = timeline.ToCuts(cfg.Segments, s.clipDuration)
	})
}

// DeleteSegment removes a segment. The at-least-one-segment invariant is
// enforced here: deleting the sole remaining segment fails without touching
// history.
func (s *Store) DeleteSegment(id string) error {
	s.mu.Lock()
	if len(s.cfg.Segments) <= 1 {
		s.mu.Unlock()
		return ErrLastSegment
	}
	found := false
	for _, seg := range s.cfg.Segments {
		if seg.ID == id {
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		return ErrNotFound
	}

	s.Apply(func(cfg *edit.Config) {
		cfg.Segments = timeline.Delete(cfg.Segments, id)
		cfg.Cuts = timeline.ToCuts(cfg.Segments, s.clipDuration)
	})
	return nil
}

// AdjustSegmentEdge moves one edge of a segment as part of a trim gesture.
// Intermediate positions coalesce into a single history entry.
func (s *Store) AdjustSegmentEdge(id string, edge timeline.Edge, newSourceTime float64) {
	s.ApplyGesture(func(cfg *edit.Config) {
		cfg.Segments = timeline.AdjustEdge(cfg.Segments, id, edge, newSourceTime)
		cfg.Cuts = timeline.ToCuts(cfg.Segments, s.clipDuration)
	})
}

// CommitSegmentEdge moves one edge of a segment as a single discrete edit.
// Used by drag interactions that preview locally and write back once on
// pointer release.
func (s *Store) CommitSegmentEdge(id string, edge timeline.Edge, newSourceTime float64) {
	s.Apply(func(cfg *edit.Config) {
		cfg.Segments = timeline.AdjustEdge(cfg.Segments, id, edge, newSourceTime)
		cfg.Cuts = timeline.ToCuts(cfg.Segments, s.clipDuration)
	})
}

// AddZoom appends a zoom keyframe with clamped scale and anchors and returns
// its generated ID.
func (s *Store) AddZoom(z edit.Zoom) string {
	if z.ID == "" {
		z.ID = edit.NewID()
	}
	if z.Easing == "" {
		z.Easing = edit.EasingEaseInOut
	}
	z.Scale = edit.ClampZoomScale(z.Scale)
	z.AnchorX, z.AnchorY = edit.ClampZoomAnchor(z.Scale, z.AnchorX, z.AnchorY)

	s.Apply(func(cfg *edit.Config) {
		cfg.Zooms = append(cfg.Zooms, z)
	})
	return z.ID
}

// UpdateZoom replaces a zoom keyframe by ID, re-clamping scale and anchors.
// Used discretely; drag-driven updates should go through UpdateZoomGesture.
func (s *Store) UpdateZoom(z edit.Zoom) error {
	return s.updateZoom(z, s.Apply)
}

// UpdateZoomGesture is UpdateZoom with gesture coalescing, for continuous
// drags of a zoom's window or anchor.
func (s *Store) UpdateZoomGesture(z edit.Zoom) error {
	return s.updateZoom(z, s.ApplyGesture)
}

func (s *Store) updateZoom(z edit.Zoom, apply func(func(*edit.Config))) error {
	s.mu.Lock()
	idx := -1
	for i, existing := range s.cfg.Zooms {
		if existing.ID == z.ID {
			idx = i
			break
		}
	}
	s.mu.Unlock()
	if idx < 0 {
		return ErrNotFound
	}

	z.Scale = edit.ClampZoomScale(z.Scale)
	z.AnchorX, z.AnchorY = edit.ClampZoomAnchor(z.Scale, z.AnchorX, z.AnchorY)

	apply(func(cfg *edit.Config) {
		for i := range cfg.Zooms {
			if cfg.Zooms[i].ID == z.ID {
				cfg.Zooms[i] = z
				return
			}
		}
	})
	return nil
}

// RemoveZoom deletes a zoom keyframe by ID.
func (s *Store) RemoveZoom(id string) {
	s.Apply(func(cfg *edit.Config) {
		out := cfg.Zooms[:0]
		for _, z := range cfg.Zooms {
			if z.ID != id {
				out = append(out, z)
			}
		}
		cfg.Zooms = out
	})
}

// AddAnnotation appends a text annotation and returns its generated ID.
func (s *Store) AddAnnotation(a edit.Annotation) string {
	if a.ID == "" {
		a.ID = edit.NewID()
	}
	s.Apply(func(cfg *edit.Config) {
		cfg.Annotations = append(cfg.Annotations, a)
	})
	return a.ID
}

// UpdateAnnotation replaces an annotation by ID.
func (s *Store) UpdateAnnotation(a edit.Annotation) error {
	s.mu.Lock()
	found := false
	for _, existing := range s.cfg.Annotations {
		if existing.ID == a.ID {
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		return ErrNotFound
	}

	s.Apply(func(cfg *edit.Config) {
		for i := range cfg.Annotations {
			if cfg.Annotations[i].ID == a.ID {
				cfg.Annotations[i] = a
				return
			}
		}
	})
	return nil
}

// RemoveAnnotation deletes an annotation by ID.
func (s *Store) RemoveAnnotation(id string) {
	s.Apply(func(cfg *edit.Config) {
		out := cfg.Annotations[:0]
		for _, a := range cfg.Annotations {
			if a.ID != id {
				out = append(out, a)
			}
		}
		cfg.Annotations = out
	})
}

// SetCaptionOverride records a per-word caption delta keyed by transcript
// index. A zero-value override clears the entry.
func (s *Store) SetCaptionOverride(wordIndex string, ov edit.CaptionOverride) {
	s.Apply(func(cfg *edit.Config) {
		if ov == (edit.CaptionOverride{}) {
			delete(cfg.CaptionOverrides, wordIndex)
			return
		}
		if cfg.CaptionOverrides == nil {
			cfg.CaptionOverrides = make(map[string]edit.CaptionOverride)
		}
		cfg.CaptionOverrides[wordIndex] = ov
	})
}

// SetCaptionStyle replaces the caption rendering configuration.
func (s *Store) SetCaptionStyle(style edit.CaptionStyle) {
	s.Apply(func(cfg *edit.Config) {
		cfg.Captions = style
	})
}

// ApplyCaptionPreset applies a named caption preset.
func (s *Store) ApplyCaptionPreset(name string) {
	s.Apply(func(cfg *edit.Config) {
		cfg.ApplyCaptionPreset(name)
	})
}

// SetSegmentTransition changes the incoming transition of a segment.
func (s *Store) SetSegmentTransition(id, transition string, duration float64) error {
	s.mu.Lock()
	found := false
	for _, seg := range s.cfg.Segments {
		if seg.ID == id {
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		return ErrNotFound
	}

	s.Apply(func(cfg *edit.Config) {
		for i := range cfg.Segments {
			if cfg.Segments[i].ID == id {
				cfg.Segments[i].Transition = transition
				cfg.Segments[i].TransitionDuration = duration
				return
			}
		}
	})
	return nil
}
