package edit

import (
	"encoding/json"
	"math"
	"testing"
)

func TestClampZoomAnchor(t *testing.T) {
	tests := []struct {
		name         string
		scale        float64
		ax, ay       float64
		wantX, wantY float64
	}{
		{"inside range", 2.0, 0.5, 0.5, 0.5, 0.5},
		{"clamped low", 1.5, 0.1, 0.5, 1.0 / 3.0, 0.5},
		{"clamped high", 1.5, 0.5, 0.9, 0.5, 2.0 / 3.0},
		{"both clamped", 1.5, 0.1, 0.9, 1.0 / 3.0, 2.0 / 3.0},
		{"scale one is free", 1.0, 0.05, 0.95, 0.05, 0.95},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gx, gy := ClampZoomAnchor(tt.scale, tt.ax, tt.ay)
			if math.Abs(gx-tt.wantX) > 1e-9 || math.Abs(gy-tt.wantY) > 1e-9 {
				t.Errorf("ClampZoomAnchor(%v, %v, %v) = (%v, %v), want (%v, %v)",
					tt.scale, tt.ax, tt.ay, gx, gy, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestClampZoomAnchor_ViewportStaysInFrame(t *testing.T) {
	for scale := 1.05; scale <= MaxZoomScale; scale += 0.05 {
		half := 0.5 / scale
		for _, req := range []float64{-1, 0, 0.25, 0.5, 0.75, 1, 2} {
			ax, ay := ClampZoomAnchor(scale, req, req)
			if ax < half-1e-9 || ax > 1-half+1e-9 {
				t.Fatalf("scale %.2f anchor %v: ax %v outside [%v, %v]", scale, req, ax, half, 1-half)
			}
			if ay < half-1e-9 || ay > 1-half+1e-9 {
				t.Fatalf("scale %.2f anchor %v: ay %v outside [%v, %v]", scale, req, ay, half, 1-half)
			}
		}
	}
}

func TestNormalize_EmptySegments(t *testing.T) {
	cfg := Config{}
	cfg.Normalize(42.5)

	if len(cfg.Segments) != 1 {
		t.Fatalf("got %d segments, want 1", len(cfg.Segments))
	}
	seg := cfg.Segments[0]
	if seg.SourceStart != 0 || seg.SourceEnd != 42.5 {
		t.Errorf("segment = [%v, %v], want [0, 42.5]", seg.SourceStart, seg.SourceEnd)
	}
	if seg.ID == "" {
		t.Error("segment ID is empty")
	}
}

func TestNormalize_DropsDegenerateSegments(t *testing.T) {
	cfg := Config{Segments: []Segment{
		{ID: "a", SourceStart: 0, SourceEnd: 5},
		{ID: "b", SourceStart: 5, SourceEnd: 5.05},
		{ID: "c", SourceStart: 6, SourceEnd: 10},
	}}
	cfg.Normalize(10)

	if len(cfg.Segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(cfg.Segments))
	}
	if cfg.Segments[0].ID != "a" || cfg.Segments[1].ID != "c" {
		t.Errorf("kept %q and %q, want a and c", cfg.Segments[0].ID, cfg.Segments[1].ID)
	}
}

func TestNormalize_KeepsMinimumDurationSegment(t *testing.T) {
	// The edge-adjustment guard allows a segment of exactly the minimum
	// duration; normalizing on the next load must not silently drop it.
	cfg := Config{Segments: []Segment{
		{ID: "a", SourceStart: 0, SourceEnd: 5},
		{ID: "b", SourceStart: 5, SourceEnd: 5 + MinSegmentDuration},
	}}
	cfg.Normalize(10)

	if len(cfg.Segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(cfg.Segments))
	}
	if cfg.Segments[1].ID != "b" {
		t.Errorf("minimum-duration segment dropped, kept %q", cfg.Segments[1].ID)
	}
}

func TestNormalize_ClampsZooms(t *testing.T) {
	cfg := Config{
		Segments: []Segment{{ID: "a", SourceStart: 0, SourceEnd: 10}},
		Zooms: []Zoom{
			{ID: "z1", Time: 1, Duration: 0.5, Scale: 5.0, Easing: "bounce", AnchorX: 0.0, AnchorY: 1.0},
		},
	}
	cfg.Normalize(10)

	z := cfg.Zooms[0]
	if z.Scale != MaxZoomScale {
		t.Errorf("scale = %v, want %v", z.Scale, MaxZoomScale)
	}
	if z.Easing != EasingEaseInOut {
		t.Errorf("easing = %q, want %q", z.Easing, EasingEaseInOut)
	}
	half := 0.5 / z.Scale
	if z.AnchorX != half || z.AnchorY != 1-half {
		t.Errorf("anchors = (%v, %v), want (%v, %v)", z.AnchorX, z.AnchorY, half, 1-half)
	}
}

func TestClone_Independent(t *testing.T) {
	cfg := Default(10)
	cfg.Zooms = []Zoom{{ID: "z1", Time: 1, Duration: 1, Scale: 1.5, Easing: EasingLinear, AnchorX: 0.5, AnchorY: 0.5}}
	cfg.CaptionOverrides = map[string]CaptionOverride{"3": {Hidden: true}}

	clone := cfg.Clone()
	clone.Segments[0].SourceEnd = 99
	clone.Zooms[0].Scale = 1.9
	clone.CaptionOverrides["3"] = CaptionOverride{Highlight: true}

	if cfg.Segments[0].SourceEnd == 99 {
		t.Error("clone shares segment storage")
	}
	if cfg.Zooms[0].Scale == 1.9 {
		t.Error("clone shares zoom storage")
	}
	if cfg.CaptionOverrides["3"].Highlight {
		t.Error("clone shares override map")
	}
}

func TestConfig_JSONFieldNames(t *testing.T) {
	cfg := Default(10)
	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	for _, key := range []string{"outputRatio", "segments", "cuts", "zooms", "captions", "transitions", "audio", "overlays"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("serialized document missing %q", key)
		}
	}

	segs := doc["segments"].([]any)
	seg := segs[0].(map[string]any)
	for _, key := range []string{"id", "sourceStart", "sourceEnd", "transition"} {
		if _, ok := seg[key]; !ok {
			t.Errorf("serialized segment missing %q", key)
		}
	}
}

func TestApplyCaptionPreset(t *testing.T) {
	cfg := Default(10)

	cfg.ApplyCaptionPreset("minimal")
	if cfg.Captions.MaxWordsPerLine != 6 || cfg.Captions.Position != "bottom" {
		t.Errorf("minimal preset not applied: %+v", cfg.Captions)
	}

	cfg.ApplyCaptionPreset("no_such_preset")
	if cfg.Captions.Style != "hormozi" {
		t.Errorf("unknown preset fell back to %q, want hormozi", cfg.Captions.Style)
	}
}

func TestPresetNames(t *testing.T) {
	names := PresetNames()
	if len(names) != 4 {
		t.Fatalf("got %d presets, want 4", len(names))
	}
}
