package edit

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed presets.yaml
var presetsYAML []byte

type captionPreset struct {
	FontSize        string `yaml:"fontSize"`
	PrimaryColor    string `yaml:"primaryColor"`
	HighlightColor  string `yaml:"highlightColor"`
	BackgroundColor string `yaml:"backgroundColor"`
	Position        string `yaml:"position"`
	MaxWordsPerLine int    `yaml:"maxWordsPerLine"`
	Animation       string `yaml:"animation"`
}

var captionPresets = mustLoadPresets()

func mustLoadPresets() map[string]captionPreset {
	presets := map[string]captionPreset{}
	if err := yaml.Unmarshal(presetsYAML, &presets); err != nil {
		panic(fmt.Sprintf("edit: bad embedded caption presets: %v", err))
	}
	return presets
}

// PresetNames lists the embedded caption style presets.
func PresetNames() []string {
	names := make([]string, 0, len(captionPresets))
	for name := range captionPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ApplyCaptionPreset overwrites the style fields governed by the named
// preset, leaving font and keyword settings alone. Unknown names fall back
// to "hormozi", matching the pipeline's default.
func (c *Config) ApplyCaptionPreset(name string) {
	preset, ok := captionPresets[name]
	if !ok {
		name = "hormozi"
		preset = captionPresets[name]
	}
	c.Captions.Style = name
	c.Captions.FontSize = preset.FontSize
	c.Captions.PrimaryColor = preset.PrimaryColor
	c.Captions.HighlightColor = preset.HighlightColor
	c.Captions.BackgroundColor = preset.BackgroundColor
	c.Captions.Position = preset.Position
	c.Captions.MaxWordsPerLine = preset.MaxWordsPerLine
	c.Captions.Animation = preset.Animation
}

// Default returns the configuration a fresh project starts from: one
// full-length segment, no zooms, hormozi captions.
func Default(clipDuration float64) Config {
	cfg := Config{
		OutputRatio: "9:16",
		Segments: []Segment{{
			ID:                 NewID(),
			SourceStart:        0,
			SourceEnd:          clipDuration,
			Transition:         TransitionNone,
			TransitionDuration: DefaultTransitionDuration,
		}},
		Reframing: Reframing{Enabled: true, Mode: "face_track"},
		Captions: CaptionStyle{
			Enabled:           true,
			Font:              "Inter",
			HighlightKeywords: true,
		},
		Transitions: TransitionDefaults{
			Intro:       "fade_in",
			Outro:       TransitionNone,
			BetweenCuts: TransitionHard,
		},
		Audio: Audio{
			NormalizeVolume: true,
			Music:           Music{Volume: 0.1, DuckOnSpeech: true},
			SoundEffects:    SoundEffects{Volume: 0.3},
		},
		Overlays: Overlays{Watermark: Watermark{Position: "bottom_right"}},
	}
	cfg.ApplyCaptionPreset("hormozi")
	return cfg
}
