package render

import (
	"github.com/clipforge/clipforge-agent/internal/edit"
	"github.com/clipforge/clipforge-agent/internal/timeline"
)

// Job is the payload handed to the render service: everything it needs to
// reproduce the preview exactly, with no callbacks to the agent.
type Job struct {
	ProjectID        string           `json:"projectId"`
	MediaPath        string           `json:"mediaPath"`
	ClipStart        float64          `json:"clipStart"`
	ClipEnd          float64          `json:"clipEnd"`
	Config           edit.Config      `json:"editConfig"`
	Transcript       *edit.Transcript `json:"transcript,omitempty"`
	ExpectedDuration float64          `json:"expectedDuration"`
}

// NewJob assembles a render job. ExpectedDuration accounts for crossfade
// overlap, so the render service can validate its output length against
// what the preview showed.
func NewJob(projectID, mediaPath string, clipStart, clipEnd float64, cfg edit.Config, transcript *edit.Transcript) Job {
	tmap := timeline.NewTransitionAwareTimeMap(cfg.Segments)
	return Job{
		ProjectID:        projectID,
		MediaPath:        mediaPath,
		ClipStart:        clipStart,
		ClipEnd:          clipEnd,
		Config:           cfg.Clone(),
		Transcript:       transcript,
		ExpectedDuration: tmap.TotalDuration(),
	}
}
