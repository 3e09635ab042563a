// Package export writes the edited timeline out as a CMX 3600 EDL so a
// project can be finished in a desktop NLE. Events come from the segment
// list in array order; source timecodes are absolute positions in the
// original footage, record timecodes accumulate output time.
package export

import (
	"fmt"
	"math"

	"github.com/clipforge/clipforge-agent/internal/edit"
)

// Request is the export parameters supplied by the caller.
type Request struct {
	ProjectName string  `json:"projectName"`
	Format      string  `json:"format"`
	FrameRate   float64 `json:"frameRate"`
	OutputDir   string  `json:"outputDir"`
}

// Response reports what was written.
type Response struct {
	Status     string `json:"status"`
	Format     string `json:"format"`
	OutputPath string `json:"outputPath"`
	EventCount int    `json:"eventCount"`
}

// Event is one EDL edit event: a kept source span placed on the record
// timeline.
type Event struct {
	ClipName    string
	MediaPath   string
	SourceInMs  int
	SourceOutMs int
}

func (e Event) DurationMs() int {
	return e.SourceOutMs - e.SourceInMs
}

// EventsFromSegments flattens the segment list into EDL events. Segment
// times are clip-relative; clipStart shifts them back to absolute source
// timecodes in the original footage.
func EventsFromSegments(segments []edit.Segment, clipStart float64, clipName, mediaPath string) []Event {
	events := make([]Event, 0, len(segments))
	for i, seg := range segments {
		events = append(events, Event{
			ClipName:    fmt.Sprintf("%s_%03d", clipName, i+1),
			MediaPath:   mediaPath,
			SourceInMs:  int(math.Round((clipStart + seg.SourceStart) * 1000)),
			SourceOutMs: int(math.Round((clipStart + seg.SourceEnd) * 1000)),
		})
	}
	return events
}
