package api

import (
	"time"

	"github.com/clipforge/clipforge-agent/internal/edit"
	"github.com/clipforge/clipforge-agent/internal/project"
	"github.com/clipforge/clipforge-agent/internal/session"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
}

type StatusResponse struct {
	State          string `json:"state"`
	ProjectsCount  int    `json:"projects_count"`
	OpenSessions   int    `json:"open_sessions"`
	UnsavedEdits   bool   `json:"unsaved_edits"`
	AutosavePaused bool   `json:"autosave_paused"`
}

type ProjectResponse struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	MediaPath string  `json:"mediaPath"`
	ClipStart float64 `json:"clipStart"`
	ClipEnd   float64 `json:"clipEnd"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	FrameRate float64 `json:"frameRate"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

type ProjectsResponse struct {
	Projects []ProjectResponse `json:"projects"`
}

type CreateProjectRequest struct {
	Title     string  `json:"title,omitempty"`
	MediaPath string  `json:"mediaPath"`
	ClipStart float64 `json:"clipStart,omitempty"`
	ClipEnd   float64 `json:"clipEnd,omitempty"`
}

type RenameProjectRequest struct {
	Title string `json:"title"`
}

// SessionResponse is the full editor state handed to the UI after opening
// a session or applying an edit.
type SessionResponse struct {
	ProjectID string            `json:"projectId"`
	Config    edit.Config       `json:"config"`
	Selection session.Selection `json:"selection"`
	UndoDepth int               `json:"undoDepth"`
	RedoDepth int               `json:"redoDepth"`
	Dirty     bool              `json:"dirty"`
}

// EditRequest carries one edit command. Op selects the operation; the
// remaining fields are read per-op.
type EditRequest struct {
	Op string `json:"op"`

	SegmentID  string  `json:"segmentId,omitempty"`
	Edge       string  `json:"edge,omitempty"`
	Time       float64 `json:"time,omitempty"`
	Transition string  `json:"transition,omitempty"`
	Duration   float64 `json:"duration,omitempty"`

	Zoom       *edit.Zoom       `json:"zoom,omitempty"`
	Annotation *edit.Annotation `json:"annotation,omitempty"`

	WordIndex string                `json:"wordIndex,omitempty"`
	Override  *edit.CaptionOverride `json:"override,omitempty"`
	Style     *edit.CaptionStyle    `json:"style,omitempty"`
	Preset    string                `json:"preset,omitempty"`

	ID string `json:"id,omitempty"`
}

// EditResponse echoes the new session state plus the ID of anything the
// edit created.
type EditResponse struct {
	SessionResponse
	CreatedID string `json:"createdId,omitempty"`
}

type HistoryResponse struct {
	Applied   bool `json:"applied"`
	UndoDepth int  `json:"undoDepth"`
	RedoDepth int  `json:"redoDepth"`
}

type SelectionRequest struct {
	Selection session.Selection `json:"selection"`
}

// DragRequest drives the pointer gesture protocol. Action is one of begin,
// move, release, or cancel; begin additionally needs a target ("edge" with
// segmentId+edge, or "zoom" with zoomId) and the rendered track width so
// the ruler and snap threshold work in the UI's pixel space.
type DragRequest struct {
	Action      string  `json:"action"`
	Target      string  `json:"target,omitempty"`
	SegmentID   string  `json:"segmentId,omitempty"`
	Edge        string  `json:"edge,omitempty"`
	ZoomID      string  `json:"zoomId,omitempty"`
	WidthPixels float64 `json:"widthPixels,omitempty"`
	Pixel       float64 `json:"pixel"`
}

// DragResponse reports the snapped preview position; Committed is set on
// release when the gesture produced an edit rather than a discarded click.
type DragResponse struct {
	Preview   float64 `json:"preview"`
	Snapped   bool    `json:"snapped"`
	Committed bool    `json:"committed,omitempty"`
}

// TransportRequest drives the playback engine. Command is one of play,
// seek, step, or shuttle.
type TransportRequest struct {
	Command string  `json:"command"`
	Time    float64 `json:"time,omitempty"`
	Delta   float64 `json:"delta,omitempty"`
	Speed   int     `json:"speed,omitempty"`
}

// PlayerReportRequest is the browser video element's position report. The
// response carries the commands the engine queued since the last report.
type PlayerReportRequest struct {
	Position float64 `json:"position"`
	Playing  bool    `json:"playing"`
}

type PlayerCommandsResponse struct {
	SeekTo      *float64 `json:"seekTo,omitempty"`
	WantPlaying bool     `json:"wantPlaying"`
}

type ExportEDLRequest struct {
	OutputDir string  `json:"outputDir"`
	FrameRate float64 `json:"frameRate,omitempty"`
}

type ExportEDLResponse struct {
	OutputPath string `json:"outputPath"`
	EventCount int    `json:"eventCount"`
}

type RenderSubmitResponse struct {
	JobID string `json:"jobId"`
}

type TranscriptRequest struct {
	Transcript edit.Transcript `json:"transcript"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func ProjectToResponse(p *project.Project) ProjectResponse {
	return ProjectResponse{
		ID:        p.ID,
		Title:     p.Title,
		MediaPath: p.MediaPath,
		ClipStart: p.ClipStart,
		ClipEnd:   p.ClipEnd,
		Width:     p.Width,
		Height:    p.Height,
		FrameRate: p.FrameRate,
		Status:    p.Status,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
		UpdatedAt: p.UpdatedAt.Format(time.RFC3339),
	}
}

func SessionToResponse(s *EditorSession) SessionResponse {
	undo, redo := s.Store().HistoryDepth()
	return SessionResponse{
		ProjectID: s.ProjectID(),
		Config:    s.Store().Config(),
		Selection: s.Store().Selection(),
		UndoDepth: undo,
		RedoDepth: redo,
		Dirty:     s.Store().Dirty(),
	}
}
