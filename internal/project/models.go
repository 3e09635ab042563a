// Package project persists editing projects: the source clip reference,
// probed media metadata, the edit configuration document, and the
// transcript. One project corresponds to one short-form clip being edited.
package project

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusDraft     = "draft"
	StatusEditing   = "editing"
	StatusRendering = "rendering"
	StatusDone      = "done"
)

// Project is a clip under edit. ClipStart/ClipEnd locate the clip within
// the original footage; segment times inside the edit configuration are
// relative to ClipStart.
type Project struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	MediaPath string    `json:"mediaPath"`
	ClipStart float64   `json:"clipStart"`
	ClipEnd   float64   `json:"clipEnd"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	FrameRate float64   `json:"frameRate"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ClipDuration is the editable length in seconds.
func (p *Project) ClipDuration() float64 {
	return p.ClipEnd - p.ClipStart
}

func NewID() string {
	return uuid.NewString()
}
