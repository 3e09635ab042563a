package project

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/clipforge/clipforge-agent/internal/edit"
)

// DirtySession is an open editing session the auto-saver can persist. The
// API layer's session manager implements this.
type DirtySession interface {
	ProjectID() string
	Dirty() bool
	Config() edit.Config
	MarkSaved()
}

// SessionLister enumerates the sessions currently open in the process.
type SessionLister func() []DirtySession

// Autosaver periodically persists dirty editing sessions. Failures are
// logged and left dirty for the next cycle; editing never blocks on
// persistence.
type Autosaver struct {
	repo     Repository
	sessions SessionLister
	logger   *slog.Logger
	interval time.Duration
	running  atomic.Bool
	paused   atomic.Bool
}

func NewAutosaver(repo Repository, sessions SessionLister, logger *slog.Logger) *Autosaver {
	return &Autosaver{
		repo:     repo,
		sessions: sessions,
		logger:   logger,
		interval: 5 * time.Second,
	}
}

// SetInterval overrides the save cadence. Call before Start.
func (a *Autosaver) SetInterval(d time.Duration) {
	if d > 0 {
		a.interval = d
	}
}

// Start runs the save loop until the context is cancelled. Calling Start
// while already running is a no-op.
func (a *Autosaver) Start(ctx context.Context) {
	if a.running.Swap(true) {
		return
	}
	a.logger.Info("autosaver started", "interval", a.interval)

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("autosaver stopping")
			// Final best-effort pass so a quit does not drop edits.
			a.saveDirty(context.Background())
			a.running.Store(false)
			return
		case <-ticker.C:
			if !a.paused.Load() {
				a.saveDirty(ctx)
			}
		}
	}
}

func (a *Autosaver) Pause() {
	a.paused.Store(true)
	a.logger.Info("autosaver paused")
}

func (a *Autosaver) Resume() {
	a.paused.Store(false)
	a.logger.Info("autosaver resumed")
}

func (a *Autosaver) IsPaused() bool {
	return a.paused.Load()
}

func (a *Autosaver) IsRunning() bool {
	return a.running.Load()
}

// SaveNow persists all dirty sessions immediately, regardless of pause
// state. Used on explicit save requests and at shutdown.
func (a *Autosaver) SaveNow(ctx context.Context) {
	a.saveDirty(ctx)
}

func (a *Autosaver) saveDirty(ctx context.Context) {
	for _, sess := range a.sessions() {
		if !sess.Dirty() {
			continue
		}
		if err := a.repo.SaveEditConfig(ctx, sess.ProjectID(), sess.Config()); err != nil {
			// Left dirty; the unsaved indicator stays on until a save lands.
			a.logger.Error("autosave failed",
				"project_id", sess.ProjectID(), "error", err)
			continue
		}
		sess.MarkSaved()
		a.logger.Debug("autosaved project", "project_id", sess.ProjectID())
	}
}
