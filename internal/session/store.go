// Package session holds the live edit configuration for one editing
// session: the bounded undo/redo stacks, the debounced-gesture commit
// policy, selection state, and the dirty flag the auto-save collaborator
// watches. Only the edit configuration is versioned; selection and
// timeline viewport are not part of history.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/clipforge/clipforge-agent/internal/edit"
)

const (
	// HistoryLimit bounds the undo stack; the oldest snapshot is evicted
	// first.
	HistoryLimit = 50

	// DefaultGestureDebounce is the quiet period after which an in-flight
	// gesture is committed to history as a single entry.
	DefaultGestureDebounce = 300 * time.Millisecond
)

// Selection tracks what the user currently has focused. WordIndex is -1
// when no caption word is selected.
type Selection struct {
	SegmentID    string `json:"segmentId,omitempty"`
	ZoomID       string `json:"zoomId,omitempty"`
	AnnotationID string `json:"annotationId,omitempty"`
	WordIndex    int    `json:"wordIndex"`
}

// Options configures a new store.
type Options struct {
	Config          edit.Config
	ClipDuration    float64
	GestureDebounce time.Duration
	Logger          *slog.Logger

	// OnChange observes every committed configuration change (discrete
	// edits, gesture intermediates, undo, redo). Used to hot-swap the
	// playback engine without tearing it down.
	OnChange func(edit.Config)
}

// Store is the edit history / session state machine. Each editing session
// owns exactly one store; the pending-gesture slot is scoped here so
// concurrent sessions cannot corrupt each other's history.
type Store struct {
	mu sync.Mutex

	cfg          edit.Config
	clipDuration float64

	undo []edit.Config
	redo []edit.Config

	pendingGesture *edit.Config
	gestureTimer   *time.Timer
	debounce       time.Duration

	dirty bool
	sel   Selection

	onChange func(edit.Config)
	logger   *slog.Logger
}

// NewStore takes ownership of a configuration. The config is normalized so
// the session always starts from an internally valid document.
func NewStore(opts Options) *Store {
	cfg := opts.Config.Clone()
	cfg.Normalize(opts.ClipDuration)

	debounce := opts.GestureDebounce
	if debounce <= 0 {
		debounce = DefaultGestureDebounce
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{
		cfg:          cfg,
		clipDuration: opts.ClipDuration,
		debounce:     debounce,
		sel:          Selection{WordIndex: -1},
		onChange:     opts.OnChange,
		logger:       logger,
	}
}

// Config returns a snapshot of the current configuration.
func (s *Store) Config() edit.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Clone()
}

// ClipDuration returns the source clip length the session was opened with.
func (s *Store) ClipDuration() float64 {
	return s.clipDuration
}

// Dirty reports whether edits exist that have not been persisted.
func (s *Store) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// MarkSaved clears the unsaved indicator after a successful persist.
func (s *Store) MarkSaved() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty = false
}

// Selection returns the current UI selection.
func (s *Store) Selection() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel
}

// SetSelection replaces the UI selection. Not versioned.
func (s *Store) SetSelection(sel Selection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel = sel
}

// HistoryDepth reports the undo and redo stack sizes.
func (s *Store) HistoryDepth() (undo, redo int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undo), len(s.redo)
}

// Apply commits a discrete edit: the pre-mutation snapshot is pushed onto
// the undo stack, the redo stack is cleared, the mutation applied, and the
// session marked dirty.
func (s *Store) Apply(mutate func(cfg *edit.Config)) {
	s.mu.Lock()
	s.flushGestureLocked()
	s.pushUndoLocked(s.cfg.Clone())
	s.redo = nil
	mutate(&s.cfg)
	s.dirty = true
	s.notifyLocked()
}

// ApplyGesture commits one intermediate value of a continuous gesture. The
// pre-gesture snapshot is captured once into the pending slot; every
// intermediate is applied immediately for live preview; history receives a
// single entry when the quiet period elapses. Starting a gesture is a new
// edit, so the redo stack is discarded at capture time, not only when the
// gesture flushes.
func (s *Store) ApplyGesture(mutate func(cfg *edit.Config)) {
	s.mu.Lock()
	if s.pendingGesture == nil {
		snap := s.cfg.Clone()
		s.pendingGesture = &snap
		s.redo = nil
	}
	if s.gestureTimer != nil {
		s.gestureTimer.Stop()
	}
	s.gestureTimer = time.AfterFunc(s.debounce, s.commitGesture)
	mutate(&s.cfg)
	s.dirty = true
	s.notifyLocked()
}

// FlushGesture commits a pending gesture to history immediately, without
// waiting for the quiet period. No-op when nothing is pending.
func (s *Store) FlushGesture() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushGestureLocked()
}

func (s *Store) commitGesture() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushGestureLocked()
}

func (s *Store) flushGestureLocked() {
	if s.pendingGesture == nil {
		return
	}
	if s.gestureTimer != nil {
		s.gestureTimer.Stop()
		s.gestureTimer = nil
	}
	s.pushUndoLocked(*s.pendingGesture)
	s.redo = nil
	s.pendingGesture = nil
}

// Undo restores the previous configuration. A pending gesture is flushed
// into history first so a mid-undo race can never lose an edit. Reports
// whether anything changed.
func (s *Store) Undo() bool {
	s.mu.Lock()
	s.flushGestureLocked()
	if len(s.undo) == 0 {
		s.mu.Unlock()
		return false
	}

	top := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.redo = append(s.redo, s.cfg)
	s.cfg = top
	s.dirty = true
	s.notifyLocked()
	return true
}

// Redo reverses the most recent undo. Like Undo, a pending gesture is
// flushed first; since the gesture already invalidated the redo stack,
// the flush makes this a no-op rather than a replay over live edits.
func (s *Store) Redo() bool {
	s.mu.Lock()
	s.flushGestureLocked()
	if len(s.redo) == 0 {
		s.mu.Unlock()
		return false
	}

	top := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.undo = append(s.undo, s.cfg)
	s.cfg = top
	s.dirty = true
	s.notifyLocked()
	return true
}

func (s *Store) pushUndoLocked(snapshot edit.Config) {
	if len(s.undo) >= HistoryLimit {
		s.undo = append(s.undo[:0], s.undo[1:]...)
		s.undo[len(s.undo)-1] = snapshot
		return
	}
	s.undo = append(s.undo, snapshot)
}

// notifyLocked clones the configuration, releases the lock, and informs the
// observer. Must be the caller's final statement before returning.
func (s *Store) notifyLocked() {
	var snap edit.Config
	fn := s.onChange
	if fn != nil {
		snap = s.cfg.Clone()
	}
	s.mu.Unlock()
	if fn != nil {
		fn(snap)
	}
}
