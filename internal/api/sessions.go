package api

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/clipforge/clipforge-agent/internal/edit"
	"github.com/clipforge/clipforge-agent/internal/playback"
	"github.com/clipforge/clipforge-agent/internal/project"
	"github.com/clipforge/clipforge-agent/internal/session"
)

// EditorSession bundles the live objects for one open project: the session
// store holding the configuration and history, the playback engine, and
// the remote player bridging the browser's video element.
type EditorSession struct {
	projectID string
	proj      *project.Project
	store     *session.Store
	engine    *playback.Engine
	player    *playback.RemotePlayer

	dragMu sync.Mutex
	drag   pointerDrag
}

func (s *EditorSession) ProjectID() string              { return s.projectID }
func (s *EditorSession) Dirty() bool                    { return s.store.Dirty() }
func (s *EditorSession) Config() edit.Config            { return s.store.Config() }
func (s *EditorSession) MarkSaved()                     { s.store.MarkSaved() }
func (s *EditorSession) Store() *session.Store          { return s.store }
func (s *EditorSession) Engine() *playback.Engine       { return s.engine }
func (s *EditorSession) Player() *playback.RemotePlayer { return s.player }
func (s *EditorSession) Project() *project.Project      { return s.proj }

// BeginDrag installs a pointer gesture, cancelling any in-flight one so a
// lost pointer-up can never wedge the session.
func (s *EditorSession) BeginDrag(d pointerDrag) {
	s.dragMu.Lock()
	defer s.dragMu.Unlock()
	if s.drag != nil {
		s.drag.Cancel()
	}
	s.drag = d
}

// Drag returns the in-flight pointer gesture, or nil.
func (s *EditorSession) Drag() pointerDrag {
	s.dragMu.Lock()
	defer s.dragMu.Unlock()
	return s.drag
}

// EndDrag clears the drag slot after a release or cancel.
func (s *EditorSession) EndDrag() {
	s.dragMu.Lock()
	defer s.dragMu.Unlock()
	s.drag = nil
}

// SessionManager owns the open editor sessions, one per project. Opening
// is idempotent; closing destroys the engine so no stale tick can fire.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*EditorSession

	projects      *project.Service
	frameInterval time.Duration
	logger        *slog.Logger
}

func NewSessionManager(projects *project.Service, frameInterval time.Duration, logger *slog.Logger) *SessionManager {
	return &SessionManager{
		sessions:      make(map[string]*EditorSession),
		projects:      projects,
		frameInterval: frameInterval,
		logger:        logger,
	}
}

// Open loads the project's documents and builds the session objects. A
// second Open for the same project returns the existing session.
func (m *SessionManager) Open(ctx context.Context, projectID string) (*EditorSession, error) {
	m.mu.Lock()
	if existing, ok := m.sessions[projectID]; ok {
		m.mu.Unlock()
		return existing, nil
	}
	m.mu.Unlock()

	proj, err := m.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if proj == nil {
		return nil, fmt.Errorf("project not found")
	}

	cfg, err := m.projects.LoadEditConfig(ctx, proj)
	if err != nil {
		return nil, err
	}
	transcript, err := m.projects.LoadTranscript(ctx, projectID)
	if err != nil {
		return nil, err
	}

	player := playback.NewRemotePlayer()
	engine := playback.NewEngine(playback.EngineOptions{
		Player:        player,
		Config:        cfg,
		Transcript:    transcript,
		ClipStart:     proj.ClipStart,
		FrameInterval: m.frameInterval,
		Logger:        m.logger,
	})

	store := session.NewStore(session.Options{
		Config:       cfg,
		ClipDuration: proj.ClipDuration(),
		Logger:       m.logger,
		OnChange: func(updated edit.Config) {
			engine.UpdateConfig(updated, transcript, proj.ClipStart)
		},
	})

	sess := &EditorSession{
		projectID: projectID,
		proj:      proj,
		store:     store,
		engine:    engine,
		player:    player,
	}

	m.mu.Lock()
	// Another request may have opened the session while we were loading.
	if existing, ok := m.sessions[projectID]; ok {
		m.mu.Unlock()
		engine.Destroy()
		return existing, nil
	}
	m.sessions[projectID] = sess
	m.mu.Unlock()

	m.logger.Info("editor session opened",
		"project_id", projectID, "clip_duration", proj.ClipDuration())
	return sess, nil
}

// Get returns the open session for a project, or nil.
func (m *SessionManager) Get(projectID string) *EditorSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[projectID]
}

// Close tears down a session. The engine is destroyed before the session
// is forgotten, per the engine's lifecycle contract.
func (m *SessionManager) Close(projectID string) {
	m.mu.Lock()
	sess, ok := m.sessions[projectID]
	if ok {
		delete(m.sessions, projectID)
	}
	m.mu.Unlock()

	if ok {
		sess.engine.Destroy()
		m.logger.Info("editor session closed", "project_id", projectID)
	}
}

// CloseAll tears down every session, for shutdown.
func (m *SessionManager) CloseAll() {
	m.mu.Lock()
	sessions := make([]*EditorSession, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*EditorSession)
	m.mu.Unlock()

	for _, s := range sessions {
		s.engine.Destroy()
	}
}

// DirtySessions exposes the open sessions to the autosaver.
func (m *SessionManager) DirtySessions() []project.DirtySession {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]project.DirtySession, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

// Count reports the number of open sessions.
func (m *SessionManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// AnyDirty reports whether any open session has unsaved edits, for the
// tray's unsaved indicator.
func (m *SessionManager) AnyDirty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.store.Dirty() {
			return true
		}
	}
	return false
}
