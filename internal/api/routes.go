package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/clipforge/clipforge-agent/internal/project"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(CORSAllowlist())
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Repository, cfg.Logger))

		r.Get("/status", statusHandler(cfg))

		r.Get("/projects", listProjectsHandler(cfg))
		r.Post("/projects", createProjectHandler(cfg))
		r.Get("/projects/{id}", getProjectHandler(cfg))
		r.Delete("/projects/{id}", deleteProjectHandler(cfg))
		r.Put("/projects/{id}/title", renameProjectHandler(cfg))
		r.Put("/projects/{id}/transcript", setTranscriptHandler(cfg))
		r.With(LoopbackGuard()).Get("/projects/{id}/media", mediaHandler(cfg))

		r.Post("/projects/{id}/session", openSessionHandler(cfg))
		r.Delete("/projects/{id}/session", closeSessionHandler(cfg))
		r.Get("/projects/{id}/session", getSessionHandler(cfg))
		r.Post("/projects/{id}/session/edits", editHandler(cfg))
		r.Post("/projects/{id}/session/undo", undoHandler(cfg))
		r.Post("/projects/{id}/session/redo", redoHandler(cfg))
		r.Put("/projects/{id}/session/selection", selectionHandler(cfg))
		r.Post("/projects/{id}/session/drag", dragHandler(cfg))
		r.Post("/projects/{id}/session/save", saveSessionHandler(cfg))

		r.Post("/projects/{id}/transport", transportHandler(cfg))
		r.Post("/projects/{id}/player", playerReportHandler(cfg))
		r.Get("/projects/{id}/state", stateHandler(cfg))
		r.Get("/projects/{id}/events", eventsHandler(cfg))

		r.Post("/projects/{id}/export/edl", exportEDLHandler(cfg))
		r.Post("/projects/{id}/render", submitRenderHandler(cfg))
		r.Get("/render/jobs/{jobID}", renderStatusHandler(cfg))

		r.Post("/autosave/pause", autosavePauseHandler(cfg))
		r.Post("/autosave/resume", autosaveResumeHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: cfg.Version,
			UptimeS: uptime,
		})
	}
}

func statusHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count, err := cfg.Projects.Count(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to count projects", "INTERNAL_ERROR")
			return
		}

		state := "idle"
		if cfg.Sessions.Count() > 0 {
			state = "editing"
		}

		WriteJSON(w, http.StatusOK, StatusResponse{
			State:          state,
			ProjectsCount:  count,
			OpenSessions:   cfg.Sessions.Count(),
			UnsavedEdits:   cfg.Sessions.AnyDirty(),
			AutosavePaused: cfg.Autosaver != nil && cfg.Autosaver.IsPaused(),
		})
	}
}

func listProjectsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := cfg.Projects.List(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list projects", "INTERNAL_ERROR")
			return
		}

		resp := ProjectsResponse{Projects: make([]ProjectResponse, len(projects))}
		for i, p := range projects {
			resp.Projects[i] = ProjectToResponse(p)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func createProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateProjectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.MediaPath == "" {
			WriteError(w, http.StatusBadRequest, "mediaPath is required", "BAD_REQUEST")
			return
		}

		p, err := cfg.Projects.Create(r.Context(), project.CreateParams{
			Title:     req.Title,
			MediaPath: req.MediaPath,
			ClipStart: req.ClipStart,
			ClipEnd:   req.ClipEnd,
		})
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		WriteJSON(w, http.StatusCreated, ProjectToResponse(p))
	}
}

func getProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := cfg.Projects.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		if p == nil {
			WriteError(w, http.StatusNotFound, "project not found", "NOT_FOUND")
			return
		}
		WriteJSON(w, http.StatusOK, ProjectToResponse(p))
	}
}

func deleteProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		// An open session would keep writing a deleted project.
		cfg.Sessions.Close(id)

		if err := cfg.Projects.Delete(r.Context(), id); err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func renameProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RenameProjectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.Title == "" {
			WriteError(w, http.StatusBadRequest, "title is required", "BAD_REQUEST")
			return
		}

		if err := cfg.Projects.Rename(r.Context(), chi.URLParam(r, "id"), req.Title); err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func setTranscriptHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TranscriptRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		id := chi.URLParam(r, "id")
		if err := cfg.Projects.SetTranscript(r.Context(), id, req.Transcript); err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}

		// A live session picks the transcript up on its next open, not
		// mid-flight. The UI closes the session before re-transcribing.
		w.WriteHeader(http.StatusNoContent)
	}
}

func mediaHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		p, err := cfg.Projects.Get(r.Context(), id)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		if p == nil {
			WriteError(w, http.StatusNotFound, "project not found", "NOT_FOUND")
			return
		}

		if err := cfg.Media.ServeFile(w, r, p.MediaPath); err != nil {
			cfg.Logger.Error("media serve error", "error", err, "project_id", id)
		}
	}
}

func openSessionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := cfg.Sessions.Open(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			WriteError(w, http.StatusNotFound, err.Error(), "NOT_FOUND")
			return
		}
		WriteJSON(w, http.StatusOK, SessionToResponse(sess))
	}
}

func closeSessionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		// Persist outstanding edits before the store goes away.
		if sess := cfg.Sessions.Get(id); sess != nil {
			sess.Store().FlushGesture()
			if sess.Dirty() {
				if err := cfg.Projects.SaveEditConfig(r.Context(), id, sess.Config()); err != nil {
					WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
					return
				}
				sess.MarkSaved()
			}
		}

		cfg.Sessions.Close(id)
		w.WriteHeader(http.StatusNoContent)
	}
}

func getSessionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := cfg.Sessions.Get(chi.URLParam(r, "id"))
		if sess == nil {
			WriteError(w, http.StatusNotFound, "no open session", "NOT_FOUND")
			return
		}
		WriteJSON(w, http.StatusOK, SessionToResponse(sess))
	}
}

func undoHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := cfg.Sessions.Get(chi.URLParam(r, "id"))
		if sess == nil {
			WriteError(w, http.StatusNotFound, "no open session", "NOT_FOUND")
			return
		}

		applied := sess.Store().Undo()
		undo, redo := sess.Store().HistoryDepth()
		WriteJSON(w, http.StatusOK, HistoryResponse{Applied: applied, UndoDepth: undo, RedoDepth: redo})
	}
}

func redoHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := cfg.Sessions.Get(chi.URLParam(r, "id"))
		if sess == nil {
			WriteError(w, http.StatusNotFound, "no open session", "NOT_FOUND")
			return
		}

		applied := sess.Store().Redo()
		undo, redo := sess.Store().HistoryDepth()
		WriteJSON(w, http.StatusOK, HistoryResponse{Applied: applied, UndoDepth: undo, RedoDepth: redo})
	}
}

func selectionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := cfg.Sessions.Get(chi.URLParam(r, "id"))
		if sess == nil {
			WriteError(w, http.StatusNotFound, "no open session", "NOT_FOUND")
			return
		}

		var req SelectionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		sess.Store().SetSelection(req.Selection)
		w.WriteHeader(http.StatusNoContent)
	}
}

func saveSessionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		sess := cfg.Sessions.Get(id)
		if sess == nil {
			WriteError(w, http.StatusNotFound, "no open session", "NOT_FOUND")
			return
		}

		sess.Store().FlushGesture()
		if err := cfg.Projects.SaveEditConfig(r.Context(), id, sess.Config()); err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		sess.MarkSaved()
		w.WriteHeader(http.StatusNoContent)
	}
}

func transportHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := cfg.Sessions.Get(chi.URLParam(r, "id"))
		if sess == nil {
			WriteError(w, http.StatusNotFound, "no open session", "NOT_FOUND")
			return
		}

		var req TransportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		engine := sess.Engine()
		switch req.Command {
		case "toggle":
			engine.TogglePlay()
		case "seek":
			engine.Seek(req.Time)
		case "step":
			engine.Step(req.Delta)
		case "shuttle":
			engine.SetShuttleSpeed(req.Speed)
		default:
			WriteError(w, http.StatusBadRequest, "unknown transport command", "BAD_REQUEST")
			return
		}

		WriteJSON(w, http.StatusOK, engine.State())
	}
}

func playerReportHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := cfg.Sessions.Get(chi.URLParam(r, "id"))
		if sess == nil {
			WriteError(w, http.StatusNotFound, "no open session", "NOT_FOUND")
			return
		}

		var req PlayerReportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		sess.Player().Report(req.Position, req.Playing)
		seekTo, wantPlaying := sess.Player().Commands()
		WriteJSON(w, http.StatusOK, PlayerCommandsResponse{SeekTo: seekTo, WantPlaying: wantPlaying})
	}
}

func stateHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := cfg.Sessions.Get(chi.URLParam(r, "id"))
		if sess == nil {
			WriteError(w, http.StatusNotFound, "no open session", "NOT_FOUND")
			return
		}
		WriteJSON(w, http.StatusOK, sess.Engine().State())
	}
}

func autosavePauseHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.Autosaver == nil {
			WriteError(w, http.StatusConflict, "autosave not running", "CONFLICT")
			return
		}
		cfg.Autosaver.Pause()
		w.WriteHeader(http.StatusNoContent)
	}
}

func autosaveResumeHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.Autosaver == nil {
			WriteError(w, http.StatusConflict, "autosave not running", "CONFLICT")
			return
		}
		cfg.Autosaver.Resume()
		w.WriteHeader(http.StatusNoContent)
	}
}
