package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clipforge/clipforge-agent/internal/project"
	"github.com/clipforge/clipforge-agent/internal/render"
)

// submitRenderHandler ships the project's current edit configuration to
// the render service. Like EDL export, an open session contributes its
// live state.
func submitRenderHandler(cfg ServerConfig) http.HandlerFunc {
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

		editCfg, err := cfg.Projects.LoadEditConfig(r.Context(), p)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		if sess := cfg.Sessions.Get(id); sess != nil {
			sess.Store().FlushGesture()
			editCfg = sess.Config()
		}

		transcript, err := cfg.Projects.LoadTranscript(r.Context(), id)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}

		job := render.NewJob(p.ID, p.MediaPath, p.ClipStart, p.ClipEnd, editCfg, transcript)
		submission, err := cfg.Render.Submit(r.Context(), job)
		if err != nil {
			var subErr *render.SubmitError
			if errors.As(err, &subErr) && !subErr.IsRetryable() {
				WriteError(w, http.StatusBadRequest, err.Error(), "RENDER_REJECTED")
				return
			}
			WriteError(w, http.StatusBadGateway, err.Error(), "RENDER_UNAVAILABLE")
			return
		}

		if err := cfg.Projects.SetStatus(r.Context(), id, project.StatusRendering); err != nil {
			cfg.Logger.Warn("failed to mark project rendering", "error", err, "project_id", id)
		}

		WriteJSON(w, http.StatusAccepted, RenderSubmitResponse{JobID: submission.JobID})
	}
}

func renderStatusHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID := chi.URLParam(r, "jobID")
		if jobID == "" {
			WriteError(w, http.StatusBadRequest, "job id required", "BAD_REQUEST")
			return
		}

		status, err := cfg.Render.Status(r.Context(), jobID)
		if err != nil {
			WriteError(w, http.StatusBadGateway, err.Error(), "RENDER_UNAVAILABLE")
			return
		}

		WriteJSON(w, http.StatusOK, status)
	}
}
