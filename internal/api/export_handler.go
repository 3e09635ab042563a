package api

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/clipforge/clipforge-agent/internal/export"
)

// exportEDLHandler flattens the project's current segment list into a CMX
// 3600 EDL on disk. An open session exports its live (possibly unsaved)
// state; otherwise the persisted config is used.
func exportEDLHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ExportEDLRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		if err := export.ValidateOutputDir(req.OutputDir); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

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

		if len(editCfg.Segments) == 0 {
			WriteError(w, http.StatusUnprocessableEntity, "project has no segments", "EMPTY_TIMELINE")
			return
		}

		projectName := export.SanitizeName(p.Title, 120)
		if projectName == "" {
			projectName = "clipforge_export"
		}

		frameRate := req.FrameRate
		if frameRate <= 0 {
			frameRate = p.FrameRate
		}
		if frameRate <= 0 {
			frameRate = 30.0
		}

		events := export.EventsFromSegments(editCfg.Segments, p.ClipStart, projectName, p.MediaPath)
		edl := export.GenerateEDL(events, projectName, frameRate)

		outputPath := filepath.Join(req.OutputDir, projectName+".edl")
		if err := os.WriteFile(outputPath, []byte(edl), 0o644); err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to write export file", "INTERNAL_ERROR")
			return
		}

		WriteJSON(w, http.StatusOK, ExportEDLResponse{
			OutputPath: outputPath,
			EventCount: len(events),
		})
	}
}
