package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clipforge/clipforge-agent/internal/edit"
	"github.com/clipforge/clipforge-agent/internal/interaction"
	"github.com/clipforge/clipforge-agent/internal/session"
	"github.com/clipforge/clipforge-agent/internal/timeline"
)

// editHandler dispatches a single edit command against the project's open
// session. Ops suffixed "Gesture" are coalesced into one history entry;
// the rest commit immediately.
func editHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := cfg.Sessions.Get(chi.URLParam(r, "id"))
		if sess == nil {
			WriteError(w, http.StatusNotFound, "no open session", "NOT_FOUND")
			return
		}

		var req EditRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		store := sess.Store()
		var createdID string
		var opErr error

		switch req.Op {
		case "splitSegment":
			if req.SegmentID == "" {
				WriteError(w, http.StatusBadRequest, "segmentId is required", "BAD_REQUEST")
				return
			}
			store.SplitSegment(req.SegmentID, req.Time)

		case "splitAtPlayhead":
			tmap := timeline.NewTimeMap(store.Config().Segments)
			if !interaction.SplitAtPlayhead(store, tmap, sess.Engine().State().OutputTime) {
				WriteError(w, http.StatusConflict, "playhead is not strictly inside a segment", "NOT_SPLITTABLE")
				return
			}

		case "deleteSegment":
			if req.SegmentID == "" {
				WriteError(w, http.StatusBadRequest, "segmentId is required", "BAD_REQUEST")
				return
			}
			opErr = store.DeleteSegment(req.SegmentID)

		case "adjustEdge", "commitEdge":
			edge, ok := parseEdge(req.Edge)
			if !ok || req.SegmentID == "" {
				WriteError(w, http.StatusBadRequest, "segmentId and edge (start|end) are required", "BAD_REQUEST")
				return
			}
			if req.Op == "adjustEdge" {
				store.AdjustSegmentEdge(req.SegmentID, edge, req.Time)
			} else {
				store.CommitSegmentEdge(req.SegmentID, edge, req.Time)
			}

		case "setTransition":
			if req.SegmentID == "" {
				WriteError(w, http.StatusBadRequest, "segmentId is required", "BAD_REQUEST")
				return
			}
			opErr = store.SetSegmentTransition(req.SegmentID, req.Transition, req.Duration)

		case "addZoom":
			if req.Zoom == nil {
				WriteError(w, http.StatusBadRequest, "zoom is required", "BAD_REQUEST")
				return
			}
			createdID = store.AddZoom(*req.Zoom)

		case "updateZoom":
			if req.Zoom == nil {
				WriteError(w, http.StatusBadRequest, "zoom is required", "BAD_REQUEST")
				return
			}
			opErr = store.UpdateZoom(*req.Zoom)

		case "updateZoomGesture":
			if req.Zoom == nil {
				WriteError(w, http.StatusBadRequest, "zoom is required", "BAD_REQUEST")
				return
			}
			opErr = store.UpdateZoomGesture(*req.Zoom)

		case "removeZoom":
			store.RemoveZoom(req.ID)

		case "addAnnotation":
			if req.Annotation == nil {
				WriteError(w, http.StatusBadRequest, "annotation is required", "BAD_REQUEST")
				return
			}
			createdID = store.AddAnnotation(*req.Annotation)

		case "updateAnnotation":
			if req.Annotation == nil {
				WriteError(w, http.StatusBadRequest, "annotation is required", "BAD_REQUEST")
				return
			}
			opErr = store.UpdateAnnotation(*req.Annotation)

		case "removeAnnotation":
			store.RemoveAnnotation(req.ID)

		case "setCaptionOverride":
			if req.WordIndex == "" {
				WriteError(w, http.StatusBadRequest, "wordIndex is required", "BAD_REQUEST")
				return
			}
			ov := edit.CaptionOverride{}
			if req.Override != nil {
				ov = *req.Override
			}
			store.SetCaptionOverride(req.WordIndex, ov)

		case "setCaptionStyle":
			if req.Style == nil {
				WriteError(w, http.StatusBadRequest, "style is required", "BAD_REQUEST")
				return
			}
			store.SetCaptionStyle(*req.Style)

		case "applyCaptionPreset":
			if !knownPreset(req.Preset) {
				WriteError(w, http.StatusBadRequest, "unknown caption preset", "BAD_REQUEST")
				return
			}
			store.ApplyCaptionPreset(req.Preset)

		default:
			WriteError(w, http.StatusBadRequest, "unknown edit op", "BAD_REQUEST")
			return
		}

		switch {
		case errors.Is(opErr, session.ErrLastSegment):
			WriteError(w, http.StatusConflict, opErr.Error(), "LAST_SEGMENT")
			return
		case errors.Is(opErr, session.ErrNotFound):
			WriteError(w, http.StatusNotFound, opErr.Error(), "NOT_FOUND")
			return
		case opErr != nil:
			WriteError(w, http.StatusInternalServerError, opErr.Error(), "INTERNAL_ERROR")
			return
		}

		WriteJSON(w, http.StatusOK, EditResponse{
			SessionResponse: SessionToResponse(sess),
			CreatedID:       createdID,
		})
	}
}

func parseEdge(s string) (timeline.Edge, bool) {
	switch timeline.Edge(s) {
	case timeline.EdgeStart:
		return timeline.EdgeStart, true
	case timeline.EdgeEnd:
		return timeline.EdgeEnd, true
	}
	return "", false
}

func knownPreset(name string) bool {
	for _, p := range edit.PresetNames() {
		if p == name {
			return true
		}
	}
	return false
}
