package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clipforge/clipforge-agent/internal/edit"
	"github.com/clipforge/clipforge-agent/internal/interaction"
	"github.com/clipforge/clipforge-agent/internal/timeline"
)

// pointerDrag is the common surface of the interaction package's drag
// state machines. The session holds at most one; a begin while another is
// in flight cancels the old one, so a lost pointer-up cannot wedge edits.
type pointerDrag interface {
	Move(pixel float64) (float64, bool)
	Preview() (float64, bool)
	Release(pixel float64) bool
	Cancel()
}

// dragHandler runs the pointer gesture protocol for timeline trims and
// zoom moves: begin installs a drag on the session, move returns snapped
// previews, release commits at most one edit to the store, cancel discards.
func dragHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := cfg.Sessions.Get(chi.URLParam(r, "id"))
		if sess == nil {
			WriteError(w, http.StatusNotFound, "no open session", "NOT_FOUND")
			return
		}

		var req DragRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		switch req.Action {
		case "begin":
			beginDrag(w, sess, req)

		case "move":
			d := sess.Drag()
			if d == nil {
				WriteError(w, http.StatusConflict, "no drag in progress", "NO_DRAG")
				return
			}
			preview, snapped := d.Move(req.Pixel)
			WriteJSON(w, http.StatusOK, DragResponse{Preview: preview, Snapped: snapped})

		case "release":
			d := sess.Drag()
			if d == nil {
				WriteError(w, http.StatusConflict, "no drag in progress", "NO_DRAG")
				return
			}
			committed := d.Release(req.Pixel)
			sess.EndDrag()
			preview, snapped := d.Preview()
			WriteJSON(w, http.StatusOK, DragResponse{Preview: preview, Snapped: snapped, Committed: committed})

		case "cancel":
			if d := sess.Drag(); d != nil {
				d.Cancel()
				sess.EndDrag()
			}
			w.WriteHeader(http.StatusNoContent)

		default:
			WriteError(w, http.StatusBadRequest, "unknown drag action", "BAD_REQUEST")
		}
	}
}

func beginDrag(w http.ResponseWriter, sess *EditorSession, req DragRequest) {
	if req.WidthPixels <= 0 {
		WriteError(w, http.StatusBadRequest, "widthPixels is required", "BAD_REQUEST")
		return
	}

	store := sess.Store()
	cfg := store.Config()
	tmap := timeline.NewTimeMap(cfg.Segments)
	ruler := interaction.NewRuler(req.WidthPixels, tmap.TotalDuration())
	snaps := interaction.SnapPoints(cfg, tmap)

	var drag pointerDrag
	switch req.Target {
	case "edge":
		edge, ok := parseEdge(req.Edge)
		if !ok || req.SegmentID == "" {
			WriteError(w, http.StatusBadRequest, "segmentId and edge (start|end) are required", "BAD_REQUEST")
			return
		}
		origin, found := 0.0, false
		for _, seg := range cfg.Segments {
			if seg.ID != req.SegmentID {
				continue
			}
			if edge == timeline.EdgeStart {
				origin = seg.SourceStart
			} else {
				origin = seg.SourceEnd
			}
			found = true
			break
		}
		if !found {
			WriteError(w, http.StatusNotFound, "segment not found", "NOT_FOUND")
			return
		}
		drag = interaction.BeginEdgeDrag(store, ruler, snaps, req.SegmentID, edge, origin, req.Pixel)

	case "zoom":
		var zoom *edit.Zoom
		for i := range cfg.Zooms {
			if cfg.Zooms[i].ID == req.ZoomID {
				zoom = &cfg.Zooms[i]
				break
			}
		}
		if zoom == nil {
			WriteError(w, http.StatusNotFound, "zoom not found", "NOT_FOUND")
			return
		}
		drag = interaction.BeginZoomDrag(store, ruler, snaps, *zoom, req.Pixel)

	default:
		WriteError(w, http.StatusBadRequest, "target must be edge or zoom", "BAD_REQUEST")
		return
	}

	sess.BeginDrag(drag)
	preview, snapped := drag.Preview()
	WriteJSON(w, http.StatusOK, DragResponse{Preview: preview, Snapped: snapped})
}
