package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clipforge/clipforge-agent/internal/playback"
)

// eventsHandler streams engine state snapshots over server-sent events.
// Snapshots arrive on the engine's tick cadence; a slow client drops
// frames rather than backing the engine up.
func eventsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := cfg.Sessions.Get(chi.URLParam(r, "id"))
		if sess == nil {
			WriteError(w, http.StatusNotFound, "no open session", "NOT_FOUND")
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			WriteError(w, http.StatusInternalServerError, "streaming unsupported", "INTERNAL_ERROR")
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)

		states := make(chan playback.State, 1)
		unsubscribe := sess.Engine().Subscribe(func(st playback.State) {
			// Keep only the latest snapshot when the writer lags.
			select {
			case states <- st:
			default:
				select {
				case <-states:
				default:
				}
				select {
				case states <- st:
				default:
				}
			}
		})
		defer unsubscribe()

		// Send the current state immediately so the UI renders without
		// waiting for the next tick.
		if err := writeEvent(w, sess.Engine().State()); err != nil {
			return
		}
		flusher.Flush()

		for {
			select {
			case <-r.Context().Done():
				return
			case st := <-states:
				if err := writeEvent(w, st); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}

func writeEvent(w http.ResponseWriter, st playback.State) error {
	payload, err := json.Marshal(st)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: state\ndata: %s\n\n", payload)
	return err
}
