package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/yourusername/bgrules/pkg/sim"
)

// subscriberBuffer is the number of snapshots queued per SSE client.
const subscriberBuffer = 16

// SSESimulateProgress is the payload of a simulation progress event.
type SSESimulateProgress struct {
	Completed int     `json:"completed"`
	Total     int     `json:"total"`
	Percent   float64 `json:"percent"`
}

// Events streams a game as Server-Sent Events: a "snapshot" event with the
// current state and one after every change, then "done" when the game is
// removed.
// GET /api/games/{id}/events
func (h *Handlers) Events(w http.ResponseWriter, r *http.Request) {
	id, err := parseGameID(r.PathValue("id"))
	if err != nil {
		writeAPIError(w, err)
		return
	}
	if err := h.loadGame(r.Context(), id); err != nil {
		writeAPIError(w, err)
		return
	}
	updates, cancel, err := h.games.Subscribe(id, subscriberBuffer)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	defer cancel()

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported", "STREAMING_UNSUPPORTED")
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	for {
		select {
		case snap, ok := <-updates:
			if !ok {
				writeSSEEvent(w, "done", nil)
				flusher.Flush()
				return
			}
			writeSSEEvent(w, "snapshot", snap)
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

// SimulateSSE runs a simulation and streams its progress.
// GET /api/simulate/stream?games=...&seed=...&workers=...&max_turns=...
func (h *Handlers) SimulateSSE(w http.ResponseWriter, r *http.Request) {
	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	query := r.URL.Query()
	opts, err := simulateOptions(SimulateRequest{
		Games:    parseIntParam(query.Get("games"), 100),
		Seed:     int64(parseIntParam(query.Get("seed"), 0)),
		Workers:  parseIntParam(query.Get("workers"), 0),
		MaxTurns: parseIntParam(query.Get("max_turns"), 0),
	})
	if err != nil {
		writeSSEError(w, err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeSSEError(w, "streaming not supported")
		return
	}

	if h.pool != nil {
		if err := h.pool.AcquireSlow(r.Context()); err != nil {
			writeSSEError(w, "server busy")
			return
		}
		defer h.pool.ReleaseSlow()
	}

	// Progress callback sends SSE events
	callback := func(p sim.Progress) {
		writeSSEEvent(w, "progress", SSESimulateProgress{
			Completed: p.Completed,
			Total:     p.Total,
			Percent:   p.Percent,
		})
		flusher.Flush()
	}

	result, err := sim.Run(r.Context(), opts, callback)
	if err != nil {
		writeSSEError(w, "simulation failed: "+err.Error())
		return
	}

	writeSSEEvent(w, "result", result)
	flusher.Flush()

	// Send done event to signal completion
	writeSSEEvent(w, "done", nil)
	flusher.Flush()
}

// writeSSEEvent writes a Server-Sent Event to the response.
func writeSSEEvent(w http.ResponseWriter, event string, data interface{}) {
	fmt.Fprintf(w, "event: %s\n", event)
	if data != nil {
		jsonData, _ := json.Marshal(data)
		fmt.Fprintf(w, "data: %s\n", jsonData)
	}
	fmt.Fprintf(w, "\n")
}

// writeSSEError writes an error event and closes the stream.
func writeSSEError(w http.ResponseWriter, message string) {
	writeSSEEvent(w, "error", map[string]string{"error": message})
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}

// parseIntParam parses an integer from a string with a default value.
func parseIntParam(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	var val int
	if _, err := fmt.Sscanf(s, "%d", &val); err != nil {
		return defaultVal
	}
	return val
}
