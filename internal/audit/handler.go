package audit

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/solarops/solarops/internal/access"
	"github.com/solarops/solarops/internal/auth"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// EventLister reads stored audit events.
type EventLister interface {
	List(ctx context.Context, p ListEventsParams) ([]StoredEvent, error)
}

// Handler serves audit query endpoints. Only executives may read the trail.
type Handler struct {
	events EventLister
}

// NewHandler creates an audit query handler. A nil lister serves an empty
// trail.
func NewHandler(events EventLister) *Handler {
	return &Handler{events: events}
}

// HandleListEvents returns audit events, newest first.
// GET /api/v1/audit/events?limit=50&action=<action>&actor=<id>&module=<id>&after=<RFC3339>
func (h *Handler) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	id := auth.GetIdentity(r.Context())
	if id == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}
	// An empty department set admits executives only.
	if !access.CanAccessModule(id, nil) {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
		return
	}

	q := r.URL.Query()
	params := ListEventsParams{Limit: defaultListLimit}
	if raw := q.Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= maxListLimit {
			params.Limit = n
		}
	}
	if raw := q.Get("after"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			params.After = &t
		}
	}
	if v := q.Get("action"); v != "" {
		params.Action = &v
	}
	if v := q.Get("actor"); v != "" {
		params.ActorID = &v
	}
	if v := q.Get("module"); v != "" {
		params.Module = &v
	}

	if h.events == nil {
		writeJSON(w, http.StatusOK, map[string]any{"events": []StoredEvent{}, "count": 0})
		return
	}

	events, err := h.events.List(r.Context(), params)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "query failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events, "count": len(events)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
