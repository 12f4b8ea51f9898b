// Package httpapi provides the HTTP surface around the room engine: the
// websocket mount, the administrative room endpoints, and health.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/nexus-xr/nexus/internal/room"
)

// Handler serves the administrative endpoints. Disposal of a room
// instance is an explicit administrative action; it is the only way an
// instance ever ends. Emptiness never disposes.
type Handler struct {
	registry *room.Registry
	logger   *zap.Logger
}

// NewHandler creates a Handler backed by the given registry.
//
// Precondition: registry and logger must be non-nil.
func NewHandler(registry *room.Registry, logger *zap.Logger) *Handler {
	return &Handler{registry: registry, logger: logger}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

// ListRooms serves GET /api/rooms: every live instance with its phase
// and occupancy.
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.List())
}

// GetRoom serves GET /api/rooms/{id}: one instance's info plus its
// current state snapshot.
func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	spaceID := chi.URLParam(r, "id")
	rm, ok := h.registry.Get(spaceID)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no such room instance"})
		return
	}
	writeJSON(w, http.StatusOK, struct {
		room.Info
		State *room.StateDelta `json:"state,omitempty"`
	}{
		Info:  room.Info{SpaceID: rm.SpaceID(), Phase: rm.Phase(), Occupancy: rm.Occupancy(), Dropped: rm.Dropped()},
		State: rm.SnapshotState(),
	})
}

// DisposeRoom serves DELETE /api/rooms/{id}: the explicit external
// shutdown call for a room instance.
func (h *Handler) DisposeRoom(w http.ResponseWriter, r *http.Request) {
	spaceID := chi.URLParam(r, "id")
	if err := h.registry.Dispose(spaceID); err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	h.logger.Info("room disposed by admin", zap.String("space", spaceID))
	w.WriteHeader(http.StatusNoContent)
}
