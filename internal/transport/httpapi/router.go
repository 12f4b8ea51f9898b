package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nexus-xr/nexus/internal/transport/ws"
)

// NewRouter assembles the full HTTP surface: websocket sessions, admin
// endpoints, and health.
func NewRouter(h *Handler, wsServer *ws.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Session endpoint: one persistent connection per participant.
	r.Get("/ws/spaces/{id}", wsServer.HandleWS)

	r.Route("/api/rooms", func(ar chi.Router) {
		ar.Get("/", h.ListRooms)
		ar.Get("/{id}", h.GetRoom)
		ar.Delete("/{id}", h.DisposeRoom)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
