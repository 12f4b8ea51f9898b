// Package ws provides the WebSocket transport: connection upgrade,
// per-connection read/write pumps, and the bridge between wire messages
// and room commands.
package ws

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/nexus-xr/nexus/internal/config"
	"github.com/nexus-xr/nexus/internal/room"
)

// Server upgrades HTTP requests to websocket sessions and attaches them
// to room instances.
type Server struct {
	registry *room.Registry
	upgrader websocket.Upgrader
	cfg      config.RoomConfig
	logger   *zap.Logger
}

// NewServer creates a websocket server backed by the given registry.
//
// Precondition: registry and logger must be non-nil.
func NewServer(registry *room.Registry, cfg config.RoomConfig, logger *zap.Logger) *Server {
	return &Server{
		registry: registry,
		cfg:      cfg,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// HandleWS serves GET /ws/spaces/{id}. Join options ride on the query
// string: name, avatarKey, avatarUrl, envKey, and spaceId (the client's
// intended space, checked against the bound instance).
//
// Capacity is enforced here, before the upgrade: the room core itself
// never rejects a join.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	spaceID := chi.URLParam(r, "id")
	if spaceID == "" {
		http.Error(w, "missing space id", http.StatusBadRequest)
		return
	}

	rm := s.registry.GetOrCreate(spaceID)
	if s.cfg.MaxClients > 0 && rm.Occupancy() >= s.cfg.MaxClients {
		http.Error(w, "space is full", http.StatusServiceUnavailable)
		return
	}

	sock, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", zap.String("space", spaceID), zap.Error(err))
		return
	}

	sessionID := uuid.NewString()
	c := newConn(sessionID, sock, s.cfg.SendBuffer, s.logger)

	q := r.URL.Query()
	opts := room.JoinOptions{
		SpaceID:   q.Get("spaceId"),
		Name:      q.Get("name"),
		AvatarKey: q.Get("avatarKey"),
		AvatarURL: q.Get("avatarUrl"),
		EnvKey:    q.Get("envKey"),
	}

	if err := rm.Join(c, opts); err != nil {
		// Lost a race with disposal; the instance was evicted, so the
		// registry will produce a fresh one.
		rm = s.registry.GetOrCreate(spaceID)
		if err := rm.Join(c, opts); err != nil {
			s.logger.Warn("join failed", zap.String("space", spaceID), zap.Error(err))
			_ = c.Close()
			return
		}
	}

	go c.writePump()
	c.readPump(rm)
}
