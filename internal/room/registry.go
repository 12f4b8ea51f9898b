package room

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/nexus-xr/nexus/internal/space"
)

// Registry maps space identifiers to their live room instances. It is the
// only component that creates or disposes instances: creation happens on
// first join, disposal only through an explicit Dispose or Shutdown call.
// All methods are safe for concurrent use.
type Registry struct {
	catalog *space.Catalog
	cfg     Config
	logger  *zap.Logger

	// onDispose, when set, runs after each instance is torn down.
	onDispose func(spaceID string)

	mu    sync.RWMutex
	rooms map[string]*Room
}

// RegistryOption customizes a Registry.
type RegistryOption func(*Registry)

// WithDisposeHook registers a callback invoked with the space id after an
// instance has been disposed, for external bookkeeping.
func WithDisposeHook(fn func(spaceID string)) RegistryOption {
	return func(g *Registry) { g.onDispose = fn }
}

// NewRegistry creates an empty registry.
//
// Precondition: catalog and logger must be non-nil.
func NewRegistry(catalog *space.Catalog, cfg Config, logger *zap.Logger, opts ...RegistryOption) *Registry {
	g := &Registry{
		catalog: catalog,
		cfg:     cfg,
		logger:  logger,
		rooms:   make(map[string]*Room),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GetOrCreate returns the live instance for spaceID, creating it when no
// non-disposed instance exists. Concurrent first joins for the same space
// resolve to a single instance.
func (g *Registry) GetOrCreate(spaceID string) *Room {
	g.mu.RLock()
	r, ok := g.rooms[spaceID]
	g.mu.RUnlock()
	if ok {
		return r
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if r, ok := g.rooms[spaceID]; ok {
		return r
	}
	r = New(spaceID, g.catalog, g.cfg, g.logger)
	g.rooms[spaceID] = r
	g.logger.Info("room instance created", zap.String("space", spaceID))
	return r
}

// Get returns the live instance for spaceID, if any.
func (g *Registry) Get(spaceID string) (*Room, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	r, ok := g.rooms[spaceID]
	return r, ok
}

// Dispose shuts down the instance for spaceID and removes it from the
// registry. The next join for that space creates a fresh instance.
//
// Postcondition: Returns an error only when no instance exists.
func (g *Registry) Dispose(spaceID string) error {
	g.mu.Lock()
	r, ok := g.rooms[spaceID]
	if ok {
		delete(g.rooms, spaceID)
	}
	g.mu.Unlock()

	if !ok {
		return fmt.Errorf("no room instance for space %q", spaceID)
	}
	r.stop()
	if g.onDispose != nil {
		g.onDispose(spaceID)
	}
	return nil
}

// Shutdown disposes every instance. Called once at server stop.
func (g *Registry) Shutdown() {
	g.mu.Lock()
	rooms := g.rooms
	g.rooms = make(map[string]*Room)
	g.mu.Unlock()

	for id, r := range rooms {
		r.stop()
		if g.onDispose != nil {
			g.onDispose(id)
		}
	}
}

// Info describes one live instance for the admin surface.
type Info struct {
	SpaceID   string `json:"spaceId"`
	Phase     Phase  `json:"phase"`
	Occupancy int    `json:"occupancy"`
	// Dropped counts commands discarded on inbound queue overflow.
	Dropped uint64 `json:"droppedCommands"`
}

// List returns the live instances sorted by space id.
func (g *Registry) List() []Info {
	g.mu.RLock()
	defer g.mu.RUnlock()

	infos := make([]Info, 0, len(g.rooms))
	for id, r := range g.rooms {
		infos = append(infos, Info{SpaceID: id, Phase: r.Phase(), Occupancy: r.Occupancy(), Dropped: r.Dropped()})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].SpaceID < infos[j].SpaceID })
	return infos
}
