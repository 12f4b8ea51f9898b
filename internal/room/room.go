package room

import (
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/nexus-xr/nexus/internal/space"
)

// ErrRoomDisposed is returned when an operation reaches a room instance
// that has already been shut down.
var ErrRoomDisposed = errors.New("room instance disposed")

// Phase is the lifecycle state of a room instance.
type Phase string

const (
	PhaseCreated  Phase = "created"
	PhaseActive   Phase = "active"
	PhaseIdle     Phase = "idle"
	PhaseDisposed Phase = "disposed"
)

// Config carries the creation-time tuning for a room instance.
type Config struct {
	// TickInterval is the replication cadence. Defaults to ~60 Hz.
	TickInterval time.Duration
	// QueueSize is the inbound command buffer. Commands past a full
	// buffer are dropped; no backpressure flows to the sender.
	QueueSize int
}

// withDefaults fills unset Config fields.
func (c Config) withDefaults() Config {
	if c.TickInterval <= 0 {
		c.TickInterval = 16 * time.Millisecond
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 256
	}
	return c
}

// JoinOptions is the per-join configuration supplied by a connecting
// participant.
type JoinOptions struct {
	// SpaceID is the space the participant intended to reach. Compared
	// against the instance's bound space for the isolation check.
	SpaceID   string
	Name      string
	AvatarKey string
	AvatarURL string
	// EnvKey is the requested environment. Honored only for the first
	// joiner, and only when the catalog recognizes it.
	EnvKey string
}

// Room is one authoritative session bound to a single space for its
// entire life. All state access happens on the room's own goroutine:
// joins, leaves, commands, and replication ticks are interleaved on one
// sequential path, so RoomState needs no lock.
type Room struct {
	spaceID string
	cfg     Config
	catalog *space.Catalog
	logger  *zap.Logger
	now     func() time.Time

	state   *State
	clients map[string]Client

	joins   chan joinRequest
	leaves  chan string
	inbound chan Command
	done    chan struct{}

	occupancy  atomic.Int64
	everActive atomic.Bool
	disposed   atomic.Bool
	dropped    atomic.Uint64
}

type joinRequest struct {
	client Client
	opts   JoinOptions
	reply  chan struct{}
}

// New creates a room instance bound to spaceID and starts its goroutine.
//
// Precondition: catalog and logger must be non-nil.
// Postcondition: The instance is in the created phase and accepting joins.
func New(spaceID string, catalog *space.Catalog, cfg Config, logger *zap.Logger) *Room {
	cfg = cfg.withDefaults()
	r := &Room{
		spaceID: spaceID,
		cfg:     cfg,
		catalog: catalog,
		logger:  logger.With(zap.String("space", spaceID)),
		now:     time.Now,
		state:   NewState(catalog.DefaultKey()),
		clients: make(map[string]Client),
		joins:   make(chan joinRequest),
		leaves:  make(chan string, cfg.QueueSize),
		inbound: make(chan Command, cfg.QueueSize),
		done:    make(chan struct{}),
	}
	go r.run()
	return r
}

// SpaceID returns the bound space identifier. It never changes.
func (r *Room) SpaceID() string { return r.spaceID }

// Occupancy returns the number of connected participants.
func (r *Room) Occupancy() int { return int(r.occupancy.Load()) }

// Phase reports the lifecycle state of this instance. An instance with
// zero participants that has hosted at least one is idle, not disposed:
// state survives emptiness until an explicit administrative shutdown.
func (r *Room) Phase() Phase {
	switch {
	case r.disposed.Load():
		return PhaseDisposed
	case r.occupancy.Load() > 0:
		return PhaseActive
	case r.everActive.Load():
		return PhaseIdle
	default:
		return PhaseCreated
	}
}

// Join connects a participant and blocks until the room has created its
// presence record and sent the state snapshot.
//
// Postcondition: Returns nil and the participant is in RoomState, or
// ErrRoomDisposed if the instance has been shut down. A join never fails
// for any other reason; capacity is the transport layer's concern.
func (r *Room) Join(c Client, opts JoinOptions) error {
	req := joinRequest{client: c, opts: opts, reply: make(chan struct{})}
	select {
	case r.joins <- req:
	case <-r.done:
		return ErrRoomDisposed
	}
	select {
	case <-req.reply:
		return nil
	case <-r.done:
		return ErrRoomDisposed
	}
}

// Leave disconnects a participant. The state removal is unconditional and
// survives any failure on the fallback notification path.
func (r *Room) Leave(sessionID string) {
	select {
	case r.leaves <- sessionID:
	case <-r.done:
	}
}

// Submit enqueues a command for sequential dispatch. It never blocks: a
// full inbound queue drops the command, matching the fail-silent contract.
func (r *Room) Submit(cmd Command) {
	select {
	case r.inbound <- cmd:
	case <-r.done:
	default:
		r.dropped.Add(1)
		r.logger.Warn("inbound queue full, command dropped",
			zap.String("session", cmd.Sender()),
		)
	}
}

// inspectState is an internal command that captures a snapshot in queue
// order. Riding the inbound queue gives inspection FIFO consistency: it
// observes every command accepted before it.
type inspectState struct {
	sender
	reply chan *StateDelta
}

// SnapshotState returns a full-state snapshot taken on the room's own
// goroutine, after every previously submitted command has been applied.
// Used by the admin surface and by tests; returns nil after disposal.
func (r *Room) SnapshotState() *StateDelta {
	req := inspectState{reply: make(chan *StateDelta, 1)}
	// Blocking send: inspection must never be dropped on overflow the
	// way participant commands are.
	select {
	case r.inbound <- req:
	case <-r.done:
		return nil
	}
	select {
	case d := <-req.reply:
		return d
	case <-r.done:
		return nil
	}
}

// Dropped returns the number of commands discarded on queue overflow.
func (r *Room) Dropped() uint64 { return r.dropped.Load() }

// stop shuts the instance down. Called by the registry only; occupancy
// reaching zero never triggers this.
func (r *Room) stop() {
	if r.disposed.CompareAndSwap(false, true) {
		close(r.done)
	}
}

// run is the room's single sequential execution path.
func (r *Room) run() {
	ticker := time.NewTicker(r.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case req := <-r.joins:
			r.handleJoin(req.client, req.opts)
			close(req.reply)
		case sid := <-r.leaves:
			r.handleLeave(sid)
		case cmd := <-r.inbound:
			r.dispatch(cmd)
		case <-ticker.C:
			r.replicate()
		case <-r.done:
			r.teardown()
			return
		}
	}
}

// handleJoin creates the participant record, fixes the environment for a
// first joiner, and delivers the state snapshot to the new client.
func (r *Room) handleJoin(c Client, opts JoinOptions) {
	sid := c.SessionID()

	// Isolation check: a joiner routed to the wrong instance is a serious
	// condition, but the join is not rejected. See the registry contract.
	if opts.SpaceID != "" && opts.SpaceID != r.spaceID {
		r.logger.Error("space isolation violation: joiner intended another space",
			zap.String("session", sid),
			zap.String("requested_space", opts.SpaceID),
		)
	}

	// First participant fixes the environment for the instance's life.
	if len(r.state.Players) == 0 {
		r.state.SetEnvKey(r.catalog.Resolve(opts.EnvKey))
	}

	name := TruncateName(opts.Name)
	if name == "" {
		name = DefaultName
	}
	avatarKey := opts.AvatarKey
	if avatarKey == "" {
		avatarKey = DefaultAvatarKey
	}

	r.state.AddParticipant(sid, name, avatarKey, opts.AvatarURL)
	r.clients[sid] = c
	r.occupancy.Store(int64(len(r.clients)))
	r.everActive.Store(true)

	if err := c.Send(Envelope{Type: MsgState, Payload: r.state.Snapshot()}); err != nil {
		r.logger.Warn("snapshot send failed", zap.String("session", sid), zap.Error(err))
	}

	r.logger.Info("participant joined",
		zap.String("session", sid),
		zap.String("name", name),
		zap.Int("occupancy", len(r.clients)),
	)
}

// handleLeave removes the participant. The removal always completes: the
// fallback player-left broadcast is best-effort and a failure there is
// logged, never propagated.
func (r *Room) handleLeave(sid string) {
	r.state.RemoveParticipant(sid)
	delete(r.clients, sid)
	r.occupancy.Store(int64(len(r.clients)))

	// Explicit fallback notice in case delta propagation lags behind.
	r.broadcast(Envelope{Type: MsgPlayerLeft, Payload: PeerEvent{ID: sid}}, "")

	r.logger.Info("participant left",
		zap.String("session", sid),
		zap.Int("occupancy", len(r.clients)),
	)
}

// replicate emits one coalesced delta covering everything that changed
// since the previous tick. Quiet ticks send nothing.
func (r *Room) replicate() {
	d := r.state.CollectDelta()
	if d == nil {
		return
	}
	r.broadcast(Envelope{Type: MsgStateDelta, Payload: d}, "")
}

// teardown drops every connected client after disposal.
func (r *Room) teardown() {
	for sid, c := range r.clients {
		if err := c.Close(); err != nil {
			r.logger.Debug("close on teardown", zap.String("session", sid), zap.Error(err))
		}
	}
	r.clients = make(map[string]Client)
	r.occupancy.Store(0)
	r.logger.Info("room disposed")
}

// broadcast fans an envelope out to every connected client, optionally
// excluding one session. Sends are fire-and-forget; failures are logged
// and never block the loop.
func (r *Room) broadcast(env Envelope, exceptSID string) {
	for sid, c := range r.clients {
		if sid == exceptSID {
			continue
		}
		if err := c.Send(env); err != nil {
			r.logger.Debug("broadcast send failed",
				zap.String("session", sid),
				zap.String("type", env.Type),
				zap.Error(err),
			)
		}
	}
}

// unicast delivers an envelope to a single session if it is connected.
// An unknown target is dropped silently; the sender gets no failure
// indication.
func (r *Room) unicast(sid string, env Envelope) {
	c, ok := r.clients[sid]
	if !ok {
		r.logger.Debug("unicast target not connected",
			zap.String("session", sid),
			zap.String("type", env.Type),
		)
		return
	}
	if err := c.Send(env); err != nil {
		r.logger.Debug("unicast send failed",
			zap.String("session", sid),
			zap.String("type", env.Type),
			zap.Error(err),
		)
	}
}
