// Package room implements the authoritative per-space session engine:
// shared state, sequential command dispatch, presenter arbitration,
// signaling relay, and fixed-rate delta replication.
package room

import "math"

const (
	// PositionLimit bounds participant coordinates on every axis.
	PositionLimit = 50.0

	// MaxNameLen is the longest display name stored for a participant.
	MaxNameLen = 32

	// MaxChatLen is the longest chat text that is broadcast.
	MaxChatLen = 500

	// DefaultName is used when a joiner supplies no display name, and as
	// the resolved-name fallback for broadcasts.
	DefaultName = "Guest"

	// DefaultAvatarKey is the avatar assigned when a joiner supplies none.
	DefaultAvatarKey = "a1"
)

// Spawn placement for a freshly joined participant: one meter up, two
// meters back, facing the origin.
const (
	SpawnX  = 0.0
	SpawnY  = 1.0
	SpawnZ  = -2.0
	SpawnRY = math.Pi
)

// Canonical screen transform applied whenever a presentation starts.
const (
	ScreenResetX     = 0.0
	ScreenResetY     = 1.5
	ScreenResetZ     = -1.0
	ScreenResetScale = 1.0
)

// Participant is a connected client's replicated presence record.
type Participant struct {
	ID        string
	Name      string
	AvatarKey string
	AvatarURL string
	X         float64
	Y         float64
	Z         float64
	RY        float64
	IsMoving  bool
}

// Screen is the single shared screen resource of a room. PresenterID empty
// means unowned.
type Screen struct {
	PresenterID string
	Active      bool
	X           float64
	Y           float64
	Z           float64
	RX          float64
	RY          float64
	RZ          float64
	Scale       float64
}

// State is the authoritative shared state of one room instance. It is
// mutated only from the room's own goroutine, so it carries no lock.
// Every mutator records the touched fields in the change tracker so the
// replicator can emit a minimal delta on the next tick.
type State struct {
	EnvKey  string
	Players map[string]*Participant
	Screen  Screen

	version uint64
	changes changeSet
}

// NewState creates an empty state with the given environment key.
func NewState(envKey string) *State {
	return &State{
		EnvKey:  envKey,
		Players: make(map[string]*Participant),
		Screen:  Screen{Y: 2, Scale: 1},
		changes: newChangeSet(),
	}
}

// Version returns the current replication version. It advances once per
// tick that produced a delta.
func (s *State) Version() uint64 { return s.version }

// SetEnvKey fixes the environment key. Called once, for the first joiner.
func (s *State) SetEnvKey(key string) {
	s.EnvKey = key
	s.changes.envDirty = true
}

// AddParticipant creates a participant with spawn defaults and the given
// identity fields, and marks it for full replication.
//
// Precondition: id must not already be present.
func (s *State) AddParticipant(id, name, avatarKey, avatarURL string) *Participant {
	p := &Participant{
		ID:        id,
		Name:      name,
		AvatarKey: avatarKey,
		AvatarURL: avatarURL,
		X:         SpawnX,
		Y:         SpawnY,
		Z:         SpawnZ,
		RY:        SpawnRY,
	}
	s.Players[id] = p
	s.changes.markJoined(id)
	return p
}

// RemoveParticipant deletes the participant and marks the removal for
// replication. Removing an unknown id is a no-op.
func (s *State) RemoveParticipant(id string) {
	if _, ok := s.Players[id]; !ok {
		return
	}
	delete(s.Players, id)
	s.changes.markRemoved(id)
}

// ApplyMove applies the supplied movement fields to the sender's
// participant. Nil fields are left untouched; coordinates are clamped to
// [-PositionLimit, PositionLimit]. Unknown senders are ignored.
func (s *State) ApplyMove(id string, x, y, z, ry *float64, isMoving *bool) {
	p, ok := s.Players[id]
	if !ok {
		return
	}
	if x != nil {
		p.X = clamp(*x)
		s.changes.markPlayer(id, fieldX)
	}
	if y != nil {
		p.Y = clamp(*y)
		s.changes.markPlayer(id, fieldY)
	}
	if z != nil {
		p.Z = clamp(*z)
		s.changes.markPlayer(id, fieldZ)
	}
	if ry != nil {
		p.RY = *ry
		s.changes.markPlayer(id, fieldRY)
	}
	if isMoving != nil {
		p.IsMoving = *isMoving
		s.changes.markPlayer(id, fieldMoving)
	}
}

// StartPresentation assigns the sender as presenter and resets the screen
// transform to its canonical defaults. Arbitration is last-writer-wins:
// an existing presenter is overwritten without any handshake.
func (s *State) StartPresentation(id string) {
	s.Screen.PresenterID = id
	s.Screen.Active = true
	s.Screen.X = ScreenResetX
	s.Screen.Y = ScreenResetY
	s.Screen.Z = ScreenResetZ
	s.Screen.RX = 0
	s.Screen.RY = 0
	s.Screen.RZ = 0
	s.Screen.Scale = ScreenResetScale
	s.changes.markScreen(screenPresenter | screenActive | screenAllTransform)
}

// StopPresentation clears the presenter if the sender owns the screen, or
// if the screen is already inactive (idempotent no-op path). Returns false
// when the request is rejected.
func (s *State) StopPresentation(id string) bool {
	if s.Screen.PresenterID != id && s.Screen.Active {
		return false
	}
	s.Screen.PresenterID = ""
	s.Screen.Active = false
	s.changes.markScreen(screenPresenter | screenActive)
	return true
}

// ApplyScreenTransform applies the supplied transform fields if the sender
// is the current presenter. Returns false when the sender is not the
// presenter; the transform is then left untouched.
func (s *State) ApplyScreenTransform(id string, x, y, z, rx, ry, rz, scale *float64) bool {
	if s.Screen.PresenterID != id {
		return false
	}
	if x != nil {
		s.Screen.X = *x
		s.changes.markScreen(screenX)
	}
	if y != nil {
		s.Screen.Y = *y
		s.changes.markScreen(screenY)
	}
	if z != nil {
		s.Screen.Z = *z
		s.changes.markScreen(screenZ)
	}
	if rx != nil {
		s.Screen.RX = *rx
		s.changes.markScreen(screenRX)
	}
	if ry != nil {
		s.Screen.RY = *ry
		s.changes.markScreen(screenRY)
	}
	if rz != nil {
		s.Screen.RZ = *rz
		s.changes.markScreen(screenRZ)
	}
	if scale != nil {
		s.Screen.Scale = *scale
		s.changes.markScreen(screenScale)
	}
	return true
}

// ResolvedName returns the participant's display name, or DefaultName if
// the participant is unknown or unnamed.
func (s *State) ResolvedName(id string) string {
	if p, ok := s.Players[id]; ok && p.Name != "" {
		return p.Name
	}
	return DefaultName
}

func clamp(v float64) float64 {
	if v > PositionLimit {
		return PositionLimit
	}
	if v < -PositionLimit {
		return -PositionLimit
	}
	return v
}

// TruncateName limits a display name to MaxNameLen characters.
func TruncateName(name string) string {
	r := []rune(name)
	if len(r) > MaxNameLen {
		return string(r[:MaxNameLen])
	}
	return name
}
