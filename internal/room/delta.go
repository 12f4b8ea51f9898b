package room

// Per-participant field flags recorded by the dispatcher and consumed by
// the replicator.
type playerField uint8

const (
	fieldX playerField = 1 << iota
	fieldY
	fieldZ
	fieldRY
	fieldMoving
)

// Shared screen field flags.
type screenField uint16

const (
	screenPresenter screenField = 1 << iota
	screenActive
	screenX
	screenY
	screenZ
	screenRX
	screenRY
	screenRZ
	screenScale
)

const screenAllTransform = screenX | screenY | screenZ | screenRX | screenRY | screenRZ | screenScale

// changeSet accumulates the fields touched since the previous tick.
// The room goroutine is the only reader and writer.
type changeSet struct {
	envDirty bool
	joined   map[string]bool
	players  map[string]playerField
	removed  []string
	screen   screenField
}

func newChangeSet() changeSet {
	return changeSet{
		joined:  make(map[string]bool),
		players: make(map[string]playerField),
	}
}

func (c *changeSet) markJoined(id string) {
	c.joined[id] = true
}

func (c *changeSet) markRemoved(id string) {
	// A join and leave inside one tick window collapses to nothing: the
	// other participants never saw the joiner.
	if c.joined[id] {
		delete(c.joined, id)
		delete(c.players, id)
		return
	}
	delete(c.players, id)
	c.removed = append(c.removed, id)
}

func (c *changeSet) markPlayer(id string, f playerField) {
	c.players[id] |= f
}

func (c *changeSet) markScreen(f screenField) {
	c.screen |= f
}

func (c *changeSet) empty() bool {
	return !c.envDirty && len(c.joined) == 0 && len(c.players) == 0 &&
		len(c.removed) == 0 && c.screen == 0
}

func (c *changeSet) reset() {
	c.envDirty = false
	c.joined = make(map[string]bool)
	c.players = make(map[string]playerField)
	c.removed = nil
	c.screen = 0
}

// PlayerDelta carries the changed fields of one participant. Nil fields
// were not touched in the covered window.
type PlayerDelta struct {
	ID        *string  `json:"id,omitempty"`
	Name      *string  `json:"name,omitempty"`
	AvatarKey *string  `json:"avatarKey,omitempty"`
	AvatarURL *string  `json:"avatarUrl,omitempty"`
	X         *float64 `json:"x,omitempty"`
	Y         *float64 `json:"y,omitempty"`
	Z         *float64 `json:"z,omitempty"`
	RY        *float64 `json:"ry,omitempty"`
	IsMoving  *bool    `json:"isMoving,omitempty"`
}

// ScreenDelta carries the changed fields of the shared screen.
type ScreenDelta struct {
	PresenterID *string  `json:"presenterId,omitempty"`
	Active      *bool    `json:"active,omitempty"`
	X           *float64 `json:"x,omitempty"`
	Y           *float64 `json:"y,omitempty"`
	Z           *float64 `json:"z,omitempty"`
	RX          *float64 `json:"rx,omitempty"`
	RY          *float64 `json:"ry,omitempty"`
	RZ          *float64 `json:"rz,omitempty"`
	Scale       *float64 `json:"scale,omitempty"`
}

// StateDelta is the versioned replication payload: the set of state fields
// that changed since the previous tick, or the entire state when used as a
// join snapshot. Versions are monotonic per room instance.
type StateDelta struct {
	Version uint64                  `json:"v"`
	EnvKey  *string                 `json:"envKey,omitempty"`
	Players map[string]*PlayerDelta `json:"players,omitempty"`
	Removed []string                `json:"removed,omitempty"`
	Screen  *ScreenDelta            `json:"screen,omitempty"`
}

// CollectDelta builds the delta for the current tick and clears the change
// tracker. Returns nil when nothing changed, in which case the version is
// not advanced.
func (s *State) CollectDelta() *StateDelta {
	if s.changes.empty() {
		return nil
	}
	s.version++
	d := &StateDelta{Version: s.version}

	if s.changes.envDirty {
		d.EnvKey = ptr(s.EnvKey)
	}

	for id := range s.changes.joined {
		if p, ok := s.Players[id]; ok {
			d.addPlayer(id, fullPlayerDelta(p))
		}
	}
	for id, mask := range s.changes.players {
		p, ok := s.Players[id]
		if !ok || s.changes.joined[id] {
			continue
		}
		d.addPlayer(id, partialPlayerDelta(p, mask))
	}
	if len(s.changes.removed) > 0 {
		d.Removed = append(d.Removed, s.changes.removed...)
	}
	if s.changes.screen != 0 {
		d.Screen = s.screenDelta(s.changes.screen)
	}

	s.changes.reset()
	return d
}

// Snapshot builds a full-state delta at the current version, leaving the
// change tracker untouched. Sent to a participant immediately after join.
func (s *State) Snapshot() *StateDelta {
	d := &StateDelta{
		Version: s.version,
		EnvKey:  ptr(s.EnvKey),
		Screen:  s.screenDelta(screenPresenter | screenActive | screenAllTransform),
	}
	for id, p := range s.Players {
		d.addPlayer(id, fullPlayerDelta(p))
	}
	return d
}

func (d *StateDelta) addPlayer(id string, pd *PlayerDelta) {
	if d.Players == nil {
		d.Players = make(map[string]*PlayerDelta)
	}
	d.Players[id] = pd
}

func fullPlayerDelta(p *Participant) *PlayerDelta {
	return &PlayerDelta{
		ID:        ptr(p.ID),
		Name:      ptr(p.Name),
		AvatarKey: ptr(p.AvatarKey),
		AvatarURL: ptr(p.AvatarURL),
		X:         ptr(p.X),
		Y:         ptr(p.Y),
		Z:         ptr(p.Z),
		RY:        ptr(p.RY),
		IsMoving:  ptr(p.IsMoving),
	}
}

func partialPlayerDelta(p *Participant, mask playerField) *PlayerDelta {
	pd := &PlayerDelta{}
	if mask&fieldX != 0 {
		pd.X = ptr(p.X)
	}
	if mask&fieldY != 0 {
		pd.Y = ptr(p.Y)
	}
	if mask&fieldZ != 0 {
		pd.Z = ptr(p.Z)
	}
	if mask&fieldRY != 0 {
		pd.RY = ptr(p.RY)
	}
	if mask&fieldMoving != 0 {
		pd.IsMoving = ptr(p.IsMoving)
	}
	return pd
}

func (s *State) screenDelta(mask screenField) *ScreenDelta {
	sd := &ScreenDelta{}
	if mask&screenPresenter != 0 {
		sd.PresenterID = ptr(s.Screen.PresenterID)
	}
	if mask&screenActive != 0 {
		sd.Active = ptr(s.Screen.Active)
	}
	if mask&screenX != 0 {
		sd.X = ptr(s.Screen.X)
	}
	if mask&screenY != 0 {
		sd.Y = ptr(s.Screen.Y)
	}
	if mask&screenZ != 0 {
		sd.Z = ptr(s.Screen.Z)
	}
	if mask&screenRX != 0 {
		sd.RX = ptr(s.Screen.RX)
	}
	if mask&screenRY != 0 {
		sd.RY = ptr(s.Screen.RY)
	}
	if mask&screenRZ != 0 {
		sd.RZ = ptr(s.Screen.RZ)
	}
	if mask&screenScale != 0 {
		sd.Scale = ptr(s.Screen.Scale)
	}
	return sd
}

func ptr[T any](v T) *T { return &v }
