package room

import "encoding/json"

// Outbound message types sent to participants.
const (
	MsgState           = "state"       // full snapshot, sent once on join
	MsgStateDelta      = "state-delta" // periodic replication delta
	MsgVoicePeerJoined = "voice-peer-joined"
	MsgVoicePeerLeft   = "voice-peer-left"
	MsgScreenPresenter = "screen-presenter"
	MsgScreenEnded     = "screen-ended"
	MsgPlayerLeft      = "player-left"
)

// Envelope is the wire framing for every message in both directions.
type Envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// ChatEvent is broadcast to all participants, sender included. TS is
// server-assigned epoch milliseconds; any client-supplied timestamp is
// discarded.
type ChatEvent struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Text string `json:"text"`
	TS   int64  `json:"ts"`
}

// EmoteEvent is broadcast to all participants verbatim.
type EmoteEvent struct {
	ID    string `json:"id"`
	Emote string `json:"emote"`
}

// SignalEvent is a relayed negotiation payload, unicast to one peer.
// PeerID identifies the original sender so the receiver can answer.
// PeerName is set for voice signals only.
type SignalEvent struct {
	Type     string          `json:"type"`
	PeerID   string          `json:"peerId"`
	PeerName string          `json:"peerName,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// PeerEvent announces a participant entering or leaving the voice
// channel, or claiming the shared screen. Name is empty for leave-style
// events.
type PeerEvent struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}
