package room

import "encoding/json"

// Command is one inbound message from a participant, decoded by the
// transport and consumed sequentially by the room goroutine. SessionID is
// always the server-assigned connection identifier of the sender, never a
// client-supplied value.
type Command interface {
	isCommand()
	Sender() string
}

// sender embeds the sender's session id into every command variant.
type sender struct {
	SessionID string
}

func (s sender) isCommand()     {}
func (s sender) Sender() string { return s.SessionID }

// Move updates the sender's position, yaw, and movement flag. Nil fields
// are absent from the wire message and leave state untouched.
type Move struct {
	sender
	X        *float64
	Y        *float64
	Z        *float64
	RY       *float64
	IsMoving *bool
}

// Chat broadcasts a text message to every participant, sender included.
type Chat struct {
	sender
	Text string
}

// Emote broadcasts an emote identifier verbatim, with no allow-list.
type Emote struct {
	sender
	Emote string
}

// VoiceJoin announces the sender to the voice channel. No state change.
type VoiceJoin struct {
	sender
}

// VoiceLeave announces the sender's departure from the voice channel.
type VoiceLeave struct {
	sender
}

// VoiceSignal relays an opaque peer-negotiation payload to one peer, with
// the sender's resolved name attached.
type VoiceSignal struct {
	sender
	Type   string
	PeerID string
	Data   json.RawMessage
}

// ScreenSignal relays an opaque screen-share negotiation payload to one
// peer. Unlike VoiceSignal it carries no resolved name.
type ScreenSignal struct {
	sender
	Type   string
	PeerID string
	Data   json.RawMessage
}

// ScreenStart claims the shared screen for the sender. Last writer wins.
type ScreenStart struct {
	sender
}

// ScreenStop releases the shared screen if the sender owns it, or when
// the screen is already inactive.
type ScreenStop struct {
	sender
}

// ScreenTransform moves, rotates, or scales the shared screen. Presenter
// only; nil fields leave the transform untouched.
type ScreenTransform struct {
	sender
	X     *float64
	Y     *float64
	Z     *float64
	RX    *float64
	RY    *float64
	RZ    *float64
	Scale *float64
}
