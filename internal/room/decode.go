package room

import (
	"encoding/json"
	"fmt"
)

// Inbound message types accepted from participants.
const (
	MsgMove            = "move"
	MsgChat            = "chat"
	MsgEmote           = "emote"
	MsgVoiceJoin       = "voice-join"
	MsgVoiceLeave      = "voice-leave"
	MsgVoiceSignal     = "voice-signal"
	MsgScreenSignal    = "screen-signal"
	MsgScreenStart     = "screen-start"
	MsgScreenStop      = "screen-stop"
	MsgScreenTransform = "screen-update-transform"
)

type movePayload struct {
	X        *float64 `json:"x"`
	Y        *float64 `json:"y"`
	Z        *float64 `json:"z"`
	RY       *float64 `json:"ry"`
	IsMoving *bool    `json:"isMoving"`
}

type chatPayload struct {
	Text string `json:"text"`
}

type emotePayload struct {
	Emote string `json:"emote"`
}

type signalPayload struct {
	Type   string          `json:"type"`
	PeerID string          `json:"peerId"`
	Data   json.RawMessage `json:"data"`
}

type transformPayload struct {
	X     *float64 `json:"x"`
	Y     *float64 `json:"y"`
	Z     *float64 `json:"z"`
	RX    *float64 `json:"rx"`
	RY    *float64 `json:"ry"`
	RZ    *float64 `json:"rz"`
	Scale *float64 `json:"scale"`
}

// DecodeCommand turns one wire message into a Command, stamping the
// server-assigned session id as the sender. Malformed payload fields are
// ignored per-field: an unparseable payload yields a command with no
// fields set rather than a rejection, matching the fail-silent contract.
// Unknown message types return an error so the transport can log them.
func DecodeCommand(sessionID, msgType string, payload json.RawMessage) (Command, error) {
	from := sender{SessionID: sessionID}

	switch msgType {
	case MsgMove:
		var p movePayload
		decodeLoose(payload, &p)
		return Move{sender: from, X: p.X, Y: p.Y, Z: p.Z, RY: p.RY, IsMoving: p.IsMoving}, nil
	case MsgChat:
		var p chatPayload
		decodeLoose(payload, &p)
		return Chat{sender: from, Text: p.Text}, nil
	case MsgEmote:
		var p emotePayload
		decodeLoose(payload, &p)
		return Emote{sender: from, Emote: p.Emote}, nil
	case MsgVoiceJoin:
		return VoiceJoin{sender: from}, nil
	case MsgVoiceLeave:
		return VoiceLeave{sender: from}, nil
	case MsgVoiceSignal:
		var p signalPayload
		decodeLoose(payload, &p)
		return VoiceSignal{sender: from, Type: p.Type, PeerID: p.PeerID, Data: p.Data}, nil
	case MsgScreenSignal:
		var p signalPayload
		decodeLoose(payload, &p)
		return ScreenSignal{sender: from, Type: p.Type, PeerID: p.PeerID, Data: p.Data}, nil
	case MsgScreenStart:
		return ScreenStart{sender: from}, nil
	case MsgScreenStop:
		return ScreenStop{sender: from}, nil
	case MsgScreenTransform:
		var p transformPayload
		decodeLoose(payload, &p)
		return ScreenTransform{sender: from, X: p.X, Y: p.Y, Z: p.Z, RX: p.RX, RY: p.RY, RZ: p.RZ, Scale: p.Scale}, nil
	default:
		return nil, fmt.Errorf("unknown message type %q", msgType)
	}
}

// decodeLoose unmarshals best-effort: a malformed payload leaves dst at
// its zero value instead of failing the whole message.
func decodeLoose(payload json.RawMessage, dst any) {
	if len(payload) == 0 {
		return
	}
	_ = json.Unmarshal(payload, dst)
}
