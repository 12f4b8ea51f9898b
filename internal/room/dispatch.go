package room

import (
	"strings"

	"go.uber.org/zap"
)

// dispatch applies one command to shared state or relays it. Runs on the
// room goroutine only. Rejections are silent toward the sender: no error
// envelopes are ever produced on the command path.
func (r *Room) dispatch(cmd Command) {
	switch c := cmd.(type) {
	case Move:
		r.state.ApplyMove(c.Sender(), c.X, c.Y, c.Z, c.RY, c.IsMoving)

	case Chat:
		r.handleChat(c)

	case Emote:
		if c.Emote == "" {
			return
		}
		r.broadcast(Envelope{
			Type:    MsgEmote,
			Payload: EmoteEvent{ID: c.Sender(), Emote: c.Emote},
		}, "")

	case VoiceJoin:
		r.broadcast(Envelope{
			Type:    MsgVoicePeerJoined,
			Payload: PeerEvent{ID: c.Sender(), Name: r.state.ResolvedName(c.Sender())},
		}, c.Sender())

	case VoiceLeave:
		r.broadcast(Envelope{
			Type:    MsgVoicePeerLeft,
			Payload: PeerEvent{ID: c.Sender()},
		}, c.Sender())

	case VoiceSignal:
		r.unicast(c.PeerID, Envelope{
			Type: MsgVoiceSignal,
			Payload: SignalEvent{
				Type:     c.Type,
				PeerID:   c.Sender(),
				PeerName: r.state.ResolvedName(c.Sender()),
				Data:     c.Data,
			},
		})

	case ScreenSignal:
		r.unicast(c.PeerID, Envelope{
			Type: MsgScreenSignal,
			Payload: SignalEvent{
				Type:   c.Type,
				PeerID: c.Sender(),
				Data:   c.Data,
			},
		})

	case ScreenStart:
		// Last writer wins: a sitting presenter is displaced with no
		// handshake and no dedicated notification.
		r.state.StartPresentation(c.Sender())
		r.broadcast(Envelope{
			Type:    MsgScreenPresenter,
			Payload: PeerEvent{ID: c.Sender(), Name: r.state.ResolvedName(c.Sender())},
		}, c.Sender())

	case ScreenStop:
		if !r.state.StopPresentation(c.Sender()) {
			return
		}
		r.broadcast(Envelope{
			Type:    MsgScreenEnded,
			Payload: PeerEvent{ID: c.Sender()},
		}, c.Sender())

	case ScreenTransform:
		// Presenter-only, state-only: replication carries the change.
		r.state.ApplyScreenTransform(c.Sender(), c.X, c.Y, c.Z, c.RX, c.RY, c.RZ, c.Scale)

	case inspectState:
		c.reply <- r.state.Snapshot()

	default:
		r.logger.Warn("unhandled command", zap.String("session", cmd.Sender()))
	}
}

// handleChat trims, truncates, and broadcasts a chat line with a
// server-assigned timestamp. Whitespace-only messages vanish.
func (r *Room) handleChat(c Chat) {
	text := strings.TrimSpace(c.Text)
	if text == "" {
		return
	}
	if runes := []rune(text); len(runes) > MaxChatLen {
		text = string(runes[:MaxChatLen])
	}
	r.broadcast(Envelope{
		Type: MsgChat,
		Payload: ChatEvent{
			ID:   c.Sender(),
			Name: r.state.ResolvedName(c.Sender()),
			Text: text,
			TS:   r.now().UnixMilli(),
		},
	}, "")
}
