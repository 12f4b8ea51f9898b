package room

// Client is the room's handle to one connected participant. The transport
// layer owns the underlying connection.
//
// Send must be fire-and-forget: it must never block the caller. A slow
// or disconnected recipient is the transport's problem; the room logs a
// failed send and moves on. Close tears the connection down; it is
// called when the room is disposed.
type Client interface {
	SessionID() string
	Send(env Envelope) error
	Close() error
}
