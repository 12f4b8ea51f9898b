package ws

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/nexus-xr/nexus/internal/room"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Signaling payloads carry
	// SDP blobs, which need headroom.
	maxMessageSize = 64 * 1024
)

var errConnClosed = errors.New("connection closed")
var errSendBufferFull = errors.New("send buffer full")

// conn adapts one websocket connection to the room.Client interface.
// Outbound messages go through a buffered channel drained by writePump;
// Send never blocks and drops on overflow, so a slow consumer cannot
// stall the room goroutine.
type conn struct {
	sessionID string
	sock      *websocket.Conn
	send      chan room.Envelope
	closed    chan struct{}
	once      sync.Once
	logger    *zap.Logger
}

func newConn(sessionID string, sock *websocket.Conn, sendBuffer int, logger *zap.Logger) *conn {
	if sendBuffer <= 0 {
		sendBuffer = 64
	}
	return &conn{
		sessionID: sessionID,
		sock:      sock,
		send:      make(chan room.Envelope, sendBuffer),
		closed:    make(chan struct{}),
		logger:    logger.With(zap.String("session", sessionID)),
	}
}

// SessionID returns the server-assigned connection identifier.
func (c *conn) SessionID() string { return c.sessionID }

// Send enqueues an envelope for delivery. Fire-and-forget: a closed
// connection or full buffer drops the message and reports the reason so
// the room can log it.
func (c *conn) Send(env room.Envelope) error {
	select {
	case <-c.closed:
		return errConnClosed
	default:
	}
	select {
	case c.send <- env:
		return nil
	default:
		return errSendBufferFull
	}
}

// Close tears the connection down. Safe to call more than once.
func (c *conn) Close() error {
	var err error
	c.once.Do(func() {
		close(c.closed)
		err = c.sock.Close()
	})
	return err
}

// inboundEnvelope is the wire framing read from the client.
type inboundEnvelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// readPump forwards inbound messages to the room until the connection
// drops, then completes the leave. There is at most one reader per
// connection.
func (c *conn) readPump(rm *room.Room) {
	defer func() {
		rm.Leave(c.sessionID)
		_ = c.Close()
	}()

	c.sock.SetReadLimit(maxMessageSize)
	_ = c.sock.SetReadDeadline(time.Now().Add(pongWait))
	c.sock.SetPongHandler(func(string) error {
		return c.sock.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.sock.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("read failed", zap.Error(err))
			}
			return
		}

		var env inboundEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.logger.Debug("unparseable frame dropped", zap.Error(err))
			continue
		}

		cmd, err := room.DecodeCommand(c.sessionID, env.Type, env.Payload)
		if err != nil {
			c.logger.Debug("unknown message type dropped", zap.String("type", env.Type))
			continue
		}
		rm.Submit(cmd)
	}
}

// writePump drains the send channel onto the socket and keeps the
// connection alive with pings. There is at most one writer per
// connection.
func (c *conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Close()
	}()

	for {
		select {
		case env := <-c.send:
			_ = c.sock.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.sock.WriteJSON(env); err != nil {
				c.logger.Debug("write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.sock.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.sock.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.closed:
			return
		}
	}
}
