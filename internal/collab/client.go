package collab

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 256 * 1024
	sendBuffer = 256
)

// Client is one websocket connection joined to a design room. Identity fields are
// set by the server and override whatever the peer puts in a message.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	mu      sync.Mutex
	closed  bool
	lagging bool

	UserID      string
	DisplayName string
	DesignID    string
	ClientID    string
}

// NewClient wraps a websocket connection. conn may be nil when messages are
// consumed directly from the send queue.
func NewClient(hub *Hub, conn *websocket.Conn, userID, displayName, designID, clientID string) *Client {
	return &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, sendBuffer),
		UserID:      userID,
		DisplayName: displayName,
		DesignID:    designID,
		ClientID:    clientID,
	}
}

// Serve joins the room and pumps messages until the connection ends or ctx is
// done.
func (c *Client) Serve(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.hub.Register(c)
	go func() {
		c.WritePump(ctx)
		cancel()
	}()
	c.ReadPump(ctx)
}

// ReadPump decodes client messages and hands them to the hub. Only presence
// updates and operation submits are accepted from peers.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	c.conn.SetReadLimit(maxMsgSize)

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				if !errors.Is(err, context.Canceled) {
					slog.Debug("read error", "error", err, "user", c.UserID, "design", c.DesignID)
				}
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.Send(newMessage(TypeError, ErrorPayload{Message: "malformed message"}))
			continue
		}
		if msg.Type != TypePresenceUpdate && msg.Type != TypeOpSubmit {
			c.Send(newMessage(TypeError, ErrorPayload{Message: "unsupported message type " + msg.Type}))
			continue
		}

		msg.UserID = c.UserID
		msg.ClientID = c.ClientID
		msg.DesignID = c.DesignID

		c.hub.handleMessage(c, &msg)
	}
}

// WritePump drains the send queue onto the connection and keeps it alive with
// pings.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				c.conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				slog.Debug("write error", "error", err, "user", c.UserID)
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

// Send queues msg for the peer. A peer whose queue overflows is disconnected and
// must rejoin for a fresh doc.sync.
func (c *Client) Send(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal message", "error", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.lagging {
		return
	}
	select {
	case c.send <- data:
	default:
		c.lagging = true
		slog.Warn("client send buffer full, disconnecting", "user", c.UserID, "design", c.DesignID)
		go c.Close("send buffer full")
	}
}

// Close ends the connection with a going-away status.
func (c *Client) Close(reason string) {
	if c.conn != nil {
		c.conn.Close(websocket.StatusGoingAway, reason)
	}
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}
