// Package collab runs live editing sessions: one room per design, presence
// broadcast, and server-ordered canvas operations.
package collab

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/popcanvas/popcanvas/internal/document"
	"github.com/popcanvas/popcanvas/internal/history"
)

// Loader fetches the canvas a room starts from.
type Loader func(ctx context.Context, designID string) (*document.CanvasState, error)

// Saver persists a room's canvas.
type Saver func(ctx context.Context, designID string, canvas *document.CanvasState) error

type Room struct {
	designID string
	clients  map[string]*Client // clientID -> client
	presence *PresenceManager
	doc      *DocumentState
}

func NewRoom(designID string, doc *DocumentState) *Room {
	return &Room{
		designID: designID,
		clients:  make(map[string]*Client),
		presence: NewPresenceManager(),
		doc:      doc,
	}
}

type Hub struct {
	mu           sync.RWMutex
	rooms        map[string]*Room // designID -> room
	register     chan *Client
	unregister   chan *Client
	stop         chan struct{}
	done         chan struct{}
	stopOnce     sync.Once
	load         Loader
	save         Saver
	historyLimit int
	saveTimeout  time.Duration
}

type HubOption func(*Hub)

// WithHistoryLimit bounds the undo history kept by each room's engine.
func WithHistoryLimit(n int) HubOption {
	return func(h *Hub) { h.historyLimit = n }
}

func NewHub(load Loader, save Saver, opts ...HubOption) *Hub {
	h := &Hub{
		rooms:        make(map[string]*Room),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
		load:         load,
		save:         save,
		historyLimit: history.DefaultLimit,
		saveTimeout:  10 * time.Second,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run processes joins and leaves until Stop is called.
func (h *Hub) Run() {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-h.stop:
			return
		}
	}
}

// Stop ends Run and saves every dirty room.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stop)
		<-h.done
		n := h.SaveDirty(context.Background())
		slog.Info("hub stopped", "saved", n)
	})
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.stop:
		client.Close("server shutting down")
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.stop:
	}
}

// Room returns the live room for a design, if any client has it open.
func (h *Hub) Room(designID string) (*Room, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	r, ok := h.rooms[designID]
	return r, ok
}

func (h *Hub) addClient(client *Client) {
	h.mu.RLock()
	room, ok := h.rooms[client.DesignID]
	h.mu.RUnlock()

	if !ok {
		// Loading runs on the hub goroutine, so joins are serialized per hub.
		ctx, cancel := context.WithTimeout(context.Background(), h.saveTimeout)
		canvas, err := h.load(ctx, client.DesignID)
		cancel()
		if err != nil {
			slog.Error("load design", "error", err, "design", client.DesignID)
			client.Send(newMessage(TypeError, ErrorPayload{Message: "failed to load design"}))
			client.Close("load failed")
			return
		}
		room = NewRoom(client.DesignID, NewDocumentState(canvas, h.historyLimit))
		h.mu.Lock()
		h.rooms[client.DesignID] = room
		h.mu.Unlock()
	}

	h.mu.Lock()
	room.clients[client.ClientID] = client
	h.mu.Unlock()

	client.Send(newMessage(TypeWelcome, WelcomePayload{ClientID: client.ClientID, UserID: client.UserID}))

	canvas, seq := room.doc.Snapshot()
	client.Send(newMessage(TypeDocSync, DocSyncPayload{Canvas: canvas, ServerSeq: seq}))

	if stateMsg := room.presence.StateMessage(); stateMsg != nil {
		client.Send(stateMsg)
	}

	join := newMessage(TypePresenceJoin, PresenceJoinPayload{
		UserID:      client.UserID,
		DisplayName: client.DisplayName,
	})
	join.UserID = client.UserID
	h.broadcastToRoom(client.DesignID, join, client.ClientID)

	slog.Info("client joined", "user", client.UserID, "design", client.DesignID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.DesignID]
	if !ok || room.clients[client.ClientID] != client {
		h.mu.Unlock()
		return
	}

	delete(room.clients, client.ClientID)
	client.closeSend()
	room.presence.Remove(client.UserID)

	empty := len(room.clients) == 0
	if empty {
		delete(h.rooms, client.DesignID)
	}
	h.mu.Unlock()

	if empty {
		h.saveRoom(context.Background(), room)
	} else {
		leave := newMessage(TypePresenceLeave, PresenceLeavePayload{UserID: client.UserID})
		leave.UserID = client.UserID
		h.broadcastToRoom(client.DesignID, leave, "")
	}

	slog.Info("client left", "user", client.UserID, "design", client.DesignID)
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	switch msg.Type {
	case TypePresenceUpdate:
		h.handlePresenceUpdate(sender, msg)
	case TypeOpSubmit:
		h.handleOpSubmit(sender, msg)
	default:
		slog.Warn("unknown message type", "type", msg.Type, "user", sender.UserID)
	}
}

func (h *Hub) handlePresenceUpdate(sender *Client, msg *Message) {
	var presence PresencePayload
	if err := json.Unmarshal(msg.Payload, &presence); err != nil {
		slog.Warn("invalid presence payload", "error", err)
		return
	}

	presence.DisplayName = sender.DisplayName

	room, ok := h.Room(sender.DesignID)
	if !ok {
		return
	}

	room.presence.Update(sender.UserID, &presence)

	out := newMessage(TypePresenceUpdate, presence)
	out.UserID = sender.UserID
	h.broadcastToRoom(sender.DesignID, out, sender.ClientID)
}

func (h *Hub) handleOpSubmit(sender *Client, msg *Message) {
	var submit OperationSubmitPayload
	if err := json.Unmarshal(msg.Payload, &submit); err != nil {
		sender.Send(newMessage(TypeOpNack, OperationNackPayload{Reason: "invalid payload"}))
		return
	}
	op := submit.Operation

	room, ok := h.Room(sender.DesignID)
	if !ok {
		return
	}

	seq, err := room.doc.ApplyOperation(op)
	if err != nil {
		slog.Debug("operation rejected", "op", op.Type, "error", err, "user", sender.UserID)
		sender.Send(newMessage(TypeOpNack, OperationNackPayload{OperationID: op.ID, Reason: err.Error()}))
		return
	}

	ack := newMessage(TypeOpAck, OperationAckPayload{
		OperationID:     op.ID,
		ServerSeq:       seq,
		ServerTimestamp: time.Now().UnixMilli(),
	})
	ack.Seq = seq
	sender.Send(ack)

	broadcast := newMessage(TypeOpBroadcast, OperationBroadcastPayload{
		Operation: op,
		UserID:    sender.UserID,
		ServerSeq: seq,
	})
	broadcast.Seq = seq
	broadcast.UserID = sender.UserID
	h.broadcastToRoom(sender.DesignID, broadcast, sender.ClientID)
}

func (h *Hub) broadcastToRoom(designID string, msg *Message, excludeClientID string) {
	h.mu.RLock()
	room, ok := h.rooms[designID]
	if !ok {
		h.mu.RUnlock()
		return
	}

	clients := make([]*Client, 0, len(room.clients))
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	msg.DesignID = designID
	for _, c := range clients {
		c.Send(msg)
	}
}

// SaveDirty saves every room with unsaved operations and returns how many were
// written.
func (h *Hub) SaveDirty(ctx context.Context) int {
	h.mu.RLock()
	rooms := make([]*Room, 0, len(h.rooms))
	for _, r := range h.rooms {
		rooms = append(rooms, r)
	}
	h.mu.RUnlock()

	saved := 0
	for _, r := range rooms {
		if h.saveRoom(ctx, r) {
			saved++
		}
	}
	return saved
}

func (h *Hub) saveRoom(ctx context.Context, r *Room) bool {
	canvas, dirty := r.doc.TakeDirty()
	if !dirty {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, h.saveTimeout)
	defer cancel()
	if err := h.save(ctx, r.designID, &canvas); err != nil {
		if !errors.Is(err, context.Canceled) {
			slog.Error("save design", "error", err, "design", r.designID)
		}
		r.doc.MarkDirty()
		return false
	}
	slog.Debug("saved design", "design", r.designID)
	return true
}
