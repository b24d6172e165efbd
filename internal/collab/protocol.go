package collab

import (
	"encoding/json"

	"github.com/popcanvas/popcanvas/internal/document"
)

type Message struct {
	Type     string          `json:"type"`
	DesignID string          `json:"designId,omitempty"`
	ClientID string          `json:"clientId,omitempty"`
	UserID   string          `json:"userId,omitempty"`
	Seq      int64           `json:"seq,omitempty"`
	Payload  json.RawMessage `json:"payload"`
}

type PresencePayload struct {
	Cursor      *CursorPos `json:"cursor,omitempty"`
	Selection   []string   `json:"selection,omitempty"`
	DisplayName string     `json:"displayName,omitempty"`
}

type CursorPos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type PresenceStatePayload struct {
	Presences map[string]*PresencePayload `json:"presences"`
}

type PresenceJoinPayload struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

type PresenceLeavePayload struct {
	UserID string `json:"userId"`
}

type WelcomePayload struct {
	ClientID string `json:"clientId"`
	UserID   string `json:"userId"`
}

// DocSyncPayload carries the full authoritative canvas to a joining client.
type DocSyncPayload struct {
	Canvas    document.CanvasState `json:"canvas"`
	ServerSeq int64                `json:"serverSeq"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

const (
	TypePresenceUpdate = "presence.update"
	TypePresenceState  = "presence.state"
	TypePresenceJoin   = "presence.join"
	TypePresenceLeave  = "presence.leave"
	TypeError          = "error"

	// Connection
	TypeWelcome = "welcome"

	// Document sync
	TypeDocSync = "doc.sync"

	// Operation message types
	TypeOpSubmit    = "op.submit"
	TypeOpAck       = "op.ack"
	TypeOpNack      = "op.nack"
	TypeOpBroadcast = "op.broadcast"
)

// Operation types.
const (
	OpElementUpdate    = "element.update"
	OpElementAdd       = "element.add"
	OpElementDelete    = "element.delete"
	OpElementPin       = "element.pin"
	OpLayerRaise       = "layer.raise"
	OpLayerLower       = "layer.lower"
	OpLayerFront       = "layer.front"
	OpLayerBack        = "layer.back"
	OpAlign            = "align"
	OpDistribute       = "distribute"
	OpCanvasBackground = "canvas.background"
	OpCanvasLayout     = "canvas.layout"
)

// Operation is one canvas mutation submitted by a client. Which fields are set
// depends on Type.
type Operation struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
	ClientSeq int64  `json:"clientSeq"`

	// element.pin, layer.*
	ElementID string `json:"elementId,omitempty"`
	// element.delete, align, distribute
	ElementIDs []string `json:"elementIds,omitempty"`

	// element.update
	Updates []document.Update `json:"updates,omitempty"`

	// element.add
	Element *document.Element `json:"element,omitempty"`

	// element.pin; nil toggles
	Pinned *bool `json:"pinned,omitempty"`

	// align mode or distribute axis
	Mode string `json:"mode,omitempty"`

	// canvas.background
	Background *document.Background `json:"background,omitempty"`

	// canvas.layout
	Layout document.LayoutType `json:"layout,omitempty"`
}

// OperationSubmitPayload is the payload for op.submit messages
type OperationSubmitPayload struct {
	Operation Operation `json:"operation"`
}

// OperationAckPayload is the payload for op.ack messages
type OperationAckPayload struct {
	OperationID     string `json:"operationId"`
	ServerSeq       int64  `json:"serverSeq"`
	ServerTimestamp int64  `json:"serverTimestamp"`
}

// OperationNackPayload is the payload for op.nack messages
type OperationNackPayload struct {
	OperationID string `json:"operationId"`
	Reason      string `json:"reason"`
}

// OperationBroadcastPayload is the payload for op.broadcast messages
type OperationBroadcastPayload struct {
	Operation Operation `json:"operation"`
	UserID    string    `json:"userId"`
	ServerSeq int64     `json:"serverSeq"`
}

func newMessage(typ string, payload any) *Message {
	data, err := json.Marshal(payload)
	if err != nil {
		data = []byte("null")
	}
	return &Message{Type: typ, Payload: data}
}
