// Package event defines the events pushed to live connections.
package event

import (
	"encoding/json"
	"time"

	"chat-relay/domain"
)

// Outbound is anything the relay can push down a live connection. Name is the
// envelope tag the client switches on.
type Outbound interface {
	Name() string
}

// ChatMessage carries a routed message to every device of the receiver.
type ChatMessage struct {
	MessageID      string      `json:"messageId"`
	ConversationID string      `json:"conversationId"`
	Sender         string      `json:"sender"`
	Receiver       string      `json:"receiver"`
	Body           string      `json:"body"`
	Kind           domain.Kind `json:"kind"`
	MediaRef       string      `json:"mediaRef,omitempty"`
	Timestamp      time.Time   `json:"timestamp"`
}

func (ChatMessage) Name() string { return "chat-message" }

// FromMessage maps a domain message onto its wire event.
func FromMessage(m domain.Message) ChatMessage {
	return ChatMessage{
		MessageID:      m.ID.String(),
		ConversationID: m.ConversationID,
		Sender:         m.Sender,
		Receiver:       m.Receiver,
		Body:           m.Body,
		Kind:           m.Kind,
		MediaRef:       m.MediaRef,
		Timestamp:      m.Timestamp,
	}
}

// Notification carries an opaque payload triggered by the legacy backend.
type Notification struct {
	Payload json.RawMessage `json:"payload"`
}

func (Notification) Name() string { return "notification" }

// MessageRead tells the other room members a message has been read.
type MessageRead struct {
	RoomID    string    `json:"roomId"`
	MessageID string    `json:"messageId"`
	ReadBy    string    `json:"readBy"`
	ReadAt    time.Time `json:"readAt"`
}

func (MessageRead) Name() string { return "message-read" }

// Typing tells the other room members an identity is composing.
type Typing struct {
	RoomID   string `json:"roomId"`
	Identity string `json:"identity"`
}

func (Typing) Name() string { return "typing" }

// Error is returned to the originating connection only, never broadcast.
type Error struct {
	Reason string `json:"reason"`
}

func (Error) Name() string { return "error" }
