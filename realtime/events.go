package realtime

import "encoding/json"

// Inbound event names the read loop dispatches on.
const (
	eventRegister          = "register"
	eventJoinConversation  = "join-conversation"
	eventLeaveConversation = "leave-conversation"
	eventSendMessage       = "send-message"
	eventMarkMessageRead   = "mark-message-read"
	eventTyping            = "typing"
)

type inboundEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type registerPayload struct {
	Phone string `json:"phone"`
}

// conversationPayload names both sides of a conversation; the room is derived
// from the pair, so both members compute the same room regardless of order.
type conversationPayload struct {
	Identity string `json:"identity"`
	Peer     string `json:"peer"`
}

type sendMessagePayload struct {
	MessageID      string `json:"messageId"`
	ConversationID string `json:"conversationId"`
	Sender         string `json:"sender"`
	Receiver       string `json:"receiver"`
	Body           string `json:"body"`
	Kind           string `json:"kind"`
	MediaRef       string `json:"mediaRef"`
}

type markReadPayload struct {
	Identity  string `json:"identity"`
	Peer      string `json:"peer"`
	MessageID string `json:"messageId"`
}
