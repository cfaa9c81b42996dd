// Package domain contains core concepts of the relay.
// This file defines the wire message and the outcome of a routing attempt.
// Messages are immutable; the relay treats body and media references as opaque.
package domain

import (
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
)

// Message is the payload routed between identities. Sender and Receiver are
// stable user keys (phone numbers); the relay neither stores nor validates
// media content behind MediaRef.
type Message struct {
	ID             uuid.UUID
	ConversationID string
	Sender         string
	Receiver       string
	Body           string
	Kind           Kind
	MediaRef       string
	Timestamp      time.Time
}

// DeliveryResult reports one routing attempt. ConnectionsNotified counts only
// connections whose send succeeded; zero with Attempted true means the
// receiver had no live device and the caller should park the message.
type DeliveryResult struct {
	Attempted           bool
	ConnectionsNotified int
}

// Delivered reports whether at least one live connection got the payload.
func (r DeliveryResult) Delivered() bool {
	return r.ConnectionsNotified > 0
}
