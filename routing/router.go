// Package routing fans messages out to every live device of a recipient.
package routing

import (
	"context"
	"log/slog"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/errors"
)

// MessageRouter resolves a receiver identity to its connections and delivers
// the payload to each one independently. The router only reads the registry;
// it never mutates it.
type MessageRouter struct {
	registry contract.IConnectionRegistry
	rooms    contract.IRoomManager
	log      *slog.Logger
}

func NewMessageRouter(registry contract.IConnectionRegistry, rooms contract.IRoomManager, log *slog.Logger) *MessageRouter {
	return &MessageRouter{registry: registry, rooms: rooms, log: log}
}

// RouteDirect validates the message and delivers it to every connection the
// receiver holds at this moment. An offline receiver yields
// {Attempted: true, ConnectionsNotified: 0} with no error: that result is the
// signal for the caller to park the message for later retrieval. A failed
// send on one connection never aborts delivery to the others.
//
// There is deliberately no broadcast fallback for an unresolvable receiver:
// a payload without a receiver fails validation instead of leaking to every
// connected identity.
func (r *MessageRouter) RouteDirect(ctx context.Context, msg domain.Message) (domain.DeliveryResult, error) {
	if msg.Receiver == "" {
		return domain.DeliveryResult{}, errors.NewValidation(errors.ErrMissingReceiver)
	}
	if msg.Body == "" && msg.MediaRef == "" {
		return domain.DeliveryResult{}, errors.NewValidation(errors.ErrEmptyPayload)
	}
	return r.fanOut(ctx, msg.Receiver, event.FromMessage(msg)), nil
}

// Notify delivers an opaque payload triggered by the legacy backend to every
// device of the identity, on the same fan-out path as direct messages.
func (r *MessageRouter) Notify(ctx context.Context, identity string, payload []byte) (domain.DeliveryResult, error) {
	if identity == "" {
		return domain.DeliveryResult{}, errors.NewValidation(errors.ErrMissingReceiver)
	}
	if len(payload) == 0 {
		return domain.DeliveryResult{}, errors.NewValidation(errors.ErrEmptyPayload)
	}
	return r.fanOut(ctx, identity, event.Notification{Payload: payload}), nil
}

// RouteToRoomExceptSender delegates a typing or read-receipt event to the
// room layer. The primary message payload never goes through here; direct
// per-device fan-out is the sole echo mechanism, which keeps a sender's other
// devices from seeing the same message twice.
func (r *MessageRouter) RouteToRoomExceptSender(ctx context.Context, roomID string, sender contract.Conn, e event.Outbound) int {
	return r.rooms.BroadcastExceptSender(ctx, roomID, sender, e)
}

// fanOut resolves once and delivers to that snapshot of connections. Devices
// registering mid-send are picked up by the next routing attempt, not this one.
func (r *MessageRouter) fanOut(ctx context.Context, identity string, e event.Outbound) domain.DeliveryResult {
	conns := r.registry.Resolve(identity)
	if len(conns) == 0 {
		r.log.Debug("receiver offline", "identity", identity, "event", e.Name())
		return domain.DeliveryResult{Attempted: true}
	}

	notified := 0
	for _, c := range conns {
		if err := c.Deliver(ctx, e); err != nil {
			r.log.Warn("delivery failed",
				"identity", identity,
				"connection_id", c.ID(),
				"event", e.Name(),
				"error", err)
			continue
		}
		notified++
	}
	r.log.Debug("fan-out complete",
		"identity", identity,
		"event", e.Name(),
		"devices", len(conns),
		"notified", notified)
	return domain.DeliveryResult{Attempted: true, ConnectionsNotified: notified}
}
