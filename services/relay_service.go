// Package services ties the routing core to transport sessions and the
// offline inbox.
package services

import (
	"context"
	"log/slog"
	"time"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/observability"
	"chat-relay/repositories"
)

type RelayService struct {
	router   contract.IMessageRouter
	registry contract.IConnectionRegistry
	rooms    contract.IRoomManager
	inbox    repositories.IInboxRepository
	metrics  *observability.Metrics
	log      *slog.Logger
}

var _ contract.IRelayService = (*RelayService)(nil)

func NewRelayService(
	router contract.IMessageRouter,
	registry contract.IConnectionRegistry,
	rooms contract.IRoomManager,
	inbox repositories.IInboxRepository,
	metrics *observability.Metrics,
	log *slog.Logger,
) *RelayService {
	return &RelayService{
		router:   router,
		registry: registry,
		rooms:    rooms,
		inbox:    inbox,
		metrics:  metrics,
		log:      log,
	}
}

// Register binds the connection to its identity, then drains the identity's
// offline inbox onto the fresh connection. Replay goes to this connection
// only; other already-registered devices received the messages live.
func (s *RelayService) Register(ctx context.Context, identity string, conn contract.Conn) {
	s.registry.Register(identity, conn)

	parked, err := s.inbox.Drain(identity)
	if err != nil {
		s.log.Error("inbox drain failed", "identity", identity, "error", err)
		return
	}
	if len(parked) == 0 {
		return
	}
	for _, msg := range parked {
		if err := conn.Deliver(ctx, event.FromMessage(msg)); err != nil {
			s.log.Warn("inbox replay delivery failed",
				"identity", identity,
				"connection", conn.ID(),
				"messageId", msg.ID,
				"error", err)
		}
	}
	s.log.Info("inbox replayed", "identity", identity, "messages", len(parked))
}

// Disconnect tears a connection down on both indexes. Safe to call for a
// connection that never registered.
func (s *RelayService) Disconnect(conn contract.Conn) {
	identity, ok := s.registry.Unregister(conn)
	s.rooms.DetachAll(conn)
	if ok {
		s.log.Info("connection unregistered", "identity", identity, "connection", conn.ID())
	}
}

// SendMessage routes the message and parks it when no device was notified.
// Parking failure surfaces to the caller so the sender can be told the
// message went nowhere.
func (s *RelayService) SendMessage(ctx context.Context, msg domain.Message) (domain.DeliveryResult, error) {
	result, err := s.router.RouteDirect(ctx, msg)
	if err != nil {
		return result, err
	}
	if result.Delivered() {
		s.metrics.MessageRouted()
		return result, nil
	}
	if err := s.inbox.Park(msg); err != nil {
		s.log.Error("parking offline message failed", "receiver", msg.Receiver, "error", err)
		return result, err
	}
	s.metrics.MessageParked()
	s.log.Info("message parked for offline receiver", "receiver", msg.Receiver, "messageId", msg.ID)
	return result, nil
}

func (s *RelayService) JoinRoom(roomID string, conn contract.Conn) {
	s.rooms.Join(roomID, conn)
}

func (s *RelayService) LeaveRoom(roomID string, conn contract.Conn) {
	s.rooms.Leave(roomID, conn)
}

// MarkMessageRead broadcasts the read receipt into the room, excluding the
// reader's own connection.
func (s *RelayService) MarkMessageRead(ctx context.Context, reader contract.Conn, cmd domain.MarkReadCommand) {
	s.router.RouteToRoomExceptSender(ctx, cmd.RoomID, reader, event.MessageRead{
		RoomID:    cmd.RoomID,
		MessageID: cmd.MessageID,
		ReadBy:    cmd.Reader,
		ReadAt:    time.Now().UTC(),
	})
}

// Typing broadcasts a composing signal into the room, excluding the sender.
func (s *RelayService) Typing(ctx context.Context, sender contract.Conn, cmd domain.TypingCommand) {
	s.router.RouteToRoomExceptSender(ctx, cmd.RoomID, sender, event.Typing{
		RoomID:   cmd.RoomID,
		Identity: cmd.Identity,
	})
}
