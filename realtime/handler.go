package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"chat-relay/auth"
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Handler upgrades websocket handshakes and runs the per-connection read loop.
type Handler struct {
	service    contract.IRelayService
	upgrader   websocket.Upgrader
	bufferSize int
	log        *slog.Logger
}

func NewHandler(service contract.IRelayService, bufferSize int, log *slog.Logger) *Handler {
	return &Handler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The legacy web client connects from another origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		bufferSize: bufferSize,
		log:        log,
	}
}

// Serve upgrades the request and blocks on the read loop until the client
// disconnects. Identity comes from the handshake query when present, or from
// a later register event.
func (h *Handler) Serve(c *gin.Context) {
	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "remote", c.Request.RemoteAddr, "error", err)
		return
	}

	conn := NewConnection(ws, h.bufferSize)
	conn.Start()

	ctx := c.Request.Context()
	if identity, ok := h.handshakeIdentity(c); ok {
		h.service.Register(ctx, identity, conn)
	}
	h.readLoop(ctx, conn, ws)
}

// handshakeIdentity extracts the identity from ?phone= or a signed ?token=.
// A bad token does not kill the handshake; the client may still register.
func (h *Handler) handshakeIdentity(c *gin.Context) (string, bool) {
	if phone := c.Query("phone"); phone != "" {
		return phone, true
	}
	if token := c.Query("token"); token != "" {
		claims, err := auth.ValidateToken(token)
		if err != nil {
			h.log.Warn("handshake token rejected", "error", err)
			return "", false
		}
		return claims.Identity, true
	}
	return "", false
}

func (h *Handler) readLoop(ctx context.Context, conn *Connection, ws *websocket.Conn) {
	defer func() {
		h.service.Disconnect(conn)
		conn.Close(websocket.CloseNormalClosure, "")
	}()

	for {
		_, payload, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Info("connection dropped", "connection", conn.ID(), "error", err)
			}
			return
		}
		if err := h.dispatch(ctx, conn, payload); err != nil {
			// Errors go back to the originating connection only
			_ = conn.Deliver(ctx, event.Error{Reason: err.Error()})
		}
	}
}

func (h *Handler) dispatch(ctx context.Context, conn *Connection, payload []byte) error {
	var env inboundEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return fmt.Errorf("malformed envelope: %w", err)
	}

	switch env.Event {
	case eventRegister:
		var p registerPayload
		if err := json.Unmarshal(env.Data, &p); err != nil || p.Phone == "" {
			return fmt.Errorf("register requires a phone")
		}
		h.service.Register(ctx, p.Phone, conn)
		return nil

	case eventJoinConversation:
		p, err := decodeConversation(env.Data)
		if err != nil {
			return err
		}
		h.service.JoinRoom(domain.RoomID(p.Identity, p.Peer), conn)
		return nil

	case eventLeaveConversation:
		p, err := decodeConversation(env.Data)
		if err != nil {
			return err
		}
		h.service.LeaveRoom(domain.RoomID(p.Identity, p.Peer), conn)
		return nil

	case eventSendMessage:
		var p sendMessagePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return fmt.Errorf("malformed send-message payload: %w", err)
		}
		_, err := h.service.SendMessage(ctx, toMessage(p))
		return err

	case eventMarkMessageRead:
		var p markReadPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return fmt.Errorf("malformed mark-message-read payload: %w", err)
		}
		h.service.MarkMessageRead(ctx, conn, domain.MarkReadCommand{
			RoomID:    domain.RoomID(p.Identity, p.Peer),
			MessageID: p.MessageID,
			Reader:    p.Identity,
		})
		return nil

	case eventTyping:
		p, err := decodeConversation(env.Data)
		if err != nil {
			return err
		}
		h.service.Typing(ctx, conn, domain.TypingCommand{
			RoomID:   domain.RoomID(p.Identity, p.Peer),
			Identity: p.Identity,
		})
		return nil

	default:
		return fmt.Errorf("unknown event %q", env.Event)
	}
}

func decodeConversation(data json.RawMessage) (conversationPayload, error) {
	var p conversationPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("malformed conversation payload: %w", err)
	}
	if p.Identity == "" || p.Peer == "" {
		return p, fmt.Errorf("conversation payload requires identity and peer")
	}
	return p, nil
}

func toMessage(p sendMessagePayload) domain.Message {
	msg := domain.Message{
		ConversationID: p.ConversationID,
		Sender:         p.Sender,
		Receiver:       p.Receiver,
		Body:           p.Body,
		Kind:           domain.Kind(p.Kind),
		MediaRef:       p.MediaRef,
		Timestamp:      time.Now().UTC(),
	}
	if id, err := uuid.Parse(p.MessageID); err == nil {
		msg.ID = id
	} else {
		msg.ID = uuid.New()
	}
	if msg.Kind == "" {
		if msg.MediaRef != "" {
			msg.Kind = domain.KindImage
		} else {
			msg.Kind = domain.KindText
		}
	}
	return msg
}
