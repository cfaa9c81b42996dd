// Package api exposes the HTTP surface: trigger endpoints for the legacy
// backend, the websocket handshake, health and diagnostics.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"time"

	"chat-relay/bridge"
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/observability"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/process"
)

type Server struct {
	bridge   *bridge.NotificationBridge
	registry contract.IConnectionRegistry
	rooms    contract.IRoomManager
	metrics  *observability.Metrics
	started  time.Time
	log      *slog.Logger
}

func NewServer(
	bridge *bridge.NotificationBridge,
	registry contract.IConnectionRegistry,
	rooms contract.IRoomManager,
	metrics *observability.Metrics,
	log *slog.Logger,
) *Server {
	return &Server{
		bridge:   bridge,
		registry: registry,
		rooms:    rooms,
		metrics:  metrics,
		started:  time.Now(),
		log:      log,
	}
}

// Routes mounts every endpoint on the engine. The websocket handler is
// mounted separately by the caller so this package stays transport-agnostic.
func (s *Server) Routes(engine *gin.Engine) {
	engine.POST("/notify-style-trigger", s.notifyTrigger)
	engine.POST("/send-message-style-trigger", s.sendMessageTrigger)
	engine.GET("/healthz", s.health)
	engine.GET("/debug/registry", s.registrySnapshot)
}

// Secret and identity checks happen inside the bridge, after authorization,
// so a bad secret always answers 403 even when fields are missing too.
type notifyTriggerRequest struct {
	ToIdentity   string          `json:"toIdentity"`
	Payload      json.RawMessage `json:"payload"`
	SharedSecret string          `json:"sharedSecret"`
}

type sendMessageTriggerRequest struct {
	SenderIdentity   string `json:"senderIdentity"`
	ReceiverIdentity string `json:"receiverIdentity"`
	ConversationID   string `json:"conversationId"`
	Body             string `json:"body"`
	Kind             string `json:"kind"`
	MediaRef         string `json:"mediaRef"`
	SharedSecret     string `json:"sharedSecret"`
}

type triggerResponse struct {
	Success             bool   `json:"success"`
	Delivered           bool   `json:"delivered"`
	ConnectionsNotified int    `json:"connectionsNotified"`
	Error               string `json:"error,omitempty"`
}

func (s *Server) notifyTrigger(c *gin.Context) {
	var req notifyTriggerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.metrics.TriggerRejected()
		c.JSON(http.StatusBadRequest, triggerResponse{Error: err.Error()})
		return
	}

	result, err := s.bridge.HandleTrigger(c.Request.Context(), req.SharedSecret, req.ToIdentity, req.Payload)
	s.answerTrigger(c, result, err)
}

func (s *Server) sendMessageTrigger(c *gin.Context) {
	var req sendMessageTriggerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.metrics.TriggerRejected()
		c.JSON(http.StatusBadRequest, triggerResponse{Error: err.Error()})
		return
	}

	result, err := s.bridge.HandleSendMessage(c.Request.Context(), req.SharedSecret, domain.Message{
		ConversationID: req.ConversationID,
		Sender:         req.SenderIdentity,
		Receiver:       req.ReceiverIdentity,
		Body:           req.Body,
		Kind:           domain.Kind(req.Kind),
		MediaRef:       req.MediaRef,
	})
	s.answerTrigger(c, result, err)
}

func (s *Server) answerTrigger(c *gin.Context, result domain.DeliveryResult, err error) {
	switch {
	case errors.IsAuthorization(err):
		s.metrics.TriggerRejected()
		c.JSON(http.StatusForbidden, triggerResponse{Error: "forbidden"})
	case errors.IsValidation(err):
		s.metrics.TriggerRejected()
		c.JSON(http.StatusBadRequest, triggerResponse{Error: err.Error()})
	case err != nil:
		s.metrics.TriggerRejected()
		s.log.Error("trigger failed", "error", err)
		c.JSON(http.StatusInternalServerError, triggerResponse{Error: "internal error"})
	default:
		s.metrics.TriggerAccepted()
		c.JSON(http.StatusOK, triggerResponse{
			Success:             true,
			Delivered:           result.Delivered(),
			ConnectionsNotified: result.ConnectionsNotified,
		})
	}
}

type healthResponse struct {
	Status      string                 `json:"status"`
	UptimeSec   int64                  `json:"uptimeSec"`
	Identities  int                    `json:"identities"`
	Connections int                    `json:"connections"`
	Rooms       int                    `json:"rooms"`
	Counters    observability.Snapshot `json:"counters"`
	Goroutines  int                    `json:"goroutines"`
	RSSBytes    uint64                 `json:"rssBytes"`
	CPUPercent  float64                `json:"cpuPercent"`
}

func (s *Server) health(c *gin.Context) {
	resp := healthResponse{
		Status:      "ok",
		UptimeSec:   int64(time.Since(s.started).Seconds()),
		Identities:  s.registry.Identities(),
		Connections: s.registry.Connections(),
		Rooms:       s.rooms.Rooms(),
		Counters:    s.metrics.Snapshot(),
		Goroutines:  runtime.NumGoroutine(),
	}
	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if mem, err := proc.MemoryInfo(); err == nil {
			resp.RSSBytes = mem.RSS
		}
		if cpu, err := proc.CPUPercent(); err == nil {
			resp.CPUPercent = cpu
		}
	}
	c.JSON(http.StatusOK, resp)
}

// registrySnapshot dumps identity -> connection IDs. Diagnostics only.
func (s *Server) registrySnapshot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"identities": s.registry.Snapshot(),
		"rooms":      s.rooms.Rooms(),
	})
}
