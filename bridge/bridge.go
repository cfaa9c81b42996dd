// Package bridge translates authenticated HTTP triggers from the legacy
// backend into router calls. The bridge adds no delivery semantics of its
// own, only authentication and translation.
package bridge

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"time"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// SystemSender is used when a trigger request names no sender of its own.
const SystemSender = "system"

type NotificationBridge struct {
	secret   []byte
	router   contract.IMessageRouter
	validate *validator.Validate
	log      *slog.Logger
}

func NewNotificationBridge(sharedSecret string, router contract.IMessageRouter, log *slog.Logger) *NotificationBridge {
	return &NotificationBridge{
		secret:   []byte(sharedSecret),
		router:   router,
		validate: validator.New(),
		log:      log,
	}
}

type triggerRequest struct {
	To      string `validate:"required"`
	Payload []byte `validate:"required"`
}

// HandleTrigger delivers an opaque notification payload to every device of
// toIdentity. The shared secret is checked before anything else; a rejected
// request never touches the registry.
func (b *NotificationBridge) HandleTrigger(ctx context.Context, sharedSecret, toIdentity string, payload []byte) (domain.DeliveryResult, error) {
	if err := b.authorize(sharedSecret); err != nil {
		return domain.DeliveryResult{}, err
	}
	if err := b.validate.Struct(triggerRequest{To: toIdentity, Payload: payload}); err != nil {
		return domain.DeliveryResult{}, errors.NewValidation(err)
	}
	result, err := b.router.Notify(ctx, toIdentity, payload)
	if err != nil {
		return result, err
	}
	b.log.Info("notify trigger routed",
		"to", toIdentity,
		"delivered", result.Delivered(),
		"devices", result.ConnectionsNotified)
	return result, nil
}

// HandleSendMessage routes a full chat message on behalf of the legacy
// backend, filling in the synthetic sender, message ID and timestamp the
// backend may omit. The router's result passes through unchanged so the
// backend can persist the message when nothing was delivered.
func (b *NotificationBridge) HandleSendMessage(ctx context.Context, sharedSecret string, msg domain.Message) (domain.DeliveryResult, error) {
	if err := b.authorize(sharedSecret); err != nil {
		return domain.DeliveryResult{}, err
	}

	if msg.Sender == "" {
		msg.Sender = SystemSender
	}
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	if msg.Kind == "" {
		if msg.MediaRef != "" {
			msg.Kind = domain.KindImage
		} else {
			msg.Kind = domain.KindText
		}
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	result, err := b.router.RouteDirect(ctx, msg)
	if err != nil {
		return result, err
	}
	b.log.Info("send trigger routed",
		"from", msg.Sender,
		"to", msg.Receiver,
		"delivered", result.Delivered(),
		"devices", result.ConnectionsNotified)
	return result, nil
}

func (b *NotificationBridge) authorize(sharedSecret string) error {
	if sharedSecret == "" {
		return errors.NewValidation(errors.ErrSecretMismatch)
	}
	if subtle.ConstantTimeCompare([]byte(sharedSecret), b.secret) != 1 {
		b.log.Warn("trigger rejected: bad shared secret")
		return errors.NewAuthorization(errors.ErrSecretMismatch)
	}
	return nil
}
