package notifications

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	ws "consultbridge/marketplace-portal/marketplace-portal-backend/internal/notifications/websocket"
)

// Service renders templates and dispatches notifications. Delivery is
// fire-and-forget: failures are logged and recorded in the delivery log,
// never surfaced to the caller.
type Service struct {
	db     *gorm.DB
	email  *EmailChannel
	sms    *SMSChannel
	hub    *ws.Hub
	logger *zap.Logger
}

// NewService creates a new notification service and migrates the delivery log
func NewService(db *gorm.DB, email *EmailChannel, sms *SMSChannel, hub *ws.Hub, logger *zap.Logger) (*Service, error) {
	if db != nil {
		if err := db.AutoMigrate(&DeliveryLog{}); err != nil {
			return nil, fmt.Errorf("failed to migrate notifications schema: %w", err)
		}
	}
	return &Service{db: db, email: email, sms: sms, hub: hub, logger: logger}, nil
}

// Notify renders the template for kind and delivers it to the recipient's
// email address. When the payload carries a user_id, the message is also
// pushed in-app; when it carries a phone number, an SMS goes out too.
func (s *Service) Notify(ctx context.Context, recipient string, kind TemplateKind, payload map[string]interface{}) {
	subject, body, err := render(kind, payload)
	if err != nil {
		s.logger.Error("Failed to render notification template",
			zap.String("kind", string(kind)), zap.Error(err))
		return
	}

	if s.email != nil && recipient != "" {
		err := s.email.Send(ctx, recipient, subject, body)
		s.logDelivery(recipient, kind, ChannelEmail, payload, err)
	}

	if s.sms != nil {
		if phone, ok := payload["phone"].(string); ok && phone != "" {
			err := s.sms.Send(ctx, phone, body)
			s.logDelivery(phone, kind, ChannelSMS, payload, err)
		}
	}

	if s.hub != nil {
		if userID, ok := payload["user_id"].(string); ok && userID != "" {
			s.hub.Push(userID, ws.Message{
				Kind:    string(kind),
				Subject: subject,
				Body:    body,
				SentAt:  time.Now(),
			})
			s.logDelivery(userID, kind, ChannelInApp, payload, nil)
		}
	}
}

func (s *Service) logDelivery(recipient string, kind TemplateKind, channel ChannelKind, payload map[string]interface{}, sendErr error) {
	if sendErr != nil {
		s.logger.Warn("Notification delivery failed",
			zap.String("recipient", recipient),
			zap.String("kind", string(kind)),
			zap.String("channel", string(channel)),
			zap.Error(sendErr))
	}
	if s.db == nil {
		return
	}

	entry := DeliveryLog{
		ID:        uuid.New(),
		Recipient: recipient,
		Kind:      kind,
		Channel:   channel,
		Status:    DeliverySent,
		Payload:   datatypes.JSONMap(payload),
		CreatedAt: time.Now(),
	}
	if sendErr != nil {
		entry.Status = DeliveryFailed
		entry.Error = sendErr.Error()
	}
	if err := s.db.Create(&entry).Error; err != nil {
		s.logger.Warn("Failed to record delivery log", zap.Error(err))
	}
}

func render(kind TemplateKind, payload map[string]interface{}) (string, string, error) {
	tmpl, ok := templates[kind]
	if !ok {
		return "", "", fmt.Errorf("unknown template kind %q", kind)
	}

	parsed, err := template.New(string(kind)).Option("missingkey=zero").Parse(tmpl.Body)
	if err != nil {
		return "", "", err
	}
	var buf bytes.Buffer
	if err := parsed.Execute(&buf, payload); err != nil {
		return "", "", err
	}
	// missingkey=zero renders absent keys as "<no value>"; scrub them.
	body := strings.ReplaceAll(buf.String(), "<no value>", "")
	return tmpl.Subject, strings.TrimSpace(body), nil
}
