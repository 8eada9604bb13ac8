package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/thegrihome/realty-platform-iam/internal/core/domain"
	"github.com/thegrihome/realty-platform-iam/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for
// development environments without a broker.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, accountID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.String("account_id", accountID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishAccountCreated logs iam.account.created events.
func (p *StubPublisher) PublishAccountCreated(_ context.Context, event domain.AccountCreatedEvent) error {
	payload := map[string]any{
		"account_id": event.AccountID,
		"username":   event.Username,
		"role":       string(event.Role),
		"email":      event.Email,
		"phone":      event.Phone,
		"created_at": event.CreatedAt,
		"metadata":   event.Metadata,
	}
	p.logEvent("iam.account.created", event.AccountID, event.CreatedAt, payload)
	return nil
}

// PublishChannelVerified logs iam.channel.verified events.
func (p *StubPublisher) PublishChannelVerified(_ context.Context, event domain.ChannelVerifiedEvent) error {
	payload := map[string]any{
		"account_id":  event.AccountID,
		"channel":     string(event.Channel),
		"verified_at": event.VerifiedAt,
		"metadata":    event.Metadata,
	}
	p.logEvent("iam.channel.verified", event.AccountID, event.VerifiedAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
