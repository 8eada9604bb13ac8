package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap/zaptest"

	"github.com/thegrihome/realty-platform-iam/internal/core/domain"
	"github.com/thegrihome/realty-platform-iam/internal/infra/config"
)

// capturingProducer satisfies sarama.AsyncProducer and records everything
// sent to Input so tests can inspect the published messages.
type capturingProducer struct {
	sent   chan *sarama.ProducerMessage
	errors chan *sarama.ProducerError
}

func newCapturingProducer() *capturingProducer {
	return &capturingProducer{
		sent:   make(chan *sarama.ProducerMessage, 4),
		errors: make(chan *sarama.ProducerError, 4),
	}
}

func (p *capturingProducer) Input() chan<- *sarama.ProducerMessage { return p.sent }

func (p *capturingProducer) Successes() <-chan *sarama.ProducerMessage { return nil }

func (p *capturingProducer) Errors() <-chan *sarama.ProducerError { return p.errors }

func (p *capturingProducer) AsyncClose() {}

func (p *capturingProducer) Close() error { return nil }

func (p *capturingProducer) IsTransactional() bool { return false }

func (p *capturingProducer) BeginTxn() error { return nil }

func (p *capturingProducer) CommitTxn() error { return nil }

func (p *capturingProducer) AbortTxn() error { return nil }

func (p *capturingProducer) AddOffsetsToTxn(map[string][]*sarama.PartitionOffsetMetadata, string) error {
	return nil
}

func (p *capturingProducer) AddMessageToTxn(*sarama.ConsumerMessage, string, *string) error {
	return nil
}

func (p *capturingProducer) TxnStatus() sarama.ProducerTxnStatusFlag {
	return sarama.ProducerTxnFlagReady
}

func newTestPublisher(t *testing.T) (*EventPublisher, *capturingProducer) {
	t.Helper()

	captured := newCapturingProducer()

	producer := &Producer{
		producer: captured,
		logger:   zaptest.NewLogger(t),
		cfg: config.KafkaSettings{
			TopicPrefix: "iam",
		},
		errChan: make(chan error, 1),
		done:    make(chan struct{}),
	}

	publisher := NewEventPublisher(producer, config.AppSettings{
		Name: "grihome-iam",
		Env:  "test",
	}, zaptest.NewLogger(t))

	return publisher, captured
}

func TestPublishAccountCreated(t *testing.T) {
	publisher, captured := newTestPublisher(t)

	createdAt := time.Date(2025, 10, 31, 12, 0, 0, 0, time.UTC)
	event := domain.AccountCreatedEvent{
		EventID:   "event-123",
		AccountID: "acc-456",
		Username:  "johndoe",
		Role:      domain.RoleAgent,
		Email:     "j***e@example.com",
		Phone:     "+91******7890",
		CreatedAt: createdAt,
		Metadata:  map[string]any{"source": "unit-test"},
	}

	if err := publisher.PublishAccountCreated(context.Background(), event); err != nil {
		t.Fatalf("PublishAccountCreated returned error: %v", err)
	}

	select {
	case msg := <-captured.sent:
		if msg.Topic != "iam.account.created" {
			t.Fatalf("unexpected topic: %s", msg.Topic)
		}

		bytes, err := msg.Value.Encode()
		if err != nil {
			t.Fatalf("Value.Encode returned error: %v", err)
		}

		var envelope map[string]any
		if err := json.Unmarshal(bytes, &envelope); err != nil {
			t.Fatalf("failed to unmarshal envelope: %v", err)
		}

		if got := envelope["event_type"]; got != "iam.account.created" {
			t.Fatalf("unexpected event_type: %v", got)
		}

		if got := envelope["account_id"]; got != event.AccountID {
			t.Fatalf("unexpected account_id: %v", got)
		}

		if got := envelope["event_id"]; got != event.EventID {
			t.Fatalf("unexpected event_id: %v", got)
		}

		timestamp, ok := envelope["timestamp"].(string)
		if !ok {
			t.Fatalf("timestamp not a string: %T", envelope["timestamp"])
		}
		if timestamp != createdAt.Format(time.RFC3339Nano) {
			t.Fatalf("unexpected timestamp: %s", timestamp)
		}

		payload, ok := envelope["payload"].(map[string]any)
		if !ok {
			t.Fatalf("payload not a map: %T", envelope["payload"])
		}

		if got := payload["account_id"]; got != event.AccountID {
			t.Fatalf("unexpected payload.account_id: %v", got)
		}
		if got := payload["username"]; got != event.Username {
			t.Fatalf("unexpected username: %v", got)
		}
		if got := payload["role"]; got != "AGENT" {
			t.Fatalf("unexpected role: %v", got)
		}
		if got := payload["email"]; got != event.Email {
			t.Fatalf("unexpected email: %v", got)
		}
		if got := payload["phone"]; got != event.Phone {
			t.Fatalf("unexpected phone: %v", got)
		}

		metadata, ok := payload["metadata"].(map[string]any)
		if !ok {
			t.Fatalf("payload metadata not a map: %T", payload["metadata"])
		}
		if metadata["source"] != "unit-test" {
			t.Fatalf("metadata did not round-trip: %v", metadata)
		}

		envelopeMetadata, ok := envelope["metadata"].(map[string]any)
		if !ok {
			t.Fatalf("envelope metadata not a map: %T", envelope["metadata"])
		}
		if envelopeMetadata["service"] != "grihome-iam" {
			t.Fatalf("unexpected metadata service: %v", envelopeMetadata["service"])
		}
		if envelopeMetadata["environment"] != "test" {
			t.Fatalf("unexpected metadata environment: %v", envelopeMetadata["environment"])
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for published message")
	}
}

func TestPublishChannelVerified(t *testing.T) {
	publisher, captured := newTestPublisher(t)

	verifiedAt := time.Date(2025, 11, 18, 8, 30, 0, 0, time.UTC)
	event := domain.ChannelVerifiedEvent{
		EventID:    "evt-001",
		AccountID:  "acc-789",
		Channel:    domain.ChannelMobile,
		VerifiedAt: verifiedAt,
		Metadata:   map[string]any{"source": "unit-test"},
	}

	if err := publisher.PublishChannelVerified(context.Background(), event); err != nil {
		t.Fatalf("PublishChannelVerified returned error: %v", err)
	}

	select {
	case msg := <-captured.sent:
		if msg.Topic != "iam.channel.verified" {
			t.Fatalf("unexpected topic: %s", msg.Topic)
		}

		bytes, err := msg.Value.Encode()
		if err != nil {
			t.Fatalf("Value.Encode returned error: %v", err)
		}

		var envelope map[string]any
		if err := json.Unmarshal(bytes, &envelope); err != nil {
			t.Fatalf("failed to unmarshal envelope: %v", err)
		}

		if got := envelope["event_type"]; got != "iam.channel.verified" {
			t.Fatalf("unexpected event_type: %v", got)
		}
		if got := envelope["account_id"]; got != event.AccountID {
			t.Fatalf("unexpected account_id: %v", got)
		}

		payload, ok := envelope["payload"].(map[string]any)
		if !ok {
			t.Fatalf("payload not a map: %T", envelope["payload"])
		}

		if got := payload["channel"]; got != "mobile" {
			t.Fatalf("unexpected channel: %v", got)
		}

		verifiedAtValue, ok := payload["verified_at"].(string)
		if !ok {
			t.Fatalf("verified_at not a string: %T", payload["verified_at"])
		}
		if verifiedAtValue != verifiedAt.Format(time.RFC3339Nano) {
			t.Fatalf("unexpected verified_at: %s", verifiedAtValue)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for published message")
	}
}
