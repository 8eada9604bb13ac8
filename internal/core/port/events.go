package port

import (
	"context"

	"github.com/thegrihome/realty-platform-iam/internal/core/domain"
)

// EventPublisher announces account lifecycle changes to downstream
// consumers. Publishing is best effort; callers log failures and keep the
// request flowing since Postgres remains the source of truth.
type EventPublisher interface {
	PublishAccountCreated(ctx context.Context, event domain.AccountCreatedEvent) error
	PublishChannelVerified(ctx context.Context, event domain.ChannelVerifiedEvent) error
}
