package domain

import "time"

// AccountCreatedEvent represents the payload for iam.account.created messages.
// Email and Phone carry masked values; raw identifiers never leave the service.
type AccountCreatedEvent struct {
	EventID   string
	AccountID string
	Username  string
	Role      Role
	Email     string
	Phone     string
	CreatedAt time.Time
	Metadata  map[string]any
}

// ChannelVerifiedEvent represents the payload for iam.channel.verified messages.
type ChannelVerifiedEvent struct {
	EventID    string
	AccountID  string
	Channel    VerificationChannel
	VerifiedAt time.Time
	Metadata   map[string]any
}
