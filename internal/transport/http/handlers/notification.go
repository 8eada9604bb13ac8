package handlers

import (
	"context"

	"go.uber.org/zap"

	"github.com/thegrihome/realty-platform-iam/internal/infra/logger"
)

// NotificationDispatcher fans out identity events to downstream notifiers.
// Delivery itself is out of scope here; implementations decide what reaching
// the user means.
type NotificationDispatcher interface {
	SendSignupWelcome(ctx context.Context, payload SignupNotification) error
	SendOTPRequested(ctx context.Context, payload OTPRequestNotification) error
}

// SignupNotification captures data for a post-signup welcome dispatch.
type SignupNotification struct {
	Username string
	Email    string
	Phone    string
	Role     string
}

// OTPRequestNotification captures data for an OTP delivery dispatch.
type OTPRequestNotification struct {
	Channel     string
	Destination string
}

type noopDispatcher struct{}

func (noopDispatcher) SendSignupWelcome(ctx context.Context, payload SignupNotification) error {
	return nil
}

func (noopDispatcher) SendOTPRequested(ctx context.Context, payload OTPRequestNotification) error {
	return nil
}

// LoggingNotificationDispatcher records dispatch events for observability
// without delivering them. Contact values are masked before logging.
type LoggingNotificationDispatcher struct {
	logger *zap.Logger
}

// NewLoggingNotificationDispatcher constructs a notification dispatcher backed by structured logging.
func NewLoggingNotificationDispatcher(log *zap.Logger) NotificationDispatcher {
	if log == nil {
		return noopDispatcher{}
	}
	return &LoggingNotificationDispatcher{logger: log}
}

func (d *LoggingNotificationDispatcher) SendSignupWelcome(ctx context.Context, payload SignupNotification) error {
	if d == nil || d.logger == nil {
		return nil
	}

	fields := []zap.Field{
		zap.String("username", payload.Username),
		zap.String("role", payload.Role),
	}

	if payload.Email != "" {
		fields = append(fields, zap.String("email", logger.MaskEmail(payload.Email)))
	}
	if payload.Phone != "" {
		fields = append(fields, zap.String("phone", logger.MaskPhone(payload.Phone)))
	}

	d.logger.Info("dispatch signup welcome", fields...)
	return nil
}

func (d *LoggingNotificationDispatcher) SendOTPRequested(ctx context.Context, payload OTPRequestNotification) error {
	if d == nil || d.logger == nil {
		return nil
	}

	destination := payload.Destination
	if payload.Channel == "email" {
		destination = logger.MaskEmail(destination)
	} else {
		destination = logger.MaskPhone(destination)
	}

	d.logger.Info("dispatch otp request",
		zap.String("channel", payload.Channel),
		zap.String("destination", destination),
	)
	return nil
}
