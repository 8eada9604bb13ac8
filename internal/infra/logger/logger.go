package logger

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	lg   *zap.Logger
	once sync.Once
)

// New returns the process-wide zap.Logger. The first call decides the
// configuration; later calls reuse it regardless of env.
func New(env string) (*zap.Logger, error) {
	var err error
	once.Do(func() {
		lg, err = build(env)
	})

	return lg, err
}

func build(env string) (*zap.Logger, error) {
	if env == "production" {
		cfg := zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
		return cfg.Build()
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return cfg.Build()
}

// RequestIDKey is used to store a request identifier on the context.
type RequestIDKey struct{}

// WithContext attaches request scoped fields to the logger.
func WithContext(ctx context.Context) *zap.Logger {
	if lg == nil {
		lz, _ := zap.NewDevelopment()
		return lz
	}

	if ctx == nil {
		return lg
	}

	return lg.With(zap.String("request_id", requestIDFromContext(ctx)))
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if val, ok := ctx.Value(RequestIDKey{}).(string); ok {
		return val
	}
	return ""
}

// PII masking helpers. Identifier values never reach logs or event payloads
// unmasked.

// MaskEmail keeps at most three characters of the local part and the domain.
// Example: john.doe@example.com -> joh***@example.com
func MaskEmail(email string) string {
	if email == "" {
		return ""
	}

	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return "***"
	}

	keep := at
	if keep > 3 {
		keep = 3
	}

	return email[:keep] + "***" + email[at:]
}

// MaskPhone keeps the two-digit country prefix and the last four digits.
// Example: +911234567890 -> +91***7890
func MaskPhone(phone string) string {
	if phone == "" {
		return ""
	}

	digits := strings.TrimPrefix(phone, "+")
	if len(digits) >= 8 && isDigits(digits) {
		masked := digits[:2] + "***" + digits[len(digits)-4:]
		if strings.HasPrefix(phone, "+") {
			return "+" + masked
		}
		return masked
	}

	// Formatted or short values only reveal the tail.
	if len(phone) > 4 {
		return "***" + phone[len(phone)-4:]
	}

	return "***"
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// MaskIP hides the host half of an address.
// Example: 203.0.113.77 -> 203.0.*.*
func MaskIP(ip string) string {
	if ip == "" {
		return ""
	}

	if v4 := net.ParseIP(ip).To4(); v4 != nil {
		return fmt.Sprintf("%d.%d.*.*", v4[0], v4[1])
	}

	if parts := strings.Split(ip, ":"); len(parts) >= 4 {
		return strings.Join(parts[:4], ":") + ":*:*:*:*"
	}

	return "***"
}

// MaskString is the generic masker for values without their own rule.
// Example: secret123 -> se***23
func MaskString(s string) string {
	if len(s) <= 4 {
		if s == "" {
			return ""
		}
		return "***"
	}

	return s[:2] + "***" + s[len(s)-2:]
}
