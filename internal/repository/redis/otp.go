package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/thegrihome/realty-platform-iam/internal/core/domain"
	"github.com/thegrihome/realty-platform-iam/internal/core/port"
	"github.com/thegrihome/realty-platform-iam/internal/repository"
)

const (
	defaultOTPPrefix = "iam:otp"
	defaultOTPTTL    = 5 * time.Minute

	fieldCode      = "code"
	fieldCreatedAt = "created_at"
	fieldExpiresAt = "expires_at"
	fieldAttempts  = "attempts"

	// maxOTPAttempts caps failed comparisons before the code is discarded.
	maxOTPAttempts = 5
)

// OTPRecord represents a stored one-time code for a verification channel.
type OTPRecord struct {
	Channel     domain.VerificationChannel
	Destination string
	Code        string
	Attempts    int
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// OTPStore persists short-lived one-time codes in Redis, keyed by channel
// and destination.
type OTPStore struct {
	client     *red.Client
	prefix     string
	defaultTTL time.Duration
	now        func() time.Time
}

// NewOTPStore constructs an OTP store with the provided Redis client and key
// prefix.
func NewOTPStore(client *red.Client, keyPrefix string) *OTPStore {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultOTPPrefix
	}

	return &OTPStore{
		client:     client,
		prefix:     prefix,
		defaultTTL: defaultOTPTTL,
		now:        time.Now,
	}
}

// WithDefaultTTL overrides the TTL applied when Store is called without one.
func (s *OTPStore) WithDefaultTTL(ttl time.Duration) *OTPStore {
	if ttl > 0 {
		s.defaultTTL = ttl
	}
	return s
}

// Store persists a code for the channel and destination. A non-positive TTL
// falls back to the store default.
func (s *OTPStore) Store(ctx context.Context, channel domain.VerificationChannel, destination, code string, ttl time.Duration) (*OTPRecord, error) {
	destination = strings.TrimSpace(destination)
	code = strings.TrimSpace(code)

	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	switch {
	case channel == "":
		return nil, errors.New("channel is required")
	case destination == "":
		return nil, errors.New("destination is required")
	case code == "":
		return nil, errors.New("code is required")
	case ttl <= 0:
		return nil, errors.New("ttl must be positive")
	}

	now := s.now().UTC()
	expiresAt := now.Add(ttl)

	key := s.key(channel, destination)

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, map[string]any{
		fieldCode:      code,
		fieldCreatedAt: strconv.FormatInt(now.Unix(), 10),
		fieldExpiresAt: strconv.FormatInt(expiresAt.Unix(), 10),
		fieldAttempts:  "0",
	})
	pipe.Expire(ctx, key, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("redis store otp: %w", err)
	}

	return &OTPRecord{
		Channel:     channel,
		Destination: destination,
		Code:        code,
		Attempts:    0,
		CreatedAt:   now,
		ExpiresAt:   expiresAt,
	}, nil
}

// Fetch retrieves the record for the channel and destination.
func (s *OTPStore) Fetch(ctx context.Context, channel domain.VerificationChannel, destination string) (*OTPRecord, error) {
	key := s.key(channel, strings.TrimSpace(destination))
	if key == "" {
		return nil, errors.New("channel and destination are required")
	}

	values, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall otp: %w", err)
	}
	if len(values) == 0 {
		return nil, repository.ErrNotFound
	}

	code := strings.TrimSpace(values[fieldCode])
	if code == "" {
		return nil, repository.ErrNotFound
	}

	createdAt, err := parseUnix(values[fieldCreatedAt])
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	expiresAt, err := parseUnix(values[fieldExpiresAt])
	if err != nil {
		return nil, fmt.Errorf("parse expires_at: %w", err)
	}

	attempts := 0
	if raw := values[fieldAttempts]; raw != "" {
		if v, convErr := strconv.Atoi(raw); convErr == nil {
			attempts = v
		}
	}

	return &OTPRecord{
		Channel:     channel,
		Destination: strings.TrimSpace(destination),
		Code:        code,
		Attempts:    attempts,
		CreatedAt:   createdAt,
		ExpiresAt:   expiresAt,
	}, nil
}

// IncrementAttempts increments the attempt counter and returns the new value.
func (s *OTPStore) IncrementAttempts(ctx context.Context, channel domain.VerificationChannel, destination string) (int, error) {
	if _, err := s.Fetch(ctx, channel, destination); err != nil {
		return 0, err
	}

	key := s.key(channel, strings.TrimSpace(destination))
	count, err := s.client.HIncrBy(ctx, key, fieldAttempts, 1).Result()
	if err != nil {
		return 0, fmt.Errorf("redis hincrby otp attempts: %w", err)
	}

	return int(count), nil
}

// Delete removes the entry, enforcing single-use semantics.
func (s *OTPStore) Delete(ctx context.Context, channel domain.VerificationChannel, destination string) error {
	key := s.key(channel, strings.TrimSpace(destination))
	if key == "" {
		return errors.New("channel and destination are required")
	}

	deleted, err := s.client.Del(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("redis delete otp: %w", err)
	}
	if deleted == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// WithClock overrides the internal clock, used in tests.
func (s *OTPStore) WithClock(clock func() time.Time) *OTPStore {
	if clock != nil {
		s.now = clock
	}
	return s
}

func (s *OTPStore) key(channel domain.VerificationChannel, destination string) string {
	destination = strings.TrimSpace(destination)
	if channel == "" || destination == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s:%s", s.prefix, channel, destination)
}

func parseUnix(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, errors.New("timestamp is empty")
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(v, 0).UTC(), nil
}

// Verifier answers OTP checks against the store. A code matches only when it
// equals the stored value exactly; a match consumes the entry.
type Verifier struct {
	store *OTPStore
}

// NewVerifier wraps the store in the verification port.
func NewVerifier(store *OTPStore) *Verifier {
	return &Verifier{store: store}
}

// Verify compares the presented code with the stored one. Missing, expired,
// and exhausted entries report a plain mismatch rather than an error.
func (v *Verifier) Verify(ctx context.Context, channel domain.VerificationChannel, destination, code string) (bool, error) {
	record, err := v.store.Fetch(ctx, channel, destination)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	now := v.store.now().UTC()
	if !record.ExpiresAt.IsZero() && now.After(record.ExpiresAt) {
		_ = v.store.Delete(ctx, channel, destination)
		return false, nil
	}

	if record.Attempts >= maxOTPAttempts {
		_ = v.store.Delete(ctx, channel, destination)
		return false, nil
	}

	if record.Code != code {
		if _, err := v.store.IncrementAttempts(ctx, channel, destination); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return false, err
		}
		return false, nil
	}

	if err := v.store.Delete(ctx, channel, destination); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return false, err
	}
	return true, nil
}

var _ port.OTPVerifier = (*Verifier)(nil)
