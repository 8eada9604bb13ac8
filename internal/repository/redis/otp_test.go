package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	red "github.com/redis/go-redis/v9"

	"github.com/thegrihome/realty-platform-iam/internal/core/domain"
	"github.com/thegrihome/realty-platform-iam/internal/repository"
)

func newTestRedis(t *testing.T) (*red.Client, *miniredis.Miniredis) {
	t.Helper()

	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := red.NewClient(&red.Options{Addr: server.Addr()})

	t.Cleanup(func() {
		_ = client.Close()
		server.Close()
	})

	return client, server
}

func TestOTPStore_StoreAndFetch(t *testing.T) {
	t.Helper()

	client, server := newTestRedis(t)

	now := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	store := NewOTPStore(client, "").WithClock(func() time.Time { return now })

	ctx := context.Background()
	ttl := 2 * time.Minute

	record, err := store.Store(ctx, domain.ChannelEmail, " john@example.com ", " 123456 ", ttl)
	if err != nil {
		t.Fatalf("Store returned error: %v", err)
	}
	if record.Code != "123456" || record.Destination != "john@example.com" {
		t.Fatalf("expected trimmed code and destination, got %+v", record)
	}
	if !record.ExpiresAt.Equal(now.Add(ttl)) {
		t.Fatalf("expected expiry %v, got %v", now.Add(ttl), record.ExpiresAt)
	}

	key := "iam:otp:email:john@example.com"
	if !server.Exists(key) {
		t.Fatalf("expected key %s to exist", key)
	}
	if got := server.HGet(key, "attempts"); got != "0" {
		t.Fatalf("expected zero attempts, got %s", got)
	}
	remaining := server.TTL(key)
	if remaining <= 0 || remaining > ttl {
		t.Fatalf("expected ttl within (0, %v], got %v", ttl, remaining)
	}

	fetched, err := store.Fetch(ctx, domain.ChannelEmail, "john@example.com")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if fetched.Code != "123456" || fetched.Attempts != 0 {
		t.Fatalf("unexpected record: %+v", fetched)
	}
	if !fetched.CreatedAt.Equal(now) {
		t.Fatalf("expected created_at %v, got %v", now, fetched.CreatedAt)
	}
}

func TestOTPStore_StoreFallsBackToDefaultTTL(t *testing.T) {
	t.Helper()

	client, server := newTestRedis(t)

	now := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	store := NewOTPStore(client, "otp").
		WithDefaultTTL(90 * time.Second).
		WithClock(func() time.Time { return now })

	record, err := store.Store(context.Background(), domain.ChannelMobile, "+911234567890", "654321", 0)
	if err != nil {
		t.Fatalf("Store returned error: %v", err)
	}
	if !record.ExpiresAt.Equal(now.Add(90 * time.Second)) {
		t.Fatalf("expected default ttl expiry, got %v", record.ExpiresAt)
	}

	remaining := server.TTL("otp:mobile:+911234567890")
	if remaining <= 0 || remaining > 90*time.Second {
		t.Fatalf("expected ttl within (0, 90s], got %v", remaining)
	}
}

func TestOTPStore_StoreValidation(t *testing.T) {
	t.Helper()

	client, _ := newTestRedis(t)
	store := NewOTPStore(client, "otp")

	ctx := context.Background()

	if _, err := store.Store(ctx, "", "john@example.com", "123456", time.Minute); err == nil {
		t.Fatalf("expected error for empty channel")
	}
	if _, err := store.Store(ctx, domain.ChannelEmail, "   ", "123456", time.Minute); err == nil {
		t.Fatalf("expected error for blank destination")
	}
	if _, err := store.Store(ctx, domain.ChannelEmail, "john@example.com", "", time.Minute); err == nil {
		t.Fatalf("expected error for empty code")
	}
}

func TestOTPStore_DeleteMissing(t *testing.T) {
	t.Helper()

	client, _ := newTestRedis(t)
	store := NewOTPStore(client, "otp")

	if err := store.Delete(context.Background(), domain.ChannelEmail, "ghost@example.com"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected repository.ErrNotFound, got %v", err)
	}
	if _, err := store.Fetch(context.Background(), domain.ChannelEmail, "ghost@example.com"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected repository.ErrNotFound from Fetch, got %v", err)
	}
}

func TestVerifier_MatchConsumesCode(t *testing.T) {
	t.Helper()

	client, server := newTestRedis(t)
	store := NewOTPStore(client, "otp")
	verifier := NewVerifier(store)

	ctx := context.Background()
	if _, err := store.Store(ctx, domain.ChannelEmail, "john@example.com", "123456", time.Minute); err != nil {
		t.Fatalf("Store returned error: %v", err)
	}

	ok, err := verifier.Verify(ctx, domain.ChannelEmail, "john@example.com", "123456")
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected the stored code to verify")
	}
	if server.Exists("otp:email:john@example.com") {
		t.Fatalf("expected the code to be consumed on success")
	}

	ok, err = verifier.Verify(ctx, domain.ChannelEmail, "john@example.com", "123456")
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if ok {
		t.Fatalf("expected a consumed code to stop verifying")
	}
}

func TestVerifier_ComparesPresentedCodeVerbatim(t *testing.T) {
	t.Helper()

	client, _ := newTestRedis(t)
	store := NewOTPStore(client, "otp")
	verifier := NewVerifier(store)

	ctx := context.Background()
	if _, err := store.Store(ctx, domain.ChannelEmail, "john@example.com", "123456", time.Minute); err != nil {
		t.Fatalf("Store returned error: %v", err)
	}

	// Presented codes are not trimmed or case-folded before comparison.
	for _, presented := range []string{"123456 ", " 123456", "654321"} {
		ok, err := verifier.Verify(ctx, domain.ChannelEmail, "john@example.com", presented)
		if err != nil {
			t.Fatalf("Verify(%q) returned error: %v", presented, err)
		}
		if ok {
			t.Fatalf("expected %q to be rejected", presented)
		}
	}

	record, err := store.Fetch(ctx, domain.ChannelEmail, "john@example.com")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if record.Attempts != 3 {
		t.Fatalf("expected three recorded attempts, got %d", record.Attempts)
	}
}

func TestVerifier_ExpiredCodeRejected(t *testing.T) {
	t.Helper()

	client, server := newTestRedis(t)

	now := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	store := NewOTPStore(client, "otp").WithClock(func() time.Time { return now })
	verifier := NewVerifier(store)

	ctx := context.Background()
	if _, err := store.Store(ctx, domain.ChannelMobile, "+911234567890", "123456", time.Minute); err != nil {
		t.Fatalf("Store returned error: %v", err)
	}

	now = now.Add(2 * time.Minute)

	ok, err := verifier.Verify(ctx, domain.ChannelMobile, "+911234567890", "123456")
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if ok {
		t.Fatalf("expected an expired code to be rejected")
	}
	if server.Exists("otp:mobile:+911234567890") {
		t.Fatalf("expected the expired entry to be discarded")
	}
}

func TestVerifier_AttemptLimitDiscardsCode(t *testing.T) {
	t.Helper()

	client, server := newTestRedis(t)
	store := NewOTPStore(client, "otp")
	verifier := NewVerifier(store)

	ctx := context.Background()
	if _, err := store.Store(ctx, domain.ChannelEmail, "john@example.com", "123456", time.Minute); err != nil {
		t.Fatalf("Store returned error: %v", err)
	}

	for i := 0; i < maxOTPAttempts; i++ {
		ok, err := verifier.Verify(ctx, domain.ChannelEmail, "john@example.com", "000000")
		if err != nil {
			t.Fatalf("Verify attempt %d returned error: %v", i+1, err)
		}
		if ok {
			t.Fatalf("expected wrong code to be rejected on attempt %d", i+1)
		}
	}

	// Even the right code no longer works once the limit is reached.
	ok, err := verifier.Verify(ctx, domain.ChannelEmail, "john@example.com", "123456")
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if ok {
		t.Fatalf("expected the code to be discarded after %d failures", maxOTPAttempts)
	}
	if server.Exists("otp:email:john@example.com") {
		t.Fatalf("expected the exhausted entry to be removed")
	}
}

func TestVerifier_MissingEntry(t *testing.T) {
	t.Helper()

	client, _ := newTestRedis(t)
	verifier := NewVerifier(NewOTPStore(client, "otp"))

	ok, err := verifier.Verify(context.Background(), domain.ChannelEmail, "ghost@example.com", "123456")
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if ok {
		t.Fatalf("expected a missing entry to report a mismatch")
	}
}
