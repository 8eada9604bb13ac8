package port

import (
	"context"

	"github.com/thegrihome/realty-platform-iam/internal/core/domain"
)

// OTPVerifier checks a caller-supplied one-time code against the expected
// value for a channel destination. Comparison is exact and case-sensitive;
// delivery of codes is owned by an external collaborator.
type OTPVerifier interface {
	Verify(ctx context.Context, channel domain.VerificationChannel, destination, code string) (bool, error)
}
