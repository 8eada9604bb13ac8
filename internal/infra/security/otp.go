package security

import (
	"context"
	"strings"

	"github.com/thegrihome/realty-platform-iam/internal/core/domain"
	"github.com/thegrihome/realty-platform-iam/internal/core/port"
)

// defaultStaticOTPCode is the development stand-in accepted when no code is
// configured.
const defaultStaticOTPCode = "123456"

// StaticOTPVerifier accepts a single fixed code for every destination. It
// stands in for real OTP delivery in development and test environments.
type StaticOTPVerifier struct {
	code string
}

// NewStaticOTPVerifier constructs a verifier for the given code, falling
// back to the development default when the code is blank.
func NewStaticOTPVerifier(code string) *StaticOTPVerifier {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		trimmed = defaultStaticOTPCode
	}
	return &StaticOTPVerifier{code: trimmed}
}

// Verify compares the presented code with the fixed one. The comparison is
// exact and case-sensitive; no trimming is applied to the presented value.
func (v *StaticOTPVerifier) Verify(_ context.Context, _ domain.VerificationChannel, _ string, code string) (bool, error) {
	return code == v.code, nil
}

// Code exposes the fixed code so development tooling can surface it.
func (v *StaticOTPVerifier) Code() string {
	return v.code
}

var _ port.OTPVerifier = (*StaticOTPVerifier)(nil)
