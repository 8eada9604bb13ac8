package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/thegrihome/realty-platform-iam/internal/core/domain"
	"github.com/thegrihome/realty-platform-iam/internal/core/port"
	"github.com/thegrihome/realty-platform-iam/internal/repository"
)

var (
	// ErrAccountNotFound indicates no account matched the lookup value.
	ErrAccountNotFound = errors.New("account not found")
	// ErrEmailNotRegistered indicates no account holds the email.
	ErrEmailNotRegistered = errors.New("email not registered")
	// ErrMobileNotRegistered indicates no account holds the mobile number.
	ErrMobileNotRegistered = errors.New("mobile number not registered")
	// ErrEmailNotVerified indicates the account exists but its email channel
	// was never confirmed.
	ErrEmailNotVerified = errors.New("email not verified")
	// ErrMobileNotVerified indicates the account exists but its mobile channel
	// was never confirmed.
	ErrMobileNotVerified = errors.New("mobile number not verified")
)

// CheckUserResult carries the matched account and whether the queried
// channel is verified on it.
type CheckUserResult struct {
	Account  domain.Account
	Verified bool
}

// LookupService answers the read-only account questions behind the check
// endpoints. Nothing here mutates state.
type LookupService struct {
	accounts port.AccountRepository
	logger   *zap.Logger
}

// NewLookupService constructs a lookup service.
func NewLookupService(accounts port.AccountRepository, log *zap.Logger) *LookupService {
	if log == nil {
		log = zap.NewNop()
	}
	return &LookupService{accounts: accounts, logger: log}
}

// CheckUser resolves an account by email or mobile number and reports
// whether that channel is verified. Mobile values are retried across
// punctuation-insensitive candidates so formatted input still matches.
func (s *LookupService) CheckUser(ctx context.Context, channel domain.VerificationChannel, value string) (CheckUserResult, error) {
	switch channel {
	case domain.ChannelEmail:
		account, err := s.accounts.GetByEmail(ctx, strings.TrimSpace(value))
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return CheckUserResult{}, ErrAccountNotFound
			}
			return CheckUserResult{}, fmt.Errorf("look up account by email: %w", err)
		}
		return CheckUserResult{Account: sanitize(account), Verified: account.EmailVerifiedAt != nil}, nil
	case domain.ChannelMobile:
		account, err := s.findByPhoneCandidates(ctx, value)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return CheckUserResult{}, ErrAccountNotFound
			}
			return CheckUserResult{}, err
		}
		return CheckUserResult{Account: sanitize(account), Verified: account.MobileVerifiedAt != nil}, nil
	default:
		return CheckUserResult{}, fmt.Errorf("unsupported lookup channel %q", channel)
	}
}

// CheckVerification reports whether an OTP may be sent to the channel. It
// returns nil only when the account exists and the channel is verified.
func (s *LookupService) CheckVerification(ctx context.Context, channel domain.VerificationChannel, value string) error {
	switch channel {
	case domain.ChannelEmail:
		account, err := s.accounts.GetByEmail(ctx, strings.TrimSpace(value))
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrEmailNotRegistered
			}
			return fmt.Errorf("look up account by email: %w", err)
		}
		if account.EmailVerifiedAt == nil {
			return ErrEmailNotVerified
		}
		return nil
	case domain.ChannelMobile:
		account, err := s.findByPhoneCandidates(ctx, value)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrMobileNotRegistered
			}
			return err
		}
		if account.MobileVerifiedAt == nil {
			return ErrMobileNotVerified
		}
		return nil
	default:
		return fmt.Errorf("unsupported lookup channel %q", channel)
	}
}

// CheckUnique reports whether the value is still claimable for the field.
// Usernames conflict on plain existence; email and mobile conflict only
// against verified holders, so an unverified squatter does not block a claim.
func (s *LookupService) CheckUnique(ctx context.Context, field domain.UniqueField, value string) (bool, error) {
	switch field {
	case domain.FieldUsername:
		_, err := s.accounts.GetByUsername(ctx, strings.TrimSpace(value))
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return true, nil
			}
			return false, fmt.Errorf("look up username: %w", err)
		}
		return false, nil
	case domain.FieldEmail:
		trimmed := strings.TrimSpace(value)
		if err := ValidateEmail(trimmed); err != nil {
			return false, err
		}
		_, err := s.accounts.GetByVerifiedEmail(ctx, trimmed)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return true, nil
			}
			return false, fmt.Errorf("look up verified email: %w", err)
		}
		return false, nil
	case domain.FieldMobile:
		trimmed := strings.TrimSpace(value)
		if err := ValidateMobile(trimmed); err != nil {
			return false, err
		}
		_, err := s.accounts.GetByVerifiedPhone(ctx, trimmed)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return true, nil
			}
			return false, fmt.Errorf("look up verified mobile: %w", err)
		}
		return false, nil
	default:
		return false, fmt.Errorf("unsupported uniqueness field %q", field)
	}
}

// findByPhoneCandidates tries the stored-form candidates for a mobile value
// in order and returns the first match. repository.ErrNotFound means no
// candidate matched.
func (s *LookupService) findByPhoneCandidates(ctx context.Context, value string) (domain.Account, error) {
	for _, candidate := range phoneLookupCandidates(value) {
		account, err := s.accounts.GetByPhone(ctx, candidate)
		if err == nil {
			return account, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return domain.Account{}, fmt.Errorf("look up account by mobile: %w", err)
		}
	}
	return domain.Account{}, repository.ErrNotFound
}
