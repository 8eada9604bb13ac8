package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/thegrihome/realty-platform-iam/internal/core/domain"
	"github.com/thegrihome/realty-platform-iam/internal/core/port"
	"github.com/thegrihome/realty-platform-iam/internal/infra/logger"
	"github.com/thegrihome/realty-platform-iam/internal/infra/security"
	"github.com/thegrihome/realty-platform-iam/internal/repository"
)

var (
	// ErrUsernameTaken indicates another account already holds the username.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrEmailTaken indicates a verified account already holds the email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrMobileTaken indicates a verified account already holds the mobile number.
	ErrMobileTaken = errors.New("mobile number already registered")
)

// weakPasswordScore is the zxcvbn score below which a warning is logged.
// Weak passwords are still accepted; the advisory never gates signup.
const weakPasswordScore = 2

// SignupService turns a validated signup payload into a persisted identity
// record. Username conflicts on plain existence; email and phone conflict
// only against rows whose verified timestamp is set.
type SignupService struct {
	accounts port.AccountRepository
	hasher   port.PasswordHasher
	events   port.EventPublisher
	logger   *zap.Logger
	now      func() time.Time
}

// NewSignupService constructs a signup service.
func NewSignupService(accounts port.AccountRepository, hasher port.PasswordHasher, events port.EventPublisher, log *zap.Logger) *SignupService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SignupService{
		accounts: accounts,
		hasher:   hasher,
		events:   events,
		logger:   log,
		now:      time.Now,
	}
}

// WithClock overrides the internal clock, used in tests.
func (s *SignupService) WithClock(clock func() time.Time) *SignupService {
	if clock != nil {
		s.now = clock
	}
	return s
}

// CreateAccount validates the payload, enforces the claim rules, and persists
// a new record with both channels unverified. The returned account carries no
// password hash.
func (s *SignupService) CreateAccount(ctx context.Context, in SignupInput) (domain.Account, error) {
	if err := ValidateSignupInput(in); err != nil {
		return domain.Account{}, err
	}

	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)
	mobile := strings.TrimSpace(in.MobileNumber)

	if _, err := s.accounts.GetByUsername(ctx, username); err == nil {
		return domain.Account{}, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return domain.Account{}, fmt.Errorf("check username: %w", err)
	}

	if _, err := s.accounts.GetByVerifiedEmail(ctx, email); err == nil {
		return domain.Account{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return domain.Account{}, fmt.Errorf("check email: %w", err)
	}

	if _, err := s.accounts.GetByVerifiedPhone(ctx, mobile); err == nil {
		return domain.Account{}, ErrMobileTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return domain.Account{}, fmt.Errorf("check mobile: %w", err)
	}

	if score := security.PasswordStrengthScore(in.Password, username, email); score < weakPasswordScore {
		s.logger.Warn("weak password accepted at signup",
			zap.String("username", logger.MaskString(username)),
			zap.Int("score", score),
		)
	}

	passwordHash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return domain.Account{}, fmt.Errorf("hash password: %w", err)
	}

	role := domain.RoleBuyer
	var companyName *string
	if in.IsAgent {
		role = domain.RoleAgent
		trimmed := strings.TrimSpace(in.CompanyName)
		companyName = &trimmed
	}

	var image *string
	if trimmed := strings.TrimSpace(in.ImageLink); trimmed != "" {
		image = &trimmed
	}

	account := domain.Account{
		ID:           uuid.NewString(),
		Username:     username,
		Name:         strings.TrimSpace(in.FirstName) + " " + strings.TrimSpace(in.LastName),
		Email:        email,
		Phone:        mobile,
		PasswordHash: passwordHash,
		Role:         role,
		CompanyName:  companyName,
		Image:        image,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		return domain.Account{}, err
	}

	s.publishCreated(ctx, account)

	sanitized := account
	sanitized.PasswordHash = ""
	return sanitized, nil
}

func (s *SignupService) publishCreated(ctx context.Context, account domain.Account) {
	if s.events == nil {
		return
	}

	event := domain.AccountCreatedEvent{
		EventID:   uuid.NewString(),
		AccountID: account.ID,
		Username:  account.Username,
		Role:      account.Role,
		Email:     logger.MaskEmail(account.Email),
		Phone:     logger.MaskPhone(account.Phone),
		CreatedAt: account.CreatedAt,
	}

	if err := s.events.PublishAccountCreated(ctx, event); err != nil {
		s.logger.Warn("publish account created event failed",
			zap.String("account_id", account.ID),
			zap.Error(err),
		)
	}
}
