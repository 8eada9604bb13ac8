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
	"github.com/thegrihome/realty-platform-iam/internal/repository"
)

var (
	// ErrLoginTypeMissing indicates the request carried no login type.
	ErrLoginTypeMissing = errors.New("login type is required")
	// ErrLoginTypeInvalid indicates an unrecognized login type.
	ErrLoginTypeInvalid = errors.New("invalid login type")
	// ErrUsernamePasswordRequired indicates a password login without both fields.
	ErrUsernamePasswordRequired = errors.New("username and password are required")
	// ErrEmailOTPRequired indicates an email OTP login without both fields.
	ErrEmailOTPRequired = errors.New("email and otp are required")
	// ErrMobileOTPRequired indicates a mobile OTP login without both fields.
	ErrMobileOTPRequired = errors.New("mobile number and otp are required")
	// ErrInvalidCredentials covers both unknown identifier and password
	// mismatch so a caller cannot tell which one failed.
	ErrInvalidCredentials = errors.New("invalid username/email or password")
	// ErrEmailNotFound indicates no account holds the email used for OTP login.
	ErrEmailNotFound = errors.New("email not found")
	// ErrMobileNotFound indicates no account holds the mobile number used for OTP login.
	ErrMobileNotFound = errors.New("mobile number not registered")
	// ErrInvalidOTP indicates the presented code did not match.
	ErrInvalidOTP = errors.New("invalid otp")
)

// LoginInput is the raw login payload. Type selects the strategy; the
// remaining fields are read per strategy and ignored otherwise.
type LoginInput struct {
	Type     string
	Username string
	Password string
	Email    string
	Mobile   string
	OTP      string
}

// LoginOutcome carries the authenticated account, the strategy that matched,
// and the channel this login freshly stamped verified, if any.
type LoginOutcome struct {
	Account         domain.Account
	Strategy        domain.LoginType
	VerifiedChannel *domain.VerificationChannel
}

// LoginService authenticates accounts through one of three strategies:
// username or email with password, email with OTP, or mobile with OTP.
// A successful OTP login stamps the channel verified.
type LoginService struct {
	accounts port.AccountRepository
	hasher   port.PasswordHasher
	otp      port.OTPVerifier
	events   port.EventPublisher
	logger   *zap.Logger
	now      func() time.Time
}

// NewLoginService constructs a login service.
func NewLoginService(accounts port.AccountRepository, hasher port.PasswordHasher, otp port.OTPVerifier, events port.EventPublisher, log *zap.Logger) *LoginService {
	if log == nil {
		log = zap.NewNop()
	}
	return &LoginService{
		accounts: accounts,
		hasher:   hasher,
		otp:      otp,
		events:   events,
		logger:   log,
		now:      time.Now,
	}
}

// WithClock overrides the internal clock, used in tests.
func (s *LoginService) WithClock(clock func() time.Time) *LoginService {
	if clock != nil {
		s.now = clock
	}
	return s
}

// Login dispatches on the declared type and returns the authenticated account
// without its password hash.
func (s *LoginService) Login(ctx context.Context, in LoginInput) (LoginOutcome, error) {
	rawType := strings.TrimSpace(in.Type)
	if rawType == "" {
		return LoginOutcome{}, ErrLoginTypeMissing
	}

	loginType, ok := domain.ParseLoginType(rawType)
	if !ok {
		return LoginOutcome{}, ErrLoginTypeInvalid
	}

	switch loginType {
	case domain.LoginUsernamePassword:
		return s.loginWithPassword(ctx, in)
	case domain.LoginEmailOTP:
		return s.loginWithEmailOTP(ctx, in)
	case domain.LoginMobileOTP:
		return s.loginWithMobileOTP(ctx, in)
	default:
		return LoginOutcome{}, ErrLoginTypeInvalid
	}
}

// loginWithPassword authenticates against the stored hash. The identifier is
// looked up as an email when it contains "@" and as a username otherwise.
// Unknown identifier, absent hash, and mismatch all collapse into the same
// error, and nothing about the account is mutated.
func (s *LoginService) loginWithPassword(ctx context.Context, in LoginInput) (LoginOutcome, error) {
	identifier := strings.TrimSpace(in.Username)
	if identifier == "" || in.Password == "" {
		return LoginOutcome{}, ErrUsernamePasswordRequired
	}

	var (
		account domain.Account
		err     error
	)
	if strings.Contains(identifier, "@") {
		account, err = s.accounts.GetByEmail(ctx, identifier)
	} else {
		account, err = s.accounts.GetByUsername(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return LoginOutcome{}, ErrInvalidCredentials
		}
		return LoginOutcome{}, fmt.Errorf("look up account: %w", err)
	}

	matched, err := s.hasher.Verify(in.Password, account.PasswordHash)
	if err != nil {
		return LoginOutcome{}, fmt.Errorf("verify password: %w", err)
	}
	if !matched {
		return LoginOutcome{}, ErrInvalidCredentials
	}

	s.logger.Info("password login succeeded",
		zap.String("account_id", account.ID),
		zap.String("identifier", logger.MaskString(identifier)),
	)

	return LoginOutcome{
		Account:  sanitize(account),
		Strategy: domain.LoginUsernamePassword,
	}, nil
}

// loginWithEmailOTP authenticates by email and one-time code. The lookup is
// not restricted to verified rows; a success on an unverified account stamps
// the email verified.
func (s *LoginService) loginWithEmailOTP(ctx context.Context, in LoginInput) (LoginOutcome, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.OTP == "" {
		return LoginOutcome{}, ErrEmailOTPRequired
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return LoginOutcome{}, ErrEmailNotFound
		}
		return LoginOutcome{}, fmt.Errorf("look up account: %w", err)
	}

	matched, err := s.otp.Verify(ctx, domain.ChannelEmail, email, in.OTP)
	if err != nil {
		return LoginOutcome{}, fmt.Errorf("verify otp: %w", err)
	}
	if !matched {
		return LoginOutcome{}, ErrInvalidOTP
	}

	outcome := LoginOutcome{Strategy: domain.LoginEmailOTP}

	if account.EmailVerifiedAt == nil {
		verifiedAt := s.now().UTC()
		if err := s.accounts.SetEmailVerified(ctx, account.ID, verifiedAt); err != nil {
			return LoginOutcome{}, err
		}
		account.EmailVerifiedAt = &verifiedAt
		channel := domain.ChannelEmail
		outcome.VerifiedChannel = &channel
		s.publishVerified(ctx, account.ID, domain.ChannelEmail, verifiedAt)
	}

	s.logger.Info("email otp login succeeded",
		zap.String("account_id", account.ID),
		zap.String("email", logger.MaskEmail(email)),
	)

	outcome.Account = sanitize(account)
	return outcome, nil
}

// loginWithMobileOTP mirrors the email strategy for the mobile channel. The
// number must match the stored value exactly.
func (s *LoginService) loginWithMobileOTP(ctx context.Context, in LoginInput) (LoginOutcome, error) {
	mobile := strings.TrimSpace(in.Mobile)
	if mobile == "" || in.OTP == "" {
		return LoginOutcome{}, ErrMobileOTPRequired
	}

	account, err := s.accounts.GetByPhone(ctx, mobile)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return LoginOutcome{}, ErrMobileNotFound
		}
		return LoginOutcome{}, fmt.Errorf("look up account: %w", err)
	}

	matched, err := s.otp.Verify(ctx, domain.ChannelMobile, mobile, in.OTP)
	if err != nil {
		return LoginOutcome{}, fmt.Errorf("verify otp: %w", err)
	}
	if !matched {
		return LoginOutcome{}, ErrInvalidOTP
	}

	outcome := LoginOutcome{Strategy: domain.LoginMobileOTP}

	if account.MobileVerifiedAt == nil {
		verifiedAt := s.now().UTC()
		if err := s.accounts.SetMobileVerified(ctx, account.ID, verifiedAt); err != nil {
			return LoginOutcome{}, err
		}
		account.MobileVerifiedAt = &verifiedAt
		channel := domain.ChannelMobile
		outcome.VerifiedChannel = &channel
		s.publishVerified(ctx, account.ID, domain.ChannelMobile, verifiedAt)
	}

	s.logger.Info("mobile otp login succeeded",
		zap.String("account_id", account.ID),
		zap.String("mobile", logger.MaskPhone(mobile)),
	)

	outcome.Account = sanitize(account)
	return outcome, nil
}

func (s *LoginService) publishVerified(ctx context.Context, accountID string, channel domain.VerificationChannel, verifiedAt time.Time) {
	if s.events == nil {
		return
	}

	event := domain.ChannelVerifiedEvent{
		EventID:    uuid.NewString(),
		AccountID:  accountID,
		Channel:    channel,
		VerifiedAt: verifiedAt,
	}

	if err := s.events.PublishChannelVerified(ctx, event); err != nil {
		s.logger.Warn("publish channel verified event failed",
			zap.String("account_id", accountID),
			zap.String("channel", string(channel)),
			zap.Error(err),
		)
	}
}

func sanitize(account domain.Account) domain.Account {
	account.PasswordHash = ""
	return account
}
