package domain

import "time"

// Role labels what an account may do on the marketplace.
type Role string

const (
	RoleBuyer Role = "BUYER"
	RoleAgent Role = "AGENT"
)

// LoginType selects one of the mutually exclusive login strategies.
type LoginType string

const (
	LoginUsernamePassword LoginType = "username-password"
	LoginEmailOTP         LoginType = "email-otp"
	LoginMobileOTP        LoginType = "mobile-otp"
)

// ParseLoginType maps the wire discriminator onto a LoginType.
func ParseLoginType(raw string) (LoginType, bool) {
	switch t := LoginType(raw); t {
	case LoginUsernamePassword, LoginEmailOTP, LoginMobileOTP:
		return t, true
	default:
		return "", false
	}
}

// UniqueField identifies which identifier a claimability check targets.
type UniqueField string

const (
	FieldUsername UniqueField = "username"
	FieldEmail    UniqueField = "email"
	FieldMobile   UniqueField = "mobile"
)

// ParseUniqueField maps the wire discriminator onto a UniqueField.
func ParseUniqueField(raw string) (UniqueField, bool) {
	switch f := UniqueField(raw); f {
	case FieldUsername, FieldEmail, FieldMobile:
		return f, true
	default:
		return "", false
	}
}

// VerificationChannel names a confirmable contact channel.
type VerificationChannel string

const (
	ChannelEmail  VerificationChannel = "email"
	ChannelMobile VerificationChannel = "mobile"
)

// ParseVerificationChannel maps the wire discriminator onto a VerificationChannel.
func ParseVerificationChannel(raw string) (VerificationChannel, bool) {
	switch c := VerificationChannel(raw); c {
	case ChannelEmail, ChannelMobile:
		return c, true
	default:
		return "", false
	}
}

// Account mirrors the persisted representation in the accounts table.
// A nil verified timestamp means the channel was never confirmed; stamps
// only ever move nil to non-nil.
type Account struct {
	ID               string
	Username         string
	Name             string
	Email            string
	Phone            string
	PasswordHash     string
	Role             Role
	CompanyName      *string
	Image            *string
	EmailVerifiedAt  *time.Time
	MobileVerifiedAt *time.Time
	CreatedAt        time.Time
}
