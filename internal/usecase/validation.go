package usecase

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrMissingRequiredFields indicates one or more signup fields were absent or blank.
	ErrMissingRequiredFields = errors.New("all required fields must be provided")
	// ErrCompanyNameRequired indicates an agent signup arrived without a company name.
	ErrCompanyNameRequired = errors.New("company name is required for agents")
	// ErrUsernameTooShort indicates the username is below the minimum length.
	ErrUsernameTooShort = errors.New("username too short")
	// ErrInvalidEmail indicates the email does not match the accepted shape.
	ErrInvalidEmail = errors.New("invalid email format")
	// ErrInvalidMobile indicates the mobile number does not match the accepted shape.
	ErrInvalidMobile = errors.New("invalid mobile number")
)

const minUsernameLength = 3

// emailPattern accepts a single non-blank local part, one @, and a domain
// containing at least one dot. Whitespace anywhere rejects the value.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var nonDigits = regexp.MustCompile(`\D`)

// SignupInput carries the raw signup payload into validation and creation.
type SignupInput struct {
	FirstName    string
	LastName     string
	Username     string
	Email        string
	MobileNumber string
	Password     string
	IsAgent      bool
	CompanyName  string
	ImageLink    string
}

// ValidateSignupInput applies the pure field checks in order: required
// presence, agent company rule, username length, email shape, mobile shape.
// No store access happens here.
func ValidateSignupInput(in SignupInput) error {
	required := []string{in.FirstName, in.LastName, in.Username, in.Email, in.MobileNumber, in.Password}
	for _, field := range required {
		if strings.TrimSpace(field) == "" {
			return ErrMissingRequiredFields
		}
	}

	if in.IsAgent && strings.TrimSpace(in.CompanyName) == "" {
		return ErrCompanyNameRequired
	}

	if len(strings.TrimSpace(in.Username)) < minUsernameLength {
		return ErrUsernameTooShort
	}

	if err := ValidateEmail(in.Email); err != nil {
		return err
	}

	if err := ValidateMobile(in.MobileNumber); err != nil {
		return err
	}

	return nil
}

// ValidateEmail checks the trimmed value against the accepted email shape.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(strings.TrimSpace(email)) {
		return ErrInvalidEmail
	}
	return nil
}

// ValidateMobile checks that the value starts with + and carries 7 to 15
// significant digits once formatting characters are stripped. The original
// formatted string is what gets persisted; only the digits are judged here.
func ValidateMobile(mobile string) error {
	trimmed := strings.TrimSpace(mobile)
	if !strings.HasPrefix(trimmed, "+") {
		return ErrInvalidMobile
	}

	digits := nonDigits.ReplaceAllString(trimmed, "")
	if len(digits) < 7 || len(digits) > 15 {
		return ErrInvalidMobile
	}
	if strings.Trim(digits, "0") == "" {
		return ErrInvalidMobile
	}

	return nil
}

// phoneDigits strips everything except digits from a phone value.
func phoneDigits(phone string) string {
	return nonDigits.ReplaceAllString(phone, "")
}

// phoneLookupCandidates enumerates the stored-format variants tried when a
// phone lookup misses: the value exactly as supplied, then +<digits>, then
// the bare digits. Duplicates collapse so each variant is queried once.
func phoneLookupCandidates(phone string) []string {
	trimmed := strings.TrimSpace(phone)
	digits := phoneDigits(trimmed)

	candidates := []string{trimmed}
	if digits != "" {
		candidates = append(candidates, "+"+digits, digits)
	}

	seen := make(map[string]struct{}, len(candidates))
	unique := candidates[:0]
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		if _, ok := seen[candidate]; ok {
			continue
		}
		seen[candidate] = struct{}{}
		unique = append(unique, candidate)
	}

	return unique
}
