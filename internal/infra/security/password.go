package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/thegrihome/realty-platform-iam/internal/core/port"
)

// DefaultBcryptCost is the work factor used when none is configured.
const DefaultBcryptCost = 12

// Hasher hashes and verifies passwords with bcrypt.
type Hasher struct {
	cost int
}

// NewHasher constructs a bcrypt hasher. Costs outside the bcrypt range fall
// back to DefaultBcryptCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &Hasher{cost: cost}
}

// Hash generates a bcrypt hash of the password.
func (h *Hasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify compares the password against a stored bcrypt hash. An empty or
// unparseable stored value can never match, so both report a plain mismatch
// rather than an error.
func (h *Hasher) Verify(password, encoded string) (bool, error) {
	if password == "" || encoded == "" {
		return false, nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password)); err != nil {
		return false, nil
	}
	return true, nil
}

var _ port.PasswordHasher = (*Hasher)(nil)
