package security

import (
	zxcvbn "github.com/nbutton23/zxcvbn-go"
)

// PasswordStrengthScore estimates password strength on the zxcvbn 0-4 scale.
// User-supplied identifiers lower the score when the password derives from
// them. The score is advisory; signup accepts any password.
func PasswordStrengthScore(password string, userInputs ...string) int {
	if password == "" {
		return 0
	}
	return zxcvbn.PasswordStrength(password, userInputs).Score
}
