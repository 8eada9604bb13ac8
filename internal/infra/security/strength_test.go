package security

import "testing"

func TestPasswordStrengthScoreEmpty(t *testing.T) {
	if got := PasswordStrengthScore(""); got != 0 {
		t.Fatalf("expected empty password to score 0, got %d", got)
	}
}

func TestPasswordStrengthScoreDictionaryWord(t *testing.T) {
	if got := PasswordStrengthScore("password"); got != 0 {
		t.Fatalf("expected a top dictionary password to score 0, got %d", got)
	}
}

func TestPasswordStrengthScoreUserInputsPenalize(t *testing.T) {
	password := "xk7q2mv9"

	without := PasswordStrengthScore(password)
	with := PasswordStrengthScore(password, password)

	if with != 0 {
		t.Fatalf("expected a password equal to a user input to score 0, got %d", with)
	}
	if without < 2 {
		t.Fatalf("expected a random password to score at least 2 without inputs, got %d", without)
	}
}
