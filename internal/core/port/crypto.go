package port

// PasswordHasher hashes signup passwords and checks login attempts against
// stored digests. Verify reports a plain mismatch rather than an error when
// the stored value cannot be parsed, so corrupt rows fail closed.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password string, encoded string) (bool, error)
}
