package hash

// Verifier adapts the argon2id functions to the credential verifier
// boundary the auth service consumes.
type Verifier struct{}

func (Verifier) Matches(plaintext, encodedHash string) (bool, error) {
	return VerifyPassword(plaintext, encodedHash)
}
