package ports

// CredentialHasher turns a plaintext password into its stored digest.
type CredentialHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}
