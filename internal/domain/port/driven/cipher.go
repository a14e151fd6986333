package driven

import "errors"

// Sentinel errors returned by Cipher implementations.
var (
	// ErrIntegrity indicates the envelope failed authentication: the data was
	// tampered with, corrupted, or sealed under a different key.
	ErrIntegrity = errors.New("envelope failed integrity check")

	// ErrFormat indicates the envelope is malformed (wrong delimiter count,
	// invalid encoding, or wrong component length).
	ErrFormat = errors.New("malformed envelope")
)

// Cipher seals and opens secret strings with authenticated encryption.
type Cipher interface {
	// Encrypt returns an envelope holding a fresh nonce, the ciphertext and
	// its authentication tag.
	Encrypt(plaintext string) (string, error)

	// Decrypt opens an envelope produced by Encrypt. It never returns
	// plaintext for an envelope that fails authentication.
	Decrypt(envelope string) (string, error)
}
