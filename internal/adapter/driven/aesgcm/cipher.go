// Package aesgcm implements the Cipher port with AES-256-GCM.
package aesgcm

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"github.com/awnumar/memguard"

	"github.com/ericfisherdev/orgvault/internal/domain/port/driven"
)

const (
	// KeySize is the required key length in bytes (AES-256).
	KeySize = 32

	nonceSize = 12
	tagSize   = 16

	// envelopeSep separates the base64 nonce, ciphertext and tag.
	envelopeSep = ":"
)

// ErrDestroyed is returned by a Cipher after Destroy.
var ErrDestroyed = errors.New("cipher destroyed")

// Compile-time interface satisfaction check.
var _ driven.Cipher = (*Cipher)(nil)

// Cipher seals secrets under a single process-wide key. The key is unsealed
// into one locked buffer at construction and held until Destroy, so the
// number of mlock'd pages stays constant however many calls run at once.
// A Cipher is safe for concurrent use.
type Cipher struct {
	key       *memguard.LockedBuffer
	gcm       cipher.AEAD
	nonce     io.Reader
	destroyed atomic.Bool
}

// New creates a Cipher from a 32-byte key. The key slice is wiped before New
// returns, whether or not it succeeds.
func New(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		memguard.WipeBytes(key)
		return nil, fmt.Errorf("encryption key must be %d bytes, got %d", KeySize, len(key))
	}

	buf, err := memguard.NewEnclave(key).Open()
	if err != nil {
		return nil, fmt.Errorf("open key enclave: %w", err)
	}
	buf.Freeze()

	block, err := aes.NewCipher(buf.Bytes())
	if err != nil {
		buf.Destroy()
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		buf.Destroy()
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}

	return &Cipher{
		key:   buf,
		gcm:   gcm,
		nonce: rand.Reader,
	}, nil
}

// Destroy wipes the unsealed key. Encrypt and Decrypt return ErrDestroyed
// afterwards. Call it once no request can still reach the Cipher.
func (c *Cipher) Destroy() {
	if c.destroyed.Swap(true) {
		return
	}
	c.key.Destroy()
}

// Encrypt seals plaintext and returns "nonce:ciphertext:tag", each part
// standard base64. Every call draws a fresh 96-bit nonce.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	if c.destroyed.Load() {
		return "", ErrDestroyed
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(c.nonce, nonce); err != nil {
		return "", fmt.Errorf("rand nonce: %w", err)
	}

	// Seal returns ciphertext || tag.
	sealed := c.gcm.Seal(nil, nonce, []byte(plaintext), nil)
	ct, tag := sealed[:len(sealed)-tagSize], sealed[len(sealed)-tagSize:]

	return strings.Join([]string{
		base64.StdEncoding.EncodeToString(nonce),
		base64.StdEncoding.EncodeToString(ct),
		base64.StdEncoding.EncodeToString(tag),
	}, envelopeSep), nil
}

// Decrypt opens an envelope produced by Encrypt. Malformed input returns
// driven.ErrFormat; a tag that does not verify returns driven.ErrIntegrity.
func (c *Cipher) Decrypt(envelope string) (string, error) {
	if c.destroyed.Load() {
		return "", ErrDestroyed
	}

	nonce, ct, tag, err := parseEnvelope(envelope)
	if err != nil {
		return "", err
	}

	sealed := make([]byte, 0, len(ct)+len(tag))
	sealed = append(sealed, ct...)
	sealed = append(sealed, tag...)

	plaintext, err := c.gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", driven.ErrIntegrity
	}
	return string(plaintext), nil
}

func parseEnvelope(envelope string) (nonce, ct, tag []byte, err error) {
	parts := strings.Split(envelope, envelopeSep)
	if len(parts) != 3 {
		return nil, nil, nil, fmt.Errorf("%w: expected 3 parts, got %d", driven.ErrFormat, len(parts))
	}

	decoded := make([][]byte, len(parts))
	for i, p := range parts {
		b, err := base64.StdEncoding.DecodeString(p)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%w: part %d: invalid base64", driven.ErrFormat, i)
		}
		decoded[i] = b
	}

	nonce, ct, tag = decoded[0], decoded[1], decoded[2]
	if len(nonce) != nonceSize {
		return nil, nil, nil, fmt.Errorf("%w: nonce is %d bytes", driven.ErrFormat, len(nonce))
	}
	if len(tag) != tagSize {
		return nil, nil, nil, fmt.Errorf("%w: tag is %d bytes", driven.ErrFormat, len(tag))
	}
	return nonce, ct, tag, nil
}
