package crypto

import (
	"errors"
	"fmt"
)

// Suite names a message cipher. Both ends of a session must agree on it out
// of band, like the domain parameters.
type Suite string

const (
	SuiteXOR              Suite = "xor-sha256"
	SuiteChaCha20Poly1305 Suite = "chacha20poly1305"
)

var ErrUnknownSuite = errors.New("crypto: unknown cipher suite")

// MessageCipher encrypts whole application messages.
type MessageCipher interface {
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(ciphertext []byte) ([]byte, error)
	Suite() Suite
}

// ParseSuite accepts the config spelling of a suite; empty means SuiteXOR.
func ParseSuite(s string) (Suite, error) {
	switch Suite(s) {
	case "", SuiteXOR:
		return SuiteXOR, nil
	case SuiteChaCha20Poly1305:
		return SuiteChaCha20Poly1305, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSuite, s)
	}
}

// NewCipher returns the cipher for suite keyed by a session key.
func NewCipher(suite Suite, key []byte) (MessageCipher, error) {
	switch suite {
	case SuiteXOR:
		return NewStreamCipher(key), nil
	case SuiteChaCha20Poly1305:
		return NewAEAD(key)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSuite, suite)
	}
}
