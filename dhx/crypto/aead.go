package crypto

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"go.uber.org/atomic"
	"golang.org/x/crypto/chacha20poly1305"
)

var (
	ErrCiphertextTooShort = errors.New("crypto: ciphertext too short")
	ErrDecryptionFailed   = errors.New("crypto: decryption failed")
)

// AEAD is the hardened suite: ChaCha20-Poly1305 with a 96-bit nonce made of
// a random 32-bit prefix and a 64-bit message counter. Each end draws its own
// prefix, so the two directions of a session never share a nonce in practice.
type AEAD struct {
	aead   cipher.AEAD
	prefix [4]byte
	seq    atomic.Uint64
}

// NewAEAD creates a new AEAD cipher from a 32-byte session key.
func NewAEAD(key []byte) (*AEAD, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("%w: chacha20poly1305 needs %d bytes, got %d",
			ErrKeyLength, chacha20poly1305.KeySize, len(key))
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	a := &AEAD{aead: aead}
	if _, err := io.ReadFull(rand.Reader, a.prefix[:]); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *AEAD) nextNonce() []byte {
	nonce := make([]byte, chacha20poly1305.NonceSize)
	copy(nonce[:4], a.prefix[:])
	binary.BigEndian.PutUint64(nonce[4:], a.seq.Inc())
	return nonce
}

// Seal returns nonce || ciphertext || tag.
func (a *AEAD) Seal(plaintext, additionalData []byte) []byte {
	nonce := a.nextNonce()
	return a.aead.Seal(nonce, nonce, plaintext, additionalData)
}

// Open reverses Seal. Any modification of the input yields ErrDecryptionFailed.
func (a *AEAD) Open(ciphertext, additionalData []byte) ([]byte, error) {
	nonceSize := chacha20poly1305.NonceSize
	if len(ciphertext) < nonceSize+a.aead.Overhead() {
		return nil, ErrCiphertextTooShort
	}
	plaintext, err := a.aead.Open(nil, ciphertext[:nonceSize], ciphertext[nonceSize:], additionalData)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

func (a *AEAD) Encrypt(plaintext []byte) ([]byte, error) { return a.Seal(plaintext, nil), nil }

func (a *AEAD) Decrypt(ciphertext []byte) ([]byte, error) { return a.Open(ciphertext, nil) }

func (a *AEAD) Suite() Suite { return SuiteChaCha20Poly1305 }

// Overhead is the bytes added to every message: nonce plus tag.
func (a *AEAD) Overhead() int { return chacha20poly1305.NonceSize + a.aead.Overhead() }
