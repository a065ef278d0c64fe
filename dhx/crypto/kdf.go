package crypto

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// SessionKeySize is the length of a derived session key.
	SessionKeySize = 32
	// SessionInfo binds derived keys to their use.
	SessionInfo = "dh-session"

	maxExpandLength = 255 * sha256.Size
)

var ErrKeyLength = errors.New("crypto: requested key length out of range")

// Extract is the HKDF extract step: HMAC-SHA256 keyed by salt over ikm.
// An empty salt is treated as 32 zero bytes.
func Extract(salt, ikm []byte) []byte {
	if len(salt) == 0 {
		salt = make([]byte, sha256.Size)
	}
	return hkdf.Extract(sha256.New, ikm, salt)
}

// Expand is the HKDF expand step, truncated to length bytes. A zero length
// yields an empty key.
func Expand(prk, info []byte, length int) ([]byte, error) {
	if length < 0 || length > maxExpandLength {
		return nil, fmt.Errorf("%w: %d", ErrKeyLength, length)
	}
	if length == 0 {
		return []byte{}, nil
	}
	out := make([]byte, length)
	if _, err := io.ReadFull(hkdf.Expand(sha256.New, prk, info), out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeriveKey derives a key of the specified length using HKDF-SHA256.
// salt can be nil (uses zero salt), info provides context binding.
func DeriveKey(ikm, salt, info []byte, length int) ([]byte, error) {
	return Expand(Extract(salt, ikm), info, length)
}

// DeriveSessionKey turns the big-endian encoding of a DH shared secret into
// a 32-byte session key.
func DeriveSessionKey(secret []byte) ([]byte, error) {
	return DeriveKey(secret, nil, []byte(SessionInfo), SessionKeySize)
}
