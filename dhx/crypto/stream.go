package crypto

import "crypto/sha256"

// Keystream is SHA-256 of key. It is the whole keystream: message bytes past
// 32 wrap around to the start.
func Keystream(key []byte) [sha256.Size]byte {
	return sha256.Sum256(key)
}

// XOR encrypts or decrypts data; the operation is its own inverse.
func XOR(key, data []byte) []byte {
	ks := Keystream(key)
	return xorWith(ks[:], data)
}

func xorWith(ks, data []byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ ks[i%len(ks)]
	}
	return out
}

// StreamCipher caches the keystream of one session key. Every message starts
// at keystream offset zero, so two ciphertexts XORed together reveal the XOR
// of their plaintexts. Do not use outside demonstrations.
type StreamCipher struct {
	ks [sha256.Size]byte
}

func NewStreamCipher(key []byte) *StreamCipher {
	return &StreamCipher{ks: Keystream(key)}
}

func (s *StreamCipher) Encrypt(plaintext []byte) ([]byte, error) {
	return xorWith(s.ks[:], plaintext), nil
}

func (s *StreamCipher) Decrypt(ciphertext []byte) ([]byte, error) {
	return xorWith(s.ks[:], ciphertext), nil
}

func (s *StreamCipher) Suite() Suite { return SuiteXOR }
