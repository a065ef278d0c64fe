package protocol

import (
	"encoding/hex"
	"errors"
	"fmt"
	"unicode/utf8"
)

var ErrMalformedMessage = errors.New("protocol: malformed message")

// EncodeCiphertext is the application-data wire form: lower-case hex.
func EncodeCiphertext(ct []byte) string {
	return hex.EncodeToString(ct)
}

// DecodeCiphertext parses the hex wire form.
func DecodeCiphertext(s string) ([]byte, error) {
	ct, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	return ct, nil
}

// DecodeText checks that decrypted bytes are UTF-8 text.
func DecodeText(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", fmt.Errorf("%w: plaintext is not valid UTF-8", ErrMalformedMessage)
	}
	return string(b), nil
}
