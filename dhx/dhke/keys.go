package dhke

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

var (
	ErrInvalidKey        = errors.New("dhke: invalid public key")
	ErrInvalidPrivateKey = errors.New("dhke: private key out of range")
)

// PrivateKey is a secret exponent. It has no wire encoding.
type PrivateKey struct {
	x *big.Int
}

// NewPrivateKey wraps x after checking 1 <= x <= p-2.
func NewPrivateKey(params Params, x *big.Int) (PrivateKey, error) {
	max := new(big.Int).Sub(params.P, big.NewInt(2))
	if x == nil || x.Sign() <= 0 || x.Cmp(max) > 0 {
		return PrivateKey{}, fmt.Errorf("%w: want [1, %v]", ErrInvalidPrivateKey, max)
	}
	return PrivateKey{x: new(big.Int).Set(x)}, nil
}

// IsZero reports whether k was never initialised.
func (k PrivateKey) IsZero() bool { return k.x == nil }

// String never reveals the exponent.
func (k PrivateKey) String() string { return "PrivateKey(redacted)" }

// PublicKey is g^x mod p.
type PublicKey struct {
	y *big.Int
}

// NewPublicKey wraps y without validation; use DH.ValidatePublicKey before
// trusting it.
func NewPublicKey(y *big.Int) PublicKey {
	if y == nil {
		return PublicKey{}
	}
	return PublicKey{y: new(big.Int).Set(y)}
}

// ParsePublicKey parses the base-10 wire form. Anything that is not an
// integer is an invalid key.
func ParsePublicKey(s string) (PublicKey, error) {
	y, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok {
		return PublicKey{}, fmt.Errorf("%w: not an integer: %q", ErrInvalidKey, s)
	}
	return PublicKey{y: y}, nil
}

// Int returns a copy of the key value.
func (k PublicKey) Int() *big.Int {
	if k.y == nil {
		return nil
	}
	return new(big.Int).Set(k.y)
}

// String is the base-10 wire form.
func (k PublicKey) String() string {
	if k.y == nil {
		return ""
	}
	return k.y.String()
}

func (k PublicKey) Equal(o PublicKey) bool {
	if k.y == nil || o.y == nil {
		return k.y == o.y
	}
	return k.y.Cmp(o.y) == 0
}

// SharedSecret is peer^x mod p.
type SharedSecret struct {
	s *big.Int
}

// Bytes is the minimal big-endian encoding. A zero secret encodes as an
// empty slice.
func (s SharedSecret) Bytes() []byte {
	if s.s == nil {
		return nil
	}
	return s.s.Bytes()
}

func (s SharedSecret) Int() *big.Int {
	if s.s == nil {
		return nil
	}
	return new(big.Int).Set(s.s)
}

func (s SharedSecret) Equal(o SharedSecret) bool {
	if s.s == nil || o.s == nil {
		return s.s == o.s
	}
	return s.s.Cmp(o.s) == 0
}
