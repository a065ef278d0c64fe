package dhke

import (
	"fmt"
	"io"
	"math/big"

	"github.com/TheusHen/DHX/dhx/field"
)

// Mode selects the private-key policy and the public-key check.
type Mode int

const (
	// SubgroupConstrained draws even exponents 2k, k in [1, q-1], and accepts
	// only public keys inside the order-q subgroup.
	SubgroupConstrained Mode = iota
	// Unconstrained draws exponents from [1, p-2] and only range-checks peer
	// keys. Legacy behaviour kept for comparison; it is open to
	// small-subgroup confinement and must not be used outside demos.
	Unconstrained
)

func (m Mode) String() string {
	switch m {
	case SubgroupConstrained:
		return "subgroup"
	case Unconstrained:
		return "unconstrained"
	default:
		return "unknown"
	}
}

// ParseMode maps a config value to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "subgroup":
		return SubgroupConstrained, nil
	case "unconstrained":
		return Unconstrained, nil
	default:
		return 0, fmt.Errorf("dhke: unknown mode %q", s)
	}
}

type Option func(*DH)

// WithMode overrides the default SubgroupConstrained mode.
func WithMode(m Mode) Option {
	return func(d *DH) { d.mode = m }
}

// DH binds a prime field to a set of domain parameters.
// It holds no secrets and is safe for concurrent use.
type DH struct {
	params Params
	field  *field.Field
	mode   Mode
}

func New(params Params, opts ...Option) (*DH, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	d := &DH{
		params: Params{
			P: new(big.Int).Set(params.P),
			G: new(big.Int).Set(params.G),
			Q: new(big.Int).Set(params.Q),
		},
	}
	for _, opt := range opts {
		opt(d)
	}

	var err error
	switch d.mode {
	case SubgroupConstrained:
		d.field, err = field.NewSubgroup(d.params.P, d.params.Q)
	case Unconstrained:
		d.field, err = field.New(d.params.P)
	default:
		err = fmt.Errorf("dhke: unknown mode %d", d.mode)
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Params returns a copy of the domain parameters.
func (d *DH) Params() Params {
	return Params{
		P: new(big.Int).Set(d.params.P),
		G: new(big.Int).Set(d.params.G),
		Q: new(big.Int).Set(d.params.Q),
	}
}

func (d *DH) Mode() Mode { return d.mode }

// GeneratePrivateKey samples a fresh exponent from r (crypto/rand when nil).
func (d *DH) GeneratePrivateKey(r io.Reader) (PrivateKey, error) {
	x, err := d.field.RandomElement(r)
	if err != nil {
		return PrivateKey{}, err
	}
	return PrivateKey{x: x}, nil
}

// GeneratePublicKey returns g^x mod p. sk must come from GeneratePrivateKey
// or NewPrivateKey; a zero-value key panics.
func (d *DH) GeneratePublicKey(sk PrivateKey) PublicKey {
	return PublicKey{y: d.field.Exp(d.params.G, sk.x)}
}

// ComputeSharedSecret returns peer^x mod p. It does not validate peer; call
// ValidatePublicKey first.
func (d *DH) ComputeSharedSecret(sk PrivateKey, peer PublicKey) SharedSecret {
	return SharedSecret{s: d.field.Exp(peer.y, sk.x)}
}

// ValidatePublicKey rejects keys outside (0, p) and, in subgroup mode, keys
// with y^q != 1, so a peer cannot confine the shared secret to a small
// subgroup.
func (d *DH) ValidatePublicKey(pk PublicKey) bool {
	if !d.field.IsValidElement(pk.y) {
		return false
	}
	if d.mode == SubgroupConstrained {
		return d.field.Exp(pk.y, d.params.Q).Cmp(big.NewInt(1)) == 0
	}
	return true
}
