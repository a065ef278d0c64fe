package field

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
)

var (
	ErrNotPrime    = errors.New("field: modulus is not an odd prime")
	ErrBadSubgroup = errors.New("field: subgroup order does not divide p-1")
	ErrNoGenerator = errors.New("field: no generator found")
)

var (
	one = big.NewInt(1)
	two = big.NewInt(2)
)

// Field is the multiplicative group of integers modulo a prime p.
// When a subgroup order q is set, RandomElement samples exponents that land
// in the order-q subgroup instead of the full group.
type Field struct {
	p *big.Int
	q *big.Int
}

// New returns the prime field Z/pZ. p must be an odd prime.
func New(p *big.Int) (*Field, error) {
	if p == nil || p.Cmp(big.NewInt(3)) < 0 || !p.ProbablyPrime(20) {
		return nil, fmt.Errorf("%w: %v", ErrNotPrime, p)
	}
	return &Field{p: new(big.Int).Set(p)}, nil
}

// NewSubgroup returns a field that samples private exponents from the
// subgroup of order q. q must divide p-1.
func NewSubgroup(p, q *big.Int) (*Field, error) {
	f, err := New(p)
	if err != nil {
		return nil, err
	}
	if q == nil || q.Cmp(two) < 0 {
		return nil, fmt.Errorf("%w: q=%v", ErrBadSubgroup, q)
	}
	if new(big.Int).Mod(f.order(), q).Sign() != 0 {
		return nil, fmt.Errorf("%w: q=%v p=%v", ErrBadSubgroup, q, p)
	}
	f.q = new(big.Int).Set(q)
	return f, nil
}

// Modulus returns a copy of p.
func (f *Field) Modulus() *big.Int { return new(big.Int).Set(f.p) }

// SubgroupOrder returns a copy of q, or nil for an unconstrained field.
func (f *Field) SubgroupOrder() *big.Int {
	if f.q == nil {
		return nil
	}
	return new(big.Int).Set(f.q)
}

// order is p-1, the size of the multiplicative group.
func (f *Field) order() *big.Int { return new(big.Int).Sub(f.p, one) }

// Exp computes base^exponent mod p by square-and-multiply over the exponent
// bits, least significant first. A zero exponent yields 1.
func (f *Field) Exp(base, exponent *big.Int) *big.Int {
	if exponent.Sign() < 0 {
		panic("field: negative exponent")
	}
	result := big.NewInt(1)
	b := new(big.Int).Mod(base, f.p)
	for i := 0; i < exponent.BitLen(); i++ {
		if exponent.Bit(i) == 1 {
			result.Mul(result, b).Mod(result, f.p)
		}
		b.Mul(b, b).Mod(b, f.p)
	}
	return result
}

// IsValidElement reports whether x is a nonzero residue, 0 < x < p.
func (f *Field) IsValidElement(x *big.Int) bool {
	return x != nil && x.Sign() > 0 && x.Cmp(f.p) < 0
}

// FindGenerator returns the smallest primitive root modulo p: the first g >= 2
// with g^((p-1)/r) != 1 for every prime factor r of p-1.
func (f *Field) FindGenerator() (*big.Int, error) {
	n := f.order()
	factors := PrimeFactors(n)
	exps := make([]*big.Int, len(factors))
	for i, r := range factors {
		exps[i] = new(big.Int).Div(n, r)
	}

	for g := big.NewInt(2); g.Cmp(f.p) < 0; g.Add(g, one) {
		ok := true
		for _, e := range exps {
			if f.Exp(g, e).Cmp(one) == 0 {
				ok = false
				break
			}
		}
		if ok {
			return new(big.Int).Set(g), nil
		}
	}
	return nil, fmt.Errorf("%w: p=%v", ErrNoGenerator, f.p)
}

// FindSubgroupGenerator returns the smallest g >= 2 with g^q == 1 and
// g^2 != 1, i.e. a generator of the subgroup of prime order q.
func (f *Field) FindSubgroupGenerator(q *big.Int) (*big.Int, error) {
	for g := big.NewInt(2); g.Cmp(f.order()) < 0; g.Add(g, one) {
		if f.Exp(g, q).Cmp(one) == 0 && f.Exp(g, two).Cmp(one) != 0 {
			return new(big.Int).Set(g), nil
		}
	}
	return nil, fmt.Errorf("%w: p=%v q=%v", ErrNoGenerator, f.p, q)
}

// RandomElement samples a private exponent. With a subgroup order set it
// returns 2k for k uniform in [1, q-1]; otherwise a uniform value in [1, p-2].
// A nil reader means crypto/rand.
func (f *Field) RandomElement(r io.Reader) (*big.Int, error) {
	if r == nil {
		r = rand.Reader
	}
	if f.q != nil {
		k, err := randRange(r, one, new(big.Int).Sub(f.q, one))
		if err != nil {
			return nil, err
		}
		return k.Lsh(k, 1), nil
	}
	return randRange(r, one, new(big.Int).Sub(f.p, two))
}

// randRange returns a uniform integer in [lo, hi].
func randRange(r io.Reader, lo, hi *big.Int) (*big.Int, error) {
	span := new(big.Int).Sub(hi, lo)
	span.Add(span, one)
	if span.Sign() <= 0 {
		return nil, fmt.Errorf("field: empty range [%v, %v]", lo, hi)
	}
	n, err := rand.Int(r, span)
	if err != nil {
		return nil, err
	}
	return n.Add(n, lo), nil
}
