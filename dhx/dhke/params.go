package dhke

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/TheusHen/DHX/dhx/field"
)

// DefaultPrime is the reference modulus: 467 = 2*233 + 1 is a safe prime.
const DefaultPrime = 467

var ErrBadParams = errors.New("dhke: invalid domain parameters")

// Params are the DH domain parameters shared by every party of a run.
// Q is the order of the subgroup generated by G and divides P-1.
type Params struct {
	P *big.Int
	G *big.Int
	Q *big.Int
}

// SafePrimeParams builds parameters for a safe prime p = 2q+1. The generator
// is the smallest g >= 2 with g^q == 1 and g^2 != 1, which generates the
// unique subgroup of order q.
func SafePrimeParams(p *big.Int) (Params, error) {
	f, err := field.New(p)
	if err != nil {
		return Params{}, err
	}
	q := new(big.Int).Rsh(new(big.Int).Sub(p, big.NewInt(1)), 1)
	if !q.ProbablyPrime(20) {
		return Params{}, fmt.Errorf("%w: %v is not a safe prime", ErrBadParams, p)
	}
	g, err := f.FindSubgroupGenerator(q)
	if err != nil {
		return Params{}, err
	}
	return Params{P: f.Modulus(), G: g, Q: q}, nil
}

// DefaultParams returns the reference parameters p=467, q=233, g=3.
func DefaultParams() (Params, error) {
	return SafePrimeParams(big.NewInt(DefaultPrime))
}

// Validate checks that 1 < G < P, Q divides P-1 and G^Q == 1 mod P.
func (p Params) Validate() error {
	if p.P == nil || p.G == nil || p.Q == nil {
		return fmt.Errorf("%w: missing value", ErrBadParams)
	}
	f, err := field.NewSubgroup(p.P, p.Q)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadParams, err)
	}
	if p.G.Cmp(big.NewInt(1)) <= 0 || p.G.Cmp(p.P) >= 0 {
		return fmt.Errorf("%w: generator %v out of range", ErrBadParams, p.G)
	}
	if f.Exp(p.G, p.Q).Cmp(big.NewInt(1)) != 0 {
		return fmt.Errorf("%w: generator %v does not have order dividing %v", ErrBadParams, p.G, p.Q)
	}
	return nil
}

func (p Params) String() string {
	return fmt.Sprintf("p=%v g=%v q=%v", p.P, p.G, p.Q)
}
