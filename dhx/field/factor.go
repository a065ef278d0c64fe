package field

import "math/big"

// PrimeFactors returns the distinct prime factors of n in ascending order,
// found by trial division up to sqrt(n) plus whatever residue remains.
// n < 2 has no factors.
func PrimeFactors(n *big.Int) []*big.Int {
	var out []*big.Int
	if n.Cmp(two) < 0 {
		return out
	}
	rest := new(big.Int).Set(n)
	d := big.NewInt(2)
	sq := new(big.Int)
	mod := new(big.Int)
	for sq.Mul(d, d).Cmp(rest) <= 0 {
		if mod.Mod(rest, d).Sign() == 0 {
			out = append(out, new(big.Int).Set(d))
			for mod.Mod(rest, d).Sign() == 0 {
				rest.Div(rest, d)
			}
		}
		if d.Cmp(two) == 0 {
			d.SetInt64(3)
		} else {
			d.Add(d, two)
		}
	}
	if rest.Cmp(one) > 0 {
		out = append(out, rest)
	}
	return out
}
