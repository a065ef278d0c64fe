// Package field implements modular arithmetic over a prime field Z/pZ.
//
// It provides square-and-multiply exponentiation, primitive-root and
// subgroup-generator search, element validation and private-exponent sampling.
// The fields used here are deliberately tiny (p = 467 in the reference setup);
// nothing in this package is constant time.
package field
