// Package dhke implements textbook finite-field Diffie-Hellman.
//
// Domain parameters (p, g, q) are computed once per run and passed to New.
// The default SubgroupConstrained mode keeps private exponents even and
// rejects peer keys outside the order-q subgroup. Nothing here authenticates
// the peer: any party that can answer the handshake gets a session key.
package dhke
