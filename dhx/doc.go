// Package dhx is a textbook Diffie-Hellman key exchange over a deliberately
// tiny prime field, and a man-in-the-middle relay that shows why an
// unauthenticated exchange is not enough.
//
// The building blocks live in subpackages: field arithmetic (field), the DH
// primitive (dhke), session-key derivation and message ciphers (crypto), one
// identity's handshake state (party), the handshake and chat actor over a
// transport channel (session) and the relay itself (relay). Peer ties a party
// to a QUIC listener or dialer.
package dhx
