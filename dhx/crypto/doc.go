// Package crypto holds the symmetric half of the exchange: HKDF-SHA256 key
// derivation and the message ciphers keyed by the derived session key.
//
// Two suites exist:
//   - xor-sha256: the reference suite. The keystream is SHA-256 of the key,
//     reused for every message of the session. This is a two-time pad and is
//     kept only so the wire format matches the reference scenarios.
//   - chacha20poly1305: opt-in hardening. Fresh nonce per message and an
//     authentication tag. Both ends must select it.
package crypto
