// Package party holds one identity of a key exchange: its key pair and, once
// a peer key has been accepted, the derived session key.
package party

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/TheusHen/DHX/dhx/crypto"
	"github.com/TheusHen/DHX/dhx/dhke"
)

var (
	ErrHandshakeFailed = errors.New("party: handshake already failed")
	ErrNoSessionKey    = errors.New("party: no session key established")
)

// State is the handshake progress of a Party.
type State int

const (
	AwaitingPeerPublic State = iota
	KeyEstablished
	Failed
)

func (s State) String() string {
	switch s {
	case AwaitingPeerPublic:
		return "awaiting-peer-public"
	case KeyEstablished:
		return "key-established"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Party is safe for concurrent use.
type Party struct {
	name    string
	dh      *dhke.DH
	private dhke.PrivateKey
	public  dhke.PublicKey

	mu         sync.RWMutex
	sessionKey []byte
	state      State
}

// New creates a party with a fresh key pair drawn from r (crypto/rand when
// nil).
func New(name string, dh *dhke.DH, r io.Reader) (*Party, error) {
	sk, err := dh.GeneratePrivateKey(r)
	if err != nil {
		return nil, fmt.Errorf("party %s: generate key: %w", name, err)
	}
	return NewWithPrivateKey(name, dh, sk)
}

// NewWithPrivateKey creates a party from a fixed exponent. A zero-value key
// is rejected with dhke.ErrInvalidPrivateKey.
func NewWithPrivateKey(name string, dh *dhke.DH, sk dhke.PrivateKey) (*Party, error) {
	if sk.IsZero() {
		return nil, fmt.Errorf("party %s: %w", name, dhke.ErrInvalidPrivateKey)
	}
	return &Party{
		name:    name,
		dh:      dh,
		private: sk,
		public:  dh.GeneratePublicKey(sk),
		state:   AwaitingPeerPublic,
	}, nil
}

func (p *Party) Name() string { return p.name }

func (p *Party) PublicKey() dhke.PublicKey { return p.public }

func (p *Party) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// ComputeSharedKey validates peer, derives the session key and stores it.
// An invalid peer key moves the party to Failed; a failed party refuses every
// later call. Calling again after success re-keys.
func (p *Party) ComputeSharedKey(peer dhke.PublicKey) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == Failed {
		return nil, fmt.Errorf("party %s: %w", p.name, ErrHandshakeFailed)
	}
	if !p.dh.ValidatePublicKey(peer) {
		p.state = Failed
		p.sessionKey = nil
		return nil, fmt.Errorf("party %s: peer key %s: %w", p.name, peer, dhke.ErrInvalidKey)
	}

	secret := p.dh.ComputeSharedSecret(p.private, peer)
	key, err := crypto.DeriveSessionKey(secret.Bytes())
	if err != nil {
		return nil, fmt.Errorf("party %s: derive session key: %w", p.name, err)
	}
	p.sessionKey = key
	p.state = KeyEstablished
	return append([]byte(nil), key...), nil
}

// SessionKey returns a copy of the session key and whether one is set.
func (p *Party) SessionKey() ([]byte, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.sessionKey == nil {
		return nil, false
	}
	return append([]byte(nil), p.sessionKey...), true
}

// Cipher builds a message cipher of suite from the current session key.
func (p *Party) Cipher(suite crypto.Suite) (crypto.MessageCipher, error) {
	key, ok := p.SessionKey()
	if !ok {
		return nil, fmt.Errorf("party %s: %w", p.name, ErrNoSessionKey)
	}
	return crypto.NewCipher(suite, key)
}

func (p *Party) String() string {
	return fmt.Sprintf("%s(pub=%s, %s)", p.name, p.public, p.State())
}
