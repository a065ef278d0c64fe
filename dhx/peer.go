package dhx

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/TheusHen/DHX/dhx/party"
	"github.com/TheusHen/DHX/dhx/session"
	"github.com/TheusHen/DHX/dhx/transport"
	"github.com/TheusHen/DHX/dhx/transport/quic"
)

var ErrNotListening = errors.New("peer is not listening")

// Peer is a high-level helper that combines transport + session.
// A Party holds one session key, so each Peer is meant for one conversation;
// a second Accept or Dial re-keys it.
type Peer struct {
	Party   *party.Party
	Options session.HandshakeOptions

	listener *quic.Listener
}

func NewPeer(p *party.Party, opts session.HandshakeOptions) *Peer {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Peer{Party: p, Options: opts}
}

func (p *Peer) Listen(addr string) error {
	ln, err := quic.Listen(addr, quic.WithLogger(p.Options.Logger))
	if err != nil {
		return err
	}
	p.listener = ln
	return nil
}

func (p *Peer) Close() error {
	if p.listener == nil {
		return nil
	}
	return p.listener.Close()
}

func (p *Peer) ListenAddr() string {
	if p.listener == nil {
		return ""
	}
	return p.listener.AddrString()
}

// Accept waits for one dialer and answers its handshake.
func (p *Peer) Accept(ctx context.Context) (*session.Session, error) {
	if p.listener == nil {
		return nil, ErrNotListening
	}
	ch, err := p.listener.Accept(ctx)
	if err != nil {
		return nil, err
	}
	return p.handshake(ctx, ch, session.HandshakeServer)
}

// Dial connects to addr and starts the handshake.
func (p *Peer) Dial(ctx context.Context, addr string) (*session.Session, error) {
	ch, err := quic.Dial(ctx, addr, quic.WithLogger(p.Options.Logger))
	if err != nil {
		return nil, err
	}
	return p.handshake(ctx, ch, session.HandshakeClient)
}

type handshakeFunc func(context.Context, transport.Channel, *party.Party, session.HandshakeOptions) (*session.Session, error)

func (p *Peer) handshake(ctx context.Context, ch transport.Channel, fn handshakeFunc) (*session.Session, error) {
	s, err := fn(ctx, ch, p.Party, p.Options)
	if err != nil {
		_ = ch.Close()
		return nil, err
	}
	return s, nil
}
