package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/TheusHen/DHX/dhx/crypto"
	"github.com/TheusHen/DHX/dhx/dhke"
	"github.com/TheusHen/DHX/dhx/party"
	"github.com/TheusHen/DHX/dhx/transport"
)

type HandshakeOptions struct {
	// Suite defaults to crypto.SuiteXOR.
	Suite  crypto.Suite
	Logger *zap.Logger
}

func (o HandshakeOptions) withDefaults() HandshakeOptions {
	if o.Suite == "" {
		o.Suite = crypto.SuiteXOR
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// HandshakeClient performs the key exchange as the initiator: it sends its
// public key in decimal, then waits for the responder's.
func HandshakeClient(ctx context.Context, ch transport.Channel, p *party.Party, opts HandshakeOptions) (*Session, error) {
	opts = opts.withDefaults()
	if err := ch.Send(ctx, p.PublicKey().String()); err != nil {
		return nil, fmt.Errorf("handshake %s: send public key: %w", p.Name(), err)
	}
	msg, err := ch.Receive(ctx)
	if err != nil {
		return nil, fmt.Errorf("handshake %s: receive public key: %w", p.Name(), err)
	}
	return establish(ch, p, msg, true, opts)
}

// HandshakeServer performs the key exchange as the responder. The peer key is
// validated before the reply is sent, so a rejected initiator never learns
// the responder's key.
func HandshakeServer(ctx context.Context, ch transport.Channel, p *party.Party, opts HandshakeOptions) (*Session, error) {
	opts = opts.withDefaults()
	msg, err := ch.Receive(ctx)
	if err != nil {
		return nil, fmt.Errorf("handshake %s: receive public key: %w", p.Name(), err)
	}
	s, err := establish(ch, p, msg, false, opts)
	if err != nil {
		return nil, err
	}
	if err := ch.Send(ctx, p.PublicKey().String()); err != nil {
		return nil, fmt.Errorf("handshake %s: send public key: %w", p.Name(), err)
	}
	return s, nil
}

func establish(ch transport.Channel, p *party.Party, msg string, initiator bool, opts HandshakeOptions) (*Session, error) {
	peer, err := dhke.ParsePublicKey(msg)
	if err != nil {
		return nil, fmt.Errorf("handshake %s: %w", p.Name(), err)
	}
	if _, err := p.ComputeSharedKey(peer); err != nil {
		return nil, fmt.Errorf("handshake: %w", err)
	}
	cipher, err := p.Cipher(opts.Suite)
	if err != nil {
		return nil, fmt.Errorf("handshake: %w", err)
	}

	id := uuid.New()
	logger := opts.Logger.With(
		zap.String("session", id.String()),
		zap.String("party", p.Name()),
	)
	logger.Debug("key established",
		zap.Bool("initiator", initiator),
		zap.Stringer("own_public", p.PublicKey()),
		zap.Stringer("peer_public", peer),
		zap.String("suite", string(opts.Suite)),
	)
	return &Session{
		id:        id,
		ch:        ch,
		party:     p,
		peer:      peer,
		cipher:    cipher,
		initiator: initiator,
		logger:    logger,
	}, nil
}
