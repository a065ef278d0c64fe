// Package relay is a man-in-the-middle for the unauthenticated key exchange.
//
// The relay runs two independent handshakes, one toward each peer, under two
// identities of its own. Each peer ends up with a session key shared with the
// relay, not with the other peer, and has no way to tell from the key alone.
// Every message is decrypted, observed and re-encrypted on its way through.
package relay

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/TheusHen/DHX/dhx/crypto"
	"github.com/TheusHen/DHX/dhx/dhke"
	"github.com/TheusHen/DHX/dhx/party"
	"github.com/TheusHen/DHX/dhx/session"
	"github.com/TheusHen/DHX/dhx/transport"
)

// Observer sees every plaintext the relay forwards.
type Observer func(d Direction, text string)

type Option func(*Relay)

func WithLogger(l *zap.Logger) Option {
	return func(r *Relay) {
		if l != nil {
			r.logger = l
		}
	}
}

func WithSuite(s crypto.Suite) Option {
	return func(r *Relay) { r.suite = s }
}

func WithObserver(o Observer) Option {
	return func(r *Relay) { r.observers = append(r.observers, o) }
}

func WithCapture(c *Capture) Option {
	return func(r *Relay) { r.capture = c }
}

// WithRand sets the entropy source for the relay's two key pairs.
func WithRand(rd io.Reader) Option {
	return func(r *Relay) { r.rand = rd }
}

// WithIdentities uses fixed parties instead of generating two.
func WithIdentities(asUpstream, asDownstream *party.Party) Option {
	return func(r *Relay) {
		r.asUpstream = asUpstream
		r.asDownstream = asDownstream
	}
}

type Relay struct {
	asUpstream   *party.Party
	asDownstream *party.Party

	suite     crypto.Suite
	logger    *zap.Logger
	observers []Observer
	capture   *Capture
	rand      io.Reader

	stats stats
}

// New creates a relay with two fresh identities over dh.
func New(dh *dhke.DH, opts ...Option) (*Relay, error) {
	r := &Relay{
		suite:  crypto.SuiteXOR,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	var err error
	if r.asUpstream == nil {
		if r.asUpstream, err = party.New("relay-upstream", dh, r.rand); err != nil {
			return nil, err
		}
	}
	if r.asDownstream == nil {
		if r.asDownstream, err = party.New("relay-downstream", dh, r.rand); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// AsUpstream is the identity the relay shows the upstream peer, posing as
// the downstream one.
func (r *Relay) AsUpstream() *party.Party { return r.asUpstream }

// AsDownstream is the identity the relay shows the downstream peer.
func (r *Relay) AsDownstream() *party.Party { return r.asDownstream }

func (r *Relay) handshakeOptions() session.HandshakeOptions {
	return session.HandshakeOptions{Suite: r.suite, Logger: r.logger}
}

// ConnectUpstream runs the initiator side of the handshake on ch.
func (r *Relay) ConnectUpstream(ctx context.Context, ch transport.Channel) (*session.Session, error) {
	s, err := session.HandshakeClient(ctx, ch, r.asUpstream, r.handshakeOptions())
	if err != nil {
		return nil, fmt.Errorf("relay: upstream: %w", err)
	}
	r.logger.Info("upstream handshake complete",
		zap.String("session", s.ID().String()),
		zap.Stringer("peer_public", s.PeerPublicKey()))
	return s, nil
}

// AcceptDownstream runs the responder side of the handshake on ch.
func (r *Relay) AcceptDownstream(ctx context.Context, ch transport.Channel) (*session.Session, error) {
	s, err := session.HandshakeServer(ctx, ch, r.asDownstream, r.handshakeOptions())
	if err != nil {
		return nil, fmt.Errorf("relay: downstream: %w", err)
	}
	r.logger.Info("downstream handshake complete",
		zap.String("session", s.ID().String()),
		zap.Stringer("peer_public", s.PeerPublicKey()))
	return s, nil
}

// Forward relays in both directions until each has stopped. A direction
// stops at its first error or when its source closes; it never cancels the
// other one. The first error wins; a clean close is not an error.
func (r *Relay) Forward(ctx context.Context, upstream, downstream *session.Session) error {
	var g errgroup.Group
	g.Go(func() error { return r.pump(ctx, DownstreamToUpstream, downstream, upstream) })
	g.Go(func() error { return r.pump(ctx, UpstreamToDownstream, upstream, downstream) })
	return g.Wait()
}

func (r *Relay) pump(ctx context.Context, d Direction, src, dst *session.Session) error {
	logger := r.logger.With(zap.Stringer("direction", d))
	for {
		text, err := src.Receive(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				logger.Info("source closed")
				return nil
			}
			logger.Warn("direction stopped", zap.Error(err))
			return fmt.Errorf("relay %s: %w", d, err)
		}
		r.observe(logger, d, text)
		if err := dst.Send(ctx, text); err != nil {
			logger.Warn("direction stopped", zap.Error(err))
			return fmt.Errorf("relay %s: %w", d, err)
		}
		r.stats.record(d, len(text))
	}
}

func (r *Relay) observe(logger *zap.Logger, d Direction, text string) {
	logger.Info("intercepted", zap.String("plaintext", text))
	if r.capture != nil {
		if err := r.capture.Record(d, text); err != nil {
			logger.Warn("capture failed", zap.Error(err))
		}
	}
	for _, o := range r.observers {
		o(d, text)
	}
}

// Run connects upstream first, then accepts downstream, then forwards until
// both directions end. Both sessions are closed on return.
func (r *Relay) Run(
	ctx context.Context,
	dialUpstream func(context.Context) (transport.Channel, error),
	acceptDownstream func(context.Context) (transport.Channel, error),
) error {
	upCh, err := dialUpstream(ctx)
	if err != nil {
		return fmt.Errorf("relay: dial upstream: %w", err)
	}
	defer upCh.Close()
	up, err := r.ConnectUpstream(ctx, upCh)
	if err != nil {
		return err
	}

	downCh, err := acceptDownstream(ctx)
	if err != nil {
		return fmt.Errorf("relay: accept downstream: %w", err)
	}
	defer downCh.Close()
	down, err := r.AcceptDownstream(ctx, downCh)
	if err != nil {
		return err
	}

	return r.Forward(ctx, up, down)
}

// Stats returns the forwarded counters so far.
func (r *Relay) Stats() Stats { return r.stats.snapshot() }
