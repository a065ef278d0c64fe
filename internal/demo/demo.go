// Package demo runs the three-party scenario in one process: Alice dials
// what she believes is Bob, the relay sits in between and Bob accepts what
// he believes is Alice.
package demo

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/TheusHen/DHX/dhx/crypto"
	"github.com/TheusHen/DHX/dhx/dhke"
	"github.com/TheusHen/DHX/dhx/party"
	"github.com/TheusHen/DHX/dhx/relay"
	"github.com/TheusHen/DHX/dhx/session"
	"github.com/TheusHen/DHX/dhx/transport"
	"github.com/TheusHen/DHX/dhx/transport/quic"
)

// Line is one scripted message.
type Line struct {
	FromAlice bool
	Text      string
}

type Options struct {
	Suite   crypto.Suite
	Logger  *zap.Logger
	Capture *relay.Capture
	// QUIC runs every hop over loopback QUIC instead of in-memory pipes.
	QUIC   bool
	Script []Line
}

// DefaultScript is a short exchange in both directions.
var DefaultScript = []Line{
	{FromAlice: true, Text: "hi bob, it's alice"},
	{FromAlice: false, Text: "hi alice, bob here"},
	{FromAlice: true, Text: "the safe code is 4-6-7"},
}

// Report describes what every party ended up with.
type Report struct {
	AliceKey         []byte
	BobKey           []byte
	RelayUpstreamKey []byte
	RelayDownKey     []byte
	// DirectKey is what Alice and Bob would share without the relay.
	DirectKey   []byte
	Intercepted []relay.Record
	Delivered   []string
	Stats       relay.Stats
}

// Detected reports whether either peer could tell from its key alone. It is
// always false: each key matches the relay's half exactly.
func (r Report) Detected() bool {
	return string(r.AliceKey) != string(r.RelayDownKey) || string(r.BobKey) != string(r.RelayUpstreamKey)
}

type links struct {
	dialUpstream     func(context.Context) (transport.Channel, error)
	acceptDownstream func(context.Context) (transport.Channel, error)
	bob              func(context.Context) (transport.Channel, error)
	alice            func(context.Context) (transport.Channel, error)
	close            func()
}

func pipeLinks() links {
	relayUp, bobEnd := transport.Pipe()
	aliceEnd, relayDown := transport.Pipe()
	return links{
		dialUpstream:     func(context.Context) (transport.Channel, error) { return relayUp, nil },
		acceptDownstream: func(context.Context) (transport.Channel, error) { return relayDown, nil },
		bob:              func(context.Context) (transport.Channel, error) { return bobEnd, nil },
		alice:            func(context.Context) (transport.Channel, error) { return aliceEnd, nil },
		close:            func() {},
	}
}

func quicLinks(logger *zap.Logger) (links, error) {
	bobLn, err := quic.Listen("127.0.0.1:0", quic.WithLogger(logger))
	if err != nil {
		return links{}, err
	}
	relayLn, err := quic.Listen("127.0.0.1:0", quic.WithLogger(logger))
	if err != nil {
		bobLn.Close()
		return links{}, err
	}
	return links{
		dialUpstream: func(ctx context.Context) (transport.Channel, error) {
			return quic.Dial(ctx, bobLn.AddrString(), quic.WithLogger(logger))
		},
		acceptDownstream: relayLn.Accept,
		bob:              bobLn.Accept,
		alice: func(ctx context.Context) (transport.Channel, error) {
			return quic.Dial(ctx, relayLn.AddrString(), quic.WithLogger(logger))
		},
		close: func() {
			relayLn.Close()
			bobLn.Close()
		},
	}, nil
}

// Run plays opts.Script through the relay and reports keys and traffic.
func Run(ctx context.Context, dh *dhke.DH, opts Options) (*Report, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Suite == "" {
		opts.Suite = crypto.SuiteXOR
	}
	if opts.Script == nil {
		opts.Script = DefaultScript
	}
	hs := session.HandshakeOptions{Suite: opts.Suite, Logger: opts.Logger}

	aliceSK, err := dh.GeneratePrivateKey(nil)
	if err != nil {
		return nil, err
	}
	bobSK, err := dh.GeneratePrivateKey(nil)
	if err != nil {
		return nil, err
	}
	alice, err := party.NewWithPrivateKey("alice", dh, aliceSK)
	if err != nil {
		return nil, err
	}
	bob, err := party.NewWithPrivateKey("bob", dh, bobSK)
	if err != nil {
		return nil, err
	}

	var (
		mu          sync.Mutex
		intercepted []relay.Record
	)
	relayOpts := []relay.Option{
		relay.WithLogger(opts.Logger.Named("relay")),
		relay.WithSuite(opts.Suite),
		relay.WithObserver(func(d relay.Direction, text string) {
			mu.Lock()
			intercepted = append(intercepted, relay.Record{Direction: d, Text: text})
			mu.Unlock()
		}),
	}
	if opts.Capture != nil {
		relayOpts = append(relayOpts, relay.WithCapture(opts.Capture))
	}
	mitm, err := relay.New(dh, relayOpts...)
	if err != nil {
		return nil, err
	}

	var l links
	if opts.QUIC {
		if l, err = quicLinks(opts.Logger); err != nil {
			return nil, err
		}
	} else {
		l = pipeLinks()
	}
	defer l.close()

	relayDone := make(chan error, 1)
	go func() {
		relayDone <- mitm.Run(ctx, l.dialUpstream, l.acceptDownstream)
	}()

	// Bob answers the relay's handshake while Alice dials the relay.
	var (
		g         errgroup.Group
		aliceSess *session.Session
		bobSess   *session.Session
	)
	g.Go(func() error {
		ch, err := l.bob(ctx)
		if err != nil {
			return err
		}
		bobSess, err = session.HandshakeServer(ctx, ch, bob, hs)
		return err
	})
	g.Go(func() error {
		ch, err := l.alice(ctx)
		if err != nil {
			return err
		}
		aliceSess, err = session.HandshakeClient(ctx, ch, alice, hs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("demo: handshake: %w", err)
	}

	var delivered []string
	for _, line := range opts.Script {
		from, to := aliceSess, bobSess
		if !line.FromAlice {
			from, to = bobSess, aliceSess
		}
		if err := from.Send(ctx, line.Text); err != nil {
			return nil, fmt.Errorf("demo: send: %w", err)
		}
		got, err := to.Receive(ctx)
		if err != nil {
			return nil, fmt.Errorf("demo: receive: %w", err)
		}
		delivered = append(delivered, got)
	}

	_ = aliceSess.Close()
	_ = bobSess.Close()
	if err := <-relayDone; err != nil && !errors.Is(err, context.Canceled) {
		return nil, fmt.Errorf("demo: relay: %w", err)
	}

	rep := &Report{
		Delivered: delivered,
		Stats:     mitm.Stats(),
	}
	rep.AliceKey, _ = alice.SessionKey()
	rep.BobKey, _ = bob.SessionKey()
	rep.RelayUpstreamKey, _ = mitm.AsUpstream().SessionKey()
	rep.RelayDownKey, _ = mitm.AsDownstream().SessionKey()

	direct, err := party.NewWithPrivateKey("alice-direct", dh, aliceSK)
	if err != nil {
		return nil, err
	}
	if rep.DirectKey, err = direct.ComputeSharedKey(bob.PublicKey()); err != nil {
		return nil, err
	}

	mu.Lock()
	rep.Intercepted = append(rep.Intercepted, intercepted...)
	mu.Unlock()
	return rep, nil
}
