// Package quic carries transport channels over QUIC: one connection, one
// bidirectional stream per channel.
package quic

import (
	"context"
	"fmt"
	"net"
	"time"

	q "github.com/quic-go/quic-go"
	"go.uber.org/zap"

	"github.com/TheusHen/DHX/dhx/transport"
)

// closeGrace lets the final CLOSE frame and stream FIN reach the peer before
// the connection is torn down.
const closeGrace = 500 * time.Millisecond

type Option func(*options)

type options struct {
	logger *zap.Logger
	conf   *q.Config
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func WithConfig(c *q.Config) Option {
	return func(o *options) { o.conf = c }
}

func buildOptions(opts []Option) options {
	o := options{
		logger: zap.NewNop(),
		conf:   &q.Config{KeepAlivePeriod: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type Listener struct {
	inner  *q.Listener
	logger *zap.Logger
}

func Listen(addr string, opts ...Option) (*Listener, error) {
	o := buildOptions(opts)
	tlsConf, err := NewServerTLSConfig()
	if err != nil {
		return nil, err
	}
	ln, err := q.ListenAddr(addr, tlsConf, o.conf)
	if err != nil {
		return nil, fmt.Errorf("quic: listen %s: %w", addr, err)
	}
	return &Listener{inner: ln, logger: o.logger}, nil
}

// Accept waits for a connection and its first stream. The stream only becomes
// visible once the dialer has written to it, which the dialing side of the
// handshake always does first.
func (l *Listener) Accept(ctx context.Context) (transport.Channel, error) {
	conn, err := l.inner.Accept(ctx)
	if err != nil {
		return nil, err
	}
	return l.acceptStream(ctx, conn)
}

func (l *Listener) acceptStream(ctx context.Context, conn q.Connection) (transport.Channel, error) {
	stream, err := conn.AcceptStream(ctx)
	if err != nil {
		_ = conn.CloseWithError(0, "no stream")
		return nil, fmt.Errorf("quic: accept stream from %s: %w", conn.RemoteAddr(), err)
	}
	l.logger.Debug("accepted", zap.Stringer("remote", conn.RemoteAddr()))
	return newChannel(conn, stream, l.logger), nil
}

// Serve accepts until ctx is cancelled or the listener fails, handing each
// channel to onConnect on its own goroutine. A client that never opens a
// stream is dropped without stopping the loop.
func (l *Listener) Serve(ctx context.Context, onConnect func(context.Context, transport.Channel)) error {
	for {
		conn, err := l.inner.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		go func() {
			ch, err := l.acceptStream(ctx, conn)
			if err != nil {
				l.logger.Warn("dropping connection", zap.Error(err))
				return
			}
			onConnect(ctx, ch)
		}()
	}
}

func (l *Listener) Addr() net.Addr { return l.inner.Addr() }

func (l *Listener) AddrString() string {
	if l.inner == nil {
		return ""
	}
	return l.inner.Addr().String()
}

func (l *Listener) Close() error { return l.inner.Close() }

func Dial(ctx context.Context, addr string, opts ...Option) (transport.Channel, error) {
	o := buildOptions(opts)
	tlsConf, err := NewClientTLSConfig()
	if err != nil {
		return nil, err
	}
	conn, err := q.DialAddr(ctx, addr, tlsConf, o.conf)
	if err != nil {
		return nil, fmt.Errorf("quic: dial %s: %w", addr, err)
	}
	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		_ = conn.CloseWithError(0, "no stream")
		return nil, fmt.Errorf("quic: open stream to %s: %w", addr, err)
	}
	o.logger.Debug("dialed", zap.String("addr", addr))
	return newChannel(conn, stream, o.logger), nil
}

// streamConn closes the whole connection along with its only stream.
type streamConn struct {
	q.Stream
	conn q.Connection
}

func (s *streamConn) Close() error {
	err := s.Stream.Close()
	time.AfterFunc(closeGrace, func() {
		_ = s.conn.CloseWithError(0, "closed")
	})
	return err
}

func newChannel(conn q.Connection, stream q.Stream, logger *zap.Logger) transport.Channel {
	return transport.NewStreamChannel(&streamConn{Stream: stream, conn: conn},
		transport.WithLogger(logger.With(zap.Stringer("remote", conn.RemoteAddr()))))
}
