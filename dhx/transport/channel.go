package transport

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/TheusHen/DHX/dhx/protocol"
)

const (
	// DefaultQueueSize bounds received messages not yet taken by Receive.
	DefaultQueueSize = 64

	closeTimeout = time.Second
)

var ErrClosed = errors.New("transport: channel closed")

// Channel sends and receives whole text messages. Messages in one direction
// arrive in the order they were sent. After the peer closes, Receive returns
// io.EOF once every earlier message has been delivered.
type Channel interface {
	Send(ctx context.Context, text string) error
	Receive(ctx context.Context) (string, error)
	Close() error
}

type deadliner interface {
	SetWriteDeadline(t time.Time) error
}

// StreamChannel frames messages over a byte stream. A read pump goroutine
// decodes frames into a bounded queue so Receive can honour its context.
type StreamChannel struct {
	rwc    io.ReadWriteCloser
	logger *zap.Logger

	wmu sync.Mutex

	incoming chan string
	readErr  error // written by the pump before incoming is closed

	closeOnce sync.Once
	closed    chan struct{}
	closeErr  error
}

type Option func(*StreamChannel)

func WithLogger(l *zap.Logger) Option {
	return func(c *StreamChannel) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithQueueSize(n int) Option {
	return func(c *StreamChannel) {
		if n > 0 {
			c.incoming = make(chan string, n)
		}
	}
}

// NewStreamChannel takes ownership of rwc and starts the read pump.
func NewStreamChannel(rwc io.ReadWriteCloser, opts ...Option) *StreamChannel {
	c := &StreamChannel{
		rwc:      rwc,
		logger:   zap.NewNop(),
		incoming: make(chan string, DefaultQueueSize),
		closed:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	go c.readPump(bufio.NewReader(rwc))
	return c
}

func (c *StreamChannel) readPump(br *bufio.Reader) {
	defer close(c.incoming)
	for {
		f, err := protocol.ReadFrame(br)
		if err != nil {
			c.readErr = c.pumpError(err)
			return
		}
		switch f.Type {
		case protocol.MessageTypeClose:
			c.logger.Debug("peer closed channel")
			c.readErr = io.EOF
			return
		case protocol.MessageTypeText:
			select {
			case c.incoming <- string(f.Payload):
			case <-c.closed:
				c.readErr = ErrClosed
				return
			}
		}
	}
}

func (c *StreamChannel) pumpError(err error) error {
	select {
	case <-c.closed:
		return ErrClosed
	default:
	}
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		return io.EOF
	}
	c.logger.Debug("read pump stopped", zap.Error(err))
	return fmt.Errorf("transport: read: %w", err)
}

func (c *StreamChannel) Send(ctx context.Context, text string) error {
	select {
	case <-c.closed:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	return c.write(ctx, protocol.Frame{Type: protocol.MessageTypeText, Payload: []byte(text)})
}

func (c *StreamChannel) write(ctx context.Context, f protocol.Frame) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	if d, ok := c.rwc.(deadliner); ok {
		deadline, _ := ctx.Deadline()
		_ = d.SetWriteDeadline(deadline)

		// Cancellation expires the deadline so a blocked write returns.
		fired := make(chan struct{})
		stop := context.AfterFunc(ctx, func() {
			defer close(fired)
			_ = d.SetWriteDeadline(time.Now())
		})
		defer func() {
			if !stop() {
				<-fired
			}
		}()
	}
	if err := protocol.WriteFrame(c.rwc, f); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("transport: write: %w", err)
	}
	return nil
}

// Receive blocks for the next message. It returns io.EOF after the peer
// closed, ErrClosed after a local Close and ctx.Err() on cancellation.
func (c *StreamChannel) Receive(ctx context.Context) (string, error) {
	select {
	case <-c.closed:
		return "", ErrClosed
	default:
	}
	select {
	case msg, ok := <-c.incoming:
		if !ok {
			return "", c.readErr
		}
		return msg, nil
	case <-c.closed:
		return "", ErrClosed
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Close tells the peer with a CLOSE frame, then releases the stream. It is
// safe to call more than once.
func (c *StreamChannel) Close() error {
	c.closeOnce.Do(func() {
		// Unblock a Send stuck on a peer that stopped reading.
		if d, ok := c.rwc.(deadliner); ok {
			_ = d.SetWriteDeadline(time.Now().Add(closeTimeout))
		}
		ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		if err := c.write(ctx, protocol.Frame{Type: protocol.MessageTypeClose}); err != nil {
			c.logger.Debug("close frame not delivered", zap.Error(err))
		}
		close(c.closed)
		c.closeErr = c.rwc.Close()
	})
	return c.closeErr
}

// Pipe returns two connected in-memory channels.
func Pipe(opts ...Option) (*StreamChannel, *StreamChannel) {
	a, b := net.Pipe()
	return NewStreamChannel(a, opts...), NewStreamChannel(b, opts...)
}
