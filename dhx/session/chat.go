package session

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// ExitCommand ends the local send task.
	ExitCommand = "exit"

	DefaultInputQueue = 16
)

var ErrInputClosed = errors.New("session: chat input closed")

// IsExit reports whether line is the exit command, ignoring case and
// surrounding space.
func IsExit(line string) bool {
	return strings.EqualFold(strings.TrimSpace(line), ExitCommand)
}

type ChatOption func(*Chat)

// WithOnMessage sets the callback for received messages. It runs on the
// receive goroutine.
func WithOnMessage(fn func(string)) ChatOption {
	return func(c *Chat) { c.onMessage = fn }
}

func WithInputQueue(n int) ChatOption {
	return func(c *Chat) {
		if n > 0 {
			c.input = make(chan string, n)
		}
	}
}

// Chat is an interactive endpoint over a session. Input lines are queued by
// Submit and sent by one task while a second task delivers incoming messages.
// The exit command, or CloseInput, stops sending only; receiving carries on
// until the peer closes or the context ends.
type Chat struct {
	sess      *Session
	input     chan string
	onMessage func(string)
	logger    *zap.Logger

	stopOnce sync.Once
	stopped  chan struct{}
}

func NewChat(sess *Session, opts ...ChatOption) *Chat {
	c := &Chat{
		sess:      sess,
		input:     make(chan string, DefaultInputQueue),
		onMessage: func(string) {},
		logger:    sess.logger,
		stopped:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit queues a line for sending, blocking while the queue is full.
// Surrounding space is trimmed before the line is sent.
func (c *Chat) Submit(ctx context.Context, line string) error {
	select {
	case <-c.stopped:
		return ErrInputClosed
	default:
	}
	select {
	case c.input <- line:
		return nil
	case <-c.stopped:
		return ErrInputClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CloseInput ends the send task once queued lines are drained.
func (c *Chat) CloseInput() {
	c.stopOnce.Do(func() { close(c.stopped) })
}

// Run starts both tasks and returns when both have finished. A clean peer
// close is not an error.
func (c *Chat) Run(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return c.sendLoop(ctx) })
	g.Go(func() error { return c.receiveLoop(ctx) })
	return g.Wait()
}

func (c *Chat) sendLoop(ctx context.Context) error {
	defer c.CloseInput()
	for {
		var line string
		select {
		case line = <-c.input:
		case <-c.stopped:
			// drain what was queued before CloseInput
			select {
			case line = <-c.input:
			default:
				return nil
			}
		case <-ctx.Done():
			return ctx.Err()
		}
		line = strings.TrimSpace(line)
		if IsExit(line) {
			c.logger.Info("send task stopped by exit command")
			return nil
		}
		if err := c.sess.Send(ctx, line); err != nil {
			return err
		}
	}
}

func (c *Chat) receiveLoop(ctx context.Context) error {
	for {
		msg, err := c.sess.Receive(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				c.logger.Info("peer closed")
				return nil
			}
			return err
		}
		c.onMessage(msg)
	}
}
