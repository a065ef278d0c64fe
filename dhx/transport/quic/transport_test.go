package quic

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheusHen/DHX/dhx/transport"
)

func TestLoopbackExchange(t *testing.T) {
	ln, err := Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	accepted := make(chan transport.Channel, 1)
	errs := make(chan error, 1)
	go func() {
		ch, err := ln.Accept(ctx)
		if err != nil {
			errs <- err
			return
		}
		accepted <- ch
	}()

	client, err := Dial(ctx, ln.AddrString())
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Send(ctx, "417"))

	var server transport.Channel
	select {
	case server = <-accepted:
	case err := <-errs:
		t.Fatalf("Accept: %v", err)
	case <-ctx.Done():
		t.Fatalf("timed out waiting for Accept")
	}

	got, err := server.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "417", got)

	require.NoError(t, server.Send(ctx, "9"))
	got, err = client.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "9", got)

	require.NoError(t, client.Close())
	_, err = server.Receive(ctx)
	assert.Equal(t, io.EOF, err)
	_ = server.Close()
}

func TestServeHandsOffChannels(t *testing.T) {
	ln, err := Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	got := make(chan string, 2)
	go func() {
		_ = ln.Serve(ctx, func(ctx context.Context, ch transport.Channel) {
			defer ch.Close()
			msg, err := ch.Receive(ctx)
			if err == nil {
				got <- msg
			}
		})
	}()

	for _, name := range []string{"alice", "bob"} {
		c, err := Dial(ctx, ln.AddrString())
		require.NoError(t, err)
		require.NoError(t, c.Send(ctx, name))
		defer c.Close()
	}

	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case m := <-got:
			seen[m] = true
		case <-ctx.Done():
			t.Fatalf("timed out, saw %v", seen)
		}
	}
	assert.True(t, seen["alice"] && seen["bob"])
}
