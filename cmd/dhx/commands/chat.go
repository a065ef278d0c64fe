package commands

import (
	"bufio"
	"context"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TheusHen/DHX/dhx"
	"github.com/TheusHen/DHX/dhx/party"
	"github.com/TheusHen/DHX/dhx/session"
)

func newPeer(name string) (*dhx.Peer, error) {
	p, err := party.New(name, dh, nil)
	if err != nil {
		return nil, err
	}
	logger.Info("identity ready", zap.String("name", name), zap.Stringer("public", p.PublicKey()))
	return dhx.NewPeer(p, session.HandshakeOptions{Suite: cfg.Suite(), Logger: logger}), nil
}

// chat runs the interactive loop: stdin lines go out, incoming messages are
// printed. "exit" stops sending; the command returns once the peer leaves.
func chat(ctx context.Context, cmd *cobra.Command, s *session.Session) error {
	defer s.Close()
	key, _ := s.Party().SessionKey()
	logger.Info("session established",
		zap.String("session", s.ID().String()),
		zap.Stringer("peer_public", s.PeerPublicKey()),
		zap.String("session_key", hex.EncodeToString(key)))

	out := cmd.OutOrStdout()
	c := session.NewChat(s, session.WithOnMessage(func(msg string) {
		fmt.Fprintf(out, "< %s\n", msg)
	}))
	go readLines(ctx, cmd.InOrStdin(), c)
	return c.Run(ctx)
}

func readLines(ctx context.Context, in io.Reader, c *session.Chat) {
	defer c.CloseInput()
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		line := sc.Text()
		if err := c.Submit(ctx, line); err != nil {
			return
		}
		if session.IsExit(line) {
			return
		}
	}
}
