package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// dial <name> [addr]: connect to a listener (or a relay posing as one).
func dialCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dial <name> [addr]",
		Short: "Connect to a peer and chat",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr := cfg.Listen
			if len(args) == 2 {
				addr = args[1]
			}
			peer, err := newPeer(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			logger.Info("dialing", zap.String("addr", addr))
			s, err := peer.Dial(ctx, addr)
			if err != nil {
				return err
			}
			return chat(ctx, cmd, s)
		},
	}
}
