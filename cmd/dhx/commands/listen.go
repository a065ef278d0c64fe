package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// listen <name>: wait for one peer and chat with it.
func listenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listen <name>",
		Short: "Accept one peer and chat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			peer, err := newPeer(args[0])
			if err != nil {
				return err
			}
			if err := peer.Listen(cfg.Listen); err != nil {
				return err
			}
			defer peer.Close()
			logger.Info("listening", zap.String("addr", peer.ListenAddr()))

			ctx := cmd.Context()
			s, err := peer.Accept(ctx)
			if err != nil {
				return err
			}
			return chat(ctx, cmd, s)
		},
	}
	cmd.Flags().String("addr", "", "listen address (default from config)")
	_ = v.BindPFlag("listen", cmd.Flags().Lookup("addr"))
	return cmd
}
