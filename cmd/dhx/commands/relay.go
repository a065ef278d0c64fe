package commands

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TheusHen/DHX/dhx/relay"
	"github.com/TheusHen/DHX/dhx/transport"
	"github.com/TheusHen/DHX/dhx/transport/quic"
)

// relay: sit between a dialer and the real listener and read everything.
func relayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Run the man-in-the-middle relay",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []relay.Option{
				relay.WithLogger(logger.Named("relay")),
				relay.WithSuite(cfg.Suite()),
			}
			if cfg.Relay.Capture != "" {
				f, err := os.Create(cfg.Relay.Capture)
				if err != nil {
					return err
				}
				defer f.Close()
				capture, err := relay.NewCapture(f, relay.CaptureDefault)
				if err != nil {
					return err
				}
				defer capture.Close()
				opts = append(opts, relay.WithCapture(capture))
			}

			r, err := relay.New(dh, opts...)
			if err != nil {
				return err
			}
			ln, err := quic.Listen(cfg.Relay.Listen, quic.WithLogger(logger))
			if err != nil {
				return err
			}
			defer ln.Close()
			logger.Info("relay ready",
				zap.String("listen", ln.AddrString()),
				zap.String("upstream", cfg.Relay.Upstream),
				zap.Stringer("as_upstream_public", r.AsUpstream().PublicKey()),
				zap.Stringer("as_downstream_public", r.AsDownstream().PublicKey()))

			err = r.Run(cmd.Context(),
				func(ctx context.Context) (transport.Channel, error) {
					return quic.Dial(ctx, cfg.Relay.Upstream, quic.WithLogger(logger))
				},
				ln.Accept,
			)
			st := r.Stats()
			logger.Info("relay finished",
				zap.Uint64("down_up_messages", st.DownstreamToUpstream.Messages),
				zap.Uint64("up_down_messages", st.UpstreamToDownstream.Messages))
			return err
		},
	}
	f := cmd.Flags()
	f.String("listen", "", "address the downstream peer dials (default from config)")
	f.String("upstream", "", "address of the real listener (default from config)")
	f.String("capture", "", "write intercepted plaintext to this lz4 file")
	_ = v.BindPFlag("relay.listen", f.Lookup("listen"))
	_ = v.BindPFlag("relay.upstream", f.Lookup("upstream"))
	_ = v.BindPFlag("relay.capture", f.Lookup("capture"))
	return cmd
}
