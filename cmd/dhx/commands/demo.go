package commands

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/TheusHen/DHX/dhx/relay"
	"github.com/TheusHen/DHX/internal/demo"
)

// demo: the whole Alice / relay / Bob scenario in one process.
func demoCmd() *cobra.Command {
	var (
		useQUIC  bool
		capture  string
		messages []string
	)
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run Alice, the relay and Bob in-process and show what the relay sees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := demo.Options{
				Suite:  cfg.Suite(),
				Logger: logger,
				QUIC:   useQUIC,
			}
			for i, m := range messages {
				opts.Script = append(opts.Script, demo.Line{FromAlice: i%2 == 0, Text: m})
			}
			if capture != "" {
				f, err := os.Create(capture)
				if err != nil {
					return err
				}
				defer f.Close()
				c, err := relay.NewCapture(f, relay.CaptureDefault)
				if err != nil {
					return err
				}
				defer c.Close()
				opts.Capture = c
			}

			rep, err := demo.Run(cmd.Context(), dh, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "alice session key   %s\n", hex.EncodeToString(rep.AliceKey))
			fmt.Fprintf(out, "relay (to alice)    %s\n", hex.EncodeToString(rep.RelayDownKey))
			fmt.Fprintf(out, "bob session key     %s\n", hex.EncodeToString(rep.BobKey))
			fmt.Fprintf(out, "relay (to bob)      %s\n", hex.EncodeToString(rep.RelayUpstreamKey))
			fmt.Fprintf(out, "direct alice<->bob  %s\n", hex.EncodeToString(rep.DirectKey))
			fmt.Fprintf(out, "substitution detected by peers: %v\n\n", rep.Detected())
			for _, r := range rep.Intercepted {
				fmt.Fprintf(out, "intercepted %-8s %q\n", r.Direction, r.Text)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.BoolVar(&useQUIC, "quic", false, "run every hop over loopback QUIC")
	f.StringVar(&capture, "capture", "", "write intercepted plaintext to this lz4 file")
	f.StringSliceVar(&messages, "message", nil, "messages to send, alternating alice then bob")
	return cmd
}
