package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TheusHen/DHX/dhx/field"
)

// params: print the domain parameters both ends must share.
func paramsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "params",
		Short: "Print the domain parameters in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := dh.Params()
			f, err := field.New(p.P)
			if err != nil {
				return err
			}
			root, err := f.FindGenerator()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "p              %v\n", p.P)
			fmt.Fprintf(out, "q              %v\n", p.Q)
			fmt.Fprintf(out, "g              %v (order q)\n", p.G)
			fmt.Fprintf(out, "primitive root %v\n", root)
			fmt.Fprintf(out, "mode           %v\n", dh.Mode())
			fmt.Fprintf(out, "suite          %v\n", cfg.Suite())
			return nil
		},
	}
}
