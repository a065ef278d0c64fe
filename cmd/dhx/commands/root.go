package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/TheusHen/DHX/dhx/dhke"
	"github.com/TheusHen/DHX/internal/config"
	"github.com/TheusHen/DHX/internal/logging"
)

var (
	cfgPath string

	v      *viper.Viper
	cfg    *config.Config
	logger *zap.Logger
	dh     *dhke.DH
)

func Execute() error {
	root := newRootCmd()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err := root.ExecuteContext(ctx)
	if logger != nil {
		if err != nil {
			logger.Error("command failed", zap.Error(err))
		}
		_ = logger.Sync()
	}
	return err
}

func newRootCmd() *cobra.Command {
	v = config.New()
	root := &cobra.Command{
		Use:           "dhx",
		Short:         "Textbook Diffie-Hellman chat and the relay that breaks it",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgPath != "" {
				if err := config.ReadFile(v, cfgPath); err != nil {
					return err
				}
			}
			var err error
			if cfg, err = config.Decode(v); err != nil {
				return err
			}
			if logger, err = logging.New(cfg.Log.Mode, cfg.Log.Level); err != nil {
				return err
			}
			if dh, err = cfg.NewDH(); err != nil {
				return err
			}
			logger.Debug("configured",
				zap.Stringer("params", dh.Params()),
				zap.Stringer("mode", dh.Mode()),
				zap.String("suite", string(cfg.Suite())))
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgPath, "config", "", "config file (yaml, json or toml)")
	pf.String("log-level", "info", "debug, info, warn or error")
	pf.String("suite", "xor-sha256", "message cipher: xor-sha256 or chacha20poly1305")
	pf.String("mode", "subgroup", "key policy: subgroup or unconstrained (insecure)")
	_ = v.BindPFlag("log.level", pf.Lookup("log-level"))
	_ = v.BindPFlag("cipher.suite", pf.Lookup("suite"))
	_ = v.BindPFlag("dh.mode", pf.Lookup("mode"))

	root.AddCommand(paramsCmd(), listenCmd(), dialCmd(), relayCmd(), demoCmd())
	return root
}
