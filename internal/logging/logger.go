package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

/*New - console logger for the CLI. mode is "development" or "production";
level is a zap level name such as "debug" or "info". */
func New(mode, level string) (*zap.Logger, error) {
	return NewWithWriter(mode, level, os.Stderr)
}

/*NewWithWriter - same as New, writing to w */
func NewWithWriter(mode, level string, w io.Writer) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}

	var conf zapcore.EncoderConfig
	switch mode {
	case "production":
		conf = zap.NewProductionEncoderConfig()
	case "development", "":
		conf = zap.NewDevelopmentEncoderConfig()
	default:
		return nil, fmt.Errorf("logging: unknown mode %q", mode)
	}
	conf.TimeKey = "@timestamp"
	conf.EncodeTime = zapcore.ISO8601TimeEncoder
	conf.EncodeDuration = zapcore.StringDurationEncoder
	if mode == "production" {
		conf.EncodeLevel = zapcore.LowercaseLevelEncoder
	} else {
		conf.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(conf),
		zapcore.AddSync(w),
		lvl,
	)
	opts := []zap.Option{zap.AddCaller()}
	if mode != "production" {
		opts = append(opts, zap.Development())
	}
	return zap.New(core, opts...), nil
}
