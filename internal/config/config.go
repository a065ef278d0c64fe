// Package config loads run settings. Precedence, highest first: bound flags,
// DHX_* environment variables, the optional config file, defaults.
package config

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/spf13/viper"

	"github.com/TheusHen/DHX/dhx/crypto"
	"github.com/TheusHen/DHX/dhx/dhke"
)

const EnvPrefix = "DHX"

type DH struct {
	P    int64  `mapstructure:"p"`
	Mode string `mapstructure:"mode"`
}

type Cipher struct {
	Suite string `mapstructure:"suite"`
}

type Log struct {
	Mode  string `mapstructure:"mode"`
	Level string `mapstructure:"level"`
}

type Relay struct {
	Listen   string `mapstructure:"listen"`
	Upstream string `mapstructure:"upstream"`
	Capture  string `mapstructure:"capture"`
}

// Config - all the options shared by the CLI commands
type Config struct {
	DH     DH     `mapstructure:"dh"`
	Cipher Cipher `mapstructure:"cipher"`
	Log    Log    `mapstructure:"log"`
	Listen string `mapstructure:"listen"`
	Relay  Relay  `mapstructure:"relay"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("dh.p", dhke.DefaultPrime)
	v.SetDefault("dh.mode", dhke.SubgroupConstrained.String())
	v.SetDefault("cipher.suite", string(crypto.SuiteXOR))
	v.SetDefault("log.mode", "development")
	v.SetDefault("log.level", "info")
	v.SetDefault("listen", "127.0.0.1:8765")
	v.SetDefault("relay.listen", "127.0.0.1:9999")
	v.SetDefault("relay.upstream", "127.0.0.1:8765")
	v.SetDefault("relay.capture", "")
}

// New returns a viper instance with defaults and DHX_* env binding. Flags
// may be bound onto it before Decode.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// ReadFile merges the config file at path into v.
func ReadFile(v *viper.Viper, path string) error {
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	return nil
}

// Decode unmarshals and validates v.
func Decode(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load reads the optional file at path over defaults and env.
func Load(path string) (*Config, error) {
	v := New()
	if path != "" {
		if err := ReadFile(v, path); err != nil {
			return nil, err
		}
	}
	return Decode(v)
}

func (c *Config) Validate() error {
	if _, err := dhke.ParseMode(c.DH.Mode); err != nil {
		return fmt.Errorf("config: dh.mode: %w", err)
	}
	if _, err := crypto.ParseSuite(c.Cipher.Suite); err != nil {
		return fmt.Errorf("config: cipher.suite: %w", err)
	}
	if c.DH.P < 5 {
		return fmt.Errorf("config: dh.p must be a safe prime, got %d", c.DH.P)
	}
	return nil
}

// Params derives the domain parameters from dh.p.
func (c *Config) Params() (dhke.Params, error) {
	return dhke.SafePrimeParams(big.NewInt(c.DH.P))
}

// NewDH builds the DH instance for dh.p and dh.mode.
func (c *Config) NewDH() (*dhke.DH, error) {
	params, err := c.Params()
	if err != nil {
		return nil, err
	}
	mode, err := dhke.ParseMode(c.DH.Mode)
	if err != nil {
		return nil, err
	}
	return dhke.New(params, dhke.WithMode(mode))
}

// Suite is the configured message cipher.
func (c *Config) Suite() crypto.Suite {
	s, _ := crypto.ParseSuite(c.Cipher.Suite)
	return s
}
