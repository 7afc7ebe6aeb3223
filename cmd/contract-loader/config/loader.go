package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"github.com/quantumauth-io/contract-loader/internal/chains"
	"github.com/quantumauth-io/contract-loader/internal/constants"
)

type ClientSettings struct {
	LocalHost      string
	Port           string
	AllowedOrigins []string
}

type Config struct {
	ClientSettings       *ClientSettings
	Chains               chains.AllChainsConfig `mapstructure:"Chains"`
	DefaultActiveNetwork string
	ContractName         string
	StrictGuards         bool
}

func Load() (*Config, error) {
	home, _ := os.UserHomeDir()
	paths := []string{
		filepath.Join(home, ".config", constants.AppName),
		filepath.Join(home, "config"),
		".",
	}

	return LoadFrom(paths, EmbeddedConfigYAML)
}

// LoadFrom reads the embedded defaults, merges every config.yaml found in
// paths (later paths win), then applies CONTRACT_LOADER_* env overrides.
func LoadFrom(paths []string, embedded []byte) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadConfig(bytes.NewReader(embedded)); err != nil {
		return nil, errors.Wrap(err, "read embedded config")
	}

	for _, p := range paths {
		file := filepath.Join(p, constants.ConfigFile)
		if _, err := os.Stat(file); err != nil {
			continue
		}
		v.SetConfigFile(file)
		if err := v.MergeInConfig(); err != nil {
			return nil, errors.Wrapf(err, "merge config %s", file)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}

	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Normalize() error {
	if c.ClientSettings == nil {
		return errors.New("ClientSettings missing")
	}
	c.ClientSettings.LocalHost = strings.TrimSpace(c.ClientSettings.LocalHost)
	c.ClientSettings.Port = strings.TrimSpace(c.ClientSettings.Port)
	if c.ClientSettings.Port == "" {
		return errors.New("ClientSettings.Port is empty")
	}

	origins := make([]string, 0, len(c.ClientSettings.AllowedOrigins))
	for _, o := range c.ClientSettings.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	c.ClientSettings.AllowedOrigins = origins

	c.DefaultActiveNetwork = strings.ToLower(strings.TrimSpace(c.DefaultActiveNetwork))
	if c.DefaultActiveNetwork == "" {
		c.DefaultActiveNetwork = constants.DefaultActiveNetwork
	}

	c.ContractName = strings.TrimSpace(c.ContractName)
	if c.ContractName == "" {
		c.ContractName = constants.DefaultContractName
	}

	c.Chains.Normalize()
	return nil
}
