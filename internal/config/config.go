package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/dendrascience/dendra-dirindex/dirindex"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DefaultAppName is used for the config search path and the env prefix.
const DefaultAppName = "dirindex"

// Config stores all configuration of the application.
// The values are read by viper from a config file, environment variables
// (DIRINDEX_INDEX_BASEDIR and so on) or command-line flags.
type Config struct {
	Index IndexConfig `mapstructure:"index"`
	Log   LogConfig   `mapstructure:"log"`
}

// IndexConfig selects and tunes the directory index.
type IndexConfig struct {
	BaseDir  string `mapstructure:"baseDir"`
	Strategy string `mapstructure:"strategy"`
	Buckets  int    `mapstructure:"buckets"`
	Workers  int    `mapstructure:"workers"`
}

// LogConfig controls the CLI logger.
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// flagKeys binds command-line flag names to config keys.
var flagKeys = map[string]string{
	"base":      "index.baseDir",
	"strategy":  "index.strategy",
	"buckets":   "index.buckets",
	"workers":   "index.workers",
	"log-level": "log.level",
	"log-json":  "log.json",
}

// LoadConfig reads configuration from file, environment variables and flags,
// in increasing order of precedence. An empty configPath searches the
// working directory and ~/.config/dirindex for config.yaml; a missing file
// there is not an error.
func LoadConfig(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", DefaultAppName))
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetDefault("index.baseDir", "")
	v.SetDefault("index.strategy", string(dirindex.StrategyVerbatim))
	v.SetDefault("index.buckets", dirindex.DefaultBuckets)
	v.SetDefault("index.workers", runtime.NumCPU())
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)

	v.SetEnvPrefix(DefaultAppName)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	return &cfg, nil
}

// Validate checks the values the index cannot start without.
func (c *Config) Validate() error {
	if c.Index.BaseDir == "" {
		return fmt.Errorf("%w: index.baseDir is required (flag --base or env DIRINDEX_INDEX_BASEDIR)", dirindex.ErrConfiguration)
	}
	if _, err := dirindex.ParseStrategy(c.Index.Strategy); err != nil {
		return err
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", dirindex.ErrConfiguration, err)
	}
	return nil
}

// Options translates the index section into dirindex options.
func (c *Config) Options(log zerolog.Logger) []dirindex.Option {
	opts := []dirindex.Option{dirindex.WithLogger(log)}
	if c.Index.Buckets > 0 {
		opts = append(opts, dirindex.WithBuckets(c.Index.Buckets))
	}
	if c.Index.Workers > 0 {
		opts = append(opts, dirindex.WithWorkers(c.Index.Workers))
	}
	return opts
}

// OpenIndex validates the config and opens the configured index.
func (c *Config) OpenIndex(log zerolog.Logger) (dirindex.Index, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	st, err := dirindex.ParseStrategy(c.Index.Strategy)
	if err != nil {
		return nil, err
	}
	return dirindex.Open(st, c.Index.BaseDir, c.Options(log)...)
}

// Logger returns a properly configured zerolog logger writing to w.
func (c LogConfig) Logger(w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(c.Level)
	if err != nil || c.Level == "" {
		level = zerolog.InfoLevel
	}
	if !c.JSON {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
