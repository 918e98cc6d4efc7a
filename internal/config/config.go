// Package config loads the keeper's YAML configuration through viper,
// fills defaults, and validates what the process cannot run without.
package config

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path cannot be empty")
	}
	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file failed (%s): %w", path, err)
	}
	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("parsing config failed: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.log_level", "info")
	v.SetDefault("indexer.timeout_seconds", 10)
	v.SetDefault("oracle.timeout_seconds", 10)
	v.SetDefault("relayer.gas_limit_settlement", 2_000_000)
	v.SetDefault("relayer.gas_limit_liquidation", 3_000_000)
	v.SetDefault("keeper.interval", "30s")
	v.SetDefault("keeper.batch_size", 50)
	v.SetDefault("keeper.http_addr", ":9970")
	v.SetDefault("store.path", "data/keeper.db")
}

func validate(cfg *Config) error {
	if cfg.Indexer.Endpoint == "" {
		return fmt.Errorf("config: indexer.endpoint is required")
	}
	if cfg.Oracle.Endpoint == "" {
		return fmt.Errorf("config: oracle.endpoint is required")
	}
	if cfg.Relayer.Endpoint == "" {
		return fmt.Errorf("config: relayer.endpoint is required")
	}
	if cfg.Relayer.OrderManager == "" || cfg.Relayer.BatchHandler == "" {
		return fmt.Errorf("config: relayer.order_manager and relayer.batch_handler are required")
	}
	if _, err := time.ParseDuration(cfg.Keeper.Interval); err != nil {
		return fmt.Errorf("config: keeper.interval: %w", err)
	}
	if cfg.Keeper.BatchSize <= 0 {
		return fmt.Errorf("config: keeper.batch_size must be positive")
	}
	return nil
}

// Interval returns the parsed keeper interval. Load already validated it.
func (c *Config) Interval() time.Duration {
	d, err := time.ParseDuration(c.Keeper.Interval)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// Watch invokes onChange with the freshly loaded config whenever the file
// changes on disk. Reload errors are reported through onError and leave
// the running config untouched.
func Watch(path string, onChange func(*Config), onError func(error)) {
	v := viper.New()
	v.SetConfigFile(path)
	v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := Load(path)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
}
