// Package config loads the exchange core's configuration via viper,
// following the teacher's pattern of a single mapstructure-tagged Config
// struct, env-var overrides, and a package-level singleton guarded by
// sync.Once.
package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config is the root configuration for the exchange core process.
type Config struct {
	// Broker configures the order/price message bus.
	Broker struct {
		Brokers       []string `mapstructure:"brokers"`
		OrderTopic    string   `mapstructure:"order_topic"`
		PriceTopic    string   `mapstructure:"price_topic"`
		ConsumerGroup string   `mapstructure:"consumer_group"`
	} `mapstructure:"broker"`

	// KVStore configures the shared Redis-backed state.
	KVStore struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
		PoolSize int    `mapstructure:"pool_size"`
	} `mapstructure:"kvstore"`

	// Pipeline configures the channel wiring between components.
	Pipeline struct {
		ChannelCapacity   int      `mapstructure:"channel_capacity"`
		Symbols           []string `mapstructure:"symbols"`
		StrictPartialFill bool     `mapstructure:"strict_partial_fill"`

		// PeriodicMatcher switches the order book manager from the
		// authoritative insert-then-drain driver (spec.md §4.2) to the
		// secondary polling strategy spec.md §9 allows as a non-required
		// throughput-smoothing alternative.
		PeriodicMatcher         bool `mapstructure:"periodic_matcher"`
		PeriodicMatcherPoolSize int  `mapstructure:"periodic_matcher_pool_size"`
	} `mapstructure:"pipeline"`

	// Monitoring configures logging and metrics.
	Monitoring struct {
		PrometheusPort int    `mapstructure:"prometheus_port"`
		LogLevel       string `mapstructure:"log_level"`
	} `mapstructure:"monitoring"`
}

var (
	config *Config
	once   sync.Once
)

// LoadConfig loads the configuration from configPath (a directory), or, when
// configPath is empty, from ./, ./config and /etc/exchange-sim, and env vars
// prefixed EXSIM_ (e.g.
// EXSIM_KVSTORE_ADDR). Defaults cover every field so the process can start
// against a bare Redis/Kafka pair with no config file at all.
func LoadConfig(configPath string) (*Config, error) {
	var err error

	once.Do(func() {
		config = &Config{}
		setDefaults()

		v := viper.New()
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		if configPath != "" {
			v.AddConfigPath(configPath)
		} else {
			v.AddConfigPath(".")
			v.AddConfigPath("./config")
			v.AddConfigPath("/etc/exchange-sim")
		}

		v.AutomaticEnv()
		v.SetEnvPrefix("EXSIM")
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		for _, key := range []string{
			"broker.brokers", "broker.order_topic", "broker.price_topic", "broker.consumer_group",
			"kvstore.addr", "kvstore.password", "kvstore.db", "kvstore.pool_size",
			"pipeline.channel_capacity", "pipeline.symbols", "pipeline.strict_partial_fill",
			"pipeline.periodic_matcher", "pipeline.periodic_matcher_pool_size",
			"monitoring.prometheus_port", "monitoring.log_level",
		} {
			if bindErr := v.BindEnv(key); bindErr != nil {
				err = fmt.Errorf("bind env for %s: %w", key, bindErr)
				return
			}
		}

		if readErr := v.ReadInConfig(); readErr != nil {
			if _, ok := readErr.(viper.ConfigFileNotFoundError); !ok {
				err = fmt.Errorf("read config file: %w", readErr)
				return
			}
		}

		if unmarshalErr := v.Unmarshal(config); unmarshalErr != nil {
			err = fmt.Errorf("unmarshal config: %w", unmarshalErr)
			return
		}
	})

	return config, err
}

// GetConfig returns the process-wide configuration, loading defaults if
// LoadConfig has not yet been called.
func GetConfig() *Config {
	if config == nil {
		if _, err := LoadConfig(""); err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	}
	return config
}

func setDefaults() {
	config.Broker.Brokers = []string{"localhost:19092"}
	config.Broker.OrderTopic = "broker-orders"
	config.Broker.PriceTopic = "stock-prices"
	config.Broker.ConsumerGroup = "oms_consumer_group"

	config.KVStore.Addr = "localhost:6379"
	config.KVStore.DB = 0
	config.KVStore.PoolSize = 10

	config.Pipeline.ChannelCapacity = 100
	config.Pipeline.Symbols = []string{"AAPL", "GOOG", "MSFT"}
	config.Pipeline.StrictPartialFill = false
	config.Pipeline.PeriodicMatcher = false
	config.Pipeline.PeriodicMatcherPoolSize = 4

	config.Monitoring.PrometheusPort = 9090
	config.Monitoring.LogLevel = "info"
}

// InitLogger builds a zap.Logger matching the configured log level,
// following the teacher's InitLogger convention.
func InitLogger(cfg *Config) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error

	switch cfg.Monitoring.LogLevel {
	case "debug":
		logger, err = zap.NewDevelopment()
	default:
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}
	return logger, nil
}
