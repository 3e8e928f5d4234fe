// Package config loads peer settings from YAML.
//
//	codec: cbor
//	compress_threshold: 4096
//	log_level: info
//	balancer: consistent_hash
//	rate_limit:
//	  rate: 100
//	  burst: 20
//	registry:
//	  endpoints: ["127.0.0.1:2379"]
//	  prefix: /entity-rpc
//	  ttl: 10
package config

import (
	"fmt"
	"os"

	"entity-rpc/codec"
	"entity-rpc/registry"
	"entity-rpc/transport"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

type RateLimit struct {
	Rate  float64 `yaml:"rate"`
	Burst int     `yaml:"burst"`
}

type Registry struct {
	Endpoints []string `yaml:"endpoints"`
	Prefix    string   `yaml:"prefix"`
	TTL       int64    `yaml:"ttl"`
}

type Config struct {
	Codec             string     `yaml:"codec"`
	CompressThreshold int        `yaml:"compress_threshold"`
	LogLevel          string     `yaml:"log_level"`
	Balancer          string     `yaml:"balancer"`
	RateLimit         *RateLimit `yaml:"rate_limit"`
	Registry          Registry   `yaml:"registry"`
}

func Default() *Config {
	return &Config{
		Codec:             "json",
		CompressThreshold: 4096,
		LogLevel:          "info",
		Balancer:          "round_robin",
		Registry: Registry{
			Prefix: "/entity-rpc",
			TTL:    10,
		},
	}
}

// Parse reads YAML on top of Default and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

func (c *Config) Validate() error {
	if _, ok := codec.ParseCodecType(c.Codec); !ok {
		return fmt.Errorf("config: unknown codec %q", c.Codec)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: log_level: %w", err)
	}
	switch c.Balancer {
	case "", "round_robin", "weighted_random", "consistent_hash":
	default:
		return fmt.Errorf("config: unknown balancer %q", c.Balancer)
	}
	if c.RateLimit != nil && (c.RateLimit.Rate < 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("config: rate_limit needs rate >= 0 and burst > 0")
	}
	if c.Registry.TTL <= 0 {
		return fmt.Errorf("config: registry ttl must be positive")
	}
	return nil
}

func (c *Config) CodecType() codec.CodecType {
	ct, _ := codec.ParseCodecType(c.Codec)
	return ct
}

// NewLogger builds a production zap logger at the configured level.
func (c *Config) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

// NewRegistry connects to etcd when endpoints are configured and falls back to
// an in-process registry otherwise.
func (c *Config) NewRegistry(log *zap.Logger) (registry.Registry, error) {
	if len(c.Registry.Endpoints) == 0 {
		return registry.NewMemoryRegistry(), nil
	}
	return registry.NewEtcdRegistry(c.Registry.Endpoints, c.Registry.Prefix, log)
}

func (c *Config) NewNetwork() *transport.Network {
	return transport.NewNetwork(c.CompressThreshold)
}
