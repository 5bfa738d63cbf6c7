package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Davis1233798/proxyrotator-go/pkg/rotator"
)

// NoProxyIndex leaves the rotator in rotating mode.
const NoProxyIndex = -1

type Config struct {
	Proxies    []string      `envconfig:"ROTATOR_PROXIES"`
	Timeout    time.Duration `envconfig:"ROTATOR_TIMEOUT" default:"5s"`
	Retries    int           `envconfig:"ROTATOR_RETRIES" default:"3"`
	ProxyIndex int           `envconfig:"ROTATOR_PROXY_INDEX" default:"-1"`
	Debug      bool          `envconfig:"ROTATOR_DEBUG" default:"false"`

	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	MetricsPort int    `envconfig:"METRICS_PORT" default:"0"`
}

// Load reads an optional .env file and then the process environment.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil {
		log.Info().Err(err).Msg("No .env file found, using environment variables")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	return &cfg, nil
}

// RotatorOptions maps the configuration onto rotator options.
func (c *Config) RotatorOptions(l zerolog.Logger) []rotator.Option {
	opts := []rotator.Option{
		rotator.WithTimeout(c.Timeout),
		rotator.WithRetries(c.Retries),
		rotator.WithDebug(c.Debug),
		rotator.WithLogger(l),
	}
	if len(c.Proxies) > 0 {
		opts = append(opts, rotator.WithProxies(c.Proxies...))
	}
	if c.ProxyIndex != NoProxyIndex {
		opts = append(opts, rotator.WithProxyIndex(c.ProxyIndex))
	}
	return opts
}
