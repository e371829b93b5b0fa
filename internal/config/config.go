package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	envPrefix = "TOOLBOX"
	// PathEnv names the variable consulted when no config path is given.
	PathEnv = "TOOLBOX_CONFIG"
)

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Port                string        `yaml:"port" envconfig:"PORT"`
	LogLevel            string        `yaml:"log_level" split_words:"true"`
	LogFormat           string        `yaml:"log_format" split_words:"true"`
	CORSOrigins         []string      `yaml:"cors_origins" envconfig:"CORS_ORIGINS"`
	TLSTimeout          time.Duration `yaml:"tls_timeout" envconfig:"TLS_TIMEOUT"`
	PortTimeout         time.Duration `yaml:"port_timeout" split_words:"true"`
	DNSTimeout          time.Duration `yaml:"dns_timeout" envconfig:"DNS_TIMEOUT"`
	DNSNameserver       string        `yaml:"dns_nameserver" envconfig:"DNS_NAMESERVER"`
	RateLimit           int           `yaml:"rate_limit" split_words:"true"`
	RateBurst           int           `yaml:"rate_burst" split_words:"true"`
	Timezone            string        `yaml:"timezone"`
	AllowPrivateTargets bool          `yaml:"allow_private_targets" split_words:"true"`
	TrustProxyHeaders   bool          `yaml:"trust_proxy_headers" split_words:"true"`

	location *time.Location
}

func Default() *Config {
	return &Config{
		Port:        "3000",
		LogLevel:    "info",
		LogFormat:   "json",
		CORSOrigins: []string{"http://localhost:3000"},
		TLSTimeout:  10 * time.Second,
		PortTimeout: 5 * time.Second,
		DNSTimeout:  5 * time.Second,
		RateLimit:   100,
		RateBurst:   20,
		Timezone:    "Local",
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (or $TOOLBOX_CONFIG when path is empty), then TOOLBOX_* environment
// variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(PathEnv)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := cfg.decodeYAML(data); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decodeYAML(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) validate() error {
	if p, err := strconv.Atoi(c.Port); err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("%w: port %q", ErrInvalid, c.Port)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return fmt.Errorf("%w: log_format must be json or text, got %q", ErrInvalid, c.LogFormat)
	}
	for name, d := range map[string]time.Duration{
		"tls_timeout":  c.TLSTimeout,
		"port_timeout": c.PortTimeout,
		"dns_timeout":  c.DNSTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %s", ErrInvalid, name, d)
		}
	}
	if c.RateLimit < 0 || c.RateBurst < 0 {
		return fmt.Errorf("%w: rate limit and burst must not be negative", ErrInvalid)
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("%w: timezone %q: %v", ErrInvalid, c.Timezone, err)
	}
	c.location = loc
	return nil
}

// Location is the zone used for "local" time conversions.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}
