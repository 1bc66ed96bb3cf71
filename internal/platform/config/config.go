// Copyright (c) 2026 Herdcount. All rights reserved.

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. A '.env' file in the
working directory, when present, is loaded first and never overrides variables
already set in the process environment.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, services) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/netip"
	"net/url"
	"strings"
	"time"
	// Embedded zoneinfo so TIMEZONE resolves in minimal containers.
	_ "time/tzdata"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/herdcount/herdcount/internal/platform/constants"
)

// # Configuration Schema

// Config holds all runtime configuration for the Herdcount API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"5000"`
	Environment string `env:"ENVIRONMENT"  envDefault:"production"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value store (Redis). Empty disables the login throttle.
	RedisURL string `env:"REDIS_URL"`

	// Session signing
	JWTSecret string        `env:"JWT_SECRET,required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`

	// Timezone defines the calendar day used by "today" aggregations.
	Timezone string `env:"TIMEZONE" envDefault:"Local"`

	// DeviceStaleAfter is the silence after which a device reads as stale.
	DeviceStaleAfter time.Duration `env:"DEVICE_STALE_AFTER" envDefault:"3m"`

	// Login throttle
	LoginMaxAttempts   int           `env:"LOGIN_MAX_ATTEMPTS"   envDefault:"5"`
	LoginAttemptWindow time.Duration `env:"LOGIN_ATTEMPT_WINDOW" envDefault:"15m"`

	// Cross-Origin Resource Sharing: comma separated hosts; subdomains match.
	AllowedOriginSuffix string `env:"ALLOWED_ORIGIN_SUFFIX"`

	// TrustedProxies lists comma separated IPs or CIDRs of reverse proxies
	// whose X-Real-IP and X-Forwarded-For headers are believed.
	TrustedProxies string `env:"TRUSTED_PROXIES"`

	location *time.Location
	proxies  []netip.Prefix
}

// # Configuration Loading

// Load reads an optional .env file then parses environment variables into
// a [Config] struct.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to read .env file: %w", err)
	}
	return Parse()
}

// Parse maps the current process environment into a [Config] and validates it.
func Parse() (*Config, error) {
	cfg := &Config{}

	// This fails if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	location, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("config: invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	c.location = location

	if c.TokenTTL <= 0 {
		c.TokenTTL = constants.DefaultSessionTTL
	}
	if c.DeviceStaleAfter <= 0 {
		return fmt.Errorf("config: DEVICE_STALE_AFTER must be positive")
	}
	if c.LoginMaxAttempts < 1 {
		return fmt.Errorf("config: LOGIN_MAX_ATTEMPTS must be at least 1")
	}
	if c.LoginAttemptWindow <= 0 {
		return fmt.Errorf("config: LOGIN_ATTEMPT_WINDOW must be positive")
	}

	proxies, err := parseProxies(c.TrustedProxies)
	if err != nil {
		return err
	}
	c.proxies = proxies
	return nil
}

func parseProxies(list string) ([]netip.Prefix, error) {
	var prefixes []netip.Prefix
	for _, entry := range strings.Split(list, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("config: invalid TRUSTED_PROXIES entry %q: %w", entry, err)
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("config: invalid TRUSTED_PROXIES entry %q: %w", entry, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// Proxies returns the parsed trusted proxy ranges.
func (c *Config) Proxies() []netip.Prefix {
	return c.proxies
}

// Location returns the timezone that bounds a calendar day.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// OriginAllowed reports whether a browser origin may call the API.
//
// A configured entry matches its own host and any subdomain of it. Ports are
// ignored.
func (c *Config) OriginAllowed(origin string) bool {
	parsed, err := url.Parse(origin)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return false
	}

	for _, suffix := range strings.Split(c.AllowedOriginSuffix, ",") {
		suffix = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(suffix), "."))
		if suffix == "" {
			continue
		}
		if host == suffix || strings.HasSuffix(host, "."+suffix) {
			return true
		}
	}
	return false
}
