// Package config loads service configuration from struct defaults, an optional
// YAML file and the environment, in that order of precedence.
package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
)

// Config is passed explicitly into each component at construction.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Store   StoreConfig   `koanf:"store"`
	Sources SourcesConfig `koanf:"sources"`
	LLM     LLMConfig     `koanf:"llm"`
	Collect CollectConfig `koanf:"collect"`
	Logging LoggingConfig `koanf:"logging"`
}

type ServerConfig struct {
	Port              int           `koanf:"port" validate:"min=1,max=65535"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout" validate:"gt=0"`
	ReadTimeout       time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout      time.Duration `koanf:"write_timeout" validate:"gt=0"`
	IdleTimeout       time.Duration `koanf:"idle_timeout" validate:"gt=0"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	CollectRateLimit  int           `koanf:"collect_rate_limit" validate:"min=0"`
}

// StoreConfig.Location is either a filesystem path (sqlite) or a postgres URI.
type StoreConfig struct {
	Location string `koanf:"location" validate:"required"`
	SeedPath string `koanf:"seed_path"`
}

type SourcesConfig struct {
	ExternalAPIKey   string            `koanf:"external_api_key"`
	AviationstackURL string            `koanf:"aviationstack_url" validate:"required,url"`
	RequestTimeout   time.Duration     `koanf:"request_timeout" validate:"gt=0"`
	ScrapeEnabled    bool              `koanf:"scrape_enabled"`
	ScrapeInterval   time.Duration     `koanf:"scrape_interval" validate:"min=0"`
	UserAgent        string            `koanf:"user_agent" validate:"required"`
	Timezone         string            `koanf:"timezone" validate:"required"`
	AirportSiteURLs  map[string]string `koanf:"airport_site_urls"`
	FlightBoardURLs  map[string]string `koanf:"flight_board_urls"`
}

type LLMConfig struct {
	APIKey    string        `koanf:"api_key"`
	BaseURL   string        `koanf:"base_url" validate:"required,url"`
	Model     string        `koanf:"model" validate:"required"`
	MaxTokens int           `koanf:"max_tokens" validate:"min=1"`
	Timeout   time.Duration `koanf:"timeout" validate:"gt=0"`
}

type CollectConfig struct {
	DefaultLimit   int    `koanf:"default_limit" validate:"min=1,max=1000"`
	DefaultAirport string `koanf:"default_airport" validate:"omitempty,len=3,alpha"`
}

type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// HasExternalAPIKey reports whether the paid flight API credential is configured.
func (c *Config) HasExternalAPIKey() bool {
	return strings.TrimSpace(c.Sources.ExternalAPIKey) != ""
}

// HasLLMKey reports whether the LLM credential is configured.
func (c *Config) HasLLMKey() bool {
	return strings.TrimSpace(c.LLM.APIKey) != ""
}

// Location resolves the configured scrape timezone, defaulting to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Sources.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Validate checks struct constraints and cross-field rules.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	if _, err := time.LoadLocation(c.Sources.Timezone); err != nil {
		return fmt.Errorf("validate config: sources.timezone %q: %w", c.Sources.Timezone, err)
	}
	return nil
}
