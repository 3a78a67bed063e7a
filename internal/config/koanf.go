package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
}

const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig holds the lowest-precedence values. WriteTimeout covers a
// collection that walks every source sequentially.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              8080,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      120 * time.Second,
			IdleTimeout:       60 * time.Second,
			CORSOrigins:       []string{"*"},
			CollectRateLimit:  30,
		},
		Store: StoreConfig{
			Location: "data/flights.db",
			SeedPath: "",
		},
		Sources: SourcesConfig{
			ExternalAPIKey:   "",
			AviationstackURL: "http://api.aviationstack.com/v1",
			RequestTimeout:   10 * time.Second,
			ScrapeEnabled:    false,
			ScrapeInterval:   2 * time.Second,
			UserAgent:        "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
			Timezone:         "Australia/Sydney",
		},
		LLM: LLMConfig{
			APIKey:    "",
			BaseURL:   "https://api.openai.com/v1",
			Model:     "gpt-3.5-turbo",
			MaxTokens: 300,
			Timeout:   10 * time.Second,
		},
		Collect: CollectConfig{
			DefaultLimit:   200,
			DefaultAirport: "",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load builds a Config from defaults, the first config file found, and the environment.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load config: defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config: file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("load config: environment: %w", err)
	}

	if err := splitCommaList(k, "server.cors_origins"); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("load config: unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// splitCommaList turns a comma separated env value into a string slice.
func splitCommaList(k *koanf.Koanf, path string) error {
	raw, ok := k.Get(path).(string)
	if !ok || raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if err := k.Set(path, out); err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}
	return nil
}

var envMappings = map[string]string{
	"port":                  "server.port",
	"http_write_timeout":    "server.write_timeout",
	"cors_origins":          "server.cors_origins",
	"collect_rate_limit":    "server.collect_rate_limit",
	"database_url":          "store.location",
	"db_path":               "store.location",
	"seed_path":             "store.seed_path",
	"aviationstack_api_key": "sources.external_api_key",
	"aviationstack_url":     "sources.aviationstack_url",
	"request_timeout":       "sources.request_timeout",
	"scrape_enabled":        "sources.scrape_enabled",
	"scrape_interval":       "sources.scrape_interval",
	"scrape_user_agent":     "sources.user_agent",
	"scrape_timezone":       "sources.timezone",
	"openai_api_key":        "llm.api_key",
	"openai_base_url":       "llm.base_url",
	"openai_model":          "llm.model",
	"llm_max_tokens":        "llm.max_tokens",
	"llm_timeout":           "llm.timeout",
	"collect_limit":         "collect.default_limit",
	"default_airport":       "collect.default_airport",
	"log_level":             "logging.level",
	"log_format":            "logging.format",
	"log_caller":            "logging.caller",
}

// envTransformFunc maps known environment variables onto config keys.
// Unknown variables return "" and are ignored by koanf.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
