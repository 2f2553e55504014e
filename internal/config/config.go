package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"sectorpulse/internal/sector"
)

// Config represents the complete application configuration
type Config struct {
	Provider ProviderConfig        `yaml:"provider" envconfig:"PROVIDER"`
	Telegram TelegramConfig        `yaml:"telegram" envconfig:"TELEGRAM"`
	Engine   EngineConfig          `yaml:"engine" envconfig:"ENGINE"`
	Logging  LoggingConfig         `yaml:"logging" envconfig:"LOGGING"`
	Watch    []sector.KeywordGroup `yaml:"watchlist" ignored:"true"`
}

// ProviderConfig points at the market-data provider.
type ProviderConfig struct {
	BaseURL string `yaml:"base_url" envconfig:"BASE_URL" validate:"required,url"`
}

// TelegramConfig routes the report. Delivery is skipped (with a warning)
// when token or chat ID are empty, so local runs work without credentials.
type TelegramConfig struct {
	Token  string `yaml:"token" envconfig:"TOKEN"`
	ChatID string `yaml:"chat_id" envconfig:"CHAT_ID"`
}

// EngineConfig controls selection and reconciliation.
type EngineConfig struct {
	// Mode is "top" (single strongest sector) or "watchlist" (fixed
	// keyword-labelled groups).
	Mode          string        `yaml:"mode" envconfig:"MODE" validate:"oneof=top watchlist"`
	LookbackDays  int           `yaml:"lookback_days" envconfig:"LOOKBACK_DAYS" validate:"min=1,max=60"`
	TopK          int           `yaml:"top_k" envconfig:"TOP_K" validate:"min=1,max=50"`
	FetchInterval time.Duration `yaml:"fetch_interval" envconfig:"FETCH_INTERVAL" validate:"min=0"`
	MaxParallel   int           `yaml:"max_parallel" envconfig:"MAX_PARALLEL" validate:"min=1,max=8"`
}

// UnmarshalYAML accepts fetch_interval as a duration string ("150ms").
// Fields absent from the document keep their current values so the file
// overlays defaults instead of replacing them.
func (e *EngineConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	raw := struct {
		Mode          string `yaml:"mode"`
		LookbackDays  int    `yaml:"lookback_days"`
		TopK          int    `yaml:"top_k"`
		FetchInterval string `yaml:"fetch_interval"`
		MaxParallel   int    `yaml:"max_parallel"`
	}{
		Mode:          e.Mode,
		LookbackDays:  e.LookbackDays,
		TopK:          e.TopK,
		FetchInterval: e.FetchInterval.String(),
		MaxParallel:   e.MaxParallel,
	}
	if err := unmarshal(&raw); err != nil {
		return err
	}

	interval, err := time.ParseDuration(raw.FetchInterval)
	if err != nil {
		return fmt.Errorf("invalid fetch_interval %q: %w", raw.FetchInterval, err)
	}

	e.Mode = raw.Mode
	e.LookbackDays = raw.LookbackDays
	e.TopK = raw.TopK
	e.FetchInterval = interval
	e.MaxParallel = raw.MaxParallel
	return nil
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=stdout file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// Default returns the default configuration. The default watch-list mirrors
// the deployed sector map; keywords stay in the provider's label language
// because matching is a literal substring check against provider text.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			Mode:          "top",
			LookbackDays:  10,
			TopK:          10,
			FetchInterval: 150 * time.Millisecond,
			MaxParallel:   1,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "stdout",
			FilePath: "logs/sectorpulse.log",
		},
		Watch: []sector.KeywordGroup{
			{Label: "Semiconductors", Keyword: "반도체", TopK: 5},
			{Label: "Shipbuilding", Keyword: "선박", TopK: 5},
			{Label: "Defense", Keyword: "항공기", TopK: 5},
			{Label: "Nuclear", Keyword: "전기", TopK: 5},
			{Label: "Robotics", Keyword: "기계", TopK: 5},
			{Label: "Autos", Keyword: "자동차", TopK: 5},
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path (empty path probes the usual locations) and SECTORPULSE_* environment
// variables, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = probeConfigFile()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process("SECTORPULSE", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays YAML file values onto cfg.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks the configuration against its struct constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	if c.Engine.Mode == "watchlist" && len(c.Watch) == 0 {
		return fmt.Errorf("watchlist mode requires at least one watch group")
	}
	for i, g := range c.Watch {
		if g.Label == "" || g.Keyword == "" {
			return fmt.Errorf("watch group %d: label and keyword are required", i)
		}
		if g.TopK <= 0 {
			return fmt.Errorf("watch group %q: top_k must be positive", g.Label)
		}
	}

	if (c.Telegram.Token == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram token and chat_id must be set together")
	}

	return nil
}

// DeliveryConfigured reports whether Telegram credentials are present.
func (c *Config) DeliveryConfigured() bool {
	return c.Telegram.Token != "" && c.Telegram.ChatID != ""
}

// probeConfigFile returns the first config file found in common locations.
func probeConfigFile() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}
