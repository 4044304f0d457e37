package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the complete bot configuration.
type Config struct {
	Bot     BotConfig     `json:"bot" yaml:"bot"`
	Sheets  SheetsConfig  `json:"sheets" yaml:"sheets"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
	Risk    RiskConfig    `json:"risk" yaml:"risk"`
	Log     LogConfig     `json:"log" yaml:"log"`
}

const (
	ModePolling = "polling"
	ModeWebhook = "webhook"
)

// BotConfig holds the chat transport settings.
type BotConfig struct {
	Token         string `json:"token,omitempty" yaml:"token,omitempty"`
	APIURL        string `json:"api_url" yaml:"api_url"`
	Mode          string `json:"mode" yaml:"mode"` // "polling" or "webhook"
	WebhookAddr   string `json:"webhook_addr,omitempty" yaml:"webhook_addr,omitempty"`
	WebhookURL    string `json:"webhook_url,omitempty" yaml:"webhook_url,omitempty"` // public base URL
	WebhookSecret string `json:"webhook_secret,omitempty" yaml:"webhook_secret,omitempty"`
	PollTimeout   string `json:"poll_timeout" yaml:"poll_timeout"` // e.g. "30s"
	Workers       int    `json:"workers" yaml:"workers"`
	AdminChatID   int64  `json:"admin_chat_id,omitempty" yaml:"admin_chat_id,omitempty"`
}

// SheetsConfig holds the spreadsheet backend settings. CredentialsJSON is
// only ever read from the environment.
type SheetsConfig struct {
	Enabled         bool   `json:"enabled" yaml:"enabled"`
	CredentialsFile string `json:"credentials_file,omitempty" yaml:"credentials_file,omitempty"`
	CredentialsJSON string `json:"-" yaml:"-"`
	BaseURL         string `json:"base_url" yaml:"base_url"`
	Timeout         string `json:"timeout" yaml:"timeout"`
	MaxRetries      int    `json:"max_retries" yaml:"max_retries"`
	RetryWait       string `json:"retry_wait" yaml:"retry_wait"`
}

type JournalConfig struct {
	Type            string `json:"type" yaml:"type"` // "memory" or "sqlite"
	DBPath          string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	RecomputeOnEdit bool   `json:"recompute_on_edit" yaml:"recompute_on_edit"`
}

// RiskConfig holds the warning thresholds.
type RiskConfig struct {
	MaxRiskPct float64 `json:"max_risk_pct" yaml:"max_risk_pct"`
	MinRR      float64 `json:"min_rr" yaml:"min_rr"`
}

type LogConfig struct {
	Level   string `json:"level" yaml:"level"`
	Format  string `json:"format" yaml:"format"`
	Tracing bool   `json:"tracing" yaml:"tracing"`
}

// Default returns a configuration with sensible defaults. It validates but
// has no bot token.
func Default() *Config {
	return &Config{
		Bot: BotConfig{
			APIURL:      "https://api.telegram.org",
			Mode:        ModePolling,
			WebhookAddr: ":8080",
			PollTimeout: "30s",
			Workers:     8,
		},
		Sheets: SheetsConfig{
			BaseURL:    "https://sheets.googleapis.com",
			Timeout:    "10s",
			MaxRetries: 3,
			RetryWait:  "500ms",
		},
		Journal: JournalConfig{
			Type: "memory",
		},
		Risk: RiskConfig{
			MaxRiskPct: 2.0,
			MinRR:      1.5,
		},
		Log: LogConfig{
			Level:  "INFO",
			Format: "json",
		},
	}
}

// Load reads .env if present, then path (or the defaults when path is
// empty), then the environment, and validates the result.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = LoadFromFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a YAML or JSON file on top of the
// defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		cfg = Default()
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes YAML for .yaml/.yml paths and JSON otherwise.
func (c *Config) SaveToFile(path string) error {
	var (
		data []byte
		err  error
	)
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// ApplyEnv overrides settings from the environment. Setting
// GOOGLE_CREDENTIALS or GOOGLE_CREDENTIALS_FILE turns sheets on.
func (c *Config) ApplyEnv() error {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}

	str("BOT_TOKEN", &c.Bot.Token)
	str("TELEGRAM_API_URL", &c.Bot.APIURL)
	str("LOCKIN_BOT_MODE", &c.Bot.Mode)
	str("LOCKIN_WEBHOOK_ADDR", &c.Bot.WebhookAddr)
	str("LOCKIN_WEBHOOK_SECRET", &c.Bot.WebhookSecret)
	str("LOCKIN_WEBHOOK_URL", &c.Bot.WebhookURL)
	str("LOCKIN_JOURNAL_TYPE", &c.Journal.Type)
	str("LOCKIN_DB_PATH", &c.Journal.DBPath)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)

	if v := os.Getenv("GOOGLE_CREDENTIALS"); strings.TrimSpace(v) != "" {
		c.Sheets.CredentialsJSON = v
		c.Sheets.Enabled = true
	}
	if v := strings.TrimSpace(os.Getenv("GOOGLE_CREDENTIALS_FILE")); v != "" {
		c.Sheets.CredentialsFile = v
		c.Sheets.Enabled = true
	}

	if v := strings.TrimSpace(os.Getenv("LOCKIN_ADMIN_CHAT_ID")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("LOCKIN_ADMIN_CHAT_ID: %w", err)
		}
		c.Bot.AdminChatID = id
	}
	if v := strings.TrimSpace(os.Getenv("LOCKIN_RECOMPUTE_ON_EDIT")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("LOCKIN_RECOMPUTE_ON_EDIT: %w", err)
		}
		c.Journal.RecomputeOnEdit = b
	}
	if v := strings.TrimSpace(os.Getenv("LOG_TRACING_ENABLED")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("LOG_TRACING_ENABLED: %w", err)
		}
		c.Log.Tracing = b
	}
	return nil
}

// Validate checks the configuration is usable. It does not require a bot
// token; see ValidateServe.
func (c *Config) Validate() error {
	if c.Bot.Mode != ModePolling && c.Bot.Mode != ModeWebhook {
		return fmt.Errorf("bot.mode must be 'polling' or 'webhook'")
	}
	if c.Bot.Workers <= 0 {
		return fmt.Errorf("bot.workers must be positive")
	}
	if _, err := ParseDuration(c.Bot.PollTimeout); err != nil {
		return fmt.Errorf("bot.poll_timeout: %w", err)
	}
	if c.Bot.Mode == ModeWebhook && c.Bot.WebhookAddr == "" {
		return fmt.Errorf("bot.webhook_addr required for webhook mode")
	}
	if _, err := ParseDuration(c.Sheets.Timeout); err != nil {
		return fmt.Errorf("sheets.timeout: %w", err)
	}
	if _, err := ParseDuration(c.Sheets.RetryWait); err != nil {
		return fmt.Errorf("sheets.retry_wait: %w", err)
	}
	if c.Sheets.MaxRetries < 0 {
		return fmt.Errorf("sheets.max_retries must not be negative")
	}
	if c.Journal.Type != "memory" && c.Journal.Type != "sqlite" {
		return fmt.Errorf("journal.type must be 'memory' or 'sqlite'")
	}
	if c.Risk.MaxRiskPct <= 0 || c.Risk.MaxRiskPct > 100 {
		return fmt.Errorf("risk.max_risk_pct must be between 0 and 100")
	}
	if c.Risk.MinRR <= 0 {
		return fmt.Errorf("risk.min_rr must be positive")
	}
	return nil
}

// ValidateServe adds the checks that only matter when running the bot.
func (c *Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Bot.Token == "" {
		return fmt.Errorf("bot token is required (set BOT_TOKEN)")
	}
	if c.Sheets.Enabled && c.Sheets.CredentialsJSON == "" && c.Sheets.CredentialsFile == "" {
		return fmt.Errorf("sheets enabled but no credentials (set GOOGLE_CREDENTIALS)")
	}
	if c.Bot.Mode == ModeWebhook && (c.Bot.WebhookSecret == "" || c.Bot.WebhookURL == "") {
		return fmt.Errorf("bot.webhook_url and bot.webhook_secret required for webhook mode")
	}
	return nil
}

// ParseDuration parses s; empty means zero.
func ParseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

// MustDuration is ParseDuration for values that already passed Validate.
func MustDuration(s string) time.Duration {
	d, _ := ParseDuration(s)
	return d
}
