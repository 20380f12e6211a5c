// Package config loads the process settings from the environment. These are
// bootstrap settings only; the mail configuration edited by the user lives in
// the data directory.
package config

import (
	"fmt"
	"log/slog"
	"net"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/welldanyogia/webrana-mailsender/internal/database"
)

// JournalOff disables the dispatch journal when set as JOURNAL_URL.
const JournalOff = "off"

// Config holds all configuration for the application
type Config struct {
	// Data directory holding the user documents
	DataDir    string `env:"DATA_DIR" envDefault:"./data"`
	ConfigFile string `env:"CONFIG_FILE" envDefault:"config.yaml"`
	RosterFile string `env:"ROSTER_FILE" envDefault:"mail_list.yaml"`

	// Dispatch journal: a postgres URL, a sqlite path, or "off".
	// Empty means journal.db inside DataDir.
	JournalURL string `env:"JOURNAL_URL"`

	// Command bridge
	APIAddr        string        `env:"API_ADDR" envDefault:"127.0.0.1:8080"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS" envSeparator:","`
	NoticeTimeout  time.Duration `env:"NOTICE_TIMEOUT" envDefault:"5m"`

	// Development mail sink
	SinkAddr string `env:"SINK_ADDR" envDefault:"127.0.0.1:2525"`
	// Optional .eml drop directory for the sink
	SinkDir string `env:"SINK_DIR"`
	// STARTTLS certificate pair; both or neither
	SinkTLSCert string `env:"SINK_TLS_CERT"`
	SinkTLSKey  string `env:"SINK_TLS_KEY"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	AppEnv string `env:"APP_ENV" envDefault:"development"`
}

// Load reads configuration from a .env file, if any, and the environment
func Load() (*Config, error) {
	// Missing .env is fine.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	origins := make([]string, 0, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	cfg.AllowedOrigins = origins

	return cfg, nil
}

// LoadWithValidation loads and validates configuration, failing fast on errors
func LoadWithValidation() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.IsProduction() {
		if err := cfg.ValidateProduction(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// ConfigPath is the mail configuration document.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.DataDir, c.ConfigFile)
}

// RosterPath is the roster document.
func (c *Config) RosterPath() string {
	return filepath.Join(c.DataDir, c.RosterFile)
}

// JournalEnabled reports whether dispatches are journaled.
func (c *Config) JournalEnabled() bool {
	return c.JournalURL != JournalOff
}

// JournalDSN is the data source for the dispatch journal.
func (c *Config) JournalDSN() string {
	if c.JournalURL == "" {
		return filepath.Join(c.DataDir, "journal.db")
	}
	return c.JournalURL
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"json", "text"}
)

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("DATA_DIR cannot be empty")
	}
	if c.ConfigFile == "" || c.RosterFile == "" {
		return fmt.Errorf("CONFIG_FILE and ROSTER_FILE cannot be empty")
	}
	if c.ConfigFile == c.RosterFile {
		return fmt.Errorf("CONFIG_FILE and ROSTER_FILE must differ")
	}
	if err := validateAddr("API_ADDR", c.APIAddr); err != nil {
		return err
	}
	if err := validateAddr("SINK_ADDR", c.SinkAddr); err != nil {
		return err
	}
	if (c.SinkTLSCert == "") != (c.SinkTLSKey == "") {
		return fmt.Errorf("SINK_TLS_CERT and SINK_TLS_KEY must be set together")
	}
	if c.NoticeTimeout <= 0 {
		return fmt.Errorf("NOTICE_TIMEOUT must be positive")
	}
	if !slices.Contains(logLevels, strings.ToLower(c.LogLevel)) {
		return fmt.Errorf("LOG_LEVEL must be one of %s", strings.Join(logLevels, ", "))
	}
	if !slices.Contains(logFormats, strings.ToLower(c.LogFormat)) {
		return fmt.Errorf("LOG_FORMAT must be one of %s", strings.Join(logFormats, ", "))
	}
	return nil
}

// ValidateProduction performs additional validation for production environment
func (c *Config) ValidateProduction() error {
	if len(c.AllowedOrigins) == 0 {
		return fmt.Errorf("ALLOWED_ORIGINS is required in production")
	}

	if slices.Contains(c.AllowedOrigins, "*") {
		return fmt.Errorf("wildcard (*) origins are not allowed in production")
	}

	// The bridge carries the relay password; it must not leave the machine.
	host, _, _ := net.SplitHostPort(c.APIAddr)
	if ip := net.ParseIP(host); host != "localhost" && (ip == nil || !ip.IsLoopback()) {
		return fmt.Errorf("API_ADDR must be a loopback address in production")
	}

	if strings.Contains(c.JournalURL, "sslmode=disable") {
		return fmt.Errorf("sslmode=disable is not allowed in production")
	}

	return nil
}

func validateAddr(name, addr string) error {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("%s must be host:port: %w", name, err)
	}
	p, err := strconv.Atoi(port)
	if err != nil || p <= 0 || p > 65535 {
		return fmt.Errorf("%s port must be between 1 and 65535", name)
	}
	return nil
}

// LogConfig logs configuration values (excluding secrets)
func (c *Config) LogConfig(logger *slog.Logger) {
	journal := "disabled"
	if c.JournalEnabled() {
		journal = database.DriverFor(c.JournalDSN())
	}

	logger.Info("configuration loaded",
		slog.String("data_dir", c.DataDir),
		slog.String("config_path", c.ConfigPath()),
		slog.String("roster_path", c.RosterPath()),
		slog.String("journal", journal),
		slog.String("api_addr", c.APIAddr),
		slog.Int("allowed_origins", len(c.AllowedOrigins)),
		slog.Duration("notice_timeout", c.NoticeTimeout),
		slog.String("log_level", c.LogLevel),
		slog.String("log_format", c.LogFormat),
		slog.String("app_env", c.AppEnv),
	)
}
