package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultFile  = "tokenlist.yaml"
	DefaultTable = "tokens"

	FormatText  = "text"
	FormatTable = "table"
)

type Config struct {
	Tokens      string `yaml:"tokens"`
	Out         string `yaml:"out"`
	Format      string `yaml:"format"`
	DatabaseURL string `yaml:"database_url"`
	Table       string `yaml:"table"`
	LogLevel    string `yaml:"log_level"`
}

type Flags struct {
	Tokens  string
	Out     string
	Format  string
	URL     string
	Table   string
	Verbose bool
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Tokens = expandEnv(cfg.Tokens)
	cfg.Out = expandEnv(cfg.Out)
	cfg.Format = expandEnv(cfg.Format)
	cfg.DatabaseURL = expandEnv(cfg.DatabaseURL)
	cfg.Table = expandEnv(cfg.Table)
	cfg.LogLevel = expandEnv(cfg.LogLevel)

	return &cfg, nil
}

// LoadOptional behaves like Load but returns an empty config when path does
// not exist.
func LoadOptional(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Config{}, nil
	}
	return Load(path)
}

func (c *Config) GetTokens(flags *Flags) string {
	if flags != nil && flags.Tokens != "" {
		return flags.Tokens
	}
	if c.Tokens != "" {
		return c.Tokens
	}
	return "tokens.json"
}

// GetOut defaults to the input file: mutating commands rewrite in place.
func (c *Config) GetOut(flags *Flags) string {
	if flags != nil && flags.Out != "" {
		return flags.Out
	}
	if c.Out != "" {
		return c.Out
	}
	return c.GetTokens(flags)
}

func (c *Config) GetFormat(flags *Flags) (string, error) {
	format := FormatText
	if flags != nil && flags.Format != "" {
		format = flags.Format
	} else if c.Format != "" {
		format = c.Format
	}

	switch format {
	case FormatText, FormatTable:
		return format, nil
	}
	return "", fmt.Errorf("unknown format %q (must be %s or %s)", format, FormatText, FormatTable)
}

func (c *Config) GetDatabaseURL(flags *Flags) (string, error) {
	if flags != nil && flags.URL != "" {
		return flags.URL, nil
	}
	if c.DatabaseURL != "" {
		return c.DatabaseURL, nil
	}
	return "", fmt.Errorf("database_url is required (set in config or pass --url flag)")
}

func (c *Config) GetTable(flags *Flags) string {
	if flags != nil && flags.Table != "" {
		return flags.Table
	}
	if c.Table != "" {
		return c.Table
	}
	return DefaultTable
}

// GetLogLevel resolves the diagnostic log level. --verbose always wins.
func (c *Config) GetLogLevel(flags *Flags) (slog.Level, error) {
	if flags != nil && flags.Verbose {
		return slog.LevelDebug, nil
	}
	if c.LogLevel == "" {
		return slog.LevelWarn, nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

func expandEnv(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		envVar := s[2 : len(s)-1]
		return os.Getenv(envVar)
	}
	return os.ExpandEnv(s)
}
