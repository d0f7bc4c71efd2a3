package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ingestmon/internal/parser"

	"github.com/spf13/viper"
)

type Config struct {
	Port         int           `mapstructure:"port"`
	LogPath      string        `mapstructure:"log_path"`
	TailLines    int           `mapstructure:"tail_lines"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	Debounce     time.Duration `mapstructure:"debounce"`
	ProcessName  string        `mapstructure:"process_name"`
	HistorySize  int           `mapstructure:"history_size"`
	OldestFirst  bool          `mapstructure:"oldest_first"`
	Permissive   bool          `mapstructure:"permissive"`
	Extensions   []string      `mapstructure:"extensions"`
	DBPath       string        `mapstructure:"db_path"`
	StaticDir    string        `mapstructure:"static_dir"`
}

var Default = Config{
	Port:         3000,
	LogPath:      "/var/log/media-ingest.log",
	TailLines:    200,
	PollInterval: time.Second,
	Debounce:     100 * time.Millisecond,
	ProcessName:  "rsync",
	HistorySize:  parser.DefaultHistorySize,
	OldestFirst:  false,
	Permissive:   false,
	Extensions:   parser.DefaultExtensions,
	DBPath:       "ingestmon.db",
	StaticDir:    filepath.Join("client", "dist"),
}

// Load reads ~/.ingestmon/config.yaml, overlaid by INGESTMON_* variables.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home dir: %w", err)
	}

	configDir := filepath.Join(home, ".ingestmon")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config dir: %w", err)
	}

	return LoadFrom(configDir)
}

// LoadFrom is Load with an explicit config directory. A relative db_path is
// resolved against that directory.
func LoadFrom(configDir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	v.SetDefault("port", Default.Port)
	v.SetDefault("log_path", Default.LogPath)
	v.SetDefault("tail_lines", Default.TailLines)
	v.SetDefault("poll_interval", Default.PollInterval)
	v.SetDefault("debounce", Default.Debounce)
	v.SetDefault("process_name", Default.ProcessName)
	v.SetDefault("history_size", Default.HistorySize)
	v.SetDefault("oldest_first", Default.OldestFirst)
	v.SetDefault("permissive", Default.Permissive)
	v.SetDefault("extensions", Default.Extensions)
	v.SetDefault("db_path", Default.DBPath)
	v.SetDefault("static_dir", Default.StaticDir)

	v.SetEnvPrefix("INGESTMON")
	v.AutomaticEnv()
	// PORT is what the dashboard has always been started with.
	if err := v.BindEnv("port", "INGESTMON_PORT", "PORT"); err != nil {
		return nil, fmt.Errorf("failed to bind port env: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := errors.AsType[viper.ConfigFileNotFoundError](err); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.DBPath != "" && !filepath.IsAbs(cfg.DBPath) {
		cfg.DBPath = filepath.Join(configDir, cfg.DBPath)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch {
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("invalid port: %d", c.Port)
	case c.LogPath == "":
		return errors.New("log_path is required")
	case c.TailLines <= 0:
		return fmt.Errorf("tail_lines must be positive, got %d", c.TailLines)
	case c.PollInterval <= 0:
		return fmt.Errorf("poll_interval must be positive, got %s", c.PollInterval)
	case c.HistorySize <= 0:
		return fmt.Errorf("history_size must be positive, got %d", c.HistorySize)
	}

	return nil
}

func (c *Config) ParserConfig() parser.Config {
	return parser.Config{
		HistorySize: c.HistorySize,
		OldestFirst: c.OldestFirst,
		Permissive:  c.Permissive,
		Extensions:  c.Extensions,
	}
}
