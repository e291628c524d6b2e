package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. TASKBOARD_API_BASE_URL.
const EnvPrefix = "TASKBOARD"

// Config is the root configuration for a taskboard workspace.
type Config struct {
	Version   int       `yaml:"version" mapstructure:"version"`
	API       API       `yaml:"api" mapstructure:"api"`
	Export    Export    `yaml:"export" mapstructure:"export"`
	Server    Server    `yaml:"server" mapstructure:"server"`
	Predictor Predictor `yaml:"predictor" mapstructure:"predictor"`
	Log       Log       `yaml:"log" mapstructure:"log"`
}

// API describes how to reach the remote task store.
type API struct {
	BaseURL    string `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSec int    `yaml:"timeout_sec" mapstructure:"timeout_sec"` // 0 = no timeout
}

// Export controls where exported files are written.
type Export struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// Server configures the bundled reference store (taskboard serve).
type Server struct {
	Addr        string `yaml:"addr" mapstructure:"addr"`
	DBPath      string `yaml:"db_path" mapstructure:"db_path"`
	DueSoonDays int    `yaml:"due_soon_days" mapstructure:"due_soon_days"`
}

// Predictor configures how the reference store predicts categories.
type Predictor struct {
	Mode       string `yaml:"mode" mapstructure:"mode"`                         // "keyword" or "api"
	Provider   string `yaml:"provider,omitempty" mapstructure:"provider"`       // API provider: openai, anthropic, google
	Model      string `yaml:"model,omitempty" mapstructure:"model"`             // Model name for API mode
	APIKeyEnv  string `yaml:"api_key_env,omitempty" mapstructure:"api_key_env"` // Env var name containing API key
	TimeoutSec int    `yaml:"timeout_sec,omitempty" mapstructure:"timeout_sec"` // 0 = default 30
}

// Log configures diagnostic logging.
type Log struct {
	Level string `yaml:"level" mapstructure:"level"`
	File  string `yaml:"file,omitempty" mapstructure:"file"`
}

// DefaultTimeout returns the effective prediction timeout in seconds.
func (p Predictor) DefaultTimeout() int {
	if p.TimeoutSec > 0 {
		return p.TimeoutSec
	}
	return 30
}

// DefaultConfig returns a starter config pointing at a local store.
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		API: API{
			BaseURL: "http://localhost:5000",
		},
		Export: Export{Dir: "."},
		Server: Server{
			Addr:        ":5000",
			DBPath:      ".taskboard/tasks.db",
			DueSoonDays: 3,
		},
		Predictor: Predictor{Mode: "keyword"},
		Log:       Log{Level: "info"},
	}
}

// Load reads the config file at path and applies TASKBOARD_* environment
// overrides on top. An empty path yields the defaults plus overrides.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// newViper returns a viper instance seeded with every default so that
// environment overrides apply even to keys absent from the file.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := DefaultConfig()
	v.SetDefault("version", d.Version)
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.timeout_sec", d.API.TimeoutSec)
	v.SetDefault("export.dir", d.Export.Dir)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.db_path", d.Server.DBPath)
	v.SetDefault("server.due_soon_days", d.Server.DueSoonDays)
	v.SetDefault("predictor.mode", d.Predictor.Mode)
	v.SetDefault("predictor.provider", d.Predictor.Provider)
	v.SetDefault("predictor.model", d.Predictor.Model)
	v.SetDefault("predictor.api_key_env", d.Predictor.APIKeyEnv)
	v.SetDefault("predictor.timeout_sec", d.Predictor.TimeoutSec)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	return v
}

// LoadDotEnv loads KEY=value pairs from a .env file into the process
// environment. A missing file is not an error; variables already set win.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Save writes the config to the given path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url: must be an absolute http(s) URL, got %q", c.API.BaseURL)
	}
	if c.API.TimeoutSec < 0 {
		return fmt.Errorf("api.timeout_sec: must not be negative")
	}
	if c.Server.DueSoonDays < 0 {
		return fmt.Errorf("server.due_soon_days: must not be negative")
	}
	switch c.Predictor.Mode {
	case "keyword":
	case "api":
		if c.Predictor.Provider == "" {
			return fmt.Errorf("predictor: provider is required for api mode")
		}
		if c.Predictor.APIKeyEnv == "" {
			return fmt.Errorf("predictor: api_key_env is required for api mode")
		}
	default:
		return fmt.Errorf("predictor: mode must be 'keyword' or 'api', got %q", c.Predictor.Mode)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level: unknown level %q", c.Log.Level)
	}
	return nil
}
