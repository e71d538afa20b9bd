package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/viper"
)

// Config holds the settings shared by the relay, the web client and the CLI
type Config struct {
	ServerAddr     string        `mapstructure:"server_addr"`
	GinMode        string        `mapstructure:"gin_mode"`
	BackendURL     string        `mapstructure:"backend_url"`
	BackendAPIKey  string        `mapstructure:"backend_api_key"`
	AllowOrigins   []string      `mapstructure:"allow_origins"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	LogLevel       string        `mapstructure:"log_level"`

	// Web client
	WebAddr    string        `mapstructure:"web_addr"`
	RelayURL   string        `mapstructure:"relay_url"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
	SessionMax int           `mapstructure:"session_max"`

	// Mock backend
	MockBackendAddr string `mapstructure:"mock_backend_addr"`
}

// Defaults used when neither the config file nor the environment set a value
var defaults = map[string]interface{}{
	"server_addr":     ":8080",
	"gin_mode":        "debug",
	"backend_url":     "http://0.0.0.0:7860",
	"backend_api_key": "",
	"allow_origins":   []string{"http://localhost:3000"},
	"request_timeout": 60 * time.Second,
	"log_level":       "info",
	"web_addr":        ":3000",
	"relay_url":       "http://localhost:8080/api/proxy",
	"session_ttl":     30 * time.Minute,
	"session_max":     1000,

	// Where the relay expects the backend by default
	"mock_backend_addr": ":7860",
}

// Load reads imagesearch.yaml from the working directory (if present) and
// applies environment overrides such as BACKEND_API_KEY and SERVER_ADDR.
func Load() (Config, error) {
	return load(viper.New(), ".")
}

func load(v *viper.Viper, configPath string) (Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("imagesearch")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode config: %w", err)
	}

	// AutomaticEnv yields a plain string for list keys
	if len(cfg.AllowOrigins) == 1 && strings.Contains(cfg.AllowOrigins[0], ",") {
		cfg.AllowOrigins = strings.Split(cfg.AllowOrigins[0], ",")
	}

	cfg.BackendURL = strings.TrimRight(cfg.BackendURL, "/")
	if !strings.HasPrefix(cfg.BackendURL, "http://") && !strings.HasPrefix(cfg.BackendURL, "https://") {
		cfg.BackendURL = "http://" + cfg.BackendURL
	}
	cfg.RelayURL = strings.TrimRight(cfg.RelayURL, "/")

	return cfg, nil
}

// NewLogger builds the process logger at the configured level
func (c Config) NewLogger(name string) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:  name,
		Level: hclog.LevelFromString(c.LogLevel),
	})
}
