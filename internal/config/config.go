package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// SystemPrompt is the fixed instruction sent as the first chat message.
const SystemPrompt = "You are a precise OCR + translation assistant." +
	" 1) Extract *all* text from the image with exact spacing and line breaks." +
	" 2) Preserve code blocks and inline code verbatim; do not translate code." +
	" 3) For natural-language text, translate to Japanese with faithful meaning, no summary." +
	" 4) Keep ordering; do not drop bullet points or lines." +
	" 5) Output must be Markdown."

// Config holds the application configuration
type Config struct {
	APIBase        string        `mapstructure:"api_base"`
	CtxSize        int           `mapstructure:"ctx_size"`
	ModelName      string        `mapstructure:"model_name"`
	LogPath        string        `mapstructure:"log_path"`
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	ProbeTimeout   time.Duration `mapstructure:"probe_timeout"`
	StaticDir      string        `mapstructure:"static_dir"`
	Debug          bool          `mapstructure:"debug"`
}

// Keys lists the settings accepted by Save and the config command.
var Keys = []string{
	"api_base",
	"ctx_size",
	"model_name",
	"log_path",
	"host",
	"port",
	"request_timeout",
	"probe_timeout",
	"static_dir",
	"debug",
}

var envNames = map[string]string{
	"api_base":        "LLAMA_SERVER_URL",
	"ctx_size":        "LLAMA_CTX",
	"model_name":      "LLAMA_MODEL_NAME",
	"log_path":        "LLAMA_LOG_PATH",
	"host":            "TRANSLATOR_HOST",
	"port":            "TRANSLATOR_PORT",
	"request_timeout": "LLAMA_REQUEST_TIMEOUT",
	"probe_timeout":   "LLAMA_PROBE_TIMEOUT",
	"static_dir":      "TRANSLATOR_STATIC_DIR",
	"debug":           "TRANSLATOR_DEBUG",
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		APIBase:        "http://127.0.0.1:8009",
		CtxSize:        8192,
		ModelName:      "qwen3-vl",
		LogPath:        "llama-server.log",
		Host:           "127.0.0.1",
		Port:           8000,
		RequestTimeout: 300 * time.Second,
		ProbeTimeout:   5 * time.Second,
	}
}

// Load loads configuration with precedence: ENV vars > config file > defaults
func Load() (*Config, error) {
	return load(true)
}

// LoadFile loads the saved file over the defaults, ignoring the environment.
// It is the base for edits that are written back with Save.
func LoadFile() (*Config, error) {
	return load(false)
}

func load(withEnv bool) (*Config, error) {
	v := viper.New()

	defaultCfg := DefaultConfig()
	v.SetDefault("api_base", defaultCfg.APIBase)
	v.SetDefault("ctx_size", defaultCfg.CtxSize)
	v.SetDefault("model_name", defaultCfg.ModelName)
	v.SetDefault("log_path", defaultCfg.LogPath)
	v.SetDefault("host", defaultCfg.Host)
	v.SetDefault("port", defaultCfg.Port)
	v.SetDefault("request_timeout", defaultCfg.RequestTimeout)
	v.SetDefault("probe_timeout", defaultCfg.ProbeTimeout)
	v.SetDefault("static_dir", defaultCfg.StaticDir)
	v.SetDefault("debug", defaultCfg.Debug)

	v.SetConfigName("config")
	v.SetConfigType("json")

	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}
	v.AddConfigPath(configDir)

	if withEnv {
		for key, env := range envNames {
			_ = v.BindEnv(key, env)
		}
	}

	// Try to read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.APIBase = strings.TrimRight(cfg.APIBase, "/")
	if cfg.CtxSize <= 0 {
		return nil, fmt.Errorf("ctx_size must be positive, got %d", cfg.CtxSize)
	}

	return &cfg, nil
}

// Save saves the configuration to file
func Save(cfg *Config) error {
	configDir, err := getConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(configDir)

	v.Set("api_base", cfg.APIBase)
	v.Set("ctx_size", cfg.CtxSize)
	v.Set("model_name", cfg.ModelName)
	v.Set("log_path", cfg.LogPath)
	v.Set("host", cfg.Host)
	v.Set("port", cfg.Port)
	v.Set("request_timeout", cfg.RequestTimeout.String())
	v.Set("probe_timeout", cfg.ProbeTimeout.String())
	v.Set("static_dir", cfg.StaticDir)
	v.Set("debug", cfg.Debug)

	configPath := filepath.Join(configDir, "config.json")
	if err := v.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// EnvName returns the environment variable that overrides key.
func EnvName(key string) string {
	return envNames[key]
}

// getConfigDir returns the configuration directory path (XDG-compliant)
func getConfigDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "screenshot-translator"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "screenshot-translator"), nil
}
