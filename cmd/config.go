package cmd

import (
	"fmt"
	"log"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/chew-z/screenshot-translator/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Manage configuration settings for screenshot-translator.`,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Long: `Set a configuration value. Supported keys:
- api_base: Base URL of the llama server (default: http://127.0.0.1:8009)
- ctx_size: Default context size in tokens (default: 8192)
- model_name: Model name sent to the server (default: qwen3-vl)
- log_path: llama server log file to inspect (default: llama-server.log)
- host: Host to bind server to (default: 127.0.0.1)
- port: Port to listen on (default: 8000)
- request_timeout: Timeout of a translation call (default: 5m0s)
- probe_timeout: Timeout of each status probe (default: 5s)
- static_dir: Directory holding the web front-end (default: disabled)
- debug: Verbose logging (default: false)

Environment variables still take precedence over the saved file.`,
	Args: cobra.ExactArgs(2),
	Run:  runConfigSet,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Get a configuration value",
	Long:  `Get the effective value of a configuration key (file, environment and defaults combined).`,
	Args:  cobra.ExactArgs(1),
	Run:   runConfigGet,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
}

func validKeys() string {
	return strings.Join(config.Keys, ", ")
}

func runConfigSet(cmd *cobra.Command, args []string) {
	key := args[0]
	value := args[1]

	if !slices.Contains(config.Keys, key) {
		log.Fatalf("Invalid key: %s. Valid keys are: %s", key, validKeys())
	}

	cfg, err := config.LoadFile()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := saveValue(cfg, key, value); err != nil {
		log.Fatalf("%v", err)
	}

	fmt.Printf("Configuration updated: %s = %s\n", key, value)
	if env := config.EnvName(key); env != "" {
		fmt.Printf("Note: %s overrides this value when set.\n", env)
	}
}

func runConfigGet(cmd *cobra.Command, args []string) {
	key := args[0]

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	value, ok := lookupValue(cfg, key)
	if !ok {
		log.Fatalf("Invalid key: %s. Valid keys are: %s", key, validKeys())
	}

	if value == "" {
		fmt.Printf("%s is not set\n", key)
	} else {
		fmt.Printf("%s = %s\n", key, value)
	}
}

// saveValue writes key=value on top of base, the file-only view of the
// configuration, so environment overrides are never persisted.
func saveValue(base *config.Config, key, value string) error {
	if err := applyValue(base, key, value); err != nil {
		return fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	if err := config.Save(base); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	return nil
}

func applyValue(cfg *config.Config, key, value string) error {
	switch key {
	case "api_base":
		cfg.APIBase = strings.TrimRight(value, "/")
	case "ctx_size":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		if n <= 0 {
			return fmt.Errorf("must be positive")
		}
		cfg.CtxSize = n
	case "model_name":
		cfg.ModelName = value
	case "log_path":
		cfg.LogPath = value
	case "host":
		cfg.Host = value
	case "port":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.Port = n
	case "request_timeout", "probe_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		if key == "request_timeout" {
			cfg.RequestTimeout = d
		} else {
			cfg.ProbeTimeout = d
		}
	case "static_dir":
		cfg.StaticDir = value
	case "debug":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		cfg.Debug = b
	default:
		return fmt.Errorf("unknown key")
	}
	return nil
}

func lookupValue(cfg *config.Config, key string) (string, bool) {
	switch key {
	case "api_base":
		return cfg.APIBase, true
	case "ctx_size":
		return strconv.Itoa(cfg.CtxSize), true
	case "model_name":
		return cfg.ModelName, true
	case "log_path":
		return cfg.LogPath, true
	case "host":
		return cfg.Host, true
	case "port":
		return strconv.Itoa(cfg.Port), true
	case "request_timeout":
		return cfg.RequestTimeout.String(), true
	case "probe_timeout":
		return cfg.ProbeTimeout.String(), true
	case "static_dir":
		return cfg.StaticDir, true
	case "debug":
		return strconv.FormatBool(cfg.Debug), true
	}
	return "", false
}
