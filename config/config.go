package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config is the emulator configuration.
type Config struct {
	// Execution settings
	Execution struct {
		MaxInstructions uint64 `toml:"max_instructions"`
		StackSize       uint32 `toml:"stack_size"`
		DefaultBase     string `toml:"default_base"`
		DefaultEntry    string `toml:"default_entry"`
		EnableTrace     bool   `toml:"enable_trace"`
		EnableFlagTrace bool   `toml:"enable_flag_trace"`
	} `toml:"execution"`

	// Debugger settings
	Debugger struct {
		RunBudget     uint64 `toml:"run_budget"`
		ShowRegisters bool   `toml:"show_registers"`
	} `toml:"debugger"`

	// Trace settings
	Trace struct {
		OutputFile     string `toml:"output_file"`
		FlagOutputFile string `toml:"flag_output_file"`
		MaxEntries     int    `toml:"max_entries"`
	} `toml:"trace"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Execution.MaxInstructions = 10_000_000
	cfg.Execution.StackSize = 0x100000 // 1MB
	cfg.Execution.DefaultBase = "0x81000000"
	cfg.Execution.DefaultEntry = "0x81000001" // Thumb entry
	cfg.Execution.EnableTrace = false
	cfg.Execution.EnableFlagTrace = false

	cfg.Debugger.RunBudget = 10_000_000
	cfg.Debugger.ShowRegisters = true

	cfg.Trace.OutputFile = "trace.log"
	cfg.Trace.FlagOutputFile = "flag_trace.log"
	cfg.Trace.MaxEntries = 100000

	return cfg
}

// GetConfigPath returns the platform-specific config file path.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "psv-emu")

	default:
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "psv-emu")
	}

	return filepath.Join(configDir, "config.toml")
}

// Load reads a configuration file, filling unset values with defaults.
// A missing file is not an error: the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = GetConfigPath()
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration to path, creating directories as
// needed.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = GetConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}
