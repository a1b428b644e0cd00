package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	configDir      = ".macrod"
	configFileName = "config.yaml"
)

// Loader handles loading configuration files
type Loader struct {
	globalPath string
}

// NewLoader creates a new configuration loader
func NewLoader() (*Loader, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	return &Loader{
		globalPath: filepath.Join(homeDir, configDir, configFileName),
	}, nil
}

// Load loads the global configuration, falling back to defaults when no
// file exists. File values are merged over the defaults.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	fileCfg, err := l.loadFile(l.globalPath)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if fileCfg != nil {
		cfg = mergeConfigs(cfg, fileCfg)
	}

	return cfg, nil
}

// LoadFromFile loads configuration from a specific file, merged over
// the defaults.
func (l *Loader) LoadFromFile(path string) (*Config, error) {
	fileCfg, err := l.loadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return mergeConfigs(DefaultConfig(), fileCfg), nil
}

// GlobalConfigPath returns the path to the global config file
func (l *Loader) GlobalConfigPath() string {
	return l.globalPath
}

func (l *Loader) loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return &cfg, nil
}

// mergeConfigs merges two configurations, with override taking
// precedence for set values. Booleans whose section appears in the
// override replace the base outright.
func mergeConfigs(base, override *Config) *Config {
	result := &Config{
		Version: coalesce(override.Version, base.Version),
		Settings: Settings{
			LogLevel: coalesce(override.Settings.LogLevel, base.Settings.LogLevel),
			LogFile:  coalesce(override.Settings.LogFile, base.Settings.LogFile),
			Hotkeys:  mergeHotkeySettings(base.Settings.Hotkeys, override.Settings.Hotkeys),
			Daemon:   base.Settings.Daemon,
			History:  mergeHistorySettings(base.Settings.History, override.Settings.History),
		},
	}

	if override.Settings.Daemon.Port != 0 {
		result.Settings.Daemon.Port = override.Settings.Daemon.Port
	}

	return result
}

// mergeHotkeySettings merges hotkey settings. Disabling in either
// config sticks; the playback repeat count is adopted when the
// override sets one.
func mergeHotkeySettings(base, override HotkeySettings) HotkeySettings {
	result := base
	result.Disabled = base.Disabled || override.Disabled
	if override.Repeat != 0 {
		result.Repeat = override.Repeat
	}
	return result
}

// mergeHistorySettings merges history settings, with override taking
// precedence for set values. Since "not set" and "set to false" are
// indistinguishable for bool, Enabled is only adopted when the override
// configures any history setting.
func mergeHistorySettings(base, override HistorySettings) HistorySettings {
	result := base
	if override.Enabled || override.StoragePath != "" || override.MaxSessions != 0 {
		result.Enabled = override.Enabled
	}
	if override.StoragePath != "" {
		result.StoragePath = override.StoragePath
	}
	if override.MaxSessions != 0 {
		result.MaxSessions = override.MaxSessions
	}
	return result
}

func coalesce(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
