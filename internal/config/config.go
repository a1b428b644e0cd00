package config

// Config represents the complete macrod configuration
type Config struct {
	Version  string   `yaml:"version"`
	Settings Settings `yaml:"settings"`
}

// Settings contains global configuration settings
type Settings struct {
	LogLevel string          `yaml:"log_level"`
	LogFile  string          `yaml:"log_file,omitempty"`
	Hotkeys  HotkeySettings  `yaml:"hotkeys"`
	Daemon   DaemonSettings  `yaml:"daemon"`
	History  HistorySettings `yaml:"history"`
}

// HotkeySettings controls the global hotkey listener. The bindings
// themselves are fixed (Ctrl+Z/X/C/V for start/stop recording and
// start/stop playback). The listener is on unless disabled. Repeat is
// the iteration count used when playback is started by hotkey.
type HotkeySettings struct {
	Disabled bool `yaml:"disabled,omitempty"`
	Repeat   int  `yaml:"repeat,omitempty"`
}

// DaemonSettings configures the control daemon's HTTP surface
type DaemonSettings struct {
	Port int `yaml:"port"`
}

// HistorySettings configures the session-history store. Only session
// metadata is persisted; recorded action sequences never leave memory.
type HistorySettings struct {
	Enabled     bool   `yaml:"enabled"`
	StoragePath string `yaml:"storage_path,omitempty"`
	MaxSessions int    `yaml:"max_sessions,omitempty"`
}

// DefaultPort is the daemon's default listen port.
const DefaultPort = 8746

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: "1",
		Settings: Settings{
			LogLevel: "info",
			Hotkeys:  HotkeySettings{Repeat: 1},
			Daemon:   DaemonSettings{Port: DefaultPort},
			History: HistorySettings{
				Enabled:     true,
				MaxSessions: 500,
			},
		},
	}
}
