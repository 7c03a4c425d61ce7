package appconfig

import (
	"pkt.systems/gdbx/internal/userhome"
)

// Config is the top-level application configuration.
type Config struct {
	ConfigVersion int           `mapstructure:"config_version" yaml:"config_version"`
	GDB           GDBConfig     `mapstructure:"gdb" yaml:"gdb"`
	Drain         DrainConfig   `mapstructure:"drain" yaml:"drain"`
	Stack         StackConfig   `mapstructure:"stack" yaml:"stack"`
	Console       ConsoleConfig `mapstructure:"console" yaml:"console"`
}

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// GDBConfig selects the debugger executable and its wire settings.
type GDBConfig struct {
	Binary string   `mapstructure:"binary" yaml:"binary"`
	Args   []string `mapstructure:"args" yaml:"args"`
	Prompt string   `mapstructure:"prompt" yaml:"prompt"`
}

// DrainConfig tunes the prompt drain loop.
type DrainConfig struct {
	PollIntervalMS int `mapstructure:"poll_interval_ms" yaml:"poll_interval_ms"`
	TimeoutMS      int `mapstructure:"timeout_ms" yaml:"timeout_ms"`
}

// StackConfig controls stack snapshot queries.
type StackConfig struct {
	Words int `mapstructure:"words" yaml:"words"`
}

// ConsoleConfig controls the readline front end.
type ConsoleConfig struct {
	HistoryFile string `mapstructure:"history_file" yaml:"history_file"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() (Config, error) {
	history, err := userhome.Path("history")
	if err != nil {
		return Config{}, err
	}
	return Config{
		ConfigVersion: CurrentConfigVersion,
		GDB: GDBConfig{
			Binary: "gdb",
			Args:   []string{},
			Prompt: "(gdb) ",
		},
		Drain: DrainConfig{
			PollIntervalMS: 2,
			TimeoutMS:      0,
		},
		Stack: StackConfig{
			Words: 24,
		},
		Console: ConsoleConfig{
			HistoryFile: history,
		},
	}, nil
}

// DefaultConfigPath returns the standard config path.
func DefaultConfigPath() (string, error) {
	return userhome.Path("config.yaml")
}
