package appconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Load reads configuration from the provided path. If path is empty, the
// default location is used; a missing file yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return Config{}, err
		}
		path = defaultPath
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("config_version", cfg.ConfigVersion)
	v.SetDefault("gdb.binary", cfg.GDB.Binary)
	v.SetDefault("gdb.args", cfg.GDB.Args)
	v.SetDefault("gdb.prompt", cfg.GDB.Prompt)
	v.SetDefault("drain.poll_interval_ms", cfg.Drain.PollIntervalMS)
	v.SetDefault("drain.timeout_ms", cfg.Drain.TimeoutMS)
	v.SetDefault("stack.words", cfg.Stack.Words)
	v.SetDefault("console.history_file", cfg.Console.HistoryFile)

	configLoaded := false
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return Config{}, err
			}
		}
	} else {
		configLoaded = true
	}

	if configLoaded {
		// IsSet would see the SetDefault above; only the file itself counts.
		if !v.InConfig("config_version") {
			return Config{}, fmt.Errorf("config_version is required; expected %d", CurrentConfigVersion)
		}
		if v.GetInt("config_version") != CurrentConfigVersion {
			return Config{}, fmt.Errorf("unsupported config_version %d; expected %d", v.GetInt("config_version"), CurrentConfigVersion)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	if cfg.GDB.Binary == "" {
		return fmt.Errorf("gdb.binary must not be empty")
	}
	if cfg.GDB.Prompt == "" {
		return fmt.Errorf("gdb.prompt must not be empty")
	}
	if cfg.Drain.PollIntervalMS <= 0 {
		return fmt.Errorf("drain.poll_interval_ms must be positive")
	}
	if cfg.Drain.TimeoutMS < 0 {
		return fmt.Errorf("drain.timeout_ms must not be negative")
	}
	if cfg.Stack.Words <= 0 {
		return fmt.Errorf("stack.words must be positive")
	}
	return nil
}

// WriteDefault writes the default config to the target path.
func WriteDefault(path string, overwrite bool) (string, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", err
		}
		path = defaultPath
	}

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config already exists at %s", path)
		}
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return "", err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}
