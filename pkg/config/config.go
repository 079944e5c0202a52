package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	xdgAppName = "ptt"
	configFile = "config.yaml"
	envPrefix  = "PTT"
)

// Config holds the user settings. Durations are written as Go duration
// strings ("1m0s") and may be overridden with PTT_<KEY> variables.
type Config struct {
	Language             string        `yaml:"language" mapstructure:"language"`
	DataDir              string        `yaml:"data_dir" mapstructure:"data_dir"`
	TickInterval         time.Duration `yaml:"tick_interval" mapstructure:"tick_interval"`
	Increment            time.Duration `yaml:"increment" mapstructure:"increment"`
	MaxTaskDuration      time.Duration `yaml:"max_task_duration" mapstructure:"max_task_duration"`
	LeaseRefreshInterval time.Duration `yaml:"lease_refresh_interval" mapstructure:"lease_refresh_interval"`
	LeaseStaleAfter      time.Duration `yaml:"lease_stale_after" mapstructure:"lease_stale_after"`
	Calendar             string        `yaml:"calendar" mapstructure:"calendar"`
	MetricsAddr          string        `yaml:"metrics_addr" mapstructure:"metrics_addr"`
}

// Dir returns ~/.config/ptt, the home of the config file and of the
// calendar export state.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", xdgAppName), nil
}

func GetConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// DefaultConfig returns the settings used when no file or variable overrides them.
func DefaultConfig() *Config {
	dataDir := "data"
	if dir, err := Dir(); err == nil {
		dataDir = filepath.Join(dir, "data")
	}
	return &Config{
		Language:             "fr",
		DataDir:              dataDir,
		TickInterval:         60 * time.Second,
		Increment:            60 * time.Second,
		MaxTaskDuration:      8 * time.Hour,
		LeaseRefreshInterval: 30 * time.Second,
		LeaseStaleAfter:      60 * time.Second,
		Calendar:             "Tasks",
	}
}

// Load reads the config file at path, or the default location when path is
// empty. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := GetConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	def := DefaultConfig()
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetDefault("language", def.Language)
	v.SetDefault("data_dir", def.DataDir)
	v.SetDefault("tick_interval", def.TickInterval)
	v.SetDefault("increment", def.Increment)
	v.SetDefault("max_task_duration", def.MaxTaskDuration)
	v.SetDefault("lease_refresh_interval", def.LeaseRefreshInterval)
	v.SetDefault("lease_stale_after", def.LeaseStaleAfter)
	v.SetDefault("calendar", def.Calendar)
	v.SetDefault("metrics_addr", def.MetricsAddr)

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.Calendar == "" {
		cfg.Calendar = def.Calendar
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the timing settings against each other.
func (c *Config) Validate() error {
	var errs []error
	if c.DataDir == "" {
		errs = append(errs, errors.New("data_dir is empty"))
	}
	if c.TickInterval <= 0 {
		errs = append(errs, errors.New("tick_interval must be positive"))
	}
	if c.Increment < time.Second {
		errs = append(errs, errors.New("increment must be at least 1s"))
	}
	if c.MaxTaskDuration < time.Second {
		errs = append(errs, errors.New("max_task_duration must be at least 1s"))
	}
	if c.LeaseRefreshInterval <= 0 || c.LeaseRefreshInterval >= c.LeaseStaleAfter {
		errs = append(errs, fmt.Errorf("lease_refresh_interval (%s) must be positive and shorter than lease_stale_after (%s)",
			c.LeaseRefreshInterval, c.LeaseStaleAfter))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Save writes cfg as YAML to path, or to the default location when path is empty.
func Save(cfg *Config, path string) error {
	if path == "" {
		p, err := GetConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file for writing: %w", err)
	}
	defer f.Close()

	encoder := yaml.NewEncoder(f)
	encoder.SetIndent(2)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return encoder.Close()
}
