package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"tidclock/internal/location"
)

type Config struct {
	Storage  StorageConfig  `mapstructure:"storage"`
	Log      LogConfig      `mapstructure:"log"`
	Location LocationConfig `mapstructure:"location"`
	Timer    TimerConfig    `mapstructure:"timer"`
}

type StorageConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Path  string `mapstructure:"path"`
	Level string `mapstructure:"level"`
}

// LocationConfig describes the simulated device position and the request
// policy used when verifying it.
type LocationConfig struct {
	Mode      string        `mapstructure:"mode"`
	Latitude  float64       `mapstructure:"latitude"`
	Longitude float64       `mapstructure:"longitude"`
	Accuracy  float64       `mapstructure:"accuracy"`
	Latency   time.Duration `mapstructure:"latency"`
	Timeout   time.Duration `mapstructure:"timeout"`
	MaxAge    time.Duration `mapstructure:"max_age"`
}

func (l LocationConfig) Options() location.Options {
	return location.Options{
		HighAccuracy: true,
		Timeout:      l.Timeout,
		MaxAge:       l.MaxAge,
	}
}

type TimerConfig struct {
	Tick time.Duration `mapstructure:"tick"`
}

// Load reads configuration from an optional config.yaml and TIDCLOCK_*
// environment variables.
func Load() (*Config, error) {
	v := viper.New()

	defaults := location.DefaultOptions()
	v.SetDefault("storage.path", "tidclock.db")
	v.SetDefault("log.path", "tidclock.log")
	v.SetDefault("log.level", "info")
	v.SetDefault("location.mode", string(location.ModeFix))
	v.SetDefault("location.latitude", 59.3293)
	v.SetDefault("location.longitude", 18.0686)
	v.SetDefault("location.accuracy", 10.0)
	v.SetDefault("location.latency", 500*time.Millisecond)
	v.SetDefault("location.timeout", defaults.Timeout)
	v.SetDefault("location.max_age", defaults.MaxAge)
	v.SetDefault("timer.tick", time.Second)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	// TIDCLOCK_LOCATION_MODE → location.mode
	v.SetEnvPrefix("TIDCLOCK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []string

	if c.Storage.Path == "" {
		errs = append(errs, "storage.path is required")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("log.level must be debug, info, warn or error, got %q", c.Log.Level))
	}
	if _, err := location.ParseMode(c.Location.Mode); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Location.Latitude < -90 || c.Location.Latitude > 90 {
		errs = append(errs, fmt.Sprintf("location.latitude must be -90..90, got %v", c.Location.Latitude))
	}
	if c.Location.Longitude < -180 || c.Location.Longitude > 180 {
		errs = append(errs, fmt.Sprintf("location.longitude must be -180..180, got %v", c.Location.Longitude))
	}
	if c.Location.Timeout <= 0 {
		errs = append(errs, "location.timeout must be positive")
	}
	if c.Location.MaxAge < 0 {
		errs = append(errs, "location.max_age must not be negative")
	}
	if c.Timer.Tick <= 0 {
		errs = append(errs, "timer.tick must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
