// Package config layers memodeck configuration from defaults, an
// optional YAML file, MEMODECK_-prefixed environment variables, and
// command-line flags, in that order of precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/finbarsheehy/memodeck/internal/domain"
	"github.com/finbarsheehy/memodeck/internal/sm2"
)

const envPrefix = "MEMODECK_"

// Config is the full runtime configuration.
type Config struct {
	DBPath    string    `koanf:"db" validate:"required"`
	Listen    string    `koanf:"listen" validate:"required"`
	ReposDir  string    `koanf:"repos_dir" validate:"required"`
	Sources   []string  `koanf:"sources"`
	Scheduler Scheduler `koanf:"scheduler"`
	Session   Session   `koanf:"session"`
}

// Scheduler mirrors sm2.Params for the config surface.
type Scheduler struct {
	InitialEase          float64 `koanf:"initial_ease" validate:"gte=1.3"`
	MinEase              float64 `koanf:"min_ease" validate:"gte=1"`
	LapseEasePenalty     float64 `koanf:"lapse_ease_penalty" validate:"gte=0"`
	MasteryThresholdDays int     `koanf:"mastery_threshold_days" validate:"gt=0"`
	MaxIntervalDays      int     `koanf:"max_interval_days" validate:"gte=0"`
	ScaleLevels          int     `koanf:"scale_levels" validate:"oneof=4 6"`
}

// Session controls review session selection.
type Session struct {
	MaxSize int `koanf:"max_size" validate:"gte=0"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	params := sm2.DefaultParams()
	return Config{
		DBPath:   "memodeck.db",
		Listen:   ":8080",
		ReposDir: "repos",
		Scheduler: Scheduler{
			InitialEase:          params.InitialEase,
			MinEase:              params.MinEase,
			LapseEasePenalty:     params.LapseEasePenalty,
			MasteryThresholdDays: params.MasteryThresholdDays,
			MaxIntervalDays:      params.MaxIntervalDays,
			ScaleLevels:          6,
		},
		Session: Session{MaxSize: 0},
	}
}

// Flags returns the flag set recognized on the command line. Flag
// names double as koanf keys; defaults match Default() so an unset
// flag never overrides a value from the file or environment.
func Flags() *pflag.FlagSet {
	d := Default()
	f := pflag.NewFlagSet("memodeck", pflag.ContinueOnError)
	f.String("db", d.DBPath, "path to the SQLite database file")
	f.String("listen", d.Listen, "HTTP listen address")
	f.String("repos_dir", d.ReposDir, "directory for cloned deck repositories")
	f.StringSlice("sources", nil, "card sources (directories or git URLs)")
	return f
}

// Load builds the configuration. path may be empty (no file).
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	cfg := Default()
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	err := k.Load(env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, interface{}) {
		// MEMODECK_SCHEDULER__MIN_EASE -> scheduler.min_ease
		key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
		return strings.ReplaceAll(key, "__", "."), value
	}), nil)
	if err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return Config{}, fmt.Errorf("load flags: %w", err)
		}
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Params converts the scheduler section into sm2 parameters.
func (c Config) Params() sm2.Params {
	params := sm2.DefaultParams()
	params.InitialEase = c.Scheduler.InitialEase
	params.MinEase = c.Scheduler.MinEase
	params.LapseEasePenalty = c.Scheduler.LapseEasePenalty
	params.MasteryThresholdDays = c.Scheduler.MasteryThresholdDays
	params.MaxIntervalDays = c.Scheduler.MaxIntervalDays
	if c.Scheduler.ScaleLevels == 4 {
		params.Scale = domain.FourLevelScale()
	}
	return params
}
