// Package config loads settings from defaults, an optional YAML file,
// DAILYHABIT_ environment variables and command-line flags, in that order.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/conorfennell/dailyhabit/internal/apperrors"
)

// EnvPrefix marks environment variables read by Load. A double underscore
// separates sections: DAILYHABIT_LOG__MAX_SIZE_MB sets log.max_size_mb.
const EnvPrefix = "DAILYHABIT_"

type Config struct {
	DB      DBConfig      `koanf:"db"`
	Log     LogConfig     `koanf:"log"`
	Catalog CatalogConfig `koanf:"catalog"`
}

type DBConfig struct {
	Path string `koanf:"path" validate:"required"`
}

type LogConfig struct {
	Level      string `koanf:"level" validate:"oneof=debug info warn error"`
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb" validate:"min=0"`
	MaxBackups int    `koanf:"max_backups" validate:"min=0"`
	MaxAgeDays int    `koanf:"max_age_days" validate:"min=0"`
}

// CatalogConfig locates the bundled catalog. With Repo set, Path is
// relative to the repository root.
type CatalogConfig struct {
	Path        string `koanf:"path"`
	Repo        string `koanf:"repo"`
	CheckoutDir string `koanf:"checkout_dir" validate:"required_with=Repo"`
}

// Defaults are the values used when nothing else sets a key.
func Defaults() map[string]any {
	return map[string]any{
		"db.path":              "dailyhabit.db",
		"log.level":            "info",
		"log.file":             "",
		"log.max_size_mb":      10,
		"log.max_backups":      3,
		"log.max_age_days":     28,
		"catalog.path":         "",
		"catalog.repo":         "",
		"catalog.checkout_dir": "repos",
	}
}

// FlagKeys maps command-line flag names to config keys. Flags not listed here
// are ignored by Load.
var FlagKeys = map[string]string{
	"db":        "db.path",
	"log-level": "log.level",
	"log-file":  "log.file",
	"catalog":   "catalog.path",
	"repo":      "catalog.repo",
}

// Load builds the configuration. path may be empty, in which case no file is
// read; a named file that does not exist is an error. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load environment: %w", err)
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := FlagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return Config{}, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", apperrors.ErrInvalidInput, err)
	}
	return cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}
