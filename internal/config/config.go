package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ErrInvalid indicates a configuration value is out of range.
var ErrInvalid = errors.New("invalid configuration")

// ColliderConfig holds the collider dimensions offered when a wizard run
// first reaches the collider stage.
type ColliderConfig struct {
	DefaultRadius float64 `mapstructure:"default_radius"`
	DefaultHeight float64 `mapstructure:"default_height"`
}

// IconConfig holds catalog icon import settings.
type IconConfig struct {
	MaxSize int `mapstructure:"max_size"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Format string `mapstructure:"format"`
}

// Config is an immutable snapshot of foundry's configuration. Values are
// populated from .foundry.yaml, FOUNDRY_* env vars, and built-in defaults.
// Relative paths are relative to ProjectRoot.
type Config struct {
	ProjectRoot   string         `mapstructure:"project_root"`
	MaterialsPath string         `mapstructure:"materials_path"`
	PrefabsPath   string         `mapstructure:"prefabs_path"`
	TabularSource string         `mapstructure:"tabular_source"`
	CatalogPath   string         `mapstructure:"catalog_path"`
	DefaultShader string         `mapstructure:"default_shader"`
	Collider      ColliderConfig `mapstructure:"collider"`
	Icon          IconConfig     `mapstructure:"icon"`
	Verbose       bool           `mapstructure:"verbose"`
	Log           LogConfig      `mapstructure:"log"`
}

// defaults lists every known key with its built-in value.
var defaults = map[string]any{
	"project_root":            ".",
	"materials_path":          "Assets/1_Graphics/Materials/",
	"prefabs_path":            "Assets/2_Prefabs/",
	"tabular_source":          "",
	"catalog_path":            "",
	"default_shader":          "",
	"collider.default_radius": 0.5,
	"collider.default_height": 2.0,
	"icon.max_size":           512,
	"verbose":                 false,
	"log.format":              "console",
}

// SetDefaults registers the built-in defaults on v.
func SetDefaults(v *viper.Viper) {
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}

// IsKnownKey reports whether key is a configuration key foundry understands.
func IsKnownKey(key string) bool {
	_, ok := defaults[strings.ToLower(key)]
	return ok
}

// Load reads a snapshot from the global viper instance, as set up by the
// CLI from flags, config file and environment.
func Load() (Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads a snapshot from v, applying built-in defaults for any
// values not set by config file or environment.
func LoadFrom(v *viper.Viper) (Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decoding: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	switch {
	case c.MaterialsPath == "":
		return fmt.Errorf("%w: materials_path is empty", ErrInvalid)
	case c.PrefabsPath == "":
		return fmt.Errorf("%w: prefabs_path is empty", ErrInvalid)
	case c.Collider.DefaultRadius < 0:
		return fmt.Errorf("%w: collider.default_radius %v is negative", ErrInvalid, c.Collider.DefaultRadius)
	case c.Collider.DefaultHeight < 0:
		return fmt.Errorf("%w: collider.default_height %v is negative", ErrInvalid, c.Collider.DefaultHeight)
	case c.Icon.MaxSize <= 0:
		return fmt.Errorf("%w: icon.max_size %d must be positive", ErrInvalid, c.Icon.MaxSize)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "console", "json":
	default:
		return fmt.Errorf("%w: log.format %q (want console or json)", ErrInvalid, c.Log.Format)
	}
	return nil
}

// Resolve returns p made absolute against the project root. Empty paths
// stay empty.
func (c Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.ProjectRoot, filepath.FromSlash(p))
}
