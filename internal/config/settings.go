package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// ErrUnknownKey is returned by Settings.Set for keys foundry does not define.
var ErrUnknownKey = errors.New("unknown configuration key")

// EnvPrefix is the prefix of environment variable overrides.
const EnvPrefix = "FOUNDRY"

// Settings is the durable configuration store backing a config file. Every
// write is saved before Set returns, and each read produces a new Config
// snapshot rather than mutating a shared one.
type Settings struct {
	path string
	v    *viper.Viper
}

// OpenSettings loads the config file at path. A missing file yields the
// built-in defaults; it is created on the first Set.
func OpenSettings(path string) (*Settings, error) {
	s := &Settings{path: path}
	if _, err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing config file path.
func (s *Settings) Path() string { return s.path }

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// readFileOnly reads the config file without defaults or env overrides, so
// writing it back persists only what the user set.
func (s *Settings) readFileOnly() (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(s.path)
	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		return v, nil
	}
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", s.path, err)
	}
	return v, nil
}

// Reload re-reads the config file and returns a fresh snapshot.
func (s *Settings) Reload() (Config, error) {
	v := newViper(s.path)
	if _, err := os.Stat(s.path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: reading %s: %w", s.path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config: stat %s: %w", s.path, err)
	}
	cfg, err := LoadFrom(v)
	if err != nil {
		return Config{}, err
	}
	s.v = v
	return cfg, nil
}

// Get returns the effective value of key: file, then environment, then the
// built-in default.
func (s *Settings) Get(key string) any {
	return s.v.Get(strings.ToLower(key))
}

// Snapshot returns the current configuration.
func (s *Settings) Snapshot() (Config, error) {
	return LoadFrom(s.v)
}

// Set validates and persists a single key, then returns the reloaded
// snapshot. The file is saved before Set returns, so no later read can
// observe the old value. Invalid values are rejected without touching the
// file.
func (s *Settings) Set(key string, value any) (Config, error) {
	key = strings.ToLower(key)
	if !IsKnownKey(key) {
		return Config{}, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	file, err := s.readFileOnly()
	if err != nil {
		return Config{}, err
	}
	value, err = coerce(key, value)
	if err != nil {
		return Config{}, err
	}
	file.Set(key, value)

	candidate := viper.New()
	if err := candidate.MergeConfigMap(file.AllSettings()); err != nil {
		return Config{}, fmt.Errorf("config: merging %s: %w", key, err)
	}
	if _, err := LoadFrom(candidate); err != nil {
		return Config{}, err
	}

	if err := file.WriteConfigAs(s.path); err != nil {
		return Config{}, fmt.Errorf("config: saving %s: %w", s.path, err)
	}
	return s.Reload()
}

// coerce converts string values (as typed on a command line) to the type of
// the key's default so the file stores numbers and booleans unquoted.
func coerce(key string, value any) (any, error) {
	str, ok := value.(string)
	if !ok {
		return value, nil
	}
	switch defaults[key].(type) {
	case float64:
		f, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %q is not a number", ErrInvalid, key, str)
		}
		return f, nil
	case int:
		n, err := strconv.Atoi(strings.TrimSpace(str))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %q is not an integer", ErrInvalid, key, str)
		}
		return n, nil
	case bool:
		b, err := strconv.ParseBool(strings.TrimSpace(str))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %q is not a boolean", ErrInvalid, key, str)
		}
		return b, nil
	}
	return str, nil
}

// Keys returns every known configuration key, sorted.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
