// Package config loads clamp policies from YAML.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/foxxorcat/wazero-clampclock/clamp"
)

const DefaultCacheSize = 128

// File is the on-disk configuration.
//
//	resolution: 0.0001
//	jitter: true
//	cache-size: 128
//	guests:
//	  untrusted:
//	    resolution: 0.001
//	    jitter: true
type File struct {
	clamp.Config `yaml:",inline"`
	CacheSize    int                     `yaml:"cache-size"`
	Guests       map[string]clamp.Config `yaml:"guests"`
}

// Default returns the configuration used when no file is given.
func Default() *File {
	return &File{Config: clamp.DefaultConfig(), CacheSize: DefaultCacheSize}
}

// Load reads and validates the file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	f, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return f, nil
}

// Parse decodes a YAML document. Keys that are absent keep their defaults;
// a guest entry without jitter inherits the top-level value.
func Parse(data []byte) (*File, error) {
	var raw struct {
		Resolution *float64 `yaml:"resolution"`
		Jitter     *bool    `yaml:"jitter"`
		CacheSize  *int     `yaml:"cache-size"`
		Guests     map[string]struct {
			Resolution *float64 `yaml:"resolution"`
			Jitter     *bool    `yaml:"jitter"`
		} `yaml:"guests"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "decode yaml")
	}

	f := Default()
	if raw.Resolution != nil {
		f.Resolution = *raw.Resolution
	}
	if raw.Jitter != nil {
		f.Jitter = *raw.Jitter
	}
	if raw.CacheSize != nil {
		f.CacheSize = *raw.CacheSize
	}
	if err := f.Config.Validate(); err != nil {
		return nil, err
	}
	if f.CacheSize <= 0 {
		return nil, errors.Errorf("cache-size must be positive, got %d", f.CacheSize)
	}

	if len(raw.Guests) > 0 {
		f.Guests = make(map[string]clamp.Config, len(raw.Guests))
	}
	for name, g := range raw.Guests {
		cfg := f.Config
		if g.Resolution != nil {
			cfg.Resolution = *g.Resolution
		}
		if g.Jitter != nil {
			cfg.Jitter = *g.Jitter
		}
		if err := cfg.Validate(); err != nil {
			return nil, errors.Wrapf(err, "guest %q", name)
		}
		f.Guests[name] = cfg
	}
	return f, nil
}
