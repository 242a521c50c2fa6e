package config

import (
	"os"

	"github.com/go-faster/errors"
	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"

	"github.com/yaroher/p4-pd-gen/schema"
)

// Config is the optional generator configuration file. Command line flags
// override whatever it sets.
type Config struct {
	// MinCompilerVersion is the oldest compiler whose context.json is accepted.
	MinCompilerVersion string `yaml:"min_compiler_version"`
	// P4Prefix is the identifier prefix used in generated code.
	P4Prefix string `yaml:"p4_prefix"`
	// Templates is a directory of *.tmpl files replacing the built-in set.
	Templates string `yaml:"templates"`
	// Thrift enables files under thrift/ paths.
	Thrift bool `yaml:"thrift"`
	// Exclude lists glob patterns of output paths to skip.
	Exclude []string `yaml:"exclude"`
	// DumpDict is a path the built dictionary is written to as JSON.
	DumpDict string `yaml:"dump_dict"`
	// Gen toggles the optional PD flavors.
	Gen GenConfig `yaml:"gen"`
}

type GenConfig struct {
	ExmTestPD       bool `yaml:"exm_test_pd"`
	PerfTestPD      bool `yaml:"perf_test_pd"`
	MdPD            bool `yaml:"md_pd"`
	HitlessHATestPD bool `yaml:"hitless_ha_test_pd"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		MinCompilerVersion: schema.DefaultMinCompilerVersion,
		Thrift:             true,
		Exclude:            []string{},
	}
}

// LoadConfig loads configuration from a YAML file on top of the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config file")
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "parse YAML configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that YAML decoding alone cannot.
func (c *Config) Validate() error {
	if c.MinCompilerVersion == "" {
		return errors.New("min_compiler_version must not be empty")
	}
	if _, err := schema.CompareVersions(c.MinCompilerVersion, c.MinCompilerVersion); err != nil {
		return errors.Wrap(err, "min_compiler_version")
	}
	for _, pattern := range c.Exclude {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			return errors.Wrapf(err, "exclude pattern %q", pattern)
		}
	}
	return nil
}
