package generator

import (
	"github.com/go-faster/errors"

	"github.com/yaroher/p4-pd-gen/config"
)

// Settings is the merged result of the config file and command line flags.
type Settings struct {
	// Path is the compiler output directory holding manifest.json or
	// context.json.
	Path        string
	ContextJSON string
	Manifest    string
	Out         string

	P4Name   string
	P4Prefix string

	GenExmTestPD       bool
	GenPerfTestPD      bool
	GenMdPD            bool
	GenHitlessHATestPD bool

	MinCompilerVersion string
	Templates          string
	Thrift             bool
	Exclude            []string
	DumpDict           string
}

// NewSettingsFromConfig seeds settings with the values a config file sets.
func NewSettingsFromConfig(cfg *config.Config) *Settings {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Settings{
		P4Prefix:           cfg.P4Prefix,
		GenExmTestPD:       cfg.Gen.ExmTestPD,
		GenPerfTestPD:      cfg.Gen.PerfTestPD,
		GenMdPD:            cfg.Gen.MdPD,
		GenHitlessHATestPD: cfg.Gen.HitlessHATestPD,
		MinCompilerVersion: cfg.MinCompilerVersion,
		Templates:          cfg.Templates,
		Thrift:             cfg.Thrift,
		Exclude:            append([]string(nil), cfg.Exclude...),
		DumpDict:           cfg.DumpDict,
	}
}

func (s *Settings) Validate() error {
	if s.Out == "" {
		return errors.New("output directory is required")
	}
	if s.Path == "" && s.ContextJSON == "" && s.Manifest == "" {
		return errors.New("one of path, context_json or manifest is required")
	}
	return nil
}
