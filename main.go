package main

import (
	"fmt"
	"io"
	"os"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/yaroher/p4-pd-gen/config"
	"github.com/yaroher/p4-pd-gen/generator"
	"github.com/yaroher/p4-pd-gen/logger"
	"github.com/yaroher/p4-pd-gen/pd"
)

// Cmd is the command line arguments.
type Cmd struct {
	ConfigPath  string
	Path        string
	ContextJSON string
	Manifest    string
	Out         string
	P4Name      string
	P4Prefix    string
	Templates   string
	DumpDict    string
	NoThrift    bool
	Verbose     bool

	GenExmTestPD       bool
	GenPerfTestPD      bool
	GenMdPD            bool
	GenHitlessHATestPD bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var c Cmd
	root := &cobra.Command{
		Use:           "p4-pd-gen",
		Short:         "Generate PD API sources from Tofino compiler output",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(rawCmd *cobra.Command, _ []string) error {
			settings, err := c.settings(rawCmd)
			if err != nil {
				return err
			}
			if c.Verbose {
				logger.SetLevel(zapcore.DebugLevel)
			}
			return run(settings, stdout)
		},
	}

	flags := root.Flags()
	flags.StringVar(&c.ConfigPath, "config", "", "Path to a YAML generator config")
	flags.StringVar(&c.Path, "path", "", "Compiler output directory containing manifest.json or context.json")
	flags.StringVar(&c.ContextJSON, "context_json", "", "Path to context.json")
	flags.StringVar(&c.Manifest, "manifest", "", "Path to manifest.json")
	flags.StringVarP(&c.Out, "out", "o", "", "Output directory (required)")
	flags.StringVar(&c.P4Name, "p4-name", "", "P4 program name")
	flags.StringVar(&c.P4Prefix, "p4-prefix", "", "Prefix for generated identifiers (defaults to the P4 name)")
	flags.StringVar(&c.Templates, "templates", "", "Template directory replacing the built-in templates")
	flags.StringVar(&c.DumpDict, "dump-dict", "", "Write the derived dictionary as JSON to this path")
	flags.BoolVar(&c.NoThrift, "no-thrift", false, "Skip Thrift outputs")
	flags.BoolVarP(&c.Verbose, "verbose", "v", false, "Debug logging")
	flags.BoolVar(&c.GenExmTestPD, "gen-exm-test-pd", false, "Generate exact-match test PD")
	flags.BoolVar(&c.GenPerfTestPD, "gen-perf-test-pd", false, "Generate performance test PD")
	flags.BoolVar(&c.GenMdPD, "gen-md-pd", false, "Generate multi-device PD")
	flags.BoolVar(&c.GenHitlessHATestPD, "gen-hitless-ha-test-pd", false, "Generate hitless HA test PD")
	_ = root.MarkFlagRequired("out")

	root.SetOut(stdout)
	root.SetErr(stderr)
	return root
}

// settings layers explicitly set flags over the config file, which itself
// sits on top of the defaults.
func (c *Cmd) settings(rawCmd *cobra.Command) (*generator.Settings, error) {
	cfg := config.DefaultConfig()
	if c.ConfigPath != "" {
		var err error
		if cfg, err = config.LoadConfig(c.ConfigPath); err != nil {
			return nil, errors.Wrap(err, "load config")
		}
	}
	s := generator.NewSettingsFromConfig(cfg)
	s.Path = c.Path
	s.ContextJSON = c.ContextJSON
	s.Manifest = c.Manifest
	s.Out = c.Out
	s.P4Name = c.P4Name

	changed := rawCmd.Flags().Changed
	if changed("p4-prefix") {
		s.P4Prefix = c.P4Prefix
	}
	if changed("templates") {
		s.Templates = c.Templates
	}
	if changed("dump-dict") {
		s.DumpDict = c.DumpDict
	}
	if changed("no-thrift") {
		s.Thrift = !c.NoThrift
	}
	if changed("gen-exm-test-pd") {
		s.GenExmTestPD = c.GenExmTestPD
	}
	if changed("gen-perf-test-pd") {
		s.GenPerfTestPD = c.GenPerfTestPD
	}
	if changed("gen-md-pd") {
		s.GenMdPD = c.GenMdPD
	}
	if changed("gen-hitless-ha-test-pd") {
		s.GenHitlessHATestPD = c.GenHitlessHATestPD
	}
	return s, nil
}

func run(settings *generator.Settings, stdout io.Writer) error {
	g, err := generator.NewGenerator(settings)
	if err != nil {
		return err
	}
	written, err := g.Generate()
	if err != nil {
		var pe *pd.PhaseError
		if errors.As(err, &pe) && pe.Key() != "" {
			logger.Error("extraction failed", zap.String("phase", pe.Phase), zap.String("key", pe.Key()))
		}
		return err
	}
	for _, path := range written {
		fmt.Fprintln(stdout, path)
	}
	return nil
}

// execute runs the command and maps the outcome to a process exit code.
func execute(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}
