package generator

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/yaroher/p4-pd-gen/internal/help"
	"github.com/yaroher/p4-pd-gen/logger"
	"github.com/yaroher/p4-pd-gen/manifest"
	"github.com/yaroher/p4-pd-gen/pd"
	"github.com/yaroher/p4-pd-gen/render"
	"github.com/yaroher/p4-pd-gen/schema"
)

const contextFileName = "context.json"

type Generator struct {
	Settings *Settings

	templates  fs.FS
	renderOpts []render.Option
}

type Option func(*Generator) error

// WithTemplates replaces the template tree. Without it the Settings.Templates
// directory is used, or the built-in set when that is empty.
func WithTemplates(src fs.FS) Option {
	return func(g *Generator) error {
		g.templates = src
		return nil
	}
}

// WithRenderOptions passes extra options to the renderer.
func WithRenderOptions(opts ...render.Option) Option {
	return func(g *Generator) error {
		g.renderOpts = append(g.renderOpts, opts...)
		return nil
	}
}

func NewGenerator(settings *Settings, opts ...Option) (*Generator, error) {
	if settings == nil {
		return nil, errors.New("settings are required")
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	g := &Generator{Settings: settings}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(g); err != nil {
			return nil, err
		}
	}
	if g.templates == nil {
		if settings.Templates != "" {
			g.templates = os.DirFS(settings.Templates)
		} else {
			g.templates = render.Builtin()
		}
	}
	return g, nil
}

// Input is the resolved context.json location.
type Input struct {
	ContextPath string
	// ProgramName comes from the manifest when one was used.
	ProgramName string
}

// ResolveInput picks context.json: an explicit --context_json, then an
// explicit --manifest, then manifest.json under Path when it exists, then
// context.json under Path.
func (g *Generator) ResolveInput() (*Input, error) {
	s := g.Settings
	if s.ContextJSON != "" {
		return &Input{ContextPath: s.ContextJSON}, nil
	}
	manifestPath := s.Manifest
	if manifestPath == "" {
		candidate := filepath.Join(s.Path, manifest.FileName)
		if _, err := os.Stat(candidate); err == nil {
			manifestPath = candidate
		}
	}
	if manifestPath == "" {
		return &Input{ContextPath: filepath.Join(s.Path, contextFileName)}, nil
	}
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return nil, err
	}
	return &Input{ContextPath: m.ContextPath, ProgramName: m.ProgramName}, nil
}

// Build loads context.json, checks the compiler version and derives the PD
// dictionary.
func (g *Generator) Build() (*pd.Dict, error) {
	l := logger.Named("generator")
	in, err := g.ResolveInput()
	if err != nil {
		return nil, err
	}
	l.Info("loading context", zap.String("path", in.ContextPath))
	doc, err := schema.Load(in.ContextPath, schema.SourceContext)
	if err != nil {
		return nil, err
	}

	minVersion := help.StringOrDefault(g.Settings.MinCompilerVersion, schema.DefaultMinCompilerVersion)
	version, err := schema.CheckCompilerVersion(doc, minVersion)
	if err != nil {
		return nil, err
	}

	name := g.Settings.P4Name
	if name == "" {
		name = in.ProgramName
	}
	if name == "" {
		if name, err = doc.Root().OptStr("program_name", ""); err != nil {
			return nil, err
		}
	}
	if name == "" {
		return nil, errors.New("p4 name is required: pass --p4-name or provide program_name")
	}

	return pd.Build(doc, pd.Options{
		P4Name:             name,
		P4Prefix:           g.Settings.P4Prefix,
		CompilerVersion:    version,
		GenExmTestPD:       g.Settings.GenExmTestPD,
		GenPerfTestPD:      g.Settings.GenPerfTestPD,
		GenMdPD:            g.Settings.GenMdPD,
		GenHitlessHATestPD: g.Settings.GenHitlessHATestPD,
	})
}

// Generate builds the dictionary, optionally dumps it, and renders the
// template tree into Settings.Out. It returns the written paths relative to
// Out.
func (g *Generator) Generate() ([]string, error) {
	d, err := g.Build()
	if err != nil {
		return nil, err
	}
	if g.Settings.DumpDict != "" {
		if err := d.WriteFile(g.Settings.DumpDict); err != nil {
			return nil, err
		}
		logger.Named("generator").Info("dictionary dumped", zap.String("path", g.Settings.DumpDict))
	}

	opts := append([]render.Option{
		render.WithThrift(g.Settings.Thrift),
		render.WithExclude(g.Settings.Exclude...),
	}, g.renderOpts...)
	r, err := render.New(g.templates, opts...)
	if err != nil {
		return nil, err
	}
	return r.Render(d, g.Settings.Out)
}
