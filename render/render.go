package render

import (
	"bytes"
	"embed"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/go-faster/errors"
	"github.com/gobwas/glob"
	"go.uber.org/zap"

	"github.com/yaroher/p4-pd-gen/logger"
	"github.com/yaroher/p4-pd-gen/pd"
)

// TemplateExt marks files that are executed; anything else is copied as is.
const TemplateExt = ".tmpl"

// thriftMarker in an output path marks a file that only makes sense with
// Thrift generation enabled.
const thriftMarker = "thrift"

//go:embed templates
var builtin embed.FS

// Builtin returns the template tree shipped with the generator.
func Builtin() fs.FS {
	sub, err := fs.Sub(builtin, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

type Renderer struct {
	src     fs.FS
	thrift  bool
	exclude []glob.Glob
	funcs   template.FuncMap
}

type Option func(*Renderer) error

// WithThrift toggles files whose output path contains "thrift".
func WithThrift(enabled bool) Option {
	return func(r *Renderer) error {
		r.thrift = enabled
		return nil
	}
}

// WithExclude skips output paths matching any of the glob patterns. Patterns
// are matched against the slash-separated path relative to the output root.
func WithExclude(patterns ...string) Option {
	return func(r *Renderer) error {
		for _, p := range patterns {
			g, err := glob.Compile(p, '/')
			if err != nil {
				return errors.Wrapf(err, "exclude pattern %q", p)
			}
			r.exclude = append(r.exclude, g)
		}
		return nil
	}
}

// WithFuncs adds template functions on top of the defaults.
func WithFuncs(funcs template.FuncMap) Option {
	return func(r *Renderer) error {
		for name, fn := range funcs {
			r.funcs[name] = fn
		}
		return nil
	}
}

// New builds a renderer over src, usually Builtin() or os.DirFS(dir).
func New(src fs.FS, opts ...Option) (*Renderer, error) {
	r := &Renderer{
		src:    src,
		thrift: true,
		funcs:  Funcs(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Entry is one file of the template tree and where it lands.
type Entry struct {
	Source string
	Target string
}

// Plan walks the template tree and returns the files that would be produced,
// in lexical order, after the Thrift and exclude filters.
func (r *Renderer) Plan() ([]Entry, error) {
	l := logger.Named("render")
	var out []Entry
	err := fs.WalkDir(r.src, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		target := strings.TrimSuffix(p, TemplateExt)
		if r.skip(target) {
			l.Debug("skip", zap.String("target", target))
			return nil
		}
		out = append(out, Entry{Source: p, Target: target})
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "walk templates")
	}
	return out, nil
}

func (r *Renderer) skip(target string) bool {
	if !r.thrift && strings.Contains(target, thriftMarker) {
		return true
	}
	for _, g := range r.exclude {
		if g.Match(target) {
			return true
		}
	}
	return false
}

// Render executes every planned template against d and writes the results
// under outDir. All templates are executed before the first file is written,
// so a template error leaves outDir untouched. It returns the written paths
// relative to outDir.
func (r *Renderer) Render(d *pd.Dict, outDir string) ([]string, error) {
	l := logger.Named("render")
	entries, err := r.Plan()
	if err != nil {
		return nil, err
	}

	contents := make([][]byte, len(entries))
	for i, e := range entries {
		if contents[i], err = r.execute(e, d); err != nil {
			return nil, err
		}
	}

	written := make([]string, 0, len(entries))
	for i, e := range entries {
		dst := filepath.Join(outDir, filepath.FromSlash(e.Target))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return written, errors.Wrap(err, "create output directory")
		}
		if err := os.WriteFile(dst, contents[i], 0o644); err != nil {
			return written, errors.Wrapf(err, "write %s", e.Target)
		}
		l.Debug("wrote", zap.String("path", dst), zap.Int("bytes", len(contents[i])))
		written = append(written, e.Target)
	}
	l.Info("rendered", zap.String("out", outDir), zap.Int("files", len(written)))
	return written, nil
}

func (r *Renderer) execute(e Entry, d *pd.Dict) ([]byte, error) {
	data, err := fs.ReadFile(r.src, e.Source)
	if err != nil {
		return nil, errors.Wrapf(err, "read template %s", e.Source)
	}
	if !strings.HasSuffix(e.Source, TemplateExt) {
		return data, nil
	}
	tmpl, err := template.New(path.Base(e.Source)).
		Funcs(r.funcs).
		Option("missingkey=error").
		Parse(string(data))
	if err != nil {
		return nil, errors.Wrapf(err, "parse template %s", e.Source)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, d); err != nil {
		return nil, errors.Wrapf(err, "execute template %s", e.Source)
	}
	return buf.Bytes(), nil
}
