package generator

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaroher/p4-pd-gen/config"
	"github.com/yaroher/p4-pd-gen/pd"
	"github.com/yaroher/p4-pd-gen/schema"
)

var fixtureContext = filepath.Join("..", "pd", "testdata", "context.json")

const smallContext = `{
	"program_name": "small",
	"compiler_version": "%s",
	"tables": [{
		"name": "t", "handle": 1, "table_type": "match",
		"match_key_fields": [{"name": "hdr.f", "match_type": "exact", "bit_width": 32}],
		"actions": [{"name": "a", "handle": 2, "p4_parameters": [{"name": "p", "bit_width": 32}]}]
	}]
}`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func smallContextWithVersion(version string) string {
	return fmt.Sprintf(smallContext, version)
}

func newSettings(out string) *Settings {
	s := NewSettingsFromConfig(config.DefaultConfig())
	s.Out = out
	return s
}

func TestSettings_Validate(t *testing.T) {
	s := newSettings("")
	s.Path = "x"
	assert.EqualError(t, s.Validate(), "output directory is required")

	s = newSettings("out")
	assert.EqualError(t, s.Validate(), "one of path, context_json or manifest is required")

	s.ContextJSON = "ctx.json"
	assert.NoError(t, s.Validate())
}

func TestGenerate_Fixture(t *testing.T) {
	out := t.TempDir()
	s := newSettings(out)
	s.ContextJSON = fixtureContext
	s.P4Name = "basic"
	s.DumpDict = filepath.Join(t.TempDir(), "pd_dict.json")

	g, err := NewGenerator(s)
	require.NoError(t, err)
	written, err := g.Generate()
	require.NoError(t, err)
	assert.Equal(t, []string{"cli/pd.xml", "pd/pd.h", "src/pd_tables.c", "thrift/p4_pd_rpc.thrift"}, written)
	for _, rel := range written {
		assert.FileExists(t, filepath.Join(out, filepath.FromSlash(rel)))
	}

	dump, err := schema.Load(s.DumpDict, "pd dict")
	require.NoError(t, err)
	name, err := dump.Root().Str("p4_name")
	require.NoError(t, err)
	assert.Equal(t, "basic", name)
}

func TestGenerate_NoThrift(t *testing.T) {
	out := t.TempDir()
	s := newSettings(out)
	s.ContextJSON = fixtureContext
	s.P4Name = "basic"
	s.Thrift = false

	g, err := NewGenerator(s)
	require.NoError(t, err)
	written, err := g.Generate()
	require.NoError(t, err)
	assert.NotContains(t, written, "thrift/p4_pd_rpc.thrift")
	assert.NoDirExists(t, filepath.Join(out, "thrift"))
}

func TestBuild_VersionGate(t *testing.T) {
	dir := t.TempDir()
	ctx := filepath.Join(dir, "context.json")
	writeFile(t, ctx, smallContextWithVersion("1.9.9"))
	out := filepath.Join(dir, "out")

	s := newSettings(out)
	s.ContextJSON = ctx
	g, err := NewGenerator(s)
	require.NoError(t, err)

	_, err = g.Generate()
	require.Error(t, err)
	var ve *schema.VersionError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "1.9.9", ve.Have)
	assert.Equal(t, schema.DefaultMinCompilerVersion, ve.Min)
	assert.Contains(t, err.Error(), "not supported")
	assert.NoDirExists(t, out)
}

func TestBuild_MinVersionFromSettings(t *testing.T) {
	dir := t.TempDir()
	ctx := filepath.Join(dir, "context.json")
	writeFile(t, ctx, smallContextWithVersion("9.1.0"))

	s := newSettings(t.TempDir())
	s.ContextJSON = ctx
	s.MinCompilerVersion = "9.2"
	g, err := NewGenerator(s)
	require.NoError(t, err)
	_, err = g.Build()
	var ve *schema.VersionError
	require.True(t, errors.As(err, &ve))

	s.MinCompilerVersion = "9.1"
	d, err := g.Build()
	require.NoError(t, err)
	assert.Equal(t, "9.1.0", d.CompilerVersion)
}

func TestResolveInput(t *testing.T) {
	t.Run("explicit_context_wins", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "manifest.json"), `{}`)
		s := newSettings("out")
		s.Path = dir
		s.ContextJSON = "given.json"
		g, err := NewGenerator(s)
		require.NoError(t, err)
		in, err := g.ResolveInput()
		require.NoError(t, err)
		assert.Equal(t, &Input{ContextPath: "given.json"}, in)
	})
	t.Run("manifest_under_path", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "manifest.json"), `{"schema_version": "2.0.0",
			"programs": [{"program_name": "sw", "pipes": [{"context": {"path": "pipe/context.json"}}]}]}`)
		s := newSettings("out")
		s.Path = dir
		g, err := NewGenerator(s)
		require.NoError(t, err)
		in, err := g.ResolveInput()
		require.NoError(t, err)
		assert.Equal(t, &Input{ContextPath: filepath.Join(dir, "pipe", "context.json"), ProgramName: "sw"}, in)
	})
	t.Run("context_under_path", func(t *testing.T) {
		dir := t.TempDir()
		s := newSettings("out")
		s.Path = dir
		g, err := NewGenerator(s)
		require.NoError(t, err)
		in, err := g.ResolveInput()
		require.NoError(t, err)
		assert.Equal(t, &Input{ContextPath: filepath.Join(dir, "context.json")}, in)
	})
	t.Run("broken_manifest", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "m.json"), `{"schema_version": "1.0.0", "programs": [{}]}`)
		s := newSettings("out")
		s.Manifest = filepath.Join(dir, "m.json")
		g, err := NewGenerator(s)
		require.NoError(t, err)
		_, err = g.ResolveInput()
		var se *schema.Error
		require.True(t, errors.As(err, &se))
		assert.Equal(t, "contexts", se.Key())
	})
}

func TestBuild_ProgramNameFallbacks(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "manifest.json"), `{"schema_version": "1.0.0",
		"programs": [{"program_name": "from_manifest", "contexts": [{"path": "context.json"}]}]}`)
	writeFile(t, filepath.Join(dir, "context.json"), smallContextWithVersion("9.0.0"))

	s := newSettings(t.TempDir())
	s.Path = dir
	g, err := NewGenerator(s)
	require.NoError(t, err)
	d, err := g.Build()
	require.NoError(t, err)
	assert.Equal(t, "from_manifest", d.P4Name)

	s.Path = ""
	s.ContextJSON = filepath.Join(dir, "context.json")
	d, err = g.Build()
	require.NoError(t, err)
	assert.Equal(t, "small", d.P4Name)

	s.P4Name = "flag"
	s.P4Prefix = "pfx"
	d, err = g.Build()
	require.NoError(t, err)
	assert.Equal(t, "flag", d.P4Name)
	assert.Equal(t, "pfx", d.P4Prefix)
}

func TestGenerate_MissingKeyReportsPhase(t *testing.T) {
	dir := t.TempDir()
	ctx := filepath.Join(dir, "context.json")
	writeFile(t, ctx, `{"compiler_version": "9.0.0", "program_name": "p",
		"tables": [{"name": "t", "handle": 1, "table_type": "match", "match_key_fields": []}]}`)
	out := filepath.Join(dir, "out")

	s := newSettings(out)
	s.ContextJSON = ctx
	g, err := NewGenerator(s)
	require.NoError(t, err)
	_, err = g.Generate()

	var pe *pd.PhaseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, pd.PhaseTables, pe.Phase)
	assert.Equal(t, "actions", pe.Key())
	assert.NoDirExists(t, out)
}

func TestGenerate_CustomTemplates(t *testing.T) {
	dir := t.TempDir()
	ctx := filepath.Join(dir, "context.json")
	writeFile(t, ctx, smallContextWithVersion("9.0.0"))
	out := filepath.Join(dir, "out")

	s := newSettings(out)
	s.ContextJSON = ctx
	s.Exclude = []string{"skip/*"}
	g, err := NewGenerator(s, WithTemplates(fstest.MapFS{
		"names.txt.tmpl": {Data: []byte(`{{range .Tables}}{{.Name}}:{{.MatchType}}{{end}}`)},
		"skip/x.tmpl":    {Data: []byte("x")},
	}))
	require.NoError(t, err)
	written, err := g.Generate()
	require.NoError(t, err)
	assert.Equal(t, []string{"names.txt"}, written)

	data, err := os.ReadFile(filepath.Join(out, "names.txt"))
	require.NoError(t, err)
	assert.Equal(t, "t:exact", string(data))
}

func TestGenerate_TemplatesDir(t *testing.T) {
	dir := t.TempDir()
	ctx := filepath.Join(dir, "context.json")
	writeFile(t, ctx, smallContextWithVersion("9.0.0"))
	tmpl := filepath.Join(dir, "tmpl")
	writeFile(t, filepath.Join(tmpl, "pd", "name.h.tmpl"), "{{.P4Prefix}}")
	out := filepath.Join(dir, "out")

	s := newSettings(out)
	s.ContextJSON = ctx
	s.Templates = tmpl
	g, err := NewGenerator(s)
	require.NoError(t, err)
	_, err = g.Generate()
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(out, "pd", "name.h"))
	require.NoError(t, err)
	assert.Equal(t, "small", string(data))
}
