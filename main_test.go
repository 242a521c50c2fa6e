package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixtureContext = filepath.Join("pd", "testdata", "context.json")

func TestExecute_Success(t *testing.T) {
	out := t.TempDir()
	var stdout, stderr bytes.Buffer
	code := execute([]string{
		"--context_json", fixtureContext,
		"--p4-name", "basic",
		"-o", out,
		"--no-thrift",
		"--gen-md-pd",
	}, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	assert.Equal(t, "cli/pd.xml\npd/pd.h\nsrc/pd_tables.c\n", stdout.String())
	header, err := os.ReadFile(filepath.Join(out, "pd", "pd.h"))
	require.NoError(t, err)
	assert.Contains(t, string(header), "p4_pd_basic_init(void);")
}

func TestExecute_ConfigAndFlagOverride(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "pdgen.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("p4_prefix: cfg\nthrift: false\nexclude: [\"src/*\"]\n"), 0o644))
	out := filepath.Join(dir, "out")

	var stdout, stderr bytes.Buffer
	code := execute([]string{
		"--config", cfg,
		"--context_json", fixtureContext,
		"--p4-name", "basic",
		"--p4-prefix", "flag",
		"-o", out,
	}, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	assert.Equal(t, "cli/pd.xml\npd/pd.h\n", stdout.String())
	header, err := os.ReadFile(filepath.Join(out, "pd", "pd.h"))
	require.NoError(t, err)
	assert.Contains(t, string(header), "_P4_PD_FLAG_PD_H")
}

func TestExecute_Errors(t *testing.T) {
	dir := t.TempDir()
	oldCtx := filepath.Join(dir, "old.json")
	require.NoError(t, os.WriteFile(oldCtx, []byte(`{"compiler_version": "1.9.9", "tables": []}`), 0o644))
	brokenCtx := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(brokenCtx, []byte(`{"compiler_version": "9.0.0", "program_name": "p"}`), 0o644))

	tests := []struct {
		name    string
		args    []string
		errPart string
	}{
		{
			name:    "missing_out",
			args:    []string{"--context_json", fixtureContext},
			errPart: `required flag(s) "out" not set`,
		},
		{
			name:    "no_input",
			args:    []string{"-o", dir},
			errPart: "one of path, context_json or manifest is required",
		},
		{
			name:    "old_compiler",
			args:    []string{"--context_json", oldCtx, "--p4-name", "p", "-o", filepath.Join(dir, "o1")},
			errPart: "compiler version 1.9.9 is not supported, minimum supported version is 2.0.1",
		},
		{
			name:    "missing_tables",
			args:    []string{"--context_json", brokenCtx, "-o", filepath.Join(dir, "o2")},
			errPart: `missing key "tables"`,
		},
		{
			name:    "missing_context_file",
			args:    []string{"--path", filepath.Join(dir, "nowhere"), "-o", filepath.Join(dir, "o3")},
			errPart: "read context json",
		},
		{
			name:    "bad_config",
			args:    []string{"--config", filepath.Join(dir, "none.yaml"), "--path", dir, "-o", dir},
			errPart: "load config",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := execute(tt.args, &stdout, &stderr)
			assert.Equal(t, 1, code)
			assert.Contains(t, stderr.String(), tt.errPart)
			assert.Empty(t, stdout.String())
		})
	}
}
