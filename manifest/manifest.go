package manifest

import (
	"path/filepath"

	"go.uber.org/zap"

	"github.com/yaroher/p4-pd-gen/logger"
	"github.com/yaroher/p4-pd-gen/schema"
)

// FileName is the manifest name the compiler writes next to its outputs.
const FileName = "manifest.json"

// pipesLayoutVersion is the first schema_version that nests contexts under
// programs[].pipes[].
const pipesLayoutVersion = "2.0.0"

// Manifest is the part of manifest.json the generator needs.
type Manifest struct {
	SchemaVersion string
	ProgramName   string
	// ContextPath is absolute or relative to the working directory; a path
	// written relative in the manifest is joined to the manifest directory.
	ContextPath string
}

// Load reads the manifest at path.
func Load(path string) (*Manifest, error) {
	doc, err := schema.Load(path, schema.SourceManifest)
	if err != nil {
		return nil, err
	}
	m, err := Parse(doc)
	if err != nil {
		return nil, err
	}
	if !filepath.IsAbs(m.ContextPath) {
		m.ContextPath = filepath.Join(filepath.Dir(path), m.ContextPath)
	}
	logger.Named("manifest").Debug(
		"manifest loaded",
		zap.String("path", path),
		zap.String("schema_version", m.SchemaVersion),
		zap.String("context", m.ContextPath),
	)
	return m, nil
}

// Parse extracts the first program's context path. Manifests from schema
// 2.0.0 on list it at programs[0].pipes[0].context.path, older ones at
// programs[0].contexts[0].path.
func Parse(doc *schema.Document) (*Manifest, error) {
	root := doc.Root()
	version, err := root.Str("schema_version")
	if err != nil {
		return nil, err
	}
	cmp, err := schema.CompareVersions(version, pipesLayoutVersion)
	if err != nil {
		return nil, root.Invalid("schema_version", "a dotted version")
	}

	programs, err := root.Get("programs")
	if err != nil {
		return nil, err
	}
	program, err := programs.Index(0)
	if err != nil {
		return nil, err
	}
	name, err := program.OptStr("program_name", "")
	if err != nil {
		return nil, err
	}

	var ctx schema.Node
	if cmp >= 0 {
		ctx, err = contextNode(program, "pipes")
	} else {
		ctx, err = contextNode(program, "contexts")
	}
	if err != nil {
		return nil, err
	}
	path, err := ctx.Str("path")
	if err != nil {
		return nil, err
	}
	return &Manifest{SchemaVersion: version, ProgramName: name, ContextPath: path}, nil
}

func contextNode(program schema.Node, key string) (schema.Node, error) {
	list, err := program.Get(key)
	if err != nil {
		return schema.Node{}, err
	}
	first, err := list.Index(0)
	if err != nil {
		return schema.Node{}, err
	}
	if key == "pipes" {
		return first.Object("context")
	}
	return first, nil
}
