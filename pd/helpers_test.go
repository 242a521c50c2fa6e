package pd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yaroher/p4-pd-gen/schema"
)

func parseRoot(t *testing.T, s string) schema.Node {
	t.Helper()
	doc, err := schema.Parse(schema.SourceContext, []byte(s))
	require.NoError(t, err)
	return doc.Root()
}

func loadFixture(t *testing.T) *schema.Document {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "context.json"))
	require.NoError(t, err)
	doc, err := schema.Parse(schema.SourceContext, data)
	require.NoError(t, err)
	return doc
}
