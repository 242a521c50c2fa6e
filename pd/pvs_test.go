package pd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaroher/p4-pd-gen/schema"
)

func TestExtractParserValueSets(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		expected []string
	}{
		{
			name:     "fixture_parsers_list",
			expected: []string{"vlan_pvs", "eg_pvs"},
		},
		{
			name: "legacy_parser",
			doc: `{"parser": {
				"ingress": [{"name": "s0", "pvs_name": "a"}, {"name": "s1"}],
				"egress": [{"name": "s0", "pvs_name": "b", "uses_pvs": false}, {"name": "s1", "pvs_name": "c"}]
			}}`,
			expected: []string{"a", "c"},
		},
		{
			name:     "none",
			doc:      `{}`,
			expected: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var root schema.Node
			if tt.doc == "" {
				root = loadFixture(t).Root()
			} else {
				root = parseRoot(t, tt.doc)
			}
			got, err := ExtractParserValueSets(root)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestExtractParserValueSets_MissingStates(t *testing.T) {
	_, err := ExtractParserValueSets(parseRoot(t, `{"parsers": [{"name": "p"}]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsers[0].states")
}
