package schema

import (
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"2.0.1", "2.0.1", 0},
		{"2.0", "2.0.0", 0},
		{"1.9.9", "2.0.1", -1},
		{"3.0.0", "2.9.9", 1},
		// first differing component decides, later ones are ignored
		{"2.1.0", "2.0.9", 1},
		{"10.0.0", "9.99.99", 1},
		{"9.7.2-pr.1", "9.7.2", 0},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			got, err := CompareVersions(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestCompareVersions_Invalid(t *testing.T) {
	_, err := CompareVersions("2.x.1", "2.0.1")
	assert.Error(t, err)
	_, err = CompareVersions("", "2.0.1")
	assert.Error(t, err)
}

func TestCheckCompilerVersion(t *testing.T) {
	doc := mustParse(t, `{"compiler_version": "1.9.9"}`)
	have, err := CheckCompilerVersion(doc, "2.0.1")
	assert.Equal(t, "1.9.9", have)

	var ve *VersionError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "2.0.1", ve.Min)
	assert.Contains(t, err.Error(), "not supported")

	doc = mustParse(t, `{"compiler_version": "2.0.1"}`)
	_, err = CheckCompilerVersion(doc, DefaultMinCompilerVersion)
	assert.NoError(t, err)

	doc = mustParse(t, `{}`)
	_, err = CheckCompilerVersion(doc, DefaultMinCompilerVersion)
	var se *Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "compiler_version", se.Key())
}
