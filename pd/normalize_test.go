package pd

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"hdr.ipv4.dst_addr", "hdr_ipv4_dst_addr"},
		{"meta.$1", "meta__1_"},
		{"ig_md.$tmp1", "ig_md__tmp1"},
		{"hdr.vlan[0].vid", "hdr_vlan_0__vid"},
		{"$12$x", "_12__x"},
		{"plain", "plain"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	const alphabet = "ab_09$.[]"
	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < 2000; i++ {
		var b strings.Builder
		for j := rnd.Intn(16); j > 0; j-- {
			b.WriteByte(alphabet[rnd.Intn(len(alphabet))])
		}
		s := b.String()
		once := Normalize(s)
		assert.Equal(t, once, Normalize(once), "input %q", s)
		assert.NotContains(t, once, "$")
		assert.NotContains(t, once, ".")
		assert.NotContains(t, once, "[")
		assert.NotContains(t, once, "]")
	}
}
