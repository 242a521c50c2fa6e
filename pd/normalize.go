package pd

import (
	"regexp"
	"strings"
)

var (
	dollarIndex = regexp.MustCompile(`\$([0-9]+)`)
	// order matters: "$" must go after dollarIndex has consumed "$<digits>"
	punctReplacer = strings.NewReplacer("$", "_", ".", "_", "[", "_", "]", "_")
)

// Normalize turns a compiler field name like "ig_md.$tmp1" or
// "hdr.vlan[0].vid" into an identifier-safe token. The result contains none of
// "$.[]", so Normalize(Normalize(s)) == Normalize(s).
func Normalize(name string) string {
	return punctReplacer.Replace(dollarIndex.ReplaceAllString(name, "_${1}_"))
}
