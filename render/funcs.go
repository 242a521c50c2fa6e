package render

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/yaroher/p4-pd-gen/internal/help"
	"github.com/yaroher/p4-pd-gen/pd"
)

// Funcs returns the default template functions.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"normalize": pd.Normalize,
		"camel":     help.Camel,
		"snake":     help.LowerSnake,
		"upper":     strings.ToUpper,
		"screaming": help.UpperSnake,
		"bytes":     help.ByteWidth,
		"decl":      decl,
		"hex":       hex,
		"join":      strings.Join,
		"add":       func(a, b int) int { return a + b },
	}
}

// decl is a C member declaration wide enough for bits. Values wider than a
// 32-bit word become byte arrays.
func decl(bits int, name string) string {
	switch n := help.ByteWidth(bits); {
	case n <= 1:
		return "uint8_t " + name
	case n == 2:
		return "uint16_t " + name
	case n <= 4:
		return "uint32_t " + name
	default:
		return fmt.Sprintf("uint8_t %s[%d]", name, n)
	}
}

func hex(v int) string {
	return fmt.Sprintf("0x%08x", v)
}
