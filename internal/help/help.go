package help

import (
	"strings"

	"github.com/iancoleman/strcase"
)

// ByteWidth rounds a bit width up to whole bytes.
func ByteWidth(bits int) int {
	if bits <= 0 {
		return 0
	}
	return (bits + 7) / 8
}

func LowerSnake(s string) string {
	return strcase.ToSnake(s)
}

func UpperSnake(s string) string {
	return strcase.ToScreamingSnake(s)
}

func Camel(s string) string {
	return strcase.ToCamel(s)
}

func StringOrDefault(s string, d string) string {
	if s != "" {
		return s
	}
	return d
}

// TrimValidSuffix strips the compiler's header validity suffix.
func TrimValidSuffix(name string) string {
	return strings.TrimSuffix(name, ".$valid")
}
