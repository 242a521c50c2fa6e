package schema

import (
	"fmt"
	"strings"
)

type ErrorKind uint8

const (
	// MissingKey is a required object key that is absent (or null).
	MissingKey ErrorKind = iota + 1
	// MissingEntry is a list index past the end of the list.
	MissingEntry
	// WrongType is a value present with an unexpected JSON type.
	WrongType
)

func (k ErrorKind) String() string {
	switch k {
	case MissingKey:
		return "missing_key"
	case MissingEntry:
		return "missing_entry"
	case WrongType:
		return "wrong_type"
	default:
		return fmt.Sprintf("unknown(%d)", k)
	}
}

// Error is a schema violation with the path of keys traversed to reach it.
type Error struct {
	Kind   ErrorKind
	Source string
	Path   Path
	Want   string
}

// Key returns the offending key, i.e. the last path element.
func (e *Error) Key() string {
	return e.Path.Last()
}

func (e *Error) Error() string {
	switch e.Kind {
	case MissingKey:
		return fmt.Sprintf("%s: missing key %q at %s", e.Source, e.Key(), e.Path)
	case MissingEntry:
		return fmt.Sprintf("missing %s dict in %s", e.Path, e.Source)
	case WrongType:
		return fmt.Sprintf("%s: %s must be %s", e.Source, e.Path, e.Want)
	default:
		return fmt.Sprintf("%s: %s: %s", e.Source, e.Kind, e.Path)
	}
}

// Path is the sequence of object keys and list indexes leading to a value.
// Indexes are stored as "[n]".
type Path []string

func (p Path) Key(k string) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, k)
}

func (p Path) Index(i int) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, fmt.Sprintf("[%d]", i))
}

func (p Path) Last() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

func (p Path) String() string {
	if len(p) == 0 {
		return "<root>"
	}
	var b strings.Builder
	for i, el := range p {
		if i > 0 && !strings.HasPrefix(el, "[") {
			b.WriteByte('.')
		}
		b.WriteString(el)
	}
	return b.String()
}
