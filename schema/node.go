package schema

import (
	"fmt"
	"math"
	"sort"
)

// Node is a value inside a Document together with the path used to reach it.
// Accessors never panic; schema violations come back as *Error.
type Node struct {
	doc   *Document
	path  Path
	value any
}

func (n Node) Path() Path {
	return n.path
}

func (n Node) source() string {
	if n.doc == nil {
		return ""
	}
	return n.doc.Source
}

func (n Node) errorf(kind ErrorKind, path Path, want string) *Error {
	return &Error{Kind: kind, Source: n.source(), Path: path, Want: want}
}

// IsNull reports whether the node holds JSON null.
func (n Node) IsNull() bool {
	return n.value == nil
}

func (n Node) object() (map[string]any, error) {
	obj, ok := n.value.(map[string]any)
	if !ok {
		return nil, n.errorf(WrongType, n.path, "an object")
	}
	return obj, nil
}

// Has reports whether key is present with a non-null value.
func (n Node) Has(key string) bool {
	obj, ok := n.value.(map[string]any)
	if !ok {
		return false
	}
	v, ok := obj[key]
	return ok && v != nil
}

// Keys returns the object keys in sorted order.
func (n Node) Keys() []string {
	obj, ok := n.value.(map[string]any)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the child under key, failing with MissingKey when absent.
func (n Node) Get(key string) (Node, error) {
	obj, err := n.object()
	if err != nil {
		return Node{}, err
	}
	v, ok := obj[key]
	if !ok || v == nil {
		return Node{}, n.errorf(MissingKey, n.path.Key(key), "")
	}
	return Node{doc: n.doc, path: n.path.Key(key), value: v}, nil
}

// Object returns the child under key and checks that it is an object.
func (n Node) Object(key string) (Node, error) {
	child, err := n.Get(key)
	if err != nil {
		return Node{}, err
	}
	if _, err := child.object(); err != nil {
		return Node{}, err
	}
	return child, nil
}

func (n Node) Str(key string) (string, error) {
	child, err := n.Get(key)
	if err != nil {
		return "", err
	}
	return child.AsString()
}

func (n Node) Int(key string) (int, error) {
	child, err := n.Get(key)
	if err != nil {
		return 0, err
	}
	return child.AsInt()
}

func (n Node) Bool(key string) (bool, error) {
	child, err := n.Get(key)
	if err != nil {
		return false, err
	}
	return child.AsBool()
}

func (n Node) List(key string) ([]Node, error) {
	child, err := n.Get(key)
	if err != nil {
		return nil, err
	}
	return child.AsList()
}

// OptStr returns def when key is absent. A present value of the wrong type is
// still an error.
func (n Node) OptStr(key, def string) (string, error) {
	if !n.Has(key) {
		return def, nil
	}
	return n.Str(key)
}

func (n Node) OptInt(key string, def int) (int, error) {
	if !n.Has(key) {
		return def, nil
	}
	return n.Int(key)
}

func (n Node) OptBool(key string, def bool) (bool, error) {
	if !n.Has(key) {
		return def, nil
	}
	return n.Bool(key)
}

// OptList returns nil when key is absent.
func (n Node) OptList(key string) ([]Node, error) {
	if !n.Has(key) {
		return nil, nil
	}
	return n.List(key)
}

// Index returns the i-th list element, failing with MissingEntry when the list
// is too short.
func (n Node) Index(i int) (Node, error) {
	list, ok := n.value.([]any)
	if !ok {
		return Node{}, n.errorf(WrongType, n.path, "a list")
	}
	if i < 0 || i >= len(list) || list[i] == nil {
		return Node{}, n.errorf(MissingEntry, n.path.Index(i), "")
	}
	return Node{doc: n.doc, path: n.path.Index(i), value: list[i]}, nil
}

func (n Node) AsString() (string, error) {
	s, ok := n.value.(string)
	if !ok {
		return "", n.errorf(WrongType, n.path, "a string")
	}
	return s, nil
}

func (n Node) AsInt() (int, error) {
	switch v := n.value.(type) {
	case int64:
		return int(v), nil
	case float64:
		if v == math.Trunc(v) {
			return int(v), nil
		}
	}
	return 0, n.errorf(WrongType, n.path, "an integer")
}

func (n Node) AsBool() (bool, error) {
	b, ok := n.value.(bool)
	if !ok {
		return false, n.errorf(WrongType, n.path, "a boolean")
	}
	return b, nil
}

func (n Node) AsList() ([]Node, error) {
	list, ok := n.value.([]any)
	if !ok {
		return nil, n.errorf(WrongType, n.path, "a list")
	}
	out := make([]Node, len(list))
	for i, v := range list {
		out[i] = Node{doc: n.doc, path: n.path.Index(i), value: v}
	}
	return out, nil
}

// Invalid builds a WrongType error for key below n, for values that decode
// fine but break a schema rule.
func (n Node) Invalid(key, want string) *Error {
	return n.errorf(WrongType, n.path.Key(key), want)
}

// Enum reads a required string that must be one of allowed.
func (n Node) Enum(key string, allowed ...string) (string, error) {
	s, err := n.Str(key)
	if err != nil {
		return "", err
	}
	for _, a := range allowed {
		if s == a {
			return s, nil
		}
	}
	return "", n.Invalid(key, fmt.Sprintf("one of %q", allowed))
}
