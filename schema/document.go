package schema

import (
	"io"
	"os"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// Source names used in error messages.
const (
	SourceContext  = "context json"
	SourceManifest = "manifest"
)

// Document is a decoded JSON file. Values are held as map[string]any, []any,
// string, int64, float64, bool or nil.
type Document struct {
	Source string
	root   any
}

// Load reads and decodes the file at path.
func Load(path, source string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", source)
	}
	return Parse(source, data)
}

// Parse decodes data as a single JSON value.
func Parse(source string, data []byte) (*Document, error) {
	d := jx.DecodeBytes(data)
	root, err := decodeValue(d)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", source)
	}
	if err := d.Skip(); err != io.EOF {
		return nil, errors.Errorf("decode %s: unexpected data after top-level value", source)
	}
	return &Document{Source: source, root: root}, nil
}

// Root returns the top-level node.
func (doc *Document) Root() Node {
	return Node{doc: doc, value: doc.root}
}

func decodeValue(d *jx.Decoder) (any, error) {
	switch tt := d.Next(); tt {
	case jx.Object:
		obj := make(map[string]any)
		err := d.Obj(func(d *jx.Decoder, key string) error {
			v, err := decodeValue(d)
			if err != nil {
				return errors.Wrap(err, key)
			}
			obj[key] = v
			return nil
		})
		return obj, err
	case jx.Array:
		list := make([]any, 0)
		err := d.Arr(func(d *jx.Decoder) error {
			v, err := decodeValue(d)
			if err != nil {
				return err
			}
			list = append(list, v)
			return nil
		})
		return list, err
	case jx.String:
		return d.Str()
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return nil, err
		}
		if n.IsInt() {
			return n.Int64()
		}
		return n.Float64()
	case jx.Bool:
		return d.Bool()
	case jx.Null:
		return nil, d.Null()
	default:
		return nil, errors.Errorf("unexpected json token %s", tt)
	}
}
