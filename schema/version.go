package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
)

// DefaultMinCompilerVersion is the oldest compiler whose context.json layout
// the extractors understand.
const DefaultMinCompilerVersion = "2.0.1"

// VersionError reports a compiler_version older than the supported minimum.
type VersionError struct {
	Have string
	Min  string
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("compiler version %s is not supported, minimum supported version is %s", e.Have, e.Min)
}

func parseVersion(v string) ([]int, error) {
	v = strings.TrimSpace(v)
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		v = v[:i]
	}
	if v == "" {
		return nil, errors.New("empty version")
	}
	parts := strings.Split(v, ".")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, errors.Errorf("invalid version component %q in %q", p, v)
		}
		out[i] = n
	}
	return out, nil
}

// CompareVersions compares dotted numeric versions component by component and
// stops at the first component that differs. Missing components count as 0.
func CompareVersions(a, b string) (int, error) {
	av, err := parseVersion(a)
	if err != nil {
		return 0, err
	}
	bv, err := parseVersion(b)
	if err != nil {
		return 0, err
	}
	for i := 0; i < max(len(av), len(bv)); i++ {
		var x, y int
		if i < len(av) {
			x = av[i]
		}
		if i < len(bv) {
			y = bv[i]
		}
		switch {
		case x > y:
			return 1, nil
		case x < y:
			return -1, nil
		}
	}
	return 0, nil
}

// CheckVersion returns *VersionError when have is older than min.
func CheckVersion(have, minVersion string) error {
	cmp, err := CompareVersions(have, minVersion)
	if err != nil {
		return errors.Wrap(err, "compiler_version")
	}
	if cmp < 0 {
		return &VersionError{Have: have, Min: minVersion}
	}
	return nil
}

// CheckCompilerVersion reads compiler_version from the document root.
func CheckCompilerVersion(doc *Document, minVersion string) (string, error) {
	have, err := doc.Root().Str("compiler_version")
	if err != nil {
		return "", err
	}
	if err := CheckVersion(have, minVersion); err != nil {
		return have, err
	}
	return have, nil
}
