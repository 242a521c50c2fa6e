package pd

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/samber/lo"
)

type DiagnosticLevel string

const (
	DiagWarn  DiagnosticLevel = "warn"
	DiagError DiagnosticLevel = "error"
)

type Diagnostic struct {
	Level   DiagnosticLevel
	Message string
	Subject string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Level, d.Subject, d.Message)
}

// ValidationError carries the error-level diagnostics of a dictionary.
type ValidationError struct {
	Diagnostics []Diagnostic
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		msgs[i] = d.String()
	}
	return "invalid pd dictionary: " + strings.Join(msgs, "; ")
}

var cIdent = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate cross-checks a built dictionary. Problems that would produce
// uncompilable or ambiguous generated code are errors; the rest are warnings.
// The result is sorted by level, then subject.
func Validate(d *Dict) []Diagnostic {
	var diags []Diagnostic
	add := func(level DiagnosticLevel, subject, format string, args ...any) {
		diags = append(diags, Diagnostic{Level: level, Subject: subject, Message: fmt.Sprintf(format, args...)})
	}

	if !cIdent.MatchString(d.P4Prefix) {
		add(DiagError, "p4_prefix", "%q is not a valid C identifier", d.P4Prefix)
	}

	checkCollisions := func(kind string, names []string) {
		seen := make(map[string]string)
		for _, name := range names {
			norm := Normalize(name)
			if prev, ok := seen[norm]; ok && prev != name {
				add(DiagError, name, "%s name collides with %q after normalization", kind, prev)
				continue
			}
			seen[norm] = name
		}
	}
	checkCollisions("table", d.TableOrder)
	checkCollisions("action", d.ActionOrder)

	for _, t := range d.Tables() {
		if len(t.Actions) == 0 {
			add(DiagWarn, t.Name, "table has no user actions")
		}
		if t.DefaultAction != "" && !lo.Contains(t.Actions, t.DefaultAction) {
			add(DiagWarn, t.Name, "default action %q is not one of the table actions", t.DefaultAction)
		}
		indirect := make(map[string]bool, len(t.IndirectResources))
		for _, r := range t.IndirectResources {
			indirect[r.Name] = true
		}
		for _, name := range t.APBindIndirectResToMatch {
			if !indirect[name] {
				add(DiagError, t.Name, "ap_bind_indirect_res_to_match names %q, which is not an indirect resource of the table", name)
			}
		}
	}

	for _, a := range d.Actions() {
		for _, r := range a.IndirectResources {
			if r.AccessMode != AccessIndex {
				continue
			}
			if r.ParamIndex < 0 || r.ParamIndex >= len(a.Params) {
				add(DiagError, a.Name, "resource %q indexed by parameter %d, action has %d", r.ResourceName, r.ParamIndex, len(a.Params))
				continue
			}
			if a.Params[r.ParamIndex].Name != r.ParamName {
				add(DiagError, a.Name, "resource %q indexed by %q but parameter %d is %q",
					r.ResourceName, r.ParamName, r.ParamIndex, a.Params[r.ParamIndex].Name)
			}
		}
	}

	sortDiagnostics(diags)
	return diags
}

// sortDiagnostics keeps output stable.
func sortDiagnostics(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		if diags[i].Level != diags[j].Level {
			return diags[i].Level < diags[j].Level
		}
		return diags[i].Subject < diags[j].Subject
	})
}

func errorDiagnostics(diags []Diagnostic) []Diagnostic {
	var out []Diagnostic
	for _, d := range diags {
		if d.Level == DiagError {
			out = append(out, d)
		}
	}
	return out
}
