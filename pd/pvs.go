package pd

import (
	"github.com/samber/lo"

	"github.com/yaroher/p4-pd-gen/schema"
)

// ExtractParserValueSets collects pvs_name from parser states. Newer compilers
// emit a "parsers" list with per-parser "states"; older ones a single "parser"
// object with ingress/egress state lists. A state counts unless it says
// uses_pvs: false.
func ExtractParserValueSets(root schema.Node) ([]string, error) {
	var states []schema.Node
	switch {
	case root.Has("parsers"):
		parsers, err := root.List("parsers")
		if err != nil {
			return nil, err
		}
		for _, p := range parsers {
			ps, err := p.List("states")
			if err != nil {
				return nil, err
			}
			states = append(states, ps...)
		}
	case root.Has("parser"):
		parser, err := root.Object("parser")
		if err != nil {
			return nil, err
		}
		for _, key := range []string{"states", gressKeys[Ingress], gressKeys[Egress]} {
			ps, err := parser.OptList(key)
			if err != nil {
				return nil, err
			}
			states = append(states, ps...)
		}
	}

	names := make([]string, 0)
	for _, s := range states {
		if !s.Has("pvs_name") {
			continue
		}
		uses, err := s.OptBool("uses_pvs", true)
		if err != nil {
			return nil, err
		}
		if !uses {
			continue
		}
		name, err := s.Str("pvs_name")
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return lo.Uniq(names), nil
}
