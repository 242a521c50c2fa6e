package pd

import (
	"github.com/yaroher/p4-pd-gen/schema"
)

// ExtractHashCalcs reads dynamic_hash_calculations.
func ExtractHashCalcs(root schema.Node) ([]*HashCalcInfo, error) {
	calcs, err := root.OptList("dynamic_hash_calculations")
	if err != nil {
		return nil, err
	}
	out := make([]*HashCalcInfo, 0, len(calcs))
	for _, c := range calcs {
		info := &HashCalcInfo{}
		if info.Name, err = c.Str("name"); err != nil {
			return nil, err
		}
		if info.Handle, err = c.Int("handle"); err != nil {
			return nil, err
		}
		if info.AnyAlgorithmAllowed, err = c.OptBool("any_hash_algorithm_allowed", false); err != nil {
			return nil, err
		}

		lists, err := c.List("field_lists")
		if err != nil {
			return nil, err
		}
		for _, fl := range lists {
			hfl, err := hashFieldList(fl)
			if err != nil {
				return nil, err
			}
			info.FieldLists = append(info.FieldLists, hfl)
		}

		algos, err := c.OptList("algorithms")
		if err != nil {
			return nil, err
		}
		for _, a := range algos {
			name, err := a.Str("name")
			if err != nil {
				return nil, err
			}
			info.Algorithms = append(info.Algorithms, name)
		}
		out = append(out, info)
	}
	return out, nil
}

func hashFieldList(fl schema.Node) (HashFieldList, error) {
	var out HashFieldList
	var err error
	if out.Name, err = fl.Str("name"); err != nil {
		return out, err
	}
	if out.Handle, err = fl.Int("handle"); err != nil {
		return out, err
	}
	fields, err := fl.List("fields")
	if err != nil {
		return out, err
	}
	for _, f := range fields {
		name, err := f.Str("name")
		if err != nil {
			return out, err
		}
		out.Fields = append(out.Fields, Normalize(name))
	}
	return out, nil
}
