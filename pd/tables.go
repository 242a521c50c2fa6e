package pd

import (
	"go.uber.org/zap"

	"github.com/yaroher/p4-pd-gen/internal/help"
	"github.com/yaroher/p4-pd-gen/logger"
	"github.com/yaroher/p4-pd-gen/schema"
)

// TableSet is the output of ExtractTables.
type TableSet struct {
	Tables      map[string]*TableInfo
	Order       []string
	Actions     map[string]*ActionInfo
	ActionOrder []string
}

var resourceRefKeys = []string{
	"statistics_table_refs",
	"meter_table_refs",
	"stateful_table_refs",
}

// ExtractTables walks resource-controllable match tables. Resource references
// resolve through idx, which must already hold every resource table.
func ExtractTables(root schema.Node, idx *ResourceIndex) (*TableSet, error) {
	l := logger.Named("tables")
	tables, err := root.List("tables")
	if err != nil {
		return nil, err
	}
	set := &TableSet{
		Tables:  make(map[string]*TableInfo),
		Actions: make(map[string]*ActionInfo),
	}
	for _, t := range tables {
		tableType, err := t.Str("table_type")
		if err != nil {
			return nil, err
		}
		if tableType != tableTypeMatch {
			continue
		}
		controllable, err := t.OptBool("is_resource_controllable", true)
		if err != nil {
			return nil, err
		}
		if !controllable {
			continue
		}
		info, err := extractTable(t, idx, set)
		if err != nil {
			return nil, err
		}
		if _, dup := set.Tables[info.Name]; !dup {
			set.Order = append(set.Order, info.Name)
		}
		set.Tables[info.Name] = info
		l.Debug(
			"table",
			zap.String("name", info.Name),
			zap.Int("handle", info.Handle),
			zap.String("match_type", info.MatchType),
			zap.Int("actions", len(info.Actions)),
			zap.Int("direct_resources", len(info.DirectResources)),
			zap.Int("indirect_resources", len(info.IndirectResources)),
		)
	}
	return set, nil
}

func extractTable(t schema.Node, idx *ResourceIndex, set *TableSet) (*TableInfo, error) {
	info := &TableInfo{}
	var err error
	if info.Name, err = t.Str("name"); err != nil {
		return nil, err
	}
	if info.Handle, err = t.Int("handle"); err != nil {
		return nil, err
	}
	if info.Size, err = t.OptInt("size", 0); err != nil {
		return nil, err
	}
	if info.DefaultAction, err = t.OptStr("default_action", ""); err != nil {
		return nil, err
	}

	fields, err := t.List("match_key_fields")
	if err != nil {
		return nil, err
	}
	if info.MatchType, err = tableMatchType(fields); err != nil {
		return nil, err
	}
	if info.MatchFields, err = matchFields(fields); err != nil {
		return nil, err
	}
	if info.Algorithm, err = tableAlgorithm(t); err != nil {
		return nil, err
	}
	if info.Actions, err = extractActions(t, info.Name, idx, set); err != nil {
		return nil, err
	}
	if info.DirectResources, info.IndirectResources, err = resolveResourceRefs(t, info.Name, idx); err != nil {
		return nil, err
	}
	if info.ActionProfile, err = actionProfile(t); err != nil {
		return nil, err
	}
	if info.Selector, err = selector(t); err != nil {
		return nil, err
	}

	binds, err := t.OptList("ap_bind_indirect_res_to_match")
	if err != nil {
		return nil, err
	}
	for _, b := range binds {
		s, err := b.AsString()
		if err != nil {
			return nil, err
		}
		info.APBindIndirectResToMatch = append(info.APBindIndirectResToMatch, s)
	}
	return info, nil
}

// tableMatchType returns the match type of the first ternary, lpm or range
// key field in list order, or exact when there is none.
func tableMatchType(fields []schema.Node) (string, error) {
	for _, f := range fields {
		mt, err := f.Str("match_type")
		if err != nil {
			return "", err
		}
		switch mt {
		case MatchTernary, MatchLPM, MatchRange:
			return mt, nil
		}
	}
	return MatchExact, nil
}

// matchFields builds the ordered key layout. A field seen again upgrades an
// exact entry to the newer type and never replaces a specific one.
func matchFields(fields []schema.Node) ([]MatchField, error) {
	out := make([]MatchField, 0, len(fields))
	pos := make(map[string]int)
	for _, f := range fields {
		name, err := f.Str("name")
		if err != nil {
			return nil, err
		}
		mt, err := f.Str("match_type")
		if err != nil {
			return nil, err
		}
		width, err := f.OptInt("bit_width", 0)
		if err != nil {
			return nil, err
		}
		isValid, err := f.OptBool("is_valid", false)
		if err != nil {
			return nil, err
		}
		if isValid {
			mt = validPrefix + mt
			name = help.TrimValidSuffix(name)
		}
		name = Normalize(name)

		if i, ok := pos[name]; ok {
			// repeated key entries are slices of the same field
			out[i].BitWidth += width
			if out[i].MatchType == MatchExact && mt != MatchExact {
				out[i].MatchType = mt
			}
			continue
		}
		pos[name] = len(out)
		out = append(out, MatchField{Name: name, MatchType: mt, BitWidth: width})
	}
	return out, nil
}

func tableAlgorithm(t schema.Node) (string, error) {
	if !t.Has("match_attributes") {
		return "", nil
	}
	attrs, err := t.Object("match_attributes")
	if err != nil {
		return "", err
	}
	mt, err := attrs.OptStr("match_type", "")
	if err != nil {
		return "", err
	}
	switch mt {
	case "algorithmic_tcam":
		return "atcam", nil
	case "algorithmic_lpm":
		return "alpm", nil
	default:
		return "", nil
	}
}

func extractActions(t schema.Node, table string, idx *ResourceIndex, set *TableSet) ([]string, error) {
	actions, err := t.List("actions")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(actions))
	for _, a := range actions {
		compilerAdded, err := a.OptBool("is_compiler_added_action", false)
		if err != nil {
			return nil, err
		}
		if compilerAdded {
			continue
		}
		name, err := a.Str("name")
		if err != nil {
			return nil, err
		}
		allowed, err := a.OptBool("allowed_to_be_default_action", true)
		if err != nil {
			return nil, err
		}
		names = append(names, name)

		if existing, ok := set.Actions[name]; ok {
			existing.AllowedToBeDefaultAction[table] = allowed
			existing.Tables = append(existing.Tables, table)
			continue
		}
		info, err := extractAction(a, name, idx)
		if err != nil {
			return nil, err
		}
		info.AllowedToBeDefaultAction = map[string]bool{table: allowed}
		info.Tables = []string{table}
		set.Actions[name] = info
		set.ActionOrder = append(set.ActionOrder, name)
	}
	return names, nil
}

func extractAction(a schema.Node, name string, idx *ResourceIndex) (*ActionInfo, error) {
	handle, err := a.Int("handle")
	if err != nil {
		return nil, err
	}
	info := &ActionInfo{Name: name, Handle: handle}

	params, err := a.List("p4_parameters")
	if err != nil {
		return nil, err
	}
	for _, p := range params {
		pname, err := p.Str("name")
		if err != nil {
			return nil, err
		}
		bits, err := p.Int("bit_width")
		if err != nil {
			return nil, err
		}
		info.Params = append(info.Params, ActionParam{Name: pname, BitWidth: bits, ByteWidth: help.ByteWidth(bits)})
	}

	resources, err := a.OptList("indirect_resources")
	if err != nil {
		return nil, err
	}
	for _, r := range resources {
		ir, err := indirectResource(r, name, idx)
		if err != nil {
			return nil, err
		}
		info.IndirectResources = append(info.IndirectResources, ir)
	}
	return info, nil
}

func indirectResource(r schema.Node, action string, idx *ResourceIndex) (IndirectResource, error) {
	rname, err := r.Str("resource_name")
	if err != nil {
		return IndirectResource{}, err
	}
	mode, err := r.Enum("access_mode", string(AccessIndex), string(AccessConstant))
	if err != nil {
		return IndirectResource{}, err
	}
	entry, ok := idx.lookup(rname)
	if !ok {
		return IndirectResource{}, &ReferenceError{Owner: action, Resource: rname, Path: r.Path()}
	}
	ir := IndirectResource{
		ResourceName: rname,
		Type:         entry.Label,
		Handle:       entry.Handle,
		AccessMode:   AccessMode(mode),
	}
	if ir.AccessMode == AccessIndex {
		if ir.ParamName, err = r.Str("parameter_name"); err != nil {
			return IndirectResource{}, err
		}
		if ir.ParamIndex, err = r.Int("parameter_index"); err != nil {
			return IndirectResource{}, err
		}
		return ir, nil
	}
	if ir.Value, err = r.Int("value"); err != nil {
		return IndirectResource{}, err
	}
	return ir, nil
}

// resolveResourceRefs splits statistics/meter/stateful references. Direct
// ones are taken as written; indirect ones are collected by name first and
// only then mapped to handles through idx.
func resolveResourceRefs(t schema.Node, table string, idx *ResourceIndex) (direct, indirect []ResourceRef, err error) {
	type pending struct {
		name string
		path schema.Path
	}
	var indirectNames []pending
	seen := make(map[string]bool)

	for _, key := range resourceRefKeys {
		refs, err := t.OptList(key)
		if err != nil {
			return nil, nil, err
		}
		for _, r := range refs {
			rname, err := r.Str("name")
			if err != nil {
				return nil, nil, err
			}
			how, err := r.Enum("how_referenced", string(BindingDirect), string(BindingIndirect))
			if err != nil {
				return nil, nil, err
			}
			if Binding(how) == BindingIndirect {
				if !seen[rname] {
					seen[rname] = true
					indirectNames = append(indirectNames, pending{name: rname, path: r.Path()})
				}
				continue
			}
			handle, err := r.Int("handle")
			if err != nil {
				return nil, nil, err
			}
			entry, ok := idx.lookup(rname)
			if !ok {
				return nil, nil, &ReferenceError{Owner: table, Resource: rname, Path: r.Path()}
			}
			if handle != entry.Handle {
				return nil, nil, &HandleMismatchError{
					Owner:    table,
					Resource: rname,
					Handle:   handle,
					Want:     entry.Handle,
					Path:     r.Path(),
				}
			}
			direct = append(direct, ResourceRef{Name: rname, Type: entry.Label, Handle: handle})
		}
	}

	for _, p := range indirectNames {
		entry, ok := idx.lookup(p.name)
		if !ok {
			return nil, nil, &ReferenceError{Owner: table, Resource: p.name, Path: p.path}
		}
		indirect = append(indirect, ResourceRef{Name: entry.Name, Type: entry.Label, Handle: entry.Handle})
	}
	return direct, indirect, nil
}

func actionProfile(t schema.Node) (*TableRef, error) {
	var ref *TableRef
	refs, err := t.OptList("action_data_table_refs")
	if err != nil {
		return nil, err
	}
	for _, r := range refs {
		how, err := r.Enum("how_referenced", string(BindingDirect), string(BindingIndirect))
		if err != nil {
			return nil, err
		}
		if Binding(how) != BindingIndirect {
			continue
		}
		name, err := r.Str("name")
		if err != nil {
			return nil, err
		}
		handle, err := r.Int("handle")
		if err != nil {
			return nil, err
		}
		ref = &TableRef{Name: name, Handle: handle}
		break
	}

	name, err := t.OptStr("action_profile", "")
	if err != nil {
		return nil, err
	}
	if name != "" && (ref == nil || ref.Name != name) {
		ref = &TableRef{Name: name}
	}
	return ref, nil
}

func selector(t schema.Node) (*TableRef, error) {
	refs, err := t.OptList("selection_table_refs")
	if err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return nil, nil
	}
	name, err := refs[0].Str("name")
	if err != nil {
		return nil, err
	}
	handle, err := refs[0].Int("handle")
	if err != nil {
		return nil, err
	}
	return &TableRef{Name: name, Handle: handle}, nil
}
