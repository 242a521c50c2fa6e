package pd

import (
	"os"
	"sort"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/samber/lo"
)

// MarshalJX writes the dictionary with pd_dict key names. Map keys are sorted
// so the dump is stable across runs.
func (d *Dict) MarshalJX(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("p4_name")
	e.Str(d.P4Name)
	e.FieldStart("p4_prefix")
	e.Str(d.P4Prefix)
	e.FieldStart("compiler_version")
	e.Str(d.CompilerVersion)
	e.FieldStart("gen_exm_test_pd")
	e.Bool(d.GenExmTestPD)
	e.FieldStart("gen_perf_test_pd")
	e.Bool(d.GenPerfTestPD)
	e.FieldStart("gen_md_pd")
	e.Bool(d.GenMdPD)
	e.FieldStart("gen_hitless_ha_test_pd")
	e.Bool(d.GenHitlessHATestPD)

	e.FieldStart("table_info")
	marshalMap(e, d.TableInfo, (*TableInfo).marshalJX)
	e.FieldStart("action_info")
	marshalMap(e, d.ActionInfo, (*ActionInfo).marshalJX)
	e.FieldStart("counter_info")
	marshalMap(e, d.CounterInfo, (*CounterInfo).marshalJX)
	e.FieldStart("meter_info")
	marshalMap(e, d.MeterInfo, (*MeterInfo).marshalJX)
	e.FieldStart("lpf_info")
	marshalMap(e, d.LPFInfo, (*MeterInfo).marshalJX)
	e.FieldStart("wred_info")
	marshalMap(e, d.WREDInfo, (*MeterInfo).marshalJX)
	e.FieldStart("register_info")
	marshalMap(e, d.RegisterInfo, (*RegisterInfo).marshalJX)

	e.FieldStart("learn_quanta")
	e.ArrStart()
	for _, lq := range d.LearnQuanta {
		lq.marshalJX(e)
	}
	e.ArrEnd()

	e.FieldStart("PHV_Container_Fields")
	e.ArrStart()
	for _, fields := range d.PHVContainerFields {
		marshalIntMap(e, fields)
	}
	e.ArrEnd()

	e.FieldStart("POV_Dict")
	e.ArrStart()
	for _, names := range d.POVDict {
		marshalStrings(e, names)
	}
	e.ArrEnd()

	e.FieldStart("parser_value_sets")
	marshalStrings(e, d.ParserValueSets)

	e.FieldStart("hash_calc_info")
	e.ArrStart()
	for _, h := range d.HashCalcs {
		h.marshalJX(e)
	}
	e.ArrEnd()
	e.ObjEnd()
}

// WriteFile dumps the dictionary as JSON to path.
func (d *Dict) WriteFile(path string) error {
	e := &jx.Encoder{}
	d.MarshalJX(e)
	if err := os.WriteFile(path, e.Bytes(), 0644); err != nil {
		return errors.Wrap(err, "write pd dict")
	}
	return nil
}

func marshalMap[T any](e *jx.Encoder, m map[string]T, fn func(T, *jx.Encoder)) {
	keys := lo.Keys(m)
	sort.Strings(keys)
	e.ObjStart()
	for _, k := range keys {
		e.FieldStart(k)
		fn(m[k], e)
	}
	e.ObjEnd()
}

func marshalIntMap(e *jx.Encoder, m map[string]int) {
	keys := lo.Keys(m)
	sort.Strings(keys)
	e.ObjStart()
	for _, k := range keys {
		e.FieldStart(k)
		e.Int(m[k])
	}
	e.ObjEnd()
}

func marshalStrings(e *jx.Encoder, s []string) {
	e.ArrStart()
	for _, v := range s {
		e.Str(v)
	}
	e.ArrEnd()
}

func marshalTableRef(e *jx.Encoder, r *TableRef) {
	if r == nil {
		e.Null()
		return
	}
	e.ObjStart()
	e.FieldStart("name")
	e.Str(r.Name)
	e.FieldStart("handle")
	e.Int(r.Handle)
	e.ObjEnd()
}

func marshalResourceRefs(e *jx.Encoder, refs []ResourceRef) {
	e.ArrStart()
	for _, r := range refs {
		e.ObjStart()
		e.FieldStart("name")
		e.Str(r.Name)
		e.FieldStart("type")
		e.Str(r.Type)
		e.FieldStart("handle")
		e.Int(r.Handle)
		e.ObjEnd()
	}
	e.ArrEnd()
}

func (t *TableInfo) marshalJX(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("name")
	e.Str(t.Name)
	e.FieldStart("handle")
	e.Int(t.Handle)
	e.FieldStart("match_type")
	e.Str(t.MatchType)
	if t.Algorithm != "" {
		e.FieldStart("algorithm")
		e.Str(t.Algorithm)
	}
	e.FieldStart("size")
	e.Int(t.Size)
	e.FieldStart("match_fields")
	e.ArrStart()
	for _, f := range t.MatchFields {
		e.ObjStart()
		e.FieldStart("name")
		e.Str(f.Name)
		e.FieldStart("match_type")
		e.Str(f.MatchType)
		e.FieldStart("bit_width")
		e.Int(f.BitWidth)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.FieldStart("actions")
	marshalStrings(e, t.Actions)
	if t.DefaultAction != "" {
		e.FieldStart("default_action")
		e.Str(t.DefaultAction)
	}
	e.FieldStart("action_profile")
	marshalTableRef(e, t.ActionProfile)
	e.FieldStart("selector")
	marshalTableRef(e, t.Selector)
	e.FieldStart("direct_resources")
	marshalResourceRefs(e, t.DirectResources)
	e.FieldStart("indirect_resources")
	marshalResourceRefs(e, t.IndirectResources)
	e.FieldStart("ap_bind_indirect_res_to_match")
	marshalStrings(e, t.APBindIndirectResToMatch)
	e.ObjEnd()
}

func (a *ActionInfo) marshalJX(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("name")
	e.Str(a.Name)
	e.FieldStart("handle")
	e.Int(a.Handle)
	e.FieldStart("params")
	e.ArrStart()
	for _, p := range a.Params {
		e.ObjStart()
		e.FieldStart("name")
		e.Str(p.Name)
		e.FieldStart("bit_width")
		e.Int(p.BitWidth)
		e.FieldStart("byte_width")
		e.Int(p.ByteWidth)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.FieldStart("indirect_resources")
	e.ArrStart()
	for _, r := range a.IndirectResources {
		e.ObjStart()
		e.FieldStart("resource_name")
		e.Str(r.ResourceName)
		e.FieldStart("type")
		e.Str(r.Type)
		e.FieldStart("handle")
		e.Int(r.Handle)
		e.FieldStart("access_mode")
		e.Str(string(r.AccessMode))
		if r.AccessMode == AccessIndex {
			e.FieldStart("parameter_name")
			e.Str(r.ParamName)
			e.FieldStart("parameter_index")
			e.Int(r.ParamIndex)
		} else {
			e.FieldStart("value")
			e.Int(r.Value)
		}
		e.ObjEnd()
	}
	e.ArrEnd()
	e.FieldStart("allowed_to_be_default_action")
	e.ObjStart()
	tables := lo.Keys(a.AllowedToBeDefaultAction)
	sort.Strings(tables)
	for _, t := range tables {
		e.FieldStart(t)
		e.Bool(a.AllowedToBeDefaultAction[t])
	}
	e.ObjEnd()
	e.FieldStart("tables")
	marshalStrings(e, a.Tables)
	e.ObjEnd()
}

func marshalBinding(e *jx.Encoder, b Binding, table string) {
	e.FieldStart("binding")
	e.Str(string(b))
	if b == BindingDirect {
		e.FieldStart("bound_table")
		e.Str(table)
	}
}

func (c *CounterInfo) marshalJX(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("name")
	e.Str(c.Name)
	e.FieldStart("handle")
	e.Int(c.Handle)
	marshalBinding(e, c.Binding, c.BoundTable)
	e.FieldStart("size")
	e.Int(c.Size)
	e.FieldStart("type")
	e.Str(c.Type)
	e.ObjEnd()
}

func (m *MeterInfo) marshalJX(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("name")
	e.Str(m.Name)
	e.FieldStart("handle")
	e.Int(m.Handle)
	marshalBinding(e, m.Binding, m.BoundTable)
	e.FieldStart("size")
	e.Int(m.Size)
	e.FieldStart("granularity")
	e.Str(m.Granularity)
	e.FieldStart("meter_type")
	e.Str(m.MeterType)
	e.ObjEnd()
}

func (r *RegisterInfo) marshalJX(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("name")
	e.Str(r.Name)
	e.FieldStart("handle")
	e.Int(r.Handle)
	marshalBinding(e, r.Binding, r.BoundTable)
	e.FieldStart("size")
	e.Int(r.Size)
	e.FieldStart("width")
	e.Int(r.Width)
	e.FieldStart("byte_width")
	e.Int(r.ByteWidth)
	e.FieldStart("dual_width_mode")
	e.Bool(r.DualWidth)
	e.FieldStart("value_type")
	e.Str(r.ValueType)
	e.FieldStart("thrift_type")
	e.Str(r.ThriftType)
	e.FieldStart("impl_thrift_type")
	e.Str(r.ImplThriftType)
	e.FieldStart("layout")
	e.ArrStart()
	for _, s := range r.Layout {
		e.ObjStart()
		e.FieldStart("name")
		e.Str(s.Name)
		e.FieldStart("byte_width")
		e.Int(s.ByteWidth)
		e.FieldStart("value_type")
		e.Str(s.ValueType)
		e.FieldStart("thrift_type")
		e.Str(s.ThriftType)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.ObjEnd()
}

func (lq *LearnQuantaInfo) marshalJX(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("name")
	e.Str(lq.Name)
	e.FieldStart("handle")
	e.Int(lq.Handle)
	e.FieldStart("fields")
	e.ArrStart()
	for _, f := range lq.Fields {
		e.ObjStart()
		e.FieldStart("name")
		e.Str(f.Name)
		e.FieldStart("bit_width")
		e.Int(f.BitWidth)
		e.FieldStart("byte_width")
		e.Int(f.ByteWidth)
		e.ObjEnd()
	}
	e.ArrEnd()
	for _, kv := range [][2]string{
		{"cb_fn_type", lq.DigestNotifyCB},
		{"notify_ack_fn", lq.NotifyAck},
		{"msg_type", lq.DigestMsgT},
		{"deregister_fn", lq.Deregister},
		{"register_fn", lq.Register},
		{"entry_type", lq.DigestEntryT},
	} {
		e.FieldStart(kv[0])
		e.Str(kv[1])
	}
	e.ObjEnd()
}

func (h *HashCalcInfo) marshalJX(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("name")
	e.Str(h.Name)
	e.FieldStart("handle")
	e.Int(h.Handle)
	e.FieldStart("field_lists")
	e.ArrStart()
	for _, fl := range h.FieldLists {
		e.ObjStart()
		e.FieldStart("name")
		e.Str(fl.Name)
		e.FieldStart("handle")
		e.Int(fl.Handle)
		e.FieldStart("fields")
		marshalStrings(e, fl.Fields)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.FieldStart("algorithms")
	marshalStrings(e, h.Algorithms)
	e.FieldStart("any_hash_algorithm_allowed")
	e.Bool(h.AnyAlgorithmAllowed)
	e.ObjEnd()
}
