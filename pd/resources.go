package pd

import (
	"go.uber.org/zap"

	"github.com/yaroher/p4-pd-gen/internal/help"
	"github.com/yaroher/p4-pd-gen/logger"
	"github.com/yaroher/p4-pd-gen/schema"
)

// dualWidthALU is the stateful ALU width that is split into two 64-bit lanes.
const dualWidthALU = 128

// ResourceSet is the output of ExtractResources.
type ResourceSet struct {
	Counters  map[string]*CounterInfo
	Meters    map[string]*MeterInfo
	LPFs      map[string]*MeterInfo
	WREDs     map[string]*MeterInfo
	Registers map[string]*RegisterInfo
}

type binding struct {
	kind  Binding
	table string
}

// directBindings maps a resource handle to the match table that references it
// directly. Every match table is scanned, controllable or not.
func directBindings(tables []schema.Node) (map[int]string, error) {
	out := make(map[int]string)
	for _, t := range tables {
		tableType, err := t.Str("table_type")
		if err != nil {
			return nil, err
		}
		if tableType != tableTypeMatch {
			continue
		}
		name, err := t.Str("name")
		if err != nil {
			return nil, err
		}
		for _, key := range resourceRefKeys {
			refs, err := t.OptList(key)
			if err != nil {
				return nil, err
			}
			for _, r := range refs {
				how, err := r.Enum("how_referenced", string(BindingDirect), string(BindingIndirect))
				if err != nil {
					return nil, err
				}
				if Binding(how) != BindingDirect {
					continue
				}
				handle, err := r.Int("handle")
				if err != nil {
					return nil, err
				}
				if _, ok := out[handle]; !ok {
					out[handle] = name
				}
			}
		}
	}
	return out, nil
}

// ExtractResources classifies every statistics, meter and stateful table as
// directly or indirectly bound.
func ExtractResources(root schema.Node, prefix string) (*ResourceSet, error) {
	l := logger.Named("resources")
	tables, err := root.List("tables")
	if err != nil {
		return nil, err
	}
	direct, err := directBindings(tables)
	if err != nil {
		return nil, err
	}
	set := &ResourceSet{
		Counters:  make(map[string]*CounterInfo),
		Meters:    make(map[string]*MeterInfo),
		LPFs:      make(map[string]*MeterInfo),
		WREDs:     make(map[string]*MeterInfo),
		Registers: make(map[string]*RegisterInfo),
	}
	for _, t := range tables {
		tableType, err := t.Str("table_type")
		if err != nil {
			return nil, err
		}
		if !isResourceTableType(tableType) {
			continue
		}
		name, err := t.Str("name")
		if err != nil {
			return nil, err
		}
		handle, err := t.Int("handle")
		if err != nil {
			return nil, err
		}
		size, err := t.OptInt("size", 0)
		if err != nil {
			return nil, err
		}
		b := binding{kind: BindingIndirect}
		if table, ok := direct[handle]; ok {
			b = binding{kind: BindingDirect, table: table}
		}

		switch tableType {
		case tableTypeStatistics:
			statsType, err := t.OptStr("statistics_type", "packets_and_bytes")
			if err != nil {
				return nil, err
			}
			set.Counters[name] = &CounterInfo{
				Name: name, Handle: handle, Binding: b.kind, BoundTable: b.table, Size: size, Type: statsType,
			}
		case tableTypeMeter:
			granularity, meterType, err := meterAttrs(t)
			if err != nil {
				return nil, err
			}
			info := &MeterInfo{
				Name: name, Handle: handle, Binding: b.kind, BoundTable: b.table, Size: size,
				Granularity: granularity, MeterType: meterType,
			}
			switch meterLabel(granularity, meterType) {
			case LabelLPF:
				set.LPFs[name] = info
			case LabelWRED:
				set.WREDs[name] = info
			default:
				set.Meters[name] = info
			}
		case tableTypeStateful:
			aluWidth, err := t.Int("alu_width")
			if err != nil {
				return nil, err
			}
			info := registerInfo(prefix, name, aluWidth)
			info.Handle, info.Binding, info.BoundTable, info.Size = handle, b.kind, b.table, size
			set.Registers[name] = info
		}
		l.Debug(
			"resource",
			zap.String("name", name),
			zap.String("table_type", tableType),
			zap.String("binding", string(b.kind)),
			zap.String("bound_table", b.table),
		)
	}
	return set, nil
}

// registerValueTypes maps a byte width to the C and Thrift value types.
func registerValueTypes(byteWidth int) (cType, thriftType string) {
	switch {
	case byteWidth == 1:
		return "uint8_t", "byte"
	case byteWidth == 2:
		return "uint16_t", "i16"
	case byteWidth <= 4:
		return "uint32_t", "i32"
	case byteWidth == 8:
		return "uint64_t", "i64"
	default:
		return "uint8_t *", "binary"
	}
}

// implThriftType is the narrower type used by the RPC implementation side.
func implThriftType(bits int) string {
	switch {
	case bits <= 8:
		return "byte"
	case bits <= 16:
		return "i16"
	default:
		return "i32"
	}
}

func registerInfo(prefix, name string, aluWidth int) *RegisterInfo {
	info := &RegisterInfo{Name: name, Width: aluWidth}
	if aluWidth == dualWidthALU {
		info.Width = aluWidth / 2
		info.DualWidth = true
	}
	info.ByteWidth = help.ByteWidth(info.Width)
	info.ImplThriftType = implThriftType(info.Width)

	if !info.DualWidth {
		info.ValueType, info.ThriftType = registerValueTypes(info.ByteWidth)
		return info
	}
	// two equal lanes, each Width bits wide
	cType, thriftType := registerValueTypes(info.ByteWidth)
	info.Layout = []RegisterSlice{
		{Name: "f0", ByteWidth: info.ByteWidth, ValueType: cType, ThriftType: thriftType},
		{Name: "f1", ByteWidth: info.ByteWidth, ValueType: cType, ThriftType: thriftType},
	}
	info.ValueType = "p4_pd_" + prefix + "_" + Normalize(name) + "_value_t"
	info.ThriftType = prefix + "_" + Normalize(name) + "_value_t"
	return info
}
