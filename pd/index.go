package pd

import (
	"github.com/yaroher/p4-pd-gen/schema"
)

// Resource table types in context.json.
const (
	tableTypeMatch      = "match"
	tableTypeStatistics = "statistics"
	tableTypeMeter      = "meter"
	tableTypeStateful   = "stateful"
)

// Type labels attached to resource references.
const (
	LabelCounter  = "counter"
	LabelRegister = "register"
	LabelLPF      = "lpf"
	LabelWRED     = "wred"
)

type resourceEntry struct {
	Name      string
	Handle    int
	TableType string
	Label     string
}

// ResourceIndex is the first phase of reference resolution: every
// statistics/meter/stateful table by name, built before any match table is
// looked at.
type ResourceIndex struct {
	byName map[string]resourceEntry
}

func isResourceTableType(t string) bool {
	return t == tableTypeStatistics || t == tableTypeMeter || t == tableTypeStateful
}

// meterLabel is "{granularity}_meter", except LPF and RED meters which get
// their own labels.
func meterLabel(granularity, meterType string) string {
	switch meterType {
	case "lpf":
		return LabelLPF
	case "red":
		return LabelWRED
	default:
		return granularity + "_meter"
	}
}

func meterAttrs(t schema.Node) (granularity, meterType string, err error) {
	granularity, err = t.OptStr("meter_granularity", "packets")
	if err != nil {
		return "", "", err
	}
	meterType, err = t.OptStr("meter_type", "standard")
	if err != nil {
		return "", "", err
	}
	return granularity, meterType, nil
}

// BuildResourceIndex scans the tables list for resource tables.
func BuildResourceIndex(root schema.Node) (*ResourceIndex, error) {
	tables, err := root.List("tables")
	if err != nil {
		return nil, err
	}
	idx := &ResourceIndex{byName: make(map[string]resourceEntry)}
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
		entry := resourceEntry{Name: name, Handle: handle, TableType: tableType}
		switch tableType {
		case tableTypeStatistics:
			entry.Label = LabelCounter
		case tableTypeStateful:
			entry.Label = LabelRegister
		case tableTypeMeter:
			granularity, meterType, err := meterAttrs(t)
			if err != nil {
				return nil, err
			}
			entry.Label = meterLabel(granularity, meterType)
		}
		idx.byName[name] = entry
	}
	return idx, nil
}

func (idx *ResourceIndex) lookup(name string) (resourceEntry, bool) {
	e, ok := idx.byName[name]
	return e, ok
}

// Len is the number of indexed resource tables.
func (idx *ResourceIndex) Len() int {
	return len(idx.byName)
}
