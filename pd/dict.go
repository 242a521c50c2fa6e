package pd

import (
	"sort"

	"github.com/samber/lo"
)

// Gress indexes per-direction outputs such as PHVContainerFields.
type Gress int

const (
	Ingress Gress = 0
	Egress  Gress = 1
)

func (g Gress) String() string {
	if g == Egress {
		return "egress"
	}
	return "ingress"
}

type Binding string

const (
	BindingDirect   Binding = "direct"
	BindingIndirect Binding = "indirect"
)

type AccessMode string

const (
	AccessIndex    AccessMode = "index"
	AccessConstant AccessMode = "constant"
)

// Match types as they appear in match_key_fields.
const (
	MatchExact   = "exact"
	MatchTernary = "ternary"
	MatchLPM     = "lpm"
	MatchRange   = "range"

	validPrefix = "valid_"
)

// Dict is everything the templates see. It is assembled once by Build and
// not modified afterwards.
type Dict struct {
	P4Name          string
	P4Prefix        string
	CompilerVersion string

	GenExmTestPD       bool
	GenPerfTestPD      bool
	GenMdPD            bool
	GenHitlessHATestPD bool

	TableInfo   map[string]*TableInfo
	TableOrder  []string
	ActionInfo  map[string]*ActionInfo
	ActionOrder []string

	CounterInfo  map[string]*CounterInfo
	MeterInfo    map[string]*MeterInfo
	LPFInfo      map[string]*MeterInfo
	WREDInfo     map[string]*MeterInfo
	RegisterInfo map[string]*RegisterInfo

	LearnQuanta []*LearnQuantaInfo

	// PHVContainerFields maps a field name to its widest per-stage byte width.
	PHVContainerFields [2]map[string]int
	// POVDict lists header validity bits ordered by first-seen position offset.
	POVDict [2][]string

	ParserValueSets []string
	HashCalcs       []*HashCalcInfo
}

type TableRef struct {
	Name   string
	Handle int
}

type ResourceRef struct {
	Name   string
	Type   string
	Handle int
}

type MatchField struct {
	Name      string
	MatchType string
	BitWidth  int
}

type TableInfo struct {
	Name          string
	Handle        int
	MatchType     string
	Algorithm     string
	Size          int
	MatchFields   []MatchField
	Actions       []string
	DefaultAction string

	ActionProfile *TableRef
	Selector      *TableRef

	DirectResources          []ResourceRef
	IndirectResources        []ResourceRef
	APBindIndirectResToMatch []string
}

type ActionParam struct {
	Name      string
	BitWidth  int
	ByteWidth int
}

type IndirectResource struct {
	ResourceName string
	Type         string
	Handle       int
	AccessMode   AccessMode
	ParamName    string
	ParamIndex   int
	Value        int
}

type ActionInfo struct {
	Name              string
	Handle            int
	Params            []ActionParam
	IndirectResources []IndirectResource
	// AllowedToBeDefaultAction is keyed by table name.
	AllowedToBeDefaultAction map[string]bool
	Tables                   []string
}

type CounterInfo struct {
	Name       string
	Handle     int
	Binding    Binding
	BoundTable string
	Size       int
	Type       string
}

type MeterInfo struct {
	Name        string
	Handle      int
	Binding     Binding
	BoundTable  string
	Size        int
	Granularity string
	MeterType   string
}

type RegisterSlice struct {
	Name       string
	ByteWidth  int
	ValueType  string
	ThriftType string
}

type RegisterInfo struct {
	Name       string
	Handle     int
	Binding    Binding
	BoundTable string
	Size       int
	// Width is in bits; halved from the ALU width in dual-width mode.
	Width int
	// ByteWidth is per lane in dual-width mode.
	ByteWidth      int
	DualWidth      bool
	ValueType      string
	ThriftType     string
	ImplThriftType string
	Layout         []RegisterSlice
}

type LearnField struct {
	Name      string
	BitWidth  int
	ByteWidth int
}

type LearnQuantaInfo struct {
	Name   string
	Handle int
	Fields []LearnField

	DigestNotifyCB string
	NotifyAck      string
	DigestMsgT     string
	Deregister     string
	Register       string
	DigestEntryT   string
}

type HashFieldList struct {
	Name   string
	Handle int
	Fields []string
}

type HashCalcInfo struct {
	Name                string
	Handle              int
	FieldLists          []HashFieldList
	Algorithms          []string
	AnyAlgorithmAllowed bool
}

// PhvField is one entry of PHVContainerFields in name order.
type PhvField struct {
	Name      string
	ByteWidth int
}

// Tables returns tables in context.json order.
func (d *Dict) Tables() []*TableInfo {
	return lo.Map(d.TableOrder, func(name string, _ int) *TableInfo {
		return d.TableInfo[name]
	})
}

// Actions returns actions in first-seen order.
func (d *Dict) Actions() []*ActionInfo {
	return lo.Map(d.ActionOrder, func(name string, _ int) *ActionInfo {
		return d.ActionInfo[name]
	})
}

// PHVFields returns the container fields of one gress sorted by name.
func (d *Dict) PHVFields(g Gress) []PhvField {
	fields := d.PHVContainerFields[g]
	names := lo.Keys(fields)
	sort.Strings(names)
	return lo.Map(names, func(name string, _ int) PhvField {
		return PhvField{Name: name, ByteWidth: fields[name]}
	})
}

// Registers returns register_info sorted by name.
func (d *Dict) Registers() []*RegisterInfo {
	return sortedValues(d.RegisterInfo)
}

// Counters returns counter_info sorted by name.
func (d *Dict) Counters() []*CounterInfo {
	return sortedValues(d.CounterInfo)
}

// AllMeters returns meter, lpf and wred entries together, sorted by name.
func (d *Dict) AllMeters() []*MeterInfo {
	all := lo.Assign(map[string]*MeterInfo{}, d.MeterInfo, d.LPFInfo, d.WREDInfo)
	return sortedValues(all)
}

func sortedValues[T any](m map[string]T) []T {
	names := lo.Keys(m)
	sort.Strings(names)
	return lo.Map(names, func(name string, _ int) T {
		return m[name]
	})
}
