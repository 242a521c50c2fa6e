package pd

import (
	"strings"

	"go.uber.org/zap"

	"github.com/yaroher/p4-pd-gen/logger"
	"github.com/yaroher/p4-pd-gen/schema"
)

// Options carries the values that come from the command line rather than
// from context.json.
type Options struct {
	P4Name          string
	P4Prefix        string
	CompilerVersion string

	GenExmTestPD       bool
	GenPerfTestPD      bool
	GenMdPD            bool
	GenHitlessHATestPD bool
}

// Phase names reported in PhaseError.
const (
	PhaseResourceIndex = "resource_index"
	PhaseTables        = "tables"
	PhaseResources     = "resources"
	PhaseLearnQuanta   = "learn_quanta"
	PhasePHVFields     = "phv_fields"
	PhasePOV           = "pov"
	PhaseParserVS      = "parser_value_sets"
	PhaseHashCalcs     = "hash_calcs"
	PhaseValidate      = "validate"
)

// Build runs every extractor over doc in a fixed order, assembles the result
// and validates it. On error nothing is returned but the *PhaseError.
func Build(doc *schema.Document, opts Options) (*Dict, error) {
	l := logger.Named("build")
	root := doc.Root()
	prefix := strings.TrimSpace(opts.P4Prefix)
	if prefix == "" {
		prefix = opts.P4Name
	}
	fail := func(phase string, err error) (*Dict, error) {
		l.Debug("phase failed", zap.String("phase", phase), zap.Error(err))
		return nil, &PhaseError{Phase: phase, Err: err}
	}

	idx, err := BuildResourceIndex(root)
	if err != nil {
		return fail(PhaseResourceIndex, err)
	}
	tables, err := ExtractTables(root, idx)
	if err != nil {
		return fail(PhaseTables, err)
	}
	resources, err := ExtractResources(root, prefix)
	if err != nil {
		return fail(PhaseResources, err)
	}
	lqs, err := ExtractLearnQuanta(root, prefix)
	if err != nil {
		return fail(PhaseLearnQuanta, err)
	}
	phvFields, err := ExtractPHVFields(root)
	if err != nil {
		return fail(PhasePHVFields, err)
	}
	pov, err := ExtractPOV(root)
	if err != nil {
		return fail(PhasePOV, err)
	}
	pvs, err := ExtractParserValueSets(root)
	if err != nil {
		return fail(PhaseParserVS, err)
	}
	hashCalcs, err := ExtractHashCalcs(root)
	if err != nil {
		return fail(PhaseHashCalcs, err)
	}

	d := &Dict{
		P4Name:             opts.P4Name,
		P4Prefix:           prefix,
		CompilerVersion:    opts.CompilerVersion,
		GenExmTestPD:       opts.GenExmTestPD,
		GenPerfTestPD:      opts.GenPerfTestPD,
		GenMdPD:            opts.GenMdPD,
		GenHitlessHATestPD: opts.GenHitlessHATestPD,
		TableInfo:          tables.Tables,
		TableOrder:         tables.Order,
		ActionInfo:         tables.Actions,
		ActionOrder:        tables.ActionOrder,
		CounterInfo:        resources.Counters,
		MeterInfo:          resources.Meters,
		LPFInfo:            resources.LPFs,
		WREDInfo:           resources.WREDs,
		RegisterInfo:       resources.Registers,
		LearnQuanta:        lqs,
		PHVContainerFields: phvFields,
		POVDict:            pov,
		ParserValueSets:    pvs,
		HashCalcs:          hashCalcs,
	}
	diags := Validate(d)
	for _, diag := range diags {
		if diag.Level == DiagWarn {
			l.Warn(diag.Message, zap.String("subject", diag.Subject))
		}
	}
	if errs := errorDiagnostics(diags); len(errs) > 0 {
		return fail(PhaseValidate, &ValidationError{Diagnostics: errs})
	}

	l.Info(
		"pd dictionary built",
		zap.String("p4_name", d.P4Name),
		zap.Int("tables", len(d.TableOrder)),
		zap.Int("actions", len(d.ActionOrder)),
		zap.Int("resource_tables", idx.Len()),
		zap.Int("learn_quanta", len(d.LearnQuanta)),
	)
	return d, nil
}
