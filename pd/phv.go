package pd

import (
	"sort"

	"github.com/yaroher/p4-pd-gen/internal/help"
	"github.com/yaroher/p4-pd-gen/schema"
)

var gressKeys = [2]string{"ingress", "egress"}

type phvRecord struct {
	Name  string
	Bits  int
	IsPOV bool
	node  schema.Node
}

func readPHVRecord(r schema.Node) (phvRecord, error) {
	name, err := r.Str("field_name")
	if err != nil {
		return phvRecord{}, err
	}
	msb, err := r.Int("field_msb")
	if err != nil {
		return phvRecord{}, err
	}
	lsb, err := r.Int("field_lsb")
	if err != nil {
		return phvRecord{}, err
	}
	if msb < lsb {
		return phvRecord{}, r.Invalid("field_msb", "not less than field_lsb")
	}
	isPOV, err := r.OptBool("is_pov", false)
	if err != nil {
		return phvRecord{}, err
	}
	return phvRecord{Name: name, Bits: msb - lsb + 1, IsPOV: isPOV, node: r}, nil
}

// walkPHV calls fn once per stage and gress with that stage's records.
func walkPHV(root schema.Node, fn func(g Gress, records []phvRecord) error) error {
	stages, err := root.OptList("phv_allocation")
	if err != nil {
		return err
	}
	for _, stage := range stages {
		for g, key := range gressKeys {
			nodes, err := stage.OptList(key)
			if err != nil {
				return err
			}
			records := make([]phvRecord, 0, len(nodes))
			for _, n := range nodes {
				rec, err := readPHVRecord(n)
				if err != nil {
					return err
				}
				records = append(records, rec)
			}
			if err := fn(Gress(g), records); err != nil {
				return err
			}
		}
	}
	return nil
}

// ExtractPHVFields sums non-POV slice widths per field within each stage and
// keeps the largest per-stage byte width seen across stages.
func ExtractPHVFields(root schema.Node) ([2]map[string]int, error) {
	out := [2]map[string]int{make(map[string]int), make(map[string]int)}
	err := walkPHV(root, func(g Gress, records []phvRecord) error {
		stageBits := make(map[string]int)
		for _, rec := range records {
			if rec.IsPOV {
				continue
			}
			stageBits[rec.Name] += rec.Bits
		}
		for name, bits := range stageBits {
			if bytes := help.ByteWidth(bits); bytes > out[g][name] {
				out[g][name] = bytes
			}
		}
		return nil
	})
	if err != nil {
		return [2]map[string]int{}, err
	}
	return out, nil
}

type povEntry struct {
	Name   string
	Offset int
}

// ExtractPOV collects header validity bits. The first sighting of a header
// fixes its offset; the result is stable-sorted by offset.
func ExtractPOV(root schema.Node) ([2][]string, error) {
	var entries [2][]povEntry
	seen := [2]map[string]bool{make(map[string]bool), make(map[string]bool)}
	add := func(g Gress, name string, offset int) {
		name = help.TrimValidSuffix(name)
		if seen[g][name] {
			return
		}
		seen[g][name] = true
		entries[g] = append(entries[g], povEntry{Name: name, Offset: offset})
	}

	err := walkPHV(root, func(g Gress, records []phvRecord) error {
		for _, rec := range records {
			if !rec.IsPOV {
				continue
			}
			headers, err := rec.node.OptList("pov_headers")
			if err != nil {
				return err
			}
			if len(headers) == 0 {
				offset, err := rec.node.Int("position_offset")
				if err != nil {
					return err
				}
				add(g, rec.Name, offset)
				continue
			}
			for _, h := range headers {
				name, err := h.Str("header_name")
				if err != nil {
					return err
				}
				src := h
				if !h.Has("position_offset") {
					src = rec.node
				}
				offset, err := src.Int("position_offset")
				if err != nil {
					return err
				}
				add(g, name, offset)
			}
		}
		return nil
	})
	if err != nil {
		return [2][]string{}, err
	}

	var out [2][]string
	for g := range entries {
		sort.SliceStable(entries[g], func(i, j int) bool {
			return entries[g][i].Offset < entries[g][j].Offset
		})
		out[g] = make([]string, len(entries[g]))
		for i, e := range entries[g] {
			out[g][i] = e.Name
		}
	}
	return out, nil
}
