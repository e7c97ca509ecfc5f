package codegen

import (
	"sort"
	"strings"
)

// SpecInfo describes one emitted function instance: the source name,
// the comma-joined argument-type tuple it was keyed by, and the IR
// symbol it was emitted as. The CLI records these in the on-disk
// specialization cache (internal/cache).
type SpecInfo struct {
	Func     string
	ArgTypes string
	Symbol   string
}

// Specializations lists every function instance this Emitter defined,
// generic forms included, sorted by symbol for deterministic output.
func (e *Emitter) Specializations() []SpecInfo {
	out := make([]SpecInfo, 0, len(e.specCache))
	for record, fn := range e.specCache {
		parts := make([]string, len(record.ArgTypes))
		for i, t := range record.ArgTypes {
			parts[i] = t.String()
		}
		out = append(out, SpecInfo{
			Func:     record.Name,
			ArgTypes: strings.Join(parts, ","),
			Symbol:   fn.Name(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}
