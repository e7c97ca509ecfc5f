// Transform synthesis: given two environments that differ in the
// inferred type of some names, produce the Transform statements needed
// to reconcile them at a control-flow join, plus the merged
// environment both sides agree on afterward.
package semant

import (
	"sort"

	"github.com/funvibe/funxyc/internal/sast"
	"github.com/funvibe/funxyc/internal/token"
	"github.com/funvibe/funxyc/internal/types"
)

// synthesizeTransforms merges two environments. For every name present
// in either whose inferred type disagrees, the merged environment gets
// Dyn and each side gets the Transform needed to reconcile its own
// concrete type into that Dyn (a raw -> Dyn re-boxing, or a no-op
// box-copy when both sides are already boxed kinds). The names list is
// sorted so Transform ordering is reproducible across runs.
func synthesizeTransforms(m1, m2 Environment, tok token.Token) (merged Environment, left, right []*sast.Transform, newDyn []string) {
	merged = make(Environment)
	seen := make(map[string]bool)
	names := make([]string, 0, len(m1)+len(m2))
	for n := range m1 {
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	for n := range m2 {
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	sort.Strings(names)

	for _, n := range names {
		b1, in1 := m1[n]
		b2, in2 := m2[n]
		switch {
		case in1 && in2 && types.Equal(b1.Inferred, b2.Inferred):
			merged[n] = b1
		case in1 && in2:
			merged[n] = Binding{Inferred: types.Dyn, Explicit: types.Dyn}
			if b1.Inferred.Kind() != types.KDyn {
				left = append(left, &sast.Transform{Token: tok, Name: n, From: b1.Inferred, To: types.Dyn})
			}
			if b2.Inferred.Kind() != types.KDyn {
				right = append(right, &sast.Transform{Token: tok, Name: n, From: b2.Inferred, To: types.Dyn})
			}
			newDyn = append(newDyn, n)
		case in1:
			merged[n] = b1
		case in2:
			merged[n] = b2
		}
	}
	return merged, left, right, newDyn
}
