package semant

import (
	"github.com/funvibe/funxyc/internal/diagnostics"
	"github.com/funvibe/funxyc/internal/token"
	"github.com/funvibe/funxyc/internal/types"
)

// assignResult is everything the caller needs to update the
// environment and, if the storage kind of the name changed, emit the
// Transform statement §4.5 requires to move its liveness between a raw
// and a boxed slot.
type assignResult struct {
	Binding      Binding
	RuntimeCheck types.Type // non-nil: codegen must check the boxed rhs against this type
	Transform    *transformSpec
	Err          *diagnostics.DiagnosticError
}

type transformSpec struct {
	From types.Type
	To   types.Type
}

// assign applies the assignment typing contract. annotation is the
// user-written type annotation at THIS assignment site (nil if the
// statement carries none); it only takes effect the first time a name
// is declared in a given scope. For a name that is already bound it is
// ignored, and the existing binding's types govern.
//
// Whether the binding's explicit type came from a real user annotation
// (HasAnnotation) is tracked separately from the flow-inferred type
// that un-annotated bindings otherwise acquire: a mismatch against a
// real annotation is a static TypeError; a mismatch against a
// merely-inferred type dynifies the binding in place, emitting the
// raw->Dyn Transform that moves its storage to the boxed slot.
func assign(s State, name string, annotation types.Type, rhsType types.Type, tok token.Token) assignResult {
	existing, present := s.lookup(name)

	if !present {
		b := Binding{Inferred: rhsType}
		if annotation != nil && annotation.Kind() != types.KDyn {
			b.Explicit = annotation
			b.HasAnnotation = true
			if rhsType.Kind() == types.KDyn {
				// Dyn rhs into an annotated concrete slot: permitted,
				// but needs a runtime check at the assignment. The
				// check guarantees the annotation, so the binding
				// infers it.
				b.Inferred = annotation
				return assignResult{Binding: b, RuntimeCheck: annotation}
			}
			if !types.Equal(annotation, rhsType) {
				return assignResult{Err: diagnostics.New(diagnostics.STypeError, tok,
					"cannot assign %s to %s declared as %s", rhsType, name, annotation)}
			}
			return assignResult{Binding: b}
		}
		// No annotation: explicit tracks the first inferred type.
		b.Explicit = rhsType
		return assignResult{Binding: b}
	}

	// Name already bound.
	if existing.HasAnnotation {
		declared := existing.Explicit
		if declared.Kind() == types.KDyn {
			existing.Inferred = rhsType
			return assignResult{Binding: existing}
		}
		if rhsType.Kind() == types.KDyn {
			existing.Inferred = declared
			return assignResult{Binding: existing, RuntimeCheck: declared}
		}
		if !types.Equal(declared, rhsType) {
			return assignResult{Err: diagnostics.New(diagnostics.STypeError, tok,
				"cannot assign %s to %s declared as %s", rhsType, name, declared)}
		}
		existing.Inferred = rhsType
		return assignResult{Binding: existing}
	}

	// Soft (unannotated) binding: a differing concrete type dynifies
	// it instead of raising a static error.
	old := existing.Inferred
	if types.Equal(old, rhsType) {
		return assignResult{Binding: existing}
	}
	if old.Kind() == types.KDyn || rhsType.Kind() == types.KDyn {
		existing.Inferred = types.Dyn
		existing.Explicit = types.Dyn
		return assignResult{Binding: existing}
	}
	// Two different concrete types: dynify, and the codegen needs a
	// raw->Dyn Transform to re-box the old slot's value.
	result := Binding{Inferred: types.Dyn, Explicit: types.Dyn}
	return assignResult{Binding: result, Transform: &transformSpec{From: old, To: types.Dyn}}
}
