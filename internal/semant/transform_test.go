package semant

import (
	"testing"

	"github.com/funvibe/funxyc/internal/token"
	"github.com/funvibe/funxyc/internal/types"
)

func TestSynthesizeTransformsAgreement(t *testing.T) {
	m1 := Environment{"x": {Inferred: types.Int, Explicit: types.Int}}
	m2 := Environment{"x": {Inferred: types.Int, Explicit: types.Int}}
	merged, left, right, newDyn := synthesizeTransforms(m1, m2, token.Token{})
	if len(left) != 0 || len(right) != 0 || len(newDyn) != 0 {
		t.Fatalf("agreeing environments need no transforms, got %v %v %v", left, right, newDyn)
	}
	if !types.Equal(merged["x"].Inferred, types.Int) {
		t.Errorf("merged type = %s", merged["x"].Inferred)
	}
}

func TestSynthesizeTransformsConflict(t *testing.T) {
	m1 := Environment{"x": {Inferred: types.Int, Explicit: types.Int}}
	m2 := Environment{"x": {Inferred: types.String, Explicit: types.String}}
	merged, left, right, newDyn := synthesizeTransforms(m1, m2, token.Token{})

	if !types.Equal(merged["x"].Inferred, types.Dyn) {
		t.Errorf("conflicting name must merge to Dyn, got %s", merged["x"].Inferred)
	}
	if len(left) != 1 || left[0].Name != "x" ||
		left[0].From.Kind() != types.KInt || left[0].To.Kind() != types.KDyn {
		t.Errorf("left transforms = %v", left)
	}
	if len(right) != 1 || right[0].From.Kind() != types.KString {
		t.Errorf("right transforms = %v", right)
	}
	if len(newDyn) != 1 || newDyn[0] != "x" {
		t.Errorf("newDyn = %v", newDyn)
	}
}

func TestSynthesizeTransformsOneSideDyn(t *testing.T) {
	// A side that is already Dyn needs no transform of its own.
	m1 := Environment{"x": {Inferred: types.Dyn, Explicit: types.Dyn}}
	m2 := Environment{"x": {Inferred: types.Float, Explicit: types.Float}}
	_, left, right, _ := synthesizeTransforms(m1, m2, token.Token{})
	if len(left) != 0 {
		t.Errorf("dyn side must not re-transform, got %v", left)
	}
	if len(right) != 1 || right[0].From.Kind() != types.KFloat {
		t.Errorf("right = %v", right)
	}
}

func TestSynthesizeTransformsDisjointNames(t *testing.T) {
	// Names present on only one side carry over unchanged.
	m1 := Environment{"a": {Inferred: types.Int, Explicit: types.Int}}
	m2 := Environment{"b": {Inferred: types.String, Explicit: types.String}}
	merged, left, right, newDyn := synthesizeTransforms(m1, m2, token.Token{})
	if len(left) != 0 || len(right) != 0 || len(newDyn) != 0 {
		t.Fatalf("disjoint names need no transforms")
	}
	if !types.Equal(merged["a"].Inferred, types.Int) || !types.Equal(merged["b"].Inferred, types.String) {
		t.Errorf("merged = %v", merged)
	}
}

func TestSynthesizeTransformsDeterministicOrder(t *testing.T) {
	m1 := Environment{
		"z": {Inferred: types.Int}, "a": {Inferred: types.Int}, "m": {Inferred: types.Int},
	}
	m2 := Environment{
		"z": {Inferred: types.Float}, "a": {Inferred: types.Float}, "m": {Inferred: types.Float},
	}
	_, left, _, _ := synthesizeTransforms(m1, m2, token.Token{})
	if len(left) != 3 {
		t.Fatalf("len = %d", len(left))
	}
	if left[0].Name != "a" || left[1].Name != "m" || left[2].Name != "z" {
		t.Errorf("transforms must be name-sorted, got %s %s %s", left[0].Name, left[1].Name, left[2].Name)
	}
}

func TestAssignContract(t *testing.T) {
	s := NewState()

	// Fresh unannotated binding: explicit tracks inferred.
	res := assign(s, "x", nil, types.Int, token.Token{})
	if res.Err != nil {
		t.Fatal(res.Err)
	}
	if !types.Equal(res.Binding.Inferred, types.Int) || !types.Equal(res.Binding.Explicit, types.Int) {
		t.Errorf("fresh binding = %+v", res.Binding)
	}
	s.Globals["x"] = res.Binding

	// Same type again: no transform.
	res = assign(s, "x", nil, types.Int, token.Token{})
	if res.Err != nil || res.Transform != nil {
		t.Errorf("same-type reassign must be clean, got %+v", res)
	}

	// Different concrete type: dynify with a raw->Dyn transform.
	res = assign(s, "x", nil, types.String, token.Token{})
	if res.Err != nil {
		t.Fatal(res.Err)
	}
	if res.Binding.Inferred.Kind() != types.KDyn {
		t.Errorf("conflicting reassign must dynify, got %s", res.Binding.Inferred)
	}
	if res.Transform == nil || res.Transform.From.Kind() != types.KInt {
		t.Errorf("expected int->dyn transform, got %+v", res.Transform)
	}
}

func TestAssignAnnotated(t *testing.T) {
	s := NewState()

	res := assign(s, "x", types.Int, types.Int, token.Token{})
	if res.Err != nil {
		t.Fatal(res.Err)
	}
	if !res.Binding.HasAnnotation {
		t.Error("annotation must be recorded")
	}
	s.Globals["x"] = res.Binding

	// Concrete mismatch against a real annotation is static.
	res = assign(s, "x", nil, types.String, token.Token{})
	if res.Err == nil {
		t.Error("expected STypeError for annotated mismatch")
	}

	// Dyn rhs into an annotated slot demands a runtime check.
	res = assign(s, "x", nil, types.Dyn, token.Token{})
	if res.Err != nil {
		t.Fatal(res.Err)
	}
	if res.RuntimeCheck == nil || res.RuntimeCheck.Kind() != types.KInt {
		t.Errorf("expected runtime check against int, got %v", res.RuntimeCheck)
	}
}

func TestFuncCtxMergeRules(t *testing.T) {
	// Same type twice stays that type.
	f := &FuncCtx{}
	f.Merge(types.Int)
	f.Merge(types.Int)
	if (*f.Observed).Kind() != types.KInt {
		t.Errorf("got %s", *f.Observed)
	}

	// Differing types merge to Dyn.
	f = &FuncCtx{}
	f.Merge(types.Int)
	f.Merge(types.String)
	if (*f.Observed).Kind() != types.KDyn {
		t.Errorf("got %s", *f.Observed)
	}
}
