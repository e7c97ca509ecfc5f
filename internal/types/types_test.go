package types

import "testing"

func TestEqualStructural(t *testing.T) {
	cases := []struct {
		name string
		a, b Type
		want bool
	}{
		{"int_int", Int, Int, true},
		{"int_float", Int, Float, false},
		{"dyn_dyn", Dyn, Dyn, true},
		{"dyn_int", Dyn, Int, false},
		{"arr_same_elem", Arr{Elem: Int}, Arr{Elem: Int}, true},
		{"arr_diff_elem", Arr{Elem: Int}, Arr{Elem: Float}, false},
		{"arr_nested", Arr{Elem: Arr{Elem: Dyn}}, Arr{Elem: Arr{Elem: Dyn}}, true},
		{"func_same", FuncType{Params: []Type{Int}, Return: Int}, FuncType{Params: []Type{Int}, Return: Int}, true},
		{"func_diff_ret", FuncType{Params: []Type{Int}, Return: Int}, FuncType{Params: []Type{Int}, Return: Float}, false},
		{"func_diff_arity", FuncType{Params: []Type{Int}, Return: Int}, FuncType{Params: []Type{Int, Int}, Return: Int}, false},
		{"string_arr", String, Arr{Elem: String}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Equal(tc.a, tc.b); got != tc.want {
				t.Errorf("Equal(%s, %s) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestIsArr(t *testing.T) {
	if !IsArr(String) {
		t.Error("String should be array-shaped")
	}
	if !IsArr(Arr{Elem: Int}) {
		t.Error("Arr should be array-shaped")
	}
	if IsArr(Int) || IsArr(Dyn) {
		t.Error("Int/Dyn are not array-shaped")
	}
}

func TestString(t *testing.T) {
	cases := map[string]Type{
		"int":             Int,
		"dyn":             Dyn,
		"arr[int]":        Arr{Elem: Int},
		"arr[arr[float]]": Arr{Elem: Arr{Elem: Float}},
		"(int, str) -> bool": FuncType{
			Params: []Type{Int, String},
			Return: Bool,
		},
	}
	for want, typ := range cases {
		if got := typ.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}

func TestIsConcrete(t *testing.T) {
	if IsConcrete(Dyn) {
		t.Error("Dyn is not concrete")
	}
	if !IsConcrete(Null) {
		t.Error("Null is the lattice bottom, not an unknown")
	}
	if !IsConcrete(Int) {
		t.Error("Int is concrete")
	}
}
