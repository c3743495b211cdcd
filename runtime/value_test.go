package runtime

import (
	"testing"
)

func TestParseJSONPreservesOrderAndNumbers(t *testing.T) {
	v, err := ParseJSON(`{"z": 1.0, "a": [1e3, "x"], "m": {"k": null}}`)
	if err != nil {
		t.Fatalf("ParseJSON error: %v", err)
	}
	if v.Kind() != KindObject {
		t.Fatalf("expected object, got %s", v.Kind())
	}
	keys := v.Keys()
	if len(keys) != 3 || keys[0] != "z" || keys[1] != "a" || keys[2] != "m" {
		t.Fatalf("unexpected key order: %v", keys)
	}
	if got := v.Text(); got != `{"z":1.0,"a":[1e3,"x"],"m":{"k":null}}` {
		t.Fatalf("unexpected text: %s", got)
	}

	z, _ := v.Field("z")
	if z.Text() != "1.0" {
		t.Errorf("number text = %q, want 1.0", z.Text())
	}
	a, _ := v.Field("a")
	first, ok := a.Index(0)
	if !ok || first.Text() != "1e3" {
		t.Errorf("a[0] = %q, %v", first.Text(), ok)
	}
	if _, ok := a.Index(2); ok {
		t.Error("index 2 should be out of range")
	}
	if _, ok := a.Field("x"); ok {
		t.Error("arrays have no fields")
	}
}

func TestParseJSONErrors(t *testing.T) {
	for _, input := range []string{``, `{`, `[1,`, `{"a" 1}`, `1 2`, `nul`} {
		if _, err := ParseJSON(input); err == nil {
			t.Errorf("ParseJSON(%q) should fail", input)
		}
	}
}

func TestValueTruthy(t *testing.T) {
	tests := []struct {
		value   Value
		want    bool
		wantErr bool
	}{
		{Null(), false, false},
		{Bool(true), true, false},
		{Number("0"), false, false},
		{Number("0.5"), true, false},
		{String("true"), true, false},
		{String("0"), false, false},
		{String("yes"), false, true},
		{Array(), false, true},
		{Object(nil, nil), false, true},
	}
	for _, tt := range tests {
		got, err := tt.value.Truthy()
		if (err != nil) != tt.wantErr {
			t.Errorf("%s(%s).Truthy() error = %v, wantErr %v", tt.value.Kind(), tt.value.Text(), err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("%s(%s).Truthy() = %v, want %v", tt.value.Kind(), tt.value.Text(), got, tt.want)
		}
	}
}

func TestValueFloat(t *testing.T) {
	if f, err := String("5.0").Float(); err != nil || f != 5 {
		t.Errorf("String(5.0).Float() = %v, %v", f, err)
	}
	if f, err := Number("-2").Float(); err != nil || f != -2 {
		t.Errorf("Number(-2).Float() = %v, %v", f, err)
	}
	for _, v := range []Value{String("abc"), String("NaN"), String("inf"), String("-Infinity"), Bool(true), Null(), Array()} {
		if _, err := v.Float(); err == nil {
			t.Errorf("%s.Float() should fail", v.Kind())
		}
	}
}

func TestValueTextEscapesStrings(t *testing.T) {
	v := Array(String(`a"b`), Bool(false))
	if got := v.Text(); got != `["a\"b",false]` {
		t.Fatalf("unexpected text: %s", got)
	}
	if String(`a"b`).Text() != `a"b` {
		t.Fatal("top-level strings are written verbatim")
	}
}
