package runtime

import (
	"io"
	"strings"
	"testing"
)

func TestGenerateCollect(t *testing.T) {
	tmpl, err := NewTemplateFromString("<:def main(m)><:for (x in m)><i>{x}</i></:for></:def>")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	stream, err := tmpl.Generate("[1,2]")
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	out, err := stream.Collect()
	if err != nil {
		t.Fatalf("Collect error: %v", err)
	}
	want := "<i>\n    1\n</i><i>\n    2\n</i>"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
	if _, err := stream.Next(); err != io.EOF {
		t.Errorf("exhausted stream should return io.EOF, got %v", err)
	}
}

func TestGenerateKeepsFragmentsBeforeError(t *testing.T) {
	tmpl, err := NewTemplateFromString("<:def main(m)>before{m.missing}</:def>")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	stream, err := tmpl.Generate("{}")
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	out, err := stream.Collect()
	if !IsRuntimeError(err) {
		t.Fatalf("expected runtime error, got %v", err)
	}
	if out != "before" {
		t.Errorf("partial output = %q, want before", out)
	}
}

func TestGenerateRejectsInvalidModel(t *testing.T) {
	tmpl, err := NewTemplateFromString("<:def main(m)>{m}</:def>")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if _, err := tmpl.Generate("{"); !IsRuntimeError(err) {
		t.Fatalf("expected runtime error for invalid model, got %v", err)
	}
}

func TestStreamWriteTo(t *testing.T) {
	tmpl, err := NewTemplateFromString("<:def main(m)>{m.a}-{m.b}</:def>")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	stream, err := tmpl.Generate(`{"a": "x", "b": 2}`)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	var b strings.Builder
	n, err := stream.WriteTo(&b)
	if err != nil {
		t.Fatalf("WriteTo error: %v", err)
	}
	if b.String() != "x-2" || n != 3 {
		t.Fatalf("WriteTo wrote %d bytes %q", n, b.String())
	}
}
