package htmldsl

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "greeting.html")
	source := "<:def main(model)>Hello {model.name}!</:def>"
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatalf("failed to write template: %v", err)
	}

	tmpl, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile error: %v", err)
	}

	output, err := tmpl.ExecuteToString(`{"name": "Go"}`)
	if err != nil {
		t.Fatalf("ExecuteToString error: %v", err)
	}

	if output != "Hello Go!" {
		t.Fatalf("expected 'Hello Go!', got %q", output)
	}
}

func TestParseFileWithByteOrderMark(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bom.html")
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("<:def main(m)>{m}</:def>")...)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write template: %v", err)
	}

	tmpl, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile error: %v", err)
	}
	output, err := tmpl.ExecuteToString(`"abc"`)
	if err != nil {
		t.Fatalf("ExecuteToString error: %v", err)
	}
	if output != "abc" {
		t.Fatalf("expected 'abc', got %q", output)
	}
}

func TestParseFileEmptyName(t *testing.T) {
	if _, err := ParseFile(""); err == nil {
		t.Fatal("expected error for empty filename")
	}
}

func TestRender(t *testing.T) {
	var b strings.Builder
	err := Render("<:def main(m)><:for (x in m)>{x}</:for></:def>", "[2,5,8]", &b)
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if b.String() != "258" {
		t.Fatalf("expected '258', got %q", b.String())
	}
}

func TestErrorClassification(t *testing.T) {
	if _, err := ParseString("<:def main(m)>{m</:def>"); !IsSyntaxError(err) {
		t.Fatalf("expected syntax error, got %v", err)
	}
	if _, err := ParseString("<:def main(m)>{x}</:def>"); !IsSemanticsError(err) {
		t.Fatalf("expected semantics error, got %v", err)
	}

	tmpl, err := ParseString("<:def main(m)>{m.missing}</:def>")
	if err != nil {
		t.Fatalf("ParseString error: %v", err)
	}
	if _, err := tmpl.ExecuteToString(`{}`); !IsRuntimeError(err) {
		t.Fatalf("expected runtime error, got %v", err)
	}
}

func TestDumpAST(t *testing.T) {
	tmpl, err := ParseString("<:def main(m)><p>{m}</p></:def>")
	if err != nil {
		t.Fatalf("ParseString error: %v", err)
	}
	dump := DumpAST(tmpl.AST())
	for _, want := range []string{"Program", "Function", "HtmlTag", "ValueOf"} {
		if !strings.Contains(dump, want) {
			t.Errorf("dump missing %q:\n%s", want, dump)
		}
	}
}
