package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/deicod/htmldsl/runtime"
)

// testEnv points HTMLDSL_CONFIG at an empty config so tests never pick up a
// config file from the working directory.
func testEnv(t *testing.T) func(string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "htmldsl.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: error\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return func(key string) string {
		if key == "HTMLDSL_CONFIG" {
			return path
		}
		return ""
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func execute(t *testing.T, getenv func(string) string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand(getenv)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

const listTemplate = `<:def main(model)>
<ul>
<:for (item in model.items)><li>{item}</li></:for>
</ul>
</:def>`

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	tmpl := writeFile(t, dir, "list.html", listTemplate)
	model := writeFile(t, dir, "model.json", `{"items": ["a", "b"]}`)

	out, _, err := execute(t, testEnv(t), "render", tmpl, model)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "<ul>\n    <li>\n        a\n    </li>\n    <li>\n        b\n    </li>\n</ul>"
	if out != want {
		t.Fatalf("output = %q, want %q", out, want)
	}
}

func TestRenderCommandFlags(t *testing.T) {
	dir := t.TempDir()
	tmpl := writeFile(t, dir, "p.html", "<:def main(m)><p>{m}</p></:def>")

	out, _, err := execute(t, testEnv(t), "render", tmpl, "--model", `"<b>"`, "--boilerplate", "--autoescape", "--indent", "2")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := runtime.Boilerplate + "<p>\n  &lt;b&gt;\n</p>"
	if out != want {
		t.Fatalf("output = %q, want %q", out, want)
	}
}

func TestRenderCommandGzip(t *testing.T) {
	dir := t.TempDir()
	tmpl := writeFile(t, dir, "t.html", "<:def main(m)>{m.name}</:def>")
	outPath := filepath.Join(dir, "out.html.gz")

	if _, _, err := execute(t, testEnv(t), "render", tmpl, "-m", `{"name":"zip"}`, "--gzip", "-o", outPath); err != nil {
		t.Fatalf("render: %v", err)
	}

	f, err := os.Open(outPath)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	zr, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	data, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("read gzip: %v", err)
	}
	if string(data) != "zip" {
		t.Fatalf("output = %q, want %q", data, "zip")
	}
}

func TestRenderCommandErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name     string
		source   string
		model    string
		wantCode int
	}{
		{"syntax", "<:def main(m)><p></div></:def>", "null", exitSyntax},
		{"semantics", "<:def main(m)>{other}</:def>", "null", exitSemantics},
		{"runtime", "<:def main(m)><:for (x in m)>{x}</:for></:def>", `{"a":1}`, exitRuntime},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := writeFile(t, dir, tt.name+".html", tt.source)
			_, _, err := execute(t, testEnv(t), "render", tmpl, "-m", tt.model)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := exitCode(err); got != tt.wantCode {
				t.Errorf("exit code = %d, want %d (%v)", got, tt.wantCode, err)
			}
		})
	}
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	tmpl := writeFile(t, dir, "check.html", "<:def card(t)><b>{t}</b></:def>\n<:def main(m)>{card(m)}</:def>")

	out, _, err := execute(t, testEnv(t), "check", tmpl, "--tokens", "--ast")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	for _, want := range []string{"IDENTIFIER('card')", "FunctionCall(name=card, args=1)", "2 function(s): card, main"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatError(t *testing.T) {
	err := runtime.NewSemanticsError("function \"f\" is not defined", nil)
	got := formatError(err)
	if !strings.Contains(got, "semantics error") || !strings.Contains(got, `function "f" is not defined`) {
		t.Errorf("formatError = %q", got)
	}

	plain := formatError(errors.New("boom"))
	if !strings.Contains(plain, "error") || !strings.Contains(plain, "boom") {
		t.Errorf("formatError = %q", plain)
	}
	if exitCode(errors.New("boom")) != exitFailure {
		t.Error("plain errors should exit with exitFailure")
	}
}

func TestReadModel(t *testing.T) {
	got, err := readModel("", "", nil)
	if err != nil || got != "null" {
		t.Errorf("readModel default = %q, %v", got, err)
	}
	got, err = readModel("-", "", strings.NewReader(`[1]`))
	if err != nil || got != "[1]" {
		t.Errorf("readModel stdin = %q, %v", got, err)
	}
	if _, err := readModel(filepath.Join(t.TempDir(), "missing.json"), "", nil); err == nil {
		t.Error("expected error for missing model file")
	}
}

type failingCloser struct{ err error }

func (c failingCloser) Close() error { return c.err }

func TestCloseInto(t *testing.T) {
	closeErr := errors.New("disk full")

	var err error
	closeInto(&err, failingCloser{closeErr})
	if !errors.Is(err, closeErr) {
		t.Fatalf("close error was dropped, got %v", err)
	}

	first := errors.New("render failed")
	err = first
	closeInto(&err, failingCloser{closeErr})
	if !errors.Is(err, first) {
		t.Fatalf("earlier error was replaced, got %v", err)
	}

	err = nil
	closeInto(&err, failingCloser{})
	if err != nil {
		t.Fatalf("clean close reported %v", err)
	}
}
