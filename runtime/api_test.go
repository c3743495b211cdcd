package runtime

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
)

func TestExecuteToString(t *testing.T) {
	out, err := ExecuteToString("<:def main(m)>{m.a}</:def>", `{"a": "x"}`)
	if err != nil || out != "x" {
		t.Fatalf("ExecuteToString = %q, %v", out, err)
	}

	var b strings.Builder
	if err := Execute("<:def main(m)>{m}</:def>", "7", &b); err != nil || b.String() != "7" {
		t.Fatalf("Execute = %q, %v", b.String(), err)
	}

	if _, err := ExecuteToString("<:def main(m)>{m</:def>", "null"); !IsSyntaxError(err) {
		t.Fatalf("expected syntax error, got %v", err)
	}
}

func TestBatchRenderer(t *testing.T) {
	br := NewBatchRenderer(nil)
	if err := br.AddTemplate("title", "<:def main(m)><h1>{m.title}</h1></:def>"); err != nil {
		t.Fatalf("AddTemplate error: %v", err)
	}
	if err := br.AddTemplate("count", "<:def main(m)>{m.n}</:def>"); err != nil {
		t.Fatalf("AddTemplate error: %v", err)
	}
	if err := br.AddTemplate("broken", "<:def main(m)>{x}</:def>"); !IsSemanticsError(err) {
		t.Fatalf("expected semantics error, got %v", err)
	}

	if names := br.Names(); len(names) != 2 || names[0] != "count" || names[1] != "title" {
		t.Fatalf("unexpected names: %v", names)
	}

	out, err := br.Render("title", `{"title": "Hi"}`)
	if err != nil || out != "<h1>\n    Hi\n</h1>" {
		t.Fatalf("Render = %q, %v", out, err)
	}

	results, err := br.RenderAll(`{"title": "T", "n": 3}`)
	if err != nil {
		t.Fatalf("RenderAll error: %v", err)
	}
	if results["count"] != "3" || results["title"] != "<h1>\n    T\n</h1>" {
		t.Errorf("unexpected results: %v", results)
	}

	var notFound *TemplateNotFoundError
	if _, err := br.Render("missing", "null"); !errors.As(err, &notFound) {
		t.Errorf("expected TemplateNotFoundError, got %v", err)
	}

	br.RemoveTemplate("count")
	if br.HasTemplate("count") || br.Size() != 1 {
		t.Error("count should be removed")
	}

	if _, err := br.RenderAll(`{}`); !IsRuntimeError(err) {
		t.Errorf("expected wrapped runtime error, got %v", err)
	}
}

func TestLooseEqual(t *testing.T) {
	tests := []struct {
		a, b AssignedValue
		want bool
	}{
		{AssignValue(String("5")), AssignValue(String("5.0")), true},
		{AssignNumber(2, "2"), AssignValue(Number("2.00")), true},
		{AssignValue(String("a")), AssignValue(String("a")), true},
		{AssignValue(String("a")), AssignValue(String("b")), false},
		{AssignValue(Bool(true)), AssignValue(String("true")), true},
		{AssignValue(Null()), AssignValue(String("")), true},
		{AssignValue(String("1")), AssignValue(String("x")), false},
	}
	for _, tt := range tests {
		if got := looseEqual(tt.a, tt.b); got != tt.want {
			t.Errorf("looseEqual(%q, %q) = %v, want %v", tt.a.Text(), tt.b.Text(), got, tt.want)
		}
	}
}

func TestBatchRendererRenderAllWhileRemoving(t *testing.T) {
	br := NewBatchRenderer(nil)
	for i := 0; i < 20; i++ {
		if err := br.AddTemplate(fmt.Sprintf("t%d", i), "<:def main(m)>{m}</:def>"); err != nil {
			t.Fatalf("AddTemplate error: %v", err)
		}
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			br.RemoveTemplate(fmt.Sprintf("t%d", i))
		}
	}()

	for i := 0; i < 50; i++ {
		results, err := br.RenderAll("1")
		if err != nil {
			t.Fatalf("RenderAll error: %v", err)
		}
		for name, out := range results {
			if out != "1" {
				t.Fatalf("%s rendered %q", name, out)
			}
		}
	}
	wg.Wait()

	if results, err := br.RenderAll("1"); err != nil || len(results) != 0 {
		t.Fatalf("RenderAll after removal = %v, %v", results, err)
	}
}
