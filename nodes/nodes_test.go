package nodes

import (
	"strings"
	"testing"
)

func TestBaseNode(t *testing.T) {
	node := &BaseNode{}
	node.SetPosition(NewPosition(10, 5))

	if node.GetPosition().Line != 10 || node.GetPosition().Column != 5 {
		t.Errorf("unexpected position %s", node.GetPosition())
	}
	if node.Type() != "BaseNode" {
		t.Errorf("Expected type BaseNode, got %s", node.Type())
	}
	if len(node.GetChildren()) != 0 {
		t.Errorf("Expected 0 children, got %d", len(node.GetChildren()))
	}
}

func TestValueOfPath(t *testing.T) {
	tests := []struct {
		value *ValueOf
		path  string
		bare  bool
	}{
		{NewValueOf("model"), "model", true},
		{NewValueOf("model", "user", "name"), "model.user.name", false},
		{&ValueOf{Name: "items", HasIndex: true, Index: 3, Next: NewValueOf("id")}, "items[3].id", false},
		{&ValueOf{Name: "xs", HasIndex: true}, "xs[0]", false},
	}
	for _, tt := range tests {
		if got := tt.value.Path(); got != tt.path {
			t.Errorf("Path() = %s, want %s", got, tt.path)
		}
		if got := tt.value.IsBare(); got != tt.bare {
			t.Errorf("%s IsBare() = %v, want %v", tt.path, got, tt.bare)
		}
	}
}

func TestNewNumericValue(t *testing.T) {
	n, err := NewNumericValue("2.50", 3, 4)
	if err != nil {
		t.Fatalf("NewNumericValue error: %v", err)
	}
	if !n.Real || n.Value != 2.5 || n.Text != "2.50" {
		t.Errorf("unexpected value %+v", n)
	}
	if n.GetPosition() != NewPosition(3, 4) {
		t.Errorf("position = %s", n.GetPosition())
	}

	i, err := NewNumericValue("7", 1, 1)
	if err != nil || i.Real {
		t.Errorf("integer literal = %+v, %v", i, err)
	}
	if _, err := NewNumericValue("x", 1, 1); err == nil {
		t.Error("expected error for non-numeric text")
	}
}

func TestOperatorIsOrdering(t *testing.T) {
	for _, op := range []Operator{OpLess, OpLessEqual, OpGreater, OpGreaterEqual} {
		if !op.IsOrdering() {
			t.Errorf("%s should be an ordering operator", op)
		}
	}
	for _, op := range []Operator{OpEqual, OpNotEqual} {
		if op.IsOrdering() {
			t.Errorf("%s should not be an ordering operator", op)
		}
	}
}

func sampleProgram() *Program {
	label := &StringValue{Components: []Node{NewLiteral("id-", 1, 1), NewValueOf("m", "id")}}
	tag := &HtmlTag{
		Name:       "p",
		Attributes: []*Attribute{{Name: "id", Value: label}, {Name: "hidden"}},
		Body:       []Instruction{NewValueOf("m", "text")},
	}
	cond := &IfExpression{
		Condition: &ConditionWithValue{Left: NewValueOf("m", "n"), Operator: OpGreater, Right: NewValueOf("m", "max")},
		Body:      []Instruction{tag},
	}
	loop := &ForExpression{
		Element:    "x",
		Collection: NewValueOf("m", "xs"),
		Body:       []Instruction{&FunctionCall{Name: "row", Args: []Value{NewValueOf("x")}}},
	}
	return &Program{Functions: []*Function{
		{Name: "main", Params: []string{"m"}, Body: []Instruction{cond, &ElseExpression{}, loop}},
		{Name: "row", Params: []string{"x"}, Body: []Instruction{NewLiteral("r", 1, 1)}},
	}}
}

func TestProgramFunction(t *testing.T) {
	program := sampleProgram()
	if fn, ok := program.Function("row"); !ok || fn.Params[0] != "x" {
		t.Errorf("Function(row) = %v, %v", fn, ok)
	}
	if _, ok := program.Function("missing"); ok {
		t.Error("Function(missing) should not be found")
	}
}

func TestWalk(t *testing.T) {
	counts := map[string]int{}
	Walk(NodeVisitorFunc(func(node Node) interface{} {
		counts[node.Type()]++
		return nil
	}), sampleProgram())

	want := map[string]int{
		"Program":            1,
		"Function":           2,
		"IfExpression":       1,
		"ConditionWithValue": 1,
		"HtmlTag":            1,
		"Attribute":          2,
		"StringValue":        1,
		"Literal":            2,
		"ElseExpression":     1,
		"ForExpression":      1,
		"FunctionCall":       1,
	}
	for typ, n := range want {
		if counts[typ] != n {
			t.Errorf("%s visited %d times, want %d", typ, counts[typ], n)
		}
	}
}

func TestWalkStopsOnResult(t *testing.T) {
	visited := 0
	Walk(NodeVisitorFunc(func(node Node) interface{} {
		visited++
		if _, ok := node.(*Function); ok {
			return true
		}
		return nil
	}), sampleProgram())

	if visited != 3 {
		t.Errorf("expected to stop below each function, visited %d nodes", visited)
	}
}

func TestDump(t *testing.T) {
	dump := Dump(sampleProgram())
	for _, want := range []string{
		"Program(functions=2)",
		"  Function(name=main, params=[m])",
		"    IfExpression(negated=false)",
		"      ConditionWithValue(>)",
		"        ValueOf(m.n)",
		"      HtmlTag(p)",
		"        Attribute(id)",
		`            Literal("id-")`,
		"        ValueOf(m.text)",
		"    ForExpression(element=x)",
		"      FunctionCall(name=row, args=1)",
	} {
		if !strings.Contains(dump, want+"\n") {
			t.Errorf("dump missing %q:\n%s", want, dump)
		}
	}
	if Dump(nil) != "nil" {
		t.Error("Dump(nil) should be nil")
	}
}
