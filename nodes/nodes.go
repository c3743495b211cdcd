package nodes

import (
	"fmt"
	"strconv"
	"strings"
)

// Position represents source code position information
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// NewPosition creates a new Position
func NewPosition(line, column int) Position {
	return Position{
		Line:   line,
		Column: column,
	}
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Node represents the base interface for all AST nodes
type Node interface {
	// GetPosition returns the position information for this node
	GetPosition() Position

	// SetPosition sets the position information for this node
	SetPosition(pos Position)

	// GetChildren returns all child nodes
	GetChildren() []Node

	// Accept implements the visitor pattern
	Accept(visitor Visitor) interface{}

	// String returns a string representation of the node
	String() string

	// Type returns the node type for identification
	Type() string
}

// BaseNode provides common functionality for all nodes
type BaseNode struct {
	Pos Position `json:"pos"`
}

// GetPosition returns the position information
func (n *BaseNode) GetPosition() Position {
	return n.Pos
}

// SetPosition sets the position information
func (n *BaseNode) SetPosition(pos Position) {
	n.Pos = pos
}

// GetChildren returns the base implementation (empty slice)
func (n *BaseNode) GetChildren() []Node {
	return []Node{}
}

// Type returns the node type name
func (n *BaseNode) Type() string {
	return "BaseNode"
}

// Visitor implements the visitor pattern for AST traversal
type Visitor interface {
	Visit(node Node) interface{}
}

// NodeVisitorFunc is a function adapter for Visitor interface
type NodeVisitorFunc func(node Node) interface{}

func (f NodeVisitorFunc) Visit(node Node) interface{} {
	return f(node)
}

// Walk traverses the AST using the visitor pattern
func Walk(visitor Visitor, node Node) {
	if node == nil {
		return
	}

	result := visitor.Visit(node)
	if result != nil {
		// If visitor returns non-nil, stop traversal
		return
	}

	for _, child := range node.GetChildren() {
		Walk(visitor, child)
	}
}

// Instruction is anything that can appear in a function or block body.
type Instruction interface {
	Node
	isInstruction()
}

// Value is an operand: a value path, a number, or a quoted string.
type Value interface {
	Node
	isValue()
}

// Condition is the test of an if expression.
type Condition interface {
	Node
	isCondition()
}

// Operator is a comparison operator of a ConditionWithValue.
type Operator string

const (
	OpEqual        Operator = "=="
	OpNotEqual     Operator = "!="
	OpLess         Operator = "<"
	OpLessEqual    Operator = "<="
	OpGreater      Operator = ">"
	OpGreaterEqual Operator = ">="
)

// IsOrdering reports whether the operator compares order rather than equality.
func (op Operator) IsOrdering() bool {
	return op != OpEqual && op != OpNotEqual
}

// Program is the root of a parsed template: its functions in source order.
type Program struct {
	BaseNode
	Functions []*Function `json:"functions"`
}

func (p *Program) Accept(visitor Visitor) interface{} {
	return visitor.Visit(p)
}

func (p *Program) GetChildren() []Node {
	children := make([]Node, len(p.Functions))
	for i, fn := range p.Functions {
		children[i] = fn
	}
	return children
}

func (p *Program) String() string {
	return fmt.Sprintf("Program(functions=%v)", p.Functions)
}

func (p *Program) Type() string {
	return "Program"
}

// Function finds a function by name.
func (p *Program) Function(name string) (*Function, bool) {
	for _, fn := range p.Functions {
		if fn.Name == name {
			return fn, true
		}
	}
	return nil, false
}

// Function is a `<:def name(params)>` definition.
type Function struct {
	BaseNode
	Name   string        `json:"name"`
	Params []string      `json:"params"`
	Body   []Instruction `json:"body"`
}

func (f *Function) Accept(visitor Visitor) interface{} {
	return visitor.Visit(f)
}

func (f *Function) GetChildren() []Node {
	return instructionNodes(f.Body)
}

func (f *Function) String() string {
	return fmt.Sprintf("Function(name=%s, params=%v, body=%v)", f.Name, f.Params, f.Body)
}

func (f *Function) Type() string {
	return "Function"
}

// Literal is raw text copied to the output. It also appears as a component
// of a StringValue.
type Literal struct {
	BaseNode
	Text string `json:"text"`
}

func (l *Literal) isInstruction() {}

func (l *Literal) Accept(visitor Visitor) interface{} {
	return visitor.Visit(l)
}

func (l *Literal) String() string {
	return fmt.Sprintf("Literal(%q)", l.Text)
}

func (l *Literal) Type() string {
	return "Literal"
}

// ValueOf is a value path such as `a[2].b.c`. Each step is a ValueOf linked
// through Next.
type ValueOf struct {
	BaseNode
	Name     string   `json:"name"`
	HasIndex bool     `json:"has_index"`
	Index    int      `json:"index"`
	Next     *ValueOf `json:"next,omitempty"`
}

func (v *ValueOf) isInstruction() {}
func (v *ValueOf) isValue()       {}

func (v *ValueOf) Accept(visitor Visitor) interface{} {
	return visitor.Visit(v)
}

func (v *ValueOf) GetChildren() []Node {
	if v.Next != nil {
		return []Node{v.Next}
	}
	return []Node{}
}

func (v *ValueOf) String() string {
	return fmt.Sprintf("ValueOf(%s)", v.Path())
}

func (v *ValueOf) Type() string {
	return "ValueOf"
}

// IsBare reports whether the path is a single name with no index or member.
func (v *ValueOf) IsBare() bool {
	return !v.HasIndex && v.Next == nil
}

// Path renders the access path in source form.
func (v *ValueOf) Path() string {
	var b strings.Builder
	for step := v; step != nil; step = step.Next {
		if step != v {
			b.WriteByte('.')
		}
		b.WriteString(step.Name)
		if step.HasIndex {
			b.WriteString("[" + strconv.Itoa(step.Index) + "]")
		}
	}
	return b.String()
}

// StringValue is a quoted string made of *Literal and *ValueOf components.
type StringValue struct {
	BaseNode
	Components []Node `json:"components"`
}

func (s *StringValue) isValue() {}

func (s *StringValue) Accept(visitor Visitor) interface{} {
	return visitor.Visit(s)
}

func (s *StringValue) GetChildren() []Node {
	return append([]Node(nil), s.Components...)
}

func (s *StringValue) String() string {
	return fmt.Sprintf("StringValue(%v)", s.Components)
}

func (s *StringValue) Type() string {
	return "StringValue"
}

// NumericValue is a number literal, either integer or real.
type NumericValue struct {
	BaseNode
	Text  string  `json:"text"`
	Real  bool    `json:"real"`
	Value float64 `json:"value"`
}

func (n *NumericValue) isValue() {}

func (n *NumericValue) Accept(visitor Visitor) interface{} {
	return visitor.Visit(n)
}

func (n *NumericValue) String() string {
	return fmt.Sprintf("NumericValue(%s)", n.Text)
}

func (n *NumericValue) Type() string {
	return "NumericValue"
}

// FunctionCall is a `{name(args)}` interpolation.
type FunctionCall struct {
	BaseNode
	Name string  `json:"name"`
	Args []Value `json:"args"`
}

func (f *FunctionCall) isInstruction() {}

func (f *FunctionCall) Accept(visitor Visitor) interface{} {
	return visitor.Visit(f)
}

func (f *FunctionCall) GetChildren() []Node {
	children := make([]Node, len(f.Args))
	for i, arg := range f.Args {
		children[i] = arg
	}
	return children
}

func (f *FunctionCall) String() string {
	return fmt.Sprintf("FunctionCall(name=%s, args=%v)", f.Name, f.Args)
}

func (f *FunctionCall) Type() string {
	return "FunctionCall"
}

// Attribute is one `name` or `name="value"` pair of an HTML tag.
type Attribute struct {
	BaseNode
	Name  string       `json:"name"`
	Value *StringValue `json:"value,omitempty"`
}

func (a *Attribute) Accept(visitor Visitor) interface{} {
	return visitor.Visit(a)
}

func (a *Attribute) GetChildren() []Node {
	if a.Value != nil {
		return []Node{a.Value}
	}
	return []Node{}
}

func (a *Attribute) String() string {
	return fmt.Sprintf("Attribute(name=%s, value=%v)", a.Name, a.Value)
}

func (a *Attribute) Type() string {
	return "Attribute"
}

// HtmlTag is an HTML element. Inline tags (`<br/>`) have no body.
type HtmlTag struct {
	BaseNode
	Name       string        `json:"name"`
	Attributes []*Attribute  `json:"attributes"`
	Body       []Instruction `json:"body"`
	Inline     bool          `json:"inline"`
}

func (h *HtmlTag) isInstruction() {}

func (h *HtmlTag) Accept(visitor Visitor) interface{} {
	return visitor.Visit(h)
}

func (h *HtmlTag) GetChildren() []Node {
	var children []Node
	for _, attr := range h.Attributes {
		children = append(children, attr)
	}
	return append(children, instructionNodes(h.Body)...)
}

func (h *HtmlTag) String() string {
	return fmt.Sprintf("HtmlTag(name=%s, attributes=%v, body=%v, inline=%t)", h.Name, h.Attributes, h.Body, h.Inline)
}

func (h *HtmlTag) Type() string {
	if h.Inline {
		return "HtmlInlineTag"
	}
	return "HtmlTag"
}

// IfExpression is `<:if (cond)>...</:if>`.
type IfExpression struct {
	BaseNode
	Condition Condition     `json:"condition"`
	Negated   bool          `json:"negated"`
	Body      []Instruction `json:"body"`
}

func (i *IfExpression) isInstruction() {}

func (i *IfExpression) Accept(visitor Visitor) interface{} {
	return visitor.Visit(i)
}

func (i *IfExpression) GetChildren() []Node {
	var children []Node
	if i.Condition != nil {
		children = append(children, i.Condition)
	}
	return append(children, instructionNodes(i.Body)...)
}

func (i *IfExpression) String() string {
	return fmt.Sprintf("IfExpression(condition=%v, negated=%t, body=%v)", i.Condition, i.Negated, i.Body)
}

func (i *IfExpression) Type() string {
	return "IfExpression"
}

// ElseExpression is `<:else>...</:else>`; it belongs to the IfExpression
// immediately before it.
type ElseExpression struct {
	BaseNode
	Body []Instruction `json:"body"`
}

func (e *ElseExpression) isInstruction() {}

func (e *ElseExpression) Accept(visitor Visitor) interface{} {
	return visitor.Visit(e)
}

func (e *ElseExpression) GetChildren() []Node {
	return instructionNodes(e.Body)
}

func (e *ElseExpression) String() string {
	return fmt.Sprintf("ElseExpression(body=%v)", e.Body)
}

func (e *ElseExpression) Type() string {
	return "ElseExpression"
}

// ForExpression is `<:for (element in collection)>...</:for>`.
type ForExpression struct {
	BaseNode
	Element    string        `json:"element"`
	Collection *ValueOf      `json:"collection"`
	Body       []Instruction `json:"body"`
}

func (f *ForExpression) isInstruction() {}

func (f *ForExpression) Accept(visitor Visitor) interface{} {
	return visitor.Visit(f)
}

func (f *ForExpression) GetChildren() []Node {
	var children []Node
	if f.Collection != nil {
		children = append(children, f.Collection)
	}
	return append(children, instructionNodes(f.Body)...)
}

func (f *ForExpression) String() string {
	return fmt.Sprintf("ForExpression(element=%s, collection=%v, body=%v)", f.Element, f.Collection, f.Body)
}

func (f *ForExpression) Type() string {
	return "ForExpression"
}

// SimpleCondition tests the truthiness of one value.
type SimpleCondition struct {
	BaseNode
	Value *ValueOf `json:"value"`
}

func (c *SimpleCondition) isCondition() {}

func (c *SimpleCondition) Accept(visitor Visitor) interface{} {
	return visitor.Visit(c)
}

func (c *SimpleCondition) GetChildren() []Node {
	if c.Value != nil {
		return []Node{c.Value}
	}
	return []Node{}
}

func (c *SimpleCondition) String() string {
	return fmt.Sprintf("SimpleCondition(%v)", c.Value)
}

func (c *SimpleCondition) Type() string {
	return "SimpleCondition"
}

// ConditionWithValue compares a value path against an operand.
type ConditionWithValue struct {
	BaseNode
	Left     *ValueOf `json:"left"`
	Operator Operator `json:"operator"`
	Right    Value    `json:"right"`
}

func (c *ConditionWithValue) isCondition() {}

func (c *ConditionWithValue) Accept(visitor Visitor) interface{} {
	return visitor.Visit(c)
}

func (c *ConditionWithValue) GetChildren() []Node {
	var children []Node
	if c.Left != nil {
		children = append(children, c.Left)
	}
	if c.Right != nil {
		children = append(children, c.Right)
	}
	return children
}

func (c *ConditionWithValue) String() string {
	return fmt.Sprintf("ConditionWithValue(left=%v, operator=%s, right=%v)", c.Left, c.Operator, c.Right)
}

func (c *ConditionWithValue) Type() string {
	return "ConditionWithValue"
}

func instructionNodes(body []Instruction) []Node {
	children := make([]Node, len(body))
	for i, instr := range body {
		children[i] = instr
	}
	return children
}

// Dump returns a string representation of the AST for debugging
func Dump(node Node) string {
	if node == nil {
		return "nil"
	}

	var buf strings.Builder
	dumpNode(&buf, node, 0)
	return buf.String()
}

// dumpNode recursively dumps a node
func dumpNode(buf *strings.Builder, node Node, indent int) {
	if node == nil {
		buf.WriteString(strings.Repeat("  ", indent))
		buf.WriteString("nil\n")
		return
	}

	buf.WriteString(strings.Repeat("  ", indent))
	buf.WriteString(node.Type())
	buf.WriteString("(")

	switch n := node.(type) {
	case *Program:
		buf.WriteString(fmt.Sprintf("functions=%d", len(n.Functions)))
	case *Function:
		buf.WriteString(fmt.Sprintf("name=%s, params=%v", n.Name, n.Params))
	case *Literal:
		buf.WriteString(strconv.Quote(n.Text))
	case *ValueOf:
		buf.WriteString(n.Path())
		buf.WriteString(")\n")
		// the chain is printed as one path
		return
	case *NumericValue:
		buf.WriteString(n.Text)
	case *StringValue:
		buf.WriteString(fmt.Sprintf("components=%d", len(n.Components)))
	case *FunctionCall:
		buf.WriteString(fmt.Sprintf("name=%s, args=%d", n.Name, len(n.Args)))
	case *Attribute:
		buf.WriteString(n.Name)
	case *HtmlTag:
		buf.WriteString(n.Name)
	case *IfExpression:
		buf.WriteString(fmt.Sprintf("negated=%t", n.Negated))
	case *ForExpression:
		buf.WriteString(fmt.Sprintf("element=%s", n.Element))
	case *ConditionWithValue:
		buf.WriteString(string(n.Operator))
	}

	buf.WriteString(")\n")

	for _, child := range node.GetChildren() {
		dumpNode(buf, child, indent+1)
	}
}

// Node creation helpers

// NewLiteral creates a new Literal node
func NewLiteral(text string, line, column int) *Literal {
	node := &Literal{Text: text}
	node.SetPosition(Position{Line: line, Column: column})
	return node
}

// NewValueOf creates a value path from dotted names, e.g. NewValueOf("model", "field").
func NewValueOf(names ...string) *ValueOf {
	var head, tail *ValueOf
	for _, name := range names {
		step := &ValueOf{Name: name}
		if head == nil {
			head = step
		} else {
			tail.Next = step
		}
		tail = step
	}
	return head
}

// NewNumericValue creates a NumericValue from its source text.
func NewNumericValue(text string, line, column int) (*NumericValue, error) {
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, err
	}
	node := &NumericValue{Text: text, Real: strings.Contains(text, "."), Value: f}
	node.SetPosition(Position{Line: line, Column: column})
	return node, nil
}
