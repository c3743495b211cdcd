package runtime

import (
	"sort"

	"github.com/deicod/htmldsl/nodes"
)

// Program is a checked template ready for execution.
type Program struct {
	Functions map[string]*Function
	Main      *Function
	order     []string
}

// FunctionNames returns the defined functions in source order.
func (p *Program) FunctionNames() []string {
	return append([]string(nil), p.order...)
}

// SortedFunctionNames returns the defined functions alphabetically.
func (p *Program) SortedFunctionNames() []string {
	names := p.FunctionNames()
	sort.Strings(names)
	return names
}

// Function is a checked `:def` block.
type Function struct {
	Name   string
	Params []string
	Body   *Block
	Node   *nodes.Function
}

// Block is a list of instructions sharing one scope prototype.
type Block struct {
	Proto        *ScopePrototype
	Instructions []Instruction
}

// Instruction is an executable element of a block.
type Instruction interface {
	Source() nodes.Node
	isInstruction()
}

// Operand is a value passed to a function or compared in a condition.
type Operand interface {
	Source() nodes.Node
	isOperand()
}

// Condition is the test of an if-expression.
type Condition interface {
	Source() nodes.Node
	isCondition()
}

// LiteralInstruction writes fixed text.
type LiteralInstruction struct {
	Text string
	Node *nodes.Literal
}

func (i *LiteralInstruction) Source() nodes.Node { return i.Node }
func (i *LiteralInstruction) isInstruction()     {}

// ValueOfInstruction resolves a value path and writes its text form.
type ValueOfInstruction struct {
	Path *nodes.ValueOf
}

func (i *ValueOfInstruction) Source() nodes.Node { return i.Path }
func (i *ValueOfInstruction) isInstruction()     {}
func (i *ValueOfInstruction) isOperand()         {}

// StringComponentInstruction concatenates literal parts and value paths.
type StringComponentInstruction struct {
	Components []Instruction
	Node       *nodes.StringValue
}

func (i *StringComponentInstruction) Source() nodes.Node { return i.Node }
func (i *StringComponentInstruction) isInstruction()     {}
func (i *StringComponentInstruction) isOperand()         {}

// NumberInstruction is a numeric literal operand.
type NumberInstruction struct {
	Text  string
	Value float64
	Node  *nodes.NumericValue
}

func (i *NumberInstruction) Source() nodes.Node { return i.Node }
func (i *NumberInstruction) isOperand()         {}

// FunctionCallInstruction invokes another function with a fresh root scope.
type FunctionCallInstruction struct {
	Function *Function
	Args     []Operand
	Node     *nodes.FunctionCall
}

func (i *FunctionCallInstruction) Source() nodes.Node { return i.Node }
func (i *FunctionCallInstruction) isInstruction()     {}

// AttributeInstruction is one attribute of an HTML tag; Value is nil for
// bare attributes.
type AttributeInstruction struct {
	Name  string
	Value *StringComponentInstruction
}

// HtmlTagInstruction writes an element and its body.
type HtmlTagInstruction struct {
	Name       string
	Attributes []AttributeInstruction
	Body       *Block
	Inline     bool
	Node       *nodes.HtmlTag
}

func (i *HtmlTagInstruction) Source() nodes.Node { return i.Node }
func (i *HtmlTagInstruction) isInstruction()     {}

// IfInstruction runs Then or Else depending on Condition.
type IfInstruction struct {
	Condition Condition
	Negated   bool
	Then      *Block
	Else      *Block
	Node      *nodes.IfExpression
}

func (i *IfInstruction) Source() nodes.Node { return i.Node }
func (i *IfInstruction) isInstruction()     {}

// ForInstruction runs Body once per element of an array.
type ForInstruction struct {
	Element    string
	Collection *ValueOfInstruction
	Body       *Block
	Node       *nodes.ForExpression
}

func (i *ForInstruction) Source() nodes.Node { return i.Node }
func (i *ForInstruction) isInstruction()     {}

// SimpleCondition tests the truthiness of a value.
type SimpleCondition struct {
	Value *ValueOfInstruction
	Node  *nodes.SimpleCondition
}

func (c *SimpleCondition) Source() nodes.Node { return c.Node }
func (c *SimpleCondition) isCondition()       {}

// CompareCondition compares a value against an operand.
type CompareCondition struct {
	Left     *ValueOfInstruction
	Operator nodes.Operator
	Right    Operand
	Node     *nodes.ConditionWithValue
}

func (c *CompareCondition) Source() nodes.Node { return c.Node }
func (c *CompareCondition) isCondition()       {}
