package runtime

import (
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/deicod/htmldsl/nodes"
)

// Boilerplate is written before the output when Options.Boilerplate is set.
const Boilerplate = "<!DOCTYPE html>\n<meta charset=\"utf-8\">\n"

// Executor walks a checked program and writes its output. An Executor is
// used for a single render; templates create one per call.
type Executor struct {
	program *Program
	options Options
	writer  io.Writer
	calls   int
}

// NewExecutor creates an executor writing to w.
func NewExecutor(program *Program, options Options, w io.Writer) *Executor {
	return &Executor{
		program: program,
		options: options.withDefaults(),
		writer:  w,
	}
}

// Run binds model to main's parameter and executes main. Output written
// before an error is not rolled back.
func (x *Executor) Run(model Value) error {
	main := x.program.Main
	if main == nil {
		return NewRuntimeError(fmt.Sprintf("function %q is not defined", MainFunction), nil)
	}
	if x.options.Boilerplate {
		if err := x.write(Boilerplate); err != nil {
			return err
		}
	}
	scope := NewScope(main.Body.Proto, nil)
	if err := scope.Set(main.Params[0], AssignValue(model)); err != nil {
		return NewErrorWithCause(ErrorTypeRuntime, err.Error(), positionOf(main.Node), main.Node, err)
	}
	return x.executeInstructions(main.Body.Instructions, scope, false, 0)
}

func (x *Executor) write(s string) error {
	if s == "" {
		return nil
	}
	if _, err := io.WriteString(x.writer, s); err != nil {
		return NewErrorWithCause(ErrorTypeRuntime, "write failed", nodes.Position{}, nil, err)
	}
	return nil
}

func (x *Executor) newLine(depth int) error {
	return x.write("\n" + strings.Repeat(" ", depth*x.options.IndentWidth))
}

func (x *Executor) escape(s string) string {
	if x.options.Autoescape {
		return html.EscapeString(s)
	}
	return s
}

func (x *Executor) executeBlock(block *Block, parent *Scope, newLine bool, depth int) error {
	if block == nil {
		return nil
	}
	return x.executeInstructions(block.Instructions, NewScope(block.Proto, parent), newLine, depth)
}

func (x *Executor) executeInstructions(instructions []Instruction, scope *Scope, newLine bool, depth int) error {
	for _, instr := range instructions {
		if err := x.execute(instr, scope, newLine, depth); err != nil {
			return err
		}
	}
	return nil
}

// execute runs one instruction. When newLine is set, output starts on a new
// line indented to depth.
func (x *Executor) execute(instr Instruction, scope *Scope, newLine bool, depth int) error {
	switch n := instr.(type) {
	case *LiteralInstruction:
		if newLine {
			if err := x.newLine(depth); err != nil {
				return err
			}
		}
		return x.write(n.Text)
	case *ValueOfInstruction:
		value, err := x.resolve(n, scope)
		if err != nil {
			return err
		}
		if newLine {
			if err := x.newLine(depth); err != nil {
				return err
			}
		}
		return x.write(x.escape(value.Text()))
	case *StringComponentInstruction:
		text, err := x.render(n, scope, x.options.Autoescape)
		if err != nil {
			return err
		}
		if newLine {
			if err := x.newLine(depth); err != nil {
				return err
			}
		}
		return x.write(text)
	case *HtmlTagInstruction:
		return x.executeHtmlTag(n, scope, newLine, depth)
	case *IfInstruction:
		return x.executeIf(n, scope, newLine, depth)
	case *ForInstruction:
		return x.executeFor(n, scope, newLine, depth)
	case *FunctionCallInstruction:
		return x.executeCall(n, scope, newLine, depth)
	}
	return NewRuntimeError(fmt.Sprintf("unsupported instruction %T", instr), instr.Source())
}

func (x *Executor) executeHtmlTag(tag *HtmlTagInstruction, scope *Scope, newLine bool, depth int) error {
	var open strings.Builder
	open.WriteString("<")
	open.WriteString(tag.Name)
	for _, attr := range tag.Attributes {
		open.WriteString(" ")
		open.WriteString(attr.Name)
		if attr.Value == nil {
			continue
		}
		value, err := x.render(attr.Value, scope, x.options.Autoescape)
		if err != nil {
			return err
		}
		open.WriteString("=\"")
		open.WriteString(value)
		open.WriteString("\"")
	}
	if tag.Inline {
		open.WriteString("/>")
	} else {
		open.WriteString(">")
	}

	if newLine {
		if err := x.newLine(depth); err != nil {
			return err
		}
	}
	if err := x.write(open.String()); err != nil {
		return err
	}
	if tag.Inline {
		return nil
	}

	if err := x.executeBlock(tag.Body, scope, true, depth+1); err != nil {
		return err
	}
	if tag.Body != nil && len(tag.Body.Instructions) > 0 {
		if err := x.newLine(depth); err != nil {
			return err
		}
	}
	return x.write("</" + tag.Name + ">")
}

func (x *Executor) executeIf(instr *IfInstruction, scope *Scope, newLine bool, depth int) error {
	ok, err := x.evalCondition(instr.Condition, scope)
	if err != nil {
		return err
	}
	if instr.Negated {
		ok = !ok
	}
	if ok {
		return x.executeBlock(instr.Then, scope, newLine, depth)
	}
	return x.executeBlock(instr.Else, scope, newLine, depth)
}

func (x *Executor) executeFor(instr *ForInstruction, scope *Scope, newLine bool, depth int) error {
	collection, err := x.resolve(instr.Collection, scope)
	if err != nil {
		return err
	}
	if collection.IsNumeric() {
		return NewRuntimeError(fmt.Sprintf("cannot iterate over number %s", collection.Text()), instr.Node)
	}
	items, ok := collection.JSON().Items()
	if !ok {
		return NewRuntimeError(fmt.Sprintf("cannot iterate over %s %s", collection.JSON().Kind(), instr.Collection.Path.Path()), instr.Node)
	}
	for _, item := range items {
		iteration := NewScope(instr.Body.Proto, scope)
		if err := iteration.Set(instr.Element, AssignValue(item)); err != nil {
			return NewErrorWithCause(ErrorTypeRuntime, err.Error(), positionOf(instr.Node), instr.Node, err)
		}
		if err := x.executeInstructions(instr.Body.Instructions, iteration, newLine, depth); err != nil {
			return err
		}
	}
	return nil
}

func (x *Executor) executeCall(call *FunctionCallInstruction, scope *Scope, newLine bool, depth int) error {
	fn := call.Function
	if len(call.Args) != len(fn.Params) {
		return NewRuntimeError(fmt.Sprintf("function %q takes %d argument(s), got %d", fn.Name, len(fn.Params), len(call.Args)), call.Node)
	}
	if x.options.MaxCallDepth > 0 && x.calls >= x.options.MaxCallDepth {
		return NewRuntimeError(fmt.Sprintf("maximum call depth %d exceeded calling %q", x.options.MaxCallDepth, fn.Name), call.Node)
	}

	callee := NewScope(fn.Body.Proto, nil)
	for i, arg := range call.Args {
		value, err := x.evalOperand(arg, scope)
		if err != nil {
			return err
		}
		if err := callee.Set(fn.Params[i], value); err != nil {
			return NewErrorWithCause(ErrorTypeRuntime, err.Error(), positionOf(call.Node), call.Node, err)
		}
	}

	x.calls++
	defer func() { x.calls-- }()
	return x.executeInstructions(fn.Body.Instructions, callee, newLine, depth)
}

// resolve looks up the root name of a value path and follows its index and
// field steps.
func (x *Executor) resolve(instr *ValueOfInstruction, scope *Scope) (AssignedValue, error) {
	path := instr.Path
	root, ok := scope.Get(path.Name)
	if !ok {
		return AssignedValue{}, NewRuntimeError(fmt.Sprintf("%q is not bound", path.Name), path)
	}
	if !path.HasIndex && path.Next == nil {
		return root, nil
	}
	if root.IsNumeric() {
		return AssignedValue{}, NewRuntimeError(fmt.Sprintf("cannot access %s on number %q", path.Path(), path.Name), path)
	}

	current := root.JSON()
	if path.HasIndex {
		next, ok := current.Index(path.Index)
		if !ok {
			return AssignedValue{}, indexError(path, current, path.Name)
		}
		current = next
	}
	walked := path.Name
	for step := path.Next; step != nil; step = step.Next {
		next, ok := current.Field(step.Name)
		if !ok {
			if current.Kind() != KindObject {
				return AssignedValue{}, NewRuntimeError(fmt.Sprintf("cannot read field %q of %s %s", step.Name, current.Kind(), walked), path)
			}
			return AssignedValue{}, NewRuntimeError(fmt.Sprintf("%s has no field %q", walked, step.Name), path)
		}
		walked += "." + step.Name
		current = next
		if step.HasIndex {
			next, ok := current.Index(step.Index)
			if !ok {
				return AssignedValue{}, indexError(path, current, walked)
			}
			current = next
			walked += fmt.Sprintf("[%d]", step.Index)
		}
	}
	return AssignValue(current), nil
}

func indexError(path *nodes.ValueOf, value Value, walked string) *Error {
	if value.Kind() != KindArray {
		return NewRuntimeError(fmt.Sprintf("cannot index %s %s", value.Kind(), walked), path)
	}
	return NewRuntimeError(fmt.Sprintf("index out of range for %s of length %d", walked, value.Len()), path)
}

// render concatenates the components of a string. With escape set, only the
// interpolated values are HTML-escaped.
func (x *Executor) render(instr *StringComponentInstruction, scope *Scope, escape bool) (string, error) {
	var b strings.Builder
	for _, component := range instr.Components {
		switch part := component.(type) {
		case *LiteralInstruction:
			b.WriteString(part.Text)
		case *ValueOfInstruction:
			value, err := x.resolve(part, scope)
			if err != nil {
				return "", err
			}
			if escape {
				b.WriteString(html.EscapeString(value.Text()))
			} else {
				b.WriteString(value.Text())
			}
		default:
			return "", NewRuntimeError(fmt.Sprintf("unsupported string component %T", component), component.Source())
		}
	}
	return b.String(), nil
}

func (x *Executor) evalOperand(operand Operand, scope *Scope) (AssignedValue, error) {
	switch o := operand.(type) {
	case *NumberInstruction:
		return AssignNumber(o.Value, o.Text), nil
	case *StringComponentInstruction:
		text, err := x.render(o, scope, false)
		if err != nil {
			return AssignedValue{}, err
		}
		return AssignValue(String(text)), nil
	case *ValueOfInstruction:
		return x.resolve(o, scope)
	}
	return AssignedValue{}, NewRuntimeError(fmt.Sprintf("unsupported operand %T", operand), operand.Source())
}

func (x *Executor) evalCondition(cond Condition, scope *Scope) (bool, error) {
	switch c := cond.(type) {
	case *SimpleCondition:
		value, err := x.resolve(c.Value, scope)
		if err != nil {
			return false, err
		}
		ok, err := value.Truthy()
		if err != nil {
			return false, NewErrorWithCause(ErrorTypeRuntime, fmt.Sprintf("%s is not a boolean", c.Value.Path.Path()), positionOf(c.Node), c.Node, err)
		}
		return ok, nil
	case *CompareCondition:
		return x.compare(c, scope)
	}
	return false, NewRuntimeError(fmt.Sprintf("unsupported condition %T", cond), cond.Source())
}

func (x *Executor) compare(c *CompareCondition, scope *Scope) (bool, error) {
	left, err := x.resolve(c.Left, scope)
	if err != nil {
		return false, err
	}

	switch right := c.Right.(type) {
	case *NumberInstruction:
		lf, err := left.Float()
		if err != nil {
			return false, NewErrorWithCause(ErrorTypeRuntime, fmt.Sprintf("%s is not a number", c.Left.Path.Path()), positionOf(c.Node), c.Node, err)
		}
		return compareFloats(lf, right.Value, c.Operator), nil
	case *StringComponentInstruction:
		if c.Operator.IsOrdering() {
			return false, NewRuntimeError(fmt.Sprintf("operator %s cannot compare against a string", c.Operator), c.Node)
		}
		text, err := x.render(right, scope, false)
		if err != nil {
			return false, err
		}
		return looseEqual(left, AssignValue(String(text))) == (c.Operator == nodes.OpEqual), nil
	case *ValueOfInstruction:
		value, err := x.resolve(right, scope)
		if err != nil {
			return false, err
		}
		if !c.Operator.IsOrdering() {
			return looseEqual(left, value) == (c.Operator == nodes.OpEqual), nil
		}
		lf, err := left.Float()
		if err != nil {
			return false, NewErrorWithCause(ErrorTypeRuntime, fmt.Sprintf("%s is not a number", c.Left.Path.Path()), positionOf(c.Node), c.Node, err)
		}
		rf, err := value.Float()
		if err != nil {
			return false, NewErrorWithCause(ErrorTypeRuntime, fmt.Sprintf("%s is not a number", right.Path.Path()), positionOf(c.Node), c.Node, err)
		}
		return compareFloats(lf, rf, c.Operator), nil
	}
	return false, NewRuntimeError(fmt.Sprintf("unsupported operand %T", c.Right), c.Node)
}
