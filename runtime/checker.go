package runtime

import (
	"fmt"

	"github.com/deicod/htmldsl/nodes"
)

// MainFunction is the entry point every template must define.
const MainFunction = "main"

// Checker validates a parsed program and lowers it into executable blocks.
type Checker struct {
	program   *Program
	functions map[string]*Function
}

// Check validates ast and returns the executable program. The first
// violation found is returned as a semantics error.
func Check(ast *nodes.Program) (*Program, error) {
	if ast == nil {
		return nil, NewError(ErrorTypeSemantics, "program cannot be nil", nodes.Position{}, nil)
	}
	c := &Checker{
		program:   &Program{Functions: make(map[string]*Function)},
		functions: make(map[string]*Function),
	}
	if err := c.declareFunctions(ast); err != nil {
		return nil, err
	}
	if err := c.checkMain(ast); err != nil {
		return nil, err
	}
	for _, node := range ast.Functions {
		fn := c.functions[node.Name]
		instructions, err := c.lowerInstructions(node.Body, fn.Body.Proto)
		if err != nil {
			return nil, err
		}
		fn.Body.Instructions = instructions
	}
	return c.program, nil
}

func (c *Checker) declareFunctions(ast *nodes.Program) error {
	for _, node := range ast.Functions {
		if _, exists := c.functions[node.Name]; exists {
			return NewSemanticsError(fmt.Sprintf("function %q is already defined", node.Name), node)
		}
		proto := NewScopePrototype(nil)
		for _, param := range node.Params {
			if !proto.Declare(param) {
				return NewSemanticsError(fmt.Sprintf("duplicate parameter %q in function %q", param, node.Name), node)
			}
		}
		fn := &Function{
			Name:   node.Name,
			Params: append([]string(nil), node.Params...),
			Body:   &Block{Proto: proto},
			Node:   node,
		}
		c.functions[node.Name] = fn
		c.program.Functions[node.Name] = fn
		c.program.order = append(c.program.order, node.Name)
	}
	return nil
}

func (c *Checker) checkMain(ast *nodes.Program) error {
	main, ok := c.functions[MainFunction]
	if !ok {
		return NewSemanticsError(fmt.Sprintf("function %q is not defined", MainFunction), ast)
	}
	if len(main.Params) != 1 {
		return NewSemanticsError(fmt.Sprintf("function %q must take exactly one parameter, got %d", MainFunction, len(main.Params)), main.Node)
	}
	c.program.Main = main
	return nil
}

func (c *Checker) lowerInstructions(list []nodes.Instruction, proto *ScopePrototype) ([]Instruction, error) {
	out := make([]Instruction, 0, len(list))
	for i := 0; i < len(list); i++ {
		switch n := list[i].(type) {
		case *nodes.Literal:
			out = append(out, &LiteralInstruction{Text: n.Text, Node: n})
		case *nodes.ValueOf:
			value, err := c.lowerValueOf(n, proto)
			if err != nil {
				return nil, err
			}
			out = append(out, value)
		case *nodes.FunctionCall:
			call, err := c.lowerCall(n, proto)
			if err != nil {
				return nil, err
			}
			out = append(out, call)
		case *nodes.HtmlTag:
			tag, err := c.lowerHtmlTag(n, proto)
			if err != nil {
				return nil, err
			}
			out = append(out, tag)
		case *nodes.IfExpression:
			var elseNode *nodes.ElseExpression
			if i+1 < len(list) {
				if e, ok := list[i+1].(*nodes.ElseExpression); ok {
					elseNode = e
					i++
				}
			}
			instr, err := c.lowerIf(n, elseNode, proto)
			if err != nil {
				return nil, err
			}
			out = append(out, instr)
		case *nodes.ElseExpression:
			return nil, NewSemanticsError("else without a preceding if", n)
		case *nodes.ForExpression:
			instr, err := c.lowerFor(n, proto)
			if err != nil {
				return nil, err
			}
			out = append(out, instr)
		default:
			return nil, NewSemanticsError(fmt.Sprintf("unsupported instruction %s", list[i].Type()), list[i])
		}
	}
	return out, nil
}

func (c *Checker) lowerBlock(list []nodes.Instruction, parent *ScopePrototype) (*Block, error) {
	proto := NewScopePrototype(parent)
	instructions, err := c.lowerInstructions(list, proto)
	if err != nil {
		return nil, err
	}
	return &Block{Proto: proto, Instructions: instructions}, nil
}

func (c *Checker) lowerValueOf(node *nodes.ValueOf, proto *ScopePrototype) (*ValueOfInstruction, error) {
	if !proto.Resolve(node.Name) {
		return nil, NewSemanticsError(fmt.Sprintf("%q is not declared", node.Name), node)
	}
	return &ValueOfInstruction{Path: node}, nil
}

func (c *Checker) lowerString(node *nodes.StringValue, proto *ScopePrototype) (*StringComponentInstruction, error) {
	instr := &StringComponentInstruction{Components: make([]Instruction, 0, len(node.Components)), Node: node}
	for _, component := range node.Components {
		switch part := component.(type) {
		case *nodes.Literal:
			instr.Components = append(instr.Components, &LiteralInstruction{Text: part.Text, Node: part})
		case *nodes.ValueOf:
			value, err := c.lowerValueOf(part, proto)
			if err != nil {
				return nil, err
			}
			instr.Components = append(instr.Components, value)
		default:
			return nil, NewSemanticsError(fmt.Sprintf("unsupported string component %s", component.Type()), component)
		}
	}
	return instr, nil
}

func (c *Checker) lowerOperand(node nodes.Value, proto *ScopePrototype) (Operand, error) {
	switch v := node.(type) {
	case *nodes.ValueOf:
		return c.lowerValueOf(v, proto)
	case *nodes.StringValue:
		return c.lowerString(v, proto)
	case *nodes.NumericValue:
		return &NumberInstruction{Text: v.Text, Value: v.Value, Node: v}, nil
	}
	return nil, NewSemanticsError(fmt.Sprintf("unsupported operand %s", node.Type()), node)
}

func (c *Checker) lowerCall(node *nodes.FunctionCall, proto *ScopePrototype) (*FunctionCallInstruction, error) {
	fn, ok := c.functions[node.Name]
	if !ok {
		return nil, NewSemanticsError(fmt.Sprintf("function %q is not defined", node.Name), node)
	}
	if len(node.Args) != len(fn.Params) {
		return nil, NewSemanticsError(fmt.Sprintf("function %q takes %d argument(s), got %d", node.Name, len(fn.Params), len(node.Args)), node)
	}
	call := &FunctionCallInstruction{Function: fn, Args: make([]Operand, 0, len(node.Args)), Node: node}
	for _, arg := range node.Args {
		operand, err := c.lowerOperand(arg, proto)
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, operand)
	}
	return call, nil
}

func (c *Checker) lowerHtmlTag(node *nodes.HtmlTag, proto *ScopePrototype) (*HtmlTagInstruction, error) {
	tag := &HtmlTagInstruction{Name: node.Name, Inline: node.Inline, Node: node}
	for _, attr := range node.Attributes {
		lowered := AttributeInstruction{Name: attr.Name}
		if attr.Value != nil {
			value, err := c.lowerString(attr.Value, proto)
			if err != nil {
				return nil, err
			}
			lowered.Value = value
		}
		tag.Attributes = append(tag.Attributes, lowered)
	}
	body, err := c.lowerBlock(node.Body, proto)
	if err != nil {
		return nil, err
	}
	tag.Body = body
	return tag, nil
}

func (c *Checker) lowerCondition(node nodes.Condition, proto *ScopePrototype) (Condition, error) {
	switch cond := node.(type) {
	case *nodes.SimpleCondition:
		value, err := c.lowerValueOf(cond.Value, proto)
		if err != nil {
			return nil, err
		}
		return &SimpleCondition{Value: value, Node: cond}, nil
	case *nodes.ConditionWithValue:
		left, err := c.lowerValueOf(cond.Left, proto)
		if err != nil {
			return nil, err
		}
		right, err := c.lowerOperand(cond.Right, proto)
		if err != nil {
			return nil, err
		}
		return &CompareCondition{Left: left, Operator: cond.Operator, Right: right, Node: cond}, nil
	}
	return nil, NewSemanticsError(fmt.Sprintf("unsupported condition %s", node.Type()), node)
}

func (c *Checker) lowerIf(node *nodes.IfExpression, elseNode *nodes.ElseExpression, proto *ScopePrototype) (*IfInstruction, error) {
	cond, err := c.lowerCondition(node.Condition, proto)
	if err != nil {
		return nil, err
	}
	then, err := c.lowerBlock(node.Body, proto)
	if err != nil {
		return nil, err
	}
	instr := &IfInstruction{Condition: cond, Negated: node.Negated, Then: then, Node: node}
	if elseNode != nil {
		instr.Else, err = c.lowerBlock(elseNode.Body, proto)
		if err != nil {
			return nil, err
		}
	}
	return instr, nil
}

func (c *Checker) lowerFor(node *nodes.ForExpression, proto *ScopePrototype) (*ForInstruction, error) {
	collection, err := c.lowerValueOf(node.Collection, proto)
	if err != nil {
		return nil, err
	}
	bodyProto := NewScopePrototype(proto)
	bodyProto.Declare(node.Element)
	instructions, err := c.lowerInstructions(node.Body, bodyProto)
	if err != nil {
		return nil, err
	}
	return &ForInstruction{
		Element:    node.Element,
		Collection: collection,
		Body:       &Block{Proto: bodyProto, Instructions: instructions},
		Node:       node,
	}, nil
}
