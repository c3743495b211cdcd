package parser

import (
	"strconv"

	"github.com/deicod/htmldsl/lexer"
	"github.com/deicod/htmldsl/nodes"
)

var comparisonOperators = map[lexer.TokenType]nodes.Operator{
	lexer.TokenEqual:        nodes.OpEqual,
	lexer.TokenNotEqual:     nodes.OpNotEqual,
	lexer.TokenLess:         nodes.OpLess,
	lexer.TokenLessEqual:    nodes.OpLessEqual,
	lexer.TokenGreater:      nodes.OpGreater,
	lexer.TokenGreaterEqual: nodes.OpGreaterEqual,
}

// ParseValueOf parses `name[index].next...`. The current token must be the
// identifier; on return the current token is the one after the path.
func (p *Parser) ParseValueOf() (*nodes.ValueOf, error) {
	name, err := p.expect(lexer.TokenIdentifier)
	if err != nil {
		return nil, err
	}
	node := &nodes.ValueOf{Name: name.Value}
	node.SetPosition(position(name))

	if p.advance().Type == lexer.TokenLeftBracket {
		index, err := p.advanceExpect(lexer.TokenNumber)
		if err != nil {
			return nil, err
		}
		n, err := strconv.Atoi(index.Value)
		if err != nil {
			return nil, p.Fail("invalid index "+index.Value, index)
		}
		if _, err := p.advanceExpect(lexer.TokenRightBracket); err != nil {
			return nil, err
		}
		node.HasIndex = true
		node.Index = n
		p.advance()
	}

	if p.current().Type == lexer.TokenDot {
		if _, err := p.advanceExpect(lexer.TokenIdentifier); err != nil {
			return nil, err
		}
		next, err := p.ParseValueOf()
		if err != nil {
			return nil, err
		}
		node.Next = next
	}
	return node, nil
}

// ParseNumber parses an integer or `digits.digits`. On return the current
// token is the one after the number.
func (p *Parser) ParseNumber() (*nodes.NumericValue, error) {
	first, err := p.expect(lexer.TokenNumber)
	if err != nil {
		return nil, err
	}
	text := first.Value
	if p.advance().Type == lexer.TokenDot {
		fraction, err := p.advanceExpect(lexer.TokenNumber)
		if err != nil {
			return nil, err
		}
		text += "." + fraction.Value
		p.advance()
	}

	node, err := nodes.NewNumericValue(text, first.Line, first.Column)
	if err != nil {
		return nil, p.Fail("invalid number "+text, first)
	}
	return node, nil
}

// ParseString parses the contents of a quoted string with `{path}`
// interpolations. The current token must be the opening quote; on return the
// current token is the closing quote.
func (p *Parser) ParseString() (*nodes.StringValue, error) {
	open, err := p.expect(lexer.TokenQuote)
	if err != nil {
		return nil, err
	}
	node := &nodes.StringValue{Components: []nodes.Node{}}
	node.SetPosition(position(open))

	for {
		if p.scanner.TryReadString() {
			text := p.current()
			node.Components = append(node.Components, nodes.NewLiteral(text.Value, text.Line, text.Column))
		}

		token := p.advance()
		switch token.Type {
		case lexer.TokenQuote:
			return node, nil
		case lexer.TokenLeftCurly:
			if _, err := p.advanceExpect(lexer.TokenIdentifier); err != nil {
				return nil, err
			}
			value, err := p.ParseValueOf()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.TokenRightCurly); err != nil {
				return nil, err
			}
			node.Components = append(node.Components, value)
		default:
			return nil, p.unexpected(token, lexer.TokenQuote, lexer.TokenLeftCurly)
		}
	}
}

// ParseOperand parses a quoted string, a number, or a value path. On return
// the current token is the one after the operand.
func (p *Parser) ParseOperand() (nodes.Value, error) {
	switch p.current().Type {
	case lexer.TokenQuote:
		value, err := p.ParseString()
		if err != nil {
			return nil, err
		}
		p.advance()
		return value, nil
	case lexer.TokenNumber:
		return p.ParseNumber()
	case lexer.TokenIdentifier:
		return p.ParseValueOf()
	default:
		return nil, p.unexpected(p.current(), lexer.TokenQuote, lexer.TokenNumber, lexer.TokenIdentifier)
	}
}

// ParseCondition parses a bare value path or `path op operand`.
func (p *Parser) ParseCondition() (nodes.Condition, error) {
	left, err := p.ParseValueOf()
	if err != nil {
		return nil, err
	}

	op, ok := comparisonOperators[p.current().Type]
	if !ok {
		cond := &nodes.SimpleCondition{Value: left}
		cond.SetPosition(left.GetPosition())
		return cond, nil
	}

	p.advance()
	right, err := p.ParseOperand()
	if err != nil {
		return nil, err
	}
	cond := &nodes.ConditionWithValue{Left: left, Operator: op, Right: right}
	cond.SetPosition(left.GetPosition())
	return cond, nil
}

// ParseInterpolation parses `{path}` or `{name(args)}`. The current token
// must be '{'; on return it is the closing '}' so text lexing can resume.
func (p *Parser) ParseInterpolation() (nodes.Instruction, error) {
	if _, err := p.advanceExpect(lexer.TokenIdentifier); err != nil {
		return nil, err
	}
	value, err := p.ParseValueOf()
	if err != nil {
		return nil, err
	}

	if p.current().Type != lexer.TokenLeftParen || !value.IsBare() {
		if _, err := p.expect(lexer.TokenRightCurly); err != nil {
			return nil, err
		}
		return value, nil
	}

	call := &nodes.FunctionCall{Name: value.Name, Args: []nodes.Value{}}
	call.SetPosition(value.GetPosition())

	if p.advance().Type != lexer.TokenRightParen {
		for {
			arg, err := p.ParseOperand()
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, arg)
			if p.current().Type != lexer.TokenComma {
				break
			}
			p.advance()
		}
		if _, err := p.expect(lexer.TokenRightParen); err != nil {
			return nil, err
		}
	}

	if _, err := p.advanceExpect(lexer.TokenRightCurly); err != nil {
		return nil, err
	}
	return call, nil
}
