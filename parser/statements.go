package parser

import (
	"fmt"

	"github.com/deicod/htmldsl/lexer"
	"github.com/deicod/htmldsl/nodes"
)

// ParseIf parses `:if ( [!] condition ) > ... </:if>`; the current token is
// the :if keyword.
func (p *Parser) ParseIf(open lexer.Token) (nodes.Instruction, error) {
	if _, err := p.advanceExpect(lexer.TokenLeftParen); err != nil {
		return nil, err
	}

	node := &nodes.IfExpression{}
	node.SetPosition(position(open))

	if p.advance().Type == lexer.TokenNot {
		node.Negated = true
		p.advance()
	}

	condition, err := p.ParseCondition()
	if err != nil {
		return nil, err
	}
	node.Condition = condition

	if _, err := p.expect(lexer.TokenRightParen); err != nil {
		return nil, err
	}
	if _, err := p.advanceExpect(lexer.TokenGreater); err != nil {
		return nil, err
	}

	p.pushTag(":if")
	defer p.popTag()

	body, err := p.ParseInstructionsUntilTagClose()
	if err != nil {
		return nil, err
	}
	node.Body = body

	if err := p.expectClosing(lexer.TokenIf); err != nil {
		return nil, err
	}
	return node, nil
}

// ParseElse parses `:else > ... </:else>`; the current token is the :else
// keyword. Pairing with the preceding if happens during semantic analysis.
func (p *Parser) ParseElse(open lexer.Token) (nodes.Instruction, error) {
	if _, err := p.advanceExpect(lexer.TokenGreater); err != nil {
		return nil, err
	}

	node := &nodes.ElseExpression{}
	node.SetPosition(position(open))

	p.pushTag(":else")
	defer p.popTag()

	body, err := p.ParseInstructionsUntilTagClose()
	if err != nil {
		return nil, err
	}
	node.Body = body

	if err := p.expectClosing(lexer.TokenElse); err != nil {
		return nil, err
	}
	return node, nil
}

// ParseFor parses `:for ( element in path ) > ... </:for>`; the current token
// is the :for keyword.
func (p *Parser) ParseFor(open lexer.Token) (nodes.Instruction, error) {
	if _, err := p.advanceExpect(lexer.TokenLeftParen); err != nil {
		return nil, err
	}
	element, err := p.advanceExpect(lexer.TokenIdentifier)
	if err != nil {
		return nil, err
	}
	if _, err := p.advanceExpect(lexer.TokenIn); err != nil {
		return nil, err
	}
	if _, err := p.advanceExpect(lexer.TokenIdentifier); err != nil {
		return nil, err
	}
	collection, err := p.ParseValueOf()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenRightParen); err != nil {
		return nil, err
	}
	if _, err := p.advanceExpect(lexer.TokenGreater); err != nil {
		return nil, err
	}

	node := &nodes.ForExpression{Element: element.Value, Collection: collection}
	node.SetPosition(position(open))

	p.pushTag(":for")
	defer p.popTag()

	body, err := p.ParseInstructionsUntilTagClose()
	if err != nil {
		return nil, err
	}
	node.Body = body

	if err := p.expectClosing(lexer.TokenFor); err != nil {
		return nil, err
	}
	return node, nil
}

// ParseHtmlTag parses an element with its attributes, either inline
// (`/>`) or with a body and a matching closing tag. The current token is the
// tag name.
func (p *Parser) ParseHtmlTag(open lexer.Token) (nodes.Instruction, error) {
	node := &nodes.HtmlTag{Name: p.current().Value, Attributes: []*nodes.Attribute{}}
	node.SetPosition(position(open))

	p.advance()
	for p.current().Type == lexer.TokenIdentifier {
		name := p.current()
		attr := &nodes.Attribute{Name: name.Value}
		attr.SetPosition(position(name))

		if p.advance().Type == lexer.TokenAssign {
			if _, err := p.advanceExpect(lexer.TokenQuote); err != nil {
				return nil, err
			}
			value, err := p.ParseString()
			if err != nil {
				return nil, err
			}
			attr.Value = value
			p.advance()
		}
		node.Attributes = append(node.Attributes, attr)
	}

	token, err := p.expect(lexer.TokenGreater, lexer.TokenInlineClose)
	if err != nil {
		return nil, err
	}
	if token.Type == lexer.TokenInlineClose {
		node.Inline = true
		return node, nil
	}

	p.pushTag(node.Name)
	defer p.popTag()

	body, err := p.ParseInstructionsUntilTagClose()
	if err != nil {
		return nil, err
	}
	node.Body = body

	closing, err := p.advanceExpect(lexer.TokenIdentifier)
	if err != nil {
		return nil, err
	}
	if closing.Value != node.Name {
		return nil, p.Fail(fmt.Sprintf("closing tag %q does not match opening tag %q", closing.Value, node.Name), closing)
	}
	if _, err := p.advanceExpect(lexer.TokenGreater); err != nil {
		return nil, err
	}
	return node, nil
}
