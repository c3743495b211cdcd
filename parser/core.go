package parser

import (
	"github.com/deicod/htmldsl/lexer"
	"github.com/deicod/htmldsl/nodes"
)

// Parse parses the whole template into a Program
func (p *Parser) Parse() (*nodes.Program, error) {
	program := &nodes.Program{}
	program.SetPosition(nodes.NewPosition(1, 1))

	for p.advance().Type != lexer.TokenEOF {
		fn, err := p.ParseFunction()
		if err != nil {
			return nil, err
		}
		program.Functions = append(program.Functions, fn)
	}
	return program, nil
}

// ParseFunction parses `<:def name(params)> ... </:def>`. The current token
// must be the opening '<'.
func (p *Parser) ParseFunction() (*nodes.Function, error) {
	open, err := p.expect(lexer.TokenLess)
	if err != nil {
		return nil, err
	}
	if _, err := p.advanceExpect(lexer.TokenDef); err != nil {
		return nil, err
	}
	name, err := p.advanceExpect(lexer.TokenIdentifier)
	if err != nil {
		return nil, err
	}
	if _, err := p.advanceExpect(lexer.TokenLeftParen); err != nil {
		return nil, err
	}

	fn := &nodes.Function{Name: name.Value, Params: []string{}}
	fn.SetPosition(position(open))

	if p.advance().Type == lexer.TokenIdentifier {
		for {
			fn.Params = append(fn.Params, p.current().Value)
			if p.advance().Type != lexer.TokenComma {
				break
			}
			if _, err := p.advanceExpect(lexer.TokenIdentifier); err != nil {
				return nil, err
			}
		}
	}
	if _, err := p.expect(lexer.TokenRightParen); err != nil {
		return nil, err
	}
	if _, err := p.advanceExpect(lexer.TokenGreater); err != nil {
		return nil, err
	}

	p.pushTag(":def " + fn.Name)
	defer p.popTag()

	body, err := p.ParseInstructionsUntilTagClose()
	if err != nil {
		return nil, err
	}
	fn.Body = body

	if err := p.expectClosing(lexer.TokenDef); err != nil {
		return nil, err
	}
	return fn, nil
}

// ParseInstructionsUntilTagClose alternates literal text with statements
// until a `</` token, which is left as the current token.
func (p *Parser) ParseInstructionsUntilTagClose() ([]nodes.Instruction, error) {
	body := []nodes.Instruction{}
	for {
		if p.scanner.TryReadText() {
			text := p.current()
			body = append(body, nodes.NewLiteral(text.Value, text.Line, text.Column))
			continue
		}

		token := p.advance()
		switch token.Type {
		case lexer.TokenTagClose:
			return body, nil
		case lexer.TokenLess:
			instr, err := p.ParseStatement()
			if err != nil {
				return nil, err
			}
			body = append(body, instr)
		case lexer.TokenLeftCurly:
			instr, err := p.ParseInterpolation()
			if err != nil {
				return nil, err
			}
			body = append(body, instr)
		default:
			return nil, p.unexpected(token, lexer.TokenTagClose, lexer.TokenLess, lexer.TokenLeftCurly)
		}
	}
}

// ParseStatement parses a tag-shaped statement. The current token must be
// the opening '<'.
func (p *Parser) ParseStatement() (nodes.Instruction, error) {
	open := p.current()
	token := p.advance()
	switch token.Type {
	case lexer.TokenIf:
		return p.ParseIf(open)
	case lexer.TokenElse:
		return p.ParseElse(open)
	case lexer.TokenFor:
		return p.ParseFor(open)
	case lexer.TokenIdentifier:
		return p.ParseHtmlTag(open)
	default:
		return nil, p.unexpected(token, lexer.TokenIf, lexer.TokenElse, lexer.TokenFor, lexer.TokenIdentifier)
	}
}

// expectClosing matches the `keyword >` part of a closing tag whose `</` is
// the current token.
func (p *Parser) expectClosing(keyword lexer.TokenType) error {
	if _, err := p.advanceExpect(keyword); err != nil {
		return err
	}
	_, err := p.advanceExpect(lexer.TokenGreater)
	return err
}
