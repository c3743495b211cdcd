package lexer

import (
	"fmt"
	"strings"
	"unicode"
)

// LexerError represents a lexing error
type LexerError struct {
	Message string
	Line    int
	Column  int
}

func (e LexerError) Error() string {
	return fmt.Sprintf("%s at line %d, column %d", e.Message, e.Line, e.Column)
}

// keywordNode is one state of the keyword prefix automaton.
type keywordNode struct {
	next     map[rune]*keywordNode
	token    TokenType
	terminal bool
}

var keywords = map[string]TokenType{
	":def":  TokenDef,
	":for":  TokenFor,
	":if":   TokenIf,
	":else": TokenElse,
	"in":    TokenIn,
}

var keywordRoot = buildKeywordAutomaton(keywords)

func buildKeywordAutomaton(words map[string]TokenType) *keywordNode {
	root := &keywordNode{next: make(map[rune]*keywordNode)}
	for word, tt := range words {
		node := root
		for _, r := range word {
			child, ok := node.next[r]
			if !ok {
				child = &keywordNode{next: make(map[rune]*keywordNode)}
				node.next[r] = child
			}
			node = child
		}
		node.token = tt
		node.terminal = true
	}
	return root
}

var singlePunctuation = map[rune]TokenType{
	'<': TokenLess,
	'>': TokenGreater,
	'=': TokenAssign,
	'!': TokenNot,
	'"': TokenQuote,
	'(': TokenLeftParen,
	')': TokenRightParen,
	'[': TokenLeftBracket,
	']': TokenRightBracket,
	'{': TokenLeftCurly,
	'}': TokenRightCurly,
	'.': TokenDot,
	',': TokenComma,
}

// doublePunctuation maps a first character to the second characters that
// extend it into a two-character token.
var doublePunctuation = map[rune]map[rune]TokenType{
	'<': {'=': TokenLessEqual, '/': TokenTagClose},
	'>': {'=': TokenGreaterEqual},
	'=': {'=': TokenEqual},
	'!': {'=': TokenNotEqual},
	'/': {'>': TokenInlineClose},
}

// Scanner turns the characters of a Reader into tokens, one at a time.
type Scanner struct {
	reader *Reader
	token  Token
	err    *LexerError

	tracing bool
	trace   []Token
}

// NewScanner creates a scanner positioned before the first token.
func NewScanner(reader *Reader) *Scanner {
	return &Scanner{
		reader: reader,
		token:  Token{Type: TokenInvalid, Line: reader.Line(), Column: reader.Column()},
	}
}

// Token returns the current token.
func (s *Scanner) Token() Token {
	return s.token
}

// Err returns the error behind the last Invalid token, if any.
func (s *Scanner) Err() *LexerError {
	return s.err
}

// SetTracing makes the scanner record every token it produces.
func (s *Scanner) SetTracing(on bool) {
	s.tracing = on
}

// Trace returns the recorded tokens.
func (s *Scanner) Trace() *TokenStream {
	return NewTokenStream(append([]Token(nil), s.trace...))
}

// NextToken scans the next structural token and makes it current.
func (s *Scanner) NextToken() Token {
	s.skipWhitespace()
	r := s.reader
	line, column := r.Line(), r.Column()

	if r.Current() == EOF {
		if err := r.Err(); err != nil {
			return s.invalid(err.Error(), "", line, column)
		}
		return s.emit(Token{Type: TokenEOF, Line: line, Column: column})
	}

	for _, scan := range []func() (Token, bool){
		s.scanKeyword,
		s.scanPunctuation,
		s.scanNumber,
		s.scanIdentifier,
	} {
		tok, ok := scan()
		if !ok {
			continue
		}
		if tok.Type == TokenInvalid {
			return tok
		}
		tok.Line, tok.Column = line, column
		return s.emit(tok)
	}

	ch := r.Current()
	r.Advance()
	return s.invalid(fmt.Sprintf("unexpected character %q", ch), string(ch), line, column)
}

// TryReadText consumes literal text up to the next '<' or '{' and makes it
// the current token. Interior newlines are kept. Blanks and blank lines that
// only lay out tags are dropped: the leading run unless the text follows an
// interpolation, and a trailing run that crosses a line break before '<' or
// reaches the end of input. It returns false when no text was produced.
func (s *Scanner) TryReadText() bool {
	r := s.reader
	if s.token.Type != TokenRightCurly {
		for isBlank(r.Current()) || r.Current() == '\n' {
			r.Advance()
		}
	}
	line, column := r.Line(), r.Column()

	var text strings.Builder
	for {
		ch := r.Current()
		if ch == EOF || ch == '<' || ch == '{' {
			break
		}
		if ch == '\\' {
			r.Advance()
			if isTextEscape(r.Current()) {
				text.WriteRune(r.Current())
				r.Advance()
			} else {
				text.WriteRune('\\')
			}
			continue
		}
		text.WriteRune(ch)
		r.Advance()
	}

	value := text.String()
	trimmed := strings.TrimRight(value, " \t\r\n")
	switch r.Current() {
	case EOF:
		value = trimmed
	case '<':
		if trimmed == "" || strings.Contains(value[len(trimmed):], "\n") {
			value = trimmed
		}
	}
	if value == "" {
		return false
	}
	s.emit(Token{Type: TokenText, Value: value, Line: line, Column: column})
	return true
}

// TryReadString consumes the contents of a quoted string up to the closing
// '"' or the next '{' and makes it the current token. It returns false when
// no characters were produced.
func (s *Scanner) TryReadString() bool {
	r := s.reader
	line, column := r.Line(), r.Column()

	var text strings.Builder
	for {
		ch := r.Current()
		if ch == EOF || ch == '"' || ch == '{' {
			break
		}
		if ch == '\\' {
			r.Advance()
			if isStringEscape(r.Current()) {
				text.WriteRune(r.Current())
				r.Advance()
			} else {
				text.WriteRune('\\')
			}
			continue
		}
		text.WriteRune(ch)
		r.Advance()
	}

	if text.Len() == 0 {
		return false
	}
	s.emit(Token{Type: TokenString, Value: text.String(), Line: line, Column: column})
	return true
}

func (s *Scanner) skipWhitespace() {
	for {
		switch s.reader.Current() {
		case ' ', '\t', '\n', '\r':
			s.reader.Advance()
		default:
			return
		}
	}
}

// scanKeyword walks the keyword automaton. A keyword only matches when the
// character after it cannot continue an identifier; otherwise the consumed
// characters are rewound.
func (s *Scanner) scanKeyword() (Token, bool) {
	r := s.reader
	node := keywordRoot
	var lexeme strings.Builder
	consumed := 0
	for {
		child, ok := node.next[r.Current()]
		if !ok {
			break
		}
		lexeme.WriteRune(r.Current())
		r.Advance()
		consumed++
		node = child
	}

	if consumed > 0 && node.terminal && !isIdentifierPart(r.Current()) {
		return Token{Type: node.token, Value: lexeme.String()}, true
	}
	return s.rewind(consumed)
}

func (s *Scanner) scanPunctuation() (Token, bool) {
	r := s.reader
	first := r.Current()
	single, isSingle := singlePunctuation[first]
	double, isDouble := doublePunctuation[first]
	if !isSingle && !isDouble {
		return Token{}, false
	}

	r.Advance()
	if isDouble {
		if tt, ok := double[r.Current()]; ok {
			second := r.Current()
			r.Advance()
			return Token{Type: tt, Value: string([]rune{first, second})}, true
		}
	}
	if !isSingle {
		return s.rewind(1)
	}
	return Token{Type: single, Value: string(first)}, true
}

func (s *Scanner) scanNumber() (Token, bool) {
	r := s.reader
	var digits strings.Builder
	for unicode.IsDigit(r.Current()) {
		digits.WriteRune(r.Current())
		r.Advance()
	}
	if digits.Len() == 0 {
		return Token{}, false
	}

	switch r.Current() {
	case '.', ')', ']', ',', EOF:
		return Token{Type: TokenNumber, Value: digits.String()}, true
	}
	return s.rewind(len([]rune(digits.String())))
}

func (s *Scanner) scanIdentifier() (Token, bool) {
	r := s.reader
	if !isIdentifierStart(r.Current()) {
		return Token{}, false
	}
	var name strings.Builder
	for isIdentifierPart(r.Current()) {
		name.WriteRune(r.Current())
		r.Advance()
	}

	if isIdentifierTerminator(r.Current()) {
		return Token{Type: TokenIdentifier, Value: name.String()}, true
	}
	return s.rewind(len([]rune(name.String())))
}

// rewind undoes a failed speculative match. A replay buffer that is too
// short turns the failure into an Invalid token.
func (s *Scanner) rewind(n int) (Token, bool) {
	if err := s.reader.Rewind(n); err != nil {
		tok := s.invalid(err.Error(), "", s.reader.Line(), s.reader.Column())
		return tok, true
	}
	return Token{}, false
}

func (s *Scanner) invalid(msg, value string, line, column int) Token {
	s.err = &LexerError{Message: msg, Line: line, Column: column}
	return s.emit(Token{Type: TokenInvalid, Value: value, Line: line, Column: column})
}

func (s *Scanner) emit(tok Token) Token {
	s.token = tok
	if s.tracing {
		s.trace = append(s.trace, tok)
	}
	return tok
}

func isBlank(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r'
}

func isIdentifierStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentifierPart(r rune) bool {
	return r == '_' || r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isIdentifierTerminator(r rune) bool {
	switch r {
	case '.', '[', ' ', ')', '(', ',', '}', '\n', '\r', '>', '/', '=', EOF:
		return true
	}
	return false
}

func isTextEscape(r rune) bool {
	return r == '{' || r == '<' || r == '}' || r == '\\'
}

func isStringEscape(r rune) bool {
	return r == '"' || r == '\\' || r == '{'
}
