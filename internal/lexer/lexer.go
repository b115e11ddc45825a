package lexer

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/aleksaelezovic/ligature/pkg/rdf"
)

// Mode selects the token set.
type Mode int

const (
	NTriples Mode = iota
	Turtle
)

// Lexer converts input text into tokens. After EOF every call to Next
// returns EOF again.
type Lexer struct {
	input  string
	pos    int
	line   int
	col    int
	mode   Mode
	last   Kind
	length int
}

// New creates a lexer over input.
func New(input string, mode Mode) *Lexer {
	return &Lexer{
		input:  input,
		length: len(input),
		line:   1,
		col:    1,
		mode:   mode,
		last:   -1,
	}
}

// Next returns the next token.
func (l *Lexer) Next() (Token, error) {
	tok, err := l.scan()
	if err == nil {
		l.last = tok.Kind
	}
	return tok, err
}

func (l *Lexer) position() rdf.Position {
	return rdf.Position{Offset: l.pos, Line: l.line, Column: l.col}
}

// advance moves forward n bytes keeping line/column in sync.
func (l *Lexer) advance(n int) {
	for i := 0; i < n && l.pos < l.length; i++ {
		ch := l.input[l.pos]
		l.pos++
		switch {
		case ch == '\n':
			l.line++
			l.col = 1
		case ch&0xC0 != 0x80:
			l.col++
		}
	}
}

func (l *Lexer) peek(offset int) byte {
	if l.pos+offset >= l.length {
		return 0
	}
	return l.input[l.pos+offset]
}

func (l *Lexer) errorf(pos rdf.Position, ch rune, msg string) *rdf.LexError {
	return &rdf.LexError{Pos: pos, Char: ch, Msg: msg}
}

// skipWhitespaceAndComments skips whitespace and comments
func (l *Lexer) skipWhitespaceAndComments() {
	for l.pos < l.length {
		ch := l.input[l.pos]
		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' {
			l.advance(1)
			continue
		}
		if ch == '#' {
			for l.pos < l.length && l.input[l.pos] != '\n' {
				l.advance(1)
			}
			continue
		}
		break
	}
}

func (l *Lexer) scan() (Token, error) {
	l.skipWhitespaceAndComments()
	start := l.position()
	if l.pos >= l.length {
		return Token{Kind: EOF, Pos: start}, nil
	}

	ch := l.input[l.pos]
	switch {
	case ch == '<':
		return l.scanIRI(start)
	case ch == '_' && l.peek(1) == ':':
		return l.scanBlankNodeLabel(start), nil
	case ch == '"':
		return l.scanString(start, '"')
	case ch == '\'' && l.mode == Turtle:
		return l.scanString(start, '\'')
	case ch == '@':
		return l.scanAt(start)
	case ch == '^':
		if l.peek(1) != '^' {
			return Token{}, l.errorf(start, '^', "expected '^^'")
		}
		l.advance(2)
		return Token{Kind: TypeTag, Text: "^^", Pos: start}, nil
	case ch == '.':
		if l.mode == Turtle && isDigit(l.peek(1)) {
			return l.scanNumber(start)
		}
		l.advance(1)
		return Token{Kind: Period, Text: ".", Pos: start}, nil
	case ch == ';':
		l.advance(1)
		return Token{Kind: Semicolon, Text: ";", Pos: start}, nil
	case ch == ',':
		l.advance(1)
		return Token{Kind: Comma, Text: ",", Pos: start}, nil
	}

	if l.mode == Turtle {
		switch {
		case ch == '[':
			l.advance(1)
			return Token{Kind: LBracket, Text: "[", Pos: start}, nil
		case ch == ']':
			l.advance(1)
			return Token{Kind: RBracket, Text: "]", Pos: start}, nil
		case ch == '(':
			l.advance(1)
			return Token{Kind: LParen, Text: "(", Pos: start}, nil
		case ch == ')':
			l.advance(1)
			return Token{Kind: RParen, Text: ")", Pos: start}, nil
		case isDigit(ch) || ch == '+' || ch == '-':
			return l.scanNumber(start)
		case ch == ':' || ch >= utf8.RuneSelf || isLetter(ch):
			return l.scanName(start)
		}
	}

	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	return Token{}, l.errorf(start, r, "unexpected character")
}

// scanIRI scans <...>, resolving \u and \U escapes.
func (l *Lexer) scanIRI(start rdf.Position) (Token, error) {
	l.advance(1) // skip '<'

	var result strings.Builder
	for {
		if l.pos >= l.length {
			return Token{}, l.errorf(start, 0, "unterminated IRI, missing '>'")
		}
		ch := l.input[l.pos]
		if ch == '>' {
			l.advance(1)
			break
		}
		if ch == '\\' {
			r, err := l.scanUnicodeEscape()
			if err != nil {
				return Token{}, err
			}
			result.WriteRune(r)
			continue
		}
		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '<' || ch == '"' {
			if ch == '\n' || ch == '\r' {
				return Token{}, l.errorf(start, 0, "unterminated IRI, missing '>'")
			}
			return Token{}, l.errorf(l.position(), rune(ch), "invalid character in IRI")
		}
		result.WriteByte(ch)
		l.advance(1)
	}

	iri := result.String()
	kind := IRIRef
	if l.mode == Turtle && !strings.Contains(iri, ":") {
		kind = RelativeIRI
	}
	return Token{Kind: kind, Text: iri, Pos: start}, nil
}

// scanUnicodeEscape reads \uXXXX or \UXXXXXXXX at the current position.
func (l *Lexer) scanUnicodeEscape() (rune, error) {
	at := l.position()
	var digits int
	switch l.peek(1) {
	case 'u':
		digits = 4
	case 'U':
		digits = 8
	default:
		return 0, l.errorf(at, rune(l.peek(1)), "invalid escape sequence")
	}
	if l.pos+2+digits > l.length {
		return 0, l.errorf(at, 0, "incomplete unicode escape")
	}
	hex := l.input[l.pos+2 : l.pos+2+digits]
	code, err := strconv.ParseUint(hex, 16, 32)
	if err != nil || code > utf8.MaxRune || (code >= 0xD800 && code <= 0xDFFF) {
		return 0, l.errorf(at, 0, "invalid unicode escape \\"+string(l.peek(1))+hex)
	}
	l.advance(2 + digits)
	return rune(code), nil
}

// scanBlankNodeLabel scans _:label. The label may be empty; the parser
// rejects that case.
func (l *Lexer) scanBlankNodeLabel(start rdf.Position) Token {
	begin := l.pos
	l.advance(2) // skip '_:'
	end := l.pos
	for l.pos < l.length {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if !isNameRune(r) && r != '.' {
			break
		}
		l.advance(size)
		if r != '.' {
			end = l.pos
		}
	}
	// labels never end with '.'; give trailing dots back
	l.rewind(end)
	return Token{Kind: BlankNodeLabel, Text: l.input[begin:end], Pos: start}
}

// rewind moves back to offset within the current line.
func (l *Lexer) rewind(offset int) {
	for l.pos > offset {
		l.pos--
		if l.input[l.pos]&0xC0 != 0x80 {
			l.col--
		}
	}
}

// scanString scans a quoted string. In Turtle mode a tripled quote starts a
// long string that may span lines.
func (l *Lexer) scanString(start rdf.Position, quote byte) (Token, error) {
	long := l.mode == Turtle && l.peek(1) == quote && l.peek(2) == quote
	kind := StringLiteral
	if long {
		kind = LongStringLiteral
		l.advance(3)
	} else {
		l.advance(1)
	}

	var value strings.Builder
	for {
		if l.pos >= l.length {
			return Token{}, l.errorf(start, 0, "unterminated string literal")
		}
		ch := l.input[l.pos]
		if long {
			if ch == quote && l.peek(1) == quote && l.peek(2) == quote {
				// a closing run longer than three belongs to the value
				for l.peek(3) == quote {
					value.WriteByte(quote)
					l.advance(1)
				}
				l.advance(3)
				break
			}
		} else {
			if ch == quote {
				l.advance(1)
				break
			}
			if ch == '\n' || ch == '\r' {
				return Token{}, l.errorf(start, 0, "unterminated string literal")
			}
		}
		if ch == '\\' {
			if l.pos+1 >= l.length {
				return Token{}, l.errorf(start, 0, "unterminated string literal")
			}
			next := l.input[l.pos+1]
			if next == 'u' || next == 'U' {
				r, err := l.scanUnicodeEscape()
				if err != nil {
					return Token{}, err
				}
				value.WriteRune(r)
				continue
			}
			switch next {
			case 't':
				value.WriteByte('\t')
			case 'b':
				value.WriteByte('\b')
			case 'n':
				value.WriteByte('\n')
			case 'r':
				value.WriteByte('\r')
			case 'f':
				value.WriteByte('\f')
			default:
				// any other escaped character is taken verbatim
				value.WriteByte(next)
			}
			l.advance(2)
			continue
		}
		value.WriteByte(ch)
		l.advance(1)
	}
	return Token{Kind: kind, Text: value.String(), Pos: start}, nil
}

// scanAt scans a language tag or, in Turtle, an @prefix/@base directive.
func (l *Lexer) scanAt(start rdf.Position) (Token, error) {
	l.advance(1) // skip '@'
	begin := l.pos
	for l.pos < l.length {
		ch := l.input[l.pos]
		if !isLetter(ch) && !isDigit(ch) && ch != '-' {
			break
		}
		l.advance(1)
	}
	word := l.input[begin:l.pos]
	if word == "" {
		r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
		return Token{}, l.errorf(start, r, "expected language tag after '@'")
	}
	afterLiteral := l.last == StringLiteral || l.last == LongStringLiteral
	if l.mode == Turtle && !afterLiteral {
		switch word {
		case "prefix":
			return Token{Kind: Prefix, Text: "@prefix", Pos: start}, nil
		case "base":
			return Token{Kind: Base, Text: "@base", Pos: start}, nil
		}
	}
	return Token{Kind: LangTag, Text: word, Pos: start}, nil
}

// scanNumber scans INTEGER, DECIMAL or DOUBLE.
func (l *Lexer) scanNumber(start rdf.Position) (Token, error) {
	begin := l.pos
	if ch := l.peek(0); ch == '+' || ch == '-' {
		l.advance(1)
	}
	intDigits := l.skipDigits()

	kind := Integer
	fracDigits := 0
	if l.peek(0) == '.' && isDigit(l.peek(1)) {
		kind = Decimal
		l.advance(1)
		fracDigits = l.skipDigits()
	} else if intDigits > 0 && l.peek(0) == '.' && l.exponentAt(1) {
		// 1.e5: the period belongs to the double
		l.advance(1)
	}
	if intDigits == 0 && fracDigits == 0 {
		r, _ := utf8.DecodeRuneInString(l.input[begin:])
		l.rewind(begin)
		return Token{}, l.errorf(start, r, "expected digits in number")
	}
	if ch := l.peek(0); ch == 'e' || ch == 'E' {
		mark := l.pos
		l.advance(1)
		if ch := l.peek(0); ch == '+' || ch == '-' {
			l.advance(1)
		}
		if l.skipDigits() == 0 {
			l.rewind(mark)
		} else {
			kind = Double
		}
	}
	return Token{Kind: kind, Text: l.input[begin:l.pos], Pos: start}, nil
}

// exponentAt reports whether an exponent with digits starts at offset.
func (l *Lexer) exponentAt(offset int) bool {
	if ch := l.peek(offset); ch != 'e' && ch != 'E' {
		return false
	}
	offset++
	if ch := l.peek(offset); ch == '+' || ch == '-' {
		offset++
	}
	return isDigit(l.peek(offset))
}

func (l *Lexer) skipDigits() int {
	n := 0
	for isDigit(l.peek(0)) {
		l.advance(1)
		n++
	}
	return n
}

// scanName scans prefixed names and the bare words a, true, false,
// PREFIX and BASE.
func (l *Lexer) scanName(start rdf.Position) (Token, error) {
	begin := l.pos
	end := l.pos
	for l.pos < l.length {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if r == '\\' && l.pos+1 < l.length {
			// PN_LOCAL_ESC
			l.advance(2)
			end = l.pos
			continue
		}
		if !isNameRune(r) && r != ':' && r != '.' && r != '%' {
			break
		}
		l.advance(size)
		if r != '.' {
			end = l.pos
		}
	}
	l.rewind(end)
	word := l.input[begin:end]

	if strings.Contains(word, ":") {
		return Token{Kind: PName, Text: unescapeLocal(word), Pos: start}, nil
	}
	switch {
	case word == "a":
		return Token{Kind: A, Text: word, Pos: start}, nil
	case word == "true" || word == "false":
		return Token{Kind: Boolean, Text: word, Pos: start}, nil
	case strings.EqualFold(word, "PREFIX"):
		return Token{Kind: Prefix, Text: word, Pos: start, SPARQL: true}, nil
	case strings.EqualFold(word, "BASE"):
		return Token{Kind: Base, Text: word, Pos: start, SPARQL: true}, nil
	}
	r, _ := utf8.DecodeRuneInString(word)
	return Token{}, l.errorf(start, r, "unexpected bare word "+strconv.Quote(word))
}

// unescapeLocal drops the backslash of PN_LOCAL_ESC sequences.
func unescapeLocal(name string) string {
	if !strings.Contains(name, `\`) {
		return name
	}
	var b strings.Builder
	for i := 0; i < len(name); i++ {
		if name[i] == '\\' && i+1 < len(name) {
			i++
		}
		b.WriteByte(name[i])
	}
	return b.String()
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

// isNameRune reports whether r may appear inside a blank node label or a
// prefixed name.
func isNameRune(r rune) bool {
	if r < utf8.RuneSelf {
		ch := byte(r)
		return isLetter(ch) || isDigit(ch) || ch == '_' || ch == '-'
	}
	return r != utf8.RuneError && r != 0x00D7 && r != 0x00F7
}
