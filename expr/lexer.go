package expr

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Lexer tokenizes expression strings
type Lexer struct {
	input string
	pos   int // offset of the next rune
	start int // offset of the current rune
	ch    rune
}

// NewLexer creates a new lexer
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// readChar reads the next character
func (l *Lexer) readChar() {
	if l.pos >= len(l.input) {
		l.start = len(l.input)
		l.pos = len(l.input)
		l.ch = 0
		return
	}
	l.start = l.pos
	r, width := utf8.DecodeRuneInString(l.input[l.pos:])
	l.ch = r
	l.pos += width
}

// peekChar looks at the next character without advancing
func (l *Lexer) peekChar() rune {
	if l.pos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	return r
}

// skipWhitespace skips whitespace characters
func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

// readString reads a quoted string. The bool result is false when the
// closing quote is missing.
func (l *Lexer) readString(quote rune) (string, bool) {
	var result strings.Builder
	l.readChar() // skip opening quote

	for l.ch != quote && l.ch != 0 {
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case 'n':
				result.WriteRune('\n')
			case 't':
				result.WriteRune('\t')
			case '\\':
				result.WriteRune('\\')
			case quote:
				result.WriteRune(quote)
			case 0:
				return result.String(), false
			default:
				result.WriteRune(l.ch)
			}
		} else {
			result.WriteRune(l.ch)
		}
		l.readChar()
	}

	if l.ch != quote {
		return result.String(), false
	}
	l.readChar() // skip closing quote
	return result.String(), true
}

// readNumber reads an integer or decimal number with an optional exponent
func (l *Lexer) readNumber() string {
	begin := l.start
	for unicode.IsDigit(l.ch) || l.ch == '.' {
		l.readChar()
	}
	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		if unicode.IsDigit(next) || next == '-' || next == '+' {
			l.readChar()
			if l.ch == '-' || l.ch == '+' {
				l.readChar()
			}
			for unicode.IsDigit(l.ch) {
				l.readChar()
			}
		}
	}
	return l.input[begin:l.start]
}

func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.'
}

// readIdentifier reads an identifier or keyword
func (l *Lexer) readIdentifier() string {
	begin := l.start
	for isIdentRune(l.ch) {
		l.readChar()
	}
	return l.input[begin:l.start]
}

// readColumn reads a column reference after the $ sigil. Both $name and
// ${any name} forms are accepted.
func (l *Lexer) readColumn() (string, bool) {
	l.readChar() // skip $
	if l.ch == '{' {
		l.readChar()
		begin := l.start
		for l.ch != '}' && l.ch != 0 {
			l.readChar()
		}
		if l.ch != '}' {
			return "", false
		}
		name := l.input[begin:l.start]
		l.readChar()
		return name, name != ""
	}
	if !unicode.IsLetter(l.ch) && l.ch != '_' {
		return "", false
	}
	return l.readIdentifier(), true
}

// NextToken returns the next token
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	pos := l.start
	var tok Token

	switch l.ch {
	case 0:
		tok = Token{Type: TokenEOF}
	case '$':
		name, ok := l.readColumn()
		if !ok {
			tok = Token{Type: TokenError, Value: "$"}
		} else {
			tok = Token{Type: TokenColumn, Value: name}
		}
	case '=':
		if l.peekChar() == '=' {
			l.readChar()
		}
		tok = Token{Type: TokenEqual, Value: "=="}
		l.readChar()
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			tok = Token{Type: TokenNotEqual, Value: "!="}
		} else {
			tok = Token{Type: TokenNot, Value: "!"}
		}
		l.readChar()
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			tok = Token{Type: TokenLessEqual, Value: "<="}
		} else {
			tok = Token{Type: TokenLess, Value: "<"}
		}
		l.readChar()
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok = Token{Type: TokenGreaterEqual, Value: ">="}
		} else {
			tok = Token{Type: TokenGreater, Value: ">"}
		}
		l.readChar()
	case '&':
		if l.peekChar() == '&' {
			l.readChar()
		}
		tok = Token{Type: TokenAnd, Value: "&"}
		l.readChar()
	case '|':
		if l.peekChar() == '|' {
			l.readChar()
		}
		tok = Token{Type: TokenOr, Value: "|"}
		l.readChar()
	case '*':
		if l.peekChar() == '*' {
			l.readChar()
			tok = Token{Type: TokenPower, Value: "**"}
		} else {
			tok = Token{Type: TokenStar, Value: "*"}
		}
		l.readChar()
	case '+':
		tok = Token{Type: TokenPlus, Value: "+"}
		l.readChar()
	case '-':
		tok = Token{Type: TokenMinus, Value: "-"}
		l.readChar()
	case '/':
		tok = Token{Type: TokenSlash, Value: "/"}
		l.readChar()
	case '%':
		tok = Token{Type: TokenPercent, Value: "%"}
		l.readChar()
	case '\'', '"':
		value, ok := l.readString(l.ch)
		if !ok {
			tok = Token{Type: TokenError, Value: "unterminated string"}
		} else {
			tok = Token{Type: TokenString, Value: value}
		}
	case ',':
		tok = Token{Type: TokenComma, Value: ","}
		l.readChar()
	case '(':
		tok = Token{Type: TokenLeftParen, Value: "("}
		l.readChar()
	case ')':
		tok = Token{Type: TokenRightParen, Value: ")"}
		l.readChar()
	case '[':
		tok = Token{Type: TokenLeftBracket, Value: "["}
		l.readChar()
	case ']':
		tok = Token{Type: TokenRightBracket, Value: "]"}
		l.readChar()
	default:
		if unicode.IsDigit(l.ch) || (l.ch == '.' && unicode.IsDigit(l.peekChar())) {
			tok = Token{Type: TokenNumber, Value: l.readNumber()}
		} else if unicode.IsLetter(l.ch) || l.ch == '_' {
			value := l.readIdentifier()
			tok = Token{Type: identifierType(value), Value: value}
		} else {
			tok = Token{Type: TokenError, Value: string(l.ch)}
			l.readChar()
		}
	}

	tok.Pos = pos
	return tok
}

var keywords = map[string]TokenType{
	"and":   TokenAnd,
	"or":    TokenOr,
	"not":   TokenNot,
	"in":    TokenIn,
	"true":  TokenBool,
	"false": TokenBool,
	"null":  TokenNull,
	"na":    TokenNull,
	"nan":   TokenNull,
}

// identifierType determines if an identifier is a keyword
func identifierType(ident string) TokenType {
	if tokType, ok := keywords[strings.ToLower(ident)]; ok {
		return tokType
	}
	return TokenIdent
}

// Tokenize returns all tokens from the input
func Tokenize(input string) []Token {
	lexer := NewLexer(input)
	var tokens []Token

	for {
		tok := lexer.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF || tok.Type == TokenError {
			break
		}
	}

	return tokens
}
