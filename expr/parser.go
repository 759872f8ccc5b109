package expr

import (
	"fmt"
	"strconv"
	"strings"
)

// Parser builds an expression tree from tokens
type Parser struct {
	tokens       []Token
	pos          int
	depthCounter *depthCounter
}

// NewParser creates a new parser
func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens, depthCounter: newDepthCounter()}
}

// Parse tokenizes and parses src into an expression tree
func Parse(src string) (Node, error) {
	if err := ValidateExpression(src); err != nil {
		return nil, err
	}
	if strings.TrimSpace(src) == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrSyntax)
	}

	tokens := Tokenize(src)
	if err := ValidateTokens(tokens); err != nil {
		return nil, err
	}
	last := tokens[len(tokens)-1]
	if last.Type == TokenError {
		return nil, fmt.Errorf("%w: %s at offset %d", ErrSyntax, last.Value, last.Pos)
	}

	p := NewParser(tokens)
	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.current().Type != TokenEOF {
		return nil, p.unexpected("end of expression")
	}
	return node, nil
}

func (p *Parser) current() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peek() Token {
	if p.pos+1 >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.pos+1]
}

func (p *Parser) advance() {
	p.pos++
}

func (p *Parser) expect(t TokenType) error {
	if p.current().Type != t {
		return p.unexpected(t.String())
	}
	p.advance()
	return nil
}

func (p *Parser) unexpected(want string) error {
	tok := p.current()
	got := tok.Type.String()
	if tok.Value != "" && tok.Type != TokenString {
		got = fmt.Sprintf("%q", tok.Value)
	}
	return fmt.Errorf("%w: expected %s, got %s at offset %d", ErrSyntax, want, got, tok.Pos)
}

// parseOr parses OR expressions (lowest precedence)
func (p *Parser) parseOr() (Node, error) {
	if err := p.depthCounter.Enter(); err != nil {
		return nil, err
	}
	defer p.depthCounter.Exit()

	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.current().Type == TokenOr {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Operator: TokenOr, Right: right}
	}

	return left, nil
}

// parseAnd parses AND expressions (higher precedence than OR)
func (p *Parser) parseAnd() (Node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}

	for p.current().Type == TokenAnd {
		p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Operator: TokenAnd, Right: right}
	}

	return left, nil
}

// parseNot parses logical negation
func (p *Parser) parseNot() (Node, error) {
	if p.current().Type == TokenNot {
		if err := p.depthCounter.Enter(); err != nil {
			return nil, err
		}
		defer p.depthCounter.Exit()

		p.advance()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Operator: TokenNot, Operand: operand}, nil
	}
	return p.parseComparison()
}

func isComparison(t TokenType) bool {
	switch t {
	case TokenEqual, TokenNotEqual, TokenLess, TokenLessEqual, TokenGreater, TokenGreaterEqual:
		return true
	}
	return false
}

// parseComparison parses comparison operators and IN / NOT IN
func (p *Parser) parseComparison() (Node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	op := p.current().Type
	switch {
	case isComparison(op):
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return &BinaryExpr{Left: left, Operator: op, Right: right}, nil
	case op == TokenIn:
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return &FunctionCall{Name: "isin", Args: []Node{left, right}}, nil
	case op == TokenNot && p.peek().Type == TokenIn:
		p.advance()
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return &FunctionCall{Name: "notin", Args: []Node{left, right}}, nil
	}

	return left, nil
}

// parseAdditive parses + and -
func (p *Parser) parseAdditive() (Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	for p.current().Type == TokenPlus || p.current().Type == TokenMinus {
		op := p.current().Type
		p.advance()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Operator: op, Right: right}
	}

	return left, nil
}

// parseTerm parses *, / and %
func (p *Parser) parseTerm() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		op := p.current().Type
		if op != TokenStar && op != TokenSlash && op != TokenPercent {
			return left, nil
		}
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Operator: op, Right: right}
	}
}

// parseUnary parses prefix minus
func (p *Parser) parseUnary() (Node, error) {
	if p.current().Type == TokenMinus || p.current().Type == TokenPlus {
		if err := p.depthCounter.Enter(); err != nil {
			return nil, err
		}
		defer p.depthCounter.Exit()

		op := p.current().Type
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if op == TokenPlus {
			return operand, nil
		}
		// Fold negative numeric literals so -3 stays a literal.
		if lit, ok := operand.(*Literal); ok {
			switch v := lit.Value.(type) {
			case int64:
				return &Literal{Value: -v}, nil
			case float64:
				return &Literal{Value: -v}, nil
			}
		}
		return &UnaryExpr{Operator: TokenMinus, Operand: operand}, nil
	}
	return p.parsePower()
}

// parsePower parses ** which is right associative
func (p *Parser) parsePower() (Node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.current().Type == TokenPower {
		p.advance()
		exponent, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &BinaryExpr{Left: base, Operator: TokenPower, Right: exponent}, nil
	}
	return base, nil
}

// parsePrimary parses literals, column references, calls, lists and
// parenthesized expressions
func (p *Parser) parsePrimary() (Node, error) {
	tok := p.current()

	switch tok.Type {
	case TokenNumber:
		p.advance()
		return parseNumber(tok)
	case TokenString:
		p.advance()
		return &Literal{Value: tok.Value}, nil
	case TokenBool:
		p.advance()
		return &Literal{Value: strings.EqualFold(tok.Value, "true")}, nil
	case TokenNull:
		p.advance()
		return &Literal{Value: nil}, nil
	case TokenColumn:
		if err := ValidateColumnName(tok.Value); err != nil {
			return nil, err
		}
		p.advance()
		return &ColumnRef{Name: tok.Value}, nil
	case TokenIdent:
		if p.peek().Type != TokenLeftParen {
			return nil, fmt.Errorf("%w: bare identifier %q (use $%s for columns)", ErrSyntax, tok.Value, tok.Value)
		}
		return p.parseFunctionCall()
	case TokenLeftBracket:
		return p.parseList()
	case TokenLeftParen:
		p.advance()
		node, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokenRightParen); err != nil {
			return nil, err
		}
		return node, nil
	}

	return nil, p.unexpected("value")
}

// parseNumber parses integer literals as int64 and everything else as float64
func parseNumber(tok Token) (Node, error) {
	if i, err := strconv.ParseInt(tok.Value, 10, 64); err == nil {
		return &Literal{Value: i}, nil
	}
	f, err := strconv.ParseFloat(tok.Value, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid number %q at offset %d", ErrSyntax, tok.Value, tok.Pos)
	}
	return &Literal{Value: f}, nil
}

// parseArgs parses a comma separated argument list up to the closing token
func (p *Parser) parseArgs(closing TokenType) ([]Node, error) {
	var args []Node
	if p.current().Type == closing {
		p.advance()
		return args, nil
	}
	for {
		arg, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		if p.current().Type == TokenComma {
			p.advance()
			continue
		}
		if err := p.expect(closing); err != nil {
			return nil, err
		}
		return args, nil
	}
}

func (p *Parser) parseFunctionCall() (Node, error) {
	if err := p.depthCounter.Enter(); err != nil {
		return nil, err
	}
	defer p.depthCounter.Exit()

	name := p.current().Value
	p.advance() // name
	p.advance() // (

	args, err := p.parseArgs(TokenRightParen)
	if err != nil {
		return nil, err
	}
	return &FunctionCall{Name: name, Args: args}, nil
}

func (p *Parser) parseList() (Node, error) {
	if err := p.depthCounter.Enter(); err != nil {
		return nil, err
	}
	defer p.depthCounter.Exit()

	p.advance() // [
	items, err := p.parseArgs(TokenRightBracket)
	if err != nil {
		return nil, err
	}
	return &ListExpr{Items: items}, nil
}
