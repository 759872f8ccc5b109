package expr

import (
	"fmt"
	"strings"
)

// TokenType represents the type of a lexical token
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenError
	TokenColumn
	TokenIdent
	TokenNumber
	TokenString
	TokenBool
	TokenNull
	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenPercent
	TokenPower
	TokenEqual
	TokenNotEqual
	TokenLess
	TokenLessEqual
	TokenGreater
	TokenGreaterEqual
	TokenAnd
	TokenOr
	TokenNot
	TokenIn
	TokenComma
	TokenLeftParen
	TokenRightParen
	TokenLeftBracket
	TokenRightBracket
)

var tokenNames = map[TokenType]string{
	TokenEOF:          "end of expression",
	TokenError:        "invalid token",
	TokenColumn:       "column",
	TokenIdent:        "identifier",
	TokenNumber:       "number",
	TokenString:       "string",
	TokenBool:         "boolean",
	TokenNull:         "null",
	TokenPlus:         "+",
	TokenMinus:        "-",
	TokenStar:         "*",
	TokenSlash:        "/",
	TokenPercent:      "%",
	TokenPower:        "**",
	TokenEqual:        "==",
	TokenNotEqual:     "!=",
	TokenLess:         "<",
	TokenLessEqual:    "<=",
	TokenGreater:      ">",
	TokenGreaterEqual: ">=",
	TokenAnd:          "&",
	TokenOr:           "|",
	TokenNot:          "!",
	TokenIn:           "in",
	TokenComma:        ",",
	TokenLeftParen:    "(",
	TokenRightParen:   ")",
	TokenLeftBracket:  "[",
	TokenRightBracket: "]",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// Token represents a lexical token
type Token struct {
	Type  TokenType
	Value string
	Pos   int
}

// Node is an expression tree node. The set of node types is closed:
// column references, literals, lists, unary and binary operators and
// function calls.
type Node interface {
	eval(ctx *evalContext) (Value, error)
	String() string
}

// ColumnRef references a column by name ($name or ${name})
type ColumnRef struct {
	Name string
}

func (c *ColumnRef) String() string {
	for _, r := range c.Name {
		if !isIdentRune(r) {
			return "${" + c.Name + "}"
		}
	}
	return "$" + c.Name
}

// Literal is a constant scalar value
type Literal struct {
	Value interface{}
}

func (l *Literal) String() string {
	switch v := l.Value.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("%q", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ListExpr is a bracketed list of expressions, e.g. ["a", "b"]
type ListExpr struct {
	Items []Node
}

func (l *ListExpr) String() string {
	parts := make([]string, len(l.Items))
	for i, item := range l.Items {
		parts[i] = item.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// UnaryExpr applies a prefix operator (- or !)
type UnaryExpr struct {
	Operator TokenType
	Operand  Node
}

func (u *UnaryExpr) String() string {
	return fmt.Sprintf("(%s%s)", u.Operator, u.Operand)
}

// BinaryExpr applies an infix operator
type BinaryExpr struct {
	Left     Node
	Operator TokenType
	Right    Node
}

func (b *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Operator, b.Right)
}

// FunctionCall calls a registered function
type FunctionCall struct {
	Name string
	Args []Node
}

func (f *FunctionCall) String() string {
	parts := make([]string, len(f.Args))
	for i, arg := range f.Args {
		parts[i] = arg.String()
	}
	return strings.ToLower(f.Name) + "(" + strings.Join(parts, ", ") + ")"
}
