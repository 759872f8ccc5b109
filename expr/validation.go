package expr

import (
	"errors"
	"fmt"
)

// Validation constants to keep untrusted expressions bounded
const (
	// MaxExpressionLength is the maximum allowed expression source length
	MaxExpressionLength = 10000

	// MaxTokens is the maximum number of tokens in an expression
	MaxTokens = 1000

	// MaxExpressionDepth is the maximum nesting depth for expressions
	MaxExpressionDepth = 100

	// MaxColumnNameLength is the maximum length for a column name
	MaxColumnNameLength = 256
)

var (
	// ErrExpressionTooLong is returned when source exceeds MaxExpressionLength
	ErrExpressionTooLong = errors.New("expression too long")

	// ErrTooManyTokens is returned when an expression has too many tokens
	ErrTooManyTokens = errors.New("too many tokens in expression")

	// ErrExpressionTooDeep is returned when expression nesting exceeds limit
	ErrExpressionTooDeep = errors.New("expression nesting too deep")

	// ErrColumnNameTooLong is returned when column name is too long
	ErrColumnNameTooLong = errors.New("column name too long")

	// ErrSyntax is returned for malformed expressions
	ErrSyntax = errors.New("syntax error")

	// ErrUnknownFunction is returned when a call names no registered function
	ErrUnknownFunction = errors.New("unknown function")

	// ErrUnknownColumn is returned when a column reference cannot be resolved
	ErrUnknownColumn = errors.New("unknown column")
)

// ValidateExpression performs length validation on expression input
func ValidateExpression(src string) error {
	if len(src) > MaxExpressionLength {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrExpressionTooLong, len(src), MaxExpressionLength)
	}
	return nil
}

// ValidateColumnName validates column name length
func ValidateColumnName(name string) error {
	if len(name) > MaxColumnNameLength {
		return fmt.Errorf("%w: %d chars (max %d)", ErrColumnNameTooLong, len(name), MaxColumnNameLength)
	}
	return nil
}

// ValidateTokens validates token count
func ValidateTokens(tokens []Token) error {
	if len(tokens) > MaxTokens {
		return fmt.Errorf("%w: %d tokens (max %d)", ErrTooManyTokens, len(tokens), MaxTokens)
	}
	return nil
}

// depthCounter tracks expression nesting depth while parsing
type depthCounter struct {
	depth    int
	maxDepth int
}

func newDepthCounter() *depthCounter {
	return &depthCounter{maxDepth: MaxExpressionDepth}
}

// Enter increments depth and returns error if limit exceeded
func (c *depthCounter) Enter() error {
	c.depth++
	if c.depth > c.maxDepth {
		return fmt.Errorf("%w: %d (max %d)", ErrExpressionTooDeep, c.depth, c.maxDepth)
	}
	return nil
}

// Exit decrements depth
func (c *depthCounter) Exit() {
	c.depth--
}
