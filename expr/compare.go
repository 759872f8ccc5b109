package expr

import (
	"fmt"
	"math"
)

// compare evaluates a comparison operator. Any comparison involving NA
// is false.
func compare(left interface{}, operator TokenType, right interface{}) (bool, error) {
	if IsNA(left) || IsNA(right) {
		return false, nil
	}

	// Try numeric comparison
	leftNum, leftIsNum := toFloat64(left)
	rightNum, rightIsNum := toFloat64(right)

	if leftIsNum && rightIsNum {
		return compareNumbers(leftNum, operator, rightNum), nil
	}

	// Try string comparison
	leftStr, leftIsStr := toString(left)
	rightStr, rightIsStr := toString(right)

	if leftIsStr && rightIsStr {
		return compareStrings(leftStr, operator, rightStr), nil
	}

	// Try boolean comparison
	leftBool, leftIsBool := toBool(left)
	rightBool, rightIsBool := toBool(right)

	if leftIsBool && rightIsBool {
		return compareBools(leftBool, operator, rightBool), nil
	}

	// Equality across types is simply false
	switch operator {
	case TokenEqual:
		return false, nil
	case TokenNotEqual:
		return true, nil
	}
	return false, fmt.Errorf("cannot compare %T with %T", left, right)
}

func compareNumbers(left float64, operator TokenType, right float64) bool {
	const epsilon = 1e-9
	switch operator {
	case TokenEqual, TokenNotEqual:
		// Relative epsilon for large numbers, absolute for small
		diff := math.Abs(left - right)
		threshold := epsilon * max(1.0, math.Abs(left), math.Abs(right))
		if operator == TokenEqual {
			return diff < threshold
		}
		return diff >= threshold
	case TokenLess:
		return left < right
	case TokenGreater:
		return left > right
	case TokenLessEqual:
		return left <= right
	case TokenGreaterEqual:
		return left >= right
	default:
		return false
	}
}

func compareStrings(left string, operator TokenType, right string) bool {
	switch operator {
	case TokenEqual:
		return left == right
	case TokenNotEqual:
		return left != right
	case TokenLess:
		return left < right
	case TokenGreater:
		return left > right
	case TokenLessEqual:
		return left <= right
	case TokenGreaterEqual:
		return left >= right
	default:
		return false
	}
}

func compareBools(left bool, operator TokenType, right bool) bool {
	switch operator {
	case TokenEqual:
		return left == right
	case TokenNotEqual:
		return left != right
	}
	// false < true
	l, r := 0, 0
	if left {
		l = 1
	}
	if right {
		r = 1
	}
	return compareNumbers(float64(l), operator, float64(r))
}

// CompareValues orders two values for sorting. NA sorts first; numbers
// compare numerically, strings lexically and false before true. Values of
// unrelated types compare equal.
func CompareValues(a, b interface{}) int {
	aNA, bNA := IsNA(a), IsNA(b)
	if aNA && bNA {
		return 0
	}
	if aNA {
		return -1
	}
	if bNA {
		return 1
	}

	// Try numeric comparison
	aNum, aIsNum := toFloat64(a)
	bNum, bIsNum := toFloat64(b)
	if aIsNum && bIsNum {
		if aNum < bNum {
			return -1
		}
		if aNum > bNum {
			return 1
		}
		return 0
	}

	// Try string comparison
	aStr, aIsStr := toString(a)
	bStr, bIsStr := toString(b)
	if aIsStr && bIsStr {
		if aStr < bStr {
			return -1
		}
		if aStr > bStr {
			return 1
		}
		return 0
	}

	// Try boolean comparison
	aBool, aIsBool := toBool(a)
	bBool, bIsBool := toBool(b)
	if aIsBool && bIsBool {
		if !aBool && bBool {
			return -1
		}
		if aBool && !bBool {
			return 1
		}
		return 0
	}

	return 0
}
