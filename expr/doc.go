// Package expr compiles and evaluates the column expression language used
// by tibble verbs.
//
// Expressions reference columns with a $ sigil and are evaluated against a
// whole column at a time:
//
//	$price * $quantity
//	$value1 / $value2 > 0.5 & $category != "D"
//	mean($v) - sd($v)
//	${unit price} * 2
//	$category in ["A", "B"]
//
// The parser produces a closed tree of ColumnRef, Literal, ListExpr,
// UnaryExpr, BinaryExpr and FunctionCall nodes. Evaluation only ever calls
// functions found in a FunctionRegistry, so expression text cannot run
// arbitrary code.
//
// # Values
//
// Evaluation yields a Value, which is either a scalar (a literal or an
// aggregate such as mean) or a vector with one element per row. Scalars
// broadcast against vectors. Elements are int64, float64, string, bool or
// nil for NA. NA propagates through arithmetic and most functions;
// comparisons against NA are false.
//
// # Functions
//
// Scalar functions (upper, round, ifelse, ...) are applied element-wise.
// Vector functions see entire columns: aggregates (sum, mean, median,
// quantile, sd, n, n_distinct, first, last, nth) return a scalar and window
// functions (lead, lag, cumsum, rank, row_number, isin, isna, ...) return a
// vector of the same length.
//
// Custom functions can be added to a private registry:
//
//	reg := expr.NewFunctionRegistry()
//	reg.Register(myFunc)
//	prog, err := expr.CompileWith("my_func($x)", reg)
//
// # Limits
//
// Expressions are limited in length, token count, nesting depth and
// column name length; see the Max* constants.
package expr
