package tibble

import (
	"fmt"

	"github.com/vegasq/tibble/expr"
)

// Computation produces a column, a predicate or an aggregate from a tibble.
// A result is a scalar, a slice with one value per row, or a series.Series.
type Computation interface {
	Compute(t *Tibble) (interface{}, error)
	String() string
}

// Def names a computation for Mutate and Summarize
type Def struct {
	Name string
	Computation
}

// As builds a named definition
func As(name string, c Computation) Def {
	return Def{Name: name, Computation: c}
}

type exprComputation struct {
	src  string
	prog *expr.Program
	err  error
}

// Expr compiles an expression in the expr language. Compile errors are
// reported when the computation runs.
func Expr(src string) Computation {
	prog, err := expr.Compile(src)
	return &exprComputation{src: src, prog: prog, err: err}
}

// ExprWith compiles an expression against a custom function registry
func ExprWith(src string, reg *expr.FunctionRegistry) Computation {
	prog, err := expr.CompileWith(src, reg)
	return &exprComputation{src: src, prog: prog, err: err}
}

func (e *exprComputation) Compute(t *Tibble) (interface{}, error) {
	if e.err != nil {
		return nil, e.err
	}
	if missing := t.missing(e.prog.Columns()); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrColumnNotFound, missing)
	}
	v, err := e.prog.Eval(frame{t})
	if err != nil {
		return nil, err
	}
	if v.IsVector() {
		return v.Vector(), nil
	}
	return v.Scalar(), nil
}

func (e *exprComputation) String() string { return e.src }

type funcComputation struct {
	fn func(*Tibble) (interface{}, error)
}

// Func wraps a Go function. The function receives the whole tibble, or
// one group at a time inside grouped verbs.
func Func(fn func(*Tibble) (interface{}, error)) Computation {
	return &funcComputation{fn: fn}
}

func (f *funcComputation) Compute(t *Tibble) (interface{}, error) {
	return f.fn(t)
}

func (f *funcComputation) String() string { return "<func>" }

// frame exposes a tibble to the expression evaluator
type frame struct {
	t *Tibble
}

func (f frame) Len() int { return f.t.Nrow() }

func (f frame) Column(name string) ([]interface{}, bool) {
	vals, err := f.t.Column(name)
	if err != nil {
		return nil, false
	}
	return vals, true
}

// predicate evaluates c as a row mask. NA counts as false.
func predicate(t *Tibble, c Computation) ([]bool, error) {
	res, err := c.Compute(t)
	if err != nil {
		return nil, err
	}
	vals, err := toValues(res, t.Nrow())
	if err != nil {
		return nil, err
	}
	mask := make([]bool, len(vals))
	for i, v := range vals {
		switch b := v.(type) {
		case bool:
			mask[i] = b
		case nil:
		default:
			if expr.IsNA(v) {
				continue
			}
			return nil, fmt.Errorf("%w: predicate yielded %T, want bool", ErrInvalidValue, v)
		}
	}
	return mask, nil
}

// scalarResult evaluates c and requires exactly one value
func scalarResult(t *Tibble, c Computation) (interface{}, error) {
	res, err := c.Compute(t)
	if err != nil {
		return nil, err
	}
	if resultLen(res) != 1 {
		return nil, fmt.Errorf("%w: aggregate yielded %d values, want 1", ErrInvalidValue, resultLen(res))
	}
	vals, err := toValues(res, 1)
	if err != nil {
		return nil, err
	}
	return vals[0], nil
}
