package expr

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Frame is the tabular data an expression is evaluated against
type Frame interface {
	// Len returns the number of rows
	Len() int
	// Column returns the values of a column and whether it exists
	Column(name string) ([]interface{}, bool)
}

// MapFrame is a Frame backed by a map of equal-length columns
type MapFrame struct {
	N    int
	Cols map[string][]interface{}
}

// Len returns the number of rows
func (m MapFrame) Len() int { return m.N }

// Column returns the named column
func (m MapFrame) Column(name string) ([]interface{}, bool) {
	c, ok := m.Cols[name]
	return c, ok
}

// Program is a compiled expression
type Program struct {
	src      string
	root     Node
	registry *FunctionRegistry
	columns  []string
}

// Compile parses src and resolves its functions against the global registry
func Compile(src string) (*Program, error) {
	return CompileWith(src, GetGlobalRegistry())
}

// CompileWith parses src and resolves its functions against reg
func CompileWith(src string, reg *FunctionRegistry) (*Program, error) {
	root, err := Parse(src)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", src, err)
	}

	p := &Program{src: src, root: root, registry: reg}
	seen := make(map[string]bool)
	if err := p.resolve(root, seen); err != nil {
		return nil, fmt.Errorf("compile %q: %w", src, err)
	}
	sort.Strings(p.columns)
	return p, nil
}

// resolve checks every call against the registry and collects column references
func (p *Program) resolve(n Node, seen map[string]bool) error {
	switch node := n.(type) {
	case *ColumnRef:
		if !seen[node.Name] {
			seen[node.Name] = true
			p.columns = append(p.columns, node.Name)
		}
	case *ListExpr:
		for _, item := range node.Items {
			if err := p.resolve(item, seen); err != nil {
				return err
			}
		}
	case *UnaryExpr:
		return p.resolve(node.Operand, seen)
	case *BinaryExpr:
		if err := p.resolve(node.Left, seen); err != nil {
			return err
		}
		return p.resolve(node.Right, seen)
	case *FunctionCall:
		minArity, maxArity, ok := p.registry.arity(node.Name)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownFunction, node.Name)
		}
		if err := checkArity(node.Name, minArity, maxArity, len(node.Args)); err != nil {
			return err
		}
		for _, arg := range node.Args {
			if err := p.resolve(arg, seen); err != nil {
				return err
			}
		}
	}
	return nil
}

// Eval evaluates the program against a frame
func (p *Program) Eval(f Frame) (Value, error) {
	ctx := &evalContext{frame: f, registry: p.registry, n: f.Len()}
	v, err := p.root.eval(ctx)
	if err != nil {
		return Value{}, fmt.Errorf("eval %q: %w", p.src, err)
	}
	return v, nil
}

// Columns returns the sorted names of referenced columns
func (p *Program) Columns() []string { return p.columns }

// Root returns the parsed expression tree
func (p *Program) Root() Node { return p.root }

// String returns the expression source
func (p *Program) String() string { return p.src }

type evalContext struct {
	frame    Frame
	registry *FunctionRegistry
	n        int
}

func (c *ColumnRef) eval(ctx *evalContext) (Value, error) {
	vals, ok := ctx.frame.Column(c.Name)
	if !ok {
		return Value{}, fmt.Errorf("%w: %q", ErrUnknownColumn, c.Name)
	}
	return NewVector(vals), nil
}

func (l *Literal) eval(*evalContext) (Value, error) {
	return NewScalar(l.Value), nil
}

func (l *ListExpr) eval(ctx *evalContext) (Value, error) {
	out := make([]interface{}, 0, len(l.Items))
	for _, item := range l.Items {
		v, err := item.eval(ctx)
		if err != nil {
			return Value{}, err
		}
		out = append(out, v.Values()...)
	}
	return NewVector(out), nil
}

func (u *UnaryExpr) eval(ctx *evalContext) (Value, error) {
	operand, err := u.Operand.eval(ctx)
	if err != nil {
		return Value{}, err
	}
	return mapValues([]Value{operand}, func(args []interface{}) (interface{}, error) {
		x := args[0]
		switch u.Operator {
		case TokenNot:
			b, err := truthy(x)
			if err != nil {
				return nil, err
			}
			return !b, nil
		case TokenMinus:
			if IsNA(x) {
				return nil, nil
			}
			if i, ok := toInt64(x); ok {
				return -i, nil
			}
			if f, ok := toFloat64(x); ok {
				return -f, nil
			}
			return nil, fmt.Errorf("cannot negate %T", x)
		}
		return nil, fmt.Errorf("unsupported unary operator %s", u.Operator)
	})
}

func (b *BinaryExpr) eval(ctx *evalContext) (Value, error) {
	left, err := b.Left.eval(ctx)
	if err != nil {
		return Value{}, err
	}
	right, err := b.Right.eval(ctx)
	if err != nil {
		return Value{}, err
	}

	op := b.Operator
	return mapValues([]Value{left, right}, func(args []interface{}) (interface{}, error) {
		x, y := args[0], args[1]
		switch op {
		case TokenAnd, TokenOr:
			xb, err := truthy(x)
			if err != nil {
				return nil, err
			}
			yb, err := truthy(y)
			if err != nil {
				return nil, err
			}
			if op == TokenAnd {
				return xb && yb, nil
			}
			return xb || yb, nil
		case TokenEqual, TokenNotEqual, TokenLess, TokenLessEqual, TokenGreater, TokenGreaterEqual:
			return compare(x, op, y)
		default:
			return arithmetic(op, x, y)
		}
	})
}

// arithmetic applies + - * / % ** with NA propagation. Integer operands
// stay integral except for / and **.
func arithmetic(op TokenType, x, y interface{}) (interface{}, error) {
	if IsNA(x) || IsNA(y) {
		return nil, nil
	}

	if op == TokenPlus {
		xs, xok := x.(string)
		ys, yok := y.(string)
		if xok && yok {
			return xs + ys, nil
		}
	}

	xi, xInt := toInt64(x)
	yi, yInt := toInt64(y)
	if xInt && yInt {
		switch op {
		case TokenPlus:
			return xi + yi, nil
		case TokenMinus:
			return xi - yi, nil
		case TokenStar:
			return xi * yi, nil
		case TokenPercent:
			if yi == 0 {
				return nil, nil
			}
			m := xi % yi
			if m != 0 && (m < 0) != (yi < 0) {
				m += yi
			}
			return m, nil
		}
	}

	xf, xok := toFloat64(x)
	yf, yok := toFloat64(y)
	if !xok || !yok {
		return nil, fmt.Errorf("cannot apply %s to %T and %T", op, x, y)
	}

	switch op {
	case TokenPlus:
		return xf + yf, nil
	case TokenMinus:
		return xf - yf, nil
	case TokenStar:
		return xf * yf, nil
	case TokenSlash:
		return xf / yf, nil
	case TokenPercent:
		if yf == 0 {
			return nil, nil
		}
		m := math.Mod(xf, yf)
		if m != 0 && (m < 0) != (yf < 0) {
			m += yf
		}
		return m, nil
	case TokenPower:
		return math.Pow(xf, yf), nil
	}
	return nil, fmt.Errorf("unsupported operator %s", op)
}

func (f *FunctionCall) eval(ctx *evalContext) (Value, error) {
	args := make([]Value, len(f.Args))
	for i, arg := range f.Args {
		v, err := arg.eval(ctx)
		if err != nil {
			return Value{}, err
		}
		args[i] = v
	}

	if vf, ok := ctx.registry.GetVector(f.Name); ok {
		if err := checkArity(vf.Name(), vf.MinArity(), vf.MaxArity(), len(args)); err != nil {
			return Value{}, err
		}
		v, err := vf.EvaluateVector(args, ctx.n)
		if err != nil {
			return Value{}, fmt.Errorf("%s: %w", strings.ToLower(vf.Name()), err)
		}
		return v, nil
	}

	fn, ok := ctx.registry.Get(f.Name)
	if !ok {
		return Value{}, fmt.Errorf("%w: %s", ErrUnknownFunction, f.Name)
	}
	if err := checkArity(fn.Name(), fn.MinArity(), fn.MaxArity(), len(args)); err != nil {
		return Value{}, err
	}

	_, acceptsNA := fn.(NullAware)
	return mapValues(args, func(row []interface{}) (interface{}, error) {
		if !acceptsNA {
			for _, a := range row {
				if IsNA(a) {
					return nil, nil
				}
			}
		}
		return fn.Evaluate(row)
	})
}

func checkArity(name string, minArity, maxArity, got int) error {
	if minArity >= 0 && got < minArity {
		return fmt.Errorf("function %s: expected at least %d arguments, got %d", strings.ToLower(name), minArity, got)
	}
	if maxArity >= 0 && got > maxArity {
		return fmt.Errorf("function %s: expected at most %d arguments, got %d", strings.ToLower(name), maxArity, got)
	}
	return nil
}

// mapValues applies fn element-wise, broadcasting scalars. The result is
// a scalar only when every argument is a scalar.
func mapValues(args []Value, fn func([]interface{}) (interface{}, error)) (Value, error) {
	n := -1
	for _, a := range args {
		if !a.isVector {
			continue
		}
		if n >= 0 && a.Len() != n {
			return Value{}, fmt.Errorf("length mismatch: %d vs %d", n, a.Len())
		}
		n = a.Len()
	}

	row := make([]interface{}, len(args))
	if n < 0 {
		for j, a := range args {
			row[j] = a.scalar
		}
		r, err := fn(row)
		if err != nil {
			return Value{}, err
		}
		return NewScalar(r), nil
	}

	out := make([]interface{}, n)
	for i := 0; i < n; i++ {
		for j, a := range args {
			row[j] = a.At(i)
		}
		r, err := fn(row)
		if err != nil {
			return Value{}, err
		}
		out[i] = r
	}
	return NewVector(out), nil
}
