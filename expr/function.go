package expr

import (
	"sort"
	"strings"
	"sync"
)

// Function represents a scalar function applied element-wise
type Function interface {
	// Name returns the function name (case-insensitive)
	Name() string
	// MinArity returns the minimum number of arguments
	MinArity() int
	// MaxArity returns the maximum number of arguments (-1 for unlimited)
	MaxArity() int
	// Evaluate evaluates the function for one row of arguments
	Evaluate(args []interface{}) (interface{}, error)
}

// NullAware marks scalar functions that want NA arguments passed through.
// Other scalar functions return NA as soon as any argument is NA.
type NullAware interface {
	AcceptsNull()
}

// VectorFunction sees whole argument vectors at once. Aggregates return a
// scalar, window functions return a vector of length n.
type VectorFunction interface {
	Name() string
	MinArity() int
	MaxArity() int
	// EvaluateVector evaluates the function; n is the frame length
	EvaluateVector(args []Value, n int) (Value, error)
}

// FunctionRegistry manages function lookup and registration
type FunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]Function
	vectors   map[string]VectorFunction
}

// NewFunctionRegistry creates a new function registry
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{
		functions: make(map[string]Function),
		vectors:   make(map[string]VectorFunction),
	}
}

// Register registers a scalar function, replacing any function of the same name
func (r *FunctionRegistry) Register(f Function) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := strings.ToUpper(f.Name())
	delete(r.vectors, name)
	r.functions[name] = f
}

// RegisterVector registers a vector function, replacing any function of the same name
func (r *FunctionRegistry) RegisterVector(f VectorFunction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := strings.ToUpper(f.Name())
	delete(r.functions, name)
	r.vectors[name] = f
}

// Get retrieves a scalar function by name (case-insensitive)
func (r *FunctionRegistry) Get(name string) (Function, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, exists := r.functions[strings.ToUpper(name)]
	return f, exists
}

// GetVector retrieves a vector function by name (case-insensitive)
func (r *FunctionRegistry) GetVector(name string) (VectorFunction, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, exists := r.vectors[strings.ToUpper(name)]
	return f, exists
}

// Names returns the lowercase names of all registered functions, sorted
func (r *FunctionRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.functions)+len(r.vectors))
	for name := range r.functions {
		names = append(names, strings.ToLower(name))
	}
	for name := range r.vectors {
		names = append(names, strings.ToLower(name))
	}
	sort.Strings(names)
	return names
}

func (r *FunctionRegistry) arity(name string) (int, int, bool) {
	if f, ok := r.GetVector(name); ok {
		return f.MinArity(), f.MaxArity(), true
	}
	if f, ok := r.Get(name); ok {
		return f.MinArity(), f.MaxArity(), true
	}
	return 0, 0, false
}

// globalRegistry is the default function registry
var globalRegistry *FunctionRegistry

func init() {
	globalRegistry = NewFunctionRegistry()

	// String functions
	globalRegistry.Register(&UpperFunc{})
	globalRegistry.Register(&LowerFunc{})
	globalRegistry.Register(&ConcatFunc{})
	globalRegistry.Register(&LengthFunc{})
	globalRegistry.Register(&TrimFunc{})
	globalRegistry.Register(&LTrimFunc{})
	globalRegistry.Register(&RTrimFunc{})
	globalRegistry.Register(&SubstringFunc{})
	globalRegistry.Register(&ReplaceFunc{})
	globalRegistry.Register(&ReverseFunc{})
	globalRegistry.Register(&ContainsFunc{})
	globalRegistry.Register(&StartsWithFunc{})
	globalRegistry.Register(&EndsWithFunc{})
	globalRegistry.Register(&RepeatFunc{})

	// Math functions
	globalRegistry.Register(&AbsFunc{})
	globalRegistry.Register(&RoundFunc{})
	globalRegistry.Register(&ModFunc{})
	globalRegistry.Register(&PowFunc{})
	globalRegistry.Register(&SignFunc{})
	for _, f := range mathFunctions() {
		globalRegistry.Register(f)
	}

	// Date functions
	for _, f := range dateParts() {
		globalRegistry.Register(f)
	}
	globalRegistry.Register(&DateTruncFunc{})
	globalRegistry.Register(&DateDiffFunc{})

	// Type conversion functions
	globalRegistry.Register(&CastFunc{})
	globalRegistry.Register(&TryCastFunc{})
	globalRegistry.Register(&ToStringFunc{})
	globalRegistry.Register(&ToNumberFunc{})
	globalRegistry.Register(&ToDateFunc{})

	// Conditional functions
	globalRegistry.Register(&CoalesceFunc{})
	globalRegistry.Register(&NullIfFunc{})
	globalRegistry.Register(&IfElseFunc{})
	globalRegistry.Register(&PMinFunc{})
	globalRegistry.Register(&PMaxFunc{})

	// Aggregates
	globalRegistry.RegisterVector(&SumFunc{})
	globalRegistry.RegisterVector(&MeanFunc{})
	globalRegistry.RegisterVector(&MedianFunc{})
	globalRegistry.RegisterVector(&MinFunc{})
	globalRegistry.RegisterVector(&MaxFunc{})
	globalRegistry.RegisterVector(&QuantileFunc{})
	globalRegistry.RegisterVector(&SdFunc{})
	globalRegistry.RegisterVector(&VarFunc{})
	globalRegistry.RegisterVector(&NFunc{})
	globalRegistry.RegisterVector(&NDistinctFunc{})
	globalRegistry.RegisterVector(&CountFunc{})
	globalRegistry.RegisterVector(&NthFunc{})
	globalRegistry.RegisterVector(&FirstFunc{})
	globalRegistry.RegisterVector(&LastFunc{})

	// Window functions
	globalRegistry.RegisterVector(&LeadFunc{})
	globalRegistry.RegisterVector(&LagFunc{})
	globalRegistry.RegisterVector(&CumSumFunc{})
	globalRegistry.RegisterVector(&CumMinFunc{})
	globalRegistry.RegisterVector(&CumMaxFunc{})
	globalRegistry.RegisterVector(&RowNumberFunc{})
	globalRegistry.RegisterVector(&RankFunc{})
	globalRegistry.RegisterVector(&IsInFunc{})
	globalRegistry.RegisterVector(&NotInFunc{})
	globalRegistry.RegisterVector(&IsNAFunc{})
	globalRegistry.RegisterVector(&NotNAFunc{})
}

// GetGlobalRegistry returns the global function registry
func GetGlobalRegistry() *FunctionRegistry {
	return globalRegistry
}
