package filter

import (
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// exprFilter implements CompiledFilter using the expr language
type exprFilter struct {
	expression string
	program    *vm.Program
}

// ExprCompilerOption configures an expr compiler
type ExprCompilerOption func(*exprCompiler)

// WithCache enables filter caching with the specified size
func WithCache(size int) ExprCompilerOption {
	return func(c *exprCompiler) {
		if size > 0 {
			c.cache = newLRUCache(size)
		}
	}
}

// NewExprCompiler creates a new expr-based filter compiler
func NewExprCompiler(opts ...ExprCompilerOption) CachingCompiler {
	c := &exprCompiler{
		env: createEnvironment(Device{}),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// exprCompiler implements Compiler for expr-based filters
type exprCompiler struct {
	// env is a zero-valued environment used only for type checking
	env   map[string]any
	cache *lruCache
}

// Compile compiles an expression into an executable filter. Unknown
// identifiers and non-boolean results are rejected here rather than at
// evaluation time.
func (c *exprCompiler) Compile(expression string) (CompiledFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
		}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached, nil
		}
	}

	program, err := expr.Compile(expression,
		expr.Env(c.env),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	filter := &exprFilter{
		expression: expression,
		program:    program,
	}

	if c.cache != nil {
		c.cache.Put(expression, filter)
	}

	return filter, nil
}

// Clear removes all cached filters
func (c *exprCompiler) Clear() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Size returns the number of cached filters
func (c *exprCompiler) Size() int {
	if c.cache != nil {
		return c.cache.Size()
	}
	return 0
}

// Evaluate evaluates the filter against a device. Runtime errors count as
// no match.
func (f *exprFilter) Evaluate(device Device) bool {
	ok, err := f.Match(device)
	return err == nil && ok
}

// Match evaluates the filter against a device
func (f *exprFilter) Match(device Device) (bool, error) {
	result, err := expr.Run(f.program, createEnvironment(device))
	if err != nil {
		return false, &EvaluationError{
			Expression: f.expression,
			DeviceID:   device.ID,
			Err:        err,
		}
	}

	// Result is guaranteed to be bool due to AsBool() option during compilation
	return result.(bool), nil
}

// Expression returns the original expression
func (f *exprFilter) Expression() string {
	return f.expression
}

// createEnvironment exposes a device's fields and helpers to expressions
func createEnvironment(d Device) map[string]any {
	env := make(map[string]any, 16)

	env["Device"] = d
	env["Category"] = d.Category
	env["ID"] = d.ID
	env["Name"] = d.Name
	env["Width"] = d.Width
	env["Height"] = d.Height
	env["Scale"] = d.DeviceScaleFactor
	env["Mobile"] = d.IsMobile

	env["inCategory"] = func(category string) bool {
		return strings.EqualFold(d.Category, category)
	}
	env["aspectRatio"] = d.AspectRatio
	env["physicalWidth"] = d.PhysicalWidth
	env["physicalHeight"] = d.PhysicalHeight
	env["portrait"] = func() bool {
		return d.Height > d.Width
	}
	env["landscape"] = func() bool {
		return d.Width > d.Height
	}

	return env
}
