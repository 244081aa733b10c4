package lang

import (
	"context"

	"github.com/ardnew/teval/log"
)

// DefaultMaxDepth is the default limit on evaluator recursion. It exists
// to turn runaway recursion through user-defined functions into an error
// instead of exhausting the goroutine stack. Zero disables the guard.
const DefaultMaxDepth = 10000

// options holds per-call configuration for the pipeline stages.
type options struct {
	logger   log.Logger
	maxDepth int
}

// Option configures parsing or evaluation behavior.
type Option func(*options)

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMaxDepth sets the maximum evaluator recursion depth. Zero disables
// the guard.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		o.maxDepth = depth
	}
}

// makeOptions applies defaults and the given options.
func makeOptions(opts ...Option) options {
	o := options{maxDepth: DefaultMaxDepth}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// ParseToTree parses source text into a parse tree: tokenize, convert to
// reverse-Polish, and reconstruct. The tree is pure data and may be
// reused across evaluations.
func ParseToTree(
	ctx context.Context,
	source string,
	opts ...Option,
) (*Node, error) {
	tokens, err := Tokenize(ctx, source, opts...)
	if err != nil {
		return nil, err
	}

	rpn, err := ShuntingYard(ctx, tokens, opts...)
	if err != nil {
		return nil, err
	}

	return BuildTree(ctx, rpn, opts...)
}

// EvalString parses and evaluates source text against the environment.
// Callers that evaluate the same expression repeatedly should ParseToTree
// once and Evaluate the tree instead.
func EvalString(
	ctx context.Context,
	source string,
	env *Env,
	opts ...Option,
) (Value, error) {
	tree, err := ParseToTree(ctx, source, opts...)
	if err != nil {
		return Value{}, err
	}

	return Evaluate(ctx, tree, env, opts...)
}
