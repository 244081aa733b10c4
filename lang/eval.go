package lang

import (
	"context"
	"log/slog"
	"math"
)

// Caller provides builtins access to the evaluator: invoking function
// values (list.map, apply) and defining names in the calling scope (def).
type Caller interface {
	// Call invokes a builtin or user-defined function value.
	Call(fn Value, args []Value) (Value, error)

	// Define binds a name in the enclosing environment.
	Define(name string, v Value)

	// Context returns the context of the current evaluation.
	Context() context.Context
}

// Evaluate walks a parse tree and produces a value. The tree is not
// modified and may be reused across evaluations.
func Evaluate(
	ctx context.Context,
	tree *Node,
	env *Env,
	opts ...Option,
) (Value, error) {
	o := makeOptions(opts...)

	if env == nil {
		env = NewEnv()
	}

	ec := &evalContext{
		ctx:      ctx,
		env:      env,
		opts:     o,
		maxDepth: o.maxDepth,
	}

	v, err := ec.eval(tree)
	if err != nil {
		return Value{}, err
	}

	o.logger.TraceContext(
		ctx,
		"evaluate complete",
		slog.String("kind", v.Kind.String()),
	)

	return v, nil
}

// evalContext holds the state for one recursive evaluation.
type evalContext struct {
	ctx      context.Context
	env      *Env
	opts     options
	depth    int
	maxDepth int
}

// eval dispatches on the node kind.
func (ec *evalContext) eval(n *Node) (Value, error) {
	if ec.maxDepth > 0 {
		ec.depth++
		defer func() { ec.depth-- }()

		if ec.depth > ec.maxDepth {
			return Value{}, ErrMaxDepthExceeded.
				With(slog.Int("max_depth", ec.maxDepth))
		}
	}

	switch n.Kind {
	case NodeInt:
		return IntValue(n.Int), nil

	case NodeFloat:
		return FloatValue(n.Float), nil

	case NodeString:
		return StringValue(n.Text), nil

	case NodeDate:
		return DateValue(n.Text), nil

	case NodeIdentifier:
		v, ok := ec.env.Get(n.Text)
		if !ok {
			return Value{}, ErrUndefinedIdentifier.
				With(slog.String("name", n.Text))
		}

		return v, nil

	case NodeUnaryOp:
		operand, err := ec.eval(n.Args[0])
		if err != nil {
			return Value{}, err
		}

		return ec.evalUnary(n.Text, operand)

	case NodeBinaryOp:
		left, err := ec.eval(n.Args[0])
		if err != nil {
			return Value{}, err
		}

		right, err := ec.eval(n.Args[1])
		if err != nil {
			return Value{}, err
		}

		return ec.evalBinary(n.Text, left, right)

	case NodeFunction:
		return ec.evalFunction(n)

	case NodeList:
		elems := make([]Value, len(n.Args))

		for i, arg := range n.Args {
			v, err := ec.eval(arg)
			if err != nil {
				return Value{}, err
			}

			elems[i] = v
		}

		return ListValue(elems), nil

	default:
		return Value{}, ErrMalformedExpression.
			With(slog.String("node", n.Kind.String()))
	}
}

// evalFunction evaluates arguments left-to-right, then resolves the name
// in the environment (user-defined and shadowed functions) before the
// builtin registry.
func (ec *evalContext) evalFunction(n *Node) (Value, error) {
	args := make([]Value, len(n.Args))

	for i, arg := range n.Args {
		v, err := ec.eval(arg)
		if err != nil {
			return Value{}, err
		}

		args[i] = v
	}

	fn, ok := ec.env.Get(n.Text)
	if !ok {
		return Value{}, ErrUndefinedIdentifier.
			With(slog.String("name", n.Text))
	}

	v, err := ec.Call(fn, args)
	if err != nil {
		return Value{}, WrapError(err).
			With(slog.String("function", n.Text))
	}

	return v, nil
}

// Call implements Caller.
func (ec *evalContext) Call(fn Value, args []Value) (Value, error) {
	switch fn.Kind {
	case ValueBuiltin:
		return fn.Builtin.Fn(ec, args)

	case ValueFunc:
		def := fn.Func

		if len(args) != len(def.Params) {
			return Value{}, ErrArgumentCount.
				With(
					slog.String("function", def.Name),
					slog.Int("expected", len(def.Params)),
					slog.Int("got", len(args)),
				)
		}

		child := ec.env.Child()
		for i, name := range def.Params {
			child.Put(name, args[i])
		}

		sub := &evalContext{
			ctx:      ec.ctx,
			env:      child,
			opts:     ec.opts,
			depth:    ec.depth,
			maxDepth: ec.maxDepth,
		}

		return sub.eval(def.Body)

	default:
		return Value{}, ErrInvalidOperation.
			With(slog.String("kind", fn.Kind.String()))
	}
}

// Define implements Caller.
func (ec *evalContext) Define(name string, v Value) {
	ec.env.Put(name, v)
}

// Context implements Caller.
func (ec *evalContext) Context() context.Context {
	return ec.ctx
}

// evalUnary dispatches a prefix operator on its operand.
func (ec *evalContext) evalUnary(op string, v Value) (Value, error) {
	switch op {
	case "-":
		switch v.Kind {
		case ValueInt:
			return IntValue(-v.Int), nil

		case ValueFloat:
			return FloatValue(-v.Float), nil
		}

	case "not", "!":
		switch v.Kind {
		case ValueInt:
			return BoolValue(v.Int == 0), nil

		case ValueFloat:
			return BoolValue(v.Float == 0), nil

		case ValueBool:
			return BoolValue(!v.Bool), nil
		}
	}

	return Value{}, ErrTypeMismatch.
		With(
			slog.String("operator", op),
			slog.String("operand", v.Kind.String()),
		)
}

// evalBinary dispatches an infix operator on its evaluated operands.
func (ec *evalContext) evalBinary(op string, l, r Value) (Value, error) {
	switch op {
	case "+", "-", "*", "/", "//", "%", "mod", "**":
		return evalArithmetic(op, l, r)

	case "<", "<=", ">", ">=", "==", "!=":
		return evalComparison(op, l, r)

	case "and", "or":
		if l.Kind != ValueBool || r.Kind != ValueBool {
			return Value{}, ErrTypeMismatch.
				With(
					slog.String("operator", op),
					slog.String("left", l.Kind.String()),
					slog.String("right", r.Kind.String()),
				)
		}

		if op == "and" {
			return BoolValue(l.Bool && r.Bool), nil
		}

		return BoolValue(l.Bool || r.Bool), nil

	case "&", "|", "xor", "<<", ">>":
		return evalBitwise(op, l, r)
	}

	return Value{}, ErrInvalidOperation.
		With(slog.String("operator", op))
}

// evalArithmetic applies numeric operators with integer/float promotion.
func evalArithmetic(op string, l, r Value) (Value, error) {
	if !isNumeric(l) || !isNumeric(r) {
		return Value{}, ErrTypeMismatch.
			With(
				slog.String("operator", op),
				slog.String("left", l.Kind.String()),
				slog.String("right", r.Kind.String()),
			)
	}

	if l.Kind == ValueInt && r.Kind == ValueInt {
		return evalIntArithmetic(op, l.Int, r.Int)
	}

	return evalFloatArithmetic(op, asFloat(l), asFloat(r))
}

// evalIntArithmetic applies an operator to two integers. Division by /
// truncates; // floors; modulo follows the divisor's sign, matching the
// reference behavior.
func evalIntArithmetic(op string, a, b int64) (Value, error) {
	switch op {
	case "+":
		return IntValue(a + b), nil

	case "-":
		return IntValue(a - b), nil

	case "*":
		return IntValue(a * b), nil

	case "/":
		if b == 0 {
			return Value{}, ErrDivisionByZero
		}

		return IntValue(a / b), nil

	case "//":
		if b == 0 {
			return Value{}, ErrDivisionByZero
		}

		return IntValue(floorDivInt(a, b)), nil

	case "%", "mod":
		if b == 0 {
			return Value{}, ErrDivisionByZero
		}

		return IntValue(a - floorDivInt(a, b)*b), nil

	case "**":
		if b < 0 {
			// Negative exponents promote to float.
			return FloatValue(math.Pow(float64(a), float64(b))), nil
		}

		return IntValue(intPow(a, b)), nil
	}

	return Value{}, ErrInvalidOperation.
		With(slog.String("operator", op))
}

// evalFloatArithmetic applies an operator to two floats.
func evalFloatArithmetic(op string, a, b float64) (Value, error) {
	switch op {
	case "+":
		return FloatValue(a + b), nil

	case "-":
		return FloatValue(a - b), nil

	case "*":
		return FloatValue(a * b), nil

	case "/":
		if b == 0 {
			return Value{}, ErrDivisionByZero
		}

		return FloatValue(a / b), nil

	case "//":
		if b == 0 {
			return Value{}, ErrDivisionByZero
		}

		return FloatValue(math.Floor(a / b)), nil

	case "%", "mod":
		if b == 0 {
			return Value{}, ErrDivisionByZero
		}

		return FloatValue(a - math.Floor(a/b)*b), nil

	case "**":
		return FloatValue(math.Pow(a, b)), nil
	}

	return Value{}, ErrInvalidOperation.
		With(slog.String("operator", op))
}

// evalComparison compares two values: numerics (including booleans
// projected to 0/1 against numerics) after promotion, strings with
// strings and dates with dates by byte order. Anything else is a type
// error.
func evalComparison(op string, l, r Value) (Value, error) {
	var cmp int

	switch {
	case comparableNumerics(l, r):
		a, b := asFloat(l), asFloat(r)

		switch {
		case a < b:
			cmp = -1
		case a > b:
			cmp = 1
		}

	case l.Kind == ValueString && r.Kind == ValueString,
		l.Kind == ValueDate && r.Kind == ValueDate:
		switch {
		case l.Str < r.Str:
			cmp = -1
		case l.Str > r.Str:
			cmp = 1
		}

	default:
		return Value{}, ErrTypeMismatch.
			With(
				slog.String("operator", op),
				slog.String("left", l.Kind.String()),
				slog.String("right", r.Kind.String()),
			)
	}

	switch op {
	case "<":
		return BoolValue(cmp < 0), nil
	case "<=":
		return BoolValue(cmp <= 0), nil
	case ">":
		return BoolValue(cmp > 0), nil
	case ">=":
		return BoolValue(cmp >= 0), nil
	case "==":
		return BoolValue(cmp == 0), nil
	case "!=":
		return BoolValue(cmp != 0), nil
	}

	return Value{}, ErrInvalidOperation.
		With(slog.String("operator", op))
}

// evalBitwise applies integer-only bit operators. Shift amounts must be
// non-negative and are clamped to 63.
func evalBitwise(op string, l, r Value) (Value, error) {
	if l.Kind != ValueInt || r.Kind != ValueInt {
		return Value{}, ErrTypeMismatch.
			With(
				slog.String("operator", op),
				slog.String("left", l.Kind.String()),
				slog.String("right", r.Kind.String()),
			)
	}

	a, b := l.Int, r.Int

	switch op {
	case "&":
		return IntValue(a & b), nil

	case "|":
		return IntValue(a | b), nil

	case "xor":
		return IntValue(a ^ b), nil

	case "<<", ">>":
		if b < 0 {
			return Value{}, ErrInvalidOperation.
				With(
					slog.String("operator", op),
					slog.Int64("shift", b),
				)
		}

		if b > 63 {
			b = 63
		}

		if op == "<<" {
			return IntValue(a << uint(b)), nil
		}

		return IntValue(a >> uint(b)), nil
	}

	return Value{}, ErrInvalidOperation.
		With(slog.String("operator", op))
}

// isNumeric reports whether a value participates in arithmetic.
func isNumeric(v Value) bool {
	return v.Kind == ValueInt || v.Kind == ValueFloat
}

// comparableNumerics reports whether two values can be compared
// numerically. Booleans project to 0/1 against numerics and each other.
func comparableNumerics(l, r Value) bool {
	ok := func(v Value) bool {
		return isNumeric(v) || v.Kind == ValueBool
	}

	return ok(l) && ok(r)
}

// asFloat projects a numeric or boolean value to float64.
func asFloat(v Value) float64 {
	switch v.Kind {
	case ValueInt:
		return float64(v.Int)

	case ValueBool:
		if v.Bool {
			return 1
		}

		return 0

	default:
		return v.Float
	}
}

// floorDivInt is floored integer division: the quotient rounds toward
// negative infinity.
func floorDivInt(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}

	return q
}

// intPow raises a to the non-negative power b by binary exponentiation.
func intPow(a, b int64) int64 {
	result := int64(1)

	for b > 0 {
		if b&1 == 1 {
			result *= a
		}

		a *= a
		b >>= 1
	}

	return result
}
