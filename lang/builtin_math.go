package lang

import (
	"log/slog"
	"math"
	"sort"
)

// floatFunc adapts a one-argument float function into a builtin that
// accepts any numeric and returns a float.
func floatFunc(name string, fn func(float64) float64) BuiltinFunc {
	return func(_ Caller, args []Value) (Value, error) {
		if err := wantArgs(name, args, 1); err != nil {
			return Value{}, err
		}

		f, err := wantNumeric(name, args[0])
		if err != nil {
			return Value{}, err
		}

		return FloatValue(fn(f)), nil
	}
}

// builtinMin returns the original argument whose float projection is
// minimal, preserving integer type when the winner is an integer.
func builtinMin(_ Caller, args []Value) (Value, error) {
	return pickExtreme("min", args, func(a, b float64) bool { return a < b })
}

// builtinMax returns the original argument whose float projection is
// maximal.
func builtinMax(_ Caller, args []Value) (Value, error) {
	return pickExtreme("max", args, func(a, b float64) bool { return a > b })
}

// pickExtreme scans variadic numeric arguments for the first winner
// under the given ordering.
func pickExtreme(
	name string,
	args []Value,
	wins func(a, b float64) bool,
) (Value, error) {
	if err := wantAtLeast(name, args, 1); err != nil {
		return Value{}, err
	}

	best := args[0]

	bestF, err := wantNumeric(name, best)
	if err != nil {
		return Value{}, err
	}

	for _, arg := range args[1:] {
		f, err := wantNumeric(name, arg)
		if err != nil {
			return Value{}, err
		}

		if wins(f, bestF) {
			best, bestF = arg, f
		}
	}

	return best, nil
}

// builtinAbs preserves the numeric kind of its input.
func builtinAbs(_ Caller, args []Value) (Value, error) {
	if err := wantArgs("abs", args, 1); err != nil {
		return Value{}, err
	}

	switch args[0].Kind {
	case ValueInt:
		if args[0].Int < 0 {
			return IntValue(-args[0].Int), nil
		}

		return args[0], nil

	case ValueFloat:
		return FloatValue(math.Abs(args[0].Float)), nil
	}

	return Value{}, ErrTypeMismatch.
		With(
			slog.String("function", "abs"),
			slog.String("operand", args[0].Kind.String()),
		)
}

// builtinFloor is the identity on integers and math.Floor on floats.
func builtinFloor(_ Caller, args []Value) (Value, error) {
	return roundToward("floor", args, math.Floor)
}

// builtinCeil is the identity on integers and math.Ceil on floats.
func builtinCeil(_ Caller, args []Value) (Value, error) {
	return roundToward("ceil", args, math.Ceil)
}

func roundToward(
	name string,
	args []Value,
	round func(float64) float64,
) (Value, error) {
	if err := wantArgs(name, args, 1); err != nil {
		return Value{}, err
	}

	switch args[0].Kind {
	case ValueInt:
		return args[0], nil

	case ValueFloat:
		return FloatValue(round(args[0].Float)), nil
	}

	return Value{}, ErrTypeMismatch.
		With(
			slog.String("function", name),
			slog.String("operand", args[0].Kind.String()),
		)
}

// builtinGCD computes the greatest common divisor of two integers.
func builtinGCD(_ Caller, args []Value) (Value, error) {
	if err := wantArgs("gcd", args, 2); err != nil {
		return Value{}, err
	}

	a, err := wantInt("gcd", args[0])
	if err != nil {
		return Value{}, err
	}

	b, err := wantInt("gcd", args[1])
	if err != nil {
		return Value{}, err
	}

	if a < 0 {
		a = -a
	}

	if b < 0 {
		b = -b
	}

	for b != 0 {
		a, b = b, a%b
	}

	return IntValue(a), nil
}

// builtinIsqrt computes the integer square root of a non-negative
// integer.
func builtinIsqrt(_ Caller, args []Value) (Value, error) {
	if err := wantArgs("isqrt", args, 1); err != nil {
		return Value{}, err
	}

	n, err := wantInt("isqrt", args[0])
	if err != nil {
		return Value{}, err
	}

	if n < 0 {
		return Value{}, ErrInvalidOperation.
			With(
				slog.String("function", "isqrt"),
				slog.Int64("operand", n),
			)
	}

	r := int64(math.Sqrt(float64(n)))

	// Correct the float approximation at the boundaries.
	for r*r > n {
		r--
	}

	for (r+1)*(r+1) <= n {
		r++
	}

	return IntValue(r), nil
}

// builtinMean returns the float average of its arguments.
func builtinMean(_ Caller, args []Value) (Value, error) {
	sum, err := floatArgs("mean", args, 1)
	if err != nil {
		return Value{}, err
	}

	total := 0.0
	for _, f := range sum {
		total += f
	}

	return FloatValue(total / float64(len(sum))), nil
}

// builtinMedian returns the middle of the sorted float projections, or
// the average of the two middles for an even count.
func builtinMedian(_ Caller, args []Value) (Value, error) {
	fs, err := floatArgs("median", args, 1)
	if err != nil {
		return Value{}, err
	}

	sort.Float64s(fs)

	mid := len(fs) / 2
	if len(fs)%2 == 1 {
		return FloatValue(fs[mid]), nil
	}

	return FloatValue((fs[mid-1] + fs[mid]) / 2), nil
}

// builtinStdev returns the sample standard deviation.
func builtinStdev(c Caller, args []Value) (Value, error) {
	v, err := builtinVariance(c, args)
	if err != nil {
		return Value{}, err
	}

	return FloatValue(math.Sqrt(v.Float)), nil
}

// builtinVariance returns the sample variance (n-1 denominator).
func builtinVariance(_ Caller, args []Value) (Value, error) {
	fs, err := floatArgs("variance", args, 2)
	if err != nil {
		return Value{}, err
	}

	mean := 0.0
	for _, f := range fs {
		mean += f
	}

	mean /= float64(len(fs))

	sum := 0.0

	for _, f := range fs {
		d := f - mean
		sum += d * d
	}

	return FloatValue(sum / float64(len(fs)-1)), nil
}

// floatArgs projects variadic numeric arguments to floats.
func floatArgs(name string, args []Value, minCount int) ([]float64, error) {
	if err := wantAtLeast(name, args, minCount); err != nil {
		return nil, err
	}

	fs := make([]float64, len(args))

	for i, arg := range args {
		f, err := wantNumeric(name, arg)
		if err != nil {
			return nil, err
		}

		fs[i] = f
	}

	return fs, nil
}
