package lang

import (
	"log/slog"
	"math"
	"sync"
)

// This file defines the registry of builtin functions and the constants
// table available to all expressions. Both are read-only after their
// lazy initialization and safely shareable across goroutines.
//
// Builtin names can be shadowed by environment bindings.

// BuiltinFunc is the signature shared by every registered builtin. The
// Caller lets higher-order builtins (list.map, list.filter, apply)
// invoke function values and lets def install bindings.
type BuiltinFunc func(c Caller, args []Value) (Value, error)

// Builtin is a named registry entry.
type Builtin struct {
	Name string
	Fn   BuiltinFunc
}

// Private singleton tables.
//
//nolint:gochecknoglobals
var (
	registryOnce sync.Once
	registry     map[string]*Builtin
	constants    map[string]Value
)

// makeRegistry populates the builtin and constants tables exactly once.
func makeRegistry() {
	registryOnce.Do(func() {
		registry = make(map[string]*Builtin)

		for name, fn := range map[string]BuiltinFunc{
			// Type conversions.
			"int":   builtinInt,
			"float": builtinFloat,
			"bool":  builtinBool,

			// Math.
			"min":      builtinMin,
			"max":      builtinMax,
			"abs":      builtinAbs,
			"floor":    builtinFloor,
			"ceil":     builtinCeil,
			"sqrt":     floatFunc("sqrt", math.Sqrt),
			"log":      floatFunc("log", math.Log),
			"log1p":    floatFunc("log1p", math.Log1p),
			"log2":     floatFunc("log2", math.Log2),
			"log10":    floatFunc("log10", math.Log10),
			"exp":      floatFunc("exp", math.Exp),
			"sin":      floatFunc("sin", math.Sin),
			"cos":      floatFunc("cos", math.Cos),
			"tan":      floatFunc("tan", math.Tan),
			"asin":     floatFunc("asin", math.Asin),
			"acos":     floatFunc("acos", math.Acos),
			"atan":     floatFunc("atan", math.Atan),
			"degrees":  floatFunc("degrees", func(x float64) float64 { return x * 180 / math.Pi }),
			"radians":  floatFunc("radians", func(x float64) float64 { return x * math.Pi / 180 }),
			"gcd":      builtinGCD,
			"isqrt":    builtinIsqrt,
			"mean":     builtinMean,
			"median":   builtinMedian,
			"stdev":    builtinStdev,
			"variance": builtinVariance,

			// Strings.
			"str.concat":     builtinStrConcat,
			"str.length":     builtinStrLength,
			"str.substring":  builtinStrSubstring,
			"str.replace":    builtinStrReplace,
			"str.toUpper":    builtinStrToUpper,
			"str.toLower":    builtinStrToLower,
			"str.trim":       builtinStrTrim,
			"str.split":      builtinStrSplit,
			"str.indexOf":    builtinStrIndexOf,
			"str.contains":   builtinStrContains,
			"str.startsWith": builtinStrStartsWith,
			"str.endsWith":   builtinStrEndsWith,
			"str.format":     builtinStrFormat,

			// Lists.
			"list.length": builtinListLength,
			"list.get":    builtinListGet,
			"list.put":    builtinListPut,
			"list.append": builtinListAppend,
			"list.concat": builtinListConcat,
			"list.slice":  builtinListSlice,
			"list.map":    builtinListMap,
			"list.filter": builtinListFilter,
			"apply":       builtinApply,

			// User-defined functions.
			"def": builtinDef,
		} {
			registry[name] = &Builtin{Name: name, Fn: fn}
		}

		constants = map[string]Value{
			"pi":    FloatValue(math.Pi),
			"e":     FloatValue(math.E),
			"tau":   FloatValue(2 * math.Pi),
			"inf":   FloatValue(math.Inf(1)),
			"nan":   FloatValue(math.NaN()),
			"true":  BoolValue(true),
			"false": BoolValue(false),
			"empty": ListValue(nil),
		}
	})
}

// builtinFunc looks up a registry entry by name.
func builtinFunc(name string) (*Builtin, bool) {
	makeRegistry()

	b, ok := registry[name]

	return b, ok
}

// constantValue looks up a constant by name.
func constantValue(name string) (Value, bool) {
	makeRegistry()

	v, ok := constants[name]

	return v, ok
}

// BuiltinNames returns the registered builtin and constant names in
// unspecified order. Used by completion.
func BuiltinNames() []string {
	makeRegistry()

	names := make([]string, 0, len(registry)+len(constants))

	for name := range registry {
		names = append(names, name)
	}

	for name := range constants {
		names = append(names, name)
	}

	return names
}

// ---------------------------------------------------------------------------
// Argument helpers
// ---------------------------------------------------------------------------

// wantArgs checks an exact argument count.
func wantArgs(name string, args []Value, n int) error {
	if len(args) != n {
		return ErrArgumentCount.
			With(
				slog.String("function", name),
				slog.Int("expected", n),
				slog.Int("got", len(args)),
			)
	}

	return nil
}

// wantAtLeast checks a minimum argument count.
func wantAtLeast(name string, args []Value, n int) error {
	if len(args) < n {
		return ErrArgumentCount.
			With(
				slog.String("function", name),
				slog.Int("expected_at_least", n),
				slog.Int("got", len(args)),
			)
	}

	return nil
}

// wantNumeric extracts a float projection or reports a type error.
func wantNumeric(name string, v Value) (float64, error) {
	if !isNumeric(v) {
		return 0, ErrTypeMismatch.
			With(
				slog.String("function", name),
				slog.String("operand", v.Kind.String()),
			)
	}

	return asFloat(v), nil
}

// wantInt extracts an integer or reports a type error.
func wantInt(name string, v Value) (int64, error) {
	if v.Kind != ValueInt {
		return 0, ErrTypeMismatch.
			With(
				slog.String("function", name),
				slog.String("operand", v.Kind.String()),
			)
	}

	return v.Int, nil
}

// wantString extracts a string or reports a type error.
func wantString(name string, v Value) (string, error) {
	if v.Kind != ValueString {
		return "", ErrTypeMismatch.
			With(
				slog.String("function", name),
				slog.String("operand", v.Kind.String()),
			)
	}

	return v.Str, nil
}

// wantList extracts a list or reports a type error.
func wantList(name string, v Value) ([]Value, error) {
	if v.Kind != ValueList {
		return nil, ErrTypeMismatch.
			With(
				slog.String("function", name),
				slog.String("operand", v.Kind.String()),
			)
	}

	return v.List, nil
}

// wantFunc checks the value is callable.
func wantFunc(name string, v Value) error {
	if v.Kind != ValueBuiltin && v.Kind != ValueFunc {
		return ErrTypeMismatch.
			With(
				slog.String("function", name),
				slog.String("operand", v.Kind.String()),
			)
	}

	return nil
}

// ---------------------------------------------------------------------------
// Type conversions
// ---------------------------------------------------------------------------

// builtinInt truncates toward zero.
func builtinInt(_ Caller, args []Value) (Value, error) {
	if err := wantArgs("int", args, 1); err != nil {
		return Value{}, err
	}

	switch args[0].Kind {
	case ValueInt:
		return args[0], nil

	case ValueFloat:
		return IntValue(int64(math.Trunc(args[0].Float))), nil
	}

	return Value{}, ErrTypeMismatch.
		With(
			slog.String("function", "int"),
			slog.String("operand", args[0].Kind.String()),
		)
}

func builtinFloat(_ Caller, args []Value) (Value, error) {
	if err := wantArgs("float", args, 1); err != nil {
		return Value{}, err
	}

	f, err := wantNumeric("float", args[0])
	if err != nil {
		return Value{}, err
	}

	return FloatValue(f), nil
}

func builtinBool(_ Caller, args []Value) (Value, error) {
	if err := wantArgs("bool", args, 1); err != nil {
		return Value{}, err
	}

	f, err := wantNumeric("bool", args[0])
	if err != nil {
		return Value{}, err
	}

	return BoolValue(f != 0), nil
}

// ---------------------------------------------------------------------------
// User-defined functions
// ---------------------------------------------------------------------------

// builtinDef installs a user function into the enclosing environment:
// def(name, arg_list, body_string). The body is parsed once here; the
// resulting tree is held by the function value for later calls.
func builtinDef(c Caller, args []Value) (Value, error) {
	if err := wantArgs("def", args, 3); err != nil {
		return Value{}, err
	}

	name, err := wantString("def", args[0])
	if err != nil {
		return Value{}, err
	}

	paramList, err := wantList("def", args[1])
	if err != nil {
		return Value{}, err
	}

	params := make([]string, len(paramList))

	for i, p := range paramList {
		params[i], err = wantString("def", p)
		if err != nil {
			return Value{}, err
		}
	}

	body, err := wantString("def", args[2])
	if err != nil {
		return Value{}, err
	}

	tree, err := ParseToTree(c.Context(), body)
	if err != nil {
		return Value{}, WrapError(err).
			With(slog.String("function", name))
	}

	fn := Value{
		Kind: ValueFunc,
		Func: &FuncDef{Name: name, Params: params, Body: tree},
	}

	c.Define(name, fn)

	return fn, nil
}

// builtinApply calls a function value with a list of arguments.
func builtinApply(c Caller, args []Value) (Value, error) {
	if err := wantArgs("apply", args, 2); err != nil {
		return Value{}, err
	}

	if err := wantFunc("apply", args[0]); err != nil {
		return Value{}, err
	}

	callArgs, err := wantList("apply", args[1])
	if err != nil {
		return Value{}, err
	}

	return c.Call(args[0], callArgs)
}
