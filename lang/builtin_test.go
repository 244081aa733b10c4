package lang

import (
	"errors"
	"math"
	"testing"
)

func TestBuiltin_Conversions(t *testing.T) {
	wantInt64(t, evalOne(t, "int(3.9)", nil), 3)
	wantInt64(t, evalOne(t, "int(-3.9)", nil), -3) // truncates toward zero
	wantInt64(t, evalOne(t, "int(7)", nil), 7)
	wantFloat64(t, evalOne(t, "float(7)", nil), 7.0)
	wantBoolean(t, evalOne(t, "bool(0)", nil), false)
	wantBoolean(t, evalOne(t, "bool(0.5)", nil), true)

	err := evalErr(t, "int('3')")
	if !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("expected ErrTypeMismatch, got %v", err)
	}
}

func TestBuiltin_MinMaxPreserveKind(t *testing.T) {
	wantInt64(t, evalOne(t, "min(5, 3)", nil), 3)
	wantInt64(t, evalOne(t, "max(5, 3)", nil), 5)
	wantFloat64(t, evalOne(t, "max(5.14, 3)", nil), 5.14)
	wantFloat64(t, evalOne(t, "min(2.5, 7)", nil), 2.5)
	wantInt64(t, evalOne(t, "min(2, 7.5)", nil), 2)
	wantInt64(t, evalOne(t, "max(1, 2, 3, 4)", nil), 4)

	err := evalErr(t, "min()")
	if !errors.Is(err, ErrArgumentCount) {
		t.Fatalf("expected ErrArgumentCount, got %v", err)
	}
}

func TestBuiltin_Rounding(t *testing.T) {
	wantInt64(t, evalOne(t, "abs(-42)", nil), 42)
	wantFloat64(t, evalOne(t, "abs(-4.2)", nil), 4.2)
	wantFloat64(t, evalOne(t, "floor(3.7)", nil), 3.0)
	wantFloat64(t, evalOne(t, "ceil(3.2)", nil), 4.0)
	wantInt64(t, evalOne(t, "floor(3)", nil), 3)
	wantInt64(t, evalOne(t, "ceil(3)", nil), 3)
}

func wantNear(t *testing.T, v Value, want float64) {
	t.Helper()

	if v.Kind != ValueFloat || math.Abs(v.Float-want) > 1e-12 {
		t.Errorf("expected float near %v, got %s %s", want, v.Kind, v)
	}
}

func TestBuiltin_MathFunctions(t *testing.T) {
	wantFloat64(t, evalOne(t, "sqrt(16)", nil), 4.0)
	wantNear(t, evalOne(t, "log(e)", nil), 1.0)
	wantFloat64(t, evalOne(t, "log2(8)", nil), 3.0)
	wantNear(t, evalOne(t, "log10(1000)", nil), 3.0)
	wantFloat64(t, evalOne(t, "exp(0)", nil), 1.0)
	wantFloat64(t, evalOne(t, "sin(0)", nil), 0.0)
	wantFloat64(t, evalOne(t, "cos(0)", nil), 1.0)
	wantNear(t, evalOne(t, "degrees(pi)", nil), 180.0)
	wantNear(t, evalOne(t, "radians(180)", nil), math.Pi)
	wantInt64(t, evalOne(t, "gcd(12, 18)", nil), 6)
	wantInt64(t, evalOne(t, "isqrt(17)", nil), 4)
}

func TestBuiltin_Statistics(t *testing.T) {
	wantFloat64(t, evalOne(t, "mean(1, 2, 3, 4)", nil), 2.5)
	wantFloat64(t, evalOne(t, "median(1, 3, 2)", nil), 2.0)
	wantFloat64(t, evalOne(t, "median(1, 2, 3, 4)", nil), 2.5)
	wantFloat64(t, evalOne(t, "variance(2, 4, 6)", nil), 4.0)
	wantFloat64(t, evalOne(t, "stdev(2, 4, 6)", nil), 2.0)
}

func TestBuiltin_Constants(t *testing.T) {
	wantFloat64(t, evalOne(t, "tau", nil), 2*math.Pi)

	v := evalOne(t, "inf", nil)
	if !math.IsInf(v.Float, 1) {
		t.Errorf("expected +inf, got %v", v.Float)
	}

	v = evalOne(t, "nan", nil)
	if !math.IsNaN(v.Float) {
		t.Errorf("expected NaN, got %v", v.Float)
	}
}

func wantStr(t *testing.T, v Value, want string) {
	t.Helper()

	if v.Kind != ValueString || v.Str != want {
		t.Errorf("expected string %q, got %s %s", want, v.Kind, v)
	}
}

func TestBuiltin_StringConcat(t *testing.T) {
	wantStr(
		t,
		evalOne(t, "str.concat('n=', 42, ' f=', 2.5, ' b=', true)", nil),
		"n=42 f=2.5 b=true",
	)
}

func TestBuiltin_StringLength(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"str.length('')", 0},
		{"str.length('abc')", 3},
		{"str.length('héllo')", 5},  // one code unit per BMP rune
		{"str.length('a\U0001F600')", 3}, // surrogate pair counts twice
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			wantInt64(t, evalOne(t, tt.input, nil), tt.want)
		})
	}
}

func TestBuiltin_Substring(t *testing.T) {
	wantStr(t, evalOne(t, "str.substring('hello', 1, 3)", nil), "el")
	wantStr(t, evalOne(t, "str.substring('hello', 0, 5)", nil), "hello")
	wantStr(t, evalOne(t, "str.substring('hello', 2, 2)", nil), "")

	for _, input := range []string{
		"str.substring('hello', -1, 3)",
		"str.substring('hello', 3, 1)",
		"str.substring('hello', 0, 6)",
	} {
		t.Run(input, func(t *testing.T) {
			err := evalErr(t, input)
			if !errors.Is(err, ErrInvalidOperation) {
				t.Fatalf("expected ErrInvalidOperation, got %v", err)
			}
		})
	}
}

func TestBuiltin_StringTransforms(t *testing.T) {
	wantStr(t, evalOne(t, "str.replace('aXbXc', 'X', '-')", nil), "a-b-c")
	wantStr(t, evalOne(t, "str.toUpper('abc-é')", nil), "ABC-é")
	wantStr(t, evalOne(t, "str.toLower('ABC-É')", nil), "abc-É")
	wantStr(t, evalOne(t, "str.trim('  hi\t')", nil), "hi")
	wantStr(t, evalOne(t, "str.format('{} + {} = {}', 1, 2, 3)", nil), "1 + 2 = 3")
}

func TestBuiltin_StringPredicates(t *testing.T) {
	wantInt64(t, evalOne(t, "str.indexOf('hello', 'll')", nil), 2)
	wantInt64(t, evalOne(t, "str.indexOf('hello', 'z')", nil), -1)
	wantBoolean(t, evalOne(t, "str.contains('hello', 'ell')", nil), true)
	wantBoolean(t, evalOne(t, "str.startsWith('hello', 'he')", nil), true)
	wantBoolean(t, evalOne(t, "str.endsWith('hello', 'lo')", nil), true)
	wantBoolean(t, evalOne(t, "str.endsWith('hello', 'he')", nil), false)
}

func TestBuiltin_StringSplit(t *testing.T) {
	v := evalOne(t, "str.split('a,b,c', ',')", nil)

	if v.Kind != ValueList || len(v.List) != 3 {
		t.Fatalf("expected 3-element list, got %s", v)
	}

	for i, want := range []string{"a", "b", "c"} {
		wantStr(t, v.List[i], want)
	}
}

func TestBuiltin_ListAccess(t *testing.T) {
	wantInt64(t, evalOne(t, "list.get([1, 2, 3], 1)", nil), 2)
	wantInt64(t, evalOne(t, "list.length([1, 2, 3])", nil), 3)
	wantInt64(t, evalOne(t, "list.length([])", nil), 0)

	err := evalErr(t, "list.get([1, 2, 3], 3)")
	if !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}

	err = evalErr(t, "list.get([1, 2, 3], -1)")
	if !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

// TestBuiltin_ListAppend verifies the append property: length grows by
// one and the last element equals the appended value.
func TestBuiltin_ListAppend(t *testing.T) {
	v := evalOne(t, "list.append([1, 2], [3, 4])", nil)

	if len(v.List) != 3 {
		t.Fatalf("expected length 3, got %d", len(v.List))
	}

	last := v.List[2]
	if !last.Equal(ListValue([]Value{IntValue(3), IntValue(4)})) {
		t.Errorf("unexpected last element: %s", last)
	}

	// Appending never mutates the source list.
	env := NewEnv()
	env.Put("l", ListValue([]Value{IntValue(1)}))

	_ = evalOne(t, "list.append(l, 2)", env)

	l, _ := env.Get("l")
	if len(l.List) != 1 {
		t.Errorf("source list mutated: %s", l)
	}
}

func TestBuiltin_ListPut(t *testing.T) {
	v := evalOne(t, "list.put([1, 2, 3], 1, 9)", nil)

	for i, want := range []int64{1, 9, 3} {
		wantInt64(t, v.List[i], want)
	}

	err := evalErr(t, "list.put([1], 1, 9)")
	if !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestBuiltin_ListConcatSlice(t *testing.T) {
	v := evalOne(t, "list.concat([1], [2, 3], [])", nil)

	if len(v.List) != 3 {
		t.Fatalf("expected length 3, got %d", len(v.List))
	}

	v = evalOne(t, "list.slice([1, 2, 3, 4], 1, 3)", nil)

	for i, want := range []int64{2, 3} {
		wantInt64(t, v.List[i], want)
	}

	err := evalErr(t, "list.slice([1, 2], 1, 5)")
	if !errors.Is(err, ErrInvalidOperation) {
		t.Fatalf("expected ErrInvalidOperation, got %v", err)
	}
}

func TestBuiltin_DefAndCall(t *testing.T) {
	env := NewEnv()

	_, err := EvalString(
		t.Context(),
		"def('double', ['x'], 'x * 2')",
		env,
	)
	if err != nil {
		t.Fatalf("def error: %v", err)
	}

	wantInt64(t, evalOne(t, "double(21)", env), 42)

	// Parameters bind in a child scope and do not leak.
	_, err = EvalString(t.Context(), "x", env)
	if !errors.Is(err, ErrUndefinedIdentifier) {
		t.Fatalf("expected ErrUndefinedIdentifier, got %v", err)
	}

	// Wrong arity is rejected.
	_, err = EvalString(t.Context(), "double(1, 2)", env)
	if !errors.Is(err, ErrArgumentCount) {
		t.Fatalf("expected ErrArgumentCount, got %v", err)
	}
}

func TestBuiltin_MapFilter(t *testing.T) {
	env := NewEnv()

	_, err := EvalString(
		t.Context(),
		"def('double', ['x'], 'x * 2')",
		env,
	)
	if err != nil {
		t.Fatalf("def error: %v", err)
	}

	_, err = EvalString(
		t.Context(),
		"def('big', ['x'], 'x > 2')",
		env,
	)
	if err != nil {
		t.Fatalf("def error: %v", err)
	}

	v := evalOne(t, "list.map([1, 2, 3], double)", env)
	for i, want := range []int64{2, 4, 6} {
		wantInt64(t, v.List[i], want)
	}

	v = evalOne(t, "list.filter([1, 2, 3, 4], big)", env)

	if len(v.List) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(v.List))
	}

	for i, want := range []int64{3, 4} {
		wantInt64(t, v.List[i], want)
	}

	// A predicate that returns a non-boolean is a type error.
	_, err = EvalString(t.Context(), "list.filter([1], double)", env)
	if !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("expected ErrTypeMismatch, got %v", err)
	}
}

func TestBuiltin_MapWithBuiltinValue(t *testing.T) {
	// Builtins are first-class: an identifier referencing one can be
	// passed to higher-order functions.
	v := evalOne(t, "list.map([1.9, 2.1], floor)", nil)

	wantFloat64(t, v.List[0], 1.0)
	wantFloat64(t, v.List[1], 2.0)
}

func TestBuiltin_Apply(t *testing.T) {
	wantInt64(t, evalOne(t, "apply(min, [5, 3, 9])", nil), 3)

	env := NewEnv()

	_, err := EvalString(
		t.Context(),
		"def('add', ['a', 'b'], 'a + b')",
		env,
	)
	if err != nil {
		t.Fatalf("def error: %v", err)
	}

	wantInt64(t, evalOne(t, "apply(add, [20, 22])", env), 42)
}
