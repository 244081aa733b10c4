package lang

import (
	"errors"
	"math"
	"testing"
)

// evalOne parses and evaluates an expression against an optional env.
func evalOne(t *testing.T, input string, env *Env) Value {
	t.Helper()

	v, err := EvalString(t.Context(), input, env)
	if err != nil {
		t.Fatalf("evaluate error for %q: %v", input, err)
	}

	return v
}

// evalErr parses and evaluates, expecting failure.
func evalErr(t *testing.T, input string) error {
	t.Helper()

	_, err := EvalString(t.Context(), input, nil)
	if err == nil {
		t.Fatalf("expected error for %q, got none", input)
	}

	return err
}

func wantInt64(t *testing.T, v Value, want int64) {
	t.Helper()

	if v.Kind != ValueInt || v.Int != want {
		t.Errorf("expected integer %d, got %s %s", want, v.Kind, v)
	}
}

func wantFloat64(t *testing.T, v Value, want float64) {
	t.Helper()

	if v.Kind != ValueFloat || v.Float != want {
		t.Errorf("expected float %v, got %s %s", want, v.Kind, v)
	}
}

func wantBoolean(t *testing.T, v Value, want bool) {
	t.Helper()

	if v.Kind != ValueBool || v.Bool != want {
		t.Errorf("expected boolean %v, got %s %s", want, v.Kind, v)
	}
}

func TestEvaluate_Arithmetic(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"5 + 3 * 2", 11},
		{"(5 + 3) * 2", 16},
		{"2 * (3 + 4) - 5", 9},
		{"10 / 3", 3},
		{"7 // 2", 3},
		{"7 % 3", 1},
		{"7 mod 3", 1},
		{"2 ** 3", 8},
		{"-7 // 2", -4},   // floor division rounds down
		{"-7 % 3", 2},     // modulo follows divisor sign
		{"10 / -3", -3},   // integer division truncates
		{"2 ** 3 ** 2", 64}, // left-associative exponentiation
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			wantInt64(t, evalOne(t, tt.input, nil), tt.want)
		})
	}
}

func TestEvaluate_FloatPromotion(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"1 + 2.5", 3.5},
		{"7.0 / 2", 3.5},
		{"2.5 * 2", 5.0},
		{"7.0 // 2", 3.0},
		{"2 ** -1", 0.5},
		{"1.5 ** 2", 2.25},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			wantFloat64(t, evalOne(t, tt.input, nil), tt.want)
		})
	}
}

// TestEvaluate_IntegerClosure verifies that expressions containing no
// floats evaluate to integers.
func TestEvaluate_IntegerClosure(t *testing.T) {
	inputs := []string{
		"1 + 2 - 3 * 4",
		"(10 // 3) % 4 ** 2",
		"1 << 3 >> 2",
		"abs(-5) + min(1, 2)",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			v := evalOne(t, input, nil)
			if v.Kind != ValueInt {
				t.Errorf("expected integer result, got %s", v.Kind)
			}
		})
	}
}

func TestEvaluate_Comparisons(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"5 > 3", true},
		{"(5 > 3) and (2 < 4)", true},
		{"not (5 < 3)", true},
		{"1 == 1.0", true},
		{"1 != 2", true},
		{"'abc' < 'def'", true},
		{"'abc' == 'abc'", true},
		{"d'2023-01-01' < d'2023-12-31'", true},
		{"d'2023-01-01' == d'2023-01-01'", true},
		{"true == 1", true},  // booleans compare as 0/1 against numerics
		{"false < 0.5", true},
		{"true > false", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			wantBoolean(t, evalOne(t, tt.input, nil), tt.want)
		})
	}
}

func TestEvaluate_UnaryOperators(t *testing.T) {
	wantInt64(t, evalOne(t, "-(3 + 4)", nil), -7)
	wantFloat64(t, evalOne(t, "-2.5", nil), -2.5)
	wantBoolean(t, evalOne(t, "!0", nil), true)
	wantBoolean(t, evalOne(t, "!5", nil), false)
	wantBoolean(t, evalOne(t, "not 0.0", nil), true)
	wantBoolean(t, evalOne(t, "not true", nil), false)
}

func TestEvaluate_Logical(t *testing.T) {
	wantBoolean(t, evalOne(t, "true and false", nil), false)
	wantBoolean(t, evalOne(t, "true or false", nil), true)

	// No short-circuit: the right operand always evaluates, so a failing
	// operand fails the whole expression even when the left side decides.
	err := evalErr(t, "true or (1 / 0 == 0)")
	if !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("expected ErrDivisionByZero, got %v", err)
	}

	// Non-boolean operands are rejected.
	err = evalErr(t, "1 and 2")
	if !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("expected ErrTypeMismatch, got %v", err)
	}
}

func TestEvaluate_Bitwise(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"12 & 10", 8},
		{"12 | 10", 14},
		{"12 xor 10", 6},
		{"1 << 4", 16},
		{"256 >> 4", 16},
		{"1 << 100", math.MinInt64}, // shift clamps to 63
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			wantInt64(t, evalOne(t, tt.input, nil), tt.want)
		})
	}

	err := evalErr(t, "1 << -2")
	if !errors.Is(err, ErrInvalidOperation) {
		t.Fatalf("expected ErrInvalidOperation, got %v", err)
	}

	err = evalErr(t, "1.5 | 2")
	if !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("expected ErrTypeMismatch, got %v", err)
	}
}

func TestEvaluate_Lists(t *testing.T) {
	v := evalOne(t, "[1, 2 + 3, 4 * 2]", nil)

	if v.Kind != ValueList || len(v.List) != 3 {
		t.Fatalf("expected 3-element list, got %s", v)
	}

	for i, want := range []int64{1, 5, 8} {
		wantInt64(t, v.List[i], want)
	}

	empty := evalOne(t, "[]", nil)
	if empty.Kind != ValueList || len(empty.List) != 0 {
		t.Fatalf("expected empty list, got %s", empty)
	}
}

func TestEvaluate_Identifiers(t *testing.T) {
	env := NewEnv()
	env.Put("x", IntValue(10))
	env.Put("name", StringValue("world"))

	wantInt64(t, evalOne(t, "x + 1", env), 11)
	wantBoolean(t, evalOne(t, "name == 'world'", env), true)

	// Constants resolve after the environment.
	v := evalOne(t, "pi", nil)
	wantFloat64(t, v, math.Pi)

	wantBoolean(t, evalOne(t, "true", nil), true)

	empty := evalOne(t, "empty", nil)
	if empty.Kind != ValueList || len(empty.List) != 0 {
		t.Fatalf("expected empty list constant, got %s", empty)
	}
}

func TestEvaluate_Errors(t *testing.T) {
	tests := []struct {
		input string
		want  error
	}{
		{"1 / 0", ErrDivisionByZero},
		{"1 // 0", ErrDivisionByZero},
		{"1 % 0", ErrDivisionByZero},
		{"1.0 / 0", ErrDivisionByZero},
		{"x + 1", ErrUndefinedIdentifier},
		{"nosuch(1)", ErrUndefinedIdentifier},
		{"'a' + 1", ErrTypeMismatch},
		{"'a' - 'b'", ErrTypeMismatch},
		{"'a' < 1", ErrTypeMismatch},
		{"d'2023-01-01' == '2023-01-01'", ErrTypeMismatch},
		{"-'a'", ErrTypeMismatch},
		{"not 'a'", ErrTypeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := evalErr(t, tt.input)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

// TestEvaluate_TreeReuse verifies a parse tree is pure data reusable
// across evaluations with different environments.
func TestEvaluate_TreeReuse(t *testing.T) {
	tree, err := ParseToTree(t.Context(), "x * x")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	for _, x := range []int64{2, 3, 4} {
		env := NewEnv()
		env.Put("x", IntValue(x))

		v, err := Evaluate(t.Context(), tree, env)
		if err != nil {
			t.Fatalf("evaluate error: %v", err)
		}

		wantInt64(t, v, x*x)
	}
}

func TestEvaluate_ArgumentOrder(t *testing.T) {
	// Arguments evaluate left-to-right: the first failing argument
	// reports its own error before the call resolves.
	err := evalErr(t, "min(1 / 0, nosuch)")
	if !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("expected ErrDivisionByZero, got %v", err)
	}
}

func TestEvaluate_MaxDepth(t *testing.T) {
	env := NewEnv()

	_, err := EvalString(
		t.Context(),
		"def('loop', ['x'], 'loop(x)')",
		env,
	)
	if err != nil {
		t.Fatalf("def error: %v", err)
	}

	_, err = EvalString(t.Context(), "loop(1)", env, WithMaxDepth(64))
	if !errors.Is(err, ErrMaxDepthExceeded) {
		t.Fatalf("expected ErrMaxDepthExceeded, got %v", err)
	}
}
