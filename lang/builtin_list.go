package lang

import (
	"log/slog"
)

func builtinListLength(_ Caller, args []Value) (Value, error) {
	if err := wantArgs("list.length", args, 1); err != nil {
		return Value{}, err
	}

	l, err := wantList("list.length", args[0])
	if err != nil {
		return Value{}, err
	}

	return IntValue(int64(len(l))), nil
}

func builtinListGet(_ Caller, args []Value) (Value, error) {
	if err := wantArgs("list.get", args, 2); err != nil {
		return Value{}, err
	}

	l, err := wantList("list.get", args[0])
	if err != nil {
		return Value{}, err
	}

	i, err := indexArg("list.get", args[1], len(l))
	if err != nil {
		return Value{}, err
	}

	return l[i], nil
}

// builtinListPut returns a new list with the element at the index
// replaced.
func builtinListPut(_ Caller, args []Value) (Value, error) {
	if err := wantArgs("list.put", args, 3); err != nil {
		return Value{}, err
	}

	l, err := wantList("list.put", args[0])
	if err != nil {
		return Value{}, err
	}

	i, err := indexArg("list.put", args[1], len(l))
	if err != nil {
		return Value{}, err
	}

	elems := make([]Value, len(l))
	copy(elems, l)
	elems[i] = args[2]

	return ListValue(elems), nil
}

// builtinListAppend returns a new list with the value appended.
func builtinListAppend(_ Caller, args []Value) (Value, error) {
	if err := wantArgs("list.append", args, 2); err != nil {
		return Value{}, err
	}

	l, err := wantList("list.append", args[0])
	if err != nil {
		return Value{}, err
	}

	elems := make([]Value, len(l)+1)
	copy(elems, l)
	elems[len(l)] = args[1]

	return ListValue(elems), nil
}

// builtinListConcat returns a new list joining all argument lists.
func builtinListConcat(_ Caller, args []Value) (Value, error) {
	if err := wantAtLeast("list.concat", args, 1); err != nil {
		return Value{}, err
	}

	total := 0

	for _, arg := range args {
		l, err := wantList("list.concat", arg)
		if err != nil {
			return Value{}, err
		}

		total += len(l)
	}

	elems := make([]Value, 0, total)
	for _, arg := range args {
		elems = append(elems, arg.List...)
	}

	return ListValue(elems), nil
}

// builtinListSlice returns l[start..end] with the same bounds rule as
// str.substring.
func builtinListSlice(_ Caller, args []Value) (Value, error) {
	if err := wantArgs("list.slice", args, 3); err != nil {
		return Value{}, err
	}

	l, err := wantList("list.slice", args[0])
	if err != nil {
		return Value{}, err
	}

	start, end, err := spanArgs("list.slice", args[1], args[2], len(l))
	if err != nil {
		return Value{}, err
	}

	elems := make([]Value, end-start)
	copy(elems, l[start:end])

	return ListValue(elems), nil
}

// builtinListMap applies a function value to each element.
func builtinListMap(c Caller, args []Value) (Value, error) {
	if err := wantArgs("list.map", args, 2); err != nil {
		return Value{}, err
	}

	l, err := wantList("list.map", args[0])
	if err != nil {
		return Value{}, err
	}

	if err := wantFunc("list.map", args[1]); err != nil {
		return Value{}, err
	}

	elems := make([]Value, len(l))

	for i, e := range l {
		v, err := c.Call(args[1], []Value{e})
		if err != nil {
			return Value{}, err
		}

		elems[i] = v
	}

	return ListValue(elems), nil
}

// builtinListFilter keeps the elements for which the predicate returns
// true. A non-boolean predicate result is a type error.
func builtinListFilter(c Caller, args []Value) (Value, error) {
	if err := wantArgs("list.filter", args, 2); err != nil {
		return Value{}, err
	}

	l, err := wantList("list.filter", args[0])
	if err != nil {
		return Value{}, err
	}

	if err := wantFunc("list.filter", args[1]); err != nil {
		return Value{}, err
	}

	var elems []Value

	for _, e := range l {
		v, err := c.Call(args[1], []Value{e})
		if err != nil {
			return Value{}, err
		}

		if v.Kind != ValueBool {
			return Value{}, ErrTypeMismatch.
				With(
					slog.String("function", "list.filter"),
					slog.String("predicate_result", v.Kind.String()),
				)
		}

		if v.Bool {
			elems = append(elems, e)
		}
	}

	return ListValue(elems), nil
}

// indexArg validates an integer index against a sequence length.
func indexArg(name string, v Value, length int) (int, error) {
	i, err := wantInt(name, v)
	if err != nil {
		return 0, err
	}

	if i < 0 || i >= int64(length) {
		return 0, ErrIndexOutOfRange.
			With(
				slog.String("function", name),
				slog.Int64("index", i),
				slog.Int("length", length),
			)
	}

	return int(i), nil
}
