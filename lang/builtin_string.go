package lang

import (
	"log/slog"
	"strings"
	"unicode/utf16"
)

// builtinStrConcat concatenates heterogeneous arguments using each
// value's textual projection.
func builtinStrConcat(_ Caller, args []Value) (Value, error) {
	var b strings.Builder

	for _, arg := range args {
		b.WriteString(arg.Render())
	}

	return StringValue(b.String()), nil
}

// builtinStrLength returns the UTF-16 code-unit length of the string.
// This is the documented contract, even though the remaining string
// builtins operate on bytes.
func builtinStrLength(_ Caller, args []Value) (Value, error) {
	if err := wantArgs("str.length", args, 1); err != nil {
		return Value{}, err
	}

	s, err := wantString("str.length", args[0])
	if err != nil {
		return Value{}, err
	}

	return IntValue(int64(len(utf16.Encode([]rune(s))))), nil
}

// builtinStrSubstring returns s[start..end] in byte indices, requiring
// 0 <= start <= end <= len(s).
func builtinStrSubstring(_ Caller, args []Value) (Value, error) {
	if err := wantArgs("str.substring", args, 3); err != nil {
		return Value{}, err
	}

	s, err := wantString("str.substring", args[0])
	if err != nil {
		return Value{}, err
	}

	start, end, err := spanArgs("str.substring", args[1], args[2], len(s))
	if err != nil {
		return Value{}, err
	}

	return StringValue(s[start:end]), nil
}

// builtinStrReplace replaces all non-overlapping occurrences.
func builtinStrReplace(_ Caller, args []Value) (Value, error) {
	if err := wantArgs("str.replace", args, 3); err != nil {
		return Value{}, err
	}

	s, err := wantString("str.replace", args[0])
	if err != nil {
		return Value{}, err
	}

	old, err := wantString("str.replace", args[1])
	if err != nil {
		return Value{}, err
	}

	repl, err := wantString("str.replace", args[2])
	if err != nil {
		return Value{}, err
	}

	return StringValue(strings.ReplaceAll(s, old, repl)), nil
}

// builtinStrToUpper uppercases ASCII letters only.
func builtinStrToUpper(_ Caller, args []Value) (Value, error) {
	return mapASCII("str.toUpper", args, func(c byte) byte {
		if c >= 'a' && c <= 'z' {
			return c - 'a' + 'A'
		}

		return c
	})
}

// builtinStrToLower lowercases ASCII letters only.
func builtinStrToLower(_ Caller, args []Value) (Value, error) {
	return mapASCII("str.toLower", args, func(c byte) byte {
		if c >= 'A' && c <= 'Z' {
			return c - 'A' + 'a'
		}

		return c
	})
}

func mapASCII(
	name string,
	args []Value,
	fn func(byte) byte,
) (Value, error) {
	if err := wantArgs(name, args, 1); err != nil {
		return Value{}, err
	}

	s, err := wantString(name, args[0])
	if err != nil {
		return Value{}, err
	}

	b := []byte(s)
	for i := range b {
		b[i] = fn(b[i])
	}

	return StringValue(string(b)), nil
}

// builtinStrTrim strips leading and trailing ASCII whitespace.
func builtinStrTrim(_ Caller, args []Value) (Value, error) {
	if err := wantArgs("str.trim", args, 1); err != nil {
		return Value{}, err
	}

	s, err := wantString("str.trim", args[0])
	if err != nil {
		return Value{}, err
	}

	return StringValue(strings.Trim(s, " \t\n\r\v\f")), nil
}

// builtinStrSplit splits on a delimiter and returns the pieces as a
// list of strings.
func builtinStrSplit(_ Caller, args []Value) (Value, error) {
	if err := wantArgs("str.split", args, 2); err != nil {
		return Value{}, err
	}

	s, err := wantString("str.split", args[0])
	if err != nil {
		return Value{}, err
	}

	delim, err := wantString("str.split", args[1])
	if err != nil {
		return Value{}, err
	}

	parts := strings.Split(s, delim)
	elems := make([]Value, len(parts))

	for i, p := range parts {
		elems[i] = StringValue(p)
	}

	return ListValue(elems), nil
}

// builtinStrIndexOf returns the byte index of the first occurrence of
// the substring, or -1 when absent.
func builtinStrIndexOf(_ Caller, args []Value) (Value, error) {
	s, sub, err := twoStrings("str.indexOf", args)
	if err != nil {
		return Value{}, err
	}

	return IntValue(int64(strings.Index(s, sub))), nil
}

func builtinStrContains(_ Caller, args []Value) (Value, error) {
	s, sub, err := twoStrings("str.contains", args)
	if err != nil {
		return Value{}, err
	}

	return BoolValue(strings.Contains(s, sub)), nil
}

func builtinStrStartsWith(_ Caller, args []Value) (Value, error) {
	s, sub, err := twoStrings("str.startsWith", args)
	if err != nil {
		return Value{}, err
	}

	return BoolValue(strings.HasPrefix(s, sub)), nil
}

func builtinStrEndsWith(_ Caller, args []Value) (Value, error) {
	s, sub, err := twoStrings("str.endsWith", args)
	if err != nil {
		return Value{}, err
	}

	return BoolValue(strings.HasSuffix(s, sub)), nil
}

func twoStrings(name string, args []Value) (string, string, error) {
	if err := wantArgs(name, args, 2); err != nil {
		return "", "", err
	}

	a, err := wantString(name, args[0])
	if err != nil {
		return "", "", err
	}

	b, err := wantString(name, args[1])
	if err != nil {
		return "", "", err
	}

	return a, b, nil
}

// builtinStrFormat replaces each {} placeholder in the template with the
// textual projection of the next argument. Surplus placeholders remain
// verbatim.
func builtinStrFormat(_ Caller, args []Value) (Value, error) {
	if err := wantAtLeast("str.format", args, 1); err != nil {
		return Value{}, err
	}

	template, err := wantString("str.format", args[0])
	if err != nil {
		return Value{}, err
	}

	var b strings.Builder

	rest := args[1:]

	for {
		i := strings.Index(template, "{}")
		if i < 0 || len(rest) == 0 {
			b.WriteString(template)

			break
		}

		b.WriteString(template[:i])
		b.WriteString(rest[0].Render())

		template = template[i+2:]
		rest = rest[1:]
	}

	return StringValue(b.String()), nil
}

// spanArgs validates a [start, end] span over a sequence of the given
// length: 0 <= start <= end <= length.
func spanArgs(name string, startV, endV Value, length int) (int, int, error) {
	start, err := wantInt(name, startV)
	if err != nil {
		return 0, 0, err
	}

	end, err := wantInt(name, endV)
	if err != nil {
		return 0, 0, err
	}

	if start < 0 || start > end || end > int64(length) {
		return 0, 0, ErrInvalidOperation.
			With(
				slog.String("function", name),
				slog.Int64("start", start),
				slog.Int64("end", end),
				slog.Int("length", length),
			)
	}

	return int(start), int(end), nil
}
