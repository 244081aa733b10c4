package lang

import (
	"strconv"
	"strings"
)

// ValueKind identifies the variant stored in a Value.
type ValueKind int

const (
	// ValueInt is a signed 64-bit integer.
	ValueInt ValueKind = iota

	// ValueFloat is a 64-bit IEEE float.
	ValueFloat

	// ValueBool is a boolean.
	ValueBool

	// ValueString is a UTF-8 string.
	ValueString

	// ValueDate is an ISO-like date string body. Dates are opaque and
	// ordered; only lexicographic comparison is defined.
	ValueDate

	// ValueList is a sequence of values.
	ValueList

	// ValueBuiltin references a registered builtin function.
	ValueBuiltin

	// ValueFunc references a user-defined function.
	ValueFunc
)

// String returns a string representation of the value kind.
func (k ValueKind) String() string {
	switch k {
	case ValueInt:
		return "integer"

	case ValueFloat:
		return "float"

	case ValueBool:
		return "boolean"

	case ValueString:
		return "string"

	case ValueDate:
		return "date"

	case ValueList:
		return "list"

	case ValueBuiltin:
		return "function"

	case ValueFunc:
		return "function_def"

	default:
		return "unknown"
	}
}

// FuncDef is a user-defined function: a parsed body tree and the
// parameter names bound when it is called. The body tree must outlive
// the function value; the garbage collector guarantees that here.
type FuncDef struct {
	Name   string
	Params []string
	Body   *Node
}

// Value is the tagged runtime representation produced by the evaluator.
type Value struct {
	Str     string
	List    []Value
	Builtin *Builtin
	Func    *FuncDef
	Int     int64
	Float   float64
	Bool    bool
	Kind    ValueKind
}

// Constructors for each variant.

// IntValue returns an integer value.
func IntValue(i int64) Value { return Value{Kind: ValueInt, Int: i} }

// FloatValue returns a float value.
func FloatValue(f float64) Value { return Value{Kind: ValueFloat, Float: f} }

// BoolValue returns a boolean value.
func BoolValue(b bool) Value { return Value{Kind: ValueBool, Bool: b} }

// StringValue returns a string value.
func StringValue(s string) Value { return Value{Kind: ValueString, Str: s} }

// DateValue returns a date value from an ISO-like string body.
func DateValue(s string) Value { return Value{Kind: ValueDate, Str: s} }

// ListValue returns a list value owning the given elements.
func ListValue(elems []Value) Value { return Value{Kind: ValueList, List: elems} }

// Clone returns a deep copy of the value. Strings are immutable in Go,
// so only the list arm needs recursive copying; a clone never aliases
// mutable storage of the original.
func (v Value) Clone() Value {
	if v.Kind != ValueList {
		return v
	}

	elems := make([]Value, len(v.List))
	for i, e := range v.List {
		elems[i] = e.Clone()
	}

	return Value{Kind: ValueList, List: elems}
}

// Native converts the value to its host Go representation: int64,
// float64, bool, string (strings and dates), []any (recursive), or nil
// for function values.
func (v Value) Native() any {
	switch v.Kind {
	case ValueInt:
		return v.Int

	case ValueFloat:
		return v.Float

	case ValueBool:
		return v.Bool

	case ValueString, ValueDate:
		return v.Str

	case ValueList:
		elems := make([]any, len(v.List))
		for i, e := range v.List {
			elems[i] = e.Native()
		}

		return elems

	default:
		return nil
	}
}

// Render returns the textual projection used by string concatenation:
// integers in decimal, floats with default formatting, booleans as
// true/false, strings and dates verbatim.
func (v Value) Render() string {
	switch v.Kind {
	case ValueInt:
		return strconv.FormatInt(v.Int, 10)

	case ValueFloat:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)

	case ValueBool:
		return strconv.FormatBool(v.Bool)

	case ValueString, ValueDate:
		return v.Str

	case ValueList:
		parts := make([]string, len(v.List))
		for i, e := range v.List {
			parts[i] = e.String()
		}

		return "[" + strings.Join(parts, ", ") + "]"

	case ValueBuiltin:
		return v.Builtin.Name

	case ValueFunc:
		return v.Func.Name

	default:
		return ""
	}
}

// String renders the value for display. Strings containing delimiters or
// whitespace are quoted; everything else matches Render.
func (v Value) String() string {
	if v.Kind == ValueString && needsQuoting(v.Str) {
		return strconv.Quote(v.Str)
	}

	return v.Render()
}

// needsQuoting returns true if a string needs to be quoted for display.
func needsQuoting(s string) bool {
	if s == "" {
		return true
	}

	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '"', '\'', '\\', '[', ']', ',':
			return true
		}
	}

	return false
}

// Equal reports structural equality of two values. Function values
// compare by identity of their definition.
func (v Value) Equal(w Value) bool {
	if v.Kind != w.Kind {
		return false
	}

	switch v.Kind {
	case ValueInt:
		return v.Int == w.Int

	case ValueFloat:
		return v.Float == w.Float

	case ValueBool:
		return v.Bool == w.Bool

	case ValueString, ValueDate:
		return v.Str == w.Str

	case ValueList:
		if len(v.List) != len(w.List) {
			return false
		}

		for i := range v.List {
			if !v.List[i].Equal(w.List[i]) {
				return false
			}
		}

		return true

	case ValueBuiltin:
		return v.Builtin == w.Builtin

	case ValueFunc:
		return v.Func == w.Func

	default:
		return false
	}
}
