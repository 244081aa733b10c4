package lang

import (
	"encoding/json"

	"github.com/goccy/go-yaml"
)

// JSON encodings used by the WebAssembly bridge and the CLI. Tokens
// encode as {"type","value"} pairs; nodes carry "value" for literals,
// identifiers, and operators, "name"/"argCount" for functions, and
// "elementCount" for lists; results encode integers and floats as JSON
// numbers, booleans as booleans, strings and dates as strings, lists as
// arrays of the same shape, and functions as null.

// MarshalJSON implements json.Marshaler for Token.
func (t Token) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"type":  t.Kind.String(),
		"value": t.Text,
	})
}

// MarshalJSON implements json.Marshaler for Node. An RPN node with no
// attached children omits the args array.
func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.toMap())
}

// toMap converts the node to the bridge schema.
func (n *Node) toMap() map[string]any {
	m := map[string]any{"type": n.Kind.String()}

	switch n.Kind {
	case NodeInt:
		m["value"] = n.Int

	case NodeFloat:
		m["value"] = n.Float

	case NodeString, NodeDate, NodeIdentifier, NodeUnaryOp, NodeBinaryOp:
		m["value"] = n.Text

	case NodeFunction:
		m["name"] = n.Text
		m["argCount"] = n.Count

	case NodeList:
		m["elementCount"] = n.Count
	}

	if n.Args != nil {
		args := make([]any, len(n.Args))
		for i, arg := range n.Args {
			args[i] = arg.toMap()
		}

		m["args"] = args
	}

	return m
}

// MarshalJSON implements json.Marshaler for Value.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.toMap())
}

// toMap converts the value to the bridge result schema.
func (v Value) toMap() map[string]any {
	m := map[string]any{"type": v.Kind.String()}

	switch v.Kind {
	case ValueInt:
		m["value"] = v.Int

	case ValueFloat:
		m["value"] = v.Float

	case ValueBool:
		m["value"] = v.Bool

	case ValueString, ValueDate:
		m["value"] = v.Str

	case ValueList:
		elems := make([]any, len(v.List))
		for i, e := range v.List {
			elems[i] = e.toMap()
		}

		m["value"] = elems

	default:
		// Function values have no data representation.
		m["value"] = nil
	}

	return m
}

// MarshalYAML implements the go-yaml marshaler for Value, encoding the
// native Go projection. Used by the CLI's yaml output format.
func (v Value) MarshalYAML() ([]byte, error) {
	return yaml.Marshal(v.Native())
}
