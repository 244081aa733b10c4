//go:build js && wasm

// Command teval-wasm exposes the expression pipeline to JavaScript
// hosts. Each export takes the expression source as its single string
// argument and returns a JSON string:
//
//	tokenize(src)     -> [{"type":kind,"value":lexeme}, ...]
//	shuntingYard(src) -> [node, ...] in stream order
//	parseToTree(src)  -> node
//	evaluate(src)     -> {"type":kind,"value":v}
//
// Node objects carry "value" for literals, identifiers, and operators,
// "name"/"argCount" for functions, and "elementCount" for lists.
// Failures return {"error":<kind>} instead of a result.
package main

import (
	"context"
	"encoding/json"
	"syscall/js"

	"github.com/ardnew/teval/lang"
)

func main() {
	global := js.Global()

	global.Set("tokenize", bridge(func(src string) (any, error) {
		tokens, err := lang.Tokenize(context.Background(), src)
		if err != nil {
			return nil, err
		}

		// Encode [] rather than null for an empty sequence.
		out := make([]lang.Token, 0, len(tokens))

		return append(out, tokens...), nil
	}))

	global.Set("shuntingYard", bridge(func(src string) (any, error) {
		tokens, err := lang.Tokenize(context.Background(), src)
		if err != nil {
			return nil, err
		}

		rpn, err := lang.ShuntingYard(context.Background(), tokens)
		if err != nil {
			return nil, err
		}

		out := make([]*lang.Node, 0, len(rpn))

		return append(out, rpn...), nil
	}))

	global.Set("parseToTree", bridge(func(src string) (any, error) {
		return lang.ParseToTree(context.Background(), src)
	}))

	global.Set("evaluate", bridge(func(src string) (any, error) {
		return lang.EvalString(context.Background(), src, lang.NewEnv())
	}))

	// Block forever; the host drives all activity through the exports.
	select {}
}

// bridge adapts a pipeline stage into a JavaScript function returning a
// JSON string. Errors return {"error":<kind>}.
func bridge(fn func(src string) (any, error)) js.Func {
	return js.FuncOf(func(_ js.Value, args []js.Value) any {
		if len(args) != 1 {
			return encodeError(lang.ErrEmptyExpression)
		}

		result, err := fn(args[0].String())
		if err != nil {
			return encodeError(err)
		}

		data, err := json.Marshal(result)
		if err != nil {
			return encodeError(lang.WrapError(err))
		}

		return string(data)
	})
}

// encodeError renders an error as the bridge's failure document.
func encodeError(err error) string {
	data, jerr := json.Marshal(map[string]string{"error": err.Error()})
	if jerr != nil {
		return `{"error":"internal"}`
	}

	return string(data)
}
