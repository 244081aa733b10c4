package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/teval/lang"
	"github.com/ardnew/teval/log"
)

// Eval evaluates an expression and prints the result. The stage flags
// additionally print the intermediate artifacts of the pipeline.
type Eval struct {
	Parse  bool     `help:"Print numbered tokens with their kinds."`
	RPN    bool     `help:"Print the RPN node stream."                name:"rpn"`
	Tree   bool     `help:"Print the parse tree indented by depth."`
	Format string   `help:"Result output format."                                  default:"text" enum:"text,json,yaml"`
	Var    []string `help:"Bind name=value in the environment."       name:"var"                                        placeholder:"name=value"`

	Expression string `arg:"" help:"Expression to evaluate." name:"expression"`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) error {
	w := stdout(ctx)
	logger := log.Default()

	tokens, err := lang.Tokenize(ctx, e.Expression, lang.WithLogger(logger))
	if err != nil {
		return lang.WrapError(err).
			With(slog.String("command", "eval"))
	}

	if e.Parse {
		for i, tok := range tokens {
			fmt.Fprintf(w, "%3d: %-14s %s\n", i, tok.Kind, tok.Text)
		}
	}

	rpn, err := lang.ShuntingYard(ctx, tokens, lang.WithLogger(logger))
	if err != nil {
		return lang.WrapError(err).
			With(slog.String("command", "eval"))
	}

	if e.RPN {
		for _, n := range rpn {
			fmt.Fprintf(w, "%-16s %s\n", n.Kind, n.Label())
		}
	}

	tree, err := lang.BuildTree(ctx, rpn, lang.WithLogger(logger))
	if err != nil {
		return lang.WrapError(err).
			With(slog.String("command", "eval"))
	}

	if e.Tree {
		tree.Print(w, 0)
	}

	env, err := bindVars(e.Var)
	if err != nil {
		return err
	}

	result, err := lang.Evaluate(ctx, tree, env, lang.WithLogger(logger))
	if err != nil {
		return lang.WrapError(err).
			With(
				slog.String("command", "eval"),
				slog.String("expression", e.Expression),
			)
	}

	rendered, err := renderResult(result, e.Format)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "Result: "+rendered)

	return nil
}

// bindVars builds an environment from name=value flag bindings. Values
// parse as boolean, integer, or float when they look like one, and bind
// as strings otherwise.
func bindVars(vars []string) (*lang.Env, error) {
	env := lang.NewEnv()

	for _, pair := range vars {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, lang.NewError("malformed binding").
				With(slog.String("binding", pair))
		}

		env.Put(name, parseVarValue(value))
	}

	return env, nil
}

// parseVarValue attempts to parse a binding value into a typed value.
func parseVarValue(s string) lang.Value {
	if i, err := strconv.ParseInt(s, 0, 64); err == nil {
		return lang.IntValue(i)
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return lang.FloatValue(f)
	}

	if b, err := strconv.ParseBool(s); err == nil {
		return lang.BoolValue(b)
	}

	return lang.StringValue(s)
}

// renderResult formats the final value in the selected output format.
func renderResult(v lang.Value, format string) (string, error) {
	switch format {
	case "json":
		data, err := v.MarshalJSON()
		if err != nil {
			return "", lang.WrapError(err)
		}

		return string(data), nil

	case "yaml":
		data, err := yaml.MarshalWithOptions(v.Native(), yaml.Flow(true))
		if err != nil {
			return "", lang.WrapError(err)
		}

		return strings.TrimSpace(string(data)), nil

	default:
		return v.String(), nil
	}
}
