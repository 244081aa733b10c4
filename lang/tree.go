package lang

import (
	"context"
	"log/slog"
)

// BuildTree reconstructs a parse tree from a reverse-Polish node stream.
// Ownership of the stream's nodes transfers into the returned tree.
func BuildTree(
	ctx context.Context,
	rpn []*Node,
	opts ...Option,
) (*Node, error) {
	o := makeOptions(opts...)

	if len(rpn) == 0 {
		return nil, ErrEmptyExpression
	}

	var stack []*Node

	take := func(n int) ([]*Node, bool) {
		if len(stack) < n {
			return nil, false
		}

		// Children pop in reverse to preserve source order.
		args := make([]*Node, n)
		copy(args, stack[len(stack)-n:])
		stack = stack[:len(stack)-n]

		return args, true
	}

	for _, n := range rpn {
		var want int

		switch n.Kind {
		case NodeUnaryOp:
			want = 1

		case NodeBinaryOp:
			want = 2

		case NodeFunction, NodeList:
			want = n.Count

		default:
			stack = append(stack, n)

			continue
		}

		args, ok := take(want)
		if !ok {
			return nil, ErrMalformedExpression.
				With(
					slog.String("node", n.Label()),
					slog.Int("want", want),
					slog.Int("have", len(stack)),
				)
		}

		n.Args = args
		stack = append(stack, n)
	}

	if len(stack) != 1 {
		return nil, ErrMalformedExpression.
			With(slog.Int("stack_size", len(stack)))
	}

	o.logger.TraceContext(
		ctx,
		"tree built",
		slog.String("root", stack[0].Kind.String()),
	)

	return stack[0], nil
}
