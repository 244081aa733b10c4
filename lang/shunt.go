package lang

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
)

// shuntEntry is one slot of the operator stack: an operator or opening
// delimiter token, or an identifier pending its call parenthesis.
type shuntEntry struct {
	tok       Token
	pendingFn bool
}

// shuntContext records an open delimiter group and the number of
// arguments or elements seen so far. Plain parenthesized groups get a
// context too, so a comma nested in one counts there and not in an
// enclosing call. mark is the output length when the context opened,
// used to detect empty calls and lists.
type shuntContext struct {
	count int
	mark  int
	list  bool
}

// shunter holds the state of the shunting-yard pass.
type shunter struct {
	output   []*Node
	ops      []shuntEntry
	contexts []shuntContext
}

// ShuntingYard converts a token sequence into a reverse-Polish node
// stream. Operator and function nodes in the stream carry no children;
// the tree builder attaches them.
func ShuntingYard(
	ctx context.Context,
	tokens []Token,
	opts ...Option,
) ([]*Node, error) {
	o := makeOptions(opts...)

	sh := &shunter{}

	for i, tok := range tokens {
		var err error

		switch tok.Kind {
		case KindNumber:
			err = sh.pushNumber(tok)

		case KindString:
			sh.push(&Node{Kind: NodeString, Text: unquote(tok.Text)})

		case KindDateString:
			sh.push(&Node{Kind: NodeDate, Text: unquote(tok.Text[1:])})

		case KindIdentifier:
			if i+1 < len(tokens) && tokens[i+1].Kind == KindLeftParen {
				sh.ops = append(sh.ops, shuntEntry{tok: tok, pendingFn: true})
			} else {
				sh.push(&Node{Kind: NodeIdentifier, Text: tok.Text})
			}

		case KindOperator, KindUnaryOperator:
			sh.pushOperator(tok)

		case KindLeftParen:
			sh.openParen(tok)

		case KindRightParen:
			err = sh.closeParen()

		case KindLeftBracket:
			sh.openBracket(tok)

		case KindRightBracket:
			err = sh.closeBracket()

		case KindComma:
			err = sh.comma()
		}

		if err != nil {
			return nil, err
		}
	}

	// Drain the operator stack. Any remaining opening delimiter means a
	// close was never seen.
	for len(sh.ops) > 0 {
		e := sh.pop()

		if e.pendingFn ||
			e.tok.Kind == KindLeftParen || e.tok.Kind == KindLeftBracket {
			return nil, ErrUnbalancedDelimiters.
				With(slog.String("delimiter", e.tok.Text))
		}

		sh.emitOperator(e.tok)
	}

	o.logger.TraceContext(
		ctx,
		"shunting-yard complete",
		slog.Int("node_count", len(sh.output)),
	)

	return sh.output, nil
}

// push appends a node to the output queue.
func (sh *shunter) push(n *Node) {
	sh.output = append(sh.output, n)
}

// pop removes and returns the top of the operator stack.
func (sh *shunter) pop() shuntEntry {
	e := sh.ops[len(sh.ops)-1]
	sh.ops = sh.ops[:len(sh.ops)-1]

	return e
}

// top returns the top of the operator stack without removing it.
func (sh *shunter) top() *shuntEntry {
	if len(sh.ops) == 0 {
		return nil
	}

	return &sh.ops[len(sh.ops)-1]
}

// emitOperator appends an operator node for the token to the output.
func (sh *shunter) emitOperator(tok Token) {
	kind := NodeBinaryOp
	if tok.Kind == KindUnaryOperator {
		kind = NodeUnaryOp
	}

	sh.push(&Node{Kind: kind, Text: tok.Text})
}

// pushNumber parses a numeric lexeme and appends the literal node.
// The lexeme selects integer unless it contains a decimal point or an
// exponent marker.
func (sh *shunter) pushNumber(tok Token) error {
	text := tok.Text

	if !strings.ContainsAny(text, ".eE") {
		i, err := strconv.ParseInt(text, 10, 64)
		if err == nil {
			sh.push(&Node{Kind: NodeInt, Int: i})

			return nil
		}
		// Fall through to float on overflow.
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return ErrBadNumber.Wrap(err).
			With(slog.String("text", text))
	}

	sh.push(&Node{Kind: NodeFloat, Float: f})

	return nil
}

// pushOperator pops higher-priority operators to the output, then pushes
// the token. Binary operators pop on >= (left-associative); unary
// operators pop only on strictly greater, so consecutive prefixes nest.
func (sh *shunter) pushOperator(tok Token) {
	prec := precedenceOf(tok)

	for {
		top := sh.top()
		if top == nil || top.pendingFn {
			break
		}

		switch top.tok.Kind {
		case KindLeftParen, KindLeftBracket:
			// Opening delimiters fence the stack.
		case KindOperator, KindUnaryOperator:
			topPrec := precedenceOf(top.tok)

			if tok.Kind == KindUnaryOperator {
				if topPrec > prec {
					sh.emitOperator(sh.pop().tok)

					continue
				}
			} else if topPrec >= prec {
				sh.emitOperator(sh.pop().tok)

				continue
			}
		}

		break
	}

	sh.ops = append(sh.ops, shuntEntry{tok: tok})
}

// openParen pushes a context for the group (a call context if a name is
// pending), then pushes the parenthesis.
func (sh *shunter) openParen(tok Token) {
	sh.contexts = append(sh.contexts, shuntContext{mark: len(sh.output)})
	sh.ops = append(sh.ops, shuntEntry{tok: tok})
}

// closeParen unwinds to the matching parenthesis and finalizes a pending
// function call if one opened this group.
func (sh *shunter) closeParen() error {
	err := sh.unwind(KindLeftParen)
	if err != nil {
		return err
	}

	fn := sh.popContext()

	top := sh.top()
	if top == nil || !top.pendingFn {
		return nil
	}

	name := sh.pop().tok.Text

	// The final argument has no trailing comma. An empty call stays 0.
	if len(sh.output) > fn.mark {
		fn.count++
	}

	sh.push(&Node{Kind: NodeFunction, Text: name, Count: fn.count})

	return nil
}

// openBracket pushes a list context and the bracket.
func (sh *shunter) openBracket(tok Token) {
	sh.contexts = append(sh.contexts, shuntContext{
		list: true,
		mark: len(sh.output),
	})
	sh.ops = append(sh.ops, shuntEntry{tok: tok})
}

// closeBracket unwinds to the matching bracket and emits the list node.
func (sh *shunter) closeBracket() error {
	err := sh.unwind(KindLeftBracket)
	if err != nil {
		return err
	}

	lst := sh.popContext()

	// The final element has no trailing comma. An empty list stays 0.
	if len(sh.output) > lst.mark {
		lst.count++
	}

	sh.push(&Node{Kind: NodeList, Count: lst.count})

	return nil
}

// comma unwinds to the nearest opening delimiter and counts one argument
// or element in the enclosing context.
func (sh *shunter) comma() error {
	for {
		top := sh.top()
		if top == nil {
			return ErrMalformedExpression.
				With(slog.String("token", ","))
		}

		if !top.pendingFn &&
			(top.tok.Kind == KindLeftParen || top.tok.Kind == KindLeftBracket) {
			break
		}

		sh.emitOperator(sh.pop().tok)
	}

	if len(sh.contexts) == 0 {
		return ErrMalformedExpression.
			With(slog.String("token", ","))
	}

	sh.contexts[len(sh.contexts)-1].count++

	return nil
}

// unwind pops and emits operators until the given opening delimiter is
// found and removed.
func (sh *shunter) unwind(open Kind) error {
	for {
		top := sh.top()
		if top == nil {
			return ErrUnbalancedDelimiters.
				With(slog.String("expected", open.String()))
		}

		if !top.pendingFn && top.tok.Kind == open {
			sh.pop()

			return nil
		}

		if top.pendingFn ||
			top.tok.Kind == KindLeftParen || top.tok.Kind == KindLeftBracket {
			return ErrUnbalancedDelimiters.
				With(slog.String("expected", open.String()))
		}

		sh.emitOperator(sh.pop().tok)
	}
}

// popContext removes and returns the innermost call or list context.
func (sh *shunter) popContext() shuntContext {
	c := sh.contexts[len(sh.contexts)-1]
	sh.contexts = sh.contexts[:len(sh.contexts)-1]

	return c
}

// unquote strips the surrounding quotes from a literal lexeme and
// resolves backslash escapes in its body.
func unquote(text string) string {
	if len(text) < 2 {
		return text
	}

	body := text[1 : len(text)-1]
	if !strings.ContainsRune(body, '\\') {
		return body
	}

	var b strings.Builder

	b.Grow(len(body))

	for i := 0; i < len(body); i++ {
		c := body[i]

		if c != '\\' || i+1 >= len(body) {
			b.WriteByte(c)

			continue
		}

		i++

		switch body[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		default:
			// \", \', \\ and unknown escapes keep the escaped byte.
			b.WriteByte(body[i])
		}
	}

	return b.String()
}
