package lang

import (
	"context"
	"log/slog"
)

// lexer is a single forward scan over the source bytes with a look-ahead
// of at most three bytes.
type lexer struct {
	src    string
	pos    int
	tokens []Token
}

// Tokenize scans source text into an ordered token sequence.
func Tokenize(ctx context.Context, source string, opts ...Option) ([]Token, error) {
	o := makeOptions(opts...)

	o.logger.TraceContext(
		ctx,
		"tokenize start",
		slog.Int("source_length", len(source)),
	)

	lx := &lexer{src: source}

	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]

		switch {
		case isSpace(c):
			lx.pos++

		case c == '-' && lx.peekStartsNumber() && lx.prevAllowsUnary():
			// Unary-signed numeric: the sign is part of the literal.
			if err := lx.scanNumber(); err != nil {
				return nil, err
			}

		case lx.scanMultiOperator():
			// Longest-prefix multi-character operator consumed.

		case c == '(':
			lx.emit(KindLeftParen, "(")

		case c == ')':
			lx.emit(KindRightParen, ")")

		case c == '[':
			lx.emit(KindLeftBracket, "[")

		case c == ']':
			lx.emit(KindRightBracket, "]")

		case c == ',':
			lx.emit(KindComma, ",")

		case c == '-':
			if lx.prevAllowsUnary() {
				lx.emit(KindUnaryOperator, "-")
			} else {
				lx.emit(KindOperator, "-")
			}

		case c == '!':
			lx.emit(KindUnaryOperator, "!")

		case c == '+' || c == '*' || c == '/' || c == '%' ||
			c == '<' || c == '>' || c == '&' || c == '|':
			lx.emit(KindOperator, string(c))

		case c == 'd' && lx.peekQuote(1):
			if err := lx.scanString(true); err != nil {
				return nil, err
			}

		case c == '\'' || c == '"':
			if err := lx.scanString(false); err != nil {
				return nil, err
			}

		case isIdentStart(c):
			lx.scanIdentifier()

		case isDigit(c) || (c == '.' && lx.peekDigit(1)):
			if err := lx.scanNumber(); err != nil {
				return nil, err
			}

		default:
			// Unrecognized bytes are skipped, matching the reference
			// behavior. Logged so the silence is at least observable.
			o.logger.TraceContext(
				ctx,
				"skipping unrecognized byte",
				slog.Int("position", lx.pos),
				slog.String("byte", string(c)),
			)

			lx.pos++
		}
	}

	o.logger.TraceContext(
		ctx,
		"tokenize complete",
		slog.Int("token_count", len(lx.tokens)),
	)

	return lx.tokens, nil
}

// emit appends a token of the given kind and advances past its text.
func (lx *lexer) emit(kind Kind, text string) {
	lx.tokens = append(lx.tokens, Token{Kind: kind, Text: text})
	lx.pos += len(text)
}

// prevAllowsUnary reports whether a '-' at the current position is unary.
// A '-' is unary iff the previous token is absent, an operator, a unary
// operator, a comma, a left paren, or a left bracket.
func (lx *lexer) prevAllowsUnary() bool {
	if len(lx.tokens) == 0 {
		return true
	}

	switch lx.tokens[len(lx.tokens)-1].Kind {
	case KindOperator, KindUnaryOperator, KindComma,
		KindLeftParen, KindLeftBracket:
		return true

	default:
		return false
	}
}

// peekStartsNumber reports whether the byte after the current '-' begins
// a numeric literal (a digit, or a '.' followed by a digit).
func (lx *lexer) peekStartsNumber() bool {
	if lx.peekDigit(1) {
		return true
	}

	return lx.pos+2 < len(lx.src) &&
		lx.src[lx.pos+1] == '.' &&
		isDigit(lx.src[lx.pos+2])
}

// peekDigit reports whether the byte at offset from the current position
// is an ASCII digit.
func (lx *lexer) peekDigit(offset int) bool {
	return lx.pos+offset < len(lx.src) && isDigit(lx.src[lx.pos+offset])
}

// peekQuote reports whether the byte at offset from the current position
// opens a string.
func (lx *lexer) peekQuote(offset int) bool {
	if lx.pos+offset >= len(lx.src) {
		return false
	}

	c := lx.src[lx.pos+offset]

	return c == '\'' || c == '"'
}

// scanMultiOperator consumes a multi-character operator if one begins at
// the current position. Longest prefix wins.
func (lx *lexer) scanMultiOperator() bool {
	if lx.pos+1 >= len(lx.src) {
		return false
	}

	switch lx.src[lx.pos : lx.pos+2] {
	case "**", "//", "==", "!=", "<=", ">=", "<<", ">>":
		lx.emit(KindOperator, lx.src[lx.pos:lx.pos+2])

		return true
	}

	return false
}

// scanString consumes a quoted string or date literal. The emitted token
// retains the full lexeme, including quotes and any d prefix. Backslash
// escapes are honored while searching for the closing quote.
func (lx *lexer) scanString(date bool) error {
	start := lx.pos
	i := lx.pos

	kind := KindString
	if date {
		kind = KindDateString
		i++ // skip the d prefix
	}

	quote := lx.src[i]
	i++

	for i < len(lx.src) {
		switch lx.src[i] {
		case '\\':
			i += 2

			continue

		case quote:
			text := lx.src[start : i+1]
			lx.tokens = append(lx.tokens, Token{Kind: kind, Text: text})
			lx.pos = i + 1

			return nil
		}

		i++
	}

	return ErrUnterminatedString.
		With(slog.Int("position", start))
}

// scanIdentifier consumes an identifier or operator keyword.
func (lx *lexer) scanIdentifier() {
	start := lx.pos
	i := lx.pos + 1

	for i < len(lx.src) && isIdentPart(lx.src[i]) {
		i++
	}

	word := lx.src[start:i]

	kind, keyword := keywordOperators[word]
	if !keyword {
		kind = KindIdentifier
	}

	lx.tokens = append(lx.tokens, Token{Kind: kind, Text: word})
	lx.pos = i
}

// scanNumber consumes a numeric literal: digits with at most one decimal
// point and an optional signed exponent. A leading '-' or '.' is valid
// when the caller has already classified it as part of the number.
func (lx *lexer) scanNumber() error {
	start := lx.pos
	i := lx.pos

	if i < len(lx.src) && lx.src[i] == '-' {
		i++
	}

	sawDigit := false
	sawDot := false

	for i < len(lx.src) {
		c := lx.src[i]

		if isDigit(c) {
			sawDigit = true
			i++

			continue
		}

		if c == '.' && !sawDot {
			sawDot = true
			i++

			continue
		}

		break
	}

	if !sawDigit {
		return ErrBadNumber.
			With(slog.String("text", lx.src[start:i]))
	}

	// Optional exponent: e or E, optionally signed, at least one digit.
	if i < len(lx.src) && (lx.src[i] == 'e' || lx.src[i] == 'E') {
		j := i + 1

		if j < len(lx.src) && (lx.src[j] == '+' || lx.src[j] == '-') {
			j++
		}

		if j >= len(lx.src) || !isDigit(lx.src[j]) {
			return ErrBadNumber.
				With(slog.String("text", lx.src[start:j]))
		}

		for j < len(lx.src) && isDigit(lx.src[j]) {
			j++
		}

		i = j
	}

	lx.tokens = append(lx.tokens, Token{Kind: KindNumber, Text: lx.src[start:i]})
	lx.pos = i

	return nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return c == '_' || c == '.' || isDigit(c) ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
