package lang

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// NodeKind identifies the variant stored in a Node.
type NodeKind int

const (
	// NodeInt is an integer literal.
	NodeInt NodeKind = iota

	// NodeFloat is a float literal.
	NodeFloat

	// NodeString is a string literal with quotes stripped.
	NodeString

	// NodeDate is a date literal with the d prefix and quotes stripped.
	NodeDate

	// NodeIdentifier is a symbol reference.
	NodeIdentifier

	// NodeUnaryOp is a prefix operator with exactly one child.
	NodeUnaryOp

	// NodeBinaryOp is an infix operator with exactly two children.
	NodeBinaryOp

	// NodeFunction is a call with a name, an arity, and arity children
	// in call order.
	NodeFunction

	// NodeList is a list literal with a count and count children in
	// listed order.
	NodeList
)

// String returns a string representation of the node kind.
func (k NodeKind) String() string {
	switch k {
	case NodeInt:
		return "literal_integer"

	case NodeFloat:
		return "literal_float"

	case NodeString:
		return "literal_string"

	case NodeDate:
		return "literal_date"

	case NodeIdentifier:
		return "identifier"

	case NodeUnaryOp:
		return "unary_operator"

	case NodeBinaryOp:
		return "binary_operator"

	case NodeFunction:
		return "function"

	case NodeList:
		return "list"

	default:
		return "unknown"
	}
}

// Node is one entry of the RPN stream, and, once the tree builder has
// attached children, one vertex of the parse tree.
//
// Text holds the payload for every kind that carries text: the literal
// body for strings and dates, the symbol for identifiers, the operator
// lexeme for operator nodes, and the name for function nodes. Count holds
// the arity of a function node and the element count of a list node; both
// always equal len(Args) in a well-formed tree.
type Node struct {
	Text  string
	Args  []*Node
	Int   int64
	Float float64
	Count int
	Kind  NodeKind
}

// Label returns the payload of the node rendered as a short string.
func (n *Node) Label() string {
	switch n.Kind {
	case NodeInt:
		return strconv.FormatInt(n.Int, 10)

	case NodeFloat:
		return strconv.FormatFloat(n.Float, 'g', -1, 64)

	case NodeString, NodeDate, NodeIdentifier, NodeUnaryOp, NodeBinaryOp:
		return n.Text

	case NodeFunction:
		return n.Text + "/" + strconv.Itoa(n.Count)

	case NodeList:
		return "list/" + strconv.Itoa(n.Count)

	default:
		return "?"
	}
}

// Print writes a formatted representation of the subtree rooted at n,
// indented by depth.
func (n *Node) Print(w io.Writer, indent int) {
	prefix := strings.Repeat("  ", indent)

	_, err := fmt.Fprintf(w, "%s%s: %s\n", prefix, n.Kind, n.Label())
	if err != nil {
		panic(err)
	}

	for _, arg := range n.Args {
		arg.Print(w, indent+1)
	}
}
