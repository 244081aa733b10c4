// Package lang implements an embeddable evaluator for a small expression
// language with mixed-type values: integers, floats, booleans, strings,
// dates, lists, and first-class functions.
//
// The pipeline has three independent stages. [Tokenize] scans source
// text into a flat token sequence. [ShuntingYard] converts tokens into a
// reverse-Polish node stream, tracking function-call and list-literal
// contexts. [BuildTree] reconstructs the parse tree from the stream.
// [ParseToTree] composes all three; [Evaluate] walks the resulting tree
// against an [Env] and produces a [Value].
//
// A parse tree is immutable after construction and safely shareable
// across goroutines. Environments are single-writer and must not be
// shared mutably.
//
// Two behaviors deviate deliberately from common convention to preserve
// parity with the reference implementation: the ** operator is
// left-associative, and the logical operators and/or evaluate both
// operands with no short-circuit.
package lang
