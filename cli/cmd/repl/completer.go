package repl

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/sahilm/fuzzy"

	"github.com/ardnew/teval/lang"
)

// maxSuggestions bounds the completion hint line.
const maxSuggestions = 8

// isWordBoundary returns true if the rune delimits a completion word.
// The member-access dot is intentionally NOT a boundary because builtin
// names contain it (str.length, list.map).
func isWordBoundary(r rune) bool {
	switch r {
	case ' ', '\t',
		'(', ')', '[', ']',
		'+', '-', '*', '/', '%',
		'<', '>', '=', '!',
		'&', '|', ',', '\'', '"':
		return true
	}

	return false
}

// wordBounds returns the word at the cursor position and its byte
// boundaries within input.
func wordBounds(input string, cursor int) (word string, start, end int) {
	if cursor > len(input) {
		cursor = len(input)
	}

	// Walk backward from cursor to find word start.
	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	// Walk forward from cursor to find word end.
	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// completer tracks fuzzy completion state over builtin and bound names.
type completer struct {
	env        *lang.Env
	matches    fuzzy.Matches
	wordStart  int
	wordEnd    int
	selected   int
	cycling    bool
	cycleBase  string
	cycleStart int
}

func newCompleter(env *lang.Env) completer {
	return completer{env: env, selected: -1}
}

// candidates returns the completion vocabulary: builtins, constants, and
// names bound in the session environment.
func (c *completer) candidates() []string {
	names := append(lang.BuiltinNames(), c.env.Names()...)
	sort.Strings(names)

	return names
}

// match refreshes the fuzzy matches for the word at the cursor.
func (c *completer) match(input string, cursor int) {
	c.cycling = false
	c.selected = -1

	word, start, end := wordBounds(input, cursor)
	c.wordStart, c.wordEnd = start, end

	if word == "" {
		c.matches = nil

		return
	}

	c.matches = fuzzy.Find(word, c.candidates())
}

// cycle steps through the match list, replacing the current word with
// the selected candidate. It returns the new input text and cursor.
func (c *completer) cycle(
	input string,
	cursor int,
	backward bool,
) (string, int) {
	if !c.cycling {
		word, start, end := wordBounds(input, cursor)
		if word == "" {
			return input, cursor
		}

		c.matches = fuzzy.Find(word, c.candidates())
		if len(c.matches) == 0 {
			return input, cursor
		}

		c.cycling = true
		c.cycleBase = input[:start] + input[end:]
		c.cycleStart = start
		c.wordStart, c.wordEnd = start, end
		c.selected = -1
	}

	if backward {
		c.selected--
		if c.selected < 0 {
			c.selected = len(c.matches) - 1
		}
	} else {
		c.selected = (c.selected + 1) % len(c.matches)
	}

	word := c.matches[c.selected].Str
	text := c.cycleBase[:c.cycleStart] + word + c.cycleBase[c.cycleStart:]

	return text, c.cycleStart + len(word)
}

// reset clears all completion state.
func (c *completer) reset() {
	c.matches = nil
	c.cycling = false
	c.selected = -1
}

// view renders the suggestion hint line.
func (c *completer) view() string {
	if len(c.matches) == 0 {
		return ""
	}

	limit := len(c.matches)
	if limit > maxSuggestions {
		limit = maxSuggestions
	}

	parts := make([]string, 0, limit)

	for i := 0; i < limit; i++ {
		s := c.matches[i].Str
		if i == c.selected {
			parts = append(parts, selectedStyle.Render(s))
		} else {
			parts = append(parts, suggestionStyle.Render(s))
		}
	}

	return hintStyle.Render("  ") + strings.Join(parts, hintStyle.Render("  "))
}
