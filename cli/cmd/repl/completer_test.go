package repl

import (
	"strings"
	"testing"

	"github.com/ardnew/teval/lang"
)

func TestWordBounds(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		cursor int
		word   string
		start  int
		end    int
	}{
		{"empty", "", 0, "", 0, 0},
		{"whole word", "floor", 5, "floor", 0, 5},
		{"mid word", "floor", 3, "floor", 0, 5},
		{"after operator", "1 + flo", 7, "flo", 4, 7},
		{"dotted name", "str.len", 7, "str.len", 0, 7},
		{"cursor on boundary", "f(", 2, "", 2, 2},
		{"inside call", "min(ab, cd)", 6, "ab", 4, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.word || start != tt.start || end != tt.end {
				t.Errorf(
					"expected (%q, %d, %d), got (%q, %d, %d)",
					tt.word, tt.start, tt.end, word, start, end,
				)
			}
		})
	}
}

func TestCompleter_MatchesBuiltins(t *testing.T) {
	c := newCompleter(lang.NewEnv())

	c.match("str.len", 7)

	if len(c.matches) == 0 {
		t.Fatal("expected matches for str.len")
	}

	found := false

	for _, m := range c.matches {
		if m.Str == "str.length" {
			found = true
		}
	}

	if !found {
		t.Error("str.length not among matches")
	}
}

func TestCompleter_MatchesEnvNames(t *testing.T) {
	env := lang.NewEnv()
	env.Put("revenue", lang.IntValue(1))

	c := newCompleter(env)
	c.match("reven", 5)

	found := false

	for _, m := range c.matches {
		if m.Str == "revenue" {
			found = true
		}
	}

	if !found {
		t.Error("environment binding not among matches")
	}
}

func TestCompleter_CycleReplacesWord(t *testing.T) {
	c := newCompleter(lang.NewEnv())

	text, cursor := c.cycle("1 + str.lengt", 13, false)

	if !strings.HasPrefix(text, "1 + str.") {
		t.Fatalf("prefix lost: %q", text)
	}

	if text == "1 + str.lengt" {
		t.Fatal("cycle did not replace the word")
	}

	if cursor != len(text) {
		t.Errorf("cursor %d not at end of %q", cursor, text)
	}

	// A second Tab advances to the next candidate or wraps.
	text2, _ := c.cycle(text, cursor, false)
	if text2 == "" {
		t.Fatal("second cycle produced empty input")
	}
}

func TestCompleter_CycleWithoutWord(t *testing.T) {
	c := newCompleter(lang.NewEnv())

	text, cursor := c.cycle("", 0, false)
	if text != "" || cursor != 0 {
		t.Errorf("expected no-op, got (%q, %d)", text, cursor)
	}
}
