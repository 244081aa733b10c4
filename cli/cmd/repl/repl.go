package repl

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/teval/lang"
	"github.com/ardnew/teval/log"
)

const prompt = "➜ "

// Styles.
//
//nolint:gochecknoglobals
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
)

func helpMessage() string {
	return `
Commands:

  help     Print this cruft
  list     List bound names and builtins
  clear    Clear scrollback
  quit     Exit

Usage:
  Type an expression to evaluate it
  Completions appear automatically as you type
  Press Tab / Shift-Tab to cycle through candidates
  Use Up/Down arrows for history navigation
  Press Ctrl+C on an empty line or Ctrl+D to exit
`
}

// Repl is the interactive evaluator command.
type Repl struct{}

// Run starts the REPL.
func (Repl) Run(ctx context.Context) error {
	m := newModel(ctx)

	_, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()

	return err
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctx        context.Context
	input      textinput.Model
	env        *lang.Env
	history    []string
	historyIdx int
	scrollback []string
	completer  completer
	quitting   bool
}

func newModel(ctx context.Context) *model {
	input := textinput.New()
	input.Prompt = promptStyle.Render(prompt)
	input.TextStyle = inputStyle
	input.Focus()

	env := lang.NewEnv()

	return &model{
		ctx:       ctx,
		input:     input,
		env:       env,
		completer: newCompleter(env),
	}
}

// Init implements tea.Model.
func (m *model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd

		m.input, cmd = m.input.Update(msg)

		return m, cmd
	}

	switch key.Type {
	case tea.KeyCtrlD:
		m.quitting = true

		return m, tea.Quit

	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.completer.reset()

		return m, nil

	case tea.KeyEnter:
		m.submit()
		m.completer.reset()

		if m.quitting {
			return m, tea.Quit
		}

		return m, nil

	case tea.KeyTab, tea.KeyShiftTab:
		text, cursor := m.completer.cycle(
			m.input.Value(),
			m.input.Position(),
			key.Type == tea.KeyShiftTab,
		)
		m.input.SetValue(text)
		m.input.SetCursor(cursor)

		return m, nil

	case tea.KeyUp, tea.KeyDown:
		m.navigateHistory(key.Type == tea.KeyUp)

		return m, nil
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)
	m.completer.match(m.input.Value(), m.input.Position())

	return m, cmd
}

// submit evaluates the current input line.
func (m *model) submit() {
	line := strings.TrimSpace(m.input.Value())

	m.input.SetValue("")

	if line == "" {
		return
	}

	m.history = append(m.history, line)
	m.historyIdx = len(m.history)

	m.echo(promptStyle.Render(prompt) + inputStyle.Render(line))

	switch line {
	case "help":
		m.echo(hintStyle.Render(helpMessage()))

		return

	case "list":
		names := append(m.env.Names(), lang.BuiltinNames()...)
		m.echo(hintStyle.Render(strings.Join(names, "  ")))

		return

	case "clear":
		m.scrollback = nil

		return

	case "quit":
		m.quitting = true

		return
	}

	result, err := lang.EvalString(
		m.ctx,
		line,
		m.env,
		lang.WithLogger(log.Default()),
	)
	if err != nil {
		m.echo(errorStyle.Render(err.Error()))

		return
	}

	m.echo(resultStyle.Render(result.String()))
}

// echo appends a rendered line to the scrollback.
func (m *model) echo(line string) {
	m.scrollback = append(m.scrollback, line)
}

// navigateHistory moves through previously submitted lines.
func (m *model) navigateHistory(up bool) {
	if len(m.history) == 0 {
		return
	}

	if up {
		if m.historyIdx > 0 {
			m.historyIdx--
		}
	} else {
		if m.historyIdx < len(m.history) {
			m.historyIdx++
		}
	}

	if m.historyIdx == len(m.history) {
		m.input.SetValue("")

		return
	}

	m.input.SetValue(m.history[m.historyIdx])
	m.input.CursorEnd()
}

// View implements tea.Model.
func (m *model) View() string {
	if m.quitting {
		return strings.Join(m.scrollback, "\n") + "\n"
	}

	var b strings.Builder

	for _, line := range m.scrollback {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	b.WriteString(m.input.View())

	if hint := m.completer.view(); hint != "" {
		fmt.Fprintf(&b, "\n%s", hint)
	}

	return b.String()
}
