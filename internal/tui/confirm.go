package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/papapumpkin/foundry/internal/conflict"
)

// ConfirmOption is one selectable answer in the overwrite prompt.
type ConfirmOption struct {
	Label    string
	Decision conflict.Decision
}

// ConfirmModel is a bubbletea model asking whether to overwrite one
// existing artifact. Cancel is preselected.
type ConfirmModel struct {
	Description string
	Options     []ConfirmOption
	Cursor      int
	Keys        KeyMap

	decision conflict.Decision
	done     bool
}

// NewConfirmModel creates a prompt for description.
func NewConfirmModel(description string) ConfirmModel {
	return ConfirmModel{
		Description: description,
		Options: []ConfirmOption{
			{Label: "[o]verwrite", Decision: conflict.Overwrite},
			{Label: "[c]ancel", Decision: conflict.Cancel},
		},
		Cursor: 1,
		Keys:   DefaultKeyMap(),
	}
}

// Init implements tea.Model.
func (m ConfirmModel) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok || m.done {
		return m, nil
	}
	switch {
	case key.Matches(km, m.Keys.Overwrite):
		return m.resolve(conflict.Overwrite)
	case key.Matches(km, m.Keys.Cancel):
		return m.resolve(conflict.Cancel)
	case key.Matches(km, m.Keys.Enter):
		return m.resolve(m.Selected())
	case key.Matches(km, m.Keys.Left):
		if m.Cursor > 0 {
			m.Cursor--
		}
	case key.Matches(km, m.Keys.Right):
		if m.Cursor < len(m.Options)-1 {
			m.Cursor++
		}
	}
	return m, nil
}

func (m ConfirmModel) resolve(d conflict.Decision) (tea.Model, tea.Cmd) {
	m.decision = d
	m.done = true
	return m, tea.Quit
}

// Selected returns the highlighted decision.
func (m ConfirmModel) Selected() conflict.Decision {
	if m.Cursor < 0 || m.Cursor >= len(m.Options) {
		return conflict.Cancel
	}
	return m.Options[m.Cursor].Decision
}

// Decision returns the chosen answer and whether one was made.
func (m ConfirmModel) Decision() (conflict.Decision, bool) {
	return m.decision, m.done
}

// View implements tea.Model.
func (m ConfirmModel) View() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	b.WriteString(styleConfirmTitle.Render("Overwrite " + m.Description + "?"))
	b.WriteString("\n\n")

	parts := make([]string, 0, len(m.Options))
	for i, opt := range m.Options {
		if i == m.Cursor {
			parts = append(parts, styleConfirmSelected.Render(opt.Label))
		} else {
			parts = append(parts, styleConfirmNormal.Render(opt.Label))
		}
	}
	b.WriteString(strings.Join(parts, "  "))
	b.WriteString("\n\n")

	help := make([]string, 0, 3)
	for _, k := range m.Keys.ShortHelp() {
		h := k.Help()
		help = append(help, h.Key+" "+h.Desc)
	}
	b.WriteString(styleConfirmHelp.Render(strings.Join(help, " • ")))
	return styleConfirmOverlay.Render(b.String())
}

// Prompter implements conflict.Policy with an interactive bubbletea prompt,
// one program run per conflict.
type Prompter struct {
	in   io.Reader
	out  io.Writer
	opts []tea.ProgramOption
}

// Verify Prompter satisfies conflict.Policy at compile time.
var _ conflict.Policy = (*Prompter)(nil)

// NewPrompter creates a prompter reading keys from in and drawing on out.
func NewPrompter(in io.Reader, out io.Writer, opts ...tea.ProgramOption) *Prompter {
	return &Prompter{in: in, out: out, opts: opts}
}

// ConfirmOverwrite runs the prompt and blocks until it is answered. A
// cancelled context answers Cancel. Use it only on a terminal; the input is
// read until a key resolves the prompt.
func (p *Prompter) ConfirmOverwrite(ctx context.Context, description string) (conflict.Decision, error) {
	opts := append([]tea.ProgramOption{
		tea.WithInput(p.in),
		tea.WithOutput(p.out),
		tea.WithContext(ctx),
	}, p.opts...)

	final, err := tea.NewProgram(NewConfirmModel(description), opts...).Run()
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, tea.ErrProgramKilled) {
			return conflict.Cancel, nil
		}
		return conflict.Cancel, fmt.Errorf("tui: overwrite prompt: %w", err)
	}
	m, ok := final.(ConfirmModel)
	if !ok {
		return conflict.Cancel, nil
	}
	if d, answered := m.Decision(); answered {
		return d, nil
	}
	return conflict.Cancel, nil
}
