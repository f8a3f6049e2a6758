package main

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cockroachdb/errors"
)

var errPickAborted = errors.New("no choice made")

type picker struct {
	question string
	choices  []string
	cursor   int
	chosen   bool
}

func (p picker) Init() tea.Cmd { return nil }

func (p picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch key.String() {
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.choices)-1 {
			p.cursor++
		}
	case "enter":
		p.chosen = true
		return p, tea.Quit
	case "ctrl+c", "esc", "q":
		return p, tea.Quit
	}
	return p, nil
}

func (p picker) View() string {
	if p.chosen {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", p.question)
	for i, choice := range p.choices {
		cursor := "  "
		if i == p.cursor {
			cursor = "> "
		}
		fmt.Fprintf(&b, "%s%s\n", cursor, choice)
	}
	b.WriteString("\n(up/down to move, enter to pick, q to cancel)\n")
	return b.String()
}

// pick asks the user to choose one of choices on the terminal.
func pick(question string, choices []string) (string, error) {
	final, err := tea.NewProgram(picker{question: question, choices: choices}, tea.WithOutput(os.Stderr)).Run()
	if err != nil {
		return "", err
	}
	p := final.(picker)
	if !p.chosen {
		return "", errPickAborted
	}
	return p.choices[p.cursor], nil
}
