package controller

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	m "deepsampler.dev/pkg/deepsampler/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
	sampleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	labelStyle  = lipgloss.NewStyle().Faint(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// TUI implements UI with a scrollable Bubble Tea view for calls. Summaries and merge
// results are short and printed like SimpleUI does.
type TUI struct {
	*SimpleUI

	newProgram func(model tea.Model) *tea.Program
}

// NewTUI creates a new TUI.
func NewTUI(cmd *cobra.Command) *TUI {
	return &TUI{
		SimpleUI: NewSimpleUI(cmd),
		newProgram: func(model tea.Model) *tea.Program {
			return tea.NewProgram(model, tea.WithOutput(cmd.OutOrStdout()), tea.WithAltScreen())
		},
	}
}

// DisplayCalls opens the interactive call browser unless plain output is requested.
func (t *TUI) DisplayCalls(ctx context.Context, path m.Path, calls []m.CallView, options ...DisplayOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if newDisplayConfig(options).plain || len(calls) == 0 {
		return t.SimpleUI.DisplayCalls(ctx, path, calls)
	}

	program := t.newProgram(newCallsModel(path, calls))

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run call browser: %w", err)
	}

	return nil
}

// callsModel is the Bubble Tea model of the call browser.
type callsModel struct {
	title    string
	content  string
	viewport viewport.Model
	ready    bool
}

func newCallsModel(path m.Path, calls []m.CallView) callsModel {
	return callsModel{
		title:   fmt.Sprintf("%s · %d call(s)", path, len(calls)),
		content: renderCalls(calls),
	}
}

func renderCalls(calls []m.CallView) string {
	var b strings.Builder

	current := ""

	for _, call := range calls {
		if call.SampleID != current {
			if current != "" {
				b.WriteString("\n")
			}

			current = call.SampleID
			b.WriteString(sampleStyle.Render(current))
			b.WriteString("\n")
		}

		fmt.Fprintf(&b, "  #%d %s %s\n", call.Index, labelStyle.Render("args"), call.Args)
		fmt.Fprintf(&b, "     %s %s\n", labelStyle.Render("returns"), call.ReturnValue)
	}

	return b.String()
}

func (cm callsModel) Init() tea.Cmd {
	return nil
}

func (cm callsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return cm, tea.Quit
		}
	case tea.WindowSizeMsg:
		height := msg.Height - cm.chromeHeight()
		if height < 1 {
			height = 1
		}

		if !cm.ready {
			cm.viewport = viewport.New(msg.Width, height)
			cm.viewport.SetContent(cm.content)
			cm.ready = true
		} else {
			cm.viewport.Width = msg.Width
			cm.viewport.Height = height
		}
	}

	var cmd tea.Cmd
	cm.viewport, cmd = cm.viewport.Update(msg)

	return cm, cmd
}

func (cm callsModel) chromeHeight() int {
	return lipgloss.Height(cm.header()) + lipgloss.Height(cm.footer())
}

func (cm callsModel) header() string {
	return titleStyle.Render(cm.title)
}

func (cm callsModel) footer() string {
	return helpStyle.Render(fmt.Sprintf("%3.f%% · ↑/k ↓/j pgup/pgdn · q: quit", cm.viewport.ScrollPercent()*100))
}

func (cm callsModel) View() string {
	if !cm.ready {
		return "loading…"
	}

	return fmt.Sprintf("%s\n%s\n%s", cm.header(), cm.viewport.View(), cm.footer())
}
