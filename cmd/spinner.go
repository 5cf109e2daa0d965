package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/bnema/care-cli/internal/domain"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// slowAfter is when the loading line starts showing how long the portal has
// taken.
const slowAfter = 2 * time.Second

var (
	loadedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	failedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
)

// loadResult is what a panel load reports: a one-line summary of what
// arrived, or the error.
type loadResult struct {
	summary string
	err     error
}

type loadingModel struct {
	spinner spinner.Model
	label   string
	load    tea.Cmd
	started time.Time
	now     func() time.Time

	result *loadResult
}

func newLoadingModel(label string, load tea.Cmd, now func() time.Time) loadingModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return loadingModel{
		spinner: s,
		label:   label,
		load:    load,
		started: now(),
		now:     now,
	}
}

func (m loadingModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load)
}

func (m loadingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.result != nil {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case loadResult:
		m.result = &msg
		return m, tea.Quit
	default:
		return m, nil
	}
}

// View leaves a final status line behind once the load settles: the summary
// on success, or the text a user would see for the failure.
func (m loadingModel) View() string {
	switch {
	case m.result == nil:
		line := fmt.Sprintf("%s %s", m.spinner.View(), m.label)
		if waited := m.now().Sub(m.started); waited >= slowAfter {
			line += fmt.Sprintf(" %ds", int(waited.Seconds()))
		}
		return line
	case m.result.err != nil:
		return failedStyle.Render("✗ "+domain.UserMessage(m.result.err, m.result.err.Error())) + "\n"
	case m.result.summary != "":
		return loadedStyle.Render("✓ "+m.result.summary) + "\n"
	default:
		return ""
	}
}

// runLoading shows label with a spinner on output while load runs, and
// returns load's error.
func runLoading(ctx context.Context, output io.Writer, label string, load func(context.Context) (string, error)) error {
	loadCmd := func() tea.Msg {
		summary, err := load(ctx)
		return loadResult{summary: summary, err: err}
	}

	p := tea.NewProgram(
		newLoadingModel(label, loadCmd, time.Now),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	result, ok := finalModel.(loadingModel)
	if !ok {
		return fmt.Errorf("unexpected final loading model type %T", finalModel)
	}
	if result.result == nil {
		return fmt.Errorf("%s: %w", label, context.Canceled)
	}

	return result.result.err
}

// counted renders n with noun, pluralised with a trailing s.
func counted(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
