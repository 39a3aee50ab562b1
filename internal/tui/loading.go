// Package tui provides the interactive terminal views: the scan progress
// display and the setup form.
package tui

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/pulse/internal/cli"
	"github.com/theirongolddev/pulse/internal/pipeline"
	"github.com/theirongolddev/pulse/internal/tui/theme"
)

// ProgressMsg reports file parsing progress.
type ProgressMsg struct {
	Current int
	Total   int
}

// DataLoadedMsg is sent when the pipeline finishes.
type DataLoadedMsg struct {
	Result   *pipeline.Result
	Err      error
	LoadTime time.Duration
}

// LoadingModel shows a spinner and a progress bar while a scan runs.
type LoadingModel struct {
	spinner  spinner.Model
	bar      progress.Model
	loadSub  chan tea.Msg
	opts     pipeline.Options
	current  int
	total    int
	done     *DataLoadedMsg
	canceled bool
}

// NewLoadingModel creates the model for one pipeline run. opts.Progress is
// replaced with a callback that feeds the view.
func NewLoadingModel(opts pipeline.Options) LoadingModel {
	t := theme.Active

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(t.Accent)

	bar := progress.New(
		progress.WithSolidFill(string(t.Accent)),
		progress.WithWidth(40),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	return LoadingModel{
		spinner: sp,
		bar:     bar,
		loadSub: make(chan tea.Msg, 1),
		opts:    opts,
	}
}

// Init implements tea.Model.
func (m LoadingModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, loadDataCmd(m.opts, m.loadSub))
}

// Update implements tea.Model.
func (m LoadingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			m.canceled = true
			return m, tea.Quit
		}
		return m, nil

	case ProgressMsg:
		m.current, m.total = msg.Current, msg.Total
		return m, waitForLoadMsg(m.loadSub)

	case DataLoadedMsg:
		m.done = &msg
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m LoadingModel) View() string {
	if m.done != nil || m.canceled {
		return ""
	}

	t := theme.Active
	label := lipgloss.NewStyle().Foreground(t.TextMuted)
	count := lipgloss.NewStyle().Foreground(t.TextPrimary).Bold(true)

	var b strings.Builder
	b.WriteString("  ")
	b.WriteString(m.spinner.View())
	if m.total == 0 {
		b.WriteString(label.Render(" Discovering sessions..."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(label.Render(" Parsing sessions "))
	b.WriteString(m.bar.ViewAs(float64(m.current) / float64(m.total)))
	b.WriteString(" ")
	b.WriteString(count.Render(cli.FormatNumber(int64(m.current))))
	b.WriteString(label.Render(" / "))
	b.WriteString(count.Render(cli.FormatNumber(int64(m.total))))
	b.WriteString("\n")
	return b.String()
}

// loadDataCmd starts the pipeline in a background goroutine. It streams
// ProgressMsg updates and a final DataLoadedMsg through sub.
func loadDataCmd(opts pipeline.Options, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			start := time.Now()

			// Non-blocking send so workers aren't stalled; the next update
			// catches up when the channel is full.
			opts.Progress = func(current, total int) {
				select {
				case sub <- ProgressMsg{Current: current, Total: total}:
				default:
				}
			}

			res, err := pipeline.Run(opts)
			sub <- DataLoadedMsg{Result: res, Err: err, LoadTime: time.Since(start)}
		}()

		return <-sub
	}
}

// waitForLoadMsg blocks until the next message arrives from the loader goroutine.
func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

// ErrCanceled is returned when the user quits the progress view.
var ErrCanceled = errors.New("scan canceled")

// RunWithProgress runs the pipeline behind a live progress view drawn on out.
func RunWithProgress(opts pipeline.Options, out io.Writer) (*pipeline.Result, time.Duration, error) {
	p := tea.NewProgram(NewLoadingModel(opts), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return nil, 0, fmt.Errorf("progress view: %w", err)
	}

	m, ok := final.(LoadingModel)
	if !ok || m.canceled || m.done == nil {
		return nil, 0, ErrCanceled
	}
	return m.done.Result, m.done.LoadTime, m.done.Err
}
