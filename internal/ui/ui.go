package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/zdx/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	RunView ViewState = iota
	ResultView
)

// recentMessages bounds the scrollback of phase messages shown during a run.
const recentMessages = 8

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	engine       *tasks.TransferEngine
	opts         tasks.RunOptions
	spinner      spinner.Model
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	messages     []string
	result       *tasks.RunResult
	err          error
	help         help.Model
	keys         keyMap
}

// keyMap defines the key bindings for the TUI.
type keyMap struct {
	quit key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.quit}}
}

type progressUpdateMsg tasks.ProgressUpdate

type runCompleteMsg struct {
	result *tasks.RunResult
	err    error
}

// NewModel creates a new TUI model over a configured engine and the run
// parameters from the command line.
func NewModel(ctx context.Context, engine *tasks.TransferEngine, opts tasks.RunOptions) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.title

	return &Model{
		ctx:     ctx,
		view:    RunView,
		engine:  engine,
		opts:    opts,
		spinner: sp,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init starts the pipeline run and the spinner.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.startRun(), m.spinner.Tick)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		m.messages = append(m.messages, m.progress.Message)
		if len(m.messages) > recentMessages {
			m.messages = m.messages[len(m.messages)-recentMessages:]
		}
		return m, m.waitForProgress()

	case runCompleteMsg:
		m.result = msg.result
		m.err = msg.err
		m.view = ResultView
		m.progressChan = nil
		return m, nil
	}

	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case RunView:
		return m.renderRun()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) startRun() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)

	go func() {
		result, err := m.engine.Run(m.ctx, m.opts, m.progressChan)
		m.result = result
		m.err = err
		close(m.progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return runCompleteMsg{result: m.result, err: m.err}
		}

		update, ok := <-m.progressChan
		if !ok {
			return runCompleteMsg{result: m.result, err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderRun() string {
	title := styles.title.Render(fmt.Sprintf("Transferring recordings for %q", m.opts.MeetingName))

	var log strings.Builder
	for _, line := range m.messages {
		log.WriteString("  " + line + "\n")
	}

	current := m.progress.Message
	if current == "" {
		current = "Starting..."
	}

	helpView := m.help.ShortHelpView(m.keys.ShortHelp())
	return fmt.Sprintf("%s\n%s%s %s\n\n%s", title, log.String(), m.spinner.View(), current, helpView)
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView(m.keys.ShortHelp())

	if m.err != nil {
		return fmt.Sprintf("%s\n\n%s",
			styles.err.Render(fmt.Sprintf("Run failed: %v", m.err)), helpView)
	}
	if m.result == nil {
		return fmt.Sprintf("%s\n\n%s", styles.err.Render("No result available"), helpView)
	}

	title := styles.ok.Render("✓ Run complete")
	info := fmt.Sprintf("\nRecordings matched: %d\nUploaded: %d\nFailed: %d\nSkipped (too short): %d",
		m.result.Matched, m.result.Uploaded, m.result.Failed, m.result.Filtered)

	var details strings.Builder
	for _, rec := range m.result.Recordings {
		line := fmt.Sprintf("\n  • %s (%s) — %s", rec.Topic, rec.StartTime.Format("02 Jan 2006"), rec.Status)
		switch rec.Status {
		case tasks.StatusDone:
			details.WriteString(line)
		case tasks.StatusSkipped:
			details.WriteString(styles.warn.Render(line))
		default:
			if rec.Err != nil {
				line = fmt.Sprintf("%s: %v", line, rec.Err)
			}
			details.WriteString(styles.err.Render(line))
		}
	}

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, details.String(), helpView)
}
