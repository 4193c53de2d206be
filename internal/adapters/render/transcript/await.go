package transcript

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/bnema/mwa-bridge/internal/domain"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

var ErrUnexpectedAwaitModel = errors.New("unexpected final await model type")

// AwaitOptions names the pending request a status line follows while a
// collaborator waits for its resolution.
type AwaitOptions struct {
	RequestID domain.RequestID
	Snapshot  func() domain.RegistrySnapshot
	Now       func() time.Time
	Output    io.Writer
}

type resolvedMsg struct {
	err error
}

// awaitModel re-reads the registry snapshot on every spinner tick, so the line
// shows the request's method, session and age until the consumer resolves it.
type awaitModel struct {
	spinner   spinner.Model
	styles    styles
	requestID domain.RequestID
	snapshot  func() domain.RegistrySnapshot
	now       func() time.Time
	wait      tea.Cmd

	request domain.PendingRequest
	parked  bool
	pending int
	err     error
	done    bool
}

func newAwaitModel(opts AwaitOptions, wait tea.Cmd) awaitModel {
	s := newStyles()

	m := awaitModel{
		spinner:   spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(s.notification)),
		styles:    s,
		requestID: opts.RequestID,
		snapshot:  opts.Snapshot,
		now:       opts.Now,
		wait:      wait,
	}
	if m.snapshot == nil {
		m.snapshot = func() domain.RegistrySnapshot { return domain.RegistrySnapshot{} }
	}
	if m.now == nil {
		m.now = time.Now
	}

	return m.refresh()
}

func (m awaitModel) refresh() awaitModel {
	snapshot := m.snapshot()
	m.pending = len(snapshot.Pending)
	m.parked = false
	for _, request := range snapshot.Pending {
		if request.ID == m.requestID {
			m.request = request
			m.parked = true
			break
		}
	}
	return m
}

func (m awaitModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.wait)
}

func (m awaitModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		m = m.refresh()
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case resolvedMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m awaitModel) View() string {
	if m.done {
		return ""
	}

	return m.spinner.View() + " " + m.status()
}

func (m awaitModel) status() string {
	if !m.parked {
		return m.styles.completion.Render(fmt.Sprintf("request %s resolved", shortID(string(m.requestID))))
	}

	age := m.now().Sub(m.request.CreatedAt).Truncate(100 * time.Millisecond)
	if age < 0 {
		age = 0
	}

	return fmt.Sprintf("%s %s %s %s",
		m.styles.notification.Render("awaiting "+m.request.Method),
		m.styles.detail.Render(fmt.Sprintf("request=%s session=%s", shortID(string(m.request.ID)), shortID(string(m.request.SessionID)))),
		m.styles.header.Render(fmt.Sprintf("pending=%d", m.pending)),
		m.styles.timestamp.Render(age.String()),
	)
}

// Await runs wait while a live status line follows the pending request. It
// returns wait's error.
func Await(ctx context.Context, opts AwaitOptions, wait func(context.Context) error) error {
	output := opts.Output
	if output == nil {
		output = io.Discard
	}

	resolve := func() tea.Msg {
		return resolvedMsg{err: wait(ctx)}
	}

	p := tea.NewProgram(
		newAwaitModel(opts, resolve),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	result, ok := finalModel.(awaitModel)
	if !ok {
		return ErrUnexpectedAwaitModel
	}

	return result.err
}
