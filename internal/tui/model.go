// Package tui provides the live terminal dashboard.
package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"notifier/internal/board"
	"notifier/internal/service"
)

type pane int

const (
	panePending pane = iota
	paneCompleted
)

type mode int

const (
	modeBrowse mode = iota
	modeAdd
	modeEdit
	modeConfirmDelete
)

// tickMsg advances the clock once a second.
type tickMsg time.Time

// resultMsg reports a finished background operation.
type resultMsg struct {
	op  string
	err error
}

// Option configures a Model.
type Option func(*Model)

// WithClock sets the time source for the clock line.
func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.now = now }
}

// WithPerPage sets the number of entries per page.
func WithPerPage(n int) Option {
	return func(m *Model) {
		if n > 0 {
			m.perPage = n
		}
	}
}

// Model is the Bubble Tea model of the dashboard. Every mutation runs as a
// background command against the board, which pushes and then refetches.
type Model struct {
	ctx     context.Context
	board   *board.Board
	now     func() time.Time
	perPage int
	keys    keyMap

	clock  time.Time
	pane   pane
	page   [2]int
	cursor [2]int

	mode   mode
	input  textinput.Model
	target service.Entry

	busy      bool
	status    string
	statusErr bool
}

// New creates a dashboard model over an already refreshed board.
func New(ctx context.Context, b *board.Board, opts ...Option) *Model {
	m := &Model{
		ctx:     ctx,
		board:   b,
		now:     time.Now,
		perPage: board.DefaultPerPage,
		keys:    defaultKeys(),
		page:    [2]int{1, 1},
	}
	for _, opt := range opts {
		opt(m)
	}
	m.clock = m.now()

	m.input = textinput.New()
	m.input.Prompt = "> "
	m.input.CharLimit = 200
	return m
}

// Run starts the dashboard and blocks until the user quits.
func Run(ctx context.Context, b *board.Board, opts []Option, programOpts ...tea.ProgramOption) error {
	m := New(ctx, b, opts...)
	programOpts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, programOpts...)
	_, err := tea.NewProgram(m, programOpts...).Run()
	return err
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func (m *Model) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.clock = m.now()
		return m, tickCmd()

	case resultMsg:
		m.busy = false
		if msg.err != nil {
			m.setError(fmt.Sprintf("%s failed: %v", msg.op, msg.err))
		} else {
			m.setStatus(msg.op)
		}
		m.clamp()
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeAdd, modeEdit:
			return m.updateInput(msg)
		case modeConfirmDelete:
			return m.updateConfirm(msg)
		}
		return m.updateBrowse(msg)
	}

	if m.mode == modeAdd || m.mode == modeEdit {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Switch):
		m.pane = 1 - m.pane
	case key.Matches(msg, m.keys.Up):
		if m.cursor[m.pane] > 0 {
			m.cursor[m.pane]--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor[m.pane] < len(m.visible().Items)-1 {
			m.cursor[m.pane]++
		}
	case key.Matches(msg, m.keys.Prev):
		if m.visible().HasPrev() {
			m.page[m.pane]--
			m.cursor[m.pane] = 0
		}
	case key.Matches(msg, m.keys.Next):
		if m.visible().HasNext() {
			m.page[m.pane]++
			m.cursor[m.pane] = 0
		}
	case key.Matches(msg, m.keys.Refresh):
		return m, m.run("refresh", func(ctx context.Context) error {
			return m.board.Refresh(ctx)
		})
	case key.Matches(msg, m.keys.Add):
		m.mode = modeAdd
		m.input.SetValue("")
		m.input.Placeholder = "New entry title..."
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Toggle):
		e, ok := m.selected()
		if !ok {
			return m, nil
		}
		if e.Value.Completed {
			return m, m.run("revive", func(ctx context.Context) error {
				return m.board.Revive(ctx, e.Key)
			})
		}
		return m, m.run("complete", func(ctx context.Context) error {
			return m.board.Complete(ctx, e.Key)
		})
	case key.Matches(msg, m.keys.Edit):
		e, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.mode = modeEdit
		m.target = e
		m.input.SetValue(e.Value.Title)
		m.input.CursorEnd()
		m.input.Placeholder = "Edit entry title..."
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Delete):
		e, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.mode = modeConfirmDelete
		m.target = e
	}
	return m, nil
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.leaveInput()
		return m, nil
	case tea.KeyEnter:
		title := strings.TrimSpace(m.input.Value())
		if title == "" {
			m.setError(board.ErrTitleRequired.Error())
			return m, nil
		}
		editing := m.mode == modeEdit
		target := m.target.Key
		m.leaveInput()
		if editing {
			return m, m.run("edit", func(ctx context.Context) error {
				_, err := m.board.Edit(ctx, target, board.Patch{Title: &title})
				return err
			})
		}
		return m, m.run("add", func(ctx context.Context) error {
			_, err := m.board.Add(ctx, board.Draft{Title: title})
			return err
		})
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		target := m.target.Key
		m.mode = modeBrowse
		return m, m.run("delete", func(ctx context.Context) error {
			return m.board.Delete(ctx, target)
		})
	case "n", "N", "esc":
		m.mode = modeBrowse
		m.setStatus("delete cancelled")
	}
	return m, nil
}

// run starts op in the background unless another operation is in flight.
func (m *Model) run(op string, fn func(context.Context) error) tea.Cmd {
	if m.busy {
		m.setError("busy, try again")
		return nil
	}
	m.busy = true
	m.setStatus(op + "...")
	ctx := m.ctx
	return func() tea.Msg {
		return resultMsg{op: op, err: fn(ctx)}
	}
}

func (m *Model) leaveInput() {
	m.mode = modeBrowse
	m.input.SetValue("")
	m.input.Blur()
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(s string) {
	m.status = s
	m.statusErr = true
}

func (m *Model) entries(p pane) []service.Entry {
	if p == paneCompleted {
		return m.board.Completed()
	}
	return m.board.Pending()
}

func (m *Model) pageOf(p pane) board.Page[service.Entry] {
	return board.Paginate(m.entries(p), m.page[p], m.perPage)
}

func (m *Model) visible() board.Page[service.Entry] {
	return m.pageOf(m.pane)
}

func (m *Model) selected() (service.Entry, bool) {
	items := m.visible().Items
	i := m.cursor[m.pane]
	if i < 0 || i >= len(items) {
		return service.Entry{}, false
	}
	return items[i], true
}

// clamp keeps pages and cursors inside the current snapshot.
func (m *Model) clamp() {
	for _, p := range []pane{panePending, paneCompleted} {
		pg := m.pageOf(p)
		if m.page[p] > pg.TotalPages {
			m.page[p] = pg.TotalPages
			pg = m.pageOf(p)
		}
		if m.cursor[p] >= len(pg.Items) {
			m.cursor[p] = max(len(pg.Items)-1, 0)
		}
	}
}
