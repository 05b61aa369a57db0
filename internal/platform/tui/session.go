package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/dinoevo/internal/config"
	"github.com/vovakirdan/dinoevo/internal/dino"
	"github.com/vovakirdan/dinoevo/internal/storage"
)

// Catalog is the read side of the runs database a session browses.
type Catalog interface {
	ListRuns(limit int) ([]storage.Run, error)
	History(runID int64) ([]storage.Generation, error)
}

// ReplayFunc plays the champion of a stored run and presents every frame to
// p. It returns when the episode ends or ctx is cancelled.
type ReplayFunc func(ctx context.Context, runID int64, p dino.Presenter) (dino.Episode, error)

type sessionMode int

const (
	modeRuns sessionMode = iota
	modeReplay
	modeHistory
)

// replayFrameMsg and replayDoneMsg carry their stream so messages of a
// cancelled replay are dropped.
type replayFrameMsg struct {
	stream *replayStream
	frame  dino.Frame
}

type replayDoneMsg struct {
	stream  *replayStream
	episode dino.Episode
	err     error
}

// replayStream runs one replay on its own goroutine. It is the session's
// presenter: frames are handed over an unbuffered channel and cancel is
// the session's stop signal.
type replayStream struct {
	ctx     context.Context
	cancel  context.CancelFunc
	frames  chan dino.Frame
	pace    pacer
	episode dino.Episode
	err     error
}

func newReplayStream(parent context.Context, runID int64, fps int, fast *atomic.Bool, replay ReplayFunc) *replayStream {
	ctx, cancel := context.WithCancel(parent)
	s := &replayStream{
		ctx:    ctx,
		cancel: cancel,
		frames: make(chan dino.Frame),
		pace:   newPacer(fps, fast),
	}
	go func() {
		defer close(s.frames)
		s.episode, s.err = replay(ctx, runID, s)
	}()
	return s
}

func (s *replayStream) Present(f dino.Frame) {
	select {
	case s.frames <- f:
	case <-s.ctx.Done():
		return
	}
	s.pace.wait()
}

func (s *replayStream) StopRequested() bool {
	return s.ctx.Err() != nil
}

// next waits for the following frame or the end of the replay.
func (s *replayStream) next() tea.Msg {
	f, ok := <-s.frames
	if !ok {
		return replayDoneMsg{stream: s, episode: s.episode, err: s.err}
	}
	return replayFrameMsg{stream: s, frame: f}
}

// SessionOptions configures a SessionModel.
type SessionOptions struct {
	User     string
	Width    int
	Height   int
	RunLimit int
}

// SessionModel is the top-level model of an SSH session: a run list from
// which the user replays a champion or browses a run's history. Every
// session owns its replay, so one viewer quitting never stops another.
type SessionModel struct {
	ctx      context.Context
	catalog  Catalog
	replay   ReplayFunc
	user     string
	runs     []storage.Run
	err      error
	table    table.Model
	keys     SessionKeyMap
	help     help.Model
	mode     sessionMode
	watch    WatchModel
	history  HistoryModel
	stream   *replayStream
	width    int
	height   int
	quitting bool
}

// NewSessionModel creates a session and loads the most recent runs.
func NewSessionModel(ctx context.Context, catalog Catalog, replay ReplayFunc, opts SessionOptions) SessionModel {
	m := SessionModel{
		ctx:     ctx,
		catalog: catalog,
		replay:  replay,
		user:    opts.User,
		keys:    DefaultSessionKeyMap(),
		help:    help.New(),
		width:   opts.Width,
		height:  opts.Height,
	}
	m.help.Width = opts.Width
	m.runs, m.err = catalog.ListRuns(opts.RunLimit)
	m.table = m.createTable()
	return m
}

func (m *SessionModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "ID", Width: 5},
		{Title: "Status", Width: 9},
		{Title: "Pop", Width: 5},
		{Title: "Gens", Width: 5},
		{Title: "Best", Width: 10},
		{Title: "Started", Width: 16},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(runRows(m.runs)),
		table.WithFocused(true),
		table.WithHeight(max(m.height-8, 3)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

func runRows(runs []storage.Run) []table.Row {
	rows := make([]table.Row, len(runs))
	for i, r := range runs {
		rows[i] = table.Row{
			fmt.Sprintf("%d", r.ID),
			r.Status,
			fmt.Sprintf("%d", r.Population),
			fmt.Sprintf("%d", r.Generations),
			fmt.Sprintf("%.2f", r.BestFitness),
			r.CreatedAt.Format("2006-01-02 15:04"),
		}
	}
	return rows
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		cursor := m.table.Cursor()
		m.table = m.createTable()
		m.table.SetCursor(cursor)

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) || (m.mode == modeRuns && key.Matches(msg, m.keys.Back)) {
			m.stopReplay()
			m.quitting = true
			return m, tea.Quit
		}
		if key.Matches(msg, m.keys.Back) {
			m.stopReplay()
			m.mode = modeRuns
			return m, nil
		}

	case replayFrameMsg:
		if msg.stream != m.stream {
			return m, nil
		}
		next, _ := m.watch.Update(frameMsg(msg.frame))
		m.watch = next.(WatchModel)
		return m, msg.stream.next

	case replayDoneMsg:
		if msg.stream != m.stream {
			return m, nil
		}
		m.stream.cancel()
		m.stream = nil
		next, _ := m.watch.Update(statusMsg(replayStatus(msg.episode, msg.err)))
		m.watch = next.(WatchModel)
		return m, nil
	}

	switch m.mode {
	case modeReplay:
		next, cmd := m.watch.Update(msg)
		m.watch = next.(WatchModel)
		return m, cmd
	case modeHistory:
		next, cmd := m.history.Update(msg)
		m.history = next.(HistoryModel)
		return m, cmd
	}
	return m.updateRuns(msg)
}

func (m SessionModel) updateRuns(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Up), key.Matches(keyMsg, m.keys.Down):
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd

	case key.Matches(keyMsg, m.keys.Replay):
		if run, ok := m.selected(); ok {
			return m.startReplay(run)
		}

	case key.Matches(keyMsg, m.keys.History):
		run, ok := m.selected()
		if !ok {
			return m, nil
		}
		generations, err := m.catalog.History(run.ID)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.history = NewHistoryModel(run, generations, m.width, m.height)
		m.mode = modeHistory
	}
	return m, nil
}

func (m SessionModel) startReplay(run storage.Run) (tea.Model, tea.Cmd) {
	cfg, err := config.Parse([]byte(run.Config))
	if err != nil {
		m.err = fmt.Errorf("run %d config: %w", run.ID, err)
		return m, nil
	}
	m.err = nil

	fast := &atomic.Bool{}
	m.watch = NewWatchModel(fmt.Sprintf("dinoevo replay %d", run.ID), NewScene(cfg), m.width, m.height, fast)
	next, _ := m.watch.Update(statusMsg(fmt.Sprintf("champion of run %d", run.ID)))
	m.watch = next.(WatchModel)

	m.stream = newReplayStream(m.ctx, run.ID, cfg.Screen.FPS, fast, m.replay)
	m.mode = modeReplay
	return m, m.stream.next
}

func (m *SessionModel) stopReplay() {
	if m.stream != nil {
		m.stream.cancel()
		m.stream = nil
	}
}

func (m SessionModel) selected() (storage.Run, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.runs) {
		return storage.Run{}, false
	}
	return m.runs[i], true
}

func replayStatus(ep dino.Episode, err error) string {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return "no champion stored for this run - q to go back"
	case err != nil:
		return fmt.Sprintf("replay failed: %v - q to go back", err)
	case ep.Capped:
		return fmt.Sprintf("still alive after %d ticks - q to go back", ep.Ticks)
	default:
		return fmt.Sprintf("crashed after %d ticks - q to go back", ep.Ticks)
	}
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.mode {
	case modeReplay:
		return m.watch.View()
	case modeHistory:
		return m.history.View()
	}

	var b strings.Builder

	title := "DINOEVO RUNS"
	if m.user != "" {
		title += " - " + m.user
	}
	b.WriteString(titleStyle.MarginBottom(1).Render(title))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	if len(m.runs) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4)
		b.WriteString(tableStyle.Render(emptyStyle.Render("No runs recorded yet.")))
	} else {
		b.WriteString(tableStyle.Render(m.table.View()))
	}
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(statusStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}
