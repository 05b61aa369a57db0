package tui

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/dinoevo/internal/core"
	"github.com/vovakirdan/dinoevo/internal/dino"
	"github.com/vovakirdan/dinoevo/internal/evolve"
)

// Rows taken by the HUD, the status line and the help footer.
const chromeRows = 4

// frameMsg delivers a simulation frame to the watch model.
type frameMsg dino.Frame

// statusMsg replaces the status line.
type statusMsg string

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// WatchModel is the Bubble Tea model of the live view. It only draws what
// it is sent; the simulation runs outside the program.
type WatchModel struct {
	title    string
	scene    Scene
	screen   *core.Screen
	frame    dino.Frame
	hasFrame bool
	status   string
	keys     WatchKeyMap
	help     help.Model
	fast     *atomic.Bool
	width    int
	height   int
	quitting bool
}

// NewWatchModel creates a watch model for a terminal of the given size.
func NewWatchModel(title string, scene Scene, width, height int, fast *atomic.Bool) WatchModel {
	if fast == nil {
		fast = &atomic.Bool{}
	}
	m := WatchModel{
		title:  title,
		scene:  scene,
		screen: core.NewScreen(width, max(height-chromeRows, 0)),
		keys:   DefaultWatchKeyMap(),
		help:   help.New(),
		fast:   fast,
		width:  width,
		height: height,
	}
	m.help.Width = width
	return m
}

// Init initializes the model.
func (m WatchModel) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model state.
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Fast):
			m.fast.Store(!m.fast.Load())
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.screen.Resize(msg.Width, max(msg.Height-chromeRows, 0))
		m.help.Width = msg.Width

	case frameMsg:
		m.frame = dino.Frame(msg)
		m.hasFrame = true

	case statusMsg:
		m.status = string(msg)
	}

	return m, nil
}

// View renders the current state to a string for display.
func (m WatchModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	hud := m.title
	if m.hasFrame {
		hud = fmt.Sprintf("%s  %s", m.title, HUD(m.frame))
	}
	b.WriteString(titleStyle.Render(hud))
	b.WriteString("\n")

	status := m.status
	if m.fast.Load() {
		status = strings.TrimSpace(status + "  [unpaced]")
	}
	b.WriteString(statusStyle.Render(status))
	b.WriteString("\n")

	m.scene.Draw(m.screen, m.frame)
	b.WriteString(RenderScreen(m.screen))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// WatchOptions configures a Watcher.
type WatchOptions struct {
	Title  string
	Scene  Scene
	FPS    int
	Width  int
	Height int
}

// Watcher shows episodes live. It implements dino.Presenter and
// evolve.Reporter; the Bubble Tea program runs on its own goroutine and the
// simulation talks to it through Program.Send and an atomic stop flag.
type Watcher struct {
	program *tea.Program
	pace    pacer
	stop    atomic.Bool
	done    chan struct{}
	err     error
}

// pacer throttles a simulation to a frame rate unless fast is set.
type pacer struct {
	interval time.Duration
	next     time.Time
	fast     *atomic.Bool
}

func newPacer(fps int, fast *atomic.Bool) pacer {
	p := pacer{fast: fast}
	if fps > 0 {
		p.interval = time.Second / time.Duration(fps)
	}
	return p
}

// wait sleeps until the next frame is due.
func (p *pacer) wait() {
	if p.interval == 0 || p.fast.Load() {
		return
	}
	now := time.Now()
	if p.next.Before(now) {
		p.next = now
	}
	p.next = p.next.Add(p.interval)
	time.Sleep(time.Until(p.next))
}

// NewWatcher creates a watcher. Call Start before the first frame.
func NewWatcher(opts WatchOptions) *Watcher {
	fast := &atomic.Bool{}
	model := NewWatchModel(opts.Title, opts.Scene, opts.Width, opts.Height, fast)

	return &Watcher{
		program: tea.NewProgram(model, tea.WithAltScreen()),
		pace:    newPacer(opts.FPS, fast),
		done:    make(chan struct{}),
	}
}

// Start runs the program in the background. When the user quits, the stop
// flag is raised.
func (w *Watcher) Start() {
	go func() {
		defer close(w.done)
		_, w.err = w.program.Run()
		w.stop.Store(true)
	}()
}

// Present sends a frame and sleeps until the next frame is due.
func (w *Watcher) Present(f dino.Frame) {
	if w.stop.Load() {
		return
	}
	w.program.Send(frameMsg(f))
	w.pace.wait()
}

// StopRequested reports whether the user closed the view.
func (w *Watcher) StopRequested() bool {
	return w.stop.Load()
}

// Status replaces the status line.
func (w *Watcher) Status(text string) {
	if w.stop.Load() {
		return
	}
	w.program.Send(statusMsg(text))
}

func (w *Watcher) StartGeneration(generation int) {
	w.Status(fmt.Sprintf("evaluating generation %d", generation))
}

func (w *Watcher) EndGeneration(s evolve.GenerationStats, best *evolve.Genome) {
	w.Status(fmt.Sprintf("generation %d: best %.1f, mean %.1f, champion %d (%.1f)",
		s.Generation, s.Best, s.Mean, best.ID, best.Fitness()))
}

func (w *Watcher) FoundSolution(generation int, best *evolve.Genome) {
	w.Status(fmt.Sprintf("fitness threshold reached in generation %d by genome %d", generation, best.ID))
}

// Close quits the program and waits for it to restore the terminal.
func (w *Watcher) Close() error {
	w.program.Quit()
	<-w.done
	return w.err
}
