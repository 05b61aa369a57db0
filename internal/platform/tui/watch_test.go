package tui

import (
	"strings"
	"sync/atomic"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/dinoevo/internal/dino"
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestWatchModelFrames(t *testing.T) {
	m := NewWatchModel("train", unitScene, 110, 64, nil)

	next, _ := m.Update(frameMsg(dino.Frame{Generation: 2, Score: 7, Population: 5}))
	m = next.(WatchModel)
	if m.frame.Score != 7 {
		t.Errorf("frame.Score = %d, want 7", m.frame.Score)
	}

	next, _ = m.Update(statusMsg("evaluating generation 2"))
	m = next.(WatchModel)

	view := m.View()
	for _, want := range []string{"Points 7", "Alive 0/5", "evaluating generation 2"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestWatchModelKeys(t *testing.T) {
	fast := &atomic.Bool{}
	m := NewWatchModel("train", unitScene, 80, 24, fast)

	next, _ := m.Update(runeKey('f'))
	m = next.(WatchModel)
	if !fast.Load() {
		t.Error("f should disable frame pacing")
	}
	next, _ = m.Update(runeKey('f'))
	m = next.(WatchModel)
	if fast.Load() {
		t.Error("second f should restore frame pacing")
	}

	next, cmd := m.Update(runeKey('q'))
	m = next.(WatchModel)
	if cmd == nil {
		t.Fatal("q should return a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit the program")
	}
	if m.View() != "" {
		t.Error("View() after quit should be empty")
	}
}

func TestWatchModelResize(t *testing.T) {
	m := NewWatchModel("replay", unitScene, 80, 24, nil)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(WatchModel)
	if m.screen.Width() != 120 || m.screen.Height() != 40-chromeRows {
		t.Errorf("screen = %dx%d, want 120x%d", m.screen.Width(), m.screen.Height(), 40-chromeRows)
	}

	next, _ = m.Update(tea.WindowSizeMsg{Width: 10, Height: 2})
	m = next.(WatchModel)
	if m.screen.Height() != 0 {
		t.Errorf("screen height = %d, want 0 for a tiny terminal", m.screen.Height())
	}
}

func TestNewWatcher(t *testing.T) {
	w := NewWatcher(WatchOptions{Title: "t", Scene: unitScene, FPS: 30, Width: 80, Height: 24})
	if w.StopRequested() {
		t.Error("new watcher should not request a stop")
	}
	if w.pace.interval == 0 {
		t.Error("FPS should set the frame interval")
	}
}
