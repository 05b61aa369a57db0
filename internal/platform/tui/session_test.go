package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/dinoevo/internal/config"
	"github.com/vovakirdan/dinoevo/internal/dino"
	"github.com/vovakirdan/dinoevo/internal/storage"
)

type fakeCatalog struct {
	runs    []storage.Run
	history map[int64][]storage.Generation
	err     error
}

func (c fakeCatalog) ListRuns(limit int) ([]storage.Run, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.runs[:min(limit, len(c.runs))], nil
}

func (c fakeCatalog) History(runID int64) ([]storage.Generation, error) {
	return c.history[runID], nil
}

func sampleCatalog(t *testing.T) fakeCatalog {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Screen.FPS = 0
	yml, err := config.Marshal(cfg)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	return fakeCatalog{
		runs: []storage.Run{
			{ID: 7, Status: storage.StatusSolved, Population: 50, Generations: 20, BestFitness: 88.5, Config: string(yml)},
			{ID: 6, Status: storage.StatusStopped, Population: 30, Generations: 5, Config: "screen: ["},
		},
		history: map[int64][]storage.Generation{7: sampleHistory()},
	}
}

func keyType(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

func update(t *testing.T, m SessionModel, msg tea.Msg) (SessionModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(SessionModel), cmd
}

// scriptedReplay presents frames with increasing scores, then ends the episode.
func scriptedReplay(frames int) ReplayFunc {
	return func(ctx context.Context, runID int64, p dino.Presenter) (dino.Episode, error) {
		for i := 1; i <= frames; i++ {
			if p.StopRequested() {
				return dino.Episode{Ticks: i - 1}, nil
			}
			p.Present(dino.Frame{Tick: i, Score: i, Population: 1})
		}
		return dino.Episode{Ticks: frames, Score: frames}, nil
	}
}

func TestSessionModelListsRuns(t *testing.T) {
	m := NewSessionModel(context.Background(), sampleCatalog(t), scriptedReplay(0), SessionOptions{User: "ada", Width: 100, Height: 30, RunLimit: 10})

	view := m.View()
	for _, want := range []string{"DINOEVO RUNS - ada", "solved", "88.50", "stopped"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}

	m = NewSessionModel(context.Background(), fakeCatalog{}, nil, SessionOptions{Width: 80, Height: 24})
	if !strings.Contains(m.View(), "No runs recorded yet.") {
		t.Error("empty catalog should show the empty message")
	}

	m = NewSessionModel(context.Background(), fakeCatalog{err: errors.New("database locked")}, nil, SessionOptions{Width: 80, Height: 24})
	if !strings.Contains(m.View(), "database locked") {
		t.Error("catalog error should be shown")
	}
}

func TestSessionModelReplay(t *testing.T) {
	m := NewSessionModel(context.Background(), sampleCatalog(t), scriptedReplay(3), SessionOptions{Width: 110, Height: 30, RunLimit: 10})

	m, cmd := update(t, m, keyType(tea.KeyEnter))
	if m.mode != modeReplay || cmd == nil {
		t.Fatalf("enter should start a replay, mode = %d", m.mode)
	}

	frames := 0
	for cmd != nil {
		msg := cmd()
		if _, ok := msg.(replayFrameMsg); ok {
			frames++
		}
		m, cmd = update(t, m, msg)
	}
	if frames != 3 {
		t.Errorf("received %d frames, want 3", frames)
	}
	if m.stream != nil {
		t.Error("finished replay should release its stream")
	}
	view := m.View()
	for _, want := range []string{"dinoevo replay 7", "Points 3", "crashed after 3 ticks"} {
		if !strings.Contains(view, want) {
			t.Errorf("replay View() missing %q", want)
		}
	}

	m, _ = update(t, m, runeKey('q'))
	if m.mode != modeRuns {
		t.Errorf("q should return to the run list, mode = %d", m.mode)
	}
}

func TestSessionModelBackCancelsReplay(t *testing.T) {
	started := make(chan struct{})
	blocking := func(ctx context.Context, runID int64, p dino.Presenter) (dino.Episode, error) {
		close(started)
		<-ctx.Done()
		return dino.Episode{}, ctx.Err()
	}
	m := NewSessionModel(context.Background(), sampleCatalog(t), blocking, SessionOptions{Width: 110, Height: 30, RunLimit: 10})

	m, cmd := update(t, m, keyType(tea.KeyEnter))
	<-started
	stream := m.stream

	m, _ = update(t, m, keyType(tea.KeyEsc))
	if m.mode != modeRuns || m.stream != nil {
		t.Fatalf("esc should leave the replay, mode = %d", m.mode)
	}
	if !stream.StopRequested() {
		t.Error("leaving the replay should raise its stop signal")
	}

	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	select {
	case msg := <-done:
		if _, ok := msg.(replayDoneMsg); !ok {
			t.Fatalf("cancelled replay sent %T, want replayDoneMsg", msg)
		}
		after, _ := update(t, m, msg)
		if after.mode != modeRuns {
			t.Error("a stale replay message should not change the view")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("cancelled replay did not finish")
	}
}

func TestSessionModelHistory(t *testing.T) {
	m := NewSessionModel(context.Background(), sampleCatalog(t), nil, SessionOptions{Width: 100, Height: 30, RunLimit: 10})

	m, _ = update(t, m, runeKey('h'))
	if m.mode != modeHistory {
		t.Fatalf("h should open the history, mode = %d", m.mode)
	}
	if !strings.Contains(m.View(), "RUN 7 - SOLVED") {
		t.Errorf("history View() = %q", m.View())
	}

	m, _ = update(t, m, keyType(tea.KeyEsc))
	if m.mode != modeRuns {
		t.Errorf("esc should return to the run list, mode = %d", m.mode)
	}
}

func TestSessionModelBadConfigAndQuit(t *testing.T) {
	m := NewSessionModel(context.Background(), sampleCatalog(t), scriptedReplay(1), SessionOptions{Width: 100, Height: 30, RunLimit: 10})

	m, _ = update(t, m, keyType(tea.KeyDown))
	m, cmd := update(t, m, keyType(tea.KeyEnter))
	if m.mode != modeRuns || cmd != nil {
		t.Fatal("a run with a broken config should not start a replay")
	}
	if !strings.Contains(m.View(), "run 6 config") {
		t.Error("the config error should be shown")
	}

	m, cmd = update(t, m, runeKey('q'))
	if cmd == nil {
		t.Fatal("q on the run list should disconnect")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q on the run list should quit the program")
	}
	if m.View() != "" {
		t.Error("View() after quit should be empty")
	}
}

func TestReplayStatus(t *testing.T) {
	tests := []struct {
		name string
		ep   dino.Episode
		err  error
		want string
	}{
		{"crash", dino.Episode{Ticks: 40}, nil, "crashed after 40 ticks"},
		{"capped", dino.Episode{Ticks: 10000, Capped: true}, nil, "still alive after 10000 ticks"},
		{"no champion", dino.Episode{}, storage.ErrNotFound, "no champion stored"},
		{"failure", dino.Episode{}, errors.New("boom"), "replay failed: boom"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := replayStatus(tc.ep, tc.err); !strings.Contains(got, tc.want) {
				t.Errorf("replayStatus() = %q, want %q", got, tc.want)
			}
		})
	}
}
