package tui

import (
	"strings"
	"testing"

	"github.com/vovakirdan/dinoevo/internal/config"
	"github.com/vovakirdan/dinoevo/internal/core"
	"github.com/vovakirdan/dinoevo/internal/dino"
)

// unitScene maps one world unit to one cell.
var unitScene = Scene{WorldWidth: 110, WorldHeight: 60, GroundY: 37}

func TestNewScene(t *testing.T) {
	sc := NewScene(config.DefaultConfig())
	if sc.WorldWidth != 1100 || sc.WorldHeight != 600 || sc.GroundY != 370 {
		t.Errorf("NewScene() = %+v", sc)
	}
}

func TestSceneDraw(t *testing.T) {
	s := core.NewScreen(110, 60)
	f := dino.Frame{
		Agents: []dino.AgentView{
			{ID: 1, Rect: core.NewRect(8, 31, 5, 6)},
			{ID: 2, Rect: core.NewRect(20, 20, 5, 6), Jumping: true},
			{ID: 3, Rect: core.NewRect(30, 31, 5, 6), Step: 7},
		},
		Obstacles: []dino.ObstacleView{
			{Rect: core.NewRect(50, 32, 5, 7), Size: dino.Small},
			{Rect: core.NewRect(70, 30, 5, 7), Size: dino.Large},
		},
	}
	unitScene.Draw(s, f)

	tests := []struct {
		name  string
		x, y  int
		rune  rune
		color core.Color
	}{
		{"running agent", 8, 31, 'd', core.ColorAgent},
		{"running agent bottom", 12, 36, 'd', core.ColorAgent},
		{"airborne agent", 22, 22, '^', core.ColorAirborne},
		{"second step", 30, 31, 'D', core.ColorAgent},
		{"small obstacle", 50, 32, '#', core.ColorSmall},
		{"large obstacle", 74, 36, '#', core.ColorLarge},
		{"ground", 0, 37, '=', core.ColorGround},
		{"sky", 0, 0, ' ', core.ColorDefault},
		{"right of agent", 13, 31, ' ', core.ColorDefault},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := s.GetCell(tc.x, tc.y)
			if c.Rune != tc.rune || c.Color != tc.color {
				t.Errorf("cell (%d,%d) = %q/%d, want %q/%d", tc.x, tc.y, c.Rune, c.Color, tc.rune, tc.color)
			}
		})
	}
}

func TestSceneGroundScrolls(t *testing.T) {
	s := core.NewScreen(110, 60)

	unitScene.Draw(s, dino.Frame{})
	row := strings.Split(s.String(), "\n")[37]
	if row[:40] != strings.Repeat("=", 40) || row[40] != '-' {
		t.Errorf("ground at offset 0 = %q", row)
	}

	unitScene.Draw(s, dino.Frame{Background: -20})
	row = strings.Split(s.String(), "\n")[37]
	if row[:20] != strings.Repeat("=", 20) || row[20] != '-' {
		t.Errorf("ground at offset -20 = %q", row)
	}
}

func TestSceneDrawEmptyScreen(t *testing.T) {
	s := core.NewScreen(0, 0)
	unitScene.Draw(s, dino.Frame{Agents: []dino.AgentView{{Rect: core.NewRect(1, 1, 1, 1)}}})
	if s.String() != "" {
		t.Errorf("empty screen rendered %q", s.String())
	}
}

func TestCellsMinimumSize(t *testing.T) {
	x, y, w, h := cells(core.NewRect(100, 100, 1, 1), 0.01, 0.01)
	if x != 1 || y != 1 || w != 1 || h != 1 {
		t.Errorf("cells() = %d,%d %dx%d, want 1,1 1x1", x, y, w, h)
	}
}

func TestHUD(t *testing.T) {
	f := dino.Frame{
		Generation: 3,
		Score:      120,
		Speed:      20,
		Population: 50,
		Agents:     make([]dino.AgentView, 7),
	}
	want := "Generation 3  Points 120  Alive 7/50  Speed 20"
	if got := HUD(f); got != want {
		t.Errorf("HUD() = %q, want %q", got, want)
	}
}
