// Package tui provides the Bubble Tea views of dinoevo: the live watch
// presenter for training and replay, and the generation history browser.
package tui

import (
	"fmt"
	"math"

	"github.com/vovakirdan/dinoevo/internal/config"
	"github.com/vovakirdan/dinoevo/internal/core"
	"github.com/vovakirdan/dinoevo/internal/dino"
)

// groundTile is the world width of one stripe of the scrolling ground.
const groundTile = 40.0

// Scene maps world coordinates onto a cell grid.
type Scene struct {
	WorldWidth  float64
	WorldHeight float64
	GroundY     float64 // bottom edge of a running agent
}

// NewScene creates a scene for the configured world.
func NewScene(cfg config.Config) Scene {
	return Scene{
		WorldWidth:  float64(cfg.Screen.Width),
		WorldHeight: float64(cfg.Screen.Height),
		GroundY:     cfg.Agent.GroundY + cfg.Agent.Height,
	}
}

// Draw renders a frame into s, scaled to the screen size.
func (sc Scene) Draw(s *core.Screen, f dino.Frame) {
	s.Clear()
	if s.Width() == 0 || s.Height() == 0 || sc.WorldWidth <= 0 || sc.WorldHeight <= 0 {
		return
	}
	sx := float64(s.Width()) / sc.WorldWidth
	sy := float64(s.Height()) / sc.WorldHeight

	ground := core.Clamp(int(math.Ceil(sc.GroundY*sy)), 0, s.Height()-1)
	for col := 0; col < s.Width(); col++ {
		wx := float64(col)/sx - f.Background
		r := '='
		if int(math.Floor(wx/groundTile))%2 != 0 {
			r = '-'
		}
		s.Set(col, ground, r, core.ColorGround)
	}

	for _, o := range f.Obstacles {
		c := core.ColorSmall
		if o.Size == dino.Large {
			c = core.ColorLarge
		}
		x, y, w, h := cells(o.Rect, sx, sy)
		s.FillRect(x, y, w, h, '#', c)
	}

	for _, a := range f.Agents {
		r, c := 'd', core.ColorAgent
		if a.Step >= 5 {
			r = 'D'
		}
		if a.Jumping {
			r, c = '^', core.ColorAirborne
		}
		x, y, w, h := cells(a.Rect, sx, sy)
		s.FillRect(x, y, w, h, r, c)
	}
}

// cells converts a world rectangle to cell coordinates covering it, at least
// one cell in each direction.
func cells(r core.Rect, sx, sy float64) (x, y, w, h int) {
	x0 := int(math.Floor(r.X * sx))
	x1 := int(math.Ceil(r.Right() * sx))
	y0 := int(math.Floor(r.Y * sy))
	y1 := int(math.Ceil(r.Bottom() * sy))
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}
	return x0, y0, x1 - x0, y1 - y0
}

// HUD formats the counters shown above the scene.
func HUD(f dino.Frame) string {
	return fmt.Sprintf("Generation %d  Points %d  Alive %d/%d  Speed %.0f",
		f.Generation, f.Score, f.Alive(), f.Population, f.Speed)
}
