package core

// Color is a foreground color for a screen cell.
// The platform maps it to an ANSI 256-color code.
type Color uint8

// Palette used by the watch view.
const (
	ColorDefault Color = iota
	ColorGround        // track line
	ColorAgent         // running dino
	ColorAirborne      // jumping dino
	ColorSmall         // small cactus
	ColorLarge         // large cactus
	ColorHUD           // counters
)
