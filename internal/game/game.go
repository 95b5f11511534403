// Package game holds the Evolution screens: the title menu and the level
// being played.
package game

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/evogame/evolution/internal/engine"
	"github.com/evogame/evolution/internal/render"
	"github.com/evogame/evolution/internal/state"
)

// State names.
const (
	MenuName = "menu"
	PlayName = "game"
)

// Register adds the menu and play states to states.
func Register(states *state.Manager, deps *engine.Deps) (*Menu, *Play, error) {
	menu := NewMenu(deps, states)
	play := NewPlay(deps, states)
	if err := states.Register(menu); err != nil {
		return nil, nil, fmt.Errorf("register menu: %w", err)
	}
	if err := states.Register(play); err != nil {
		return nil, nil, fmt.Errorf("register play: %w", err)
	}
	return menu, play, nil
}

// drawText writes a HUD line when the backend can draw text.
func drawText(deps *engine.Deps, pos mgl64.Vec3, text string) {
	if td, ok := deps.Renderer.(render.TextDrawer); ok {
		td.DrawText(int(pos.X()), int(pos.Y()), text)
	}
}

// drawScreen stretches texture over the camera view.
func drawScreen(deps *engine.Deps, texture string) {
	lo, hi := deps.Camera.View()
	c := render.White.Pack()
	x1, y1 := float32(lo.X()), float32(lo.Y())
	x2, y2 := float32(hi.X()), float32(hi.Y())
	deps.Renderer.Draw(texture, []float32{
		x1, y2, c, 0, 1,
		x1, y1, c, 0, 0,
		x2, y1, c, 1, 0,
		x2, y2, c, 1, 1,
	})
}
