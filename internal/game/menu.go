package game

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/evogame/evolution/internal/engine"
	"github.com/evogame/evolution/internal/input"
	"github.com/evogame/evolution/internal/state"
)

const menuTexture = "data/menu.png"

// Menu shows the title screen. Any key starts the game once the screen
// has been up for minMenuTime.
type Menu struct {
	state.Base
	states *state.Manager

	minTime   time.Duration
	titlePos  mgl64.Vec3
	promptPos mgl64.Vec3

	menuTime time.Duration
	running  bool
}

func NewMenu(deps *engine.Deps, states *state.Manager) *Menu {
	s := deps.Settings
	return &Menu{
		Base:      state.NewBase(MenuName, deps),
		states:    states,
		minTime:   seconds(s.Float("minMenuTime", 1)),
		titlePos:  s.Vector("menuTitlePos", mgl64.Vec3{2, 2, 0}),
		promptPos: s.Vector("menuPromptPos", mgl64.Vec3{2, 4, 0}),
	}
}

func (m *Menu) Load() {
	m.Base.Load()
	m.menuTime = m.minTime
	m.running = false
}

func (m *Menu) Update(dt time.Duration) {
	d := m.Deps()
	if !m.running {
		if d.Assets.Update() {
			m.FinishLoading()
			m.running = true
			d.Log.Info("menu ready")
		}
		return
	}
	m.menuTime -= dt

	drawScreen(d, menuTexture)
	drawText(d, m.titlePos, d.Lang.Get("menu.title"))
	if m.menuTime < 0 {
		drawText(d, m.promptPos, d.Lang.Get("menu.start"))
	}
}

func (m *Menu) KeyDown(k input.Key) {
	if !m.running || m.menuTime >= 0 {
		return
	}
	m.Deps().Log.Debug("menu key", zap.Stringer("key", k))
	m.states.Change(PlayName)
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
