// Package termview draws the game into a terminal with tcell and feeds
// terminal key presses into the input state.
package termview

import (
	"math"
	"path"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/evogame/evolution/internal/input"
	"github.com/evogame/evolution/internal/render"
)

// holdFrames is how long a key stays held after a terminal press. Terminals
// repeat presses but never report releases.
const holdFrames = 8

// Glyphs maps sprite textures to the cell drawn for them. Unlisted textures
// use the first letter of their file name.
var Glyphs = map[string]rune{
	"caveman.png": '@',
	"enemy.png":   'E',
	"rock.png":    'o',
	"ammo.png":    '*',
	"menu.png":    ' ',
}

var keyMap = map[tcell.Key]input.Key{
	tcell.KeyLeft:   input.KeyLeft,
	tcell.KeyRight:  input.KeyRight,
	tcell.KeyUp:     input.KeyUp,
	tcell.KeyDown:   input.KeyDown,
	tcell.KeyEscape: input.KeyEscape,
	tcell.KeyEnter:  input.KeyEnter,
}

// Screen is a render backend, text drawer and input poller over one tcell
// screen. Drawing and polling happen on the simulation goroutine; a reader
// goroutine only forwards terminal events.
type Screen struct {
	screen       tcell.Screen
	cam          *render.Camera
	keys         *input.State
	cellsPerUnit float64
	held         map[input.Key]int
	events       chan tcell.Event
	done         chan struct{}
	quit         bool
	log          *zap.Logger
}

var (
	_ render.Backend    = (*Screen)(nil)
	_ render.Flusher    = (*Screen)(nil)
	_ render.TextDrawer = (*Screen)(nil)
)

// New takes over the terminal. cellsPerUnit is the number of columns per
// world unit; rows get half as many since cells are twice as tall as wide.
func New(cam *render.Camera, keys *input.State, cellsPerUnit float64, log *zap.Logger) (*Screen, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return Open(s, cam, keys, cellsPerUnit, log)
}

// Open initializes s and starts reading its events.
func Open(s tcell.Screen, cam *render.Camera, keys *input.State, cellsPerUnit float64, log *zap.Logger) (*Screen, error) {
	if err := s.Init(); err != nil {
		return nil, err
	}
	if cellsPerUnit <= 0 {
		cellsPerUnit = 2
	}
	s.SetStyle(tcell.StyleDefault)
	s.Clear()
	v := &Screen{
		screen:       s,
		cam:          cam,
		keys:         keys,
		cellsPerUnit: cellsPerUnit,
		held:         make(map[input.Key]int),
		events:       make(chan tcell.Event, 64),
		done:         make(chan struct{}),
		log:          log,
	}
	go v.read()
	return v, nil
}

func (v *Screen) read() {
	for {
		ev := v.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case v.events <- ev:
		case <-v.done:
			return
		}
	}
}

// Quit reports whether the player asked to leave with Ctrl-C.
func (v *Screen) Quit() bool { return v.quit }

// Poll applies the terminal events received since the last frame.
func (v *Screen) Poll() {
	for k, n := range v.held {
		if n <= 1 {
			delete(v.held, k)
			v.keys.Release(k)
			continue
		}
		v.held[k] = n - 1
	}
	for {
		select {
		case ev := <-v.events:
			v.handle(ev)
		default:
			return
		}
	}
}

func (v *Screen) handle(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyCtrlC {
			v.quit = true
			return
		}
		k, ok := keyMap[ev.Key()]
		if !ok && ev.Key() == tcell.KeyRune {
			k, ok = input.KeySpace, ev.Rune() == ' '
			if !ok {
				k, ok = input.KeyOther, true
			}
		}
		if !ok {
			return
		}
		v.keys.Press(k)
		v.held[k] = holdFrames
	case *tcell.EventResize:
		v.screen.Sync()
		v.log.Debug("terminal resized")
	}
}

func (v *Screen) InFrustum(box render.BBox) bool {
	return v.cam.InFrustum(box)
}

// Draw fills the cells covered by the sprite with its glyph, tinted by the
// first vertex color.
func (v *Screen) Draw(texture string, vertices []float32) {
	if len(vertices) < render.SpriteSize {
		return
	}
	c := render.UnpackColor(vertices[render.C1])
	if c.A == 0 {
		return
	}
	minX, maxX := bounds(vertices[render.X1], vertices[render.X2], vertices[render.X3], vertices[render.X4])
	minY, maxY := bounds(vertices[render.Y1], vertices[render.Y2], vertices[render.Y3], vertices[render.Y4])

	lo, _ := v.cam.View()
	colsPerUnit := v.cellsPerUnit / v.cam.Zoom
	rowsPerUnit := colsPerUnit / 2
	x0 := int(math.Floor((minX - lo.X()) * colsPerUnit))
	x1 := int(math.Ceil((maxX-lo.X())*colsPerUnit)) - 1
	y0 := int(math.Floor((minY - lo.Y()) * rowsPerUnit))
	y1 := int(math.Ceil((maxY-lo.Y())*rowsPerUnit)) - 1

	w, h := v.screen.Size()
	x0, y0 = max(x0, 0), max(y0, 0)
	x1, y1 = min(x1, w-1), min(y1, h-1)

	glyph := Glyph(texture)
	style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(
		int32(c.R*255), int32(c.G*255), int32(c.B*255)))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			v.screen.SetContent(x, y, glyph, nil, style)
		}
	}
}

// DrawText writes text at a screen cell.
func (v *Screen) DrawText(x, y int, text string) {
	for _, r := range text {
		v.screen.SetContent(x, y, r, nil, tcell.StyleDefault)
		x++
	}
}

// Flush presents the frame and starts an empty one.
func (v *Screen) Flush() error {
	v.screen.Show()
	v.screen.Clear()
	return nil
}

// Close restores the terminal.
func (v *Screen) Close() {
	close(v.done)
	v.screen.Fini()
}

// Glyph returns the cell drawn for a texture.
func Glyph(texture string) rune {
	if g, ok := Glyphs[texture]; ok {
		return g
	}
	base := path.Base(texture)
	if r, _ := utf8.DecodeRuneInString(base); r != utf8.RuneError && base != "." {
		return r
	}
	return '#'
}

func bounds(a, b, c, d float32) (lo, hi float64) {
	lo = float64(min(a, b, c, d))
	hi = float64(max(a, b, c, d))
	return lo, hi
}
