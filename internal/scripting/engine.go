package scripting

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for gameplay formulas. Every formula
// has a Go fallback used when the script does not define it.
// Single-goroutine access only (game loop).
type Engine struct {
	vm       *lua.LState
	log      *zap.Logger
	fallback Defaults
}

// NewEngine creates a Lua engine and loads all scripts from the given directory.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	// Core helpers first, then the feature scripts that use them
	for _, sub := range []string{"core", "player", "score"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}

	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// JumpContext is the input of the jump formula. Impulse is the configured
// base strength, VelocityX the body's current horizontal speed.
type JumpContext struct {
	Impulse   float64
	VelocityX float64
}

// ThrowContext is the input of the throw formula.
type ThrowContext struct {
	LinearX    float64
	LinearY    float64
	Angular    float64
	VelocityX  float64
	FacingLeft bool
}

// ThrowResult is the impulse applied to a thrown item.
type ThrowResult struct {
	X, Y    float64
	Angular float64
}

// ScoreContext describes a finished level attempt.
type ScoreContext struct {
	Completed bool
	Seconds   float64
	Ammo      int
}

// Defaults are the built-in formulas.
type Defaults struct{}

// JumpImpulse is negative: y grows downward. Running jumps go higher.
func (Defaults) JumpImpulse(ctx JumpContext) float64 {
	return -ctx.Impulse - math.Abs(ctx.VelocityX)*2
}

func (Defaults) ThrowImpulse(ctx ThrowContext) ThrowResult {
	x := ctx.LinearX
	if ctx.FacingLeft {
		x = -x
	}
	return ThrowResult{X: x + ctx.VelocityX*0.2, Y: ctx.LinearY, Angular: ctx.Angular}
}

func (Defaults) LevelScore(ctx ScoreContext) int {
	if !ctx.Completed {
		return 0
	}
	return max(0, 1000-int(ctx.Seconds*10)) + ctx.Ammo*50
}

// JumpImpulse calls the Lua calc_jump_impulse function.
func (e *Engine) JumpImpulse(ctx JumpContext) float64 {
	t := e.vm.NewTable()
	t.RawSetString("impulse", lua.LNumber(ctx.Impulse))
	t.RawSetString("velocity_x", lua.LNumber(ctx.VelocityX))

	result, ok := e.call("calc_jump_impulse", t)
	if !ok {
		return e.fallback.JumpImpulse(ctx)
	}
	n, isNum := result.(lua.LNumber)
	if !isNum {
		e.log.Error("lua calc_jump_impulse returned non-number")
		return e.fallback.JumpImpulse(ctx)
	}
	return float64(n)
}

// ThrowImpulse calls the Lua calc_throw_impulse function.
func (e *Engine) ThrowImpulse(ctx ThrowContext) ThrowResult {
	t := e.vm.NewTable()
	t.RawSetString("linear_x", lua.LNumber(ctx.LinearX))
	t.RawSetString("linear_y", lua.LNumber(ctx.LinearY))
	t.RawSetString("angular", lua.LNumber(ctx.Angular))
	t.RawSetString("velocity_x", lua.LNumber(ctx.VelocityX))
	t.RawSetString("facing_left", lua.LBool(ctx.FacingLeft))

	result, ok := e.call("calc_throw_impulse", t)
	if !ok {
		return e.fallback.ThrowImpulse(ctx)
	}
	rt, isTable := result.(*lua.LTable)
	if !isTable {
		e.log.Error("lua calc_throw_impulse returned non-table")
		return e.fallback.ThrowImpulse(ctx)
	}
	return ThrowResult{
		X:       lFloat(rt, "x"),
		Y:       lFloat(rt, "y"),
		Angular: lFloat(rt, "angular"),
	}
}

// LevelScore calls the Lua calc_level_score function.
func (e *Engine) LevelScore(ctx ScoreContext) int {
	t := e.vm.NewTable()
	t.RawSetString("completed", lua.LBool(ctx.Completed))
	t.RawSetString("seconds", lua.LNumber(ctx.Seconds))
	t.RawSetString("ammo", lua.LNumber(ctx.Ammo))

	result, ok := e.call("calc_level_score", t)
	if !ok {
		return e.fallback.LevelScore(ctx)
	}
	return int(lua.LVAsNumber(result))
}

// --- Lua helpers ---

// call runs a global function with one table argument. ok is false when the
// function is missing or fails; a missing function is not an error.
func (e *Engine) call(name string, arg *lua.LTable) (lua.LValue, bool) {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		return lua.LNil, false
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, arg); err != nil {
		e.log.Error("lua call error", zap.String("func", name), zap.Error(err))
		return lua.LNil, false
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)
	return result, true
}

// lFloat reads a number field from a Lua table.
func lFloat(t *lua.LTable, key string) float64 {
	return float64(lua.LVAsNumber(t.RawGetString(key)))
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
