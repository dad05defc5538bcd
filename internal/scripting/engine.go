package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/fixedtick/levelsim/internal/fixed"
	"github.com/fixedtick/levelsim/internal/mobj"
	"github.com/fixedtick/levelsim/internal/trig"
)

// Engine wraps a single gopher-lua VM running scripted thinker behaviours.
// Single-goroutine access only (tick loop).
//
// Scripts see positions, momentum and heights as raw 16.16 integers, and
// angles as raw 32-bit binary angles, so a behaviour that sticks to integer
// arithmetic and the helpers below stays deterministic.
type Engine struct {
	vm     *lua.LState
	tables *trig.Tables
	log    *zap.Logger
}

// NewEngine creates a Lua engine and loads every script in dir and
// dir/thinkers. A missing directory loads nothing.
func NewEngine(dir string, tables *trig.Tables, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	vm.SetGlobal("FRACUNIT", lua.LNumber(fixed.FracUnit))

	e := &Engine{vm: vm, tables: tables, log: log}
	e.registerHelpers()

	for _, d := range []string{dir, filepath.Join(dir, "thinkers")} {
		if err := e.loadDir(d); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load scripts: %w", err)
		}
	}
	return e, nil
}

// loadDir loads all .lua files in a directory, in name order.
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

// LoadString runs a chunk of Lua source, for tests and the host's inline
// behaviours.
func (e *Engine) LoadString(src string) error {
	return e.vm.DoString(src)
}

func (e *Engine) registerHelpers() {
	e.vm.SetGlobal("fixed_mul", e.vm.NewFunction(func(L *lua.LState) int {
		a, b := fixed.Fixed(L.CheckInt64(1)), fixed.Fixed(L.CheckInt64(2))
		L.Push(lua.LNumber(fixed.Mul(a, b)))
		return 1
	}))
	e.vm.SetGlobal("to_fixed", e.vm.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(fixed.FromInt(L.CheckInt(1))))
		return 1
	}))
	e.vm.SetGlobal("from_fixed", e.vm.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(fixed.Fixed(L.CheckInt64(1)).Int()))
		return 1
	}))
	e.vm.SetGlobal("degrees", e.vm.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(fixed.DegreesToAngle(L.CheckInt(1))))
		return 1
	}))
	e.vm.SetGlobal("sine", e.vm.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(e.tables.Sine(fixed.Angle(uint32(L.CheckInt64(1))))))
		return 1
	}))
	e.vm.SetGlobal("cosine", e.vm.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(e.tables.Cosine(fixed.Angle(uint32(L.CheckInt64(1))))))
		return 1
	}))
}

// Has reports whether a global Lua function called name exists.
func (e *Engine) Has(name string) bool {
	_, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	return ok
}

// Think calls the Lua function name(ent, tick) and applies the table it
// returns to mo. Recognised fields, all optional:
//
//	momx, momy, momz  replace momentum (raw fixed)
//	turn              signed rotation in degrees
//	thrust            added to momentum along the facing after turning (raw fixed)
//	remove            true asks the caller to drop the thinker
//
// A missing function or a Lua error leaves mo untouched.
func (e *Engine) Think(name string, tick uint64, mo *mobj.Mobj) (remove bool) {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		e.log.Error("lua function not found", zap.String("name", name))
		return false
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, e.entityTable(mo), lua.LNumber(tick)); err != nil {
		e.log.Error("lua thinker error", zap.String("func", name), zap.Error(err))
		return false
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		return false
	}
	if v, ok := rt.RawGetString("momx").(lua.LNumber); ok {
		mo.MomX = fixed.Fixed(int32(v))
	}
	if v, ok := rt.RawGetString("momy").(lua.LNumber); ok {
		mo.MomY = fixed.Fixed(int32(v))
	}
	if v, ok := rt.RawGetString("momz").(lua.LNumber); ok {
		mo.MomZ = fixed.Fixed(int32(v))
	}
	if v, ok := rt.RawGetString("turn").(lua.LNumber); ok {
		mo.Angle += fixed.DegreesToAngle(int(v))
	}
	if v, ok := rt.RawGetString("thrust").(lua.LNumber); ok {
		move := fixed.Fixed(int32(v))
		mo.MomX += fixed.Mul(move, e.tables.Cosine(mo.Angle))
		mo.MomY += fixed.Mul(move, e.tables.Sine(mo.Angle))
	}
	return lua.LVAsBool(rt.RawGetString("remove"))
}

func (e *Engine) entityTable(mo *mobj.Mobj) *lua.LTable {
	t := e.vm.NewTable()
	t.RawSetString("id", lua.LNumber(mo.ID))
	t.RawSetString("type", lua.LString(mo.Type.String()))
	t.RawSetString("x", lua.LNumber(mo.X))
	t.RawSetString("y", lua.LNumber(mo.Y))
	t.RawSetString("z", lua.LNumber(mo.Z))
	t.RawSetString("momx", lua.LNumber(mo.MomX))
	t.RawSetString("momy", lua.LNumber(mo.MomY))
	t.RawSetString("momz", lua.LNumber(mo.MomZ))
	t.RawSetString("angle", lua.LNumber(mo.Angle))
	t.RawSetString("floor", lua.LNumber(mo.FloorZ))
	t.RawSetString("ceiling", lua.LNumber(mo.CeilingZ))
	t.RawSetString("sector", lua.LNumber(mo.Sector))
	t.RawSetString("health", lua.LNumber(mo.Health))
	t.RawSetString("on_floor", lua.LBool(mo.OnFloor()))
	return t
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
