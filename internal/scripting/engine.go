package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/l1jgo/bullets/internal/curve"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for curve baking and scene hooks.
// Single-goroutine access only (simulation loop).
type Engine struct {
	vm     *lua.LState
	curves map[string]*curve.Curve
	log    *zap.Logger
}

// New creates an engine with no scripts loaded.
func New(log *zap.Logger) *Engine {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	vm.SetGlobal("curves", vm.NewTable())
	vm.SetGlobal("templates", vm.NewTable())
	return &Engine{
		vm:     vm,
		curves: make(map[string]*curve.Curve, 16),
		log:    log,
	}
}

// NewEngine creates an engine and loads every script under scriptsDir: core
// first, then curves and templates.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	e := New(log)
	for _, sub := range []string{"core", "curves", "templates"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			e.Close()
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

// LoadString runs a chunk of Lua source. Baked curves are dropped so that
// redefined curves take effect.
func (e *Engine) LoadString(src string) error {
	if err := e.vm.DoString(src); err != nil {
		return fmt.Errorf("load lua chunk: %w", err)
	}
	clear(e.curves)
	return nil
}

// call invokes fn with args and returns its first result, or LNil.
func (e *Engine) call(name string, fn lua.LValue, args ...lua.LValue) (lua.LValue, error) {
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		return lua.LNil, fmt.Errorf("call %s: %w", name, err)
	}
	ret := e.vm.Get(-1)
	e.vm.Pop(1)
	return ret, nil
}

// table reads a global table, or nil.
func (e *Engine) table(name string) *lua.LTable {
	t, _ := e.vm.GetGlobal(name).(*lua.LTable)
	return t
}

// lNum reads a number field from a Lua table, or def when it is not a number.
func lNum(t *lua.LTable, key string, def float64) float64 {
	if n, ok := t.RawGetString(key).(lua.LNumber); ok {
		return float64(n)
	}
	return def
}

// lStr reads a string field from a Lua table.
func lStr(t *lua.LTable, key string) string {
	return lua.LVAsString(t.RawGetString(key))
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
