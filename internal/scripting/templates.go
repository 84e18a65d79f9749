package scripting

import (
	"fmt"
	"sort"

	"github.com/l1jgo/bullets/internal/collision"
	"github.com/l1jgo/bullets/internal/core/ecs"
	"github.com/l1jgo/bullets/internal/core/event"
	"github.com/l1jgo/bullets/internal/geom"
	"github.com/l1jgo/bullets/internal/scene"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// BindScene exposes scene functions to Lua:
//
//	position(id) -> x, y | nil
//	set_velocity(id, vx, vy)
//	destroy(id)
//	pointer() -> x, y
func (e *Engine) BindScene(s *scene.Scene) {
	id := func(L *lua.LState) ecs.EntityID { return ecs.EntityID(L.CheckNumber(1)) }
	e.vm.SetGlobal("position", e.vm.NewFunction(func(L *lua.LState) int {
		p, ok := s.Position(id(L))
		if !ok {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LNumber(p.X))
		L.Push(lua.LNumber(p.Y))
		return 2
	}))
	e.vm.SetGlobal("set_velocity", e.vm.NewFunction(func(L *lua.LState) int {
		s.SetVelocity(id(L), geom.V(float64(L.CheckNumber(2)), float64(L.CheckNumber(3))))
		return 0
	}))
	e.vm.SetGlobal("destroy", e.vm.NewFunction(func(L *lua.LState) int {
		s.Destroy(id(L))
		return 0
	}))
	e.vm.SetGlobal("pointer", e.vm.NewFunction(func(L *lua.LState) int {
		p := s.Pointer()
		L.Push(lua.LNumber(p.X))
		L.Push(lua.LNumber(p.Y))
		return 2
	}))
}

// RegisterTemplates registers every entry of the global templates table with
// s, in name order:
//
//	templates.dummy = {
//	  body = { kind = "body", layer = 1, w = 24, h = 24 },
//	  on_spawn = function(id) set_velocity(id, 0, 30) end,
//	  on_hit = function(id, batch, slot, kind) return true end,
//	}
//
// on_spawn, on_spawn_in_pool, on_enable and on_disable become scene hooks.
func (e *Engine) RegisterTemplates(s *scene.Scene) (int, error) {
	defs := e.table("templates")
	if defs == nil {
		return 0, nil
	}
	var names []string
	defs.ForEach(func(k, v lua.LValue) {
		if _, ok := v.(*lua.LTable); ok {
			names = append(names, lua.LVAsString(k))
		}
	})
	sort.Strings(names)

	for _, name := range names {
		def := defs.RawGetString(name).(*lua.LTable)
		t := scene.Template{
			Name:          name,
			OnSpawn:       e.hook(name, def, "on_spawn"),
			OnSpawnInPool: e.hook(name, def, "on_spawn_in_pool"),
			OnEnable:      e.hook(name, def, "on_enable"),
			OnDisable:     e.hook(name, def, "on_disable"),
		}
		if body, ok := def.RawGetString("body").(*lua.LTable); ok {
			kind := collision.KindArea
			if lStr(body, "kind") == "body" {
				kind = collision.KindBody
			}
			t.Body = &scene.Body{
				Kind:  kind,
				Layer: uint32(lNum(body, "layer", 1)),
				Size:  geom.V(lNum(body, "w", 16), lNum(body, "h", 16)),
			}
		}
		if err := s.Register(t); err != nil {
			return 0, fmt.Errorf("register lua template: %w", err)
		}
	}
	return len(names), nil
}

func (e *Engine) hook(template string, def *lua.LTable, key string) scene.Hook {
	fn, ok := def.RawGetString(key).(*lua.LFunction)
	if !ok {
		return nil
	}
	name := template + "." + key
	return func(_ *scene.Scene, id ecs.EntityID) {
		if _, err := e.call(name, fn, lua.LNumber(id)); err != nil {
			e.log.Error("lua hook error", zap.String("hook", name), zap.Error(err))
		}
	}
}

// HandleHit runs the on_hit hook of the template the hit target was created
// from. A truthy return destroys the target. It reports whether the target
// was destroyed.
func (e *Engine) HandleHit(s *scene.Scene, ev event.BulletHit) bool {
	tmpl, ok := s.TemplateOf(ev.Target)
	if !ok {
		return false
	}
	defs := e.table("templates")
	if defs == nil {
		return false
	}
	def, ok := defs.RawGetString(tmpl).(*lua.LTable)
	if !ok {
		return false
	}
	fn, ok := def.RawGetString("on_hit").(*lua.LFunction)
	if !ok {
		return false
	}
	kind := "area"
	if ev.Kind == event.HitBody {
		kind = "body"
	}
	ret, err := e.call(tmpl+".on_hit", fn,
		lua.LNumber(ev.Target), lua.LNumber(ev.Batch), lua.LNumber(ev.Slot), lua.LString(kind))
	if err != nil {
		e.log.Error("lua hook error", zap.String("hook", tmpl+".on_hit"), zap.Error(err))
		return false
	}
	if lua.LVAsBool(ret) {
		s.Destroy(ev.Target)
		return true
	}
	return false
}
