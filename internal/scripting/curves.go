package scripting

import (
	"errors"
	"fmt"

	"github.com/l1jgo/bullets/internal/curve"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

var ErrNoCurve = errors.New("curve not defined")

const (
	defaultSamples    = 32
	defaultResolution = 100
)

// Curve bakes the curve named name from the global curves table. An entry is
// either a table of {x, y} points or a table with a sampling function:
//
//	curves.ease_out = { fn = function(x) return 1 - (1 - x)^2 end, from = 0, to = 1, samples = 16 }
//	curves.wobble = { points = { {0, 0}, {0.25, 1}, {0.75, -1}, {1, 0} } }
//
// Baked curves are cached and shared by every batch that uses them.
func (e *Engine) Curve(name string) (*curve.Curve, error) {
	if c, ok := e.curves[name]; ok {
		return c, nil
	}
	defs := e.table("curves")
	if defs == nil {
		return nil, fmt.Errorf("bake curve %s: %w", name, ErrNoCurve)
	}
	def, ok := defs.RawGetString(name).(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("bake curve %s: %w", name, ErrNoCurve)
	}

	c := curve.New()
	if pts, ok := def.RawGetString("points").(*lua.LTable); ok {
		if err := addPoints(c, pts); err != nil {
			return nil, fmt.Errorf("bake curve %s: %w", name, err)
		}
	} else if fn, ok := def.RawGetString("fn").(*lua.LFunction); ok {
		if err := e.sample(c, name, fn, def); err != nil {
			return nil, fmt.Errorf("bake curve %s: %w", name, err)
		}
	} else {
		return nil, fmt.Errorf("bake curve %s: need points or fn", name)
	}

	c.Bake(int(lNum(def, "resolution", defaultResolution)))
	e.curves[name] = c
	e.log.Debug("baked lua curve", zap.String("name", name))
	return c, nil
}

func addPoints(c *curve.Curve, pts *lua.LTable) error {
	n := pts.Len()
	if n == 0 {
		return errors.New("empty points")
	}
	for i := 1; i <= n; i++ {
		p, ok := pts.RawGetInt(i).(*lua.LTable)
		if !ok {
			return fmt.Errorf("point %d is not a table", i)
		}
		x, xok := p.RawGetInt(1).(lua.LNumber)
		y, yok := p.RawGetInt(2).(lua.LNumber)
		if !xok || !yok {
			return fmt.Errorf("point %d needs two numbers", i)
		}
		c.AddPoint(float64(x), float64(y))
	}
	return nil
}

func (e *Engine) sample(c *curve.Curve, name string, fn *lua.LFunction, def *lua.LTable) error {
	from := lNum(def, "from", 0)
	to := lNum(def, "to", 1)
	n := int(lNum(def, "samples", defaultSamples))
	if n < 2 {
		n = 2
	}
	if to <= from {
		return fmt.Errorf("empty domain [%v, %v]", from, to)
	}
	for i := 0; i < n; i++ {
		x := from + (to-from)*float64(i)/float64(n-1)
		ret, err := e.call(name, fn, lua.LNumber(x))
		if err != nil {
			return err
		}
		y, ok := ret.(lua.LNumber)
		if !ok {
			return fmt.Errorf("fn returned %s at x=%v", ret.Type(), x)
		}
		c.AddPoint(x, float64(y))
	}
	return nil
}

// CurveNames lists every curve the scripts define.
func (e *Engine) CurveNames() []string {
	defs := e.table("curves")
	if defs == nil {
		return nil
	}
	var out []string
	defs.ForEach(func(k, _ lua.LValue) {
		if s, ok := k.(lua.LString); ok {
			out = append(out, string(s))
		}
	})
	return out
}
