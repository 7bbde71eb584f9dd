package bramble

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates up to 4 float32 fields simultaneously. Create one via
// the convenience constructors (TweenFloat, TweenVec2, TweenColor) and call
// Update(dt) each frame. OnStep, if set, runs after every step that wrote
// values, e.g. to mark a transform dirty.
//
// There is no global animation manager; users call Update themselves.
type TweenGroup struct {
	tweens [4]*gween.Tween
	count  int
	fields [4]*float32
	Done   bool
	OnStep func()
}

// Update advances all tweens by dt seconds and writes their values to the
// target fields.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}

	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		*g.fields[i] = val
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone

	if g.OnStep != nil {
		g.OnStep()
	}
}

// Stop ends the group where it is.
func (g *TweenGroup) Stop() {
	g.Done = true
}

func (g *TweenGroup) add(field *float32, to, duration float32, fn ease.TweenFunc) {
	g.tweens[g.count] = gween.New(*field, to, duration, fn)
	g.fields[g.count] = field
	g.count++
}

// TweenFloat animates *field to the target value.
func TweenFloat(field *float32, to, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{}
	g.add(field, to, duration, fn)
	return g
}

// TweenVec2 animates both components of *v, e.g. a position or scale.
func TweenVec2(v *mgl32.Vec2, to mgl32.Vec2, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{}
	g.add(&v[0], to.X(), duration, fn)
	g.add(&v[1], to.Y(), duration, fn)
	return g
}

// TweenColor animates all four components of *c.
func TweenColor(c *Color, to Color, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{}
	g.add(&c.R, to.R, duration, fn)
	g.add(&c.G, to.G, duration, fn)
	g.add(&c.B, to.B, duration, fn)
	g.add(&c.A, to.A, duration, fn)
	return g
}
