package ecs

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/phanxgames/bramble"
	"github.com/tanema/gween/ease"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"
)

// TweenProperty selects the Transform field a Tween animates.
type TweenProperty uint8

const (
	TweenPosition TweenProperty = iota
	TweenScale
	TweenRotation // uses To.X()
)

// Tween animates one Transform property toward To. The component is removed
// from its entity when the animation finishes.
type Tween struct {
	Property TweenProperty
	To       mgl32.Vec2
	Duration float32
	Ease     ease.TweenFunc

	// state lives on the heap; component storage moves when the entity's
	// archetype changes.
	state *tweenState
}

type tweenState struct {
	value mgl32.Vec2
	group *bramble.TweenGroup
}

// Done reports whether the tween has finished.
func (t *Tween) Done() bool {
	return t.state != nil && t.state.group.Done
}

// StartTween attaches a Tween to entry, replacing any tween already running.
// The start value is read from the transform on the next UpdateTweens.
func StartTween(entry *donburi.Entry, prop TweenProperty, to mgl32.Vec2, duration float32, fn ease.TweenFunc) {
	t := Tween{Property: prop, To: to, Duration: duration, Ease: fn}
	if !entry.HasComponent(TweenComponent) {
		entry.AddComponent(TweenComponent)
	}
	TweenComponent.SetValue(entry, t)
}

var tweenQuery = donburi.NewQuery(filter.Contains(TransformComponent, TweenComponent))

// UpdateTweens advances every tween in w by dt seconds, writes the result to
// its transform and marks the transform dirty. Finished tweens are removed.
func UpdateTweens(w donburi.World, dt float32) {
	var finished []*donburi.Entry
	tweenQuery.Each(w, func(entry *donburi.Entry) {
		t := TweenComponent.Get(entry)
		tr := TransformComponent.Get(entry)
		if t.state == nil {
			t.start(tr)
		}
		t.state.group.Update(dt)
		t.apply(tr)
		if t.state.group.Done {
			finished = append(finished, entry)
		}
	})
	for _, entry := range finished {
		entry.RemoveComponent(TweenComponent)
	}
}

func (t *Tween) start(tr *Transform) {
	fn := t.Ease
	if fn == nil {
		fn = ease.Linear
	}
	st := &tweenState{}
	switch t.Property {
	case TweenPosition:
		st.value = tr.Position
	case TweenScale:
		st.value = tr.Scale
		if st.value == (mgl32.Vec2{}) {
			st.value = mgl32.Vec2{1, 1}
		}
	case TweenRotation:
		st.value = mgl32.Vec2{tr.Rotation, 0}
	}
	st.group = bramble.TweenVec2(&st.value, t.To, t.Duration, fn)
	t.state = st
}

func (t *Tween) apply(tr *Transform) {
	switch t.Property {
	case TweenPosition:
		tr.Position = t.state.value
	case TweenScale:
		tr.Scale = t.state.value
	case TweenRotation:
		tr.Rotation = t.state.value.X()
	}
	tr.Dirty = true
}
