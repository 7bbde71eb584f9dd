package ecs

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/phanxgames/bramble"
	"github.com/tanema/gween/ease"
	"github.com/yohamta/donburi"
)

func newTweenEntity(w donburi.World, pos mgl32.Vec2) *donburi.Entry {
	e := w.Create(TransformComponent)
	entry := w.Entry(e)
	TransformComponent.SetValue(entry, Transform{Position: pos})
	return entry
}

func TestUpdateTweens_Position(t *testing.T) {
	w := donburi.NewWorld()
	entry := newTweenEntity(w, mgl32.Vec2{0, 0})
	StartTween(entry, TweenPosition, mgl32.Vec2{100, 50}, 1, ease.Linear)

	UpdateTweens(w, 0.5)
	tr := TransformComponent.Get(entry)
	if !approxEqual(tr.Position.X(), 50) || !approxEqual(tr.Position.Y(), 25) {
		t.Errorf("halfway position = %v, want (50, 25)", tr.Position)
	}
	if !tr.Dirty {
		t.Error("tween did not mark the transform dirty")
	}
	if !entry.HasComponent(TweenComponent) {
		t.Fatal("tween removed before finishing")
	}

	UpdateTweens(w, 0.6)
	tr = TransformComponent.Get(entry)
	if !approxEqual(tr.Position.X(), 100) || !approxEqual(tr.Position.Y(), 50) {
		t.Errorf("final position = %v, want (100, 50)", tr.Position)
	}
	if entry.HasComponent(TweenComponent) {
		t.Error("finished tween not removed")
	}
}

func TestUpdateTweens_ScaleDefaultsToOne(t *testing.T) {
	w := donburi.NewWorld()
	entry := newTweenEntity(w, mgl32.Vec2{})
	StartTween(entry, TweenScale, mgl32.Vec2{3, 3}, 2, nil)

	UpdateTweens(w, 1)
	tr := TransformComponent.Get(entry)
	if !approxEqual(tr.Scale.X(), 2) || !approxEqual(tr.Scale.Y(), 2) {
		t.Errorf("scale = %v, want (2, 2)", tr.Scale)
	}
}

func TestUpdateTweens_Rotation(t *testing.T) {
	w := donburi.NewWorld()
	entry := newTweenEntity(w, mgl32.Vec2{})
	StartTween(entry, TweenRotation, mgl32.Vec2{2, 0}, 1, ease.Linear)

	UpdateTweens(w, 0.25)
	if got := TransformComponent.Get(entry).Rotation; !approxEqual(got, 0.5) {
		t.Errorf("rotation = %v, want 0.5", got)
	}
}

func TestStartTween_Replaces(t *testing.T) {
	w := donburi.NewWorld()
	entry := newTweenEntity(w, mgl32.Vec2{})
	StartTween(entry, TweenPosition, mgl32.Vec2{100, 0}, 1, ease.Linear)
	UpdateTweens(w, 0.5)

	StartTween(entry, TweenPosition, mgl32.Vec2{50, 0}, 1, ease.Linear)
	UpdateTweens(w, 0.5)
	// Restarted from x=50 toward x=50.
	if got := TransformComponent.Get(entry).Position.X(); !approxEqual(got, 50) {
		t.Errorf("x = %v, want 50", got)
	}
}

func TestUpdateTweens_MovesCachedSprite(t *testing.T) {
	w := donburi.NewWorld()
	e := w.Create(TransformComponent, SpriteComponent)
	entry := w.Entry(e)
	SpriteComponent.SetValue(entry, Sprite{Size: mgl32.Vec2{4, 4}, Visible: true})

	sys := NewDrawSystem()
	r := &recordingRenderer{}
	sys.Draw(w, r)

	StartTween(w.Entry(e), TweenPosition, mgl32.Vec2{10, 0}, 1, ease.Linear)
	UpdateTweens(w, 1)
	sys.Draw(w, r)

	if sys.Rebuilt() != 1 {
		t.Errorf("rebuilt = %d, want 1", sys.Rebuilt())
	}
	if got := r.vertices[1].Positions[1].X(); !approxEqual(got, 10) {
		t.Errorf("TL.x = %v, want 10", got)
	}
}

func TestGame_PublishesFrameStats(t *testing.T) {
	w := donburi.NewWorld()
	g := NewGame(w)

	var got []bramble.FrameStats
	FrameStatsEvent.Subscribe(w, func(_ donburi.World, s bramble.FrameStats) {
		got = append(got, s)
	})

	PublishFrameStats(w, bramble.FrameStats{Quads: 7, Flushes: 1})
	if err := g.Update(1.0 / 60); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Quads != 7 {
		t.Errorf("received %+v, want one event with 7 quads", got)
	}
}

func TestGame_UpdateRunsTweensAndHook(t *testing.T) {
	w := donburi.NewWorld()
	entry := newTweenEntity(w, mgl32.Vec2{})
	StartTween(entry, TweenPosition, mgl32.Vec2{10, 0}, 1, ease.Linear)

	g := NewGame(w)
	var ticks int
	g.OnUpdate = func(donburi.World, float64) error {
		ticks++
		return nil
	}
	if err := g.Update(0.5); err != nil {
		t.Fatal(err)
	}
	if ticks != 1 {
		t.Errorf("OnUpdate ran %d times, want 1", ticks)
	}
	if got := TransformComponent.Get(entry).Position.X(); !approxEqual(got, 5) {
		t.Errorf("x = %v, want 5", got)
	}
}
