package ecs

import (
	"github.com/phanxgames/bramble"
	"github.com/yohamta/donburi"
)

// Game runs a donburi world as a bramble game: tweens advance on update and
// the draw system renders on draw. Renderer stats of each completed frame
// are published as FrameStatsEvent.
type Game struct {
	World donburi.World
	// OnUpdate, if set, runs after tweens each tick.
	OnUpdate func(w donburi.World, dt float64) error

	draw   *DrawSystem
	engine *bramble.Engine
}

// NewGame wraps w.
func NewGame(w donburi.World) *Game {
	return &Game{World: w, draw: NewDrawSystem()}
}

// Load captures the engine so later updates can read renderer stats.
func (g *Game) Load(e *bramble.Engine) error {
	g.engine = e
	return nil
}

// DrawSystem returns the game's draw system.
func (g *Game) DrawSystem() *DrawSystem { return g.draw }

// Update advances tweens, delivers frame stats and runs OnUpdate.
func (g *Game) Update(dt float64) error {
	UpdateTweens(g.World, float32(dt))
	if g.engine != nil {
		PublishFrameStats(g.World, g.engine.Renderer().Stats())
	}
	FrameStatsEvent.ProcessEvents(g.World)
	if g.OnUpdate != nil {
		return g.OnUpdate(g.World, dt)
	}
	return nil
}

// Draw renders the world.
func (g *Game) Draw(r *bramble.Renderer) {
	g.draw.Draw(g.World, r)
}
