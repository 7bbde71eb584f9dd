package ecs

import (
	"github.com/phanxgames/bramble"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// FrameStatsEvent carries the renderer's counters for the last completed
// frame. Subscribe to it in systems that react to load, e.g. a debug HUD.
var FrameStatsEvent = events.NewEventType[bramble.FrameStats]()

// PublishFrameStats queues stats on w. Subscribers run on the next
// FrameStatsEvent.ProcessEvents.
func PublishFrameStats(w donburi.World, stats bramble.FrameStats) {
	FrameStatsEvent.Publish(w, stats)
}
