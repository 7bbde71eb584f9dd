package bramble

// debugMode turns misuse into panics and enables per-frame stats logging.
// bramble is single-threaded; the flag is read and written from the game
// goroutine only.
var debugMode bool

// SetDebugMode enables or disables debug mode. When enabled, renderer state
// violations panic instead of being logged and dropped, and every frame's
// batching stats are logged at debug level.
func SetDebugMode(enabled bool) {
	debugMode = enabled
}

// DebugMode reports whether debug mode is enabled.
func DebugMode() bool {
	return debugMode
}

// logFrameStats logs one frame's batching counters.
func logFrameStats(stats FrameStats) {
	logger.Debug("frame",
		"quads", stats.Quads,
		"flushes", stats.Flushes,
		"max_slots", stats.MaxSlotsUsed,
		"draws", stats.DrawCalls,
		"frame_time", stats.FrameTime,
	)
}
