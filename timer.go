package bramble

import "time"

// frameSampleCount is the size of the rolling frame-time window.
const frameSampleCount = 30

// FrameTimer measures frame durations, optionally sleeps to hold a target
// frame rate, and keeps rolling average and peak frame times.
type FrameTimer struct {
	now   func() time.Time
	sleep func(time.Duration)

	target    time.Duration
	last      time.Time
	started   bool
	frameFrom time.Time

	samples [frameSampleCount]time.Duration
	count   int
	next    int
	peak    time.Duration

	fps        float64
	fpsFrames  int
	fpsElapsed time.Duration
}

// NewFrameTimer returns a timer. targetFPS <= 0 disables Wait.
func NewFrameTimer(targetFPS int) *FrameTimer {
	t := &FrameTimer{
		now:   time.Now,
		sleep: time.Sleep,
	}
	t.SetTargetFPS(targetFPS)
	return t
}

// SetTargetFPS changes the frame rate Wait aims for. targetFPS <= 0 disables it.
func (t *FrameTimer) SetTargetFPS(targetFPS int) {
	if targetFPS <= 0 {
		t.target = 0
		return
	}
	t.target = time.Second / time.Duration(targetFPS)
}

// Update marks the start of a frame and returns the seconds elapsed since the
// previous Update. The first call returns 0.
func (t *FrameTimer) Update() float64 {
	now := t.now()
	t.frameFrom = now
	if !t.started {
		t.started = true
		t.last = now
		return 0
	}
	delta := now.Sub(t.last)
	t.last = now
	t.record(delta)
	return delta.Seconds()
}

func (t *FrameTimer) record(d time.Duration) {
	t.samples[t.next] = d
	t.next = (t.next + 1) % frameSampleCount
	if t.count < frameSampleCount {
		t.count++
	}
	if d > t.peak {
		t.peak = d
	}

	t.fpsFrames++
	t.fpsElapsed += d
	if t.fpsElapsed >= time.Second {
		t.fps = float64(t.fpsFrames) / t.fpsElapsed.Seconds()
		t.fpsFrames = 0
		t.fpsElapsed = 0
	}
}

// Wait sleeps for whatever remains of the target frame duration, measured
// from the last Update. No-op without a target or when the frame ran long.
func (t *FrameTimer) Wait() {
	if t.target == 0 || !t.started {
		return
	}
	if remaining := t.target - t.now().Sub(t.frameFrom); remaining > 0 {
		t.sleep(remaining)
	}
}

// Average returns the mean of the last 30 frame durations.
func (t *FrameTimer) Average() time.Duration {
	if t.count == 0 {
		return 0
	}
	var sum time.Duration
	for i := 0; i < t.count; i++ {
		sum += t.samples[i]
	}
	return sum / time.Duration(t.count)
}

// Peak returns the longest frame seen since the last ResetPeak.
func (t *FrameTimer) Peak() time.Duration {
	return t.peak
}

// ResetPeak clears the peak frame time.
func (t *FrameTimer) ResetPeak() {
	t.peak = 0
}

// FPS returns frames per second over the last full second.
func (t *FrameTimer) FPS() float64 {
	return t.fps
}
