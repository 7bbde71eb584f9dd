package bramble

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween/ease"
)

// scriptStep is one action of a frame script.
type scriptStep struct {
	Action   string  `json:"action"`
	Label    string  `json:"label,omitempty"`
	X        float32 `json:"x,omitempty"`
	Y        float32 `json:"y,omitempty"`
	Scale    float32 `json:"scale,omitempty"`
	Duration float32 `json:"duration,omitempty"`
	Frames   int     `json:"frames,omitempty"`
}

type frameScript struct {
	Steps []scriptStep `json:"steps"`
}

// ScriptRunner sequences screenshots and camera moves across frames for
// automated captures. Attach it with Engine.SetScript; one step runs per
// tick, before the game's update.
//
// Actions: "screenshot" (label), "wait" (frames), "scroll" (x, y, duration),
// "zoom" (scale, duration) and "quit".
type ScriptRunner struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
	quit      bool
}

// LoadScript parses a JSON frame script.
func LoadScript(jsonData []byte) (*ScriptRunner, error) {
	var script frameScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("bramble: parse script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("bramble: parse script: no steps")
	}
	for i, st := range script.Steps {
		switch st.Action {
		case "screenshot", "wait", "scroll", "zoom", "quit":
		default:
			return nil, fmt.Errorf("bramble: parse script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &ScriptRunner{steps: script.Steps}, nil
}

// LoadScriptFile reads and parses a JSON frame script.
func LoadScriptFile(path string) (*ScriptRunner, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("bramble: read script: %w", err)
	}
	return LoadScript(data)
}

// Done reports whether every step has run.
func (r *ScriptRunner) Done() bool { return r.done }

// step advances the script by one tick. It returns ebiten.Termination once
// a quit step has run.
func (r *ScriptRunner) step(e *Engine) error {
	if r.quit {
		return ebiten.Termination
	}
	if r.done {
		return nil
	}
	if r.waitCount > 0 {
		r.waitCount--
		return nil
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "screenshot":
		e.Screenshot(st.Label)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this tick counts as one
		}
	case "scroll":
		e.camera.ScrollTo(st.X, st.Y, st.Duration, ease.InOutQuad)
	case "zoom":
		e.camera.ZoomTo(st.Scale, st.Duration, ease.InOutQuad)
	case "quit":
		r.quit = true
	}

	if r.cursor >= len(r.steps) {
		r.done = true
	}
	return nil
}
