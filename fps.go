package bramble

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// fpsOverlayInterval is how often, in seconds, the overlay text refreshes.
const fpsOverlayInterval = 0.5

// fpsOverlay prints frame diagnostics in the screen's top-left corner.
type fpsOverlay struct {
	text    string
	elapsed float64
}

// update refreshes the text every fpsOverlayInterval seconds.
func (o *fpsOverlay) update(dt float64, timer *FrameTimer, stats FrameStats) {
	o.elapsed += dt
	if o.text != "" && o.elapsed < fpsOverlayInterval {
		return
	}
	o.elapsed = 0
	o.text = formatOverlay(ebiten.ActualFPS(), ebiten.ActualTPS(), timer, stats)
}

func formatOverlay(fps, tps float64, timer *FrameTimer, stats FrameStats) string {
	return fmt.Sprintf("FPS: %.1f\nTPS: %.1f\nFrame: %.2fms (peak %.2fms)\nQuads: %d\nFlushes: %d\nDraws: %d",
		fps, tps,
		float64(timer.Average().Microseconds())/1000,
		float64(timer.Peak().Microseconds())/1000,
		stats.Quads, stats.Flushes, stats.DrawCalls)
}

func (o *fpsOverlay) draw(screen *ebiten.Image) {
	if o.text == "" {
		return
	}
	ebitenutil.DebugPrintAt(screen, o.text, 4, 4)
}
