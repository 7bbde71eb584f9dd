package bramble

import (
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// Game is the application driven by an Engine.
type Game interface {
	// Update advances the game by dt seconds. A non-nil error stops the loop;
	// return ebiten.Termination for a clean exit.
	Update(dt float64) error
	// Draw submits the frame's quads. The renderer is between BeginDraw and
	// EndDraw for the duration of the call.
	Draw(r *Renderer)
}

// Loader is implemented by games that load assets once the engine exists.
type Loader interface {
	Load(e *Engine) error
}

// Engine runs a Game on Ebitengine: it owns the renderer, the texture
// registry, the default camera and the frame timer, and implements
// ebiten.Game.
//
// One tick is: timer update, texture reloads, camera tweens, game update,
// frame pacing. One frame is: BeginDraw, game draw, EndDraw, overlay,
// screenshots.
type Engine struct {
	// ScreenshotDir is where Screenshot writes PNG files.
	ScreenshotDir string

	cfg      Config
	game     Game
	backend  *EbitenBackend
	renderer *Renderer
	textures *TextureRegistry
	camera   *Camera
	timer    *FrameTimer

	width, height int
	lastDelta     float64
	droppedFrames int

	showFPS bool
	overlay fpsOverlay

	screenshotQueue []string
	script          *ScriptRunner
}

var _ ebiten.Game = (*Engine)(nil)

// NewEngine creates an engine for game. It applies the logging settings of
// cfg but does not touch the window; Run does.
func NewEngine(game Game, cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Log.Level != "" {
		if err := SetLogLevel(cfg.Log.Level); err != nil {
			return nil, fmt.Errorf("bramble: log level: %w", err)
		}
	}
	SetDebugMode(cfg.Log.Debug)

	textures := NewTextureRegistry()
	backend := NewEbitenBackend()
	renderer, err := NewRenderer(backend, textures, RendererOptions{
		MaxQuadsPerBatch: cfg.Render.MaxQuads,
		MaxTextureSlots:  cfg.Render.MaxTextureSlots,
		Width:            cfg.Window.Width,
		Height:           cfg.Window.Height,
	})
	if err != nil {
		return nil, err
	}

	rw, rh := cfg.RenderSize()
	camera := NewCamera(rw, rh, cfg.Render.ScaleMode, cfg.Render.Anchor)
	renderer.SetCamera(camera)
	renderer.ClearColor(cfg.ClearColor())

	e := &Engine{
		ScreenshotDir: "screenshots",
		cfg:           cfg,
		game:          game,
		backend:       backend,
		renderer:      renderer,
		textures:      textures,
		camera:        camera,
		timer:         NewFrameTimer(cfg.Timing.TargetFPS),
		width:         cfg.Window.Width,
		height:        cfg.Window.Height,
		showFPS:       cfg.Render.ShowFPS,
	}

	if cfg.Assets.Watch && cfg.Assets.Dir != "" {
		if err := textures.Watch(cfg.Assets.Dir); err != nil {
			logger.Warn("asset hot reload disabled", "err", err)
		}
	}
	return e, nil
}

// Run creates an engine, lets the game load its assets, opens the window
// and blocks until the game stops.
func Run(game Game, cfg Config) error {
	e, err := NewEngine(game, cfg)
	if err != nil {
		return err
	}
	defer e.Close()

	if l, ok := game.(Loader); ok {
		if err := l.Load(e); err != nil {
			return fmt.Errorf("bramble: load: %w", err)
		}
	}

	e.applyWindow()
	logger.Info("starting", "title", cfg.Window.Title,
		"window", fmt.Sprintf("%dx%d", cfg.Window.Width, cfg.Window.Height),
		"slots", e.renderer.Batch().MaxSlots())

	err = ebiten.RunGame(e)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

func (e *Engine) applyWindow() {
	w := e.cfg.Window
	ebiten.SetWindowTitle(w.Title)
	ebiten.SetWindowSize(w.Width, w.Height)
	if w.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	} else {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeDisabled)
	}
	ebiten.SetVsyncEnabled(w.VSync)
	if e.cfg.Timing.TPS > 0 {
		ebiten.SetTPS(e.cfg.Timing.TPS)
	}
}

// Update implements ebiten.Game.
func (e *Engine) Update() error {
	dt := e.timer.Update()
	e.lastDelta = dt
	e.textures.ProcessReloads()
	if e.script != nil {
		if err := e.script.step(e); err != nil {
			return err
		}
	}
	e.camera.Update(float32(dt))
	if err := e.game.Update(dt); err != nil {
		return err
	}
	e.timer.Wait()
	return nil
}

// Draw implements ebiten.Game.
func (e *Engine) Draw(screen *ebiten.Image) {
	e.backend.SetTarget(screen)
	if err := e.renderer.BeginDraw(nil); err != nil {
		e.dropFrame(err)
		return
	}
	e.game.Draw(e.renderer)
	if err := e.renderer.EndDraw(); err != nil {
		e.dropFrame(err)
	}

	if e.showFPS {
		e.overlay.update(e.lastDelta, e.timer, e.renderer.Stats())
		e.overlay.draw(screen)
	}
	e.flushScreenshots(screen)
}

// dropFrame logs a failed frame. The next frame starts from a clean state.
func (e *Engine) dropFrame(err error) {
	e.droppedFrames++
	logger.Warn("frame dropped", "err", err, "dropped", e.droppedFrames)
}

// Layout implements ebiten.Game. The screen matches the window in device
// independent pixels; the camera maps the render size onto it.
func (e *Engine) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != e.width || outsideHeight != e.height {
		e.width, e.height = outsideWidth, outsideHeight
		e.renderer.Resize(outsideWidth, outsideHeight)
		logger.Debug("resize", "width", outsideWidth, "height", outsideHeight)
	}
	return outsideWidth, outsideHeight
}

// Close stops background work such as the asset watcher.
func (e *Engine) Close() error {
	return e.textures.Close()
}

// Renderer returns the engine's renderer.
func (e *Engine) Renderer() *Renderer { return e.renderer }

// Textures returns the engine's texture registry.
func (e *Engine) Textures() *TextureRegistry { return e.textures }

// Camera returns the default camera.
func (e *Engine) Camera() *Camera { return e.camera }

// Timer returns the frame timer.
func (e *Engine) Timer() *FrameTimer { return e.timer }

// Config returns the configuration the engine was created with.
func (e *Engine) Config() Config { return e.cfg }

// SetShowFPS toggles the diagnostics overlay.
func (e *Engine) SetShowFPS(show bool) { e.showFPS = show }

// SetScript attaches a frame script; nil detaches it.
func (e *Engine) SetScript(r *ScriptRunner) { e.script = r }

// DroppedFrames returns how many frames failed to render.
func (e *Engine) DroppedFrames() int { return e.droppedFrames }
