package bramble

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config is the engine configuration, usually read from a TOML file:
//
//	[window]
//	title = "My Game"
//	width = 1280
//	height = 720
//
//	[render]
//	width = 320
//	height = 180
//	scale_mode = "keep_height"
//	anchor = "top_left"
//	clear_color = [0.1, 0.1, 0.15, 1.0]
type Config struct {
	Window WindowConfig `toml:"window"`
	Render RenderConfig `toml:"render"`
	Timing TimingConfig `toml:"timing"`
	Log    LogConfig    `toml:"log"`
	Assets AssetsConfig `toml:"assets"`
}

// WindowConfig configures the OS window.
type WindowConfig struct {
	Title     string `toml:"title"`
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	Resizable bool   `toml:"resizable"`
	VSync     bool   `toml:"vsync"`
}

// RenderConfig configures the renderer and the default camera.
type RenderConfig struct {
	// Width and Height are the logical render size. Zero means the window size.
	Width      int        `toml:"width"`
	Height     int        `toml:"height"`
	ScaleMode  ScaleMode  `toml:"scale_mode"`
	Anchor     Anchor     `toml:"anchor"`
	ClearColor [4]float32 `toml:"clear_color"`
	// MaxQuads is the per-batch quad cap.
	MaxQuads int `toml:"max_quads"`
	// MaxTextureSlots optionally lowers the device texture slot limit.
	MaxTextureSlots int  `toml:"max_texture_slots"`
	ShowFPS         bool `toml:"show_fps"`
}

// TimingConfig configures frame pacing.
type TimingConfig struct {
	// TPS is the fixed update rate. Zero keeps Ebitengine's default.
	TPS int `toml:"tps"`
	// TargetFPS makes the frame timer sleep to this rate. Zero disables it.
	TargetFPS int `toml:"target_fps"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level"`
	Debug bool   `toml:"debug"`
}

// AssetsConfig configures asset loading.
type AssetsConfig struct {
	Dir   string `toml:"dir"`
	Watch bool   `toml:"watch"`
}

// DefaultConfig returns the configuration used for fields a file omits.
func DefaultConfig() Config {
	return Config{
		Window: WindowConfig{
			Title:     "bramble",
			Width:     1280,
			Height:    720,
			Resizable: true,
			VSync:     true,
		},
		Render: RenderConfig{
			ScaleMode:  ScaleExpand,
			Anchor:     AnchorTopLeft,
			ClearColor: [4]float32{0, 0, 0, 1},
			MaxQuads:   DefaultMaxQuadsPerBatch,
		},
		Log: LogConfig{
			Level: "info",
		},
		Assets: AssetsConfig{
			Dir: "assets",
		},
	}
}

// ParseConfig decodes TOML data over DefaultConfig and validates the result.
// Unknown keys are rejected.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("bramble: config: %s", strict.String())
		}
		return Config{}, fmt.Errorf("bramble: config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses a TOML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("bramble: config: %w", err)
	}
	return ParseConfig(data)
}

// Marshal encodes the config as TOML.
func (c Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

// Validate checks field ranges.
func (c Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	if c.Render.Width < 0 || c.Render.Height < 0 {
		errs = append(errs, fmt.Errorf("render size %dx%d must not be negative", c.Render.Width, c.Render.Height))
	}
	if c.Render.MaxQuads < 0 {
		errs = append(errs, fmt.Errorf("max_quads %d must not be negative", c.Render.MaxQuads))
	}
	if c.Render.MaxTextureSlots == 1 || c.Render.MaxTextureSlots < 0 {
		errs = append(errs, fmt.Errorf("max_texture_slots %d must be 0 or at least 2", c.Render.MaxTextureSlots))
	}
	if c.Timing.TPS < 0 || c.Timing.TargetFPS < 0 {
		errs = append(errs, errors.New("timing rates must not be negative"))
	}
	for _, v := range c.Render.ClearColor {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("clear_color components must be in [0, 1], got %v", c.Render.ClearColor))
			break
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("bramble: invalid config: %w", err)
	}
	return nil
}

// RenderSize returns the logical render size, defaulting to the window size.
func (c Config) RenderSize() (width, height int) {
	width, height = c.Render.Width, c.Render.Height
	if width == 0 {
		width = c.Window.Width
	}
	if height == 0 {
		height = c.Window.Height
	}
	return width, height
}

// ClearColor returns the configured clear color.
func (c Config) ClearColor() Color {
	cc := c.Render.ClearColor
	return Color{cc[0], cc[1], cc[2], cc[3]}
}

var scaleModeNames = [...]string{
	ScaleKeep:       "keep",
	ScaleKeepWidth:  "keep_width",
	ScaleKeepHeight: "keep_height",
	ScaleExpand:     "expand",
}

func (m ScaleMode) String() string {
	if int(m) < len(scaleModeNames) {
		return scaleModeNames[m]
	}
	return fmt.Sprintf("ScaleMode(%d)", uint8(m))
}

// MarshalText implements encoding.TextMarshaler.
func (m ScaleMode) MarshalText() ([]byte, error) {
	if int(m) >= len(scaleModeNames) {
		return nil, fmt.Errorf("bramble: unknown scale mode %d", uint8(m))
	}
	return []byte(scaleModeNames[m]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *ScaleMode) UnmarshalText(text []byte) error {
	for i, name := range scaleModeNames {
		if name == string(text) {
			*m = ScaleMode(i)
			return nil
		}
	}
	return fmt.Errorf("bramble: unknown scale mode %q", text)
}

var anchorNames = [...]string{
	AnchorTopLeft: "top_left",
	AnchorCenter:  "center",
}

func (a Anchor) String() string {
	if int(a) < len(anchorNames) {
		return anchorNames[a]
	}
	return fmt.Sprintf("Anchor(%d)", uint8(a))
}

// MarshalText implements encoding.TextMarshaler.
func (a Anchor) MarshalText() ([]byte, error) {
	if int(a) >= len(anchorNames) {
		return nil, fmt.Errorf("bramble: unknown anchor %d", uint8(a))
	}
	return []byte(anchorNames[a]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Anchor) UnmarshalText(text []byte) error {
	for i, name := range anchorNames {
		if name == string(text) {
			*a = Anchor(i)
			return nil
		}
	}
	return fmt.Errorf("bramble: unknown anchor %q", text)
}
