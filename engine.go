package grove

import (
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

// Engine owns the scene registry, the numbered stage slots, shared
// resources, and the game loop. It implements ebiten.Game.
type Engine struct {
	Config *Config
	Logger *zap.Logger
	Assets *Assets
	Inputs *Inputs
	State  *GameState

	// Background fills the screen before stages render. Zero leaves the
	// screen as ebiten cleared it.
	Background Color

	// ScreenshotDir is the directory where screenshots are saved.
	ScreenshotDir string

	// ShowFPS renders an FPS/TPS readout over every stage.
	ShowFPS bool

	scenes      map[string]*Scene
	sheets      map[string]*SpriteSheet
	stages      []*Stage
	activeStage int
	paused      bool

	keyboard        *Keyboard
	script          *InputScript
	injectQueue     []syntheticInput
	fps             *fpsCounter
	screenshotQueue []string
}

// New creates an engine from cfg (nil for DefaultConfig). The logger is a
// no-op until SetLogger replaces it; NewFromConfig builds one from the [logging] section.
func New(cfg *Config) *Engine {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	g := &Engine{
		Config:        cfg,
		Logger:        zap.NewNop(),
		Assets:        NewAssets(),
		Inputs:        NewInputs(),
		State:         NewGameState(),
		ScreenshotDir: cfg.Game.ScreenshotDir,
		scenes:        make(map[string]*Scene),
		sheets:        make(map[string]*SpriteSheet),
	}
	if c, ok := ParseColor(cfg.Game.Background); ok {
		g.Background = c
	}
	g.keyboard = NewKeyboard(g.Inputs, cfg.Input.Bindings)
	return g
}

// NewFromConfig creates an engine and its logger from cfg.
func NewFromConfig(cfg *Config) (*Engine, error) {
	g := New(cfg)
	logger, err := NewLogger(g.Config.Logging)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	g.SetLogger(logger)
	return g, nil
}

// SetLogger replaces the engine logger and propagates it to live stages.
func (g *Engine) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	g.Logger = l
	for i, s := range g.stages {
		if s != nil {
			s.SetLogger(l.With(zap.Int("stage", i)))
		}
	}
}

// resources returns the engine reachable from e, or nil.
func (e *Entity) resources() *Engine {
	if e.stage != nil {
		return e.stage.engine
	}
	return nil
}

// Scene registers a scene under name, replacing any previous one.
func (g *Engine) Scene(name string, fn SceneFunc, opts StageOptions) *Scene {
	sc := NewScene(name, fn, opts)
	g.scenes[name] = sc
	return sc
}

// LookupScene returns a registered scene.
func (g *Engine) LookupScene(name string) (*Scene, error) {
	sc, ok := g.scenes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScene, name)
	}
	return sc, nil
}

// StageScene builds the named scene into stage slot num. Any stage already
// in the slot is destroyed first. Higher slots render on top.
func (g *Engine) StageScene(name string, num int, opts StageOptions) (*Stage, error) {
	sc, err := g.LookupScene(name)
	if err != nil {
		return nil, err
	}
	return g.StageSceneWith(sc, num, opts)
}

// StageSceneWith is StageScene for an unregistered (or nil) scene.
func (g *Engine) StageSceneWith(sc *Scene, num int, opts StageOptions) (*Stage, error) {
	if num < 0 {
		return nil, fmt.Errorf("grove: negative stage slot %d", num)
	}
	for len(g.stages) <= num {
		g.stages = append(g.stages, nil)
	}
	if old := g.stages[num]; old != nil {
		old.Destroy()
	}

	base := g.Config.stageOptions()
	if sc != nil {
		opts = sc.mergeOptions(opts)
	}
	s := NewStage(sc, overlayOptions(base, opts))
	s.engine = g
	s.SetLogger(g.Logger.With(zap.Int("stage", num)))
	s.SetDebugMode(g.Config.Game.Debug)

	g.activeStage = num
	g.stages[num] = s
	defer func() { g.activeStage = 0 }()

	if len(s.options.Assets) > 0 {
		if err := s.LoadAssets(s.options.Assets); err != nil {
			return s, err
		}
	}
	if sc != nil {
		sc.load(s)
		g.Logger.Debug("scene staged", zap.String("scene", sc.Name), zap.Int("stage", num))
	}
	return s, nil
}

// Stage returns the stage in slot num, or nil.
func (g *Engine) Stage(num int) *Stage {
	if num < 0 || num >= len(g.stages) {
		return nil
	}
	return g.stages[num]
}

// ActiveStage returns the stage currently being built or stepped, slot 0
// otherwise.
func (g *Engine) ActiveStage() *Stage {
	return g.Stage(g.activeStage)
}

// Stages returns the stage slots. Empty slots are nil.
func (g *Engine) Stages() []*Stage {
	return g.stages
}

// ClearStage destroys the stage in slot num.
func (g *Engine) ClearStage(num int) {
	if s := g.Stage(num); s != nil {
		s.Destroy()
		g.stages[num] = nil
	}
}

// ClearStages destroys every stage.
func (g *Engine) ClearStages() {
	for i, s := range g.stages {
		if s != nil {
			s.Destroy()
		}
		g.stages[i] = nil
	}
	g.stages = g.stages[:0]
}

// Select returns a selector over the class or ".component" list of the
// stage in slot num (the active stage when num < 0).
func (g *Engine) Select(selector string, num int) *StageSelector {
	if num < 0 {
		num = g.activeStage
	}
	return NewStageSelector(g.Stage(num), selector)
}

// SetSheet registers a sprite sheet.
func (g *Engine) SetSheet(sh *SpriteSheet) {
	g.sheets[sh.Name] = sh
}

// Sheet returns a registered sprite sheet, or nil.
func (g *Engine) Sheet(name string) *SpriteSheet {
	if name == "" {
		return nil
	}
	return g.sheets[name]
}

// clampDelta bounds a frame delta: negative deltas become 1/60 and deltas
// above limit are cut to limit.
func clampDelta(dt, limit float64) float64 {
	if dt < 0 {
		return 1.0 / 60
	}
	if limit > 0 && dt > limit {
		return limit
	}
	return dt
}

// StepStages steps every stage in slot order with a clamped dt.
func (g *Engine) StepStages(dt float64) {
	dt = clampDelta(dt, g.Config.Game.FrameTimeLimit)
	// Listeners may clear or restage slots mid-loop, so the length and
	// each slot are re-read every iteration.
	for i := 0; i < len(g.stages); i++ {
		s := g.stages[i]
		if s == nil || s.destroyed {
			continue
		}
		g.activeStage = i
		s.Step(dt)
	}
	g.activeStage = 0
}

// RenderStages renders every stage in slot order onto target.
func (g *Engine) RenderStages(target *ebiten.Image) {
	for i := 0; i < len(g.stages); i++ {
		s := g.stages[i]
		if s == nil || s.destroyed {
			continue
		}
		g.activeStage = i
		s.Render(target)
	}
	g.activeStage = 0
}

// PauseGame stops StepStages from being called by Update.
func (g *Engine) PauseGame() { g.paused = true }

// UnpauseGame resumes the loop.
func (g *Engine) UnpauseGame() { g.paused = false }

// TogglePause flips the paused state.
func (g *Engine) TogglePause() { g.paused = !g.paused }

// IsPaused reports whether the loop is paused.
func (g *Engine) IsPaused() bool { return g.paused }

// Update implements ebiten.Game: poll input, replay any input script, then
// step all stages by one tick.
func (g *Engine) Update() error {
	if g.keyboard != nil {
		g.keyboard.Poll()
	}
	if g.script != nil {
		g.script.step(g)
	}
	if !g.processInjectedInput() {
		g.pollPointer()
	}
	if g.paused {
		return nil
	}
	dt := 1.0 / float64(ebiten.TPS())
	g.StepStages(dt)
	if g.fps != nil {
		g.fps.update(dt)
	}
	return nil
}

// Draw implements ebiten.Game.
func (g *Engine) Draw(screen *ebiten.Image) {
	if !g.Background.IsZero() {
		screen.Fill(g.Background.ToRGBA())
	}
	g.RenderStages(screen)
	if g.ShowFPS {
		if g.fps == nil {
			g.fps = newFPSCounter()
		}
		g.fps.draw(screen)
	}
	g.flushScreenshots(screen)
}

// Layout implements ebiten.Game with a fixed logical size.
func (g *Engine) Layout(_, _ int) (int, int) {
	return g.Config.Game.Width, g.Config.Game.Height
}

// ScreenSize returns the logical screen size.
func (g *Engine) ScreenSize() image.Point {
	return image.Pt(g.Config.Game.Width, g.Config.Game.Height)
}

// Run opens a window and blocks until the game exits.
func (g *Engine) Run() error {
	ebiten.SetWindowSize(g.Config.Game.Width, g.Config.Game.Height)
	ebiten.SetWindowTitle(g.Config.Game.Title)
	g.Logger.Info("starting game",
		zap.String("title", g.Config.Game.Title),
		zap.Int("width", g.Config.Game.Width),
		zap.Int("height", g.Config.Game.Height),
	)
	return ebiten.RunGame(g)
}
