// Package ui is the ebiten-backed window frontend: it owns the host window,
// translates keyboard state into joypad events, and blits the frames the
// PPU pushes through the frontend.Frontend interface.
package ui

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/lowbatten/dmgcore/internal/emu"
	"github.com/lowbatten/dmgcore/internal/frontend"
)

// keyBindings maps host keys to joypad buttons: arrows for the D-pad,
// Z/X for A/B, Enter for Start, right shift for Select.
var keyBindings = []struct {
	host ebiten.Key
	pad  frontend.Key
}{
	{ebiten.KeyRight, frontend.KeyRight},
	{ebiten.KeyLeft, frontend.KeyLeft},
	{ebiten.KeyUp, frontend.KeyUp},
	{ebiten.KeyDown, frontend.KeyDown},
	{ebiten.KeyZ, frontend.KeyA},
	{ebiten.KeyX, frontend.KeyB},
	{ebiten.KeyEnter, frontend.KeyStart},
	{ebiten.KeyShiftRight, frontend.KeySelect},
}

// App is an ebiten.Game that doubles as the machine's frontend.Frontend:
// the PPU draws scanlines into App's pixel buffer during StepFrame, and
// App feeds key transitions back through PollEvents.
type App struct {
	cfg Config
	m   *emu.Machine

	pix []byte // RGBA8888, 160x144
	tex *ebiten.Image

	pending []frontend.Event

	lastTime time.Time
	frameAcc float64
}

// NewApp builds the window and wires itself into the machine as its
// frontend.
func NewApp(cfg Config, m *emu.Machine) *App {
	cfg.Defaults()
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(160*cfg.Scale, 144*cfg.Scale)
	a := &App{
		cfg:      cfg,
		m:        m,
		pix:      make([]byte, 160*144*4),
		lastTime: time.Now(),
	}
	m.SetFrontend(a)
	return a
}

// Run enters the ebiten main loop and blocks until the window closes or the
// machine stops.
func (a *App) Run() error { return ebiten.RunGame(a) }

// DrawPixel implements frontend.Frontend.
func (a *App) DrawPixel(x, y int, r, g, b byte) {
	if x < 0 || x >= 160 || y < 0 || y >= 144 {
		return
	}
	i := (y*160 + x) * 4
	a.pix[i+0] = r
	a.pix[i+1] = g
	a.pix[i+2] = b
	a.pix[i+3] = 0xFF
}

// Present implements frontend.Frontend. The buffer is blitted on the next
// Draw call; nothing to flush eagerly.
func (a *App) Present() {}

// PollEvents implements frontend.Frontend, handing the machine the key
// transitions collected since the previous frame.
func (a *App) PollEvents() []frontend.Event {
	out := a.pending
	a.pending = nil
	return out
}

func (a *App) collectInput() {
	for _, kb := range keyBindings {
		if inpututil.IsKeyJustPressed(kb.host) {
			a.pending = append(a.pending, frontend.Event{Type: frontend.EventKeyDown, Key: kb.pad})
		}
		if inpututil.IsKeyJustReleased(kb.host) {
			a.pending = append(a.pending, frontend.Event{Type: frontend.EventKeyUp, Key: kb.pad})
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		a.pending = append(a.pending, frontend.Event{Type: frontend.EventQuit})
	}
}

// Update steps emulation at the DMG's native refresh rate (~59.73 Hz) using
// a time accumulator, decoupled from ebiten's own ~60 Hz tick.
func (a *App) Update() error {
	a.collectInput()

	now := time.Now()
	dt := now.Sub(a.lastTime).Seconds()
	if dt < 0 {
		dt = 0
	}
	a.lastTime = now
	gbFps := 4194304.0 / 70224.0
	a.frameAcc += dt * gbFps
	for steps := 0; a.frameAcc >= 1.0 && steps < 10; steps++ { // cap to avoid spiral of death
		a.m.StepFrame()
		a.frameAcc -= 1.0
	}

	if a.m.Stopped() {
		return ebiten.Termination
	}
	return nil
}

func (a *App) Draw(screen *ebiten.Image) {
	if a.tex == nil {
		a.tex = ebiten.NewImage(160, 144)
	}
	a.tex.WritePixels(a.pix)
	screen.DrawImage(a.tex, nil)
}

func (a *App) Layout(outW, outH int) (int, int) { return 160, 144 }
