package emu

import (
	"bytes"
	"encoding/gob"
	"io"
	"os"

	"github.com/lowbatten/dmgcore/internal/bus"
	"github.com/lowbatten/dmgcore/internal/cart"
	"github.com/lowbatten/dmgcore/internal/cpu"
	"github.com/lowbatten/dmgcore/internal/frontend"
)

// frameCycles is one full LCD refresh: 154 lines of 456 T-states each.
const frameCycles = 70224

// Buttons reports the instantaneous state of all eight joypad buttons.
type Buttons struct {
	A, B, Start, Select   bool
	Up, Down, Left, Right bool
}

func (b Buttons) mask() byte {
	var m byte
	if b.Right {
		m |= bus.JoypRight
	}
	if b.Left {
		m |= bus.JoypLeft
	}
	if b.Up {
		m |= bus.JoypUp
	}
	if b.Down {
		m |= bus.JoypDown
	}
	if b.A {
		m |= bus.JoypA
	}
	if b.B {
		m |= bus.JoypB
	}
	if b.Select {
		m |= bus.JoypSelectBtn
	}
	if b.Start {
		m |= bus.JoypStart
	}
	return m
}

// splitter fans the PPU's pixel stream out to the always-present headless
// buffer and, when one is attached, a host window frontend.
type splitter struct {
	base *frontend.Headless
	host frontend.Frontend
}

func (s *splitter) DrawPixel(x, y int, r, g, b byte) {
	s.base.DrawPixel(x, y, r, g, b)
	if s.host != nil {
		s.host.DrawPixel(x, y, r, g, b)
	}
}

func (s *splitter) Present() {
	s.base.Present()
	if s.host != nil {
		s.host.Present()
	}
}

func (s *splitter) PollEvents() []frontend.Event { return nil }

// Machine wires together the CPU, bus, and PPU into a runnable DMG. It owns
// the headless pixel sink the PPU always draws into; a windowing frontend,
// if attached via SetFrontend, observes the same frames and additionally
// supplies input polling, while Framebuffer() always reflects the most
// recently drawn frame regardless of whether a window is attached.
type Machine struct {
	cfg Config

	cpu *cpu.CPU
	bus *bus.Bus

	headless *frontend.Headless
	out      *splitter

	buttons Buttons
	stopped bool

	diagnostics chan cpu.Diagnostic
}

// New constructs a Machine with no cartridge loaded. Call LoadROMFromFile or
// LoadCartridge before stepping.
func New(cfg Config) *Machine {
	depth := cfg.DiagnosticsDepth
	if depth <= 0 {
		depth = 16
	}
	m := &Machine{cfg: cfg}
	m.headless = frontend.NewHeadless(160, 144)
	m.out = &splitter{base: m.headless}
	m.diagnostics = make(chan cpu.Diagnostic, depth)
	m.reset(bus.New(make([]byte, 0x8000)), true)
	return m
}

func (m *Machine) reset(b *bus.Bus, postBoot bool) {
	m.bus = b
	m.bus.PPU().SetFrontend(m.out)
	m.cpu = cpu.New(m.bus)
	m.cpu.Diagnostics = m.diagnostics
	m.buttons = Buttons{}
	m.stopped = false
	if postBoot {
		m.cpu.ResetNoBoot()
		m.cpu.SetPC(0x0100)
		m.bus.InitPostBoot()
	}
}

// LoadCartridge wires a fresh Bus+CPU around rom. With a boot image the CPU
// starts at 0x0000 under the boot ROM overlay until the game disables it via
// the 0xFF50 register; without one, registers and I/O are set to their
// post-boot values and execution starts at the conventional 0x0100 entry.
func (m *Machine) LoadCartridge(rom []byte, boot []byte) error {
	if _, err := cart.ParseHeader(rom); err != nil {
		return err
	}
	b := bus.NewWithCartridge(cart.NewCartridge(rom))
	if len(boot) > 0 {
		b.SetBootROM(boot)
	}
	m.reset(b, len(boot) == 0)
	return nil
}

// LoadROMFromFile reads romPath and loads it with no boot ROM.
func (m *Machine) LoadROMFromFile(romPath string) error {
	data, err := os.ReadFile(romPath)
	if err != nil {
		return err
	}
	return m.LoadCartridge(data, nil)
}

// SetSerialWriter attaches a sink for bytes written through the serial port
// (0xFF01/0xFF02), e.g. to capture Blargg test-ROM pass/fail text.
func (m *Machine) SetSerialWriter(w io.Writer) { m.bus.SetSerialWriter(w) }

// SetFrontend attaches (or detaches, with nil) a host windowing frontend.
// The PPU continues to draw into the internal headless buffer either way.
func (m *Machine) SetFrontend(f frontend.Frontend) { m.out.host = f }

// SetButtons updates which joypad buttons are currently held.
func (m *Machine) SetButtons(b Buttons) {
	m.buttons = b
	m.bus.SetJoypadState(b.mask())
}

// Stop requests termination; the frame driver returns at the next
// instruction boundary and StepFrame becomes a no-op afterwards.
func (m *Machine) Stop() { m.stopped = true }

// Stopped reports whether a Quit event or an explicit Stop call ended the run.
func (m *Machine) Stopped() bool { return m.stopped }

// Diagnostics exposes the channel CPU undefined-opcode/bad-STOP reports
// arrive on. The channel is buffered and the CPU drops reports rather than
// blocking if nothing drains it.
func (m *Machine) Diagnostics() <-chan cpu.Diagnostic { return m.diagnostics }

// Framebuffer returns the most recently rendered frame as packed RGBA8888,
// row-major, 160x144.
func (m *Machine) Framebuffer() []byte { return m.headless.Pix }

// applyEvent folds one frontend event into the held-button state or the
// stop flag.
func (m *Machine) applyEvent(e frontend.Event) {
	if e.Type == frontend.EventQuit {
		m.stopped = true
		return
	}
	down := e.Type == frontend.EventKeyDown
	switch e.Key {
	case frontend.KeyA:
		m.buttons.A = down
	case frontend.KeyB:
		m.buttons.B = down
	case frontend.KeySelect:
		m.buttons.Select = down
	case frontend.KeyStart:
		m.buttons.Start = down
	case frontend.KeyUp:
		m.buttons.Up = down
	case frontend.KeyDown:
		m.buttons.Down = down
	case frontend.KeyLeft:
		m.buttons.Left = down
	case frontend.KeyRight:
		m.buttons.Right = down
	}
}

// stepFrameCycles runs CPU instructions until one frame's worth of T-states
// has elapsed. The PPU and timers advance in lockstep inside each Step, so
// presentation happens inside whichever instruction crosses the 143->144
// line boundary; bounding on cycles rather than on a Present call keeps the
// driver terminating even while the game has the LCD switched off.
func (m *Machine) stepFrameCycles() {
	budget := frameCycles
	for budget > 0 && !m.stopped {
		budget -= m.cpu.Step()
	}
}

// StepFrame polls the attached frontend for input, folds key transitions
// into the joypad latch, then advances the machine by one frame.
func (m *Machine) StepFrame() {
	if m.out.host != nil {
		for _, e := range m.out.host.PollEvents() {
			m.applyEvent(e)
		}
	}
	for _, e := range m.headless.PollEvents() {
		m.applyEvent(e)
	}
	m.bus.SetJoypadState(m.buttons.mask())
	if m.stopped {
		return
	}
	m.stepFrameCycles()
}

// StepFrameNoRender advances the machine by one frame without polling a
// host frontend; used by headless acceptance tests that only care about
// serial output or final framebuffer contents.
func (m *Machine) StepFrameNoRender() {
	m.stepFrameCycles()
}

type machineState struct {
	CPU []byte
	Bus []byte
}

// SaveState serializes the full machine (CPU registers, bus, timers, PPU,
// cartridge RAM) into a single resumable blob.
func (m *Machine) SaveState() []byte {
	var buf bytes.Buffer
	s := machineState{CPU: m.cpu.SaveState(), Bus: m.bus.SaveState()}
	if err := gob.NewEncoder(&buf).Encode(&s); err != nil {
		return nil
	}
	return buf.Bytes()
}

// LoadState restores a blob produced by SaveState.
func (m *Machine) LoadState(data []byte) error {
	var s machineState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return err
	}
	if err := m.cpu.LoadState(s.CPU); err != nil {
		return err
	}
	m.bus.LoadState(s.Bus)
	return nil
}
