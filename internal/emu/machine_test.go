package emu

import (
	"bytes"
	"testing"

	"github.com/lowbatten/dmgcore/internal/frontend"
)

// loopROM builds a cartridge image whose entry point spins in place
// (JR -2 at 0x0100), keeping machine state deterministic across frames.
func loopROM() []byte {
	rom := make([]byte, 0x8000)
	rom[0x0100] = 0x18
	rom[0x0101] = 0xFE
	return rom
}

func newTestMachine(t *testing.T) *Machine {
	t.Helper()
	m := New(Config{})
	if err := m.LoadCartridge(loopROM(), nil); err != nil {
		t.Fatalf("load cart: %v", err)
	}
	return m
}

func TestMachine_PostBootState(t *testing.T) {
	m := newTestMachine(t)
	if pc := m.cpu.PC; pc != 0x0100 {
		t.Fatalf("PC got %04x want 0100", pc)
	}
	if sp := m.cpu.SP; sp != 0xFFFE {
		t.Fatalf("SP got %04x want FFFE", sp)
	}
	if a, f := m.cpu.A, m.cpu.F; a != 0x01 || f != 0xB0 {
		t.Fatalf("AF got %02x%02x want 01B0", a, f)
	}
	if lcdc := m.bus.Read(0xFF40); lcdc != 0x91 {
		t.Fatalf("LCDC got %02x want 91", lcdc)
	}
	if bgp := m.bus.Read(0xFF47); bgp != 0xFC {
		t.Fatalf("BGP got %02x want FC", bgp)
	}
	if nr10 := m.bus.Read(0xFF10); nr10 != 0x80 {
		t.Fatalf("NR10 got %02x want 80", nr10)
	}
}

func TestMachine_PresentsOncePerFrame(t *testing.T) {
	m := newTestMachine(t)
	for frame := 1; frame <= 3; frame++ {
		m.StepFrame()
		if got := m.headless.PresentCount(); got != frame {
			t.Fatalf("after %d frames PresentCount got %d", frame, got)
		}
	}
	// LY stays within its 0..153 range across full frames.
	if ly := m.bus.Read(0xFF44); ly > 153 {
		t.Fatalf("LY out of range: %d", ly)
	}
}

func TestMachine_StepFrameTerminatesWithLCDOff(t *testing.T) {
	m := newTestMachine(t)
	m.bus.Write(0xFF40, 0x00) // game switches the LCD off
	m.StepFrame()             // must still return after one frame of cycles
	if got := m.headless.PresentCount(); got != 0 {
		t.Fatalf("presented %d frames with LCD off, want 0", got)
	}
}

func TestMachine_ButtonEventsReachJoypad(t *testing.T) {
	m := newTestMachine(t)
	m.bus.Write(0xFF00, 0x20) // select D-pad row (P14 low)
	m.headless.PushEvent(frontend.Event{Type: frontend.EventKeyDown, Key: frontend.KeyRight})
	m.StepFrame()
	if got := m.bus.Read(0xFF00) & 0x01; got != 0 {
		t.Fatalf("Right press not visible on JOYP: low nibble %01x", m.bus.Read(0xFF00)&0x0F)
	}
	m.headless.PushEvent(frontend.Event{Type: frontend.EventKeyUp, Key: frontend.KeyRight})
	m.StepFrame()
	if got := m.bus.Read(0xFF00) & 0x01; got == 0 {
		t.Fatalf("Right release not visible on JOYP")
	}
}

func TestMachine_QuitEventStopsTheLoop(t *testing.T) {
	m := newTestMachine(t)
	m.headless.PushEvent(frontend.Event{Type: frontend.EventQuit})
	m.StepFrame()
	if !m.Stopped() {
		t.Fatalf("machine not stopped after Quit event")
	}
	clk := m.cpu.Clock()
	m.StepFrame() // no-op once stopped
	if m.cpu.Clock() != clk {
		t.Fatalf("machine kept running after stop")
	}
}

func TestMachine_SaveLoadStateRoundTrip(t *testing.T) {
	m := newTestMachine(t)
	m.StepFrame()
	m.bus.Write(0xC123, 0xAB)
	snap := m.SaveState()
	if snap == nil {
		t.Fatalf("SaveState returned nil")
	}
	pc, clk := m.cpu.PC, m.cpu.Clock()

	m.StepFrame()
	m.bus.Write(0xC123, 0x00)
	if err := m.LoadState(snap); err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if m.cpu.PC != pc || m.cpu.Clock() != clk {
		t.Fatalf("CPU state not restored: PC=%04x clock=%d want PC=%04x clock=%d",
			m.cpu.PC, m.cpu.Clock(), pc, clk)
	}
	if got := m.bus.Read(0xC123); got != 0xAB {
		t.Fatalf("WRAM not restored: got %02x want AB", got)
	}
}

func TestMachine_SerialSinkObservesWrites(t *testing.T) {
	// Entry point writes 'H' to SB then starts a transfer via SC.
	rom := make([]byte, 0x8000)
	prog := []byte{
		0x3E, 'H', // LD A,'H'
		0xE0, 0x01, // LDH (FF01),A
		0x3E, 0x81, // LD A,0x81
		0xE0, 0x02, // LDH (FF02),A
		0x18, 0xFE, // JR -2
	}
	copy(rom[0x0100:], prog)
	m := New(Config{})
	if err := m.LoadCartridge(rom, nil); err != nil {
		t.Fatalf("load cart: %v", err)
	}
	var buf bytes.Buffer
	m.SetSerialWriter(&buf)
	m.StepFrame()
	if got := buf.String(); got != "H" {
		t.Fatalf("serial sink got %q want %q", got, "H")
	}
}
