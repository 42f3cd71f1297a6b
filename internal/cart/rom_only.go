package cart

import (
	"bytes"
	"encoding/gob"
)

// ROMOnly implements the fixed ROM0+ROM1 cartridge with a real, unbanked
// 8 KiB external RAM window at 0xA000-0xBFFF. There is no MBC: no bank
// register writes and no RAM enable latch, so every write into the ROM area
// is simply discarded.
type ROMOnly struct {
	rom []byte
	ram [0x2000]byte
}

func NewROMOnly(rom []byte) *ROMOnly {
	return &ROMOnly{rom: rom}
}

func (c *ROMOnly) Read(addr uint16) byte {
	switch {
	case addr < 0x8000: // ROM fixed area
		if int(addr) < len(c.rom) {
			return c.rom[addr]
		}
		return 0xFF
	case addr >= 0xA000 && addr <= 0xBFFF:
		return c.ram[addr-0xA000]
	default:
		return 0xFF
	}
}

func (c *ROMOnly) Write(addr uint16, value byte) {
	if addr >= 0xA000 && addr <= 0xBFFF {
		c.ram[addr-0xA000] = value
	}
	// 0x0000-0x7FFF: no MBC registers to latch, write is a no-op
}

type romOnlyState struct {
	RAM [0x2000]byte
}

// SaveState serializes external RAM so machine snapshots round-trip.
func (c *ROMOnly) SaveState() []byte {
	var buf bytes.Buffer
	_ = gob.NewEncoder(&buf).Encode(&romOnlyState{RAM: c.ram})
	return buf.Bytes()
}

func (c *ROMOnly) LoadState(data []byte) {
	if len(data) == 0 {
		return
	}
	var s romOnlyState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return
	}
	c.ram = s.RAM
}
