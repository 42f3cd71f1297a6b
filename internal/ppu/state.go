package ppu

import (
	"bytes"
	"encoding/gob"
)

type ppuState struct {
	VRAM [0x2000]byte
	OAM  [0xA0]byte
	LCDC byte
	STAT byte
	SCY  byte
	SCX  byte
	LY   byte
	LYC  byte
	BGP  byte
	OBP0 byte
	OBP1 byte
	WY   byte
	WX   byte
	Dot  int
}

// SaveState serializes VRAM, OAM, and every PPU register/timing field needed
// to resume mid-frame, mirroring the gob encoding the bus uses for its own
// save-state blob.
func (p *PPU) SaveState() []byte {
	s := ppuState{
		VRAM: p.vram,
		OAM:  p.oam,
		LCDC: p.lcdc,
		STAT: p.stat,
		SCY:  p.scy,
		SCX:  p.scx,
		LY:   p.ly,
		LYC:  p.lyc,
		BGP:  p.bgp,
		OBP0: p.obp0,
		OBP1: p.obp1,
		WY:   p.wy,
		WX:   p.wx,
		Dot:  p.dot,
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&s); err != nil {
		return nil
	}
	return buf.Bytes()
}

// LoadState restores a blob produced by SaveState.
func (p *PPU) LoadState(data []byte) error {
	var s ppuState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return err
	}
	p.vram = s.VRAM
	p.oam = s.OAM
	p.lcdc = s.LCDC
	p.stat = s.STAT
	p.scy = s.SCY
	p.scx = s.SCX
	p.ly = s.LY
	p.lyc = s.LYC
	p.bgp = s.BGP
	p.obp0 = s.OBP0
	p.obp1 = s.OBP1
	p.wy = s.WY
	p.wx = s.WX
	p.dot = s.Dot
	return nil
}
