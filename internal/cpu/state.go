package cpu

import (
	"bytes"
	"encoding/gob"
)

type cpuState struct {
	A, F, B, C, D, E, H, L byte
	SP, PC                 uint16
	IME                    int
	Halted                 bool
	Stopped                bool
	Clock                  uint64
}

// SaveState serializes the register file and the IME/HALT/STOP machine,
// mirroring the gob encoding the bus and PPU use for their snapshots.
func (c *CPU) SaveState() []byte {
	s := cpuState{
		A: c.A, F: c.F, B: c.B, C: c.C, D: c.D, E: c.E, H: c.H, L: c.L,
		SP: c.SP, PC: c.PC,
		IME: int(c.ime), Halted: c.halted, Stopped: c.stopped,
		Clock: c.clock,
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&s); err != nil {
		return nil
	}
	return buf.Bytes()
}

// LoadState restores a blob produced by SaveState.
func (c *CPU) LoadState(data []byte) error {
	var s cpuState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return err
	}
	c.A, c.F, c.B, c.C, c.D, c.E, c.H, c.L = s.A, s.F, s.B, s.C, s.D, s.E, s.H, s.L
	c.SP, c.PC = s.SP, s.PC
	c.ime = imeState(s.IME)
	c.halted = s.Halted
	c.stopped = s.Stopped
	c.clock = s.Clock
	return nil
}
