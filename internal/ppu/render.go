package ppu

// dmgShades maps a 2-bit color index through a palette byte to an RGB triple,
// using the classic four-shade DMG green-grey ramp.
var dmgShades = [4][3]byte{
	{0xE0, 0xF8, 0xD0},
	{0x88, 0xC0, 0x70},
	{0x34, 0x68, 0x56},
	{0x08, 0x18, 0x20},
}

func applyPalette(pal byte, ci byte) byte {
	return (pal >> (ci * 2)) & 0x03
}

// renderScanline composes background, window, and sprite layers for the
// current LY and draws them to the frontend. Called once per line at the
// mode3 -> mode0 (HBlank) boundary, mirroring real hardware's pixel FIFO
// draining across the VRAM-access window.
func (p *PPU) renderScanline() {
	ly := p.ly
	if ly >= 144 {
		return
	}

	var bgci [160]byte
	bgEnabled := (p.lcdc & 0x01) != 0
	if bgEnabled {
		mapBase := uint16(0x9800)
		if (p.lcdc & 0x08) != 0 {
			mapBase = 0x9C00
		}
		tileData8000 := (p.lcdc & 0x10) != 0
		bgci = RenderBGScanlineUsingFetcher(p, mapBase, tileData8000, p.scx, p.scy, ly)
	}

	winEnabled := bgEnabled && (p.lcdc&0x20) != 0 && int(p.wy) <= int(ly) && p.wx <= 166
	if winEnabled {
		winLine := ly - p.wy
		mapBase := uint16(0x9800)
		if (p.lcdc & 0x40) != 0 {
			mapBase = 0x9C00
		}
		tileData8000 := (p.lcdc & 0x10) != 0
		wxStart := int(p.wx) - 7
		winRow := RenderWindowScanlineUsingFetcher(p, mapBase, tileData8000, wxStart, winLine)
		for x := 0; x < 160; x++ {
			if x >= wxStart && wxStart < 160 {
				bgci[x] = winRow[x]
			}
		}
		p.lineRegs[ly] = LineRegs{WinLine: winLine}
	} else {
		p.lineRegs[ly] = LineRegs{}
	}

	spritesEnabled := (p.lcdc & 0x02) != 0
	var spriteOut [160]byte
	var spriteAttr [160]byte
	var spriteHit [160]bool
	if spritesEnabled {
		sprites := p.gatherSpritesForLine(ly)
		spriteOut, spriteAttr, spriteHit = composeSpriteLineDetailed(p, sprites, ly, bgci)
	}

	if p.frontend == nil {
		return
	}
	for x := 0; x < 160; x++ {
		var ci byte
		var shade byte
		if spriteHit[x] {
			pal := p.obp0
			if (spriteAttr[x] & 0x10) != 0 {
				pal = p.obp1
			}
			ci = spriteOut[x]
			shade = applyPalette(pal, ci)
		} else if bgEnabled {
			ci = bgci[x]
			shade = applyPalette(p.bgp, ci)
		} else {
			shade = 0
		}
		rgb := dmgShades[shade]
		p.frontend.DrawPixel(x, int(ly), rgb[0], rgb[1], rgb[2])
	}
}
