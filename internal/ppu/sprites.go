package ppu

import "sort"

// Sprite is a screen-space sprite entry ready for compositing: X and Y are
// already adjusted by the OAM's -8/-16 origin offset, and for 8x16 objects
// Tile has already been resolved to whichever 8x8 half (top or bottom)
// covers the requested line, so compositing only ever deals with one 8x8
// tile fetch per sprite per line.
type Sprite struct {
	X, Y     int
	Tile     byte
	Attr     byte
	OAMIndex int
}

const (
	attrPriority = 1 << 7 // 0: above BG, 1: behind BG colors 1-3
	attrYFlip    = 1 << 6
	attrXFlip    = 1 << 5
	attrPalette  = 1 << 4
)

// gatherSpritesForLine scans all 40 OAM entries for sprites covering ly,
// resolving 8x16 tile-half selection so downstream compositing always
// fetches a single 8x8 tile.
func (p *PPU) gatherSpritesForLine(ly byte) []Sprite {
	tall := (p.lcdc & 0x04) != 0
	height := 8
	if tall {
		height = 16
	}

	var found []Sprite
	for i := 0; i < 40; i++ {
		base := i * 4
		oy := int(p.oam[base+0]) - 16
		ox := int(p.oam[base+1]) - 8
		tile := p.oam[base+2]
		attr := p.oam[base+3]

		row := int(ly) - oy
		if row < 0 || row >= height {
			continue
		}

		if tall {
			tile &^= 0x01
			half := row / 8
			if (attr & attrYFlip) != 0 {
				half = 1 - half
			}
			tile |= byte(half)
		}

		found = append(found, Sprite{X: ox, Y: oy, Tile: tile, Attr: attr, OAMIndex: i})
	}
	return found
}

// spritePriorityLess reports whether a should be considered before b when two
// sprites cover the same pixel: lower X wins, ties broken by lower OAM index.
func spritePriorityLess(a, b Sprite) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	return a.OAMIndex < b.OAMIndex
}

// composeSpriteLineDetailed draws every sprite covering ly into a 160-wide
// color-index buffer, honoring BG-priority (attr bit7) against bgci, X-flip,
// and the leftmost-X/lowest-OAM-index tie-break. It reports, per pixel,
// the color index drawn, the winning sprite's attribute byte (for palette
// selection), and whether any opaque sprite pixel won that column.
func composeSpriteLineDetailed(mem VRAMReader, sprites []Sprite, ly byte, bgci [160]byte) (out [160]byte, attrOut [160]byte, hit [160]bool) {
	ordered := make([]Sprite, len(sprites))
	copy(ordered, sprites)
	sort.SliceStable(ordered, func(i, j int) bool { return spritePriorityLess(ordered[i], ordered[j]) })

	for x := 0; x < 160; x++ {
		for _, s := range ordered {
			col := x - s.X
			if col < 0 || col >= 8 {
				continue
			}
			if (s.Attr & attrXFlip) != 0 {
				col = 7 - col
			}
			row := int(ly) - s.Y
			if (s.Attr & attrYFlip) != 0 {
				row = 7 - (row % 8)
				if row < 0 {
					row += 8
				}
			} else {
				row = row % 8
			}

			tileAddr := 0x8000 + uint16(s.Tile)*16 + uint16(row)*2
			lo := mem.Read(tileAddr)
			hi := mem.Read(tileAddr + 1)
			bit := uint(7 - col)
			ci := ((hi>>bit)&1)<<1 | ((lo >> bit) & 1)
			if ci == 0 {
				continue // transparent, fall through to next sprite
			}
			if (s.Attr&attrPriority) != 0 && bgci[x] != 0 {
				hit[x] = false
				break // hidden behind non-zero BG color; this pixel is settled
			}
			out[x] = ci
			attrOut[x] = s.Attr
			hit[x] = true
			break
		}
	}
	return
}

// ComposeSpriteLine is the public entry point used by tests and callers that
// only need resolved color indices (0 meaning "no sprite pixel visible
// here"), without per-pixel attribute detail. cgb is accepted for interface
// symmetry with a Color Game Boy renderer but is unused: CGB sprite
// priority/palette rules are out of scope here.
func ComposeSpriteLine(mem VRAMReader, sprites []Sprite, ly byte, bgci [160]byte, cgb bool) [160]byte {
	out, _, hit := composeSpriteLineDetailed(mem, sprites, ly, bgci)
	for x := 0; x < 160; x++ {
		if !hit[x] {
			out[x] = 0
		}
	}
	return out
}
