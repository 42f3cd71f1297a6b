package frontend

// Headless is an in-memory Frontend with no windowing dependency, used by
// cmd/gbemu's -headless acceptance mode and by package tests that need a
// real pixel sink without an ebiten window.
type Headless struct {
	W, H      int
	Pix       []byte // RGBA8888, len == W*H*4
	presented int
	queue     []Event
}

// NewHeadless allocates a w x h Headless frontend (160x144 for a DMG frame).
func NewHeadless(w, h int) *Headless {
	return &Headless{W: w, H: h, Pix: make([]byte, w*h*4)}
}

func (h *Headless) DrawPixel(x, y int, r, g, b byte) {
	if x < 0 || x >= h.W || y < 0 || y >= h.H {
		return
	}
	i := (y*h.W + x) * 4
	h.Pix[i+0] = r
	h.Pix[i+1] = g
	h.Pix[i+2] = b
	h.Pix[i+3] = 0xFF
}

func (h *Headless) Present() { h.presented++ }

// PresentCount reports how many frames have been flushed, for tests that
// assert the PPU presents exactly once per 70,224 T-state frame.
func (h *Headless) PresentCount() int { return h.presented }

// PushEvent enqueues a synthetic input event, consumed by the next PollEvents.
func (h *Headless) PushEvent(e Event) { h.queue = append(h.queue, e) }

func (h *Headless) PollEvents() []Event {
	out := h.queue
	h.queue = nil
	return out
}
