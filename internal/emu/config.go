package emu

// Config adjusts machine construction.
type Config struct {
	// DiagnosticsDepth bounds the buffered diagnostics channel; zero picks
	// a small default. Reports beyond the bound are dropped, never blocking
	// emulation.
	DiagnosticsDepth int
}
