// Package chip8 ties together the guest state, the interpreter core, and
// the JIT core behind a single interface so drivers (cmd/, tests) can
// swap implementations without caring which one is underneath.
package chip8

import "github.com/bradford-hamilton/chippy8-jit/internal/chip8/state"

// Core is the contract both the interpreter and the JIT core satisfy.
// spec.md §9 calls for this as a redesign of the original's virtual-method
// interface: a thin Go interface instead of a C++ base class.
type Core interface {
	// LoadROM resets the guest, writes font data and the ROM into RAM,
	// and reports whether the ROM fit.
	LoadROM(rom []byte) error

	// Execute advances the guest by one scheduling unit (one opcode for
	// the interpreter, one compiled block for the JIT) and returns the
	// number of guest opcodes actually executed.
	Execute() uint64

	// SetKey updates a key's pressed state; it may unblock a pending FX0A.
	SetKey(key byte, pressed bool)

	// ResetKeys clears all key-down flags.
	ResetKeys()

	// UpdateTimers decrements the delay and sound timers by one if
	// nonzero. The driver calls this at 60 Hz.
	UpdateTimers()

	// ScreenBuffer returns the current framebuffer, one uint64 per row,
	// high bit leftmost.
	ScreenBuffer() [state.ScreenHeight]uint64

	// DelayTimer and SoundTimer expose the two down-counters for drivers
	// that need them directly (e.g. to decide whether to play a beep).
	DelayTimer() byte
	SoundTimer() byte
}
