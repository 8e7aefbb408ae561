// Package interp is the reference CHIP-8 interpreter: a straightforward
// switch-per-opcode implementation that serves as the test oracle for the
// JIT core in package jit. Its externally observable state transitions
// must match the JIT's byte-for-byte, modulo CXNN's randomness.
package interp

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/bradford-hamilton/chippy8-jit/internal/chip8/state"
)

// Core is the interpreter implementation of chip8.Core.
type Core struct {
	s         *state.State
	quirks    state.Quirks
	romLoaded bool
	rng       *rand.Rand
}

// New returns an interpreter core with default quirks.
func New() *Core {
	return NewWithQuirks(state.DefaultQuirks())
}

// NewWithQuirks returns an interpreter core using the given quirk set and
// no screen-buffer locking.
func NewWithQuirks(quirks state.Quirks) *Core {
	return NewWithOptions(quirks, false)
}

// NewWithOptions returns an interpreter core using the given quirk set,
// optionally taking state.State.DrawLock around DXYN's screen-buffer
// write (spec.md §5's concurrency model leaves this off by default; the
// original source offers it as a build-time option, see DESIGN.md).
func NewWithOptions(quirks state.Quirks, drawLocking bool) *Core {
	s := state.New()
	s.DrawLockingOn = drawLocking
	return &Core{
		s:      s,
		quirks: quirks,
		rng:    rand.New(rand.NewSource(1)),
	}
}

// SetQuirks replaces the active quirk set. Unlike the JIT core, the
// interpreter has no compiled code to invalidate, so this takes effect on
// the very next opcode.
func (c *Core) SetQuirks(q state.Quirks) {
	c.quirks = q
}

// LoadROM resets the guest, writes the ROM at RAM[0x200:], and marks the
// guest ready to run.
func (c *Core) LoadROM(rom []byte) error {
	if len(rom) > state.MaxROMSize {
		return errors.Errorf("rom too large: %d bytes, max %d", len(rom), state.MaxROMSize)
	}
	c.s.Reset()
	copy(c.s.RAM[state.ProgramStart:], rom)
	c.romLoaded = true
	return nil
}

func (c *Core) SetKey(key byte, pressed bool)             { c.s.SetKey(key, pressed) }
func (c *Core) ResetKeys()                                { c.s.ResetKeys() }
func (c *Core) UpdateTimers()                             { c.s.UpdateTimers() }
func (c *Core) ScreenBuffer() [state.ScreenHeight]uint64  { return c.s.ScreenBuffer }
func (c *Core) DelayTimer() byte                          { return c.s.DelayTimer }
func (c *Core) SoundTimer() byte                          { return c.s.SoundTimer }

// Registers and IReg expose guest register state for tests and
// diagnostics (e.g. the JIT/interpreter equivalence suite).
func (c *Core) Registers() [16]byte { return c.s.V }
func (c *Core) IReg() uint16        { return c.s.I }

// Execute fetches, decodes, and executes exactly one guest opcode and
// returns 1 (0 if the guest isn't runnable yet).
func (c *Core) Execute() uint64 {
	if !c.romLoaded || c.s.AwaitingKeyPress() {
		return 0
	}

	s := c.s
	opcode := uint16(s.RAM[s.PC&0xFFF])<<8 | uint16(s.RAM[(s.PC+1)&0xFFF])
	s.PC += 2

	x := (opcode & 0x0F00) >> 8
	y := (opcode & 0x00F0) >> 4
	nn := byte(opcode & 0x00FF)
	nnn := opcode & 0x0FFF

	switch opcode & 0xF000 {
	case 0x0000:
		switch opcode & 0x0FFF {
		case 0x00E0:
			s.ScreenBuffer = [state.ScreenHeight]uint64{}
		case 0x00EE:
			s.SP = (s.SP - 1) & 0xF
			s.PC = s.Stack[s.SP]
		default:
			// unknown 0NNN machine-language call: treated as a NOP, see spec.md §7.
		}
	case 0x1000:
		s.PC = nnn
	case 0x2000:
		s.Stack[s.SP&0xF] = s.PC
		s.SP = (s.SP + 1) & 0xF
		s.PC = nnn
	case 0x3000:
		if s.V[x] == nn {
			s.PC += 2
		}
	case 0x4000:
		if s.V[x] != nn {
			s.PC += 2
		}
	case 0x5000:
		if opcode&0x000F == 0 && s.V[x] == s.V[y] {
			s.PC += 2
		}
	case 0x6000:
		s.V[x] = nn
	case 0x7000:
		s.V[x] += nn
	case 0x8000:
		c.exec8(opcode, x, y)
	case 0x9000:
		if opcode&0x000F == 0 && s.V[x] != s.V[y] {
			s.PC += 2
		}
	case 0xA000:
		s.I = nnn
	case 0xB000:
		if c.quirks.Jumping {
			s.PC = nnn + uint16(s.V[x])
		} else {
			s.PC = nnn + uint16(s.V[0])
		}
	case 0xC000:
		s.V[x] = byte(c.rng.Intn(256)) & nn
	case 0xD000:
		c.drawSprite(uint16(s.V[x])&0x3F, uint16(s.V[y])&0x1F, opcode&0x000F)
	case 0xE000:
		switch opcode & 0x00FF {
		case 0x009E:
			if s.Keys[s.V[x]&0xF] != 0 {
				s.PC += 2
			}
		case 0x00A1:
			if s.Keys[s.V[x]&0xF] == 0 {
				s.PC += 2
			}
		}
	case 0xF000:
		c.execF(opcode, x)
	}

	return 1
}

func (c *Core) exec8(opcode, x, y uint16) {
	s := c.s
	switch opcode & 0x000F {
	case 0x0000:
		s.V[x] = s.V[y]
	case 0x0001:
		s.V[x] |= s.V[y]
		if c.quirks.VFReset {
			s.V[0xF] = 0
		}
	case 0x0002:
		s.V[x] &= s.V[y]
		if c.quirks.VFReset {
			s.V[0xF] = 0
		}
	case 0x0003:
		s.V[x] ^= s.V[y]
		if c.quirks.VFReset {
			s.V[0xF] = 0
		}
	case 0x0004:
		result := int(s.V[x]) + int(s.V[y])
		s.V[x] = byte(result)
		if result > 0xFF {
			s.V[0xF] = 1
		} else {
			s.V[0xF] = 0
		}
	case 0x0005:
		borrow := s.V[x] < s.V[y]
		s.V[x] = s.V[x] - s.V[y]
		if borrow {
			s.V[0xF] = 0
		} else {
			s.V[0xF] = 1
		}
	case 0x0006:
		if !c.quirks.Shifting {
			s.V[x] = s.V[y]
		}
		flag := s.V[x] & 0x1
		s.V[x] >>= 1
		s.V[0xF] = flag
	case 0x0007:
		borrow := s.V[y] < s.V[x]
		s.V[x] = s.V[y] - s.V[x]
		if borrow {
			s.V[0xF] = 0
		} else {
			s.V[0xF] = 1
		}
	case 0x000E:
		if !c.quirks.Shifting {
			s.V[x] = s.V[y]
		}
		flag := (s.V[x] >> 7) & 0x1
		s.V[x] <<= 1
		s.V[0xF] = flag
	}
}

func (c *Core) execF(opcode, x uint16) {
	s := c.s
	switch opcode & 0x00FF {
	case 0x0007:
		s.V[x] = s.DelayTimer
	case 0x000A:
		s.InputReg = &s.V[x]
	case 0x0015:
		s.DelayTimer = s.V[x]
	case 0x0018:
		s.SoundTimer = s.V[x]
	case 0x001E:
		s.I += uint16(s.V[x])
	case 0x0029:
		s.I = uint16(s.V[x]&0xF) * 5
	case 0x0033:
		v := s.V[x]
		s.RAM[s.I&0xFFF] = v / 100
		s.RAM[(s.I+1)&0xFFF] = (v / 10) % 10
		s.RAM[(s.I+2)&0xFFF] = v % 10
	case 0x0055:
		for i := uint16(0); i <= x; i++ {
			s.RAM[(s.I+i)&0xFFF] = s.V[i]
		}
		if c.quirks.MemoryIncrement {
			s.I += x + 1
		}
	case 0x0065:
		for i := uint16(0); i <= x; i++ {
			s.V[i] = s.RAM[(s.I+i)&0xFFF]
		}
		if c.quirks.MemoryIncrement {
			s.I += x + 1
		}
	}
}

// drawSprite implements DXYN per spec.md §4.3.4.
func (c *Core) drawSprite(xpos, ypos, height uint16) {
	s := c.s
	s.V[0xF] = 0
	if height == 0 {
		return
	}

	if s.DrawLockingOn {
		s.DrawLock.Lock()
		defer s.DrawLock.Unlock()
	}

	for i := uint16(0); i < height; i++ {
		row := uint64(s.RAM[(s.I+i)&0xFFF])

		y := ypos
		if c.quirks.Clipping {
			if y >= state.ScreenHeight {
				break
			}
		} else {
			y &= state.ScreenHeight - 1
		}

		var mask uint64
		if xpos <= 56 {
			mask = row << (56 - xpos)
		} else {
			left := row >> (xpos - 56)
			if c.quirks.Clipping {
				mask = left
			} else {
				right := row << (64 - (xpos - 56))
				mask = left | right
			}
		}

		if s.ScreenBuffer[y]&mask != 0 {
			s.V[0xF] = 1
		}
		s.ScreenBuffer[y] ^= mask
		ypos++
	}
}
