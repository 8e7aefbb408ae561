// Package jit implements the JIT core: it compiles guest basic blocks to
// native x86-64 machine code on demand, caches them by start PC, and
// executes them directly instead of interpreting opcode-by-opcode. See
// spec.md §4.4.
package jit

import (
	"fmt"
	"io"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/arch/x86/x86asm"

	"github.com/bradford-hamilton/chippy8-jit/internal/chip8/jit/blockmap"
	"github.com/bradford-hamilton/chippy8-jit/internal/chip8/jit/cache"
	"github.com/bradford-hamilton/chippy8-jit/internal/chip8/jit/emit"
	"github.com/bradford-hamilton/chippy8-jit/internal/chip8/state"
)

// instructionsPerBlockDefault bounds block growth under normal operation
// (spec.md §4.4 step 3); 1 forces single-opcode blocks in slow mode.
const instructionsPerBlockDefault = 64

// Options configures a Core at construction; zero-value Options gives the
// default cache size and block cap, with every quirk off (its Quirks field
// is used as given; New passes DefaultQuirks).
type Options struct {
	Quirks state.Quirks
	// CacheSize overrides cache.DefaultSize when positive.
	CacheSize int
	SlowMode  bool
	// DrawLocking takes state.State.DrawLock around DXYN's screen-buffer
	// write; off by default per spec.md §5 (see DESIGN.md).
	DrawLocking bool
}

// Core is the JIT implementation of chip8.Core.
type Core struct {
	s         *state.State
	quirks    state.Quirks
	romLoaded bool

	cache    *cache.Cache
	blocks   *blockmap.Map
	slowMode bool

	log *logrus.Entry
}

// New builds a JIT core with default options.
func New() (*Core, error) {
	return NewWithOptions(Options{Quirks: state.DefaultQuirks()})
}

// NewWithOptions builds a JIT core from opts, mmapping its code cache.
func NewWithOptions(opts Options) (*Core, error) {
	size := opts.CacheSize
	if size <= 0 {
		size = cache.DefaultSize
	}
	c, err := cache.New(size)
	if err != nil {
		return nil, errors.Wrap(err, "new code cache")
	}
	s := state.New()
	s.DrawLockingOn = opts.DrawLocking
	return &Core{
		s:        s,
		quirks:   opts.Quirks,
		cache:    c,
		blocks:   blockmap.New(),
		slowMode: opts.SlowMode,
		log:      logrus.WithField("component", "jit.core"),
	}, nil
}

// instructionCap returns the per-block opcode limit: 1 in slow mode (to
// force single-stepping through compiled code, for debugging), otherwise
// the default block cap.
func (c *Core) instructionCap() int {
	if c.slowMode {
		return 1
	}
	return instructionsPerBlockDefault
}

// LoadROM resets the guest, writes the ROM at RAM[0x200:], and clears any
// compiled code (stale offsets would otherwise point at the old program).
func (c *Core) LoadROM(rom []byte) error {
	if len(rom) > state.MaxROMSize {
		return errors.Errorf("rom too large: %d bytes, max %d", len(rom), state.MaxROMSize)
	}
	c.s.Reset()
	copy(c.s.RAM[state.ProgramStart:], rom)
	c.romLoaded = true
	c.ClearCache()
	return nil
}

// SetQuirks replaces the active quirk set. Since quirks are baked into
// already-compiled code at compile time (spec.md §9), any change must
// invalidate everything compiled under the old set.
func (c *Core) SetQuirks(q state.Quirks) {
	c.quirks = q
	c.ClearCache()
}

// SetSlowMode toggles the per-block instruction cap between 1 and the
// default, and resets the cache so the new cap takes effect on the very
// next compile (spec.md §4.4's setSlowMode).
func (c *Core) SetSlowMode(on bool) {
	c.slowMode = on
	c.ClearCache()
}

// ClearCache drops every compiled block and rewinds the code cache.
func (c *Core) ClearCache() {
	c.log.Debug("clearing code cache")
	c.cache.Reset()
	c.blocks.Reset()
}

func (c *Core) SetKey(key byte, pressed bool)            { c.s.SetKey(key, pressed) }
func (c *Core) ResetKeys()                               { c.s.ResetKeys() }
func (c *Core) UpdateTimers()                             { c.s.UpdateTimers() }
func (c *Core) ScreenBuffer() [state.ScreenHeight]uint64 { return c.s.ScreenBuffer }
func (c *Core) DelayTimer() byte                          { return c.s.DelayTimer }
func (c *Core) SoundTimer() byte                          { return c.s.SoundTimer }

// Registers and IReg expose guest register state for tests and
// diagnostics (e.g. the JIT/interpreter equivalence suite).
func (c *Core) Registers() [16]byte { return c.s.V }
func (c *Core) IReg() uint16        { return c.s.I }

// Execute runs one compiled block (compiling it first if necessary) and
// returns the number of guest opcodes it actually executed.
func (c *Core) Execute() uint64 {
	if !c.romLoaded || c.s.AwaitingKeyPress() {
		return 0
	}

	pc := c.s.PC
	entry := c.blocks.Lookup(pc)

	var blk *blockmap.Block
	if entry.Valid {
		blk = c.blocks.Block(entry.BlockIndex)
	} else {
		var err error
		blk, err = c.compileBlock(pc)
		if err != nil {
			c.log.WithError(err).Warn("compile failed, skipping opcode")
			c.s.PC += 2
			return 1
		}
	}

	n := c.cache.Call(blk.CacheOffset)

	// FX55 always ends its block (analyze.go never fuses past it), so any
	// write-through-I this block performed is already reflected in RAM;
	// invalidate whatever range it could have touched in case self-modifying
	// code just overwrote code we've already compiled.
	// The post-call I is the one FX55 stored through (advanced by X+1 under
	// the MemoryIncrement quirk), and it wrote RAM[I..I+X].
	if c.blockEndedInStore(blk) {
		last := blk.EndPC - 2
		x := uint16(c.s.RAM[last&0xFFF] & 0x0F)
		start := c.s.I
		if c.quirks.MemoryIncrement {
			start -= x + 1
		}
		start &= 0xFFF
		c.blocks.Invalidate(start, start+x)
	}

	return n
}

// blockEndedInStore reports whether blk's last guest opcode was FX55,
// the only opcode able to self-modify code ahead of the guest PC.
func (c *Core) blockEndedInStore(blk *blockmap.Block) bool {
	last := blk.EndPC - 2
	op := uint16(c.s.RAM[last&0xFFF])<<8 | uint16(c.s.RAM[(last+1)&0xFFF])
	return op&0xF0FF == 0xF055
}

// compileBlock analyzes the guest code starting at pc, compiles it, and
// appends it to the cache, resetting the cache first if it's near full
// (spec.md §4.1's high-water mark).
func (c *Core) compileBlock(pc uint16) (*blockmap.Block, error) {
	if c.cache.NeedsReset() {
		c.ClearCache()
	}

	info := emit.Analyze(&c.s.RAM, pc)
	if len(info.Opcodes) > c.instructionCap() {
		info.Opcodes = info.Opcodes[:c.instructionCap()]
		info.EndPC = pc + uint16(len(info.Opcodes))*2
		info.Terminator = emit.TermCap
	}

	statePtr := uintptr(unsafe.Pointer(c.s))
	code, err := emit.Compile(statePtr, c.quirks, info)
	if err != nil {
		return nil, errors.Wrapf(err, "compile block at %#x", pc)
	}

	offset := c.cache.Append(code)
	blk := c.blocks.StartCompiling(pc, offset)
	blk.EndPC = info.EndPC
	blk.CacheSize = len(code)

	c.log.WithField("pc", fmt.Sprintf("%#x", pc)).
		WithField("opcodes", len(info.Opcodes)).
		Debug("compiled block")

	return blk, nil
}

// DumpDisassembly decodes every valid compiled block back to text via
// x86asm and writes it to w (spec.md §6's dumpDisassembly).
func (c *Core) DumpDisassembly(w io.Writer) error {
	for _, blk := range c.blocks.Blocks() {
		if !c.blocks.IsValid(blk.StartPC) {
			continue
		}
		fmt.Fprintf(w, "; block %#04x-%#04x (cache offset %#x, %d bytes)\n",
			blk.StartPC, blk.EndPC, blk.CacheOffset, blk.CacheSize)

		code := c.cache.Bytes()[blk.CacheOffset : blk.CacheOffset+blk.CacheSize]
		for off := 0; off < len(code); {
			inst, err := x86asm.Decode(code[off:], 64)
			if err != nil {
				fmt.Fprintf(w, "  %#04x\t(bad: %v)\n", off, err)
				off++
				continue
			}
			fmt.Fprintf(w, "  %#04x\t%s\n", off, x86asm.GNUSyntax(inst, 0, nil))
			off += inst.Len
		}
	}
	return nil
}
