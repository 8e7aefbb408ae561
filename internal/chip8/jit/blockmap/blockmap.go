// Package blockmap implements the JIT's per-guest-PC table mapping a
// guest PC to a compiled block descriptor. See spec.md §4.2.
package blockmap

import "github.com/bradford-hamilton/chippy8-jit/internal/chip8/state"

// Block describes one compiled region of guest code.
type Block struct {
	StartPC     uint16
	EndPC       uint16
	CacheOffset int
	CacheSize   int
}

// Entry is one block-map slot.
type Entry struct {
	Valid      bool
	BlockIndex int16
}

// Map is a constant-time PC -> block lookup, backed by an append-only
// block sequence. Invalidation clears Valid but preserves BlockIndex so a
// later recompile reuses (and overwrites) the same slot.
type Map struct {
	entries [state.RAMSize]Entry
	blocks  []Block
}

// New returns an empty block map with every entry defaulted to
// {Valid: false, BlockIndex: -1}.
func New() *Map {
	m := &Map{}
	for i := range m.entries {
		m.entries[i].BlockIndex = -1
	}
	return m
}

// Lookup returns the entry for pc.
func (m *Map) Lookup(pc uint16) Entry {
	return m.entries[pc&0xFFF]
}

// Block returns the block descriptor at index i.
func (m *Map) Block(i int16) *Block {
	return &m.blocks[i]
}

// StartCompiling marks pc's slot valid and returns the block descriptor
// to fill in, reusing the slot's previous block index when one exists
// (so a recompile after invalidation doesn't grow the block sequence
// unboundedly).
func (m *Map) StartCompiling(pc uint16, cacheOffset int) *Block {
	e := &m.entries[pc&0xFFF]
	e.Valid = true
	if e.BlockIndex == -1 {
		e.BlockIndex = int16(len(m.blocks))
		m.blocks = append(m.blocks, Block{StartPC: pc})
	}
	b := &m.blocks[e.BlockIndex]
	b.StartPC = pc
	b.CacheOffset = cacheOffset
	return b
}

// Invalidate clears Valid for every block overlapping [start, end],
// inclusive. Linear in block count; spec.md §9 notes this is acceptable
// at the block counts actually observed and defers any page-map
// optimization to future profiling.
func (m *Map) Invalidate(start, end uint16) {
	for i := range m.blocks {
		b := &m.blocks[i]
		if b.StartPC <= end && start <= b.EndPC {
			m.entries[b.StartPC&0xFFF].Valid = false
		}
	}
}

// Reset clears both the block sequence and the map, as on a code cache
// reset.
func (m *Map) Reset() {
	m.blocks = m.blocks[:0]
	for i := range m.entries {
		m.entries[i] = Entry{BlockIndex: -1}
	}
}

// Blocks returns every compiled block, valid or not, for disassembly.
func (m *Map) Blocks() []Block {
	return m.blocks
}

// IsValid reports whether the block starting at startPC is currently valid.
func (m *Map) IsValid(startPC uint16) bool {
	return m.entries[startPC&0xFFF].Valid
}
