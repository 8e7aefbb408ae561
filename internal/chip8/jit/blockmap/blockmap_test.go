package blockmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewStartsEveryEntryInvalidWithNoBlock(t *testing.T) {
	m := New()
	assert.False(t, m.Lookup(0x200).Valid)
	assert.Equal(t, int16(-1), m.Lookup(0x200).BlockIndex)
}

func TestStartCompilingMarksEntryValidAndAllocatesBlock(t *testing.T) {
	m := New()
	blk := m.StartCompiling(0x200, 0x10)
	blk.EndPC = 0x206
	blk.CacheSize = 12

	entry := m.Lookup(0x200)
	assert.True(t, entry.Valid)

	got := m.Block(entry.BlockIndex)
	assert.Equal(t, uint16(0x200), got.StartPC)
	assert.Equal(t, uint16(0x206), got.EndPC)
	assert.Equal(t, 0x10, got.CacheOffset)
	assert.Equal(t, 12, got.CacheSize)
}

func TestStartCompilingReusesSlotAfterInvalidation(t *testing.T) {
	m := New()
	first := m.StartCompiling(0x200, 0x0)
	first.EndPC = 0x202
	m.Invalidate(0x200, 0x202)
	assert.False(t, m.IsValid(0x200))

	second := m.StartCompiling(0x200, 0x40)
	assert.True(t, m.IsValid(0x200))
	assert.Len(t, m.Blocks(), 1)
	assert.Equal(t, 0x40, second.CacheOffset)
}

func TestInvalidateOnlyClearsOverlappingBlocks(t *testing.T) {
	m := New()
	a := m.StartCompiling(0x200, 0x0)
	a.EndPC = 0x204
	b := m.StartCompiling(0x300, 0x10)
	b.EndPC = 0x304

	m.Invalidate(0x280, 0x2FF)

	assert.True(t, m.IsValid(0x200))
	assert.True(t, m.IsValid(0x300))

	m.Invalidate(0x202, 0x202)
	assert.False(t, m.IsValid(0x200))
	assert.True(t, m.IsValid(0x300))
}

func TestResetClearsAllEntriesAndBlocks(t *testing.T) {
	m := New()
	m.StartCompiling(0x200, 0x0)
	m.StartCompiling(0x300, 0x10)

	m.Reset()

	assert.Empty(t, m.Blocks())
	assert.False(t, m.IsValid(0x200))
	assert.Equal(t, int16(-1), m.Lookup(0x200).BlockIndex)
}
