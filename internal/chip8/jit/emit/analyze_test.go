package emit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bradford-hamilton/chippy8-jit/internal/chip8/state"
)

func ramWithOpcodes(ops ...uint16) *[state.RAMSize]byte {
	var ram [state.RAMSize]byte
	pc := state.ProgramStart
	for _, op := range ops {
		ram[pc] = byte(op >> 8)
		ram[pc+1] = byte(op & 0xFF)
		pc += 2
	}
	return &ram
}

func TestAnalyzeStopsAtUnconditionalJump(t *testing.T) {
	ram := ramWithOpcodes(0x6005, 0x1300)
	info := Analyze(ram, state.ProgramStart)

	assert.Equal(t, []uint16{0x6005, 0x1300}, info.Opcodes)
	assert.Equal(t, TermJump, info.Terminator)
	assert.Equal(t, state.ProgramStart+4, int(info.EndPC))
}

func TestAnalyzeStopsAtReturn(t *testing.T) {
	ram := ramWithOpcodes(0x00EE)
	info := Analyze(ram, state.ProgramStart)
	assert.Equal(t, TermReturn, info.Terminator)
}

func TestAnalyzeTreatsScreenClearAsNonTerminal(t *testing.T) {
	ram := ramWithOpcodes(0x00E0, 0x00EE)
	info := Analyze(ram, state.ProgramStart)
	assert.Len(t, info.Opcodes, 2)
	assert.Equal(t, TermReturn, info.Terminator)
}

func TestAnalyzeStopsAtUnknown0NNN(t *testing.T) {
	ram := ramWithOpcodes(0x0123)
	info := Analyze(ram, state.ProgramStart)
	assert.Equal(t, TermUnknown, info.Terminator)
}

func TestAnalyzeStopsAtWaitKey(t *testing.T) {
	ram := ramWithOpcodes(0x6005, 0xF00A)
	info := Analyze(ram, state.ProgramStart)
	assert.Equal(t, TermWaitKey, info.Terminator)
	assert.Len(t, info.Opcodes, 2)
}

func TestAnalyzeCapsAtMaxBlockInstructions(t *testing.T) {
	ops := make([]uint16, MaxBlockInstructions+10)
	for i := range ops {
		ops[i] = 0x6000 | uint16(i&0xFF) // 6XNN-ish, never a terminator
	}
	ram := ramWithOpcodes(ops...)
	info := Analyze(ram, state.ProgramStart)
	assert.Len(t, info.Opcodes, MaxBlockInstructions)
	assert.Equal(t, TermCap, info.Terminator)
}

func TestCountUsagePromotesHeavilyUsedRegister(t *testing.T) {
	ram := ramWithOpcodes(0x6105, 0x7101, 0x7101, 0x7101)
	info := Analyze(ram, state.ProgramStart)
	assert.GreaterOrEqual(t, info.VUsage[1], uint8(3))
}

func TestAnalyzeStopsAtMemoryStore(t *testing.T) {
	ram := ramWithOpcodes(0x6005, 0xF055, 0x6105)
	info := Analyze(ram, state.ProgramStart)
	assert.Equal(t, []uint16{0x6005, 0xF055}, info.Opcodes)
	assert.Equal(t, TermStore, info.Terminator)
}

func TestAnalyzeDoesNotFuseSkipOverUnconditionalJump(t *testing.T) {
	ram := ramWithOpcodes(0x6005, 0x3005, 0x1300)
	info := Analyze(ram, state.ProgramStart)
	assert.Equal(t, []uint16{0x6005, 0x3005}, info.Opcodes)
	assert.Equal(t, TermSkip, info.Terminator)
}

func TestAnalyzeDoesNotFuseSkipOverReturnOrCallOrJumpV0(t *testing.T) {
	cases := []uint16{0x00EE, 0x2300, 0xB300}
	for _, term := range cases {
		ram := ramWithOpcodes(0x3005, term)
		info := Analyze(ram, state.ProgramStart)
		assert.Equal(t, []uint16{0x3005}, info.Opcodes, "terminator %#04x", term)
		assert.Equal(t, TermSkip, info.Terminator, "terminator %#04x", term)
	}
}

func TestAnalyzeStillFusesSkipOverScreenClear(t *testing.T) {
	ram := ramWithOpcodes(0x3005, 0x00E0, 0x6005)
	info := Analyze(ram, state.ProgramStart)
	assert.NotEqual(t, TermSkip, info.Terminator)
	assert.Equal(t, []uint16{0x3005, 0x00E0, 0x6005}, info.Opcodes[:3])
}

func TestIsSkipRecognizesAllSkipFamilies(t *testing.T) {
	skips := []uint16{0x3000, 0x4000, 0x5120, 0x9120, 0xE19E, 0xE1A1}
	for _, op := range skips {
		assert.Truef(t, isSkip(op), "expected %#04x to be a skip", op)
	}
	assert.False(t, isSkip(0x6000))
	assert.False(t, isSkip(0x5121)) // low nibble != 0 isn't actually 5XY0
}
