package jit

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bradford-hamilton/chippy8-jit/internal/chip8/state"
)

// TestExecuteCountSurvivesRuntimeCallAfterUntakenSkip exercises a block
// where a not-taken fused skip's accumulator bump is immediately followed,
// in the same block, by an opcode that goes out to a Go runtime call
// (DXYN's drawSprite host call). The accumulator lives in DX for the rest
// of the block, so if the call clobbered it without save/restore, the
// executed-opcode count this returns would come out wrong.
func TestExecuteCountSurvivesRuntimeCallAfterUntakenSkip(t *testing.T) {
	rom := []byte{
		0x60, 0x05, // V0 = 5
		0x61, 0x06, // V1 = 6
		0x50, 0x10, // skip if V0 == V1 (false: not taken)
		0xD0, 0x01, // (runs, since skip wasn't taken) draw n=1: a host call
		0x62, 0x03, // V2 = 3
	}

	jc, err := NewWithOptions(Options{Quirks: state.DefaultQuirks()})
	require.NoError(t, err)
	require.NoError(t, jc.LoadROM(rom))

	n := jc.Execute()
	require.Equal(t, uint64(5), n)

	regs := jc.Registers()
	require.Equal(t, byte(5), regs[0])
	require.Equal(t, byte(6), regs[1])
	require.Equal(t, byte(3), regs[2])
}
