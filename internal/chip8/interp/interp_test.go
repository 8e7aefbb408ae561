package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bradford-hamilton/chippy8-jit/internal/chip8/state"
)

func newCoreWithROM(t *testing.T, rom []byte) *Core {
	c := New()
	require.NoError(t, c.LoadROM(rom))
	return c
}

func TestLoadROMTooLargeErrors(t *testing.T) {
	c := New()
	err := c.LoadROM(make([]byte, state.MaxROMSize+1))
	assert.Error(t, err)
}

func Test6XNNLoadsImmediate(t *testing.T) {
	c := newCoreWithROM(t, []byte{0x63, 0x2A})
	c.Execute()
	assert.Equal(t, byte(0x2A), c.s.V[3])
	assert.Equal(t, uint16(state.ProgramStart+2), c.s.PC)
}

func Test8XY4SetsCarryOnOverflow(t *testing.T) {
	c := newCoreWithROM(t, []byte{0x81, 0x24})
	c.s.V[1] = 0xFF
	c.s.V[2] = 0x02
	c.Execute()
	assert.Equal(t, byte(0x01), c.s.V[1])
	assert.Equal(t, byte(1), c.s.V[0xF])
}

func Test8XY5ClearsFlagOnBorrow(t *testing.T) {
	c := newCoreWithROM(t, []byte{0x81, 0x25})
	c.s.V[1] = 0x01
	c.s.V[2] = 0x02
	c.Execute()
	assert.Equal(t, byte(0xFF), c.s.V[1])
	assert.Equal(t, byte(0), c.s.V[0xF])
}

func Test8XY6FlagWinsWhenXIsVF(t *testing.T) {
	c := newCoreWithROM(t, []byte{0x8F, 0x06})
	c.quirks.Shifting = true
	c.s.V[0xF] = 0x03 // low bit set: flag should end up 1, not the shifted value
	c.Execute()
	assert.Equal(t, byte(1), c.s.V[0xF])
}

func Test3XNNSkipsWhenEqual(t *testing.T) {
	c := newCoreWithROM(t, []byte{0x60, 0x05, 0x30, 0x05, 0x60, 0x09})
	c.Execute() // V0 = 5
	c.Execute() // skip next
	assert.Equal(t, uint16(state.ProgramStart+6), c.s.PC)
}

func TestDXYNSetsCollisionFlag(t *testing.T) {
	c := newCoreWithROM(t, []byte{0xD0, 0x11})
	c.s.I = 0x300
	c.s.RAM[0x300] = 0x80 // single lit pixel, leftmost column
	c.s.ScreenBuffer[0] = 1 << 63
	c.Execute()
	assert.Equal(t, byte(1), c.s.V[0xF])
	assert.Equal(t, uint64(0), c.s.ScreenBuffer[0])
}

func TestFX33ProducesBCDDigits(t *testing.T) {
	c := newCoreWithROM(t, []byte{0xF1, 0x33})
	c.s.V[1] = 194
	c.s.I = 0x300
	c.Execute()
	assert.Equal(t, byte(1), c.s.RAM[0x300])
	assert.Equal(t, byte(9), c.s.RAM[0x301])
	assert.Equal(t, byte(4), c.s.RAM[0x302])
}

func TestFX55ThenFX65RoundTrips(t *testing.T) {
	c := newCoreWithROM(t, []byte{0xF2, 0x55, 0xF2, 0x65})
	c.s.I = 0x300
	c.s.V[0] = 1
	c.s.V[1] = 2
	c.s.V[2] = 3
	c.Execute() // store
	c.s.V[0], c.s.V[1], c.s.V[2] = 0, 0, 0
	c.Execute() // load
	assert.Equal(t, byte(1), c.s.V[0])
	assert.Equal(t, byte(2), c.s.V[1])
	assert.Equal(t, byte(3), c.s.V[2])
}

func TestFX55HonorsMemoryIncrementQuirk(t *testing.T) {
	c := newCoreWithROM(t, []byte{0xF1, 0x55})
	c.quirks.MemoryIncrement = true
	c.s.I = 0x300
	c.Execute()
	assert.Equal(t, uint16(0x302), c.s.I)
}

func TestFX0ABlocksExecuteUntilKeyRelease(t *testing.T) {
	c := newCoreWithROM(t, []byte{0xF0, 0x0A, 0x60, 0x99})
	n := c.Execute()
	assert.Equal(t, uint64(1), n)
	assert.True(t, c.s.AwaitingKeyPress())

	n = c.Execute()
	assert.Equal(t, uint64(0), n, "blocked core must report 0 executed opcodes")

	c.SetKey(0x5, true)
	c.SetKey(0x5, false)
	assert.False(t, c.s.AwaitingKeyPress())
	assert.Equal(t, byte(0x5), c.s.V[0])
}

func TestBNNNHonorsJumpingQuirk(t *testing.T) {
	c := newCoreWithROM(t, []byte{0xB3, 0x00})
	c.quirks.Jumping = true
	c.s.V[3] = 0x10
	c.Execute()
	assert.Equal(t, uint16(0x310), c.s.PC)
}
