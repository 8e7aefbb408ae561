package emit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/twitchyliquid64/golang-asm/obj/x86"
)

func TestAllocatePromotesVFFirstWhenUsed(t *testing.T) {
	var usage [16]uint8
	usage[0xF] = 1

	ra := newRegAlloc()
	ra.allocate(usage, 0)

	assert.True(t, ra.flagAllocated())
	r, ok := ra.hostReg(0xF)
	assert.True(t, ok)
	assert.Equal(t, promotedVRegs[0], r)
}

func TestAllocateCapsAtMaxAllocRegs(t *testing.T) {
	var usage [16]uint8
	for v := range usage {
		usage[v] = 5
	}

	ra := newRegAlloc()
	ra.allocate(usage, 0)

	assert.Len(t, ra.order, maxAllocRegs)
}

func TestAllocateSkipsRegistersUsedLessThanThreeTimes(t *testing.T) {
	var usage [16]uint8
	usage[2] = 2

	ra := newRegAlloc()
	ra.allocate(usage, 0)

	_, ok := ra.hostReg(2)
	assert.False(t, ok)
}

func TestAllocatePromotesIWhenUsedThreeOrMoreTimes(t *testing.T) {
	ra := newRegAlloc()
	ra.allocate([16]uint8{}, 3)
	assert.True(t, ra.iAllocated)

	ra2 := newRegAlloc()
	ra2.allocate([16]uint8{}, 2)
	assert.False(t, ra2.iAllocated)
}

func TestNeverPromotesR14(t *testing.T) {
	for _, r := range promotedVRegs {
		assert.NotEqual(t, int16(x86.REG_R14), r)
	}
	assert.NotEqual(t, int16(x86.REG_R14), int16(iReg))
}
