package emit

import "github.com/twitchyliquid64/golang-asm/obj/x86"

// maxAllocRegs is the platform-dependent cap on promoted V-registers
// (spec.md §4.3.2 says 5-6; we follow the reference layout's 5).
const maxAllocRegs = 5

// promotedVRegs lists, in allocation-priority order, the host registers
// available for promoted V-registers. VF is always allocated first into
// slot 0 when used, matching the reference layout where the flag
// register doubles as the first promoted slot.
var promotedVRegs = [maxAllocRegs]int16{
	x86.REG_BX,
	x86.REG_DI,
	x86.REG_R12,
	x86.REG_R13,
	x86.REG_R15,
}

// iReg is the host register promoted I lives in when allocated.
const iReg = x86.REG_R8

// baseReg holds the Guest State base pointer for the lifetime of a
// compiled block. It is reloaded from an immediate after every runtime
// call (see emit.go's spill/reload around DXYN and FX33) rather than
// preserved across the call, since re-materializing a constant is cheaper
// than reasoning about which registers a Go runtime call leaves intact.
const baseReg = x86.REG_SI

// skipAccumReg counts, across a block, how many fused conditional skips
// were NOT taken (see emit.go's return-value accounting). DX is never a
// promotion candidate, so it's free for this the whole block; runtime calls
// and RDTSC can overwrite it, so emit.go pushes and pops it around those
// (saveSkipAccum/restoreSkipAccum).
const skipAccumReg = x86.REG_DX

// R14 is Go's reserved "current goroutine" register (runtime.TLS on some
// platforms, g elsewhere); generated code must never touch it, so it is
// deliberately absent from every register list above.

// regAlloc tracks, for one block's compilation, which guest V-registers
// and I are promoted into host GPRs.
type regAlloc struct {
	// vSlot[v] is the index into promotedVRegs V is allocated to, or -1.
	vSlot [16]int16
	// order is the sequence of V-register numbers assigned to slots
	// 0..len(order)-1, in allocation order (push/pop must mirror this).
	order []uint8

	iAllocated bool
}

func newRegAlloc() *regAlloc {
	ra := &regAlloc{}
	for i := range ra.vSlot {
		ra.vSlot[i] = -1
	}
	return ra
}

// allocate runs spec.md §4.3 step 2: VF first if used, then any
// V-register used >= 3 times, capped at maxAllocRegs; I promoted if used
// >= 3 times.
func (ra *regAlloc) allocate(vUsage [16]uint8, iUsage uint8) {
	if vUsage[0xF] > 0 {
		ra.promote(0xF)
	}
	for v := uint8(0); v < 15 && len(ra.order) < maxAllocRegs; v++ {
		if vUsage[v] >= 3 {
			ra.promote(v)
		}
	}
	if iUsage >= 3 {
		ra.iAllocated = true
	}
}

func (ra *regAlloc) promote(v uint8) {
	if len(ra.order) >= maxAllocRegs || ra.vSlot[v] != -1 {
		return
	}
	ra.vSlot[v] = int16(len(ra.order))
	ra.order = append(ra.order, v)
}

// hostReg returns the host register holding V[v], and whether it's
// promoted at all.
func (ra *regAlloc) hostReg(v uint8) (reg int16, ok bool) {
	slot := ra.vSlot[v]
	if slot < 0 {
		return 0, false
	}
	return promotedVRegs[slot], true
}

// flagAllocated reports whether VF specifically is promoted.
func (ra *regAlloc) flagAllocated() bool {
	return ra.vSlot[0xF] != -1
}
