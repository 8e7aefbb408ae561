// Package emit translates one analyzed guest basic block into x86-64
// machine code using golang-asm's assembler (spec.md §4.3). It owns
// register allocation, the promoted-register prologue/epilogue, and a
// translation for every CHIP-8 opcode, including the fused-vs-unfused
// conditional-skip branch strategy.
package emit

import (
	"github.com/pkg/errors"
	"github.com/twitchyliquid64/golang-asm/obj"
	"github.com/twitchyliquid64/golang-asm/obj/x86"

	"github.com/bradford-hamilton/chippy8-jit/internal/chip8/state"
)

// generalScratch registers are never promoted, never the block base
// pointer, the promoted I register, or the skip accumulator — free for
// any opcode emitter to clobber without bookkeeping.
const (
	scratchA = x86.REG_CX
	scratchB = x86.REG_AX
	scratchC = x86.REG_R9
	scratchD = x86.REG_R10
)

// Emitter holds the in-progress translation of a single guest block.
type Emitter struct {
	bld      *builder
	ra       *regAlloc
	quirks   state.Quirks
	statePtr uintptr

	instructions int // static opcode count in the block
	skipOps      int // fused conditional skips emitted (spec.md §4.3.1's "blockBranches")

	pendingSkipTarget       *obj.Prog
	terminatedByUnfusedSkip bool
}

// Compile analyzes nothing itself — it translates an already-Analyzed
// block into machine code for a guest whose state lives at statePtr, under
// the given quirk snapshot (fixed for the lifetime of this compiled
// block; a later quirk change invalidates the cache instead of patching
// code, see jit.go).
func Compile(statePtr uintptr, quirks state.Quirks, info BlockInfo) ([]byte, error) {
	bld, err := newBuilder()
	if err != nil {
		return nil, errors.Wrap(err, "new assembler builder")
	}

	e := &Emitter{
		bld:          bld,
		quirks:       quirks,
		statePtr:     statePtr,
		instructions: len(info.Opcodes),
		ra:           newRegAlloc(),
	}
	e.ra.allocate(info.VUsage, info.IUsage)

	e.prologue()

	pc := info.StartPC
	for idx, op := range info.Opcodes {
		isLast := idx == len(info.Opcodes)-1
		skipTarget := e.pendingSkipTarget
		e.pendingSkipTarget = nil
		e.emitOpcode(op, pc, isLast)
		pc += 2

		if skipTarget != nil {
			marker := e.bld.nop()
			skipTarget.To.SetTarget(marker)
		}
	}

	e.epilogue(info.Terminator, info.EndPC)

	code, err := e.bld.assemble()
	if err != nil {
		return nil, errors.Wrap(err, "assemble block")
	}
	return code, nil
}

func (e *Emitter) prologue() {
	e.bld.regImm(x86.AMOVQ, int64(e.statePtr), baseReg)
	for _, v := range e.ra.order {
		r, _ := e.ra.hostReg(v)
		e.bld.regMem(x86.AMOVBQZX, baseReg, vOffset(v), r)
	}
	if e.ra.iAllocated {
		e.bld.regMem(x86.AMOVWQZX, baseReg, fieldOffsets.I, iReg)
	}
	e.bld.reg(x86.AXORQ, skipAccumReg, skipAccumReg)
}

func (e *Emitter) epilogue(term Terminator, endPC uint16) {
	e.spillLive()

	// TermCap/TermUnknown/TermStore all fall through sequentially rather
	// than writing PC themselves (unlike a jump/call/return), so the
	// epilogue must advance it to EndPC; the unfused-skip path (whatever
	// Terminator it carries) already wrote PC itself.
	if (term == TermCap || term == TermUnknown || term == TermStore) && !e.terminatedByUnfusedSkip {
		e.bld.memImm(x86.AMOVW, int64(endPC), baseReg, fieldOffsets.PC)
	}

	e.bld.regImm(x86.AMOVQ, int64(e.instructions-e.skipOps), scratchB)
	e.bld.reg(x86.AADDQ, skipAccumReg, scratchB)
	e.bld.ret()
}

// spillLive writes every promoted V register and I back to guest memory.
// Called at block exit and around any runtime call, since a Go function
// called through a bare CALL is free to clobber whatever registers it
// likes under Go's internal ABI.
func (e *Emitter) spillLive() {
	for _, v := range e.ra.order {
		r, _ := e.ra.hostReg(v)
		e.bld.memReg(x86.AMOVB, r, baseReg, vOffset(v))
	}
	if e.ra.iAllocated {
		e.bld.memReg(x86.AMOVW, iReg, baseReg, fieldOffsets.I)
	}
}

// saveSkipAccum and restoreSkipAccum stash the fused-skip accumulator
// (DX) across a runtime call. It holds a live count for the rest of the
// block, but it isn't part of guest state, so spillLive/reloadLive don't
// cover it; a plain push/pop keeps it alive across the call.
func (e *Emitter) saveSkipAccum()    { e.bld.only1(x86.APUSHQ, skipAccumReg) }
func (e *Emitter) restoreSkipAccum() { e.bld.only1(x86.APOPQ, skipAccumReg) }

// reloadLive re-materializes the base pointer and reloads every promoted
// register from guest memory, undoing whatever a runtime call clobbered.
func (e *Emitter) reloadLive() {
	e.bld.regImm(x86.AMOVQ, int64(e.statePtr), baseReg)
	for _, v := range e.ra.order {
		r, _ := e.ra.hostReg(v)
		e.bld.regMem(x86.AMOVBQZX, baseReg, vOffset(v), r)
	}
	if e.ra.iAllocated {
		e.bld.regMem(x86.AMOVWQZX, baseReg, fieldOffsets.I, iReg)
	}
}

// operand returns a register holding V[v]'s current value: the promoted
// register directly if V[v] is promoted, or scratch loaded from memory
// otherwise. The returned register's full 64 bits equal the zero-extended
// guest byte, since every load uses a zero-extending move and every op
// that follows operates on the low 8 bits only.
func (e *Emitter) operand(v uint8, scratch int16) int16 {
	if r, ok := e.ra.hostReg(v); ok {
		return r
	}
	e.bld.regMem(x86.AMOVBQZX, baseReg, vOffset(v), scratch)
	return scratch
}

// storeV writes reg back to V[v]'s home, a no-op if V[v] is promoted and
// reg already is that register.
func (e *Emitter) storeV(v uint8, reg int16) {
	if r, ok := e.ra.hostReg(v); ok {
		if r != reg {
			e.bld.reg(x86.AMOVB, reg, r)
		}
		return
	}
	e.bld.memReg(x86.AMOVB, reg, baseReg, vOffset(v))
}

// emitSetVFCarry sets VF from the flag state left by the preceding
// arithmetic op, via setcc (the carry-flag instruction naming the caller
// picks for "overflow" vs "no borrow"). Since storeV only ever emits a
// MOV, which never touches EFLAGS, callers are free to store their result
// before calling this.
func (e *Emitter) emitSetVFCarry(setcc obj.As) {
	e.bld.only1(setcc, scratchA)
	if r, ok := e.ra.hostReg(0xF); ok {
		e.bld.reg(x86.AMOVBQZX, scratchA, r)
	} else {
		e.bld.memReg(x86.AMOVB, scratchA, baseReg, vOffset(0xF))
	}
}

func (e *Emitter) emitSetVFImm(v byte) {
	if r, ok := e.ra.hostReg(0xF); ok {
		e.bld.regImm(x86.AMOVQ, int64(v), r)
	} else {
		e.bld.memImm(x86.AMOVB, int64(v), baseReg, vOffset(0xF))
	}
}

// iIndexReg returns a register holding I's current value, usable as a
// scaled-index operand; scratch is only used (and only written) if I
// isn't promoted.
func (e *Emitter) iIndexReg(scratch int16) int16 {
	if e.ra.iAllocated {
		return iReg
	}
	e.bld.regMem(x86.AMOVWQZX, baseReg, fieldOffsets.I, scratch)
	return scratch
}

// maskedRAMIndex returns scratch holding I masked to a valid RAM index,
// never mutating the live I register/slot itself.
func (e *Emitter) maskedRAMIndex(scratch int16) int16 {
	src := e.iIndexReg(scratch)
	if src != scratch {
		e.bld.reg(x86.AMOVQ, src, scratch)
	}
	e.bld.regImm(x86.AANDQ, 0xFFF, scratch)
	return scratch
}

func (e *Emitter) emitIAdd(n int64) {
	if e.ra.iAllocated {
		e.bld.regImm(x86.AADDQ, n, iReg)
	} else {
		e.bld.memImm(x86.AADDW, n, baseReg, fieldOffsets.I)
	}
}

func cmovFor(jcc obj.As) obj.As {
	if jcc == x86.AJEQ {
		return x86.ACMOVQEQ
	}
	return x86.ACMOVQNE
}

// emitFusedOrUnfusedSkip implements spec.md §4.3.5: when another guest
// opcode follows in this same block, the skip is fused into a native
// branch over that opcode's translation (pendingSkipTarget resolved by
// Compile's loop once that translation is emitted). When the skip is the
// last opcode analyzed for the block, there is nothing to branch over —
// instead it resolves the next PC with a conditional move and ends the
// block right there (the unfused variant).
func (e *Emitter) emitFusedOrUnfusedSkip(takenCond, notTakenCond obj.As, pc uint16, isLast bool) {
	if !isLast {
		e.skipOps++
		e.pendingSkipTarget = e.bld.jmp(takenCond)

		// Pre-subtracting skipOps from the instruction count below
		// assumes every fused skip is taken; add 1 back here whenever
		// this one wasn't (see epilogue). Only the fall-through path, i.e.
		// the not-taken case, reaches this add.
		e.bld.regImm(x86.AADDQ, 1, skipAccumReg)
		return
	}

	e.bld.regImm(x86.AMOVQ, int64(pc+2), scratchA)
	e.bld.regImm(x86.AMOVQ, int64(pc+4), scratchC)
	e.bld.reg(cmovFor(takenCond), scratchC, scratchA)
	e.bld.memReg(x86.AMOVW, scratchA, baseReg, fieldOffsets.PC)
	e.terminatedByUnfusedSkip = true
}

func (e *Emitter) emitOpcode(op uint16, pc uint16, isLast bool) {
	x := uint8((op & 0x0F00) >> 8)
	y := uint8((op & 0x00F0) >> 4)
	n := uint8(op & 0x000F)
	nn := byte(op & 0x00FF)
	nnn := op & 0x0FFF

	switch op & 0xF000 {
	case 0x0000:
		switch op & 0x0FFF {
		case 0x00E0:
			e.emitClear()
		case 0x00EE:
			e.emitReturn()
		default:
			// unrecognized 0NNN machine-language call: NOP, block ends here.
		}
	case 0x1000:
		e.bld.memImm(x86.AMOVW, int64(nnn), baseReg, fieldOffsets.PC)
	case 0x2000:
		e.emitCall(nnn, pc)
	case 0x3000:
		e.emitSkipImm(x, nn, false, pc, isLast)
	case 0x4000:
		e.emitSkipImm(x, nn, true, pc, isLast)
	case 0x5000:
		if n == 0 {
			e.emitSkipReg(x, y, false, pc, isLast)
		}
	case 0x6000:
		e.emitLoadImm(x, nn)
	case 0x7000:
		e.emitAddImm(x, nn)
	case 0x8000:
		e.emit8xy(n, x, y)
	case 0x9000:
		if n == 0 {
			e.emitSkipReg(x, y, true, pc, isLast)
		}
	case 0xA000:
		e.emitLoadI(nnn)
	case 0xB000:
		e.emitJumpV0(x, nnn)
	case 0xC000:
		e.emitRand(x, nn)
	case 0xD000:
		e.emitDraw(x, y, n)
	case 0xE000:
		switch op & 0x00FF {
		case 0x9E:
			e.emitSkipKey(x, false, pc, isLast)
		case 0xA1:
			e.emitSkipKey(x, true, pc, isLast)
		}
	case 0xF000:
		e.emitFx(op, x, pc)
	}
}

func (e *Emitter) emitClear() {
	for row := 0; row < state.ScreenHeight; row++ {
		e.bld.memImm(x86.AMOVQ, 0, baseReg, fieldOffsets.ScreenBuffer+int64(row)*8)
	}
}

func (e *Emitter) emitReturn() {
	e.bld.regMem(x86.AMOVWQZX, baseReg, fieldOffsets.SP, scratchA)
	e.bld.regImm(x86.ASUBQ, 1, scratchA)
	e.bld.regImm(x86.AANDQ, 0xF, scratchA)
	e.bld.memReg(x86.AMOVW, scratchA, baseReg, fieldOffsets.SP)
	e.bld.scaledIndexMem(x86.AMOVWQZX, baseReg, scratchA, 2, fieldOffsets.Stack, scratchB)
	e.bld.memReg(x86.AMOVW, scratchB, baseReg, fieldOffsets.PC)
}

func (e *Emitter) emitCall(nnn, pc uint16) {
	e.bld.regMem(x86.AMOVWQZX, baseReg, fieldOffsets.SP, scratchA)
	e.bld.regImm(x86.AMOVQ, int64(pc+2), scratchB)
	e.bld.scaledIndexMemStore(x86.AMOVW, scratchB, baseReg, scratchA, 2, fieldOffsets.Stack)
	e.bld.regImm(x86.AADDQ, 1, scratchA)
	e.bld.regImm(x86.AANDQ, 0xF, scratchA)
	e.bld.memReg(x86.AMOVW, scratchA, baseReg, fieldOffsets.SP)
	e.bld.memImm(x86.AMOVW, int64(nnn), baseReg, fieldOffsets.PC)
}

func (e *Emitter) emitSkipImm(x uint8, nn byte, skipIfNotEqual bool, pc uint16, isLast bool) {
	reg := e.operand(x, scratchA)
	e.bld.regImm(x86.ACMPB, int64(nn), reg)
	taken, notTaken := x86.AJEQ, x86.AJNE
	if skipIfNotEqual {
		taken, notTaken = x86.AJNE, x86.AJEQ
	}
	e.emitFusedOrUnfusedSkip(taken, notTaken, pc, isLast)
}

func (e *Emitter) emitSkipReg(x, y uint8, skipIfNotEqual bool, pc uint16, isLast bool) {
	rx := e.operand(x, scratchA)
	ry := e.operand(y, scratchB)
	e.bld.reg(x86.ACMPB, ry, rx)
	taken, notTaken := x86.AJEQ, x86.AJNE
	if skipIfNotEqual {
		taken, notTaken = x86.AJNE, x86.AJEQ
	}
	e.emitFusedOrUnfusedSkip(taken, notTaken, pc, isLast)
}

func (e *Emitter) emitSkipKey(x uint8, skipIfUp bool, pc uint16, isLast bool) {
	rx := e.operand(x, scratchA)
	e.bld.reg(x86.AMOVQ, rx, scratchC)
	e.bld.regImm(x86.AANDQ, 0xF, scratchC)
	e.bld.scaledIndexMem(x86.AMOVBQZX, baseReg, scratchC, 1, fieldOffsets.Keys, scratchB)
	e.bld.regImm(x86.ACMPB, 0, scratchB)
	taken, notTaken := x86.AJNE, x86.AJEQ
	if skipIfUp {
		taken, notTaken = x86.AJEQ, x86.AJNE
	}
	e.emitFusedOrUnfusedSkip(taken, notTaken, pc, isLast)
}

func (e *Emitter) emitLoadImm(x uint8, nn byte) {
	if r, ok := e.ra.hostReg(x); ok {
		e.bld.regImm(x86.AMOVQ, int64(nn), r)
	} else {
		e.bld.memImm(x86.AMOVB, int64(nn), baseReg, vOffset(x))
	}
}

func (e *Emitter) emitAddImm(x uint8, nn byte) {
	if r, ok := e.ra.hostReg(x); ok {
		e.bld.regImm(x86.AADDB, int64(nn), r)
	} else {
		e.bld.memImm(x86.AADDB, int64(nn), baseReg, vOffset(x))
	}
}

func (e *Emitter) emit8xy(n, x, y uint8) {
	switch n {
	case 0x0:
		ry := e.operand(y, scratchB)
		e.storeV(x, ry)
	case 0x1, 0x2, 0x3:
		var as obj.As
		switch n {
		case 0x1:
			as = x86.AORB
		case 0x2:
			as = x86.AANDB
		case 0x3:
			as = x86.AXORB
		}
		rx := e.operand(x, scratchA)
		ry := e.operand(y, scratchB)
		e.bld.reg(as, ry, rx)
		e.storeV(x, rx)
		if e.quirks.VFReset {
			e.emitSetVFImm(0)
		}
	case 0x4:
		rx := e.operand(x, scratchA)
		ry := e.operand(y, scratchB)
		e.bld.reg(x86.AADDB, ry, rx)
		e.storeV(x, rx)
		e.emitSetVFCarry(x86.ASETCS)
	case 0x5:
		rx := e.operand(x, scratchA)
		ry := e.operand(y, scratchB)
		e.bld.reg(x86.ASUBB, ry, rx)
		e.storeV(x, rx)
		e.emitSetVFCarry(x86.ASETCC)
	case 0x6:
		e.emitShift(x, y, false)
	case 0x7:
		rx := e.operand(x, scratchA)
		ry := e.operand(y, scratchB)
		e.bld.reg(x86.AMOVQ, ry, scratchC)
		e.bld.reg(x86.ASUBB, rx, scratchC)
		e.storeV(x, scratchC)
		e.emitSetVFCarry(x86.ASETCC)
	case 0xE:
		e.emitShift(x, y, true)
	}
}

// emitShift implements 8XY6/8XYE. Copy-then-shift-then-store-then-flag
// ordering matters: the flag write is always last, so when X is VF (x==0xF)
// the shift's own flag wins over whatever the Shifting-quirk copy wrote.
func (e *Emitter) emitShift(x, y uint8, left bool) {
	if !e.quirks.Shifting {
		ry := e.operand(y, scratchB)
		e.storeV(x, ry)
	}
	rx := e.operand(x, scratchA)
	if left {
		e.bld.regImm(x86.ASHLB, 1, rx)
	} else {
		e.bld.regImm(x86.ASHRB, 1, rx)
	}
	e.storeV(x, rx)
	e.emitSetVFCarry(x86.ASETCS)
}

func (e *Emitter) emitLoadI(nnn uint16) {
	if e.ra.iAllocated {
		e.bld.regImm(x86.AMOVQ, int64(nnn), iReg)
	} else {
		e.bld.memImm(x86.AMOVW, int64(nnn), baseReg, fieldOffsets.I)
	}
}

func (e *Emitter) emitJumpV0(x uint8, nnn uint16) {
	reg := e.operand(0, scratchA)
	if e.quirks.Jumping {
		reg = e.operand(x, scratchA)
	}
	e.bld.reg(x86.AMOVQ, reg, scratchB)
	e.bld.regImm(x86.AADDQ, int64(nnn), scratchB)
	e.bld.memReg(x86.AMOVW, scratchB, baseReg, fieldOffsets.PC)
}

// emitRand implements CXNN by reading the hardware timestamp counter
// directly (spec.md §4.3.6's "cheap on-CPU entropy source") rather than
// calling into Go: RDTSC needs no argument staging and leaves its result
// in AX already, so no spill/reload is needed around it. It does write the
// counter's high half into DX, so the skip accumulator is saved around it.
func (e *Emitter) emitRand(x uint8, nn byte) {
	e.saveSkipAccum()
	e.bld.rdtsc()
	e.restoreSkipAccum()
	e.bld.regImm(x86.AANDB, int64(nn), x86.REG_AX)
	e.storeV(x, x86.REG_AX)
}

// emitDraw implements DXYN. Sprite drawing's bit-shifted row masking and
// screen-wrap/clip logic are enough machinery that, like the reference
// this core is modeled on, it's emitted as a runtime call rather than
// inlined — spilling every promoted register first, since a Go function
// called via a bare CALL may clobber any of them under Go's internal ABI.
func (e *Emitter) emitDraw(x, y, n uint8) {
	rx, ry := int16(scratchC), int16(scratchD)
	e.bld.reg(x86.AMOVQ, e.operand(x, rx), rx)
	e.bld.reg(x86.AMOVQ, e.operand(y, ry), ry)

	e.emitSetVFImm(0)
	if n == 0 {
		return
	}

	e.bld.regImm(x86.AANDL, 0x3F, rx)
	e.bld.regImm(x86.AANDL, 0x1F, ry)

	e.saveSkipAccum()
	e.spillLive()

	// Go's internal ABI assigns integer args to AX, BX, CX, DI, SI in
	// order; rx/ry were staged in R9/R10 above precisely so they survive
	// spillLive and this reshuffle untouched. SI is baseReg, so I (already
	// spilled) is loaded into it last.
	e.bld.regImm(x86.AMOVQ, int64(e.statePtr), x86.REG_AX)
	e.bld.reg(x86.AMOVQ, rx, x86.REG_BX)
	e.bld.reg(x86.AMOVQ, ry, x86.REG_CX)
	e.bld.regImm(x86.AMOVQ, int64(n), x86.REG_DI)
	e.bld.regMem(x86.AMOVWQZX, baseReg, fieldOffsets.I, x86.REG_SI)

	addr := drawSpriteWrapHostAddr
	if e.quirks.Clipping {
		addr = drawSpriteClipHostAddr
	}
	e.bld.callAbs(addr, x86.REG_R11)

	e.reloadLive()
	e.restoreSkipAccum()
	e.storeV(0xF, x86.REG_AX)
}

func (e *Emitter) emitFx(op uint16, x uint8, pc uint16) {
	switch op & 0x00FF {
	case 0x07:
		e.bld.regMem(x86.AMOVBQZX, baseReg, fieldOffsets.DelayTimer, scratchA)
		e.storeV(x, scratchA)
	case 0x0A:
		e.bld.leaMem(baseReg, vOffset(x), scratchA)
		e.bld.memReg(x86.AMOVQ, scratchA, baseReg, fieldOffsets.InputReg)
		e.bld.memImm(x86.AMOVW, int64(pc+2), baseReg, fieldOffsets.PC)
	case 0x15:
		rx := e.operand(x, scratchA)
		e.bld.memReg(x86.AMOVB, rx, baseReg, fieldOffsets.DelayTimer)
	case 0x18:
		rx := e.operand(x, scratchA)
		e.bld.memReg(x86.AMOVB, rx, baseReg, fieldOffsets.SoundTimer)
	case 0x1E:
		rx := e.operand(x, scratchA)
		if e.ra.iAllocated {
			e.bld.reg(x86.AADDQ, rx, iReg)
		} else {
			e.bld.memReg(x86.AADDW, rx, baseReg, fieldOffsets.I)
		}
	case 0x29:
		rx := e.operand(x, scratchA)
		e.bld.reg(x86.AMOVQ, rx, scratchC)
		e.bld.regImm(x86.AANDQ, 0xF, scratchC)
		e.bld.regImm(x86.AIMULQ, 5, scratchC)
		if e.ra.iAllocated {
			e.bld.reg(x86.AMOVQ, scratchC, iReg)
		} else {
			e.bld.memReg(x86.AMOVW, scratchC, baseReg, fieldOffsets.I)
		}
	case 0x33:
		e.emitBCD(x)
	case 0x55:
		idx := e.maskedRAMIndex(scratchD)
		for i := uint8(0); i <= x; i++ {
			v := e.operand(i, scratchA)
			e.bld.scaledIndexMemStore(x86.AMOVB, v, baseReg, idx, 1, 0)
			e.bld.regImm(x86.AADDQ, 1, idx)
			e.bld.regImm(x86.AANDQ, 0xFFF, idx)
		}
		if e.quirks.MemoryIncrement {
			e.emitIAdd(int64(x) + 1)
		}
	case 0x65:
		idx := e.maskedRAMIndex(scratchD)
		for i := uint8(0); i <= x; i++ {
			e.bld.scaledIndexMem(x86.AMOVBQZX, baseReg, idx, 1, 0, scratchA)
			e.storeV(i, scratchA)
			e.bld.regImm(x86.AADDQ, 1, idx)
			e.bld.regImm(x86.AANDQ, 0xFFF, idx)
		}
		if e.quirks.MemoryIncrement {
			e.emitIAdd(int64(x) + 1)
		}
	}
}

// emitBCD implements FX33 via a runtime call rather than hardware DIV,
// which would otherwise need DX (skipAccumReg) saved and restored around
// every call for the DX:AX dividend pair.
func (e *Emitter) emitBCD(x uint8) {
	rx := e.operand(x, scratchC)
	idx := e.maskedRAMIndex(scratchD)

	e.saveSkipAccum()
	e.spillLive()

	// Args are staged only after spillLive: BX is also a promoted-V slot.
	e.bld.regImm(x86.AMOVQ, int64(e.statePtr), x86.REG_AX)
	e.bld.reg(x86.AMOVQ, rx, x86.REG_BX)  // value arg
	e.bld.reg(x86.AMOVQ, idx, x86.REG_CX) // ramOffset arg
	e.bld.callAbs(bcdHostAddr, x86.REG_R11)

	e.reloadLive()
	e.restoreSkipAccum()
}
