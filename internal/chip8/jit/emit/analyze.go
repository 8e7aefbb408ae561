package emit

import "github.com/bradford-hamilton/chippy8-jit/internal/chip8/state"

// MaxBlockInstructions bounds how many guest opcodes a single compiled
// block may cover, matching the bounded-lookahead analysis pass spec.md
// §4.3 step 1 calls for: large enough that typical straight-line CHIP-8
// code compiles in one shot, small enough that a misbehaving ROM can't
// make analysis itself unbounded.
const MaxBlockInstructions = 256

// Terminator records why a block's analysis stopped growing, so the
// epilogue knows whether the final opcode already wrote state.PC itself
// or whether the epilogue must do it (falling off the instruction cap).
type Terminator uint8

const (
	// TermCap means analysis hit MaxBlockInstructions with no
	// control-transfer in sight; execution falls through to EndPC.
	TermCap Terminator = iota
	TermJump
	TermCall
	TermReturn
	TermJumpV0
	TermWaitKey
	// TermUnknown is an unrecognized 0NNN machine-language call, treated
	// as a NOP that nonetheless ends the block (spec.md §7).
	TermUnknown
	// TermStore is FX55: it can self-modify RAM ahead of the guest PC, so
	// it always ends its block (spec.md §4.3.3), letting the orchestrator
	// invalidate any overlapping compiled block before it runs stale code.
	TermStore
	// TermSkip means the block ends at a conditional skip because the
	// opcode that would otherwise follow it is itself a block terminator
	// (spec.md §4.3.1 forbids fusing a skip over one) — the skip is
	// emitted unfused instead, and the next block starts at the opcode it
	// would have skipped over.
	TermSkip
)

// BlockInfo is the result of analyzing one guest basic block: its raw
// opcode stream plus the register-usage counts register promotion keys
// off of (spec.md §4.3 step 2).
type BlockInfo struct {
	StartPC    uint16
	EndPC      uint16
	Opcodes    []uint16
	VUsage     [16]uint8
	IUsage     uint8
	Terminator Terminator
}

// terminatorFor reports the terminator op would cause if it ends a block,
// and whether it actually ends one (screen clear does not).
func terminatorFor(op uint16) (Terminator, bool) {
	switch op & 0xF000 {
	case 0x0000:
		switch op & 0x0FFF {
		case 0x00EE:
			return TermReturn, true
		case 0x00E0:
			return TermCap, false
		default:
			return TermUnknown, true
		}
	case 0x1000:
		return TermJump, true
	case 0x2000:
		return TermCall, true
	case 0xB000:
		return TermJumpV0, true
	case 0xF000:
		switch op & 0x00FF {
		case 0x0A:
			return TermWaitKey, true
		case 0x55:
			return TermStore, true
		}
	}
	return TermCap, false
}

// Analyze decodes guest opcodes starting at startPC until a control-transfer
// opcode, FX0A, FX55, an unrecognized 0NNN, or the instruction cap ends the
// block. A conditional skip is never fused over an opcode that would itself
// end the block (spec.md §4.3.1) — analysis stops at the skip instead, one
// opcode short of where it otherwise would, so the emitter takes the
// unfused path for it.
func Analyze(ram *[state.RAMSize]byte, startPC uint16) BlockInfo {
	info := BlockInfo{StartPC: startPC}
	pc := startPC

	for len(info.Opcodes) < MaxBlockInstructions {
		op := uint16(ram[pc&0xFFF])<<8 | uint16(ram[(pc+1)&0xFFF])

		if n := len(info.Opcodes); n > 0 && isSkip(info.Opcodes[n-1]) {
			if _, terminal := terminatorFor(op); terminal {
				info.Terminator = TermSkip
				break
			}
		}

		info.Opcodes = append(info.Opcodes, op)
		pc += 2

		x := uint8((op & 0x0F00) >> 8)
		y := uint8((op & 0x00F0) >> 4)
		countUsage(&info, op, x, y)

		if term, terminal := terminatorFor(op); terminal {
			info.Terminator = term
			break
		}
	}

	info.EndPC = pc
	return info
}

// isSkip reports whether op is one of the conditional-skip opcodes the
// emitter fuses into a native branch (spec.md §4.3.5).
func isSkip(op uint16) bool {
	switch op & 0xF000 {
	case 0x3000, 0x4000:
		return true
	case 0x5000, 0x9000:
		return op&0x000F == 0
	case 0xE000:
		return op&0x00FF == 0x9E || op&0x00FF == 0xA1
	}
	return false
}

// countUsage tallies how many times a block references each V register and
// I, the input register-promotion allocation (regs.go) works from.
func countUsage(info *BlockInfo, op uint16, x, y uint8) {
	switch op & 0xF000 {
	case 0x3000, 0x4000, 0x6000, 0x7000:
		info.VUsage[x]++
	case 0x5000, 0x9000:
		if op&0x000F == 0 {
			info.VUsage[x]++
			info.VUsage[y]++
		}
	case 0x8000:
		info.VUsage[x]++
		n := op & 0x000F
		if n != 0x0 {
			info.VUsage[y]++
		}
		if n != 0x0 {
			info.VUsage[0xF]++
		}
	case 0xA000:
		info.IUsage++
	case 0xB000:
		info.VUsage[0]++
		info.VUsage[x]++
	case 0xC000:
		info.VUsage[x]++
	case 0xD000:
		info.VUsage[x]++
		info.VUsage[y]++
		info.VUsage[0xF]++
		info.IUsage++
	case 0xE000:
		if op&0x00FF == 0x9E || op&0x00FF == 0xA1 {
			info.VUsage[x]++
		}
	case 0xF000:
		switch op & 0x00FF {
		case 0x07, 0x15, 0x18, 0x29, 0x000A:
			info.VUsage[x]++
		case 0x1E:
			info.VUsage[x]++
			info.IUsage++
		case 0x33:
			info.VUsage[x]++
			info.IUsage++
		case 0x55, 0x65:
			for i := uint8(0); i <= x; i++ {
				info.VUsage[i]++
			}
			info.IUsage++
		}
	}
}
