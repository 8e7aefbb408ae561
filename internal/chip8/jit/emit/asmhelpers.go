package emit

import (
	asm "github.com/twitchyliquid64/golang-asm"
	"github.com/twitchyliquid64/golang-asm/obj"
	"github.com/twitchyliquid64/golang-asm/obj/x86"
)

// builder wraps golang-asm's instruction builder with the small set of
// addressing-mode helpers the opcode emitters in emit.go need. It mirrors
// the role the original source's Xbyak wrapper (MOV/CMP/AND/... taking
// Xbyak::Operand) plays, translated to golang-asm's obj.Prog model.
type builder struct {
	b *asm.Builder
}

func newBuilder() (*builder, error) {
	b, err := asm.NewBuilder("amd64", 64)
	if err != nil {
		return nil, err
	}
	return &builder{b: b}, nil
}

func (b *builder) prog() *obj.Prog { return b.b.NewProg() }

func (b *builder) add(p *obj.Prog) { b.b.AddInstruction(p) }

// reg emits `as reg1, reg2` with both operands as bare registers.
func (b *builder) reg(as obj.As, src, dst int16) *obj.Prog {
	p := b.prog()
	p.As = as
	p.From.Type = obj.TYPE_REG
	p.From.Reg = src
	p.To.Type = obj.TYPE_REG
	p.To.Reg = dst
	b.add(p)
	return p
}

// regMem emits `as base+off, dst`.
func (b *builder) regMem(as obj.As, base int16, off int64, dst int16) *obj.Prog {
	p := b.prog()
	p.As = as
	p.From.Type = obj.TYPE_MEM
	p.From.Reg = base
	p.From.Offset = off
	p.To.Type = obj.TYPE_REG
	p.To.Reg = dst
	b.add(p)
	return p
}

// memReg emits `as src, base+off`.
func (b *builder) memReg(as obj.As, src int16, base int16, off int64) *obj.Prog {
	p := b.prog()
	p.As = as
	p.From.Type = obj.TYPE_REG
	p.From.Reg = src
	p.To.Type = obj.TYPE_MEM
	p.To.Reg = base
	p.To.Offset = off
	b.add(p)
	return p
}

// memImm emits `as imm, base+off`.
func (b *builder) memImm(as obj.As, imm int64, base int16, off int64) *obj.Prog {
	p := b.prog()
	p.As = as
	p.From.Type = obj.TYPE_CONST
	p.From.Offset = imm
	p.To.Type = obj.TYPE_MEM
	p.To.Reg = base
	p.To.Offset = off
	b.add(p)
	return p
}

// regImm emits `as imm, dst`.
func (b *builder) regImm(as obj.As, imm int64, dst int16) *obj.Prog {
	p := b.prog()
	p.As = as
	p.From.Type = obj.TYPE_CONST
	p.From.Offset = imm
	p.To.Type = obj.TYPE_REG
	p.To.Reg = dst
	b.add(p)
	return p
}

// only1 emits an instruction with only a destination register operand
// (e.g. PUSH reg, POP reg, INC reg, DEC reg).
func (b *builder) only1(as obj.As, reg int16) *obj.Prog {
	p := b.prog()
	p.As = as
	p.To.Type = obj.TYPE_REG
	p.To.Reg = reg
	b.add(p)
	return p
}

// scaledIndexMem emits `as base+(index*scale)+off, dst` — used for the
// circular return stack (stack[sp]), keys[VX], and RAM[I] addressing.
func (b *builder) scaledIndexMem(as obj.As, base, index int16, scale int8, off int64, dst int16) *obj.Prog {
	p := b.prog()
	p.As = as
	p.From.Type = obj.TYPE_MEM
	p.From.Reg = base
	p.From.Index = index
	p.From.Scale = scale
	p.From.Offset = off
	p.To.Type = obj.TYPE_REG
	p.To.Reg = dst
	b.add(p)
	return p
}

func (b *builder) scaledIndexMemStore(as obj.As, src int16, base, index int16, scale int8, off int64) *obj.Prog {
	p := b.prog()
	p.As = as
	p.From.Type = obj.TYPE_REG
	p.From.Reg = src
	p.To.Type = obj.TYPE_MEM
	p.To.Reg = base
	p.To.Index = index
	p.To.Scale = scale
	p.To.Offset = off
	b.add(p)
	return p
}

// jmp emits an unconditional forward/backward branch with an unresolved
// target; the caller fixes up To.SetTarget once the destination is known.
func (b *builder) jmp(as obj.As) *obj.Prog {
	p := b.prog()
	p.As = as
	p.To.Type = obj.TYPE_BRANCH
	b.add(p)
	return p
}

// nop emits a label anchor (no-op) that a pending jump can target.
func (b *builder) nop() *obj.Prog {
	p := b.prog()
	p.As = obj.ANOP
	b.add(p)
	return p
}

// leaMem emits `LEA base+off, dst`.
func (b *builder) leaMem(base int16, off int64, dst int16) *obj.Prog {
	return b.regMem(x86.ALEAQ, base, off, dst)
}

// leaIndexed emits `LEA base+(index*scale)+off, dst`.
func (b *builder) leaIndexed(base, index int16, scale int8, off int64, dst int16) *obj.Prog {
	p := b.prog()
	p.As = x86.ALEAQ
	p.From.Type = obj.TYPE_MEM
	p.From.Reg = base
	p.From.Index = index
	p.From.Scale = scale
	p.From.Offset = off
	p.To.Type = obj.TYPE_REG
	p.To.Reg = dst
	b.add(p)
	return p
}

// rdtsc emits a bare RDTSC, which loads the 64-bit timestamp counter into
// EDX:EAX — used as CXNN's cheap on-CPU entropy source (spec.md §4.3.6).
func (b *builder) rdtsc() *obj.Prog {
	p := b.prog()
	p.As = x86.ARDTSC
	b.add(p)
	return p
}

func (b *builder) ret() *obj.Prog {
	p := b.prog()
	p.As = x86.ARET
	b.add(p)
	return p
}

// callAbs loads a 64-bit absolute address into a scratch register and
// calls through it, matching the original's callFunc helper (mov rax,
// func; call rax). It adds no stack-alignment padding around the call.
func (b *builder) callAbs(addr uintptr, scratch int16) *obj.Prog {
	b.regImm(x86.AMOVQ, int64(addr), scratch)
	p := b.prog()
	p.As = obj.ACALL
	p.To.Type = obj.TYPE_REG
	p.To.Reg = scratch
	b.add(p)
	return p
}

func (b *builder) assemble() ([]byte, error) {
	return b.b.Assemble()
}
