package emit

import (
	"unsafe"

	"github.com/bradford-hamilton/chippy8-jit/internal/chip8/state"
)

// fieldOffsets caches the byte offset of every state.State field the
// emitted code addresses directly off the base pointer (baseReg). Computed
// once via unsafe.Offsetof rather than hand-maintained, so a reordering of
// state.State's fields can't silently desync the two.
var fieldOffsets = struct {
	V, I, PC, SP, Stack, DelayTimer, SoundTimer, Keys, InputReg, ScreenBuffer int64
}{
	V:            int64(unsafe.Offsetof(state.State{}.V)),
	I:            int64(unsafe.Offsetof(state.State{}.I)),
	PC:           int64(unsafe.Offsetof(state.State{}.PC)),
	SP:           int64(unsafe.Offsetof(state.State{}.SP)),
	Stack:        int64(unsafe.Offsetof(state.State{}.Stack)),
	DelayTimer:   int64(unsafe.Offsetof(state.State{}.DelayTimer)),
	SoundTimer:   int64(unsafe.Offsetof(state.State{}.SoundTimer)),
	Keys:         int64(unsafe.Offsetof(state.State{}.Keys)),
	InputReg:     int64(unsafe.Offsetof(state.State{}.InputReg)),
	ScreenBuffer: int64(unsafe.Offsetof(state.State{}.ScreenBuffer)),
}

// vOffset returns the byte offset of state.State.V[v].
func vOffset(v uint8) int64 { return fieldOffsets.V + int64(v) }

// stackOffset returns the byte offset of state.State.Stack[sp&0xF].
func stackOffset(sp uint8) int64 { return fieldOffsets.Stack + int64(sp&0xF)*2 }

// keyOffset returns the byte offset of state.State.Keys[k&0xF].
func keyOffset(k uint8) int64 { return fieldOffsets.Keys + int64(k&0xF) }
