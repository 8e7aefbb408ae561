package emit

import (
	"reflect"

	"github.com/bradford-hamilton/chippy8-jit/internal/chip8/state"
)

// funcPC returns the entry address of a Go function value, the same
// trick Go's own low-level runtime-adjacent packages use to hand a
// callable address to hand-written machine code. It only works for
// package-level (non-closure) functions, which is all we bake into
// generated code here.
func funcPC(fn interface{}) uintptr {
	return reflect.ValueOf(fn).Pointer()
}

// drawSpriteClipHost and drawSpriteWrapHost implement DXYN's fallback
// path (spec.md §4.3.4) for the two Clipping-quirk variants. The JIT
// bakes in whichever address matches the quirk snapshot captured at
// block-compile time (spec.md §3: quirks are read-only during compile),
// the same specialization the original source's drawSprite<clipping,...>
// template performs at compile time in C++.
//
// Both take the sprite's already-wrapped origin, its height, and the RAM
// offset of its first byte, and return the collision flag the emitted
// code then loads into VF.
func drawSpriteClipHost(s *state.State, xpos, ypos, height uint32, ramOffset uint16) uint32 {
	return drawSprite(s, xpos, ypos, height, ramOffset, true)
}

func drawSpriteWrapHost(s *state.State, xpos, ypos, height uint32, ramOffset uint16) uint32 {
	return drawSprite(s, xpos, ypos, height, ramOffset, false)
}

func drawSprite(s *state.State, xpos, ypos, height uint32, ramOffset uint16, clipping bool) uint32 {
	if s.DrawLockingOn {
		s.DrawLock.Lock()
		defer s.DrawLock.Unlock()
	}

	collision := uint32(0)
	y := uint16(ypos)

	for i := uint32(0); i < height; i++ {
		row := uint64(s.RAM[(ramOffset+uint16(i))&0xFFF])

		if clipping {
			if y >= state.ScreenHeight {
				break
			}
		} else {
			y &= state.ScreenHeight - 1
		}

		var mask uint64
		x := uint16(xpos)
		if x <= 56 {
			mask = row << (56 - x)
		} else {
			left := row >> (x - 56)
			if clipping {
				mask = left
			} else {
				mask = left | row<<(64-(x-56))
			}
		}

		if s.ScreenBuffer[y]&mask != 0 {
			collision = 1
		}
		s.ScreenBuffer[y] ^= mask
		y++
	}

	return collision
}

var (
	drawSpriteClipHostAddr = funcPC(drawSpriteClipHost)
	drawSpriteWrapHostAddr = funcPC(drawSpriteWrapHost)
)

// bcdHost writes v's hundreds, tens, and ones digits to RAM starting at
// ramOffset, backing FX33. Doing the /100, /10%10, %10 math as a runtime
// call sidesteps needing DIV in generated code, which would otherwise
// contend with skipAccumReg for the DX:AX pair every block that uses it.
func bcdHost(s *state.State, v byte, ramOffset uint16) {
	s.RAM[ramOffset&0xFFF] = v / 100
	s.RAM[(ramOffset+1)&0xFFF] = (v / 10) % 10
	s.RAM[(ramOffset+2)&0xFFF] = v % 10
}

var bcdHostAddr = funcPC(bcdHost)
