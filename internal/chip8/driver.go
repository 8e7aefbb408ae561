package chip8

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"

	"github.com/bradford-hamilton/chippy8-jit/internal/pixel"
)

const keyRepeatDur = time.Second / 5

// Disassembler is implemented only by jit.Core; interp.Core has no
// compiled code to dump.
type Disassembler interface {
	DumpDisassembly(w io.Writer) error
}

// Driver runs a Core against a pixel window: it ticks the guest, handles
// keyboard input, triggers the beep on sound_timer transitions, and draws
// the framebuffer. Grounded on the teacher's VM.Run/handleKeyInput/
// ManageAudio, generalized to work against the Core interface instead of
// reaching into VM fields directly.
type Driver struct {
	core   Core
	window *pixel.Window

	Clock     *time.Ticker
	audioChan chan struct{}
	ShutdownC chan struct{}

	prevSoundTimer byte
}

// NewDriver opens a window, loads rom into core, and returns a Driver
// ready to Run at refreshRate Hz.
func NewDriver(core Core, rom []byte, refreshRate int) (*Driver, error) {
	window, err := pixel.NewWindow()
	if err != nil {
		return nil, fmt.Errorf("new window: %w", err)
	}
	if err := core.LoadROM(rom); err != nil {
		return nil, fmt.Errorf("load rom: %w", err)
	}
	return &Driver{
		core:      core,
		window:    window,
		Clock:     time.NewTicker(time.Second / time.Duration(refreshRate)),
		audioChan: make(chan struct{}),
		ShutdownC: make(chan struct{}),
	}, nil
}

// Run ticks the guest once per Clock tick until the window closes or
// ShutdownC is signaled.
func (d *Driver) Run() {
	for {
		select {
		case <-d.Clock.C:
			if d.window.Closed() {
				d.shutdown("window closed - shutting down...")
				return
			}
			d.core.Execute()
			d.window.DrawGraphics(d.core.ScreenBuffer())
			d.handleKeyInput()
			d.core.UpdateTimers()
			d.tickAudio()
		case <-d.ShutdownC:
			d.shutdown("received signal - gracefully shutting down...")
			return
		}
	}
}

// handleKeyInput polls the window's key map and forwards press/release
// edges into the core; a held key is repeated at keyRepeatDur, matching
// the teacher's VM.handleKeyInput.
func (d *Driver) handleKeyInput() {
	for i, key := range d.window.KeyMap {
		switch {
		case d.window.JustReleased(key):
			if d.window.KeysDown[i] != nil {
				d.window.KeysDown[i].Stop()
				d.window.KeysDown[i] = nil
			}
			d.core.SetKey(byte(i), false)
		case d.window.JustPressed(key):
			if d.window.KeysDown[i] == nil {
				d.window.KeysDown[i] = time.NewTicker(keyRepeatDur)
			}
			d.core.SetKey(byte(i), true)
		}

		if d.window.KeysDown[i] == nil {
			continue
		}
		select {
		case <-d.window.KeysDown[i].C:
			d.core.SetKey(byte(i), true)
		default:
		}
	}
}

// tickAudio signals ManageAudio exactly once per sound_timer 1->0 edge,
// mirroring the teacher's soundTimerTick.
func (d *Driver) tickAudio() {
	st := d.core.SoundTimer()
	if d.prevSoundTimer == 1 && st == 0 {
		select {
		case d.audioChan <- struct{}{}:
		default:
		}
	}
	d.prevSoundTimer = st
}

func (d *Driver) shutdown(msg string) {
	fmt.Println(msg)
	close(d.audioChan)
	close(d.ShutdownC)
}

// ManageAudio reads and decodes assets/beep.mp3, initializes the speaker,
// and plays a beep each time an audio event arrives.
func (d *Driver) ManageAudio() {
	f, err := os.Open("assets/beep.mp3")
	if err != nil {
		return
	}

	streamer, format, err := mp3.Decode(f)
	if err != nil {
		return
	}
	defer streamer.Close()

	speaker.Init(
		format.SampleRate,
		format.SampleRate.N(time.Second/10),
	)

	for range d.audioChan {
		speaker.Play(streamer)
	}
}

// DumpDisassembly writes the core's compiled-block disassembly to w, if
// the underlying Core supports it (the JIT core does; the interpreter
// doesn't and this is a no-op for it).
func (d *Driver) DumpDisassembly(w io.Writer) error {
	if dis, ok := d.core.(Disassembler); ok {
		return dis.DumpDisassembly(w)
	}
	return nil
}
