package pixel

import (
	"fmt"
	"time"

	"github.com/faiface/pixel"
	"github.com/faiface/pixel/imdraw"
	"github.com/faiface/pixel/pixelgl"
	"golang.org/x/image/colornames"
)

// The screen is drawn from the guest's packed [32]uint64 framebuffer: bit
// 63-i of row y is pixel (i, y), high bit leftmost. Drawing itself stays
// XOR/collision based inside the guest cores (state/interp/jit); this
// package only rasterizes whatever buffer it's handed.

const winX float64 = 64
const winY float64 = 32
const screenWidth float64 = 1024
const screenHeight float64 = 768

// Window embeds a pixelgl window, holds a keymapping of hex -> pixelgl.Button,
// and an array of tickers for keeping tracking of keys down
type Window struct {
	*pixelgl.Window
	KeyMap   map[uint16]pixelgl.Button
	KeysDown [16]*time.Ticker
}

// NewWindow handles creating a new pixelgl window config, initializing the window,
// and returning a pointer a Window with an embedded *pixelgl.Window
func NewWindow() (*Window, error) {
	cfg := pixelgl.WindowConfig{
		Title:  "chippy",
		Bounds: pixel.R(0, 0, 1024, 768),
		VSync:  true,
	}
	w, err := pixelgl.NewWindow(cfg)
	if err != nil {
		return nil, fmt.Errorf("error creating new window: %v", err)
	}
	km := map[uint16]pixelgl.Button{
		0x1: pixelgl.Key1, 0x2: pixelgl.Key2,
		0x3: pixelgl.Key3, 0xC: pixelgl.Key4,
		0x4: pixelgl.KeyQ, 0x5: pixelgl.KeyW,
		0x6: pixelgl.KeyE, 0xD: pixelgl.KeyR,
		0x7: pixelgl.KeyA, 0x8: pixelgl.KeyS,
		0x9: pixelgl.KeyD, 0xE: pixelgl.KeyF,
		0xA: pixelgl.KeyZ, 0x0: pixelgl.KeyX,
		0xB: pixelgl.KeyC, 0xF: pixelgl.KeyV,
	}
	return &Window{
		Window:   w,
		KeyMap:   km,
		KeysDown: [16]*time.Ticker{},
	}, nil
}

// DrawGraphics rasterizes a guest framebuffer of 32 packed rows, each
// holding 64 pixels with bit 63 leftmost.
func (w *Window) DrawGraphics(gfx [32]uint64) {
	w.Clear(colornames.Black)
	imDraw := imdraw.New(nil)
	imDraw.Color = pixel.RGB(1, 1, 1)
	width, height := screenWidth/winX, screenHeight/winY

	for i := 0; i < 64; i++ {
		for j := 0; j < 32; j++ {
			if gfx[31-j]&(1<<uint(63-i)) != 0 {
				imDraw.Push(pixel.V(width*float64(i), height*float64(j)))
				imDraw.Push(pixel.V(width*float64(i)+width, height*float64(j)+height))
				imDraw.Rectangle(0)
			}
		}
	}

	imDraw.Draw(w)
	w.Update()
}
