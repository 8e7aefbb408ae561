package main

import (
	"github.com/faiface/pixel/pixelgl"

	"github.com/bradford-hamilton/chippy8-jit/cmd"
)

func main() {
	// pixelgl needs access to the main thread, so the whole cobra command
	// tree runs inside its callback rather than calling cmd.Execute directly.
	pixelgl.Run(cmd.Execute)
}
