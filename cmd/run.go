package cmd

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/bradford-hamilton/chippy8-jit/internal/chip8"
	"github.com/bradford-hamilton/chippy8-jit/internal/chip8/interp"
	"github.com/bradford-hamilton/chippy8-jit/internal/chip8/jit"
	"github.com/bradford-hamilton/chippy8-jit/internal/chip8/state"
)

const refreshRate = 300

var (
	useJIT            bool
	slowMode          bool
	dumpDisasmPath    string
	quirkVFReset      bool
	quirkShifting     bool
	quirkJumping      bool
	quirkClipping     bool
	quirkMemIncrement bool
)

// runCmd runs the chippy8-jit virtual machine and waits for a shutdown
// signal to exit.
var runCmd = &cobra.Command{
	Use:   "run `path/to/rom`",
	Short: "run the chippy8-jit emulator",
	Args:  cobra.ExactArgs(1),
	Run:   runChippy,
}

func init() {
	runCmd.Flags().BoolVar(&useJIT, "jit", true, "use the dynamic binary translator core instead of the interpreter")
	runCmd.Flags().BoolVar(&slowMode, "slow-mode", false, "force single-opcode blocks in the JIT core, for debugging")
	runCmd.Flags().StringVar(&dumpDisasmPath, "dump-disasm", "", "on exit, write compiled-block disassembly to this path (JIT only)")
	runCmd.Flags().BoolVar(&quirkVFReset, "quirk-vf-reset", state.DefaultQuirks().VFReset, "clear VF after 8XY1/8XY2/8XY3")
	runCmd.Flags().BoolVar(&quirkShifting, "quirk-shifting", state.DefaultQuirks().Shifting, "8XY6/8XYE shift VX directly instead of copying VY first")
	runCmd.Flags().BoolVar(&quirkJumping, "quirk-jumping", state.DefaultQuirks().Jumping, "BNNN uses V[X] instead of V0")
	runCmd.Flags().BoolVar(&quirkClipping, "quirk-clipping", state.DefaultQuirks().Clipping, "sprites clip at the screen edge instead of wrapping")
	runCmd.Flags().BoolVar(&quirkMemIncrement, "quirk-memory-increment", state.DefaultQuirks().MemoryIncrement, "FX55/FX65 post-increment I by X+1")
}

func quirksFromFlags() state.Quirks {
	return state.Quirks{
		VFReset:         quirkVFReset,
		Shifting:        quirkShifting,
		Jumping:         quirkJumping,
		Clipping:        quirkClipping,
		MemoryIncrement: quirkMemIncrement,
	}
}

func runChippy(cmd *cobra.Command, args []string) {
	rom, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Printf("\nerror reading rom: %v\n", err)
		os.Exit(1)
	}

	quirks := quirksFromFlags()

	var core chip8.Core
	if useJIT {
		jitCore, err := jit.NewWithOptions(jit.Options{Quirks: quirks, SlowMode: slowMode})
		if err != nil {
			fmt.Printf("\nerror creating jit core: %v\n", err)
			os.Exit(1)
		}
		core = jitCore
	} else {
		core = interp.NewWithQuirks(quirks)
	}

	driver, err := chip8.NewDriver(core, rom, refreshRate)
	if err != nil {
		fmt.Printf("\nerror creating driver: %v\n", errors.Wrap(err, "new driver"))
		os.Exit(1)
	}

	go driver.ManageAudio()
	go driver.Run()

	<-driver.ShutdownC

	if dumpDisasmPath != "" {
		f, err := os.Create(dumpDisasmPath)
		if err != nil {
			fmt.Printf("\nerror opening disassembly dump: %v\n", err)
			return
		}
		defer f.Close()
		if err := driver.DumpDisassembly(f); err != nil {
			fmt.Printf("\nerror dumping disassembly: %v\n", err)
		}
	}
}
