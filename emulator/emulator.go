// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package emulator drives the μRISC CPU: it generates the clock and reset,
// forwards output pulses to a port, and maps the PC back to source lines.
package emulator

import (
	"log"

	"github.com/ezrec/urisc/asm"
	"github.com/ezrec/urisc/cpu"
	"github.com/ezrec/urisc/io"
	"github.com/ezrec/urisc/isa"
)

const (
	DEFAULT_PERIOD    = 1       // Clock edges per instruction.
	DEFAULT_MAX_TICKS = 1 << 24 // Clock edges before Run gives up.
)

// Emulator state. CPU + program listing + output port.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *asm.Program // Listing of the loaded program, if known.
	MaxTicks int          // Clock edges Run may spend. Zero or less is unlimited.

	Output io.Port // Receives the output pulses.
}

// NewEmulator creates a new emulator, retiring one instruction every
// period clock edges.
func NewEmulator(period int) (emu *Emulator) {
	emu = &Emulator{
		Cpu:      cpu.NewCpu(period),
		Program:  &asm.Program{},
		MaxTicks: DEFAULT_MAX_TICKS,
	}

	return
}

// Load asserts reset and loads an image into the ROM.
func (emu *Emulator) Load(image []isa.Word) (err error) {
	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Step(true)

	err = emu.Cpu.Load(image)
	if err != nil {
		return
	}

	if emu.Verbose {
		log.Printf("emulator: loaded %d words", len(image))
	}

	return
}

// LoadProgram loads an assembled program, keeping its listing for
// source line lookups.
func (emu *Emulator) LoadProgram(prog *asm.Program) (err error) {
	err = emu.Load(prog.Binary())
	if err != nil {
		return
	}

	emu.Program = prog

	return
}

// Reset holds reset for one clock edge, then releases it on the next.
func (emu *Emulator) Reset() {
	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Step(true)
	emu.Cpu.Step(false)
}

// Ip returns the ROM address of the next instruction.
func (emu *Emulator) Ip() int {
	return int(uint8(emu.Cpu.Pc()))
}

// Code returns the next instruction word.
func (emu *Emulator) Code() isa.Word {
	return emu.Cpu.Rom(uint8(emu.Ip()))
}

// LineNo returns the source line number of the next instruction, or 0 if
// unknown.
func (emu *Emulator) LineNo() int {
	if emu.Program == nil {
		return 0
	}

	dbg := emu.Program.Debug(emu.Ip())
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.LineNo
}

// Done returns true once the CPU halted.
func (emu *Emulator) Done() bool {
	return emu.Cpu.State() == cpu.STATE_HALTED
}

// Tick performs a single clock edge of the emulator.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Err: err}
		}
	}()

	pulse := emu.Cpu.Step(false)
	if pulse.Strobe && emu.Output != nil {
		err = emu.Output.Send(pulse.Value)
		if err != nil {
			return
		}
	}

	done = emu.Done()

	return
}

// Retire ticks until one instruction retired, or the CPU halted.
func (emu *Emulator) Retire() (done bool, err error) {
	if emu.Cpu.State() == cpu.STATE_RESET {
		_, err = emu.Tick()
		if err != nil {
			return
		}
	}

	retired := emu.Cpu.Retired
	for emu.Cpu.Retired == retired {
		if emu.Done() {
			done = true
			return
		}
		done, err = emu.Tick()
		if err != nil {
			return
		}
	}

	return
}

// Run ticks until the CPU halts. If MaxTicks is positive, at most MaxTicks
// clock edges are run before ErrTickLimit is returned.
func (emu *Emulator) Run() (err error) {
	for ticks := 0; !emu.Done(); ticks++ {
		if emu.MaxTicks > 0 && ticks >= emu.MaxTicks {
			err = &ErrRuntime{LineNo: emu.LineNo(), Err: ErrTickLimit}
			return
		}
		_, err = emu.Tick()
		if err != nil {
			return
		}
	}

	if emu.Verbose {
		log.Printf("emulator: halted after %d ticks, %d retired", emu.Cpu.Ticks, emu.Cpu.Retired)
	}

	return
}
