package emulator

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ezrec/urisc/isa"
)

// Monitor is an interactive debugger over an emulator.
type Monitor struct {
	*Emulator
	Console     io.Writer      // Receives command output.
	Breakpoints map[uint8]bool // Run stops before these ROM addresses.
}

var monitorHelp = []string{
	"help               this text",
	"step [n]           retire n instructions (default 1)",
	"tick [n]           run n clock edges (default 1)",
	"run [ticks]        run until halt, breakpoint, or tick limit",
	"break [addr]       list breakpoints, or toggle one at addr",
	"regs               show the CPU state",
	"mem [addr [n]]     dump n words of data memory (default 16)",
	"list [addr [n]]    disassemble n words of ROM (default 8)",
	"pc                 show the program counter",
	"reset              reset the CPU",
	"quit               leave the monitor",
}

// NewMonitor attaches a monitor to an emulator.
func NewMonitor(emu *Emulator, console io.Writer) (mon *Monitor) {
	mon = &Monitor{
		Emulator:    emu,
		Console:     console,
		Breakpoints: map[uint8]bool{},
	}

	return
}

func parseArg(args []string, index int, value int) (int, error) {
	if index >= len(args) {
		return value, nil
	}

	arg, err := strconv.ParseUint(args[index], 0, 32)
	if err != nil {
		return 0, ErrMonitorArgument
	}

	return int(arg), nil
}

// Exec runs a single monitor command line.
func (mon *Monitor) Exec(line string) (quit bool, err error) {
	words := strings.Fields(strings.ReplaceAll(line, ",", " "))
	if len(words) == 0 {
		return
	}

	cmd, args := strings.ToLower(words[0]), words[1:]
	if len(args) > 2 {
		err = ErrMonitorArgument
		return
	}

	switch cmd {
	case "help", "h", "?":
		for _, text := range monitorHelp {
			fmt.Fprintln(mon.Console, text)
		}
	case "step", "s":
		var count int
		count, err = parseArg(args, 0, 1)
		if err != nil {
			return
		}
		for range count {
			var done bool
			done, err = mon.Retire()
			if err != nil {
				return
			}
			mon.trace()
			if done {
				break
			}
		}
	case "tick", "t":
		var count int
		count, err = parseArg(args, 0, 1)
		if err != nil {
			return
		}
		for range count {
			var done bool
			done, err = mon.Tick()
			if err != nil || done {
				break
			}
		}
		mon.trace()
	case "run", "r", "go", "g":
		var limit int
		limit, err = parseArg(args, 0, mon.MaxTicks)
		if err != nil {
			return
		}
		err = mon.run(limit)
	case "break", "b":
		if len(args) == 0 {
			for addr := range isa.ROM_DEPTH {
				if mon.Breakpoints[uint8(addr)] {
					fmt.Fprintf(mon.Console, "break %02x\n", addr)
				}
			}
			return
		}
		var addr int
		addr, err = parseArg(args, 0, 0)
		if err != nil {
			return
		}
		if addr >= isa.ROM_DEPTH {
			err = ErrMonitorArgument
			return
		}
		if mon.Breakpoints[uint8(addr)] {
			delete(mon.Breakpoints, uint8(addr))
		} else {
			mon.Breakpoints[uint8(addr)] = true
		}
	case "regs", "d":
		fmt.Fprint(mon.Console, mon.Cpu.String())
	case "mem", "m":
		var addr, count int
		addr, err = parseArg(args, 0, 0)
		if err == nil {
			count, err = parseArg(args, 1, 16)
		}
		if err != nil {
			return
		}
		for n := range count {
			at := uint8(addr + n)
			fmt.Fprintf(mon.Console, "%02x: %016x\n", at, mon.Cpu.Memory[at])
		}
	case "list", "l":
		var addr, count int
		addr, err = parseArg(args, 0, mon.Ip())
		if err == nil {
			count, err = parseArg(args, 1, 8)
		}
		if err != nil {
			return
		}
		mon.list(addr, count)
	case "pc":
		fmt.Fprintf(mon.Console, "%02x\n", mon.Ip())
	case "reset":
		mon.Reset()
	case "quit", "q", "exit":
		quit = true
	default:
		err = ErrMonitorCommand(cmd)
	}

	return
}

func (mon *Monitor) run(limit int) (err error) {
	start := mon.Cpu.Ticks
	for !mon.Done() {
		if limit > 0 && mon.Cpu.Ticks-start >= limit {
			err = &ErrRuntime{LineNo: mon.LineNo(), Err: ErrTickLimit}
			return
		}
		_, err = mon.Retire()
		if err != nil {
			return
		}
		if mon.Breakpoints[uint8(mon.Ip())] {
			fmt.Fprintf(mon.Console, "break at %02x\n", mon.Ip())
			break
		}
	}

	mon.trace()

	return
}

// trace shows the next instruction, and its source line if known.
func (mon *Monitor) trace() {
	fmt.Fprintf(mon.Console, "%v %02x: %-20v", mon.Cpu.State(), mon.Ip(), mon.Code())
	if lineno := mon.LineNo(); lineno > 0 {
		dbg := mon.Program.Debug(mon.Ip())
		fmt.Fprintf(mon.Console, " ; %d: %v", lineno, strings.Join(dbg.Words, " "))
	}
	fmt.Fprintln(mon.Console)
}

func (mon *Monitor) list(addr int, count int) {
	for n := range count {
		at := uint8(addr + n)
		if mon.Program != nil {
			if label, ok := mon.Program.Label(int(at)); ok {
				fmt.Fprintf(mon.Console, "%v:\n", label)
			}
		}
		cursor := "  "
		if int(at) == mon.Ip() {
			cursor = "=>"
		}
		code := mon.Cpu.Rom(at)
		fmt.Fprintf(mon.Console, "%v %02x: %016x  %v\n", cursor, at, uint64(code), code)
	}
}
