package emulator

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/urisc/cpu"
	"github.com/ezrec/urisc/io"
)

var monitorProgram = []string{
	"start:",
	"  SETI r0, 5",
	"  LOG r0",
	"  ST r0, 0x10",
	"  HALT",
}

func newTestMonitor(t *testing.T) (mon *Monitor, console *bytes.Buffer, output *io.Capture) {
	emu := NewEmulator(DEFAULT_PERIOD)
	output = &io.Capture{}
	emu.Output = output
	doLoad(t, emu, monitorProgram)

	console = &bytes.Buffer{}
	mon = NewMonitor(emu, console)

	return
}

func TestMonitorStep(t *testing.T) {
	assert := assert.New(t)

	mon, console, output := newTestMonitor(t)

	quit, err := mon.Exec("step")
	assert.NoError(err)
	assert.False(quit)
	assert.Equal(uint64(5), mon.Cpu.Register[0])
	assert.Contains(console.String(), "running 01: ST r0, 0xff")
	assert.Contains(console.String(), "; 3:")

	console.Reset()
	_, err = mon.Exec("step 10")
	assert.NoError(err)
	assert.True(mon.Done())
	assert.Equal([]uint64{5}, output.Values)
	assert.Contains(console.String(), "halted 03: HALT")
	assert.Equal(4, mon.Cpu.Retired)
}

func TestMonitorTick(t *testing.T) {
	assert := assert.New(t)

	mon, _, _ := newTestMonitor(t)

	_, err := mon.Exec("tick 2")
	assert.NoError(err)
	assert.Equal(2, mon.Cpu.Ticks)
	assert.Equal(2, mon.Ip())
}

func TestMonitorRun(t *testing.T) {
	assert := assert.New(t)

	mon, console, output := newTestMonitor(t)

	_, err := mon.Exec("break 2")
	assert.NoError(err)

	_, err = mon.Exec("run")
	assert.NoError(err)
	assert.Contains(console.String(), "break at 02")
	assert.Equal(2, mon.Ip())
	assert.Equal([]uint64{5}, output.Values)

	console.Reset()
	_, err = mon.Exec("break")
	assert.NoError(err)
	assert.Equal("break 02\n", console.String())

	_, err = mon.Exec("break 2")
	assert.NoError(err)
	assert.Empty(mon.Breakpoints)

	_, err = mon.Exec("run")
	assert.NoError(err)
	assert.True(mon.Done())
	assert.Equal(uint64(5), mon.Cpu.Memory[0x10])
}

func TestMonitorRunLimit(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(DEFAULT_PERIOD)
	doLoad(t, emu, []string{"loop: JMP loop"})
	mon := NewMonitor(emu, &bytes.Buffer{})

	_, err := mon.Exec("run 100")
	assert.ErrorIs(err, ErrTickLimit)
	assert.Equal(100, mon.Cpu.Ticks)
}

func TestMonitorInspect(t *testing.T) {
	assert := assert.New(t)

	mon, console, _ := newTestMonitor(t)

	_, err := mon.Exec("run")
	assert.NoError(err)

	console.Reset()
	_, err = mon.Exec("mem 0x10 2")
	assert.NoError(err)
	assert.Equal("10: 0000000000000005\n11: 0000000000000000\n", console.String())

	console.Reset()
	_, err = mon.Exec("mem 0xff, 1")
	assert.NoError(err)
	assert.Equal("ff: 0000000000000005\n", console.String())

	console.Reset()
	_, err = mon.Exec("pc")
	assert.NoError(err)
	assert.Equal("03\n", console.String())

	console.Reset()
	_, err = mon.Exec("regs")
	assert.NoError(err)
	assert.Equal(mon.Cpu.String(), console.String())

	console.Reset()
	_, err = mon.Exec("list 0 2")
	assert.NoError(err)
	assert.Equal("start:\n"+
		"   00: 3000000000000005  LI r0, 0x5\n"+
		"   01: 50000000000000ff  ST r0, 0xff\n", console.String())

	console.Reset()
	_, err = mon.Exec("list 3 1")
	assert.NoError(err)
	assert.Equal("=> 03: f000000000000000  HALT\n", console.String())
}

func TestMonitorReset(t *testing.T) {
	assert := assert.New(t)

	mon, _, _ := newTestMonitor(t)

	_, err := mon.Exec("run")
	assert.NoError(err)
	assert.True(mon.Done())

	_, err = mon.Exec("reset")
	assert.NoError(err)
	assert.Equal(cpu.STATE_RUNNING, mon.Cpu.State())
	assert.Equal(0, mon.Ip())
}

func TestMonitorCommands(t *testing.T) {
	assert := assert.New(t)

	mon, console, _ := newTestMonitor(t)

	quit, err := mon.Exec("   ")
	assert.NoError(err)
	assert.False(quit)

	_, err = mon.Exec("help")
	assert.NoError(err)
	assert.Contains(console.String(), "step [n]")

	_, err = mon.Exec("frobnicate")
	assert.Equal(ErrMonitorCommand("frobnicate"), err)

	_, err = mon.Exec("step many")
	assert.ErrorIs(err, ErrMonitorArgument)

	_, err = mon.Exec("mem 1 2 3")
	assert.ErrorIs(err, ErrMonitorArgument)

	_, err = mon.Exec("break 0x100")
	assert.ErrorIs(err, ErrMonitorArgument)

	quit, err = mon.Exec("QUIT")
	assert.NoError(err)
	assert.True(quit)
}
