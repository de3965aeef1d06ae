// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Command urisc runs μRISC ROM images, directly or under an interactive
// monitor.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/ezrec/urisc/asm"
	"github.com/ezrec/urisc/emulator"
	"github.com/ezrec/urisc/io"
)

type options struct {
	period   int
	maxTicks int
	format   string
	source   string
	verbose  bool
}

// load creates an emulator with an image loaded and out of reset.
func (opt *options) load(image string) (emu *emulator.Emulator) {
	format, err := io.ParseTapeFormat(opt.format)
	if err != nil {
		log.Fatalf("--format %v: %v", opt.format, err)
	}

	inf, err := os.Open(image)
	if err != nil {
		log.Fatalf("%v: %v", image, err)
	}
	defer inf.Close()

	rom := &io.Rom{}
	err = rom.Load(inf)
	if err != nil {
		log.Fatalf("%v: %v", image, err)
	}

	emu = emulator.NewEmulator(opt.period)
	emu.Verbose = opt.verbose
	emu.MaxTicks = opt.maxTicks
	emu.Output = &io.Tape{Output: os.Stdout, Format: format}

	err = emu.Load(rom.Data)
	if err != nil {
		log.Fatalf("%v: %v", image, err)
	}

	if len(opt.source) != 0 {
		emu.Program = opt.assemble()
	}

	emu.Reset()

	return
}

// assemble parses the source, for line numbers in diagnostics.
func (opt *options) assemble() (prog *asm.Program) {
	inf, err := os.Open(opt.source)
	if err != nil {
		log.Fatalf("%v: %v", opt.source, err)
	}
	defer inf.Close()

	assembler := &asm.Assembler{}
	prog, err = assembler.Parse(inf)
	if err != nil {
		log.Fatalf("%v: %v", opt.source, err)
	}

	return
}

func main() {
	opt := &options{}

	rootCmd := &cobra.Command{
		Use:   "urisc",
		Short: "μRISC simulator",
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().IntVar(&opt.period, "period", emulator.DEFAULT_PERIOD, "Clock edges per instruction")
	rootCmd.PersistentFlags().IntVar(&opt.maxTicks, "max-ticks", emulator.DEFAULT_MAX_TICKS, "Clock edges before giving up (0 for no limit)")
	rootCmd.PersistentFlags().StringVar(&opt.format, "format", "char", "Output format (char, decimal, hex)")
	rootCmd.PersistentFlags().StringVar(&opt.source, "source", "", "Assembly source of the image, for line numbers")
	rootCmd.PersistentFlags().BoolVarP(&opt.verbose, "verbose", "v", false, "Verbose mode")

	runCmd := &cobra.Command{
		Use:   "run IMAGE",
		Short: "Run an image until it halts",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			emu := opt.load(args[0])

			err := emu.Run()
			if err != nil {
				log.Fatalf("%v: %v", args[0], err)
			}
		},
	}

	monitorCmd := &cobra.Command{
		Use:   "monitor IMAGE",
		Short: "Debug an image interactively",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			emu := opt.load(args[0])
			mon := emulator.NewMonitor(emu, os.Stdout)

			rl, err := readline.NewEx(&readline.Config{
				Prompt:      "> ",
				HistoryFile: filepath.Join(os.TempDir(), "urisc_history.txt"),
			})
			if err != nil {
				log.Fatalf("readline: %v", err)
			}
			defer rl.Close()

			fmt.Println("μRISC monitor. Type 'help' for commands.")
			for {
				line, err := rl.Readline()
				if err != nil {
					break
				}

				quit, err := mon.Exec(strings.TrimSpace(line))
				if err != nil {
					fmt.Println(err)
				}
				if quit {
					break
				}
			}
		},
	}

	rootCmd.AddCommand(runCmd, monitorCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
