// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Command urasm assembles μRISC source into a hex ROM image.
package main

import (
	"bytes"
	"fmt"
	stdio "io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ezrec/urisc/asm"
	"github.com/ezrec/urisc/io"
)

type options struct {
	out     string
	listing string
	pad     int
	defines []string
	verbose bool
}

// assemble writes the image of a source file. Nothing is written unless the
// whole source assembles.
func (opt *options) assemble(source string, console stdio.Writer) (err error) {
	assembler := &asm.Assembler{Verbose: opt.verbose}
	for _, define := range opt.defines {
		name, value, ok := strings.Cut(define, "=")
		if !ok || len(name) == 0 {
			return fmt.Errorf("-D %v: %w", define, asm.ErrEquateSyntax)
		}
		assembler.Predefine(name, value)
	}

	inf, err := os.Open(source)
	if err != nil {
		return
	}
	defer inf.Close()

	prog, err := assembler.Parse(inf)
	if err != nil {
		return fmt.Errorf("%v: %w", source, err)
	}

	// Render the image fully before touching the output file.
	rom := &io.Rom{Data: prog.Binary()}
	image := &bytes.Buffer{}
	err = rom.Store(image, opt.pad)
	if err != nil {
		return fmt.Errorf("%v: %w", opt.out, err)
	}

	err = os.WriteFile(opt.out, image.Bytes(), 0o644)
	if err != nil {
		return
	}

	if len(opt.listing) != 0 {
		var ouf stdio.Writer = console
		if opt.listing != "-" {
			var file *os.File
			file, err = os.Create(opt.listing)
			if err != nil {
				return
			}
			defer file.Close()
			ouf = file
		}
		err = prog.Listing(ouf)
		if err != nil {
			return fmt.Errorf("%v: %w", opt.listing, err)
		}
	}

	fmt.Fprintf(console, "Wrote %d words to %v (padded to %d)\n", len(rom.Data), opt.out, max(opt.pad, len(rom.Data)))

	return
}

func main() {
	opt := &options{}

	rootCmd := &cobra.Command{
		Use:   "urasm SOURCE",
		Short: "μRISC assembler",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			err := opt.assemble(args[0], os.Stdout)
			if err != nil {
				log.Fatal(err)
			}
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.Flags().StringVarP(&opt.out, "out", "o", "main.hex", "ROM image to write")
	rootCmd.Flags().StringVarP(&opt.listing, "list", "l", "", "Listing file to write ('-' for stdout)")
	rootCmd.Flags().IntVar(&opt.pad, "pad", 0, "Pad the image with zero words to this depth")
	rootCmd.Flags().StringArrayVarP(&opt.defines, "define", "D", nil, "Predefine an equate, as NAME=VALUE")
	rootCmd.Flags().BoolVarP(&opt.verbose, "verbose", "v", false, "Verbose mode")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
