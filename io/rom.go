package io

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ezrec/urisc/isa"
)

// Rom is a ROM image: the words loaded into instruction memory.
type Rom struct {
	Data []isa.Word
}

// Load replaces the image with the words read from a hex image file.
// Each non-blank line holds one word of up to 16 hex digits.
func (rc *Rom) Load(input io.Reader) (err error) {
	scanner := bufio.NewScanner(input)

	var data []isa.Word
	var lineno int
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 {
			continue
		}

		if len(line) > isa.WORD_DIGITS {
			err = ErrImageSyntax{LineNo: lineno, Line: line}
			return
		}

		var value uint64
		value, err = strconv.ParseUint(line, 16, isa.WORD_BITS)
		if err != nil {
			err = ErrImageSyntax{LineNo: lineno, Line: line}
			return
		}

		if len(data) == isa.ROM_DEPTH {
			err = ErrImageOverflow
			return
		}
		data = append(data, isa.Word(value))
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	rc.Data = data

	return
}

// Store writes the image, one fixed width hex word per line. If pad is larger
// than the image, zero words are appended until pad words were written.
func (rc *Rom) Store(output io.Writer, pad int) (err error) {
	w := bufio.NewWriter(output)

	format := fmt.Sprintf("%%0%dx\n", isa.WORD_DIGITS)
	for _, word := range rc.Data {
		_, err = fmt.Fprintf(w, format, uint64(word))
		if err != nil {
			return
		}
	}

	for n := len(rc.Data); n < pad; n++ {
		_, err = fmt.Fprintf(w, format, uint64(0))
		if err != nil {
			return
		}
	}

	err = w.Flush()

	return
}
