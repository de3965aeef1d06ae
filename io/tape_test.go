package io

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTape_Send(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name     string
		format   TapeFormat
		values   []uint64
		expected string
	}){
		{"char", TAPE_CHAR, []uint64{'H', 'i', 0x100 | '\n'}, "Hi\n"},
		{"decimal", TAPE_DECIMAL, []uint64{5, 0xffffffffffffffff}, "5\n18446744073709551615\n"},
		{"hex", TAPE_HEX, []uint64{0xff}, "00000000000000ff\n"},
	}

	for _, entry := range table {
		out := &bytes.Buffer{}
		tape := &Tape{Output: out, Format: entry.format}
		for _, value := range entry.values {
			assert.NoError(tape.Send(value), entry.name)
		}
		assert.Equal(entry.expected, out.String(), entry.name)
	}

	tape := &Tape{Output: &bytes.Buffer{}, Format: TapeFormat(99)}
	assert.ErrorIs(tape.Send(0), ErrTapeFormat)
}

func TestParseTapeFormat(t *testing.T) {
	assert := assert.New(t)

	format, err := ParseTapeFormat("decimal")
	assert.NoError(err)
	assert.Equal(TAPE_DECIMAL, format)

	_, err = ParseTapeFormat("octal")
	assert.ErrorIs(err, ErrTapeFormat)
}

func TestCapture(t *testing.T) {
	assert := assert.New(t)

	capture := &Capture{}
	assert.NoError(capture.Send('O'))
	assert.NoError(capture.Send('K'))
	assert.Equal([]uint64{'O', 'K'}, capture.Values)
	assert.Equal("OK", capture.String())

	capture.Reset()
	assert.Empty(capture.Values)
}
