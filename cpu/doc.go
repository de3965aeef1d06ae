// Package cpu implements the clocked μRISC processor simulation.
//
// The CPU consists of a program counter (PC), eight 64-bit general purpose
// registers (r0-r7), 256 words of data memory, and 256 words of instruction
// ROM. Instructions retire once every Period clock edges; stores to the I/O
// address 0xFF are reported as output pulses by Step.
package cpu
