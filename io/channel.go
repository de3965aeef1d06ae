// Package io provides the μRISC ROM image file format and the output ports
// that receive values stored to the memory-mapped I/O address.
package io

// Port receives the values written to the I/O address, one per output pulse.
type Port interface {
	// Send delivers the payload of a single output pulse.
	Send(value uint64) error
}
