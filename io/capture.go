package io

// Capture records every output pulse value, in order.
type Capture struct {
	Values []uint64
}

var _ Port = (*Capture)(nil)

// Send appends the value to the capture.
func (cc *Capture) Send(value uint64) error {
	cc.Values = append(cc.Values, value)
	return nil
}

// Reset discards all captured values.
func (cc *Capture) Reset() {
	cc.Values = cc.Values[:0]
}

// String returns the captured values as text, one byte per value.
func (cc *Capture) String() string {
	text := make([]byte, len(cc.Values))
	for n, value := range cc.Values {
		text[n] = byte(value)
	}
	return string(text)
}
