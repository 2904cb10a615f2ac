package wlav

import (
	"encoding/binary"
	"io"
)

// countingWriter is a thin wrapper tracking how many bytes have gone to
// the sink, so WriteObject can report a byte count without buffering the
// whole object file in memory first.
type countingWriter struct {
	w io.Writer
	n int64
	// err latches the first write error so every helper below can be used
	// fire-and-forget; WriteObject checks it once at the end.
	err error
}

func newCountingWriter(w io.Writer) *countingWriter {
	return &countingWriter{w: w}
}

func (c *countingWriter) write(p []byte) {
	if c.err != nil {
		return
	}
	n, err := c.w.Write(p)
	c.n += int64(n)
	c.err = err
}

// Write implements io.Writer so callers that only need "a sink that
// counts" (e.g. CalcStackEntry.write, binary.Write) can use a
// *countingWriter directly.
func (c *countingWriter) Write(p []byte) (int, error) {
	before := c.n
	c.write(p)
	return int(c.n - before), c.err
}

func (c *countingWriter) u8(v uint8) {
	c.write([]byte{v})
}

func (c *countingWriter) u32(v uint32) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	c.write(buf[:])
}

// str writes s verbatim with no terminator, used only for the bare
// section-kind name at the head of a data section record.
func (c *countingWriter) str(s string) {
	c.write([]byte(s))
}

// cstr writes s followed by a NUL terminator.
func (c *countingWriter) cstr(s string) {
	c.write([]byte(s))
	c.u8(0)
}

func writeByte(w io.Writer, b byte) error {
	_, err := w.Write([]byte{b})
	return err
}
