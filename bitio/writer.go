package bitio

import "io"

// A Writer packs bits MSB-first and writes them to an underlying
// io.Writer. Errors from the underlying writer are sticky: once a write
// fails, all further calls are no-ops returning the same error, so callers
// may batch their error checks.
type Writer struct {
	w    io.Writer
	buf  []byte
	bits uint64
	n    uint
	err  error
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, buf: make([]byte, 0, 4096)}
}

// WriteBits writes the width lowest bits of v, most significant first.
// width must be at most 56.
func (w *Writer) WriteBits(v uint64, width uint) error {
	if w.err != nil {
		return w.err
	}
	w.bits = w.bits<<width | v&(1<<width-1)
	w.n += width
	for w.n >= 8 {
		w.n -= 8
		w.buf = append(w.buf, byte(w.bits>>w.n))
		if len(w.buf) == cap(w.buf) {
			w.flush()
		}
	}
	return w.err
}

// WriteBytes writes p as a sequence of 8-bit values. The output need not
// be byte-aligned.
func (w *Writer) WriteBytes(p []byte) error {
	for _, b := range p {
		if err := w.WriteBits(uint64(b), 8); err != nil {
			return err
		}
	}
	return w.err
}

// Finalize pads the current partial byte with zero bits and flushes all
// buffered output. The Writer must not be used afterwards.
func (w *Writer) Finalize() error {
	if w.n > 0 {
		w.WriteBits(0, 8-w.n)
	}
	w.flush()
	return w.err
}

func (w *Writer) flush() {
	if w.err != nil || len(w.buf) == 0 {
		return
	}
	_, w.err = w.w.Write(w.buf)
	w.buf = w.buf[:0]
}
