package bitio

import (
	"bufio"
	"io"
)

// A Reader reads bits MSB-first from an underlying io.Reader.
type Reader struct {
	r    *bufio.Reader
	bits uint64
	n    uint
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// ReadBits reads width bits and returns them as the low bits of the
// result. width must be at most 56. Running out of input partway through
// a value yields io.ErrUnexpectedEOF; io.EOF is only returned when no bits
// of the requested value were available at all.
func (r *Reader) ReadBits(width uint) (uint64, error) {
	for r.n < width {
		b, err := r.r.ReadByte()
		if err != nil {
			if err == io.EOF && r.n > 0 {
				err = io.ErrUnexpectedEOF
			}
			return 0, err
		}
		r.bits = r.bits<<8 | uint64(b)
		r.n += 8
	}
	r.n -= width
	return r.bits >> r.n & (1<<width - 1), nil
}

// ReadBytes reads n bytes, which need not be byte-aligned in the input.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	p := make([]byte, n)
	for i := range p {
		v, err := r.ReadBits(8)
		if err != nil {
			if err == io.EOF && i > 0 {
				err = io.ErrUnexpectedEOF
			}
			return nil, err
		}
		p[i] = byte(v)
	}
	return p, nil
}
