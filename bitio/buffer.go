package bitio

// A Buffer is an in-memory bit sequence, assembled MSB-first like a
// Writer's output but without an underlying stream. The zero value is an
// empty buffer ready for use.
type Buffer struct {
	data []byte
	n    uint
}

// WriteBits appends the width lowest bits of v, most significant first.
// width must be at most 56.
func (b *Buffer) WriteBits(v uint64, width uint) {
	for width > 0 {
		if b.n&7 == 0 {
			b.data = append(b.data, 0)
		}
		free := 8 - b.n&7
		take := free
		if width < take {
			take = width
		}
		chunk := byte(v>>(width-take)) & (1<<take - 1)
		b.data[len(b.data)-1] |= chunk << (free - take)
		b.n += take
		width -= take
	}
}

// Bits returns the number of bits in the buffer.
func (b *Buffer) Bits() int { return int(b.n) }

// Bytes returns the buffered bits packed into bytes, the final partial
// byte padded with zero bits. The slice aliases the buffer's storage.
func (b *Buffer) Bytes() []byte { return b.data }

// WriteBitsTo appends the buffer's bits to w, preserving bit alignment.
func (b *Buffer) WriteBitsTo(w *Writer) error {
	full := int(b.n / 8)
	for _, v := range b.data[:full] {
		if err := w.WriteBits(uint64(v), 8); err != nil {
			return err
		}
	}
	if rem := b.n & 7; rem > 0 {
		return w.WriteBits(uint64(b.data[full]>>(8-rem)), rem)
	}
	return nil
}
