package bzip2

// Symbols of the post-MTF stream. Zero runs are coded in bijective base 2
// with RUNA worth 1 and RUNB worth 2 at the current digit weight; a
// non-zero move-to-front index v becomes symbol v+1; the end-of-block
// symbol is the last value of the alphabet (alphabet size = number of
// used byte values + 2).
const (
	symRunA = 0
	symRunB = 1
)

// usedBytes returns the distinct byte values of p in ascending order.
func usedBytes(p []byte) []byte {
	var seen [256]bool
	for _, b := range p {
		seen[b] = true
	}
	used := make([]byte, 0, 256)
	for v := 0; v < 256; v++ {
		if seen[v] {
			used = append(used, byte(v))
		}
	}
	return used
}

// mtfEncode move-to-front codes the BWT column over the used-byte
// alphabet, folds zero runs into RUNA/RUNB, and appends the end-of-block
// symbol.
func mtfEncode(bwt, used []byte) []uint16 {
	list := append([]byte(nil), used...)
	eob := uint16(len(used) + 1)
	syms := make([]uint16, 0, len(bwt)+1)
	run := 0
	flushRun := func() {
		for run > 0 {
			if run&1 == 1 {
				syms = append(syms, symRunA)
				run = (run - 1) / 2
			} else {
				syms = append(syms, symRunB)
				run = (run - 2) / 2
			}
		}
	}
	for _, b := range bwt {
		j := 0
		for list[j] != b {
			j++
		}
		if j == 0 {
			run++
			continue
		}
		flushRun()
		copy(list[1:j+1], list[:j])
		list[0] = b
		syms = append(syms, uint16(j+1))
	}
	flushRun()
	return append(syms, eob)
}

// mtfDecoder is the inverse transform, fed one symbol at a time.
type mtfDecoder struct {
	list []byte
	out  []byte
	run  int
	base int
}

func newMTFDecoder(used []byte) *mtfDecoder {
	return &mtfDecoder{
		list: append([]byte(nil), used...),
		base: 1,
	}
}

// push consumes one non-EOB symbol. It reports an error if the decoded
// column would exceed the declared block capacity.
func (m *mtfDecoder) push(sym uint16) error {
	switch sym {
	case symRunA, symRunB:
		if sym == symRunA {
			m.run += m.base
		} else {
			m.run += 2 * m.base
		}
		m.base <<= 1
		if m.run > maxBlockSize {
			return FormatError("block exceeds maximum size")
		}
	default:
		if err := m.flushRun(); err != nil {
			return err
		}
		v := int(sym) - 1
		b := m.list[v]
		copy(m.list[1:v+1], m.list[:v])
		m.list[0] = b
		if len(m.out) >= maxBlockSize {
			return FormatError("block exceeds maximum size")
		}
		m.out = append(m.out, b)
	}
	return nil
}

// finish flushes any trailing zero run and returns the decoded column.
func (m *mtfDecoder) finish() ([]byte, error) {
	if err := m.flushRun(); err != nil {
		return nil, err
	}
	return m.out, nil
}

func (m *mtfDecoder) flushRun() error {
	if m.run > maxBlockSize-len(m.out) {
		return FormatError("block exceeds maximum size")
	}
	for i := 0; i < m.run; i++ {
		m.out = append(m.out, m.list[0])
	}
	m.run = 0
	m.base = 1
	return nil
}
