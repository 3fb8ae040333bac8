package bzip2

import (
	"fmt"
	"io"

	"github.com/DipayanP007/ribzip2/bitio"
)

// decodeBlock reads one block from br, positioned immediately after the
// 48-bit block magic, and writes the decompressed bytes to w. It returns
// the block checksum so the caller can fold it into the stream checksum.
func decodeBlock(br *bitio.Reader, w io.Writer) (uint32, error) {
	v, err := br.ReadBits(32)
	if err != nil {
		return 0, err
	}
	storedCRC := uint32(v)

	v, err = br.ReadBits(1)
	if err != nil {
		return 0, err
	}
	if v != 0 {
		return 0, FormatError("randomized blocks are deprecated")
	}

	v, err = br.ReadBits(24)
	if err != nil {
		return 0, err
	}
	origPtr := int(v)

	used, err := readSymbolMap(br)
	if err != nil {
		return 0, err
	}
	alpha := len(used) + 2
	eob := uint16(alpha - 1)

	v, err = br.ReadBits(3)
	if err != nil {
		return 0, err
	}
	nGroups := int(v)
	if nGroups < 2 || nGroups > 6 {
		return 0, FormatError("invalid number of huffman groups")
	}

	v, err = br.ReadBits(15)
	if err != nil {
		return 0, err
	}
	nSelectors := int(v)
	if nSelectors < 1 {
		return 0, FormatError("no selectors")
	}
	selectors, err := readSelectors(br, nSelectors, nGroups)
	if err != nil {
		return 0, err
	}

	tables := make([]*huffmanTable, nGroups)
	for g := range tables {
		lengths, err := readLengths(br, alpha)
		if err != nil {
			return 0, err
		}
		if tables[g], err = newHuffmanTable(lengths); err != nil {
			return 0, err
		}
	}

	mtf := newMTFDecoder(used)
	for i := 0; ; i++ {
		if i/groupSize >= nSelectors {
			return 0, FormatError("not enough selectors")
		}
		sym, err := tables[selectors[i/groupSize]].decode(br)
		if err != nil {
			return 0, err
		}
		if sym == eob {
			break
		}
		if int(sym) >= alpha-1 {
			return 0, FormatError("symbol out of range")
		}
		if err := mtf.push(sym); err != nil {
			return 0, err
		}
	}
	last, err := mtf.finish()
	if err != nil {
		return 0, err
	}
	if origPtr >= len(last) {
		return 0, FormatError("original pointer out of range")
	}

	data, err := rle1Decode(nil, bwInverse(last, origPtr))
	if err != nil {
		return 0, err
	}
	if blockCRC(data) != storedCRC {
		return 0, FormatError("block checksum mismatch")
	}
	if _, err := w.Write(data); err != nil {
		return 0, fmt.Errorf("bzip2: writing output: %w", err)
	}
	return storedCRC, nil
}

func readSymbolMap(br *bitio.Reader) ([]byte, error) {
	ranges, err := br.ReadBits(16)
	if err != nil {
		return nil, err
	}
	used := make([]byte, 0, 256)
	for i := 0; i < 16; i++ {
		if ranges&(1<<(15-uint(i))) == 0 {
			continue
		}
		fine, err := br.ReadBits(16)
		if err != nil {
			return nil, err
		}
		for j := 0; j < 16; j++ {
			if fine&(1<<(15-uint(j))) != 0 {
				used = append(used, byte(16*i+j))
			}
		}
	}
	if len(used) == 0 {
		return nil, FormatError("empty symbol map")
	}
	return used, nil
}

func readSelectors(br *bitio.Reader, nSelectors, nGroups int) ([]uint8, error) {
	var list [6]uint8
	for g := 0; g < nGroups; g++ {
		list[g] = uint8(g)
	}
	selectors := make([]uint8, nSelectors)
	for i := range selectors {
		j := 0
		for {
			bit, err := br.ReadBits(1)
			if err != nil {
				return nil, err
			}
			if bit == 0 {
				break
			}
			j++
			if j >= nGroups {
				return nil, FormatError("selector out of range")
			}
		}
		s := list[j]
		copy(list[1:j+1], list[:j])
		list[0] = s
		selectors[i] = s
	}
	return selectors, nil
}
