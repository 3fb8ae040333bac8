package bzip2

import "github.com/DipayanP007/ribzip2/bitio"

// compressBlock runs one raw block through the block transform chain
// (RLE, BWT, MTF, Huffman) and returns its complete bit-level encoding,
// starting with the 48-bit block magic, along with the block checksum.
// It is pure: no state is shared between calls, which is what lets blocks
// be compressed on independent workers.
func compressBlock(raw []byte) (*bitio.Buffer, uint32) {
	crc := blockCRC(raw)
	rle := rle1Encode(make([]byte, 0, len(raw)), raw)
	last, origPtr := bwTransform(rle)
	used := usedBytes(rle)
	syms := mtfEncode(last, used)
	alpha := len(used) + 2
	tables, selectors := buildGroupTables(syms, alpha)

	buf := new(bitio.Buffer)
	buf.WriteBits(blkMagic, magicBits)
	buf.WriteBits(uint64(crc), 32)
	buf.WriteBits(0, 1) // randomized: deprecated, never set
	buf.WriteBits(uint64(origPtr), 24)

	writeSymbolMap(buf, used)

	buf.WriteBits(uint64(len(tables)), 3)
	buf.WriteBits(uint64(len(selectors)), 15)
	writeSelectors(buf, selectors, len(tables))
	for _, lengths := range tables {
		writeLengths(buf, lengths)
	}

	codes := make([][]uint32, len(tables))
	for g, lengths := range tables {
		codes[g] = assignCodes(lengths)
	}
	for i, s := range syms {
		g := selectors[i/groupSize]
		buf.WriteBits(uint64(codes[g][s]), uint(tables[g][s]))
	}
	return buf, crc
}

// writeSymbolMap emits the two-level bitmap of used byte values: one
// 16-bit map of used 16-value ranges, then a 16-bit map per used range.
func writeSymbolMap(buf *bitio.Buffer, used []byte) {
	var ranges uint64
	var fine [16]uint64
	for _, b := range used {
		ranges |= 1 << (15 - b/16)
		fine[b/16] |= 1 << (15 - b%16)
	}
	buf.WriteBits(ranges, 16)
	for i := 0; i < 16; i++ {
		if ranges&(1<<(15-uint(i))) != 0 {
			buf.WriteBits(fine[i], 16)
		}
	}
}

// writeSelectors emits the selector list, each value move-to-front coded
// over the group indices and written in unary.
func writeSelectors(buf *bitio.Buffer, selectors []uint8, nGroups int) {
	var list [6]uint8
	for g := 0; g < nGroups; g++ {
		list[g] = uint8(g)
	}
	for _, s := range selectors {
		j := 0
		for list[j] != s {
			j++
		}
		copy(list[1:j+1], list[:j])
		list[0] = s
		for i := 0; i < j; i++ {
			buf.WriteBits(1, 1)
		}
		buf.WriteBits(0, 1)
	}
}
