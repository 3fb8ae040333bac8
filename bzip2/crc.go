package bzip2

import "math/bits"

// bzip2 uses the IEEE CRC-32 polynomial in its unreflected form, unlike
// hash/crc32, so the table is built here.
var crcTable [256]uint32

func init() {
	const poly = 0x04c11db7
	for i := range crcTable {
		crc := uint32(i) << 24
		for j := 0; j < 8; j++ {
			if crc&0x80000000 != 0 {
				crc = crc<<1 ^ poly
			} else {
				crc <<= 1
			}
		}
		crcTable[i] = crc
	}
}

// blockCRC returns the checksum of one block's raw (pre-RLE) bytes.
func blockCRC(p []byte) uint32 {
	crc := ^uint32(0)
	for _, b := range p {
		crc = crc<<8 ^ crcTable[byte(crc>>24)^b]
	}
	return ^crc
}

// combineCRC folds one block checksum into the running stream checksum.
// The fold must be applied in block order for wire compatibility.
func combineCRC(total, block uint32) uint32 {
	return block ^ bits.RotateLeft32(total, 1)
}
