// Package bzip2 implements the bzip2 compressed data format.
//
// Compression splits the input into independent blocks and farms them out
// to a pool of worker goroutines, so encoding speed scales with the worker
// count while the output stays byte-identical to a single-worker run.
// Decompression is sequential.
package bzip2

const (
	// BlockCapacity is the number of raw bytes compressed per block.
	// It is 4/5 of the nominal 900,000-byte bzip2 block size: the
	// run-length preprocessing stage can expand four input bytes to
	// five, and the headroom keeps the post-RLE block inside the size
	// the level-9 header declares.
	BlockCapacity = 720000

	// maxBlockSize bounds the post-RLE block a decoder will accept.
	maxBlockSize = 900000

	blkMagic = 0x314159265359
	endMagic = 0x177245385090

	magicBits = 48
)

// streamHeader is the 3-byte signature plus the level byte. Encoding
// always declares level 9 since BlockCapacity is fixed.
var streamHeader = []byte{'B', 'Z', 'h', '9'}

// A FormatError reports that the input is not valid bzip2 data and names
// the check that failed. All format errors are terminal: the decoder does
// not resynchronize or skip corrupt blocks.
type FormatError string

func (e FormatError) Error() string { return "bzip2: invalid format: " + string(e) }
