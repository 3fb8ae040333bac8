package bzip2

import (
	"errors"
	"fmt"
	"io"

	"github.com/DipayanP007/ribzip2/bitio"
)

// Encode compresses r into w using the given number of worker
// goroutines. The output is byte-identical for every worker count:
// blocks are scattered to workers in fixed index order, one block per
// worker per round, and every round's results are gathered in the same
// order before the next round starts, so output order is dispatch order
// no matter how long each block takes to compress.
func Encode(r io.Reader, w io.Writer, workers int) error {
	if workers < 1 {
		return errors.New("bzip2: worker count must be at least 1")
	}

	bw := bitio.NewWriter(w)
	if err := bw.WriteBytes(streamHeader); err != nil {
		return fmt.Errorf("bzip2: writing output: %w", err)
	}

	pool := make([]*worker, workers)
	for i := range pool {
		pool[i] = newWorker(i)
	}
	defer func() {
		// Every pending result has been collected by the time we get
		// here, so closing the work channels just lets the goroutines
		// drain and exit.
		for _, wk := range pool {
			close(wk.work)
		}
	}()

	var total uint32
	finished := false
	for !finished {
		for _, wk := range pool {
			block := make([]byte, BlockCapacity)
			n, err := io.ReadFull(r, block)
			switch err {
			case nil:
			case io.EOF:
				finished = true
			case io.ErrUnexpectedEOF:
				finished = true
			default:
				return fmt.Errorf("bzip2: reading input: %w", err)
			}
			if n > 0 {
				wk.send(block[:n])
			}
			if finished {
				break
			}
		}
		for _, wk := range pool {
			if !wk.pending {
				continue
			}
			if err := wk.collect(bw, &total); err != nil {
				return err
			}
		}
	}

	bw.WriteBits(endMagic, magicBits)
	bw.WriteBits(uint64(total), 32)
	if err := bw.Finalize(); err != nil {
		return fmt.Errorf("bzip2: writing output: %w", err)
	}
	return nil
}

// A blockType is the decision derived from a 6-byte stream marker:
// another block follows, or the stream is ending.
type blockType int

const (
	blockHeader blockType = iota
	streamFooter
)

// Decode decompresses r into w. It validates the stream header, then
// dispatches on 6-byte markers until the end-of-stream magic, delegating
// each block body to the block decoder. The 32-bit combined checksum in
// the footer is verified against the fold of the block checksums.
func Decode(r io.Reader, w io.Writer) error {
	br := bitio.NewReader(r)
	if err := readStreamHeader(br); err != nil {
		return err
	}

	var total uint32
	for {
		t, err := nextMarker(br)
		if err != nil {
			return err
		}
		if t == streamFooter {
			break
		}
		crc, err := decodeBlock(br, w)
		if err != nil {
			return err
		}
		total = combineCRC(total, crc)
	}

	stored, err := br.ReadBits(32)
	if err != nil {
		return err
	}
	if uint32(stored) != total {
		return FormatError("stream checksum mismatch")
	}
	return nil
}

// readStreamHeader checks the 4-byte stream header: the fixed "BZh"
// signature followed by one level byte, which this layer does not
// interpret.
func readStreamHeader(br *bitio.Reader) error {
	hdr, err := br.ReadBytes(4)
	if err != nil {
		return err
	}
	if hdr[0] != 'B' || hdr[1] != 'Z' || hdr[2] != 'h' {
		return FormatError("stream header signature mismatch")
	}
	return nil
}

// nextMarker reads the 6-byte magic that separates stream elements and
// decides what follows. Anything other than the two known magics is a
// fatal format error.
func nextMarker(br *bitio.Reader) (blockType, error) {
	magic, err := br.ReadBits(magicBits)
	if err != nil {
		return 0, err
	}
	switch magic {
	case blkMagic:
		return blockHeader, nil
	case endMagic:
		return streamFooter, nil
	default:
		return 0, FormatError("expected block start or stream end marker")
	}
}
