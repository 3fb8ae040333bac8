package bzip2

import (
	"fmt"

	"github.com/DipayanP007/ribzip2/bitio"
)

type blockResult struct {
	bits *bitio.Buffer
	crc  uint32
}

// A worker owns one goroutine that compresses blocks, fed through a
// dedicated channel pair. The strict protocol is one send, then one
// collect; pending tracks whether a sent block's result is still
// outstanding. Closing the work channel is the only teardown signal.
type worker struct {
	id      int
	work    chan []byte
	results chan blockResult
	pending bool
}

func newWorker(id int) *worker {
	w := &worker{
		id:      id,
		work:    make(chan []byte, 1),
		results: make(chan blockResult, 1),
	}
	go w.run()
	return w
}

func (w *worker) run() {
	defer close(w.results)
	for block := range w.work {
		bits, crc := compressBlock(block)
		w.results <- blockResult{bits: bits, crc: crc}
	}
}

// send hands a block to the worker goroutine. It must not be called
// again until collect has retrieved the result. The channel is buffered,
// so send never blocks the control goroutine.
func (w *worker) send(block []byte) {
	w.pending = true
	w.work <- block
}

// collect blocks until the worker's result is ready, appends the
// compressed bits to bw, and folds the block checksum into total.
func (w *worker) collect(bw *bitio.Writer, total *uint32) error {
	res, ok := <-w.results
	if !ok {
		return fmt.Errorf("bzip2: worker %d stopped unexpectedly", w.id)
	}
	w.pending = false
	if err := res.bits.WriteBitsTo(bw); err != nil {
		return fmt.Errorf("bzip2: writing output: %w", err)
	}
	*total = combineCRC(*total, res.crc)
	return nil
}
