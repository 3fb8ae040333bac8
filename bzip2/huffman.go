package bzip2

import (
	"container/heap"

	"github.com/DipayanP007/ribzip2/bitio"
)

const (
	// groupSize is the number of symbols coded with one table before the
	// next selector takes effect.
	groupSize = 50

	// maxCodeLenEnc caps the code lengths the encoder produces;
	// maxCodeLenDec is the format limit the decoder accepts.
	maxCodeLenEnc = 17
	maxCodeLenDec = 20
)

// chooseNumGroups mirrors the table counts the reference implementation
// picks for a given symbol count.
func chooseNumGroups(nSyms int) int {
	switch {
	case nSyms < 200:
		return 2
	case nSyms < 600:
		return 3
	case nSyms < 1200:
		return 4
	case nSyms < 2400:
		return 5
	default:
		return 6
	}
}

// buildGroupTables computes the per-group code length tables and the
// selector for every 50-symbol chunk. Chunks start on a round-robin
// assignment and are then repeatedly reassigned to whichever table codes
// them cheapest, with the tables rebuilt from the frequencies they end up
// serving.
func buildGroupTables(syms []uint16, alpha int) (tables [][]uint8, selectors []uint8) {
	nGroups := chooseNumGroups(len(syms))
	nChunks := (len(syms) + groupSize - 1) / groupSize

	selectors = make([]uint8, nChunks)
	for i := range selectors {
		selectors[i] = uint8(i % nGroups)
	}

	tables = make([][]uint8, nGroups)
	const iterations = 4
	for it := 0; it < iterations; it++ {
		freqs := make([][]int, nGroups)
		for g := range freqs {
			freqs[g] = make([]int, alpha)
		}
		for i, s := range syms {
			freqs[selectors[i/groupSize]][s]++
		}
		for g := range tables {
			tables[g] = buildLengths(freqs[g], maxCodeLenEnc)
		}
		if it == iterations-1 {
			break
		}
		for c := 0; c < nChunks; c++ {
			start := c * groupSize
			end := start + groupSize
			if end > len(syms) {
				end = len(syms)
			}
			best, bestCost := 0, int(^uint(0)>>1)
			for g := 0; g < nGroups; g++ {
				cost := 0
				for _, s := range syms[start:end] {
					cost += int(tables[g][s])
				}
				if cost < bestCost {
					best, bestCost = g, cost
				}
			}
			selectors[c] = uint8(best)
		}
	}
	return tables, selectors
}

// buildLengths computes Huffman code lengths for the given frequencies,
// capped at maxLen. Zero frequencies are bumped to one so every symbol
// gets a code; if the tree comes out too deep the weights are flattened
// and the tree rebuilt, as the reference implementation does.
func buildLengths(freqs []int, maxLen int) []uint8 {
	weights := make([]int, len(freqs))
	for i, f := range freqs {
		if f < 1 {
			f = 1
		}
		weights[i] = f
	}
	for {
		lengths := huffmanLengths(weights)
		tooDeep := false
		for _, l := range lengths {
			if int(l) > maxLen {
				tooDeep = true
				break
			}
		}
		if !tooDeep {
			return lengths
		}
		for i, w := range weights {
			weights[i] = 1 + w/2
		}
	}
}

type huffNode struct {
	weight int
	parent int
}

type huffHeap struct {
	nodes *[]huffNode
	order []int
}

func (h huffHeap) Len() int { return len(h.order) }
func (h huffHeap) Less(i, j int) bool {
	a, b := h.order[i], h.order[j]
	if (*h.nodes)[a].weight != (*h.nodes)[b].weight {
		return (*h.nodes)[a].weight < (*h.nodes)[b].weight
	}
	return a < b
}
func (h huffHeap) Swap(i, j int) { h.order[i], h.order[j] = h.order[j], h.order[i] }

func (h *huffHeap) Push(x any) { h.order = append(h.order, x.(int)) }

func (h *huffHeap) Pop() any {
	old := h.order
	n := len(old)
	x := old[n-1]
	h.order = old[:n-1]
	return x
}

func huffmanLengths(weights []int) []uint8 {
	n := len(weights)
	if n == 1 {
		return []uint8{1}
	}
	nodes := make([]huffNode, n, 2*n-1)
	for i, w := range weights {
		nodes[i] = huffNode{weight: w, parent: -1}
	}
	h := &huffHeap{nodes: &nodes, order: make([]int, n)}
	for i := range h.order {
		h.order[i] = i
	}
	heap.Init(h)
	for h.Len() > 1 {
		a := heap.Pop(h).(int)
		b := heap.Pop(h).(int)
		nodes = append(nodes, huffNode{weight: nodes[a].weight + nodes[b].weight, parent: -1})
		idx := len(nodes) - 1
		nodes[a].parent = idx
		nodes[b].parent = idx
		heap.Push(h, idx)
	}

	lengths := make([]uint8, n)
	for i := 0; i < n; i++ {
		depth := 0
		for p := nodes[i].parent; p != -1; p = nodes[p].parent {
			depth++
		}
		lengths[i] = uint8(depth)
	}
	return lengths
}

// assignCodes maps code lengths to canonical codes: codes are handed out
// in increasing value, shortest lengths first, ties broken by symbol
// order. This matches the assignment every bzip2 decoder reconstructs
// from the lengths alone.
func assignCodes(lengths []uint8) []uint32 {
	minLen, maxLen := codeLenRange(lengths)
	codes := make([]uint32, len(lengths))
	vec := uint32(0)
	for l := minLen; l <= maxLen; l++ {
		for sym, sl := range lengths {
			if uint(sl) == l {
				codes[sym] = vec
				vec++
			}
		}
		vec <<= 1
	}
	return codes
}

func codeLenRange(lengths []uint8) (minLen, maxLen uint) {
	minLen, maxLen = uint(lengths[0]), uint(lengths[0])
	for _, l := range lengths[1:] {
		if uint(l) < minLen {
			minLen = uint(l)
		}
		if uint(l) > maxLen {
			maxLen = uint(l)
		}
	}
	return minLen, maxLen
}

// A huffmanTable decodes canonical codes one bit at a time.
type huffmanTable struct {
	minLen, maxLen uint
	first          [maxCodeLenDec + 1]uint32
	count          [maxCodeLenDec + 1]uint32
	base           [maxCodeLenDec + 1]int
	perm           []uint16
}

func newHuffmanTable(lengths []uint8) (*huffmanTable, error) {
	t := &huffmanTable{perm: make([]uint16, 0, len(lengths))}
	t.minLen, t.maxLen = codeLenRange(lengths)
	if t.minLen < 1 || t.maxLen > maxCodeLenDec {
		return nil, FormatError("code length out of range")
	}
	code := uint32(0)
	for l := t.minLen; l <= t.maxLen; l++ {
		t.first[l] = code
		t.base[l] = len(t.perm)
		for sym, sl := range lengths {
			if uint(sl) == l {
				t.perm = append(t.perm, uint16(sym))
				t.count[l]++
			}
		}
		code += t.count[l]
		if code > 1<<l {
			return nil, FormatError("oversubscribed huffman code")
		}
		code <<= 1
	}
	return t, nil
}

func (t *huffmanTable) decode(br *bitio.Reader) (uint16, error) {
	code := uint32(0)
	for l := uint(1); l <= t.maxLen; l++ {
		bit, err := br.ReadBits(1)
		if err != nil {
			return 0, err
		}
		code = code<<1 | uint32(bit)
		if l >= t.minLen && t.count[l] > 0 && code >= t.first[l] && code < t.first[l]+t.count[l] {
			return t.perm[t.base[l]+int(code-t.first[l])], nil
		}
	}
	return 0, FormatError("invalid huffman code")
}

// writeLengths serializes one table as the 5-bit starting length followed
// by unit increments and decrements per symbol.
func writeLengths(buf *bitio.Buffer, lengths []uint8) {
	cur := int(lengths[0])
	buf.WriteBits(uint64(cur), 5)
	for _, l := range lengths {
		for cur < int(l) {
			buf.WriteBits(0b10, 2)
			cur++
		}
		for cur > int(l) {
			buf.WriteBits(0b11, 2)
			cur--
		}
		buf.WriteBits(0, 1)
	}
}

// readLengths parses one table's code lengths for an alphabet of the
// given size.
func readLengths(br *bitio.Reader, alpha int) ([]uint8, error) {
	v, err := br.ReadBits(5)
	if err != nil {
		return nil, err
	}
	cur := int(v)
	lengths := make([]uint8, alpha)
	for i := range lengths {
		for {
			if cur < 1 || cur > maxCodeLenDec {
				return nil, FormatError("code length out of range")
			}
			bit, err := br.ReadBits(1)
			if err != nil {
				return nil, err
			}
			if bit == 0 {
				break
			}
			bit, err = br.ReadBits(1)
			if err != nil {
				return nil, err
			}
			if bit == 0 {
				cur++
			} else {
				cur--
			}
		}
		lengths[i] = uint8(cur)
	}
	return lengths, nil
}
