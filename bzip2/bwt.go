package bzip2

import "sort"

// bwTransform computes the Burrows-Wheeler transform of s: the last
// column of the sorted matrix of all cyclic rotations, plus the row index
// at which s itself appears. Rotations are sorted by prefix doubling,
// which stays O(n log² n) even on the highly repetitive blocks that
// defeat a naive comparison sort.
func bwTransform(s []byte) ([]byte, int) {
	n := len(s)
	if n == 0 {
		return nil, 0
	}
	sa := make([]int, n)
	rank := make([]int, n)
	next := make([]int, n)
	for i := range sa {
		sa[i] = i
		rank[i] = int(s[i])
	}
	for k := 1; k < n; k <<= 1 {
		sort.Slice(sa, func(a, b int) bool {
			ra, rb := sa[a], sa[b]
			if rank[ra] != rank[rb] {
				return rank[ra] < rank[rb]
			}
			return rank[(ra+k)%n] < rank[(rb+k)%n]
		})
		next[sa[0]] = 0
		for i := 1; i < n; i++ {
			prev, cur := sa[i-1], sa[i]
			r := next[prev]
			if rank[cur] != rank[prev] || rank[(cur+k)%n] != rank[(prev+k)%n] {
				r++
			}
			next[cur] = r
		}
		copy(rank, next)
		if rank[sa[n-1]] == n-1 {
			break
		}
	}

	last := make([]byte, n)
	origPtr := 0
	for i, start := range sa {
		last[i] = s[(start+n-1)%n]
		if start == 0 {
			origPtr = i
		}
	}
	return last, origPtr
}

// bwInverse reconstructs the original data from the last column and the
// row index of the original rotation, walking the LF mapping backwards.
func bwInverse(last []byte, origPtr int) []byte {
	n := len(last)
	if n == 0 {
		return nil
	}
	var counts [256]int
	for _, b := range last {
		counts[b]++
	}
	var base [256]int
	sum := 0
	for v := 0; v < 256; v++ {
		base[v] = sum
		sum += counts[v]
	}
	lf := make([]int, n)
	for i, b := range last {
		lf[i] = base[b]
		base[b]++
	}

	out := make([]byte, n)
	r := origPtr
	for i := n - 1; i >= 0; i-- {
		out[i] = last[r]
		r = lf[r]
	}
	return out
}
