package bzip2

// Initial run-length encoding: a run of 4 to 259 identical bytes is
// stored as four copies followed by a count byte holding the run length
// minus 4. Runs shorter than 4 are stored verbatim; longer runs restart.

func rle1Encode(dst, src []byte) []byte {
	i := 0
	for i < len(src) {
		b := src[i]
		run := 1
		for i+run < len(src) && run < 259 && src[i+run] == b {
			run++
		}
		if run < 4 {
			for j := 0; j < run; j++ {
				dst = append(dst, b)
			}
		} else {
			dst = append(dst, b, b, b, b, byte(run-4))
		}
		i += run
	}
	return dst
}

func rle1Decode(dst, src []byte) ([]byte, error) {
	i := 0
	for i < len(src) {
		b := src[i]
		n := 1
		for i+n < len(src) && n < 4 && src[i+n] == b {
			n++
		}
		for j := 0; j < n; j++ {
			dst = append(dst, b)
		}
		i += n
		if n == 4 {
			if i >= len(src) {
				return nil, FormatError("truncated run length")
			}
			for j := 0; j < int(src[i]); j++ {
				dst = append(dst, b)
			}
			i++
		}
	}
	return dst, nil
}
