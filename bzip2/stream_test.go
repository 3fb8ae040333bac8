package bzip2

import (
	"bytes"
	stdbzip2 "compress/bzip2"
	"io"
	"math/rand"
	"testing"

	dsbzip2 "github.com/dsnet/compress/bzip2"
	kpgzip "github.com/klauspost/compress/gzip"

	"github.com/DipayanP007/ribzip2/bitio"
)

// testCorpus generates deterministic compressible pseudo-text.
func testCorpus(n int) []byte {
	words := []string{"stream", "block", "worker", "channel", "checksum",
		"marker", "rotate", "gather", "scatter", "round"}
	rng := rand.New(rand.NewSource(99))
	var b bytes.Buffer
	for b.Len() < n {
		b.WriteString(words[rng.Intn(len(words))])
		b.WriteByte(' ')
	}
	return b.Bytes()[:n]
}

func encode(t testing.TB, data []byte, workers int) []byte {
	t.Helper()
	out := new(bytes.Buffer)
	if err := Encode(bytes.NewReader(data), out, workers); err != nil {
		t.Fatal(err)
	}
	return out.Bytes()
}

func decode(t *testing.T, compressed []byte) []byte {
	t.Helper()
	out := new(bytes.Buffer)
	if err := Decode(bytes.NewReader(compressed), out); err != nil {
		t.Fatal(err)
	}
	return out.Bytes()
}

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	random := make([]byte, 4096)
	rng.Read(random)

	inputs := [][]byte{
		{},
		{'x'},
		testCorpus(100),
		random,
		testCorpus(100000),
	}
	for _, workers := range []int{1, 2, 4, 8} {
		for _, in := range inputs {
			got := decode(t, encode(t, in, workers))
			if !bytes.Equal(got, in) {
				t.Fatalf("round trip mismatch: %d bytes, %d workers", len(in), workers)
			}
		}
	}
}

// runCorpus generates data in long runs so the RLE stage collapses it
// and multi-block inputs stay cheap to transform, while every block
// still has distinct content.
func runCorpus(n int) []byte {
	out := make([]byte, 0, n)
	for i := 0; len(out) < n; i++ {
		out = append(out, bytes.Repeat([]byte{byte(i*37 + i/253)}, 200)...)
	}
	return out[:n]
}

func TestOutputIndependentOfWorkerCount(t *testing.T) {
	// Four blocks' worth, so scheduling spans several rounds for small
	// pools and a partial round for large ones.
	in := runCorpus(3*BlockCapacity + 1000)
	ref := encode(t, in, 1)
	for _, workers := range []int{2, 3, 8} {
		if got := encode(t, in, workers); !bytes.Equal(got, ref) {
			t.Fatalf("output with %d workers differs from single-worker output", workers)
		}
	}
	if got := decode(t, ref); !bytes.Equal(got, in) {
		t.Fatal("multi-block round trip mismatch")
	}
}

func TestEncodeRejectsBadWorkerCount(t *testing.T) {
	if err := Encode(bytes.NewReader(nil), io.Discard, 0); err == nil {
		t.Fatal("expected an error for zero workers")
	}
}

func TestHeaderValidation(t *testing.T) {
	for _, hdr := range []string{"BZh9", "BZh1", "BZhx"} {
		br := bitio.NewReader(bytes.NewReader([]byte(hdr)))
		if err := readStreamHeader(br); err != nil {
			t.Errorf("header %q rejected: %v", hdr, err)
		}
	}
	for _, hdr := range []string{"bZh9", "BYh9", "BZg9", "\x00Zh9"} {
		br := bitio.NewReader(bytes.NewReader([]byte(hdr)))
		err := readStreamHeader(br)
		if _, ok := err.(FormatError); !ok {
			t.Errorf("header %q: got %v, want FormatError", hdr, err)
		}
	}
}

func TestMarkerDispatch(t *testing.T) {
	br := bitio.NewReader(bytes.NewReader([]byte{0x31, 0x41, 0x59, 0x26, 0x53, 0x59}))
	if bt, err := nextMarker(br); err != nil || bt != blockHeader {
		t.Errorf("block magic: got %v, %v", bt, err)
	}

	br = bitio.NewReader(bytes.NewReader([]byte{0x17, 0x72, 0x45, 0x38, 0x50, 0x90}))
	if bt, err := nextMarker(br); err != nil || bt != streamFooter {
		t.Errorf("end magic: got %v, %v", bt, err)
	}

	br = bitio.NewReader(bytes.NewReader([]byte{0, 1, 2, 3, 4, 5}))
	_, err := nextMarker(br)
	if _, ok := err.(FormatError); !ok {
		t.Errorf("junk marker: got %v, want FormatError", err)
	}
}

// walkBlocks parses a compressed stream structurally and returns the
// decoded length of each block.
func walkBlocks(t *testing.T, compressed []byte) []int {
	t.Helper()
	br := bitio.NewReader(bytes.NewReader(compressed))
	if err := readStreamHeader(br); err != nil {
		t.Fatal(err)
	}
	var sizes []int
	for {
		bt, err := nextMarker(br)
		if err != nil {
			t.Fatal(err)
		}
		if bt == streamFooter {
			return sizes
		}
		out := new(bytes.Buffer)
		if _, err := decodeBlock(br, out); err != nil {
			t.Fatal(err)
		}
		sizes = append(sizes, out.Len())
	}
}

func TestChunkingBoundary(t *testing.T) {
	exact := encode(t, make([]byte, BlockCapacity), 2)
	if sizes := walkBlocks(t, exact); len(sizes) != 1 || sizes[0] != BlockCapacity {
		t.Fatalf("capacity-sized input: got blocks %v", sizes)
	}

	over := encode(t, make([]byte, BlockCapacity+1), 2)
	sizes := walkBlocks(t, over)
	if len(sizes) != 2 || sizes[0] != BlockCapacity || sizes[1] != 1 {
		t.Fatalf("capacity+1 input: got blocks %v", sizes)
	}
}

func TestEndToEndZeros(t *testing.T) {
	in := make([]byte, 1500000)
	compressed := encode(t, in, 3)

	if !bytes.Equal(compressed[:4], streamHeader) {
		t.Fatalf("stream starts with %x", compressed[:4])
	}
	sizes := walkBlocks(t, compressed)
	want := []int{720000, 720000, 60000}
	if len(sizes) != len(want) {
		t.Fatalf("got %d blocks, want %d", len(sizes), len(want))
	}
	for i := range want {
		if sizes[i] != want[i] {
			t.Fatalf("block sizes %v, want %v", sizes, want)
		}
	}
	if got := decode(t, compressed); !bytes.Equal(got, in) {
		t.Fatal("decoded zeros do not match input")
	}
}

func TestEmptyStream(t *testing.T) {
	compressed := encode(t, nil, 4)
	if sizes := walkBlocks(t, compressed); len(sizes) != 0 {
		t.Fatalf("empty input produced %d blocks", len(sizes))
	}
	if got := decode(t, compressed); len(got) != 0 {
		t.Fatalf("decoded %d bytes from empty stream", len(got))
	}
}

func TestStreamChecksumMismatch(t *testing.T) {
	compressed := encode(t, testCorpus(1000), 1)
	// The combined checksum is the final 32 bits before padding; the
	// stream here is under one block so the last byte is part of it.
	compressed[len(compressed)-1] ^= 0xff
	err := Decode(bytes.NewReader(compressed), io.Discard)
	if err == nil {
		t.Fatal("expected an error for a corrupted stream checksum")
	}
}

// The stdlib decoder is an independent implementation; it proves the
// encoder emits canonical bzip2, checksums included.
func TestStdlibDecodesOutput(t *testing.T) {
	inputs := [][]byte{
		{},
		testCorpus(1000),
		testCorpus(250000),
		make([]byte, 300000),
	}
	rng := rand.New(rand.NewSource(11))
	random := make([]byte, 50000)
	rng.Read(random)
	inputs = append(inputs, random)

	for _, in := range inputs {
		compressed := encode(t, in, 2)
		got, err := io.ReadAll(stdbzip2.NewReader(bytes.NewReader(compressed)))
		if err != nil {
			t.Fatalf("stdlib decode of %d-byte input: %v", len(in), err)
		}
		if !bytes.Equal(got, in) {
			t.Fatalf("stdlib decode mismatch for %d-byte input", len(in))
		}
	}
}

// And the other direction: the decoder handles streams produced by an
// independent encoder.
func TestDecodeForeignStream(t *testing.T) {
	in := testCorpus(100000)
	buf := new(bytes.Buffer)
	zw, err := dsbzip2.NewWriter(buf, &dsbzip2.WriterConfig{Level: dsbzip2.BestCompression})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := zw.Write(in); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	if got := decode(t, buf.Bytes()); !bytes.Equal(got, in) {
		t.Fatal("decode of foreign stream does not match input")
	}
}

type flakyReader struct {
	data []byte
	err  error
}

func (r *flakyReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, r.err
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

func TestEncodeReadErrorIsFatal(t *testing.T) {
	r := &flakyReader{data: testCorpus(1000), err: io.ErrNoProgress}
	err := Encode(r, io.Discard, 2)
	if err == nil {
		t.Fatal("expected a read error to abort encoding")
	}
}

func benchmarkEncode(b *testing.B, workers int) {
	data := testCorpus(1 << 20)
	b.SetBytes(int64(len(data)))
	buf := new(bytes.Buffer)
	if err := Encode(bytes.NewReader(data), buf, workers); err != nil {
		b.Fatal(err)
	}
	b.ReportMetric(float64(len(data))/float64(buf.Len()), "ratio")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := Encode(bytes.NewReader(data), io.Discard, workers); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEncode(b *testing.B)         { benchmarkEncode(b, 1) }
func BenchmarkEncodeParallel(b *testing.B) { benchmarkEncode(b, 4) }

// BenchmarkGzipBaseline compresses the same corpus with gzip so the
// ratio metrics can be compared directly.
func BenchmarkGzipBaseline(b *testing.B) {
	data := testCorpus(1 << 20)
	b.SetBytes(int64(len(data)))
	buf := new(bytes.Buffer)
	zw := kpgzip.NewWriter(buf)
	zw.Write(data)
	zw.Close()
	b.ReportMetric(float64(len(data))/float64(buf.Len()), "ratio")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		zw.Reset(io.Discard)
		zw.Write(data)
		zw.Close()
	}
}
