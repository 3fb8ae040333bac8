// Package bitio provides bit-granular reading and writing on top of
// ordinary byte streams. Bits are packed MSB-first: the first bit written
// becomes the highest bit of the first output byte, which is the packing
// order used by the bzip2 container format.
package bitio
