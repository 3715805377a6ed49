// https://github.com/usbarmory/microbits
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package sha2 implements SHA-256 and SHA-512 (FIPS 180-4) Merkle-Damgard
// compression with standard length padding, grounded on the compression
// state / partial-block / length-counter layout spec.md §4.3 describes
// and on this module's buffer-ownership conventions (no heap allocation
// beyond the fixed context).
package sha2

import "encoding/binary"

// SHA256_BLOCK and SHA256_OUTPUT are the block and digest sizes in bytes.
const (
	SHA256_BLOCK  = 64
	SHA256_OUTPUT = 32
)

var sha256K = [64]uint32{
	0x428a2f98, 0x71374491, 0xb5c0fbcf, 0xe9b5dba5, 0x3956c25b, 0x59f111f1, 0x923f82a4, 0xab1c5ed5,
	0xd807aa98, 0x12835b01, 0x243185be, 0x550c7dc3, 0x72be5d74, 0x80deb1fe, 0x9bdc06a7, 0xc19bf174,
	0xe49b69c1, 0xefbe4786, 0x0fc19dc6, 0x240ca1cc, 0x2de92c6f, 0x4a7484aa, 0x5cb0a9dc, 0x76f988da,
	0x983e5152, 0xa831c66d, 0xb00327c8, 0xbf597fc7, 0xc6e00bf3, 0xd5a79147, 0x06ca6351, 0x14292967,
	0x27b70a85, 0x2e1b2138, 0x4d2c6dfc, 0x53380d13, 0x650a7354, 0x766a0abb, 0x81c2c92e, 0x92722c85,
	0xa2bfe8a1, 0xa81a664b, 0xc24b8b70, 0xc76c51a3, 0xd192e819, 0xd6990624, 0xf40e3585, 0x106aa070,
	0x19a4c116, 0x1e376c08, 0x2748774c, 0x34b0bcb5, 0x391c0cb3, 0x4ed8aa4a, 0x5b9cca4f, 0x682e6ff3,
	0x748f82ee, 0x78a5636f, 0x84c87814, 0x8cc70208, 0x90befffa, 0xa4506ceb, 0xbef9a3f7, 0xc67178f2,
}

var sha256Init = [8]uint32{
	0x6a09e667, 0xbb67ae85, 0x3c6ef372, 0xa54ff53a,
	0x510e527f, 0x9b05688c, 0x1f83d9ab, 0x5be0cd19,
}

func rotr32(x uint32, n uint) uint32 {
	return (x >> n) | (x << (32 - n))
}

// SHA256 implements the streaming SHA-256 hash context.
type SHA256 struct {
	h       [8]uint32
	block   [SHA256_BLOCK]byte
	pending int
	length  uint64
}

// NewSHA256 returns a SHA-256 context ready for Update.
func NewSHA256() *SHA256 {
	h := &SHA256{}
	h.Reset()
	return h
}

func (h *SHA256) BLOCK() int  { return SHA256_BLOCK }
func (h *SHA256) OUTPUT() int { return SHA256_OUTPUT }

// Reset returns the context to the initial state.
func (h *SHA256) Reset() {
	h.h = sha256Init
	h.pending = 0
	h.length = 0
}

func (h *SHA256) compress(block []byte) {
	var w [64]uint32

	for i := 0; i < 16; i++ {
		w[i] = binary.BigEndian.Uint32(block[i*4:])
	}

	for i := 16; i < 64; i++ {
		s0 := rotr32(w[i-15], 7) ^ rotr32(w[i-15], 18) ^ (w[i-15] >> 3)
		s1 := rotr32(w[i-2], 17) ^ rotr32(w[i-2], 19) ^ (w[i-2] >> 10)
		w[i] = w[i-16] + s0 + w[i-7] + s1
	}

	a, b, c, d, e, f, g, hh := h.h[0], h.h[1], h.h[2], h.h[3], h.h[4], h.h[5], h.h[6], h.h[7]

	for i := 0; i < 64; i++ {
		s1 := rotr32(e, 6) ^ rotr32(e, 11) ^ rotr32(e, 25)
		ch := (e & f) ^ (^e & g)
		t1 := hh + s1 + ch + sha256K[i] + w[i]
		s0 := rotr32(a, 2) ^ rotr32(a, 13) ^ rotr32(a, 22)
		maj := (a & b) ^ (a & c) ^ (b & c)
		t2 := s0 + maj

		hh, g, f, e, d, c, b, a = g, f, e, d+t1, c, b, a, t1+t2
	}

	h.h[0] += a
	h.h[1] += b
	h.h[2] += c
	h.h[3] += d
	h.h[4] += e
	h.h[5] += f
	h.h[6] += g
	h.h[7] += hh
}

// Update absorbs len(p) bytes of message data.
func (h *SHA256) Update(p []byte) {
	h.length += uint64(len(p))

	if h.pending > 0 {
		n := copy(h.block[h.pending:], p)
		h.pending += n
		p = p[n:]

		if h.pending < SHA256_BLOCK {
			return
		}

		h.compress(h.block[:])
		h.pending = 0
	}

	for len(p) >= SHA256_BLOCK {
		h.compress(p[:SHA256_BLOCK])
		p = p[SHA256_BLOCK:]
	}

	h.pending = copy(h.block[:], p)
}

// Finish appends the 0x80 terminator, zero fill and big-endian bit-length
// trailer, writes the digest into digest (32 bytes), and resets the
// context to the initial state.
func (h *SHA256) Finish(digest []byte) {
	bitLen := h.length * 8

	var pad [SHA256_BLOCK + 8]byte
	pad[0] = 0x80

	padLen := 56 - h.pending%SHA256_BLOCK
	if padLen <= 0 {
		padLen += SHA256_BLOCK
	}

	h.Update(pad[:padLen])
	// Update above rolled h.length forward; restore and write the real
	// bit length explicitly below instead of relying on h.length which
	// now also counts the padding bytes.
	h.length -= uint64(padLen)

	var lenBuf [8]byte
	binary.BigEndian.PutUint64(lenBuf[:], bitLen)

	saved := h.pending
	copy(h.block[saved:], lenBuf[:])
	h.compress(h.block[:])

	for i := 0; i < 8; i++ {
		binary.BigEndian.PutUint32(digest[i*4:], h.h[i])
	}

	h.Reset()
}

// Sum256 returns the SHA-256 digest of p.
func Sum256(p []byte) [32]byte {
	var out [32]byte
	h := NewSHA256()
	h.Update(p)
	h.Finish(out[:])
	return out
}
