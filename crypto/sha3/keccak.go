// https://github.com/usbarmory/microbits
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package sha3 implements the Keccak-f[1600] sponge permutation and the
// SHA-3, SHAKE and KMAC constructions built on top of it (FIPS 202, NIST
// SP 800-185).
//
// The permutation and its streaming absorb/squeeze primitive are grounded
// on the 25-lane state layout used by
// other_examples/a9ae310d_Giulio2002-fastkeccak__keccak.go; byte-level
// framing details (bytepad headers, trailer bytes) follow
// original_source/src/crypto/src/hash/sha3_keccak1600.cpp and
// sha3_kmac.cpp where spec.md is silent on exact byte order.
package sha3

// stateSize is the width of the Keccak-f[1600] state in bytes.
const stateSize = 200

// rounds is the number of Keccak-f[1600] permutation rounds.
const rounds = 24

// roundConstants are the 24 Keccak-f[1600] round constants. Each has
// nonzero bits only at the seven LFSR tap positions (2^j-1 for j in
// 0..6); spec.md §4.2 calls out four of these (bits 0, 15,
// 31 and 63) as the basis for a compact on-device table, but the
// permutation below consumes the expanded 64-bit form directly.
var roundConstants = [rounds]uint64{
	0x0000000000000001, 0x0000000000008082, 0x800000000000808a, 0x8000000080008000,
	0x000000000000808b, 0x0000000080000001, 0x8000000080008081, 0x8000000000008009,
	0x000000000000008a, 0x0000000000000088, 0x0000000080008009, 0x000000008000000a,
	0x000000008000808b, 0x800000000000008b, 0x8000000000008089, 0x8000000000008003,
	0x8000000000008002, 0x8000000000000080, 0x000000000000800a, 0x800000008000000a,
	0x8000000080008081, 0x8000000000008080, 0x0000000080000001, 0x8000000080008008,
}

// rotationConstants are the per-round rho rotation offsets, indexed in
// the same traversal order as pilanes below.
var rotationConstants = [rounds]uint{
	1, 3, 6, 10, 15, 21, 28, 36, 45, 55, 2, 14,
	27, 41, 56, 8, 25, 43, 62, 18, 39, 61, 20, 44,
}

// pilanes is the lane index visited at each step of the combined rho+pi
// pass.
var pilanes = [rounds]int{
	10, 7, 11, 17, 18, 3, 5, 16, 8, 21, 24, 4,
	15, 23, 19, 13, 12, 2, 20, 14, 22, 9, 6, 1,
}

func rotl64(x uint64, n uint) uint64 {
	return (x << n) | (x >> (64 - n))
}

// permute applies the 24-round Keccak-f[1600] permutation to the 25-lane
// state a.
func permute(a *[25]uint64) {
	var bc [5]uint64

	for round := 0; round < rounds; round++ {
		// theta
		for i := 0; i < 5; i++ {
			bc[i] = a[i] ^ a[i+5] ^ a[i+10] ^ a[i+15] ^ a[i+20]
		}

		for i := 0; i < 5; i++ {
			t := bc[(i+4)%5] ^ rotl64(bc[(i+1)%5], 1)
			for j := 0; j < 25; j += 5 {
				a[j+i] ^= t
			}
		}

		// rho + pi
		t := a[1]
		for i := 0; i < 24; i++ {
			j := pilanes[i]
			t, a[j] = a[j], rotl64(t, rotationConstants[i])
		}

		// chi
		for j := 0; j < 25; j += 5 {
			bc[0], bc[1], bc[2], bc[3], bc[4] = a[j], a[j+1], a[j+2], a[j+3], a[j+4]

			for i := 0; i < 5; i++ {
				a[j+i] = bc[i] ^ ((^bc[(i+1)%5]) & bc[(i+2)%5])
			}
		}

		// iota
		a[0] ^= roundConstants[round]
	}
}

// state implements the 200-byte Keccak streaming absorb/squeeze
// primitive described by spec.md §4.2. The rate is set by the wrapping
// construction (SHA-3, SHAKE or KMAC), not hard-coded here.
type state struct {
	lanes [25]uint64
	rate  int
	ptr   int

	squeezing bool
}

func (s *state) reset() {
	for i := range s.lanes {
		s.lanes[i] = 0
	}
	s.ptr = 0
	s.squeezing = false
}

func (s *state) byteAt(i int) byte {
	lane := i / 8
	shift := uint(i%8) * 8
	return byte(s.lanes[lane] >> shift)
}

func (s *state) xorByteAt(i int, v byte) {
	lane := i / 8
	shift := uint(i%8) * 8
	s.lanes[lane] ^= uint64(v) << shift
}

// consume XORs buf into the state at the current write pointer, applying
// the permutation whenever the pointer reaches the rate.
func (s *state) consume(buf []byte) {
	for _, b := range buf {
		s.xorByteAt(s.ptr, b)
		s.ptr++

		if s.ptr == s.rate {
			permute(&s.lanes)
			s.ptr = 0
		}
	}
}

// align forces a permutation and resets the write pointer if bytes are
// pending in the current block, equivalent to zero-padding the absorbed
// data up to a rate boundary (used by cSHAKE/KMAC bytepad framing).
func (s *state) align() {
	if s.ptr != 0 {
		permute(&s.lanes)
		s.ptr = 0
	}
}

// finish XORs the domain-separator trailer at the current pointer, XORs
// the final padding bit at byte rate-1, permutes, and resets the pointer
// ready for squeezing.
func (s *state) finish(trailer byte) {
	s.xorByteAt(s.ptr, trailer)
	s.xorByteAt(s.rate-1, 0x80)
	permute(&s.lanes)
	s.ptr = 0
	s.squeezing = true
}

// produce copies bytes out of the state starting at the write pointer,
// advancing and re-permuting on a rate boundary.
func (s *state) produce(buf []byte) {
	for i := range buf {
		buf[i] = s.byteAt(s.ptr)
		s.ptr++

		if s.ptr == s.rate {
			permute(&s.lanes)
			s.ptr = 0
		}
	}
}
