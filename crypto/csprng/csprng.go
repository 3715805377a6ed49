// https://github.com/usbarmory/microbits
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package csprng implements the fast-key-erasure CSPRNG of spec.md §4.8:
// a ChaCha20-shaped 16-word state where words 4..11 are the re-keyable
// "key" region and words 12..13 are a 64-bit block counter, re-keyed
// from its own output after every block produced. Grounded on the
// re-keying idea in
// other_examples/44ec7c49_sixafter-nanoid__aes_ctr_drbg.go (there
// applied to an AES-CTR DRBG) and on the teacher's own
// fast-key-erasure-shaped internal/rng/aes.go prior to that package
// being dropped as hardware-register-bound (see DESIGN.md).
package csprng

import (
	"encoding/binary"

	"github.com/usbarmory/microbits/internal/ct"
)

var sigma = [4]uint32{0x61707865, 0x3320646e, 0x79622d32, 0x6b206574}

var quarterRoundIdx = [8][4]int{
	{0, 4, 8, 12}, {1, 5, 9, 13}, {2, 6, 10, 14}, {3, 7, 11, 15},
	{0, 5, 10, 15}, {1, 6, 11, 12}, {2, 7, 8, 13}, {3, 4, 9, 14},
}

func rotl32(x uint32, n uint) uint32 {
	return (x << n) | (x >> (32 - n))
}

func quarterRound(s *[16]uint32, a, b, c, d int) {
	s[a] += s[b]
	s[d] ^= s[a]
	s[d] = rotl32(s[d], 16)

	s[c] += s[d]
	s[b] ^= s[c]
	s[b] = rotl32(s[b], 12)

	s[a] += s[b]
	s[d] ^= s[a]
	s[d] = rotl32(s[d], 8)

	s[c] += s[d]
	s[b] ^= s[c]
	s[b] = rotl32(s[b], 7)
}

// CSPRNG implements the fast-key-erasure random generator.
type CSPRNG struct {
	state [16]uint32
}

// New returns a CSPRNG seeded entirely from zero state; callers must
// push entropy with PushEntropy before relying on its output for
// anything security-sensitive.
func New() *CSPRNG {
	c := &CSPRNG{}
	c.state[0], c.state[1], c.state[2], c.state[3] = sigma[0], sigma[1], sigma[2], sigma[3]
	return c
}

// block runs one ChaCha20-shaped permutation of the current state and
// returns the 64-byte (16-word) output block. It does not advance the
// counter or re-key; callers do that per spec.md §4.8.
func (c *CSPRNG) block() [64]byte {
	var working [16]uint32
	copy(working[:], c.state[:])

	for round := 0; round < 10; round++ {
		for _, idx := range quarterRoundIdx {
			quarterRound(&working, idx[0], idx[1], idx[2], idx[3])
		}
	}

	var out [64]byte
	for i := 0; i < 16; i++ {
		binary.LittleEndian.PutUint32(out[i*4:], working[i]+c.state[i])
	}

	return out
}

func (c *CSPRNG) incrementCounter() {
	c.state[12]++
	if c.state[12] == 0 {
		c.state[13]++
	}
}

func (c *CSPRNG) rekeyFrom(out *[64]byte, wordOffset int) {
	for i := 0; i < 8; i++ {
		word := binary.LittleEndian.Uint32(out[(wordOffset+i)*4:])
		c.state[4+i] ^= word
	}
}

// PushEntropy XORs up to 32 bytes at a time of data into the key region
// of the state, advancing one block and re-keying from the high half of
// its output after each chunk (spec.md §4.8).
func (c *CSPRNG) PushEntropy(data []byte) {
	for len(data) > 0 {
		n := len(data)
		if n > 32 {
			n = 32
		}

		chunk := data[:n]
		data = data[n:]

		for i := 0; i < n; i++ {
			word := i / 4
			shift := uint(i%4) * 8
			c.state[4+word] ^= uint32(chunk[i]) << shift
		}

		out := c.block()
		c.rekeyFrom(&out, 8)
		ct.Zero(out[:])
	}
}

// Generate fills buf with output bytes, re-keying from the low half of
// each block's keystream (fast-key-erasure) and incrementing the
// counter after every block. The output is not a long-term PRF and is
// unsuitable for seed expansion.
func (c *CSPRNG) Generate(buf []byte) {
	for len(buf) > 0 {
		out := c.block()

		n := len(buf)
		if n > 32 {
			n = 32
		}

		copy(buf[:n], out[32:32+n])
		buf = buf[n:]

		c.rekeyFrom(&out, 0)
		c.incrementCounter()
		ct.Zero(out[:])
	}
}
