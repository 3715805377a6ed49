// https://github.com/usbarmory/microbits
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package chacha20 implements the ChaCha20 stream cipher (RFC 7539),
// grounded on the quarter-round/index-table layout of
// other_examples/92aa56f3_skeeto-chacha-go__chacha.go, generalized to
// support both the 12-byte (32-bit counter) and 8-byte (64-bit counter)
// nonce conventions spec.md §4.7 calls out.
package chacha20

import "encoding/binary"

const (
	// KEY is the ChaCha20 key size in bytes.
	KEY = 32
	// BLOCK is the ChaCha20 keystream block size in bytes.
	BLOCK = 64
)

var sigma = [4]uint32{0x61707865, 0x3320646e, 0x79622d32, 0x6b206574}

// quarterRoundIdx lists the (a, b, c, d) state indices visited by each of
// the 8 quarter rounds per double round (4 column rounds, then 4
// diagonal rounds).
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

// ChaCha20 implements the streaming ChaCha20 keystream generator.
type ChaCha20 struct {
	state  [16]uint32
	stream [BLOCK]byte
	used   int
}

// New returns a ChaCha20 context for a 12-byte nonce and 32-bit block
// counter (RFC 7539 §2.3), the conventional IETF variant.
func New(key, nonce []byte, counter uint32) *ChaCha20 {
	c := &ChaCha20{used: BLOCK}
	c.state[0], c.state[1], c.state[2], c.state[3] = sigma[0], sigma[1], sigma[2], sigma[3]

	for i := 0; i < 8; i++ {
		c.state[4+i] = binary.LittleEndian.Uint32(key[i*4:])
	}

	c.state[12] = counter
	c.state[13] = binary.LittleEndian.Uint32(nonce[0:4])
	c.state[14] = binary.LittleEndian.Uint32(nonce[4:8])
	c.state[15] = binary.LittleEndian.Uint32(nonce[8:12])

	return c
}

// NewWithCounter64 returns a ChaCha20 context for the original 8-byte
// nonce and 64-bit block counter convention (draft-strombergson, also
// used by some link layers this module's callers may need to match).
func NewWithCounter64(key, nonce []byte, counter uint64) *ChaCha20 {
	c := &ChaCha20{used: BLOCK}
	c.state[0], c.state[1], c.state[2], c.state[3] = sigma[0], sigma[1], sigma[2], sigma[3]

	for i := 0; i < 8; i++ {
		c.state[4+i] = binary.LittleEndian.Uint32(key[i*4:])
	}

	c.state[12] = uint32(counter)
	c.state[13] = uint32(counter >> 32)
	c.state[14] = binary.LittleEndian.Uint32(nonce[0:4])
	c.state[15] = binary.LittleEndian.Uint32(nonce[4:8])

	return c
}

func (c *ChaCha20) block() {
	var working [16]uint32
	copy(working[:], c.state[:])

	for round := 0; round < 10; round++ {
		for _, idx := range quarterRoundIdx {
			quarterRound(&working, idx[0], idx[1], idx[2], idx[3])
		}
	}

	for i := 0; i < 16; i++ {
		binary.LittleEndian.PutUint32(c.stream[i*4:], working[i]+c.state[i])
	}

	c.state[12]++
	if c.state[12] == 0 {
		c.state[13]++
	}
}

// XORKeyStream encrypts (or decrypts) src into dst by XORing it against
// the ChaCha20 keystream. dst and src may overlap exactly.
func (c *ChaCha20) XORKeyStream(dst, src []byte) {
	for i := 0; i < len(src); i++ {
		if c.used == BLOCK {
			c.block()
			c.used = 0
		}

		dst[i] = src[i] ^ c.stream[c.used]
		c.used++
	}
}
