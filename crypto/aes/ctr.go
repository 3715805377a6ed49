// https://github.com/usbarmory/microbits
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package aes

// CTR implements AES-CTR streaming encryption/decryption: a 128-bit
// counter block is encrypted and XORed against the keystream, with the
// counter incremented last-byte-first (big-endian, wrapping through the
// whole 16-byte block on overflow) after every block produced.
type CTR struct {
	cipher  *AES
	counter [BLOCK]byte
	stream  [BLOCK]byte
	used    int
}

// NewCTR returns a CTR context seeded with the given 16-byte initial
// counter/nonce block.
func NewCTR(cipher *AES, iv []byte) *CTR {
	c := &CTR{cipher: cipher, used: BLOCK}
	copy(c.counter[:], iv[:BLOCK])
	return c
}

func (c *CTR) incrementCounter() {
	for i := BLOCK - 1; i >= 0; i-- {
		c.counter[i]++
		if c.counter[i] != 0 {
			break
		}
	}
}

// XORKeyStream encrypts (or, symmetrically, decrypts) src into dst by
// XORing it against the AES-CTR keystream. dst and src may overlap
// exactly.
func (c *CTR) XORKeyStream(dst, src []byte) {
	for i := 0; i < len(src); i++ {
		if c.used == BLOCK {
			c.cipher.EncryptBlock(c.stream[:], c.counter[:])
			c.incrementCounter()
			c.used = 0
		}

		dst[i] = src[i] ^ c.stream[c.used]
		c.used++
	}
}
