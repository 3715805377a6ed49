// https://github.com/usbarmory/microbits
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package sha3

// sha3Trailer is the domain-separation trailer byte for plain SHA-3
// (FIPS 202 §6.1): the suffix bits '01' followed by the sponge padding
// start bit.
const sha3Trailer = 0x06

// SHA3 implements the fixed-output SHA-3 construction over Keccak-f[1600]
// (FIPS 202 §6.1). The rate is 200 - 2*size bytes; reset reinitializes the
// sponge to the absorbing phase.
type SHA3 struct {
	s    state
	size int
}

// NewSHA3 returns a SHA-3 context producing digests of size bytes (28 for
// SHA3-224, 32 for SHA3-256, 48 for SHA3-384, 64 for SHA3-512).
func NewSHA3(size int) *SHA3 {
	h := &SHA3{size: size}
	h.Reset()
	return h
}

// BLOCK returns the sponge rate in bytes, used as the HMAC block size.
func (h *SHA3) BLOCK() int { return h.s.rate }

// OUTPUT returns the digest size in bytes.
func (h *SHA3) OUTPUT() int { return h.size }

// Reset reinitializes the context to the initial absorbing state.
func (h *SHA3) Reset() {
	h.s.reset()
	h.s.rate = stateSize - 2*h.size
}

// Update absorbs len(p) bytes of message data. Only valid while absorbing.
func (h *SHA3) Update(p []byte) {
	h.s.consume(p)
}

// Finish finalizes the sponge and writes the digest into digest, which
// must be exactly OUTPUT() bytes long. The context is reset to the
// initial state afterwards.
func (h *SHA3) Finish(digest []byte) {
	h.s.finish(sha3Trailer)
	h.s.produce(digest[:h.size])
	h.Reset()
}

// Sum224 returns the SHA3-224 digest of p.
func Sum224(p []byte) [28]byte {
	var out [28]byte
	h := NewSHA3(28)
	h.Update(p)
	h.Finish(out[:])
	return out
}

// Sum256 returns the SHA3-256 digest of p.
func Sum256(p []byte) [32]byte {
	var out [32]byte
	h := NewSHA3(32)
	h.Update(p)
	h.Finish(out[:])
	return out
}

// Sum384 returns the SHA3-384 digest of p.
func Sum384(p []byte) [48]byte {
	var out [48]byte
	h := NewSHA3(48)
	h.Update(p)
	h.Finish(out[:])
	return out
}

// Sum512 returns the SHA3-512 digest of p.
func Sum512(p []byte) [64]byte {
	var out [64]byte
	h := NewSHA3(64)
	h.Update(p)
	h.Finish(out[:])
	return out
}
