// https://github.com/usbarmory/microbits
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package sha3

// kmacTrailer is the cSHAKE domain-separator byte (FIPS 202 cSHAKE uses
// 0x04 whenever the function-name or customization string is non-empty,
// as is always the case for KMAC's "KMAC" function name).
const kmacTrailer = 0x04

// leftEncode returns the NIST SP 800-185 left_encode of x: the minimum
// number of bytes needed to represent x (at least one), prefixed by that
// byte count.
func leftEncode(x uint64) []byte {
	var v [8]byte

	n := 0
	for i := 7; i >= 0; i-- {
		v[n] = byte(x >> uint(8*i))
		if v[n] != 0 || n > 0 {
			n++
		}
	}

	if n == 0 {
		n = 1
	}

	out := make([]byte, n+1)
	out[0] = byte(n)
	copy(out[1:], v[:n])

	return out
}

// rightEncode returns the NIST SP 800-185 right_encode of x: the minimum
// number of bytes needed to represent x (at least one), suffixed by that
// byte count.
func rightEncode(x uint64) []byte {
	le := leftEncode(x)
	n := le[0]

	out := make([]byte, len(le))
	copy(out, le[1:])
	out[len(out)-1] = n

	return out
}

// encodeString returns left_encode(len(s)*8) || s.
func encodeString(s []byte) []byte {
	out := leftEncode(uint64(len(s)) * 8)
	return append(out, s...)
}

// Kmac implements the KMAC128/KMAC256 keyed MAC (NIST SP 800-185 §4),
// built as a cSHAKE instance with the "KMAC" function name.
//
// init absorbs the bytepad-framed function name header, a permutation
// boundary, the bytepad-framed key, and a second permutation boundary, as
// described by spec.md §4.4; Finish absorbs right_encode(macLen*8) before
// squeezing the MAC.
type Kmac struct {
	s      state
	macLen int
}

// kmacFunctionName is the fixed cSHAKE function-name string for KMAC.
var kmacFunctionName = []byte("KMAC")

func newKmac(rate, macLen int, key []byte) *Kmac {
	h := &Kmac{macLen: macLen}
	h.s.rate = rate

	h.s.consume(leftEncode(uint64(rate)))
	h.s.consume(encodeString(kmacFunctionName))
	h.s.consume(encodeString(nil))
	h.s.align()

	h.s.consume(leftEncode(uint64(rate)))
	h.s.consume(encodeString(key))
	h.s.align()

	return h
}

// NewKmac128 returns a KMAC128 context (rate 168 bytes) producing macLen
// bytes of output.
func NewKmac128(key []byte, macLen int) *Kmac {
	return newKmac(stateSize-2*16, macLen, key)
}

// NewKmac256 returns a KMAC256 context (rate 136 bytes) producing macLen
// bytes of output.
func NewKmac256(key []byte, macLen int) *Kmac {
	return newKmac(stateSize-2*32, macLen, key)
}

// Update absorbs len(p) bytes of message data.
func (h *Kmac) Update(p []byte) {
	h.s.consume(p)
}

// Finish finalizes the MAC into mac, which must be exactly the macLen
// passed to the constructor.
func (h *Kmac) Finish(mac []byte) {
	h.s.consume(rightEncode(uint64(h.macLen) * 8))
	h.s.finish(kmacTrailer)
	h.s.produce(mac[:h.macLen])
}
