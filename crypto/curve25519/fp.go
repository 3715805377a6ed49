// https://github.com/usbarmory/microbits
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package curve25519 implements Curve25519 field arithmetic, the Ed25519
// twisted Edwards group law, X25519 Diffie-Hellman and Ed25519
// sign/verify (including the pre-hash Ed25519ph variant), grounded on
// original_source/src/crypto/src/edwards/f25519.cpp and ed25519.cpp for
// the field modulus, reduction algorithm, clamp bit positions and
// signature layout that spec.md leaves to "standard formulas".
//
// The field element is a fixed 8-word (256-bit) little-endian limb array,
// not math/big.Int: every operation here runs in time independent of the
// limb values and never touches the heap, following f25519.cpp's
// uint256_t arithmetic limb-for-limb (32-bit limbs, so Go's native
// uint64 plays the same carry-accumulator role as the original's
// uint64_t without needing simulated 128-bit arithmetic). Inv and
// Pow2523 run the exact fixed addition chains f25519.cpp specifies via
// bigint_pow_rle, rather than a general-purpose exponentiation routine.
package curve25519

// Size is the byte length of a Curve25519 field element, scalar, public
// key and X25519 shared secret.
const Size = 32

// fp is a Curve25519 field element stored as 8 little-endian 32-bit
// limbs. Values are kept below 2p (not always fully reduced below p)
// between operations; normalize() produces the canonical representative
// on demand, matching f25519.cpp's separation between the cheap
// single-reduce folded into every operation and the explicit subtract-p
// normalize step.
type fp struct {
	w [8]uint32
}

func fpFromUint(v uint32) fp {
	return fp{w: [8]uint32{0: v}}
}

// fpFromWords builds a field element directly from its little-endian
// limb representation, used for the hard-coded curve constants below.
func fpFromWords(w [8]uint32) fp {
	return fp{w: w}
}

// fpFromLEBytes decodes an exact 32-byte little-endian constant with no
// masking, used for hard-coded curve/table constants already known to
// be valid field element encodings.
func fpFromLEBytes(b [32]byte) fp {
	return fp{w: wordsFromBytes(b)}
}

// fpFromBytes decodes a little-endian 32-byte field element, masking the
// top bit per RFC 7748/8032 decoding rules.
func fpFromBytes(b []byte) fp {
	var buf [32]byte
	copy(buf[:], b[:Size])
	buf[31] &= 0x7f
	return fp{w: wordsFromBytes(buf)}
}

func wordsFromBytes(b [32]byte) [8]uint32 {
	var w [8]uint32
	for i := range w {
		w[i] = uint32(b[4*i]) | uint32(b[4*i+1])<<8 | uint32(b[4*i+2])<<16 | uint32(b[4*i+3])<<24
	}
	return w
}

func bytesFromWords(w [8]uint32) [32]byte {
	var b [32]byte
	for i, v := range w {
		b[4*i] = byte(v)
		b[4*i+1] = byte(v >> 8)
		b[4*i+2] = byte(v >> 16)
		b[4*i+3] = byte(v >> 24)
	}
	return b
}

// reduceSingle folds carry (plus the overflow bit 255 already present in
// x) back into x via 2^255 = 19 mod p, leaving x < 2^255+18 (less than
// 2p). Mirrors f25519.cpp's f25519_reduce_single.
func reduceSingle(x *[8]uint32, carry uint64) {
	carry <<= 1
	carry |= uint64(x[7] >> 31)
	carry *= 19

	x[7] &^= 1 << 31

	for i := range x {
		carry += uint64(x[i])
		x[i] = uint32(carry)
		carry >>= 32
	}
}

// normalize reduces x to its fully canonical representative below p, via
// one branchless conditional subtraction on top of reduceSingle's
// cheaper fold. Mirrors f25519.cpp's F25519::normalize.
func (x *fp) normalize() {
	reduceSingle(&x.w, 0)

	var minusP [8]uint32
	c := uint64(19)
	for i := 0; i < 7; i++ {
		c += uint64(x.w[i])
		minusP[i] = uint32(c)
		c >>= 32
	}

	c += uint64(x.w[7]) - 0x80000000
	minusP[7] = uint32(c)

	mask := -(uint32(c>>31) & 1)
	for i := range x.w {
		diff := minusP[i] ^ x.w[i]
		x.w[i] = minusP[i] ^ (diff & mask)
	}
}

// Bytes encodes the field element as a canonical little-endian 32-byte
// value.
func (x fp) Bytes() []byte {
	n := x
	n.normalize()
	b := bytesFromWords(n.w)
	out := make([]byte, Size)
	copy(out, b[:])
	return out
}

func (a fp) Add(b fp) fp {
	var r fp
	var carry uint32

	for i := range r.w {
		sum := uint64(a.w[i]) + uint64(b.w[i]) + uint64(carry)
		r.w[i] = uint32(sum)
		carry = uint32(sum >> 32)
	}

	reduceSingle(&r.w, uint64(carry))
	return r
}

// Sub computes a + 2p - b byte-wise, avoiding underflow, per
// f25519.cpp's F25519::sub.
func (a fp) Sub(b fp) fp {
	ab := bytesFromWords(a.w)
	bb := bytesFromWords(b.w)

	var rb [32]byte
	c := uint32(0xDA)
	for i := 0; i < 31; i++ {
		c += 0xFF00 + uint32(ab[i]) - uint32(bb[i])
		rb[i] = byte(c)
		c >>= 8
	}
	c += uint32(ab[31]) - uint32(bb[31])
	rb[31] = byte(c)
	c >>= 8

	r := fp{w: wordsFromBytes(rb)}
	reduceSingle(&r.w, uint64(c))
	return r
}

func (a fp) Neg() fp {
	ab := bytesFromWords(a.w)

	var rb [32]byte
	c := uint32(0xDA)
	for i := 0; i < 31; i++ {
		c += 0xFF00 - uint32(ab[i])
		rb[i] = byte(c)
		c >>= 8
	}
	c -= uint32(ab[31])
	rb[31] = byte(c)
	c >>= 8

	r := fp{w: wordsFromBytes(rb)}
	reduceSingle(&r.w, uint64(c))
	return r
}

// Mul is the interleaved schoolbook multiply with inline x38 wraparound
// reduction of f25519.cpp's F25519::mul: each output limb's
// contributions from operand limbs that wrap past the top of the
// 256-bit product are folded back in scaled by 38 (2^256 = 38 mod p)
// as they are produced, rather than computed as a separate 512-bit
// product followed by a reduction pass.
func (a fp) Mul(b fp) fp {
	var r fp
	var c1 uint64

	for i := range r.w {
		c0 := uint32(c1)
		c1 >>= 32

		j := 0
		for ; j <= i; j++ {
			x := uint64(a.w[j]) * uint64(b.w[i-j])
			y := uint64(c0) + uint64(uint32(x))

			c0 = uint32(y)
			c1 = c1 + (x >> 32) + (y >> 32)
		}
		for ; j < 8; j++ {
			x := uint64(a.w[j]) * uint64(b.w[i+8-j])
			y := uint64(c0) + uint64(uint32(x))*38

			c0 = uint32(y)
			c1 = c1 + (x>>32)*38 + (y >> 32)
		}

		r.w[i] = c0
	}

	reduceSingle(&r.w, c1)
	return r
}

func (x fp) Square() fp { return x.Mul(x) }

// invPowers and pow2523Powers are the fixed addition chains for
// x^(p-2) and x^((p-5)/8), encoded as run-length bytes: the low bit of
// each byte is the bit value, the remaining bits a repeat count,
// terminated by a zero byte. Copied verbatim from f25519.cpp's
// F25519::inv/pow58.
var (
	invPowers     = []uint8{255, 245, 2, 3, 2, 5, 0}
	pow2523Powers = []uint8{255, 245, 2, 3, 0}
)

// bigintPowRLE computes x raised to the power encoded by exponent, via
// the square-always, multiply-on-odd-run addition chain of
// bigint.hpp's bigint_pow_rle. r starts as x (the implicit leading bit
// already consumed) and the result ends up in whichever of r/s the
// final pointer swap left it in.
func bigintPowRLE(x fp, exponent []uint8) fp {
	r := x
	s := fp{}

	a, b := &s, &r

	for _, i := range exponent {
		if i == 0 {
			break
		}

		for i > 1 {
			*a = b.Mul(*b)

			if i&1 != 0 {
				*b = a.Mul(x)
			} else {
				a, b = b, a
			}

			i -= 2
		}
	}

	return *b
}

// Inv returns x^-1 mod p via the fixed addition chain for x^(p-2).
func (x fp) Inv() fp {
	return bigintPowRLE(x, invPowers)
}

// Pow2523 returns x^((p-5)/8), used to recover a candidate square root
// when decompressing a point's x-coordinate (RFC 8032 §5.1.3).
func (x fp) Pow2523() fp {
	return bigintPowRLE(x, pow2523Powers)
}

func (x fp) IsZero() bool {
	n := x
	n.normalize()

	var acc uint32
	for _, v := range n.w {
		acc |= v
	}
	return acc == 0
}

func (a fp) Equal(b fp) bool {
	na, nb := a, b
	na.normalize()
	nb.normalize()
	return na.w == nb.w
}

// IsOdd reports whether the canonical representative of x is odd,
// matching the parity bit used by point compression.
func (x fp) IsOdd() bool {
	n := x
	n.normalize()
	return n.w[0]&1 == 1
}

// edwardsD is the Ed25519 curve constant d, the Ed25519 base point's
// x-coordinate, the group order L, and sqrtMinus1, hard-coded from
// original_source/src/crypto/src/edwards/ed25519.cpp's literal
// constants rather than derived at runtime.
var edwardsD = fpFromLEBytes([32]byte{
	0xa3, 0x78, 0x59, 0x13, 0xca, 0x4d, 0xeb, 0x75, 0xab, 0xd8, 0x41, 0x41, 0x4d, 0x0a, 0x70, 0x00,
	0x98, 0xe8, 0x79, 0x77, 0x79, 0x40, 0xc7, 0x8c, 0x73, 0xfe, 0x6f, 0x2b, 0xee, 0x6c, 0x03, 0x52,
})

// basePointX is ed25519_base_x in ed25519.cpp; basePointY is the
// canonical y = 4/5 mod p, written out as the RFC 8032 constant
// 0x6666...6658 (little-endian) rather than computed via Inv at init
// time, matching ed25519_pt::loadBase.
var (
	basePointX = fpFromLEBytes([32]byte{
		0x1A, 0xD5, 0x25, 0x8F, 0x60, 0x2D, 0x56, 0xC9, 0xB2, 0xA7, 0x25, 0x95, 0x60, 0xC7, 0x2C, 0x69,
		0x5C, 0xDC, 0xD6, 0xFD, 0x31, 0xE2, 0xA4, 0xC0, 0xFE, 0x53, 0x6E, 0xCD, 0xD3, 0x36, 0x69, 0x21,
	})
	basePointY = fpFromLEBytes([32]byte{
		0x58, 0x66, 0x66, 0x66, 0x66, 0x66, 0x66, 0x66, 0x66, 0x66, 0x66, 0x66, 0x66, 0x66, 0x66, 0x66,
		0x66, 0x66, 0x66, 0x66, 0x66, 0x66, 0x66, 0x66, 0x66, 0x66, 0x66, 0x66, 0x66, 0x66, 0x66, 0x66,
	})
)

// sqrtMinus1 is a fixed square root of -1 mod p (RFC 8032 §5.1.3,
// 2^((p-1)/4) mod p), used when the direct Pow2523 candidate does not
// satisfy x^2 == xx. ed25519.cpp's ed25519_sqrt_k.
var sqrtMinus1 = fpFromLEBytes([32]byte{
	0xB0, 0xA0, 0x0E, 0x4A, 0x27, 0x1B, 0xEE, 0xC4, 0x78, 0xE4, 0x2F, 0xAD, 0x06, 0x18, 0x43, 0x2F,
	0xA7, 0xD7, 0xFB, 0x3D, 0x99, 0x00, 0x4D, 0x2B, 0x0B, 0xDF, 0xC1, 0x4F, 0x80, 0x24, 0x83, 0x2B,
})

// lBytes is the Ed25519 base point subgroup order, little-endian, used
// by internal/fprime for scalar (not field) reduction in eddsa.go.
// ed25519.cpp's C25519_ORDER.
var lBytes = []byte{
	0xED, 0xD3, 0xF5, 0x5C, 0x1A, 0x63, 0x12, 0x58, 0xD6, 0x9C, 0xF7, 0xA2, 0xDE, 0xF9, 0xDE, 0x14,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x10,
}
