// https://github.com/usbarmory/microbits
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package curve448 implements Curve448 field arithmetic, the Ed448
// untwisted Edwards group law, X448 Diffie-Hellman and Ed448
// sign/verify (including the pre-hash Ed448ph variant), mirroring
// crypto/curve25519's structure for the 448-bit curve parameters
// spec.md §4.9-§4.11 specifies (p = 2^448-2^224-1, d = -39081, a = 1,
// SHAKE256 as the signing hash with 114-byte output).
//
// As in crypto/curve25519, the field element is a fixed 14-word
// (448-bit) little-endian limb array rather than math/big.Int, so every
// operation runs in constant time and without heap allocation,
// following original_source/src/crypto/src/edwards/f448.cpp's
// uint448_t arithmetic limb-for-limb: the sparse modulus representation
// (all words -1 except a -2 at the 224-bit boundary word), the
// two-position carry fold at word 0 and word 7, and the fixed addition
// chains for Inv/Pow34 via bigint_pow_rle.
package curve448

const (
	// Size is the byte length of a Curve448 field element and X448
	// scalar/shared secret.
	Size = 56
	// PointSize is the compressed Ed448 point/public-key size.
	PointSize = 57

	fpWords  = 14
	u32At224 = 7
)

type fp struct {
	w [fpWords]uint32
}

// f448ModulusI8 and f448TwoModulusI8 are p and 2p's little-endian 32-bit
// words, stored as their int8 high byte (every word is either all-ones
// or all-ones-minus-one/two, so one signed byte sign-extends to the
// full word), per f448.cpp.
var (
	f448ModulusI8    = [fpWords]int8{-1, -1, -1, -1, -1, -1, -1, -2, -1, -1, -1, -1, -1, -1}
	f448TwoModulusI8 = [fpWords]int8{-2, -1, -1, -1, -1, -1, -1, -3, -1, -1, -1, -1, -1, -1}
)

func f448ModulusWord(i int) uint32    { return uint32(int32(f448ModulusI8[i])) }
func f448TwoModulusWord(i int) uint32 { return uint32(int32(f448TwoModulusI8[i])) }

func fpFromUint(v uint32) fp {
	return fp{w: [fpWords]uint32{0: v}}
}

// fpFromInt32 loads a small signed literal into a field element,
// following f448.cpp's F448::load(int32_t) for negative curve
// constants such as d = -39081.
func fpFromInt32(x int32) fp {
	var w [fpWords]uint32
	if x < 0 {
		w[0] = uint32(x - 1)
		for i := 1; i < fpWords; i++ {
			w[i] = f448ModulusWord(i)
		}
	} else {
		w[0] = uint32(x)
	}
	return fp{w: w}
}

func fpFromWords(w [fpWords]uint32) fp { return fp{w: w} }

func wordsFromBytes(b []byte) [fpWords]uint32 {
	var w [fpWords]uint32
	for i := range w {
		w[i] = uint32(b[4*i]) | uint32(b[4*i+1])<<8 | uint32(b[4*i+2])<<16 | uint32(b[4*i+3])<<24
	}
	return w
}

func bytesFromWords(w [fpWords]uint32) [Size]byte {
	var b [Size]byte
	for i, v := range w {
		b[4*i] = byte(v)
		b[4*i+1] = byte(v >> 8)
		b[4*i+2] = byte(v >> 16)
		b[4*i+3] = byte(v >> 24)
	}
	return b
}

// fpFromBytes decodes a little-endian field element; b must be at least
// Size bytes.
func fpFromBytes(b []byte) fp {
	var buf [Size]byte
	copy(buf[:], b[:Size])
	return fp{w: wordsFromBytes(buf[:])}
}

func addCarry(w *[fpWords]uint32, carry uint32, start int) uint32 {
	c := uint64(carry)
	for i := start; i < fpWords; i++ {
		c += uint64(w[i])
		w[i] = uint32(c)
		c >>= 32
	}
	return uint32(c)
}

func addWords(r, a, b *[fpWords]uint32) uint32 {
	var carry uint64
	for i := range r {
		rr := carry + uint64(a[i]) + uint64(b[i])
		r[i] = uint32(rr)
		carry = rr >> 32
	}
	return uint32(carry)
}

// reduce folds carry back in by adding 2^224+1 per carry bit (since
// 2^448 = 2^224+1 mod p), at word 0 and at the 224-bit boundary (word
// u32At224). Mirrors f448.cpp's f448_reduce.
func reduce(w *[fpWords]uint32, carry uint32) uint32 {
	var rc uint32
	rc |= addCarry(w, carry, 0)
	rc |= addCarry(w, carry, u32At224)
	return rc
}

// normalize reduces x to its canonical representative below p, reporting
// whether a subtraction was actually applied (x was >= p); mirrors
// f448.cpp's F448::normalize, whose return value callers use to reject
// non-canonical point encodings.
func (x *fp) normalize() bool {
	var minusP [fpWords]uint32
	var borrow uint64

	for i := range x.w {
		rr := uint64(x.w[i]) - uint64(f448ModulusWord(i)) - borrow
		minusP[i] = uint32(rr)
		borrow = (rr >> 32) & 1
	}

	overflow := (uint32(borrow) & 1) ^ 1
	mask := -(overflow & 1)

	for i := range x.w {
		diff := x.w[i] ^ minusP[i]
		x.w[i] = x.w[i] ^ (diff & mask)
	}

	return overflow == 1
}

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
	carry := addWords(&r.w, &a.w, &b.w)
	reduce(&r.w, carry)
	return r
}

func (a fp) Sub(b fp) fp {
	return a.Add(b.Neg())
}

// Neg computes 2p - x, then reduces, per f448.cpp's F448::neg.
func (x fp) Neg() fp {
	var r fp
	var borrow uint64

	for i := range r.w {
		rr := uint64(f448TwoModulusWord(i)) - uint64(x.w[i]) - borrow
		r.w[i] = uint32(rr)
		borrow = (rr >> 32) & 1
	}

	reduce(&r.w, uint32(1-borrow))
	return r
}

// Mul runs the three-step schoolbook multiply of f448.cpp's F448::mul:
// a full 2*fpWords-word product, two passes folding the upper half back
// at the 448-bit and 224-bit overflow positions, then a final
// single-bit carry reduction.
func (a fp) Mul(b fp) fp {
	var tmp [2 * fpWords]uint32

	var c uint64
	for i := 0; i < 2*fpWords; i++ {
		d := uint32(c)
		c >>= 32

		start, end := 0, i+1
		if i >= fpWords {
			start, end = i-(fpWords-1), fpWords
		}

		for j := start; j < end; j++ {
			p := uint64(a.w[j]) * uint64(b.w[i-j])
			y := p + uint64(d)
			d = uint32(y)
			c += y >> 32
		}

		tmp[i] = d
	}

	var r fp
	for pass := 0; pass < 2; pass++ {
		copy(r.w[:], tmp[fpWords:2*fpWords])
		for k := fpWords; k < 2*fpWords; k++ {
			tmp[k] = 0
		}

		var lo, hi [fpWords]uint32
		copy(lo[:], tmp[0:fpWords])
		carry := addWords(&lo, &lo, &r.w)
		copy(tmp[0:fpWords], lo[:])
		tmp[fpWords] = carry

		copy(hi[:], tmp[u32At224:u32At224+fpWords])
		carry = addWords(&hi, &hi, &r.w)
		copy(tmp[u32At224:u32At224+fpWords], hi[:])
		tmp[fpWords+u32At224] = carry
	}

	copy(r.w[:], tmp[0:fpWords])
	carry := reduce(&r.w, tmp[fpWords])
	reduce(&r.w, carry)

	return r
}

func (x fp) Square() fp { return x.Mul(x) }

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

func (x fp) IsOdd() bool {
	n := x
	n.normalize()
	return n.w[0]&1 == 1
}

// invPowers and pow34Powers are the fixed addition chains for x^(p-2)
// and x^((p-3)/4), run-length encoded as in f448.cpp's F448::inv and
// F448::powP34.
var (
	invPowers   = []uint8{0xFF, 0xBF, 0x02, 0xFF, 0xBF, 0x02, 0x03, 0x00}
	pow34Powers = []uint8{0xFF, 0xBF, 0x02, 0xFF, 0xBF, 0x00}
)

// bigintPowRLE mirrors bigint.hpp's bigint_pow_rle; see
// crypto/curve25519's identical construction for the algorithm's shape.
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

// Pow34 returns x^((p-3)/4), used by Ed448 point decompression (p is
// congruent to 3 mod 4, so this doubles as the square-root helper).
func (x fp) Pow34() fp {
	return bigintPowRLE(x, pow34Powers)
}

// edwardsD is the Ed448 curve constant d = -39081 mod p, loaded the way
// f448.cpp's F448::load handles a negative literal.
var edwardsD = fpFromInt32(-39081)

// lBytes is the Ed448 base point subgroup order, little-endian (56
// bytes), used by internal/fprime for scalar (not field) reduction in
// eddsa.go. ed448.cpp's C448_ORDER.
var lBytes = []byte{
	0xF3, 0x44, 0x58, 0xAB, 0x92, 0xC2, 0x78, 0x23, 0x55, 0x8F, 0xC5, 0x8D, 0x72, 0xC2, 0x6C, 0x21, 0x90, 0x36,
	0xD6, 0xAE, 0x49, 0xDB, 0x4E, 0xC4, 0xE9, 0x23, 0xCA, 0x7C, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
	0xFF, 0x3F,
}

// basePointEncoded is the canonical RFC 8032 §5.2.1 Ed448 generator's
// 57-byte compressed point encoding (ed448.cpp's ED448_BASE_POINT),
// decoded via Decode in point.go's init rather than its raw coordinates
// being transcribed separately.
var basePointEncoded = [PointSize]byte{
	0x14, 0xFA, 0x30, 0xF2, 0x5B, 0x79, 0x08, 0x98, 0xAD, 0xC8, 0xD7, 0x4E, 0x2C, 0x13, 0xBD, 0xFD, 0xC4, 0x39,
	0x7C, 0xE6, 0x1C, 0xFF, 0xD3, 0x3A, 0xD7, 0xC2, 0xA0, 0x05, 0x1E, 0x9C, 0x78, 0x87, 0x40, 0x98, 0xA3, 0x6C,
	0x73, 0x73, 0xEA, 0x4B, 0x62, 0xC7, 0xC9, 0x56, 0x37, 0x20, 0x76, 0x88, 0x24, 0xBC, 0xB6, 0x6E, 0x71, 0x46,
	0x3F, 0x69, 0x00,
}
