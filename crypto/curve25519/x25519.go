// https://github.com/usbarmory/microbits
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package curve25519

import "github.com/usbarmory/microbits/internal/ct"

// a24 is (486662-2)/4 for the Curve25519 Montgomery curve
// v^2 = u^3 + 486662*u^2 + u.
var a24 = fpFromUint(121665)

// BaseU is the standard Curve25519 Montgomery base point u-coordinate.
var BaseU = func() []byte {
	b := make([]byte, Size)
	b[0] = 9
	return b
}()

func clampScalar(k []byte) []byte {
	out := make([]byte, Size)
	copy(out, k[:Size])
	out[0] &= 248
	out[31] &= 127
	out[31] |= 64
	return out
}

// cswap conditionally swaps a and b in constant time, following
// eddh.cpp's use of bigint_t::swap in the Montgomery ladder.
func cswap(swap uint, a, b fp) (fp, fp) {
	cond := swap&1 == 1

	var ab, bb [32]byte
	copy(ab[:], a.Bytes())
	copy(bb[:], b.Bytes())

	var ra, rb [32]byte
	ct.Select(ra[:], cond, ab[:], bb[:])
	ct.Select(rb[:], cond, bb[:], ab[:])

	return fpFromBytes(ra[:]), fpFromBytes(rb[:])
}

// Compute performs the X25519 Diffie-Hellman function: it clamps scalar
// k per RFC 7748 §5, decodes u (masking bit 255), and runs the
// Montgomery ladder for 255 iterations, as
// original_source/src/crypto/src/edwards/eddh.cpp's X25519::compute
// describes without filtering known low-order u values (see
// DESIGN.md's Open Question note).
func Compute(k, u []byte) []byte {
	clamped := clampScalar(k)

	uBuf := make([]byte, Size)
	copy(uBuf, u[:Size])
	uBuf[31] &= 0x7f
	x1 := fpFromBytes(uBuf)

	x2 := fpFromUint(1)
	z2 := fpFromUint(0)
	x3 := x1
	z3 := fpFromUint(1)

	var swap uint

	for t := 254; t >= 0; t-- {
		byteIdx := t / 8
		bitIdx := uint(t % 8)
		kt := uint(clamped[byteIdx] >> bitIdx & 1)

		swap ^= kt
		x2, x3 = cswap(swap, x2, x3)
		z2, z3 = cswap(swap, z2, z3)
		swap = kt

		A := x2.Add(z2)
		AA := A.Square()
		B := x2.Sub(z2)
		BB := B.Square()
		E := AA.Sub(BB)
		C := x3.Add(z3)
		D := x3.Sub(z3)
		DA := D.Mul(A)
		CB := C.Mul(B)

		sum := DA.Add(CB)
		x3 = sum.Square()

		diff := DA.Sub(CB)
		z3 = x1.Mul(diff.Square())

		x2 = AA.Mul(BB)
		z2 = E.Mul(AA.Add(a24.Mul(E)))
	}

	x2, x3 = cswap(swap, x2, x3)
	z2, z3 = cswap(swap, z2, z3)

	return x2.Mul(z2.Inv()).Bytes()
}

// ToPublic returns the Montgomery u-coordinate of k*basepoint, i.e. the
// X25519 public key for private scalar k.
func ToPublic(k []byte) []byte {
	return Compute(k, BaseU)
}
