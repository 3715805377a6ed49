// https://github.com/usbarmory/microbits
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package curve448

import "github.com/usbarmory/microbits/internal/ct"

// a24 is (156326-2)/4 for the Curve448 Montgomery curve
// v^2 = u^3 + 156326*u^2 + u.
var a24 = fpFromUint(39081)

// BaseU is the standard Curve448 Montgomery base point u-coordinate (5).
var BaseU = func() []byte {
	b := make([]byte, Size)
	b[0] = 5
	return b
}()

// clampScalar applies X448's scalar preprocessing (RFC 7748 §5): clear
// the bottom 2 bits and set the MSB of the top byte.
func clampScalar(k []byte) []byte {
	out := make([]byte, Size)
	copy(out, k[:Size])
	out[0] &= 0xfc
	out[55] |= 0x80
	return out
}

// cswap conditionally swaps a and b in constant time, following
// eddh.cpp's use of bigint_t::swap in the Montgomery ladder (the same
// construction curve25519's x25519.go uses for the 255-bit curve).
func cswap(swap uint, a, b fp) (fp, fp) {
	cond := swap&1 == 1

	var ab, bb [Size]byte
	copy(ab[:], a.Bytes())
	copy(bb[:], b.Bytes())

	var ra, rb [Size]byte
	ct.Select(ra[:], cond, ab[:], bb[:])
	ct.Select(rb[:], cond, bb[:], ab[:])

	return fpFromBytes(ra[:]), fpFromBytes(rb[:])
}

// Compute performs the X448 Diffie-Hellman function: it clamps scalar k
// per RFC 7748 §5, decodes u, and runs the Montgomery ladder for 448
// iterations, as curve25519's Compute does for the 255-bit curve.
func Compute(k, u []byte) []byte {
	clamped := clampScalar(k)

	uBuf := make([]byte, Size)
	copy(uBuf, u[:Size])
	x1 := fpFromBytes(uBuf)

	x2 := fpFromUint(1)
	z2 := fpFromUint(0)
	x3 := x1
	z3 := fpFromUint(1)

	var swap uint

	for t := 447; t >= 0; t-- {
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
// X448 public key for private scalar k.
func ToPublic(k []byte) []byte {
	return Compute(k, BaseU)
}
