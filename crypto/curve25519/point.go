// https://github.com/usbarmory/microbits
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package curve25519

import "github.com/usbarmory/microbits/internal/ct"

// Point is an affine point on the twisted Edwards curve
// -x^2 + y^2 = 1 + d*x^2*y^2 used by Ed25519. The addition law below is
// complete (unified) for this curve (a=-1 is a square, d is a
// non-square mod p), so it is valid for doubling and for the identity
// without special-casing, following
// original_source/src/crypto/src/edwards/ed25519.cpp's unified-law
// comment.
type Point struct {
	X, Y fp
}

// identity is the neutral element (0, 1).
func identity() Point {
	return Point{fpFromUint(0), fpFromUint(1)}
}

// Add returns p+q on the curve.
func (p Point) Add(q Point) Point {
	x1y2 := p.X.Mul(q.Y)
	y1x2 := p.Y.Mul(q.X)
	y1y2 := p.Y.Mul(q.Y)
	x1x2 := p.X.Mul(q.X)

	cross := edwardsD.Mul(p.X).Mul(q.X).Mul(p.Y).Mul(q.Y)

	denomX := fpFromUint(1).Add(cross)
	denomY := fpFromUint(1).Sub(cross)

	x3 := x1y2.Add(y1x2).Mul(denomX.Inv())
	y3 := y1y2.Add(x1x2).Mul(denomY.Inv())

	return Point{x3, y3}
}

// Double returns p+p.
func (p Point) Double() Point {
	return p.Add(p)
}

// selectPoint copies q into r when cond is true, p otherwise, without a
// secret-dependent branch. Mirrors bigint.hpp's select() applied to a
// point's coordinate pair.
func selectPoint(cond bool, p, q Point) Point {
	var px, qx, px2, qx2 [32]byte
	copy(px[:], p.X.Bytes())
	copy(qx[:], q.X.Bytes())
	copy(px2[:], p.Y.Bytes())
	copy(qx2[:], q.Y.Bytes())

	var rx, ry [32]byte
	ct.Select(rx[:], cond, px[:], qx[:])
	ct.Select(ry[:], cond, px2[:], qx2[:])

	return Point{fpFromBytes(rx[:]), fpFromBytes(ry[:])}
}

// ScalarMult returns scalar*p using a fixed-iteration-count (one per bit
// of scalar) double-and-add ladder, selecting the accumulated result
// with ct.Select instead of branching on the scalar bit, following
// ed25519.cpp's ED25519::mul constant-time structure.
func ScalarMult(scalar []byte, p Point) Point {
	result := identity()

	for i := len(scalar)*8 - 1; i >= 0; i-- {
		result = result.Double()

		byteIdx := i / 8
		bitIdx := uint(i % 8)
		bit := scalar[byteIdx]>>bitIdx&1 == 1

		result = selectPoint(bit, result, result.Add(p))
	}

	return result
}

// BasePoint returns the standard Ed25519 base point B = (x, 4/5), its
// coordinates hard-coded from ed25519.cpp's ed25519_pt::loadBase rather
// than derived via a field inversion at init time.
func BasePoint() Point {
	return Point{basePointX, basePointY}
}

// Decode decompresses a 32-byte encoded point (RFC 8032 §5.1.3). ok is
// false if the encoding does not correspond to a valid curve point.
func Decode(b []byte) (p Point, ok bool) {
	sign := b[31]&0x80 != 0

	yBytes := make([]byte, Size)
	copy(yBytes, b)
	yBytes[31] &= 0x7f

	y := fpFromBytes(yBytes)

	one := fpFromUint(1)
	yy := y.Square()
	u := yy.Sub(one)
	v := edwardsD.Mul(yy).Add(one)

	xx := u.Mul(v.Inv())
	x := xx.Pow2523().Mul(xx)

	if !x.Square().Sub(xx).IsZero() {
		x = x.Mul(sqrtMinus1)

		if !x.Square().Sub(xx).IsZero() {
			return Point{}, false
		}
	}

	if x.IsZero() && sign {
		return Point{}, false
	}

	if x.IsOdd() != sign {
		x = x.Neg()
	}

	return Point{x, y}, true
}

// Encode compresses p into its 32-byte point encoding.
func (p Point) Encode() []byte {
	out := p.Y.Bytes()
	if p.X.IsOdd() {
		out[31] |= 0x80
	}
	return out
}

// Equal reports whether p and q represent the same affine point.
func (p Point) Equal(q Point) bool {
	return p.X.Equal(q.X) && p.Y.Equal(q.Y)
}
