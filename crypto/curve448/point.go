// https://github.com/usbarmory/microbits
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package curve448

import "github.com/usbarmory/microbits/internal/ct"

// Point is an affine point on the untwisted Edwards curve
// x^2 + y^2 = 1 + d*x^2*y^2 used by Ed448 (a=1, d=-39081). The addition
// law is complete for this curve (a=1 is trivially a square, d is a
// non-square mod p), valid for doubling and the identity without
// special cases.
type Point struct {
	X, Y fp
}

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
	y3 := y1y2.Sub(x1x2).Mul(denomY.Inv())

	return Point{x3, y3}
}

// Double returns p+p.
func (p Point) Double() Point {
	return p.Add(p)
}

// selectPoint copies q into r when cond is true, p otherwise, without a
// secret-dependent branch, mirroring bigint.hpp's select() applied to a
// point's coordinate pair.
func selectPoint(cond bool, p, q Point) Point {
	var px, qx, py, qy [Size]byte
	copy(px[:], p.X.Bytes())
	copy(qx[:], q.X.Bytes())
	copy(py[:], p.Y.Bytes())
	copy(qy[:], q.Y.Bytes())

	var rx, ry [Size]byte
	ct.Select(rx[:], cond, px[:], qx[:])
	ct.Select(ry[:], cond, py[:], qy[:])

	return Point{fpFromBytes(rx[:]), fpFromBytes(ry[:])}
}

// ScalarMult returns scalar*p using a fixed-iteration-count
// double-and-add ladder, selecting the accumulated result with
// ct.Select instead of branching on the scalar bit, following
// ed448.cpp's ED448::mul constant-time structure (the same shape
// crypto/curve25519's ScalarMult uses for Ed25519).
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

var basePointVal Point

func init() {
	p, ok := Decode(basePointEncoded[:])
	if !ok {
		panic("curve448: canonical base point failed to decode")
	}
	basePointVal = p
}

// BasePoint returns the canonical RFC 8032 §5.2.1 Ed448 generator,
// obtained by decoding ed448.cpp's ED448_BASE_POINT encoding the same
// way any other compressed point is decoded (ed448_pt::loadBase), not
// derived algebraically.
func BasePoint() Point {
	return basePointVal
}

// recoverCandidateX computes the candidate x-coordinate for y per
// spec.md §4.10: u = y^2-1, v = d*y^2-1, x = u^3*v*(u^5*v^3)^((p-3)/4).
// It also returns v and u so the caller can run the v*x^2 == u
// validity check without recomputing them.
func recoverCandidateX(y fp) (x, u, v fp) {
	one := fpFromUint(1)
	yy := y.Square()
	u = yy.Sub(one)
	v = edwardsD.Mul(yy).Sub(one)

	u3 := u.Square().Mul(u)
	u5 := u3.Mul(u).Mul(u)
	v3 := v.Square().Mul(v)
	root := u5.Mul(v3).Pow34()
	x = u3.Mul(v).Mul(root)

	return x, u, v
}

// Decode decompresses a 57-byte encoded Ed448 point. ok is false if the
// encoding does not correspond to a valid curve point, or if y is not
// the canonical representative below p (ed448_pt::load rejects a y that
// F448::normalize would have reduced).
func Decode(b []byte) (p Point, ok bool) {
	if len(b) != PointSize {
		return Point{}, false
	}

	sign := b[56]&0x80 != 0

	yBytes := make([]byte, Size)
	copy(yBytes, b[:Size])
	y := fpFromBytes(yBytes)
	if y.normalize() {
		return Point{}, false
	}

	x, u, v := recoverCandidateX(y)

	if !v.Mul(x.Square()).Equal(u) {
		return Point{}, false
	}

	if x.IsOdd() != sign {
		x = x.Neg()
	}

	return Point{x, y}, true
}

// Encode compresses p into its 57-byte point encoding, with the parity
// bit in the high bit of the last byte (position 57*8-1).
func (p Point) Encode() []byte {
	out := make([]byte, PointSize)
	copy(out, p.Y.Bytes())
	if p.X.IsOdd() {
		out[56] |= 0x80
	}
	return out
}

// Equal reports whether p and q represent the same affine point.
func (p Point) Equal(q Point) bool {
	return p.X.Equal(q.X) && p.Y.Equal(q.Y)
}
