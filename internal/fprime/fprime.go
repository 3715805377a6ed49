// https://github.com/usbarmory/microbits
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package fprime implements constant-time arithmetic modulo an arbitrary
// odd prime of any byte length, represented as little-endian bytes. It
// backs both curve25519's and curve448's EdDSA scalar (reduction modulo
// the base point's subgroup order) operations, which use a different
// modulus than either curve's field prime and so cannot reuse
// curve25519/curve448's field arithmetic. Grounded on
// original_source/src/crypto/src/edwards/fprime8.cpp's Fp8 namespace: a
// generic byte-at-a-time double-and-reduce construction, branchless in
// the secret operands (the modulus itself is public).
package fprime

import "github.com/usbarmory/microbits/internal/ct"

func rawAdd(x, p []byte) {
	var c uint16
	for i := range x {
		c += uint16(x[i]) + uint16(p[i])
		x[i] = byte(c)
		c >>= 8
	}
}

// trySub subtracts p from x in place, but only commits the subtraction
// when it does not borrow; x is left unchanged otherwise.
func trySub(x, p []byte) {
	n := len(x)
	minusP := make([]byte, n)

	var borrow uint32
	for i := 0; i < n; i++ {
		d := uint32(x[i]) - uint32(p[i]) - borrow
		minusP[i] = byte(d)
		borrow = (d >> 8) & 1
	}

	ct.Select(x, borrow == 1, minusP, x)
}

// msb returns the bit position of p's most significant set bit. p is a
// public modulus, so this is not required to run in constant time.
func msb(p []byte) int {
	i := len(p) - 1
	for i >= 0 && p[i] == 0 {
		i--
	}

	x := p[i]
	bit := i << 3
	for x != 0 {
		x >>= 1
		bit++
	}

	return bit - 1
}

// shiftBits shifts x left by n bits (n < 8), in place, discarding overflow
// past len(x) bytes.
func shiftBits(x []byte, n uint) {
	var c uint32
	for i := range x {
		c |= uint32(x[i]) << n
		x[i] = byte(c)
		c >>= 8
	}
}

// Load reduces data, a little-endian integer of arbitrary byte length,
// modulo mod, returning a canonical len(mod)-byte little-endian result.
func Load(data, mod []byte) []byte {
	n := len(mod)
	r := make([]byte, n)

	length := len(data)
	modMSB := msb(mod)

	preloadTotal := modMSB - 1
	if bits := length << 3; bits < preloadTotal {
		preloadTotal = bits
	}

	preloadBytes := preloadTotal >> 3
	preloadBits := uint(preloadTotal & 7)
	rbits := length<<3 - preloadTotal

	for i := 0; i < preloadBytes; i++ {
		r[i] = data[length-preloadBytes+i]
	}

	if preloadBits != 0 {
		shiftBits(r, preloadBits)
		r[0] |= data[length-preloadBytes-1] >> (8 - preloadBits)
	}

	for i := rbits - 1; i >= 0; i-- {
		bit := (data[i>>3] >> uint(i&7)) & 1

		shiftBits(r, 1)
		r[0] |= bit
		trySub(r, mod)
	}

	return r
}

// Add returns (a+b) mod mod.
func Add(a, b, mod []byte) []byte {
	r := make([]byte, len(mod))
	copy(r, a)
	rawAdd(r, b)
	trySub(r, mod)
	return r
}

// Mul returns (a*b) mod mod.
func Mul(a, b, mod []byte) []byte {
	n := len(mod)
	r := make([]byte, n)

	for i := msb(mod); i >= 0; i-- {
		bit := (b[i>>3] >> uint(i&7)) & 1

		shiftBits(r, 1)
		trySub(r, mod)

		plusA := make([]byte, n)
		copy(plusA, r)
		rawAdd(plusA, a)
		trySub(plusA, mod)

		ct.Select(r, bit == 1, r, plusA)
	}

	return r
}
