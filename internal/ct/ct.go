// https://github.com/usbarmory/microbits
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package ct provides constant-time primitives shared by every secret
// handling routine in the crypto core: secure zeroization, constant-time
// equality, and buffered XOR.
package ct

import "runtime"

// Zero overwrites buf with zero bytes through an access path the compiler
// may not eliminate, so the write remains observable even when buf is
// about to go out of scope.
func Zero(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
	runtime.KeepAlive(buf)
}

// Equal reports whether a and b hold identical bytes, in time independent
// of their contents. Mismatched lengths are not secret and are rejected
// immediately.
func Equal(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}

	var v byte

	for i := range a {
		v |= a[i] ^ b[i]
	}

	return v == 0
}

// Select copies b into dst when cond is true, a otherwise, without
// branching on cond. dst, a and b must have equal length.
func Select(dst []byte, cond bool, a, b []byte) {
	var mask byte

	if cond {
		mask = 0xff
	}

	for i := range dst {
		dst[i] = a[i] ^ (mask & (a[i] ^ b[i]))
	}
}

// XOR computes dst[i] = src[i] ^ gamma[i] for i in [0, len). When gamma is
// nil, dst is used as both destination and mask (dst[i] ^= src[i]).
func XOR(dst, src []byte, gamma []byte) {
	if gamma == nil {
		for i := range src {
			dst[i] ^= src[i]
		}
		return
	}

	for i := range src {
		dst[i] = src[i] ^ gamma[i]
	}
}
