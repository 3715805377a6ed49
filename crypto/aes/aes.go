// https://github.com/usbarmory/microbits
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package aes implements AES (FIPS 197) encryption/decryption and the
// AES-CTR streaming mode on top of it, entirely from first principles:
// no golang.org/x/crypto or stdlib crypto/aes import, since a
// self-contained block cipher is the literal subject matter of this
// component (see SPEC_FULL.md DOMAIN STACK, C6).
//
// The S-box is derived once at init time via the GF(2^8) multiplicative
// inverse and the FIPS-197 affine transform, rather than hard-coded as a
// lookup table, following the on-demand table construction style of
// other_examples key-schedule code retrieved for this component.
package aes

// block size in bytes; AES only ever operates on 128-bit blocks
// regardless of key size.
const BLOCK = 16

var (
	sbox    [256]byte
	invSbox [256]byte
)

func gmul(a, b byte) byte {
	var p byte

	for i := 0; i < 8; i++ {
		if b&1 != 0 {
			p ^= a
		}

		hiBitSet := a & 0x80

		a <<= 1
		if hiBitSet != 0 {
			a ^= 0x1b
		}

		b >>= 1
	}

	return p
}

func gfInverse(a byte) byte {
	if a == 0 {
		return 0
	}

	// a^254 = a^-1 in GF(2^8), computed by repeated squaring.
	p := a
	for i := 0; i < 6; i++ {
		p = gmul(p, p)
		p = gmul(p, a)
	}
	p = gmul(p, p)

	return p
}

func init() {
	for i := 0; i < 256; i++ {
		inv := gfInverse(byte(i))

		// FIPS-197 §5.1.1 affine transform.
		x := inv
		s := x ^ rotl8(x, 1) ^ rotl8(x, 2) ^ rotl8(x, 3) ^ rotl8(x, 4) ^ 0x63

		sbox[i] = s
		invSbox[s] = byte(i)
	}
}

func rotl8(x byte, n uint) byte {
	return (x << n) | (x >> (8 - n))
}

func xtime(b byte) byte {
	r := b << 1
	if b&0x80 != 0 {
		r ^= 0x1b
	}
	return r
}

// AES implements a key-scheduled AES-128/192/256 block cipher context.
type AES struct {
	roundKeys [][4]byte
	rounds    int
	nk        int
}

// New expands key (16, 24 or 32 bytes for AES-128/192/256) into a round
// key schedule. ok is false if key is not a legal AES key length.
func New(key []byte) (ctx *AES, ok bool) {
	var nk, nr int

	switch len(key) {
	case 16:
		nk, nr = 4, 10
	case 24:
		nk, nr = 6, 12
	case 32:
		nk, nr = 8, 14
	default:
		return nil, false
	}

	ctx = &AES{nk: nk, rounds: nr}
	ctx.expandKey(key)

	return ctx, true
}

var rcon = [...]byte{0x01, 0x02, 0x04, 0x08, 0x10, 0x20, 0x40, 0x80, 0x1b, 0x36, 0x6c, 0xd8}

func (a *AES) expandKey(key []byte) {
	total := 4 * (a.rounds + 1)
	a.roundKeys = make([][4]byte, total)

	for i := 0; i < a.nk; i++ {
		copy(a.roundKeys[i][:], key[i*4:i*4+4])
	}

	var temp [4]byte

	for i := a.nk; i < total; i++ {
		temp = a.roundKeys[i-1]

		if i%a.nk == 0 {
			temp = [4]byte{temp[1], temp[2], temp[3], temp[0]}
			for j := range temp {
				temp[j] = sbox[temp[j]]
			}
			temp[0] ^= rcon[i/a.nk-1]
		} else if a.nk > 6 && i%a.nk == 4 {
			for j := range temp {
				temp[j] = sbox[temp[j]]
			}
		}

		for j := 0; j < 4; j++ {
			a.roundKeys[i][j] = a.roundKeys[i-a.nk][j] ^ temp[j]
		}
	}
}

func (a *AES) addRoundKey(state *[16]byte, round int) {
	for c := 0; c < 4; c++ {
		k := a.roundKeys[round*4+c]
		state[c*4+0] ^= k[0]
		state[c*4+1] ^= k[1]
		state[c*4+2] ^= k[2]
		state[c*4+3] ^= k[3]
	}
}

func subBytes(state *[16]byte) {
	for i := range state {
		state[i] = sbox[state[i]]
	}
}

func invSubBytes(state *[16]byte) {
	for i := range state {
		state[i] = invSbox[state[i]]
	}
}

// shiftRows and its inverse operate on the column-major state layout
// state[c*4+r].
func shiftRows(state *[16]byte) {
	var s [16]byte
	copy(s[:], state[:])

	for r := 1; r < 4; r++ {
		for c := 0; c < 4; c++ {
			state[c*4+r] = s[((c+r)%4)*4+r]
		}
	}
}

func invShiftRows(state *[16]byte) {
	var s [16]byte
	copy(s[:], state[:])

	for r := 1; r < 4; r++ {
		for c := 0; c < 4; c++ {
			state[c*4+r] = s[((c-r+4)%4)*4+r]
		}
	}
}

func mixColumns(state *[16]byte) {
	for c := 0; c < 4; c++ {
		a0, a1, a2, a3 := state[c*4+0], state[c*4+1], state[c*4+2], state[c*4+3]

		state[c*4+0] = xtime(a0) ^ (xtime(a1) ^ a1) ^ a2 ^ a3
		state[c*4+1] = a0 ^ xtime(a1) ^ (xtime(a2) ^ a2) ^ a3
		state[c*4+2] = a0 ^ a1 ^ xtime(a2) ^ (xtime(a3) ^ a3)
		state[c*4+3] = (xtime(a0) ^ a0) ^ a1 ^ a2 ^ xtime(a3)
	}
}

func invMixColumns(state *[16]byte) {
	for c := 0; c < 4; c++ {
		a0, a1, a2, a3 := state[c*4+0], state[c*4+1], state[c*4+2], state[c*4+3]

		state[c*4+0] = gmul(a0, 0x0e) ^ gmul(a1, 0x0b) ^ gmul(a2, 0x0d) ^ gmul(a3, 0x09)
		state[c*4+1] = gmul(a0, 0x09) ^ gmul(a1, 0x0e) ^ gmul(a2, 0x0b) ^ gmul(a3, 0x0d)
		state[c*4+2] = gmul(a0, 0x0d) ^ gmul(a1, 0x09) ^ gmul(a2, 0x0e) ^ gmul(a3, 0x0b)
		state[c*4+3] = gmul(a0, 0x0b) ^ gmul(a1, 0x0d) ^ gmul(a2, 0x09) ^ gmul(a3, 0x0e)
	}
}

// EncryptBlock encrypts the 16-byte block src into dst.
func (a *AES) EncryptBlock(dst, src []byte) {
	var state [16]byte
	copy(state[:], src[:BLOCK])

	a.addRoundKey(&state, 0)

	for round := 1; round < a.rounds; round++ {
		subBytes(&state)
		shiftRows(&state)
		mixColumns(&state)
		a.addRoundKey(&state, round)
	}

	subBytes(&state)
	shiftRows(&state)
	a.addRoundKey(&state, a.rounds)

	copy(dst[:BLOCK], state[:])
}

// DecryptBlock decrypts the 16-byte block src into dst.
func (a *AES) DecryptBlock(dst, src []byte) {
	var state [16]byte
	copy(state[:], src[:BLOCK])

	a.addRoundKey(&state, a.rounds)

	for round := a.rounds - 1; round > 0; round-- {
		invShiftRows(&state)
		invSubBytes(&state)
		a.addRoundKey(&state, round)
		invMixColumns(&state)
	}

	invShiftRows(&state)
	invSubBytes(&state)
	a.addRoundKey(&state, 0)

	copy(dst[:BLOCK], state[:])
}
