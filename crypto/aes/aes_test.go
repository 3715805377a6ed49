// https://github.com/usbarmory/microbits
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package aes

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func mustHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

// TestAES128_FIPS197AppendixB checks the FIPS-197 Appendix B worked
// example.
func TestAES128_FIPS197AppendixB(t *testing.T) {
	key := mustHex("000102030405060708090a0b0c0d0e0f")
	pt := mustHex("00112233445566778899aabbccddeeff")
	want := mustHex("69c4e0d86a7b0430d8cdb78070b4c55a")

	ctx, ok := New(key)
	if !ok {
		t.Fatal("New rejected a 16-byte key")
	}

	var ct [BLOCK]byte
	ctx.EncryptBlock(ct[:], pt)

	if !bytes.Equal(ct[:], want) {
		t.Errorf("encrypt: got %x, want %x", ct, want)
	}

	var pt2 [BLOCK]byte
	ctx.DecryptBlock(pt2[:], ct[:])

	if !bytes.Equal(pt2[:], pt) {
		t.Errorf("decrypt: got %x, want %x", pt2, pt)
	}
}

// TestAES192_FIPS197AppendixC2 checks the FIPS-197 Appendix C.2 vector.
func TestAES192_FIPS197AppendixC2(t *testing.T) {
	key := mustHex("000102030405060708090a0b0c0d0e0f1011121314151617")
	pt := mustHex("00112233445566778899aabbccddeeff")
	want := mustHex("dda97ca4864cdfe06eaf70a0ec0d7191")

	ctx, ok := New(key)
	if !ok {
		t.Fatal("New rejected a 24-byte key")
	}

	var ct [BLOCK]byte
	ctx.EncryptBlock(ct[:], pt)

	if !bytes.Equal(ct[:], want) {
		t.Errorf("got %x, want %x", ct, want)
	}
}

// TestAES256_FIPS197AppendixC3 checks the FIPS-197 Appendix C.3 vector.
func TestAES256_FIPS197AppendixC3(t *testing.T) {
	key := mustHex("000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f")
	pt := mustHex("00112233445566778899aabbccddeeff")
	want := mustHex("8ea2b7ca516745bfeafc49904b496089")

	ctx, ok := New(key)
	if !ok {
		t.Fatal("New rejected a 32-byte key")
	}

	var ct [BLOCK]byte
	ctx.EncryptBlock(ct[:], pt)

	if !bytes.Equal(ct[:], want) {
		t.Errorf("got %x, want %x", ct, want)
	}
}

func TestNew_RejectsIllegalKeyLength(t *testing.T) {
	if _, ok := New(make([]byte, 15)); ok {
		t.Error("New accepted a 15-byte key")
	}
	if _, ok := New(make([]byte, 20)); ok {
		t.Error("New accepted a 20-byte key")
	}
}

// TestCTR_NISTSP80038A checks the first two blocks of the AES-128-CTR
// vector from NIST SP 800-38A §F.5.1.
func TestCTR_NISTSP80038A(t *testing.T) {
	key := mustHex("2b7e151628aed2a6abf7158809cf4f3c")
	icb := mustHex("f0f1f2f3f4f5f6f7f8f9fafbfcfdfeff")

	pt1 := mustHex("6bc1bee22e409f96e93d7e117393172a")
	want1 := mustHex("874d6191b620e3261bef6864990db6ce")

	pt2 := mustHex("ae2d8a571e03ac9c9eb76fac45af8e51")
	want2 := mustHex("9806f66b7970fdff8617187bb9fffdff")

	ctx, _ := New(key)
	ctr := NewCTR(ctx, icb)

	var ct1, ct2 [BLOCK]byte
	ctr.XORKeyStream(ct1[:], pt1)
	ctr.XORKeyStream(ct2[:], pt2)

	if !bytes.Equal(ct1[:], want1) {
		t.Errorf("block 1: got %x, want %x", ct1, want1)
	}

	if !bytes.Equal(ct2[:], want2) {
		t.Errorf("block 2: got %x, want %x", ct2, want2)
	}
}

func TestCTR_DecryptIsSymmetric(t *testing.T) {
	key := mustHex("2b7e151628aed2a6abf7158809cf4f3c")
	icb := mustHex("f0f1f2f3f4f5f6f7f8f9fafbfcfdfeff")
	pt := []byte("some plaintext spanning more than one 16-byte block of data")

	ctx, _ := New(key)

	enc := NewCTR(ctx, icb)
	ct := make([]byte, len(pt))
	enc.XORKeyStream(ct, pt)

	dec := NewCTR(ctx, icb)
	got := make([]byte, len(pt))
	dec.XORKeyStream(got, ct)

	if !bytes.Equal(got, pt) {
		t.Errorf("CTR round trip mismatch: got %q, want %q", got, pt)
	}
}
