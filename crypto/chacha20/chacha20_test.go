// https://github.com/usbarmory/microbits
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package chacha20

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

// TestChaCha20_RFC7539Section2_3_2 checks the single-block keystream
// test vector of RFC 7539 §2.3.2.
func TestChaCha20_RFC7539Section2_3_2(t *testing.T) {
	key := mustHex("000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f")
	nonce := mustHex("000000090000004a00000000")

	want := mustHex("10f1e7e4d13b5915500fdd1fa32071c4" +
		"c7d1f4c733c068030422aa9ac3d46c4e" +
		"d2826446079faa0914c2d705d98b02a2" +
		"b5129cd1de164eb9cbd083e8a2503c4e")

	c := New(key, nonce, 1)
	var ks [64]byte
	c.XORKeyStream(ks[:], make([]byte, 64))

	if len(want) != 64 {
		t.Fatalf("test vector malformed: want %d bytes, got %d", 64, len(want))
	}

	if !bytes.Equal(ks[:], want) {
		t.Errorf("got %x, want %x", ks, want)
	}
}

func TestChaCha20_RoundTrip(t *testing.T) {
	key := mustHex("000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f")
	nonce := mustHex("000000000000004a00000000")
	pt := []byte("Ladies and Gentlemen of the class of '99: if I could offer you only one tip for the future, sunscreen would be it.")

	enc := New(key, nonce, 1)
	ct := make([]byte, len(pt))
	enc.XORKeyStream(ct, pt)

	dec := New(key, nonce, 1)
	got := make([]byte, len(pt))
	dec.XORKeyStream(got, ct)

	if !bytes.Equal(got, pt) {
		t.Errorf("round trip mismatch: got %q, want %q", got, pt)
	}
}

func TestChaCha20_CounterVariant(t *testing.T) {
	key := mustHex("000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f")
	nonce8 := mustHex("0001020304050607")

	c := NewWithCounter64(key, nonce8, 0)
	var ks1, ks2 [64]byte
	c.XORKeyStream(ks1[:], make([]byte, 64))
	c.XORKeyStream(ks2[:], make([]byte, 64))

	if bytes.Equal(ks1[:], ks2[:]) {
		t.Error("two successive blocks produced identical keystream output")
	}
}
