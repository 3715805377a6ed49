// https://github.com/usbarmory/microbits
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package sha3

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func TestSHA3_256_Empty(t *testing.T) {
	want, _ := hex.DecodeString("a7ffc6f8bf1ed76651c14756a061d662f580ff4de43b49fa82d80a4b80f8434a")
	got := Sum256(nil)

	if !bytes.Equal(got[:], want) {
		t.Errorf("got %x, want %x", got, want)
	}
}

func TestSHA3_256_Streaming(t *testing.T) {
	msg := []byte("the quick brown fox jumps over the lazy dog")

	h := NewSHA3(32)
	h.Update(msg)
	var oneShot [32]byte
	h.Finish(oneShot[:])

	h.Reset()
	h.Update(msg[:10])
	h.Update(msg[10:23])
	h.Update(msg[23:])
	var streamed [32]byte
	h.Finish(streamed[:])

	if oneShot != streamed {
		t.Errorf("streaming digest mismatch: %x != %x", oneShot, streamed)
	}
}

func TestShake128_PrefixInvariance(t *testing.T) {
	msg := []byte("shake test message")

	h1 := NewShake128()
	h1.Update(msg)
	long := make([]byte, 64)
	h1.Generate(long)

	h2 := NewShake128()
	h2.Update(msg)
	var a, b [32]byte
	h2.Generate(a[:])
	h2.Generate(b[:])

	if !bytes.Equal(long[:32], a[:]) || !bytes.Equal(long[32:], b[:]) {
		t.Errorf("shake output is not prefix-stable across chunked Generate calls")
	}
}

func TestKmac128_DeterministicAndKeyDependent(t *testing.T) {
	key := []byte("my secret key")
	msg := []byte("hello kmac")

	h := NewKmac128(key, 32)
	h.Update(msg)
	var mac [32]byte
	h.Finish(mac[:])

	h2 := NewKmac128(key, 32)
	h2.Update(msg)
	var mac2 [32]byte
	h2.Finish(mac2[:])

	if !bytes.Equal(mac[:], mac2[:]) {
		t.Errorf("KMAC is not deterministic across identical invocations")
	}

	h3 := NewKmac128([]byte("different key"), 32)
	h3.Update(msg)
	var mac3 [32]byte
	h3.Finish(mac3[:])

	if bytes.Equal(mac[:], mac3[:]) {
		t.Errorf("KMAC output did not change with the key")
	}
}
