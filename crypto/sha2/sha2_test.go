// https://github.com/usbarmory/microbits
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package sha2

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func TestSHA256_Empty(t *testing.T) {
	want, _ := hex.DecodeString("e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855")
	got := Sum256(nil)

	if !bytes.Equal(got[:], want) {
		t.Errorf("got %x, want %x", got, want)
	}
}

func TestSHA256_ABC(t *testing.T) {
	want, _ := hex.DecodeString("ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad")
	got := Sum256([]byte("abc"))

	if !bytes.Equal(got[:], want) {
		t.Errorf("got %x, want %x", got, want)
	}
}

func TestSHA256_Streaming(t *testing.T) {
	msg := []byte("the quick brown fox jumps over the lazy dog, repeated for a long message")

	h := NewSHA256()
	h.Update(msg)
	var oneShot [32]byte
	h.Finish(oneShot[:])

	h2 := NewSHA256()
	for i := 0; i < len(msg); i += 7 {
		end := i + 7
		if end > len(msg) {
			end = len(msg)
		}
		h2.Update(msg[i:end])
	}
	var streamed [32]byte
	h2.Finish(streamed[:])

	if oneShot != streamed {
		t.Errorf("streaming digest mismatch: %x != %x", oneShot, streamed)
	}
}

func TestSHA256_ResetsAfterFinish(t *testing.T) {
	h := NewSHA256()
	h.Update([]byte("abc"))
	var first [32]byte
	h.Finish(first[:])

	var second [32]byte
	h.Finish(second[:])

	want := Sum256(nil)
	if second != want {
		t.Errorf("context did not reset to initial state after Finish")
	}
}

func TestSHA512_Empty(t *testing.T) {
	want, _ := hex.DecodeString("cf83e1357eefb8bdf1542850d66d8007d620e4050b5715dc83f4a921d36ce9ce47d0d13c5d85f2b0ff8318d2877eec2f63b931bd47417a81a538327af927da3e")
	got := Sum512(nil)

	if !bytes.Equal(got[:], want) {
		t.Errorf("got %x, want %x", got, want)
	}
}

func TestSHA512_ABC(t *testing.T) {
	want, _ := hex.DecodeString("ddaf35a193617abacc417349ae20413112e6fa4e89a97ea20a9eeee64b55d39a2192992a274fc1a836ba3c23a3feebbd454d4423643ce80e2a9ac94fa54ca49f")
	got := Sum512([]byte("abc"))

	if !bytes.Equal(got[:], want) {
		t.Errorf("got %x, want %x", got, want)
	}
}
