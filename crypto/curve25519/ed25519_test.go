// https://github.com/usbarmory/microbits
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package curve25519

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

// TestEd25519_RFC8032Test1 checks RFC 8032 §7.1 Test 1.
func TestEd25519_RFC8032Test1(t *testing.T) {
	sk := mustHex("9d61b19deffd5a60ba844af492ec2cc44449c5697b326919703bac031cae7f60")
	wantPub := mustHex("d75a980182b10ab7d54bfed3c964073a0ee172f3daa62325af021a68f707511a")
	wantSig := mustHex("e5564300c360ac729086e2cc806e828a84877f1eb8e5d974d873e065224901555fb8821590a33bacc61e39701cf9b46bd25bf5f0595bbe24655141438e7a100b")

	pub := ToPublicEd25519(sk)
	if !bytes.Equal(pub, wantPub) {
		t.Fatalf("public key: got %x, want %x", pub, wantPub)
	}

	sig := Sign(sk, nil)
	if !bytes.Equal(sig, wantSig) {
		t.Fatalf("signature: got %x, want %x", sig, wantSig)
	}

	if !Verify(pub, nil, sig) {
		t.Error("Verify rejected a valid signature")
	}

	if Verify(pub, []byte("tampered"), sig) {
		t.Error("Verify accepted a signature over the wrong message")
	}
}

func TestEd25519_SignVerifyRoundTrip(t *testing.T) {
	seed := mustHex("0102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f")
	msg := []byte("the quick brown fox jumps over the lazy dog")

	pub := ToPublicEd25519(seed)
	sig := Sign(seed, msg)

	if !Verify(pub, msg, sig) {
		t.Error("round-trip signature failed to verify")
	}
}

func TestEd25519ph_SignVerifyRoundTrip(t *testing.T) {
	seed := mustHex("0102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f")
	prehash := sha512([]byte("message to be pre-hashed before signing"))

	pub := ToPublicEd25519(seed)
	sig := SignHash(seed, prehash)

	if !VerifyHash(pub, prehash, sig) {
		t.Error("Ed25519ph round-trip signature failed to verify")
	}

	otherPrehash := sha512([]byte("a different message"))
	if VerifyHash(pub, otherPrehash, sig) {
		t.Error("VerifyHash accepted a signature over the wrong pre-hash")
	}
}

// TestX25519_RFC7748Section5_2 checks the RFC 7748 §5.2 vector restated
// in spec.md's testable properties.
func TestX25519_RFC7748Section5_2(t *testing.T) {
	k := mustHex("a546e36bf0527c9d3b16154b82465edd62144c0ac1fc5a18506a2244ba449ac4")
	u := mustHex("e6db6867583030db3594c1a424b15f7c726624ec26b3353b10a903a6d0ab1c4c")
	want := mustHex("c3da55379de9c6908e94ea4df28d084f32eccf03491c71f754b4075577a28552")

	got := Compute(k, u)
	if !bytes.Equal(got, want) {
		t.Errorf("got %x, want %x", got, want)
	}
}

func TestX25519_DiffieHellmanAgreement(t *testing.T) {
	alicePriv := mustHex("77076d0a7318a57d3c16c17251b26645df4c2f87ebc0992ab177fba51db92c2a")
	bobPriv := mustHex("5dab087e624a8a4b79e17f8b83800ee65f3bb1292618b6fd1c2f8b27ff88e0eb")

	alicePub := ToPublic(alicePriv)
	bobPub := ToPublic(bobPriv)

	aliceShared := Compute(alicePriv, bobPub)
	bobShared := Compute(bobPriv, alicePub)

	if !bytes.Equal(aliceShared, bobShared) {
		t.Errorf("shared secrets disagree: %x != %x", aliceShared, bobShared)
	}
}
