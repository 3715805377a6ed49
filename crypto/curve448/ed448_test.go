// https://github.com/usbarmory/microbits
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package curve448

import (
	"bytes"
	"testing"
)

func seed57(fill byte) []byte {
	s := make([]byte, Size+1)
	for i := range s {
		s[i] = fill
	}
	return s
}

// TestEd448_SignVerifyRoundTrip covers sign/verify round-trip behavior.
// Unlike curve25519's Ed25519 test, no official RFC 8032 §7.4 signature
// vector is embedded here: this package's retrieval pack carries only
// the Ed448 test data *declarations* (struct shapes and extern array
// names), not the literal vector bytes, so there is no grounded source
// to transcribe a byte-exact expected signature from. Asserting a
// vector recalled from memory without that grounding risks locking in a
// transcription error as if it were a known-good answer, which is worse
// than the honestly-scoped property tests below. What the pack does
// ground is the base point itself (ed448.cpp's ED448_BASE_POINT, used
// by TestBasePoint_MatchesCanonicalEncoding), so sign/verify correctness
// here rests on round-trip and tamper-rejection properties plus that
// canonical generator (see DESIGN.md's Open Question entry).
func TestEd448_SignVerifyRoundTrip(t *testing.T) {
	seed := seed57(0x2a)
	msg := []byte("the quick brown fox jumps over the lazy dog")

	pub := ToPublicEd448(seed)
	if len(pub) != PointSize {
		t.Fatalf("public key length = %d, want %d", len(pub), PointSize)
	}

	sig := Sign(seed, msg)
	if len(sig) != SignatureSize {
		t.Fatalf("signature length = %d, want %d", len(sig), SignatureSize)
	}

	if sig[SignatureSize-1]&0xfe != 0 {
		t.Fatalf("signature byte 113 not zero-ish: %#x", sig[SignatureSize-1])
	}

	if !Verify(pub, msg, sig) {
		t.Error("Verify rejected a valid signature")
	}

	if Verify(pub, []byte("tampered"), sig) {
		t.Error("Verify accepted a signature over the wrong message")
	}

	otherPub := ToPublicEd448(seed57(0x99))
	if Verify(otherPub, msg, sig) {
		t.Error("Verify accepted a signature under the wrong public key")
	}
}

func TestEd448_DistinctSeedsDistinctKeys(t *testing.T) {
	pub1 := ToPublicEd448(seed57(0x01))
	pub2 := ToPublicEd448(seed57(0x02))

	if bytes.Equal(pub1, pub2) {
		t.Error("distinct seeds produced identical public keys")
	}
}

func TestEd448ph_SignVerifyRoundTrip(t *testing.T) {
	seed := seed57(0x55)
	prehash := shake256([]byte("message to be pre-hashed before signing"))[:64]

	pub := ToPublicEd448(seed)
	sig := SignHash(seed, prehash)

	if !VerifyHash(pub, prehash, sig) {
		t.Error("Ed448ph round-trip signature failed to verify")
	}

	otherPrehash := shake256([]byte("a different message"))[:64]
	if VerifyHash(pub, otherPrehash, sig) {
		t.Error("VerifyHash accepted a signature over the wrong pre-hash")
	}
}

// TestX448_DiffieHellmanAgreement checks that two independently derived
// shared secrets agree, the property spec.md's testable properties
// assert for X448 analogous to the RFC 7748 §5.2 X25519 vector.
func TestX448_DiffieHellmanAgreement(t *testing.T) {
	alicePriv := seed448(0x11)
	bobPriv := seed448(0x22)

	alicePub := ToPublic(alicePriv)
	bobPub := ToPublic(bobPriv)

	aliceShared := Compute(alicePriv, bobPub)
	bobShared := Compute(bobPriv, alicePub)

	if !bytes.Equal(aliceShared, bobShared) {
		t.Errorf("shared secrets disagree: %x != %x", aliceShared, bobShared)
	}
}

func seed448(fill byte) []byte {
	s := make([]byte, Size)
	for i := range s {
		s[i] = fill
	}
	return s
}

func TestX448_ToPublicIsDeterministic(t *testing.T) {
	priv := seed448(0x33)

	pub1 := ToPublic(priv)
	pub2 := ToPublic(priv)

	if !bytes.Equal(pub1, pub2) {
		t.Error("ToPublic is not deterministic")
	}
}

func TestBasePoint_IsValidCurvePoint(t *testing.T) {
	b := BasePoint()
	enc := b.Encode()

	dec, ok := Decode(enc)
	if !ok {
		t.Fatal("decoding the encoded base point failed")
	}

	if !dec.Equal(b) {
		t.Error("decode(encode(basePoint)) != basePoint")
	}
}

// TestBasePoint_MatchesCanonicalEncoding checks that BasePoint re-encodes
// to exactly the canonical RFC 8032 §5.2.1 generator encoding (the
// ED448_BASE_POINT bytes transcribed from ed448.cpp), not merely some
// valid curve point.
func TestBasePoint_MatchesCanonicalEncoding(t *testing.T) {
	got := BasePoint().Encode()
	if !bytes.Equal(got, basePointEncoded[:]) {
		t.Errorf("BasePoint().Encode() = %x, want %x", got, basePointEncoded)
	}
}
