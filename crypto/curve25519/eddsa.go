// https://github.com/usbarmory/microbits
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package curve25519

import (
	"github.com/usbarmory/microbits/crypto/sha2"
	"github.com/usbarmory/microbits/internal/ct"
	"github.com/usbarmory/microbits/internal/fprime"
)

// SignatureSize is the encoded Ed25519 signature size in bytes.
const SignatureSize = 64

// ph25519Domain is the fixed Ed25519ph domain separator (RFC 8032
// §5.1.6, also used here for the documented pre-hash entry points).
var ph25519Domain = append([]byte("SigEd25519 no Ed25519 collisions"), 0x01, 0x00)

func sha512(data ...[]byte) []byte {
	h := sha2.NewSHA512()
	for _, d := range data {
		h.Update(d)
	}
	var out [64]byte
	h.Finish(out[:])
	return out[:]
}

// clampHashToScalar clamps a SHA-512 digest's low 32 bytes into an
// Ed25519 scalar per RFC 8032 §5.1.5, returning the unreduced 32-byte
// little-endian clamp result (the caller reduces mod L via fprime.Load
// when an actual scalar, rather than a private-key encoding, is
// needed).
func clampHashToScalar(h []byte) []byte {
	buf := make([]byte, 32)
	copy(buf, h[:32])
	buf[0] &= 248
	buf[31] &= 127
	buf[31] |= 64
	return buf
}

// ToPublicEd25519 returns the Ed25519 public key corresponding to a
// 32-byte seed.
func ToPublicEd25519(seed []byte) []byte {
	h := sha512(seed)
	a := clampHashToScalar(h)
	A := ScalarMult(a, BasePoint())
	return A.Encode()
}

func signWithDomain(domain, seed, message []byte) []byte {
	h := sha512(seed)
	a := clampHashToScalar(h)
	prefix := h[32:64]

	A := ScalarMult(a, BasePoint())
	aEnc := A.Encode()

	rHash := sha512(domain, prefix, message)
	r := fprime.Load(rHash, lBytes)
	R := ScalarMult(r, BasePoint())
	rEnc := R.Encode()

	kHash := sha512(domain, rEnc, aEnc, message)
	k := fprime.Load(kHash, lBytes)

	aReduced := fprime.Load(a, lBytes)
	s := fprime.Add(r, fprime.Mul(k, aReduced, lBytes), lBytes)

	sig := make([]byte, SignatureSize)
	copy(sig[:32], rEnc)
	copy(sig[32:], s)

	ct.Zero(a)
	ct.Zero(aReduced)
	ct.Zero(r)

	return sig
}

// Sign produces a pure (non-pre-hashed) Ed25519 signature of message
// under the private key seed (32 bytes), per RFC 8032 §5.1.6.
func Sign(seed, message []byte) []byte {
	return signWithDomain(nil, seed, message)
}

// SignHash produces an Ed25519ph signature over a pre-computed 64-byte
// hash of the real message, using the fixed domain separator.
func SignHash(seed, prehash []byte) []byte {
	return signWithDomain(ph25519Domain, seed, prehash)
}

func verifyWithDomain(domain, publicKey, message, sig []byte) bool {
	if len(sig) != SignatureSize {
		return false
	}

	A, ok := Decode(publicKey)
	if !ok {
		return false
	}

	R, ok := Decode(sig[:32])
	if !ok {
		return false
	}

	s := make([]byte, 32)
	copy(s, sig[32:64])
	if !scalarInRange(s, lBytes) {
		return false
	}

	kHash := sha512(domain, sig[:32], publicKey, message)
	k := fprime.Load(kHash, lBytes)

	sB := ScalarMult(s, BasePoint())
	kA := ScalarMult(k, A)
	rhs := R.Add(kA)

	return ct.Equal(sB.Encode(), rhs.Encode())
}

// scalarInRange reports whether s, little-endian, is strictly less than
// mod, also little-endian. Used to reject an oversized signature scalar
// (RFC 8032 §5.1.7's "s is smaller than L" check) before it is used.
func scalarInRange(s, mod []byte) bool {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] != mod[i] {
			return s[i] < mod[i]
		}
	}
	return false
}

// Verify checks a pure Ed25519 signature. Per spec.md §7 verification
// may run in variable time.
func Verify(publicKey, message, sig []byte) bool {
	return verifyWithDomain(nil, publicKey, message, sig)
}

// VerifyHash checks an Ed25519ph signature over a pre-computed 64-byte
// hash of the real message.
func VerifyHash(publicKey, prehash, sig []byte) bool {
	return verifyWithDomain(ph25519Domain, publicKey, prehash, sig)
}
