// https://github.com/usbarmory/microbits
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package curve448

import (
	"github.com/usbarmory/microbits/crypto/sha3"
	"github.com/usbarmory/microbits/internal/ct"
	"github.com/usbarmory/microbits/internal/fprime"
)

// SignatureSize is the encoded Ed448 signature size in bytes.
const SignatureSize = 114

// hashSize is SHAKE256's configured output length for Ed448 (RFC 8032
// §5.2): 114 bytes, twice the 57-byte encoded point/scalar size.
const hashSize = 114

// ph448Domain and pure448Domain are Ed448's fixed "dom4" prefixes
// (RFC 8032 §5.2.3): "SigEd448" || phflag || context-length, with an
// empty context.
var (
	pure448Domain = append([]byte("SigEd448"), 0x00, 0x00)
	ph448Domain   = append([]byte("SigEd448"), 0x01, 0x00)
)

func shake256(data ...[]byte) []byte {
	h := sha3.NewShake256()
	for _, d := range data {
		h.Update(d)
	}
	out := make([]byte, hashSize)
	h.Generate(out)
	return out
}

// clampScalar448 clamps a 57-byte SHAKE256 digest half into an Ed448
// scalar per RFC 8032 §5.2.5: clear the bottom 2 bits of byte 0, set the
// top bit of byte 55, discard byte 56 (the digest half is 57 bytes but
// only the low 56 form the scalar). Returns the raw clamp result; the
// caller reduces mod L via fprime.Load when an actual scalar, rather
// than a private-key encoding, is needed.
func clampScalar448(h []byte) []byte {
	buf := make([]byte, Size)
	copy(buf, h[:Size])
	buf[0] &= 0xfc
	buf[55] |= 0x80
	return buf
}

// ToPublicEd448 returns the Ed448 public key corresponding to a 57-byte
// seed.
func ToPublicEd448(seed []byte) []byte {
	h := shake256(seed)
	a := clampScalar448(h)
	A := ScalarMult(a, BasePoint())
	return A.Encode()
}

func signWithDomain448(domain, seed, message []byte) []byte {
	h := shake256(seed)
	a := clampScalar448(h)
	prefix := h[PointSize:hashSize]

	A := ScalarMult(a, BasePoint())
	aEnc := A.Encode()

	rHash := shake256(domain, prefix, message)
	r := fprime.Load(rHash, lBytes)
	R := ScalarMult(r, BasePoint())
	rEnc := R.Encode()

	kHash := shake256(domain, rEnc, aEnc, message)
	k := fprime.Load(kHash, lBytes)

	aReduced := fprime.Load(a, lBytes)
	s := fprime.Add(r, fprime.Mul(k, aReduced, lBytes), lBytes)

	sig := make([]byte, SignatureSize)
	copy(sig[:PointSize], rEnc)
	copy(sig[PointSize:PointSize+Size], s)
	// byte 113 (the high byte of the scalar half's 57-byte slot) is
	// always zero: the scalar is reduced mod L, which fits in 56 bytes.
	sig[SignatureSize-1] = 0

	ct.Zero(a)
	ct.Zero(aReduced)
	ct.Zero(r)

	return sig
}

// Sign produces a pure (non-pre-hashed) Ed448 signature of message under
// the private key seed (57 bytes), per RFC 8032 §5.2.6.
func Sign(seed, message []byte) []byte {
	return signWithDomain448(pure448Domain, seed, message)
}

// SignHash produces an Ed448ph signature over a pre-computed 64-byte
// SHAKE256 digest of the real message.
func SignHash(seed, prehash []byte) []byte {
	return signWithDomain448(ph448Domain, seed, prehash)
}

func verifyWithDomain448(domain, publicKey, message, sig []byte) bool {
	if len(sig) != SignatureSize {
		return false
	}

	// byte 113 must be zero-ish: the top 7 bits of the final byte must
	// be clear, since the encoded scalar never uses that range.
	if sig[SignatureSize-1]&0xfe != 0 {
		return false
	}

	A, ok := Decode(publicKey)
	if !ok {
		return false
	}

	R, ok := Decode(sig[:PointSize])
	if !ok {
		return false
	}

	s := make([]byte, Size)
	copy(s, sig[PointSize:PointSize+Size])
	if !scalarInRange(s, lBytes) {
		return false
	}

	kHash := shake256(domain, sig[:PointSize], publicKey, message)
	k := fprime.Load(kHash, lBytes)

	sB := ScalarMult(s, BasePoint())
	kA := ScalarMult(k, A)
	rhs := R.Add(kA)

	return ct.Equal(sB.Encode(), rhs.Encode())
}

// scalarInRange reports whether s, little-endian, is strictly less than
// mod, also little-endian (RFC 8032 §5.2.7's "s is smaller than L"
// check).
func scalarInRange(s, mod []byte) bool {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] != mod[i] {
			return s[i] < mod[i]
		}
	}
	return false
}

// Verify checks a pure Ed448 signature. Per spec.md §7 verification may
// run in variable time.
func Verify(publicKey, message, sig []byte) bool {
	return verifyWithDomain448(pure448Domain, publicKey, message, sig)
}

// VerifyHash checks an Ed448ph signature over a pre-computed 64-byte
// SHAKE256 digest of the real message.
func VerifyHash(publicKey, prehash, sig []byte) bool {
	return verifyWithDomain448(ph448Domain, publicKey, prehash, sig)
}
