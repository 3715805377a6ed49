// https://github.com/usbarmory/microbits
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package hmac implements HMAC (RFC 2104) generically over any hash
// context exposing BLOCK/OUTPUT sizes and an Update/Finish/Reset method
// set, following the generic-over-Hash shape spec.md §4.5 describes
// rather than binding to one digest algorithm.
package hmac

// Hash is the minimal streaming hash context HMAC needs. Both
// crypto/sha2 and crypto/sha3 satisfy it.
type Hash interface {
	BLOCK() int
	OUTPUT() int
	Reset()
	Update(p []byte)
	Finish(digest []byte)
}

const (
	ipad = 0x36
	opad = 0x5c
)

// HMAC implements the streaming keyed-hash construction over an
// arbitrary Hash.
type HMAC struct {
	h       Hash
	ipadKey []byte
	opadKey []byte
}

// New returns an HMAC context over h using key, which may be any length
// (keys longer than the block size are hashed down, shorter keys are
// zero-padded, per RFC 2104 §2).
func New(h Hash, key []byte) *HMAC {
	m := &HMAC{h: h}
	m.setKey(key)
	m.rearm()
	return m
}

func (m *HMAC) setKey(key []byte) {
	block := m.h.BLOCK()

	k := make([]byte, block)

	if len(key) > block {
		m.h.Reset()
		m.h.Update(key)
		digest := make([]byte, m.h.OUTPUT())
		m.h.Finish(digest)
		copy(k, digest)
	} else {
		copy(k, key)
	}

	m.ipadKey = make([]byte, block)
	m.opadKey = make([]byte, block)

	for i := 0; i < block; i++ {
		m.ipadKey[i] = k[i] ^ ipad
		m.opadKey[i] = k[i] ^ opad
	}
}

// rearm resets the inner hash and absorbs the ipad-keyed prefix, ready
// for a fresh message.
func (m *HMAC) rearm() {
	m.h.Reset()
	m.h.Update(m.ipadKey)
}

// Update absorbs len(p) bytes of message data.
func (m *HMAC) Update(p []byte) {
	m.h.Update(p)
}

// Finish writes the HMAC tag into mac, which must be OUTPUT() bytes, and
// re-arms the context so Update/Finish can be called again for the next
// message under the same key.
func (m *HMAC) Finish(mac []byte) {
	inner := make([]byte, m.h.OUTPUT())
	m.h.Finish(inner)

	m.h.Reset()
	m.h.Update(m.opadKey)
	m.h.Update(inner)
	m.h.Finish(mac)

	m.rearm()
}
