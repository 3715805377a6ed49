// https://github.com/usbarmory/microbits
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package sha3

// shakeTrailer is the domain-separation trailer byte for SHAKE128/256
// (FIPS 202 §6.2): suffix bits '1111' followed by the padding start bit.
const shakeTrailer = 0x1f

// Shake implements the SHAKE128/SHAKE256 extendable-output function
// (FIPS 202 §6.2). Update is only valid while absorbing; Generate forces
// the transition to squeezing on its first call, after which further
// Update calls are invalid.
type Shake struct {
	s        state
	security int
}

// NewShake128 returns a SHAKE128 context.
func NewShake128() *Shake { return newShake(16) }

// NewShake256 returns a SHAKE256 context.
func NewShake256() *Shake { return newShake(32) }

func newShake(security int) *Shake {
	h := &Shake{security: security}
	h.Reset()
	return h
}

// Reset reinitializes the context to the initial absorbing state.
func (h *Shake) Reset() {
	h.s.reset()
	h.s.rate = stateSize - 2*h.security
}

// Update absorbs len(p) bytes of message data.
func (h *Shake) Update(p []byte) {
	if h.s.squeezing {
		panic("sha3: Shake.Update called after Generate")
	}
	h.s.consume(p)
}

// Generate produces len(out) bytes of output, continuing the output
// stream across calls: requesting N bytes in one call or across several
// shorter calls yields the same prefix.
func (h *Shake) Generate(out []byte) {
	if !h.s.squeezing {
		h.s.finish(shakeTrailer)
	}
	h.s.produce(out)
}

// rate exposes the configured rate. Kmac does not call it: it keeps its
// own sponge state and applies its own domain separation framing.
func (h *Shake) rate() int { return h.s.rate }
