// https://github.com/usbarmory/microbits
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package csprng

import (
	"bytes"
	"testing"
)

func TestCSPRNG_DistinctEntropyProducesDistinctOutput(t *testing.T) {
	a := New()
	a.PushEntropy([]byte("entropy source one"))

	b := New()
	b.PushEntropy([]byte("entropy source two"))

	var outA, outB [32]byte
	a.Generate(outA[:])
	b.Generate(outB[:])

	if bytes.Equal(outA[:], outB[:]) {
		t.Error("distinct entropy pushes produced identical output")
	}
}

func TestCSPRNG_GenerateZeroLengthIsNoOp(t *testing.T) {
	c := New()
	c.PushEntropy([]byte("seed"))

	var before [32]byte
	c.Generate(before[:])

	c.Generate(nil)

	var after [32]byte
	c.Generate(after[:])

	c2 := New()
	c2.PushEntropy([]byte("seed"))
	var expectBefore, expectAfter [32]byte
	c2.Generate(expectBefore[:])
	c2.Generate(expectAfter[:])

	if !bytes.Equal(before[:], expectBefore[:]) || !bytes.Equal(after[:], expectAfter[:]) {
		t.Error("Generate(nil) perturbed the generator state")
	}
}

func TestCSPRNG_EntropyBeforeFirstGenerateAffectsOutput(t *testing.T) {
	a := New()
	var outA [64]byte
	a.Generate(outA[:])

	b := New()
	b.PushEntropy([]byte("x"))
	var outB [64]byte
	b.Generate(outB[:])

	if bytes.Equal(outA[:], outB[:]) {
		t.Error("entropy pushed before the first Generate did not influence output")
	}
}

func TestCSPRNG_SuccessiveBlocksDiffer(t *testing.T) {
	c := New()
	c.PushEntropy([]byte("seed material"))

	var a, b [64]byte
	c.Generate(a[:])
	c.Generate(b[:])

	if bytes.Equal(a[:], b[:]) {
		t.Error("successive Generate calls produced identical output")
	}
}
