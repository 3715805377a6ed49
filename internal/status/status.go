// https://github.com/usbarmory/microbits
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package status implements the sticky (category, code) error carrier
// used internally by the USB control engine (spec.md §7): the first
// failure recorded wins, later ones are dropped, and the success state is
// the null category.
package status

// Category identifies the subsystem a Status code belongs to. Categories
// are compared by pointer identity, so each subsystem declares its own
// package-level instance.
type Category struct {
	name string
}

// NewCategory declares a new error category.
func NewCategory(name string) *Category {
	return &Category{name: name}
}

func (c *Category) String() string {
	if c == nil {
		return "ok"
	}
	return c.name
}

// Status carries a sticky (category, code) pair. The zero value is the
// success state.
type Status struct {
	category *Category
	code     int
}

// OK reports whether no error has been recorded yet.
func (s *Status) OK() bool {
	return s.category == nil
}

// Set records an error, unless one is already recorded. It returns true
// if this call recorded the error (i.e. the carrier was previously OK).
func (s *Status) Set(cat *Category, code int) bool {
	if s.category != nil {
		return false
	}

	s.category = cat
	s.code = code

	return true
}

// Category returns the recorded category, or nil if OK.
func (s *Status) Category() *Category {
	return s.category
}

// Code returns the recorded code. Meaningless if OK.
func (s *Status) Code() int {
	return s.code
}

// Reset clears the carrier back to the success state.
func (s *Status) Reset() {
	s.category = nil
	s.code = 0
}

func (s Status) String() string {
	if s.OK() {
		return "ok"
	}
	return s.category.String()
}
