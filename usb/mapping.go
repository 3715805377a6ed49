// https://github.com/usbarmory/microbits
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package usb

// LogicalIndex is the result of resolving a physical resource (endpoint
// or interface number) to the function that owns it. A zero value with
// OK() false means "unassigned".
type LogicalIndex struct {
	function int
	value    uint8
	ok       bool
}

// Function returns the owning function's registration index.
func (l LogicalIndex) Function() int { return l.function }

// Value returns the logical endpoint or interface number within the
// owning function's namespace.
func (l LogicalIndex) Value() uint8 { return l.value }

// OK reports whether the resource is assigned to a function.
func (l LogicalIndex) OK() bool { return l.ok }

// ResourceMapping is the bidirectional physical<->logical translation
// table for one link speed, compiled ahead of time into a
// StaticConfiguration.
type ResourceMapping struct {
	// InEndpoints/OutEndpoints map a physical endpoint number (0-15)
	// to a packed byte: ((function-index+1)<<4) | logical-index, or 0
	// if unassigned.
	InEndpoints  []uint8
	OutEndpoints []uint8

	// Interfaces maps a physical interface number to the same packed
	// encoding.
	Interfaces []uint8

	// FunctionEndpoints[f][logical] is the physical endpoint number
	// (direction bit included) function f's logical endpoint maps to.
	FunctionEndpoints [][]uint8
}

// unpackMapping decodes the common ((function-index+1)<<4)|value byte
// packing used by the endpoint and interface mapping tables. value is
// the plain 0-based logical index within the owning function's own
// namespace; direction is never encoded in it, since IN and OUT
// physical endpoints are looked up through separate tables.
func unpackMapping(packed uint8) LogicalIndex {
	functionSlot := (packed >> 4) & 0x0f
	if functionSlot == 0 {
		return LogicalIndex{}
	}
	return LogicalIndex{
		function: int(functionSlot - 1),
		value:    packed & 0x0f,
		ok:       true,
	}
}

// toLogicalEndpoint resolves a physical endpoint address (direction bit
// included) to the function and logical endpoint that owns it. The
// resolved LogicalIndex.Value() is the same direction-less index the
// function itself uses with FunctionHost, e.g. in Logic.PacketReceived.
func toLogicalEndpoint(physical uint8, mapping *ResourceMapping) LogicalIndex {
	table := mapping.OutEndpoints
	if physical&EPIn != 0 {
		table = mapping.InEndpoints
	}

	idx := physical & EPNum
	if int(idx) >= len(table) {
		return LogicalIndex{}
	}

	return unpackMapping(table[idx])
}

// toPhysicalEndpoint resolves a function's logical endpoint number
// (direction bit included) to a physical endpoint address.
func toPhysicalEndpoint(function int, logical uint8, mapping *ResourceMapping) (uint8, bool) {
	if function < 0 || function >= len(mapping.FunctionEndpoints) {
		return 0, false
	}
	table := mapping.FunctionEndpoints[function]
	if int(logical&EPNum) >= len(table) {
		return 0, false
	}
	return table[logical&EPNum] | (logical & EPIn), true
}

// toLogicalInterface resolves a physical interface number to the
// function and logical interface that owns it.
func toLogicalInterface(physical uint8, mapping *ResourceMapping) LogicalIndex {
	if int(physical) >= len(mapping.Interfaces) {
		return LogicalIndex{}
	}
	return unpackMapping(mapping.Interfaces[physical])
}
