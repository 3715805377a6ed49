// https://github.com/usbarmory/microbits
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package usb

// FunctionHost is the per-function view of the device: it translates a
// function's own 0-based logical endpoint namespace into the physical
// endpoints assigned by the active resource map before forwarding to
// the PCD.
type FunctionHost interface {
	LinkSpeed() LinkSpeed

	StallEndpoint(logicalEndpoint uint8, stall bool)
	Stalled(logicalEndpoint uint8) bool
	ReceivePacket(logicalEndpoint uint8, buffer []byte)
	TransmitPacket(logicalEndpoint uint8, buffer []byte)
}

// FunctionLogic is the live, per-session instance a Function produces
// at SET_CONFIGURATION. It is both a ControlHandler for the function's
// own class/vendor requests (recipient DEVICE or INTERFACE/ENDPOINT
// within the function's own range) and the sink for its endpoints' data
// events.
type FunctionLogic interface {
	ControlHandler

	PacketReceived(logicalEndpoint uint8, length int)
	TransmitComplete(logicalEndpoint uint8)
}

// Function is the static, application-registered object describing one
// USB function (e.g. CDC-ACM). FunctionType returns a fixed 32-bit
// fingerprint checked against the compiled configuration at
// Device.Initialize; a mismatch fails initialization rather than
// silently running with the wrong wiring.
type Function interface {
	FunctionType() uint32
	Initialize(host FunctionHost, config interface{}) (FunctionLogic, error)
}

// funcHost is the device's FunctionHost implementation for one
// registered function slot.
type funcHost struct {
	dev      *Device
	function int
}

func (h *funcHost) LinkSpeed() LinkSpeed {
	return h.dev.engine.speed
}

func (h *funcHost) physical(logicalEndpoint uint8) (uint8, bool) {
	return toPhysicalEndpoint(h.function, logicalEndpoint, h.dev.activeMapping())
}

func (h *funcHost) StallEndpoint(logicalEndpoint uint8, stall bool) {
	if phys, ok := h.physical(logicalEndpoint); ok {
		h.dev.pcd.StallEndpoint(phys, stall)
	}
}

func (h *funcHost) Stalled(logicalEndpoint uint8) bool {
	phys, ok := h.physical(logicalEndpoint)
	if !ok {
		return false
	}
	return h.dev.pcd.Stalled(phys)
}

func (h *funcHost) ReceivePacket(logicalEndpoint uint8, buffer []byte) {
	if phys, ok := h.physical(logicalEndpoint); ok {
		h.dev.pcd.ReceivePacket(phys, buffer)
	}
}

func (h *funcHost) TransmitPacket(logicalEndpoint uint8, buffer []byte) {
	if phys, ok := h.physical(logicalEndpoint); ok {
		h.dev.pcd.TransmitPacket(phys, buffer)
	}
}
