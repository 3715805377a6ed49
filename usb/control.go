// https://github.com/usbarmory/microbits
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package usb

// ControlEndpoint is the interface a ControlHandler sees of the control
// engine: the current SETUP, the packet-scratch buffer, and the
// primitives needed to drive a multi-packet response.
type ControlEndpoint interface {
	Setup() *SetupPacket
	PacketBuffer() []byte
	LinkSpeed() LinkSpeed

	// ReceivePacket arms the control OUT endpoint to read the next host
	// packet into PacketBuffer.
	ReceivePacket()

	// TransmitPacket sends buf as the next IN packet of the current
	// data phase, trimmed to the remaining wLength.
	TransmitPacket(buf []byte)
}

// ControlDirection is the direction a ControlHandler declares for a
// request's data phase, checked against the SETUP direction bit.
type ControlDirection uint8

const (
	// ControlDirectionIn is a device-to-host (IN) data phase.
	ControlDirectionIn ControlDirection = iota
	// ControlDirectionOut is a host-to-device (OUT) data phase.
	ControlDirectionOut
)

// ControlRequest is filled in by a ControlHandler's SetupControl to
// accept ownership of a SETUP and describe its data phase.
type ControlRequest struct {
	Setup     *SetupPacket
	Endpoint  ControlEndpoint
	Accepted  bool
	Direction ControlDirection
	// MaxLength bounds wLength for this request: a SETUP whose wLength
	// exceeds it fails validation. A zero wLength is always within it.
	MaxLength uint32
	// Streamer, if non-nil, takes over the data phase packet-by-packet
	// instead of the handler's single-shot HandleControl.
	Streamer ControlStreamer
}

func (r *ControlRequest) reset() {
	r.Accepted = false
	r.Direction = ControlDirectionIn
	r.MaxLength = 0
	r.Streamer = nil
}

// ControlHandler resolves and services control requests. A device may
// register several (the built-in standard handler plus one per
// function); SetupControl lets each look at a request before deciding
// whether to accept it.
type ControlHandler interface {
	// SetupControl inspects setup and, if this handler owns the
	// request, fills in req and sets req.Accepted.
	SetupControl(req *ControlRequest)

	// HandleControl services a single-packet request: for an IN data
	// phase it fills buf (up to *length bytes) with the response and
	// updates *length to the actual response size; for an OUT phase
	// (or a zero-length request) buf holds the received data.
	HandleControl(setup *SetupPacket, buf []byte, length *int) error

	// CompleteControl is called once the request's status phase
	// concludes, successfully or not.
	CompleteControl(setup *SetupPacket, success bool)
}

// ControlStreamer takes over a request's data phase one packet at a
// time, used for responses or receptions that do not fit in a single
// control packet.
type ControlStreamer interface {
	// PacketReceived is called for each OUT packet of an inbound data
	// phase; length is 0 for a zero-length request.
	PacketReceived(buf []byte, length int)
	// TransmitComplete is called to request (or continue streaming)
	// the next IN packet of an outbound data phase.
	TransmitComplete()
	// Completed is called once the request's status phase concludes
	// successfully.
	Completed()
	// Aborted is called if the request is cancelled before completion
	// (validation failure, USB reset, or a later SETUP).
	Aborted()
}

// InboundControlStreamer is embeddable by streamers that only ever
// source an IN data phase; TransmitComplete still requires an
// implementation, but PacketReceived is never reached for such a
// streamer (it services ControlDirectionIn requests only).
type InboundControlStreamer struct{}

// PacketReceived does nothing. It is only reached if the streamer is
// installed against a request with an OUT data phase.
func (InboundControlStreamer) PacketReceived(buf []byte, length int) {}

// OutboundControlStreamer is embeddable by streamers that only ever
// sink an OUT data phase.
type OutboundControlStreamer struct{}

// TransmitComplete is a no-op for an outbound-only streamer.
func (OutboundControlStreamer) TransmitComplete() {}
