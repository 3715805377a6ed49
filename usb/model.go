// https://github.com/usbarmory/microbits
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package usb implements a peripheral-controller-agnostic USB 2.0
// device-mode core: a control-transfer state machine, standard request
// handling, and a pluggable function framework with endpoint/interface
// virtualization. The package never touches hardware registers; it
// drives and is driven by a PeripheralController implementation supplied
// by the caller, generalizing the request/descriptor handling this
// module's teacher once open-coded per SoC (see soc/nxp/usb in the
// original tree) into a single reusable engine.
package usb

import "encoding/binary"

// Endpoint direction and number masks, applied to a SETUP packet's
// bEndpointAddress-shaped byte.
const (
	EPIn  = 0x80
	EPOut = 0x00
	EPNum = 0x0f

	EPControlIn  = EPIn | 0x00
	EPControlOut = EPOut | 0x00
)

// SetupPacketLength is the fixed wire size of a USB SETUP token.
const SetupPacketLength = 8

// LinkSpeed identifies the negotiated bus speed at RESET.
type LinkSpeed uint8

const (
	LinkSpeedFull LinkSpeed = iota
	LinkSpeedHigh
)

// linkSpeedIndex returns the resource-mapping/configuration array index
// for a negotiated speed: 0 for full/low speed, 1 for high speed.
func linkSpeedIndex(speed LinkSpeed) int {
	if speed == LinkSpeedHigh {
		return 1
	}
	return 0
}

// EndpointType mirrors the USB bmAttributes transfer-type field. This
// core does not implement isochronous transfer policy.
type EndpointType uint8

const (
	EndpointControl EndpointType = iota
	EndpointIsochronous
	EndpointBulk
	EndpointInterrupt
)

// SetupType is the bmRequestType "type" field (bits 5-6).
type SetupType uint8

const (
	SetupStandard SetupType = iota
	SetupClass
	SetupVendor
)

// SetupRecipient is the bmRequestType "recipient" field (bits 0-4).
type SetupRecipient uint8

const (
	RecipientDevice SetupRecipient = iota
	RecipientInterface
	RecipientEndpoint
	RecipientOther
)

// SetupPacket is the decoded 8-byte SETUP token.
type SetupPacket struct {
	RequestType uint8
	Request     uint8
	Value       uint16
	Index       uint16
	Length      uint16
}

// DeviceToHost reports the data-phase direction bit.
func (s *SetupPacket) DeviceToHost() bool {
	return s.RequestType&0x80 != 0
}

// Type returns the request's bmRequestType type field.
func (s *SetupPacket) Type() SetupType {
	return SetupType((s.RequestType >> 5) & 0x03)
}

// Recipient returns the request's bmRequestType recipient field.
func (s *SetupPacket) Recipient() SetupRecipient {
	return SetupRecipient(s.RequestType & 0x1f)
}

// decodeSetupPacket decodes an 8-byte little-endian SETUP token.
func decodeSetupPacket(buf []byte) SetupPacket {
	return SetupPacket{
		RequestType: buf[0],
		Request:     buf[1],
		Value:       binary.LittleEndian.Uint16(buf[2:4]),
		Index:       binary.LittleEndian.Uint16(buf[4:6]),
		Length:      binary.LittleEndian.Uint16(buf[6:8]),
	}
}
