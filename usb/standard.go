// https://github.com/usbarmory/microbits
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package usb

// Standard request codes (USB 2.0 table 9-4).
const (
	reqGetStatus        = 0x00
	reqClearFeature     = 0x01
	reqSetFeature       = 0x03
	reqSetAddress       = 0x05
	reqGetDescriptor    = 0x06
	reqGetConfiguration = 0x08
	reqSetConfiguration = 0x09
	reqGetInterface     = 0x0a
	reqSetInterface     = 0x0b
)

// Standard descriptor types (USB 2.0 table 9-5), the ones this core
// inspects directly.
const (
	descriptorDevice        = 1
	descriptorConfiguration = 2
	descriptorString        = 3
)

// featureEndpointHalt is the only feature selector this core implements
// SET_FEATURE/CLEAR_FEATURE for.
const featureEndpointHalt = 0

// standardControlHandler implements the built-in USB standard requests;
// it is always tried first for SetupStandard requests, ahead of any
// function's own class/vendor handling.
type standardControlHandler struct {
	dev *Device
}

func newStandardControlHandler(dev *Device) *standardControlHandler {
	return &standardControlHandler{dev: dev}
}

func (h *standardControlHandler) SetupControl(req *ControlRequest) {
	setup := req.Setup

	switch setup.Request {
	case reqGetDescriptor:
		h.setupGetDescriptor(req)
	case reqSetAddress:
		req.Accepted = true
		req.Direction = ControlDirectionOut
	case reqSetConfiguration:
		req.Accepted = true
		req.Direction = ControlDirectionOut
	case reqGetConfiguration, reqGetInterface:
		req.Accepted = true
		req.Direction = ControlDirectionIn
		req.MaxLength = 1
	case reqGetStatus:
		req.Accepted = true
		req.Direction = ControlDirectionIn
		req.MaxLength = 2
	case reqSetFeature, reqClearFeature:
		h.setupFeature(req)
	case reqSetInterface:
		req.Accepted = true
		req.Direction = ControlDirectionOut
	}
}

func (h *standardControlHandler) setupFeature(req *ControlRequest) {
	setup := req.Setup
	if setup.Recipient() != RecipientEndpoint || setup.Value != featureEndpointHalt {
		return
	}

	req.Accepted = true
	req.Direction = ControlDirectionOut
}

func (h *standardControlHandler) setupGetDescriptor(req *ControlRequest) {
	setup := req.Setup
	descType := uint8(setup.Value >> 8)
	descIndex := uint8(setup.Value)

	var data []byte

	switch descType {
	case descriptorDevice:
		data = h.dev.config.Descriptors.Device
	case descriptorConfiguration:
		data = h.dev.config.Descriptors.Configuration[linkSpeedIndex(h.dev.engine.speed)]
		if len(data) >= 4 {
			total := int(data[2]) | int(data[3])<<8
			if total > 0 && total < len(data) {
				data = data[:total]
			}
		}
	case descriptorString:
		data = h.lookupString(descIndex)
	}

	if data == nil {
		return
	}

	req.Accepted = true
	req.Direction = ControlDirectionIn
	req.MaxLength = uint32(len(data))
	req.Streamer = &byteStreamer{endpoint: req.Endpoint, data: data}
}

func (h *standardControlHandler) lookupString(index uint8) []byte {
	descs := h.dev.config.Descriptors

	if index != 0 && index == descs.SerialNumberIndex && h.dev.serialNumberASCII != "" {
		return encodeSerialNumberDescriptor(h.dev.serialNumberASCII)
	}

	for _, s := range descs.Strings {
		if s.Index == index {
			return s.Bytes
		}
	}

	return nil
}

// encodeSerialNumberDescriptor builds a runtime string descriptor from
// an ASCII string: a {2+2*len, STRING} header followed by the string
// converted to little-endian UTF-16 (ASCII is a strict subset, so each
// code unit is just the byte followed by a zero).
func encodeSerialNumberDescriptor(ascii string) []byte {
	n := len(ascii)
	out := make([]byte, 2+2*n)
	out[0] = byte(2 + 2*n)
	out[1] = descriptorString

	for i := 0; i < n; i++ {
		out[2+2*i] = ascii[i]
	}

	return out
}

func (h *standardControlHandler) HandleControl(setup *SetupPacket, buf []byte, length *int) error {
	switch setup.Request {
	case reqSetAddress:
		h.dev.pcd.SetAddress(uint8(setup.Value), SetupReceived)
		*length = 0
	case reqSetConfiguration:
		if err := h.dev.setConfigured(uint8(setup.Value)); err != nil {
			return err
		}
		*length = 0
	case reqGetConfiguration, reqGetInterface:
		buf[0] = h.dev.configurationByte()
		*length = 1
	case reqGetStatus:
		h.fillStatus(setup, buf)
		*length = 2
	case reqSetFeature:
		h.setEndpointHalt(setup, true)
		*length = 0
	case reqClearFeature:
		h.setEndpointHalt(setup, false)
		*length = 0
	case reqSetInterface:
		*length = 0
	}

	return nil
}

func (h *standardControlHandler) fillStatus(setup *SetupPacket, buf []byte) {
	buf[0], buf[1] = 0, 0

	switch setup.Recipient() {
	case RecipientDevice:
		buf[0] = 0x01 // self-powered, no remote wakeup
	case RecipientEndpoint:
		if phys, ok := h.resolveStatusEndpoint(setup); ok && h.dev.pcd.Stalled(phys) {
			buf[0] = 0x01
		}
	}
}

// resolveStatusEndpoint validates wIndex against the active resource
// map, as required for SET_FEATURE/CLEAR_FEATURE/GET_STATUS with
// recipient ENDPOINT; the control endpoint itself is always valid.
func (h *standardControlHandler) resolveStatusEndpoint(setup *SetupPacket) (uint8, bool) {
	physical := uint8(setup.Index)
	if physical&EPNum == 0 {
		return physical, true
	}

	if !toLogicalEndpoint(physical, h.dev.activeMapping()).OK() {
		return 0, false
	}

	return physical, true
}

func (h *standardControlHandler) setEndpointHalt(setup *SetupPacket, stall bool) {
	if phys, ok := h.resolveStatusEndpoint(setup); ok {
		h.dev.pcd.StallEndpoint(phys, stall)
	}
}

func (h *standardControlHandler) CompleteControl(setup *SetupPacket, success bool) {
	if setup.Request == reqSetAddress && success {
		h.dev.pcd.SetAddress(uint8(setup.Value), StatusAcknowledged)
	}
}

// byteStreamer drains a pre-compiled byte slice (a descriptor) to the
// host one control-packet-sized chunk at a time.
type byteStreamer struct {
	InboundControlStreamer

	endpoint ControlEndpoint
	data     []byte
	offset   int
}

func (s *byteStreamer) TransmitComplete() {
	maxPacket := len(s.endpoint.PacketBuffer())

	chunk := s.data[s.offset:]
	if len(chunk) > maxPacket {
		chunk = chunk[:maxPacket]
	}

	s.offset += len(chunk)
	s.endpoint.TransmitPacket(chunk)
}

func (s *byteStreamer) Completed() {}
func (s *byteStreamer) Aborted()   {}
