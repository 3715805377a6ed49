// https://github.com/usbarmory/microbits
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package usb

// SetAddressPhase distinguishes the two points at which the control
// engine must notify the PCD during SET_ADDRESS: the address is latched
// by hardware only after the status phase acknowledges, not at the
// moment the SETUP is parsed.
type SetAddressPhase uint8

const (
	SetupReceived SetAddressPhase = iota
	StatusAcknowledged
)

// EventType enumerates the events a PeripheralController reports
// through PullEvent.
type EventType uint8

const (
	EventReset EventType = iota
	EventSuspend
	EventWakeup
	EventPacketReceived
	EventTransmitComplete
)

// PeripheralEvent is one item drained from the PCD's event queue.
type PeripheralEvent struct {
	Type  EventType
	Speed LinkSpeed // valid for EventReset

	Address  uint8 // physical endpoint address, for PacketReceived/TransmitComplete
	IsSetup  bool  // valid for EventPacketReceived
	Length   int   // valid for EventPacketReceived
}

// PeripheralController abstracts the physical USB hardware. The core
// never performs register I/O itself; every hardware interaction is
// routed through this interface, which a board-specific driver
// implements (analogous to what the original per-SoC register code did
// directly in the teacher's soc/nxp/usb package).
type PeripheralController interface {
	Initialize() error

	// PullEvent returns the next pending event, or ok=false if none is
	// queued. The core calls this repeatedly from Device.ProcessEvents.
	PullEvent() (event PeripheralEvent, ok bool)

	// ConfigureDevice opens the data endpoints described by targetData
	// (opaque, PCD-specific) for the given speed index (0 = full/low
	// speed, 1 = high speed).
	ConfigureDevice(targetData interface{}, speedIndex int) error

	Connect()
	Disconnect()

	SetAddress(address uint8, phase SetAddressPhase)

	// ReceivePacket arms endpoint for one reception into buffer. It
	// eventually yields exactly one EventPacketReceived for this
	// endpoint unless interrupted by reset or disconnect.
	ReceivePacket(endpoint uint8, buffer []byte)

	// TransmitPacket arms endpoint to send buffer. It eventually
	// yields exactly one EventTransmitComplete for this endpoint
	// unless interrupted by reset or disconnect.
	TransmitPacket(endpoint uint8, buffer []byte)

	StallEndpoint(address uint8, stall bool)
	Stalled(address uint8) bool
}
