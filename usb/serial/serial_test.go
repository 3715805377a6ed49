// https://github.com/usbarmory/microbits
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package serial

import (
	"bytes"
	"testing"

	"github.com/usbarmory/microbits/usb"
)

// fakePCD is a minimal PeripheralController driving usb.Device through
// a configuration and class control/data requests, standing in for
// real hardware.
type fakePCD struct {
	events      []usb.PeripheralEvent
	buffers     map[uint8][]byte
	stalled     map[uint8]bool
	transmitted map[uint8][][]byte
}

func newFakePCD() *fakePCD {
	return &fakePCD{
		buffers:     make(map[uint8][]byte),
		stalled:     make(map[uint8]bool),
		transmitted: make(map[uint8][][]byte),
	}
}

func (p *fakePCD) push(ev usb.PeripheralEvent) { p.events = append(p.events, ev) }

func (p *fakePCD) Initialize() error { return nil }

func (p *fakePCD) PullEvent() (usb.PeripheralEvent, bool) {
	if len(p.events) == 0 {
		return usb.PeripheralEvent{}, false
	}
	ev := p.events[0]
	p.events = p.events[1:]
	return ev, true
}

func (p *fakePCD) ConfigureDevice(targetData interface{}, speedIndex int) error { return nil }
func (p *fakePCD) Connect()                                                    {}
func (p *fakePCD) Disconnect()                                                 {}
func (p *fakePCD) SetAddress(address uint8, phase usb.SetAddressPhase)         {}

func (p *fakePCD) ReceivePacket(endpoint uint8, buffer []byte) {
	p.buffers[endpoint] = buffer
}

func (p *fakePCD) TransmitPacket(endpoint uint8, buffer []byte) {
	cp := make([]byte, len(buffer))
	copy(cp, buffer)
	p.transmitted[endpoint] = append(p.transmitted[endpoint], cp)
}

func (p *fakePCD) StallEndpoint(address uint8, stall bool) { p.stalled[address] = stall }
func (p *fakePCD) Stalled(address uint8) bool              { return p.stalled[address] }

func buildConfig(fn *Function) usb.StaticConfiguration {
	deviceDesc := make([]byte, 18)
	deviceDesc[0] = 18

	configDesc := []byte{9, 2, 9, 0, 1, 1, 0, 0x80, 50}

	mapping := usb.ResourceMapping{
		// interface 0 -> function 0, logical interface 0
		Interfaces: []uint8{0x10},
		// physical OUT endpoint 2 -> function 0, logical endpoint 2 (logicalDataOut)
		// physical IN endpoint 1 -> function 0, logical endpoint 1 (logicalDataIn)
		OutEndpoints:      []uint8{0x00, 0x00, 0x12},
		InEndpoints:       []uint8{0x00, 0x11, 0x00},
		FunctionEndpoints: [][]uint8{{0x00, 0x81, 0x02}},
	}

	return usb.StaticConfiguration{
		Descriptors: usb.DescriptorData{
			Device:        deviceDesc,
			Configuration: [2][]byte{configDesc, configDesc},
		},
		Mapping:   [2]usb.ResourceMapping{mapping, mapping},
		Functions: []usb.FunctionConfig{{FunctionType: fn.FunctionType()}},
	}
}

// setupConfiguredDevice brings a device with one registered CDC-ACM
// function through RESET and SET_CONFIGURATION(1), returning the live
// Logic session the core created.
func setupConfiguredDevice(t *testing.T) (*usb.Device, *fakePCD, *Function, *Logic) {
	t.Helper()

	fn := &Function{}
	dev := usb.NewDevice()
	dev.RegisterFunction(fn)

	pcd := newFakePCD()
	if err := dev.Initialize(pcd, buildConfig(fn)); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	pcd.push(usb.PeripheralEvent{Type: usb.EventReset, Speed: usb.LinkSpeedFull})
	dev.ProcessEvents()

	// SET_CONFIGURATION(1): standard, device-recipient, zero-length OUT.
	setConfig := []byte{0x00, 0x09, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00}
	copy(pcd.buffers[usb.EPControlOut], setConfig)
	pcd.push(usb.PeripheralEvent{Type: usb.EventPacketReceived, Address: usb.EPControlOut, IsSetup: true, Length: usb.SetupPacketLength})
	dev.ProcessEvents()
	pcd.push(usb.PeripheralEvent{Type: usb.EventTransmitComplete, Address: usb.EPControlIn})
	dev.ProcessEvents()

	logic := fn.Logic()
	if logic == nil {
		t.Fatal("Function.Logic() is nil after SET_CONFIGURATION(1)")
	}

	return dev, pcd, fn, logic
}

// TestCDCACM_SetLineCoding covers scenario 6: a SET_LINE_CODING request
// of dwLineRate=9600/8N1 updates the line-coding record and raises
// EV_LINE_CODING_CHANGED in the next PullEvents.
func TestCDCACM_SetLineCoding(t *testing.T) {
	dev, pcd, _, logic := setupConfiguredDevice(t)

	// SETUP {0x21, 0x20, 0, 0, 7}: SET_LINE_CODING, 7-byte OUT data phase.
	setup := []byte{0x21, 0x20, 0x00, 0x00, 0x00, 0x00, 0x07, 0x00}
	copy(pcd.buffers[usb.EPControlOut], setup)
	pcd.push(usb.PeripheralEvent{Type: usb.EventPacketReceived, Address: usb.EPControlOut, IsSetup: true, Length: usb.SetupPacketLength})
	dev.ProcessEvents()

	lineCodingBytes := []byte{0x80, 0x25, 0x00, 0x00, 0x00, 0x00, 0x08}
	copy(pcd.buffers[usb.EPControlOut], lineCodingBytes)
	pcd.push(usb.PeripheralEvent{Type: usb.EventPacketReceived, Address: usb.EPControlOut, Length: len(lineCodingBytes)})
	dev.ProcessEvents()

	pcd.push(usb.PeripheralEvent{Type: usb.EventTransmitComplete, Address: usb.EPControlIn})
	dev.ProcessEvents()

	got := logic.LineCoding()
	want := LineCoding{LineRate: 9600, CharFormat: 0, ParityType: 0, DataBits: 8}
	if got != want {
		t.Fatalf("lineCoding = %+v, want %+v", got, want)
	}

	events := logic.PullEvents()
	if events&EvLineCodingChanged == 0 {
		t.Fatal("expected EvLineCodingChanged set in PullEvents result")
	}
}

// TestCDCACM_SetControlLineState covers the zero-length
// SET_CONTROL_LINE_STATE request.
func TestCDCACM_SetControlLineState(t *testing.T) {
	dev, pcd, _, logic := setupConfiguredDevice(t)

	setup := []byte{0x21, 0x22, 0x03, 0x00, 0x00, 0x00, 0x00, 0x00}
	copy(pcd.buffers[usb.EPControlOut], setup)
	pcd.push(usb.PeripheralEvent{Type: usb.EventPacketReceived, Address: usb.EPControlOut, IsSetup: true, Length: usb.SetupPacketLength})
	dev.ProcessEvents()

	pcd.push(usb.PeripheralEvent{Type: usb.EventTransmitComplete, Address: usb.EPControlIn})
	dev.ProcessEvents()

	if logic.ControlSignals() != 0x03 {
		t.Fatalf("controlSignals = %#x, want 0x03", logic.ControlSignals())
	}
	if logic.PullEvents()&EvControlSignalsChanged == 0 {
		t.Fatal("expected EvControlSignalsChanged set")
	}
}

// TestCDCACM_ReceiveDataPlane covers the RX path: a data packet
// arriving on the OUT endpoint becomes available via Receive and raises
// EV_DATA_RX.
func TestCDCACM_ReceiveDataPlane(t *testing.T) {
	dev, pcd, _, logic := setupConfiguredDevice(t)

	logic.SetReceiveBuffer(make([]byte, 256))
	logic.PullEvents() // discard EV_RESET from configuration

	payload := []byte("hello")
	copy(pcd.buffers[0x02], payload)
	pcd.push(usb.PeripheralEvent{Type: usb.EventPacketReceived, Address: 0x02, Length: len(payload)})
	dev.ProcessEvents()

	if logic.ReceivePendingBytes() != len(payload) {
		t.Fatalf("pending = %d, want %d", logic.ReceivePendingBytes(), len(payload))
	}

	out := make([]byte, len(payload))
	n := logic.Receive(out)
	if n != len(payload) || !bytes.Equal(out, payload) {
		t.Fatalf("Receive() = %q (%d), want %q", out[:n], n, payload)
	}

	if logic.PullEvents()&EvDataRx == 0 {
		t.Fatal("expected EvDataRx set")
	}
}

// TestCDCACM_TransmitDataPlane covers the TX path: Transmit arms an
// outbound packet, taking its bytes out of the queue as it is armed, and
// TransmitComplete raises EV_DATA_TX.
func TestCDCACM_TransmitDataPlane(t *testing.T) {
	dev, pcd, _, logic := setupConfiguredDevice(t)
	_ = dev

	logic.SetTransmitBuffer(make([]byte, 256))
	logic.PullEvents()

	payload := []byte("world")
	if !logic.Transmit(payload) {
		t.Fatal("Transmit reported no room")
	}

	sent := pcd.transmitted[0x81]
	if len(sent) != 1 || !bytes.Equal(sent[0], payload) {
		t.Fatalf("transmitted = %v, want one packet %q", sent, payload)
	}

	pcd.push(usb.PeripheralEvent{Type: usb.EventTransmitComplete, Address: 0x81})
	dev.ProcessEvents()

	if logic.PullEvents()&EvDataTx == 0 {
		t.Fatal("expected EvDataTx set")
	}
	if logic.TransmitFreeBytes() != 256 {
		t.Fatalf("transmitFreeBytes = %d, want 256 after drain", logic.TransmitFreeBytes())
	}
}
