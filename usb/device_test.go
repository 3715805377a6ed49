// https://github.com/usbarmory/microbits
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package usb

import "testing"

func buildTestConfig() StaticConfiguration {
	deviceDesc := make([]byte, 18)
	deviceDesc[0] = 18
	deviceDesc[1] = descriptorDevice
	for i := 2; i < len(deviceDesc); i++ {
		deviceDesc[i] = byte(i)
	}

	configDesc := []byte{9, descriptorConfiguration, 9, 0, 1, 1, 0, 0x80, 50}

	return StaticConfiguration{
		Descriptors: DescriptorData{
			Device:        deviceDesc,
			Configuration: [2][]byte{configDesc, configDesc},
		},
		Mapping: [2]ResourceMapping{{}, {}},
	}
}

// TestDevice_EnumerationGetDeviceDescriptor covers the core's USB
// enumeration exchange: after initialize/start, a GET_DESCRIPTOR(Device)
// SETUP yields the compiled device descriptor's first 18 bytes, a
// zero-length OUT status returns the engine to IDLE, and no endpoint is
// left stalled.
func TestDevice_EnumerationGetDeviceDescriptor(t *testing.T) {
	dev := NewDevice()
	pcd := newFakePCD()

	if err := dev.Initialize(pcd, buildTestConfig()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	dev.Start()

	pcd.push(PeripheralEvent{Type: EventReset, Speed: LinkSpeedFull})
	if mask := dev.ProcessEvents(); mask&EvReset == 0 {
		t.Fatal("expected EvReset bit set after a RESET event")
	}

	setup := []byte{0x80, 0x06, 0x00, 0x01, 0x00, 0x00, 0x12, 0x00}
	copy(dev.engine.buf, setup)
	pcd.push(PeripheralEvent{
		Type:    EventPacketReceived,
		Address: EPControlOut,
		IsSetup: true,
		Length:  SetupPacketLength,
	})
	dev.ProcessEvents()

	if len(pcd.transmitted) != 1 {
		t.Fatalf("transmitted packets = %d, want 1", len(pcd.transmitted))
	}
	if len(pcd.transmitted[0]) != 18 {
		t.Fatalf("transmitted length = %d, want 18", len(pcd.transmitted[0]))
	}
	for i, b := range pcd.transmitted[0] {
		if b != dev.config.Descriptors.Device[i] {
			t.Fatalf("byte %d = %#x, want %#x", i, b, dev.config.Descriptors.Device[i])
		}
	}

	pcd.push(PeripheralEvent{Type: EventTransmitComplete, Address: EPControlIn})
	dev.ProcessEvents()

	if dev.engine.state != csRxStatus {
		t.Fatalf("engine state = %v, want csRxStatus", dev.engine.state)
	}

	pcd.push(PeripheralEvent{Type: EventPacketReceived, Address: EPControlOut, IsSetup: false, Length: 0})
	dev.ProcessEvents()

	if dev.engine.state != csIdle {
		t.Fatalf("engine state = %v, want csIdle", dev.engine.state)
	}

	for ep, stalled := range pcd.stalled {
		if stalled {
			t.Fatalf("endpoint %#x stalled after a clean enumeration exchange", ep)
		}
	}
}

// TestDevice_UnknownStandardRequestStalls covers the "unknown standard
// requests are dropped" rule: an unrecognized bRequest yields no
// transmitted data and stalls both control endpoints.
func TestDevice_UnknownStandardRequestStalls(t *testing.T) {
	dev := NewDevice()
	pcd := newFakePCD()

	if err := dev.Initialize(pcd, buildTestConfig()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	pcd.push(PeripheralEvent{Type: EventReset, Speed: LinkSpeedFull})
	dev.ProcessEvents()

	// bRequest 0x7f is not a defined standard request.
	setup := []byte{0x80, 0x7f, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	copy(dev.engine.buf, setup)
	pcd.push(PeripheralEvent{
		Type:    EventPacketReceived,
		Address: EPControlOut,
		IsSetup: true,
		Length:  SetupPacketLength,
	})
	dev.ProcessEvents()

	if len(pcd.transmitted) != 0 {
		t.Fatalf("transmitted packets = %d, want 0", len(pcd.transmitted))
	}
	if !pcd.stalled[EPControlIn] || !pcd.stalled[EPControlOut] {
		t.Fatal("both control endpoints should be stalled after an unresolved request")
	}
	if dev.engine.state != csIdle {
		t.Fatalf("engine state = %v, want csIdle", dev.engine.state)
	}
}

// TestDevice_SetConfigurationInitializesFunctionsOnce checks that
// function logic is created on the first SET_CONFIGURATION(1) after a
// reset and not recreated on a second one.
func TestDevice_SetConfigurationInitializesFunctionsOnce(t *testing.T) {
	dev := NewDevice()
	pcd := newFakePCD()
	fn := &countingFunction{typeID: 0x1234}
	dev.RegisterFunction(fn)

	config := buildTestConfig()
	config.Functions = []FunctionConfig{{FunctionType: fn.typeID}}
	config.Mapping = [2]ResourceMapping{
		{FunctionEndpoints: [][]uint8{{0x81, 0x01}}},
		{FunctionEndpoints: [][]uint8{{0x81, 0x01}}},
	}

	if err := dev.Initialize(pcd, config); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	pcd.push(PeripheralEvent{Type: EventReset, Speed: LinkSpeedFull})
	dev.ProcessEvents()

	setConfig := func(value uint8) {
		setup := []byte{0x00, reqSetConfiguration, value, 0x00, 0x00, 0x00, 0x00, 0x00}
		copy(dev.engine.buf, setup)
		pcd.push(PeripheralEvent{Type: EventPacketReceived, Address: EPControlOut, IsSetup: true, Length: SetupPacketLength})
		dev.ProcessEvents()
		pcd.push(PeripheralEvent{Type: EventTransmitComplete, Address: EPControlIn})
		dev.ProcessEvents()
	}

	setConfig(1)
	setConfig(0)
	setConfig(1)

	if fn.initializeCalls != 1 {
		t.Fatalf("Function.Initialize called %d times, want 1", fn.initializeCalls)
	}
}

type countingFunction struct {
	typeID          uint32
	initializeCalls int
}

func (f *countingFunction) FunctionType() uint32 { return f.typeID }

func (f *countingFunction) Initialize(host FunctionHost, config interface{}) (FunctionLogic, error) {
	f.initializeCalls++
	return &noopFunctionLogic{}, nil
}

type noopFunctionLogic struct{}

func (noopFunctionLogic) SetupControl(req *ControlRequest)                          {}
func (noopFunctionLogic) HandleControl(setup *SetupPacket, buf []byte, n *int) error { return nil }
func (noopFunctionLogic) CompleteControl(setup *SetupPacket, success bool)           {}
func (noopFunctionLogic) PacketReceived(logicalEndpoint uint8, length int)           {}
func (noopFunctionLogic) TransmitComplete(logicalEndpoint uint8)                     {}
