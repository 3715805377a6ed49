// https://github.com/usbarmory/microbits
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package usb

// fakePCD is a minimal in-memory PeripheralController used to drive the
// control engine in tests without real hardware, standing in for a
// board-specific driver such as the teacher's soc/nxp/usb register
// code.
type fakePCD struct {
	events []PeripheralEvent

	stalled map[uint8]bool

	transmitted [][]byte
	addressed   []addressCall
	configured  []configureCall
}

type addressCall struct {
	address uint8
	phase   SetAddressPhase
}

type configureCall struct {
	targetData interface{}
	speedIndex int
}

func newFakePCD() *fakePCD {
	return &fakePCD{stalled: make(map[uint8]bool)}
}

func (p *fakePCD) Initialize() error { return nil }

func (p *fakePCD) PullEvent() (PeripheralEvent, bool) {
	if len(p.events) == 0 {
		return PeripheralEvent{}, false
	}
	ev := p.events[0]
	p.events = p.events[1:]
	return ev, true
}

func (p *fakePCD) push(ev PeripheralEvent) {
	p.events = append(p.events, ev)
}

func (p *fakePCD) ConfigureDevice(targetData interface{}, speedIndex int) error {
	p.configured = append(p.configured, configureCall{targetData, speedIndex})
	return nil
}

func (p *fakePCD) Connect()    {}
func (p *fakePCD) Disconnect() {}

func (p *fakePCD) SetAddress(address uint8, phase SetAddressPhase) {
	p.addressed = append(p.addressed, addressCall{address, phase})
}

func (p *fakePCD) ReceivePacket(endpoint uint8, buffer []byte) {}

func (p *fakePCD) TransmitPacket(endpoint uint8, buffer []byte) {
	cp := make([]byte, len(buffer))
	copy(cp, buffer)
	p.transmitted = append(p.transmitted, cp)
}

func (p *fakePCD) StallEndpoint(address uint8, stall bool) {
	p.stalled[address] = stall
}

func (p *fakePCD) Stalled(address uint8) bool {
	return p.stalled[address]
}
