// https://github.com/usbarmory/microbits
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package serial implements a USB CDC-ACM function (a virtual serial
// port) on top of the usb package's function framework: line-coding and
// control-signal control requests, plus a circular-buffer byte-stream
// data plane with staging-packet backpressure, grounded on the same
// device-serial function this module's USB control engine generalizes
// away from register-level endpoint access.
package serial

import (
	"encoding/binary"
	"hash/fnv"

	"github.com/usbarmory/microbits/buffer"
	"github.com/usbarmory/microbits/usb"
)

// Logical endpoint numbers within this function's own namespace: 0 is
// an interrupt status-notification endpoint the core never drives, 1 is
// bulk IN (device-to-host), 2 is bulk OUT (host-to-device).
const (
	logicalStatusIn = 0
	logicalDataIn   = 1
	logicalDataOut  = 2
)

// DefaultPacketLength is used when Function.PacketLength is left at its
// zero value. 64 bytes is the maximum full-speed bulk packet size.
const DefaultPacketLength = 64

// Pending-event bits returned by Logic.PullEvents.
const (
	EvReset uint32 = 1 << iota
	EvDataRx
	EvDataTx
	EvControlSignalsChanged
	EvLineCodingChanged
)

// CDC ACM class-specific request codes (USB CDC PSTN subclass, table 13).
const (
	reqSetLineCoding       = 0x20
	reqGetLineCoding       = 0x21
	reqSetControlLineState = 0x22
)

const lineCodingSize = 7

// LineCoding is the 7-byte CDC ACM line-coding record.
type LineCoding struct {
	LineRate   uint32
	CharFormat uint8
	ParityType uint8
	DataBits   uint8
}

func (lc LineCoding) encode() []byte {
	buf := make([]byte, lineCodingSize)
	binary.LittleEndian.PutUint32(buf[0:4], lc.LineRate)
	buf[4] = lc.CharFormat
	buf[5] = lc.ParityType
	buf[6] = lc.DataBits
	return buf
}

func decodeLineCoding(b []byte) LineCoding {
	return LineCoding{
		LineRate:   binary.LittleEndian.Uint32(b[0:4]),
		CharFormat: b[4],
		ParityType: b[5],
		DataBits:   b[6],
	}
}

// functionTypeID is this function's fixed 32-bit fingerprint, checked
// against the compiled configuration at usb.Device.Initialize.
var functionTypeID = func() uint32 {
	h := fnv.New32a()
	h.Write([]byte("usb/serial: cdc-acm"))
	return h.Sum32()
}()

// Function is the static, application-registered CDC-ACM function
// object. Register it with a usb.Device before calling Initialize.
type Function struct {
	// PacketLength is the bulk endpoint packet size; zero selects
	// DefaultPacketLength. Must be a legal USB bulk transfer size.
	PacketLength int
	// DiscardOnReset is copied into each new Logic. Initialize builds a
	// new Logic, with unbound and empty RX/TX FIFOs, at the first
	// SET_CONFIGURATION after every reset, so queued data does not carry
	// over a USB reset whatever this is set to.
	DiscardOnReset bool

	logic *Logic
}

// FunctionType returns this function's fingerprint.
func (f *Function) FunctionType() uint32 { return functionTypeID }

// Initialize creates a fresh Logic instance, called once per USB reset
// at the first SET_CONFIGURATION to a non-zero value.
func (f *Function) Initialize(host usb.FunctionHost, config interface{}) (usb.FunctionLogic, error) {
	packetLength := f.PacketLength
	if packetLength == 0 {
		packetLength = DefaultPacketLength
	}

	logic := &Logic{
		host:           host,
		packetLength:   packetLength,
		discardOnReset: f.DiscardOnReset,
		rxPacketBuf:    make([]byte, packetLength),
		txPacketBuf:    make([]byte, packetLength),
		staging:        make([]byte, packetLength),
	}
	logic.reset()

	f.logic = logic

	return logic, nil
}

// Logic returns the current session, or nil before the device has
// reached SET_CONFIGURATION. The application uses this to reach the
// data-plane and accessor methods, which are not part of the
// usb.FunctionLogic interface the core itself calls.
func (f *Function) Logic() *Logic {
	return f.logic
}

// Logic is the live CDC-ACM session created at configuration time. It
// implements usb.FunctionLogic.
type Logic struct {
	host         usb.FunctionHost
	packetLength int

	discardOnReset bool

	rx buffer.Circular
	tx buffer.Circular

	rxPacketBuf []byte
	txPacketBuf []byte

	staging    []byte
	stagingLen int
	hasStaging bool

	txArmed bool

	lineCoding     LineCoding
	controlSignals uint16

	events uint32
}

// SetReceiveBuffer binds the RX FIFO's backing array.
func (l *Logic) SetReceiveBuffer(buf []byte) {
	l.rx.SetBuffer(buf)
}

// SetTransmitBuffer binds the TX FIFO's backing array.
func (l *Logic) SetTransmitBuffer(buf []byte) {
	l.tx.SetBuffer(buf)
}

// SetDiscardOnReset sets this session's discard flag. The session is
// replaced after the next USB reset, so queued data does not survive a
// reset either way.
func (l *Logic) SetDiscardOnReset(discard bool) {
	l.discardOnReset = discard
}

// Receive copies up to len(buf) pending received bytes into buf.
func (l *Logic) Receive(buf []byte) int {
	n := l.rx.ReadBytes(buf)
	l.promoteStaging()
	return n
}

// DiscardReceived drops up to n pending received bytes without copying
// them out.
func (l *Logic) DiscardReceived(n int) int {
	d := l.rx.Discard(n)
	l.promoteStaging()
	return d
}

func (l *Logic) promoteStaging() {
	if l.hasStaging && l.rx.Free() >= l.stagingLen {
		l.rx.WriteBytes(l.staging[:l.stagingLen])
		l.hasStaging = false
		l.stagingLen = 0
		l.events |= EvDataRx
		l.armReceive()
	}
}

// Transmit enqueues buf into the TX FIFO, atomically: either all of buf
// fits or nothing is enqueued. It returns false if there was not enough
// room.
func (l *Logic) Transmit(buf []byte) bool {
	if len(buf) > l.tx.Free() {
		return false
	}
	l.tx.WriteBytes(buf)
	l.kickTransmit()
	return true
}

func (l *Logic) kickTransmit() {
	if l.txArmed || l.tx.Pending() == 0 {
		return
	}
	l.sendNextChunk()
}

func (l *Logic) sendNextChunk() {
	n := l.tx.ReadBytes(l.txPacketBuf)
	l.txArmed = true
	l.host.TransmitPacket(logicalDataIn, l.txPacketBuf[:n])
}

// ReceivePendingBytes, ReceiveHeadPos, ReceiveTailPos, TransmitFreeBytes,
// TransmitHeadPos and TransmitTailPos expose the underlying FIFOs'
// counters for application-side flow control.
func (l *Logic) ReceivePendingBytes() int { return l.rx.Pending() }
func (l *Logic) ReceiveHeadPos() uint64   { return l.rx.Head() }
func (l *Logic) ReceiveTailPos() uint64   { return l.rx.Tail() }
func (l *Logic) TransmitFreeBytes() int   { return l.tx.Free() }
func (l *Logic) TransmitHeadPos() uint64  { return l.tx.Head() }
func (l *Logic) TransmitTailPos() uint64  { return l.tx.Tail() }

// LineCoding returns the last line-coding record set by the host.
func (l *Logic) LineCoding() LineCoding { return l.lineCoding }

// ControlSignals returns the last control-signal word set by the host
// (DTE_PRESENT / RTS bits of SET_CONTROL_LINE_STATE's wValue).
func (l *Logic) ControlSignals() uint16 { return l.controlSignals }

// PullEvents returns and clears the pending-events bitmask.
func (l *Logic) PullEvents() uint32 {
	ev := l.events
	l.events = 0
	return ev
}

func (l *Logic) armReceive() {
	l.host.ReceivePacket(logicalDataOut, l.rxPacketBuf)
}

func (l *Logic) reset() {
	l.events |= EvReset

	if l.discardOnReset {
		l.rx.Discard(l.rx.Pending())
		l.tx.Discard(l.tx.Pending())
		l.hasStaging = false
		l.stagingLen = 0
		l.txArmed = false
	}

	if !l.hasStaging {
		l.armReceive()
	}

	l.kickTransmit()
}

// PacketReceived implements usb.FunctionLogic.
func (l *Logic) PacketReceived(logicalEndpoint uint8, length int) {
	if logicalEndpoint != logicalDataOut {
		return
	}

	if length == 0 {
		l.armReceive()
		return
	}

	if l.rx.Free() >= length {
		l.rx.WriteBytes(l.rxPacketBuf[:length])
		l.events |= EvDataRx
		l.armReceive()
		return
	}

	copy(l.staging, l.rxPacketBuf[:length])
	l.stagingLen = length
	l.hasStaging = true
}

// TransmitComplete implements usb.FunctionLogic.
func (l *Logic) TransmitComplete(logicalEndpoint uint8) {
	if logicalEndpoint != logicalDataIn {
		return
	}

	l.txArmed = false
	l.events |= EvDataTx

	if l.tx.Pending() > 0 {
		l.sendNextChunk()
	}
}

// SetupControl implements usb.ControlHandler for the CDC ACM
// class-specific interface requests.
func (l *Logic) SetupControl(req *usb.ControlRequest) {
	setup := req.Setup

	if setup.Type() != usb.SetupClass || setup.Recipient() != usb.RecipientInterface {
		return
	}

	switch setup.Request {
	case reqSetControlLineState:
		req.Accepted = true
		req.Direction = usb.ControlDirectionOut
	case reqGetLineCoding:
		req.Accepted = true
		req.Direction = usb.ControlDirectionIn
		req.MaxLength = lineCodingSize
	case reqSetLineCoding:
		req.Accepted = true
		req.Direction = usb.ControlDirectionOut
		req.MaxLength = lineCodingSize
	}
}

// HandleControl implements usb.ControlHandler.
func (l *Logic) HandleControl(setup *usb.SetupPacket, buf []byte, length *int) error {
	switch setup.Request {
	case reqSetControlLineState:
		l.controlSignals = setup.Value
		l.events |= EvControlSignalsChanged
		*length = 0
	case reqGetLineCoding:
		copy(buf, l.lineCoding.encode())
		*length = lineCodingSize
	case reqSetLineCoding:
		if len(buf) >= lineCodingSize {
			l.lineCoding = decodeLineCoding(buf)
			l.events |= EvLineCodingChanged
		}
		*length = 0
	}

	return nil
}

// CompleteControl implements usb.ControlHandler; CDC ACM has no
// deferred work to do once a request's status phase concludes.
func (l *Logic) CompleteControl(setup *usb.SetupPacket, success bool) {}
