// https://github.com/usbarmory/microbits
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package usb

import "github.com/usbarmory/microbits/internal/status"

// controlState is the control engine's current phase.
type controlState uint8

const (
	csIdle controlState = iota
	csTxMoreData
	csTxFinalData
	csRxData
	csTxStatus
	csRxStatus
	csWaiting
)

// controlEngine drives the single control endpoint pair (address 0) on
// behalf of a Device: it owns the setup-packet state machine described
// in the control-transfer lifecycle, delegating request resolution to
// Device.resolveControl and packet I/O to the PCD.
type controlEngine struct {
	pcd    PeripheralController
	device *Device

	maxPacket int
	buf       []byte

	setup SetupPacket
	state controlState
	speed LinkSpeed

	handler  ControlHandler
	streamer ControlStreamer

	dataLength   uint32
	lastTxLength int
}

func newControlEngine(dev *Device, pcd PeripheralController, maxPacket int) *controlEngine {
	return &controlEngine{
		device:    dev,
		pcd:       pcd,
		maxPacket: maxPacket,
		buf:       make([]byte, maxPacket),
	}
}

// ControlEndpoint interface, exposed to handlers/streamers.

func (c *controlEngine) Setup() *SetupPacket  { return &c.setup }
func (c *controlEngine) PacketBuffer() []byte { return c.buf }
func (c *controlEngine) LinkSpeed() LinkSpeed { return c.speed }

func (c *controlEngine) ReceivePacket() {
	c.state = csRxData
	c.pcd.ReceivePacket(EPControlOut, c.buf)
}

func (c *controlEngine) TransmitPacket(buf []byte) {
	remaining := int(c.setup.Length) - int(c.dataLength)
	if remaining < 0 {
		remaining = 0
	}
	if len(buf) > remaining {
		buf = buf[:remaining]
	}

	c.pcd.TransmitPacket(EPControlIn, buf)
	c.dataLength += uint32(len(buf))
	c.lastTxLength = len(buf)

	if int(c.dataLength) >= int(c.setup.Length) || len(buf) < c.maxPacket {
		c.state = csTxFinalData
	} else {
		c.state = csTxMoreData
	}
}

// reset re-arms the engine after device initialization or a USB reset,
// aborting any in-flight request.
func (c *controlEngine) reset(speed LinkSpeed) {
	c.speed = speed
	c.abortInFlight()
	c.state = csIdle
	c.pcd.ReceivePacket(EPControlOut, c.buf)
}

func (c *controlEngine) abortInFlight() {
	if c.streamer != nil {
		c.streamer.Aborted()
		c.streamer = nil
	} else if c.handler != nil {
		c.handler.CompleteControl(&c.setup, false)
	}
	c.handler = nil
}

// abortRequest stalls both control endpoints and recovers to IDLE,
// following a failed validation or processing step.
func (c *controlEngine) abortRequest() {
	c.pcd.StallEndpoint(EPControlIn, true)
	c.pcd.StallEndpoint(EPControlOut, true)
	c.abortInFlight()
	c.state = csIdle
}

// completeRequest finishes a successful status phase and rearms for the
// next SETUP.
func (c *controlEngine) completeRequest() {
	if c.streamer != nil {
		c.streamer.Completed()
		c.streamer = nil
	} else if c.handler != nil {
		c.handler.CompleteControl(&c.setup, true)
	}
	c.handler = nil
	c.state = csIdle
	c.pcd.ReceivePacket(EPControlOut, c.buf)
}

// streamReceiveNext forwards length bytes (0 for a zero-length request)
// to the installed streamer and reports whether the data phase is now
// complete.
func (c *controlEngine) streamReceiveNext(length int) bool {
	c.state = csWaiting
	c.dataLength += uint32(length)
	c.streamer.PacketReceived(c.buf, length)
	return c.state != csIdle && c.dataLength >= uint32(c.setup.Length)
}

// packetReceived handles a PACKET_RECEIVED event on the control OUT
// endpoint; isSetup distinguishes a fresh SETUP token from a data/status
// packet in the current phase.
func (c *controlEngine) packetReceived(length int, isSetup bool) {
	var st status.Status

	if isSetup {
		c.setupReceived(length, &st)
	} else {
		c.dataReceived(length, &st)
	}

	if !st.OK() {
		c.abortRequest()
	}
}

func (c *controlEngine) setupReceived(length int, st *status.Status) {
	c.abortInFlight()
	c.state = csIdle
	c.dataLength = 0
	c.lastTxLength = 0

	if length != SetupPacketLength {
		st.Set(ErrorCategory, ErrInvalidSetupLength)
		return
	}

	c.setup = decodeSetupPacket(c.buf)

	req := ControlRequest{Setup: &c.setup, Endpoint: c}
	req.reset()

	c.handler = c.device.resolveControl(&req, &c.setup)
	if c.handler == nil {
		st.Set(ErrorCategory, ErrUnresolvedControlRequest)
		return
	}

	if !req.Accepted {
		st.Set(ErrorCategory, ErrControlRequestRejected)
		c.handler = nil
		return
	}

	c.streamer = req.Streamer

	wantsHostDirection := req.Direction == ControlDirectionIn
	valid := c.setup.DeviceToHost() == wantsHostDirection && uint32(c.setup.Length) <= req.MaxLength
	if valid && c.streamer == nil {
		valid = int(c.setup.Length) <= c.maxPacket
	}

	if !valid {
		st.Set(ErrorCategory, ErrControlValidationFailed)
		return
	}

	switch {
	case c.setup.DeviceToHost():
		c.beginTxPhase(st)
	case c.setup.Length == 0:
		c.beginZeroLengthRxPhase(st)
	default:
		c.ReceivePacket()
	}
}

func (c *controlEngine) beginTxPhase(st *status.Status) {
	if c.streamer != nil {
		c.state = csWaiting
		c.lastTxLength = c.maxPacket
		c.streamer.TransmitComplete()
		return
	}

	length := c.maxPacket
	if err := c.handler.HandleControl(&c.setup, c.buf, &length); err != nil {
		st.Set(ErrorCategory, ErrControlValidationFailed)
		return
	}
	if length > int(c.setup.Length) {
		length = int(c.setup.Length)
	}

	c.pcd.TransmitPacket(EPControlIn, c.buf[:length])
	c.dataLength = uint32(length)
	c.lastTxLength = length
	c.state = csTxFinalData
}

func (c *controlEngine) beginZeroLengthRxPhase(st *status.Status) {
	if c.streamer != nil {
		c.streamReceiveNext(0)
		if c.state == csIdle {
			return
		}
	} else {
		length := 0
		if err := c.handler.HandleControl(&c.setup, c.buf[:0], &length); err != nil {
			st.Set(ErrorCategory, ErrControlValidationFailed)
			return
		}
	}

	c.state = csTxStatus
	c.pcd.TransmitPacket(EPControlIn, nil)
}

func (c *controlEngine) dataReceived(length int, st *status.Status) {
	switch c.state {
	case csRxStatus:
		c.completeRequest()

	case csRxData:
		var completed bool

		if c.streamer != nil {
			if c.dataLength+uint32(length) > uint32(c.setup.Length) {
				st.Set(ErrorCategory, ErrControlDataTooLong)
				return
			}
			completed = c.streamReceiveNext(length)
		} else {
			n := length
			if n > int(c.setup.Length)-int(c.dataLength) {
				n = int(c.setup.Length) - int(c.dataLength)
			}
			if err := c.handler.HandleControl(&c.setup, c.buf[:n], &n); err != nil {
				st.Set(ErrorCategory, ErrControlValidationFailed)
				return
			}
			c.dataLength += uint32(length)
			completed = c.dataLength >= uint32(c.setup.Length)
		}

		if completed {
			c.state = csTxStatus
			c.pcd.TransmitPacket(EPControlIn, nil)
		}
	}
}

// transmitComplete handles a TRANSMIT_COMPLETE event on the control IN
// endpoint.
func (c *controlEngine) transmitComplete() {
	switch c.state {
	case csTxStatus:
		c.completeRequest()

	case csTxFinalData:
		c.state = csRxStatus
		c.pcd.ReceivePacket(EPControlOut, c.buf)

	case csTxMoreData:
		c.state = csWaiting
		c.lastTxLength = c.maxPacket
		c.streamer.TransmitComplete()
	}
}
