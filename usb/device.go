// https://github.com/usbarmory/microbits
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package usb

// EvReset is set in the Device.ProcessEvents result whenever a USB bus
// reset was observed during that poll.
const EvReset uint32 = 1 << 0

// defaultMaxControlPacket is used when Device.MaxControlPacket is left
// at its zero value.
const defaultMaxControlPacket = 64

// registeredFunction tracks one application-registered Function across
// its lifetime: the static Function object, the live FunctionLogic
// produced at the first SET_CONFIGURATION after a reset, and the host
// view passed to it.
type registeredFunction struct {
	fn    Function
	logic FunctionLogic
	host  *funcHost
}

// Device is the top-level USB device-mode core: it owns the control
// engine, the registered functions, and the active resource mapping,
// and is driven by repeated calls to ProcessEvents from the
// application's event loop.
type Device struct {
	// MaxControlPacket bounds single-packet control transfers; it must
	// be set (if non-default) before Initialize. Zero selects 64.
	MaxControlPacket int

	pcd    PeripheralController
	config StaticConfiguration

	engine   *controlEngine
	standard *standardControlHandler

	functions []*registeredFunction

	configured        bool
	functionsUp       bool
	serialNumberASCII string
}

// NewDevice returns a Device with no functions registered and no PCD
// attached; call RegisterFunction for each function, then Initialize.
func NewDevice() *Device {
	return &Device{}
}

// RegisterFunction adds fn to the device. Functions must be registered
// in the same order as the corresponding entries in the
// StaticConfiguration passed to Initialize.
func (d *Device) RegisterFunction(fn Function) {
	d.functions = append(d.functions, &registeredFunction{fn: fn})
}

// SetSerialNumber overrides the runtime-generated serial number string
// used by GET_DESCRIPTOR(STRING) for the descriptor configured as
// DescriptorData.SerialNumberIndex.
func (d *Device) SetSerialNumber(ascii string) {
	d.serialNumberASCII = ascii
}

// Initialize binds the device to a PeripheralController and a compiled
// StaticConfiguration. Function count and FunctionType fingerprints are
// checked against config.Functions; any mismatch fails with
// ErrFunctionMismatch and leaves the device non-operational, per the
// propagation policy for initialization errors.
func (d *Device) Initialize(pcd PeripheralController, config StaticConfiguration) error {
	if len(config.Functions) != len(d.functions) {
		return &InitError{Code: ErrFunctionMismatch}
	}

	for i, rf := range d.functions {
		if rf.fn.FunctionType() != config.Functions[i].FunctionType {
			return &InitError{Code: ErrFunctionMismatch}
		}
		rf.host = &funcHost{dev: d, function: i}
	}

	maxPacket := d.MaxControlPacket
	if maxPacket == 0 {
		maxPacket = defaultMaxControlPacket
	}

	d.pcd = pcd
	d.config = config
	d.serialNumberASCII = config.SerialNumberASCII
	d.engine = newControlEngine(d, pcd, maxPacket)
	d.standard = newStandardControlHandler(d)

	return pcd.Initialize()
}

// Start connects the device to the bus (signals pull-up/attach to the
// host through the PCD).
func (d *Device) Start() {
	d.pcd.Connect()
}

// Stop disconnects the device from the bus.
func (d *Device) Stop() {
	d.pcd.Disconnect()
}

// ProcessEvents drains every event currently queued by the PCD and
// returns an event mask (only EvReset is currently defined). It is the
// single entry point through which the application re-enters the
// device core; see the concurrency model for the synchronization this
// implies when the PCD signals from an interrupt context.
func (d *Device) ProcessEvents() uint32 {
	var mask uint32

	for {
		event, ok := d.pcd.PullEvent()
		if !ok {
			break
		}

		switch event.Type {
		case EventReset:
			d.processReset(event.Speed)
			mask |= EvReset
		case EventPacketReceived:
			d.processPacketReceived(event.Address, event.IsSetup, event.Length)
		case EventTransmitComplete:
			d.processTransmitComplete(event.Address)
		case EventSuspend, EventWakeup:
			// informational only; core has no power-management policy.
		}
	}

	return mask
}

func (d *Device) processReset(speed LinkSpeed) {
	d.configured = false
	d.functionsUp = false
	for _, rf := range d.functions {
		rf.logic = nil
	}
	d.engine.reset(speed)
}

func (d *Device) processPacketReceived(address uint8, isSetup bool, length int) {
	if address&EPNum == 0 {
		d.engine.packetReceived(length, isSetup)
		return
	}

	logical := toLogicalEndpoint(address, d.activeMapping())
	if !logical.OK() {
		return
	}

	if rf := d.functions[logical.Function()]; rf.logic != nil {
		rf.logic.PacketReceived(logical.Value(), length)
	}
}

func (d *Device) processTransmitComplete(address uint8) {
	if address&EPNum == 0 {
		d.engine.transmitComplete()
		return
	}

	logical := toLogicalEndpoint(address, d.activeMapping())
	if !logical.OK() {
		return
	}

	if rf := d.functions[logical.Function()]; rf.logic != nil {
		rf.logic.TransmitComplete(logical.Value())
	}
}

func (d *Device) activeMapping() *ResourceMapping {
	return &d.config.Mapping[linkSpeedIndex(d.engine.speed)]
}

// setConfigured implements the SET_CONFIGURATION side effects: the
// first transition from unconfigured to configured after a reset opens
// the data endpoints and brings every registered function's logic up.
func (d *Device) setConfigured(value uint8) error {
	if value == 0 {
		d.configured = false
		return nil
	}

	d.configured = true

	if d.functionsUp {
		return nil
	}

	if err := d.pcd.ConfigureDevice(d.config.TargetData, linkSpeedIndex(d.engine.speed)); err != nil {
		return err
	}

	for i, rf := range d.functions {
		logic, err := rf.fn.Initialize(rf.host, d.config.Functions[i].ConfigData)
		if err != nil {
			return err
		}
		rf.logic = logic
	}

	d.functionsUp = true
	return nil
}

func (d *Device) configurationByte() uint8 {
	if d.configured {
		return 1
	}
	return 0
}

// resolveControl dispatches a freshly decoded SETUP to the handler
// responsible for it: the built-in standard handler for SetupStandard
// requests, or the owning function's logic for class/vendor requests
// addressed to a specific endpoint, interface, or the device itself.
// It returns nil only when no handler could even be identified for the
// request (ErrUnresolvedControlRequest); a handler that was dispatched
// to but declined leaves req.Accepted false (ErrControlRequestRejected).
func (d *Device) resolveControl(req *ControlRequest, setup *SetupPacket) ControlHandler {
	if setup.Type() == SetupStandard {
		d.standard.SetupControl(req)
		return d.standard
	}

	switch setup.Recipient() {
	case RecipientEndpoint:
		return d.resolveEndpointControl(req, setup)
	case RecipientInterface:
		return d.resolveInterfaceControl(req, setup)
	case RecipientDevice:
		return d.resolveDeviceControl(req)
	default:
		return nil
	}
}

func (d *Device) resolveEndpointControl(req *ControlRequest, setup *SetupPacket) ControlHandler {
	logical := toLogicalEndpoint(uint8(setup.Index), d.activeMapping())
	if !logical.OK() {
		return nil
	}

	rf := d.functions[logical.Function()]
	if rf.logic == nil {
		return nil
	}

	rf.logic.SetupControl(req)
	return rf.logic
}

func (d *Device) resolveInterfaceControl(req *ControlRequest, setup *SetupPacket) ControlHandler {
	logical := toLogicalInterface(uint8(setup.Index), d.activeMapping())
	if !logical.OK() {
		return nil
	}

	rf := d.functions[logical.Function()]
	if rf.logic == nil {
		return nil
	}

	rf.logic.SetupControl(req)
	return rf.logic
}

func (d *Device) resolveDeviceControl(req *ControlRequest) ControlHandler {
	var active []*registeredFunction
	for _, rf := range d.functions {
		if rf.logic != nil {
			active = append(active, rf)
		}
	}

	if len(active) == 1 {
		active[0].logic.SetupControl(req)
		return active[0].logic
	}

	for _, rf := range active {
		req.reset()
		rf.logic.SetupControl(req)
		if req.Accepted {
			return rf.logic
		}
	}

	return nil
}
