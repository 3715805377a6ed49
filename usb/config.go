// https://github.com/usbarmory/microbits
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package usb

// StringDescriptor is a pre-encoded USB string descriptor (UTF-16LE
// body with its 2-byte header already in Bytes).
type StringDescriptor struct {
	Index uint8
	Bytes []byte
}

// DescriptorData is the opaque, pre-compiled descriptor set the
// standard control handler streams to the host verbatim. Only bLength
// (byte 0) of fixed-size descriptors and wTotalLength (little-endian
// bytes 2-3) of configuration descriptors are ever read by the core.
type DescriptorData struct {
	Device []byte
	// Configuration is indexed by linkSpeedIndex: [0] full/low speed,
	// [1] high speed (unused if high speed is not enabled).
	Configuration [2][]byte
	Strings       []StringDescriptor
	// SerialNumberIndex, when non-zero, marks a string index whose
	// descriptor is synthesized at runtime from SerialNumberASCII
	// rather than read out of Strings.
	SerialNumberIndex uint8
}

// EndpointConfig describes one physical endpoint's static allocation,
// used by generic (non-PCD-specific) target data.
type EndpointConfig struct {
	Address   uint8
	Type      EndpointType
	MaxPacket uint16
	// DoubleBuffered requests double-buffering from the PCD, where
	// supported.
	DoubleBuffered bool
}

// GenericTargetData is a PCD-agnostic endpoint allocation plan; PCDs
// that do not need SoC-specific target data can accept this shape
// directly from ConfigureDevice.
type GenericTargetData struct {
	Endpoints [2][]EndpointConfig
}

// FunctionConfig binds a compiled function slot to its configuration
// blob, matched at Initialize time against the Function registered for
// that slot via its FunctionType fingerprint.
type FunctionConfig struct {
	FunctionType uint32
	ConfigData   interface{}
}

// StaticConfiguration is the ahead-of-time compiled descriptor set,
// resource map, and function list for one device personality.
type StaticConfiguration struct {
	TargetID          uint32
	TargetData        interface{}
	Descriptors       DescriptorData
	Mapping           [2]ResourceMapping
	Functions         []FunctionConfig
	SerialNumberASCII string
}
