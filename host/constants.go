package host

import "time"

// Stack limits.
const (
	MaxDevices                  = 4   // Simultaneously tracked devices
	MaxDescriptorSize           = 256 // Largest descriptor read during enumeration
	MaxMiceInterfaces           = 2   // Boot mouse interfaces polled per device
	DeviceDescriptorSize        = 18
	ConfigurationDescriptorSize = 9
)

// bmRequestType fields.
const (
	RequestTypeOut       uint8 = 0x00
	RequestTypeIn        uint8 = 0x80
	RequestTypeStandard  uint8 = 0x00
	RequestTypeClass     uint8 = 0x20
	RequestTypeDevice    uint8 = 0x00
	RequestTypeInterface uint8 = 0x01
)

// Standard requests.
const (
	RequestSetAddress       uint8 = 0x05
	RequestGetDescriptor    uint8 = 0x06
	RequestSetConfiguration uint8 = 0x09
)

// Descriptor types.
const (
	DescriptorTypeDevice        uint8 = 0x01
	DescriptorTypeConfiguration uint8 = 0x02
	DescriptorTypeString        uint8 = 0x03
	DescriptorTypeInterface     uint8 = 0x04
	DescriptorTypeEndpoint      uint8 = 0x05
	DescriptorTypeHID           uint8 = 0x21
)

// LangIDUSEnglish is the language ID used for string descriptors.
const LangIDUSEnglish uint16 = 0x0409

// HID class codes (HID 1.11).
const (
	ClassHID              uint8 = 0x03
	SubclassBoot          uint8 = 0x01
	ProtocolMouse         uint8 = 0x02
	HIDRequestSetIdle     uint8 = 0x0A
	HIDRequestSetProtocol uint8 = 0x0B
	HIDProtocolBoot       uint8 = 0x00
)

// Endpoint descriptor fields.
const (
	endpointDirectionIn uint8 = 0x80
	endpointTypeMask    uint8 = 0x03
	endpointInterrupt   uint8 = 0x03
)

// DefaultPollInterval is used between NAKed interrupt transfers when the
// endpoint reports no interval.
const DefaultPollInterval = 10 * time.Millisecond
