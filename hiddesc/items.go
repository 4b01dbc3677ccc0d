// Package hiddesc parses raw HID report descriptors into a flat stream of
// typed items. Each item carries its collection nesting depth, owning report
// id and the bit location of its data inside the report payload, which is
// all a driver needs to lay out field extraction tables.
package hiddesc

import "fmt"

// Kind classifies an Item.
type Kind uint8

const (
	KindInput Kind = iota
	KindOutput
	KindFeature
	KindCollection
	KindEndCollection
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindOutput:
		return "output"
	case KindFeature:
		return "feature"
	case KindCollection:
		return "collection"
	case KindEndCollection:
		return "end-collection"
	}
	return "unknown"
}

// Usage is a combination of usage page and usage id.
type Usage uint32

// NewUsage creates a Usage from a usage page and usage id.
func NewUsage(page, id uint16) Usage {
	return Usage(uint32(page)<<16 | uint32(id))
}

func (u Usage) Page() uint16 {
	return uint16(u >> 16)
}

func (u Usage) ID() uint16 {
	return uint16(u)
}

func (u Usage) String() string {
	return fmt.Sprintf("0x%02x/0x%02x", u.Page(), u.ID())
}

// DataFlags is the first payload byte of an input, output or feature item.
type DataFlags uint32

const (
	FlagConstant DataFlags = 1 << iota // 0 = data, 1 = constant
	FlagVariable                       // 0 = array, 1 = variable
	FlagRelative                       // 0 = absolute, 1 = relative
	FlagWrap
	FlagNonLinear
	FlagNoPreferred
	FlagNullState
	FlagVolatile
	FlagBufferedBytes
)

func (f DataFlags) IsConstant() bool {
	return f&FlagConstant != 0
}

func (f DataFlags) IsVariable() bool {
	return f&FlagVariable != 0
}

func (f DataFlags) IsRelative() bool {
	return f&FlagRelative != 0
}

// IsAbsolute reports whether the item is a non-constant, variable,
// non-relative field.
func (f DataFlags) IsAbsolute() bool {
	return f&(FlagConstant|FlagVariable|FlagRelative) == FlagVariable
}

// Location identifies where a field's data lives inside a report payload.
// Pos and Size are in bits. Variable fields are emitted one element at a
// time with Count == 1; constant and array fields keep their element count.
type Location struct {
	Pos   uint32
	Size  uint32
	Count uint32
}

// End returns the bit position one past the field.
func (l Location) End() uint32 {
	return l.Pos + l.Size*l.Count
}

// Item is one entry of the flattened descriptor stream.
//
// Depth follows the original parser conventions: a collection item carries
// the depth after opening, an end-collection item the depth after closing,
// and data items the depth they are nested at.
type Item struct {
	Kind     Kind
	Depth    int
	ReportID uint8
	Usage    Usage
	Flags    DataFlags

	CollectionType uint8

	LogicalMinimum  int32
	LogicalMaximum  int32
	PhysicalMinimum int32
	PhysicalMaximum int32
	UnitExponent    int32
	Unit            uint32

	Loc Location
}

// Usage pages.
const (
	PageGenericDesktop uint16 = 0x01
	PageDigitizers     uint16 = 0x0d
	PageMicrosoft      uint16 = 0xff00
)

// Generic desktop usages.
const (
	UsageX uint16 = 0x30
	UsageY uint16 = 0x31
)

// Digitizer usages.
const (
	UsageTouchScreen         uint16 = 0x04
	UsageTouchPad            uint16 = 0x05
	UsageConfiguration       uint16 = 0x0e
	UsageFinger              uint16 = 0x22
	UsageTipPressure         uint16 = 0x30
	UsageInRange             uint16 = 0x32
	UsageTipSwitch           uint16 = 0x42
	UsageConfidence          uint16 = 0x47
	UsageWidth               uint16 = 0x48
	UsageHeight              uint16 = 0x49
	UsageContactID           uint16 = 0x51
	UsageInputMode           uint16 = 0x52
	UsageContactCount        uint16 = 0x54
	UsageContactCountMaximum uint16 = 0x55
	UsageScanTime            uint16 = 0x56
)

// Vendor usages on the Microsoft page.
const (
	UsageTHQACertificate uint16 = 0xc5
)
