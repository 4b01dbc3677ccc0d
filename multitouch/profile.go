package multitouch

import (
	"strings"

	"github.com/ludoplex/iichid/hiddesc"
)

// MaxSlots bounds the per-report location table; contacts described beyond
// it are dropped during analysis.
const MaxSlots = 16

// DeviceClass is the touch family collection the digitizer declared.
type DeviceClass uint8

const (
	ClassTouchscreen DeviceClass = iota + 1
	ClassTouchpad
)

func (c DeviceClass) String() string {
	switch c {
	case ClassTouchscreen:
		return "touchscreen"
	case ClassTouchpad:
		return "touchpad"
	}
	return "unknown"
}

// CapabilitySet is a bitmask over Channels present in the descriptor.
type CapabilitySet uint32

func (s CapabilitySet) Has(c Channel) bool {
	return s&(1<<c) != 0
}

func (s *CapabilitySet) Add(c Channel) {
	*s |= 1 << c
}

// String summarizes the optional capabilities the way the device announce
// line formats them.
func (s CapabilitySet) String() string {
	var b strings.Builder
	for _, f := range []struct {
		ch    Channel
		label string
	}{
		{ChannelInRange, "R"},
		{ChannelConfidence, "C"},
		{ChannelWidth, "W"},
		{ChannelHeight, "H"},
		{ChannelPressure, "P"},
	} {
		if s.Has(f.ch) {
			b.WriteString(f.label)
		}
	}
	return b.String()
}

// AxisInfo is the logical range and resolution of one channel.
type AxisInfo struct {
	Minimum    int32
	Maximum    int32
	Resolution int32
}

// FeatureReport locates an auxiliary feature report: its id, byte length
// and, when a single field matters, that field's bit location.
type FeatureReport struct {
	ID     uint8
	Length int
	Loc    hiddesc.Location
}

// DeviceProfile is the outcome of descriptor analysis: everything the
// decoder needs to pull contact data out of an input report. It is
// immutable after analysis except for the slot axis maximum, which feature
// refinement may lower.
type DeviceProfile struct {
	Class     DeviceClass
	ReportID  uint8
	InputSize int

	Caps      CapabilitySet
	Locations [MaxSlots][channelCount]hiddesc.Location
	Axes      [channelCount]AxisInfo

	ContactCountLoc hiddesc.Location
	SlotsPerReport  int

	ContactMax  FeatureReport
	InputMode   FeatureReport
	Certificate FeatureReport
}

// Location returns the field location of a channel for one physical
// contact index; absent entries have zero size.
func (p *DeviceProfile) Location(contact int, ch Channel) hiddesc.Location {
	return p.Locations[contact][ch]
}

// Axis returns the logical range recorded for a channel.
func (p *DeviceProfile) Axis(ch Channel) AxisInfo {
	return p.Axes[ch]
}
