// Package multitouch turns HID digitizer report descriptors into field
// extraction tables and decodes input report streams into per-contact
// evdev events, including hybrid-delivery reassembly.
package multitouch

import (
	"github.com/ludoplex/iichid/evdev"
	"github.com/ludoplex/iichid/hiddesc"
)

// Channel is one semantic touch attribute tracked per contact.
type Channel uint8

const (
	ChannelTipSwitch Channel = iota
	ChannelWidth
	ChannelHeight
	ChannelOrientation
	ChannelX
	ChannelY
	ChannelContactID
	ChannelPressure
	ChannelInRange
	ChannelConfidence
	ChannelToolX
	ChannelToolY
	channelCount
)

// Once a contact passes the liveness test its tip switch cell is rewritten
// to the resolved slot index and width/height become touch major/minor, so
// those channels share cells and event codes.
const (
	ChannelSlot  = ChannelTipSwitch
	ChannelMajor = ChannelWidth
	ChannelMinor = ChannelHeight
)

// NumChannels is the size of the fixed channel set.
const NumChannels = int(channelCount)

// NoCode marks channels that exist only for gating logic and never emit
// an event.
const NoCode uint16 = 0xffff

type channelInfo struct {
	name     string
	usage    hiddesc.Usage // zero for derived channels
	code     uint16
	required bool
}

var channelTable = [channelCount]channelInfo{
	ChannelTipSwitch: {
		name:     "TIP",
		usage:    hiddesc.NewUsage(hiddesc.PageDigitizers, hiddesc.UsageTipSwitch),
		code:     evdev.AbsMTSlot,
		required: true,
	},
	ChannelWidth: {
		name:  "WDTH",
		usage: hiddesc.NewUsage(hiddesc.PageDigitizers, hiddesc.UsageWidth),
		code:  evdev.AbsMTTouchMajor,
	},
	ChannelHeight: {
		name:  "HGHT",
		usage: hiddesc.NewUsage(hiddesc.PageDigitizers, hiddesc.UsageHeight),
		code:  evdev.AbsMTTouchMinor,
	},
	ChannelOrientation: {
		// Derived from width and height, not a descriptor field.
		name: "ORIE",
		code: evdev.AbsMTOrientation,
	},
	ChannelX: {
		name:     "X",
		usage:    hiddesc.NewUsage(hiddesc.PageGenericDesktop, hiddesc.UsageX),
		code:     evdev.AbsMTPositionX,
		required: true,
	},
	ChannelY: {
		name:     "Y",
		usage:    hiddesc.NewUsage(hiddesc.PageGenericDesktop, hiddesc.UsageY),
		code:     evdev.AbsMTPositionY,
		required: true,
	},
	ChannelContactID: {
		name:     "C_ID",
		usage:    hiddesc.NewUsage(hiddesc.PageDigitizers, hiddesc.UsageContactID),
		code:     evdev.AbsMTTrackingID,
		required: true,
	},
	ChannelPressure: {
		name:  "PRES",
		usage: hiddesc.NewUsage(hiddesc.PageDigitizers, hiddesc.UsageTipPressure),
		code:  evdev.AbsMTPressure,
	},
	ChannelInRange: {
		name:  "RANG",
		usage: hiddesc.NewUsage(hiddesc.PageDigitizers, hiddesc.UsageInRange),
		code:  evdev.AbsMTDistance,
	},
	ChannelConfidence: {
		name:  "CONF",
		usage: hiddesc.NewUsage(hiddesc.PageDigitizers, hiddesc.UsageConfidence),
		code:  NoCode,
	},
	ChannelToolX: {
		name:  "TL_X",
		usage: hiddesc.NewUsage(hiddesc.PageGenericDesktop, hiddesc.UsageX),
		code:  evdev.AbsMTToolX,
	},
	ChannelToolY: {
		name:  "TL_Y",
		usage: hiddesc.NewUsage(hiddesc.PageGenericDesktop, hiddesc.UsageY),
		code:  evdev.AbsMTToolY,
	},
}

// channelsByUsage maps a usage to every channel it can satisfy, in table
// order. The X and Y usages each bind both a position and a tool channel.
var channelsByUsage = func() map[hiddesc.Usage][]Channel {
	m := make(map[hiddesc.Usage][]Channel)
	for ch := Channel(0); ch < channelCount; ch++ {
		if u := channelTable[ch].usage; u != 0 {
			m[u] = append(m[u], ch)
		}
	}
	return m
}()

func (c Channel) String() string {
	if c < channelCount {
		return channelTable[c].name
	}
	return "?"
}

// Code returns the output event code, or NoCode.
func (c Channel) Code() uint16 {
	return channelTable[c].code
}

// Required reports whether a digitizer must expose the channel to be
// accepted.
func (c Channel) Required() bool {
	return channelTable[c].required
}
