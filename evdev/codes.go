// Package evdev carries the subset of evdev multitouch event codes and
// input properties that the decoder emits. Values match
// linux/input-event-codes.h.
package evdev

import "fmt"

// Multitouch absolute axes (protocol type B).
const (
	AbsMTSlot        uint16 = 0x2f
	AbsMTTouchMajor  uint16 = 0x30
	AbsMTTouchMinor  uint16 = 0x31
	AbsMTOrientation uint16 = 0x34
	AbsMTPositionX   uint16 = 0x35
	AbsMTPositionY   uint16 = 0x36
	AbsMTTrackingID  uint16 = 0x39
	AbsMTPressure    uint16 = 0x3a
	AbsMTDistance    uint16 = 0x3b
	AbsMTToolX       uint16 = 0x3c
	AbsMTToolY       uint16 = 0x3d
)

// Input device properties.
const (
	PropPointer uint16 = 0x00
	PropDirect  uint16 = 0x01
)

// NoContact is the tracking id that releases a slot.
const NoContact int32 = -1

// CodeName returns the symbolic name of an absolute axis code.
func CodeName(code uint16) string {
	switch code {
	case AbsMTSlot:
		return "ABS_MT_SLOT"
	case AbsMTTouchMajor:
		return "ABS_MT_TOUCH_MAJOR"
	case AbsMTTouchMinor:
		return "ABS_MT_TOUCH_MINOR"
	case AbsMTOrientation:
		return "ABS_MT_ORIENTATION"
	case AbsMTPositionX:
		return "ABS_MT_POSITION_X"
	case AbsMTPositionY:
		return "ABS_MT_POSITION_Y"
	case AbsMTTrackingID:
		return "ABS_MT_TRACKING_ID"
	case AbsMTPressure:
		return "ABS_MT_PRESSURE"
	case AbsMTDistance:
		return "ABS_MT_DISTANCE"
	case AbsMTToolX:
		return "ABS_MT_TOOL_X"
	case AbsMTToolY:
		return "ABS_MT_TOOL_Y"
	}
	return fmt.Sprintf("ABS_0x%02x", code)
}
