package cli

import (
	"fmt"
	"io"

	"github.com/ludoplex/iichid/evdev"
	"github.com/ludoplex/iichid/multitouch"
)

// printSink writes decoded events as text, one per line, and frees slots
// when it forwards a no-contact tracking id — the same contract an evdev
// state keeper fulfills in kernel space.
type printSink struct {
	w     io.Writer
	slots *multitouch.SlotMap

	curSlot int32
}

func newPrintSink(w io.Writer, slots *multitouch.SlotMap) *printSink {
	return &printSink{w: w, slots: slots, curSlot: -1}
}

func (s *printSink) SupportProp(prop uint16) {
	fmt.Fprintf(s.w, "PROP 0x%02x\n", prop)
}

func (s *printSink) SupportAbs(code uint16, axis multitouch.AxisInfo) {
	fmt.Fprintf(s.w, "AXIS %s min=%d max=%d res=%d\n",
		evdev.CodeName(code), axis.Minimum, axis.Maximum, axis.Resolution)
}

func (s *printSink) PushAbs(code uint16, value int32) {
	switch code {
	case evdev.AbsMTSlot:
		s.curSlot = value
	case evdev.AbsMTTrackingID:
		if value == evdev.NoContact && s.curSlot >= 0 {
			s.slots.ReleaseSlot(int(s.curSlot))
		}
	}
	fmt.Fprintf(s.w, "%s %d\n", evdev.CodeName(code), value)
}

func (s *printSink) Sync() {
	fmt.Fprintln(s.w, "SYN_REPORT")
}
