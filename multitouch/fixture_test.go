package multitouch

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ludoplex/iichid/hiddesc"
	"github.com/ludoplex/iichid/pkg/bits"
)

// descOpts parameterizes the synthetic digitizer descriptor shared by the
// analyzer, decoder and attach tests. The default zero value describes a
// degenerate descriptor; tests always set fingers and contactMax.
type descOpts struct {
	touchpad   bool
	fingers    int
	contactMax byte // logical maximum of the feature field

	omit map[Channel]bool

	noContactCount bool
	noScanTime     bool
	noContactMax   bool
	noInputMode    bool
	noCertificate  bool
}

func buildDescriptor(o descOpts) []byte {
	var d []byte
	add := func(bb ...byte) { d = append(d, bb...) }

	add(0x05, 0x0d) // usage page (digitizers)
	if o.touchpad {
		add(0x09, 0x05) // usage (touch pad)
	} else {
		add(0x09, 0x04) // usage (touch screen)
	}
	add(0xa1, 0x01) // collection (application)
	add(0x85, 0x01) // report id 1

	for f := 0; f < o.fingers; f++ {
		add(0x05, 0x0d)
		add(0x09, 0x22) // usage (finger)
		add(0xa1, 0x02) // collection (logical)
		if !o.omit[ChannelTipSwitch] {
			add(0x09, 0x42) // tip switch
			add(0x15, 0x00, 0x25, 0x01, 0x75, 0x01, 0x95, 0x01)
			add(0x81, 0x02)
		}
		if !o.omit[ChannelConfidence] {
			add(0x09, 0x47) // confidence
			add(0x25, 0x01, 0x75, 0x01, 0x95, 0x01)
			add(0x81, 0x02)
		}
		add(0x75, 0x06, 0x95, 0x01, 0x81, 0x03) // pad to a byte
		if !o.omit[ChannelContactID] {
			add(0x09, 0x51) // contact identifier
			add(0x25, 0x0f, 0x75, 0x08, 0x95, 0x01)
			add(0x81, 0x02)
		}
		if !o.omit[ChannelWidth] {
			add(0x09, 0x48) // width
			add(0x26, 0xff, 0x00, 0x75, 0x08, 0x95, 0x01)
			add(0x81, 0x02)
		}
		if !o.omit[ChannelHeight] {
			add(0x09, 0x49) // height
			add(0x26, 0xff, 0x00, 0x75, 0x08, 0x95, 0x01)
			add(0x81, 0x02)
		}
		if !o.omit[ChannelPressure] {
			add(0x09, 0x30) // tip pressure
			add(0x26, 0xff, 0x00, 0x75, 0x08, 0x95, 0x01)
			add(0x81, 0x02)
		}
		if !o.omit[ChannelInRange] {
			add(0x09, 0x32) // in range
			add(0x25, 0x01, 0x75, 0x01, 0x95, 0x01)
			add(0x81, 0x02)
			add(0x75, 0x07, 0x81, 0x03) // pad
		}
		add(0x05, 0x01) // usage page (generic desktop)
		if !o.omit[ChannelX] {
			add(0x09, 0x30) // x
			add(0x26, 0xff, 0x0f, 0x75, 0x10, 0x95, 0x01)
			add(0x81, 0x02)
			add(0x09, 0x30) // second x field binds the tool channel
			add(0x81, 0x02)
		}
		if !o.omit[ChannelY] {
			add(0x09, 0x31) // y
			add(0x26, 0xff, 0x07, 0x75, 0x10, 0x95, 0x01)
			add(0x81, 0x02)
			add(0x09, 0x31)
			add(0x81, 0x02)
		}
		add(0xc0)
	}

	add(0x05, 0x0d)
	if !o.noContactCount {
		add(0x09, 0x54) // contact count
		add(0x25, 0x1f, 0x75, 0x08, 0x95, 0x01)
		add(0x81, 0x02)
	}
	if !o.noScanTime {
		add(0x09, 0x56) // scan time
		add(0x26, 0xff, 0x7f, 0x75, 0x10, 0x95, 0x01)
		add(0x81, 0x02)
	}
	if !o.noContactMax {
		add(0x85, 0x02)
		add(0x09, 0x55) // contact count maximum
		add(0x25, o.contactMax, 0x75, 0x08, 0x95, 0x01)
		add(0xb1, 0x02)
	}
	if !o.noCertificate {
		add(0x06, 0x00, 0xff) // usage page (vendor)
		add(0x85, 0x03)
		add(0x09, 0xc5) // certificate blob
		add(0x75, 0x08, 0x96, 0x00, 0x01)
		add(0xb1, 0x02)
	}
	add(0xc0)

	if !o.noInputMode {
		add(0x05, 0x0d)
		add(0x09, 0x0e) // usage (device configuration)
		add(0xa1, 0x01)
		add(0x85, 0x04)
		add(0x09, 0x23) // usage (device settings)
		add(0xa1, 0x02)
		add(0x09, 0x52) // input mode
		add(0x15, 0x00, 0x25, 0x0a, 0x75, 0x08, 0x95, 0x01)
		add(0xb1, 0x02)
		add(0xc0, 0xc0)
	}
	return d
}

func parseFixture(t *testing.T, o descOpts) []hiddesc.Item {
	t.Helper()
	items, err := hiddesc.Parse(buildDescriptor(o))
	require.NoError(t, err)
	return items
}

// contact is the wire state of one contact inside a test report.
type contact struct {
	tip, conf, inRange      uint32
	cid, x, y               uint32
	width, height, pressure uint32
	toolX, toolY            uint32
}

// buildReport assembles a raw input report through the profile's own
// location table.
func buildReport(p *DeviceProfile, count uint32, contacts ...contact) []byte {
	buf := make([]byte, p.InputSize)
	loc := p.ContactCountLoc
	bits.PutUnsigned(buf, int(loc.Pos), int(loc.Size), count)
	set := func(cont int, ch Channel, v uint32) {
		l := p.Location(cont, ch)
		bits.PutUnsigned(buf, int(l.Pos), int(l.Size), v)
	}
	for i, c := range contacts {
		set(i, ChannelTipSwitch, c.tip)
		set(i, ChannelConfidence, c.conf)
		set(i, ChannelInRange, c.inRange)
		set(i, ChannelContactID, c.cid)
		set(i, ChannelX, c.x)
		set(i, ChannelY, c.y)
		set(i, ChannelWidth, c.width)
		set(i, ChannelHeight, c.height)
		set(i, ChannelPressure, c.pressure)
		set(i, ChannelToolX, c.toolX)
		set(i, ChannelToolY, c.toolY)
	}
	return buf
}

type absEvent struct {
	code  uint16
	value int32
}

// recordSink captures the decoder output for assertions.
type recordSink struct {
	props  []uint16
	axes   map[uint16]AxisInfo
	events []absEvent
	syncs  int
}

func newRecordSink() *recordSink {
	return &recordSink{axes: make(map[uint16]AxisInfo)}
}

func (s *recordSink) SupportProp(prop uint16) {
	s.props = append(s.props, prop)
}

func (s *recordSink) SupportAbs(code uint16, axis AxisInfo) {
	s.axes[code] = axis
}

func (s *recordSink) PushAbs(code uint16, value int32) {
	s.events = append(s.events, absEvent{code: code, value: value})
}

func (s *recordSink) Sync() {
	s.syncs++
}

func (s *recordSink) reset() {
	s.events = nil
	s.syncs = 0
}

// last returns the value of the most recent event with the given code.
func (s *recordSink) last(t *testing.T, code uint16) int32 {
	t.Helper()
	for i := len(s.events) - 1; i >= 0; i-- {
		if s.events[i].code == code {
			return s.events[i].value
		}
	}
	t.Fatalf("no event with code 0x%02x", code)
	return 0
}
