package multitouch

import (
	"go.uber.org/zap"

	"github.com/ludoplex/iichid/evdev"
	"github.com/ludoplex/iichid/pkg/bits"
)

// EventSink receives decoded touch events and the terminal sync marking
// the end of one logical touch frame. Capability declarations arrive once
// before any event.
type EventSink interface {
	SupportProp(prop uint16)
	SupportAbs(code uint16, axis AxisInfo)
	PushAbs(code uint16, value int32)
	Sync()
}

// SlotAllocator maps wire-level contact ids to stable logical slots. The
// same id must resolve to the same slot for as long as the contact is
// tracked; ok is false when no slot is free.
type SlotAllocator interface {
	Slot(contactID uint32) (slot int, ok bool)
}

// Decoder consumes raw input reports for one device and emits per-contact
// events. Calls must be serialized by the transport; the decoder owns its
// session state exclusively for the duration of one call.
type Decoder struct {
	log     *zap.Logger
	profile *DeviceProfile
	sink    EventSink
	slots   SlotAllocator

	buf     []byte
	todo    uint32
	scratch [channelCount]uint32
	inRange [MaxSlots]uint32
}

// NewDecoder creates a decoder bound to an analyzed profile. The session
// state starts idle.
func NewDecoder(log *zap.Logger, profile *DeviceProfile, sink EventSink, slots SlotAllocator) *Decoder {
	return &Decoder{
		log:     log,
		profile: profile,
		sink:    sink,
		slots:   slots,
		buf:     make([]byte, profile.InputSize),
	}
}

// ProcessReport decodes one raw input report. data excludes any report id
// prefix byte; id is delivered out of band by the transport. Reports for
// other ids are discarded, short buffers are zero-extended to the expected
// input size and anomalies inside the report skip the offending contact
// only.
func (d *Decoder) ProcessReport(id uint8, data []byte) {
	if id != d.profile.ReportID {
		d.log.Debug("skipping report with unexpected id", zap.Uint8("id", id))
		return
	}
	// Zero-extend in place: some transports truncate trailing all-zero
	// bytes. Never read past the expected size.
	n := copy(d.buf, data)
	for i := n; i < len(d.buf); i++ {
		d.buf[i] = 0
	}

	// In hybrid delivery the first packet of a burst carries the total
	// contact count; continuation packets carry zero and must not reset
	// the counter.
	loc := d.profile.ContactCountLoc
	if count := bits.GetUnsigned(d.buf, int(loc.Pos), int(loc.Size)); count != 0 {
		d.todo = count
	}
	if d.todo == 0 {
		// Stray or duplicate packet while idle.
		return
	}

	count := d.todo
	if per := uint32(d.profile.SlotsPerReport); count > per {
		count = per
	}
	for cont := 0; cont < int(count); cont++ {
		d.decodeContact(cont)
	}
	d.todo -= count
	if d.todo == 0 {
		d.sink.Sync()
	}
}

func (d *Decoder) decodeContact(cont int) {
	for i := range d.scratch {
		d.scratch[i] = 0
	}
	for ch := Channel(0); ch < channelCount; ch++ {
		if !d.profile.Caps.Has(ch) {
			continue
		}
		if loc := d.profile.Locations[cont][ch]; loc.Size > 0 {
			d.scratch[ch] = bits.GetUnsigned(d.buf, int(loc.Pos), int(loc.Size))
		}
	}

	slot, ok := d.slots.Slot(d.scratch[ChannelContactID])
	if !ok || slot < 0 || slot >= MaxSlots {
		d.log.Debug("slot overflow",
			zap.Uint32("contactId", d.scratch[ChannelContactID]))
		return
	}

	active := d.scratch[ChannelTipSwitch] != 0 &&
		!(d.profile.Caps.Has(ChannelConfidence) && d.scratch[ChannelConfidence] == 0)
	if !active {
		// Release: only the slot and the no-contact tracking id; every
		// other channel keeps its transmitted state.
		d.sink.PushAbs(evdev.AbsMTSlot, int32(slot))
		d.sink.PushAbs(evdev.AbsMTTrackingID, evdev.NoContact)
		return
	}

	d.scratch[ChannelSlot] = uint32(slot)
	// The presence bit is transmitted as a toggle, not a level.
	v := d.scratch[ChannelInRange] ^ d.inRange[slot]
	d.scratch[ChannelInRange] = v
	d.inRange[slot] = v
	// Halved to match the visual scale of the touch.
	width := d.scratch[ChannelWidth] >> 1
	height := d.scratch[ChannelHeight] >> 1
	d.scratch[ChannelOrientation] = 0
	if width > height {
		d.scratch[ChannelOrientation] = 1
	}
	d.scratch[ChannelMajor] = max(width, height)
	d.scratch[ChannelMinor] = min(width, height)

	for ch := Channel(0); ch < channelCount; ch++ {
		if d.profile.Caps.Has(ch) && channelTable[ch].code != NoCode {
			d.sink.PushAbs(channelTable[ch].code, int32(d.scratch[ch]))
		}
	}
}
