package multitouch

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ludoplex/iichid/evdev"
	"github.com/ludoplex/iichid/hiddesc"
)

// Device binds an analyzed digitizer profile to a sink and a slot
// allocator. Attach performs all one-time initialization; afterwards the
// transport feeds ProcessReport.
type Device struct {
	log     *zap.Logger
	profile *DeviceProfile
	decoder *Decoder
}

// Attach analyzes the descriptor item stream, refines the contact count
// maximum from the device, reads the vendor certificate, selects the
// touchpad reporting mode where applicable and declares the device
// capabilities to the sink. A mode write failure aborts the attach; feature
// read failures do not.
func Attach(log *zap.Logger, items []hiddesc.Item, fa FeatureAccessor, sink EventSink, slots SlotAllocator) (*Device, error) {
	profile, err := Analyze(log, items)
	if err != nil {
		return nil, err
	}

	RefineContactMax(log, profile, fa)
	ReadCertificate(log, profile, fa)

	if profile.Class == ClassTouchpad && profile.InputMode.Length != 0 {
		if err := SetInputMode(log, profile, fa, InputModeTouchpad); err != nil {
			return nil, fmt.Errorf("set input mode: %w", err)
		}
	}

	switch profile.Class {
	case ClassTouchscreen:
		sink.SupportProp(evdev.PropDirect)
	case ClassTouchpad:
		sink.SupportProp(evdev.PropPointer)
	}
	for ch := Channel(0); ch < channelCount; ch++ {
		if profile.Caps.Has(ch) && channelTable[ch].code != NoCode {
			sink.SupportAbs(channelTable[ch].code, profile.Axes[ch])
		}
	}

	return &Device{
		log:     log,
		profile: profile,
		decoder: NewDecoder(log, profile, sink, slots),
	}, nil
}

// Profile returns the analyzed device profile.
func (d *Device) Profile() *DeviceProfile {
	return d.profile
}

// ProcessReport forwards one raw input report to the decoder.
func (d *Device) ProcessReport(id uint8, data []byte) {
	d.decoder.ProcessReport(id, data)
}
