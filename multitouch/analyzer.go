package multitouch

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/ludoplex/iichid/hiddesc"
)

// ErrNotMultitouch rejects descriptors that do not describe a supported
// multitouch digitizer. The rejection is permanent for the device.
var ErrNotMultitouch = errors.New("not a multitouch device")

var (
	usageTouchscreen = hiddesc.NewUsage(hiddesc.PageDigitizers, hiddesc.UsageTouchScreen)
	usageTouchpad    = hiddesc.NewUsage(hiddesc.PageDigitizers, hiddesc.UsageTouchPad)
	usageConfig      = hiddesc.NewUsage(hiddesc.PageDigitizers, hiddesc.UsageConfiguration)
	usageFinger      = hiddesc.NewUsage(hiddesc.PageDigitizers, hiddesc.UsageFinger)
	usageContactCnt  = hiddesc.NewUsage(hiddesc.PageDigitizers, hiddesc.UsageContactCount)
	usageContactMax  = hiddesc.NewUsage(hiddesc.PageDigitizers, hiddesc.UsageContactCountMaximum)
	usageScanTime    = hiddesc.NewUsage(hiddesc.PageDigitizers, hiddesc.UsageScanTime)
	usageInputMode   = hiddesc.NewUsage(hiddesc.PageDigitizers, hiddesc.UsageInputMode)
	usageTHQACert    = hiddesc.NewUsage(hiddesc.PageMicrosoft, hiddesc.UsageTHQACertificate)
)

// collTracker tracks which marker collections enclose the current walk
// position. Each flag is keyed to a fixed depth: the touch family and
// configuration application collections open at depth 1, a finger logical
// collection at depth 2 inside the touch collection. A close at depth zero
// always clears the application-level flags.
type collTracker struct {
	touch  bool
	config bool
	finger bool
	class  DeviceClass
}

// open processes a collection item. pinnedID restricts finger collections
// to the report the input fields were pinned to; pass zero before any
// field pinned it.
func (t *collTracker) open(it hiddesc.Item, pinnedID uint8) {
	switch {
	case it.Depth == 1 && it.Usage == usageTouchscreen:
		t.touch = true
		t.class = ClassTouchscreen
	case it.Depth == 1 && it.Usage == usageTouchpad:
		t.touch = true
		t.class = ClassTouchpad
	case it.Depth == 1 && it.Usage == usageConfig:
		t.config = true
	case it.Depth == 2 && t.touch && it.Usage == usageFinger &&
		(pinnedID == 0 || pinnedID == it.ReportID):
		t.finger = true
	}
}

// close processes an end-collection item and reports whether it closed a
// finger collection.
func (t *collTracker) close(it hiddesc.Item) bool {
	switch {
	case it.Depth == 1 && t.finger:
		t.finger = false
		return true
	case it.Depth == 0:
		t.touch = false
		t.config = false
	}
	return false
}

// featureSet is the outcome of the feature pass.
type featureSet struct {
	contactMax    hiddesc.Item
	hasContactMax bool

	inputMode    hiddesc.Item
	hasInputMode bool

	certificateID  uint8
	hasCertificate bool
}

// analyzeFeatures walks the feature items for the contact count maximum,
// the input mode selector and the vendor certificate report.
func analyzeFeatures(items []hiddesc.Item) featureSet {
	var fs featureSet
	var coll collTracker
	for _, it := range items {
		switch it.Kind {
		case hiddesc.KindCollection:
			coll.open(it, 0)
		case hiddesc.KindEndCollection:
			coll.close(it)
		case hiddesc.KindFeature:
			switch {
			case coll.touch && it.Usage == usageTHQACert:
				fs.certificateID = it.ReportID
				fs.hasCertificate = true
			case coll.touch && it.Depth == 1 && it.Flags.IsAbsolute() &&
				it.Usage == usageContactMax:
				fs.contactMax = it
				fs.hasContactMax = true
			case coll.config && it.Flags.IsAbsolute() &&
				it.Usage == usageInputMode:
				fs.inputMode = it
				fs.hasInputMode = true
			}
		}
	}
	return fs
}

// inputLayout is the outcome of the input pass.
type inputLayout struct {
	class    DeviceClass
	reportID uint8

	contactCountLoc hiddesc.Location
	hasContactCount bool
	hasScanTime     bool

	contacts int
	caps     CapabilitySet
	locs     [MaxSlots][channelCount]hiddesc.Location
	axes     [channelCount]AxisInfo
}

// analyzeInputs walks the input items and fills the per-contact location
// table. All fields must be co-resident in the report the first absolute
// touch field pinned.
func analyzeInputs(log *zap.Logger, items []hiddesc.Item) inputLayout {
	var lay inputLayout
	var coll collTracker
	for _, it := range items {
		switch it.Kind {
		case hiddesc.KindCollection:
			coll.open(it, lay.reportID)
		case hiddesc.KindEndCollection:
			if coll.close(it) {
				lay.contacts++
			}
		case hiddesc.KindInput:
			if !it.Flags.IsAbsolute() || !coll.touch ||
				(lay.reportID != 0 && lay.reportID != it.ReportID) {
				continue
			}
			lay.reportID = it.ReportID

			if it.Depth == 1 && it.Usage == usageContactCnt {
				lay.contactCountLoc = it.Loc
				lay.hasContactCount = true
				continue
			}
			// Scan time is required for validity but its value is
			// discarded; the event clock is recomputed downstream.
			if it.Depth == 1 && it.Usage == usageScanTime {
				lay.hasScanTime = true
				continue
			}
			if !coll.finger || it.Depth != 2 {
				continue
			}
			cont := lay.contacts
			if cont >= MaxSlots {
				log.Debug("contact beyond slot capacity ignored",
					zap.Int("contact", cont))
				continue
			}
			for _, ch := range channelsByUsage[it.Usage] {
				if lay.locs[cont][ch].Size != 0 {
					// The X and Y usages bind both a position and a
					// tool channel; a second field with the same usage
					// falls through to the next unbound channel.
					continue
				}
				lay.locs[cont][ch] = it.Loc
				if cont == 0 {
					// Logical bounds are trusted from the first
					// contact only; some devices report garbage
					// ranges for later contacts.
					lay.caps.Add(ch)
					lay.axes[ch] = AxisInfo{
						Minimum:    it.LogicalMinimum,
						Maximum:    it.LogicalMaximum,
						Resolution: it.Resolution(),
					}
				}
				break
			}
		}
	}
	lay.class = coll.class
	return lay
}

// Analyze runs both descriptor passes and assembles the device profile.
// It returns ErrNotMultitouch when the descriptor does not describe a
// supported digitizer; no partial profile is published in that case.
func Analyze(log *zap.Logger, items []hiddesc.Item) (*DeviceProfile, error) {
	fs := analyzeFeatures(items)
	if !fs.hasContactMax {
		return nil, fmt.Errorf("%w: contact count maximum feature not found", ErrNotMultitouch)
	}

	lay := analyzeInputs(log, items)

	var verr error
	if !lay.hasContactCount {
		verr = multierr.Append(verr, errors.New("contact count input not found"))
	}
	if !lay.hasScanTime {
		verr = multierr.Append(verr, errors.New("scan time input not found"))
	}
	if lay.contacts == 0 {
		verr = multierr.Append(verr, errors.New("no finger collections enclosed"))
	}
	for ch := Channel(0); ch < channelCount; ch++ {
		if channelTable[ch].required && !lay.caps.Has(ch) {
			verr = multierr.Append(verr, fmt.Errorf("required channel %s not found", ch))
		}
	}
	if verr != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotMultitouch, verr)
	}

	p := &DeviceProfile{
		Class:           lay.class,
		ReportID:        lay.reportID,
		Caps:            lay.caps,
		Locations:       lay.locs,
		Axes:            lay.axes,
		ContactCountLoc: lay.contactCountLoc,
		SlotsPerReport:  lay.contacts,
	}
	if p.SlotsPerReport > MaxSlots {
		p.SlotsPerReport = MaxSlots
	}

	// The feature report is the authoritative source for the contact count
	// maximum; the descriptor value only seeds a sane default in case the
	// read fails later. Non-positive descriptor values fall back to the
	// number of enclosed finger collections.
	contactMax := int(fs.contactMax.LogicalMaximum)
	if contactMax < 1 {
		contactMax = lay.contacts
	}
	if contactMax > MaxSlots {
		contactMax = MaxSlots
	}
	p.Axes[ChannelSlot] = AxisInfo{Minimum: 0, Maximum: int32(contactMax - 1)}

	// Orientation is a derived boolean, available whenever both of its
	// inputs are.
	if p.Caps.Has(ChannelWidth) && p.Caps.Has(ChannelHeight) {
		p.Caps.Add(ChannelOrientation)
		p.Axes[ChannelOrientation] = AxisInfo{Maximum: 1}
	}

	p.InputSize = hiddesc.ReportSize(items, hiddesc.KindInput, p.ReportID)
	p.ContactMax = FeatureReport{
		ID:     fs.contactMax.ReportID,
		Length: hiddesc.ReportSize(items, hiddesc.KindFeature, fs.contactMax.ReportID),
		Loc:    fs.contactMax.Loc,
	}
	if fs.hasInputMode {
		p.InputMode = FeatureReport{
			ID:     fs.inputMode.ReportID,
			Length: hiddesc.ReportSize(items, hiddesc.KindFeature, fs.inputMode.ReportID),
			Loc:    fs.inputMode.Loc,
		}
	}
	if fs.hasCertificate {
		p.Certificate = FeatureReport{
			ID:     fs.certificateID,
			Length: hiddesc.ReportSize(items, hiddesc.KindFeature, fs.certificateID),
		}
	}

	log.Info("multitouch digitizer",
		zap.Stringer("class", p.Class),
		zap.Int("contacts", contactMax),
		zap.Stringer("caps", p.Caps),
		zap.Int32("xMin", p.Axes[ChannelX].Minimum),
		zap.Int32("yMin", p.Axes[ChannelY].Minimum),
		zap.Int32("xMax", p.Axes[ChannelX].Maximum),
		zap.Int32("yMax", p.Axes[ChannelY].Maximum),
	)
	return p, nil
}

// Probe reports whether the item stream describes a supported multitouch
// digitizer and, if so, its class.
func Probe(items []hiddesc.Item) (DeviceClass, bool) {
	p, err := Analyze(zap.NewNop(), items)
	if err != nil {
		return 0, false
	}
	return p.Class, true
}
